package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// NewKey generates a record key: a random UUID without dashes.
func NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewRecordID returns a pointer to a record id for the given table and key.
func NewRecordID(table, key string) *surrealmodels.RecordID {
	id := surrealmodels.NewRecordID(table, key)
	return &id
}

// RecordKey extracts the key part of a record id ("user:abc" -> "abc").
func RecordKey(id *surrealmodels.RecordID) string {
	if id == nil || id.ID == nil {
		return ""
	}
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprint(id.ID)
}

// SameRecord reports whether two record ids point at the same record.
func SameRecord(a, b *surrealmodels.RecordID) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Table == b.Table && RecordKey(a) == RecordKey(b)
}
