package testutils

import (
	"github.com/nfrund/sparx/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// NewTestRecordID creates a new RecordID for testing purposes.
func NewTestRecordID(table string) *surrealmodels.RecordID {
	return domain.NewRecordID(table, domain.NewKey())
}
