package database

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConnected is returned when no usable connection exists.
	ErrNotConnected = errors.New("database not connected")

	// ErrQueryFailed is returned when a query execution fails.
	ErrQueryFailed = errors.New("query execution failed")
)

// DBError is a database error with the operation and, optionally, the query
// that produced it.
type DBError struct {
	err     error
	context string
	query   string
}

// NewDBError creates a new DBError. context describes the operation.
func NewDBError(err error, context string) *DBError {
	return &DBError{err: err, context: context}
}

// WithQuery adds query information to the error.
func (e *DBError) WithQuery(query string) *DBError {
	e.query = query
	return e
}

// Error returns the error message. Parameters are never included since they
// may carry password hashes and tokens.
func (e *DBError) Error() string {
	msg := e.context
	if e.query != "" {
		msg = fmt.Sprintf("%s (query: %s)", msg, strings.Join(strings.Fields(e.query), " "))
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DBError) Unwrap() error {
	return e.err
}

// isUniqueViolation reports whether err came from a UNIQUE index rejecting
// a write.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists")
}
