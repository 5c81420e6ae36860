package database

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Client is a type-safe gateway to one kind of record. Reads run under the
// query timeout, writes under the execute timeout.
type Client[T any] interface {
	// Create inserts a record with the given id. Returns the stored record.
	Create(ctx context.Context, id *surrealmodels.RecordID, data any) (*T, error)

	// Select retrieves a record by id. Returns (nil, nil) when it does not exist.
	Select(ctx context.Context, id *surrealmodels.RecordID) (*T, error)

	// Merge updates the given fields of an existing record. Returns (nil, nil)
	// when it does not exist.
	Merge(ctx context.Context, id *surrealmodels.RecordID, data any) (*T, error)

	// Delete removes a record and returns its previous state, or (nil, nil)
	// when it did not exist.
	Delete(ctx context.Context, id *surrealmodels.RecordID) (*T, error)

	// Query executes a read query and returns the rows of the first statement.
	Query(ctx context.Context, query string, params map[string]any) ([]T, error)

	// QueryOne executes a read query and returns its first row, or (nil, nil).
	QueryOne(ctx context.Context, query string, params map[string]any) (*T, error)

	// Write executes a write statement that returns rows, such as UPSERT.
	Write(ctx context.Context, query string, params map[string]any) ([]T, error)

	// Execute runs a statement whose result is not needed.
	Execute(ctx context.Context, query string, params map[string]any) error
}

// Conn is the part of Connection used by clients.
type Conn interface {
	WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error
	QueryTimeout() time.Duration
	ExecuteTimeout() time.Duration
}

type client[T any] struct {
	conn           Conn
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a new type-safe database client.
func NewClient[T any](conn Conn) (Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrNotConnected, "connection cannot be nil")
	}
	if conn.QueryTimeout() <= 0 || conn.ExecuteTimeout() <= 0 {
		return nil, NewDBError(ErrQueryFailed, "query and execute timeouts must be positive")
	}
	return &client[T]{
		conn:           conn,
		queryTimeout:   conn.QueryTimeout(),
		executeTimeout: conn.ExecuteTimeout(),
	}, nil
}

func (c *client[T]) read(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := withTimeout(ctx, c.queryTimeout, queryTimeoutKey)
	defer cancel()
	return c.run(ctx, query, params)
}

func (c *client[T]) write(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := withTimeout(ctx, c.executeTimeout, executeTimeoutKey)
	defer cancel()
	return c.run(ctx, query, params)
}

func (c *client[T]) run(ctx context.Context, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		rows, err = Query[T](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, NewDBError(err, "query failed").WithQuery(query)
	}
	return rows, nil
}

func first[T any](rows []T) *T {
	if len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

func (c *client[T]) Create(ctx context.Context, id *surrealmodels.RecordID, data any) (*T, error) {
	rows, err := c.write(ctx, "CREATE $id CONTENT $data", map[string]any{"id": id, "data": data})
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

func (c *client[T]) Select(ctx context.Context, id *surrealmodels.RecordID) (*T, error) {
	rows, err := c.read(ctx, "SELECT * FROM $id", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

func (c *client[T]) Merge(ctx context.Context, id *surrealmodels.RecordID, data any) (*T, error) {
	rows, err := c.write(ctx, "UPDATE $id MERGE $data RETURN AFTER", map[string]any{"id": id, "data": data})
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

func (c *client[T]) Delete(ctx context.Context, id *surrealmodels.RecordID) (*T, error) {
	rows, err := c.write(ctx, "DELETE $id RETURN BEFORE", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

func (c *client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	return c.read(ctx, query, params)
}

func (c *client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	rows, err := c.read(ctx, limitOne(query), params)
	if err != nil {
		return nil, err
	}
	return first(rows), nil
}

func (c *client[T]) Write(ctx context.Context, query string, params map[string]any) ([]T, error) {
	return c.write(ctx, query, params)
}

func (c *client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := withTimeout(ctx, c.executeTimeout, executeTimeoutKey)
	defer cancel()
	err := c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, query, params)
	})
	if err != nil {
		return NewDBError(err, "execute failed").WithQuery(query)
	}
	return nil
}
