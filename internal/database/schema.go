package database

import (
	"context"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
)

// schema lists the table and index definitions the stores rely on. Every
// statement is idempotent.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_email ON TABLE user FIELDS email UNIQUE",

	"DEFINE TABLE IF NOT EXISTS reset_token SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS reset_token_hash ON TABLE reset_token FIELDS token_hash",

	"DEFINE TABLE IF NOT EXISTS product SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS product_user ON TABLE product FIELDS user_id",
	"DEFINE INDEX IF NOT EXISTS product_created ON TABLE product FIELDS created_at",
}

// Schema returns a copy of the schema statements.
func Schema() []string {
	return append([]string(nil), schema...)
}

// ApplySchema defines the tables and indexes. It is safe to run on every start.
func ApplySchema(ctx context.Context, conn Conn) error {
	ctx, cancel := withTimeout(ctx, conn.ExecuteTimeout(), executeTimeoutKey)
	defer cancel()

	return conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		for _, stmt := range schema {
			if err := Execute(ctx, db, stmt, nil); err != nil {
				return NewDBError(err, "failed to apply schema").WithQuery(stmt)
			}
		}
		slog.InfoContext(ctx, "Database schema applied", "event", "db_schema_applied", "statements", len(schema))
		return nil
	})
}
