// Package dbtest opens isolated in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"catalog-api/internal/db"

	"github.com/google/uuid"
)

func New(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := db.Open(db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.DriverSQLite); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}
