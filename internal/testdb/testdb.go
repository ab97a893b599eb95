// Package testdb opens isolated in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
)

// DSN returns the data source name of a new in-memory database. Every call
// names a different database, so parallel tests never share rows.
func DSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
}

// Open returns a driver over a fresh in-memory database and runs the given
// statements on it. The database is closed when the test ends.
func Open(t testing.TB, stmts ...string) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, DSN())
	require.NoError(t, err)
	// A shared-cache memory database lives as long as one connection does.
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = drv.Close() })
	Exec(t, drv, stmts...)
	return drv
}

// Exec runs statements on drv, failing the test on the first error.
func Exec(t testing.TB, drv dialect.ExecQuerier, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		require.NoError(t, drv.Exec(context.Background(), stmt, []any{}, nil), stmt)
	}
}

// Table returns a CREATE TABLE statement for an auto-increment id column
// followed by the given column definitions.
//
//	testdb.Table("posts", "title TEXT", "slug TEXT", "is_active BOOLEAN DEFAULT 1")
func Table(name string, columns ...string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(name)
	b.WriteString(" (id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range columns {
		b.WriteString(", ")
		b.WriteString(c)
	}
	b.WriteString(")")
	return b.String()
}
