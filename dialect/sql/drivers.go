package sql

// Database drivers registered for Open. Their names equal the
// dialect.Postgres, dialect.MySQL and dialect.SQLite constants.
import (
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)
