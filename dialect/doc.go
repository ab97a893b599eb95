// Package dialect is the boundary between the store and a database.
//
// A Driver runs statements and reports which SQL flavor it speaks; the
// store asks for Dialect() to pick placeholders and quoting, so the same
// table works on postgres, mysql and sqlite:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Arguments travel as []any and results land in v, whose concrete type is
// chosen by the implementation (dialect/sql expects *sql.Rows for Query and
// a *sql.Result or nil for Exec). Drivers compose by wrapping: the stats
// and debug drivers of dialect/sql embed another Driver and return it from
// Unwrap.
//
//	drv, err := sql.Open(dialect.SQLite, "file:blog.db?_pragma=foreign_keys(1)")
//	if err != nil {
//		return err
//	}
//	client := store.NewClient(sql.NewDebugDriver(drv, logger))
//
// NopTx turns a Driver into a Tx whose Commit and Rollback do nothing, for
// code that accepts a transaction but may run outside one.
package dialect
