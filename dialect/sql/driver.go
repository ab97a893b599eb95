package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/modelkit/modelkit/dialect"
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ErrTxDone is returned by WithTx when fn already finished the transaction.
var ErrTxDone = sql.ErrTxDone

// ExecQuerier is the part of *sql.DB and *sql.Tx a Conn runs statements on.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn adapts an ExecQuerier to dialect.ExecQuerier.
type Conn struct {
	ExecQuerier
}

// Exec runs a statement. v is nil, or a *Result the result is stored in.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, err := arguments(args)
	if err != nil {
		return err
	}
	res, ok := v.(*Result)
	if v != nil && !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	r, err := c.ExecContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if res != nil {
		*res = r
	}
	return nil
}

// Query runs a query and stores its rows in v, which must be a *Rows.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	rows, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, err := arguments(args)
	if err != nil {
		return err
	}
	r, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	*rows = Rows{r}
	return nil
}

func arguments(args any) ([]any, error) {
	argv, ok := args.([]any)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	return argv, nil
}

// Driver is the dialect.Driver of database/sql connections.
type Driver struct {
	Conn
	dialect string
}

// NewDriver returns a Driver running statements on c.
func NewDriver(dialect string, c Conn) *Driver {
	return &Driver{Conn: c, dialect: dialect}
}

// Open opens a database with database/sql and wraps it in a Driver. The
// dialect names the database/sql driver too.
func Open(dialect, source string) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return OpenDB(dialect, db), nil
}

// OpenDB wraps an opened database in a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, Conn{db})
}

// DB returns the database the driver was opened on.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns the dialect name. Names of wrapped database/sql drivers,
// such as "sqlite-debug", resolve to the dialect they start with.
func (d Driver) Dialect() string {
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Tx starts a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with the given options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (dialect.Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Conn: Conn{tx}, Tx: tx}, nil
}

// Close closes the database.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx is the dialect.Tx of a Driver.
type Tx struct {
	Conn
	driver.Tx
}

// ColumnScanner is the part of *sql.Rows the scan helpers read from.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}

// Rows holds the rows of a query. The zero value has no rows.
type Rows struct{ ColumnScanner }

// Close closes the rows.
func (r *Rows) Close() error {
	if r.ColumnScanner == nil {
		return nil
	}
	return r.ColumnScanner.Close()
}

// WithTx runs fn in a transaction of drv. The transaction is rolled back
// when fn returns an error and committed otherwise.
//
//	err := sql.WithTx(ctx, drv, func(tx dialect.Tx) error {
//		return tx.Exec(ctx, "UPDATE posts SET is_active = ?", []any{false}, nil)
//	})
func WithTx(ctx context.Context, drv dialect.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("dialect/sql: rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit: %w", err)
	}
	return nil
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)
