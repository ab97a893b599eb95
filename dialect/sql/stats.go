package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelkit/modelkit/dialect"
)

// Statement kinds passed to an interceptor.
const (
	kindQuery = "query"
	kindExec  = "exec"
)

// interceptor runs a statement. run executes it on the wrapped driver.
type interceptor func(ctx context.Context, kind, query string, args any, run func() error) error

// interceptedTx runs the statements of a transaction through an interceptor.
type interceptedTx struct {
	dialect.Tx
	intercept interceptor
	end       func(msg string) // called before commit and rollback, may be nil.
}

func (tx *interceptedTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.intercept(ctx, kindQuery, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *interceptedTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.intercept(ctx, kindExec, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func (tx *interceptedTx) Commit() error {
	if tx.end != nil {
		tx.end("commit transaction")
	}
	return tx.Tx.Commit()
}

func (tx *interceptedTx) Rollback() error {
	if tx.end != nil {
		tx.end("rollback transaction")
	}
	return tx.Tx.Rollback()
}

// QueryStats counts the statements run through a StatsDriver.
type QueryStats struct {
	queries  atomic.Int64
	execs    atomic.Int64
	duration atomic.Int64 // nanoseconds.
	slow     atomic.Int64
	errors   atomic.Int64
}

func (s *QueryStats) add(kind string, elapsed time.Duration, slow bool, err error) {
	if kind == kindQuery {
		s.queries.Add(1)
	} else {
		s.execs.Add(1)
	}
	s.duration.Add(int64(elapsed))
	if slow {
		s.slow.Add(1)
	}
	if err != nil {
		s.errors.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.queries.Load(),
		TotalExecs:    s.execs.Load(),
		TotalDuration: time.Duration(s.duration.Load()),
		SlowQueries:   s.slow.Load(),
		Errors:        s.errors.Load(),
	}
}

// Reset sets every counter back to zero.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{&s.queries, &s.execs, &s.duration, &s.slow, &s.errors} {
		c.Store(0)
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the mean duration of queries and execs.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if n := s.TotalQueries + s.TotalExecs; n > 0 {
		return s.TotalDuration / time.Duration(n)
	}
	return 0
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors)
}

// SlowQueryHook is called with every statement slower than the threshold
// of a StatsDriver.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver counts and times the statements of the wrapped driver,
// including those run in its transactions.
type StatsDriver struct {
	dialect.Driver
	stats *QueryStats

	mu        sync.RWMutex
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Defaults to 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithSlowQueryHook sets the function called with slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.hook = hook
	}
}

// WithSlowQueryLog logs slow statements at warn level to l, or to the
// default logger when l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		logger := l
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps drv with statement statistics.
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(nil),
//	)
//	client := store.NewClient(stats)
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &QueryStats{},
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unwrap returns the wrapped driver.
func (d *StatsDriver) Unwrap() dialect.Driver { return d.Driver }

// QueryStats returns the counters of the driver.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetSlowThreshold changes the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}

// Query runs and records a query.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, kindQuery, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec runs and records a statement.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, kindExec, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are recorded too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &interceptedTx{Tx: tx, intercept: d.observe}, nil
}

func (d *StatsDriver) observe(ctx context.Context, kind, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)

	d.mu.RLock()
	threshold, hook := d.threshold, d.hook
	d.mu.RUnlock()
	slow := elapsed > threshold
	d.stats.add(kind, elapsed, slow, err)
	if slow && hook != nil {
		argv, _ := args.([]any)
		hook(ctx, query, argv, elapsed)
	}
	return err
}

// DebugDriver logs every statement at debug level before running it on the
// wrapped driver.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// NewDebugDriver wraps drv with statement logging. A nil logger logs to
// slog.Default.
func NewDebugDriver(drv dialect.Driver, l *slog.Logger) *DebugDriver {
	if l == nil {
		l = slog.Default()
	}
	return &DebugDriver{Driver: drv, logger: l}
}

// Unwrap returns the wrapped driver.
func (d *DebugDriver) Unwrap() dialect.Driver { return d.Driver }

// Query logs and runs a query.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.logged("")(ctx, kindQuery, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec logs and runs a statement.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.logged("")(ctx, kindExec, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements, commit and rollback are
// logged too.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.logger.DebugContext(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &interceptedTx{
		Tx:        tx,
		intercept: d.logged("tx "),
		end:       func(msg string) { d.logger.DebugContext(ctx, msg) },
	}, nil
}

// logged returns an interceptor logging statements as prefix+kind.
func (d *DebugDriver) logged(prefix string) interceptor {
	return func(ctx context.Context, kind, query string, args any, run func() error) error {
		d.logger.DebugContext(ctx, prefix+kind, "sql", query, "args", args)
		return run()
	}
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*interceptedTx)(nil)
)
