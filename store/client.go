// Package store persists modelkit schemas in a SQL database.
//
// A Client registers schemas as tables. Registration collects the fields,
// edges and hooks of the schema and of its mixins. Mutations run the hooks
// before their statement is executed, and queries load edges in batches.
//
//	client := store.NewClient(drv, store.Log(logger))
//	posts, err := client.Register(schema.Post{})
//	row, err := posts.Create().Set("title", "My Blog Post").Save(ctx)
//	row.String("slug") // "my-blog-post"
package store

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/go-openapi/inflect"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/edge"
	"github.com/modelkit/modelkit/schema/field"
)

// IDColumn is the primary key column of every table.
const IDColumn = "id"

// Client registers schemas and runs their statements on a driver.
type Client struct {
	drv   dialect.Driver
	log   *slog.Logger
	debug bool
	cache modelkit.Cache
	ttl   time.Duration
	conf  config.Resolver
	batch int

	mu     sync.RWMutex
	tables map[string]*Table
}

// Option configures a Client.
type Option func(*Client)

// Log sets the logger of the client.
func Log(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// Debug logs every statement at debug level.
func Debug() Option {
	return func(c *Client) {
		c.debug = true
	}
}

// WithCache caches query results in cache for ttl. A zero ttl keeps
// entries until a mutation of their table drops them.
func WithCache(cache modelkit.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithConfig sets the resolver the client reads its settings from.
// Defaults to config.Default().
func WithConfig(r config.Resolver) Option {
	return func(c *Client) {
		c.conf = r
	}
}

// NewClient returns a client running statements on drv.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	c := &Client{drv: drv, tables: make(map[string]*Table)}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.conf == nil {
		c.conf = config.Default()
	}
	if c.debug {
		c.drv = sql.NewDebugDriver(c.drv, c.log)
	}
	c.batch = config.DefaultEagerBatchSize
	if v := c.conf.Get(config.KeyEagerBatchSize, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.log.Warn("store: invalid eager batch size", "value", v)
		} else {
			c.batch = n
		}
	}
	return c
}

// Driver returns the driver statements run on.
func (c *Client) Driver() dialect.Driver { return c.drv }

// Dialect returns the dialect name of the driver.
func (c *Client) Dialect() string { return c.drv.Dialect() }

// Config returns the resolver of the client.
func (c *Client) Config() config.Resolver { return c.conf }

// Close closes the underlying driver.
func (c *Client) Close() error { return c.drv.Close() }

// Register attaches a schema and returns its table. The table name is
// Config().Table, or the plural snake case of the schema type name.
func (c *Client) Register(schema modelkit.Interface) (*Table, error) {
	typ := typeName(schema)
	t := &Table{
		client: c,
		typ:    typ,
		name:   schema.Config().Table,
		byName: make(map[string]*field.Descriptor),
		edges:  make(map[string]*edge.Descriptor),
	}
	if t.name == "" {
		t.name = inflect.Tableize(typ)
	}
	var (
		fields []modelkit.Field
		edges  []modelkit.Edge
	)
	for _, m := range schema.Mixin() {
		fields = append(fields, m.Fields()...)
		edges = append(edges, m.Edges()...)
		t.hooks = append(t.hooks, m.Hooks()...)
	}
	fields = append(fields, schema.Fields()...)
	edges = append(edges, schema.Edges()...)
	t.hooks = append(t.hooks, schema.Hooks()...)

	for _, f := range fields {
		d := f.Descriptor()
		switch {
		case d.Name == "":
			return nil, fmt.Errorf("store: %s has a field without a name", typ)
		case d.Name == IDColumn:
			return nil, fmt.Errorf("store: %s field %q is reserved", typ, IDColumn)
		case !d.Info.Type.Valid():
			return nil, fmt.Errorf("store: %s field %q has invalid type", typ, d.Name)
		}
		if _, ok := t.byName[d.Name]; ok {
			return nil, fmt.Errorf("store: %s field %q declared more than once", typ, d.Name)
		}
		t.byName[d.Name] = d
		t.fields = append(t.fields, d)
	}
	for _, e := range edges {
		d := e.Descriptor()
		if _, ok := t.edges[d.Name]; ok {
			return nil, fmt.Errorf("store: %s edge %q declared more than once", typ, d.Name)
		}
		if d.Field == "" {
			return nil, fmt.Errorf("store: %s edge %q has no foreign key column", typ, d.Name)
		}
		if d.Inverse() {
			if _, ok := t.byName[d.Field]; !ok {
				return nil, fmt.Errorf("store: %s edge %q references unknown field %q", typ, d.Name, d.Field)
			}
		}
		t.edges[d.Name] = d
		t.edgeNames = append(t.edgeNames, d.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[typ]; ok {
		return nil, fmt.Errorf("store: schema %s already registered", typ)
	}
	c.tables[typ] = t
	c.log.Debug("store: registered schema", "type", typ, "table", t.name, "fields", len(t.fields), "edges", len(t.edges), "hooks", len(t.hooks))
	return t, nil
}

// MustRegister is like Register but panics on error.
func (c *Client) MustRegister(schema modelkit.Interface) *Table {
	t, err := c.Register(schema)
	if err != nil {
		panic(err)
	}
	return t
}

// Table returns the table registered for the given schema type name.
func (c *Client) Table(typ string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[typ]
	return t, ok
}

func typeName(schema modelkit.Interface) string {
	t := reflect.TypeOf(schema)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
