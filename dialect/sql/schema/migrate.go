package schema

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/modelkit/modelkit/dialect"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/field"
)

// MigrateOption allows configuring Migrate using functional arguments.
type MigrateOption func(*Migrate)

// WithDropColumn sets the columns dropping option to the migration.
// Defaults to false.
func WithDropColumn(b bool) MigrateOption {
	return func(m *Migrate) {
		m.dropColumns = b
	}
}

// WithDropIndex sets the indexes dropping option to the migration.
// Foreign keys follow the same option. Defaults to false.
func WithDropIndex(b bool) MigrateOption {
	return func(m *Migrate) {
		m.dropIndexes = b
	}
}

// WithLogger sets the logger the planned statements are written to at
// debug level.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(m *Migrate) {
		m.log = l
	}
}

// Migrate runs the migration logic for the SQL dialects.
type Migrate struct {
	dialect     string
	atlas       migrate.Driver
	log         *slog.Logger
	dropColumns bool
	dropIndexes bool
}

// NewMigrate creates a migration structure for the given driver. Drivers
// wrapped by sql.NewDebugDriver or sql.NewStatsDriver are unwrapped, and
// the statements of the migration bypass the wrappers.
func NewMigrate(drv dialect.Driver, opts ...MigrateOption) (*Migrate, error) {
	m := &Migrate{dialect: drv.Dialect()}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	conn, err := execQuerier(drv)
	if err != nil {
		return nil, err
	}
	switch m.dialect {
	case dialect.SQLite:
		m.atlas, err = sqlite.Open(conn)
	case dialect.MySQL:
		m.atlas, err = mysql.Open(conn)
	case dialect.Postgres:
		m.atlas, err = postgres.Open(conn)
	default:
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", m.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: open %s: %w", m.dialect, err)
	}
	return m, nil
}

// execQuerier returns the connection under drv.
func execQuerier(drv dialect.Driver) (sql.ExecQuerier, error) {
	for {
		switch d := drv.(type) {
		case *sql.Driver:
			return d.ExecQuerier, nil
		case interface{ Unwrap() dialect.Driver }:
			drv = d.Unwrap()
		default:
			return nil, fmt.Errorf("dialect/sql/schema: driver %T has no SQL connection", drv)
		}
	}
}

// Create creates all schema resources in the database. It works in an
// "append-only" mode: tables and columns are added, columns are changed,
// and nothing is dropped unless WithDropColumn or WithDropIndex is set.
func (m *Migrate) Create(ctx context.Context, tables ...*Table) error {
	changes, err := m.changes(ctx, tables)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	if m.log.Enabled(ctx, slog.LevelDebug) {
		plan, err := m.atlas.PlanChanges(ctx, "create", changes)
		if err != nil {
			return fmt.Errorf("dialect/sql/schema: plan changes: %w", err)
		}
		for _, c := range plan.Changes {
			m.log.DebugContext(ctx, "schema: apply", "sql", c.Cmd)
		}
	}
	if err := m.atlas.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("dialect/sql/schema: apply changes: %w", err)
	}
	return nil
}

// Plan returns the statements Create would execute, without executing them.
func (m *Migrate) Plan(ctx context.Context, tables ...*Table) ([]string, error) {
	changes, err := m.changes(ctx, tables)
	if err != nil || len(changes) == 0 {
		return nil, err
	}
	plan, err := m.atlas.PlanChanges(ctx, "plan", changes)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: plan changes: %w", err)
	}
	stmts := make([]string, len(plan.Changes))
	for i, c := range plan.Changes {
		stmts[i] = c.Cmd
	}
	return stmts, nil
}

// changes returns the changes moving the database to the given tables.
func (m *Migrate) changes(ctx context.Context, tables []*Table) ([]atlas.Change, error) {
	if r := ValidateSchema(tables); r.HasErrors() {
		return nil, fmt.Errorf("dialect/sql/schema: invalid tables:\n%s", r)
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	current, err := m.atlas.InspectSchema(ctx, "", &atlas.InspectOptions{Tables: names})
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: inspect schema: %w", err)
	}
	desired, err := m.realm(current.Name, tables)
	if err != nil {
		return nil, err
	}
	changes, err := m.atlas.SchemaDiff(current, desired)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql/schema: diff schema: %w", err)
	}
	return m.filter(changes), nil
}

// filter drops the destructive changes the migration was not allowed to make.
func (m *Migrate) filter(changes []atlas.Change) []atlas.Change {
	kept := make([]atlas.Change, 0, len(changes))
	for _, c := range changes {
		modify, ok := c.(*atlas.ModifyTable)
		if !ok {
			kept = append(kept, c)
			continue
		}
		var tc []atlas.Change
		for _, c := range modify.Changes {
			switch c.(type) {
			case *atlas.DropColumn:
				if !m.dropColumns {
					continue
				}
			case *atlas.DropIndex, *atlas.DropForeignKey:
				if !m.dropIndexes {
					continue
				}
			}
			tc = append(tc, c)
		}
		if len(tc) > 0 {
			modify.Changes = tc
			kept = append(kept, modify)
		}
	}
	return kept
}

// realm converts the tables to their Atlas form inside a schema named name.
func (m *Migrate) realm(name string, tables []*Table) (*atlas.Schema, error) {
	s := atlas.New(name)
	byName := make(map[string]*atlas.Table, len(tables))
	for _, t := range tables {
		at := atlas.NewTable(t.Name)
		if t.Comment != "" {
			at.SetComment(t.Comment)
		}
		for _, c := range t.Columns {
			ac, err := m.column(c)
			if err != nil {
				return nil, fmt.Errorf("dialect/sql/schema: table %q: %w", t.Name, err)
			}
			at.AddColumns(ac)
		}
		if len(t.PrimaryKey) > 0 {
			at.SetPrimaryKey(atlas.NewPrimaryKey(m.columns(at, t.PrimaryKey)...))
		}
		for _, c := range t.Columns {
			if c.UniqueKey() && !c.PrimaryKey() {
				idx := atlas.NewUniqueIndex(t.Name + "_" + c.Name + "_key")
				at.AddIndexes(idx.AddColumns(m.columns(at, []*Column{c})...))
			}
		}
		for _, idx := range t.Indexes {
			ai := atlas.NewIndex(idx.Name).SetUnique(idx.Unique)
			at.AddIndexes(ai.AddColumns(m.columns(at, idx.Columns)...))
		}
		s.AddTables(at)
		byName[t.Name] = at
	}
	for _, t := range tables {
		at := byName[t.Name]
		for _, fk := range t.ForeignKeys {
			ref, ok := byName[fk.RefTable.Name]
			if !ok {
				return nil, fmt.Errorf("dialect/sql/schema: table %q references unknown table %q", t.Name, fk.RefTable.Name)
			}
			afk := atlas.NewForeignKey(fk.Symbol).
				AddColumns(m.columns(at, fk.Columns)...).
				SetRefTable(ref).
				AddRefColumns(m.columns(ref, fk.RefColumns)...)
			if fk.OnDelete != "" {
				afk.SetOnDelete(atlas.ReferenceOption(fk.OnDelete))
			}
			at.AddForeignKeys(afk)
		}
	}
	return s, nil
}

func (m *Migrate) columns(t *atlas.Table, columns []*Column) []*atlas.Column {
	cols := make([]*atlas.Column, 0, len(columns))
	for _, c := range columns {
		if ac, ok := t.Column(c.Name); ok {
			cols = append(cols, ac)
		}
	}
	return cols
}

// column converts c to its Atlas form.
func (m *Migrate) column(c *Column) (*atlas.Column, error) {
	typ, err := m.columnType(c)
	if err != nil {
		return nil, err
	}
	ac := atlas.NewColumn(c.Name).SetType(typ).SetNull(c.Nullable)
	if c.Comment != "" {
		ac.SetComment(c.Comment)
	}
	if c.Increment {
		switch m.dialect {
		case dialect.SQLite:
			ac.AddAttrs(&sqlite.AutoIncrement{})
		case dialect.MySQL:
			ac.AddAttrs(&mysql.AutoIncrement{})
		case dialect.Postgres:
			ac.AddAttrs(&postgres.Identity{Generation: "BY DEFAULT"})
		}
	}
	if x, ok := m.defaultExpr(c); ok {
		ac.SetDefault(x)
	}
	return ac, nil
}

// columnType returns the database type of c.
func (m *Migrate) columnType(c *Column) (atlas.Type, error) {
	switch m.dialect {
	case dialect.SQLite:
		switch c.Type {
		case field.TypeBool:
			return &atlas.BoolType{T: "bool"}, nil
		case field.TypeInt64:
			return &atlas.IntegerType{T: "integer"}, nil
		case field.TypeString, field.TypeText:
			return &atlas.StringType{T: "text"}, nil
		case field.TypeTime:
			return &atlas.TimeType{T: "datetime"}, nil
		}
	case dialect.MySQL:
		switch c.Type {
		case field.TypeBool:
			return &atlas.BoolType{T: "bool"}, nil
		case field.TypeInt64:
			return &atlas.IntegerType{T: "bigint"}, nil
		case field.TypeString:
			size := c.Size
			if size == 0 {
				size = 255
			}
			return &atlas.StringType{T: "varchar", Size: int(size)}, nil
		case field.TypeText:
			return &atlas.StringType{T: "longtext"}, nil
		case field.TypeTime:
			return &atlas.TimeType{T: "timestamp"}, nil
		}
	case dialect.Postgres:
		switch c.Type {
		case field.TypeBool:
			return &atlas.BoolType{T: "boolean"}, nil
		case field.TypeInt64:
			return &atlas.IntegerType{T: "bigint"}, nil
		case field.TypeString:
			if c.Size > 0 {
				return &atlas.StringType{T: "character varying", Size: int(c.Size)}, nil
			}
			return &atlas.StringType{T: "character varying"}, nil
		case field.TypeText:
			return &atlas.StringType{T: "text"}, nil
		case field.TypeTime:
			return &atlas.TimeType{T: "timestamp with time zone"}, nil
		}
	}
	return nil, fmt.Errorf("column %q: unsupported type %s for dialect %s", c.Name, c.Type, m.dialect)
}

// defaultExpr returns the literal default of c. Defaults computed at
// runtime, like creation times, are left to the store.
func (m *Migrate) defaultExpr(c *Column) (atlas.Expr, bool) {
	switch v := c.Default.(type) {
	case bool:
		if m.dialect == dialect.MySQL {
			if v {
				return &atlas.Literal{V: "1"}, true
			}
			return &atlas.Literal{V: "0"}, true
		}
		return &atlas.Literal{V: strconv.FormatBool(v)}, true
	case int64:
		return &atlas.Literal{V: strconv.FormatInt(v, 10)}, true
	case int:
		return &atlas.Literal{V: strconv.Itoa(v)}, true
	case string:
		if c.Type == field.TypeText && m.dialect == dialect.MySQL {
			// MySQL rejects literal defaults on TEXT columns.
			return nil, false
		}
		return &atlas.Literal{V: "'" + strings.ReplaceAll(v, "'", "''") + "'"}, true
	}
	return nil, false
}
