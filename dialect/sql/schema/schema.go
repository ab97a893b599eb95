// Package schema creates and upgrades the tables of registered schemas.
//
// Tables are described with Table and Column values, usually built by
// store.Client.Tables, and applied with a Migrate. The migrator inspects
// the live database, computes the difference with Atlas and executes it.
//
//	m, err := schema.NewMigrate(drv)
//	if err != nil {
//		return err
//	}
//	err = m.Create(ctx, tables...)
package schema

import (
	"github.com/modelkit/modelkit/schema/field"
)

// Table describes a database table.
type Table struct {
	Name        string
	Columns     []*Column
	Indexes     []*Index
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	Comment     string
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddPrimary adds a new primary key column to the table.
func (t *Table) AddPrimary(c *Column) *Table {
	c.Key = PrimaryKey
	t.AddColumn(c)
	t.PrimaryKey = append(t.PrimaryKey, c)
	return t
}

// AddColumn adds a column to the table.
func (t *Table) AddColumn(c *Column) *Table {
	t.Columns = append(t.Columns, c)
	return t
}

// AddIndex creates and adds a new index to the table from the given options.
func (t *Table) AddIndex(name string, unique bool, columns []string) *Table {
	idx := &Index{Name: name, Unique: unique}
	for _, name := range columns {
		if c, ok := t.Column(name); ok {
			idx.Columns = append(idx.Columns, c)
		}
	}
	t.Indexes = append(t.Indexes, idx)
	return t
}

// AddForeignKey adds a foreign key to the table.
func (t *Table) AddForeignKey(fk *ForeignKey) *Table {
	t.ForeignKeys = append(t.ForeignKeys, fk)
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Key types of columns.
const (
	PrimaryKey = "PRI"
	UniqueKey  = "UNI"
)

// Column describes a table column.
type Column struct {
	Name      string
	Type      field.Type
	Size      int64 // max size of varchar columns, 0 for the dialect default.
	Key       string
	Unique    bool
	Increment bool
	Nullable  bool
	Default   any // static default value, nil for none.
	Comment   string
}

// UniqueKey reports whether the column has a unique key.
func (c *Column) UniqueKey() bool { return c.Key == UniqueKey || c.Unique }

// PrimaryKey reports whether the column is part of the primary key.
func (c *Column) PrimaryKey() bool { return c.Key == PrimaryKey }

// Index describes a table index.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
}

// ReferenceOption is the action taken on a referencing row when the
// referenced row is deleted.
type ReferenceOption string

// Reference options.
const (
	NoAction ReferenceOption = "NO ACTION"
	Restrict ReferenceOption = "RESTRICT"
	Cascade  ReferenceOption = "CASCADE"
	SetNull  ReferenceOption = "SET NULL"
)

// ForeignKey describes a foreign key constraint.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	OnDelete   ReferenceOption
}
