package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/modelkit/modelkit/dialect/sql/schema"
	"github.com/modelkit/modelkit/schema/field"
)

// Tables returns the database layout of the registered tables, ordered by
// name. Every table gets an auto-increment id primary key. Belongs-to
// edges become foreign keys that set the referencing column to null when
// the referenced row is deleted, or take no action when the column is
// required.
func (c *Client) Tables() ([]*schema.Table, error) {
	c.mu.RLock()
	tables := make([]*Table, 0, len(c.tables))
	for _, t := range c.tables {
		tables = append(tables, t)
	}
	c.mu.RUnlock()
	sort.Slice(tables, func(i, j int) bool { return tables[i].name < tables[j].name })

	layout := make(map[string]*schema.Table, len(tables))
	out := make([]*schema.Table, len(tables))
	for i, t := range tables {
		st := schema.NewTable(t.name).
			AddPrimary(&schema.Column{Name: IDColumn, Type: field.TypeInt64, Increment: true})
		for _, f := range t.fields {
			st.AddColumn(column(f))
		}
		layout[t.name] = st
		out[i] = st
	}
	for _, t := range tables {
		st := layout[t.name]
		seen := make(map[string]bool)
		for _, name := range t.edgeNames {
			e := t.edges[name]
			if !e.Inverse() || seen[e.Field] {
				continue
			}
			seen[e.Field] = true
			target, err := t.target(e)
			if err != nil {
				return nil, err
			}
			ref := layout[target.name]
			col, _ := st.Column(e.Field)
			refID, _ := ref.Column(IDColumn)
			fk := &schema.ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_%s", t.name, ref.Name, e.Field),
				Columns:    []*schema.Column{col},
				RefTable:   ref,
				RefColumns: []*schema.Column{refID},
				OnDelete:   schema.NoAction,
			}
			if col.Nullable {
				fk.OnDelete = schema.SetNull
			}
			st.AddForeignKey(fk)
		}
	}
	return out, nil
}

// column returns the column of a field. Optional fields without a static
// default are nullable.
func column(f *field.Descriptor) *schema.Column {
	c := &schema.Column{
		Name:     f.Name,
		Type:     f.Info.Type,
		Unique:   f.Unique,
		Nullable: f.Nillable,
		Comment:  f.Comment,
	}
	switch v := f.Default.(type) {
	case bool, int64, string:
		c.Default = v
	}
	if f.Optional && c.Default == nil {
		c.Nullable = true
	}
	return c
}

// Migrate creates the registered tables, and adds the columns and indexes
// they are missing. Nothing is dropped unless opts allow it.
//
//	if err := client.Migrate(ctx); err != nil {
//		log.Fatalf("failed creating schema resources: %v", err)
//	}
func (c *Client) Migrate(ctx context.Context, opts ...schema.MigrateOption) error {
	m, err := c.migrator(opts)
	if err != nil {
		return err
	}
	tables, err := c.Tables()
	if err != nil {
		return err
	}
	c.log.InfoContext(ctx, "store: migrating schema", "tables", len(tables))
	return m.Create(ctx, tables...)
}

// MigratePlan returns the statements Migrate would execute.
func (c *Client) MigratePlan(ctx context.Context, opts ...schema.MigrateOption) ([]string, error) {
	m, err := c.migrator(opts)
	if err != nil {
		return nil, err
	}
	tables, err := c.Tables()
	if err != nil {
		return nil, err
	}
	return m.Plan(ctx, tables...)
}

func (c *Client) migrator(opts []schema.MigrateOption) (*schema.Migrate, error) {
	return schema.NewMigrate(c.drv, append([]schema.MigrateOption{schema.WithLogger(c.log)}, opts...)...)
}
