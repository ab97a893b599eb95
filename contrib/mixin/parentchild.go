package mixin

import (
	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/edge"
	"github.com/modelkit/modelkit/schema/field"
	"github.com/modelkit/modelkit/schema/mixin"
)

// Edge names declared by ParentChild.
const (
	// EdgeParent is the row referenced by the parent column.
	EdgeParent = "parent"
	// EdgeChildren are the rows referencing this row.
	EdgeChildren = "children"
	// EdgeRecursiveParent is the parent with its own recursive parent
	// loaded, up to a root.
	EdgeRecursiveParent = "recursive_parent"
	// EdgeRecursiveChildren are the children with their own recursive
	// children loaded, down to the leaves.
	EdgeRecursiveChildren = "recursive_children"
	// EdgeRecursiveParentAndChildren is the recursive parent where every
	// ancestor also has its recursive children loaded.
	EdgeRecursiveParentAndChildren = "recursive_parent_and_children"
)

// ParentChild makes a schema self-referencing through a nullable parent
// column, parent_id unless configured otherwise. Cycles in the stored
// hierarchy make the recursive edges load forever.
type ParentChild struct {
	mixin.Schema
	conf  config.Resolver
	field string
}

// NewParentChild returns a ParentChild mixin reading its column name from r.
// See config.ParentField for the keys consulted.
func NewParentChild(r config.Resolver) ParentChild {
	r = resolver(r)
	return ParentChild{conf: r, field: config.ParentField(r)}
}

// Fields of the mixin.
func (p ParentChild) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.Int64(p.field).
			Optional().
			Nillable().
			Comment("Parent row, null for roots"),
	}
}

// Edges of the mixin.
func (p ParentChild) Edges() []modelkit.Edge {
	return []modelkit.Edge{
		edge.From(EdgeParent).
			Field(p.field),
		edge.To(EdgeChildren).
			Field(p.field),
		edge.From(EdgeRecursiveParent).
			Field(p.field).
			Eager(EdgeRecursiveParent),
		edge.To(EdgeRecursiveChildren).
			Field(p.field).
			Eager(EdgeRecursiveChildren),
		edge.From(EdgeRecursiveParentAndChildren).
			Field(p.field).
			Eager(EdgeRecursiveParentAndChildren, EdgeRecursiveChildren),
	}
}

// ParentField returns the column name resolved when the mixin was built.
func (p ParentChild) ParentField() string { return p.field }

func (p ParentChild) column() sql.Int64Field[Predicate] {
	return sql.Int64Field[Predicate](config.ParentField(resolver(p.conf)))
}

// Roots filters rows without a parent.
func (p ParentChild) Roots() Predicate { return p.column().IsNull() }

// ChildrenOf filters the direct children of the row with the given id.
func (p ParentChild) ChildrenOf(id int64) Predicate { return p.column().EQ(id) }

var _ modelkit.Mixin = (*ParentChild)(nil)
