package mixin

import (
	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/field"
	"github.com/modelkit/modelkit/schema/mixin"
)

// ActiveStatus adds a boolean status column, is_active unless
// has_active.is_active says otherwise. Values read back from the store
// are coerced to bool.
type ActiveStatus struct {
	mixin.Schema
	conf  config.Resolver
	field string
}

// NewActiveStatus returns an ActiveStatus mixin reading its column name
// from r.
func NewActiveStatus(r config.Resolver) ActiveStatus {
	r = resolver(r)
	return ActiveStatus{
		conf:  r,
		field: r.Get(config.KeyActiveField, config.DefaultActiveField),
	}
}

// Fields of the mixin.
func (a ActiveStatus) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.Bool(a.field).
			Optional().
			Comment("Whether the row is active"),
	}
}

// Field returns the column name resolved when the mixin was built.
func (a ActiveStatus) Field() string { return a.field }

func (a ActiveStatus) column() sql.BoolField[Predicate] {
	return sql.BoolField[Predicate](resolver(a.conf).Get(config.KeyActiveField, config.DefaultActiveField))
}

// Status filters rows whose status equals v.
func (a ActiveStatus) Status(v bool) Predicate { return a.column().EQ(v) }

// Active filters active rows.
func (a ActiveStatus) Active() Predicate { return a.Status(true) }

// Inactive filters inactive rows.
func (a ActiveStatus) Inactive() Predicate { return a.Status(false) }

var _ modelkit.Mixin = (*ActiveStatus)(nil)
