package mixin

import (
	"context"
	"time"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/schema/field"
)

// Schema is the default implementation for the modelkit.Mixin interface.
// It should be embedded in all custom mixin definitions.
//
// Example:
//
//	type MyMixin struct {
//	    mixin.Schema
//	}
//
//	func (MyMixin) Fields() []modelkit.Field {
//	    return []modelkit.Field{
//	        field.String("custom_field"),
//	    }
//	}
type Schema struct{}

// Fields returns the fields of the mixin.
// Override this method to add custom fields.
func (Schema) Fields() []modelkit.Field { return nil }

// Edges returns the edges of the mixin.
// Override this method to add custom edges/relationships.
func (Schema) Edges() []modelkit.Edge { return nil }

// Hooks returns the hooks of the mixin.
// Override this method to add mutation lifecycle hooks.
func (Schema) Hooks() []modelkit.Hook { return nil }

// schema mixin must implement `Mixin` interface.
var _ modelkit.Mixin = (*Schema)(nil)

// now is replaced in tests.
var now = time.Now

// Time adds created_at and updated_at timestamp fields to a schema.
// created_at is set on creation and is immutable. updated_at is set on
// creation and refreshed by a hook on every update.
//
// Example:
//
//	func (Post) Mixin() []modelkit.Mixin {
//	    return []modelkit.Mixin{
//	        mixin.Time{},
//	    }
//	}
type Time struct {
	Schema
}

// Fields returns the time tracking fields.
func (Time) Fields() []modelkit.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// Hooks returns the updated_at hook.
func (Time) Hooks() []modelkit.Hook {
	return UpdateTime{}.Hooks()
}

// CreateTime adds only created_at timestamp field to a schema.
type CreateTime struct {
	Schema
}

// Fields returns the created_at field.
func (CreateTime) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.Time("created_at").
			Default(now).
			Immutable().
			Comment("Timestamp when the row was created"),
	}
}

// UpdateTime adds only updated_at timestamp field to a schema.
type UpdateTime struct {
	Schema
}

// Fields returns the updated_at field.
func (UpdateTime) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.Time("updated_at").
			Default(now).
			Comment("Timestamp when the row was last updated"),
	}
}

// Hooks returns a hook that stamps updated_at on updates, unless the
// caller set it explicitly.
func (UpdateTime) Hooks() []modelkit.Hook {
	return []modelkit.Hook{
		modelkit.Before(modelkit.OpUpdate|modelkit.OpUpdateOne, func(_ context.Context, m modelkit.Mutation) error {
			if _, ok := m.Field("updated_at"); ok {
				return nil
			}
			return m.SetField("updated_at", now())
		}),
	}
}

// SoftDelete adds a deleted_at field. Rows with a non-null deleted_at are
// considered deleted but remain in the table.
type SoftDelete struct {
	Schema
}

// Fields returns the soft delete field.
func (SoftDelete) Fields() []modelkit.Field {
	return []modelkit.Field{
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("Timestamp when the row was soft deleted (nil means not deleted)"),
	}
}

// TimeSoftDelete combines Time and SoftDelete mixins.
type TimeSoftDelete struct {
	Schema
}

// Fields returns all timestamp and soft delete fields.
func (TimeSoftDelete) Fields() []modelkit.Field {
	return append(Time{}.Fields(), SoftDelete{}.Fields()...)
}

// Hooks returns the updated_at hook.
func (TimeSoftDelete) Hooks() []modelkit.Hook {
	return Time{}.Hooks()
}

var (
	_ modelkit.Mixin = (*Time)(nil)
	_ modelkit.Mixin = (*CreateTime)(nil)
	_ modelkit.Mixin = (*UpdateTime)(nil)
	_ modelkit.Mixin = (*SoftDelete)(nil)
	_ modelkit.Mixin = (*TimeSoftDelete)(nil)
)
