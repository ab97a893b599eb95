// Package field provides fluent builders for the columns a schema or a
// mixin contributes to a table.
//
// Field names are the database column names:
//
//	field.String("slug").Optional()
//	field.Bool("active").Default(true)
//	field.Int64("parent_id").Optional().Nillable()
//
// # Nullability
//
// Optional fields may be omitted on create. Nillable fields map to nullable
// columns and can be cleared with Mutation.ClearField.
//
// # Defaults
//
// Literal defaults are applied by the store when a create mutation leaves
// the field unset. Time fields take a function:
//
//	field.Time("created_at").Default(time.Now)
//
// # Coercion
//
// Drivers differ in how they report column values. Descriptor.Coerce maps
// what the driver returned into the Go type of the field, so a SQLite
// INTEGER holding 1 reads back as true for a bool field.
package field
