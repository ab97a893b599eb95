// Package modelkit defines the contracts shared by the modelkit packages:
// mutations and the hooks that run before they are persisted, schemas and
// the mixins attached to them, and the field and edge descriptors a schema
// contributes to the store.
//
// A schema embeds Schema and lists its mixins:
//
//	type Post struct{ modelkit.Schema }
//
//	func (Post) Mixin() []modelkit.Mixin {
//	    return []modelkit.Mixin{
//	        mixin.NewSluggableTitle(),
//	        mixin.NewActiveStatus(nil),
//	    }
//	}
//
// The store attaches the schema with store.Client.Register, which collects
// the fields, edges and hooks contributed by the schema and its mixins.
package modelkit

import (
	"context"
	"strconv"

	"github.com/modelkit/modelkit/schema/edge"
	"github.com/modelkit/modelkit/schema/field"
)

type (
	// Value represents a value returned by a mutation or a field accessor.
	Value any

	// Interface is the interface a schema must implement to be registered
	// in the store. Embed Schema to get the default implementation.
	Interface interface {
		// Type is a dummy method used to distinguish schemas
		// from other types.
		Type()
		// Fields returns the fields declared by the schema itself.
		Fields() []Field
		// Edges returns the edges declared by the schema itself.
		Edges() []Edge
		// Mixin returns the mixins attached to the schema.
		Mixin() []Mixin
		// Hooks returns the mutation hooks of the schema.
		Hooks() []Hook
		// Config returns optional storage settings.
		Config() Config
	}

	// Field is the interface implemented by the field builders.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// Edge is the interface implemented by the edge builders.
	Edge interface {
		Descriptor() *edge.Descriptor
	}

	// Mixin is a reusable set of fields, edges and hooks that can be
	// attached to any schema.
	Mixin interface {
		Fields() []Field
		Edges() []Edge
		Hooks() []Hook
	}

	// Config holds storage settings of a schema.
	Config struct {
		// Table overrides the table name derived from the schema type name.
		Table string
	}

	// Schema is the default implementation of Interface.
	Schema struct{}
)

// Type is a dummy method to satisfy Interface.
func (Schema) Type() {}

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Edges of the schema.
func (Schema) Edges() []Edge { return nil }

// Mixin of the schema.
func (Schema) Mixin() []Mixin { return nil }

// Hooks of the schema.
func (Schema) Hooks() []Hook { return nil }

// Config of the schema.
func (Schema) Config() Config { return Config{} }

var _ Interface = (*Schema)(nil)

// Op represents the operation of a mutation.
type Op uint

// Mutation operations.
const (
	OpCreate    Op = 1 << iota // node creation.
	OpUpdate                   // update nodes by predicate.
	OpUpdateOne                // update one node.
	OpDelete                   // delete nodes by predicate.
	OpDeleteOne                // delete one node.
)

// Is reports whether o is match the given operation.
func (i Op) Is(o Op) bool { return i&o != 0 }

var opNames = [...]string{
	OpCreate:    "OpCreate",
	OpUpdate:    "OpUpdate",
	OpUpdateOne: "OpUpdateOne",
	OpDelete:    "OpDelete",
	OpDeleteOne: "OpDeleteOne",
}

// String returns the name of the operation.
func (i Op) String() string {
	if int(i) < len(opNames) && opNames[i] != "" {
		return opNames[i]
	}
	return "Op(" + strconv.FormatUint(uint64(i), 10) + ")"
}

// Mutation represents an operation that mutates the rows of one type.
// Hooks receive it before the statement is executed and may read or
// rewrite its pending field values.
type Mutation interface {
	// Op returns the operation name.
	Op() Op
	// Type returns the schema type name of this mutation.
	Type() string
	// Fields returns all fields that were changed during this mutation.
	Fields() []string
	// Field returns the value of a field with the given name. The second
	// boolean return value indicates that this field was not set, or was
	// not defined in the schema.
	Field(name string) (Value, bool)
	// SetField sets the value of a field with the given name. It returns
	// an error if the field is not defined in the schema, or if the type
	// mismatched the field type.
	SetField(name string, value Value) error
	// ClearField sets the field to NULL. It returns an error if the field
	// is not nillable.
	ClearField(name string) error
	// OldField returns the stored value of the field. It is available
	// only on OpUpdateOne mutations.
	OldField(ctx context.Context, name string) (Value, error)
}

// Mutator is the interface that wraps the Mutate method.
type Mutator interface {
	// Mutate applies the given mutation on the graph.
	Mutate(context.Context, Mutation) (Value, error)
}

// The MutateFunc type is an adapter to allow the use of ordinary
// function as Mutator. If f is a function with the appropriate
// signature, MutateFunc(f) is a Mutator that calls f.
type MutateFunc func(context.Context, Mutation) (Value, error)

// Mutate calls f(ctx, m).
func (f MutateFunc) Mutate(ctx context.Context, m Mutation) (Value, error) {
	return f(ctx, m)
}

// Hook defines the "mutation middleware". A function that gets a Mutator
// and returns a Mutator. For example:
//
//	hook := func(next modelkit.Mutator) modelkit.Mutator {
//		return modelkit.MutateFunc(func(ctx context.Context, m modelkit.Mutation) (modelkit.Value, error) {
//			// Do some stuff before.
//			if err := prepare(m); err != nil {
//				return nil, err
//			}
//			// Call the next hook in the chain.
//			return next.Mutate(ctx, m)
//		})
//	}
type Hook func(Mutator) Mutator

// On executes the given hook only for the given operation.
//
//	hook := modelkit.On(Logger, modelkit.OpCreate|modelkit.OpUpdateOne)
func On(hk Hook, op Op) Hook {
	return func(next Mutator) Mutator {
		hk := hk(next)
		return MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
			if m.Op().Is(op) {
				return hk.Mutate(ctx, m)
			}
			return next.Mutate(ctx, m)
		})
	}
}

// Before returns a hook that calls fn before the mutation is executed on
// the given operations. An error returned by fn aborts the mutation.
func Before(op Op, fn func(context.Context, Mutation) error) Hook {
	return On(func(next Mutator) Mutator {
		return MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
			if err := fn(ctx, m); err != nil {
				return nil, err
			}
			return next.Mutate(ctx, m)
		})
	}, op)
}

// Chain acts as a list of hooks and is effectively immutable.
// Once created, it will always hold the same set of hooks in the same order.
type Chain struct {
	hooks []Hook
}

// NewChain creates a new chain of hooks.
func NewChain(hooks ...Hook) Chain {
	return Chain{append([]Hook(nil), hooks...)}
}

// Hook chains the list of hooks and returns the final hook.
func (c Chain) Hook() Hook {
	return func(mutator Mutator) Mutator {
		for i := len(c.hooks) - 1; i >= 0; i-- {
			mutator = c.hooks[i](mutator)
		}
		return mutator
	}
}

// Append extends a chain, adding the specified hook
// as the last ones in the mutation flow.
func (c Chain) Append(hooks ...Hook) Chain {
	newHooks := make([]Hook, 0, len(c.hooks)+len(hooks))
	newHooks = append(newHooks, c.hooks...)
	newHooks = append(newHooks, hooks...)
	return Chain{newHooks}
}

// Len returns the number of hooks in the chain.
func (c Chain) Len() int { return len(c.hooks) }
