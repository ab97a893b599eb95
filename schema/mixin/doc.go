// Package mixin provides the base mixin implementation and the timestamp
// mixins.
//
// A mixin is a reusable set of fields, edges and hooks that can be
// embedded in multiple schema definitions:
//
//	type Post struct{ modelkit.Schema }
//
//	func (Post) Mixin() []modelkit.Mixin {
//	    return []modelkit.Mixin{
//	        mixin.Time{},
//	    }
//	}
//
// The resulting table has:
//   - created_at (time.Time, immutable)
//   - updated_at (time.Time, refreshed on every update)
//
// # Creating Custom Mixins
//
// Embed Schema and override the methods you need:
//
//	type AuditMixin struct {
//	    mixin.Schema
//	}
//
//	func (AuditMixin) Fields() []modelkit.Field {
//	    return []modelkit.Field{
//	        field.String("created_by").Optional(),
//	    }
//	}
//
//	func (AuditMixin) Hooks() []modelkit.Hook {
//	    return []modelkit.Hook{
//	        modelkit.Before(modelkit.OpCreate, func(ctx context.Context, m modelkit.Mutation) error {
//	            return m.SetField("created_by", userFromContext(ctx))
//	        }),
//	    }
//	}
//
// The model behaviors (active flag, slugs, hierarchy, language) live in
// contrib/mixin.
package mixin
