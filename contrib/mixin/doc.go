// Package mixin provides the model behaviors of modelkit as schema mixins.
//
// Available mixins:
//   - ActiveStatus: boolean status column with Status, Active and Inactive filters
//   - Sluggable: slug derived from a configurable source column on create and update
//   - SluggableTitle: Sluggable fixed to the title and slug columns
//   - SluggableName: slug always re-derived from the name column
//   - ParentChild: self-referencing parent/children edges with recursive loading
//   - Language: language tag column with Lang filters
//
// Column names come from a config.Resolver. Constructors read them once,
// so the fields and hooks of a schema keep the names that were configured
// when the mixin was built. Filters read the resolver again on every call.
// A nil resolver means config.Default().
//
// Usage:
//
//	import "github.com/modelkit/modelkit/contrib/mixin"
//
//	func (Category) Mixin() []modelkit.Mixin {
//	    return []modelkit.Mixin{
//	        mixin.NewActiveStatus(nil),
//	        mixin.NewSluggableTitle(),
//	        mixin.NewParentChild(nil),
//	        mixin.NewLanguage(nil),
//	    }
//	}
//
// Filters plug into store queries:
//
//	active := mixin.NewActiveStatus(nil)
//	rows, err := categories.Query().Where(active.Active()).All(ctx)
package mixin

import (
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
)

// Predicate is a filter produced by the mixins. It applies to the
// selector of a store query.
type Predicate = func(*sql.Selector)

func resolver(r config.Resolver) config.Resolver {
	if r == nil {
		return config.Default()
	}
	return r
}
