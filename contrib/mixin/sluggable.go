package mixin

import (
	"context"
	"fmt"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/field"
	"github.com/modelkit/modelkit/schema/mixin"
	"github.com/modelkit/modelkit/slug"
)

// Sluggable derives a slug column from a source column before rows are
// created or updated. A slug set by the caller wins unless the mixin
// always regenerates.
//
// On create an empty slug is derived from the source value. On update it
// is derived when the source column is part of the mutation, or when the
// caller cleared the slug; an update that leaves the source alone keeps
// the stored slug.
type Sluggable struct {
	mixin.Schema
	conf     config.Resolver // nil for fixed columns.
	slug     string
	source   string
	always   bool
	declares bool // declares the source column too.
}

// NewSluggable returns a Sluggable mixin reading the slug and source column
// names from the sluggable_fields keys of r. The source column is expected
// to be declared by the schema.
func NewSluggable(r config.Resolver) Sluggable {
	r = resolver(r)
	return Sluggable{
		conf:   r,
		slug:   r.Get(config.KeySlugField, config.DefaultSlugField),
		source: r.Get(config.KeyTitleField, config.DefaultTitleField),
	}
}

// NewSluggableTitle returns a Sluggable mixin fixed to the title and slug
// columns. It declares both.
func NewSluggableTitle() Sluggable {
	return Sluggable{
		slug:     config.DefaultSlugField,
		source:   config.DefaultTitleField,
		declares: true,
	}
}

// NewSluggableName returns a Sluggable mixin that re-derives the slug from
// the name column on every create and update, discarding any slug set by
// the caller. It declares both columns.
func NewSluggableName() Sluggable {
	return Sluggable{
		slug:     config.DefaultSlugField,
		source:   "name",
		always:   true,
		declares: true,
	}
}

// Fields of the mixin.
func (s Sluggable) Fields() []modelkit.Field {
	fields := []modelkit.Field{
		field.String(s.slug).
			Optional().
			Comment("URL friendly identifier derived from " + s.source),
	}
	if s.declares {
		fields = append(fields, field.String(s.source).Optional())
	}
	return fields
}

// Hooks of the mixin.
func (s Sluggable) Hooks() []modelkit.Hook {
	return []modelkit.Hook{
		modelkit.Before(modelkit.OpCreate, s.creating),
		modelkit.Before(modelkit.OpUpdate|modelkit.OpUpdateOne, s.updating),
	}
}

// SlugField returns the slug column resolved when the mixin was built.
func (s Sluggable) SlugField() string { return s.slug }

// SourceField returns the column the slug is derived from.
func (s Sluggable) SourceField() string { return s.source }

// AlwaysRegenerates reports whether a slug set by the caller is replaced.
func (s Sluggable) AlwaysRegenerates() bool { return s.always }

func (s Sluggable) creating(_ context.Context, m modelkit.Mutation) error {
	if v, ok := m.Field(s.slug); ok && !empty(v) && !s.always {
		return nil
	}
	src, _ := m.Field(s.source)
	return m.SetField(s.slug, slug.Make(text(src)))
}

func (s Sluggable) updating(ctx context.Context, m modelkit.Mutation) error {
	v, slugSet := m.Field(s.slug)
	if slugSet && !empty(v) && !s.always {
		return nil
	}
	src, ok := m.Field(s.source)
	if !ok {
		// Only the stored source can fill a cleared or regenerated slug.
		if (!slugSet && !s.always) || m.Op() != modelkit.OpUpdateOne {
			return nil
		}
		old, err := m.OldField(ctx, s.source)
		if err != nil {
			return fmt.Errorf("mixin: loading %s for slug: %w", s.source, err)
		}
		src = old
	}
	return m.SetField(s.slug, slug.Make(text(src)))
}

func (s Sluggable) column() sql.StringField[Predicate] {
	if s.conf == nil {
		return sql.StringField[Predicate](s.slug)
	}
	return sql.StringField[Predicate](s.conf.Get(config.KeySlugField, config.DefaultSlugField))
}

// Slug filters rows with the given slug.
func (s Sluggable) Slug(v string) Predicate { return s.column().EQ(v) }

// SlugLike filters rows whose slug contains v. LIKE wildcards in v are
// not escaped.
func (s Sluggable) SlugLike(v string) Predicate { return s.column().Contains(v) }

// SlugNot filters rows whose slug differs from v.
func (s Sluggable) SlugNot(v string) Predicate { return s.column().NEQ(v) }

// SlugNotLike filters rows whose slug does not contain v.
func (s Sluggable) SlugNotLike(v string) Predicate { return s.column().NotContains(v) }

// SlugIn filters rows whose slug is one of vs. Rows come back in stored
// order.
func (s Sluggable) SlugIn(vs ...string) Predicate { return s.column().In(vs...) }

// SlugNotIn filters rows whose slug is none of vs.
func (s Sluggable) SlugNotIn(vs ...string) Predicate { return s.column().NotIn(vs...) }

func empty(v modelkit.Value) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case *string:
		return v == nil || *v == ""
	}
	return false
}

func text(v modelkit.Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(v)
}

var _ modelkit.Mixin = (*Sluggable)(nil)
