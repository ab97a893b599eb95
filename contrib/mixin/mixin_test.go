package mixin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/dialect/sql"
	"github.com/modelkit/modelkit/schema/edge"
	"github.com/modelkit/modelkit/schema/field"
)

type mutation struct {
	op     modelkit.Op
	fields map[string]modelkit.Value
	old    map[string]modelkit.Value
}

func newMutation(op modelkit.Op, fields map[string]modelkit.Value) *mutation {
	if fields == nil {
		fields = make(map[string]modelkit.Value)
	}
	return &mutation{op: op, fields: fields}
}

func (m *mutation) Op() modelkit.Op { return m.op }
func (m *mutation) Type() string    { return "Post" }
func (m *mutation) Fields() []string {
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	return names
}

func (m *mutation) Field(name string) (modelkit.Value, bool) {
	v, ok := m.fields[name]
	return v, ok
}

func (m *mutation) SetField(name string, v modelkit.Value) error {
	m.fields[name] = v
	return nil
}

func (m *mutation) ClearField(name string) error {
	m.fields[name] = nil
	return nil
}

func (m *mutation) OldField(_ context.Context, name string) (modelkit.Value, error) {
	if m.old == nil {
		return nil, errors.New("old values not available")
	}
	return m.old[name], nil
}

func run(hooks []modelkit.Hook, m modelkit.Mutation) error {
	mutator := modelkit.NewChain(hooks...).Hook()(modelkit.MutateFunc(func(context.Context, modelkit.Mutation) (modelkit.Value, error) {
		return nil, nil
	}))
	_, err := mutator.Mutate(context.Background(), m)
	return err
}

func where(d string, preds ...Predicate) (string, []any) {
	s := sql.Dialect(d).Select("id").From(sql.Table("posts"))
	for _, p := range preds {
		p(s)
	}
	return s.Query()
}

func TestActiveStatus(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		a := NewActiveStatus(config.Map{})
		assert.Equal(t, "is_active", a.Field())

		fields := a.Fields()
		require.Len(t, fields, 1)
		desc := fields[0].Descriptor()
		assert.Equal(t, "is_active", desc.Name)
		assert.Equal(t, field.TypeBool, desc.Info.Type)
		assert.False(t, desc.Immutable)
		assert.Nil(t, a.Hooks())
		assert.Nil(t, a.Edges())
	})

	t.Run("Filters", func(t *testing.T) {
		a := NewActiveStatus(config.Map{})
		query, args := where("sqlite", a.Active())
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."is_active" = ?`, query)
		assert.Equal(t, []any{true}, args)

		_, args = where("sqlite", a.Inactive())
		assert.Equal(t, []any{false}, args)

		query, args = where("postgres", a.Status(true))
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."is_active" = $1`, query)
		assert.Equal(t, []any{true}, args)
	})

	t.Run("Configured", func(t *testing.T) {
		conf := config.Map{config.KeyActiveField: "status"}
		a := NewActiveStatus(conf)
		assert.Equal(t, "status", a.Field())
		assert.Equal(t, "status", a.Fields()[0].Descriptor().Name)

		query, _ := where("mysql", a.Active())
		assert.Equal(t, "SELECT `id` FROM `posts` WHERE `posts`.`status` = ?", query)
	})

	t.Run("FiltersReResolve", func(t *testing.T) {
		conf := config.Map{}
		a := NewActiveStatus(conf)
		conf[config.KeyActiveField] = "enabled"
		assert.Equal(t, "is_active", a.Field(), "declared field keeps its attachment name")
		query, _ := where("sqlite", a.Active())
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."enabled" = ?`, query)
	})
}

func TestLanguage(t *testing.T) {
	l := NewLanguage(config.Map{})
	assert.Equal(t, "lang", l.Field())
	require.Len(t, l.Fields(), 1)
	assert.Equal(t, field.TypeString, l.Fields()[0].Descriptor().Info.Type)

	tests := []struct {
		name  string
		pred  Predicate
		query string
		args  []any
	}{
		{"Lang", l.Lang("en"), `SELECT "id" FROM "posts" WHERE "posts"."lang" = ?`, []any{"en"}},
		{"LangNot", l.LangNot("en"), `SELECT "id" FROM "posts" WHERE "posts"."lang" <> ?`, []any{"en"}},
		{"LangIn", l.LangIn("en", "tr"), `SELECT "id" FROM "posts" WHERE "posts"."lang" IN (?, ?)`, []any{"en", "tr"}},
		{"LangNotIn", l.LangNotIn("de"), `SELECT "id" FROM "posts" WHERE "posts"."lang" NOT IN (?)`, []any{"de"}},
		{"LangInEmpty", l.LangIn(), `SELECT "id" FROM "posts" WHERE 1 = 0`, nil},
		{"LangNotInEmpty", l.LangNotIn(), `SELECT "id" FROM "posts" WHERE 1 = 1`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := where("sqlite", tt.pred)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.args, args)
		})
	}

	t.Run("Configured", func(t *testing.T) {
		l := NewLanguage(config.Map{config.KeyLanguageField: "locale"})
		assert.Equal(t, "locale", l.Field())
		query, _ := where("sqlite", l.Lang("en"))
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."locale" = ?`, query)
	})
}

func TestSluggableFields(t *testing.T) {
	t.Run("Generic", func(t *testing.T) {
		s := NewSluggable(config.Map{
			config.KeySlugField:  "permalink",
			config.KeyTitleField: "headline",
		})
		assert.Equal(t, "permalink", s.SlugField())
		assert.Equal(t, "headline", s.SourceField())
		assert.False(t, s.AlwaysRegenerates())
		fields := s.Fields()
		require.Len(t, fields, 1)
		assert.Equal(t, "permalink", fields[0].Descriptor().Name)
		assert.Len(t, s.Hooks(), 2)
	})

	t.Run("Title", func(t *testing.T) {
		s := NewSluggableTitle()
		fields := s.Fields()
		require.Len(t, fields, 2)
		assert.Equal(t, "slug", fields[0].Descriptor().Name)
		assert.Equal(t, "title", fields[1].Descriptor().Name)
	})

	t.Run("Name", func(t *testing.T) {
		s := NewSluggableName()
		assert.True(t, s.AlwaysRegenerates())
		assert.Equal(t, "name", s.SourceField())
		assert.Equal(t, "name", s.Fields()[1].Descriptor().Name)
	})
}

func TestSluggableCreate(t *testing.T) {
	tests := []struct {
		name   string
		mixin  Sluggable
		fields map[string]modelkit.Value
		want   modelkit.Value
	}{
		{"FromTitle", NewSluggableTitle(), map[string]modelkit.Value{"title": "My Blog Post"}, "my-blog-post"},
		{"ExplicitWins", NewSluggableTitle(), map[string]modelkit.Value{"title": "My Blog Post", "slug": "custom"}, "custom"},
		{"EmptySlug", NewSluggableTitle(), map[string]modelkit.Value{"title": "Hello World", "slug": ""}, "hello-world"},
		{"NilSlug", NewSluggableTitle(), map[string]modelkit.Value{"title": "Hello World", "slug": nil}, "hello-world"},
		{"NoTitle", NewSluggableTitle(), nil, ""},
		{"Punctuation", NewSluggableTitle(), map[string]modelkit.Value{"title": "Hello, World! #$%"}, "hello-world"},
		{"NameAlways", NewSluggableName(), map[string]modelkit.Value{"name": "Product 123", "slug": "custom"}, "product-123"},
		{"Generic", NewSluggable(config.Map{config.KeyTitleField: "headline"}), map[string]modelkit.Value{"headline": "Breaking News"}, "breaking-news"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMutation(modelkit.OpCreate, tt.fields)
			require.NoError(t, run(tt.mixin.Hooks(), m))
			v, ok := m.Field(tt.mixin.SlugField())
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestSluggableUpdate(t *testing.T) {
	t.Run("TitleChanged", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"title": "Updated Blog Post"})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		assert.Equal(t, "updated-blog-post", m.fields["slug"])
	})

	t.Run("TitleUnchanged", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"lang": "en"})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		_, ok := m.fields["slug"]
		assert.False(t, ok, "stored slug is left alone")
	})

	t.Run("ExplicitSlugWins", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"title": "New", "slug": "kept"})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		assert.Equal(t, "kept", m.fields["slug"])
	})

	t.Run("ClearedSlugUsesStoredTitle", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"slug": ""})
		m.old = map[string]modelkit.Value{"title": "Stored Title"}
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		assert.Equal(t, "stored-title", m.fields["slug"])
	})

	t.Run("BulkUpdate", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdate, map[string]modelkit.Value{"title": "Same For All"})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		assert.Equal(t, "same-for-all", m.fields["slug"])

		m = newMutation(modelkit.OpUpdate, map[string]modelkit.Value{"slug": ""})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		assert.Equal(t, "", m.fields["slug"])
	})

	t.Run("NameAlwaysRegenerates", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"slug": "manual"})
		m.old = map[string]modelkit.Value{"name": "Stored Name"}
		require.NoError(t, run(NewSluggableName().Hooks(), m))
		assert.Equal(t, "stored-name", m.fields["slug"])
	})

	t.Run("OldFieldError", func(t *testing.T) {
		m := newMutation(modelkit.OpUpdateOne, nil)
		err := run(NewSluggableName().Hooks(), m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading name for slug")
	})

	t.Run("DeleteIgnored", func(t *testing.T) {
		m := newMutation(modelkit.OpDelete, map[string]modelkit.Value{"title": "x"})
		require.NoError(t, run(NewSluggableTitle().Hooks(), m))
		_, ok := m.fields["slug"]
		assert.False(t, ok)
	})
}

func TestSluggableFilters(t *testing.T) {
	s := NewSluggableTitle()
	tests := []struct {
		name  string
		pred  Predicate
		query string
		args  []any
	}{
		{"Slug", s.Slug("hello"), `SELECT "id" FROM "posts" WHERE "posts"."slug" = ?`, []any{"hello"}},
		{"SlugLike", s.SlugLike("ell"), `SELECT "id" FROM "posts" WHERE "posts"."slug" LIKE ?`, []any{"%ell%"}},
		{"SlugNot", s.SlugNot("hello"), `SELECT "id" FROM "posts" WHERE "posts"."slug" <> ?`, []any{"hello"}},
		{"SlugNotLike", s.SlugNotLike("ell"), `SELECT "id" FROM "posts" WHERE "posts"."slug" NOT LIKE ?`, []any{"%ell%"}},
		{"SlugIn", s.SlugIn("a", "b"), `SELECT "id" FROM "posts" WHERE "posts"."slug" IN (?, ?)`, []any{"a", "b"}},
		{"SlugNotIn", s.SlugNotIn("a"), `SELECT "id" FROM "posts" WHERE "posts"."slug" NOT IN (?)`, []any{"a"}},
		{"Chained", sql.AndPredicates(s.Slug("a"), s.SlugNot("b")), `SELECT "id" FROM "posts" WHERE ("posts"."slug" = ? AND "posts"."slug" <> ?)`, []any{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := where("sqlite", tt.pred)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.args, args)
		})
	}

	t.Run("GenericReResolves", func(t *testing.T) {
		conf := config.Map{}
		s := NewSluggable(conf)
		conf[config.KeySlugField] = "permalink"
		query, _ := where("sqlite", s.Slug("x"))
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."permalink" = ?`, query)
	})
}

func TestParentChild(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		p := NewParentChild(config.Map{})
		assert.Equal(t, "parent_id", p.ParentField())
		fields := p.Fields()
		require.Len(t, fields, 1)
		desc := fields[0].Descriptor()
		assert.Equal(t, field.TypeInt64, desc.Info.Type)
		assert.True(t, desc.Nillable)
		assert.True(t, desc.Optional)
	})

	t.Run("Edges", func(t *testing.T) {
		p := NewParentChild(config.Map{})
		edges := make(map[string]*edge.Descriptor)
		for _, e := range p.Edges() {
			d := e.Descriptor()
			edges[d.Name] = d
			assert.True(t, d.Self(), d.Name)
			assert.Equal(t, "parent_id", d.Field, d.Name)
		}
		require.Len(t, edges, 5)

		assert.True(t, edges[EdgeParent].Inverse())
		assert.True(t, edges[EdgeParent].Unique)
		assert.False(t, edges[EdgeParent].Recursive())

		assert.False(t, edges[EdgeChildren].Inverse())
		assert.False(t, edges[EdgeChildren].Unique)

		assert.True(t, edges[EdgeRecursiveParent].Recursive())
		assert.True(t, edges[EdgeRecursiveParent].Unique)
		assert.True(t, edges[EdgeRecursiveChildren].Recursive())
		assert.False(t, edges[EdgeRecursiveChildren].Unique)

		both := edges[EdgeRecursiveParentAndChildren]
		assert.True(t, both.Inverse())
		assert.True(t, both.Recursive())
		assert.Equal(t, []string{EdgeRecursiveParentAndChildren, EdgeRecursiveChildren}, both.Eager)
	})

	t.Run("Configured", func(t *testing.T) {
		p := NewParentChild(config.Map{config.KeyParentField: "category_id"})
		assert.Equal(t, "category_id", p.ParentField())
		for _, e := range p.Edges() {
			assert.Equal(t, "category_id", e.Descriptor().Field)
		}

		legacy := NewParentChild(config.Map{config.KeyLegacyParentField: "custom_parent_id"})
		assert.Equal(t, "custom_parent_id", legacy.ParentField())
	})

	t.Run("Filters", func(t *testing.T) {
		p := NewParentChild(config.Map{})
		query, args := where("sqlite", p.Roots())
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."parent_id" IS NULL`, query)
		assert.Nil(t, args)

		query, args = where("sqlite", p.ChildrenOf(7))
		assert.Equal(t, `SELECT "id" FROM "posts" WHERE "posts"."parent_id" = ?`, query)
		assert.Equal(t, []any{int64(7)}, args)
	})
}

func TestNilResolverUsesDefault(t *testing.T) {
	prev := config.SetDefault(config.Map{config.KeyLanguageField: "locale"})
	t.Cleanup(func() { config.SetDefault(prev) })

	assert.Equal(t, "locale", NewLanguage(nil).Field())
	assert.Equal(t, "is_active", NewActiveStatus(nil).Field())
}
