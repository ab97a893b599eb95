package privacy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelkit/modelkit"
	"github.com/modelkit/modelkit/config"
	"github.com/modelkit/modelkit/contrib/mixin"
	"github.com/modelkit/modelkit/internal/testdb"
	"github.com/modelkit/modelkit/privacy"
	"github.com/modelkit/modelkit/schema/field"
	"github.com/modelkit/modelkit/store"
)

func TestViewer(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, privacy.ViewerFromContext(ctx))

	v := &privacy.SimpleViewer{UserID: "7", Roles: []string{"editor"}, TenantID: "acme"}
	got := privacy.ViewerFromContext(privacy.WithViewer(ctx, v))
	require.NotNil(t, got)
	assert.Equal(t, "7", got.GetID())
	assert.Equal(t, []string{"editor"}, got.GetRoles())
	assert.Equal(t, "acme", got.GetTenantID())
}

func TestRules(t *testing.T) {
	viewer := func(v *privacy.SimpleViewer) context.Context {
		return privacy.WithViewer(context.Background(), v)
	}
	tests := []struct {
		name string
		rule privacy.MutationRule
		ctx  context.Context
		m    *mockMutation
		want error
	}{
		{
			name: "DenyIfNoViewer/Missing",
			rule: privacy.DenyIfNoViewer(),
			ctx:  context.Background(),
			want: privacy.Deny,
		},
		{
			name: "DenyIfNoViewer/Present",
			rule: privacy.DenyIfNoViewer(),
			ctx:  viewer(&privacy.SimpleViewer{UserID: "1"}),
			want: privacy.Skip,
		},
		{
			name: "HasRole/Match",
			rule: privacy.HasRole("admin"),
			ctx:  viewer(&privacy.SimpleViewer{Roles: []string{"user", "admin"}}),
			want: privacy.Allow,
		},
		{
			name: "HasRole/NoMatch",
			rule: privacy.HasRole("admin"),
			ctx:  viewer(&privacy.SimpleViewer{Roles: []string{"user"}}),
			want: privacy.Skip,
		},
		{
			name: "HasAnyRole/NoViewer",
			rule: privacy.HasAnyRole("admin", "editor"),
			ctx:  context.Background(),
			want: privacy.Skip,
		},
		{
			name: "HasAnyRole/Match",
			rule: privacy.HasAnyRole("admin", "editor"),
			ctx:  viewer(&privacy.SimpleViewer{Roles: []string{"editor"}}),
			want: privacy.Allow,
		},
		{
			name: "IsOwner/Int64",
			rule: privacy.IsOwner("author_id"),
			ctx:  viewer(&privacy.SimpleViewer{UserID: "42"}),
			m:    mutation(modelkit.OpCreate, map[string]modelkit.Value{"author_id": int64(42)}),
			want: privacy.Allow,
		},
		{
			name: "IsOwner/Other",
			rule: privacy.IsOwner("author_id"),
			ctx:  viewer(&privacy.SimpleViewer{UserID: "42"}),
			m:    mutation(modelkit.OpCreate, map[string]modelkit.Value{"author_id": int64(7)}),
			want: privacy.Skip,
		},
		{
			name: "IsOwner/Unset",
			rule: privacy.IsOwner("author_id"),
			ctx:  viewer(&privacy.SimpleViewer{UserID: "42"}),
			want: privacy.Skip,
		},
		{
			name: "TenantRule/Match",
			rule: privacy.TenantRule("tenant"),
			ctx:  viewer(&privacy.SimpleViewer{TenantID: "acme"}),
			m:    mutation(modelkit.OpCreate, map[string]modelkit.Value{"tenant": "acme"}),
			want: privacy.Allow,
		},
		{
			name: "TenantRule/Mismatch",
			rule: privacy.TenantRule("tenant"),
			ctx:  viewer(&privacy.SimpleViewer{TenantID: "acme"}),
			m:    mutation(modelkit.OpCreate, map[string]modelkit.Value{"tenant": "globex"}),
			want: privacy.Deny,
		},
		{
			name: "TenantRule/NoTenant",
			rule: privacy.TenantRule("tenant"),
			ctx:  viewer(&privacy.SimpleViewer{UserID: "1"}),
			m:    mutation(modelkit.OpCreate, map[string]modelkit.Value{"tenant": "globex"}),
			want: privacy.Skip,
		},
		{
			name: "DenyFieldChange/Set",
			rule: privacy.DenyFieldChange("slug", "is_active"),
			ctx:  context.Background(),
			m:    mutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"is_active": false}),
			want: privacy.Deny,
		},
		{
			name: "DenyFieldChange/Unset",
			rule: privacy.DenyFieldChange("is_active"),
			ctx:  context.Background(),
			m:    mutation(modelkit.OpUpdateOne, map[string]modelkit.Value{"title": "x"}),
			want: privacy.Skip,
		},
		{
			name: "DenyFieldChange/Delete",
			rule: privacy.DenyFieldChange("is_active"),
			ctx:  context.Background(),
			m:    mutation(modelkit.OpDelete, map[string]modelkit.Value{"is_active": false}),
			want: privacy.Skip,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.m
			if m == nil {
				m = mutation(modelkit.OpCreate, nil)
			}
			assert.ErrorIs(t, tt.rule.EvalMutation(tt.ctx, m), tt.want)
		})
	}
}

type article struct {
	modelkit.Schema
}

func (article) Mixin() []modelkit.Mixin {
	return []modelkit.Mixin{
		mixin.NewSluggableTitle(),
		mixin.NewActiveStatus(config.Map{}),
	}
}

func (article) Fields() []modelkit.Field {
	return []modelkit.Field{field.Int64("author_id")}
}

func TestPolicyOnTable(t *testing.T) {
	drv := testdb.Open(t, testdb.Table("articles",
		"slug TEXT", "title TEXT", "is_active BOOLEAN NOT NULL DEFAULT 1", "author_id INTEGER NOT NULL"))
	articles := store.NewClient(drv, store.WithConfig(config.Map{})).MustRegister(article{})
	articles.Use(privacy.MutationPolicy{
		privacy.DenyIfNoViewer(),
		privacy.HasRole("moderator"),
		privacy.DenyFieldChange("is_active"),
		privacy.IsOwner("author_id"),
		privacy.AlwaysDenyRule(),
	}.Hook())

	anonymous := context.Background()
	author := privacy.WithViewer(anonymous, &privacy.SimpleViewer{UserID: "42"})
	moderator := privacy.WithViewer(anonymous, &privacy.SimpleViewer{UserID: "1", Roles: []string{"moderator"}})

	_, err := articles.Create().Set("title", "Hello").Set("author_id", 42).Save(anonymous)
	assert.ErrorIs(t, err, privacy.Deny)

	row, err := articles.Create().Set("title", "Hello").Set("author_id", 42).Save(author)
	require.NoError(t, err)
	assert.Equal(t, "hello", row.String("slug"))

	_, err = articles.Create().Set("title", "Spoof").Set("author_id", 7).Save(author)
	assert.ErrorIs(t, err, privacy.Deny)

	_, err = row.Update().Set("is_active", false).Set("author_id", 42).Save(author)
	assert.ErrorIs(t, err, privacy.Deny, "status is reserved to moderators")

	row, err = row.Update().Set("is_active", false).Save(moderator)
	require.NoError(t, err)
	assert.False(t, row.Bool("is_active"))

	n, err := articles.Query().Count(anonymous)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
