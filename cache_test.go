package modelkit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("GetSetDelete", func(t *testing.T) {
		t.Parallel()
		c := NewMemoryCache()
		v, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, v)

		require.NoError(t, c.Set(ctx, "posts:select", []byte("a"), 0))
		v, err = c.Get(ctx, "posts:select")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), v)

		require.NoError(t, c.Delete(ctx, "posts:select"))
		v, _ = c.Get(ctx, "posts:select")
		assert.Nil(t, v)
	})

	t.Run("Expiry", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewMemoryCache()
		c.now = func() time.Time { return now }
		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		v, _ := c.Get(ctx, "k")
		assert.Equal(t, []byte("v"), v)

		now = now.Add(time.Minute)
		v, _ = c.Get(ctx, "k")
		assert.Nil(t, v)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("DeletePrefix", func(t *testing.T) {
		t.Parallel()
		c := NewMemoryCache()
		posts := CacheKey{Table: "posts", Operation: "select"}.String()
		tags := CacheKey{Table: "tags", Operation: "select"}.String()
		require.NoError(t, c.Set(ctx, posts, []byte("p"), 0))
		require.NoError(t, c.Set(ctx, tags, []byte("t"), 0))

		require.NoError(t, c.DeletePrefix(ctx, "posts:"))
		v, _ := c.Get(ctx, posts)
		assert.Nil(t, v)
		v, _ = c.Get(ctx, tags)
		assert.Equal(t, []byte("t"), v)

		require.NoError(t, c.Clear(ctx))
		assert.Equal(t, 0, c.Len())
	})
}

func TestCacheKeyString(t *testing.T) {
	t.Parallel()
	k := CacheKey{Table: "posts", Operation: "select", Predicates: "slug = ?|[a]", OrderBy: "id", Limit: 10, Offset: 5}
	assert.Equal(t, "posts:select:slug = ?|[a]:id:10:5", k.String())
}
