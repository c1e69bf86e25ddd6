package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("should round-trip values", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)

		exists, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("should miss on expired entries", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
		time.Sleep(25 * time.Millisecond)

		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("should delete entries", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
		require.NoError(t, c.Delete(ctx, "k"))

		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("GetOrSet computes once", func(t *testing.T) {
		c := NewMemoryCache()
		defer c.Close()

		calls := 0
		fill := func() ([]byte, error) {
			calls++
			return []byte("computed"), nil
		}

		first, err := c.GetOrSet(ctx, "k", time.Minute, fill)
		require.NoError(t, err)
		second, err := c.GetOrSet(ctx, "k", time.Minute, fill)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
	})
}
