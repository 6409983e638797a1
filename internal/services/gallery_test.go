package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGallery(t *testing.T) {
	backends := map[string]func(t *testing.T) Cache{
		"memory": func(t *testing.T) Cache { return NewMemoryCache() },
		"redis": func(t *testing.T) Cache {
			_, svc := setupTestRedis(t)
			return svc
		},
	}

	for name, newCache := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			g := NewGallery(newCache(t), testLogger())

			ok, err := g.IsUnlocked(ctx, "house.json")
			require.NoError(t, err)
			assert.False(t, ok)

			at, err := g.UnlockedAt(ctx, "house.json")
			require.NoError(t, err)
			assert.True(t, at.IsZero())

			require.NoError(t, g.Unlock(ctx, "house.json"))
			require.NoError(t, g.Unlock(ctx, "garden.json"))

			ok, err = g.IsUnlocked(ctx, "house.json")
			require.NoError(t, err)
			assert.True(t, ok)

			at, err = g.UnlockedAt(ctx, "house.json")
			require.NoError(t, err)
			assert.WithinDuration(t, time.Now(), at, time.Minute)

			unlocked, err := g.Filter(ctx, []string{"attic.json", "garden.json", "house.json"})
			require.NoError(t, err)
			assert.Equal(t, []string{"garden.json", "house.json"}, unlocked)

			require.NoError(t, g.Reset(ctx, "garden.json"))
			unlocked, err = g.Filter(ctx, []string{"garden.json", "house.json"})
			require.NoError(t, err)
			assert.Equal(t, []string{"house.json"}, unlocked)
		})
	}
}

func TestGallery_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(ctx, galleryKey("x.json"), "yesterday", 0))

	_, err := NewGallery(cache, testLogger()).UnlockedAt(ctx, "x.json")
	assert.ErrorContains(t, err, "corrupt gallery entry")
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCache()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", 42, time.Minute))
	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	now = now.Add(2 * time.Minute)
	ok, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired keys are gone")

	m.PingErr = errors.New("down")
	assert.Error(t, m.Ping(ctx))
	assert.Error(t, m.WaitForConnection(ctx))
}
