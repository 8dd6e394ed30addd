package memory

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-guardianship/internal/platform/cache"
)

func TestCache_WriteReadExpire(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	key := cache.NewKey("guardian:pet:1", map[string]string{"pet_id": "1"})

	stored, err := c.Write(ctx, key, []byte(`{"id":4}`), time.Minute, 0)
	require.NoError(t, err)
	require.True(t, stored)

	got, ok, err := c.Read(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"id":4}`, string(got))

	now = now.Add(time.Minute)
	_, ok, err = c.Read(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire at ttl")
}

func TestCache_InvalidateByExtraTag(t *testing.T) {
	c := New()
	ctx := context.Background()

	a := cache.NewKey("active:user:1", map[string]string{"first": "2"})
	b := cache.NewKey("active:user:2", nil)

	_, err := c.Write(ctx, a, []byte(`1`), time.Minute, 0, "pet:9")
	require.NoError(t, err)
	_, err = c.Write(ctx, b, []byte(`2`), time.Minute, 0)
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, "pet:9"))

	_, ok, _ := c.Read(ctx, a)
	assert.False(t, ok)
	_, ok, _ = c.Read(ctx, b)
	assert.True(t, ok)

	require.NoError(t, c.Invalidate(ctx, "active:user:2"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_WriteDroppedWhenTagInvalidatedAfterEpoch(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := cache.NewKey("guardian:pet:1", nil)

	since, err := c.Epoch(ctx)
	require.NoError(t, err)

	// Un register invalida mientras la lectura todavía estaba cargando.
	require.NoError(t, c.Invalidate(ctx, "guardian:pet:1"))

	stored, err := c.Write(ctx, key, []byte(`{"guardian":null}`), time.Minute, since)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, _ := c.Read(ctx, key)
	assert.False(t, ok)

	// Una invalidación de otro tag no afecta.
	since, _ = c.Epoch(ctx)
	require.NoError(t, c.Invalidate(ctx, "guardian:pet:2"))
	stored, err = c.Write(ctx, key, []byte(`{"guardian":7}`), time.Minute, since)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestCache_WriteDroppedWhenExtraTagInvalidated(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := cache.NewKey("history:pet:1", nil)

	since, _ := c.Epoch(ctx)
	require.NoError(t, c.Invalidate(ctx, "user:3"))

	stored, err := c.Write(ctx, key, []byte(`[]`), time.Minute, since, "pet:1", "user:3")
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestRemember_LoadRacingInvalidationIsNotCached(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := cache.NewKey("guardian:pet:4", nil)

	calls := 0
	load := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			// La escritura concurrente termina entre la carga y el write.
			require.NoError(t, c.Invalidate(ctx, "guardian:pet:4"))
			return "stale", nil
		}
		return "fresh", nil
	}

	got, err := cache.Remember(ctx, c, key, time.Minute, nil, load)
	require.NoError(t, err)
	assert.Equal(t, "stale", got, "the caller still gets what it loaded")
	assert.Equal(t, 0, c.Len())

	got, err = cache.Remember(ctx, c, key, time.Minute, nil, load)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	got, err = cache.Remember(ctx, c, key, time.Minute, nil, load)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
	assert.Equal(t, 2, calls)
}

func TestCache_SweepDropsExpiredEntriesAndTags(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		key := cache.NewKey("active:user:1", map[string]string{"offset": strconv.Itoa(i)})
		_, err := c.Write(ctx, key, []byte(`[]`), time.Second, 0, "pet:"+strconv.Itoa(i))
		require.NoError(t, err)
	}
	assert.Equal(t, 50, c.Len())

	now = now.Add(sweepInterval + time.Second)
	since, _ := c.Epoch(ctx)
	stored, err := c.Write(ctx, cache.NewKey("active:user:2", nil), []byte(`[]`), time.Minute, since)
	require.NoError(t, err)
	require.True(t, stored)

	assert.Equal(t, 1, c.Len())
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.tags, 1)
	assert.Contains(t, c.tags, "active:user:2")
}

func TestCache_ReadOfExpiredEntryPrunesTagIndex(t *testing.T) {
	c := New()
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	key := cache.NewKey("history:user:1", nil)
	_, err := c.Write(ctx, key, []byte(`[]`), time.Second, 0, "pet:1")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, ok, _ := c.Read(ctx, key)
	assert.False(t, ok)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.tags)
}

func TestRemember_LoadsOnceThenServesFromCache(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := cache.NewKey("history:pet:3", map[string]string{"after": "x"})

	calls := 0
	load := func(context.Context) ([]int64, error) {
		calls++
		return []int64{7, 8}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.Remember(ctx, c, key, time.Minute, nil, load)
		require.NoError(t, err)
		assert.Equal(t, []int64{7, 8}, got)
	}
	assert.Equal(t, 1, calls)
}

func TestRemember_DoesNotCacheErrors(t *testing.T) {
	c := New()
	ctx := context.Background()
	key := cache.NewKey("guardian:pet:5", nil)

	boom := errors.New("store down")
	_, err := cache.Remember(ctx, c, key, time.Minute, nil, func(context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestKey_StringIsCanonical(t *testing.T) {
	a := cache.NewKey("t", map[string]string{"b": "2", "a": "1"})
	b := cache.NewKey("t", map[string]string{"a": "1", "b": "2"})
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, "t?a=1&b=2", a.String())
	assert.Equal(t, "t", cache.NewKey("t", nil).String())
}
