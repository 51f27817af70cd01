package cache

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(opts ...Option) *Store {
	return NewStore(opts...)
}

// stored returns the raw entry kept under the full key.
func stored(t *testing.T, s *Store, key string) entry {
	t.Helper()
	v, ok := s.items.Get(key)
	require.True(t, ok, "no entry under %q", key)
	return v.(entry)
}

func TestStorePutAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "hdr", "<header/>", time.Minute))

	ok, err := s.Has(ctx, "hdr")
	require.NoError(t, err)
	assert.True(t, ok)

	val, err := s.Get(ctx, "hdr")
	require.NoError(t, err)
	assert.Equal(t, "<header/>", val)
}

func TestStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	ok, err := s.Has(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "hdr", "v", 50*time.Millisecond))

	ok, _ := s.Has(ctx, "hdr")
	assert.True(t, ok, "entry should live until its ttl elapses")

	assert.Eventually(t, func() bool {
		ok, _ := s.Has(ctx, "hdr")
		return !ok
	}, time.Second, 10*time.Millisecond, "entry should expire after its ttl")

	_, err := s.Get(ctx, "hdr")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreForever(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(WithCleanupInterval(5 * time.Millisecond))

	require.NoError(t, s.Forever(ctx, "k", "v"))
	require.NoError(t, s.Put(ctx, "short", "v", 5*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestStoreNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Forever(ctx, "k", "old"))
	require.NoError(t, s.Put(ctx, "k", "new", 0))

	ok, _ := s.Has(ctx, "k")
	assert.False(t, ok)
}

func TestStorePrefix(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(WithPrefix("a:"))

	require.NoError(t, a.Forever(ctx, "k", "v"))
	assert.Equal(t, "v", string(stored(t, a, "a:k").data), "keys should be stored with the prefix")

	b := newTestStore(WithPrefix("b:"))
	ok, err := b.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreCompression(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(WithCompression(64))

	large := strings.Repeat("<li>item</li>", 100)
	require.NoError(t, s.Forever(ctx, "big", large))
	require.NoError(t, s.Forever(ctx, "small", "<b>x</b>"))

	big := stored(t, s, "big")
	assert.True(t, big.compressed)
	assert.Less(t, len(big.data), len(large))
	assert.False(t, stored(t, s, "small").compressed)

	val, err := s.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, large, val)

	val, err = s.Get(ctx, "small")
	require.NoError(t, err)
	assert.Equal(t, "<b>x</b>", val)
}

func TestStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	require.NoError(t, s.Put(ctx, "short", "v", time.Millisecond))
	require.NoError(t, s.Put(ctx, "long", "v", time.Hour))
	require.NoError(t, s.Forever(ctx, "forever", "v"))
	assert.Equal(t, 3, s.Len())

	time.Sleep(10 * time.Millisecond)
	s.DeleteExpired()

	assert.Equal(t, 2, s.Len())
}

func TestStoreJanitorCollects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(WithCleanupInterval(5 * time.Millisecond))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Put(ctx, "short", "v", time.Millisecond))
	require.NoError(t, s.Forever(ctx, "forever", "v"))

	assert.Eventually(t, func() bool { return s.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStoreCanceledContext(t *testing.T) {
	s := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Has(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Forever(ctx, "k", "v"), context.Canceled)
}

func TestStoreCloseIdempotent(t *testing.T) {
	s := NewStore(WithCleanupInterval(time.Millisecond))
	require.NoError(t, s.Forever(context.Background(), "k", "v"))

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Zero(t, s.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Put(ctx, "k", "v", time.Minute)
				_, _ = s.Get(ctx, "k")
			}
		}()
	}
	wg.Wait()

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}
