package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// entry is a stored fragment, zstd-compressed when it crossed the threshold.
type entry struct {
	data       []byte
	compressed bool
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithCleanupInterval runs go-cache's janitor every d to drop expired
// entries. d <= 0 disables it; expired entries are then only hidden on read.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Store) { s.cleanupInterval = d }
}

// WithCompression stores values of at least threshold bytes zstd-compressed.
// A threshold <= 0 disables compression.
func WithCompression(threshold int) Option {
	return func(s *Store) { s.compressThreshold = threshold }
}

// Store is an in-memory Cache backed by go-cache.
type Store struct {
	items *gocache.Cache

	prefix            string
	cleanupInterval   time.Duration
	compressThreshold int
	codec             *codec

	closeOnce sync.Once
}

// NewStore creates a store with the provided options.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.compressThreshold > 0 {
		s.codec = newCodec()
	}
	s.items = gocache.New(gocache.NoExpiration, s.cleanupInterval)
	return s
}

// Has reports whether a live entry exists for key.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := s.items.Get(s.prefix + key)
	return ok, nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := s.items.Get(s.prefix + key)
	if !ok {
		return "", ErrNotFound
	}
	e := v.(entry)
	if !e.compressed {
		return string(e.data), nil
	}
	raw, err := s.codec.decode(e.data)
	if err != nil {
		return "", fmt.Errorf("cache: decompress %q: %w", key, err)
	}
	return string(raw), nil
}

// Put stores value under key for ttl. A non-positive ttl stores nothing
// retrievable, matching an already-expired entry.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		s.items.Delete(s.prefix + key)
		return nil
	}
	s.items.Set(s.prefix+key, s.encode(value), ttl)
	return nil
}

// Forever stores value under key without expiry.
func (s *Store) Forever(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.items.Set(s.prefix+key, s.encode(value), gocache.NoExpiration)
	return nil
}

// Len returns the number of stored entries, including expired ones the
// janitor has not collected yet.
func (s *Store) Len() int {
	return s.items.ItemCount()
}

// DeleteExpired drops every expired entry now.
func (s *Store) DeleteExpired() {
	s.items.DeleteExpired()
}

// Close drops every entry. go-cache stops its janitor once the store is
// unreachable.
func (s *Store) Close() error {
	s.closeOnce.Do(s.items.Flush)
	return nil
}

func (s *Store) encode(value string) entry {
	e := entry{data: []byte(value)}
	if s.codec != nil && len(value) >= s.compressThreshold {
		e.data = s.codec.encode(e.data)
		e.compressed = true
	}
	return e
}
