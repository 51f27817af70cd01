package module

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKeyResolve(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{"zero value", CacheKey{}, ""},
		{"no cache", NoCache(), ""},
		{"by type", CacheByType(), "FooModule"},
		{"when true", CacheWhen(true), "FooModule"},
		{"when false", CacheWhen(false), ""},
		{"literal", CacheAs("foo:1"), "foo:1"},
		{"empty literal", CacheAs(""), ""},
		{"deferred literal", DeferCacheKey(func() CacheKey { return CacheAs("late") }), "late"},
		{"deferred by type", DeferCacheKey(func() CacheKey { return CacheByType() }), "FooModule"},
		{"deferred twice", DeferCacheKey(func() CacheKey {
			return DeferCacheKey(func() CacheKey { return CacheAs("never") })
		}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Resolve("FooModule"))
		})
	}
}

func TestCacheTTLResolve(t *testing.T) {
	const def = 10 * time.Minute

	tests := []struct {
		name        string
		ttl         CacheTTL
		wantTTL     time.Duration
		wantForever bool
	}{
		{"zero value", CacheTTL{}, def, false},
		{"default", DefaultTTL(), def, false},
		{"forever", Forever(), 0, true},
		{"duration", TTL(time.Minute), time.Minute, false},
		{"seconds", Seconds(60), time.Minute, false},
		{"zero seconds", Seconds(0), def, false},
		{"negative", TTL(-time.Second), def, false},
		{"deferred", DeferTTL(func() CacheTTL { return Seconds(5) }), 5 * time.Second, false},
		{"deferred forever", DeferTTL(func() CacheTTL { return Forever() }), 0, true},
		{"nil callback", DeferTTL(nil), def, false},
		{"deferred twice", DeferTTL(func() CacheTTL {
			return DeferTTL(func() CacheTTL { return Forever() })
		}), def, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ttl, forever := tt.ttl.Resolve(def)
			assert.Equal(t, tt.wantTTL, ttl)
			assert.Equal(t, tt.wantForever, forever)
		})
	}
}
