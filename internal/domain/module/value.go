package module

import "time"

type keyKind uint8

const (
	keyNone keyKind = iota
	keyByType
	keyLiteral
	keyDeferred
)

// CacheKey is the value a Cacher returns: no caching, cache under the
// module's type name, cache under an explicit key, or a callback that
// yields one of those at render time. The zero value disables caching.
type CacheKey struct {
	kind keyKind
	key  string
	fn   func() CacheKey
}

// NoCache disables caching.
func NoCache() CacheKey { return CacheKey{} }

// CacheByType caches under the module's type name.
func CacheByType() CacheKey { return CacheKey{kind: keyByType} }

// CacheWhen is CacheByType when enabled, NoCache otherwise.
func CacheWhen(enabled bool) CacheKey {
	if enabled {
		return CacheByType()
	}
	return NoCache()
}

// CacheAs caches under key. An empty key disables caching.
func CacheAs(key string) CacheKey {
	if key == "" {
		return NoCache()
	}
	return CacheKey{kind: keyLiteral, key: key}
}

// DeferCacheKey resolves the key by calling fn on every render.
func DeferCacheKey(fn func() CacheKey) CacheKey {
	if fn == nil {
		return NoCache()
	}
	return CacheKey{kind: keyDeferred, fn: fn}
}

// Resolve returns the concrete key, or "" when caching is disabled.
// Deferred keys are resolved one level; a callback yielding another
// callback disables caching.
func (k CacheKey) Resolve(typeName string) string {
	if k.kind == keyDeferred {
		k = k.fn()
	}
	switch k.kind {
	case keyByType:
		return typeName
	case keyLiteral:
		return k.key
	default:
		return ""
	}
}

type ttlKind uint8

const (
	ttlDefault ttlKind = iota
	ttlForever
	ttlDuration
	ttlDeferred
)

// CacheTTL is the value a CacheTimer returns: the registry default,
// forever, a fixed duration, or a callback yielding one of those. The zero
// value means the registry default.
type CacheTTL struct {
	kind ttlKind
	d    time.Duration
	fn   func() CacheTTL
}

// DefaultTTL uses the registry's configured cache time.
func DefaultTTL() CacheTTL { return CacheTTL{} }

// Forever stores without expiry.
func Forever() CacheTTL { return CacheTTL{kind: ttlForever} }

// TTL stores for d. Non-positive durations fall back to the default.
func TTL(d time.Duration) CacheTTL { return CacheTTL{kind: ttlDuration, d: d} }

// Seconds stores for n seconds.
func Seconds(n int) CacheTTL { return TTL(time.Duration(n) * time.Second) }

// DeferTTL resolves the TTL by calling fn at store time.
func DeferTTL(fn func() CacheTTL) CacheTTL {
	if fn == nil {
		return DefaultTTL()
	}
	return CacheTTL{kind: ttlDeferred, fn: fn}
}

// Resolve returns the concrete TTL, falling back to def, and whether the
// value should be kept forever.
func (t CacheTTL) Resolve(def time.Duration) (ttl time.Duration, forever bool) {
	if t.kind == ttlDeferred {
		t = t.fn()
	}
	switch t.kind {
	case ttlForever:
		return 0, true
	case ttlDuration:
		if t.d > 0 {
			return t.d, false
		}
	}
	return def, false
}
