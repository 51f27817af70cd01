// Package cache provides the key/value store used to memoize rendered
// module fragments.
//
// The Cache interface is the only thing the module registry depends on:
//
//	Has(ctx, key)              reports whether a live entry exists
//	Get(ctx, key)              returns the stored value (ErrNotFound on miss)
//	Put(ctx, key, value, ttl)  stores with expiry
//	Forever(ctx, key, value)   stores without expiry
//
// Store is the in-process implementation, built on patrickmn/go-cache:
//   - Per-entry expiry with go-cache's optional background janitor
//   - Key prefixing so several registries can share one store
//   - zstd compression for fragments above a size threshold
//
// Example Usage:
//
//	store := cache.NewStore(
//	    cache.WithPrefix("modules:"),
//	    cache.WithCleanupInterval(time.Minute),
//	    cache.WithCompression(4096),
//	)
//	defer store.Close()
package cache
