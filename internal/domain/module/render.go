package module

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Render renders every module at position in priority order and returns
// the concatenated output. An unknown or empty position renders as "".
//
// Without isolation the first module or cache error aborts the call and
// no output is returned. With isolation the failing module is logged and
// skipped.
func (r *Registry) Render(ctx context.Context, position string) (string, error) {
	start := time.Now()

	entries := r.sortedEntries(position)
	if len(entries) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, e := range entries {
		out, err := r.renderIsolated(ctx, e)
		if err != nil {
			r.observer.ModuleFailed(position, e.TypeName)
			if r.breakers == nil {
				return "", fmt.Errorf("%w: %s at %q: %w", ErrRenderFailed, e.TypeName, position, err)
			}
			r.logger.Warn("Module render failed, skipping",
				zap.String("position", position),
				zap.String("type", e.TypeName),
				zap.String("entry_id", e.ID),
				zap.Error(err),
			)
			continue
		}
		sb.WriteString(out)
	}

	r.observer.PositionRendered(position, time.Since(start))
	return sb.String(), nil
}

// renderIsolated runs renderEntry through the module type's breaker when
// isolation is enabled, converting panics into errors.
func (r *Registry) renderIsolated(ctx context.Context, e Entry) (out string, err error) {
	if r.breakers == nil {
		return r.renderEntry(ctx, e)
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	err = r.breakers.Get(e.TypeName).Do(func() error {
		var renderErr error
		out, renderErr = r.renderEntry(ctx, e)
		return renderErr
	})
	return out, err
}

// renderEntry produces one entry's output: from the cache when a key
// resolves and is present, otherwise from Render, storing the result when
// a key resolved.
func (r *Registry) renderEntry(ctx context.Context, e Entry) (string, error) {
	if perm := permissionOf(e.Module); perm != "" && !r.authorize(ctx, perm) {
		return "", nil
	}

	key := r.cacheKey(e)
	if key != "" {
		hit, err := r.cache.Has(ctx, key)
		if err != nil {
			return "", fmt.Errorf("cache lookup %q: %w", key, err)
		}
		if hit {
			cached, err := r.cache.Get(ctx, key)
			if err != nil {
				return "", fmt.Errorf("cache read %q: %w", key, err)
			}
			r.observer.CacheHit(e.Position)
			return cached, nil
		}
		r.observer.CacheMiss(e.Position)
	}

	renderer, ok := e.Module.(Renderer)
	if !ok {
		return "", nil
	}

	out, err := renderer.Render(ctx, e.Args)
	if err != nil {
		return "", err
	}

	if key != "" {
		if err := r.store(ctx, e, key, out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func (r *Registry) cacheKey(e Entry) string {
	if r.cache == nil {
		return ""
	}
	c, ok := e.Module.(Cacher)
	if !ok {
		return ""
	}
	return c.Cache().Resolve(e.TypeName)
}

func (r *Registry) store(ctx context.Context, e Entry, key, value string) error {
	var ttl CacheTTL
	if t, ok := e.Module.(CacheTimer); ok {
		ttl = t.CacheTime()
	}

	d, forever := ttl.Resolve(r.defaultCacheTime)
	if forever {
		if err := r.cache.Forever(ctx, key, value); err != nil {
			return fmt.Errorf("cache store %q: %w", key, err)
		}
		return nil
	}
	if err := r.cache.Put(ctx, key, value, d); err != nil {
		return fmt.Errorf("cache store %q: %w", key, err)
	}
	return nil
}
