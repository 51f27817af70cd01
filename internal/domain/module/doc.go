// Package module implements the position registry and render pipeline.
//
// Application code registers modules (reusable view fragments such as a
// header widget or a sidebar block) against named template positions. When
// a page asks for a position, the registry renders every module registered
// there, highest priority first, and concatenates the output.
//
// Capabilities:
//   - Renderer: produces the fragment (the only capability that emits output)
//   - Positioner: names the position; otherwise derived from the type name
//   - Prioritizer: sort weight; otherwise the registry default
//   - Cacher / CacheTimer: memoize output in a cache.Cache
//   - Permissioner: gate rendering on a permission granted to the request
//
// Ordering:
//   - Positions are stable-sorted by descending priority, lazily, before
//     the first render after any registration
//   - Equal priorities keep registration order
//
// Caching:
//   - Cache keys and TTLs are resolved on every render, so deferred values
//     can depend on mutable state
//   - A cache hit skips the module's Render entirely
//
// Example Usage:
//
//	reg := module.NewRegistry(
//	    module.WithCache(store),
//	    module.WithDefaults(0, time.Hour),
//	)
//	err := reg.Register(&HeaderModule{}, module.With(&NewsModule{}, map[string]any{"limit": 5}))
//	html, err := reg.Render(ctx, "header")
package module
