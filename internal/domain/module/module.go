package module

import (
	"context"
	"reflect"
	"strings"
)

// Module is any value registered against a position. Behavior comes from
// the optional capability interfaces below; a module that implements none
// of them still occupies a slot but renders nothing.
type Module interface{}

// Renderer produces a module's fragment. args is the payload supplied at
// registration, or nil.
type Renderer interface {
	Render(ctx context.Context, args any) (string, error)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, args any) (string, error)

// Render calls f.
func (f RenderFunc) Render(ctx context.Context, args any) (string, error) {
	return f(ctx, args)
}

// Positioner names the template position a module renders into.
type Positioner interface {
	Position() string
}

// Prioritizer supplies the sort weight; larger renders first.
type Prioritizer interface {
	Priority() int
}

// Cacher selects the cache key for a module's output.
type Cacher interface {
	Cache() CacheKey
}

// CacheTimer selects how long cached output lives.
type CacheTimer interface {
	CacheTime() CacheTTL
}

// Permissioner names a permission the request must hold for the module to
// render.
type Permissioner interface {
	Permission() string
}

// Named overrides the type name used for derived positions and
// type-based cache keys.
type Named interface {
	TypeName() string
}

// TypeName returns the short type name of m: Named.TypeName when
// implemented, otherwise the Go type name without package path or pointers.
func TypeName(m Module) string {
	if n, ok := m.(Named); ok {
		return n.TypeName()
	}

	t := reflect.TypeOf(m)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		// Generic instantiations carry their type arguments in brackets.
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		return name
	}
	return t.String()
}

// DerivePosition turns a type name into a position: lowercase, with every
// "module" substring removed.
func DerivePosition(typeName string) string {
	return strings.ReplaceAll(strings.ToLower(typeName), "module", "")
}

// positionOf resolves the position of m once, at registration.
func positionOf(m Module, typeName string) string {
	if p, ok := m.(Positioner); ok {
		return p.Position()
	}
	return DerivePosition(typeName)
}

// permissionOf returns the permission required by m, or "".
func permissionOf(m Module) string {
	if p, ok := m.(Permissioner); ok {
		return p.Permission()
	}
	return ""
}
