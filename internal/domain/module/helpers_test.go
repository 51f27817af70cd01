package module

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

// mockCache is a testify mock of cache.Cache.
type mockCache struct {
	mock.Mock
}

func (m *mockCache) Has(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Forever(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// HeaderModule exposes only Render, so its position is derived.
type HeaderModule struct {
	calls atomic.Int32
}

func (h *HeaderModule) Render(ctx context.Context, args any) (string, error) {
	h.calls.Add(1)
	return "<header>", nil
}

// widget is a fully configured module.
type widget struct {
	name     string
	position string
	priority int
	calls    atomic.Int32
}

func newWidget(name, position string, priority int) *widget {
	return &widget{name: name, position: position, priority: priority}
}

func (w *widget) Position() string { return w.position }
func (w *widget) Priority() int    { return w.priority }

func (w *widget) Render(ctx context.Context, args any) (string, error) {
	w.calls.Add(1)
	return w.name, nil
}

// cachedWidget adds cache capabilities.
type cachedWidget struct {
	widget
	key CacheKey
}

func newCachedWidget(name, position string, key CacheKey) *cachedWidget {
	return &cachedWidget{widget: widget{name: name, position: position}, key: key}
}

func (c *cachedWidget) Cache() CacheKey { return c.key }

// timedWidget also supplies a cache time.
type timedWidget struct {
	cachedWidget
	ttl CacheTTL
}

func (t *timedWidget) CacheTime() CacheTTL { return t.ttl }

// placeholder occupies a slot but cannot render.
type placeholder struct {
	position string
}

func (p placeholder) Position() string { return p.position }

// argsEcho renders its args.
type argsEcho struct{}

func (argsEcho) Position() string { return "echo" }

func (argsEcho) Render(ctx context.Context, args any) (string, error) {
	if args == nil {
		return "<nil>", nil
	}
	m := args.(map[string]string)
	return m["greeting"], nil
}

var errBroken = errors.New("broken widget")

// brokenWidget always fails.
type brokenWidget struct {
	position string
	calls    atomic.Int32
}

func (b *brokenWidget) Position() string { return b.position }

func (b *brokenWidget) Render(ctx context.Context, args any) (string, error) {
	b.calls.Add(1)
	return "", errBroken
}

// panickyWidget panics on render.
type panickyWidget struct{}

func (panickyWidget) Position() string { return "sidebar" }

func (panickyWidget) Render(ctx context.Context, args any) (string, error) {
	panic("widget exploded")
}

// gatedWidget requires a permission.
type gatedWidget struct {
	widget
	permission string
}

func (g *gatedWidget) Permission() string { return g.permission }

// namedWidget overrides its type name.
type namedWidget struct{ widget }

func (*namedWidget) TypeName() string { return "PromoModule" }

// recordingObserver counts events.
type recordingObserver struct {
	rendered []string
	hits     int
	misses   int
	failed   []string
}

func (o *recordingObserver) PositionRendered(position string, d time.Duration) {
	o.rendered = append(o.rendered, position)
}
func (o *recordingObserver) CacheHit(string)  { o.hits++ }
func (o *recordingObserver) CacheMiss(string) { o.misses++ }
func (o *recordingObserver) ModuleFailed(position, typeName string) {
	o.failed = append(o.failed, typeName)
}
