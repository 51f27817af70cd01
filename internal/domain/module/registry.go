package module

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/modulekit/internal/infrastructure/cache"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/resilience"
)

const (
	// DefaultPriority applies to modules without a Prioritizer.
	DefaultPriority = 0
	// DefaultCacheTime applies to cached modules without a CacheTimer.
	DefaultCacheTime = 3600 * time.Second
)

// Registry maps positions to their registered modules. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	positions map[string][]Entry
	sorted    bool

	defaultPriority  int
	defaultCacheTime time.Duration

	cache     cache.Cache
	logger    *zap.Logger
	observer  Observer
	authorize Authorizer
	breakers  *resilience.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaults sets the priority and cache time used when a module does not
// supply its own. A non-positive cacheTime keeps DefaultCacheTime.
func WithDefaults(priority int, cacheTime time.Duration) Option {
	return func(r *Registry) {
		r.defaultPriority = priority
		if cacheTime > 0 {
			r.defaultCacheTime = cacheTime
		}
	}
}

// WithCache enables output caching. Without a cache, Cacher is ignored.
func WithCache(c cache.Cache) Option {
	return func(r *Registry) { r.cache = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the render event observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithAuthorizer replaces the permission check for Permissioner modules.
func WithAuthorizer(a Authorizer) Option {
	return func(r *Registry) {
		if a != nil {
			r.authorize = a
		}
	}
}

// WithIsolation makes a failing module contribute nothing instead of
// failing the whole position. Each module type gets a circuit breaker
// built from settings.
func WithIsolation(settings resilience.Settings) Option {
	return func(r *Registry) { r.breakers = resilience.NewGroup(settings) }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		positions:        make(map[string][]Entry),
		sorted:           true,
		defaultPriority:  DefaultPriority,
		defaultCacheTime: DefaultCacheTime,
		logger:           zap.NewNop(),
		observer:         nopObserver{},
		authorize:        Granted,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds modules. Each item may be a Module, a Pair, or a slice
// ([]any, []Module, []Pair) nesting any of these to any depth. Either every
// module in the call is registered or, on error, none is.
func (r *Registry) Register(items ...any) error {
	var entries []Entry
	for i, item := range items {
		var err error
		entries, err = r.collect(entries, item)
		if err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrInvalidRegistration, i, err)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, e := range entries {
		r.positions[e.Position] = append(r.positions[e.Position], e)
	}
	r.sorted = false
	r.mu.Unlock()

	for _, e := range entries {
		r.logger.Debug("Module registered",
			zap.String("position", e.Position),
			zap.String("type", e.TypeName),
			zap.Int("priority", e.Priority),
		)
	}
	return nil
}

// collect flattens item into entries.
func (r *Registry) collect(entries []Entry, item any) ([]Entry, error) {
	switch v := item.(type) {
	case nil:
		return entries, fmt.Errorf("nil module")
	case Pair:
		return r.collectOne(entries, v.Module, v.Args)
	case *Pair:
		if v == nil {
			return entries, fmt.Errorf("nil pair")
		}
		return r.collectOne(entries, v.Module, v.Args)
	case []any:
		return collectSlice(r, entries, v)
	case []Module:
		return collectSlice(r, entries, v)
	case []Pair:
		return collectSlice(r, entries, v)
	default:
		return r.collectOne(entries, v, nil)
	}
}

// isNilModule reports a typed nil, which would panic on the first
// capability call.
func isNilModule(m Module) bool {
	v := reflect.ValueOf(m)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func collectSlice[T any](r *Registry, entries []Entry, items []T) ([]Entry, error) {
	if len(items) == 0 {
		return entries, fmt.Errorf("empty module list")
	}
	for _, item := range items {
		var err error
		if entries, err = r.collect(entries, item); err != nil {
			return entries, err
		}
	}
	return entries, nil
}

func (r *Registry) collectOne(entries []Entry, m Module, args any) ([]Entry, error) {
	switch m.(type) {
	case nil:
		return entries, fmt.Errorf("pair without module")
	case Pair, *Pair, []any, []Module, []Pair:
		return entries, fmt.Errorf("pair module must be a single module, got %T", m)
	}
	if isNilModule(m) {
		return entries, fmt.Errorf("nil %T module", m)
	}

	typeName := TypeName(m)
	position := positionOf(m, typeName)
	if position == "" {
		return entries, fmt.Errorf("module %s has an empty position", typeName)
	}

	priority := r.defaultPriority
	if p, ok := m.(Prioritizer); ok {
		priority = p.Priority()
	}

	return append(entries, Entry{
		ID:       uuid.NewString(),
		Position: position,
		Priority: priority,
		TypeName: typeName,
		Module:   m,
		Args:     args,
	}), nil
}

// sortedEntries returns a snapshot of position, sorting every position
// first if a registration happened since the last sort.
func (r *Registry) sortedEntries(position string) []Entry {
	r.mu.RLock()
	if r.sorted {
		entries := slices.Clone(r.positions[position])
		r.mu.RUnlock()
		return entries
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sorted {
		for _, entries := range r.positions {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Priority > entries[j].Priority
			})
		}
		r.sorted = true
	}
	return slices.Clone(r.positions[position])
}

// Entries returns the modules registered at position in render order.
func (r *Registry) Entries(position string) []Entry {
	return r.sortedEntries(position)
}

// Positions returns every position holding at least one module, in lexical
// order.
func (r *Registry) Positions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := make([]string, 0, len(r.positions))
	for p, entries := range r.positions {
		if len(entries) > 0 {
			positions = append(positions, p)
		}
	}
	sort.Strings(positions)
	return positions
}

// Stats returns registry statistics
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Sorted: r.sorted}
	for _, entries := range r.positions {
		if len(entries) > 0 {
			stats.Positions++
			stats.Modules += len(entries)
		}
	}
	return stats
}

// BreakerStates returns the isolation breaker state of every module type
// that has rendered. It is nil when isolation is off.
func (r *Registry) BreakerStates() map[string]resilience.State {
	if r.breakers == nil {
		return nil
	}
	return r.breakers.States()
}
