package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
	"github.com/GriffinCanCode/modulekit/internal/infrastructure/config"
)

var (
	// ErrDuplicate is returned when an identifier is registered twice.
	ErrDuplicate = errors.New("module type already registered")
	// ErrUnknownType is returned when building an unregistered identifier.
	ErrUnknownType = errors.New("unknown module type")
	// ErrUnknownGroup is returned when registering a group that does not exist.
	ErrUnknownGroup = errors.New("unknown module group")
)

// Factory builds a module from the args of a group entry. args is nil when
// the entry has none.
type Factory func(args map[string]any) (module.Module, error)

// Catalog maps module type identifiers to factories
type Catalog struct {
	factories sync.Map
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{}
}

// Register adds a factory under id
func (c *Catalog) Register(id string, factory Factory) error {
	if id == "" {
		return fmt.Errorf("module type ID cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %s cannot be nil", id)
	}

	if _, loaded := c.factories.LoadOrStore(id, factory); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	return nil
}

// Get retrieves a factory by id
func (c *Catalog) Get(id string) (Factory, bool) {
	val, ok := c.factories.Load(id)
	if !ok {
		return nil, false
	}
	return val.(Factory), true
}

// List returns every registered identifier, sorted
func (c *Catalog) List() []string {
	var ids []string
	c.factories.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}

// Build creates the module registered under id.
func (c *Catalog) Build(id string, args map[string]any) (module.Module, error) {
	factory, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}

	m, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", id, err)
	}
	if m == nil {
		return nil, fmt.Errorf("build %s: factory returned no module", id)
	}
	return m, nil
}

// BuildGroup builds every entry of the named group, in order, as pairs of
// module and args.
func (c *Catalog) BuildGroup(groups config.Groups, name string) ([]module.Pair, error) {
	entries, ok := groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, name)
	}

	pairs := make([]module.Pair, 0, len(entries))
	for i, entry := range entries {
		m, err := c.Build(entry.Type, entry.Args)
		if err != nil {
			return nil, fmt.Errorf("group %s entry %d: %w", name, i, err)
		}

		// A nil map would reach Render as a typed nil.
		var args any
		if entry.Args != nil {
			args = entry.Args
		}
		pairs = append(pairs, module.With(m, args))
	}
	return pairs, nil
}

// RegisterGroup builds the named group and registers it with reg. Nothing
// is registered when any entry fails to build. An empty group registers
// nothing.
func (c *Catalog) RegisterGroup(reg *module.Registry, groups config.Groups, name string) error {
	pairs, err := c.BuildGroup(groups, name)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	return reg.Register(pairs)
}
