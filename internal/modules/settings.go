package modules

import (
	"fmt"

	"github.com/GriffinCanCode/modulekit/internal/domain/module"
)

// Settings holds the capabilities every built-in module reads from its
// args: position, priority, cache key and time, and permission.
type Settings struct {
	position   string
	priority   int
	cacheKey   string
	cacheTTL   module.CacheTTL
	permission string
}

// Defaults are applied to args that leave a setting out.
type Defaults struct {
	Priority int
}

func parseSettings(args map[string]any, defaults Defaults) (Settings, error) {
	var s Settings
	var err error

	if s.position, err = getString(args, "position", true); err != nil {
		return Settings{}, err
	}
	if s.priority, err = getInt(args, "priority", defaults.Priority); err != nil {
		return Settings{}, err
	}
	if s.cacheKey, err = getString(args, "cache", false); err != nil {
		return Settings{}, err
	}
	if s.permission, err = getString(args, "permission", false); err != nil {
		return Settings{}, err
	}

	switch v := args["cache_ttl"].(type) {
	case nil:
	case string:
		if v != "forever" {
			return Settings{}, fmt.Errorf(`cache_ttl must be seconds or "forever", got %q`, v)
		}
		s.cacheTTL = module.Forever()
	default:
		seconds, err := getInt(args, "cache_ttl", 0)
		if err != nil {
			return Settings{}, err
		}
		s.cacheTTL = module.Seconds(seconds)
	}

	return s, nil
}

func (s Settings) Position() string { return s.position }

func (s Settings) Priority() int { return s.priority }

func (s Settings) Cache() module.CacheKey { return module.CacheAs(s.cacheKey) }

func (s Settings) CacheTime() module.CacheTTL { return s.cacheTTL }

func (s Settings) Permission() string { return s.permission }
