package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Modules   ModulesConfig
	Cache     CacheConfig
	Views     ViewsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// StreamInterval is how often streamed positions are re-rendered.
	StreamInterval time.Duration `envconfig:"STREAM_INTERVAL" default:"5s"`
	// CORSOrigins lists the origins allowed to fetch fragments.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Scope is "client" (per IP) or "global".
	Scope string `envconfig:"RATE_LIMIT_SCOPE" default:"client"`
}

// ModulesConfig holds module registry configuration.
type ModulesConfig struct {
	DefaultPriority int `envconfig:"MODULES_DEFAULT_PRIORITY" default:"0"`
	// DefaultCacheTime is in seconds.
	DefaultCacheTime  int      `envconfig:"MODULES_DEFAULT_CACHE_TIME" default:"3600"`
	GroupsFile        string   `envconfig:"MODULES_GROUPS_FILE"`
	BootGroups        []string `envconfig:"MODULES_BOOT_GROUPS"`
	IsolateFailures   bool     `envconfig:"MODULES_ISOLATE_FAILURES" default:"false"`
	PublicPermissions []string `envconfig:"MODULES_PUBLIC_PERMISSIONS"`
	// TokenHash is a bcrypt hash; requests bearing the matching token get
	// TokenPermissions.
	TokenHash        string   `envconfig:"MODULES_TOKEN_HASH"`
	TokenPermissions []string `envconfig:"MODULES_TOKEN_PERMISSIONS"`
	Sanitize         string   `envconfig:"MODULES_SANITIZE" default:"none"`
}

// CacheTTL returns DefaultCacheTime as a duration.
func (m ModulesConfig) CacheTTL() time.Duration {
	return time.Duration(m.DefaultCacheTime) * time.Second
}

// CacheConfig holds output cache configuration.
type CacheConfig struct {
	Prefix string `envconfig:"CACHE_PREFIX" default:"modules:"`
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration `envconfig:"CACHE_CLEANUP_INTERVAL" default:"1m"`
	// CompressThreshold is the value size in bytes from which values are
	// compressed. Zero disables compression.
	CompressThreshold int `envconfig:"CACHE_COMPRESS_THRESHOLD" default:"4096"`
}

// ViewsConfig holds template configuration.
type ViewsConfig struct {
	Dir     string `envconfig:"VIEWS_DIR" default:"views"`
	Pattern string `envconfig:"VIEWS_PATTERN" default:"**/*.html"`
	// WatchInterval reloads pages when the directory changes. Zero disables.
	WatchInterval time.Duration `envconfig:"VIEWS_WATCH_INTERVAL" default:"0s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Modules.Sanitize {
	case "none", "ugc", "strict":
	default:
		return fmt.Errorf("invalid MODULES_SANITIZE %q: want none, ugc or strict", c.Modules.Sanitize)
	}
	if c.Modules.DefaultCacheTime <= 0 {
		return fmt.Errorf("MODULES_DEFAULT_CACHE_TIME must be positive, got %d", c.Modules.DefaultCacheTime)
	}
	if c.Server.StreamInterval <= 0 {
		return fmt.Errorf("STREAM_INTERVAL must be positive, got %s", c.Server.StreamInterval)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
		}
		if c.RateLimit.Scope != "client" && c.RateLimit.Scope != "global" {
			return fmt.Errorf("invalid RATE_LIMIT_SCOPE %q: want client or global", c.RateLimit.Scope)
		}
	}
	if len(c.Server.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must not be empty")
	}
	if c.Cache.CompressThreshold < 0 {
		return fmt.Errorf("CACHE_COMPRESS_THRESHOLD must not be negative, got %d", c.Cache.CompressThreshold)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			Host:           "0.0.0.0",
			StreamInterval: 5 * time.Second,
			CORSOrigins:    []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
			Scope:             "client",
		},
		Modules: ModulesConfig{
			DefaultPriority:  0,
			DefaultCacheTime: 3600,
			Sanitize:         "none",
		},
		Cache: CacheConfig{
			Prefix:            "modules:",
			CleanupInterval:   time.Minute,
			CompressThreshold: 4096,
		},
		Views: ViewsConfig{
			Dir:     "views",
			Pattern: "**/*.html",
		},
	}
}
