// Package config provides 12-factor configuration management for the module
// server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Modules: Registry defaults, boot groups, failure isolation
//   - Cache: Output cache prefix, sweep interval, compression
//   - Views: Template directory and glob
//
// Module groups live in a separate file (YAML, TOML or JSON) read with
// LoadGroups:
//
//	groups:
//	  layout:
//	    - header
//	    - type: static
//	      args: {position: footer, html: "<footer>hi</footer>"}
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	groups, err := config.LoadGroups(cfg.Modules.GroupsFile)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - MODULES_DEFAULT_PRIORITY, MODULES_DEFAULT_CACHE_TIME, MODULES_GROUPS_FILE,
//     MODULES_BOOT_GROUPS, MODULES_ISOLATE_FAILURES, MODULES_PUBLIC_PERMISSIONS,
//     MODULES_SANITIZE
//   - CACHE_PREFIX, CACHE_CLEANUP_INTERVAL, CACHE_COMPRESS_THRESHOLD
//   - VIEWS_DIR, VIEWS_PATTERN
package config
