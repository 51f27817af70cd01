// Package logging builds the service's zap logger.
//
// Production logs are JSON with lowercase levels and ISO8601 timestamps.
// Development logs are colored console lines. Subsystems take a named
// child through Component, so a line from the registry carries
// "logger":"registry".
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	defer logger.Sync()
//	registry := module.NewRegistry(module.WithLogger(logger.Component("registry")))
package logging
