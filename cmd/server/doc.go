// Package main is the entry point for the module server.
//
// The server keeps a registry of HTML modules keyed by template position,
// renders positions as fragments, and serves page templates whose
// @module('position') directives inline those fragments.
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -groups modules.yaml -boot layout,sidebar -views views
//
//	# Development mode (colored logs, debug level)
//	./server -dev -log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
