// Package http provides the HTTP handlers of the module server.
//
// Endpoints:
//   - Status: / and /health
//   - Positions: /positions, /positions/:name, /positions/:name/modules
//   - Pages: /pages/*page
//   - Metrics: /metrics
//
// Position fragments carry a strong ETag and answer conditional requests
// with 304. Errors are returned as JSON objects with an "error" field.
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, engine, metrics, tracer, client, logger)
//	handlers.Register(router)
package http
