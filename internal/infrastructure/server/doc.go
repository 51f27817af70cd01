// Package server wires the module server together.
//
// NewServer builds, from a config.Config:
//   - the zap logger, Prometheus metrics and the span tracer
//   - the output cache store
//   - the module registry, reporting to the metrics and optionally
//     isolating failing module types behind circuit breakers
//   - the type catalog with the built-in modules and the boot groups from
//     the groups file
//   - the page engine over the views directory
//   - the gin router with its middleware and routes
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. NewServer
//  3. Run blocks serving HTTP
//  4. Shutdown on signal drains requests, flushes the cache and
//     flushes the tracer
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
