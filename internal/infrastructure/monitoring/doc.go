/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the module
server, tracking HTTP requests, position renders, cache effectiveness and
module failures.

# Features

- HTTP request metrics (latency, throughput, size)
- Position render metrics (count, duration)
- Cache hit and miss counters per position
- Module failure counters per position and type
- Registry size gauges
- Go runtime, process and uptime metrics

Metrics implements the module registry's Observer interface, so passing it
to module.WithObserver is all the wiring render metrics need.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Observe the registry
	registry := module.NewRegistry(module.WithObserver(metrics))

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
