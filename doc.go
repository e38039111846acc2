// Package flowsmonitor wires configured endpoints into running poll loops.
//
// A Runner builds one HTTP client and one monitor.Loop per endpoint, runs
// them concurrently and, when a status address is configured, serves
// health, status and Prometheus metrics while they run.
//
// This package is organized into:
// - runner.go: endpoint fan-out
// - logging.go: slog setup
// - metrics.go: Prometheus collectors fed by the poll loops
// - status.go: in-memory per-endpoint status
// - server.go, health.go: the status HTTP server
package flowsmonitor
