// Package monitor runs the poll loop for one real-time traffic endpoint.
//
// Each iteration fetches a payload, decodes and normalizes it, compares it
// with the previous snapshot and appends one row to the monitoring log.
// Changed snapshots can be archived as JSON documents. When the loop ends
// a summary is computed from the rows it wrote.
//
// This package is organized into:
// - state.go: loop states and iteration outcomes
// - loop.go: the state machine driving iterations
// - log.go: the CSV monitoring log
// - archive.go: changed-snapshot archive files
// - summary.go: run summary computed from log rows
package monitor
