// Package formatter serializes snapshots for files written by the monitor.
//
// This package is organized into:
// - json.go: snapshot archive documents
// - records.go: flat record exports in CSV and JSON
package formatter
