// Package utils provides internal utility functions for the monitor.
// This package is not intended to be imported by external code.
//
// It contains:
//   - ISO8601 formatting and parsing for log timestamps
//   - File name timestamps
package utils
