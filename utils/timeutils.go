package utils

import (
	"time"

	"github.com/relvacode/iso8601"
)

const (
	iso8601Millis = "2006-01-02T15:04:05.000Z07:00"
	fileStamp     = "20060102_150405"
)

// Iso8601 formats t with millisecond precision and its zone offset.
// The zero time formats as the empty string.
func Iso8601(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(iso8601Millis)
}

// ParseIso8601 parses any ISO8601 timestamp. The empty string parses to the
// zero time.
func ParseIso8601(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return iso8601.ParseString(s)
}

// FileStamp formats t for use in file names (YYYYmmdd_HHMMSS).
func FileStamp(t time.Time) string {
	return t.Format(fileStamp)
}
