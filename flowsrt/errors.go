package flowsrt

import (
	"fmt"
	"net/http"
)

// TransportError reports a failed retrieval: network failure, non-2xx
// status or an open circuit breaker.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Hint returns an operator-facing explanation for auth failures.
func (e *TransportError) Hint() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return "authentication failed, check the API key"
	case http.StatusForbidden:
		return "access forbidden, check the API key permissions"
	}
	return ""
}

// DecodeError reports a payload that is not a valid feed message.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
