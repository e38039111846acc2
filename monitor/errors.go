package monitor

import "fmt"

// PersistenceError reports a failed write to the monitoring log or the
// snapshot archive. It never stops the loop.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
