package snapshot

import "fmt"

// MalformedSnapshotError reports a decoded payload that lacks required
// fields. Index is the offending entry, or -1 for the payload as a whole.
type MalformedSnapshotError struct {
	Index  int
	Reason string
}

func (e *MalformedSnapshotError) Error() string {
	if e.Index < 0 {
		return "malformed snapshot: " + e.Reason
	}
	return fmt.Sprintf("malformed snapshot: entry %d: %s", e.Index, e.Reason)
}
