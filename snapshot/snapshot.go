package snapshot

import (
	"sort"
	"strconv"
	"time"
)

// Measurement is one road segment measured at the snapshot's capture time.
type Measurement struct {
	Key          string  `json:"-"`
	SegmentID    int64   `json:"id"`
	FromNodeID   int64   `json:"from_node_id"`
	SpeedKMH     float64 `json:"speed_kmh"`
	ProbeCount   *uint32 `json:"probe_count,omitempty"`
	LocationCode string  `json:"olr_code"`
}

// Snapshot is an immutable, normalized capture of all measured segments.
type Snapshot struct {
	CaptureTime time.Time
	Timezone    string
	Records     []Measurement
	Digest      Digest

	// DuplicateKeys lists keys that appeared more than once in the source
	// payload. Only the last occurrence of each is kept.
	DuplicateKeys []string
}

// Len returns the number of records; a nil snapshot has none.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// KeyFor returns the matching key for a segment.
func KeyFor(locationCode string, segmentID int64) string {
	if locationCode != "" {
		return locationCode
	}
	return "id:" + strconv.FormatInt(segmentID, 10)
}

// New builds a snapshot from records in any order. Records are keyed,
// stably sorted, collapsed last-wins on duplicate keys and fingerprinted.
// The records slice is owned by the snapshot afterwards.
func New(captureTime time.Time, timezone string, records []Measurement) *Snapshot {
	for i := range records {
		records[i].Key = KeyFor(records[i].LocationCode, records[i].SegmentID)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	records, dups := collapse(records)
	return &Snapshot{
		CaptureTime:   captureTime,
		Timezone:      timezone,
		Records:       records,
		Digest:        Fingerprint(records),
		DuplicateKeys: dups,
	}
}

func collapse(sorted []Measurement) ([]Measurement, []string) {
	out := sorted[:0]
	var dups []string
	for i := range sorted {
		if i+1 < len(sorted) && sorted[i+1].Key == sorted[i].Key {
			if len(dups) == 0 || dups[len(dups)-1] != sorted[i].Key {
				dups = append(dups, sorted[i].Key)
			}
			continue
		}
		out = append(out, sorted[i])
	}
	return out, dups
}
