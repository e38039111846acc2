package flowsrt

import "time"

// RealtimeTraffic is one decoded feed payload.
type RealtimeTraffic struct {
	SnapshotTime    time.Time
	HasSnapshotTime bool
	Timezone        string
	StreetTraffic   []StreetTraffic
}

// StreetTraffic is a single measured street segment.
type StreetTraffic struct {
	ID            int64
	HasID         bool
	FromNodeID    int64
	SpeedKMH      float64
	ProbeCount    uint32
	HasProbeCount bool
	OlrCode       string
}

// Location returns the snapshot time converted to the feed's timezone.
// Unknown zone names leave the time in UTC.
func (m *RealtimeTraffic) Location() *time.Location {
	if m == nil || m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
