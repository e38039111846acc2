package snapshot

import "math"

// Filter selects records for one-shot exports. Nil bounds and an empty id
// list match everything.
type Filter struct {
	MinSpeed   *float64
	MaxSpeed   *float64
	SegmentIDs []int64
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return f.MinSpeed == nil && f.MaxSpeed == nil && len(f.SegmentIDs) == 0
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Measurement) []Measurement {
	if f.IsZero() {
		return records
	}
	ids := make(map[int64]struct{}, len(f.SegmentIDs))
	for _, id := range f.SegmentIDs {
		ids[id] = struct{}{}
	}
	out := make([]Measurement, 0, len(records))
	for _, r := range records {
		if f.MinSpeed != nil && r.SpeedKMH < *f.MinSpeed {
			continue
		}
		if f.MaxSpeed != nil && r.SpeedKMH > *f.MaxSpeed {
			continue
		}
		if len(ids) > 0 {
			if _, ok := ids[r.SegmentID]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// SpeedStats holds basic statistics over record speeds.
type SpeedStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// ComputeSpeedStats returns statistics for records; zero when empty.
func ComputeSpeedStats(records []Measurement) SpeedStats {
	if len(records) == 0 {
		return SpeedStats{}
	}
	stats := SpeedStats{Count: len(records), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, r := range records {
		stats.Min = math.Min(stats.Min, r.SpeedKMH)
		stats.Max = math.Max(stats.Max, r.SpeedKMH)
		sum += r.SpeedKMH
	}
	stats.Mean = sum / float64(len(records))
	return stats
}
