package snapshot

import (
	"math"
	"time"
)

// MaxChangeSamples bounds the number of speed changes kept in a report.
const MaxChangeSamples = 2

// SpeedChange describes one segment whose speed differs between snapshots.
type SpeedChange struct {
	Key           string
	SegmentID     int64
	FromNodeID    int64
	PreviousSpeed float64
	CurrentSpeed  float64
}

// ChangeReport summarizes how current differs from previous.
//
// RemovedCount is informational: segments that disappeared do not count
// towards HasChanges beyond changing the digest, and are not written to the
// monitoring log.
type ChangeReport struct {
	HasChanges   bool
	NewCount     int
	UpdatedCount int
	RemovedCount int
	TotalCount   int
	Digest       Digest
	Samples      []SpeedChange
}

// Detect compares two normalized snapshots. A nil previous marks the first
// observation, where every record is new.
func Detect(previous, current *Snapshot) ChangeReport {
	if current == nil {
		current = New(time.Time{}, "", nil)
	}
	report := ChangeReport{
		TotalCount: len(current.Records),
		Digest:     current.Digest,
	}

	switch {
	case previous == nil:
		report.HasChanges = true
		report.NewCount = len(current.Records)
	case previous.Digest == current.Digest:
		// identical content
	default:
		report.HasChanges = true
		mergeCompare(previous.Records, current.Records, &report)
	}
	return report
}

// mergeCompare walks both key-sorted sequences once.
func mergeCompare(prev, cur []Measurement, report *ChangeReport) {
	i, j := 0, 0
	for i < len(prev) || j < len(cur) {
		switch {
		case j >= len(cur) || (i < len(prev) && prev[i].Key < cur[j].Key):
			report.RemovedCount++
			i++
		case i >= len(prev) || cur[j].Key < prev[i].Key:
			report.NewCount++
			j++
		default:
			if speedDiffers(prev[i].SpeedKMH, cur[j].SpeedKMH) {
				report.UpdatedCount++
				if len(report.Samples) < MaxChangeSamples {
					report.Samples = append(report.Samples, SpeedChange{
						Key:           cur[j].Key,
						SegmentID:     cur[j].SegmentID,
						FromNodeID:    cur[j].FromNodeID,
						PreviousSpeed: prev[i].SpeedKMH,
						CurrentSpeed:  cur[j].SpeedKMH,
					})
				}
			}
			i++
			j++
		}
	}
}

// speedDiffers is exact inequality, except that NaN equals NaN.
func speedDiffers(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return false
	}
	return a != b
}
