package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
)

var captured = time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)

func message(entries ...flowsrt.StreetTraffic) *flowsrt.RealtimeTraffic {
	return &flowsrt.RealtimeTraffic{
		SnapshotTime:    captured,
		HasSnapshotTime: true,
		StreetTraffic:   entries,
	}
}

func street(code string, speed float64) flowsrt.StreetTraffic {
	return flowsrt.StreetTraffic{OlrCode: code, SpeedKMH: speed}
}

func mustNormalize(t *testing.T, msg *flowsrt.RealtimeTraffic) *Snapshot {
	t.Helper()
	s, err := Normalize(msg)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	return s
}

func keys(s *Snapshot) []string {
	out := make([]string, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, r.Key)
	}
	return out
}

func TestNormalize_SortsByLocationCode(t *testing.T) {
	s := mustNormalize(t, message(street("C", 10), street("A", 20), street("B", 30)))

	got := keys(s)
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if !s.CaptureTime.Equal(captured) {
		t.Errorf("capture time not carried over: %v", s.CaptureTime)
	}
}

func TestNormalize_FallsBackToSegmentID(t *testing.T) {
	s := mustNormalize(t, message(
		flowsrt.StreetTraffic{ID: 42, HasID: true, SpeedKMH: 12},
		street("Z", 30),
	))

	if s.Records[0].Key != "Z" || s.Records[1].Key != "id:42" {
		t.Errorf("unexpected keys %v", keys(s))
	}
}

func TestNormalize_DuplicateKeysCollapseLastWins(t *testing.T) {
	s := mustNormalize(t, message(street("A", 10), street("B", 20), street("A", 99)))

	if s.Len() != 2 {
		t.Fatalf("expected 2 records after collapsing, got %d", s.Len())
	}
	if s.Records[0].SpeedKMH != 99 {
		t.Errorf("expected last occurrence of A to win, got speed %v", s.Records[0].SpeedKMH)
	}
	if len(s.DuplicateKeys) != 1 || s.DuplicateKeys[0] != "A" {
		t.Errorf("expected duplicate key A to be reported, got %v", s.DuplicateKeys)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tests := []struct {
		name string
		msg  *flowsrt.RealtimeTraffic
	}{
		{name: "nil message", msg: nil},
		{name: "absent collection", msg: &flowsrt.RealtimeTraffic{}},
		{name: "entry without key", msg: message(street("A", 1), flowsrt.StreetTraffic{SpeedKMH: 5})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.msg)
			var malformed *MalformedSnapshotError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedSnapshotError, got %v", err)
			}
		})
	}
}

func TestNormalize_EmptyButValid(t *testing.T) {
	s := mustNormalize(t, message())
	if s.Len() != 0 {
		t.Errorf("expected empty snapshot, got %d records", s.Len())
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	s := mustNormalize(t, message(street("A", 50), street("B", 30)))

	first := Fingerprint(s.Records)
	for i := 0; i < 5; i++ {
		if got := Fingerprint(s.Records); got != first {
			t.Fatalf("fingerprint changed between runs: %s vs %s", first, got)
		}
	}
	if first != s.Digest {
		t.Errorf("snapshot digest %s differs from recomputed %s", s.Digest, first)
	}
	if len(first.String()) != 64 {
		t.Errorf("expected 64 hex chars, got %q", first.String())
	}

	t.Logf("✓ Fingerprint %s", first)
}

func TestFingerprint_OrderingIndependentAfterNormalize(t *testing.T) {
	a := mustNormalize(t, message(street("A", 50), street("B", 30), street("C", 10)))
	b := mustNormalize(t, message(street("C", 10), street("A", 50), street("B", 30)))

	if a.Digest != b.Digest {
		t.Fatalf("permutations should fingerprint equally: %s vs %s", a.Digest, b.Digest)
	}
	for i := range a.Records {
		if a.Records[i].Key != b.Records[i].Key || a.Records[i].SpeedKMH != b.Records[i].SpeedKMH {
			t.Fatalf("normalized sequences differ at %d: %+v vs %+v", i, a.Records[i], b.Records[i])
		}
	}
}

func TestFingerprint_SensitiveToValues(t *testing.T) {
	base := mustNormalize(t, message(street("A", 50)))

	var one uint32 = 1
	variants := map[string][]Measurement{
		"speed":       {{Key: "A", LocationCode: "A", SpeedKMH: 51}},
		"probe count": {{Key: "A", LocationCode: "A", SpeedKMH: 50, ProbeCount: &one}},
		"from node":   {{Key: "A", LocationCode: "A", SpeedKMH: 50, FromNodeID: 3}},
	}
	for name, records := range variants {
		if Fingerprint(records) == base.Digest {
			t.Errorf("%s change should alter the digest", name)
		}
	}

	twoRecords := []Measurement{{LocationCode: "A", SpeedKMH: 1}, {LocationCode: "B", SpeedKMH: 2}}
	swapped := []Measurement{twoRecords[1], twoRecords[0]}
	if Fingerprint(twoRecords) == Fingerprint(swapped) {
		t.Error("sequence order should alter the digest")
	}
}
