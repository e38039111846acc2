package snapshot

import "testing"

func TestDetect_FirstPoll(t *testing.T) {
	cur := mustNormalize(t, message(street("A", 50), street("B", 30), street("C", 10)))

	r := Detect(nil, cur)

	if !r.HasChanges || r.NewCount != 3 || r.UpdatedCount != 0 || r.TotalCount != 3 {
		t.Errorf("unexpected first-poll report: %+v", r)
	}
	if r.Digest != cur.Digest {
		t.Error("report should carry the current digest")
	}
}

func TestDetect_NoOp(t *testing.T) {
	prev := mustNormalize(t, message(street("A", 50), street("B", 30)))
	cur := mustNormalize(t, message(street("B", 30), street("A", 50)))

	r := Detect(prev, cur)
	if r.HasChanges || r.NewCount != 0 || r.UpdatedCount != 0 {
		t.Errorf("expected no changes, got %+v", r)
	}
	if r.TotalCount != 2 {
		t.Errorf("expected total 2, got %d", r.TotalCount)
	}

	// The full comparison must agree with the digest short-circuit.
	var full ChangeReport
	mergeCompare(prev.Records, cur.Records, &full)
	if full.NewCount != 0 || full.UpdatedCount != 0 || full.RemovedCount != 0 {
		t.Errorf("full comparison found differences in identical snapshots: %+v", full)
	}
}

func TestDetect_UpdatedSegment(t *testing.T) {
	prev := mustNormalize(t, message(street("A", 50), street("B", 30)))
	cur := mustNormalize(t, message(street("A", 55), street("B", 30)))

	r := Detect(prev, cur)

	if !r.HasChanges || r.UpdatedCount != 1 || r.NewCount != 0 || r.TotalCount != 2 {
		t.Errorf("unexpected report: %+v", r)
	}
	if len(r.Samples) != 1 || r.Samples[0].Key != "A" || r.Samples[0].PreviousSpeed != 50 || r.Samples[0].CurrentSpeed != 55 {
		t.Errorf("unexpected samples: %+v", r.Samples)
	}
}

func TestDetect_NewSegment(t *testing.T) {
	prev := mustNormalize(t, message(street("A", 50)))
	cur := mustNormalize(t, message(street("A", 50), street("C", 40)))

	r := Detect(prev, cur)

	if !r.HasChanges || r.NewCount != 1 || r.UpdatedCount != 0 || r.TotalCount != 2 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestDetect_RemovedSegmentsAreInformational(t *testing.T) {
	prev := mustNormalize(t, message(street("A", 50), street("B", 30), street("C", 20)))
	cur := mustNormalize(t, message(street("B", 30)))

	r := Detect(prev, cur)

	if !r.HasChanges {
		t.Error("removal changes the digest and should be flagged as a change")
	}
	if r.NewCount != 0 || r.UpdatedCount != 0 || r.TotalCount != 1 {
		t.Errorf("removals must not count as new or updated: %+v", r)
	}
	if r.RemovedCount != 2 {
		t.Errorf("expected 2 removed, got %d", r.RemovedCount)
	}
}

func TestDetect_SamplesAreBounded(t *testing.T) {
	prev := mustNormalize(t, message(street("A", 1), street("B", 2), street("C", 3), street("D", 4)))
	cur := mustNormalize(t, message(street("A", 5), street("B", 6), street("C", 7), street("D", 8)))

	r := Detect(prev, cur)
	if r.UpdatedCount != 4 {
		t.Errorf("expected 4 updates, got %d", r.UpdatedCount)
	}
	if len(r.Samples) != MaxChangeSamples {
		t.Errorf("expected %d samples, got %d", MaxChangeSamples, len(r.Samples))
	}
}

func TestDetect_MixedKeys(t *testing.T) {
	prev := New(captured, "", []Measurement{
		{SegmentID: 7, SpeedKMH: 10},
		{LocationCode: "K", SpeedKMH: 20},
	})
	cur := New(captured, "", []Measurement{
		{LocationCode: "K", SpeedKMH: 20},
		{SegmentID: 7, SpeedKMH: 11},
		{SegmentID: 8, SpeedKMH: 12},
	})

	r := Detect(prev, cur)
	if r.NewCount != 1 || r.UpdatedCount != 1 || r.TotalCount != 3 {
		t.Errorf("unexpected report: %+v", r)
	}
}
