package snapshot

import "github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"

// Normalize converts a decoded payload into a Snapshot. A payload with a
// snapshot time but no entries is a valid empty snapshot; a payload with
// neither is treated as missing its street collection.
func Normalize(msg *flowsrt.RealtimeTraffic) (*Snapshot, error) {
	if msg == nil {
		return nil, &MalformedSnapshotError{Index: -1, Reason: "no message"}
	}
	if msg.StreetTraffic == nil && !msg.HasSnapshotTime {
		return nil, &MalformedSnapshotError{Index: -1, Reason: "street traffic collection is absent"}
	}

	records := make([]Measurement, 0, len(msg.StreetTraffic))
	for i, st := range msg.StreetTraffic {
		if st.OlrCode == "" && !st.HasID {
			return nil, &MalformedSnapshotError{Index: i, Reason: "entry has neither olr_code nor id"}
		}
		m := Measurement{
			SegmentID:    st.ID,
			FromNodeID:   st.FromNodeID,
			SpeedKMH:     st.SpeedKMH,
			LocationCode: st.OlrCode,
		}
		if st.HasProbeCount {
			pc := st.ProbeCount
			m.ProbeCount = &pc
		}
		records = append(records, m)
	}
	return New(msg.SnapshotTime, msg.Timezone, records), nil
}
