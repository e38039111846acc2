package flowsrt

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Encode serializes msg in the feed wire format. Speeds are written as
// 32-bit floats, the same encoding the live feed uses.
func Encode(msg *RealtimeTraffic) ([]byte, error) {
	var b []byte
	if msg == nil {
		return b, nil
	}
	if msg.HasSnapshotTime {
		ts, err := proto.Marshal(timestamppb.New(msg.SnapshotTime))
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldSnapshotTime, protowire.BytesType)
		b = protowire.AppendBytes(b, ts)
	}
	for _, st := range msg.StreetTraffic {
		b = protowire.AppendTag(b, fieldStreetTraffic, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeStreetTraffic(st))
	}
	if msg.Timezone != "" {
		b = protowire.AppendTag(b, fieldTimezone, protowire.BytesType)
		b = protowire.AppendString(b, msg.Timezone)
	}
	return b, nil
}

func encodeStreetTraffic(st StreetTraffic) []byte {
	var b []byte
	if st.HasID || st.ID != 0 {
		b = protowire.AppendTag(b, fieldStreetID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(st.ID))
	}
	if st.FromNodeID != 0 {
		b = protowire.AppendTag(b, fieldStreetFromNodeID, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(st.FromNodeID))
	}
	if st.SpeedKMH != 0 {
		b = protowire.AppendTag(b, fieldStreetSpeedKMH, protowire.Fixed32Type)
		b = protowire.AppendFixed32(b, math.Float32bits(float32(st.SpeedKMH)))
	}
	if st.HasProbeCount {
		b = protowire.AppendTag(b, fieldStreetProbeCount, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(st.ProbeCount))
	}
	if st.OlrCode != "" {
		b = protowire.AppendTag(b, fieldStreetOlrCode, protowire.BytesType)
		b = protowire.AppendString(b, st.OlrCode)
	}
	return b
}
