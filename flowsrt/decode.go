package flowsrt

import (
	"errors"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	fieldSnapshotTime  protowire.Number = 1
	fieldStreetTraffic protowire.Number = 2
	fieldTimezone      protowire.Number = 3
)

const (
	fieldStreetID         protowire.Number = 1
	fieldStreetFromNodeID protowire.Number = 2
	fieldStreetSpeedKMH   protowire.Number = 3
	fieldStreetProbeCount protowire.Number = 4
	fieldStreetOlrCode    protowire.Number = 5
)

// Decode parses a feed payload. An empty payload is a valid message with no
// entries; unknown fields are skipped.
func Decode(data []byte) (*RealtimeTraffic, error) {
	msg := &RealtimeTraffic{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, &DecodeError{Field: "tag", Err: protowire.ParseError(n)}
		}
		data = data[n:]

		switch {
		case num == fieldSnapshotTime && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, &DecodeError{Field: "snapshot_date_time", Err: protowire.ParseError(n)}
			}
			ts := &timestamppb.Timestamp{}
			if err := proto.Unmarshal(v, ts); err != nil {
				return nil, &DecodeError{Field: "snapshot_date_time", Err: err}
			}
			if err := ts.CheckValid(); err != nil {
				return nil, &DecodeError{Field: "snapshot_date_time", Err: err}
			}
			msg.SnapshotTime = ts.AsTime()
			msg.HasSnapshotTime = true
			data = data[n:]
		case num == fieldStreetTraffic && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, &DecodeError{Field: "street_traffic", Err: protowire.ParseError(n)}
			}
			st, err := decodeStreetTraffic(v)
			if err != nil {
				return nil, err
			}
			msg.StreetTraffic = append(msg.StreetTraffic, st)
			data = data[n:]
		case num == fieldTimezone && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, &DecodeError{Field: "timezone", Err: protowire.ParseError(n)}
			}
			msg.Timezone = string(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, &DecodeError{Field: "unknown field", Err: protowire.ParseError(n)}
			}
			data = data[n:]
		}
	}
	if msg.HasSnapshotTime {
		msg.SnapshotTime = msg.SnapshotTime.In(msg.Location())
	}
	return msg, nil
}

func decodeStreetTraffic(data []byte) (StreetTraffic, error) {
	var st StreetTraffic
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return st, &DecodeError{Field: "street_traffic.tag", Err: protowire.ParseError(n)}
		}
		data = data[n:]

		switch {
		case num == fieldStreetID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return st, &DecodeError{Field: "street_traffic.id", Err: protowire.ParseError(n)}
			}
			st.ID, st.HasID = int64(v), true
			data = data[n:]
		case num == fieldStreetFromNodeID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return st, &DecodeError{Field: "street_traffic.from_node_id", Err: protowire.ParseError(n)}
			}
			st.FromNodeID = int64(v)
			data = data[n:]
		case num == fieldStreetSpeedKMH:
			speed, n, err := consumeNumber(typ, data)
			if err != nil {
				return st, &DecodeError{Field: "street_traffic.speed_kmh", Err: err}
			}
			st.SpeedKMH = speed
			data = data[n:]
		case num == fieldStreetProbeCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return st, &DecodeError{Field: "street_traffic.probe_count", Err: protowire.ParseError(n)}
			}
			if v > math.MaxUint32 {
				return st, &DecodeError{Field: "street_traffic.probe_count", Err: errors.New("value overflows uint32")}
			}
			st.ProbeCount, st.HasProbeCount = uint32(v), true
			data = data[n:]
		case num == fieldStreetOlrCode && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return st, &DecodeError{Field: "street_traffic.olr_code", Err: protowire.ParseError(n)}
			}
			st.OlrCode = string(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return st, &DecodeError{Field: "street_traffic.unknown field", Err: protowire.ParseError(n)}
			}
			data = data[n:]
		}
	}
	return st, nil
}

// consumeNumber reads a float, double or integer encoded scalar.
func consumeNumber(typ protowire.Type, data []byte) (float64, int, error) {
	switch typ {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(data)
		if n < 0 {
			return 0, n, protowire.ParseError(n)
		}
		return float64(math.Float32frombits(v)), n, nil
	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(data)
		if n < 0 {
			return 0, n, protowire.ParseError(n)
		}
		return math.Float64frombits(v), n, nil
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return 0, n, protowire.ParseError(n)
		}
		return float64(int64(v)), n, nil
	}
	return 0, 0, errors.New("unsupported wire type for number")
}
