// Package flowsrt handles fetching and decoding the real-time traffic feed.
//
// The feed is a single protobuf message (DataprvTrafficRealtimeDataProto):
//
//	1  snapshot_date_time  google.protobuf.Timestamp
//	2  street_traffic      repeated StreetTraffic
//	3  timezone            string
//
// StreetTraffic:
//
//	1  id            int64
//	2  from_node_id  int64
//	3  speed_kmh     float (double and varint encodings are accepted too)
//	4  probe_count   uint32
//	5  olr_code      string
//
// The schema is published by the vendor as text only, so Decode walks the
// wire format with protowire instead of relying on generated bindings.
package flowsrt
