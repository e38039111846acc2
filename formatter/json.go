package formatter

import (
	"encoding/json"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

// ArchiveDocument is the archived form of a changed snapshot.
type ArchiveDocument struct {
	SnapshotTime string                 `json:"snapshot_time"`
	Timezone     string                 `json:"timezone,omitempty"`
	CallNumber   int                    `json:"call_number"`
	RecordCount  int                    `json:"record_count"`
	DataHash     string                 `json:"data_hash"`
	TrafficData  []snapshot.Measurement `json:"traffic_data"`
}

// NewArchiveDocument wraps s as the document for poll iteration call.
func NewArchiveDocument(call int, s *snapshot.Snapshot) ArchiveDocument {
	records := s.Records
	if records == nil {
		records = []snapshot.Measurement{}
	}
	return ArchiveDocument{
		SnapshotTime: utils.Iso8601(s.CaptureTime),
		Timezone:     s.Timezone,
		CallNumber:   call,
		RecordCount:  len(records),
		DataHash:     s.Digest.String(),
		TrafficData:  records,
	}
}

// BuildJSON serializes v as indented JSON
func BuildJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
