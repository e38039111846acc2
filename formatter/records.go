package formatter

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

var recordHeader = []string{"street_id", "from_node_id", "speed_kmh", "olr_code", "timestamp", "timezone", "probe_count"}

// ExportRecord is one row of a one-shot export.
type ExportRecord struct {
	StreetID   int64   `json:"street_id"`
	FromNodeID int64   `json:"from_node_id"`
	SpeedKMH   float64 `json:"speed_kmh"`
	OlrCode    string  `json:"olr_code"`
	Timestamp  string  `json:"timestamp,omitempty"`
	Timezone   string  `json:"timezone,omitempty"`
	ProbeCount *uint32 `json:"probe_count,omitempty"`
}

// ExportRecords flattens records captured in s.
func ExportRecords(s *snapshot.Snapshot, records []snapshot.Measurement) []ExportRecord {
	ts := utils.Iso8601(s.CaptureTime)
	out := make([]ExportRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ExportRecord{
			StreetID:   r.SegmentID,
			FromNodeID: r.FromNodeID,
			SpeedKMH:   r.SpeedKMH,
			OlrCode:    r.LocationCode,
			Timestamp:  ts,
			Timezone:   s.Timezone,
			ProbeCount: r.ProbeCount,
		})
	}
	return out
}

// WriteCSV writes records with a header row.
func WriteCSV(w io.Writer, records []ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		probe := ""
		if r.ProbeCount != nil {
			probe = strconv.FormatUint(uint64(*r.ProbeCount), 10)
		}
		row := []string{
			strconv.FormatInt(r.StreetID, 10),
			strconv.FormatInt(r.FromNodeID, 10),
			strconv.FormatFloat(r.SpeedKMH, 'f', -1, 64),
			r.OlrCode,
			r.Timestamp,
			r.Timezone,
			probe,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []ExportRecord) error {
	if records == nil {
		records = []ExportRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}
