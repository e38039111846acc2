package monitor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

// SummaryFileName is written next to the monitoring log when a run ends.
const SummaryFileName = "monitoring_summary.txt"

// Summary describes a finished (or re-read) monitoring run. Record counts
// only consider successful iterations.
type Summary struct {
	RunID    string
	Endpoint string
	LogPath  string

	Iterations            int
	FailedIterations      int
	IterationsWithChanges int

	MinRecords int
	MaxRecords int
	AvgRecords float64

	FirstPoll time.Time
	LastPoll  time.Time
	Cancelled bool
}

// Summarize computes a summary from monitoring log rows.
func Summarize(rows []LogRow) Summary {
	var s Summary
	var total, ok int
	for _, row := range rows {
		s.Iterations++
		if s.FirstPoll.IsZero() || row.Timestamp.Before(s.FirstPoll) {
			s.FirstPoll = row.Timestamp
		}
		if row.Timestamp.After(s.LastPoll) {
			s.LastPoll = row.Timestamp
		}
		if row.Status != OutcomeOK {
			s.FailedIterations++
			continue
		}
		if row.ChangesDetected {
			s.IterationsWithChanges++
		}
		if ok == 0 || row.TotalRecords < s.MinRecords {
			s.MinRecords = row.TotalRecords
		}
		if row.TotalRecords > s.MaxRecords {
			s.MaxRecords = row.TotalRecords
		}
		total += row.TotalRecords
		ok++
	}
	if ok > 0 {
		s.AvgRecords = float64(total) / float64(ok)
	}
	return s
}

// WriteTo writes a human readable report.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString("Monitoring summary\n")
	b.WriteString("==================\n")
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run ID:                  %s\n", s.RunID)
	}
	if s.Endpoint != "" {
		fmt.Fprintf(&b, "Endpoint:                %s\n", s.Endpoint)
	}
	if s.LogPath != "" {
		fmt.Fprintf(&b, "Log file:                %s\n", s.LogPath)
	}
	fmt.Fprintf(&b, "Total API calls:         %d\n", s.Iterations)
	fmt.Fprintf(&b, "Failed calls:            %d\n", s.FailedIterations)
	fmt.Fprintf(&b, "Calls with changes:      %d\n", s.IterationsWithChanges)
	if s.Iterations > s.FailedIterations {
		fmt.Fprintf(&b, "Average records:         %.1f\n", s.AvgRecords)
		fmt.Fprintf(&b, "Min records:             %d\n", s.MinRecords)
		fmt.Fprintf(&b, "Max records:             %d\n", s.MaxRecords)
	}
	if !s.FirstPoll.IsZero() {
		fmt.Fprintf(&b, "First poll:              %s\n", utils.Iso8601(s.FirstPoll))
		fmt.Fprintf(&b, "Last poll:               %s\n", utils.Iso8601(s.LastPoll))
	}
	if s.Cancelled {
		b.WriteString("Stopped by operator before the last iteration\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// writeSummaryFile writes s into dir.
func writeSummaryFile(dir string, s Summary) (string, error) {
	path := filepath.Join(dir, SummaryFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", &PersistenceError{Op: "create summary", Path: path, Err: err}
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return "", &PersistenceError{Op: "write summary", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &PersistenceError{Op: "close summary", Path: path, Err: err}
	}
	return path, nil
}
