package monitor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

// LogHeader is the header row of a monitoring log.
var LogHeader = []string{
	"timestamp",
	"snapshot_time",
	"total_records",
	"changes_detected",
	"new_records",
	"updated_records",
	"data_hash",
	"iteration",
	"status",
}

// LogRow is one poll iteration in the monitoring log. Failed iterations
// have an empty DataHash and zero counts.
type LogRow struct {
	Timestamp       time.Time
	SnapshotTime    time.Time
	TotalRecords    int
	ChangesDetected bool
	NewRecords      int
	UpdatedRecords  int
	DataHash        string
	Iteration       int
	Status          Outcome
}

func (r LogRow) fields() []string {
	return []string{
		utils.Iso8601(r.Timestamp),
		utils.Iso8601(r.SnapshotTime),
		strconv.Itoa(r.TotalRecords),
		strconv.FormatBool(r.ChangesDetected),
		strconv.Itoa(r.NewRecords),
		strconv.Itoa(r.UpdatedRecords),
		r.DataHash,
		strconv.Itoa(r.Iteration),
		r.Status.String(),
	}
}

// Log is an append-only CSV monitoring log. Rows are written whole and
// synced to disk before Append returns.
type Log struct {
	path string
	file *os.File
	buf  bytes.Buffer
}

// CreateLog opens path for appending, writing the header if the file is
// empty.
func CreateLog(path string) (*Log, error) {
	return openLog(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

// CreateNewLog is CreateLog for a file that must not exist yet.
func CreateNewLog(path string) (*Log, error) {
	return openLog(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY|os.O_APPEND)
}

func openLog(path string, flag int) (*Log, error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, &PersistenceError{Op: "open log", Path: path, Err: err}
	}
	l := &Log{path: path, file: f}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &PersistenceError{Op: "stat log", Path: path, Err: err}
	}
	if stat.Size() == 0 {
		if err := l.write(LogHeader); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append writes row and syncs the file.
func (l *Log) Append(row LogRow) error {
	return l.write(row.fields())
}

func (l *Log) write(record []string) error {
	l.buf.Reset()
	w := csv.NewWriter(&l.buf)
	if err := w.Write(record); err != nil {
		return &PersistenceError{Op: "encode log row", Path: l.path, Err: err}
	}
	w.Flush()
	if _, err := l.file.Write(l.buf.Bytes()); err != nil {
		return &PersistenceError{Op: "append log row", Path: l.path, Err: err}
	}
	if err := l.file.Sync(); err != nil {
		return &PersistenceError{Op: "sync log", Path: l.path, Err: err}
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	if err := l.file.Close(); err != nil {
		return &PersistenceError{Op: "close log", Path: l.path, Err: err}
	}
	return nil
}

// ReadLog parses a monitoring log. Logs without the iteration and status
// columns are accepted; their rows are numbered in file order and marked
// successful unless the hash is empty.
func ReadLog(r io.Reader) ([]LogRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range LogHeader[:7] {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("log is missing column %q", name)
		}
	}

	var rows []LogRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read log line %d: %w", line, err)
		}
		row, err := parseRow(rec, cols, len(rows)+1)
		if err != nil {
			return nil, fmt.Errorf("log line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(rec []string, cols map[string]int, ordinal int) (LogRow, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var row LogRow
	var err error
	if row.Timestamp, err = utils.ParseIso8601(get("timestamp")); err != nil {
		return row, fmt.Errorf("timestamp: %w", err)
	}
	if row.SnapshotTime, err = utils.ParseIso8601(get("snapshot_time")); err != nil {
		return row, fmt.Errorf("snapshot_time: %w", err)
	}
	if row.TotalRecords, err = atoi(get("total_records")); err != nil {
		return row, fmt.Errorf("total_records: %w", err)
	}
	if row.NewRecords, err = atoi(get("new_records")); err != nil {
		return row, fmt.Errorf("new_records: %w", err)
	}
	if row.UpdatedRecords, err = atoi(get("updated_records")); err != nil {
		return row, fmt.Errorf("updated_records: %w", err)
	}
	if v := get("changes_detected"); v != "" {
		if row.ChangesDetected, err = strconv.ParseBool(v); err != nil {
			return row, fmt.Errorf("changes_detected: %w", err)
		}
	}
	row.DataHash = get("data_hash")

	row.Iteration = ordinal
	if v := get("iteration"); v != "" {
		if row.Iteration, err = strconv.Atoi(v); err != nil {
			return row, fmt.Errorf("iteration: %w", err)
		}
	}
	switch v := get("status"); {
	case v != "":
		if row.Status, err = ParseOutcome(v); err != nil {
			return row, err
		}
	case row.DataHash == "":
		row.Status = OutcomeFetchError
	}
	return row, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
