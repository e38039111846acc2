package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

// ErrLoopFinished is returned when Run is called on a loop that already ran.
var ErrLoopFinished = errors.New("monitor: loop already finished")

// Source retrieves one raw payload per call.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// DecodeFunc turns a raw payload into a decoded message.
type DecodeFunc func([]byte) (*flowsrt.RealtimeTraffic, error)

// IterationResult is reported to a Recorder after every logged iteration.
type IterationResult struct {
	Iteration    int
	Outcome      Outcome
	Report       snapshot.ChangeReport
	SnapshotTime time.Time
	Started      time.Time
	Duration     time.Duration
	Err          error
}

// Recorder observes finished iterations.
type Recorder interface {
	ObserveIteration(endpoint string, result IterationResult)
}

type recorders []Recorder

func (rs recorders) ObserveIteration(endpoint string, result IterationResult) {
	for _, r := range rs {
		r.ObserveIteration(endpoint, result)
	}
}

// Recorders fans results out to every non-nil recorder.
func Recorders(rs ...Recorder) Recorder {
	out := make(recorders, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// LoopConfig configures a poll loop.
type LoopConfig struct {
	Endpoint      string
	Source        Source
	Decode        DecodeFunc // flowsrt.Decode when nil
	OutputDir     string
	MaxIterations int
	Interval      time.Duration
	SaveSnapshots bool
	Compression   Compression
	Logger        *slog.Logger
	Recorder      Recorder
	Now           func() time.Time
}

// Loop polls one endpoint. It owns its monitoring log and the previous
// snapshot; nothing is shared with other loops.
type Loop struct {
	cfg     LoopConfig
	runID   string
	logPath string
	log     *Log
	archive *Archive
	logger  *slog.Logger

	previous  *snapshot.Snapshot
	rows      []LogRow
	cancelled bool
	finished  bool
}

type iteration struct {
	n       int
	started time.Time
	payload []byte
	msg     *flowsrt.RealtimeTraffic
	current *snapshot.Snapshot
	report  snapshot.ChangeReport
	outcome Outcome
	err     error
}

func (it *iteration) fail(outcome Outcome, err error) {
	it.outcome = outcome
	it.err = err
}

// NewLoop validates cfg and creates the output directory. The monitoring
// log is named after the current time and the run id, and is only created
// when Run starts.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if err := checkLoopConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Decode == nil {
		cfg.Decode = flowsrt.Decode
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = Recorders()
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "create output directory", Path: cfg.OutputDir, Err: err}
	}

	l := &Loop{
		cfg:   cfg,
		runID: uuid.NewString(),
	}
	l.logger = cfg.Logger.With("endpoint", cfg.Endpoint, "run_id", l.runID)

	if cfg.SaveSnapshots {
		archive, err := NewArchive(cfg.OutputDir, cfg.Compression)
		if err != nil {
			return nil, &config.ConfigError{Type: config.ErrTypeValidation, Message: "invalid snapshot archive settings", Err: err}
		}
		l.archive = archive
	}

	l.logPath = filepath.Join(cfg.OutputDir,
		fmt.Sprintf("monitor_log_%s_%s.csv", utils.FileStamp(cfg.Now()), l.runID[:8]))
	return l, nil
}

func checkLoopConfig(cfg LoopConfig) error {
	invalid := func(msg string) error {
		return &config.ConfigError{Type: config.ErrTypeValidation, Message: msg}
	}
	switch {
	case cfg.Endpoint == "":
		return invalid("endpoint name is required")
	case cfg.Source == nil:
		return invalid("a payload source is required")
	case cfg.OutputDir == "":
		return invalid("output directory is required")
	case cfg.MaxIterations <= 0:
		return invalid("max iterations must be positive")
	case cfg.Interval < 0:
		return invalid("interval must not be negative")
	}
	return nil
}

// RunID identifies this loop's run in logs and summaries.
func (l *Loop) RunID() string { return l.runID }

// LogPath returns the path of the monitoring log.
func (l *Loop) LogPath() string { return l.logPath }

// Previous returns the last successfully compared snapshot.
func (l *Loop) Previous() *snapshot.Snapshot { return l.previous }

// Run polls until MaxIterations rows were logged or ctx is cancelled,
// then writes the run summary next to the log. Iteration failures are
// logged and never end the run; only failing to create the log does.
func (l *Loop) Run(ctx context.Context) (Summary, error) {
	if l.finished {
		return Summary{}, ErrLoopFinished
	}
	l.finished = true

	monitorLog, err := CreateNewLog(l.logPath)
	if err != nil {
		return Summary{}, err
	}
	l.log = monitorLog

	l.logger.Info("monitoring started",
		"max_iterations", l.cfg.MaxIterations,
		"interval", l.cfg.Interval,
		"log", l.logPath,
		"save_snapshots", l.archive != nil,
	)

	state := StateIdle
	it := &iteration{}
	for state != StateDone {
		// A determined outcome is always logged, even when cancelled.
		if state != StateLogging && ctx.Err() != nil {
			l.cancelled = true
			break
		}
		state = l.step(ctx, state, it)
	}
	return l.finish(), nil
}

func (l *Loop) step(ctx context.Context, state State, it *iteration) State {
	switch state {
	case StateIdle:
		*it = iteration{n: it.n + 1, started: l.cfg.Now()}
		l.logger.Debug("poll started", "iteration", it.n)

	case StateFetching:
		payload, err := l.cfg.Source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.cancelled = true
				return StateDone
			}
			it.fail(OutcomeFetchError, err)
			break
		}
		it.payload = payload

	case StateParsing:
		msg, err := l.cfg.Decode(it.payload)
		if err != nil {
			it.fail(OutcomeDecodeError, err)
			break
		}
		it.msg = msg

	case StateNormalizing:
		current, err := snapshot.Normalize(it.msg)
		if err != nil {
			it.fail(OutcomeMalformed, err)
			break
		}
		it.current = current

	case StateComparing:
		it.report = snapshot.Detect(l.previous, it.current)
		l.previous = it.current

	case StateLogging:
		l.record(it)
		return next(state, OutcomeOK, it.n >= l.cfg.MaxIterations)

	case StateSleeping:
		if !l.sleep(ctx) {
			l.cancelled = true
			return StateDone
		}
		return next(state, OutcomeOK, false)
	}
	return next(state, it.outcome, false)
}

func (l *Loop) record(it *iteration) {
	row := LogRow{
		Timestamp: it.started,
		Iteration: it.n,
		Status:    it.outcome,
	}
	if it.outcome == OutcomeOK {
		row.SnapshotTime = it.current.CaptureTime
		row.TotalRecords = it.report.TotalCount
		row.ChangesDetected = it.report.HasChanges
		row.NewRecords = it.report.NewCount
		row.UpdatedRecords = it.report.UpdatedCount
		row.DataHash = it.report.Digest.String()
		l.logIteration(it)
	} else {
		l.logFailure(it)
	}

	l.rows = append(l.rows, row)
	if err := l.log.Append(row); err != nil {
		l.logger.Error("failed to append monitoring log row",
			"iteration", it.n, "timestamp", utils.Iso8601(it.started), "error", err)
	}

	l.cfg.Recorder.ObserveIteration(l.cfg.Endpoint, IterationResult{
		Iteration:    it.n,
		Outcome:      it.outcome,
		Report:       it.report,
		SnapshotTime: row.SnapshotTime,
		Started:      it.started,
		Duration:     l.cfg.Now().Sub(it.started),
		Err:          it.err,
	})
}

func (l *Loop) logIteration(it *iteration) {
	report := it.report
	if dups := it.current.DuplicateKeys; len(dups) > 0 {
		l.logger.Warn("duplicate segment keys in snapshot, keeping last occurrence",
			"iteration", it.n, "count", len(dups), "keys", firstKeys(dups, 5))
	}

	l.logger.Info("poll completed",
		"iteration", it.n,
		"snapshot_time", utils.Iso8601(it.current.CaptureTime),
		"records", report.TotalCount,
		"changes", report.HasChanges,
		"new", report.NewCount,
		"updated", report.UpdatedCount,
		"removed", report.RemovedCount,
		"hash", report.Digest.String(),
	)
	for _, c := range report.Samples {
		l.logger.Info("speed changed",
			"iteration", it.n,
			"segment", c.Key,
			"from_node_id", c.FromNodeID,
			"previous_kmh", c.PreviousSpeed,
			"current_kmh", c.CurrentSpeed,
		)
	}

	if report.HasChanges && l.archive != nil {
		path, err := l.archive.Write(it.n, it.current)
		if err != nil {
			l.logger.Error("failed to archive snapshot",
				"iteration", it.n, "timestamp", utils.Iso8601(it.started), "error", err)
			return
		}
		l.logger.Debug("snapshot archived", "iteration", it.n, "path", path)
	}
}

func (l *Loop) logFailure(it *iteration) {
	attrs := []any{
		"iteration", it.n,
		"timestamp", utils.Iso8601(it.started),
		"outcome", it.outcome.String(),
		"error", it.err,
	}
	var te *flowsrt.TransportError
	if errors.As(it.err, &te) {
		if hint := te.Hint(); hint != "" {
			attrs = append(attrs, "hint", hint)
		}
	}
	l.logger.Warn("poll failed, keeping previous snapshot", attrs...)
}

func (l *Loop) sleep(ctx context.Context) bool {
	if l.cfg.Interval <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(l.cfg.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *Loop) finish() Summary {
	summary := Summarize(l.rows)
	summary.RunID = l.runID
	summary.Endpoint = l.cfg.Endpoint
	summary.LogPath = l.logPath
	summary.Cancelled = l.cancelled

	if err := l.log.Close(); err != nil {
		l.logger.Error("failed to close monitoring log", "error", err)
	}
	path, err := writeSummaryFile(l.cfg.OutputDir, summary)
	if err != nil {
		l.logger.Error("failed to write summary", "error", err)
	}

	l.logger.Info("monitoring finished",
		"iterations", summary.Iterations,
		"failed", summary.FailedIterations,
		"with_changes", summary.IterationsWithChanges,
		"avg_records", summary.AvgRecords,
		"cancelled", summary.Cancelled,
		"summary", path,
	)
	return summary
}

func firstKeys(keys []string, n int) []string {
	if len(keys) > n {
		return keys[:n]
	}
	return keys
}
