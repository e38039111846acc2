package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/formatter"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

func fetchCommand() *cli.Command {
	flags := append(endpointFlags(),
		&cli.StringFlag{
			Name:  "format",
			Usage: "csv, json or both",
			Value: "both",
		},
		&cli.Float64Flag{
			Name:  "min-speed",
			Usage: "keep segments at or above this speed (km/h)",
		},
		&cli.Float64Flag{
			Name:  "max-speed",
			Usage: "keep segments at or below this speed (km/h)",
		},
		&cli.Int64SliceFlag{
			Name:  "street-ids",
			Usage: "keep only these street ids",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "also write the raw payload",
		},
	)

	return &cli.Command{
		Name:   "fetch",
		Usage:  "Fetch one snapshot and export it to CSV and/or JSON",
		Flags:  flags,
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	format := c.String("format")
	if format != "csv" && format != "json" && format != "both" {
		return &config.ConfigError{Type: config.ErrTypeValidation, Message: fmt.Sprintf("unknown format %q", format)}
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	ep := cfg.Endpoints[0]

	var filter snapshot.Filter
	if c.IsSet("min-speed") {
		v := c.Float64("min-speed")
		filter.MinSpeed = &v
	}
	if c.IsSet("max-speed") {
		v := c.Float64("max-speed")
		filter.MaxSpeed = &v
	}
	filter.SegmentIDs = c.Int64Slice("street-ids")

	if err := os.MkdirAll(cfg.Monitor.OutputDir, 0o755); err != nil {
		return err
	}
	stamp := utils.FileStamp(time.Now())

	payload, err := newFetcher(cfg).fetch(c.Context, ep.URL)
	if err != nil {
		return err
	}
	logger.Info("payload fetched", "endpoint", ep.Name, "bytes", len(payload))

	if c.Bool("debug") {
		path := filepath.Join(cfg.Monitor.OutputDir, fmt.Sprintf("raw_%s.pb", stamp))
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return err
		}
		logger.Debug("raw payload written", "path", path)
	}

	msg, err := flowsrt.Decode(payload)
	if err != nil {
		return err
	}
	snap, err := snapshot.Normalize(msg)
	if err != nil {
		return err
	}
	if len(snap.DuplicateKeys) > 0 {
		logger.Warn("duplicate segment keys in snapshot, keeping last occurrence", "count", len(snap.DuplicateKeys))
	}

	records := filter.Apply(snap.Records)
	logSpeedStats(logger, snap, records)

	rows := formatter.ExportRecords(snap, records)
	if format == "csv" || format == "both" {
		path := filepath.Join(cfg.Monitor.OutputDir, fmt.Sprintf("traffic_%s.csv", stamp))
		if err := writeExport(path, func(f *os.File) error { return formatter.WriteCSV(f, rows) }); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "CSV written: %s\n", path)
	}
	if format == "json" || format == "both" {
		path := filepath.Join(cfg.Monitor.OutputDir, fmt.Sprintf("traffic_%s.json", stamp))
		if err := writeExport(path, func(f *os.File) error { return formatter.WriteJSON(f, rows) }); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "JSON written: %s\n", path)
	}
	return nil
}

func logSpeedStats(logger *slog.Logger, snap *snapshot.Snapshot, records []snapshot.Measurement) {
	stats := snapshot.ComputeSpeedStats(records)
	logger.Info("snapshot decoded",
		"snapshot_time", utils.Iso8601(snap.CaptureTime),
		"records", snap.Len(),
		"selected", stats.Count,
		"min_kmh", stats.Min,
		"max_kmh", stats.Max,
		"mean_kmh", stats.Mean,
	)
}

func writeExport(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
