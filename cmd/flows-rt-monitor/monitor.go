package main

import (
	"github.com/urfave/cli/v2"

	flowsmonitor "github.com/theoremus-urban-solutions/flows-rt-monitor"
)

func monitorCommand() *cli.Command {
	flags := append(endpointFlags(),
		&cli.IntFlag{
			Name:    "max-iterations",
			Aliases: []string{"n"},
			Usage:   "number of polls before stopping",
		},
		&cli.IntFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "seconds to wait between polls",
		},
		&cli.BoolFlag{
			Name:  "save-snapshots",
			Usage: "archive every snapshot that changed",
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "archive compression: none or zstd",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "serve /api/health, /api/status and /metrics on this address",
		},
	)

	return &cli.Command{
		Name:   "monitor",
		Usage:  "Poll the feed and log snapshot changes",
		Flags:  flags,
		Action: runMonitor,
	}
}

func runMonitor(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("max-iterations") {
		cfg.Monitor.MaxIterations = c.Int("max-iterations")
	}
	if c.IsSet("interval") {
		cfg.Monitor.IntervalSeconds = c.Int("interval")
	}
	if c.IsSet("save-snapshots") {
		cfg.Monitor.SaveSnapshots = c.Bool("save-snapshots")
	}
	if c.IsSet("compression") {
		cfg.Monitor.Compression = c.String("compression")
	}
	if c.IsSet("metrics-addr") {
		cfg.Server.Addr = c.String("metrics-addr")
	}

	logger := newLogger(c, cfg)
	runner, err := flowsmonitor.NewRunner(cfg, logger)
	if err != nil {
		return err
	}

	summaries, err := runner.Run(c.Context)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := s.WriteTo(c.App.Writer); err != nil {
			return err
		}
	}
	return nil
}
