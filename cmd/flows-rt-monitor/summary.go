package main

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/monitor"
)

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Summarize an existing monitoring log",
		ArgsUsage: "<monitor_log.csv>",
		Action:    runSummary,
	}
}

func runSummary(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("summary expects exactly one log file")
	}
	path := c.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := monitor.ReadLog(f)
	if err != nil {
		return err
	}
	s := monitor.Summarize(rows)
	s.LogPath = path
	_, err = s.WriteTo(c.App.Writer)
	return err
}
