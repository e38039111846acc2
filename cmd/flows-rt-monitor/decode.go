package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/formatter"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/snapshot"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/utils"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a payload from a .pb file or URL and print its records",
		ArgsUsage: "<file.pb | url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "table or json",
				Value: "table",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "print at most this many records (0 for all)",
				Value: 10,
			},
		},
		Action: runDecode,
	}
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("decode expects exactly one file or URL")
	}
	source := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if isURL(source) && (cfg.API.Key == "" || cfg.API.Key == config.PlaceholderAPIKey) {
		return &config.ConfigError{Type: config.ErrTypeMissingCredentials, Message: "an API key is required to fetch " + source}
	}

	payload, err := newFetcher(cfg).fetch(c.Context, source)
	if err != nil {
		return err
	}
	msg, err := flowsrt.Decode(payload)
	if err != nil {
		return err
	}
	snap, err := snapshot.Normalize(msg)
	if err != nil {
		return err
	}

	records := snap.Records
	if limit := c.Int("limit"); limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	w := c.App.Writer
	if c.String("format") == "json" {
		return formatter.WriteJSON(w, formatter.ExportRecords(snap, records))
	}

	fmt.Fprintf(w, "Snapshot time: %s\n", utils.Iso8601(snap.CaptureTime))
	fmt.Fprintf(w, "Timezone:      %s\n", snap.Timezone)
	fmt.Fprintf(w, "Records:       %d\n", snap.Len())
	fmt.Fprintf(w, "Data hash:     %s\n\n", snap.Digest)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFROM NODE\tSPEED KM/H\tPROBES\tOLR CODE")
	for _, r := range records {
		probes := "-"
		if r.ProbeCount != nil {
			probes = fmt.Sprint(*r.ProbeCount)
		}
		fmt.Fprintf(tw, "%d\t%d\t%g\t%s\t%s\n", r.SegmentID, r.FromNodeID, r.SpeedKMH, probes, r.LocationCode)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(records) < snap.Len() {
		fmt.Fprintf(w, "... %d more\n", snap.Len()-len(records))
	}
	return nil
}
