package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	flowsmonitor "github.com/theoremus-urban-solutions/flows-rt-monitor"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
)

func newApp() *cli.App {
	return &cli.App{
		Name:    "flows-rt-monitor",
		Usage:   "Monitor a real-time traffic feed for snapshot changes",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			monitorCommand(),
			fetchCommand(),
			decodeCommand(),
			summaryCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to config.yml (default: ./config.yml or ./config/config.yml)",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key sent with every request (overrides " + config.EnvPrefix + "_API_KEY)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
		},
	}
}

// endpointFlags select or override the monitored endpoint.
func endpointFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "endpoint URL, replaces the configured endpoints",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "only use the configured endpoint with this name",
		},
		&cli.StringFlag{
			Name:    "output-dir",
			Aliases: []string{"o"},
			Usage:   "directory for output files",
		},
	}
}

// loadConfig loads the configuration and applies command line overrides.
// It does not validate.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("api-key") {
		cfg.API.Key = c.String("api-key")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}
	if c.IsSet("output-dir") {
		cfg.Monitor.OutputDir = c.String("output-dir")
	}

	switch {
	case c.String("endpoint") != "":
		name := c.String("name")
		if name == "" {
			name = "realtime"
		}
		cfg.Endpoints = []config.EndpointConfig{{Name: name, URL: c.String("endpoint")}}
	case c.String("name") != "":
		ep, ok := cfg.Endpoint(c.String("name"))
		if !ok {
			return nil, &config.ConfigError{
				Type:    config.ErrTypeValidation,
				Message: fmt.Sprintf("no endpoint named %q", c.String("name")),
			}
		}
		cfg.Endpoints = []config.EndpointConfig{ep}
	}
	return cfg, nil
}

func newLogger(c *cli.Context, cfg *config.AppConfig) *slog.Logger {
	return flowsmonitor.InitLogging(cfg.Logging, c.App.ErrWriter)
}
