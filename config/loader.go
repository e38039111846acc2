package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FLOWS_API_KEY.
const EnvPrefix = "FLOWS"

var defaultPaths = []string{"config.yml", "./config/config.yml"}

// envOverrides lists the settings that may come from the environment.
// Unset pointer fields leave the file value alone.
type envOverrides struct {
	APIKey          string `envconfig:"API_KEY"`
	Endpoint        string `envconfig:"ENDPOINT"`
	OutputDir       string `envconfig:"OUTPUT_DIR"`
	MaxIterations   *int   `envconfig:"MAX_ITERATIONS"`
	IntervalSeconds *int   `envconfig:"INTERVAL_SECONDS"`
	SaveSnapshots   *bool  `envconfig:"SAVE_SNAPSHOTS"`
	MetricsAddr     string `envconfig:"METRICS_ADDR"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
}

// Load reads the configuration file at path, or the first default path
// that exists when path is empty, and applies environment overrides. A
// missing default file is not an error; a missing explicit path is.
// Load does not validate; call Validate once all overrides are applied.
func Load(path string) (*AppConfig, error) {
	cfg := Defaults()

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Type: ErrTypeParse, Message: "invalid YAML", Err: err}
		}
	}

	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigError{Type: ErrTypeFileNotFound, Message: fmt.Sprintf("cannot read %s", path), Err: err}
		}
		return data, nil
	}
	for _, p := range defaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Type: ErrTypeFileNotFound, Message: fmt.Sprintf("cannot read %s", p), Err: err}
		}
	}
	return nil, nil
}

func applyEnv(cfg *AppConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return &ConfigError{Type: ErrTypeEnv, Message: "invalid environment override", Err: err}
	}
	if env.APIKey != "" {
		cfg.API.Key = env.APIKey
	}
	if env.Endpoint != "" {
		cfg.Endpoints = []EndpointConfig{{Name: "realtime", URL: env.Endpoint}}
	}
	if env.OutputDir != "" {
		cfg.Monitor.OutputDir = env.OutputDir
	}
	if env.MaxIterations != nil {
		cfg.Monitor.MaxIterations = *env.MaxIterations
	}
	if env.IntervalSeconds != nil {
		cfg.Monitor.IntervalSeconds = *env.IntervalSeconds
	}
	if env.SaveSnapshots != nil {
		cfg.Monitor.SaveSnapshots = *env.SaveSnapshots
	}
	if env.MetricsAddr != "" {
		cfg.Server.Addr = env.MetricsAddr
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	return nil
}

// Validate checks credentials and struct constraints.
func Validate(cfg *AppConfig) error {
	if cfg.API.Key == "" || cfg.API.Key == PlaceholderAPIKey {
		return &ConfigError{
			Type:    ErrTypeMissingCredentials,
			Message: "an API key is required (--api-key or " + EnvPrefix + "_API_KEY)",
		}
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return &ConfigError{Type: ErrTypeValidation, Message: "invalid configuration", Err: err}
	}
	seen := make(map[string]struct{}, len(cfg.Endpoints))
	for _, e := range cfg.Endpoints {
		if _, dup := seen[e.Name]; dup {
			return &ConfigError{Type: ErrTypeValidation, Message: fmt.Sprintf("duplicate endpoint name %q", e.Name)}
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}
