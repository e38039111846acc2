package config

// PlaceholderAPIKey is the key shipped in example configs. It is rejected
// by Validate.
const PlaceholderAPIKey = "change_me_to_your_api_key"

// DefaultEndpointURL is the production real-time traffic endpoint.
const DefaultEndpointURL = "https://api.ptvgroup.tech/flows/realtime-traffic/v1/realtime/traffic"

// APIConfig contains credentials and request settings
type APIConfig struct {
	Key       string `yaml:"apiKey"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	UserAgent string `yaml:"userAgent"`
}

// EndpointConfig is a single monitored feed
type EndpointConfig struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// MonitorConfig contains poll loop settings
type MonitorConfig struct {
	OutputDir       string `yaml:"outputDir" validate:"required"`
	MaxIterations   int    `yaml:"maxIterations" validate:"gt=0"`
	IntervalSeconds int    `yaml:"intervalSeconds" validate:"gte=0"`
	SaveSnapshots   bool   `yaml:"saveSnapshots"`
	Compression     string `yaml:"compression" validate:"omitempty,oneof=none zstd"`
}

// BreakerConfig contains circuit breaker settings for the HTTP client
type BreakerConfig struct {
	MaxConsecutiveFailures uint32 `yaml:"maxConsecutiveFailures"`
	OpenTimeoutMS          int    `yaml:"openTimeoutMS" validate:"gte=0"`
}

// ServerConfig contains the optional status server configuration.
// An empty Addr disables the server.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// LoggingConfig contains log output settings
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	API       APIConfig        `yaml:"api"`
	Endpoints []EndpointConfig `yaml:"endpoints" validate:"required,min=1,dive"`
	Monitor   MonitorConfig    `yaml:"monitor"`
	Breaker   BreakerConfig    `yaml:"breaker"`
	Server    ServerConfig     `yaml:"server"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutMS: 30000,
			UserAgent: "flows-rt-monitor",
		},
		Endpoints: []EndpointConfig{{Name: "realtime", URL: DefaultEndpointURL}},
		Monitor: MonitorConfig{
			OutputDir:       "./monitoring_output",
			MaxIterations:   100,
			IntervalSeconds: 60,
			Compression:     "none",
		},
		Breaker: BreakerConfig{
			MaxConsecutiveFailures: 5,
			OpenTimeoutMS:          30000,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Endpoint chooses an endpoint by name; fallback to the first one.
func (c *AppConfig) Endpoint(name string) (EndpointConfig, bool) {
	if name != "" {
		for _, e := range c.Endpoints {
			if e.Name == name {
				return e, true
			}
		}
		return EndpointConfig{}, false
	}
	if len(c.Endpoints) > 0 {
		return c.Endpoints[0], true
	}
	return EndpointConfig{}, false
}
