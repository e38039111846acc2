// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, then overridden by FLOWS_*
// environment variables (a .env file is read first when present), and
// validated using struct tags. Several endpoints may be monitored at once;
// Endpoint selects one by name.
package config
