package config

import "time"

// Config holds runtime settings for huntctl.
//
// Fields:
//   - ServerURL: base URL of the hunt HTTP API.
//   - RequestTimeout: per-request deadline.
//   - AlertPollInterval: how often the background watcher checks for alerts
//     while the client is in a session.
type Config struct {
	ServerURL         string
	RequestTimeout    time.Duration
	AlertPollInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.AlertPollInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
