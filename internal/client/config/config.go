package config

import "time"

// Config holds runtime settings for the eduterm CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - RequestTimeout: deadline applied to non-streaming requests. The chat
//     stream is exempt and runs until the server closes it.
//   - HistoryLimit: how many stored messages the history command shows.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	HistoryLimit   int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.HistoryLimit = 50
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
