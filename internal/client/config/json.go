package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/eduterm/internal/flagx"
	"github.com/dmitrijs2005/eduterm/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "15s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	HistoryLimit   int            `json:"history_limit"`
}

// parseJson overlays cfg with values loaded from the JSON file given via
// -c/-config. When no file is specified, nothing happens. Only fields
// actually present in the file override the current values.
//
// Read or unmarshal errors panic; there is no sane way to continue with a
// config the user explicitly pointed at but that cannot be read.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.HistoryLimit != 0 {
		cfg.HistoryLimit = jc.HistoryLimit
	}
}
