package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/huntplanur/internal/flagx"
	"github.com/dmitrijs2005/huntplanur/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling; durations accept "3s" or
// integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	AlertPollInterval timex.Duration `json:"alert_poll_interval"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
// It panics on read or parse errors.
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

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.AlertPollInterval.Duration != 0 {
		cfg.AlertPollInterval = time.Duration(jc.AlertPollInterval.Duration)
	}
}
