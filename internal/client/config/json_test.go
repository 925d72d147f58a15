package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"huntctl", "-config", writeTempJSON(t, map[string]any{
			"server_url":          "https://hunt.example",
			"alert_poll_interval": "2s",
		})}

		cfg := &Config{RequestTimeout: 7 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "https://hunt.example", cfg.ServerURL)
		assert.Equal(t, 2*time.Second, cfg.AlertPollInterval)
		assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
	})

	t.Run("no file → no changes", func(t *testing.T) {
		os.Args = []string{"huntctl"}

		cfg := &Config{ServerURL: "http://defaults"}
		parseJson(cfg)

		assert.Equal(t, "http://defaults", cfg.ServerURL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
		os.Args = []string{"huntctl", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
