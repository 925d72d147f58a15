package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-c", "ignored.json", "-a", ":81", "-d", "memory://", "-t", "48", "-k", "kafka:9092", "-unknown", "x"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":81", cfg.EndpointAddrHTTP)
	assert.Equal(t, "memory://", cfg.DatabaseDSN)
	assert.Equal(t, 48*time.Hour, cfg.TokenValidityDuration)
	assert.Equal(t, "kafka:9092", cfg.KafkaBrokers)
	assert.Equal(t, "secretKey", cfg.SecretKey)
}
