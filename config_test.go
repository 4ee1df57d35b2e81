package oeeMonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("TELEMETRY_SOURCE", "")
	t.Setenv("NOMINAL_RATE", "")

	cfg := LoadConfig()
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, "kafka", cfg.TelemetrySource)
	assert.Equal(t, 600.0, cfg.NominalRate)
	assert.Equal(t, 15*time.Minute, cfg.ShiftCacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "3s")
	t.Setenv("TELEMETRY_SOURCE", "mqtt")
	t.Setenv("KAFKA_SCAN_DEPTH", "50")
	t.Setenv("NOMINAL_RATE", "120.5")

	cfg := LoadConfig()
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, "mqtt", cfg.TelemetrySource)
	assert.Equal(t, int64(50), cfg.KafkaScanDepth)
	assert.Equal(t, 120.5, cfg.NominalRate)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SHIFT_CACHE_TTL", "soon")
	t.Setenv("FETCH_TIMEOUT", "-1s")

	cfg := LoadConfig()
	assert.Equal(t, 15*time.Minute, cfg.ShiftCacheTTL)
	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
}

func TestLocation(t *testing.T) {
	cfg := &Config{ShiftTimezone: "UTC"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.ShiftTimezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}
