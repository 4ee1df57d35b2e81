package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

// NewTelemetrySource selects the upstream gateway from configuration.
func NewTelemetrySource(cfg *oeeMonitor.Config, log *zap.Logger) (interfaces.TelemetrySource, error) {
	switch cfg.TelemetrySource {
	case "", "kafka":
		return NewKafkaSource(cfg, log), nil
	case "mqtt":
		return NewMqttSource(cfg, log)
	default:
		return nil, fmt.Errorf("unknown telemetry source %q", cfg.TelemetrySource)
	}
}
