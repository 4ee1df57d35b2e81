package services

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

const influxMeasurement = "machine_state"

// InfluxWriter records every published machine list as time-series points.
type InfluxWriter struct {
	client influxdb2.Client
	api    api.WriteAPIBlocking
	now    func() time.Time
}

// NewInfluxWriter returns nil when InfluxDB is not configured.
func NewInfluxWriter(cfg *oeeMonitor.Config) *InfluxWriter {
	if cfg.InfluxURL == "" {
		return nil
	}
	client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
	return &InfluxWriter{
		client: client,
		api:    client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		now:    time.Now,
	}
}

func (w *InfluxWriter) Close() {
	w.client.Close()
}

// Health checks that InfluxDB is reachable and the token is valid.
func (w *InfluxWriter) Health(ctx context.Context) error {
	_, err := w.client.Health(ctx)
	return err
}

func (w *InfluxWriter) Publish(ctx context.Context, machines []models.MachineState) error {
	if len(machines) == 0 {
		return nil
	}
	ts := w.now()
	points := make([]*write.Point, 0, len(machines))
	for _, m := range machines {
		points = append(points, MachineStatePoint(m, ts))
	}
	if err := w.api.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// MachineStatePoint maps one MachineState onto an InfluxDB point.
func MachineStatePoint(m models.MachineState, ts time.Time) *write.Point {
	return influxdb2.NewPointWithMeasurement(influxMeasurement).
		AddTag("machineCode", m.MachineCode).
		AddTag("orderCode", m.OrderCode).
		AddTag("status", string(m.Status)).
		AddTag("shift", m.ShiftLabel).
		AddField("shift_ok", m.ShiftProduction.OK).
		AddField("shift_nok", m.ShiftProduction.NOK).
		AddField("shift_rework", m.ShiftProduction.Rework).
		AddField("order_ok", m.OrderProduction.OK).
		AddField("order_nok", m.OrderProduction.NOK).
		AddField("order_rework", m.OrderProduction.Rework).
		AddField("velocity", m.Velocity.Current).
		AddField("velocity_nominal", m.Velocity.Nominal).
		AddField("availability", m.OEE.Availability).
		AddField("performance", m.OEE.Performance).
		AddField("quality", m.OEE.Quality).
		AddField("oee", m.OEE.OEE).
		SetTime(ts)
}
