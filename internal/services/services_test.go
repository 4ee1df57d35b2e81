package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

func TestTopicToMachineCode(t *testing.T) {
	code, ok := TopicToMachineCode("machines/M-101/telemetry")
	assert.True(t, ok)
	assert.Equal(t, "M-101", code)

	for _, topic := range []string{"machines//telemetry", "machines/M/status", "plant/M/telemetry", "machines/M"} {
		_, ok := TopicToMachineCode(topic)
		assert.False(t, ok, topic)
	}
}

func TestLatestByKeyKeepsFirstSeenOrder(t *testing.T) {
	l := newLatestByKey()
	l.put("b", []byte(`{"v":1}`))
	l.put("a", []byte(`{"v":2}`))
	l.put("b", []byte(`{"v":3}`))
	l.put("c", []byte(`not json`))

	got := l.records()
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"v":3}`, string(got[0]))
	assert.JSONEq(t, `{"v":2}`, string(got[1]))
}

func TestLatestByKeyCopiesValue(t *testing.T) {
	l := newLatestByKey()
	buf := []byte(`{"v":1}`)
	l.put("k", buf)
	copy(buf, `{"v":9}`)

	assert.JSONEq(t, `{"v":1}`, string(l.records()[0]))
}

func TestMqttSourceHandle(t *testing.T) {
	s := &mqttSource{log: zap.NewNop(), latest: newLatestByKey()}
	s.handle("machines/M-1/telemetry", []byte(`{"machineCode":"M-1","ok":1}`))
	s.handle("machines/M-2/telemetry", []byte(`{"machineCode":"M-2"}`))
	s.handle("machines/M-1/telemetry", []byte(`{"machineCode":"M-1","ok":2}`))
	s.handle("machines/M-3/telemetry", []byte(`{broken`))

	got, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(got[0], &first))
	assert.Equal(t, "M-1", first["machineCode"])
	assert.EqualValues(t, 2, first["ok"])
}

func TestMqttSourceFetchHonoursContext(t *testing.T) {
	s := &mqttSource{log: zap.NewNop(), latest: newLatestByKey()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyMarksTimeoutsTransient(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, classify(ctx, context.DeadlineExceeded), models.ErrTransientFetch)
	assert.ErrorIs(t, classify(ctx, timeoutErr{}), models.ErrTransientFetch)
	assert.NotErrorIs(t, classify(ctx, errors.New("unknown topic")), models.ErrTransientFetch)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNewTelemetrySourceRejectsUnknown(t *testing.T) {
	_, err := NewTelemetrySource(&oeeMonitor.Config{TelemetrySource: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)

	src, err := NewTelemetrySource(&oeeMonitor.Config{TelemetrySource: "kafka", KafkaBroker: "localhost:9092", KafkaTopic: "t"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, src.Close())
}

func TestKafkaSourceRequiresTopic(t *testing.T) {
	s := NewKafkaSource(&oeeMonitor.Config{}, zap.NewNop())
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int64(1000), s.scanDepth)
}

func TestMachineStatePoint(t *testing.T) {
	ts := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	m := models.MachineState{
		MachineCode:     "M-1",
		OrderCode:       "OF-1",
		Status:          models.StatusProducing,
		ShiftLabel:      "Morning",
		ShiftProduction: models.NewCounters(10, 1, 0),
		OEE:             models.OEEBreakdown{OEE: 0.5},
	}
	p := MachineStatePoint(m, ts)

	assert.Equal(t, influxMeasurement, p.Name())
	assert.Equal(t, ts, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "M-1", tags["machineCode"])
	assert.Equal(t, "Producing", tags["status"])

	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.EqualValues(t, 10, fields["shift_ok"])
	assert.InDelta(t, 0.5, fields["oee"], 1e-9)
}

func TestOptionalPublishersDisabledWithoutConfig(t *testing.T) {
	assert.Nil(t, NewInfluxWriter(&oeeMonitor.Config{}))
	p, err := NewNatsPublisher(&oeeMonitor.Config{})
	assert.NoError(t, err)
	assert.Nil(t, p)
}
