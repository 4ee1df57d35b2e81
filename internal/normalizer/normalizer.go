// Package normalizer reconciles the flat and nested telemetry wire formats
// into canonical models.MachineState values.
package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/oee"
)

// Detect resolves the wire variant of a record. The nested info block wins
// over a flat machineCode field when both are present.
func Detect(record []byte) models.PayloadFormat {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return models.FormatUnknown
	}
	if info, ok := fields["info"]; ok && isObject(info) {
		return models.FormatNested
	}
	if code, ok := fields["machineCode"]; ok {
		var s flexString
		if json.Unmarshal(code, &s) == nil && s != "" {
			return models.FormatFlat
		}
	}
	return models.FormatUnknown
}

// Normalize maps one raw record to a MachineState.
func Normalize(record []byte) (models.MachineState, error) {
	switch format := Detect(record); format {
	case models.FormatFlat:
		var p flatPayload
		if err := json.Unmarshal(record, &p); err != nil {
			return models.MachineState{}, fmt.Errorf("%w: flat record: %v", models.ErrUnknownFormat, err)
		}
		return checkFinite(fromFlat(p))
	case models.FormatNested:
		var p nestedPayload
		if err := json.Unmarshal(record, &p); err != nil {
			return models.MachineState{}, fmt.Errorf("%w: nested record: %v", models.ErrUnknownFormat, err)
		}
		return checkFinite(fromNested(p))
	default:
		return models.MachineState{}, models.ErrUnknownFormat
	}
}

func fromFlat(p flatPayload) models.MachineState {
	shift := models.NewCounters(p.OK.count(), p.NOK.count(), p.Rework.count())
	return models.MachineState{
		MachineCode:      p.MachineCode.String(),
		MachineName:      p.MachineName.String(),
		Status:           models.ParseStatus(p.Status.String()),
		OrderCode:        p.OrderCode.String(),
		OrderDescription: p.OrderDescription.String(),
		Operator:         p.Operator.String(),
		ShiftLabel:       p.Shift.String(),
		ShiftProduction:  shift,
		OrderProduction:  models.NewCounters(p.OrderOK.count(), p.OrderNOK.count(), p.OrderRework.count()),
		Velocity:         velocity(p.Velocity.float(), p.NominalVelocity.float()),
		OEE:              breakdown(shift, p.ProductiveSeconds.float(), p.DowntimeSeconds.float(), p.Velocity.float(), p.NominalVelocity.float()),
	}
}

func fromNested(p nestedPayload) models.MachineState {
	code := p.Info.Code
	if code == "" {
		code = p.Info.MachineCode
	}
	sp := p.Shift.Production
	op := p.Order.Production
	shift := models.NewCounters(sp.OK.count(), sp.NOK.count(), sp.Rework.count())
	return models.MachineState{
		MachineCode:      code.String(),
		MachineName:      p.Info.Name.String(),
		Status:           models.ParseStatus(p.Info.Status.String()),
		OrderCode:        p.Order.Code.String(),
		OrderDescription: p.Order.Description.String(),
		Operator:         p.Info.Operator.String(),
		ShiftLabel:       p.Info.Shift.String(),
		ShiftProduction:  shift,
		OrderProduction:  models.NewCounters(op.OK.count(), op.NOK.count(), op.Rework.count()),
		Velocity:         velocity(p.Velocity.Current.float(), p.Velocity.Nominal.float()),
		OEE:              breakdown(shift, p.Shift.ProductiveSeconds.float(), p.Shift.DowntimeSeconds.float(), p.Velocity.Current.float(), p.Velocity.Nominal.float()),
	}
}

func velocity(current, nominal float64) models.Velocity {
	current, nominal = max(current, 0), max(nominal, 0)
	v := models.Velocity{Current: current, Nominal: nominal}
	if nominal > 0 {
		if r := current / nominal; !math.IsInf(r, 0) && !math.IsNaN(r) {
			v.Ratio = r
		}
	}
	return v
}

// checkFinite rejects states that carry NaN or Inf; they cannot be encoded
// or fingerprinted.
func checkFinite(st models.MachineState) (models.MachineState, error) {
	for name, v := range map[string]float64{
		"velocity.current": st.Velocity.Current,
		"velocity.nominal": st.Velocity.Nominal,
		"velocity.ratio":   st.Velocity.Ratio,
		"oee.availability": st.OEE.Availability,
		"oee.performance":  st.OEE.Performance,
		"oee.quality":      st.OEE.Quality,
		"oee.oee":          st.OEE.OEE,
	} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return models.MachineState{}, fmt.Errorf("%w: %s is not finite", models.ErrInvalidValue, name)
		}
	}
	return st, nil
}

func breakdown(shift models.Counters, productive, downtime, current, nominal float64) models.OEEBreakdown {
	return oee.FromInputs(oee.Inputs{
		ProductiveSeconds: productive,
		DowntimeSeconds:   downtime,
		OK:                shift.OK,
		NOK:               shift.NOK,
		ActualRate:        current,
		NominalRate:       nominal,
	})
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

type Normalizer struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Normalizer {
	return &Normalizer{log: log.Named("normalizer")}
}

// Batch normalizes records in order. Malformed records are logged and
// dropped; they never abort the batch.
func (n *Normalizer) Batch(records []json.RawMessage) []models.MachineState {
	out := make([]models.MachineState, 0, len(records))
	for i, rec := range records {
		st, err := Normalize(rec)
		if err != nil {
			n.log.Warn("skipping telemetry record",
				zap.Int("index", i),
				zap.Int("bytes", len(rec)),
				zap.Error(err),
			)
			continue
		}
		out = append(out, st)
	}
	return out
}
