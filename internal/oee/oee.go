// Package oee computes Overall Equipment Effectiveness from counters and durations.
// All results are fractions in [0,1]; presentation layers multiply by 100.
package oee

import "github.com/iwtcode/oeeMonitor/internal/domain/models"

// Availability is productive / (productive + downtime). No recorded time
// counts as fully available.
func Availability(productiveSeconds, downtimeSeconds float64) float64 {
	productiveSeconds = max(productiveSeconds, 0)
	downtimeSeconds = max(downtimeSeconds, 0)
	total := productiveSeconds + downtimeSeconds
	if total == 0 {
		return 1
	}
	return clamp(productiveSeconds / total)
}

// Quality is ok / (ok + nok); 1 when nothing was produced.
func Quality(ok, nok int64) float64 {
	ok, nok = max(ok, 0), max(nok, 0)
	if ok+nok == 0 {
		return 1
	}
	return clamp(float64(ok) / float64(ok+nok))
}

// Performance is actual / nominal throughput clamped to [0,1].
// A missing nominal rate yields 0.
func Performance(actual, nominal float64) float64 {
	if nominal <= 0 {
		return 0
	}
	return clamp(actual / nominal)
}

// Compute builds a breakdown whose OEE is the product of the clamped components.
func Compute(availability, performance, quality float64) models.OEEBreakdown {
	a, p, q := clamp(availability), clamp(performance), clamp(quality)
	return models.OEEBreakdown{
		Availability: a,
		Performance:  p,
		Quality:      q,
		OEE:          a * p * q,
	}
}

type Inputs struct {
	ProductiveSeconds float64
	DowntimeSeconds   float64
	OK                int64
	NOK               int64
	ActualRate        float64
	NominalRate       float64
}

func FromInputs(in Inputs) models.OEEBreakdown {
	return Compute(
		Availability(in.ProductiveSeconds, in.DowntimeSeconds),
		Performance(in.ActualRate, in.NominalRate),
		Quality(in.OK, in.NOK),
	)
}

// Percent converts a fraction to a percentage clamped to [0,100].
func Percent(f float64) float64 {
	return clamp(f) * 100
}

func clamp(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
