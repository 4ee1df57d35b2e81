package cache

import (
	"math"
	"math/bits"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/oee"
)

const shiftSeconds = 8 * 3600

// Generate derives a plausible Night bucket from order-level aggregates.
//
// The night shift gets whatever part of the order totals the observed day
// buckets do not account for; when nothing remains it gets a one-third share.
// Piece counts are capped by the remaining planned quantity. Performance comes
// from the order and availability is back-derived from the order OEE, so the
// result satisfies oee = availability*performance*quality. The output depends
// only on seed.
func Generate(seed models.SeedMetrics) models.ShiftBucket {
	var seen models.ShiftBucket
	for _, b := range seed.Observed {
		if b.Shift == models.ShiftNight {
			continue
		}
		seen.OK = addCount(seen.OK, b.OK)
		seen.NOK = addCount(seen.NOK, b.NOK)
		seen.Rework = addCount(seen.Rework, b.Rework)
		seen.ProductiveSeconds += b.ProductiveSeconds
		seen.PreparationSeconds += b.PreparationSeconds
	}

	ok := allocate(seed.OK, seen.OK)
	nok := allocate(seed.NOK, seen.NOK)
	rw := allocate(seed.Rework, seen.Rework)

	if seed.PlannedQuantity > 0 {
		remaining := max(seed.PlannedQuantity-(seen.OK+seen.NOK+seen.Rework), 0)
		if total := ok + nok + rw; total > remaining {
			ok = scale(ok, remaining, total)
			nok = scale(nok, remaining, total)
			rw = scale(rw, remaining, total)
		}
	}

	productive := math.Min(allocateSeconds(seed.TotalProductionSeconds, seen.ProductiveSeconds), shiftSeconds)
	prep := math.Min(allocateSeconds(seed.PreparationSeconds, seen.PreparationSeconds), shiftSeconds)

	q := oee.Quality(ok, nok)
	p := fraction(seed.Performance)
	a := 1.0
	if o := fraction(seed.OEE); o > 0 && p*q > 0 {
		a = math.Min(o/(p*q), 1)
	}
	var downtime float64
	if a > 0 && a < 1 {
		downtime = productive * (1 - a) / a
	}

	br := oee.Compute(a, p, q)
	return models.ShiftBucket{
		Shift:              models.ShiftNight,
		OK:                 ok,
		NOK:                nok,
		Rework:             rw,
		PreparationSeconds: prep,
		ProductiveSeconds:  productive,
		DowntimeSeconds:    downtime,
		Availability:       br.Availability,
		Quality:            br.Quality,
		Performance:        br.Performance,
		OEE:                br.OEE,
	}
}

func allocate(total, observed int64) int64 {
	if total <= 0 {
		return 0
	}
	total = min(total, models.MaxCount)
	if rem := total - observed; rem > 0 {
		return rem
	}
	return int64(math.Round(float64(total) / 3))
}

// addCount adds a non-negative count, saturating at models.MaxCount.
func addCount(sum, v int64) int64 {
	v = max(v, 0)
	if v >= models.MaxCount-sum {
		return models.MaxCount
	}
	return sum + v
}

// scale returns v*num/den rounded down. Requires 0 <= v <= den and num >= 0.
func scale(v, num, den int64) int64 {
	hi, lo := bits.Mul64(uint64(v), uint64(num))
	q, _ := bits.Div64(hi, lo, uint64(den))
	return int64(q)
}

func allocateSeconds(total, observed float64) float64 {
	if total <= 0 {
		return 0
	}
	if rem := total - observed; rem > 0 {
		return rem
	}
	return total / 3
}

// fraction accepts either a fraction or a percentage and returns [0,1].
func fraction(v float64) float64 {
	if v > 1 {
		v /= 100
	}
	return math.Max(0, math.Min(v, 1))
}
