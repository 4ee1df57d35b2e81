// Package shift buckets activity intervals into the three fixed plant shifts.
package shift

import (
	"time"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/oee"
)

const (
	morningStart   = 6
	afternoonStart = 14
	nightStart     = 22
)

type Windower struct {
	loc *time.Location
}

// NewWindower classifies timestamps by wall-clock hour in loc.
func NewWindower(loc *time.Location) *Windower {
	if loc == nil {
		loc = time.Local
	}
	return &Windower{loc: loc}
}

// Classify returns the shift a timestamp falls in. Night wraps midnight.
func (w *Windower) Classify(ts time.Time) models.ShiftWindow {
	h := ts.In(w.loc).Hour()
	switch {
	case h >= morningStart && h < afternoonStart:
		return models.ShiftMorning
	case h >= afternoonStart && h < nightStart:
		return models.ShiftAfternoon
	default:
		return models.ShiftNight
	}
}

// Aggregate sums intervals into exactly three buckets in Morning, Afternoon,
// Night order. An interval is attributed wholly to the shift its start falls
// in, even when it crosses a boundary. Buckets without intervals stay all-zero.
// nominalRate is pieces per hour.
func (w *Windower) Aggregate(intervals []models.ActivityInterval, nominalRate float64) [3]models.ShiftBucket {
	var buckets [3]models.ShiftBucket
	for i, s := range models.Shifts {
		buckets[i].Shift = s
	}

	for _, iv := range intervals {
		b := &buckets[w.Classify(iv.Start).Index()]
		b.OK += max(iv.OK, 0)
		b.NOK += max(iv.NOK, 0)
		b.Rework += max(iv.Rework, 0)

		secs := iv.Seconds()
		switch iv.Kind {
		case models.ActivityProductive, models.ActivityRework:
			b.ProductiveSeconds += secs
		case models.ActivityPreparation:
			b.PreparationSeconds += secs
		case models.ActivityDowntime:
			b.DowntimeSeconds += secs
		}
	}

	for i := range buckets {
		if !buckets[i].Empty() {
			Score(&buckets[i], nominalRate)
		}
	}
	return buckets
}

// Score fills the OEE fields of b from its counters and durations.
func Score(b *models.ShiftBucket, nominalRate float64) {
	var actual float64
	if b.ProductiveSeconds > 0 {
		actual = float64(b.OK+b.NOK+b.Rework) / (b.ProductiveSeconds / 3600)
	}
	br := oee.FromInputs(oee.Inputs{
		ProductiveSeconds: b.ProductiveSeconds,
		DowntimeSeconds:   b.DowntimeSeconds,
		OK:                b.OK,
		NOK:               b.NOK,
		ActualRate:        actual,
		NominalRate:       nominalRate,
	})
	b.Availability = br.Availability
	b.Performance = br.Performance
	b.Quality = br.Quality
	b.OEE = br.OEE
}
