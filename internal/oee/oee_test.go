package oee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestAvailability(t *testing.T) {
	assert.InDelta(t, 0.75, Availability(300, 100), eps)
	assert.Equal(t, 1.0, Availability(0, 0), "no recorded time counts as fully available")
	assert.Equal(t, 0.0, Availability(0, 60))
	assert.Equal(t, 1.0, Availability(-5, -5))
}

func TestQuality(t *testing.T) {
	assert.InDelta(t, 100.0/105.0, Quality(100, 5), eps)
	assert.Equal(t, 1.0, Quality(0, 0))
	assert.Equal(t, 0.0, Quality(0, 10))
}

func TestPerformanceClamp(t *testing.T) {
	assert.InDelta(t, 0.5, Performance(50, 100), eps)
	assert.Equal(t, 1.0, Performance(130, 100), "noisy nominal rate must not push performance over 100%")
	assert.Equal(t, 0.0, Performance(-1, 100))
	assert.Equal(t, 0.0, Performance(50, 0))
}

func TestComputeProduct(t *testing.T) {
	b := Compute(0.9, 0.8, 0.95)
	assert.InDelta(t, 0.684, b.OEE, eps)
	assert.Equal(t, 0.9, b.Availability)
	assert.Equal(t, 0.8, b.Performance)
	assert.Equal(t, 0.95, b.Quality)
}

func TestOEEIdentity(t *testing.T) {
	for a := 0.0; a <= 1.0; a += 0.125 {
		for p := 0.0; p <= 1.0; p += 0.125 {
			for q := 0.0; q <= 1.0; q += 0.125 {
				b := Compute(a, p, q)
				assert.InDelta(t, b.Availability*b.Performance*b.Quality, b.OEE, eps)
				assert.True(t, b.OEE >= 0 && b.OEE <= 1)
			}
		}
	}
}

func TestComputeClampsOutOfRange(t *testing.T) {
	b := Compute(1.4, math.NaN(), -0.2)
	assert.Equal(t, 1.0, b.Availability)
	assert.Equal(t, 0.0, b.Performance)
	assert.Equal(t, 0.0, b.Quality)
	assert.Equal(t, 0.0, b.OEE)
}

func TestFromInputs(t *testing.T) {
	b := FromInputs(Inputs{
		ProductiveSeconds: 3600,
		DowntimeSeconds:   400,
		OK:                95,
		NOK:               5,
		ActualRate:        80,
		NominalRate:       100,
	})
	assert.InDelta(t, 0.9, b.Availability, eps)
	assert.InDelta(t, 0.8, b.Performance, eps)
	assert.InDelta(t, 0.95, b.Quality, eps)
	assert.InDelta(t, 0.684, b.OEE, eps)
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 68.4, Percent(0.684), 1e-9)
	assert.Equal(t, 100.0, Percent(1.7))
	assert.Equal(t, 0.0, Percent(-0.1))
}
