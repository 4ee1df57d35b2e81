package normalizer

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

var null = []byte("null")

// flexNumber accepts a JSON number, a numeric string or null. Anything
// unparseable decodes to 0 so it never poisons downstream arithmetic.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*f = flexNumber(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexNumber(v)
	}
	return nil
}

func (f flexNumber) float() float64 { return float64(f) }

// count rounds to a piece count in [0, models.MaxCount].
func (f flexNumber) count() int64 {
	if f <= 0 {
		return 0
	}
	if float64(f) >= float64(models.MaxCount) {
		return models.MaxCount
	}
	return min(int64(math.Round(float64(f))), models.MaxCount)
}

// flexString accepts a JSON string, a number or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	*s = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return nil
	}
	*s = flexString(b)
	return nil
}

func (s flexString) String() string { return string(s) }
