package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric field from the metrics backend. The backend serialises
// empty numerics as false or null and occasionally as strings, so decoding
// never fails: anything that is not a finite number becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*n = 0
		return nil
	}

	switch v := raw.(type) {
	case float64:
		*n = Number(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
	default:
		*n = 0
	}

	if math.IsNaN(float64(*n)) || math.IsInf(float64(*n), 0) {
		*n = 0
	}
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Percent returns the value clamped to [0, 100].
func (n Number) Percent() Number {
	return Number(ClampPercent(float64(n)))
}

// Text is a string field that tolerates false/null from the backend.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = ""
		return nil
	}

	switch v := raw.(type) {
	case string:
		*t = Text(v)
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		*t = ""
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}
