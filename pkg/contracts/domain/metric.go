package domain

import (
	"encoding/json"
	"strconv"
)

// Metric is a scalar result that may be undefined, e.g. the mean of an
// empty group or the sample deviation of a single value. Undefined metrics
// encode as JSON null.
type Metric struct {
	Value float64
	Valid bool
}

// SomeMetric returns a defined metric
func SomeMetric(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = SomeMetric(v)
	return nil
}

// String formats the metric with two decimals, or "-" when undefined
func (m Metric) String() string {
	if !m.Valid {
		return "-"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// OrZero returns the value or zero when undefined
func (m Metric) OrZero() float64 {
	if !m.Valid {
		return 0
	}
	return m.Value
}
