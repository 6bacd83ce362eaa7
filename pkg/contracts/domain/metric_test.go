package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric(t *testing.T) {
	tests := []struct {
		name       string
		metric     Metric
		wantJSON   string
		wantString string
		wantValue  float64
	}{
		{name: "defined", metric: SomeMetric(26.456), wantJSON: "26.456", wantString: "26.46", wantValue: 26.456},
		{name: "zero is defined", metric: SomeMetric(0), wantJSON: "0", wantString: "0.00", wantValue: 0},
		{name: "undefined", metric: Metric{}, wantJSON: "null", wantString: "-", wantValue: 0},
		{name: "undefined ignores value", metric: Metric{Value: math.NaN()}, wantJSON: "null", wantString: "-", wantValue: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.metric)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(data))
			assert.Equal(t, tt.wantString, tt.metric.String())
			assert.Equal(t, tt.wantValue, tt.metric.OrZero())

			var back Metric
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.metric.Valid, back.Valid)
		})
	}
}

func TestMetric_InStruct(t *testing.T) {
	type row struct {
		Mean Metric `json:"mean"`
		Std  Metric `json:"std"`
	}

	data, err := json.Marshal(row{Mean: SomeMetric(4.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mean":4.5,"std":null}`, string(data))

	var back row
	require.Error(t, json.Unmarshal([]byte(`{"mean":"high"}`), &back))
}

func TestFindChart(t *testing.T) {
	charts := []Chart{{ID: "orders_by_day"}, {ID: "traffic_share", Kind: ChartPie}}

	c, ok := FindChart(charts, "traffic_share")
	require.True(t, ok)
	assert.Equal(t, ChartPie, c.Kind)

	_, ok = FindChart(charts, "nope")
	assert.False(t, ok)
}

func TestGroupStat_Label(t *testing.T) {
	assert.Equal(t, "Urban", GroupStat{Keys: []string{"Urban"}}.Label())
	assert.Equal(t, "Urban / Jam", GroupStat{Keys: []string{"Urban", "Jam"}}.Label())
	assert.Equal(t, "", GroupStat{}.Label())
}
