package charts

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverydash/pkg/contracts/domain"
)

func sampleCharts() []domain.Chart {
	cities := []string{"Metropolitian", "Semi-Urban", "Urban"}
	return []domain.Chart{
		{
			ID: "time_by_city", Title: "Delivery time by city", Kind: domain.ChartBar, YLabel: "minutes",
			Series: []domain.ChartSeries{{Name: "mean", Labels: cities, Values: []float64{27.1, 49.7, 22.9}, Errors: []float64{9.2, 2.1, 7.3}}},
		},
		{
			ID: "traffic_share", Title: "Orders by traffic", Kind: domain.ChartPie,
			Series: []domain.ChartSeries{{Name: "share", Labels: []string{"High", "Jam", "Low", "Medium"}, Values: []float64{0.1, 0.3, 0.35, 0.25}}},
		},
		{
			ID: "time_by_city_and_traffic", Title: "Time by city and traffic", Kind: domain.ChartSunburst,
			Series: []domain.ChartSeries{{Name: "mean", Labels: []string{"Urban / Low", "Urban / Jam"}, Values: []float64{20.5, 31.2}}},
		},
		{
			ID: "orders_by_week", Title: "Orders by week", Kind: domain.ChartLine, XLabel: "week", YLabel: "orders",
			Series: []domain.ChartSeries{{Name: "orders", Labels: []string{"06", "07", "08"}, Values: []float64{120, 340, 280}}},
		},
		{
			ID: "traffic_by_city", Title: "Orders by city and traffic", Kind: domain.ChartScatter, XLabel: "city", YLabel: "orders",
			Series: []domain.ChartSeries{
				{Name: "Low", Labels: cities, Values: []float64{10, 3, 8}, Sizes: []float64{10, 3, 8}},
				{Name: "Jam", Labels: cities[:2], Values: []float64{14, 1}, Sizes: []float64{14, 1}},
			},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	for _, c := range sampleCharts() {
		t.Run(c.ID, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, c, FormatSVG, DefaultOptions))

			out := buf.String()
			assert.Contains(t, out, "<svg")
			assert.Contains(t, out, c.Title)
		})
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleCharts()[0], FormatPNG, Options{}))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output is not a PNG")
}

func TestRenderBarLabelsCarryDeviation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleCharts()[0], FormatSVG, DefaultOptions))

	assert.Contains(t, buf.String(), "±9.20")
}

func TestRenderDegenerateRanges(t *testing.T) {
	series := func(labels []string, values ...float64) []domain.ChartSeries {
		return []domain.ChartSeries{{Name: "value", Labels: labels, Values: values}}
	}

	tests := []struct {
		name  string
		chart domain.Chart
	}{
		{name: "single bar", chart: domain.Chart{ID: "rating_by_traffic", Title: "Rating", Kind: domain.ChartBar, Series: series([]string{"Jam"}, 4.6)}},
		{name: "flat bars", chart: domain.Chart{ID: "time_by_city", Title: "Time", Kind: domain.ChartBar, Series: series([]string{"Urban", "Semi-Urban"}, 24, 24)}},
		{name: "single week", chart: domain.Chart{ID: "orders_by_week", Title: "Weekly", Kind: domain.ChartLine, Series: series([]string{"06"}, 12)}},
		{name: "flat line", chart: domain.Chart{ID: "orders_by_week", Title: "Weekly", Kind: domain.ChartLine, Series: series([]string{"06", "07", "08"}, 1, 1, 1)}},
		{
			name: "single city",
			chart: domain.Chart{ID: "traffic_by_city", Title: "By city", Kind: domain.ChartScatter, Series: []domain.ChartSeries{
				{Name: "Low", Labels: []string{"Urban"}, Values: []float64{7}, Sizes: []float64{7}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.chart, FormatSVG, DefaultOptions))

			assert.Contains(t, buf.String(), "<svg")
			assert.Less(t, buf.Len(), 100_000, "axis ticks exploded")
		})
	}
}

func TestRenderSunburstLabelsCarryDeviation(t *testing.T) {
	c := sampleCharts()[2]
	c.Series[0].Errors = []float64{3.25, 0}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, c, FormatSVG, DefaultOptions))

	assert.Contains(t, buf.String(), "Urban / Low ±3.25")
	assert.NotContains(t, buf.String(), "Urban / Jam ±")
}

func TestRenderErrors(t *testing.T) {
	bar := sampleCharts()[0]

	tests := []struct {
		name   string
		chart  domain.Chart
		format Format
		want   error
	}{
		{name: "unknown format", chart: bar, format: "gif", want: ErrUnsupportedFormat},
		{name: "no series", chart: domain.Chart{ID: "empty", Kind: domain.ChartBar}, format: FormatSVG, want: ErrNoData},
		{
			name:   "all zero",
			chart:  domain.Chart{ID: "zero", Kind: domain.ChartPie, Series: []domain.ChartSeries{{Labels: []string{"a"}, Values: []float64{0}}}},
			format: FormatSVG,
			want:   ErrNoData,
		},
		{
			name:   "unknown kind",
			chart:  domain.Chart{ID: "radar", Kind: "radar", Series: bar.Series},
			format: FormatSVG,
			want:   ErrUnsupportedKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Render(&bytes.Buffer{}, tt.chart, tt.format, DefaultOptions)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", ContentType(FormatSVG))
	assert.Equal(t, "image/png", ContentType(FormatPNG))
}
