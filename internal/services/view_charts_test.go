package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliverydash/pkg/contracts/domain"
)

func TestCompanyCharts(t *testing.T) {
	view := &domain.CompanyView{
		OrdersByDay: []domain.DailyCount{{Date: time.Date(2022, 3, 19, 0, 0, 0, 0, time.UTC), Orders: 2}},
		TrafficByCity: []domain.CityTrafficCount{
			{City: "Metropolitian", Traffic: "Jam", Orders: 4},
			{City: "Metropolitian", Traffic: "Low", Orders: 1},
			{City: "Urban", Traffic: "Low", Orders: 3},
		},
	}

	charts := CompanyCharts(view)

	daily, ok := domain.FindChart(charts, ChartOrdersByDay)
	require.True(t, ok)
	assert.Equal(t, []string{"2022-03-19"}, daily.Series[0].Labels)
	assert.Equal(t, []float64{2}, daily.Series[0].Values)

	scatter, ok := domain.FindChart(charts, ChartTrafficByCity)
	require.True(t, ok)
	require.Len(t, scatter.Series, 2)
	// series follow the traffic display order, not input order
	assert.Equal(t, "Low", scatter.Series[0].Name)
	assert.Equal(t, []string{"Metropolitian", "Urban"}, scatter.Series[0].Labels)
	assert.Equal(t, []float64{1, 3}, scatter.Series[0].Sizes)
	assert.Equal(t, "Jam", scatter.Series[1].Name)
}

func TestRestaurantCharts(t *testing.T) {
	view := &domain.RestaurantView{
		TimeByCity: []domain.GroupStat{
			{Keys: []string{"Urban"}, Count: 2, Mean: domain.SomeMetric(24), Std: domain.SomeMetric(2.5)},
			{Keys: []string{"Semi-Urban"}, Count: 1, Mean: domain.SomeMetric(48)},
		},
		TimeByCityAndTraffic: []domain.GroupStat{
			{Keys: []string{"Urban", "Jam"}, Count: 2, Mean: domain.SomeMetric(35), Std: domain.SomeMetric(4.24)},
		},
		DistanceByCity: []domain.CityDistance{{City: "Urban", MeanKm: 3.02, Share: 1}},
	}

	charts := RestaurantCharts(view)

	byCity, ok := domain.FindChart(charts, ChartTimeByCity)
	require.True(t, ok)
	assert.Equal(t, domain.ChartBar, byCity.Kind)
	assert.Equal(t, []float64{24, 48}, byCity.Series[0].Values)
	assert.Equal(t, []float64{2.5, 0}, byCity.Series[0].Errors, "undefined deviation plots as zero")

	sunburst, ok := domain.FindChart(charts, ChartTimeByCityAndTraffic)
	require.True(t, ok)
	assert.Equal(t, []string{"Urban / Jam"}, sunburst.Series[0].Labels)
	assert.Equal(t, []float64{4.24}, sunburst.Series[0].Errors, "segments keep their deviation")

	distance, ok := domain.FindChart(charts, ChartDistanceByCity)
	require.True(t, ok)
	assert.Equal(t, []float64{3.02}, distance.Series[0].Values)
}

func TestCourierCharts(t *testing.T) {
	view := &domain.CourierView{
		RatingByWeather: []domain.GroupStat{{Keys: []string{"conditions Sunny"}, Count: 3, Mean: domain.SomeMetric(4.7), Std: domain.SomeMetric(0.1)}},
	}

	charts := CourierCharts(view)
	require.Len(t, charts, 2)

	weather, ok := domain.FindChart(charts, ChartRatingByWeather)
	require.True(t, ok)
	assert.Equal(t, []string{"conditions Sunny"}, weather.Series[0].Labels)

	traffic, ok := domain.FindChart(charts, ChartRatingByTraffic)
	require.True(t, ok)
	assert.Empty(t, traffic.Series[0].Values)
}
