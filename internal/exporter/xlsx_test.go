package exporter

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"deliverydash/pkg/contracts/domain"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func sampleMeta(view string) domain.ViewMeta {
	return domain.ViewMeta{
		View:         view,
		Filter:       domain.Filter{Before: time.Date(2022, 4, 13, 0, 0, 0, 0, time.UTC), Traffic: []string{"Low", "Jam"}},
		RowsLoaded:   8,
		RowsCleaned:  6,
		RowsFiltered: 5,
		GeneratedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestWriteWorkbook(t *testing.T) {
	sheets := []Sheet{
		{Name: "first", Header: []string{"a", "b"}, Rows: [][]interface{}{{"x", 1}, {nil, 2.5}}},
		{Name: "a sheet name that is far longer than excel allows", Header: []string{"c"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sheets))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{"first", "a sheet name that is far longer"}, f.GetSheetList())

	rows, err := f.GetRows("first")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"x", "1"}, {"", "2.5"}}, rows)
}

func TestWriteWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sheets []Sheet
	}{
		{name: "no sheets"},
		{name: "duplicate names", sheets: []Sheet{{Name: "dup"}, {Name: "dup"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, WriteWorkbook(&bytes.Buffer{}, tt.sheets))
		})
	}
}

func TestWriteWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "cleaned.xlsx")

	require.NoError(t, WriteWorkbookFile(path, []Sheet{{Name: "cleaned", Header: []string{"id"}, Rows: [][]interface{}{{"0x4607"}}}}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("cleaned")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id"}, {"0x4607"}}, rows)

	assert.Error(t, WriteWorkbookFile(filepath.Join(t.TempDir(), "empty.xlsx"), nil))
}

func TestOrdersSheet(t *testing.T) {
	orders := cleanedSample(t)

	sheet := OrdersSheet(orders)
	assert.Equal(t, domain.Columns, sheet.Header)
	assert.Len(t, sheet.Rows, len(orders))
}

func TestViewSheets(t *testing.T) {
	company := &domain.CompanyView{
		ViewMeta:     sampleMeta(domain.ViewCompany),
		OrdersByDay:  []domain.DailyCount{{Date: time.Date(2022, 3, 19, 0, 0, 0, 0, time.UTC), Orders: 2}},
		TrafficShare: []domain.TrafficShare{{Traffic: "Jam", Orders: 1, Share: 0.5}, {Traffic: "Low", Orders: 1, Share: 0.5}},
		OrdersByWeek: []domain.WeeklyCount{{Week: "11", Orders: 2}},
		OrdersPerCourierByWeek: []domain.WeeklyOrdersPerCourier{
			{Week: "11", Orders: 2, Couriers: 1, OrdersPerCourier: 2},
		},
	}
	couriers := &domain.CourierView{
		ViewMeta:        sampleMeta(domain.ViewCouriers),
		Age:             domain.Range{Max: domain.SomeMetric(39), Min: domain.SomeMetric(20)},
		RatingByCourier: []domain.CourierRating{{CourierID: "A", Ratings: 0}},
		RatingByTraffic: []domain.GroupStat{{Keys: []string{"Low"}, Count: 1, Mean: domain.SomeMetric(4.5)}},
	}
	restaurants := &domain.RestaurantView{
		ViewMeta:       sampleMeta(domain.ViewRestaurants),
		UniqueCouriers: 3,
		MeanDistanceKm: domain.SomeMetric(3.02),
		TimeByCityAndOrderType: []domain.GroupStat{
			{Keys: []string{"Urban", "Snack"}, Count: 2, Mean: domain.SomeMetric(24), Std: domain.SomeMetric(1.41)},
		},
	}

	var sheets []Sheet
	sheets = append(sheets, CompanySheets(company)...)
	sheets = append(sheets, CourierSheets(couriers)...)
	sheets = append(sheets, RestaurantSheets(restaurants)...)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sheets))
	f := openWorkbook(t, buf.Bytes())

	t.Run("filter sheet", func(t *testing.T) {
		rows, err := f.GetRows("company filter")
		require.NoError(t, err)
		assert.Contains(t, rows, []string{"before", "2022-04-13"})
		assert.Contains(t, rows, []string{"traffic", "Low, Jam"})
		assert.Contains(t, rows, []string{"rows filtered", "5"})
	})

	t.Run("weekly sheet joins couriers", func(t *testing.T) {
		rows, err := f.GetRows("orders by week")
		require.NoError(t, err)
		assert.Equal(t, []string{"11", "2", "1", "2"}, rows[1])
	})

	t.Run("undefined metrics are empty", func(t *testing.T) {
		rows, err := f.GetRows("rating by courier")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "A", rows[1][0])
		assert.Empty(t, rows[1][1])

		rows, err = f.GetRows("courier ranges")
		require.NoError(t, err)
		assert.Contains(t, rows, []string{"vehicle condition"})
	})

	t.Run("two key groups", func(t *testing.T) {
		rows, err := f.GetRows("time by city and order type")
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "order_type", "count", "mean", "std"}, rows[0])
		assert.Equal(t, []string{"Urban", "Snack", "2", "24", "1.41"}, rows[1])
	})
}
