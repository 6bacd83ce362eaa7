package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deliverydash/pkg/contracts/domain"
)

// rawRow returns a well-formed dataset record with the padding quirks of the
// real file. Overrides replace individual columns.
func rawRow(overrides map[string]string) map[string]string {
	row := map[string]string{
		domain.ColumnID:                 "0x4607 ",
		domain.ColumnCourierID:          "INDORES13DEL02 ",
		domain.ColumnCourierAge:         "37",
		domain.ColumnCourierRating:      "4.9",
		domain.ColumnRestaurantLat:      "22.745049",
		domain.ColumnRestaurantLon:      "75.892471",
		domain.ColumnDeliveryLat:        "22.765049",
		domain.ColumnDeliveryLon:        "75.912471",
		domain.ColumnOrderDate:          "19-03-2022",
		domain.ColumnTimeOrdered:        "11:30:00",
		domain.ColumnTimePicked:         "11:45:00",
		domain.ColumnWeather:            "conditions Sunny",
		domain.ColumnTrafficDensity:     "High ",
		domain.ColumnVehicleCondition:   "2",
		domain.ColumnOrderType:          "Snack ",
		domain.ColumnVehicleType:        "motorcycle ",
		domain.ColumnMultipleDeliveries: "0",
		domain.ColumnFestival:           "No ",
		domain.ColumnCity:               "Urban ",
		domain.ColumnTimeTaken:          "(min) 24",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// rawCSV renders rows as dataset CSV text
func rawCSV(t *testing.T, rows ...map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(domain.Columns))
	for _, row := range rows {
		record := make([]string, len(domain.Columns))
		for i, col := range domain.Columns {
			record[i] = row[col]
		}
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.Bytes()
}

// writeDataset writes rows to a CSV file in a temp dir and returns its path
func writeDataset(t *testing.T, rows ...map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, rawCSV(t, rows...), 0644))
	return path
}

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// order builds a clean order for aggregation tests
func order(id, courier, city, traffic string, day time.Time, minutes int) domain.Order {
	return domain.Order{
		ID:               id,
		CourierID:        courier,
		CourierAge:       30,
		City:             city,
		TrafficDensity:   traffic,
		OrderDate:        day,
		Festival:         domain.FestivalNo,
		OrderType:        "Snack",
		VehicleType:      "motorcycle",
		Weather:          "conditions Sunny",
		TimeTakenMinutes: minutes,
	}
}

func rating(v float64) *float64 {
	return &v
}
