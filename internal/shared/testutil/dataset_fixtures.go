package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"deliverydash/pkg/contracts/domain"
)

// SampleRowsLoaded, SampleRowsCleaned and SampleRowsFiltered describe what
// the pipeline makes of SampleRows under the default filter
const (
	SampleRowsLoaded   = 8
	SampleRowsCleaned  = 6
	SampleRowsFiltered = 5
)

// RawRow returns a well-formed dataset record with the padding quirks of the
// real file. Overrides replace individual columns.
func RawRow(overrides map[string]string) map[string]string {
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

// SampleRows is a small dataset covering three cities and all traffic
// levels. One row falls on the default date bound, one has a sentinel age
// and one a sentinel multiple-deliveries value.
func SampleRows() []map[string]string {
	return []map[string]string{
		RawRow(map[string]string{domain.ColumnID: "0x0001 "}),
		RawRow(map[string]string{
			domain.ColumnID: "0x0002 ", domain.ColumnCourierID: "BANGRES18DEL02 ", domain.ColumnCourierRating: "4.5",
			domain.ColumnOrderDate: "20-03-2022", domain.ColumnTrafficDensity: "Jam ", domain.ColumnFestival: "Yes ",
			domain.ColumnWeather: "conditions Stormy", domain.ColumnTimeTaken: "(min) 35",
		}),
		RawRow(map[string]string{
			domain.ColumnID: "0x0003 ", domain.ColumnCity: "Metropolitian ", domain.ColumnTrafficDensity: "Low ",
			domain.ColumnOrderType: "Meal ", domain.ColumnTimeTaken: "(min) 20",
		}),
		RawRow(map[string]string{
			domain.ColumnID: "0x0004 ", domain.ColumnCourierID: "COIMBRES13DEL01 ", domain.ColumnCourierAge: "25",
			domain.ColumnCourierRating: "NaN", domain.ColumnOrderDate: "25-03-2022", domain.ColumnCity: "Metropolitian ",
			domain.ColumnTrafficDensity: "Medium ", domain.ColumnVehicleCondition: "0", domain.ColumnTimeTaken: "(min) 30",
			domain.ColumnDeliveryLat: "22.845049", domain.ColumnDeliveryLon: "75.992471",
		}),
		RawRow(map[string]string{
			domain.ColumnID: "0x0005 ", domain.ColumnCourierID: "BANGRES18DEL02 ", domain.ColumnCourierRating: "4.1",
			domain.ColumnOrderDate: "1-4-2022", domain.ColumnCity: "Semi-Urban ", domain.ColumnTrafficDensity: "Jam ",
			domain.ColumnFestival: "Yes ", domain.ColumnTimeTaken: "(min) 48",
		}),
		RawRow(map[string]string{
			domain.ColumnID: "0x0006 ", domain.ColumnCourierID: "COIMBRES13DEL01 ", domain.ColumnOrderDate: "13-04-2022",
			domain.ColumnCity: "Metropolitian ", domain.ColumnTrafficDensity: "Low ", domain.ColumnTimeTaken: "(min) 22",
		}),
		RawRow(map[string]string{domain.ColumnID: "0x0007 ", domain.ColumnCourierAge: "NaN "}),
		RawRow(map[string]string{domain.ColumnID: "0x0008 ", domain.ColumnMultipleDeliveries: "NaN "}),
	}
}

// DatasetCSV renders rows as dataset CSV text
func DatasetCSV(t testing.TB, rows ...map[string]string) []byte {
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

// WriteDataset writes rows to train.csv in dir and returns its path
func WriteDataset(t testing.TB, dir string, rows ...map[string]string) string {
	t.Helper()

	path := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(path, DatasetCSV(t, rows...), 0644))
	return path
}

// WriteSampleDataset writes SampleRows to a fresh temp dir
func WriteSampleDataset(t testing.TB) string {
	t.Helper()
	return WriteDataset(t, t.TempDir(), SampleRows()...)
}
