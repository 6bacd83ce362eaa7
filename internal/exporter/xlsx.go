package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"deliverydash/internal/config"
	"deliverydash/internal/dataprocessing"
	"deliverydash/pkg/contracts/domain"
)

// maxSheetName is the Excel limit on sheet name length
const maxSheetName = 31

// Sheet is one table of a workbook. Nil cells are left empty.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// WriteWorkbook writes sheets as an XLSX workbook, first sheet active
func WriteWorkbook(out io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	seen := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		name := sheetName(sheet.Name)
		if seen[name] {
			return fmt.Errorf("duplicate sheet name %q", name)
		}
		seen[name] = true

		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteWorkbookFile writes sheets as an XLSX workbook at filePath
func WriteWorkbookFile(filePath string, sheets []Sheet) error {
	return writeFile(filePath, func(out io.Writer) error {
		return WriteWorkbook(out, sheets)
	})
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	for col, header := range sheet.Header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return err
		}
	}
	if n := len(sheet.Header); n > 0 {
		last, _ := excelize.CoordinatesToCellName(n, 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		for col, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

// metricCell returns the value of a defined metric and nil otherwise
func metricCell(m domain.Metric) interface{} {
	if !m.Valid {
		return nil
	}
	return m.Value
}

// OrdersSheet lays the cleaned dataset out in the raw column layout
func OrdersSheet(orders []domain.Order) Sheet {
	records := dataprocessing.OrderRecords(orders)
	rows := make([][]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		rows = append(rows, row)
	}
	return Sheet{Name: "cleaned", Header: records[0], Rows: rows}
}

func metaSheet(meta domain.ViewMeta) Sheet {
	traffic := ""
	for i, t := range meta.Filter.Traffic {
		if i > 0 {
			traffic += ", "
		}
		traffic += t
	}
	before := ""
	if !meta.Filter.Before.IsZero() {
		before = meta.Filter.Before.Format(config.DateLayout)
	}

	return Sheet{
		Name:   meta.View + " filter",
		Header: []string{"setting", "value"},
		Rows: [][]interface{}{
			{"view", meta.View},
			{"before", before},
			{"traffic", traffic},
			{"rows loaded", meta.RowsLoaded},
			{"rows cleaned", meta.RowsCleaned},
			{"rows filtered", meta.RowsFiltered},
			{"generated at", meta.GeneratedAt.Format("2006-01-02 15:04:05")},
		},
	}
}

func groupSheet(name string, keys []string, groups []domain.GroupStat) Sheet {
	header := append(append([]string{}, keys...), "count", "mean", "std")
	rows := make([][]interface{}, 0, len(groups))
	for _, g := range groups {
		row := make([]interface{}, 0, len(header))
		for _, k := range g.Keys {
			row = append(row, k)
		}
		row = append(row, g.Count, metricCell(g.Mean), metricCell(g.Std))
		rows = append(rows, row)
	}
	return Sheet{Name: name, Header: header, Rows: rows}
}

func speedSheet(name string, speeds []domain.CourierSpeed) Sheet {
	rows := make([][]interface{}, 0, len(speeds))
	for _, s := range speeds {
		rows = append(rows, []interface{}{s.City, s.CourierID, s.MeanTime})
	}
	return Sheet{Name: name, Header: []string{"city", "courier_id", "mean_time_min"}, Rows: rows}
}

// CompanySheets lays out the company view
func CompanySheets(v *domain.CompanyView) []Sheet {
	daily := Sheet{Name: "orders by day", Header: []string{"date", "orders"}}
	for _, d := range v.OrdersByDay {
		daily.Rows = append(daily.Rows, []interface{}{d.Date.Format(config.DateLayout), d.Orders})
	}

	share := Sheet{Name: "traffic share", Header: []string{"traffic", "orders", "share"}}
	for _, t := range v.TrafficShare {
		share.Rows = append(share.Rows, []interface{}{t.Traffic, t.Orders, t.Share})
	}

	byCity := Sheet{Name: "traffic by city", Header: []string{"city", "traffic", "orders"}}
	for _, c := range v.TrafficByCity {
		byCity.Rows = append(byCity.Rows, []interface{}{c.City, c.Traffic, c.Orders})
	}

	weekly := Sheet{Name: "orders by week", Header: []string{"week", "orders", "couriers", "orders_per_courier"}}
	perCourier := make(map[string]domain.WeeklyOrdersPerCourier, len(v.OrdersPerCourierByWeek))
	for _, w := range v.OrdersPerCourierByWeek {
		perCourier[w.Week] = w
	}
	for _, w := range v.OrdersByWeek {
		pc := perCourier[w.Week]
		weekly.Rows = append(weekly.Rows, []interface{}{w.Week, w.Orders, pc.Couriers, pc.OrdersPerCourier})
	}

	markers := Sheet{Name: "map", Header: []string{"city", "traffic", "lat", "lon"}}
	for _, m := range v.Map {
		markers.Rows = append(markers.Rows, []interface{}{m.City, m.Traffic, m.Location.Lat, m.Location.Lon})
	}

	return []Sheet{metaSheet(v.ViewMeta), daily, share, byCity, weekly, markers}
}

// CourierSheets lays out the courier view
func CourierSheets(v *domain.CourierView) []Sheet {
	ranges := Sheet{
		Name:   "courier ranges",
		Header: []string{"measure", "max", "min"},
		Rows: [][]interface{}{
			{"age", metricCell(v.Age.Max), metricCell(v.Age.Min)},
			{"vehicle condition", metricCell(v.VehicleCondition.Max), metricCell(v.VehicleCondition.Min)},
		},
	}

	ratings := Sheet{Name: "rating by courier", Header: []string{"courier_id", "mean_rating", "ratings"}}
	for _, r := range v.RatingByCourier {
		ratings.Rows = append(ratings.Rows, []interface{}{r.CourierID, metricCell(r.MeanRating), r.Ratings})
	}

	return []Sheet{
		metaSheet(v.ViewMeta),
		ranges,
		ratings,
		groupSheet("rating by traffic", []string{"traffic"}, v.RatingByTraffic),
		groupSheet("rating by weather", []string{"weather"}, v.RatingByWeather),
		speedSheet("fastest couriers", v.Fastest),
		speedSheet("slowest couriers", v.Slowest),
	}
}

// RestaurantSheets lays out the restaurant view
func RestaurantSheets(v *domain.RestaurantView) []Sheet {
	tiles := Sheet{
		Name:   "restaurant metrics",
		Header: []string{"metric", "value"},
		Rows: [][]interface{}{
			{"unique couriers", v.UniqueCouriers},
			{"mean distance km", metricCell(v.MeanDistanceKm)},
			{"festival mean time", metricCell(v.FestivalMeanTime)},
			{"festival std time", metricCell(v.FestivalStdTime)},
			{"regular mean time", metricCell(v.RegularMeanTime)},
			{"regular std time", metricCell(v.RegularStdTime)},
		},
	}

	distance := Sheet{Name: "distance by city", Header: []string{"city", "mean_km", "share"}}
	for _, d := range v.DistanceByCity {
		distance.Rows = append(distance.Rows, []interface{}{d.City, d.MeanKm, d.Share})
	}

	return []Sheet{
		metaSheet(v.ViewMeta),
		tiles,
		groupSheet("time by city", []string{"city"}, v.TimeByCity),
		groupSheet("time by city and order type", []string{"city", "order_type"}, v.TimeByCityAndOrderType),
		distance,
		groupSheet("time by city and traffic", []string{"city", "traffic"}, v.TimeByCityAndTraffic),
	}
}
