package dataprocessing

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"deliverydash/pkg/contracts/domain"
)

const (
	// sentinel marks a missing value in guarded columns; the trailing space is significant
	sentinel = "NaN "

	// timeTakenPrefix precedes the elapsed minutes in the raw file
	timeTakenPrefix = "(min) "

	// OrderDateLayout accepts day-month-year with or without zero padding
	OrderDateLayout = "2-1-2006"

	// orderDateOutput is the layout used when writing dates back out
	orderDateOutput = "02-01-2006"

	// sourceRowColumn carries the original record position through filtering
	sourceRowColumn = "__source_row"
)

// sentinelColumns are dropped when they hold the sentinel, before any coercion
var sentinelColumns = []string{
	domain.ColumnCourierAge,
	domain.ColumnTrafficDensity,
	domain.ColumnCity,
	domain.ColumnFestival,
}

var errNegativeDuration = errors.New("elapsed time is negative")

// CleanReport summarizes what the cleaning stage removed
type CleanReport struct {
	RowsIn                    int `json:"rows_in"`
	RowsOut                   int `json:"rows_out"`
	DroppedSentinel           int `json:"dropped_sentinel"`
	DroppedMultipleDeliveries int `json:"dropped_multiple_deliveries"`
	// MalformedSentinels counts dropped rows whose guarded field was a bare
	// "NaN" without the trailing space. They are a subset of the drops above.
	MalformedSentinels int `json:"malformed_sentinels"`
}

// Clean converts a raw dataset into typed orders. Steps run in a fixed order:
//
//  1. drop rows whose age, traffic, city or festival equals the sentinel
//  2. coerce age to an integer
//  3. coerce rating to a number; "NaN" becomes a missing rating
//  4. parse the order date (day-month-year)
//  5. drop rows whose multiple-deliveries field equals the sentinel, then coerce it
//  6. trim ID, traffic, order type, vehicle type, city and festival
//  7. strip the "(min) " prefix from the elapsed time and coerce it
//
// The first field that fails coercion aborts the run with a *CoercionError.
// Cleaning an already clean dataset (see EncodeOrders) returns it unchanged.
func Clean(df dataframe.DataFrame) ([]domain.Order, CleanReport, error) {
	report := CleanReport{RowsIn: df.Nrow()}

	if err := requireColumns(df); err != nil {
		return nil, report, err
	}
	if df.Nrow() == 0 {
		return []domain.Order{}, report, nil
	}

	report.MalformedSentinels = countMalformedSentinels(df)

	rowNumbers := make([]int, df.Nrow())
	for i := range rowNumbers {
		rowNumbers[i] = i + 1
	}
	df = df.Mutate(series.New(rowNumbers, series.Int, sourceRowColumn))

	stage := dropSentinel(df, sentinelColumns...)
	if stage.Err != nil {
		return nil, report, stage.Err
	}
	report.DroppedSentinel = df.Nrow() - stage.Nrow()

	// Steps 2-4 run over every surviving row so a bad value is reported
	// even when step 5 would drop its row.
	if err := validateEarlyColumns(stage); err != nil {
		return nil, report, err
	}

	final := dropSentinel(stage, domain.ColumnMultipleDeliveries)
	if final.Err != nil {
		return nil, report, final.Err
	}
	report.DroppedMultipleDeliveries = stage.Nrow() - final.Nrow()

	orders, err := decodeOrders(final)
	if err != nil {
		return nil, report, err
	}
	report.RowsOut = len(orders)

	return orders, report, nil
}

func requireColumns(df dataframe.DataFrame) error {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}

	var missing []string
	for _, name := range domain.Columns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// dropSentinel keeps rows whose columns all differ from the sentinel.
// The comparison is false for NA cells, so a bare "NaN" is dropped too.
func dropSentinel(df dataframe.DataFrame, columns ...string) dataframe.DataFrame {
	for _, col := range columns {
		if df.Nrow() == 0 {
			return df
		}
		df = df.Filter(dataframe.F{
			Colname:    col,
			Comparator: series.Neq,
			Comparando: sentinel,
		})
		if df.Err != nil {
			return df
		}
	}
	return df
}

func countMalformedSentinels(df dataframe.DataFrame) int {
	guarded := append(append([]string{}, sentinelColumns...), domain.ColumnMultipleDeliveries)

	malformed := make([]bool, df.Nrow())
	for _, col := range guarded {
		s := df.Col(col)
		for i := 0; i < s.Len(); i++ {
			if s.Elem(i).IsNA() {
				malformed[i] = true
			}
		}
	}

	count := 0
	for _, m := range malformed {
		if m {
			count++
		}
	}
	return count
}

func validateEarlyColumns(df dataframe.DataFrame) error {
	rows, err := df.Col(sourceRowColumn).Int()
	if err != nil {
		return err
	}

	ages := df.Col(domain.ColumnCourierAge).Records()
	ratings := df.Col(domain.ColumnCourierRating).Records()
	dates := df.Col(domain.ColumnOrderDate).Records()

	for i, row := range rows {
		d := rowDecoder{row: row}
		d.integer(domain.ColumnCourierAge, ages[i])
		d.rating(domain.ColumnCourierRating, ratings[i])
		d.date(domain.ColumnOrderDate, dates[i])
		if d.err != nil {
			return d.err
		}
	}
	return nil
}

func decodeOrders(df dataframe.DataFrame) ([]domain.Order, error) {
	rows, err := df.Col(sourceRowColumn).Int()
	if err != nil {
		return nil, err
	}

	cols := make(map[string][]string, len(domain.Columns))
	for _, name := range domain.Columns {
		cols[name] = df.Col(name).Records()
	}

	orders := make([]domain.Order, 0, len(rows))
	for i, row := range rows {
		field := func(name string) string { return cols[name][i] }
		d := rowDecoder{row: row}

		o := domain.Order{
			ID:                 strings.TrimSpace(field(domain.ColumnID)),
			CourierID:          field(domain.ColumnCourierID),
			CourierAge:         d.integer(domain.ColumnCourierAge, field(domain.ColumnCourierAge)),
			CourierRating:      d.rating(domain.ColumnCourierRating, field(domain.ColumnCourierRating)),
			OrderDate:          d.date(domain.ColumnOrderDate, field(domain.ColumnOrderDate)),
			MultipleDeliveries: d.integer(domain.ColumnMultipleDeliveries, field(domain.ColumnMultipleDeliveries)),
			Restaurant: domain.Coordinate{
				Lat: d.float(domain.ColumnRestaurantLat, field(domain.ColumnRestaurantLat)),
				Lon: d.float(domain.ColumnRestaurantLon, field(domain.ColumnRestaurantLon)),
			},
			Delivery: domain.Coordinate{
				Lat: d.float(domain.ColumnDeliveryLat, field(domain.ColumnDeliveryLat)),
				Lon: d.float(domain.ColumnDeliveryLon, field(domain.ColumnDeliveryLon)),
			},
			TimeOrdered:      field(domain.ColumnTimeOrdered),
			TimePicked:       field(domain.ColumnTimePicked),
			Weather:          field(domain.ColumnWeather),
			TrafficDensity:   strings.TrimSpace(field(domain.ColumnTrafficDensity)),
			VehicleCondition: d.integer(domain.ColumnVehicleCondition, field(domain.ColumnVehicleCondition)),
			OrderType:        strings.TrimSpace(field(domain.ColumnOrderType)),
			VehicleType:      strings.TrimSpace(field(domain.ColumnVehicleType)),
			Festival:         strings.TrimSpace(field(domain.ColumnFestival)),
			City:             strings.TrimSpace(field(domain.ColumnCity)),
			TimeTakenMinutes: d.minutes(domain.ColumnTimeTaken, field(domain.ColumnTimeTaken)),
		}
		if d.err != nil {
			return nil, d.err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// rowDecoder converts the fields of one record and keeps the first failure
type rowDecoder struct {
	row int
	err error
}

func (d *rowDecoder) fail(column, value string, err error) {
	if d.err == nil {
		d.err = &CoercionError{Row: d.row, Column: column, Value: value, Err: err}
	}
}

func (d *rowDecoder) integer(column, raw string) int {
	if d.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		d.fail(column, raw, err)
	}
	return v
}

func (d *rowDecoder) float(column, raw string) float64 {
	if d.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		d.fail(column, raw, err)
	}
	return v
}

func (d *rowDecoder) rating(column, raw string) *float64 {
	if d.err != nil {
		return nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == domain.MissingCategory {
		return nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		d.fail(column, raw, err)
		return nil
	}
	return &v
}

func (d *rowDecoder) date(column, raw string) time.Time {
	if d.err != nil {
		return time.Time{}
	}
	t, err := time.Parse(OrderDateLayout, strings.TrimSpace(raw))
	if err != nil {
		d.fail(column, raw, err)
	}
	return t
}

func (d *rowDecoder) minutes(column, raw string) int {
	if d.err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(raw, timeTakenPrefix)))
	switch {
	case err != nil:
		d.fail(column, raw, err)
	case v < 0:
		d.fail(column, raw, errNegativeDuration)
	}
	return v
}

// OrderRecords renders orders in the raw column layout, header first
func OrderRecords(orders []domain.Order) [][]string {
	records := make([][]string, 0, len(orders)+1)
	records = append(records, append([]string{}, domain.Columns...))

	for _, o := range orders {
		rating := domain.MissingCategory
		if o.CourierRating != nil {
			rating = formatFloat(*o.CourierRating)
		}
		records = append(records, []string{
			o.ID,
			o.CourierID,
			strconv.Itoa(o.CourierAge),
			rating,
			formatFloat(o.Restaurant.Lat),
			formatFloat(o.Restaurant.Lon),
			formatFloat(o.Delivery.Lat),
			formatFloat(o.Delivery.Lon),
			o.OrderDate.Format(orderDateOutput),
			o.TimeOrdered,
			o.TimePicked,
			o.Weather,
			o.TrafficDensity,
			strconv.Itoa(o.VehicleCondition),
			o.OrderType,
			o.VehicleType,
			strconv.Itoa(o.MultipleDeliveries),
			o.Festival,
			o.City,
			timeTakenPrefix + strconv.Itoa(o.TimeTakenMinutes),
		})
	}
	return records
}

// EncodeOrders writes typed orders back into a raw DataFrame. Clean on the
// result yields the same orders.
func EncodeOrders(orders []domain.Order) dataframe.DataFrame {
	if len(orders) == 0 {
		columns := make([]series.Series, len(domain.Columns))
		for i, name := range domain.Columns {
			columns[i] = series.New([]string{}, series.String, name)
		}
		return dataframe.New(columns...)
	}
	return dataframe.LoadRecords(OrderRecords(orders), readOptions()...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
