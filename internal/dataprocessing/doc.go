// Package dataprocessing turns the raw delivery dataset into the numbers
// shown on the dashboard. It loads the file, cleans it into typed orders,
// applies the sidebar filters and computes every aggregation of the three
// views.
//
// # Architecture
//
// The package is organized into four stages:
//
// 1. Loader: reads CSV or XLSX into a string-typed gota DataFrame
// 2. Cleaner: drops sentinel rows, trims and coerces into domain.Order
// 3. Filter: date upper bound and traffic selection
// 4. Aggregations: pure functions over []domain.Order
//
// # Usage
//
//	df, err := dataprocessing.LoadFile(ctx, "train.csv")
//	if err != nil {
//	    return err
//	}
//	orders, report, err := dataprocessing.Clean(df)
//	if err != nil {
//	    return err
//	}
//	visible := dataprocessing.ApplyFilter(orders, cfg.Dashboard.DefaultFilter())
//	share := dataprocessing.TrafficOrderShare(visible)
//
// # Data Flow
//
//	File → LoadFile → DataFrame → Clean → []Order → ApplyFilter → aggregations
//
// # Error Handling
//
// Loading fails with ErrDatasetUnavailable or ErrDatasetMalformed. Cleaning
// fails with *MissingColumnError or *CoercionError, the latter carrying the
// source row and column. Aggregations never fail: empty input yields empty
// slices and undefined metrics.
package dataprocessing
