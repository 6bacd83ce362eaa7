// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the dataprocessing package so that
// handlers only parse requests and render results.
//
// # Available Services
//
//   - DashboardService: runs the load, clean, filter and aggregate pipeline
//     for the company, couriers and restaurants views
//   - ExportService: writes the cleaned dataset as CSV and views as XLSX
//   - HealthService: health, readiness, liveness and version information
//
// # Pipeline
//
// Every view request reads the dataset file again; nothing is cached, so an
// edited file shows on the next request:
//
//	ctx → pipeline.<view>
//	        ├── pipeline.load       LoadFile
//	        ├── pipeline.clean      Clean
//	        ├── pipeline.filter     ApplyFilter
//	        └── pipeline.aggregate  view assembly and chart descriptions
//
// Each run records pipeline_runs_total, pipeline_duration_seconds,
// pipeline_rows_loaded_total and pipeline_rows_dropped_total{reason}.
//
// # Error Handling
//
// Load and clean failures are wrapped in an AppError of type DATASET that
// still matches the dataprocessing sentinels with errors.Is, so the HTTP
// error handler can map them to 503 or 422. Unknown view names produce a
// NOT_FOUND AppError wrapping ErrViewNotFound.
package services
