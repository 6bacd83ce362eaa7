// Package http implements the HTTP handlers of the delivery dashboard. The
// handlers only parse requests and format responses; every view is built
// by the dashboard service from a fresh read of the dataset file.
//
// # Routes
//
//	GET /company, /couriers, /restaurants   HTML pages
//	GET /assets/logo                        sidebar logo
//	GET /api/views/{view}                   view as JSON
//	GET /api/charts/{view}/{chart}          chart image, format=svg|png
//	GET /api/maps/deliveries.geojson        median delivery locations
//	GET /api/export/cleaned.csv             cleaned dataset
//	GET /api/export/{view}.xlsx             one view as a workbook
//	GET /api/export/dashboard.xlsx          all views in one workbook
//	POST /api/client-log                    problems reported by pages
//	GET /api/health, /api/version           health and build info
//
// Every data route accepts the sidebar filter:
//
//	?before=2022-03-01&traffic=Low&traffic=Jam
//
// An absent traffic parameter keeps the default selection while an empty
// one ("traffic=") selects nothing, which is what an unticked form submits.
//
// # Error Handling
//
// All errors are rendered as RFC 7807 problem documents by the shared
// error handler:
//
//	{
//	    "type": "/errors/data/not-found",
//	    "title": "Dataset Unavailable",
//	    "status": 503,
//	    "detail": "The delivery dataset could not be read",
//	    "instance": "/api/views/company"
//	}
//
// # Testing
//
// Handlers are tested with httptest against mocked services, and end to end
// against the real services reading a fixture dataset.
package http
