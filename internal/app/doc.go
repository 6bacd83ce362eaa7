// Package app wires the delivery dashboard together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, config.yaml, .env and DASH_* variables
//  2. Initialize the JSON logger and OpenTelemetry
//  3. Create the dashboard, export and health services
//  4. Watch the dataset directory for live reload
//  5. Build the chi router: pages, /api, /metrics and /ws
//
// Build does steps 3 to 5 for a ready-made configuration, which is what the
// tests use.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM. Stop then closes the live reload
// sockets, drains HTTP requests, stops the dataset watcher and flushes
// telemetry. The package never calls os.Exit.
package app
