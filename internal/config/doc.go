// Package config provides centralized configuration management for the
// delivery dashboard. It loads configuration from multiple sources,
// validates it, and resolves the file system paths the service reads.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// A .env file in the working directory is loaded into the process
// environment before anything else.
//
// # Environment Variables
//
// All environment variables follow the pattern DASH_<SECTION>_<FIELD>:
//
//	DASH_SERVER_PORT=8080
//	DASH_PATHS_DATA_FILE=/data/train.csv
//	DASH_DASHBOARD_DEFAULT_BEFORE=2022-04-13
//	DASH_TELEMETRY_TRACE_EXPORTER=none
//	DASH_CONFIG_FILE=/etc/deliverydash/config.yaml
//
// # Path Management
//
// Relative paths are resolved against paths.base_dir (default: working
// directory):
//
//	paths, err := cfg.GetPaths()
//	df, err := dataprocessing.LoadFile(ctx, paths.DataFile)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, config.Default() returns a valid configuration that needs no
// environment or files.
package config
