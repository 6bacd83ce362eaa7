package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Delivery Dashboard"
	AppSlug    = "deliverydash"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	WebSocketPingPeriod   = 30 * time.Second
	WebSocketPongWait     = 60 * time.Second

	// File Paths (relative to the base directory)
	DefaultDataFile = "train.csv"
	DefaultLogoFile = "logo.png"
	DefaultLogsDir  = "logs"

	// WebSocket Buffer Sizes
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Dashboard
	DefaultTopN = 10

	// Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
