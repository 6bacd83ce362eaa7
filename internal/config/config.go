package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"deliverydash/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment variable, e.g. DASH_SERVER_PORT
const EnvPrefix = "DASH"

// DateLayout is the layout of every date value in the configuration
const DateLayout = "2006-01-02"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Watch     WatchConfig     `yaml:"watch" envconfig:"WATCH"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds one pipeline run behind an API request
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths. Relative paths are resolved
// against BaseDir, or the working directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir  string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataFile string `yaml:"data_file" envconfig:"DATA_FILE"`
	LogoFile string `yaml:"logo_file" envconfig:"LOGO_FILE"`
	LogsDir  string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// DashboardConfig holds the sidebar defaults
type DashboardConfig struct {
	DefaultBefore  string   `yaml:"default_before" envconfig:"DEFAULT_BEFORE"`
	SliderMin      string   `yaml:"slider_min" envconfig:"SLIDER_MIN"`
	SliderMax      string   `yaml:"slider_max" envconfig:"SLIDER_MAX"`
	TrafficOptions []string `yaml:"traffic_options" envconfig:"TRAFFIC_OPTIONS"`
	TopN           int      `yaml:"top_n" envconfig:"TOP_N"`
}

// WatchConfig controls live reload of the dataset file
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"ENABLED"`
	Debounce time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the YAML file named by DASH_CONFIG_FILE (or found in a
// well-known location), and DASH_* environment variables. A .env file in
// the working directory is loaded into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; absent keys keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Paths.DataFile == "" {
		return fmt.Errorf("dataset path must be specified")
	}

	if err := c.Dashboard.validate(); err != nil {
		return err
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Telemetry.TraceExporter)
	}

	switch c.Telemetry.MetricExporter {
	case "prometheus", "none":
	default:
		return fmt.Errorf("unknown metric exporter: %q", c.Telemetry.MetricExporter)
	}

	// Logs are always structured JSON written to stdout and file
	c.Logging.Format = "json"
	if c.Logging.Output != "both" && c.Logging.Output != "file" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "app.log")
	}

	return nil
}

func (d DashboardConfig) validate() error {
	dates := map[string]string{
		"default_before": d.DefaultBefore,
		"slider_min":     d.SliderMin,
		"slider_max":     d.SliderMax,
	}
	for name, value := range dates {
		if _, err := time.Parse(DateLayout, value); err != nil {
			return fmt.Errorf("dashboard %s: %w", name, err)
		}
	}

	lo, _ := time.Parse(DateLayout, d.SliderMin)
	hi, _ := time.Parse(DateLayout, d.SliderMax)
	if hi.Before(lo) {
		return fmt.Errorf("dashboard slider_max %s is before slider_min %s", d.SliderMax, d.SliderMin)
	}

	known := make(map[string]bool, len(domain.TrafficLevels))
	for _, level := range domain.TrafficLevels {
		known[level] = true
	}
	for _, option := range d.TrafficOptions {
		if !known[option] {
			return fmt.Errorf("dashboard traffic option %q is not one of %s", option, strings.Join(domain.TrafficLevels, ", "))
		}
	}

	if d.TopN <= 0 {
		return fmt.Errorf("dashboard top_n must be positive")
	}
	return nil
}

// DefaultFilter is the filter applied when a request selects nothing
func (d DashboardConfig) DefaultFilter() domain.Filter {
	before, _ := time.Parse(DateLayout, d.DefaultBefore)
	return domain.Filter{
		Before:  before,
		Traffic: append([]string{}, d.TrafficOptions...),
	}
}

// SliderBounds returns the selectable range of the date upper bound
func (d DashboardConfig) SliderBounds() (time.Time, time.Time) {
	lo, _ := time.Parse(DateLayout, d.SliderMin)
	hi, _ := time.Parse(DateLayout, d.SliderMax)
	return lo, hi
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataFile: DefaultDataFile,
			LogoFile: DefaultLogoFile,
			LogsDir:  DefaultLogsDir,
		},
		Dashboard: DashboardConfig{
			DefaultBefore:  "2022-04-13",
			SliderMin:      "2022-02-11",
			SliderMax:      "2022-04-06",
			TrafficOptions: append([]string{}, domain.TrafficLevels...),
			TopN:           DefaultTopN,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppSlug,
			TraceExporter:  "stdout",
			MetricExporter: "prometheus",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
	}
}
