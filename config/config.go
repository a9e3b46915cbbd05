package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kushwahaamar-dev/sentinel/models"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Sources     SourcesConfig
	Oracle      OracleConfig
	Sink        SinkConfig
	Poller      PollerConfig
	Mode        models.Mode
	DataDir     string // directory holding scenarios.json and recipients.json
	OperatorKey string // HS256 secret for the operator token middleware
	LogLevel    string
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// SourcesConfig holds per-feed credentials and endpoints.
// Endpoints are overridable so tests can point adapters at local servers.
type SourcesConfig struct {
	GDACSURL    string
	EONETURL    string
	NWSURL      string
	OWMURL      string
	OWMAPIKey   string // optional; the OWM adapter reports a missing key, it does not fail
	HTTPTimeout time.Duration
}

// OracleConfig holds the decision oracle configuration
type OracleConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // hard wall-clock budget for one judge call
}

// SinkConfig holds the disbursement sink configuration. Disbursements
// are submitted exactly once; there is no retry knob.
type SinkConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// PollerConfig holds background poller configuration
type PollerConfig struct {
	Interval       time.Duration
	SuppressWindow time.Duration // identical status lines inside this window are not re-logged
	EventCacheSize int
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Mode:        parseMode(getEnv("SENTINEL_MODE", "MOCK")),
		DataDir:     getEnv("SENTINEL_DATA_DIR", "data"),
		OperatorKey: getEnv("OPERATOR_TOKEN_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8000),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		Sources: SourcesConfig{
			GDACSURL:    getEnv("GDACS_URL", "https://www.gdacs.org/xml/rss.xml"),
			EONETURL:    getEnv("EONET_URL", "https://eonet.gsfc.nasa.gov/api/v3/events"),
			NWSURL:      getEnv("NWS_URL", "https://api.weather.gov/alerts/active"),
			OWMURL:      getEnv("OWM_URL", "https://api.openweathermap.org/data/3.0/onecall"),
			OWMAPIKey:   getEnv("OWM_API_KEY", ""),
			HTTPTimeout: getEnvAsDuration("SOURCE_HTTP_TIMEOUT", 20*time.Second),
		},
		Oracle: OracleConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsDuration("ORACLE_TIMEOUT", 15*time.Second),
		},
		Sink: SinkConfig{
			Endpoint: getEnv("SINK_ENDPOINT", ""),
			APIKey:   getEnv("SINK_API_KEY", ""),
			Timeout:  getEnvAsDuration("SINK_TIMEOUT", 30*time.Second),
		},
		Poller: PollerConfig{
			Interval:       getEnvAsDuration("POLL_INTERVAL", 60*time.Second),
			SuppressWindow: getEnvAsDuration("LOG_SUPPRESS_WINDOW", 5*time.Minute),
			EventCacheSize: getEnvAsInt("EVENT_CACHE_SIZE", 500),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Mode != models.ModeLive && c.Mode != models.ModeMock {
		return fmt.Errorf("mode must be LIVE or MOCK, got %q", c.Mode)
	}

	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Live mode must be able to move funds; the sink endpoint cannot default.
	if c.IsLive() && c.Sink.Endpoint == "" {
		return fmt.Errorf("sink endpoint is required in LIVE mode")
	}

	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle timeout must be positive")
	}

	return nil
}

// IsLive returns true when the configuration selects live feeds and the live oracle/sink.
func (c *Config) IsLive() bool {
	return c.Mode == models.ModeLive
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "sentinel"),
		Password:        getEnv("DB_PASSWORD", "sentinel"),
		Database:        getEnv("DB_NAME", "sentinel"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func parseMode(s string) models.Mode {
	if strings.ToUpper(strings.TrimSpace(s)) == string(models.ModeLive) {
		return models.ModeLive
	}
	return models.ModeMock
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
