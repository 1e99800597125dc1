package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string
	RateLimitRPM       int
	ShutdownTimeout    time.Duration

	// Database
	DBDriver     string
	SQLiteDBPath string
	MySQLDSN     string

	// Ledger owner every request acts as.
	OwnerID int64

	// AMQP; an empty URL disables event publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror; an empty spreadsheet id selects the in-memory mirror.
	GoogleSpreadsheetID    string
	GoogleSheetName        string
	GoogleSummarySheetName string

	// Worker: how often the whole mirror is rewritten from storage; 0 disables.
	ResyncInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// env values that were set but could not be parsed; Validate reports them
	invalidEnv []string
}

func Load() *Config {
	var invalid []string
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPM:       getEnvInt("RATE_LIMIT_RPM", 120, &invalid),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &invalid),

		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		MySQLDSN:     getEnv("MYSQL_DSN", ""),

		OwnerID: int64(getEnvInt("OWNER_ID", 1, &invalid)),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:    getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:        getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleSummarySheetName: getEnv("GOOGLE_SUMMARY_SHEET_NAME", "Daily"),

		ResyncInterval: getEnvDuration("MIRROR_RESYNC_INTERVAL", 15*time.Minute, &invalid),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
	cfg.invalidEnv = invalid
	return cfg
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return c.MySQLDSN
	}
	return c.SQLiteDBPath
}

// Validate validates the configuration and returns an error listing every problem
func (c *Config) Validate() error {
	errors := append([]string(nil), c.invalidEnv...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite driver")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			errors = append(errors, "MYSQL_DSN is required when using mysql driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [%s %s]", c.DBDriver, DriverSQLite, DriverMySQL))
	}

	if c.OwnerID < 1 {
		errors = append(errors, fmt.Sprintf("invalid owner id %d: must be positive", c.OwnerID))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.ResyncInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid resync interval %v: must not be negative", c.ResyncInterval))
	}

	if len(c.CORSAllowedOrigins) == 0 {
		errors = append(errors, "CORS_ALLOWED_ORIGINS cannot be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the default for an unset key. A set but unparsable
// value also yields the default and is recorded in invalid.
func getEnvInt(key string, defaultValue int, invalid *[]string) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("invalid %s '%s': must be an integer", key, value))
		return defaultValue
	}
	return i
}

func getEnvDuration(key string, defaultValue time.Duration, invalid *[]string) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("invalid %s '%s': must be a duration such as 30s", key, value))
		return defaultValue
	}
	return d
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
