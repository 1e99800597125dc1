package backend

import (
	"errors"
	"fmt"
	"strings"

	"ledger/internal/config"
	"ledger/internal/storage"
)

// FromAppConfig converts the application config to backend config. The
// mirror is Google Sheets when a spreadsheet id is configured.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	mirror := MirrorMemory
	if strings.TrimSpace(appConfig.GoogleSpreadsheetID) != "" {
		mirror = MirrorGoogle
	}

	cfg := Config{
		DBDriver: appConfig.DBDriver,
		DSN:      appConfig.DSN(),

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Mirror:                 mirror,
		GoogleSpreadsheetID:    appConfig.GoogleSpreadsheetID,
		GoogleSheetName:        appConfig.GoogleSheetName,
		GoogleSummarySheetName: appConfig.GoogleSummarySheetName,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.DBDriver {
	case storage.DriverSQLite:
		if c.DSN == "" {
			return errors.New("SQLite database path is required for sqlite driver")
		}
	case storage.DriverMySQL:
		if c.DSN == "" {
			return errors.New("MySQL DSN is required for mysql driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %q", c.DBDriver)
	}

	if c.RequireAMQP && c.AMQPURL == "" {
		return errors.New("AMQP URL is required")
	}

	if c.Mirror != "" && !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror type: %s (must be one of %v)", c.Mirror, GetMirrorTypes())
	}
	if c.Mirror == MirrorGoogle && c.GoogleSpreadsheetID == "" {
		return errors.New("Google Spreadsheet ID is required for google mirror")
	}
	return nil
}

// GetMirrorTypes returns all valid mirror types
func GetMirrorTypes() []MirrorType {
	return []MirrorType{MirrorGoogle, MirrorMemory}
}
