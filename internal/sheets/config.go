// Package sheets exports reconciliation reports to a Google Sheet, so the
// accounting side can review flagged transactions without shell access.
package sheets

import (
	"fmt"
	"os"
	"time"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ServiceAccountPath string
	SpreadsheetID      string
	SheetName          string
	BatchSize          int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SheetName:     "Reconciliation",
		BatchSize:     1000,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// LoadFromEnv fills credentials and target from environment variables.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("SETTLECHECK_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
		c.ServiceAccountPath = v
	}
	if v := os.Getenv("SETTLECHECK_SHEETS_SPREADSHEET_ID"); v != "" {
		c.SpreadsheetID = v
	}
	return c.Validate()
}

// Validate checks that the config can actually reach a spreadsheet.
func (c *Config) Validate() error {
	if c.ServiceAccountPath == "" {
		return fmt.Errorf("missing Google Sheets service account path")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("missing spreadsheet id")
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 1000
	}
	return nil
}
