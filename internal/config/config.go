package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Data sources selectable with DATA_SOURCE.
const (
	SourceFile   = "file"
	SourceSheets = "sheets"
	SourceSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port        string
	OpenBrowser bool

	// Source selection
	DataSource string

	// File source
	DataFile         string
	CSVDelimiter     string
	CSVEncoding      string
	DateFormat       string
	DecimalSeparator string
	XLSXSheet        string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetRange      string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	SheetsCacheTTL        time.Duration

	// Database
	SQLiteDBPath string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Aggregation
	RulesFile               string
	ContributionMonthlyRate string
	ContributionAmortize    bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8501"),
		OpenBrowser: getEnvBool("OPEN_BROWSER", true),

		DataSource: strings.ToLower(getEnv("DATA_SOURCE", SourceFile)),

		DataFile:         getEnv("DATA_FILE", "Fluxo Financeiro.csv"),
		CSVDelimiter:     getEnv("CSV_DELIMITER", ";"),
		CSVEncoding:      getEnv("CSV_ENCODING", "utf-8"),
		DateFormat:       getEnv("DATE_FORMAT", "02/01/2006"),
		DecimalSeparator: strings.ToLower(getEnv("DECIMAL_SEPARATOR", "comma")),
		XLSXSheet:        getEnv("XLSX_SHEET", ""),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:      getEnv("GOOGLE_SHEET_RANGE", "A:I"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		SheetsCacheTTL:        getEnvDuration("SHEETS_CACHE_TTL", 30*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fluxo.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fluxo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "imports"),

		RulesFile:               getEnv("RULES_FILE", ""),
		ContributionMonthlyRate: getEnv("CONTRIBUTION_MONTHLY_RATE", "0.009477"),
		ContributionAmortize:    getEnvBool("CONTRIBUTION_AMORTIZE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validSources := []string{SourceFile, SourceSheets, SourceSQLite}
	isValidSource := false
	for _, s := range validSources {
		if c.DataSource == s {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	if c.DataSource == SourceFile && c.DataFile == "" {
		errors = append(errors, "data file path cannot be empty when using file source")
	}
	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		errors = append(errors, fmt.Sprintf("invalid CSV delimiter '%s': must be a single character", c.CSVDelimiter))
	}
	switch strings.ToLower(c.CSVEncoding) {
	case "utf-8", "utf8", "windows-1252", "cp1252", "iso-8859-1", "latin1":
	default:
		errors = append(errors, fmt.Sprintf("invalid CSV encoding '%s': must be utf-8, windows-1252 or iso-8859-1", c.CSVEncoding))
	}
	if c.DateFormat == "" {
		errors = append(errors, "date format cannot be empty")
	}
	switch c.DecimalSeparator {
	case "comma", "point", "auto":
	default:
		errors = append(errors, fmt.Sprintf("invalid decimal separator '%s': must be comma, point or auto", c.DecimalSeparator))
	}

	// Validate Google Sheets configuration if source is sheets
	if c.DataSource == SourceSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google Sheet range is required when using sheets source")
		}
		if c.GoogleCredentialsFile != "" {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}
	if c.SheetsCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid sheets cache TTL %v: must not be negative", c.SheetsCacheTTL))
	}

	// Validate SQLite configuration if source is sqlite
	if c.DataSource == SourceSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite source")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
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

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("rules file does not exist: %s", c.RulesFile))
		}
	}
	if rate, err := decimal.NewFromString(c.ContributionMonthlyRate); err != nil {
		errors = append(errors, fmt.Sprintf("invalid contribution monthly rate '%s': must be a decimal number", c.ContributionMonthlyRate))
	} else if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errors = append(errors, fmt.Sprintf("invalid contribution monthly rate %s: must be in [0, 1)", rate))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVDelimiter)
	return r
}

// MonthlyRate returns the parsed contribution rate; call after Validate.
func (c *Config) MonthlyRate() decimal.Decimal {
	d, err := decimal.NewFromString(c.ContributionMonthlyRate)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
