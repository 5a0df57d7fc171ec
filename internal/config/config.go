package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config collects the environment-driven settings for the service.
// All values come from environment variables (a .env file is loaded by the
// root command before any of this runs).
type Config struct {
	Port   string
	AppEnv string

	GeminiAPIKey string

	// Google Vision credentials: a service account key file path, or empty to
	// use application default credentials.
	VisionCredentialsFile string

	Sheets SheetsConfig
	Upload UploadConfig
}

// SheetsConfig holds Google Sheets export settings. Cards and books write to
// separate spreadsheets so the two column schemas never collide.
type SheetsConfig struct {
	CredentialsFile   string
	CredentialsJSON   string
	CardSpreadsheetID string
	CardSheetName     string
	BookSpreadsheetID string
	BookSheetName     string
}

type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

// Load reads configuration from the environment, applying the same defaults
// the service has always shipped with.
func Load() *Config {
	cfg := &Config{
		Port:                  envOr("PORT", "3001"),
		AppEnv:                envOr("APP_ENV", "development"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		VisionCredentialsFile: os.Getenv("GOOGLE_VISION_CREDENTIALS"),
		Sheets: SheetsConfig{
			CredentialsFile:   os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_KEY"),
			CredentialsJSON:   os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON"),
			CardSpreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			CardSheetName:     envOr("GOOGLE_SHEETS_SHEET_NAME", "Cards"),
			BookSpreadsheetID: os.Getenv("GOOGLE_SHEETS_BOOK_SPREADSHEET_ID"),
			BookSheetName:     envOr("GOOGLE_SHEETS_BOOK_SHEET_NAME", "book title"),
		},
		Upload: UploadConfig{
			Dir:         envOr("UPLOAD_DIR", "uploads"),
			MaxFileSize: envInt64Or("MAX_FILE_SIZE", 10*1024*1024),
		},
	}

	if cfg.AppEnv == "development" {
		slog.Debug("Google Sheets configuration",
			"card_spreadsheet_id", cfg.Sheets.CardSpreadsheetID,
			"card_sheet_name", cfg.Sheets.CardSheetName,
			"book_spreadsheet_id", cfg.Sheets.BookSpreadsheetID,
			"book_sheet_name", cfg.Sheets.BookSheetName)
	}

	return cfg
}

// Development reports whether raw upstream error details should be included in
// API responses.
func (c *Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("Invalid numeric environment variable, using default", "key", key, "value", v)
		return fallback
	}
	return n
}
