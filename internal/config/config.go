package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	Weather   WeatherConfig
	MongoDB   MongoDBConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LoggingConfig holds logger options.
type LoggingConfig struct {
	Level string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ProductionRange string
	CostsRange      string
}

// Enabled reports whether the spreadsheet source is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// WeatherConfig holds settings for the OpenWeather client.
type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	DefaultCity string
	Timeout     time.Duration
}

// Enabled reports whether climate capture can call out.
func (c WeatherConfig) Enabled() bool {
	return c.APIKey != ""
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AnalyticsConfig holds the policy constants handed to the analytics core.
type AnalyticsConfig struct {
	DefaultPriceGrade1   float64
	DefaultPriceGrade2   float64
	FixedCosts           float64
	MinSimpleRecords     int
	MinRegressionRecords int
	ForecastDayScale     float64
	RegressionEnabled    bool
	ForestTrees          int
	ForestSeed           uint64
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	analyticsCfg, err := loadAnalytics()
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getenvWithDefault("OPENWEATHER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("OPENWEATHER_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			ProductionRange: getenvWithDefault("SHEETS_PRODUCTION_RANGE", "Colheitas!A:I"),
			CostsRange:      getenvWithDefault("SHEETS_COSTS_RANGE", "Insumos!A:K"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
		Weather: WeatherConfig{
			APIKey:      os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL:     getenvWithDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			DefaultCity: getenvWithDefault("WEATHER_DEFAULT_CITY", "Londrina"),
			Timeout:     timeout,
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "cropledger"),
		},
		Analytics: analyticsCfg,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadAnalytics() (AnalyticsConfig, error) {
	var (
		cfg AnalyticsConfig
		err error
	)
	if cfg.DefaultPriceGrade1, err = getenvFloat("DEFAULT_PRICE_GRADE1", 10.0); err != nil {
		return cfg, err
	}
	if cfg.DefaultPriceGrade2, err = getenvFloat("DEFAULT_PRICE_GRADE2", 5.0); err != nil {
		return cfg, err
	}
	if cfg.FixedCosts, err = getenvFloat("FIXED_COSTS", 1000.0); err != nil {
		return cfg, err
	}
	if cfg.MinSimpleRecords, err = getenvInt("FORECAST_MIN_SIMPLE", 5); err != nil {
		return cfg, err
	}
	if cfg.MinRegressionRecords, err = getenvInt("FORECAST_MIN_REGRESSION", 10); err != nil {
		return cfg, err
	}
	if cfg.ForecastDayScale, err = getenvFloat("FORECAST_DAY_SCALE", 30); err != nil {
		return cfg, err
	}
	if cfg.RegressionEnabled, err = getenvBool("FORECAST_REGRESSION_ENABLED", true); err != nil {
		return cfg, err
	}
	if cfg.ForestTrees, err = getenvInt("FOREST_TREES", 100); err != nil {
		return cfg, err
	}
	seed, err := getenvInt("FOREST_SEED", 42)
	if err != nil {
		return cfg, err
	}
	cfg.ForestSeed = uint64(seed)
	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}

	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	a := c.Analytics
	switch {
	case a.DefaultPriceGrade1 < 0 || a.DefaultPriceGrade2 < 0:
		return errors.New("DEFAULT_PRICE_GRADE1 and DEFAULT_PRICE_GRADE2 must not be negative")
	case a.FixedCosts < 0:
		return errors.New("FIXED_COSTS must not be negative")
	case a.MinSimpleRecords < 1:
		return errors.New("FORECAST_MIN_SIMPLE must be at least 1")
	case a.MinRegressionRecords < a.MinSimpleRecords:
		return errors.New("FORECAST_MIN_REGRESSION must not be below FORECAST_MIN_SIMPLE")
	case a.ForecastDayScale <= 0:
		return errors.New("FORECAST_DAY_SCALE must be positive")
	case a.ForestTrees < 1:
		return errors.New("FOREST_TREES must be at least 1")
	}

	return nil
}

// AnalyticsOptions converts the analytics section into the options value the
// analytics core expects.
func (c *Config) AnalyticsOptions() analytics.Options {
	opts := analytics.DefaultOptions()
	a := c.Analytics
	opts.DefaultPrices = models.GradePrices{Grade1: a.DefaultPriceGrade1, Grade2: a.DefaultPriceGrade2}
	opts.MinSimpleRecords = a.MinSimpleRecords
	opts.MinRegressionRecords = a.MinRegressionRecords
	opts.ForecastDayScale = a.ForecastDayScale
	opts.RegressionEnabled = a.RegressionEnabled
	opts.Forest.Trees = a.ForestTrees
	opts.Forest.Seed = a.ForestSeed
	return opts
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
