// Package config provides application configuration loaded from defaults,
// an optional YAML file (CONFIG_FILE) and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	App      AppConfig      `mapstructure:"app"`
	Export   ExportConfig   `mapstructure:"export"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

// DatabaseConfig selects the store. The default is a local sqlite file.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | postgres
	Path   string `mapstructure:"path"`   // sqlite file
	DSN    string `mapstructure:"dsn"`    // postgres DSN, key=value or URL form
	Debug  bool   `mapstructure:"debug"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env             string `mapstructure:"env"`
	Dev             bool   `mapstructure:"dev"`
	Migrations      bool   `mapstructure:"migrations"`
	Seed            bool   `mapstructure:"seed"`
	CreatedBy       string `mapstructure:"created_by"`
	DefaultCurrency string `mapstructure:"default_currency"`
	LogLevel        string `mapstructure:"log_level"`
}

// ExportConfig controls document export.
type ExportConfig struct {
	PDFEnabled  bool   `mapstructure:"pdf_enabled"`
	XLSXEnabled bool   `mapstructure:"xlsx_enabled"`
	FontPath    string `mapstructure:"font_path"` // optional UTF-8 TTF for PDFs
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":          "PORT",
	"server.read_timeout":  "SERVER_READ_TIMEOUT",
	"server.write_timeout": "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":  "SERVER_IDLE_TIMEOUT",
	"database.driver":      "DB_DRIVER",
	"database.path":        "DB_PATH",
	"database.dsn":         "DATABASE_DSN",
	"database.debug":       "DB_DEBUG",
	"app.env":              "APP_ENV",
	"app.dev":              "DEV",
	"app.migrations":       "MIGRATIONS",
	"app.seed":             "DB_SEED",
	"app.created_by":       "APP_CREATED_BY",
	"app.default_currency": "APP_DEFAULT_CURRENCY",
	"app.log_level":        "LOG_LEVEL",
	"export.pdf_enabled":   "PDF_ENABLED",
	"export.xlsx_enabled":  "XLSX_ENABLED",
	"export.font_path":     "PDF_FONT_PATH",
	"metrics.enabled":      "METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4444")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "teklif.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.debug", false)
	v.SetDefault("app.env", "development")
	v.SetDefault("app.dev", false)
	v.SetDefault("app.migrations", false)
	v.SetDefault("app.seed", false)
	v.SetDefault("app.created_by", "admin")
	v.SetDefault("app.default_currency", "TRY")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("export.pdf_enabled", true)
	v.SetDefault("export.xlsx_enabled", true)
	v.SetDefault("export.font_path", "")
	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration. Precedence: env var > CONFIG_FILE > default.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

// SQLiteDSN returns the sqlite file DSN: foreign keys on, WAL, busy timeout,
// and write-locking (IMMEDIATE) transactions so offer numbering serializes.
// A path that already carries query parameters is used verbatim.
func (d DatabaseConfig) SQLiteDSN() string {
	if strings.Contains(d.Path, "?") {
		return d.Path
	}
	return "file:" + d.Path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
}

// IsProduction reports whether the app runs with production defaults.
func (a AppConfig) IsProduction() bool {
	return !a.Dev && strings.EqualFold(a.Env, "production")
}
