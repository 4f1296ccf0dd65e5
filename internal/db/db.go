// Package db opens the offer store, applies its schema and wraps
// transactions with retry on transient conflicts.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-offers/internal/config"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// connectAttempts leaves time for a postgres container to come up.
const connectAttempts = 10

// Dialector returns the gorm dialector for the configured driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(cfg.SQLiteDSN()), nil
	case config.DriverPostgres:
		dsn := NormalizeDSN(cfg.DSN)
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_DSN is empty")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// GormConfig is shared by the server and tests. Constraint violations are
// translated to gorm errors (gorm.ErrDuplicatedKey) so retries can detect them.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Connect opens the database, retrying while it is unreachable, and pings it.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	var gdb *gorm.DB
	attempt := 0
	backoff := retry.WithMaxRetries(connectAttempts-1, retry.NewConstant(2*time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var openErr error
		gdb, openErr = gorm.Open(dialector, GormConfig(cfg.Debug))
		if openErr == nil {
			openErr = gdb.WithContext(ctx).Exec("SELECT 1").Error
		}
		if openErr != nil {
			log.Warn("database not reachable", "attempt", attempt, "max", connectAttempts, "error", openErr)
			return retry.RetryableError(openErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempt, err)
	}
	target := cfg.Path
	if cfg.Driver == config.DriverPostgres {
		target = MaskDSN(NormalizeDSN(cfg.DSN))
	}
	log.Info("database connected", "driver", cfg.Driver, "target", target)
	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
