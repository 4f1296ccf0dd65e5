package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/go-offers/internal/config"
	"github.com/diewo77/go-offers/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationFS embed.FS

// requiredTables must exist once the schema is applied.
var requiredTables = []string{"customers", "products", "offers", "offer_items"}

// Migrate brings the schema up to date. With useSQL the versioned SQL files
// embedded under migrations/<driver> are applied through golang-migrate;
// otherwise gorm AutoMigrate is used (development convenience).
func Migrate(gdb *gorm.DB, driver string, useSQL bool, log *slog.Logger) error {
	if useSQL {
		if err := runSQLMigrations(gdb, driver); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Info("sql migrations applied", "driver", driver)
	} else {
		if err := AutoMigrate(gdb); err != nil {
			return err
		}
		log.Info("schema auto-migrated", "driver", driver)
	}
	for _, table := range requiredTables {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates the tables of all models.
func AutoMigrate(gdb *gorm.DB) error {
	for _, m := range []any{&models.Customer{}, &models.Product{}, &models.Offer{}, &models.OfferItem{}} {
		if err := gdb.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations reuses the gorm connection pool. The migrate instance is
// not closed because that would close the shared *sql.DB.
func runSQLMigrations(gdb *gorm.DB, driver string) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	var (
		dbDriver database.Driver
		dir      string
	)
	switch driver {
	case config.DriverPostgres:
		dir = "migrations/postgres"
		dbDriver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	case config.DriverSQLite, "":
		dir = "migrations/sqlite"
		dbDriver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no sql migrations for driver %q", driver)
	}
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFS, dir)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
