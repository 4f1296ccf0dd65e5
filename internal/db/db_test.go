package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/diewo77/go-offers/internal/config"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func quietLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func memDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=on"), GormConfig(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := memDB(t)
	first, err := Seed(d)
	if err != nil {
		t.Fatal(err)
	}
	if first != len(demoProducts) {
		t.Fatalf("first seed created %d, want %d", first, len(demoProducts))
	}
	second, err := Seed(d)
	if err != nil {
		t.Fatal(err)
	}
	if second != 0 {
		t.Fatalf("second seed created %d, want 0", second)
	}
	var count int64
	d.Model(&models.Product{}).Count(&count)
	if count != int64(len(demoProducts)) {
		t.Fatalf("products = %d, want %d", count, len(demoProducts))
	}
}

func TestConnectAndSQLMigrations(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "teklif.db")}
	d, err := Connect(context.Background(), cfg, quietLogger())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = Close(d) })

	if err := Migrate(d, cfg.Driver, true, quietLogger()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := Migrate(d, cfg.Driver, true, quietLogger()); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	cust := models.Customer{Name: "Acme Co"}
	if err := d.Create(&cust).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	offer := models.Offer{OfferNumber: "TEK-2025-0001", CustomerID: cust.ID, Currency: "USD",
		Items: []models.OfferItem{{Product: "Panel", Quantity: 1, UnitCost: 1, TotalCost: 1, SalePrice: 1}}}
	if err := d.Create(&offer).Error; err != nil {
		t.Fatalf("create offer: %v", err)
	}
	dup := models.Offer{OfferNumber: "TEK-2025-0001", CustomerID: cust.ID}
	if err := d.Create(&dup).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey for duplicate number, got %v", err)
	}

	// items go with their offer
	if err := d.Delete(&models.Offer{}, offer.ID).Error; err != nil {
		t.Fatalf("delete offer: %v", err)
	}
	var items int64
	d.Model(&models.OfferItem{}).Where("offer_id = ?", offer.ID).Count(&items)
	if items != 0 {
		t.Fatalf("items left after offer delete: %d", items)
	}
}

func TestMigrateAutoMigrateFallback(t *testing.T) {
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), GormConfig(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(d, config.DriverSQLite, false, quietLogger()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range requiredTables {
		if !d.Migrator().HasTable(table) {
			t.Errorf("missing table %s", table)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, true},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, true},
		{"sqlite constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, false},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"pg syntax", &pgconn.PgError{Code: "42601"}, false},
		{"not found", gorm.ErrRecordNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWithTxRetriesTransientErrors(t *testing.T) {
	d := memDB(t)
	attempts := 0
	err := WithTx(context.Background(), d, func(tx *gorm.DB) error {
		attempts++
		if err := tx.Create(&models.Customer{Name: fmt.Sprintf("c%d", attempts)}).Error; err != nil {
			return err
		}
		if attempts < 3 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
	var count int64
	d.Model(&models.Customer{}).Count(&count)
	if count != 1 {
		t.Fatalf("failed attempts must roll back, customers = %d", count)
	}
}

func TestWithTxGivesUp(t *testing.T) {
	d := memDB(t)
	attempts := 0
	err := WithTx(context.Background(), d, func(tx *gorm.DB) error {
		attempts++
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != MaxTxAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, MaxTxAttempts)
	}

	attempts = 0
	boom := errors.New("boom")
	err = WithTx(context.Background(), d, func(tx *gorm.DB) error {
		attempts++
		return boom
	})
	if !errors.Is(err, boom) || attempts != 1 {
		t.Fatalf("permanent error: err=%v attempts=%d", err, attempts)
	}
}
