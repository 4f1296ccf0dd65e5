package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

// MaxTxAttempts bounds how often WithTx runs fn.
const MaxTxAttempts = 5

// WithTx runs fn in a transaction. When the transaction fails with a
// transient error (lock contention, serialization failure, or a unique key
// collision from a concurrent writer) it is rolled back and run again, up
// to MaxTxAttempts times.
func WithTx(ctx context.Context, gdb *gorm.DB, fn func(tx *gorm.DB) error) error {
	backoff := retry.WithJitter(5*time.Millisecond,
		retry.WithMaxRetries(MaxTxAttempts-1, retry.NewExponential(10*time.Millisecond)))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := gdb.WithContext(ctx).Transaction(fn)
		if err != nil && IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether running the same transaction again may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		// serialization_failure, deadlock_detected
		return pe.Code == "40001" || pe.Code == "40P01"
	}
	return false
}
