package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-offers/internal/config"
	"github.com/diewo77/go-offers/internal/db"
	"github.com/diewo77/go-offers/internal/logger"
	"github.com/diewo77/go-offers/view"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the demo catalogue and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.App)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	view.SetDevMode(cfg.App.Dev)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.Database.Driver, true, log); err != nil {
			return err
		}
		log.Info("migrations completed")
		return nil
	}

	if err := db.Migrate(dbConn, cfg.Database.Driver, cfg.App.Migrations, log); err != nil {
		return err
	}

	if *seedOnlyFlag || cfg.App.Seed {
		n, err := db.Seed(dbConn)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("demo catalogue seeded", "products", n)
		if *seedOnlyFlag {
			return nil
		}
	}

	app, err := NewApp(dbConn, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev,
			"driver", cfg.Database.Driver, "pdf", cfg.Export.PDFEnabled, "xlsx", cfg.Export.XLSXEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
