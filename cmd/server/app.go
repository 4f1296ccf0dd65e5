package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/diewo77/go-offers/auth"
	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/config"
	"github.com/diewo77/go-offers/internal/document"
	"github.com/diewo77/go-offers/internal/handlers"
	"github.com/diewo77/go-offers/internal/middleware"
	"github.com/diewo77/go-offers/internal/services"
	"github.com/diewo77/go-offers/view"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	db      *gorm.DB
	cfg     *config.Config
	log     *slog.Logger
	metrics *middleware.Metrics
}

// NewApp wires services, handlers and middleware on top of an open store.
func NewApp(db *gorm.DB, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		cfg: cfg,
		log: log,
	}
	if cfg.Metrics.Enabled {
		app.metrics = middleware.NewMetrics()
	}

	view.SetLangResolver(middleware.LangFrom)
	view.SetThemeResolver(middleware.ThemeFrom)

	if err := app.setupRoutes(); err != nil {
		return nil, err
	}

	var routed http.Handler = app.mux
	if app.metrics != nil {
		routed = app.metrics.Middleware(routed)
	}
	app.handler = middleware.Chain(routed,
		middleware.Logging(log),
		middleware.Recover(log),
		auth.Middleware(cfg.App.CreatedBy),
		middleware.Prefs,
	)
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// exporters builds the document renderers enabled by configuration.
// A disabled format stays nil and its route answers 501.
func (a *App) exporters() (pdf, xlsx handlers.Exporter, err error) {
	if a.cfg.Export.PDFEnabled {
		r, err := document.NewPDFRenderer(i18n.DefaultLang, a.cfg.Export.FontPath)
		if err != nil {
			return nil, nil, fmt.Errorf("pdf renderer: %w", err)
		}
		pdf = r
	}
	if a.cfg.Export.XLSXEnabled {
		xlsx = document.NewXLSXRenderer(i18n.DefaultLang)
	}
	return pdf, xlsx, nil
}

func (a *App) setupRoutes() error {
	pdf, xlsx, err := a.exporters()
	if err != nil {
		return err
	}
	opts := handlers.OfferHandlerOptions{
		PDF:             pdf,
		XLSX:            xlsx,
		DefaultCurrency: a.cfg.App.DefaultCurrency,
		Logger:          a.log,
	}
	if a.metrics != nil {
		opts.Observer = a.metrics
	}

	offers := services.NewOfferService(a.db, services.OfferDefaults{
		Currency:  a.cfg.App.DefaultCurrency,
		CreatedBy: a.cfg.App.CreatedBy,
	}, a.log)
	oh := handlers.NewOfferHandler(offers, opts)
	ch := handlers.NewCustomerHandler(services.NewCustomerService(a.db), a.log)
	ph := handlers.NewProductHandler(services.NewProductService(a.db), a.log)
	dh := handlers.NewDashboardHandler(services.NewDashboardService(a.db), a.log)

	a.mux.HandleFunc("GET /{$}", dh.Show)

	// Offers
	a.mux.HandleFunc("GET /offer/new", oh.NewForm)
	a.mux.HandleFunc("POST /offer/new", oh.Create)
	a.mux.HandleFunc("GET /offer/{id}/items", oh.Items)
	a.mux.HandleFunc("POST /offer/{id}/save_items", oh.SaveItems)
	a.mux.HandleFunc("GET /offer/{id}/pdf", oh.PDF)
	a.mux.HandleFunc("GET /offer/{id}/xlsx", oh.XLSX)
	a.mux.HandleFunc("POST /offer/{id}/delete", oh.Delete)
	a.mux.HandleFunc("GET /offers", oh.List)

	// Customers
	a.mux.HandleFunc("GET /customers", ch.List)
	a.mux.HandleFunc("GET /api/customers", ch.Search)

	// Products
	a.mux.HandleFunc("GET /product/new", ph.NewForm)
	a.mux.HandleFunc("POST /product/new", ph.Create)
	a.mux.HandleFunc("GET /products", ph.List)
	a.mux.HandleFunc("GET /api/products", ph.Search)

	// Operations
	a.mux.HandleFunc("GET /healthz", handlers.Health(a.db))
	if a.metrics != nil {
		a.mux.Handle("GET /metrics", a.metrics.Handler())
	}

	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir()))))
	return nil
}

// staticDir finds the asset directory relative to the working directory.
func staticDir() string {
	for _, c := range []string{"static", "../static", "../../static"} {
		if fi, err := os.Stat(c); err == nil && fi.IsDir() {
			return filepath.Clean(c)
		}
	}
	return "static"
}
