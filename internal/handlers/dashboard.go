package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/internal/services"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	log       *slog.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, log *slog.Logger) *DashboardHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DashboardHandler{dashboard: dashboard, log: log}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), nowFunc().UTC())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, stats)
		return
	}
	render(w, r, h.log, http.StatusOK, "dashboard.html", map[string]any{"Stats": stats})
}

// Health pings the store.
func Health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
