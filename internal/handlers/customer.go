package handlers

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/internal/services"
)

type CustomerHandler struct {
	customers *services.CustomerService
	log       *slog.Logger
}

func NewCustomerHandler(customers *services.CustomerService, log *slog.Logger) *CustomerHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CustomerHandler{customers: customers, log: log}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, customers)
		return
	}
	render(w, r, h.log, http.StatusOK, "customers.html", map[string]any{"Customers": customers})
}

// Search always answers JSON: GET /api/customers?q=
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		r.Header.Set("Accept", "application/json")
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}
