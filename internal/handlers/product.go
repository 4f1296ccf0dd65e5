package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/internal/services"
	"github.com/diewo77/go-offers/validation"
)

type ProductHandler struct {
	products *services.ProductService
	log      *slog.Logger
}

func NewProductHandler(products *services.ProductService, log *slog.Logger) *ProductHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProductHandler{products: products, log: log}
}

var productFormFields = []string{"name", "size", "unit_cost", "assembly_cost", "default_profit_rate"}

func (h *ProductHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.log, http.StatusOK, "product_form.html", map[string]any{
		"Form":   map[string]string{"unit_cost": "0", "assembly_cost": "0", "default_profit_rate": "20"},
		"Errors": validation.Violations{},
	})
}

// parseAmount reads an optional decimal form value; blank means "use the default".
// A comma decimal separator is accepted.
func parseAmount(field, raw string, v validation.Violations) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		v[field] = "invalid_number"
		return nil
	}
	return &f
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	jsonBody := httpx.IsJSONBody(r)
	form := map[string]string{}
	if jsonBody {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, h.log, errInvalidForm(err))
			return
		}
		for _, f := range productFormFields {
			form[f] = r.PostForm.Get(f)
		}
		v := validation.Violations{}
		in = services.ProductInput{
			Name:              form["name"],
			Size:              form["size"],
			UnitCost:          parseAmount("unit_cost", form["unit_cost"], v),
			AssemblyCost:      parseAmount("assembly_cost", form["assembly_cost"], v),
			DefaultProfitRate: parseAmount("default_profit_rate", form["default_profit_rate"], v),
		}
		if !v.Empty() {
			h.renderFormErrors(w, r, form, v)
			return
		}
	}

	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		if verr, ok := asValidation(err); ok && !jsonBody && !httpx.WantsJSON(r) {
			h.renderFormErrors(w, r, form, verr.Violations)
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	if jsonBody || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, product)
		return
	}
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *ProductHandler) renderFormErrors(w http.ResponseWriter, r *http.Request, form map[string]string, v validation.Violations) {
	render(w, r, h.log, http.StatusBadRequest, "product_form.html", map[string]any{"Form": form, "Errors": v})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, products)
		return
	}
	render(w, r, h.log, http.StatusOK, "products.html", map[string]any{"Products": products})
}

// Search always answers JSON: GET /api/products?q=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		r.Header.Set("Accept", "application/json")
		writeError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}
