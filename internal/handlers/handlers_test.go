package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-offers/auth"
	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/internal/db"
	"github.com/diewo77/go-offers/internal/document"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/diewo77/go-offers/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=on"), db.GormConfig(false))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func quietLog() *slog.Logger { return slog.New(slog.DiscardHandler) }

type countingObserver struct{ calls []string }

func (c *countingObserver) ObserveExport(format, result string) {
	c.calls = append(c.calls, format+":"+result)
}

func newOfferHandler(t *testing.T, d *gorm.DB, opts OfferHandlerOptions) *OfferHandler {
	t.Helper()
	svc := services.NewOfferService(d, services.OfferDefaults{Currency: "TRY", CreatedBy: auth.DefaultPrincipal}, quietLog()).
		WithClock(func() time.Time { return testNow })
	opts.Logger = quietLog()
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "TRY"
	}
	return NewOfferHandler(svc, opts)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func withID(req *http.Request, id any) *http.Request {
	req.SetPathValue("id", fmt.Sprint(id))
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpx.ErrorResponse {
	t.Helper()
	var e httpx.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e
}

const twoItemsJSON = `[
 {"product":"Panel","size":"100x200","quantity":2,"unit_cost":10,"assembly_cost":5,"profit_rate":20,"total_cost":30,"sale_price":36},
 {"product":"Panel","size":"100x200","quantity":2,"unit_cost":10,"assembly_cost":5,"profit_rate":20,"total_cost":30,"sale_price":36}
]`

func createOffer(t *testing.T, h *OfferHandler) (uint, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/offer/new", `{"customer_name":"Acme Co","valid_until":"2025-12-31","currency":"USD"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var created struct {
		ID          uint   `json:"id"`
		OfferNumber string `json:"offer_number"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return created.ID, created.OfferNumber
}

func TestOfferScenarioJSON(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{})
	id, number := createOffer(t, h)
	if number != "TEK-2025-0001" {
		t.Fatalf("offer number = %q", number)
	}

	w := httptest.NewRecorder()
	h.SaveItems(w, withID(jsonRequest(http.MethodPost, "/offer/1/save_items", twoItemsJSON), id))
	if w.Code != http.StatusOK {
		t.Fatalf("save_items: expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var saved struct {
		Status    string  `json:"status"`
		Count     int     `json:"count"`
		TotalCost float64 `json:"total_cost"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatal(err)
	}
	if saved.Status != "success" || saved.Count != 2 || saved.TotalCost != 60 {
		t.Fatalf("unexpected save response %+v", saved)
	}

	req := withID(httptest.NewRequest(http.MethodGet, "/offer/1/items", nil), id)
	req.Header.Set("Accept", "application/json")
	w = httptest.NewRecorder()
	h.Items(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("items: expected 200 got %d", w.Code)
	}
	var got struct {
		OfferNumber string             `json:"offer_number"`
		Items       []models.OfferItem `json:"items"`
		TotalCost   float64            `json:"total_cost"`
		TotalSale   float64            `json:"total_sale"`
		Customer    models.Customer    `json:"customer"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 2 || got.TotalCost != 60 || got.TotalSale != 72 {
		t.Fatalf("unexpected items payload %+v", got)
	}
	for _, it := range got.Items {
		if it.TotalCost != 30 || it.SalePrice != 36 {
			t.Errorf("item totals %v/%v", it.TotalCost, it.SalePrice)
		}
	}
	if got.Customer.Name != "Acme Co" || got.OfferNumber != number {
		t.Fatalf("offer fields missing: %+v", got)
	}
}

func TestOfferCreateFormRedirects(t *testing.T) {
	d := setupTestDB(t)
	h := newOfferHandler(t, d, OfferHandlerOptions{})
	form := url.Values{"customer_name": {"Acme Co"}, "valid_until": {"2025-12-31"}, "customer_phone": {"555"}}
	req := httptest.NewRequest(http.MethodPost, "/offer/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithPrincipal(req.Context(), "satis"))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d (%s)", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/offer/1/items" {
		t.Fatalf("Location = %q", loc)
	}
	var offer models.Offer
	if err := d.Preload("Customer").First(&offer).Error; err != nil {
		t.Fatal(err)
	}
	if offer.CreatedBy != "satis" || offer.Currency != "TRY" || offer.Customer.Phone != "555" {
		t.Fatalf("unexpected offer %+v", offer)
	}
}

func TestOfferCreateValidation(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{})

	w := httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/offer/new", `{"customer_name":"","valid_until":"tomorrow"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	e := decodeError(t, w)
	details, _ := e.Details.(map[string]any)
	if e.Error != "validation_failed" || details["customer_name"] != "required" || details["valid_until"] != "invalid_date" {
		t.Fatalf("unexpected error body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.Create(w, jsonRequest(http.MethodPost, "/offer/new", `{"customer_name":`))
	if w.Code != http.StatusBadRequest || decodeError(t, w).Error != "invalid_json" {
		t.Fatalf("malformed body: %d %s", w.Code, w.Body.String())
	}

	form := url.Values{"customer_name": {""}, "valid_until": {""}}
	req := httptest.NewRequest(http.MethodPost, "/offer/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("form: expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="customer_name"`) {
		t.Fatalf("form must be rendered again, got %s", w.Body.String())
	}
}

func TestSaveItemsErrors(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{})
	id, _ := createOffer(t, h)

	w := httptest.NewRecorder()
	h.SaveItems(w, withID(jsonRequest(http.MethodPost, "/", `{"not":"a list"}`), id))
	if w.Code != http.StatusBadRequest || decodeError(t, w).Error != "invalid_json" {
		t.Fatalf("object body: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.SaveItems(w, withID(jsonRequest(http.MethodPost, "/", `[{"product":"X","quantity":0,"unit_cost":-1}]`), id))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid item: expected 400 got %d", w.Code)
	}
	e := decodeError(t, w)
	details, _ := e.Details.(map[string]any)
	if e.Error != "validation_failed" || details["items[0].quantity"] != "must_be_positive" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.SaveItems(w, withID(jsonRequest(http.MethodPost, "/", twoItemsJSON), 999))
	if w.Code != http.StatusNotFound || decodeError(t, w).Error != "not_found" {
		t.Fatalf("unknown offer: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.SaveItems(w, withID(jsonRequest(http.MethodPost, "/", twoItemsJSON), "abc"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("bad id: expected 404 got %d", w.Code)
	}
}

func TestItemsHTML(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{})
	id, number := createOffer(t, h)
	h.SaveItems(httptest.NewRecorder(), withID(jsonRequest(http.MethodPost, "/", twoItemsJSON), id))

	w := httptest.NewRecorder()
	h.Items(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), id))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, number) || !strings.Contains(body, "60.00") || !strings.Contains(body, "72.00") {
		t.Fatalf("page misses offer data: %s", body)
	}

	w = httptest.NewRecorder()
	h.Items(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), 42))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing offer: expected 404 got %d", w.Code)
	}
}

func TestPDFUnavailable(t *testing.T) {
	obs := &countingObserver{}
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{Observer: obs})
	id, _ := createOffer(t, h)

	for _, export := range []http.HandlerFunc{h.PDF, h.XLSX} {
		w := httptest.NewRecorder()
		export(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), id))
		if w.Code != http.StatusNotImplemented {
			t.Fatalf("expected 501 got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Fatalf("Content-Type = %q, want text/plain", ct)
		}
	}
	if len(obs.calls) != 2 || obs.calls[0] != "pdf:unavailable" || obs.calls[1] != "xlsx:unavailable" {
		t.Fatalf("observer calls = %v", obs.calls)
	}
}

func TestExportDownloads(t *testing.T) {
	pdf, err := document.NewPDFRenderer("tr", "")
	if err != nil {
		t.Fatal(err)
	}
	obs := &countingObserver{}
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{PDF: pdf, XLSX: document.NewXLSXRenderer("tr"), Observer: obs})
	id, number := createOffer(t, h)
	h.SaveItems(httptest.NewRecorder(), withID(jsonRequest(http.MethodPost, "/", twoItemsJSON), id))

	w := httptest.NewRecorder()
	h.PDF(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), id))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf content type = %q", w.Header().Get("Content-Type"))
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="`+number+`.pdf"` {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a pdf")
	}

	w = httptest.NewRecorder()
	h.XLSX(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), id))
	if w.Code != http.StatusOK || !strings.HasSuffix(w.Header().Get("Content-Disposition"), `.xlsx"`) {
		t.Fatalf("xlsx: %d %q", w.Code, w.Header().Get("Content-Disposition"))
	}

	w = httptest.NewRecorder()
	h.PDF(w, withID(httptest.NewRequest(http.MethodGet, "/", nil), 77))
	if w.Code != http.StatusNotFound {
		t.Fatalf("pdf of missing offer: expected 404 got %d", w.Code)
	}
	if strings.Join(obs.calls, ",") != "pdf:ok,xlsx:ok" {
		t.Fatalf("observer calls = %v", obs.calls)
	}
}

func TestOfferListAndDelete(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{})
	id, number := createOffer(t, h)

	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.List(w, req)
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0]["offer_number"] != number {
		t.Fatalf("list = %v", list)
	}

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/offers", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), number) {
		t.Fatalf("html list: %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Delete(w, withID(httptest.NewRequest(http.MethodPost, "/", nil), id))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/offers" {
		t.Fatalf("delete: %d %q", w.Code, w.Header().Get("Location"))
	}
	w = httptest.NewRecorder()
	h.Delete(w, withID(httptest.NewRequest(http.MethodPost, "/", nil), id))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", w.Code)
	}
}

func TestNewOfferForm(t *testing.T) {
	h := newOfferHandler(t, setupTestDB(t), OfferHandlerOptions{DefaultCurrency: "EUR"})
	w := httptest.NewRecorder()
	h.NewForm(w, httptest.NewRequest(http.MethodGet, "/offer/new", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `value="EUR"`) {
		t.Fatalf("form: %d %s", w.Code, w.Body.String())
	}
}
