package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-offers/auth"
	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/internal/document"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/diewo77/go-offers/internal/services"
	"github.com/diewo77/go-offers/validation"
)

// Exporter is a document.Renderer that knows how its output is served.
type Exporter interface {
	document.Renderer
	ContentType() string
	Extension() string
}

// ExportObserver counts export attempts.
type ExportObserver interface {
	ObserveExport(format, result string)
}

type OfferHandler struct {
	offers          *services.OfferService
	pdf             Exporter // nil when PDF export is disabled
	xlsx            Exporter // nil when spreadsheet export is disabled
	observer        ExportObserver
	defaultCurrency string
	log             *slog.Logger
}

// OfferHandlerOptions carries the optional collaborators of OfferHandler.
type OfferHandlerOptions struct {
	PDF             Exporter
	XLSX            Exporter
	Observer        ExportObserver
	DefaultCurrency string
	Logger          *slog.Logger
}

func NewOfferHandler(offers *services.OfferService, opts OfferHandlerOptions) *OfferHandler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &OfferHandler{
		offers:          offers,
		pdf:             opts.PDF,
		xlsx:            opts.XLSX,
		observer:        opts.Observer,
		defaultCurrency: opts.DefaultCurrency,
		log:             log,
	}
}

// offerPayload is the JSON view of an offer with its derived totals.
type offerPayload struct {
	*models.Offer
	TotalCost float64 `json:"total_cost"`
	TotalSale float64 `json:"total_sale"`
	Expired   bool    `json:"expired"`
}

func payloadOf(o *models.Offer) offerPayload {
	return offerPayload{Offer: o, TotalCost: o.TotalCost(), TotalSale: o.TotalSale(), Expired: o.IsExpired(nowFunc())}
}

func (h *OfferHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.log, http.StatusOK, "offer_form.html", map[string]any{
		"Form":   services.CreateOfferInput{Currency: h.defaultCurrency},
		"Errors": validation.Violations{},
	})
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOfferInput
	if httpx.IsJSONBody(r) {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, h.log, errInvalidForm(err))
			return
		}
		in = services.CreateOfferInput{
			CustomerName:    r.PostForm.Get("customer_name"),
			CustomerAddress: r.PostForm.Get("customer_address"),
			CustomerPhone:   r.PostForm.Get("customer_phone"),
			CustomerEmail:   r.PostForm.Get("customer_email"),
			ValidUntil:      r.PostForm.Get("valid_until"),
			Currency:        r.PostForm.Get("currency"),
		}
	}
	in.CreatedBy = auth.PrincipalOrDefault(r.Context())

	offer, err := h.offers.Create(r.Context(), in)
	if err != nil {
		if verr, ok := asValidation(err); ok && !httpx.IsJSONBody(r) && !httpx.WantsJSON(r) {
			render(w, r, h.log, http.StatusBadRequest, "offer_form.html", map[string]any{
				"Form":   in,
				"Errors": verr.Violations,
			})
			return
		}
		writeError(w, r, h.log, err)
		return
	}
	if httpx.IsJSONBody(r) || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": offer.ID, "offer_number": offer.OfferNumber})
		return
	}
	http.Redirect(w, r, "/offer/"+strconv.FormatUint(uint64(offer.ID), 10)+"/items", http.StatusSeeOther)
}

func (h *OfferHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, payloadOf(offer))
		return
	}
	render(w, r, h.log, http.StatusOK, "offer_items.html", map[string]any{"Offer": offer})
}

// SaveItems replaces the whole item list with the JSON array in the body.
func (h *OfferHandler) SaveItems(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var items []services.ItemInput
	if err := decodeJSON(w, r, &items); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	saved, err := h.offers.ReplaceItems(r.Context(), id, items)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	offer := models.Offer{Items: saved}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"offer_id":   id,
		"count":      len(saved),
		"items":      saved,
		"total_cost": offer.TotalCost(),
		"total_sale": offer.TotalSale(),
	})
}

func (h *OfferHandler) PDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.pdf, "pdf", "pdf_unavailable")
}

func (h *OfferHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.xlsx, "xlsx", "export_unavailable")
}

func (h *OfferHandler) export(w http.ResponseWriter, r *http.Request, exp Exporter, format, unavailableCode string) {
	if exp == nil {
		h.observe(format, "unavailable")
		writeUnavailable(w, r, unavailableCode)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	offer, err := h.offers.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	data, err := exp.Render(offer)
	if err != nil {
		h.observe(format, "error")
		writeError(w, r, h.log, err)
		return
	}
	h.observe(format, "ok")
	httpx.Attachment(w, exp.ContentType(), offer.OfferNumber+"."+exp.Extension(), data)
}

func (h *OfferHandler) observe(format, result string) {
	if h.observer != nil {
		h.observer.ObserveExport(format, result)
	}
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.offers.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
		return
	}
	http.Redirect(w, r, "/offers", http.StatusSeeOther)
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if httpx.WantsJSON(r) {
		out := make([]offerPayload, 0, len(offers))
		for i := range offers {
			out = append(out, payloadOf(&offers[i]))
		}
		httpx.JSON(w, http.StatusOK, out)
		return
	}
	render(w, r, h.log, http.StatusOK, "offers.html", map[string]any{"Offers": offers})
}
