package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-offers/httpx"
	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/middleware"
	"github.com/diewo77/go-offers/internal/services"
	"github.com/diewo77/go-offers/view"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid json")

// statusOf maps an error to its HTTP status and error code.
func statusOf(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, errInvalidJSON):
		return http.StatusBadRequest, "invalid_json"
	case errors.Is(err, errBadForm):
		return http.StatusBadRequest, "invalid_form"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusNotImplemented, "export_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError answers with the JSON envelope when the client speaks JSON and
// with a translated plain-text message otherwise. Server errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		log.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.RequestIDFrom(r.Context()),
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	if status == http.StatusNotImplemented {
		http.Error(w, i18n.T(middleware.LangFrom(r), code), status)
		return
	}
	if httpx.WantsJSON(r) || httpx.IsJSONBody(r) {
		var details any
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			details = verr.Violations
		}
		httpx.JSONError(w, status, code, details)
		return
	}
	http.Error(w, i18n.T(middleware.LangFrom(r), code), status)
}

// render executes a page template, turning template failures into a 500.
func render(w http.ResponseWriter, r *http.Request, log *slog.Logger, status int, name string, data map[string]any) {
	if status != http.StatusOK {
		// view.Render writes the body; the status has to go first.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := view.Render(w, r, name, data); err != nil {
		if status == http.StatusOK {
			writeError(w, r, log, fmt.Errorf("render %s: %w", name, err))
			return
		}
		log.ErrorContext(r.Context(), "render failed", "template", name, "error", err)
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}

// pathID parses the {id} path value. Malformed ids cannot match a record.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("id %q: %w", r.PathValue("id"), services.ErrNotFound)
	}
	return uint(id), nil
}

var errBadForm = errors.New("invalid form")

// nowFunc is the clock used for expiry flags.
var nowFunc = time.Now

func errInvalidForm(err error) error {
	return fmt.Errorf("%w: %v", errBadForm, err)
}

func asValidation(err error) (*services.ValidationError, bool) {
	var verr *services.ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}

// writeUnavailable signals a disabled feature with a plain-text 501.
func writeUnavailable(w http.ResponseWriter, r *http.Request, code string) {
	http.Error(w, i18n.T(middleware.LangFrom(r), code), http.StatusNotImplemented)
}
