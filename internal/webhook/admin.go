package webhook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bargaj/collectcall/internal/dialer"
	"github.com/bargaj/collectcall/internal/store"
	"github.com/go-chi/chi/v5"
)

const maxImportBytes = 5 << 20 // 5 MiB of CSV

// BatchDialer starts one outbound dial batch.
type BatchDialer interface {
	DialAll(ctx context.Context) (dialer.Result, error)
}

// AdminHandler serves the operational endpoints: borrower CSV import and
// batch call initiation.
type AdminHandler struct {
	dir    store.Directory
	dialer BatchDialer
}

// NewAdminHandler creates the admin handler. dialer may be nil when no
// telephony credentials are configured.
func NewAdminHandler(dir store.Directory, d BatchDialer) *AdminHandler {
	return &AdminHandler{dir: dir, dialer: d}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/import", h.ImportCSV)
		r.Post("/dial", h.Dial)
	})
}

// ImportCSV upserts borrower records from a CSV request body.
func (h *AdminHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	n, err := h.dir.ImportCSV(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		slog.Error("Borrower import failed", "imported", n, "error", err)
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Info("Borrower import complete", "imported", n)
	JSON(w, http.StatusOK, map[string]int{"imported": n})
}

// Dial places an outbound call to every borrower on record.
func (h *AdminHandler) Dial(w http.ResponseWriter, r *http.Request) {
	if h.dialer == nil {
		Error(w, http.StatusServiceUnavailable, "telephony client not configured")
		return
	}

	res, err := h.dialer.DialAll(r.Context())
	if err != nil {
		slog.Error("Dial batch failed", "batch_id", res.BatchID, "error", err)
		Error(w, http.StatusBadGateway, err.Error())
		return
	}
	JSON(w, http.StatusOK, res)
}
