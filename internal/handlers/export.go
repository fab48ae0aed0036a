package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/export"
	"github.com/billforge/billforge/internal/httpx"
)

// ExportHandler turns the working draft into a PDF download.
type ExportHandler struct {
	Manager  *draft.Manager
	Exporter *export.Exporter
}

func NewExportHandler(m *draft.Manager, e *export.Exporter) *ExportHandler {
	return &ExportHandler{Manager: m, Exporter: e}
}

// PDF: POST /export/pdf – export the current draft. A snapshot is taken
// and rendered fresh inside the exporter, so the download always matches
// the form state at trigger time. Only one export runs at a time; a
// concurrent trigger gets 409.
func (h *ExportHandler) PDF(w http.ResponseWriter, r *http.Request) {
	snap := h.Manager.Snapshot()
	data, filename, err := h.Exporter.Export(r.Context(), snap)
	if err != nil {
		if errors.Is(err, export.ErrInFlight) {
			httpx.JSONError(w, http.StatusConflict, "export_busy", nil)
			return
		}
		// one user-facing failure category; the detail goes to the log
		log.Printf("export: generating PDF: %v", err)
		httpx.JSONError(w, http.StatusBadGateway, "export_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
