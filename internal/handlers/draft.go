package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/form"
	"github.com/billforge/billforge/internal/httpx"
	"github.com/billforge/billforge/internal/models"
	"github.com/billforge/billforge/internal/preview"
)

// DraftHandler mutates the working draft and serves the rendered preview.
// Every mutation responds with the fresh preview + totals so the client
// never recomputes anything itself.
type DraftHandler struct {
	Manager *draft.Manager
}

func NewDraftHandler(m *draft.Manager) *DraftHandler { return &DraftHandler{Manager: m} }

type syncResponse struct {
	Totals  models.Totals `json:"totals"`
	Preview string        `json:"preview"`
	Items   int           `json:"items"`
}

func (h *DraftHandler) respond(w http.ResponseWriter, r *http.Request, status int) {
	snap := h.Manager.Snapshot()
	frag, err := preview.Render(snap)
	if err != nil {
		log.Printf("draft: preview render: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", nil)
		return
	}
	if httpx.WantsJSON(r) || !strings.Contains(r.Header.Get("Accept"), "text/html") {
		httpx.JSON(w, status, syncResponse{Totals: snap.Totals, Preview: frag, Items: len(h.Manager.Draft().Items)})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Sync: POST /draft – replace the working draft with the posted form state.
// Accepts JSON ({company,client,meta,notes,tax_rate,items}) or the builder
// form encoding.
func (h *DraftHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var d models.Draft
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		h.Manager.Replace(d)
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		h.Manager.Replace(form.FromValues(r.PostForm))
	}
	h.respond(w, r, http.StatusOK)
}

// AddItem: POST /draft/items/add – append a default row.
func (h *DraftHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.Manager.AddItem()
	h.respond(w, r, http.StatusOK)
}

// RemoveItem: POST /draft/items/remove?index=N – delete a row
// unconditionally; removing the last row is fine.
func (h *DraftHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil || idx < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_index", nil)
		return
	}
	if err := h.Manager.RemoveItem(idx); err != nil {
		httpx.JSONError(w, http.StatusNotFound, "no_such_item", nil)
		return
	}
	h.respond(w, r, http.StatusOK)
}

// Preview: GET /preview – the current rendered fragment (the
// refresh-preview control and the page's initial load both use it).
func (h *DraftHandler) Preview(w http.ResponseWriter, r *http.Request) {
	snap := h.Manager.Snapshot()
	frag, err := preview.Render(snap)
	if err != nil {
		log.Printf("draft: preview render: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, syncResponse{Totals: snap.Totals, Preview: frag, Items: len(h.Manager.Draft().Items)})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(frag))
}
