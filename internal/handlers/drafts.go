package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/httpx"
	"github.com/billforge/billforge/internal/middleware"
	"github.com/billforge/billforge/internal/store"
	"github.com/billforge/billforge/internal/validation"
)

// DraftsHandler persists and restores named copies of the working draft.
type DraftsHandler struct {
	Manager *draft.Manager
	Store   *store.DraftStore
}

func NewDraftsHandler(m *draft.Manager, s *store.DraftStore) *DraftsHandler {
	return &DraftsHandler{Manager: m, Store: s}
}

// Save: POST /drafts – save the current working draft under a name.
func (h *DraftsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var name string
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		name = req.Name
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		name = r.PostForm.Get("name")
	}
	name = strings.TrimSpace(name)
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.MaxLen("name", name, 120, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	rec, err := h.Store.Save(name, h.Manager.Draft())
	if err != nil {
		log.Printf("drafts: save: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_draft", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": rec.ID, "name": rec.Name})
		return
	}
	middleware.Flash(w, r, "draft_saved")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// List: GET /drafts – saved drafts, newest first.
func (h *DraftsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	recs, err := h.Store.List(limit)
	if err != nil {
		log.Printf("drafts: list: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_drafts", nil)
		return
	}
	if httpx.WantsJSON(r) {
		type item struct {
			ID            uint   `json:"id"`
			Name          string `json:"name"`
			InvoiceNumber string `json:"invoice_number"`
			ClientName    string `json:"client_name"`
		}
		items := make([]item, 0, len(recs))
		for _, rec := range recs {
			items = append(items, item{ID: rec.ID, Name: rec.Name, InvoiceNumber: rec.InvoiceNumber, ClientName: rec.ClientName})
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
		return
	}
	// the builder page embeds the list; plain navigation goes back there
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Load: POST /drafts/load?id= – replace the working draft with a saved one.
func (h *DraftsHandler) Load(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rec, err := h.Store.Get(uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("drafts: load: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_draft", nil)
		return
	}
	h.Manager.Replace(rec.ToDraft())
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
		return
	}
	middleware.Flash(w, r, "draft_loaded")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Delete: POST /drafts/delete?id=
func (h *DraftsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Store.Delete(uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("drafts: delete: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_draft", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	middleware.Flash(w, r, "draft_deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
