package handlers

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/preview"
	"github.com/billforge/billforge/internal/store"
	"github.com/billforge/billforge/internal/view"
)

// BuilderHandler serves the builder page: the invoice form on the left,
// the live preview on the right, saved drafts underneath.
type BuilderHandler struct {
	Manager *draft.Manager
	Store   *store.DraftStore
}

func NewBuilderHandler(m *draft.Manager, s *store.DraftStore) *BuilderHandler {
	return &BuilderHandler{Manager: m, Store: s}
}

func (h *BuilderHandler) Page(w http.ResponseWriter, r *http.Request) {
	d := h.Manager.Draft()
	snap := h.Manager.Snapshot()
	frag, err := preview.Render(snap)
	if err != nil {
		log.Printf("builder: preview render: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "render error")
		return
	}
	data := map[string]any{
		"Draft":   d,
		"Totals":  snap.Totals,
		"Preview": template.HTML(frag),
	}
	if h.Store != nil {
		if recs, err := h.Store.List(20); err == nil {
			data["SavedDrafts"] = recs
		} else {
			log.Printf("builder: list drafts: %v", err)
		}
	}
	if c, err := r.Cookie("flash"); err == nil {
		if dec, derr := url.QueryUnescape(c.Value); derr == nil {
			data["Flash"] = dec
		} else {
			data["Flash"] = c.Value
		}
		http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	}
	if err := view.Render(w, r, "builder.html", data); err != nil {
		log.Printf("builder: template render: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "template render error: %v", err)
	}
}
