package server

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/export"
	"github.com/billforge/billforge/internal/handlers"
	"github.com/billforge/billforge/internal/httpx"
	"github.com/billforge/billforge/internal/middleware"
	"github.com/billforge/billforge/internal/store"
)

// Deps bundles what the router needs; db may be nil when the draft store
// is disabled (the builder and export still work).
type Deps struct {
	DB       *gorm.DB
	Manager  *draft.Manager
	Exporter *export.Exporter
}

// New constructs the root http.Handler with all routes and middlewares.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.DB != nil {
			if err := deps.DB.Exec("SELECT 1").Error; err != nil {
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var draftStore *store.DraftStore
	if deps.DB != nil {
		draftStore = store.NewDraftStore(deps.DB)
	}

	// Working draft + preview
	dh := handlers.NewDraftHandler(deps.Manager)
	mux.Handle("/draft", post(dh.Sync))
	mux.Handle("/draft/items/add", post(dh.AddItem))
	mux.Handle("/draft/items/remove", post(dh.RemoveItem))
	mux.HandleFunc("/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}
		dh.Preview(w, r)
	})

	// Export
	eh := handlers.NewExportHandler(deps.Manager, deps.Exporter)
	mux.Handle("/export/pdf", post(eh.PDF))

	// Saved drafts
	if draftStore != nil {
		sh := handlers.NewDraftsHandler(deps.Manager, draftStore)
		mux.HandleFunc("/drafts", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				sh.List(w, r)
			case http.MethodPost:
				sh.Save(w, r)
			default:
				methodNotAllowed(w, "GET,POST")
			}
		})
		mux.Handle("/drafts/load", post(sh.Load))
		mux.Handle("/drafts/delete", post(sh.Delete))
	}

	// OpenAPI spec
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, "openapi.yaml")
	})

	// Static assets with ETag + cache headers
	mux.Handle("/static/", staticHandler())

	// Builder page
	bh := handlers.NewBuilderHandler(deps.Manager, draftStore)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		bh.Page(w, r)
	})

	return middleware.Prefs(withRecover(withLogging(mux)))
}

func post(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		h(w, r)
	})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func staticHandler() http.Handler {
	fs := http.FileServer(http.Dir("static"))
	return http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		// open the file manually to compute an ETag; files are small
		if f, err := os.Open(filepath.Join("static", filepath.Clean(name))); err == nil {
			h := sha1.New()
			if _, cerr := io.Copy(h, f); cerr == nil {
				etag := fmt.Sprintf("\"%x\"", h.Sum(nil)[:8])
				w.Header().Set("ETag", etag)
				if match := r.Header.Get("If-None-Match"); match == etag {
					f.Close()
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
			f.Close()
		}
		switch filepath.Ext(name) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		}
		if os.Getenv("DEV") != "1" {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		fs.ServeHTTP(w, r)
	}))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
