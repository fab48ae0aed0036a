package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/export"
	"github.com/billforge/billforge/internal/models"
	"github.com/billforge/billforge/internal/raster"
)

type noopRasterizer struct{}

func (noopRasterizer) Capture(ctx context.Context, html string) (*raster.Image, error) {
	return nil, errors.New("no browser in tests")
}

func testRouter(t *testing.T, withDB bool) http.Handler {
	t.Helper()
	var db *gorm.DB
	if withDB {
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
		var err error
		db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			t.Fatalf("open db: %v", err)
		}
		if err := db.AutoMigrate(&models.DraftRecord{}, &models.DraftItemRecord{}); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return New(Deps{
		DB:       db,
		Manager:  draft.NewManager(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		Exporter: export.New(noopRasterizer{}),
	})
}

func do(h http.Handler, method, target string, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	h := testRouter(t, true)

	w := do(h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/health: %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["status"] != "ok" {
		t.Fatalf("/health body: %s (%v)", w.Body.String(), err)
	}

	if w = do(h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("/healthz: %d", w.Code)
	}
}

func TestHealthzWithoutDB(t *testing.T) {
	h := testRouter(t, false)
	if w := do(h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("/healthz without db: %d", w.Code)
	}
}

func TestMethodGating(t *testing.T) {
	h := testRouter(t, true)
	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/draft"},
		{http.MethodGet, "/draft/items/add"},
		{http.MethodGet, "/export/pdf"},
		{http.MethodPost, "/preview"},
		{http.MethodDelete, "/drafts"},
	}
	for _, c := range cases {
		w := do(h, c.method, c.path, "application/json")
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405 got %d", c.method, c.path, w.Code)
		}
		if w.Header().Get("Allow") == "" {
			t.Fatalf("%s %s: missing Allow header", c.method, c.path)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	h := testRouter(t, false)
	if w := do(h, http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestDraftsRoutesAbsentWithoutDB(t *testing.T) {
	h := testRouter(t, false)
	// without a DB the saved-drafts routes do not exist; they fall through
	// to the catch-all and 404
	if w := do(h, http.MethodGet, "/drafts", "application/json"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestBuilderPage(t *testing.T) {
	h := testRouter(t, true)
	w := do(h, http.MethodGet, "/", "text/html")
	if w.Code != http.StatusOK {
		t.Fatalf("builder page: %d body=%.300s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "invoiceForm") || !strings.Contains(body, "invoicePreview") {
		t.Fatalf("builder page missing form or preview pane: %.300s", body)
	}
	// the seeded invoice number shows up both in the form and the preview
	if !strings.Contains(body, "INV-2024-0101-001") {
		t.Fatalf("seeded invoice number missing")
	}
	if !strings.Contains(body, `name="itemQuantity" value="1" min="1"`) {
		t.Fatalf("quantity input should default to 1 with min 1")
	}
}

func TestSyncThroughRouter(t *testing.T) {
	h := testRouter(t, false)
	body := `{"client":{"name":"Globex"},"tax_rate":10,"items":[{"description":"Design","quantity":3,"rate":50},{"description":"Hosting","quantity":1,"rate":20}]}`
	req := httptest.NewRequest(http.MethodPost, "/draft", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("sync: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Totals models.Totals `json:"totals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.Total != 187 {
		t.Fatalf("total: %v", resp.Totals.Total)
	}
}

func TestExportWithoutBrowserFails(t *testing.T) {
	h := testRouter(t, false)
	w := do(h, http.MethodPost, "/export/pdf", "application/json")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", w.Code)
	}
}
