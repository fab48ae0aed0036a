package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/models"
	"github.com/billforge/billforge/internal/store"
)

func setupDraftsHandler(t *testing.T) (*DraftsHandler, *draft.Manager) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.DraftRecord{}, &models.DraftItemRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	m := draft.NewManager(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewDraftsHandler(m, store.NewDraftStore(db)), m
}

func TestSaveDraftValidation(t *testing.T) {
	h, _ := setupDraftsHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/drafts", strings.NewReader(url.Values{"name": {"   "}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.Save(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation_failed, got %s", w.Body.String())
	}
}

func TestSaveListLoadDelete(t *testing.T) {
	h, m := setupDraftsHandler(t)

	m.Replace(models.Draft{
		Client:  models.Party{Name: "Globex"},
		Meta:    models.Meta{Number: "INV-77"},
		TaxRate: 5,
		Items:   []models.LineItem{{Description: "Design", Quantity: 2, Rate: 40}},
	})

	w := httptest.NewRecorder()
	h.Save(w, newJSONRequest(http.MethodPost, "/drafts", `{"name":"january"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("save: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var saved struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if saved.ID == 0 || saved.Name != "january" {
		t.Fatalf("save response: %+v", saved)
	}

	w = httptest.NewRecorder()
	h.List(w, newJSONRequest(http.MethodGet, "/drafts", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", w.Code)
	}
	var listed struct {
		Items []struct {
			ID            uint   `json:"id"`
			Name          string `json:"name"`
			InvoiceNumber string `json:"invoice_number"`
			ClientName    string `json:"client_name"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if listed.Total != 1 || listed.Items[0].InvoiceNumber != "INV-77" || listed.Items[0].ClientName != "Globex" {
		t.Fatalf("list response: %+v", listed)
	}

	// wipe the working draft, then load the saved one back
	m.Replace(models.Draft{})
	w = httptest.NewRecorder()
	h.Load(w, newJSONRequest(http.MethodPost, fmt.Sprintf("/drafts/load?id=%d", saved.ID), ""))
	if w.Code != http.StatusOK {
		t.Fatalf("load: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	d := m.Draft()
	if d.Client.Name != "Globex" || d.Meta.Number != "INV-77" || len(d.Items) != 1 {
		t.Fatalf("draft not restored: %+v", d)
	}
	if d.Items[0].Amount != 80 {
		t.Fatalf("amounts not recomputed on load: %v", d.Items[0].Amount)
	}

	w = httptest.NewRecorder()
	h.Delete(w, newJSONRequest(http.MethodPost, fmt.Sprintf("/drafts/delete?id=%d", saved.ID), ""))
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", w.Code)
	}
	w = httptest.NewRecorder()
	h.Delete(w, newJSONRequest(http.MethodPost, fmt.Sprintf("/drafts/delete?id=%d", saved.ID), ""))
	if w.Code != http.StatusNotFound {
		t.Fatalf("double delete: expected 404 got %d", w.Code)
	}
}

func TestLoadMissingDraft(t *testing.T) {
	h, _ := setupDraftsHandler(t)

	w := httptest.NewRecorder()
	h.Load(w, newJSONRequest(http.MethodPost, "/drafts/load?id=999", ""))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Load(w, newJSONRequest(http.MethodPost, "/drafts/load?id=zero", ""))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
