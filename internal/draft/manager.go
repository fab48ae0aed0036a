// Package draft owns the working invoice draft. There is exactly one draft
// per process; every handler mutation and every render goes through the
// Manager so concurrent requests see a consistent value.
package draft

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/billforge/billforge/internal/calc"
	"github.com/billforge/billforge/internal/models"
)

// Display defaults, applied only when building a snapshot.
const (
	DefaultCompanyName   = "Your Company"
	DefaultClientName    = "Client Name"
	DefaultInvoiceNumber = "INV-001"
)

var ErrNoSuchItem = errors.New("draft: no such item")

type Manager struct {
	mu    sync.Mutex
	draft models.Draft
}

// NewManager seeds the draft the way the builder starts up: invoice date
// today, due date +30 days, a dated invoice number, and one empty item row.
func NewManager(now time.Time) *Manager {
	m := &Manager{}
	m.draft = models.Draft{
		Meta: models.Meta{
			Number:  SeedNumber(now),
			Date:    now.Format("2006-01-02"),
			DueDate: now.AddDate(0, 0, 30).Format("2006-01-02"),
		},
		Items: []models.LineItem{defaultItem()},
	}
	return m
}

// SeedNumber produces the startup invoice number, e.g. INV-2026-0831-001.
// It is a seed only; the field is freely editable afterwards.
func SeedNumber(now time.Time) string {
	return fmt.Sprintf("INV-%d-%02d%02d-001", now.Year(), int(now.Month()), now.Day())
}

func defaultItem() models.LineItem {
	return models.LineItem{Quantity: 1, Rate: 0, Amount: 0}
}

// Draft returns a copy of the current working draft.
func (m *Manager) Draft() models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Replace swaps the working draft wholesale (form sync, draft load).
// Item amounts are recomputed so no row is ever observably stale.
func (m *Manager) Replace(d models.Draft) {
	c := d.Clone()
	for i := range c.Items {
		c.Items[i].Amount = calc.ItemAmount(c.Items[i].Quantity, c.Items[i].Rate)
	}
	m.mu.Lock()
	m.draft = c
	m.mu.Unlock()
}

// AddItem appends a default row and returns its index.
func (m *Manager) AddItem() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.Items = append(m.draft.Items, defaultItem())
	return len(m.draft.Items) - 1
}

// UpdateItem replaces one row's fields and recomputes its amount.
func (m *Manager) UpdateItem(i int, description string, quantity, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.draft.Items) {
		return ErrNoSuchItem
	}
	m.draft.Items[i] = models.LineItem{
		Description: description,
		Quantity:    quantity,
		Rate:        rate,
		Amount:      calc.ItemAmount(quantity, rate),
	}
	return nil
}

// RemoveItem deletes the row unconditionally. Removing the last row is
// allowed; zero items is a valid draft with a zero subtotal.
func (m *Manager) RemoveItem(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.draft.Items) {
		return ErrNoSuchItem
	}
	m.draft.Items = append(m.draft.Items[:i], m.draft.Items[i+1:]...)
	return nil
}

// Snapshot builds the per-render view: display defaults applied,
// fully-blank rows dropped, totals derived. The draft itself is untouched.
func (m *Manager) Snapshot() models.InvoiceSnapshot {
	d := m.Draft()
	return Snapshot(d)
}

// Snapshot derives a render view from any draft value. Exposed as a free
// function so preview and export tests can build snapshots without a
// Manager.
func Snapshot(d models.Draft) models.InvoiceSnapshot {
	s := models.InvoiceSnapshot{
		Company:   d.Company,
		Client:    d.Client,
		Meta:      d.Meta,
		RawNumber: d.Meta.Number,
		Notes:     d.Notes,
	}
	if s.Company.Name == "" {
		s.Company.Name = DefaultCompanyName
	}
	if s.Client.Name == "" {
		s.Client.Name = DefaultClientName
	}
	if s.Meta.Number == "" {
		s.Meta.Number = DefaultInvoiceNumber
	}
	for _, it := range d.Items {
		if it.Blank() {
			continue
		}
		it.Amount = calc.ItemAmount(it.Quantity, it.Rate)
		s.Items = append(s.Items, it)
	}
	s.Totals = calc.ComputeTotals(calc.Amounts(s.Items), d.TaxRate)
	return s
}
