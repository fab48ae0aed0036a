package draft

import (
	"testing"
	"time"

	"github.com/billforge/billforge/internal/models"
)

func TestNewManagerSeeds(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(now)
	d := m.Draft()
	if d.Meta.Number != "INV-2024-0101-001" {
		t.Fatalf("seed number: %q", d.Meta.Number)
	}
	if d.Meta.Date != "2024-01-01" || d.Meta.DueDate != "2024-01-31" {
		t.Fatalf("seed dates: %+v", d.Meta)
	}
	if len(d.Items) != 1 || d.Items[0].Quantity != 1 || d.Items[0].Rate != 0 {
		t.Fatalf("seed item: %+v", d.Items)
	}
}

func TestAddUpdateRemoveItem(t *testing.T) {
	m := NewManager(time.Now())
	idx := m.AddItem()
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if err := m.UpdateItem(idx, "Design", 3, 50); err != nil {
		t.Fatalf("update: %v", err)
	}
	d := m.Draft()
	if d.Items[1].Amount != 150 {
		t.Fatalf("amount not recomputed: %+v", d.Items[1])
	}
	if err := m.RemoveItem(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := m.RemoveItem(0); err != nil {
		t.Fatalf("remove last: %v", err)
	}
	// zero items is a valid state
	s := m.Snapshot()
	if len(s.Items) != 0 || s.Totals.Subtotal != 0 || s.Totals.TaxAmount != 0 || s.Totals.Total != 0 {
		t.Fatalf("empty draft should produce zero totals: %+v", s.Totals)
	}
	if err := m.RemoveItem(0); err != ErrNoSuchItem {
		t.Fatalf("expected ErrNoSuchItem, got %v", err)
	}
	if err := m.UpdateItem(5, "x", 1, 1); err != ErrNoSuchItem {
		t.Fatalf("expected ErrNoSuchItem, got %v", err)
	}
}

func TestSnapshotDefaults(t *testing.T) {
	s := Snapshot(models.Draft{})
	if s.Company.Name != "Your Company" || s.Client.Name != "Client Name" || s.Meta.Number != "INV-001" {
		t.Fatalf("defaults not applied: %+v", s)
	}
}

func TestSnapshotDefaultsDoNotMutateDraft(t *testing.T) {
	m := NewManager(time.Now())
	m.Replace(models.Draft{Items: []models.LineItem{{Quantity: 1}}})
	_ = m.Snapshot()
	if d := m.Draft(); d.Company.Name != "" {
		t.Fatalf("snapshot must not write defaults back, got %q", d.Company.Name)
	}
}

func TestSnapshotRowInclusion(t *testing.T) {
	d := models.Draft{Items: []models.LineItem{
		{},                          // fully blank: dropped
		{Quantity: 2, Rate: 0},      // qty non-zero: kept, amount 0
		{Description: "Consulting"}, // description only: kept
	}}
	s := Snapshot(d)
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 included rows, got %d: %+v", len(s.Items), s.Items)
	}
	if s.Items[0].Quantity != 2 || s.Items[0].Amount != 0 {
		t.Fatalf("qty-only row mangled: %+v", s.Items[0])
	}
}

func TestSnapshotScenarioTotals(t *testing.T) {
	d := models.Draft{
		TaxRate: 10,
		Items: []models.LineItem{
			{Description: "Design", Quantity: 3, Rate: 50},
			{Description: "Hosting", Quantity: 1, Rate: 20},
		},
	}
	s := Snapshot(d)
	if s.Items[0].Amount != 150 || s.Items[1].Amount != 20 {
		t.Fatalf("amounts: %+v", s.Items)
	}
	if s.Totals.Subtotal != 170 || s.Totals.TaxAmount != 17 || s.Totals.Total != 187 {
		t.Fatalf("totals: %+v", s.Totals)
	}
}

func TestReplaceRecomputesAmounts(t *testing.T) {
	m := NewManager(time.Now())
	m.Replace(models.Draft{Items: []models.LineItem{{Quantity: 2, Rate: 5, Amount: 999}}})
	if d := m.Draft(); d.Items[0].Amount != 10 {
		t.Fatalf("stale amount survived Replace: %+v", d.Items[0])
	}
}
