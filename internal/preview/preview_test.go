package preview

import (
	"strings"
	"testing"

	"github.com/billforge/billforge/internal/draft"
	"github.com/billforge/billforge/internal/models"
)

func sampleSnapshot() models.InvoiceSnapshot {
	return draft.Snapshot(models.Draft{
		Company: models.Party{Name: "Acme Studio", Address: "1 Main St\nSpringfield", Email: "hi@acme.test"},
		Client:  models.Party{Name: "Globex"},
		Meta:    models.Meta{Number: "INV-2024-0101-001", Date: "2024-01-01", DueDate: "2024-01-31"},
		TaxRate: 10,
		Items: []models.LineItem{
			{Description: "Design", Quantity: 3, Rate: 50},
			{Description: "Hosting", Quantity: 1, Rate: 20},
		},
	})
}

func TestRenderIdempotent(t *testing.T) {
	s := sampleSnapshot()
	a, err := Render(s)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := Render(s)
	if err != nil {
		t.Fatalf("render again: %v", err)
	}
	if a != b {
		t.Fatalf("render is not idempotent for identical input")
	}
}

func TestRenderContent(t *testing.T) {
	out, err := Render(sampleSnapshot())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"Acme Studio", "Globex", "INV-2024-0101-001",
		"January 1, 2024", "January 31, 2024",
		"$150.00", "$20.00",
		"Subtotal:", "$170.00", "Tax (10%):", "$17.00", "$187.00",
		"Thank you for your business!",
		"1 Main St<br>Springfield",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q\n%s", want, out)
		}
	}
}

func TestRenderDefaultsForBlankNames(t *testing.T) {
	out, err := Render(draft.Snapshot(models.Draft{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Your Company") || !strings.Contains(out, "Client Name") {
		t.Fatalf("display defaults missing:\n%s", out)
	}
}

func TestRenderOmitsBlankSections(t *testing.T) {
	out, err := Render(draft.Snapshot(models.Draft{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, `class="address"`) || strings.Contains(out, `class="notes-section"`) {
		t.Fatalf("blank sections must be omitted entirely:\n%s", out)
	}
	withNotes, err := Render(draft.Snapshot(models.Draft{Notes: "Net 30"}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(withNotes, "notes-section") || !strings.Contains(withNotes, "Net 30") {
		t.Fatalf("notes section missing:\n%s", withNotes)
	}
}

func TestRenderEscapesUserText(t *testing.T) {
	s := draft.Snapshot(models.Draft{
		Company: models.Party{Name: `<script>alert(1)</script>`},
		Notes:   "a <b>bold</b> claim\nsecond line",
	})
	out, err := Render(s)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Fatalf("user markup must be escaped:\n%s", out)
	}
	// newlines are the one exception: converted to <br> after escaping
	if !strings.Contains(out, "claim<br>second line") {
		t.Fatalf("newline conversion missing:\n%s", out)
	}
}

func TestRenderBlankDescriptionFallsBackToService(t *testing.T) {
	s := draft.Snapshot(models.Draft{Items: []models.LineItem{{Quantity: 2, Rate: 0}}})
	out, err := Render(s)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, ">Service<") {
		t.Fatalf("blank description should render as Service:\n%s", out)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(""); got != "" {
		t.Fatalf("empty date: %q", got)
	}
	if got := formatDate("not-a-date"); got != "" {
		t.Fatalf("bad date: %q", got)
	}
	if got := formatDate("2024-03-09"); got != "March 9, 2024" {
		t.Fatalf("date: %q", got)
	}
}

func TestDocumentIsStandalone(t *testing.T) {
	out, err := Document(sampleSnapshot())
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.Contains(out, "invoice-document") {
		t.Fatalf("unexpected document:\n%.200s", out)
	}
}
