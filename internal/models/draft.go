package models

// Working draft types. The draft is the single source of truth for the
// invoice being edited; it lives in process memory and is owned by
// draft.Manager. Display defaults are NOT applied here — a blank company
// name stays blank in the draft and only becomes "Your Company" in the
// snapshot built for rendering.

// Party is either the issuing company or the billed client.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Meta carries invoice identification. Dates are ISO strings (2006-01-02)
// exactly as the date inputs produce them; Number is seeded once at startup
// and freely editable afterwards, with no uniqueness enforcement.
type Meta struct {
	Number  string `json:"number"`
	Date    string `json:"date"`
	DueDate string `json:"due_date"`
}

// LineItem is one billable row. Amount is derived (round2 of qty*rate),
// recomputed on every mutation and never accepted from the wire.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Blank reports whether the row carries no information at all; such rows
// stay in the form for editing but are dropped from rendered snapshots.
func (it LineItem) Blank() bool {
	return it.Description == "" && it.Quantity == 0 && it.Rate == 0
}

// Totals is the derived subtotal/tax/total triple.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxRate   float64 `json:"tax_rate"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Draft is the one mutable working value.
type Draft struct {
	Company Party      `json:"company"`
	Client  Party      `json:"client"`
	Meta    Meta       `json:"meta"`
	Notes   string     `json:"notes"`
	TaxRate float64    `json:"tax_rate"`
	Items   []LineItem `json:"items"`
}

// Clone returns a deep copy so callers can hand drafts across goroutines
// without sharing the items slice.
func (d Draft) Clone() Draft {
	c := d
	c.Items = make([]LineItem, len(d.Items))
	copy(c.Items, d.Items)
	return c
}

// InvoiceSnapshot is the immutable per-render view: display defaults
// applied, fully-blank rows dropped, totals computed. Built fresh for every
// render and discarded afterwards. RawNumber keeps the number field as
// typed; the preview shows Meta.Number with the default applied, but the
// download filename is derived from the raw value so a blank field falls
// back to invoice.pdf.
type InvoiceSnapshot struct {
	Company   Party
	Client    Party
	Meta      Meta
	RawNumber string
	Notes     string
	Items     []LineItem
	Totals    Totals
}
