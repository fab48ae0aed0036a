// Package preview renders an invoice snapshot to the printable HTML
// fragment shown in the live preview pane and captured for PDF export.
// Rendering is a pure mapping: same snapshot in, same markup out.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/models"
)

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"rate":  func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"qty":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"fdate": formatDate,
	"nl2br": nl2br,
	"desc": func(s string) string {
		if s == "" {
			return "Service"
		}
		return s
	},
}

var fragmentTpl = template.Must(template.New("invoice").Funcs(funcs).Parse(fragmentSrc))

// formatDate renders an ISO date as a long-form date (January 2, 2006).
// Empty or unparseable input renders as an empty string.
func formatDate(iso string) string {
	if iso == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return ""
	}
	return d.Format("January 2, 2006")
}

// nl2br escapes user text and then converts newlines to <br>. Escaping
// first means the break tags are the only markup that survives; this is
// the one deliberate exception to full escaping of free text.
func nl2br(s string) template.HTML {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = template.HTMLEscapeString(l)
	}
	return template.HTML(strings.Join(lines, "<br>"))
}

// Render produces the invoice fragment for a snapshot.
func Render(s models.InvoiceSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := fragmentTpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("preview: render: %w", err)
	}
	return buf.String(), nil
}

// Document wraps the fragment in a standalone printable page for the
// rasterizer: the capture browser loads this without any of the builder
// page's assets.
func Document(s models.InvoiceSnapshot) (string, error) {
	frag, err := Render(s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><style>\n")
	buf.WriteString(documentCSS)
	buf.WriteString("\n</style></head><body>")
	buf.WriteString(frag)
	buf.WriteString("</body></html>\n")
	return buf.String(), nil
}

// Fixed section order: header, bill-to, items, totals, optional notes,
// footer. Address/email/phone blocks are omitted entirely when blank.
const fragmentSrc = `<div class="invoice-document">
  <div class="invoice-header">
    <div class="company-info">
      <h1 class="company-name">{{.Company.Name}}</h1>
      <div class="company-details">
        {{- if .Company.Address}}
        <div class="address">{{nl2br .Company.Address}}</div>
        {{- end}}
        <div class="contact-info">
          {{- if .Company.Email}}<span class="email">{{.Company.Email}}</span>{{end}}
          {{- if .Company.Phone}}<span class="phone">{{.Company.Phone}}</span>{{end}}
        </div>
      </div>
    </div>
    <div class="invoice-info">
      <h2 class="invoice-title">INVOICE</h2>
      <div class="invoice-details">
        <div class="detail-row"><span class="label">Invoice #:</span><span class="value">{{.Meta.Number}}</span></div>
        <div class="detail-row"><span class="label">Date:</span><span class="value">{{fdate .Meta.Date}}</span></div>
        <div class="detail-row"><span class="label">Due Date:</span><span class="value">{{fdate .Meta.DueDate}}</span></div>
      </div>
    </div>
  </div>
  <div class="billing-section">
    <div class="bill-to">
      <h3 class="section-title">Bill To:</h3>
      <div class="client-info">
        <div class="client-name">{{.Client.Name}}</div>
        {{- if .Client.Address}}
        <div class="client-address">{{nl2br .Client.Address}}</div>
        {{- end}}
        <div class="client-contact">
          {{- if .Client.Email}}<div class="client-email">{{.Client.Email}}</div>{{end}}
          {{- if .Client.Phone}}<div class="client-phone">{{.Client.Phone}}</div>{{end}}
        </div>
      </div>
    </div>
  </div>
  <div class="items-section">
    <table class="items-table">
      <thead>
        <tr><th class="desc-header">Description</th><th class="qty-header">Qty</th><th class="rate-header">Rate</th><th class="amount-header">Amount</th></tr>
      </thead>
      <tbody>
        {{- range .Items}}
        <tr class="invoice-item"><td class="item-description">{{desc .Description}}</td><td class="item-quantity">{{qty .Quantity}}</td><td class="item-rate">{{money .Rate}}</td><td class="item-amount">{{money .Amount}}</td></tr>
        {{- end}}
      </tbody>
    </table>
  </div>
  <div class="totals-section">
    <div class="totals-table">
      <div class="total-row"><span class="total-label">Subtotal:</span><span class="total-value">{{money .Totals.Subtotal}}</span></div>
      <div class="total-row"><span class="total-label">Tax ({{rate .Totals.TaxRate}}%):</span><span class="total-value">{{money .Totals.TaxAmount}}</span></div>
      <div class="total-row final-total"><span class="total-label">Total:</span><span class="total-value">{{money .Totals.Total}}</span></div>
    </div>
  </div>
  {{- if .Notes}}
  <div class="notes-section">
    <h3 class="section-title">Notes:</h3>
    <div class="notes-content">{{nl2br .Notes}}</div>
  </div>
  {{- end}}
  <div class="invoice-footer">
    <div class="footer-content"><p>Thank you for your business!</p></div>
  </div>
</div>
`

const documentCSS = `body { margin: 0; background: #fff; }
.invoice-document { font-family: Helvetica, Arial, sans-serif; color: #1a1a2e; width: 760px; margin: 0 auto; padding: 48px; box-sizing: border-box; }
.invoice-header { display: flex; justify-content: space-between; margin-bottom: 36px; }
.company-name { margin: 0 0 8px; font-size: 26px; }
.company-details, .client-info { font-size: 13px; line-height: 1.5; }
.contact-info span { margin-right: 12px; }
.invoice-title { margin: 0 0 10px; font-size: 30px; letter-spacing: 2px; color: #3b5bdb; text-align: right; }
.detail-row { display: flex; justify-content: flex-end; gap: 8px; font-size: 13px; }
.detail-row .label { color: #666; }
.section-title { font-size: 13px; text-transform: uppercase; color: #666; margin: 0 0 6px; }
.billing-section { margin-bottom: 28px; }
.client-name { font-weight: bold; }
.items-table { width: 100%; border-collapse: collapse; font-size: 13px; }
.items-table th { text-align: left; border-bottom: 2px solid #1a1a2e; padding: 8px 6px; }
.items-table td { border-bottom: 1px solid #e0e0e0; padding: 8px 6px; }
.qty-header, .item-quantity { text-align: center; }
.rate-header, .amount-header, .item-rate, .item-amount { text-align: right; }
.totals-section { display: flex; justify-content: flex-end; margin-top: 18px; }
.totals-table { width: 260px; font-size: 13px; }
.total-row { display: flex; justify-content: space-between; padding: 4px 0; }
.final-total { border-top: 2px solid #1a1a2e; font-weight: bold; font-size: 15px; padding-top: 8px; }
.notes-section { margin-top: 28px; font-size: 13px; }
.invoice-footer { margin-top: 40px; text-align: center; color: #666; font-size: 12px; }`
