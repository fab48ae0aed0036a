// Package form translates the posted builder form into a working draft.
package form

import (
	"net/url"

	"github.com/billforge/billforge/internal/calc"
	"github.com/billforge/billforge/internal/models"
)

// Field names match the ids of the builder page inputs. Line items arrive
// as parallel arrays so row order survives the round trip.
const (
	FieldCompanyName    = "companyName"
	FieldCompanyAddress = "companyAddress"
	FieldCompanyEmail   = "companyEmail"
	FieldCompanyPhone   = "companyPhone"
	FieldClientName     = "clientName"
	FieldClientAddress  = "clientAddress"
	FieldClientEmail    = "clientEmail"
	FieldClientPhone    = "clientPhone"
	FieldInvoiceNumber  = "invoiceNumber"
	FieldInvoiceDate    = "invoiceDate"
	FieldDueDate        = "dueDate"
	FieldTaxRate        = "taxRate"
	FieldNotes          = "notes"
	FieldItemDesc       = "itemDescription"
	FieldItemQuantity   = "itemQuantity"
	FieldItemRate       = "itemRate"
)

// FromValues builds a draft from posted form values. Values are kept raw:
// display defaults ("Your Company" and friends) are applied at snapshot
// time, not here, so the user's blank field stays blank in the form.
// Item amounts are recomputed from quantity and rate; an amount sent by the
// client is never trusted.
func FromValues(v url.Values) models.Draft {
	d := models.Draft{
		Company: models.Party{
			Name:    v.Get(FieldCompanyName),
			Address: v.Get(FieldCompanyAddress),
			Email:   v.Get(FieldCompanyEmail),
			Phone:   v.Get(FieldCompanyPhone),
		},
		Client: models.Party{
			Name:    v.Get(FieldClientName),
			Address: v.Get(FieldClientAddress),
			Email:   v.Get(FieldClientEmail),
			Phone:   v.Get(FieldClientPhone),
		},
		Meta: models.Meta{
			Number:  v.Get(FieldInvoiceNumber),
			Date:    v.Get(FieldInvoiceDate),
			DueDate: v.Get(FieldDueDate),
		},
		Notes:   v.Get(FieldNotes),
		TaxRate: calc.ParseNumber(v.Get(FieldTaxRate)),
	}

	descs := v[FieldItemDesc]
	qtys := v[FieldItemQuantity]
	rates := v[FieldItemRate]
	n := len(descs)
	if len(qtys) > n {
		n = len(qtys)
	}
	if len(rates) > n {
		n = len(rates)
	}
	for i := 0; i < n; i++ {
		it := models.LineItem{
			Description: at(descs, i),
			Quantity:    calc.ParseNumber(at(qtys, i)),
			Rate:        calc.ParseNumber(at(rates, i)),
		}
		it.Amount = calc.ItemAmount(it.Quantity, it.Rate)
		d.Items = append(d.Items, it)
	}
	return d
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}
