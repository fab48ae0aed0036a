package models

import "time"

// Persisted drafts. A DraftRecord is a named copy of the working draft the
// user chose to keep; loading one replaces the working draft wholesale.

type DraftRecord struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"not null;index"`
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	CompanyPhone   string
	ClientName     string
	ClientAddress  string
	ClientEmail    string
	ClientPhone    string
	InvoiceNumber  string `gorm:"index"`
	InvoiceDate    string
	DueDate        string
	Notes          string
	TaxRate        float64
	Items          []DraftItemRecord `gorm:"foreignKey:DraftRecordID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type DraftItemRecord struct {
	ID            uint `gorm:"primaryKey"`
	DraftRecordID uint `gorm:"not null;index"`
	Position      int  `gorm:"not null"` // preserves row order
	Description   string
	Quantity      float64
	Rate          float64
}

// ToDraft rebuilds a working draft from the record. Amounts are not stored;
// the caller recomputes them (they are derived state).
func (rec DraftRecord) ToDraft() Draft {
	d := Draft{
		Company: Party{Name: rec.CompanyName, Address: rec.CompanyAddress, Email: rec.CompanyEmail, Phone: rec.CompanyPhone},
		Client:  Party{Name: rec.ClientName, Address: rec.ClientAddress, Email: rec.ClientEmail, Phone: rec.ClientPhone},
		Meta:    Meta{Number: rec.InvoiceNumber, Date: rec.InvoiceDate, DueDate: rec.DueDate},
		Notes:   rec.Notes,
		TaxRate: rec.TaxRate,
	}
	for _, it := range rec.Items {
		d.Items = append(d.Items, LineItem{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate})
	}
	return d
}

// RecordFromDraft captures the working draft under the given name.
func RecordFromDraft(name string, d Draft) DraftRecord {
	rec := DraftRecord{
		Name:           name,
		CompanyName:    d.Company.Name,
		CompanyAddress: d.Company.Address,
		CompanyEmail:   d.Company.Email,
		CompanyPhone:   d.Company.Phone,
		ClientName:     d.Client.Name,
		ClientAddress:  d.Client.Address,
		ClientEmail:    d.Client.Email,
		ClientPhone:    d.Client.Phone,
		InvoiceNumber:  d.Meta.Number,
		InvoiceDate:    d.Meta.Date,
		DueDate:        d.Meta.DueDate,
		Notes:          d.Notes,
		TaxRate:        d.TaxRate,
	}
	for i, it := range d.Items {
		rec.Items = append(rec.Items, DraftItemRecord{Position: i, Description: it.Description, Quantity: it.Quantity, Rate: it.Rate})
	}
	return rec
}
