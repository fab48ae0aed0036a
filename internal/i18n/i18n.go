// Package i18n provides the small en/fr translation table for the builder
// UI chrome. The invoice artifact itself is fixed English text and does not
// go through this table.
package i18n

import "strings"

var translations = map[string]map[string]string{
	"en": {
		"app_title":       "Invoice Builder",
		"invoice_details": "Invoice Details",
		"your_company":    "Your Company",
		"bill_to":         "Bill To",
		"line_items":      "Line Items",
		"add_item":        "Add Item",
		"generate_pdf":    "Generate PDF",
		"generating":      "Generating...",
		"refresh_preview": "Refresh Preview",
		"preview":         "Preview",
		"notes":           "Notes",
		"tax_rate":        "Tax Rate (%)",
		"saved_drafts":    "Saved Drafts",
		"save_draft":      "Save Draft",
		"load":            "Load",
		"delete":          "Delete",
		"required":        "Required",
		"export_failed":   "Error generating PDF. Please try again.",
		"export_busy":     "An export is already running.",
		"draft_saved":     "Draft saved.",
		"draft_loaded":    "Draft loaded.",
		"draft_deleted":   "Draft deleted.",
	},
	"fr": {
		"app_title":       "Générateur de factures",
		"invoice_details": "Détails de la facture",
		"your_company":    "Votre société",
		"bill_to":         "Facturé à",
		"line_items":      "Lignes de facturation",
		"add_item":        "Ajouter une ligne",
		"generate_pdf":    "Générer le PDF",
		"generating":      "Génération...",
		"refresh_preview": "Actualiser l'aperçu",
		"preview":         "Aperçu",
		"notes":           "Notes",
		"tax_rate":        "Taux de TVA (%)",
		"saved_drafts":    "Brouillons enregistrés",
		"save_draft":      "Enregistrer le brouillon",
		"load":            "Charger",
		"delete":          "Supprimer",
		"required":        "Requis",
		"export_failed":   "Erreur lors de la génération du PDF. Veuillez réessayer.",
		"export_busy":     "Un export est déjà en cours.",
		"draft_saved":     "Brouillon enregistré.",
		"draft_loaded":    "Brouillon chargé.",
		"draft_deleted":   "Brouillon supprimé.",
	},
}

// T translates a code for the given language. Unknown languages fall back
// to English; unknown codes fall back to the code itself so a missing
// entry is visible rather than blank.
func T(lang, code string) string {
	m, ok := translations[lang]
	if !ok {
		m = translations["en"]
	}
	if v, ok := m[code]; ok {
		return v
	}
	if v, ok := translations["en"][code]; ok {
		return v
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
// Default is English.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if tag == "" {
			continue
		}
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := translations[base]; ok {
			return base
		}
	}
	return "en"
}
