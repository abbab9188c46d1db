package ledger

import "github.com/ternarybob/lexuz/internal/models"

// requiredSections is the canonical section template per document type.
// The lists are identical today; keeping them per-type means a future
// divergence is a data change, not a redesign.
var requiredSections = map[models.DocumentType][]string{
	models.TypePolicy:     canonicalSections,
	models.TypeProcedure:  canonicalSections,
	models.TypeRegulation: canonicalSections,
}

var canonicalSections = []string{
	"I. ABBREVIATIONS",
	"II. DOCUMENT IDENTIFICATION",
	"III. DEFINITION OF BUSINESS ACTIVITY",
	"IV. ASSOCIATED INTERNAL RULES AND EXTERNAL REGULATIONS",
	"V. REVISION HISTORY OF DOCUMENT VERSION",
	"Table of Content",
	"1. Introduction",
	"2. Chapter I",
	"3. Chapter II",
	"4. Chapter III",
	"5. Chapter IV",
	"6. Chapter V",
	"7. Attachments",
	"8. Appendix",
}

// RequiredKeys returns the ordered required-section keys for a document
// type. The returned slice is a copy.
func RequiredKeys(docType models.DocumentType) []string {
	keys, ok := requiredSections[docType]
	if !ok {
		keys = requiredSections[models.TypePolicy]
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// IsRequired reports whether the key belongs to the type's required set
func IsRequired(docType models.DocumentType, key string) bool {
	for _, k := range RequiredKeys(docType) {
		if k == key {
			return true
		}
	}
	return false
}
