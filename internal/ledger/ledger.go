package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/models"
)

// BackfillError is returned by Save when required sections are missing and
// the caller has not confirmed the backfill. Declining leaves the document
// untouched.
type BackfillError struct {
	Missing []string
}

func (e *BackfillError) Error() string {
	return fmt.Sprintf("missing required sections: %s", strings.Join(e.Missing, ", "))
}

// CreateInitial builds the v1.0 version for a new document: the type's
// required-section template with empty text.
func CreateInitial(docType models.DocumentType) models.Version {
	keys := RequiredKeys(docType)
	sections := make([]models.Section, len(keys))
	for i, k := range keys {
		sections[i] = models.Section{Key: k}
	}
	return models.Version{
		ID:        common.NewVersionID(),
		Version:   "v1.0",
		CreatedAt: time.Now(),
		Sections:  sections,
	}
}

// NextLabel derives the next version label from the current one. The major
// segment is carried over unchanged; the minor segment increments by one,
// defaulting to 0 when unparsable.
func NextLabel(current string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(current), "v")
	if trimmed == "" {
		trimmed = "1.0"
	}
	parts := strings.Split(trimmed, ".")

	major := 1
	if n, err := strconv.Atoi(parts[0]); err == nil {
		major = n
	}
	minor := 0
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			minor = n
		}
	}
	return fmt.Sprintf("v%d.%d", major, minor+1)
}

// Snapshot appends a clone of the latest version's sections with a bumped
// minor version and the given note. Section content is untouched.
func Snapshot(doc *models.Document, note string) *models.Version {
	current := doc.LatestVersion()
	clone := models.Version{
		ID:        common.NewVersionID(),
		Version:   NextLabel(current.Version),
		Note:      note,
		CreatedAt: time.Now(),
		Sections:  current.CloneSections(),
	}
	doc.Versions = append(doc.Versions, clone)
	doc.UpdatedAt = time.Now()
	return doc.LatestVersion()
}

// Missing returns the required keys absent from the latest version, in
// template order
func Missing(doc *models.Document) []string {
	latest := doc.LatestVersion()
	present := make(map[string]bool, len(latest.Sections))
	for _, s := range latest.Sections {
		present[s.Key] = true
	}
	var missing []string
	for _, k := range RequiredKeys(doc.Type) {
		if !present[k] {
			missing = append(missing, k)
		}
	}
	return missing
}

// AddMissing appends an empty section for each missing required key to the
// latest version, after the existing sections. Existing section text is
// never altered.
func AddMissing(doc *models.Document) {
	latest := doc.LatestVersion()
	for _, k := range Missing(doc) {
		latest.Sections = append(latest.Sections, models.Section{Key: k})
	}
}

// Save commits the current edit state as a new version. When required
// sections are missing, the caller must have confirmed the backfill;
// otherwise a BackfillError is returned and nothing changes. A successful
// save always appends a new version, even without edits.
func Save(doc *models.Document, backfillConfirmed bool) (*models.Version, error) {
	if missing := Missing(doc); len(missing) > 0 {
		if !backfillConfirmed {
			return nil, &BackfillError{Missing: missing}
		}
		AddMissing(doc)
	}
	return Snapshot(doc, ""), nil
}
