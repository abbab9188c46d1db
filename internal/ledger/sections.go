package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/lexuz/internal/models"
)

var (
	ErrBlankSectionKey  = fmt.Errorf("section name must not be blank")
	ErrSectionNotFound  = fmt.Errorf("section not found")
	ErrSectionUnchanged = fmt.Errorf("section name is unchanged")
)

// AddSection appends a new empty section to the latest version
func AddSection(doc *models.Document, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankSectionKey
	}
	latest := doc.LatestVersion()
	latest.Sections = append(latest.Sections, models.Section{Key: key})
	doc.UpdatedAt = time.Now()
	return nil
}

// DeleteSection removes a section from the latest version by key. Required
// status is advisory: callers obtain confirmation for required keys, and
// deletion proceeds once confirmed.
func DeleteSection(doc *models.Document, key string) error {
	latest := doc.LatestVersion()
	kept := latest.Sections[:0]
	found := false
	for _, s := range latest.Sections {
		if s.Key == key {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, key)
	}
	latest.Sections = kept
	doc.UpdatedAt = time.Now()
	return nil
}

// RenameSection changes a section's key in place. Renaming changes the
// section's identity for future comparisons.
func RenameSection(doc *models.Document, oldKey, newKey string) error {
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return ErrBlankSectionKey
	}
	if newKey == oldKey {
		return ErrSectionUnchanged
	}
	latest := doc.LatestVersion()
	sec := latest.SectionByKey(oldKey)
	if sec == nil {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, oldKey)
	}
	sec.Key = newKey
	doc.UpdatedAt = time.Now()
	return nil
}

var (
	leadingNumberRe  = regexp.MustCompile(`^(\d+)\.`)
	romanPrefixRe    = regexp.MustCompile(`^[IVX]+\.`)
	articleMarkerFmt = `<strong[^>]*>%d\.\d+\.</strong>`
)

// IsFrontMatter reports whether a section key names front matter (roman
// numeral prefix or table of contents) that never carries article numbering
func IsFrontMatter(key string) bool {
	upper := strings.ToUpper(strings.TrimSpace(key))
	if romanPrefixRe.MatchString(upper) {
		return true
	}
	return strings.Contains(upper, "TABLE OF CONTENT")
}

// chapterPrefix extracts the leading chapter numeral from a section key,
// defaulting to 1
func chapterPrefix(key string) int {
	if m := leadingNumberRe.FindStringSubmatch(strings.TrimSpace(key)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}

// NextArticleLabel computes the next "<chapter>.<article>." label for a
// section, counting existing markers for that chapter across all sections
// of the latest version.
func NextArticleLabel(v *models.Version, sectionKey string) string {
	chapter := chapterPrefix(sectionKey)
	markerRe := regexp.MustCompile(fmt.Sprintf(articleMarkerFmt, chapter))
	count := 0
	for _, s := range v.Sections {
		count += len(markerRe.FindAllString(s.Text, -1))
	}
	return fmt.Sprintf("%d.%d.", chapter, count+1)
}

// InsertNumbering appends the next auto-incremented article label to the
// named section's text and returns the label. Front-matter sections are
// rejected.
func InsertNumbering(doc *models.Document, sectionKey string) (string, error) {
	if IsFrontMatter(sectionKey) {
		return "", fmt.Errorf("section %q does not take article numbering", sectionKey)
	}
	latest := doc.LatestVersion()
	sec := latest.SectionByKey(sectionKey)
	if sec == nil {
		return "", fmt.Errorf("%w: %s", ErrSectionNotFound, sectionKey)
	}
	label := NextArticleLabel(latest, sectionKey)
	sec.Text += fmt.Sprintf(`<p><strong>%s</strong> </p>`, label)
	doc.UpdatedAt = time.Now()
	return label, nil
}
