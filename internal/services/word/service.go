package word

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/compare"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
	"github.com/ternarybob/lexuz/internal/services/documents"
)

// ImportedSectionKey holds the whole converted document when importing
// into a fresh document
const ImportedSectionKey = "Imported Content"

// previewLength caps the text shown for each matched fragment
const previewLength = 300

// SectionMatch maps one heading-delimited fragment of an imported Word
// document to an existing section, with a preview of the incoming text
type SectionMatch struct {
	Heading    string `json:"heading"`
	SectionKey string `json:"section_key"` // empty when no section matched
	Preview    string `json:"preview"`
	Matched    bool   `json:"matched"`
	html       string
}

// Service imports Word documents into the library
type Service struct {
	converter interfaces.WordConverter
	documents *documents.Service
	logger    arbor.ILogger
}

// NewService creates a new Word import service
func NewService(converter interfaces.WordConverter, docService *documents.Service, logger arbor.ILogger) *Service {
	return &Service{
		converter: converter,
		documents: docService,
		logger:    logger,
	}
}

// Available reports whether the underlying converter can run
func (s *Service) Available() bool {
	return s.converter.Available()
}

// ImportAsNew converts a Word document and creates a fresh library document
// whose single section holds the full converted content
func (s *Service) ImportAsNew(ctx context.Context, input documents.CreateInput, docx []byte) (*models.Document, error) {
	html, err := s.converter.HTMLFromDocx(ctx, docx)
	if err != nil {
		return nil, err
	}
	sections := []models.Section{{Key: ImportedSectionKey, Text: html}}
	doc, err := s.documents.CreateWithSections(input, sections)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("doc_id", doc.ID).Msg("Word document imported as new document")
	return doc, nil
}

// MatchSections converts a Word document and maps its heading-delimited
// fragments onto the target document's existing section keys. Nothing is
// applied; the caller shows the matches for review first.
func (s *Service) MatchSections(ctx context.Context, docID string, docx []byte) ([]SectionMatch, error) {
	doc, err := s.documents.Get(docID)
	if err != nil {
		return nil, err
	}
	html, err := s.converter.HTMLFromDocx(ctx, docx)
	if err != nil {
		return nil, err
	}

	fragments, err := splitByHeadings(html)
	if err != nil {
		return nil, err
	}

	keys := doc.LatestVersion().SectionKeys()
	matches := make([]SectionMatch, 0, len(fragments))
	for _, f := range fragments {
		match := SectionMatch{
			Heading: f.heading,
			Preview: preview(f.html),
			html:    f.html,
		}
		if key, ok := bestSectionKey(f.heading, keys); ok {
			match.SectionKey = key
			match.Matched = true
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// ApplyMatches writes each matched fragment's content into its section on
// the working version. Unmatched fragments are skipped. Returns the number
// of sections updated.
func (s *Service) ApplyMatches(docID string, matches []SectionMatch) (int, error) {
	applied := 0
	for _, m := range matches {
		if !m.Matched || m.SectionKey == "" {
			continue
		}
		if _, err := s.documents.UpdateSectionText(docID, m.SectionKey, m.html); err != nil {
			return applied, err
		}
		applied++
	}
	s.logger.Info().Str("doc_id", docID).Int("sections", applied).Msg("Word import applied to sections")
	return applied, nil
}

type fragment struct {
	heading string
	html    string
}

// splitByHeadings carves an HTML document into fragments at h1-h3
// boundaries. Content before the first heading becomes a fragment with an
// empty heading.
func splitByHeadings(html string) ([]fragment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse converted document: %w", err)
	}

	var fragments []fragment
	current := fragment{}
	flush := func() {
		if strings.TrimSpace(current.heading) != "" || strings.TrimSpace(current.html) != "" {
			fragments = append(fragments, current)
		}
	}

	doc.Find("body").Children().Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) == "h1" || goquery.NodeName(sel) == "h2" || goquery.NodeName(sel) == "h3" {
			flush()
			current = fragment{heading: strings.TrimSpace(sel.Text())}
			return
		}
		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}
		current.html += outer
	})
	flush()

	if len(fragments) == 0 {
		// No structure at all: treat the whole input as one fragment
		fragments = append(fragments, fragment{html: html})
	}
	return fragments, nil
}

// bestSectionKey scores a heading against the section keys by word overlap
// and returns the best-scoring key. A zero score means no match.
func bestSectionKey(heading string, keys []string) (string, bool) {
	headingWords := keywordSet(heading)
	if len(headingWords) == 0 {
		return "", false
	}

	bestKey := ""
	bestScore := 0
	for _, key := range keys {
		score := 0
		for word := range keywordSet(key) {
			if headingWords[word] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}
	return bestKey, bestScore > 0
}

// keywordSet lowercases and tokenizes a label, dropping numbering prefixes
// and short connective words
func keywordSet(s string) map[string]bool {
	words := strings.Fields(compare.Fold(s))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,:;()")
		if len(w) < 3 {
			continue
		}
		switch w {
		case "the", "and", "for", "with":
			continue
		}
		set[w] = true
	}
	return set
}

// preview strips markup and truncates to the display length. Truncation
// counts runes so multibyte text is never split mid-character.
func preview(html string) string {
	text := compare.Normalize(html, compare.ModeSpaced)
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "…"
}
