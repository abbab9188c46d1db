package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/compare"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
)

// Result is a rendered export ready for download
type Result struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
}

// Service renders a document version to downloadable formats
type Service struct {
	converter interfaces.WordConverter
	logger    arbor.ILogger
}

// NewService creates a new export service
func NewService(converter interfaces.WordConverter, logger arbor.ILogger) *Service {
	return &Service{
		converter: converter,
		logger:    logger,
	}
}

var (
	// blockBreakRe marks the boundaries that become paragraph breaks in
	// the Word export: explicit line breaks and closing block tags.
	blockBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|tr|blockquote)>`)
	// numberedLineRe matches article-style labels such as "2.1. Scope"
	numberedLineRe = regexp.MustCompile(`^\d+(\.\d+)*[.)]?\s`)
)

// subheadingMax is the longest paragraph the heuristic will promote
const subheadingMax = 60

// sectionBlocks maps block and line-break tags to paragraph breaks and
// strips all other markup, one entry per non-empty paragraph
func sectionBlocks(markup string) []string {
	chunks := blockBreakRe.Split(markup, -1)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if text := compare.Normalize(chunk, compare.ModeSpaced); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// isSubheading reports whether a paragraph reads as a sub-heading:
// a short line that is numbered, written in all caps, or free of
// sentence punctuation.
func isSubheading(text string) bool {
	if len([]rune(text)) > subheadingMax {
		return false
	}
	if numberedLineRe.MatchString(text) || isAllCaps(text) {
		return true
	}
	return !strings.ContainsAny(text, ".!?")
}

func isAllCaps(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return false
			}
			hasLetter = true
		}
	}
	return hasLetter
}

// buildHTML renders a version for the Word converter: the title as h1,
// each section key as h2, and the section content as paragraphs with
// heading-like lines promoted to h3
func buildHTML(doc *models.Document, version *models.Version) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", html.EscapeString(doc.Title)))
	b.WriteString(fmt.Sprintf("<p><em>%s · %s · %s</em></p>",
		html.EscapeString(string(doc.Type)), html.EscapeString(version.Version),
		version.CreatedAt.Format("2 January 2006")))
	for _, s := range version.Sections {
		b.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(s.Key)))
		for _, block := range sectionBlocks(s.Text) {
			if isSubheading(block) {
				b.WriteString("<h3>" + block + "</h3>")
			} else {
				b.WriteString("<p>" + block + "</p>")
			}
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

// exportFilename builds a safe filename from the title, version label and date
func exportFilename(doc *models.Document, version *models.Version, ext string) string {
	base := sanitizeFilename(doc.Title)
	if base == "" {
		base = "document"
	}
	label := strings.ReplaceAll(version.Version, ".", "-")
	return fmt.Sprintf("%s-%s-%s.%s", base, label, time.Now().Format("2006-01-02"), ext)
}

// sanitizeFilename creates a safe filename from a title
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		}
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}

// Docx renders the version through the Word converter
func (s *Service) Docx(ctx context.Context, doc *models.Document, version *models.Version) (*Result, error) {
	data, err := s.converter.DocxFromHTML(ctx, buildHTML(doc, version))
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: exportFilename(doc, version, "docx"),
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}

// Markdown converts the version's HTML to markdown
func (s *Service) Markdown(doc *models.Document, version *models.Version) (*Result, error) {
	converter := md.NewConverter("", true, nil)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	b.WriteString(fmt.Sprintf("*%s · %s*\n\n", doc.Type, version.Version))
	for _, sec := range version.Sections {
		b.WriteString(fmt.Sprintf("## %s\n\n", sec.Key))
		converted, err := converter.ConvertString(sec.Text)
		if err != nil {
			s.logger.Warn().Err(err).Str("section", sec.Key).Msg("Markdown conversion failed, falling back to plain text")
			converted = compare.Normalize(sec.Text, compare.ModeSpaced)
		}
		b.WriteString(converted)
		b.WriteString("\n\n")
	}
	return &Result{
		Data:     []byte(b.String()),
		Filename: exportFilename(doc, version, "md"),
		MimeType: "text/markdown",
	}, nil
}

// PDF renders the version with section headings and flowed paragraph text
func (s *Service) PDF(doc *models.Document, version *models.Version) (*Result, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
	pdf.SetFont("Arial", "I", 10)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s · %s · %s", doc.Type, version.Version,
		version.CreatedAt.Format("2 January 2006"))), "", "L", false)
	pdf.Ln(4)

	for _, sec := range version.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(sec.Key), "", "L", false)
		pdf.SetFont("Arial", "", 10)
		text := compare.Normalize(sec.Text, compare.ModeSpaced)
		if text != "" {
			pdf.MultiCell(0, 5, tr(text), "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: exportFilename(doc, version, "pdf"),
		MimeType: "application/pdf",
	}, nil
}
