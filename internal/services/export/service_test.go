package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/models"
)

type stubConverter struct {
	lastHTML string
}

func (c *stubConverter) HTMLFromDocx(context.Context, []byte) (string, error) { return "", nil }
func (c *stubConverter) DocxFromHTML(_ context.Context, html string) ([]byte, error) {
	c.lastHTML = html
	return []byte("docx-bytes"), nil
}
func (c *stubConverter) Available() bool { return true }

func exportFixture() (*models.Document, *models.Version) {
	version := &models.Version{
		ID:        "ver_1",
		Version:   "v1.2",
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Sections: []models.Section{
			{Key: "1. Introduction", Text: "<p>This policy governs <strong>remote</strong> work.</p>"},
			{Key: "2. Scope", Text: ""},
		},
	}
	doc := &models.Document{
		ID:       "doc_1",
		Title:    "Remote Work Policy",
		Type:     models.TypePolicy,
		Versions: []models.Version{*version},
	}
	return doc, version
}

func TestDocxExport(t *testing.T) {
	converter := &stubConverter{}
	service := NewService(converter, arbor.NewLogger())
	doc, version := exportFixture()

	result, err := service.Docx(context.Background(), doc, version)
	require.NoError(t, err)

	assert.Equal(t, []byte("docx-bytes"), result.Data)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Filename, "Remote-Work-Policy-v1-2-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".docx"))

	// The rendered HTML carries title, metadata and section headings;
	// inline markup is stripped down to paragraph text
	assert.Contains(t, converter.lastHTML, "<h1>Remote Work Policy</h1>")
	assert.Contains(t, converter.lastHTML, "v1.2")
	assert.Contains(t, converter.lastHTML, "<h2>1. Introduction</h2>")
	assert.Contains(t, converter.lastHTML, "<p>This policy governs remote work.</p>")
	assert.NotContains(t, converter.lastHTML, "<strong>")
}

func TestDocxExportPromotesSubheadings(t *testing.T) {
	converter := &stubConverter{}
	service := NewService(converter, arbor.NewLogger())
	doc, version := exportFixture()
	version.Sections = []models.Section{{
		Key: "3. Chapter I",
		Text: "<p>2.1. Definitions</p>" +
			"<p>Terms used throughout this document.</p>" +
			"<p>IMPORTANT NOTICE</p>" +
			"<p>First line.<br>Second line.</p>",
	}}

	_, err := service.Docx(context.Background(), doc, version)
	require.NoError(t, err)

	assert.Contains(t, converter.lastHTML, "<h3>2.1. Definitions</h3>")
	assert.Contains(t, converter.lastHTML, "<h3>IMPORTANT NOTICE</h3>")
	assert.Contains(t, converter.lastHTML, "<p>Terms used throughout this document.</p>")
	// Line breaks become separate paragraphs
	assert.Contains(t, converter.lastHTML, "<p>First line.</p><p>Second line.</p>")
}

func TestMarkdownExport(t *testing.T) {
	service := NewService(&stubConverter{}, arbor.NewLogger())
	doc, version := exportFixture()

	result, err := service.Markdown(doc, version)
	require.NoError(t, err)

	md := string(result.Data)
	assert.Contains(t, md, "# Remote Work Policy")
	assert.Contains(t, md, "## 1. Introduction")
	assert.Contains(t, md, "**remote**")
	assert.NotContains(t, md, "<p>")
	assert.Equal(t, "text/markdown", result.MimeType)
	assert.True(t, strings.HasSuffix(result.Filename, ".md"))
}

func TestPDFExport(t *testing.T) {
	service := NewService(&stubConverter{}, arbor.NewLogger())
	doc, version := exportFixture()

	result, err := service.PDF(doc, version)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", result.MimeType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Remote Work Policy", "Remote-Work-Policy"},
		{"Q3/Q4 Review: Final!", "Q3Q4-Review-Final"},
		{"data_retention-2026", "data_retention-2026"},
		{"///", ""},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.title), tt.title)
	}
}

func TestExportFilenameFallsBackForEmptyTitle(t *testing.T) {
	doc := &models.Document{Title: "///"}
	version := &models.Version{Version: "v2.0"}

	name := exportFilename(doc, version, "pdf")
	assert.True(t, strings.HasPrefix(name, "document-v2-0-"))
}
