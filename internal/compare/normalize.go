package compare

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Mode selects how aggressively section text is normalized before
// comparison. Each comparison view uses exactly one mode for both its
// status classification and its diff highlighting.
type Mode int

const (
	// ModeSpaced strips markup and collapses whitespace runs to single
	// spaces. Used by the inline diff view.
	ModeSpaced Mode = iota
	// ModeCompact additionally treats underscores and hyphens as
	// whitespace and then removes all spacing entirely, so the
	// comparative table ignores every spacing difference.
	ModeCompact
)

var (
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	namedEntityRe = regexp.MustCompile(`&[a-zA-Z][a-zA-Z0-9]*;`)
	spaceRe       = regexp.MustCompile(`\s+`)
	softBreakRe   = regexp.MustCompile(`[_-]+`)
)

// entityDecoder handles the named character references editors commonly
// emit, in a single pass so decoded text is never re-decoded. Anything
// else named collapses to a single space so that stray references never
// register as content.
var entityDecoder = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&hellip;", "…",
)

// angleEscaper re-escapes literal angle brackets left by entity decoding
// or the HTML parser. Without it, normalized output could contain text
// that a second normalization pass would re-parse as tags.
var angleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Normalize strips markup and whitespace noise from rich-text section
// content, producing comparable plain text. Case is preserved; use Fold
// for equality checks.
func Normalize(markup string, mode Mode) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	text := stripMarkup(markup)

	text = entityDecoder.Replace(text)
	text = namedEntityRe.ReplaceAllString(text, " ")
	text = angleEscaper.Replace(text)
	text = strings.ReplaceAll(text, " ", " ")

	if mode == ModeCompact {
		text = softBreakRe.ReplaceAllString(text, " ")
	}

	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	if mode == ModeCompact {
		text = strings.ReplaceAll(text, " ", "")
	}

	return text
}

// Fold lower-cases text for equality classification. Displayed text keeps
// its original casing.
func Fold(s string) string {
	return strings.ToLower(s)
}

// stripMarkup removes HTML tags from the input, preferring a real parse
// over the regex fallback so malformed attribute values cannot leak tag
// fragments into the comparison.
func stripMarkup(markup string) string {
	if !strings.Contains(markup, "<") {
		return markup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return tagRe.ReplaceAllString(markup, " ")
	}
	// Block-level boundaries become spaces, not concatenated words.
	var sb strings.Builder
	doc.Find("body").Contents().Each(func(_ int, sel *goquery.Selection) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(sel.Text())
	})
	if sb.Len() == 0 {
		return doc.Text()
	}
	return sb.String()
}
