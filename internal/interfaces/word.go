package interfaces

import "context"

// WordConverter converts between Word documents and HTML. Implementations
// shell out to an external converter, so every call takes a context.
type WordConverter interface {
	// HTMLFromDocx converts .docx bytes to an HTML fragment
	HTMLFromDocx(ctx context.Context, docx []byte) (string, error)

	// DocxFromHTML converts an HTML document to .docx bytes
	DocxFromHTML(ctx context.Context, html string) ([]byte, error)

	// Available reports whether the underlying converter binary can be run
	Available() bool
}
