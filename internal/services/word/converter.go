package word

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
)

// ErrConverterMissing is returned when the pandoc binary cannot be found
var ErrConverterMissing = fmt.Errorf("pandoc not installed")

// PandocConverter implements WordConverter by shelling out to pandoc
type PandocConverter struct {
	binary string
	logger arbor.ILogger
}

// NewPandocConverter creates a converter using the configured pandoc path,
// falling back to the binary on PATH
func NewPandocConverter(config *common.WordConfig, logger arbor.ILogger) interfaces.WordConverter {
	binary := config.PandocPath
	if binary == "" {
		binary = "pandoc"
	}
	return &PandocConverter{
		binary: binary,
		logger: logger,
	}
}

// Available reports whether the pandoc binary resolves
func (c *PandocConverter) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// HTMLFromDocx converts .docx bytes to an HTML fragment. Pandoc only reads
// docx from a file, so the input goes through a temp file.
func (c *PandocConverter) HTMLFromDocx(ctx context.Context, docx []byte) (string, error) {
	if !c.Available() {
		return "", ErrConverterMissing
	}

	tmp, err := os.CreateTemp("", "lexuz-import-*.docx")
	if err != nil {
		return "", fmt.Errorf("failed to stage docx: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(docx); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to stage docx: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, c.binary,
		"-f", "docx",
		"-t", "html",
		filepath.Clean(tmp.Name()),
	)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("pandoc failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("pandoc execution failed: %w", err)
	}

	c.logger.Debug().Int("html_bytes", len(output)).Msg("Converted docx to HTML")
	return string(bytes.TrimSpace(output)), nil
}

// DocxFromHTML converts an HTML document to .docx bytes
func (c *PandocConverter) DocxFromHTML(ctx context.Context, html string) ([]byte, error) {
	if !c.Available() {
		return nil, ErrConverterMissing
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"-f", "html",
		"-t", "docx",
		"--standalone",
		"-o", "-",
	)
	cmd.Stdin = strings.NewReader(html)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("pandoc failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("pandoc execution failed: %w", err)
	}

	c.logger.Debug().Int("docx_bytes", len(output)).Msg("Converted HTML to docx")
	return output, nil
}
