package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
	"github.com/ternarybob/lexuz/internal/services/documents"
	"github.com/ternarybob/lexuz/internal/services/word"
)

// WordHandler handles Word document import HTTP requests
type WordHandler struct {
	word   *word.Service
	logger arbor.ILogger
}

// NewWordHandler creates a new Word import handler
func NewWordHandler(wordService *word.Service, logger arbor.ILogger) *WordHandler {
	return &WordHandler{
		word:   wordService,
		logger: logger,
	}
}

// readUpload extracts the uploaded .docx bytes from a multipart form
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file field")
	}
	defer file.Close()
	return io.ReadAll(file)
}

// ImportHandler handles POST /api/word/import and POST /api/word/import/{docID}.
// Without a document ID the upload becomes a new document holding the full
// converted content. With one, heading fragments are matched against the
// document's sections; pass apply=true to write the matched content.
func (h *WordHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	if !h.word.Available() {
		WriteError(w, http.StatusServiceUnavailable, "Word conversion is unavailable: pandoc not installed")
		return
	}

	docID := strings.TrimPrefix(r.URL.Path, "/api/word/import")
	docID = strings.Trim(docID, "/")

	docx, err := readUpload(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if docID == "" {
		h.importAsNew(w, r, docx)
		return
	}
	h.importIntoExisting(w, r, docID, docx)
}

func (h *WordHandler) importAsNew(w http.ResponseWriter, r *http.Request, docx []byte) {
	input := documents.CreateInput{
		Title: strings.TrimSpace(r.FormValue("title")),
		Type:  models.DocumentType(r.FormValue("type")),
	}
	if input.Title == "" {
		input.Title = "Imported Word Document"
	}
	if input.Type == "" {
		input.Type = models.TypePolicy
	}

	doc, err := h.word.ImportAsNew(r.Context(), input, docx)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

func (h *WordHandler) importIntoExisting(w http.ResponseWriter, r *http.Request, docID string, docx []byte) {
	matches, err := h.word.MatchSections(r.Context(), docID, docx)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	matched := 0
	for _, m := range matches {
		if m.Matched {
			matched++
		}
	}
	if matched == 0 {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "no_match",
			"message": "no matching section found",
			"matches": matches,
		})
		return
	}

	if r.FormValue("apply") != "true" {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "preview",
			"matches": matches,
		})
		return
	}

	applied, err := h.word.ApplyMatches(docID, matches)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "applied",
		"applied": applied,
		"matches": matches,
	})
}
