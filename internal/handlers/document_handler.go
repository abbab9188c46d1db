package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/ledger"
	"github.com/ternarybob/lexuz/internal/models"
	"github.com/ternarybob/lexuz/internal/services/documents"
	"github.com/ternarybob/lexuz/internal/services/export"
)

// DocumentHandler handles document lifecycle HTTP requests
type DocumentHandler struct {
	documents *documents.Service
	export    *export.Service
	logger    arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService *documents.Service, exportService *export.Service, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents: docService,
		export:    exportService,
		logger:    logger,
	}
}

// CollectionHandler handles /api/documents - list and create
func (h *DocumentHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := interfaces.ListOptions{
		Type:       models.DocumentType(q.Get("type")),
		Status:     models.DocumentStatus(q.Get("status")),
		Department: q.Get("department"),
		Query:      q.Get("q"),
	}
	docs, err := h.documents.List(opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	WriteJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	var input documents.CreateInput
	if err := ReadJSON(r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := h.documents.Create(input)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// ItemHandler handles /api/documents/{id} and its sub-resources
func (h *DocumentHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing document ID")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		h.item(w, r, id)
	case "save":
		h.save(w, r, id)
	case "snapshot":
		h.snapshot(w, r, id)
	case "missing":
		h.missing(w, r, id)
	case "sections":
		h.sections(w, r, id)
	case "sections/rename":
		h.renameSection(w, r, id)
	case "sections/numbering":
		h.insertNumbering(w, r, id)
	case "export":
		h.exportDocument(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Unknown document resource")
	}
}

func (h *DocumentHandler) item(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		doc, err := h.documents.Get(id)
		if err != nil {
			h.writeDocumentError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	case http.MethodPut:
		var input documents.MetadataInput
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		doc, err := h.documents.UpdateMetadata(id, input)
		if err != nil {
			h.writeDocumentError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := h.documents.Delete(id); err != nil {
			h.writeDocumentError(w, err)
			return
		}
		WriteSuccess(w, "Document deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var input struct {
		ConfirmBackfill bool `json:"confirm_backfill"`
	}
	if r.ContentLength > 0 {
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	doc, version, err := h.documents.Save(id, input.ConfirmBackfill)
	if err != nil {
		var backfill *ledger.BackfillError
		if errors.As(err, &backfill) {
			// Conflict: the client must confirm the backfill and retry
			WriteJSON(w, http.StatusConflict, map[string]interface{}{
				"status":  "backfill_required",
				"missing": backfill.Missing,
			})
			return
		}
		h.writeDocumentError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"version":  version,
	})
}

func (h *DocumentHandler) snapshot(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var input struct {
		Note string `json:"note"`
	}
	if r.ContentLength > 0 {
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	doc, version, err := h.documents.Snapshot(id, input.Note)
	if err != nil {
		h.writeDocumentError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"version":  version,
	})
}

func (h *DocumentHandler) missing(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	missing, err := h.documents.Missing(id)
	if err != nil {
		h.writeDocumentError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"missing": missing})
}

func (h *DocumentHandler) sections(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPost:
		var input struct {
			Key string `json:"key"`
		}
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		doc, err := h.documents.AddSection(id, input.Key)
		if err != nil {
			h.writeSectionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, doc)
	case http.MethodPut:
		var input struct {
			Key  string `json:"key"`
			Text string `json:"text"`
		}
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		doc, err := h.documents.UpdateSectionText(id, input.Key, input.Text)
		if err != nil {
			h.writeSectionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		key := r.URL.Query().Get("key")
		confirmed := r.URL.Query().Get("confirm") == "true"
		doc, err := h.documents.DeleteSection(id, key, confirmed)
		if err != nil {
			if errors.Is(err, documents.ErrRequiredSectionConfirm) {
				WriteJSON(w, http.StatusConflict, map[string]string{
					"status": "confirm_required",
					"error":  err.Error(),
				})
				return
			}
			h.writeSectionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) renameSection(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var input struct {
		OldKey string `json:"old_key"`
		NewKey string `json:"new_key"`
	}
	if err := ReadJSON(r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := h.documents.RenameSection(id, input.OldKey, input.NewKey)
	if err != nil {
		h.writeSectionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) insertNumbering(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var input struct {
		Key string `json:"key"`
	}
	if err := ReadJSON(r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, label, err := h.documents.InsertNumbering(id, input.Key)
	if err != nil {
		h.writeSectionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"label":    label,
	})
}

// exportDocument handles GET /api/documents/{id}/export?format=docx|markdown|pdf&version={versionID}
func (h *DocumentHandler) exportDocument(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	doc, err := h.documents.Get(id)
	if err != nil {
		h.writeDocumentError(w, err)
		return
	}

	version := doc.LatestVersion()
	if versionID := r.URL.Query().Get("version"); versionID != "" {
		version = doc.VersionByID(versionID)
		if version == nil {
			WriteError(w, http.StatusNotFound, "Version not found")
			return
		}
	}

	var result *export.Result
	wordExport := false
	switch r.URL.Query().Get("format") {
	case "", "docx":
		result, err = h.export.Docx(r.Context(), doc, version)
		wordExport = true
	case "markdown", "md":
		result, err = h.export.Markdown(doc, version)
	case "pdf":
		result, err = h.export.PDF(doc, version)
	default:
		WriteError(w, http.StatusBadRequest, "Unknown export format")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("doc_id", id).Msg("Export failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if wordExport {
		h.documents.RecordWordExport(doc, version.Version)
	}
	WriteDownload(w, result.Data, result.Filename, result.MimeType)
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, err error) {
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		WriteError(w, http.StatusNotFound, "Document not found")
		return
	}
	WriteError(w, http.StatusBadRequest, err.Error())
}

func (h *DocumentHandler) writeSectionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		WriteError(w, http.StatusNotFound, "Document not found")
	case errors.Is(err, ledger.ErrSectionNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}
