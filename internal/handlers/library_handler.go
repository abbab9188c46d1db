package handlers

import (
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/services/library"
)

// LibraryHandler handles whole-library export, import and backup requests
type LibraryHandler struct {
	library *library.Service
	backup  *library.BackupService
	logger  arbor.ILogger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(libraryService *library.Service, backupService *library.BackupService, logger arbor.ILogger) *LibraryHandler {
	return &LibraryHandler{
		library: libraryService,
		backup:  backupService,
		logger:  logger,
	}
}

// ExportHandler handles GET /api/library/export - downloads the full library
func (h *LibraryHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	data, filename, err := h.library.ExportJSON()
	if err != nil {
		h.logger.Error().Err(err).Msg("Library export failed")
		WriteError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	WriteDownload(w, data, filename, "application/json")
}

// ImportHandler handles POST /api/library/import - replaces the full library
func (h *LibraryHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read import body")
		return
	}
	count, err := h.library.Import(data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"docs":   count,
	})
}

// BackupHandler handles POST /api/library/backup - writes a backup now
func (h *LibraryHandler) BackupHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	if err := h.backup.RunOnce(); err != nil {
		h.logger.Error().Err(err).Msg("Manual backup failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteSuccess(w, "Backup written")
}
