package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/services/documents"
)

// APIHandler serves status, version, stats and audit endpoints
type APIHandler struct {
	documents *documents.Service
	audit     interfaces.AuditStorage
	logger    arbor.ILogger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(docService *documents.Service, audit interfaces.AuditStorage, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		documents: docService,
		audit:     audit,
		logger:    logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// StatsHandler returns library statistics
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	stats, err := h.documents.Stats()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute stats")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// AuditHandler returns the audit trail, newest first
func (h *APIHandler) AuditHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.audit.List(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list audit trail")
		WriteError(w, http.StatusInternalServerError, "Failed to list audit trail")
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
