package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/interfaces"
	comparesvc "github.com/ternarybob/lexuz/internal/services/compare"
)

// CompareHandler handles comparison session HTTP requests
type CompareHandler struct {
	compare *comparesvc.Service
	logger  arbor.ILogger
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(compareService *comparesvc.Service, logger arbor.ILogger) *CompareHandler {
	return &CompareHandler{
		compare: compareService,
		logger:  logger,
	}
}

// OpenHandler handles POST /api/compare - opens a comparison session
func (h *CompareHandler) OpenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	var input comparesvc.OpenInput
	if err := ReadJSON(r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.compare.Open(input)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, session)
}

// SessionHandler handles /api/compare/{id} and its sub-resources
func (h *CompareHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/compare/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing session ID")
		return
	}
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		h.session(w, r, id)
	case "view":
		h.setView(w, r, id)
	case "comments":
		h.comments(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Unknown comparison resource")
	}
}

func (h *CompareHandler) session(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		onlyChanges := r.URL.Query().Get("only_changes") == "true"
		result, err := h.compare.Render(id, onlyChanges)
		if err != nil {
			h.writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)
	case http.MethodDelete:
		if err := h.compare.Close(id); err != nil {
			h.writeSessionError(w, err)
			return
		}
		WriteSuccess(w, "Comparison session closed")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CompareHandler) setView(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "PUT") {
		return
	}
	var input struct {
		View string `json:"view"`
	}
	if err := ReadJSON(r, &input); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.compare.SetView(id, input.View)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

func (h *CompareHandler) comments(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		comments, err := h.compare.Comments(id, r.URL.Query().Get("section"))
		if err != nil {
			h.writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, comments)
	case http.MethodPost:
		var input struct {
			SectionKey string `json:"section_key"`
			Comment    string `json:"comment"`
		}
		if err := ReadJSON(r, &input); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		comment, err := h.compare.AddComment(id, input.SectionKey, input.Comment)
		if err != nil {
			h.writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, comment)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CompareHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, comparesvc.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "Comparison session not found")
	case errors.Is(err, interfaces.ErrDocumentNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		WriteError(w, http.StatusBadRequest, err.Error())
	}
}
