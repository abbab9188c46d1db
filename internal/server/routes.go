package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - status
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/stats", s.app.APIHandler.StatsHandler)
	mux.HandleFunc("/api/audit", s.app.APIHandler.AuditHandler)

	// API routes - documents and their sections, versions, exports
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.ItemHandler)      // /{id}[/save|snapshot|missing|sections|export]

	// API routes - comparison sessions
	mux.HandleFunc("/api/compare", s.app.CompareHandler.OpenHandler)     // POST (open session)
	mux.HandleFunc("/api/compare/", s.app.CompareHandler.SessionHandler) // /{id}[/view|comments]

	// API routes - whole-library transfer
	mux.HandleFunc("/api/library/export", s.app.LibraryHandler.ExportHandler)
	mux.HandleFunc("/api/library/import", s.app.LibraryHandler.ImportHandler)
	mux.HandleFunc("/api/library/backup", s.app.LibraryHandler.BackupHandler)

	// API routes - Word import
	mux.HandleFunc("/api/word/import", s.app.WordHandler.ImportHandler)
	mux.HandleFunc("/api/word/import/", s.app.WordHandler.ImportHandler)

	// Everything else is a JSON 404
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
