package library

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
)

// Export is the portable snapshot of the whole library
type Export struct {
	ExportedAt time.Time            `json:"exportedAt"`
	Docs       []*models.Document   `json:"docs"`
	Audit      []*models.AuditEntry `json:"audit"`
}

// Service moves the whole library in and out as a single JSON snapshot
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates a new library service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ExportFilename names an export taken at the given time
func ExportFilename(at time.Time) string {
	return fmt.Sprintf("lexuz-export-%s.json", at.Format("2006-01-02-150405"))
}

// Export snapshots every document and the audit trail
func (s *Service) Export() (*Export, error) {
	docs, err := s.storage.DocumentStorage().ListDocuments(interfaces.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to export documents: %w", err)
	}
	audit, err := s.storage.AuditStorage().List(0)
	if err != nil {
		return nil, fmt.Errorf("failed to export audit trail: %w", err)
	}
	return &Export{
		ExportedAt: time.Now(),
		Docs:       docs,
		Audit:      audit,
	}, nil
}

// ExportJSON renders the export pretty-printed for download
func (s *Service) ExportJSON() ([]byte, string, error) {
	export, err := s.Export()
	if err != nil {
		return nil, "", err
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode export: %w", err)
	}
	return data, ExportFilename(export.ExportedAt), nil
}

// Import replaces the entire library with the given snapshot. Malformed
// input is rejected before any state changes; a valid snapshot fully
// overwrites documents and the audit trail.
func (s *Service) Import(data []byte) (int, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return 0, fmt.Errorf("invalid library file: %w", err)
	}
	if export.Docs == nil {
		return 0, fmt.Errorf("invalid library file: missing docs")
	}
	for _, doc := range export.Docs {
		if doc.ID == "" || doc.Title == "" || len(doc.Versions) == 0 {
			return 0, fmt.Errorf("invalid library file: document missing id, title or versions")
		}
	}

	if err := s.storage.DocumentStorage().ReplaceAll(export.Docs); err != nil {
		return 0, err
	}
	if err := s.storage.AuditStorage().ReplaceAll(export.Audit); err != nil {
		return 0, err
	}

	entry := &models.AuditEntry{
		ID:        common.NewAuditID(),
		Timestamp: time.Now(),
		Action:    models.AuditImport,
		Meta: map[string]interface{}{
			"docs": len(export.Docs),
		},
	}
	if err := s.storage.AuditStorage().Append(entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record import in audit trail")
	}

	s.logger.Info().Int("docs", len(export.Docs)).Msg("Library imported")
	return len(export.Docs), nil
}
