package badger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// ListDocuments returns filtered documents ordered by most recently updated.
// Type, status and department filter on equality; the query matches title
// and tags case-insensitively.
func (s *DocumentStorage) ListDocuments(opts interfaces.ListOptions) ([]*models.Document, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(opts.Query))
	result := make([]*models.Document, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		if opts.Type != "" && doc.Type != opts.Type {
			continue
		}
		if opts.Status != "" && doc.Status != opts.Status {
			continue
		}
		if opts.Department != "" && !strings.EqualFold(doc.Department, opts.Department) {
			continue
		}
		if query != "" && !matchesQuery(doc, query) {
			continue
		}
		result = append(result, doc)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func matchesQuery(doc *models.Document, query string) bool {
	if strings.Contains(strings.ToLower(doc.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Code), query) {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Department), query) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) CountDocuments() (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) GetStats() (*models.DocumentStats, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to load documents for stats: %w", err)
	}

	stats := &models.DocumentStats{
		TotalDocuments: len(docs),
		ByType:         make(map[models.DocumentType]int),
		ByStatus:       make(map[models.DocumentStatus]int),
	}
	for i := range docs {
		stats.ByType[docs[i].Type]++
		stats.ByStatus[docs[i].Status]++
		stats.TotalVersions += len(docs[i].Versions)
		if docs[i].UpdatedAt.After(stats.LastUpdated) {
			stats.LastUpdated = docs[i].UpdatedAt
		}
	}
	return stats, nil
}

// ReplaceAll swaps the entire document set, used by library import.
// Timestamps from the imported documents are preserved as-is.
func (s *DocumentStorage) ReplaceAll(docs []*models.Document) error {
	if err := s.ClearAll(); err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document ID is required")
		}
		if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
			return fmt.Errorf("failed to store imported document: %w", err)
		}
	}
	s.logger.Info().Int("count", len(docs)).Msg("Document set replaced")
	return nil
}

func (s *DocumentStorage) ClearAll() error {
	if err := s.db.Store().DeleteMatching(&models.Document{}, nil); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}
