package badger

import (
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AuditStorage implements the AuditStorage interface for Badger.
// The trail is capped at models.MaxAuditEntries; appends beyond the cap
// evict the oldest entries.
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AuditStorage) Append(entry *models.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = common.NewAuditID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return s.evictOverCap()
}

// evictOverCap removes the oldest entries beyond the retention cap
func (s *AuditStorage) evictOverCap() error {
	entries, err := s.loadAll()
	if err != nil {
		return err
	}
	excess := len(entries) - models.MaxAuditEntries
	if excess <= 0 {
		return nil
	}
	// loadAll sorts newest first, so the tail holds the oldest entries
	for _, old := range entries[len(entries)-excess:] {
		if err := s.db.Store().Delete(old.ID, &models.AuditEntry{}); err != nil && err != badgerhold.ErrNotFound {
			return fmt.Errorf("failed to evict audit entry: %w", err)
		}
	}
	return nil
}

func (s *AuditStorage) loadAll() ([]*models.AuditEntry, error) {
	var entries []models.AuditEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to load audit entries: %w", err)
	}
	result := make([]*models.AuditEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// List returns audit entries newest first, up to limit (0 means all)
func (s *AuditStorage) List(limit int) ([]*models.AuditEntry, error) {
	entries, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ReplaceAll swaps the entire audit trail, used by library import
func (s *AuditStorage) ReplaceAll(entries []*models.AuditEntry) error {
	if err := s.ClearAll(); err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = common.NewAuditID()
		}
		if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
			return fmt.Errorf("failed to store imported audit entry: %w", err)
		}
	}
	return s.evictOverCap()
}

func (s *AuditStorage) Count() (int, error) {
	count, err := s.db.Store().Count(&models.AuditEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return int(count), nil
}

func (s *AuditStorage) ClearAll() error {
	if err := s.db.Store().DeleteMatching(&models.AuditEntry{}, nil); err != nil {
		return fmt.Errorf("failed to clear audit trail: %w", err)
	}
	return nil
}
