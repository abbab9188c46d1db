package interfaces

import (
	"errors"

	"github.com/ternarybob/lexuz/internal/models"
)

// ErrDocumentNotFound is returned when a document ID does not resolve
var ErrDocumentNotFound = errors.New("document not found")

// ListOptions narrows document listings. Zero values mean no filter.
type ListOptions struct {
	Type       models.DocumentType
	Status     models.DocumentStatus
	Department string
	Query      string // case-insensitive match against title and tags
}

// DocumentStorage - interface for document persistence
type DocumentStorage interface {
	// Document operations
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocuments(opts ListOptions) ([]*models.Document, error)
	DeleteDocument(id string) error
	CountDocuments() (int, error)
	GetStats() (*models.DocumentStats, error)

	// Bulk operations
	ReplaceAll(docs []*models.Document) error
	ClearAll() error
}

// AuditStorage - interface for the audit trail. Entries are capped at
// models.MaxAuditEntries; appending beyond the cap evicts the oldest.
type AuditStorage interface {
	Append(entry *models.AuditEntry) error
	List(limit int) ([]*models.AuditEntry, error) // newest first
	ReplaceAll(entries []*models.AuditEntry) error
	Count() (int, error)
	ClearAll() error
}

// KeyValueStorage defines operations for generic key/value storage
// (app settings, last-backup markers)
type KeyValueStorage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ErrKeyNotFound is returned when a key is not found in the key/value store
var ErrKeyNotFound = errors.New("key not found")

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	DocumentStorage() DocumentStorage
	AuditStorage() AuditStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
