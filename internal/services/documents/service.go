package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/ledger"
	"github.com/ternarybob/lexuz/internal/models"
)

// ErrRequiredSectionConfirm is returned when deleting a required section
// without confirmation
var ErrRequiredSectionConfirm = fmt.Errorf("section is required by the document template; deletion needs confirmation")

// CreateInput carries the metadata for a new document
type CreateInput struct {
	Title         string              `json:"title" validate:"required"`
	Code          string              `json:"code"`
	Type          models.DocumentType `json:"type" validate:"required,oneof=Policy Procedure Regulation"`
	Department    string              `json:"department"`
	Tags          []string            `json:"tags"`
	EffectiveDate string              `json:"effective_date"`
}

// MetadataInput carries editable document metadata for updates
type MetadataInput struct {
	Title         string                `json:"title" validate:"required"`
	Code          string                `json:"code"`
	Department    string                `json:"department"`
	Tags          []string              `json:"tags"`
	Status        models.DocumentStatus `json:"status" validate:"required,oneof=Draft 'Under Review' Active Archived"`
	EffectiveDate string                `json:"effective_date"`
}

// Service orchestrates document lifecycle operations over storage,
// recording every mutation in the audit trail
type Service struct {
	storage  interfaces.DocumentStorage
	audit    interfaces.AuditStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a new document service
func NewService(storage interfaces.DocumentStorage, audit interfaces.AuditStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		audit:    audit,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *Service) recordAudit(action, docID string, meta map[string]interface{}) {
	entry := &models.AuditEntry{
		ID:        common.NewAuditID(),
		Timestamp: time.Now(),
		Action:    action,
		DocID:     docID,
		Meta:      meta,
	}
	if err := s.audit.Append(entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("Failed to record audit entry")
	}
}

// RecordWordExport notes a successful Word export in the audit trail
func (s *Service) RecordWordExport(doc *models.Document, versionLabel string) {
	s.recordAudit(models.AuditExportWord, doc.ID, map[string]interface{}{
		"title":   doc.Title,
		"version": versionLabel,
	})
}

// Create builds a new document with an initial v1.0 version holding the
// empty required sections for its type
func (s *Service) Create(input CreateInput) (*models.Document, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:            common.NewDocumentID(),
		Code:          strings.TrimSpace(input.Code),
		Title:         strings.TrimSpace(input.Title),
		Type:          input.Type,
		Department:    strings.TrimSpace(input.Department),
		Tags:          input.Tags,
		Status:        models.StatusDraft,
		EffectiveDate: input.EffectiveDate,
		CreatedAt:     now,
		UpdatedAt:     now,
		Versions:      []models.Version{ledger.CreateInitial(input.Type)},
	}
	doc.NormalizeTags()

	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}

	s.recordAudit(models.AuditCreateDoc, doc.ID, map[string]interface{}{
		"title": doc.Title,
		"type":  doc.Type,
	})
	s.logger.Info().Str("doc_id", doc.ID).Str("title", doc.Title).Msg("Document created")
	return doc, nil
}

// CreateWithSections builds a new document whose initial version carries
// the given sections instead of the empty required template. Used by the
// Word import flow.
func (s *Service) CreateWithSections(input CreateInput, sections []models.Section) (*models.Document, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	now := time.Now()
	version := models.Version{
		ID:        common.NewVersionID(),
		Version:   "v1.0",
		CreatedAt: now,
		Sections:  sections,
	}
	doc := &models.Document{
		ID:            common.NewDocumentID(),
		Code:          strings.TrimSpace(input.Code),
		Title:         strings.TrimSpace(input.Title),
		Type:          input.Type,
		Department:    strings.TrimSpace(input.Department),
		Tags:          input.Tags,
		Status:        models.StatusDraft,
		EffectiveDate: input.EffectiveDate,
		CreatedAt:     now,
		UpdatedAt:     now,
		Versions:      []models.Version{version},
	}
	doc.NormalizeTags()

	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	s.recordAudit(models.AuditImportWord, doc.ID, map[string]interface{}{
		"title":    doc.Title,
		"sections": len(sections),
	})
	return doc, nil
}

// Get returns a document by ID
func (s *Service) Get(id string) (*models.Document, error) {
	return s.storage.GetDocument(id)
}

// List returns documents matching the filter options
func (s *Service) List(opts interfaces.ListOptions) ([]*models.Document, error) {
	return s.storage.ListDocuments(opts)
}

// Stats summarizes the library
func (s *Service) Stats() (*models.DocumentStats, error) {
	return s.storage.GetStats()
}

// UpdateMetadata replaces the document's editable metadata fields without
// touching the version history
func (s *Service) UpdateMetadata(id string, input MetadataInput) (*models.Document, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}

	doc.Title = strings.TrimSpace(input.Title)
	doc.Code = strings.TrimSpace(input.Code)
	doc.Department = strings.TrimSpace(input.Department)
	doc.Tags = input.Tags
	doc.Status = input.Status
	doc.EffectiveDate = input.EffectiveDate
	doc.NormalizeTags()

	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateSectionText replaces one section's rich text on the latest version.
// Edits accumulate on the working version until the next save snapshots them.
func (s *Service) UpdateSectionText(id, sectionKey, text string) (*models.Document, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}
	sec := doc.LatestVersion().SectionByKey(sectionKey)
	if sec == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrSectionNotFound, sectionKey)
	}
	sec.Text = text
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save snapshots the working version as a new minor version. When required
// sections are missing and backfillConfirmed is false it fails with
// *ledger.BackfillError so the caller can ask for confirmation.
func (s *Service) Save(id string, backfillConfirmed bool) (*models.Document, *models.Version, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, nil, err
	}

	version, err := ledger.Save(doc, backfillConfirmed)
	if err != nil {
		return nil, nil, err
	}

	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, nil, err
	}

	s.recordAudit(models.AuditSaveDoc, doc.ID, map[string]interface{}{
		"version": version.Version,
	})
	s.logger.Info().Str("doc_id", doc.ID).Str("version", version.Version).Msg("Document saved")
	return doc, version, nil
}

// Snapshot appends a labeled version without the backfill check
func (s *Service) Snapshot(id, note string) (*models.Document, *models.Version, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, nil, err
	}

	version := ledger.Snapshot(doc, note)
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, nil, err
	}

	s.recordAudit(models.AuditSnapshotVersion, doc.ID, map[string]interface{}{
		"version": version.Version,
		"note":    note,
	})
	return doc, version, nil
}

// Delete removes a document and records the removal
func (s *Service) Delete(id string) error {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteDocument(id); err != nil {
		return err
	}
	s.recordAudit(models.AuditDeleteDoc, id, map[string]interface{}{
		"title": doc.Title,
	})
	s.logger.Info().Str("doc_id", id).Msg("Document deleted")
	return nil
}

// AddSection appends a new empty section to the working version
func (s *Service) AddSection(id, key string) (*models.Document, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if err := ledger.AddSection(doc, key); err != nil {
		return nil, err
	}
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	s.recordAudit(models.AuditAddChapter, doc.ID, map[string]interface{}{"section": strings.TrimSpace(key)})
	return doc, nil
}

// DeleteSection removes a section from the working version. Required
// sections need explicit confirmation.
func (s *Service) DeleteSection(id, key string, confirmed bool) (*models.Document, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if ledger.IsRequired(doc.Type, key) && !confirmed {
		return nil, ErrRequiredSectionConfirm
	}
	if err := ledger.DeleteSection(doc, key); err != nil {
		return nil, err
	}
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	s.recordAudit(models.AuditDeleteChapter, doc.ID, map[string]interface{}{"section": key})
	return doc, nil
}

// RenameSection changes a section key on the working version
func (s *Service) RenameSection(id, oldKey, newKey string) (*models.Document, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}
	if err := ledger.RenameSection(doc, oldKey, newKey); err != nil {
		return nil, err
	}
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, err
	}
	s.recordAudit(models.AuditRenameChapter, doc.ID, map[string]interface{}{
		"from": oldKey,
		"to":   strings.TrimSpace(newKey),
	})
	return doc, nil
}

// InsertNumbering appends the next article label to a section and returns it
func (s *Service) InsertNumbering(id, sectionKey string) (*models.Document, string, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, "", err
	}
	label, err := ledger.InsertNumbering(doc, sectionKey)
	if err != nil {
		return nil, "", err
	}
	if err := s.storage.SaveDocument(doc); err != nil {
		return nil, "", err
	}
	return doc, label, nil
}

// Missing reports the required sections absent from the working version
func (s *Service) Missing(id string) ([]string, error) {
	doc, err := s.storage.GetDocument(id)
	if err != nil {
		return nil, err
	}
	return ledger.Missing(doc), nil
}
