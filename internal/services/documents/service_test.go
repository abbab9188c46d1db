package documents

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/ledger"
	"github.com/ternarybob/lexuz/internal/models"
)

// memoryDocumentStorage is an in-memory DocumentStorage for service tests
type memoryDocumentStorage struct {
	docs map[string]*models.Document
}

func newMemoryDocumentStorage() *memoryDocumentStorage {
	return &memoryDocumentStorage{docs: make(map[string]*models.Document)}
}

func (m *memoryDocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	clone := *doc
	m.docs[doc.ID] = &clone
	return nil
}

func (m *memoryDocumentStorage) GetDocument(id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
	}
	clone := *doc
	return &clone, nil
}

func (m *memoryDocumentStorage) ListDocuments(opts interfaces.ListOptions) ([]*models.Document, error) {
	out := make([]*models.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		if opts.Type != "" && doc.Type != opts.Type {
			continue
		}
		if opts.Status != "" && doc.Status != opts.Status {
			continue
		}
		if opts.Query != "" && !strings.Contains(strings.ToLower(doc.Title), strings.ToLower(opts.Query)) {
			continue
		}
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryDocumentStorage) DeleteDocument(id string) error {
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, id)
	}
	delete(m.docs, id)
	return nil
}

func (m *memoryDocumentStorage) CountDocuments() (int, error) { return len(m.docs), nil }

func (m *memoryDocumentStorage) GetStats() (*models.DocumentStats, error) {
	stats := &models.DocumentStats{
		TotalDocuments: len(m.docs),
		ByType:         make(map[models.DocumentType]int),
		ByStatus:       make(map[models.DocumentStatus]int),
	}
	for _, doc := range m.docs {
		stats.ByType[doc.Type]++
		stats.ByStatus[doc.Status]++
		stats.TotalVersions += len(doc.Versions)
	}
	return stats, nil
}

func (m *memoryDocumentStorage) ReplaceAll(docs []*models.Document) error {
	m.docs = make(map[string]*models.Document, len(docs))
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
	return nil
}

func (m *memoryDocumentStorage) ClearAll() error {
	m.docs = make(map[string]*models.Document)
	return nil
}

// memoryAuditStorage records appended entries for assertions
type memoryAuditStorage struct {
	entries []*models.AuditEntry
}

func (m *memoryAuditStorage) Append(entry *models.AuditEntry) error {
	m.entries = append(m.entries, entry)
	if len(m.entries) > models.MaxAuditEntries {
		m.entries = m.entries[len(m.entries)-models.MaxAuditEntries:]
	}
	return nil
}

func (m *memoryAuditStorage) List(limit int) ([]*models.AuditEntry, error) {
	out := make([]*models.AuditEntry, len(m.entries))
	for i := range m.entries {
		out[i] = m.entries[len(m.entries)-1-i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAuditStorage) ReplaceAll(entries []*models.AuditEntry) error {
	m.entries = entries
	return nil
}

func (m *memoryAuditStorage) Count() (int, error) { return len(m.entries), nil }

func (m *memoryAuditStorage) ClearAll() error {
	m.entries = nil
	return nil
}

func (m *memoryAuditStorage) lastAction() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Action
}

func newTestService(t *testing.T) (*Service, *memoryDocumentStorage, *memoryAuditStorage) {
	t.Helper()
	storage := newMemoryDocumentStorage()
	audit := &memoryAuditStorage{}
	return NewService(storage, audit, arbor.NewLogger()), storage, audit
}

func TestCreateDocument(t *testing.T) {
	svc, _, audit := newTestService(t)

	doc, err := svc.Create(CreateInput{
		Title: "Remote Work Policy",
		Type:  models.TypePolicy,
		Tags:  []string{"hr", " hr ", "", "remote"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.ID, "doc_"))
	assert.Equal(t, models.StatusDraft, doc.Status)
	require.Len(t, doc.Versions, 1)
	assert.Equal(t, "v1.0", doc.Versions[0].Version)
	assert.Len(t, doc.Versions[0].Sections, 14)
	assert.Equal(t, []string{"hr", "remote"}, doc.Tags)
	assert.Equal(t, models.AuditCreateDoc, audit.lastAction())
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(CreateInput{Title: "", Type: models.TypePolicy})
	assert.Error(t, err, "blank title must be rejected")

	_, err = svc.Create(CreateInput{Title: "X", Type: models.DocumentType("Memo")})
	assert.Error(t, err, "unknown type must be rejected")
}

func TestSaveRecordsVersionAndAudit(t *testing.T) {
	svc, _, audit := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Backup Procedure", Type: models.TypeProcedure})
	require.NoError(t, err)

	updated, version, err := svc.Save(doc.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "v1.1", version.Version)
	assert.Len(t, updated.Versions, 2)
	assert.Equal(t, models.AuditSaveDoc, audit.lastAction())

	// The persisted copy carries the new version too
	stored, err := svc.Get(doc.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Versions, 2)
}

func TestSaveRequiresBackfillConfirmation(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Data Policy", Type: models.TypePolicy})
	require.NoError(t, err)

	_, err = svc.DeleteSection(doc.ID, "8. Appendix", true)
	require.NoError(t, err)

	_, _, err = svc.Save(doc.ID, false)
	var backfill *ledger.BackfillError
	require.ErrorAs(t, err, &backfill)
	assert.Equal(t, []string{"8. Appendix"}, backfill.Missing)

	stored, _ := svc.Get(doc.ID)
	assert.Len(t, stored.Versions, 1, "declined save must not append a version")

	_, version, err := svc.Save(doc.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "v1.1", version.Version)
	missing, err := svc.Missing(doc.ID)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestDeleteSectionRequiredNeedsConfirmation(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Retention Regulation", Type: models.TypeRegulation})
	require.NoError(t, err)

	_, err = svc.DeleteSection(doc.ID, "Table of Content", false)
	assert.True(t, errors.Is(err, ErrRequiredSectionConfirm))

	_, err = svc.DeleteSection(doc.ID, "Table of Content", true)
	assert.NoError(t, err)

	// Custom sections delete without confirmation
	_, err = svc.AddSection(doc.ID, "9. Transitional Provisions")
	require.NoError(t, err)
	_, err = svc.DeleteSection(doc.ID, "9. Transitional Provisions", false)
	assert.NoError(t, err)
}

func TestUpdateSectionTextAccumulatesOnWorkingVersion(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Access Policy", Type: models.TypePolicy})
	require.NoError(t, err)

	_, err = svc.UpdateSectionText(doc.ID, "1. Introduction", "<p>first edit</p>")
	require.NoError(t, err)
	_, err = svc.UpdateSectionText(doc.ID, "1. Introduction", "<p>second edit</p>")
	require.NoError(t, err)

	stored, _ := svc.Get(doc.ID)
	assert.Len(t, stored.Versions, 1, "edits must not create versions")
	assert.Equal(t, "<p>second edit</p>", stored.LatestVersion().SectionByKey("1. Introduction").Text)

	_, err = svc.UpdateSectionText(doc.ID, "Nonexistent", "<p>x</p>")
	assert.True(t, errors.Is(err, ledger.ErrSectionNotFound))
}

func TestInsertNumberingThroughService(t *testing.T) {
	svc, _, _ := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Ops Procedure", Type: models.TypeProcedure})
	require.NoError(t, err)

	_, label, err := svc.InsertNumbering(doc.ID, "3. Chapter II")
	require.NoError(t, err)
	assert.Equal(t, "3.1.", label)

	_, label, err = svc.InsertNumbering(doc.ID, "3. Chapter II")
	require.NoError(t, err)
	assert.Equal(t, "3.2.", label)
}

func TestDeleteDocument(t *testing.T) {
	svc, _, audit := newTestService(t)
	doc, err := svc.Create(CreateInput{Title: "Old Policy", Type: models.TypePolicy})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(doc.ID))
	assert.Equal(t, models.AuditDeleteDoc, audit.lastAction())

	_, err = svc.Get(doc.ID)
	assert.True(t, errors.Is(err, interfaces.ErrDocumentNotFound))
}
