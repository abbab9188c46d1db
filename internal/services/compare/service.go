package compare

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/compare"
	"github.com/ternarybob/lexuz/internal/interfaces"
	"github.com/ternarybob/lexuz/internal/models"
)

// ErrSessionNotFound is returned when a comparison session ID does not resolve
var ErrSessionNotFound = fmt.Errorf("comparison session not found")

// Session is one live comparison between two document versions. Comments
// attached to a session vanish with it; they are never persisted.
type Session struct {
	ID         string           `json:"id"`
	DocAID     string           `json:"doc_a_id"`
	DocBID     string           `json:"doc_b_id"`
	VersionAID string           `json:"version_a_id"`
	VersionBID string           `json:"version_b_id"`
	View       compare.View     `json:"view"`
	CreatedAt  time.Time        `json:"created_at"`
	Comments   []models.Comment `json:"comments"`
}

// Result is the rendered comparison for a session. In the inline view
// each changed row carries a word-level edit script under Diffs, keyed by
// section; in the table view row text is truncated to a preview.
type Result struct {
	Session  *Session                 `json:"session"`
	LabelA   string                   `json:"label_a"`
	LabelB   string                   `json:"label_b"`
	Rows     []models.ComparisonRow   `json:"rows"`
	Diffs    map[string][]compare.Run `json:"diffs,omitempty"`
	Summary  models.ComparisonSummary `json:"summary"`
	Filtered bool                     `json:"filtered"`
}

// tableCellLength caps the text shown per cell in the comparative table
const tableCellLength = 100

// OpenInput selects the two sides of a comparison. Version IDs are
// optional: side A defaults to its document's oldest version, side B to
// its document's latest.
type OpenInput struct {
	DocAID     string `json:"doc_a_id"`
	DocBID     string `json:"doc_b_id"`
	VersionAID string `json:"version_a_id"`
	VersionBID string `json:"version_b_id"`
	View       string `json:"view"`
}

// Service manages in-memory comparison sessions over stored documents
type Service struct {
	storage  interfaces.DocumentStorage
	logger   arbor.ILogger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a new comparison service
func NewService(storage interfaces.DocumentStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

func parseView(raw string) (compare.View, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "inline":
		return compare.ViewInline, nil
	case "table":
		return compare.ViewTable, nil
	default:
		return compare.ViewInline, fmt.Errorf("unknown comparison view: %s", raw)
	}
}

// Open creates a comparison session. The same document may appear on both
// sides to compare two of its versions.
func (s *Service) Open(input OpenInput) (*Session, error) {
	view, err := parseView(input.View)
	if err != nil {
		return nil, err
	}

	docA, err := s.storage.GetDocument(input.DocAID)
	if err != nil {
		return nil, err
	}
	// An unset B side compares two versions of the same document.
	docBID := input.DocBID
	if docBID == "" {
		docBID = input.DocAID
	}
	docB, err := s.storage.GetDocument(docBID)
	if err != nil {
		return nil, err
	}

	versionAID := input.VersionAID
	if versionAID == "" {
		// Oldest version on the left by default
		versionAID = docA.Versions[0].ID
	}
	versionBID := input.VersionBID
	if versionBID == "" {
		versionBID = docB.LatestVersion().ID
	}
	if docA.VersionByID(versionAID) == nil {
		return nil, fmt.Errorf("version %s not found in document %s", versionAID, docA.ID)
	}
	if docB.VersionByID(versionBID) == nil {
		return nil, fmt.Errorf("version %s not found in document %s", versionBID, docB.ID)
	}

	session := &Session{
		ID:         common.NewSessionID(),
		DocAID:     docA.ID,
		DocBID:     docB.ID,
		VersionAID: versionAID,
		VersionBID: versionBID,
		View:       view,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("doc_a", docA.ID).
		Str("doc_b", docB.ID).
		Msg("Comparison session opened")
	return session, nil
}

// Get returns a session by ID
func (s *Service) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// SetView switches the session between the inline and table views.
// Classification follows the view's normalization mode, so rows may change
// status when the view changes.
func (s *Service) SetView(id, rawView string) (*Session, error) {
	view, err := parseView(rawView)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.View = view
	return session, nil
}

// Render computes the comparison rows for a session. The summary always
// covers the full row set even when onlyChanges narrows the rows returned.
func (s *Service) Render(id string, onlyChanges bool) (*Result, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	docA, err := s.storage.GetDocument(session.DocAID)
	if err != nil {
		return nil, err
	}
	docB, err := s.storage.GetDocument(session.DocBID)
	if err != nil {
		return nil, err
	}
	versionA := docA.VersionByID(session.VersionAID)
	versionB := docB.VersionByID(session.VersionBID)
	if versionA == nil || versionB == nil {
		return nil, fmt.Errorf("session %s references a version that no longer exists", id)
	}

	rows := compare.Align(versionA.Sections, versionB.Sections, session.View)
	summary := compare.Summarize(rows)

	result := &Result{
		Session: session,
		LabelA:  fmt.Sprintf("%s %s", docA.Title, versionA.Version),
		LabelB:  fmt.Sprintf("%s %s", docB.Title, versionB.Version),
		Rows:    rows,
		Summary: summary,
	}
	if onlyChanges {
		result.Rows = compare.Changed(rows)
		result.Filtered = true
	}

	switch session.View {
	case compare.ViewInline:
		// Word-level highlighting for changed rows, over the same
		// normalization that classified them
		result.Diffs = make(map[string][]compare.Run)
		for _, row := range result.Rows {
			if row.Status != models.RowChanged {
				continue
			}
			before := compare.Normalize(row.Before, compare.ModeSpaced)
			after := compare.Normalize(row.After, compare.ModeSpaced)
			result.Diffs[row.Section] = compare.DiffWords(before, after)
		}
	case compare.ViewTable:
		for i := range result.Rows {
			result.Rows[i].Before = tableCell(result.Rows[i].Before)
			result.Rows[i].After = tableCell(result.Rows[i].After)
		}
	}
	return result, nil
}

// tableCell strips markup and truncates to the table preview length.
// Truncation counts runes so multibyte text is never split mid-character.
func tableCell(text string) string {
	plain := compare.Normalize(text, compare.ModeSpaced)
	runes := []rune(plain)
	if len(runes) <= tableCellLength {
		return plain
	}
	return string(runes[:tableCellLength]) + "…"
}

// AddComment attaches a note to a section row of the session
func (s *Service) AddComment(id, sectionKey, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment must not be blank")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	comment := models.Comment{
		ID:         common.NewCommentID(),
		SectionKey: sectionKey,
		Comment:    text,
		Timestamp:  time.Now(),
	}
	session.Comments = append(session.Comments, comment)
	return &comment, nil
}

// Comments returns the session's comments, optionally filtered to one section
func (s *Service) Comments(id, sectionKey string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sectionKey == "" {
		return append([]models.Comment(nil), session.Comments...), nil
	}
	out := make([]models.Comment, 0)
	for _, c := range session.Comments {
		if c.SectionKey == sectionKey {
			out = append(out, c)
		}
	}
	return out, nil
}

// Close discards a session and its comments
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}
