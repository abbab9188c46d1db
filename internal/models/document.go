package models

import (
	"strings"
	"time"
)

// DocumentType classifies a document within the library
type DocumentType string

const (
	TypePolicy     DocumentType = "Policy"
	TypeProcedure  DocumentType = "Procedure"
	TypeRegulation DocumentType = "Regulation"
)

// DocumentTypes lists all valid document types in display order
var DocumentTypes = []DocumentType{TypePolicy, TypeProcedure, TypeRegulation}

// DocumentStatus tracks a document through its review lifecycle
type DocumentStatus string

const (
	StatusDraft       DocumentStatus = "Draft"
	StatusUnderReview DocumentStatus = "Under Review"
	StatusActive      DocumentStatus = "Active"
	StatusArchived    DocumentStatus = "Archived"
)

// DocumentStatuses lists all valid document statuses in display order
var DocumentStatuses = []DocumentStatus{StatusDraft, StatusUnderReview, StatusActive, StatusArchived}

// Section is a named block of rich-text content within a version.
// The key doubles as the section's identity for comparison and
// required-section matching; renaming a section changes its identity.
type Section struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Version is an immutable snapshot of all sections at a point in time.
// Only the latest version of a document is ever edited in place; once a
// save or snapshot appends a successor, the prior version is frozen.
type Version struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"` // label of the form v<major>.<minor>
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Sections  []Section `json:"sections"`
}

// CloneSections returns a deep copy of the version's sections
func (v *Version) CloneSections() []Section {
	out := make([]Section, len(v.Sections))
	copy(out, v.Sections)
	return out
}

// SectionKeys returns the section keys in document order
func (v *Version) SectionKeys() []string {
	keys := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		keys = append(keys, s.Key)
	}
	return keys
}

// SectionByKey returns a pointer to the first section with the given key,
// or nil when absent
func (v *Version) SectionByKey(key string) *Section {
	for i := range v.Sections {
		if v.Sections[i].Key == key {
			return &v.Sections[i]
		}
	}
	return nil
}

// Document represents one organizational document and its full version history
type Document struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Title         string         `json:"title" validate:"required"`
	Type          DocumentType   `json:"type" validate:"required,oneof=Policy Procedure Regulation"`
	Department    string         `json:"department"`
	Tags          []string       `json:"tags"`
	Status        DocumentStatus `json:"status" validate:"required,oneof=Draft 'Under Review' Active Archived"`
	EffectiveDate string         `json:"effective_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Versions is append-only: index 0 is the oldest, the last element is
	// the current working version.
	Versions []Version `json:"versions"`
}

// LatestVersion returns a pointer to the current working version, or nil
// for a document with no versions (never the case after creation)
func (d *Document) LatestVersion() *Version {
	if len(d.Versions) == 0 {
		return nil
	}
	return &d.Versions[len(d.Versions)-1]
}

// VersionByID returns the version with the given ID, or nil when absent
func (d *Document) VersionByID(id string) *Version {
	for i := range d.Versions {
		if d.Versions[i].ID == id {
			return &d.Versions[i]
		}
	}
	return nil
}

// NormalizeTags deduplicates and trims the document's tag set in place
func (d *Document) NormalizeTags() {
	seen := make(map[string]bool, len(d.Tags))
	out := d.Tags[:0]
	for _, t := range d.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	d.Tags = out
}

// DocumentStats summarizes the library for the status endpoint
type DocumentStats struct {
	TotalDocuments int                    `json:"total_documents"`
	ByType         map[DocumentType]int   `json:"by_type"`
	ByStatus       map[DocumentStatus]int `json:"by_status"`
	TotalVersions  int                    `json:"total_versions"`
	LastUpdated    time.Time              `json:"last_updated"`
}
