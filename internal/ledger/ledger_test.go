package ledger

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ternarybob/lexuz/internal/common"
	"github.com/ternarybob/lexuz/internal/models"
)

func newTestDocument(docType models.DocumentType) *models.Document {
	now := time.Now()
	return &models.Document{
		ID:        common.NewDocumentID(),
		Title:     string(docType) + " Untitled",
		Type:      docType,
		Status:    models.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Versions:  []models.Version{CreateInitial(docType)},
	}
}

func TestCreateInitial(t *testing.T) {
	v := CreateInitial(models.TypePolicy)

	if v.Version != "v1.0" {
		t.Errorf("version label = %q, want v1.0", v.Version)
	}
	if len(v.Sections) != 14 {
		t.Errorf("section count = %d, want 14", len(v.Sections))
	}
	for _, s := range v.Sections {
		if s.Text != "" {
			t.Errorf("section %q has non-empty text", s.Key)
		}
	}
	if !reflect.DeepEqual(v.SectionKeys(), RequiredKeys(models.TypePolicy)) {
		t.Errorf("section keys do not match the required template")
	}
}

func TestNextLabel(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{"v1.0", "v1.1"},
		{"v1.7", "v1.8"},
		{"v2.3", "v2.4"},
		{"1.0", "v1.1"},
		{"v1", "v1.1"},
		{"", "v1.1"},
		{"v1.garbage", "v1.1"},
		{"garbage", "v1.1"},
	}
	for _, tt := range tests {
		if got := NextLabel(tt.current); got != tt.want {
			t.Errorf("NextLabel(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

// After N snapshot/save operations from v1.0, the minor version equals N
// and the history holds N+1 versions, all prior ones untouched.
func TestVersionMonotonicity(t *testing.T) {
	doc := newTestDocument(models.TypePolicy)

	const n = 5
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			Snapshot(doc, fmt.Sprintf("note %d", i))
		} else {
			if _, err := Save(doc, false); err != nil {
				t.Fatalf("save %d: %v", i, err)
			}
		}
	}

	if len(doc.Versions) != n+1 {
		t.Fatalf("versions = %d, want %d", len(doc.Versions), n+1)
	}
	if got := doc.LatestVersion().Version; got != fmt.Sprintf("v1.%d", n) {
		t.Errorf("latest label = %q, want v1.%d", got, n)
	}
	for i, v := range doc.Versions {
		if want := fmt.Sprintf("v1.%d", i); v.Version != want {
			t.Errorf("version %d label = %q, want %q", i, v.Version, want)
		}
	}
}

// No operation may rewrite history: earlier versions keep their identity
// and content across snapshots and saves.
func TestAppendOnlyHistory(t *testing.T) {
	doc := newTestDocument(models.TypeProcedure)
	doc.LatestVersion().SectionByKey("1. Introduction").Text = "<p>original</p>"

	Snapshot(doc, "checkpoint")
	frozenID := doc.Versions[0].ID
	frozenText := doc.Versions[0].SectionByKey("1. Introduction").Text

	// Edit the new latest and save again
	doc.LatestVersion().SectionByKey("1. Introduction").Text = "<p>edited</p>"
	if _, err := Save(doc, false); err != nil {
		t.Fatal(err)
	}

	if doc.Versions[0].ID != frozenID {
		t.Error("oldest version ID changed")
	}
	if got := doc.Versions[0].SectionByKey("1. Introduction").Text; got != frozenText {
		t.Errorf("frozen version text changed to %q", got)
	}
	if got := doc.Versions[len(doc.Versions)-1].SectionByKey("1. Introduction").Text; got != "<p>edited</p>" {
		t.Errorf("latest clone text = %q", got)
	}
}

func TestSaveBackfill(t *testing.T) {
	doc := newTestDocument(models.TypePolicy)
	if err := DeleteSection(doc, "8. Appendix"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteSection(doc, "Table of Content"); err != nil {
		t.Fatal(err)
	}
	existing := doc.LatestVersion().CloneSections()

	// Declining the backfill aborts the save with no state change
	_, err := Save(doc, false)
	var backfill *BackfillError
	if !errors.As(err, &backfill) {
		t.Fatalf("expected BackfillError, got %v", err)
	}
	if !reflect.DeepEqual(backfill.Missing, []string{"Table of Content", "8. Appendix"}) {
		t.Errorf("missing = %v", backfill.Missing)
	}
	if len(doc.Versions) != 1 {
		t.Errorf("declined save appended a version")
	}
	if !reflect.DeepEqual(doc.LatestVersion().Sections, existing) {
		t.Errorf("declined save altered sections")
	}

	// Confirming backfills and saves
	v, err := Save(doc, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(Missing(doc)) != 0 {
		t.Errorf("still missing after backfill: %v", Missing(doc))
	}
	if v.Version != "v1.1" {
		t.Errorf("label = %q, want v1.1", v.Version)
	}
	// Backfilled keys append at the end; existing sections keep their text
	sections := doc.LatestVersion().Sections
	if got := sections[len(sections)-2].Key; got != "Table of Content" {
		t.Errorf("second-to-last key = %q", got)
	}
	if got := sections[len(sections)-1].Key; got != "8. Appendix" {
		t.Errorf("last key = %q", got)
	}
}

func TestAddMissingPreservesExistingText(t *testing.T) {
	doc := newTestDocument(models.TypeRegulation)
	doc.LatestVersion().SectionByKey("2. Chapter I").Text = "<p>kept</p>"
	if err := DeleteSection(doc, "1. Introduction"); err != nil {
		t.Fatal(err)
	}

	AddMissing(doc)

	if len(Missing(doc)) != 0 {
		t.Errorf("missing after AddMissing: %v", Missing(doc))
	}
	if got := doc.LatestVersion().SectionByKey("2. Chapter I").Text; got != "<p>kept</p>" {
		t.Errorf("existing text altered: %q", got)
	}
	if got := doc.LatestVersion().SectionByKey("1. Introduction").Text; got != "" {
		t.Errorf("backfilled section not empty: %q", got)
	}
}

// Create a new document, save with no edits: no backfill needed, two
// versions, sections deep-equal, label v1.1.
func TestCreateAndSaveScenario(t *testing.T) {
	doc := newTestDocument(models.TypePolicy)

	if missing := Missing(doc); len(missing) != 0 {
		t.Fatalf("fresh document missing sections: %v", missing)
	}

	v, err := Save(doc, false)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(doc.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(doc.Versions))
	}
	if v.Version != "v1.1" {
		t.Errorf("label = %q, want v1.1", v.Version)
	}
	if !reflect.DeepEqual(doc.Versions[0].Sections, doc.Versions[1].Sections) {
		t.Errorf("new version sections do not deep-equal the prior version's")
	}
	if doc.Versions[0].ID == doc.Versions[1].ID {
		t.Errorf("versions share an ID")
	}
}

func TestCloneIsolation(t *testing.T) {
	doc := newTestDocument(models.TypePolicy)
	Snapshot(doc, "")

	doc.LatestVersion().Sections[0].Text = "<p>only the latest</p>"
	if doc.Versions[0].Sections[0].Text != "" {
		t.Error("editing the latest version leaked into the prior snapshot")
	}
}
