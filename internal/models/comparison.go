package models

import "time"

// RowStatus classifies one section key's change between two versions
type RowStatus string

const (
	RowUnchanged RowStatus = "unchanged"
	RowAdded     RowStatus = "added"
	RowRemoved   RowStatus = "removed"
	RowChanged   RowStatus = "changed"
)

// ComparisonRow is one section key's before/after pairing with its derived
// status. Derived, never persisted.
type ComparisonRow struct {
	Section string    `json:"section"`
	Status  RowStatus `json:"status"`
	Before  string    `json:"before"`
	After   string    `json:"after"`
}

// ComparisonSummary counts rows per status over the full (unfiltered) row set
type ComparisonSummary struct {
	Unchanged int `json:"unchanged"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Changed   int `json:"changed"`
}

// Comment is a reviewer note attached to one row of a comparative-table
// session. Comments live only for the lifetime of the session.
type Comment struct {
	ID         string    `json:"id"`
	SectionKey string    `json:"section_key"`
	Comment    string    `json:"comment"`
	Timestamp  time.Time `json:"timestamp"`
}
