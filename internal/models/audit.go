package models

import "time"

// Audit actions recorded by the library
const (
	AuditCreateDoc       = "create_doc"
	AuditSaveDoc         = "save_doc"
	AuditSnapshotVersion = "snapshot_version"
	AuditDeleteDoc       = "delete_doc"
	AuditImport          = "import"
	AuditImportWord      = "import_word"
	AuditExportWord      = "export_word"
	AuditAddChapter      = "add_chapter"
	AuditDeleteChapter   = "delete_chapter"
	AuditRenameChapter   = "rename_chapter"
)

// MaxAuditEntries caps the audit log; the oldest entries are evicted first
const MaxAuditEntries = 400

// AuditEntry is one append-only record of a library mutation
type AuditEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"ts"`
	Action    string                 `json:"action"`
	DocID     string                 `json:"doc_id,omitempty"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}
