package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewVersionID generates a unique version ID with the "ver_" prefix
func NewVersionID() string {
	return "ver_" + uuid.New().String()
}

// NewAuditID generates a unique audit entry ID with the "audit_" prefix
func NewAuditID() string {
	return "audit_" + uuid.New().String()
}

// NewCommentID generates a unique comment ID with the "cmt_" prefix
func NewCommentID() string {
	return "cmt_" + uuid.New().String()
}

// NewSessionID generates a unique comparison session ID with the "cmp_" prefix
func NewSessionID() string {
	return "cmp_" + uuid.New().String()
}
