package memory

import (
	"context"

	"github.com/rigwire/rigwire/pkg/ports"
)

// AuditLog is an in-memory ports.AuditSink for tests and for running
// without redis. Appends happen on the owner goroutine; no locking.
type AuditLog struct {
	entries []ports.AuditEntry
}

// NewAuditLog creates an empty log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append records the entry.
func (l *AuditLog) Append(ctx context.Context, entry ports.AuditEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

// Entries returns everything recorded so far, oldest first.
func (l *AuditLog) Entries() []ports.AuditEntry {
	return l.entries
}
