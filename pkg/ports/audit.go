package ports

import (
	"context"
	"time"
)

// AuditEntry records one dispatched command for the audit journal.
type AuditEntry struct {
	Time    time.Time     `json:"time"`
	Command string        `json:"command"`
	Status  string        `json:"status"`
	Elapsed time.Duration `json:"elapsed"`
	Error   string        `json:"error,omitempty"`
}

// AuditSink receives an entry for every dispatched command. Implementations
// must be fast; the dispatch bridge calls Append on the owner goroutine.
type AuditSink interface {
	Append(ctx context.Context, entry AuditEntry) error
}
