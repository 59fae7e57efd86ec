package protocol

import "github.com/rigwire/rigwire/pkg/domain"

// OperationResult records the outcome of a single batch operation.
// Append-only per batch.
type OperationResult struct {
	Op      OpKind         `json:"op"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	NodeID  domain.NodeRef `json:"node_id,omitempty"`
	Ref     string         `json:"ref,omitempty"`
}

// BatchCounters are monotonically incremented per-kind counts. Purely
// derived reporting state, never authoritative.
type BatchCounters struct {
	Created       int `json:"created"`
	Removed       int `json:"removed"`
	Enabled       int `json:"enabled"`
	Reconstructed int `json:"reconstructed"`
	Connected     int `json:"connected"`
	Disconnected  int `json:"disconnected"`
	ValuesSet     int `json:"values_set"`
	LinksBroken   int `json:"links_broken"`
	Failed        int `json:"failed"`
}

// BatchResult is the shape returned by the graph_batch command.
type BatchResult struct {
	Success   bool              `json:"success"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
	DryRun    bool              `json:"dry_run,omitempty"`
	Counters  BatchCounters     `json:"counters"`
	Results   []OperationResult `json:"results"`
	Errors    []OperationResult `json:"errors"`
	Warnings  []string          `json:"warnings,omitempty"`
}
