// Package redis implements ports.AuditSink over Redis: a capped ring of
// recent command entries, useful for post-hoc inspection of what an
// automated client did to an editing session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/rigwire/rigwire/pkg/ports"
)

// Journal implements ports.AuditSink using a Redis list.
type Journal struct {
	client *backend.Client
	key    string
	limit  int64
}

// Option configures the journal.
type Option func(*Journal)

// WithKey sets the list key.
func WithKey(key string) Option {
	return func(j *Journal) {
		j.key = key
	}
}

// WithLimit caps how many entries the journal retains.
func WithLimit(limit int64) Option {
	return func(j *Journal) {
		j.limit = limit
	}
}

// New creates a journal with its own client.
func New(address, password string, db int, opts ...Option) *Journal {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		key:    "rigwire:audit",
		limit:  1000,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Append pushes one entry and trims the ring.
func (j *Journal) Append(ctx context.Context, entry ports.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	pipe := j.client.Pipeline()
	pipe.LPush(ctx, j.key, data)
	pipe.LTrim(ctx, j.key, 0, j.limit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis journal: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int64) ([]ports.AuditEntry, error) {
	raw, err := j.client.LRange(ctx, j.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis journal: %w", err)
	}
	entries := make([]ports.AuditEntry, 0, len(raw))
	for _, item := range raw {
		var e ports.AuditEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("corrupt audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close releases the underlying client.
func (j *Journal) Close() error {
	return j.client.Close()
}
