package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/pkg/ports"
)

func newJournal(t *testing.T, opts ...Option) (*Journal, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	j := NewFromClient(client, opts...)
	t.Cleanup(func() { _ = j.Close() })
	return j, mr
}

func TestAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	j, _ := newJournal(t)

	entries := []ports.AuditEntry{
		{Time: time.Now(), Command: "ping", Status: "success", Elapsed: time.Millisecond},
		{Time: time.Now(), Command: "graph_batch", Status: "error", Error: "node not found"},
	}
	for _, e := range entries {
		require.NoError(t, j.Append(ctx, e))
	}

	recent, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "graph_batch", recent[0].Command)
	assert.Equal(t, "node not found", recent[0].Error)
	assert.Equal(t, "ping", recent[1].Command)
}

func TestJournalTrimsToLimit(t *testing.T) {
	ctx := context.Background()
	j, _ := newJournal(t, WithLimit(3))

	for _, cmd := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, j.Append(ctx, ports.AuditEntry{Command: cmd, Status: "success"}))
	}

	recent, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3, "the ring keeps only the newest entries")
	assert.Equal(t, "e", recent[0].Command)
	assert.Equal(t, "c", recent[2].Command)
}

func TestJournalCustomKey(t *testing.T) {
	ctx := context.Background()
	j, mr := newJournal(t, WithKey("audit:test"))

	require.NoError(t, j.Append(ctx, ports.AuditEntry{Command: "ping", Status: "success"}))
	assert.True(t, mr.Exists("audit:test"))
}

func TestRecentOnEmptyJournal(t *testing.T) {
	ctx := context.Background()
	j, _ := newJournal(t)

	recent, err := j.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
