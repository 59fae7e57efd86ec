// Package dispatch guarantees that every handler body executes exclusively
// on the owner goroutine, the single goroutine permitted to touch the graph
// model.
//
// The bridge is a single-producer/single-consumer handoff per command: the
// transport goroutine enqueues a unit of work with a one-shot completion
// channel and blocks on it; the owner goroutine pops, executes, recovers
// panics into structured errors, and publishes the response. Commands are
// therefore serialized end to end; two commands never overlap on the owner
// thread. There is no cancellation once a command is dispatched.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/metrics"
	"github.com/rigwire/rigwire/pkg/ports"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// HandlerFunc is a handler body run on the owner goroutine.
type HandlerFunc func(ctx context.Context, cmd *protocol.Command) *protocol.Response

type job struct {
	cmd  *protocol.Command
	fn   HandlerFunc
	done chan *protocol.Response
}

// Bridge is the sole synchronization point between transports and the
// owner goroutine.
type Bridge struct {
	jobs   chan job
	logger *slog.Logger
	sink   ports.AuditSink
	stats  *metrics.Metrics
}

// Option configures the bridge.
type Option func(*Bridge)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithAuditSink records every dispatched command to the sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(b *Bridge) {
		b.sink = sink
	}
}

// WithMetrics observes command counts and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) {
		b.stats = m
	}
}

// New creates a bridge. The queue is bounded at one slot: the protocol
// allows at most one command in flight per connection, and the transports
// each serve one connection at a time.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		jobs:   make(chan job, 1),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run is the owner-goroutine loop. It must be called from the goroutine
// that owns the graph model and blocks until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case j := <-b.jobs:
			j.done <- b.execute(ctx, j)
		}
	}
}

// Call dispatches the command to the owner goroutine and blocks until the
// response is published. Returns an error response if the bridge is not
// running or the caller's context ends before dispatch completes; a
// command already executing still runs to completion.
func (b *Bridge) Call(ctx context.Context, cmd *protocol.Command, fn HandlerFunc) *protocol.Response {
	j := job{cmd: cmd, fn: fn, done: make(chan *protocol.Response, 1)}

	select {
	case b.jobs <- j:
	case <-ctx.Done():
		return protocol.ErrorMessage("command not dispatched: " + protocol.SafeErrorMessage(ctx.Err()))
	}

	select {
	case resp := <-j.done:
		return resp
	case <-ctx.Done():
		return protocol.ErrorMessage("connection closed while command was executing")
	}
}

// execute runs one handler with panic recovery, timing and audit.
func (b *Bridge) execute(ctx context.Context, j job) (resp *protocol.Response) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "handler panicked",
				"command", j.cmd.Name, "panic", r, "stack", string(debug.Stack()))
			resp = protocol.ErrorMessage(fmt.Sprintf("internal fault while executing %q", j.cmd.Name))
		}

		elapsed := time.Since(start)
		b.logger.InfoContext(ctx, "command dispatched",
			"command", j.cmd.Name, "status", resp.Status, "elapsed", elapsed)

		if b.stats != nil {
			b.stats.CommandsTotal.WithLabelValues(j.cmd.Name, resp.Status).Inc()
			b.stats.CommandDuration.WithLabelValues(j.cmd.Name).Observe(elapsed.Seconds())
		}
		if b.sink != nil {
			entry := ports.AuditEntry{
				Time:    start,
				Command: j.cmd.Name,
				Status:  resp.Status,
				Elapsed: elapsed,
				Error:   resp.Error,
			}
			if err := b.sink.Append(ctx, entry); err != nil {
				b.logger.WarnContext(ctx, "audit append failed", "err", err)
			}
		}
	}()

	resp = j.fn(ctx, j.cmd)
	if resp == nil {
		resp = protocol.ErrorMessage(fmt.Sprintf("handler for %q produced no response", j.cmd.Name))
	}
	return resp
}
