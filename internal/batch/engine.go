// Package batch applies ordered lists of graph operations under a
// selectable error policy (rollback, continue, stop) with optional dry-run
// validation.
//
// Rollback works like a saga unwind: before each mutation the engine
// captures the pre-image it needs (node snapshot, prior pin value, link
// set) and pushes an inverse closure; on failure the stack replays in
// reverse, leaving zero net graph change.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// Engine is the batch mutation engine. It runs entirely on the owner
// goroutine; it holds no state across batches.
type Engine struct {
	env    ports.Environment
	logger *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a batch engine bound to the owning environment.
func NewEngine(env ports.Environment, opts ...Option) *Engine {
	e := &Engine{
		env:    env,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// undoEntry is one inverse closure captured before a mutation.
type undoEntry struct {
	desc string
	fn   func() error
}

// batchRun carries the per-batch state.
type batchRun struct {
	graph   domain.GraphHandle
	factory ports.GraphFactory
	// refs maps client-supplied labels to nodes created earlier in this
	// batch. Last write wins on collision; the engine does not deduplicate.
	refs  map[string]domain.NodeRef
	undos []undoEntry
}

// Apply runs the batch against the graph per the standard params. A nil
// error with a failed result means the batch itself ran; a non-nil error
// means the batch was rejected before any operation (protocol-level).
func (e *Engine) Apply(ctx context.Context, graph domain.GraphHandle, factory ports.GraphFactory, ops []protocol.Operation, params protocol.StandardParams) (*protocol.BatchResult, error) {
	if len(ops) > params.MaxOperations {
		return nil, &protocol.ValidationError{
			Key:    "operations",
			Reason: fmt.Sprintf("batch of %d operations exceeds max_operations=%d", len(ops), params.MaxOperations),
		}
	}

	result := &protocol.BatchResult{
		Success: true,
		DryRun:  params.DryRun,
		Results: []protocol.OperationResult{},
		Errors:  []protocol.OperationResult{},
	}
	if len(ops) == 0 {
		return result, nil
	}

	run := &batchRun{
		graph:   graph,
		factory: factory,
		refs:    make(map[string]domain.NodeRef),
	}

	if params.DryRun {
		e.validateAll(run, ops, result)
		return result, nil
	}

	structural := false
	for i, op := range ops {
		opResult, changed := e.applyOne(run, op)
		result.Results = append(result.Results, opResult)
		structural = structural || changed

		if opResult.Success {
			result.Completed++
			countSuccess(&result.Counters, op.Kind())
			continue
		}

		result.Failed++
		result.Counters.Failed++
		result.Errors = append(result.Errors, opResult)
		result.Success = false

		switch params.OnError {
		case protocol.PolicyContinue:
			continue
		case protocol.PolicyStop:
			e.logger.InfoContext(ctx, "batch stopped on failure",
				"op_index", i, "op", op.Kind(), "err", opResult.Error)
		case protocol.PolicyRollback:
			e.rollback(ctx, run, result)
			result.Completed = 0
			result.Counters = protocol.BatchCounters{Failed: result.Failed}
			structural = false
		}
		if params.OnError != protocol.PolicyContinue {
			break
		}
	}

	if structural && params.AutoCompile {
		if err := e.env.Recompile(ctx, graph.Asset); err != nil {
			e.logger.WarnContext(ctx, "recompile after batch failed", "asset", graph.Asset, "err", err)
			result.Warnings = append(result.Warnings, "recompile failed: "+err.Error())
		}
	}
	return result, nil
}

// rollback undoes applied operations in reverse order. Best effort: an
// inverse that itself fails is logged and reported as a warning, and the
// unwind continues.
func (e *Engine) rollback(ctx context.Context, run *batchRun, result *protocol.BatchResult) {
	e.logger.InfoContext(ctx, "rolling back batch", "applied", len(run.undos))
	for i := len(run.undos) - 1; i >= 0; i-- {
		u := run.undos[i]
		if err := u.fn(); err != nil {
			e.logger.ErrorContext(ctx, "rollback step failed", "step", u.desc, "err", err)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rollback of %s failed: %s", u.desc, err.Error()))
		}
	}
	run.undos = nil
}

// resolveNode resolves a node address, which is either a literal NodeRef or
// a "$ref:<label>" reference to a node created earlier in this batch.
func (run *batchRun) resolveNode(addr string) (domain.NodeRef, error) {
	if addr == "" {
		return "", &protocol.ValidationError{Key: "node", Reason: "missing node address"}
	}
	if strings.HasPrefix(addr, protocol.RefPrefix) {
		label := addr[len(protocol.RefPrefix):]
		ref, ok := run.refs[label]
		if !ok {
			return "", fmt.Errorf("ref label %q does not name a node created earlier in this batch", label)
		}
		return ref, nil
	}
	return domain.NodeRef(addr), nil
}

// resolvePin resolves a pin address to a concrete PinRef. The node part may
// be a "$ref:" label. A direction supplied by the client is carried through;
// when unset the factory resolves it against the node.
func (run *batchRun) resolvePin(addr protocol.PinAddress) (domain.PinRef, error) {
	if addr.IsZero() {
		return domain.PinRef{}, &protocol.ValidationError{Key: "pin", Reason: "missing pin address"}
	}
	node, err := run.resolveNode(addr.Node)
	if err != nil {
		return domain.PinRef{}, err
	}
	return domain.PinRef{Node: node, Name: addr.Name, Direction: addr.Direction}, nil
}

func countSuccess(c *protocol.BatchCounters, kind protocol.OpKind) {
	switch kind {
	case protocol.OpCreateNode:
		c.Created++
	case protocol.OpDeleteNode:
		c.Removed++
	case protocol.OpSetEnabled:
		c.Enabled++
	case protocol.OpReconstruct:
		c.Reconstructed++
	case protocol.OpConnectPins:
		c.Connected++
	case protocol.OpDisconnectPins:
		c.Disconnected++
	case protocol.OpSetPinValue:
		c.ValuesSet++
	case protocol.OpBreakAllLinks:
		c.LinksBroken++
	}
}
