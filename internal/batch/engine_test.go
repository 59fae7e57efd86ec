package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/pkg/adapters/memory"
	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

func newFixture(t *testing.T, kind domain.GraphKind) (*memory.Env, *Engine, *memory.Factory, domain.GraphHandle) {
	t.Helper()
	env := memory.NewEnv()
	env.AddAsset("rig", map[string]domain.GraphKind{"g": kind})
	return env, NewEngine(env), memory.NewFactory(env, kind), domain.GraphHandle{Asset: "rig", Name: "g"}
}

func nodeCount(t *testing.T, f *memory.Factory, g domain.GraphHandle) int {
	t.Helper()
	matches, err := f.FindNodesByKind(g, domain.NodeFilter{})
	require.NoError(t, err)
	return len(matches)
}

func pin(node, name string) protocol.PinAddress {
	return protocol.PinAddress{Node: node, Name: name}
}

func TestApplyCreateAndConnect(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event", Ref: "ev"},
		protocol.CreateNode{NodeKind: "branch", Ref: "br"},
		protocol.ConnectPins{From: pin("$ref:ev", "exec"), To: pin("$ref:br", "exec")},
	}

	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Completed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.Counters.Created)
	assert.Equal(t, 1, result.Counters.Connected)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "ev", result.Results[0].Ref)
	assert.False(t, result.Results[0].NodeID.IsZero(), "create results carry the new node id")

	// The link is live in the graph.
	snap, err := f.FindNode(g, result.Results[0].NodeID)
	require.NoError(t, err)
	p, ok := snap.Pin("exec", domain.PinOut)
	require.True(t, ok)
	assert.Len(t, p.LinkedTo, 1)
}

func TestRollbackLeavesZeroNetChange(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)
	before := nodeCount(t, f, g)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event", Ref: "n1"},
		protocol.ConnectPins{From: pin("$ref:n1", "exec"), To: pin("missing-node", "exec")},
	}

	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Completed, "rollback reports nothing as completed")
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, protocol.BatchCounters{Failed: 1}, result.Counters)
	require.Len(t, result.Errors, 1)
	assert.NotEmpty(t, result.Errors[0].Error)

	assert.Equal(t, before, nodeCount(t, f, g), "created node was rolled back")
}

func TestRollbackWithProtectedKindInBatch(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindShading)
	before := nodeCount(t, f, g)

	// Shading graphs seed their output node; creating another must fail
	// as an ordinary operation, and the rollback must leave the graph as
	// it was.
	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "output"},
		protocol.DeleteNode{Node: "missing-node"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0].Error, "protected")
	assert.Empty(t, result.Warnings, "every rollback step must succeed")
	assert.Equal(t, before, nodeCount(t, f, g))

	outputs, err := f.FindNodesByKind(g, domain.NodeFilter{Kind: "output"})
	require.NoError(t, err)
	assert.Len(t, outputs, 1, "the seeded output node stays the only one")
}

func TestContinuePolicyAppliesEverythingItCan(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)
	before := nodeCount(t, f, g)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event"},
		protocol.DeleteNode{Node: "missing-node"},
		protocol.CreateNode{NodeKind: "branch"},
	}
	params := protocol.DefaultStandardParams()
	params.OnError = protocol.PolicyContinue

	result, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Counters.Created)
	require.Len(t, result.Results, 3)
	assert.Equal(t, before+2, nodeCount(t, f, g), "both creates survive the middle failure")
}

func TestStopPolicyHaltsAtFirstFailure(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)
	before := nodeCount(t, f, g)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event"},
		protocol.DeleteNode{Node: "missing-node"},
		protocol.CreateNode{NodeKind: "branch"},
	}
	params := protocol.DefaultStandardParams()
	params.OnError = protocol.PolicyStop

	result, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 2, "the third operation never ran")
	assert.Equal(t, before+1, nodeCount(t, f, g), "applied work stays applied")
}

func TestDryRunIsPureAndRepeatable(t *testing.T) {
	env, e, f, g := newFixture(t, domain.KindLogic)
	before := nodeCount(t, f, g)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event", Ref: "ev"},
		protocol.CreateNode{NodeKind: "branch", Ref: "br"},
		protocol.ConnectPins{From: pin("$ref:ev", "exec"), To: pin("$ref:br", "exec")},
		protocol.DeleteNode{Node: "missing-node"},
	}
	params := protocol.DefaultStandardParams()
	params.DryRun = true

	first, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)
	second, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)

	assert.Equal(t, first, second, "a dry run must not change validation outcomes")
	assert.True(t, first.DryRun)
	assert.False(t, first.Success)
	assert.Equal(t, 3, first.Completed, "ref-chained operations validate against would-be nodes")
	assert.Equal(t, 1, first.Failed)

	assert.Equal(t, before, nodeCount(t, f, g))
	assert.False(t, env.IsDirty("rig"), "dry runs never touch the graph")
}

func TestDryRunRejectsUnknownRefLabel(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ops := []protocol.Operation{
		protocol.ConnectPins{From: pin("$ref:never-created", "exec"), To: pin("also-missing", "exec")},
	}
	params := protocol.DefaultStandardParams()
	params.DryRun = true

	result, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors[0].Error, "never-created")
}

func TestMaxOperationsRejectsOversizedBatch(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ops := []protocol.Operation{
		protocol.CreateNode{NodeKind: "event"},
		protocol.CreateNode{NodeKind: "event"},
		protocol.CreateNode{NodeKind: "event"},
	}
	params := protocol.DefaultStandardParams()
	params.MaxOperations = 2

	_, err := e.Apply(context.Background(), g, f, ops, params)
	var verr *protocol.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "operations", verr.Key)

	assert.Equal(t, 0, nodeCount(t, f, g), "an oversized batch applies nothing")
}

func TestEmptyBatchSucceeds(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	result, err := e.Apply(context.Background(), g, f, nil, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Completed)
	assert.Empty(t, result.Results)
}

func TestAutoCompileFailureIsAWarning(t *testing.T) {
	env, e, f, g := newFixture(t, domain.KindLogic)
	env.SetCompileHook("rig", func() error { return errors.New("cycle detected") })

	ops := []protocol.Operation{protocol.CreateNode{NodeKind: "event"}}

	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)

	assert.True(t, result.Success, "a compile failure does not fail the batch")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "cycle detected")
}

func TestAutoCompileSkips(t *testing.T) {
	env, e, f, g := newFixture(t, domain.KindLogic)
	compiled := 0
	env.SetCompileHook("rig", func() error { compiled++; return nil })

	// Disabled explicitly.
	params := protocol.DefaultStandardParams()
	params.AutoCompile = false
	_, err := e.Apply(context.Background(), g, f,
		[]protocol.Operation{protocol.CreateNode{NodeKind: "event"}}, params)
	require.NoError(t, err)
	assert.Equal(t, 0, compiled)

	// Value-only batches are not structural.
	br, err := f.CreateNode(g, "branch", domain.Position{}, nil)
	require.NoError(t, err)
	_, err = e.Apply(context.Background(), g, f,
		[]protocol.Operation{protocol.SetPinValue{Pin: pin(string(br.Ref), "condition"), Value: true}},
		protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.Equal(t, 0, compiled)

	// A structural batch with defaults compiles once.
	_, err = e.Apply(context.Background(), g, f,
		[]protocol.Operation{protocol.CreateNode{NodeKind: "event"}},
		protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.Equal(t, 1, compiled)
}

func TestRollbackRestoresPinValue(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)
	br, err := f.CreateNode(g, "branch", domain.Position{}, nil)
	require.NoError(t, err)

	ops := []protocol.Operation{
		protocol.SetPinValue{Pin: pin(string(br.Ref), "condition"), Value: true},
		protocol.DeleteNode{Node: "missing-node"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)

	snap, err := f.FindNode(g, br.Ref)
	require.NoError(t, err)
	p, ok := snap.Pin("condition", domain.PinIn)
	require.True(t, ok)
	assert.Equal(t, false, p.Value, "rolled-back value returns to its prior state")
}

func TestRollbackRestoresDeletedNodeWithLinks(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ev, err := f.CreateNode(g, "event", domain.Position{}, nil)
	require.NoError(t, err)
	br, err := f.CreateNode(g, "branch", domain.Position{}, nil)
	require.NoError(t, err)
	require.NoError(t, f.Connect(g,
		domain.PinRef{Node: ev.Ref, Name: "exec"},
		domain.PinRef{Node: br.Ref, Name: "exec"}))

	ops := []protocol.Operation{
		protocol.DeleteNode{Node: string(br.Ref)},
		protocol.DeleteNode{Node: "missing-node"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)

	snap, err := f.FindNode(g, br.Ref)
	require.NoError(t, err, "deleted node is back under its original ref")
	p, ok := snap.Pin("exec", domain.PinIn)
	require.True(t, ok)
	assert.Len(t, p.LinkedTo, 1, "its links are back too")

	evSnap, err := f.FindNode(g, ev.Ref)
	require.NoError(t, err)
	out, ok := evSnap.Pin("exec", domain.PinOut)
	require.True(t, ok)
	assert.Len(t, out.LinkedTo, 1, "peer side of the link is restored")
}

func TestRollbackRestoresSubObjects(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindEffect)

	emitter, err := f.CreateNode(g, "emitter", domain.Position{}, nil)
	require.NoError(t, err)
	require.Len(t, emitter.SubRefs, 1)

	ops := []protocol.Operation{
		protocol.DeleteNode{Node: string(emitter.Ref)},
		protocol.DeleteNode{Node: "missing-node"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, err = f.FindNode(g, emitter.Ref)
	assert.NoError(t, err)
	_, err = f.FindNode(g, emitter.SubRefs[0])
	assert.NoError(t, err, "owned sub-object comes back with its owner")
}

func TestRollbackRestoresBrokenLinks(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ev, err := f.CreateNode(g, "event", domain.Position{}, nil)
	require.NoError(t, err)
	br, err := f.CreateNode(g, "branch", domain.Position{}, nil)
	require.NoError(t, err)
	require.NoError(t, f.Connect(g,
		domain.PinRef{Node: ev.Ref, Name: "exec"},
		domain.PinRef{Node: br.Ref, Name: "exec"}))

	ops := []protocol.Operation{
		protocol.BreakAllLinks{Node: string(br.Ref)},
		protocol.DeleteNode{Node: "missing-node"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)

	snap, err := f.FindNode(g, br.Ref)
	require.NoError(t, err)
	p, ok := snap.Pin("exec", domain.PinIn)
	require.True(t, ok)
	assert.Len(t, p.LinkedTo, 1, "broken links are reconnected on rollback")
}

func TestUnknownRefLabelFailsOperation(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLogic)

	ops := []protocol.Operation{
		protocol.DeleteNode{Node: "$ref:nope"},
	}
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors[0].Error, `"nope"`)
}

func TestUnsupportedOperationInLayoutGraphs(t *testing.T) {
	_, e, f, g := newFixture(t, domain.KindLayout)

	panel, err := f.CreateNode(g, "panel", domain.Position{}, nil)
	require.NoError(t, err)

	ops := []protocol.Operation{
		protocol.ConnectPins{From: pin(string(panel.Ref), "out"), To: pin(string(panel.Ref), "in")},
	}

	// Live run fails the operation.
	result, err := e.Apply(context.Background(), g, f, ops, protocol.DefaultStandardParams())
	require.NoError(t, err)
	assert.False(t, result.Success)

	// Dry run predicts the same verdict.
	params := protocol.DefaultStandardParams()
	params.DryRun = true
	dry, err := e.Apply(context.Background(), g, f, ops, params)
	require.NoError(t, err)
	assert.False(t, dry.Success)
	assert.Contains(t, dry.Errors[0].Error, "unsupported")
}
