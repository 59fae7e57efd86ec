package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/internal/batch"
	"github.com/rigwire/rigwire/internal/dispatch"
	"github.com/rigwire/rigwire/internal/focus"
	"github.com/rigwire/rigwire/internal/registry"
	"github.com/rigwire/rigwire/pkg/adapters/memory"
	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

type fixture struct {
	router   *Router
	env      *memory.Env
	focus    *focus.Manager
	shutdown chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := memory.NewEnv()
	env.AddAsset("rig", map[string]domain.GraphKind{
		"evt": domain.KindLogic,
		"mat": domain.KindShading,
	})
	env.AddAsset("other", map[string]domain.GraphKind{"evt": domain.KindLogic})

	reg := registry.New(memory.NewDefaultFactories(env)...)
	fm := focus.NewManager(env)
	shutdown := make(chan struct{})

	handlers := NewHandlers(HandlersConfig{
		Registry:      reg,
		Engine:        batch.NewEngine(env),
		Focus:         fm,
		Env:           env,
		MaxOperations: 100,
		Shutdown:      func() { close(shutdown) },
	})

	bridge := dispatch.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bridge.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &fixture{
		router:   New(bridge, handlers),
		env:      env,
		focus:    fm,
		shutdown: shutdown,
	}
}

func (fx *fixture) dispatch(name string, params map[string]any) *protocol.Response {
	return fx.router.Dispatch(context.Background(), &protocol.Command{Name: name, Params: params})
}

func result(t *testing.T, resp *protocol.Response) map[string]any {
	t.Helper()
	require.Equal(t, protocol.StatusSuccess, resp.Status, "error: %s", resp.Error)
	m, ok := resp.Result.(map[string]any)
	require.True(t, ok, "result is %T", resp.Result)
	return m
}

func TestPing(t *testing.T) {
	fx := newFixture(t)
	m := result(t, fx.dispatch("ping", nil))
	assert.Equal(t, "pong", m["message"])
}

func TestStatusReportsDomains(t *testing.T) {
	fx := newFixture(t)
	m := result(t, fx.dispatch("status", nil))
	assert.Contains(t, m, "uptime_seconds")
	assert.Equal(t, []domain.GraphKind{
		domain.KindLogic, domain.KindShading, domain.KindMotion,
		domain.KindLayout, domain.KindEffect,
	}, m["domains"])
}

func TestUnknownCommand(t *testing.T) {
	fx := newFixture(t)
	for _, name := range []string{"warp_drive", "graph_warp", "asset_warp"} {
		resp := fx.dispatch(name, nil)
		require.Equal(t, protocol.StatusError, resp.Status)
		assert.Contains(t, resp.Error, "unknown command")
	}
}

func TestAssetLifecycleCommands(t *testing.T) {
	fx := newFixture(t)

	resp := fx.dispatch("asset_open", map[string]any{"asset": "rig", "graph": "evt"})
	require.Equal(t, protocol.StatusSuccess, resp.Status, resp.Error)

	status, ok := resp.Result.(focus.Status)
	require.True(t, ok)
	assert.Equal(t, focus.StateFocused, status.State)
	assert.Equal(t, "evt", status.Graph)

	resp = fx.dispatch("asset_save", nil)
	require.Equal(t, protocol.StatusSuccess, resp.Status)

	resp = fx.dispatch("asset_close", nil)
	require.Equal(t, protocol.StatusSuccess, resp.Status)
	status = resp.Result.(focus.Status)
	assert.Equal(t, focus.StateIdle, status.State)
	assert.False(t, fx.env.IsOpen("rig"))
}

func TestAssetOpenValidation(t *testing.T) {
	fx := newFixture(t)

	resp := fx.dispatch("asset_open", nil)
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "asset")

	resp = fx.dispatch("asset_open", map[string]any{"asset": "missing"})
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "not found")
}

func TestGraphBatchOnFocusedAsset(t *testing.T) {
	fx := newFixture(t)
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("asset_open", map[string]any{"asset": "rig", "graph": "evt"}).Status)

	resp := fx.dispatch("graph_batch", map[string]any{
		"operations": []any{
			map[string]any{"op": "create_node", "kind": "event", "ref": "ev"},
			map[string]any{"op": "create_node", "kind": "branch", "ref": "br"},
			map[string]any{"op": "connect_pins", "from": "$ref:ev.exec", "to": "$ref:br.exec"},
		},
	})
	require.Equal(t, protocol.StatusSuccess, resp.Status, resp.Error)

	batchResult, ok := resp.Result.(*protocol.BatchResult)
	require.True(t, ok)
	assert.True(t, batchResult.Success)
	assert.Equal(t, 3, batchResult.Completed)
}

func TestGraphBatchRequiresTarget(t *testing.T) {
	fx := newFixture(t)

	resp := fx.dispatch("graph_batch", map[string]any{"operations": []any{}})
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "no asset is focused")
}

func TestGraphBatchExplicitTargetWithoutFocus(t *testing.T) {
	fx := newFixture(t)

	resp := fx.dispatch("graph_batch", map[string]any{
		"asset": "rig",
		"graph": "evt",
		"operations": []any{
			map[string]any{"op": "create_node", "kind": "event"},
		},
	})
	require.Equal(t, protocol.StatusSuccess, resp.Status, resp.Error)
}

func TestGraphBatchMissingOperations(t *testing.T) {
	fx := newFixture(t)
	resp := fx.dispatch("graph_batch", map[string]any{"asset": "rig", "graph": "evt"})
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "operations")
}

func TestGraphBatchServerCapOnMaxOperations(t *testing.T) {
	fx := newFixture(t)

	ops := make([]any, 101)
	for i := range ops {
		ops[i] = map[string]any{"op": "create_node", "kind": "event"}
	}
	// Client asks for a higher ceiling than the server allows (100).
	resp := fx.dispatch("graph_batch", map[string]any{
		"asset": "rig", "graph": "evt",
		"max_operations": 500,
		"operations":     ops,
	})
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "max_operations")
}

func TestFailedBatchPoisonsFocus(t *testing.T) {
	fx := newFixture(t)
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("asset_open", map[string]any{"asset": "rig", "graph": "evt"}).Status)

	resp := fx.dispatch("graph_batch", map[string]any{
		"operations": []any{
			map[string]any{"op": "delete_node", "node": "missing"},
		},
	})
	require.Equal(t, protocol.StatusSuccess, resp.Status, "a failed batch is still a well-formed response")

	status, ok := fx.dispatch("asset_status", nil).Result.(focus.Status)
	require.True(t, ok)
	assert.Equal(t, focus.StateFocusedWithError, status.State)
	assert.Contains(t, status.ErrorMessage, "node not found")

	// Closing now leaves the asset open for inspection.
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("asset_close", nil).Status)
	assert.True(t, fx.env.IsOpen("rig"))
}

func TestDryRunBatchDoesNotPoisonFocus(t *testing.T) {
	fx := newFixture(t)
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("asset_open", map[string]any{"asset": "rig", "graph": "evt"}).Status)

	resp := fx.dispatch("graph_batch", map[string]any{
		"dry_run": true,
		"operations": []any{
			map[string]any{"op": "delete_node", "node": "missing"},
		},
	})
	require.Equal(t, protocol.StatusSuccess, resp.Status)
	assert.Equal(t, focus.StateFocused, fx.focus.State())
}

func TestGraphQueryAndDescribe(t *testing.T) {
	fx := newFixture(t)
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("asset_open", map[string]any{"asset": "rig", "graph": "evt"}).Status)
	require.Equal(t, protocol.StatusSuccess, fx.dispatch("graph_batch", map[string]any{
		"operations": []any{
			map[string]any{"op": "create_node", "kind": "event", "params": map[string]any{"title": "OnStart"}},
			map[string]any{"op": "create_node", "kind": "branch"},
		},
	}).Status)

	m := result(t, fx.dispatch("graph_query", map[string]any{"kind": "event"}))
	assert.Equal(t, 1, m["count"])
	nodes := m["nodes"].([]map[string]any)
	require.Len(t, nodes, 1)
	ref := nodes[0]["ref"].(domain.NodeRef)

	desc := result(t, fx.dispatch("graph_describe", map[string]any{
		"node":      string(ref),
		"verbosity": "full",
	}))
	assert.Equal(t, "event", desc["kind"])
	assert.Equal(t, "OnStart", desc["title"])

	resp := fx.dispatch("graph_describe", nil)
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "node")
}

func TestGraphResolve(t *testing.T) {
	fx := newFixture(t)

	m := result(t, fx.dispatch("graph_resolve", map[string]any{"asset": "rig", "graph": "mat"}))
	desc, ok := m["descriptor"].(domain.GraphTypeDescriptor)
	require.True(t, ok)
	assert.Equal(t, domain.KindShading, desc.Kind)
	assert.True(t, desc.Supports(domain.CapPins))

	resp := fx.dispatch("graph_resolve", map[string]any{"asset": "rig", "graph": "nope"})
	require.Equal(t, protocol.StatusError, resp.Status)
	assert.Contains(t, resp.Error, "no graph domain owns")
}

func TestShutdownCommand(t *testing.T) {
	fx := newFixture(t)

	m := result(t, fx.dispatch("shutdown", nil))
	assert.Equal(t, "shutting down", m["message"])

	select {
	case <-fx.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown callback was not invoked")
	}
}
