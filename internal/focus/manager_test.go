package focus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/pkg/adapters/memory"
	"github.com/rigwire/rigwire/pkg/domain"
)

func newEnv(t *testing.T) *memory.Env {
	t.Helper()
	env := memory.NewEnv()
	env.AddAsset("a", map[string]domain.GraphKind{"evt": domain.KindLogic, "mat": domain.KindShading})
	env.AddAsset("b", map[string]domain.GraphKind{"evt": domain.KindLogic})
	return env
}

func dirty(t *testing.T, env *memory.Env, asset domain.AssetHandle) {
	t.Helper()
	f := memory.NewFactory(env, domain.KindLogic)
	_, err := f.CreateNode(domain.GraphHandle{Asset: asset, Name: "evt"}, "event", domain.Position{}, nil)
	require.NoError(t, err)
}

func TestBeginAndStatus(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	assert.Equal(t, StateIdle, m.State())

	require.NoError(t, m.Begin(ctx, "a", "evt"))
	assert.Equal(t, StateFocused, m.State())
	assert.True(t, env.IsOpen("a"))

	s := m.Status()
	assert.Equal(t, domain.AssetHandle("a"), s.Asset)
	assert.Equal(t, "evt", s.Graph)
	assert.False(t, s.Dirty)
	assert.False(t, s.HasError)
}

func TestBeginSameAssetOnlyNavigates(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", "evt"))
	dirty(t, env, "a")

	// Refocusing the same asset must not run the close/save sequence.
	require.NoError(t, m.Begin(ctx, "a", "mat"))
	assert.True(t, env.IsDirty("a"), "no implicit save on refocus")
	_, graph, _ := m.Current()
	assert.Equal(t, "mat", graph)

	assert.Error(t, m.Begin(ctx, "a", "missing"))
}

func TestBeginUnknownAssetOrGraph(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newEnv(t))

	assert.ErrorIs(t, m.Begin(ctx, "nope", ""), domain.ErrAssetNotFound)
	assert.Equal(t, StateIdle, m.State())

	assert.ErrorIs(t, m.Begin(ctx, "", ""), domain.ErrAssetNotFound)
}

func TestEndSavesDirtyAndCloses(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")

	require.NoError(t, m.End(ctx, false))
	assert.Equal(t, StateIdle, m.State())
	assert.False(t, env.IsDirty("a"), "dirty asset is saved before close")
	assert.False(t, env.IsOpen("a"))
}

func TestEndWithErrorLeavesAssetOpen(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")
	m.SetError("batch failed halfway")
	assert.Equal(t, StateFocusedWithError, m.State())

	require.NoError(t, m.End(ctx, false))
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, env.IsOpen("a"), "poisoned focus leaves the asset open for inspection")
	assert.True(t, env.IsDirty("a"), "and does not save it")
}

func TestForceKeepOpen(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")

	require.NoError(t, m.End(ctx, true))
	assert.True(t, env.IsOpen("a"))
	assert.True(t, env.IsDirty("a"))
}

func TestBeginOtherAssetRunsEndSequence(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")

	require.NoError(t, m.Begin(ctx, "b", ""))
	assert.False(t, env.IsDirty("a"), "previous asset saved on focus switch")
	assert.False(t, env.IsOpen("a"))
	asset, _, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, domain.AssetHandle("b"), asset)
}

func TestBeginOtherAssetAfterErrorSkipsSave(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")
	m.SetError("broken edit")

	require.NoError(t, m.Begin(ctx, "b", ""))
	assert.True(t, env.IsOpen("a"), "errored asset stays open")
	assert.True(t, env.IsDirty("a"), "errored asset is never auto-saved")
	assert.Equal(t, StateFocused, m.State(), "error does not leak into the new focus")
}

func TestClearError(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	m.SetError("oops")
	m.ClearError()
	assert.Equal(t, StateFocused, m.State())

	require.NoError(t, m.End(ctx, false))
	assert.False(t, env.IsOpen("a"), "cleared error restores the normal close path")
}

func TestIdleOperationsReturnNotFocused(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newEnv(t))

	assert.ErrorIs(t, m.End(ctx, false), domain.ErrNotFocused)
	assert.ErrorIs(t, m.Save(ctx), domain.ErrNotFocused)
	m.SetError("ignored while idle")
	assert.Equal(t, StateIdle, m.State())
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, env, "a")
	require.NoError(t, m.Save(ctx))
	assert.False(t, env.IsDirty("a"))
	assert.Equal(t, StateFocused, m.State(), "save keeps the focus")
}

// failingSaveEnv makes SaveAsset fail to exercise the close-anyway path.
type failingSaveEnv struct {
	*memory.Env
}

func (e *failingSaveEnv) SaveAsset(ctx context.Context, handle domain.AssetHandle) error {
	return errors.New("disk full")
}

func TestSaveFailureNeverBlocksClose(t *testing.T) {
	ctx := context.Background()
	inner := newEnv(t)
	env := &failingSaveEnv{Env: inner}
	m := NewManager(env)

	require.NoError(t, m.Begin(ctx, "a", ""))
	dirty(t, inner, "a")

	require.NoError(t, m.End(ctx, false), "a save failure is logged, not returned")
	assert.Equal(t, StateIdle, m.State())
	assert.False(t, inner.IsOpen("a"), "close proceeds despite the failed save")
}
