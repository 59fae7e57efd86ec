// Package memory implements the ports.Environment and ports.GraphFactory
// interfaces over an in-memory asset store. It is the default environment
// for standalone serving and the fixture for the engine tests; a host
// editor replaces it by supplying its own implementations through the
// facade options.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rigwire/rigwire/pkg/domain"
)

type pin struct {
	Name  string
	Dir   domain.PinDirection
	Type  string
	Value any
	Links []domain.PinRef
}

type node struct {
	Ref      domain.NodeRef
	Kind     string
	Title    string
	Enabled  bool
	Position domain.Position
	Params   map[string]any
	Pins     []*pin
	// SubRefs are dependent sub-objects owned by this node; deleting the
	// node deletes them too.
	SubRefs   []domain.NodeRef
	Protected bool
}

type graphState struct {
	Kind  domain.GraphKind
	Nodes map[domain.NodeRef]*node
	Order []domain.NodeRef // creation order, for stable listings
}

type asset struct {
	Handle       domain.AssetHandle
	Graphs       map[string]*graphState
	GraphOrder   []string
	Open         bool
	Dirty        bool
	CurrentGraph string
}

// Env is the in-memory editing environment. All access happens on the owner
// goroutine; no locking.
type Env struct {
	assets map[domain.AssetHandle]*asset
	// compileHooks lets tests make Recompile fail for chosen assets.
	compileHooks map[domain.AssetHandle]func() error
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{
		assets:       make(map[domain.AssetHandle]*asset),
		compileHooks: make(map[domain.AssetHandle]func() error),
	}
}

// AddAsset seeds an asset with named graphs. Used at startup and by tests.
func (e *Env) AddAsset(handle domain.AssetHandle, graphs map[string]domain.GraphKind) {
	a := &asset{
		Handle: handle,
		Graphs: make(map[string]*graphState),
	}
	for name, kind := range graphs {
		a.Graphs[name] = &graphState{
			Kind:  kind,
			Nodes: make(map[domain.NodeRef]*node),
		}
		a.GraphOrder = append(a.GraphOrder, name)
	}
	// Keep default-graph resolution deterministic.
	sort.Strings(a.GraphOrder)
	e.assets[handle] = a
	// Protected root nodes (e.g. shading output) exist from the start.
	for name, g := range a.Graphs {
		e.seedProtected(domain.GraphHandle{Asset: handle, Name: name}, g)
	}
}

func (e *Env) seedProtected(gh domain.GraphHandle, g *graphState) {
	catalog := catalogs[g.Kind]
	for kind, spec := range catalog {
		if spec.Protected {
			n := newNode(kind, spec, domain.Position{})
			g.Nodes[n.Ref] = n
			g.Order = append(g.Order, n.Ref)
		}
	}
}

// SetCompileHook installs a hook invoked by Recompile for the asset.
func (e *Env) SetCompileHook(handle domain.AssetHandle, hook func() error) {
	e.compileHooks[handle] = hook
}

func newNode(kind string, spec kindSpec, pos domain.Position) *node {
	n := &node{
		Ref:       domain.NodeRef(uuid.NewString()),
		Kind:      kind,
		Title:     kind,
		Enabled:   true,
		Position:  pos,
		Protected: spec.Protected,
	}
	for _, ps := range spec.Pins {
		n.Pins = append(n.Pins, &pin{Name: ps.Name, Dir: ps.Dir, Type: ps.Type, Value: ps.Def})
	}
	return n
}

func (e *Env) asset(handle domain.AssetHandle) (*asset, error) {
	a, ok := e.assets[handle]
	if !ok {
		return nil, fmt.Errorf("asset %q: %w", handle, domain.ErrAssetNotFound)
	}
	return a, nil
}

// graph resolves a graph handle. An empty graph name selects the asset's
// first graph of the given kind (the domain's default graph); kind zero
// matches any.
func (e *Env) graph(gh domain.GraphHandle, kind domain.GraphKind) (*graphState, error) {
	a, err := e.asset(gh.Asset)
	if err != nil {
		return nil, err
	}
	if gh.Name == "" {
		for _, name := range a.GraphOrder {
			g := a.Graphs[name]
			if kind == "" || g.Kind == kind {
				return g, nil
			}
		}
		return nil, fmt.Errorf("asset %q has no %s graph: %w", gh.Asset, kind, domain.ErrGraphNotFound)
	}
	g, ok := a.Graphs[gh.Name]
	if !ok {
		return nil, fmt.Errorf("graph %q: %w", gh, domain.ErrGraphNotFound)
	}
	if kind != "" && g.Kind != kind {
		return nil, fmt.Errorf("graph %q is %s, not %s: %w", gh, g.Kind, kind, domain.ErrGraphNotFound)
	}
	return g, nil
}

func (e *Env) markDirty(handle domain.AssetHandle) {
	if a, ok := e.assets[handle]; ok {
		a.Dirty = true
	}
}

// --- ports.Environment ---

// OpenAsset opens the asset for editing.
func (e *Env) OpenAsset(ctx context.Context, handle domain.AssetHandle) error {
	a, err := e.asset(handle)
	if err != nil {
		return err
	}
	a.Open = true
	return nil
}

// OpenGraph navigates the asset's editor to the named graph.
func (e *Env) OpenGraph(ctx context.Context, handle domain.AssetHandle, graphName string) error {
	a, err := e.asset(handle)
	if err != nil {
		return err
	}
	if _, ok := a.Graphs[graphName]; !ok {
		return fmt.Errorf("graph %q: %w", graphName, domain.ErrGraphNotFound)
	}
	a.CurrentGraph = graphName
	return nil
}

// SaveAsset persists the asset (clears the dirty flag).
func (e *Env) SaveAsset(ctx context.Context, handle domain.AssetHandle) error {
	a, err := e.asset(handle)
	if err != nil {
		return err
	}
	a.Dirty = false
	return nil
}

// CloseAsset closes the asset's editor without saving.
func (e *Env) CloseAsset(ctx context.Context, handle domain.AssetHandle) error {
	a, err := e.asset(handle)
	if err != nil {
		return err
	}
	a.Open = false
	a.CurrentGraph = ""
	return nil
}

// IsDirty reports whether the asset has unsaved modifications.
func (e *Env) IsDirty(handle domain.AssetHandle) bool {
	a, ok := e.assets[handle]
	return ok && a.Dirty
}

// IsOpen reports whether the asset's editor is open. Test hook.
func (e *Env) IsOpen(handle domain.AssetHandle) bool {
	a, ok := e.assets[handle]
	return ok && a.Open
}

// Recompile runs the asset's compile hook, if any.
func (e *Env) Recompile(ctx context.Context, handle domain.AssetHandle) error {
	if _, err := e.asset(handle); err != nil {
		return err
	}
	if hook, ok := e.compileHooks[handle]; ok && hook != nil {
		return hook()
	}
	return nil
}
