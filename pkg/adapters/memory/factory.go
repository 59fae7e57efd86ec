package memory

import (
	"fmt"
	"strings"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
)

// Factory implements ports.GraphFactory for one graph domain over an Env.
type Factory struct {
	env  *Env
	kind domain.GraphKind
}

// NewFactory creates the factory servicing the given domain.
func NewFactory(env *Env, kind domain.GraphKind) *Factory {
	return &Factory{env: env, kind: kind}
}

// NewDefaultFactories returns one factory per domain in the documented
// resolution priority: logic, shading, motion, layout, effect.
func NewDefaultFactories(env *Env) []ports.GraphFactory {
	order := []domain.GraphKind{
		domain.KindLogic,
		domain.KindShading,
		domain.KindMotion,
		domain.KindLayout,
		domain.KindEffect,
	}
	factories := make([]ports.GraphFactory, len(order))
	for i, kind := range order {
		factories[i] = NewFactory(env, kind)
	}
	return factories
}

func (f *Factory) Kind() domain.GraphKind { return f.kind }

func (f *Factory) Descriptor() domain.GraphTypeDescriptor {
	return domain.GraphTypeDescriptor{
		Kind:         f.kind,
		Capabilities: capabilities[f.kind],
	}
}

func (f *Factory) Owns(asset domain.AssetHandle, graphName string) bool {
	_, err := f.env.graph(domain.GraphHandle{Asset: asset, Name: graphName}, f.kind)
	return err == nil
}

// SupportsKind reports whether CreateNode accepts the kind. Protected kinds
// exist from graph creation and are never creatable.
func (f *Factory) SupportsKind(kind string) bool {
	spec, ok := catalogs[f.kind][kind]
	return ok && !spec.Protected
}

func (f *Factory) node(gh domain.GraphHandle, ref domain.NodeRef) (*graphState, *node, error) {
	g, err := f.env.graph(gh, f.kind)
	if err != nil {
		return nil, nil, err
	}
	n, ok := g.Nodes[ref]
	if !ok {
		return nil, nil, fmt.Errorf("node %q: %w", ref, domain.ErrNodeNotFound)
	}
	return g, n, nil
}

// FindNode returns a snapshot of the node.
func (f *Factory) FindNode(gh domain.GraphHandle, ref domain.NodeRef) (*domain.NodeSnapshot, error) {
	_, n, err := f.node(gh, ref)
	if err != nil {
		return nil, err
	}
	return snapshot(n), nil
}

// FindNodesByKind returns snapshots of nodes matching the filter, in
// creation order.
func (f *Factory) FindNodesByKind(gh domain.GraphHandle, filter domain.NodeFilter) ([]domain.NodeSnapshot, error) {
	g, err := f.env.graph(gh, f.kind)
	if err != nil {
		return nil, err
	}
	var out []domain.NodeSnapshot
	for _, ref := range g.Order {
		n, ok := g.Nodes[ref]
		if !ok {
			continue
		}
		if filter.Kind != "" && n.Kind != filter.Kind {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(n.Title, filter.NameContains) {
			continue
		}
		out = append(out, *snapshot(n))
	}
	return out, nil
}

// CreateNode adds a node of the given kind, plus any dependent default
// sub-objects its kind declares. Deleting the node removes those too.
func (f *Factory) CreateNode(gh domain.GraphHandle, kind string, pos domain.Position, params map[string]any) (*domain.NodeSnapshot, error) {
	g, err := f.env.graph(gh, f.kind)
	if err != nil {
		return nil, err
	}
	spec, ok := catalogs[f.kind][kind]
	if !ok {
		return nil, fmt.Errorf("node kind %q is unknown in %s graphs", kind, f.kind)
	}
	if spec.Protected {
		// Protected roots exist from graph creation only.
		return nil, fmt.Errorf("cannot create %q: %w", kind, domain.ErrProtectedNode)
	}

	n := newNode(kind, spec, pos)
	if len(params) > 0 {
		n.Params = params
		if title, ok := params["title"].(string); ok && title != "" {
			n.Title = title
		}
	}
	g.Nodes[n.Ref] = n
	g.Order = append(g.Order, n.Ref)

	for _, subKind := range spec.SubKinds {
		sub := newNode(subKind, catalogs[f.kind][subKind], pos)
		g.Nodes[sub.Ref] = sub
		g.Order = append(g.Order, sub.Ref)
		n.SubRefs = append(n.SubRefs, sub.Ref)
	}

	f.env.markDirty(gh.Asset)
	return snapshot(n), nil
}

// DeleteNode removes the node, its links, and its owned sub-objects.
func (f *Factory) DeleteNode(gh domain.GraphHandle, ref domain.NodeRef) error {
	g, n, err := f.node(gh, ref)
	if err != nil {
		return err
	}
	if n.Protected {
		return fmt.Errorf("cannot delete %q: %w", n.Kind, domain.ErrProtectedNode)
	}
	for _, sub := range n.SubRefs {
		if _, ok := g.Nodes[sub]; ok {
			f.removeNode(g, g.Nodes[sub])
		}
	}
	f.removeNode(g, n)
	f.env.markDirty(gh.Asset)
	return nil
}

func (f *Factory) removeNode(g *graphState, n *node) {
	for _, p := range n.Pins {
		self := domain.PinRef{Node: n.Ref, Name: p.Name, Direction: p.Dir}
		for _, peer := range p.Links {
			f.dropLink(g, peer, self)
		}
		p.Links = nil
	}
	delete(g.Nodes, n.Ref)
	for i, ref := range g.Order {
		if ref == n.Ref {
			g.Order = append(g.Order[:i], g.Order[i+1:]...)
			break
		}
	}
}

// SetEnabled toggles the node's enabled flag.
func (f *Factory) SetEnabled(gh domain.GraphHandle, ref domain.NodeRef, enabled bool) error {
	_, n, err := f.node(gh, ref)
	if err != nil {
		return err
	}
	n.Enabled = enabled
	f.env.markDirty(gh.Asset)
	return nil
}

// Reconstruct rebuilds the node's pins from its kind definition. Pin values
// reset to defaults; links to surviving pins are kept.
func (f *Factory) Reconstruct(gh domain.GraphHandle, ref domain.NodeRef) error {
	if !f.Descriptor().Supports(domain.CapReconstruct) {
		return fmt.Errorf("reconstruct in %s graphs: %w", f.kind, domain.ErrUnsupported)
	}
	_, n, err := f.node(gh, ref)
	if err != nil {
		return err
	}
	spec := catalogs[f.kind][n.Kind]
	old := n.Pins
	n.Pins = nil
	for _, ps := range spec.Pins {
		p := &pin{Name: ps.Name, Dir: ps.Dir, Type: ps.Type, Value: ps.Def}
		for _, op := range old {
			if op.Name == ps.Name && op.Dir == ps.Dir {
				p.Links = op.Links
			}
		}
		n.Pins = append(n.Pins, p)
	}
	f.env.markDirty(gh.Asset)
	return nil
}

func (f *Factory) pin(gh domain.GraphHandle, ref domain.PinRef) (*graphState, *node, *pin, error) {
	g, n, err := f.node(gh, ref.Node)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, p := range n.Pins {
		if p.Name != ref.Name {
			continue
		}
		if ref.Direction == "" || p.Dir == ref.Direction {
			return g, n, p, nil
		}
	}
	return nil, nil, nil, fmt.Errorf("pin %q on node %q: %w", ref.Name, ref.Node, domain.ErrPinNotFound)
}

// Connect links an output pin to an input pin.
func (f *Factory) Connect(gh domain.GraphHandle, from, to domain.PinRef) error {
	if !f.Descriptor().Supports(domain.CapPins) {
		return fmt.Errorf("connect in %s graphs: %w", f.kind, domain.ErrUnsupported)
	}
	from.Direction = domain.PinOut
	to.Direction = domain.PinIn
	_, _, src, err := f.pin(gh, from)
	if err != nil {
		return err
	}
	_, _, dst, err := f.pin(gh, to)
	if err != nil {
		return err
	}
	if src.Type != "" && dst.Type != "" && src.Type != dst.Type {
		return fmt.Errorf("cannot connect %s pin %q to %s pin %q: %w",
			src.Type, from, dst.Type, to, domain.ErrIncompatiblePins)
	}
	if linked(src.Links, to) {
		return fmt.Errorf("%s and %s are already connected", from, to)
	}
	src.Links = append(src.Links, to)
	dst.Links = append(dst.Links, from)
	f.env.markDirty(gh.Asset)
	return nil
}

// Disconnect breaks the link between two pins, or every link on from when
// to is nil.
func (f *Factory) Disconnect(gh domain.GraphHandle, from domain.PinRef, to *domain.PinRef) error {
	if !f.Descriptor().Supports(domain.CapPins) {
		return fmt.Errorf("disconnect in %s graphs: %w", f.kind, domain.ErrUnsupported)
	}
	g, _, p, err := f.pin(gh, from)
	if err != nil {
		return err
	}
	from.Direction = p.Dir

	if to == nil {
		for _, peer := range p.Links {
			f.dropLink(g, peer, from)
		}
		p.Links = nil
		f.env.markDirty(gh.Asset)
		return nil
	}

	_, _, peer, err := f.pin(gh, *to)
	if err != nil {
		return err
	}
	target := *to
	target.Direction = peer.Dir
	if !linked(p.Links, target) {
		return fmt.Errorf("%s and %s are not connected", from, target)
	}
	p.Links = remove(p.Links, target)
	peer.Links = remove(peer.Links, from)
	f.env.markDirty(gh.Asset)
	return nil
}

// BreakAllLinks removes every link touching the node.
func (f *Factory) BreakAllLinks(gh domain.GraphHandle, ref domain.NodeRef) error {
	if !f.Descriptor().Supports(domain.CapPins) {
		return fmt.Errorf("break links in %s graphs: %w", f.kind, domain.ErrUnsupported)
	}
	g, n, err := f.node(gh, ref)
	if err != nil {
		return err
	}
	for _, p := range n.Pins {
		self := domain.PinRef{Node: n.Ref, Name: p.Name, Direction: p.Dir}
		for _, peer := range p.Links {
			f.dropLink(g, peer, self)
		}
		p.Links = nil
	}
	f.env.markDirty(gh.Asset)
	return nil
}

// SetPinValue sets the default value carried by a pin.
func (f *Factory) SetPinValue(gh domain.GraphHandle, ref domain.PinRef, value any) error {
	if !f.Descriptor().Supports(domain.CapValues) {
		return fmt.Errorf("pin values in %s graphs: %w", f.kind, domain.ErrUnsupported)
	}
	_, _, p, err := f.pin(gh, ref)
	if err != nil {
		return err
	}
	p.Value = value
	f.env.markDirty(gh.Asset)
	return nil
}

// RestoreNode reinserts a node from a pre-mutation snapshot, preserving its
// ref, pin values and links. Replaces any existing node with the same ref.
func (f *Factory) RestoreNode(gh domain.GraphHandle, snap domain.NodeSnapshot) error {
	g, err := f.env.graph(gh, f.kind)
	if err != nil {
		return err
	}
	if existing, ok := g.Nodes[snap.Ref]; ok {
		f.removeNode(g, existing)
	}

	spec := catalogs[f.kind][snap.Kind]
	n := &node{
		Ref:       snap.Ref,
		Kind:      snap.Kind,
		Title:     snap.Title,
		Enabled:   snap.Enabled,
		Position:  snap.Position,
		Protected: spec.Protected,
	}
	if len(snap.Params) > 0 {
		n.Params = make(map[string]any, len(snap.Params))
		for k, v := range snap.Params {
			n.Params[k] = v
		}
	}
	n.SubRefs = append(n.SubRefs, snap.SubRefs...)

	for _, ps := range snap.Pins {
		n.Pins = append(n.Pins, &pin{Name: ps.Name, Dir: ps.Direction, Type: pinType(spec, ps.Name, ps.Direction), Value: ps.Value})
	}
	g.Nodes[n.Ref] = n
	g.Order = append(g.Order, n.Ref)

	// Rewire links to peers that still exist, both sides.
	for i, ps := range snap.Pins {
		self := domain.PinRef{Node: n.Ref, Name: ps.Name, Direction: ps.Direction}
		for _, peerRef := range ps.LinkedTo {
			peerNode, ok := g.Nodes[peerRef.Node]
			if !ok {
				continue
			}
			for _, pp := range peerNode.Pins {
				if pp.Name == peerRef.Name && pp.Dir == peerRef.Direction {
					if !linked(n.Pins[i].Links, peerRef) {
						n.Pins[i].Links = append(n.Pins[i].Links, peerRef)
					}
					if !linked(pp.Links, self) {
						pp.Links = append(pp.Links, self)
					}
				}
			}
		}
	}

	f.env.markDirty(gh.Asset)
	return nil
}

func pinType(spec kindSpec, name string, dir domain.PinDirection) string {
	for _, ps := range spec.Pins {
		if ps.Name == name && ps.Dir == dir {
			return ps.Type
		}
	}
	return ""
}

// dropLink removes the back-reference at peer pointing to self.
func (f *Factory) dropLink(g *graphState, peer, self domain.PinRef) {
	n, ok := g.Nodes[peer.Node]
	if !ok {
		return
	}
	for _, p := range n.Pins {
		if p.Name == peer.Name && p.Dir == peer.Direction {
			p.Links = remove(p.Links, self)
		}
	}
}

func linked(links []domain.PinRef, target domain.PinRef) bool {
	for _, l := range links {
		if l == target {
			return true
		}
	}
	return false
}

func remove(links []domain.PinRef, target domain.PinRef) []domain.PinRef {
	out := links[:0]
	for _, l := range links {
		if l != target {
			out = append(out, l)
		}
	}
	return out
}

func snapshot(n *node) *domain.NodeSnapshot {
	s := &domain.NodeSnapshot{
		Ref:      n.Ref,
		Kind:     n.Kind,
		Title:    n.Title,
		Enabled:  n.Enabled,
		Position: n.Position,
	}
	if len(n.Params) > 0 {
		s.Params = make(map[string]any, len(n.Params))
		for k, v := range n.Params {
			s.Params[k] = v
		}
	}
	s.SubRefs = append(s.SubRefs, n.SubRefs...)
	for _, p := range n.Pins {
		links := make([]domain.PinRef, len(p.Links))
		copy(links, p.Links)
		s.Pins = append(s.Pins, domain.PinSnapshot{
			Name:      p.Name,
			Direction: p.Dir,
			Value:     p.Value,
			LinkedTo:  links,
		})
	}
	return s
}
