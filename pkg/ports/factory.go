package ports

import (
	"github.com/rigwire/rigwire/pkg/domain"
)

// GraphFactory is the uniform surface one graph domain (logic, shading,
// motion, layout, effect) exposes to the command bridge.
//
// All methods are called exclusively on the owner goroutine; implementations
// need no locking of their own. A factory that cannot support an operation
// for its domain must return domain.ErrUnsupported (wrapped with context)
// rather than silently no-op.
type GraphFactory interface {
	// Kind names the graph domain this factory services.
	Kind() domain.GraphKind

	// Descriptor reports the domain's capability set.
	Descriptor() domain.GraphTypeDescriptor

	// Owns reports whether this factory services the given asset/graph pair.
	// The registry asks factories in priority order; the first owner wins.
	Owns(asset domain.AssetHandle, graphName string) bool

	// SupportsKind reports whether nodes of the given kind can be created
	// in this domain.
	SupportsKind(kind string) bool

	// FindNode returns a snapshot of the node, or domain.ErrNodeNotFound.
	FindNode(graph domain.GraphHandle, ref domain.NodeRef) (*domain.NodeSnapshot, error)

	// FindNodesByKind returns snapshots of nodes matching the filter.
	FindNodesByKind(graph domain.GraphHandle, filter domain.NodeFilter) ([]domain.NodeSnapshot, error)

	// CreateNode adds a node and returns its snapshot, including any
	// dependent default sub-objects the domain creates alongside it.
	CreateNode(graph domain.GraphHandle, kind string, pos domain.Position, params map[string]any) (*domain.NodeSnapshot, error)

	// DeleteNode removes a node and every link touching it.
	DeleteNode(graph domain.GraphHandle, ref domain.NodeRef) error

	// SetEnabled toggles the node's enabled flag.
	SetEnabled(graph domain.GraphHandle, ref domain.NodeRef, enabled bool) error

	// Reconstruct rebuilds a node's pins from its current definition,
	// dropping links to pins that no longer exist.
	Reconstruct(graph domain.GraphHandle, ref domain.NodeRef) error

	// Connect links an output pin to an input pin.
	Connect(graph domain.GraphHandle, from, to domain.PinRef) error

	// Disconnect breaks the link between two pins, or every link on the
	// single pin when to is nil.
	Disconnect(graph domain.GraphHandle, from domain.PinRef, to *domain.PinRef) error

	// BreakAllLinks removes every link touching the node.
	BreakAllLinks(graph domain.GraphHandle, ref domain.NodeRef) error

	// SetPinValue sets the default value carried by a pin.
	SetPinValue(graph domain.GraphHandle, pin domain.PinRef, value any) error

	// RestoreNode reinserts a node from a snapshot taken before a
	// DeleteNode or Reconstruct, preserving its NodeRef, pin values and
	// links (links are rewired only to peers that still exist). An
	// existing node with the same ref is replaced. This is the natural
	// inverse the batch engine uses for rollback.
	RestoreNode(graph domain.GraphHandle, snap domain.NodeSnapshot) error

	// Describe renders a describe payload for the node at the requested
	// verbosity. Output logic switches on the node's kind tag, never on
	// concrete types.
	Describe(graph domain.GraphHandle, ref domain.NodeRef, verbosity domain.Verbosity) (map[string]any, error)
}
