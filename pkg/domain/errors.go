package domain

import "errors"

// Sentinel errors shared by factories, the batch engine and the focus
// manager. Factories wrap these with operation context; callers match with
// errors.Is.
var (
	// ErrAssetNotFound indicates the environment knows no asset by that handle.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrGraphNotFound indicates the asset has no graph by that name.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrNodeNotFound indicates a NodeRef does not resolve in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPinNotFound indicates a PinRef does not resolve on its node.
	ErrPinNotFound = errors.New("pin not found")

	// ErrUnsupported indicates the graph domain cannot perform the
	// requested operation (e.g. a layout tree has no pins). Factories must
	// return this rather than silently no-op.
	ErrUnsupported = errors.New("unsupported operation for this graph domain")

	// ErrProtectedNode indicates the node may not be deleted or rebuilt.
	ErrProtectedNode = errors.New("node is protected")

	// ErrNotFocused indicates a command needed a focused asset and none is open.
	ErrNotFocused = errors.New("no asset is focused")

	// ErrIncompatiblePins indicates a connection between pins whose
	// directions or value types do not match.
	ErrIncompatiblePins = errors.New("incompatible pins")
)
