package ports

import (
	"context"

	"github.com/rigwire/rigwire/pkg/domain"
)

// Environment is the asset lifecycle surface of the owning editor. The
// bridge never persists anything itself; durability belongs to the host.
//
// All methods are called exclusively on the owner goroutine.
type Environment interface {
	// OpenAsset opens the asset for editing, or domain.ErrAssetNotFound.
	OpenAsset(ctx context.Context, asset domain.AssetHandle) error

	// OpenGraph navigates the open asset's editor to the named graph.
	OpenGraph(ctx context.Context, asset domain.AssetHandle, graphName string) error

	// SaveAsset persists the asset through the host.
	SaveAsset(ctx context.Context, asset domain.AssetHandle) error

	// CloseAsset closes the asset's editor without saving.
	CloseAsset(ctx context.Context, asset domain.AssetHandle) error

	// IsDirty reports whether the asset has unsaved modifications.
	IsDirty(asset domain.AssetHandle) bool

	// Recompile triggers the host's recompute/recompile pass for the asset
	// after a batch structurally changed one of its graphs.
	Recompile(ctx context.Context, asset domain.AssetHandle) error
}
