package router

import (
	"context"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// AssetOpen focuses an asset, optionally navigating to a named graph.
// Focusing the already-focused asset is a no-op navigation, never a reopen.
func (h *Handlers) AssetOpen(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	assetName, err := protocol.RequireString(cmd.Params, "asset")
	if err != nil {
		return protocol.Errorf(err)
	}
	graphName, _ := protocol.StringParam(cmd.Params, "graph")

	if err := h.focus.Begin(ctx, domain.AssetHandle(assetName), graphName); err != nil {
		return protocol.Errorf(err)
	}
	return protocol.Success(h.focus.Status())
}

// AssetClose releases the focus. With force_keep_open or a pending batch
// error the asset stays open and unsaved.
func (h *Handlers) AssetClose(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	forceKeepOpen := protocol.BoolParam(cmd.Params, "force_keep_open", false)
	if err := h.focus.End(ctx, forceKeepOpen); err != nil {
		return protocol.Errorf(err)
	}
	return protocol.Success(h.focus.Status())
}

// AssetSave persists the focused asset without releasing focus.
func (h *Handlers) AssetSave(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	if err := h.focus.Save(ctx); err != nil {
		return protocol.Errorf(err)
	}
	return protocol.Success(h.focus.Status())
}

// AssetStatus reports the focus state machine snapshot.
func (h *Handlers) AssetStatus(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	return protocol.Success(h.focus.Status())
}
