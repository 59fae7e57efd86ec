// Package router maps command names to handler families and forwards them
// through the dispatch bridge.
//
// Routing is pure: the lookup itself touches no shared mutable state.
// Handler families are selected by name prefix ("graph_", "asset_") plus a
// small set of exact system command names. Unknown names produce a
// structured error response, never a crash.
package router

import (
	"context"
	"strings"

	"github.com/rigwire/rigwire/internal/dispatch"
	"github.com/rigwire/rigwire/pkg/protocol"
)

const (
	prefixGraph = "graph_"
	prefixAsset = "asset_"
)

// Router resolves commands to handlers and runs them on the owner
// goroutine via the bridge.
type Router struct {
	bridge   *dispatch.Bridge
	handlers *Handlers
}

// New creates a router over the given bridge and handler set.
func New(bridge *dispatch.Bridge, handlers *Handlers) *Router {
	return &Router{bridge: bridge, handlers: handlers}
}

// Dispatch routes one command and blocks until its response is ready.
// Every handler, including read-only queries and ping, runs on the owner
// goroutine so that a round trip validates end-to-end health.
func (r *Router) Dispatch(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	fn := r.resolve(cmd.Name)
	if fn == nil {
		return protocol.ErrorMessage("unknown command: " + cmd.Name)
	}
	return r.bridge.Call(ctx, cmd, fn)
}

// resolve is the static command-name table. Returns nil for unknown names.
func (r *Router) resolve(name string) dispatch.HandlerFunc {
	h := r.handlers
	switch name {
	case "ping":
		return h.Ping
	case "status":
		return h.Status
	case "shutdown":
		return h.Shutdown
	}
	switch {
	case strings.HasPrefix(name, prefixGraph):
		return h.graphHandler(name)
	case strings.HasPrefix(name, prefixAsset):
		return h.assetHandler(name)
	}
	return nil
}

func (h *Handlers) graphHandler(name string) dispatch.HandlerFunc {
	switch name {
	case "graph_batch":
		return h.GraphBatch
	case "graph_query":
		return h.GraphQuery
	case "graph_describe":
		return h.GraphDescribe
	case "graph_resolve":
		return h.GraphResolve
	}
	return nil
}

func (h *Handlers) assetHandler(name string) dispatch.HandlerFunc {
	switch name {
	case "asset_open":
		return h.AssetOpen
	case "asset_close":
		return h.AssetClose
	case "asset_save":
		return h.AssetSave
	case "asset_status":
		return h.AssetStatus
	}
	return nil
}
