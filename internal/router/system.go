package router

import (
	"context"
	"time"

	"github.com/rigwire/rigwire/pkg/protocol"
)

// Ping is the liveness probe. It runs through the full dispatch path so a
// successful pong also validates the owner-thread round trip.
func (h *Handlers) Ping(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	return protocol.Success(map[string]any{"message": "pong"})
}

// Status reports uptime, focus state and the registered graph domains.
func (h *Handlers) Status(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	return protocol.Success(map[string]any{
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"focus":          h.focus.Status(),
		"domains":        h.registry.Kinds(),
	})
}

// Shutdown asks the server to stop. The response is published before the
// stop takes effect so the client gets a well-formed reply.
func (h *Handlers) Shutdown(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	if h.shutdown == nil {
		return protocol.ErrorMessage("shutdown is not enabled on this server")
	}
	h.logger.InfoContext(ctx, "shutdown requested")
	go h.shutdown()
	return protocol.Success(map[string]any{"message": "shutting down"})
}
