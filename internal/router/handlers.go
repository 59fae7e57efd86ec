package router

import (
	"log/slog"
	"time"

	"github.com/rigwire/rigwire/internal/batch"
	"github.com/rigwire/rigwire/internal/focus"
	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/metrics"
	"github.com/rigwire/rigwire/internal/registry"
	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// Handlers is the full handler set behind the router. All handler bodies
// run on the owner goroutine.
type Handlers struct {
	registry *registry.Registry
	engine   *batch.Engine
	focus    *focus.Manager
	env      ports.Environment
	stats    *metrics.Metrics
	logger   *slog.Logger
	started  time.Time
	maxOps   int
	shutdown func()
}

// HandlersConfig wires the handler set's collaborators.
type HandlersConfig struct {
	Registry *registry.Registry
	Engine   *batch.Engine
	Focus    *focus.Manager
	Env      ports.Environment
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// MaxOperations caps the per-batch max_operations parameter. Zero
	// means no server-side ceiling.
	MaxOperations int
	// Shutdown stops the server; invoked by the shutdown command.
	Shutdown func()
}

// NewHandlers creates the handler set.
func NewHandlers(cfg HandlersConfig) *Handlers {
	h := &Handlers{
		registry: cfg.Registry,
		engine:   cfg.Engine,
		focus:    cfg.Focus,
		env:      cfg.Env,
		stats:    cfg.Metrics,
		logger:   cfg.Logger,
		started:  time.Now(),
		maxOps:   cfg.MaxOperations,
		shutdown: cfg.Shutdown,
	}
	if h.logger == nil {
		h.logger = logging.NewNop()
	}
	return h
}

// target resolves the asset/graph a graph command addresses: explicit
// params win, otherwise the focused asset and graph are used.
func (h *Handlers) target(params map[string]any) (domain.AssetHandle, string, error) {
	assetName, hasAsset := protocol.StringParam(params, "asset")
	graphName, _ := protocol.StringParam(params, "graph")

	if hasAsset {
		return domain.AssetHandle(assetName), graphName, nil
	}

	asset, focusedGraph, ok := h.focus.Current()
	if !ok {
		return "", "", &protocol.ValidationError{
			Key:    "asset",
			Reason: "required when no asset is focused",
		}
	}
	if graphName == "" {
		graphName = focusedGraph
	}
	return asset, graphName, nil
}
