package rigwire

import (
	"context"
	"log/slog"

	"github.com/rigwire/rigwire/internal/batch"
	"github.com/rigwire/rigwire/internal/dispatch"
	"github.com/rigwire/rigwire/internal/focus"
	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/internal/metrics"
	"github.com/rigwire/rigwire/internal/registry"
	"github.com/rigwire/rigwire/internal/router"
	"github.com/rigwire/rigwire/pkg/ports"
	"github.com/rigwire/rigwire/pkg/protocol"
)

// Bridge is the high-level entry point for the Rigwire library. It wires
// the command router, the batch mutation engine, the focus manager and the
// owner-goroutine dispatch bridge over an editing environment.
type Bridge struct {
	env       ports.Environment
	factories []ports.GraphFactory
	registry  *registry.Registry
	engine    *batch.Engine
	focus     *focus.Manager
	bridge    *dispatch.Bridge
	router    *router.Router
	stats     *metrics.Metrics
	sink      ports.AuditSink
	logger    *slog.Logger
	maxOps    int
	onStop    func()
}

// Option defines a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithEnvironment injects the editing environment the bridge drives.
// Factories for the environment's graph domains must be supplied with
// WithFactories.
func WithEnvironment(env ports.Environment) Option {
	return func(b *Bridge) {
		b.env = env
	}
}

// WithFactories sets the graph domain factories, in resolution priority
// order.
func WithFactories(factories ...ports.GraphFactory) Option {
	return func(b *Bridge) {
		b.factories = factories
	}
}

// WithAuditSink records every dispatched command to the sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(b *Bridge) {
		b.sink = sink
	}
}

// WithMetrics attaches a metrics registry. Without it the bridge runs
// unobserved.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) {
		b.stats = m
	}
}

// WithMaxOperations caps the per-batch max_operations parameter
// server-side. Zero leaves only the client-requested limit in force.
func WithMaxOperations(n int) Option {
	return func(b *Bridge) {
		b.maxOps = n
	}
}

// WithStopFunc registers the callback the shutdown command invokes.
func WithStopFunc(stop func()) Option {
	return func(b *Bridge) {
		b.onStop = stop
	}
}

// New initializes a Bridge. An environment and at least one factory are
// required; use pkg/adapters/memory for a self-contained setup.
func New(env ports.Environment, opts ...Option) (*Bridge, error) {
	b := &Bridge{env: env}
	for _, opt := range opts {
		opt(b)
	}
	if b.env == nil {
		return nil, &protocol.ValidationError{Key: "environment", Reason: "an editing environment is required"}
	}
	if len(b.factories) == 0 {
		return nil, &protocol.ValidationError{Key: "factories", Reason: "at least one graph factory is required"}
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.onStop == nil {
		b.onStop = func() {}
	}

	b.registry = registry.New(b.factories...)
	b.engine = batch.NewEngine(b.env, batch.WithLogger(b.logger))
	b.focus = focus.NewManager(b.env, focus.WithLogger(b.logger))

	dispatchOpts := []dispatch.Option{dispatch.WithLogger(b.logger)}
	if b.sink != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithAuditSink(b.sink))
	}
	if b.stats != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMetrics(b.stats))
	}
	b.bridge = dispatch.New(dispatchOpts...)

	handlers := router.NewHandlers(router.HandlersConfig{
		Registry:      b.registry,
		Engine:        b.engine,
		Focus:         b.focus,
		Env:           b.env,
		Metrics:       b.stats,
		Logger:        b.logger,
		MaxOperations: b.maxOps,
		Shutdown:      func() { b.onStop() },
	})
	b.router = router.New(b.bridge, handlers)

	return b, nil
}

// Run enters the owner-goroutine loop. It must be called from the
// goroutine that owns the graph model and blocks until ctx is done; every
// command from every transport executes inside this loop.
func (b *Bridge) Run(ctx context.Context) error {
	return b.bridge.Run(ctx)
}

// Router returns the command router for wiring transports.
func (b *Bridge) Router() *router.Router {
	return b.router
}

// Dispatch routes one command through the owner goroutine and blocks
// until its response is ready. Run must be active on another goroutine.
func (b *Bridge) Dispatch(ctx context.Context, cmd *protocol.Command) *protocol.Response {
	return b.router.Dispatch(ctx, cmd)
}

// Metrics returns the attached metrics registry, or nil.
func (b *Bridge) Metrics() *metrics.Metrics {
	return b.stats
}

// Environment returns the underlying editing environment.
func (b *Bridge) Environment() ports.Environment {
	return b.env
}
