// Package focus tracks which single asset is currently open for editing
// and serializes save-then-close-then-open transitions.
//
// The manager is an explicit context object created at server start and
// threaded through the dispatch bridge; it is never a process-wide global.
// All methods run on the owner goroutine.
package focus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rigwire/rigwire/internal/logging"
	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
)

// State names one position in the focus state machine.
type State string

const (
	StateIdle             State = "idle"
	StateFocused          State = "focused"
	StateFocusedWithError State = "focused_with_error"
)

// Status is the snapshot returned by the asset_status command.
type Status struct {
	State        State              `json:"state"`
	Asset        domain.AssetHandle `json:"asset,omitempty"`
	Graph        string             `json:"graph,omitempty"`
	Dirty        bool               `json:"dirty,omitempty"`
	HasError     bool               `json:"has_error,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// Manager is the focus/lifecycle state machine.
type Manager struct {
	env    ports.Environment
	logger *slog.Logger

	current      domain.AssetHandle
	currentGraph string
	hasError     bool
	errorMessage string
}

// Option configures the manager.
type Option func(*Manager)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a focus manager bound to the owning environment.
func NewManager(env ports.Environment, opts ...Option) *Manager {
	m := &Manager{
		env:    env,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current machine state.
func (m *Manager) State() State {
	switch {
	case m.current == "":
		return StateIdle
	case m.hasError:
		return StateFocusedWithError
	default:
		return StateFocused
	}
}

// Current returns the focused asset and graph, if any.
func (m *Manager) Current() (domain.AssetHandle, string, bool) {
	return m.current, m.currentGraph, m.current != ""
}

// Status reports the full focus snapshot.
func (m *Manager) Status() Status {
	s := Status{
		State:        m.State(),
		Asset:        m.current,
		Graph:        m.currentGraph,
		HasError:     m.hasError,
		ErrorMessage: m.errorMessage,
	}
	if m.current != "" {
		s.Dirty = m.env.IsDirty(m.current)
	}
	return s
}

// Begin focuses an asset. Focusing the already-focused asset performs no
// reopen, only an optional navigation to graphName. Focusing a different
// asset first runs the End sequence for the old one.
func (m *Manager) Begin(ctx context.Context, asset domain.AssetHandle, graphName string) error {
	if asset == "" {
		return fmt.Errorf("focus: %w", domain.ErrAssetNotFound)
	}

	if m.current == asset {
		if graphName != "" && graphName != m.currentGraph {
			if err := m.env.OpenGraph(ctx, asset, graphName); err != nil {
				return err
			}
			m.currentGraph = graphName
		}
		return nil
	}

	if m.current != "" {
		if err := m.End(ctx, false); err != nil {
			return fmt.Errorf("closing %q before focusing %q: %w", m.current, asset, err)
		}
	}

	if err := m.env.OpenAsset(ctx, asset); err != nil {
		return err
	}
	m.current = asset
	m.currentGraph = ""
	m.hasError = false
	m.errorMessage = ""
	m.logger.InfoContext(ctx, "asset focused", "asset", asset)

	if graphName != "" {
		if err := m.env.OpenGraph(ctx, asset, graphName); err != nil {
			return err
		}
		m.currentGraph = graphName
	}
	return nil
}

// SetError poisons the focus: End will leave the asset open so an operator
// can inspect the failed edit in place. It closes and saves nothing itself.
func (m *Manager) SetError(message string) {
	if m.current == "" {
		return
	}
	m.hasError = true
	if message == "" {
		message = "unknown error"
	}
	m.errorMessage = message
}

// ClearError returns a poisoned focus to the plain focused state.
func (m *Manager) ClearError() {
	m.hasError = false
	m.errorMessage = ""
}

// End releases the focus. With a pending error or forceKeepOpen the asset
// stays open, unsaved; tracking state clears either way. Otherwise the
// asset is saved if dirty, then closed. A save failure is logged but never
// blocks the close: hanging would break an automated client's progress.
func (m *Manager) End(ctx context.Context, forceKeepOpen bool) error {
	if m.current == "" {
		return domain.ErrNotFocused
	}
	asset := m.current

	defer func() {
		m.current = ""
		m.currentGraph = ""
		m.hasError = false
		m.errorMessage = ""
	}()

	if m.hasError || forceKeepOpen {
		m.logger.InfoContext(ctx, "focus released, asset left open",
			"asset", asset, "has_error", m.hasError, "force_keep_open", forceKeepOpen)
		return nil
	}

	if m.env.IsDirty(asset) {
		if err := m.env.SaveAsset(ctx, asset); err != nil {
			m.logger.ErrorContext(ctx, "save before close failed", "asset", asset, "err", err)
		}
	}
	if err := m.env.CloseAsset(ctx, asset); err != nil {
		m.logger.ErrorContext(ctx, "close failed", "asset", asset, "err", err)
	}
	m.logger.InfoContext(ctx, "asset closed", "asset", asset)
	return nil
}

// Save persists the focused asset without releasing focus.
func (m *Manager) Save(ctx context.Context) error {
	if m.current == "" {
		return domain.ErrNotFocused
	}
	return m.env.SaveAsset(ctx, m.current)
}
