// Package registry holds the priority-ordered graph factory registry.
//
// Resolution order is part of the observable contract: two domains could in
// principle both claim a matching asset/graph name, so factories are tried
// strictly in registration order and the first owner wins. The default
// order is logic, shading, motion, layout, effect.
package registry

import (
	"fmt"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
)

// Registry is a read-only-after-startup, priority-ordered factory list.
// It holds no other state and needs no locking.
type Registry struct {
	factories []ports.GraphFactory
}

// New builds a registry with the given resolution priority.
func New(factories ...ports.GraphFactory) *Registry {
	return &Registry{factories: factories}
}

// Register appends a factory at the lowest priority. Must only be called
// during startup, before the bridge serves commands.
func (r *Registry) Register(f ports.GraphFactory) {
	r.factories = append(r.factories, f)
}

// Kinds returns the registered domain kinds in resolution order.
func (r *Registry) Kinds() []domain.GraphKind {
	kinds := make([]domain.GraphKind, len(r.factories))
	for i, f := range r.factories {
		kinds[i] = f.Kind()
	}
	return kinds
}

// Resolve finds the factory servicing the asset/graph pair, trying each
// domain in priority order until one claims it.
func (r *Registry) Resolve(asset domain.AssetHandle, graphName string) (domain.GraphHandle, ports.GraphFactory, error) {
	for _, f := range r.factories {
		if f.Owns(asset, graphName) {
			return domain.GraphHandle{Asset: asset, Name: graphName}, f, nil
		}
	}
	return domain.GraphHandle{}, nil, fmt.Errorf("no graph domain owns %s/%s: %w", asset, graphName, domain.ErrGraphNotFound)
}
