package batch

import (
	"fmt"

	"github.com/rigwire/rigwire/pkg/domain"
	"github.com/rigwire/rigwire/pkg/ports"
)

// pinSnapshot resolves a pin's current snapshot on its node.
func pinSnapshot(f ports.GraphFactory, g domain.GraphHandle, ref domain.PinRef) (*domain.PinSnapshot, error) {
	node, err := f.FindNode(g, ref.Node)
	if err != nil {
		return nil, err
	}
	var p *domain.PinSnapshot
	var ok bool
	if ref.Direction != "" {
		p, ok = node.Pin(ref.Name, ref.Direction)
	} else {
		p, ok = node.FindPin(ref.Name)
	}
	if !ok {
		return nil, fmt.Errorf("pin %q on node %q: %w", ref.Name, ref.Node, domain.ErrPinNotFound)
	}
	return p, nil
}

// pinLinks returns the current link set and resolved direction of a pin.
func pinLinks(f ports.GraphFactory, g domain.GraphHandle, ref domain.PinRef) ([]domain.PinRef, domain.PinDirection, error) {
	p, err := pinSnapshot(f, g, ref)
	if err != nil {
		return nil, "", err
	}
	links := make([]domain.PinRef, len(p.LinkedTo))
	copy(links, p.LinkedTo)
	return links, p.Direction, nil
}

// pinValue returns the current value carried by a pin.
func pinValue(f ports.GraphFactory, g domain.GraphHandle, ref domain.PinRef) (any, error) {
	p, err := pinSnapshot(f, g, ref)
	if err != nil {
		return nil, err
	}
	return p.Value, nil
}

// reconnect restores every link in the set touching self, orienting each
// call output-to-input as Connect requires.
func reconnect(f ports.GraphFactory, g domain.GraphHandle, self domain.PinRef, links []domain.PinRef) error {
	for _, peer := range links {
		var err error
		if self.Direction == domain.PinOut {
			err = f.Connect(g, self, peer)
		} else {
			err = f.Connect(g, peer, self)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// reconnectPair restores a single link whose endpoints may have been named
// in either order by the client.
func reconnectPair(f ports.GraphFactory, g domain.GraphHandle, from, to domain.PinRef) error {
	p, err := pinSnapshot(f, g, from)
	if err != nil {
		return err
	}
	if p.Direction == domain.PinOut {
		return f.Connect(g, from, to)
	}
	return f.Connect(g, to, from)
}
