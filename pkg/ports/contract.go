package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/pkg/domain"
)

// FactoryFixture describes what the contract suite needs to exercise a
// GraphFactory implementation against one of its graphs.
type FactoryFixture struct {
	Factory GraphFactory
	Graph   domain.GraphHandle
	// NodeKind is a kind the factory can create in this graph.
	NodeKind string
}

// RunGraphFactoryContract runs a suite of tests verifying that a
// GraphFactory implementation adheres to the interface contract. Tests that
// need a capability the domain does not advertise assert the typed
// unsupported error instead.
func RunGraphFactoryContract(t *testing.T, fx FactoryFixture) {
	f := fx.Factory
	g := fx.Graph
	desc := f.Descriptor()

	t.Run("Create and Find", func(t *testing.T) {
		node, err := f.CreateNode(g, fx.NodeKind, domain.Position{X: 10, Y: 20}, nil)
		require.NoError(t, err, "CreateNode should not return error")
		require.NotNil(t, node)
		assert.False(t, node.Ref.IsZero(), "created node must carry a NodeRef")
		assert.Equal(t, fx.NodeKind, node.Kind)

		found, err := f.FindNode(g, node.Ref)
		require.NoError(t, err)
		assert.Equal(t, node.Ref, found.Ref)

		require.NoError(t, f.DeleteNode(g, node.Ref))
	})

	t.Run("Find Non-Existent", func(t *testing.T) {
		_, err := f.FindNode(g, domain.NodeRef("no-such-node"))
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("Delete removes node", func(t *testing.T) {
		node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
		require.NoError(t, err)

		require.NoError(t, f.DeleteNode(g, node.Ref))
		_, err = f.FindNode(g, node.Ref)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)

		// Refs are never reused; deleting twice stays an error.
		assert.ErrorIs(t, f.DeleteNode(g, node.Ref), domain.ErrNodeNotFound)
	})

	t.Run("FindNodesByKind", func(t *testing.T) {
		node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
		require.NoError(t, err)
		defer func() { _ = f.DeleteNode(g, node.Ref) }()

		matches, err := f.FindNodesByKind(g, domain.NodeFilter{Kind: fx.NodeKind})
		require.NoError(t, err)
		refs := make([]domain.NodeRef, 0, len(matches))
		for _, m := range matches {
			refs = append(refs, m.Ref)
		}
		assert.Contains(t, refs, node.Ref)
	})

	t.Run("Unknown kind rejected", func(t *testing.T) {
		assert.False(t, f.SupportsKind("definitely-not-a-kind"))
		_, err := f.CreateNode(g, "definitely-not-a-kind", domain.Position{}, nil)
		assert.Error(t, err)
	})

	t.Run("Describe", func(t *testing.T) {
		node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
		require.NoError(t, err)
		defer func() { _ = f.DeleteNode(g, node.Ref) }()

		for _, v := range []domain.Verbosity{domain.VerbosityMinimal, domain.VerbosityNormal, domain.VerbosityFull} {
			out, err := f.Describe(g, node.Ref, v)
			require.NoError(t, err, "Describe at %s", v)
			assert.NotEmpty(t, out)
		}
	})

	if desc.Supports(domain.CapPins) {
		t.Run("Connect and Disconnect", func(t *testing.T) {
			a, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
			require.NoError(t, err)
			b, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
			require.NoError(t, err)
			defer func() {
				_ = f.DeleteNode(g, a.Ref)
				_ = f.DeleteNode(g, b.Ref)
			}()

			out := firstPin(t, a, domain.PinOut)
			in := firstPin(t, b, domain.PinIn)

			require.NoError(t, f.Connect(g, out, in))

			snap, err := f.FindNode(g, a.Ref)
			require.NoError(t, err)
			p, ok := snap.Pin(out.Name, domain.PinOut)
			require.True(t, ok)
			assert.Contains(t, p.LinkedTo, in)

			require.NoError(t, f.Disconnect(g, out, &in))
			snap, err = f.FindNode(g, a.Ref)
			require.NoError(t, err)
			p, _ = snap.Pin(out.Name, domain.PinOut)
			assert.NotContains(t, p.LinkedTo, in)
		})
	} else {
		t.Run("Pins unsupported", func(t *testing.T) {
			node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
			require.NoError(t, err)
			defer func() { _ = f.DeleteNode(g, node.Ref) }()

			err = f.Connect(g, domain.PinRef{Node: node.Ref, Name: "x", Direction: domain.PinOut},
				domain.PinRef{Node: node.Ref, Name: "y", Direction: domain.PinIn})
			assert.ErrorIs(t, err, domain.ErrUnsupported)
		})
	}

	if desc.Supports(domain.CapValues) {
		t.Run("SetPinValue", func(t *testing.T) {
			node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
			require.NoError(t, err)
			defer func() { _ = f.DeleteNode(g, node.Ref) }()

			in := firstPin(t, node, domain.PinIn)
			require.NoError(t, f.SetPinValue(g, in, 42.5))

			snap, err := f.FindNode(g, node.Ref)
			require.NoError(t, err)
			p, ok := snap.Pin(in.Name, domain.PinIn)
			require.True(t, ok)
			assert.Equal(t, 42.5, p.Value)
		})
	}

	if desc.Supports(domain.CapEnable) {
		t.Run("SetEnabled", func(t *testing.T) {
			node, err := f.CreateNode(g, fx.NodeKind, domain.Position{}, nil)
			require.NoError(t, err)
			defer func() { _ = f.DeleteNode(g, node.Ref) }()

			require.NoError(t, f.SetEnabled(g, node.Ref, false))
			snap, err := f.FindNode(g, node.Ref)
			require.NoError(t, err)
			assert.False(t, snap.Enabled)
		})
	}
}

func firstPin(t *testing.T, node *domain.NodeSnapshot, dir domain.PinDirection) domain.PinRef {
	t.Helper()
	for _, p := range node.Pins {
		if p.Direction == dir {
			return domain.PinRef{Node: node.Ref, Name: p.Name, Direction: dir}
		}
	}
	t.Fatalf("node kind %q has no %s pin; fixture kind unsuitable for pin tests", node.Kind, dir)
	return domain.PinRef{}
}
