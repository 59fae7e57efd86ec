package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigwire/rigwire/pkg/adapters/memory"
	"github.com/rigwire/rigwire/pkg/domain"
)

func TestResolvePicksOwningDomain(t *testing.T) {
	env := memory.NewEnv()
	env.AddAsset("rig", map[string]domain.GraphKind{
		"evt": domain.KindLogic,
		"mat": domain.KindShading,
		"fx":  domain.KindEffect,
	})
	r := New(memory.NewDefaultFactories(env)...)

	g, f, err := r.Resolve("rig", "mat")
	require.NoError(t, err)
	assert.Equal(t, domain.KindShading, f.Kind())
	assert.Equal(t, domain.GraphHandle{Asset: "rig", Name: "mat"}, g)

	_, f, err = r.Resolve("rig", "fx")
	require.NoError(t, err)
	assert.Equal(t, domain.KindEffect, f.Kind())
}

func TestResolveEmptyNameFollowsPriority(t *testing.T) {
	env := memory.NewEnv()
	env.AddAsset("rig", map[string]domain.GraphKind{
		"mat": domain.KindShading,
		"evt": domain.KindLogic,
	})
	r := New(memory.NewDefaultFactories(env)...)

	// Both logic and shading could claim the empty name; logic is first in
	// the priority order.
	_, f, err := r.Resolve("rig", "")
	require.NoError(t, err)
	assert.Equal(t, domain.KindLogic, f.Kind())
}

func TestResolveNoOwner(t *testing.T) {
	env := memory.NewEnv()
	env.AddAsset("rig", map[string]domain.GraphKind{"evt": domain.KindLogic})
	r := New(memory.NewDefaultFactories(env)...)

	_, _, err := r.Resolve("rig", "nope")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)

	_, _, err = r.Resolve("missing", "")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)
}

func TestKindsInRegistrationOrder(t *testing.T) {
	env := memory.NewEnv()
	r := New(memory.NewDefaultFactories(env)...)

	assert.Equal(t, []domain.GraphKind{
		domain.KindLogic, domain.KindShading, domain.KindMotion,
		domain.KindLayout, domain.KindEffect,
	}, r.Kinds())

	r2 := New()
	r2.Register(memory.NewFactory(env, domain.KindEffect))
	assert.Equal(t, []domain.GraphKind{domain.KindEffect}, r2.Kinds())
}
