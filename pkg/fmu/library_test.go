package fmu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLookup(t *testing.T) {
	const name = "test-register-lookup"
	t.Cleanup(func() { Unregister(name) })

	ns := &Namespace{
		ReadModelDescription: func(context.Context, string) (*ModelDescription, error) {
			return &ModelDescription{ModelName: "M"}, nil
		},
	}
	Register(name, ns)

	got, ok := Lookup(name)
	require.True(t, ok)
	assert.Same(t, ns, got)
	assert.Contains(t, Libraries(), name)

	md, err := got.ReadModelDescription(context.Background(), "m.fmu")
	require.NoError(t, err)
	assert.Equal(t, "M", md.ModelName)
}

func TestRegister_Replaces(t *testing.T) {
	const name = "test-register-replace"
	t.Cleanup(func() { Unregister(name) })

	first := &Namespace{}
	second := &Namespace{}
	Register(name, first)
	Register(name, second)

	got, ok := Lookup(name)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegister_NilPanics(t *testing.T) {
	assert.Panics(t, func() { Register("nil", nil) })
}

func TestLookup_Unregistered(t *testing.T) {
	const name = "test-unregistered"
	Register(name, &Namespace{})
	Unregister(name)

	_, ok := Lookup(name)
	assert.False(t, ok)
	assert.NotContains(t, Libraries(), name)
}
