package postfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionRegistryKeepsSpellingAndMatchesCaseInsensitively(t *testing.T) {
	r := NewFunctionRegistry()
	require.NoError(t, r.Register("hostPort", func(args ...any) (any, error) { return len(args), nil }))

	err := r.Register("HOSTPORT", func(...any) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrDuplicateFunction)
	assert.ErrorContains(t, err, `already registered as "hostPort"`)
	assert.ErrorIs(t, r.Register("", func(...any) (any, error) { return nil, nil }), ErrConfiguration)
	assert.ErrorIs(t, r.Register("nilFn", nil), ErrConfiguration)

	got, err := r.Call("hostport", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"hostPort"}, r.Names())

	_, err = r.Call("missing")
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.ErrorContains(t, err, `"missing"`)

	var nilRegistry *FunctionRegistry
	_, err = nilRegistry.Call("x")
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Nil(t, nilRegistry.Names())
	assert.Nil(t, nilRegistry.Clone())
}

func TestFunctionRegistryCloneIsIndependent(t *testing.T) {
	r := NewFunctionRegistry()
	require.NoError(t, r.Register("a", func(...any) (any, error) { return "a", nil }))
	clone := r.Clone()
	require.NoError(t, clone.Register("b", func(...any) (any, error) { return "b", nil }))

	assert.Equal(t, []string{"a"}, r.Names())
	assert.Equal(t, []string{"a", "b"}, clone.Names())
}

func TestDocumentFunctions(t *testing.T) {
	r := NewDocumentFunctions()
	assert.Equal(t, []string{"coalesce", "joinPath", "label"}, r.Names())

	got, err := r.Call("coalesce", nil, "", "dev", "prod")
	require.NoError(t, err)
	assert.Equal(t, "dev", got)

	got, err = r.Call("coalesce", nil, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.Call("joinPath", "database", "", "host")
	require.NoError(t, err)
	assert.Equal(t, "database.host", got)

	_, err = r.Call("joinPath", "database", 1)
	assert.Error(t, err)

	got, err = r.Call("label", "")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	got, err = r.Call("label", "cs")
	require.NoError(t, err)
	assert.Equal(t, "cs", got)

	_, err = r.Call("label")
	assert.Error(t, err)
}
