package property_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/property"
)

func TestDefine_UnsetBeforeFirstWrite(t *testing.T) {
	table := property.NewTable()
	a := property.Define(table, "title", nil)

	v, ok := a.Get()
	assert.False(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "title", a.Name())
}

func TestSet_WithoutContractAcceptsAnything(t *testing.T) {
	a := property.Define(property.NewTable(), "anything", contract.Set{"other": {Kind: contract.String}})

	require.NoError(t, a.Set(42))
	require.NoError(t, a.Set("x"))
	v, ok := a.Get()
	require.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestSet_RejectedValueKeepsPrevious(t *testing.T) {
	contracts := contract.Set{"customProp": {Kind: contract.String}}
	a := property.Define(property.NewTable(), "customProp", contracts)

	require.NoError(t, a.Set("Hello"))

	err := a.Set(42)
	require.ErrorIs(t, err, contract.ErrValidation)

	v, _ := a.Get()
	assert.Equal(t, "Hello", v)
}

func TestSet_CustomPredicate(t *testing.T) {
	contracts := contract.Set{"age": {Kind: contract.Number, Check: func(v any) bool { return v.(int) >= 0 }}}
	a := property.Define(property.NewTable(), "age", contracts)

	require.NoError(t, a.Set(30))
	require.ErrorIs(t, a.Set(-1), contract.ErrValidation)
	v, _ := a.Get()
	assert.Equal(t, 30, v)
}

func TestAccessors_AreIndependent(t *testing.T) {
	first := property.NewTable()
	second := property.NewTable()
	a := property.Define(first, "name", nil)
	b := property.Define(second, "name", nil)

	require.NoError(t, a.Set("A"))
	_, ok := b.Get()
	assert.False(t, ok)
}

func TestTable_NamesAndRedefine(t *testing.T) {
	table := property.NewTable()
	a := property.Define(table, "a", nil)
	property.Define(table, "b", nil)
	require.NoError(t, a.Set(1))

	property.Define(table, "a", nil)
	assert.Equal(t, []string{"a", "b"}, table.Names())

	got, ok := table.Lookup("a")
	require.True(t, ok)
	_, set := got.Get()
	assert.False(t, set)

	_, ok = table.Lookup("missing")
	assert.False(t, ok)
}
