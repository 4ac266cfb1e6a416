package contract_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amalgam/internal/contract"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		expr string
		want contract.Contract
	}{
		{"string", contract.Contract{Kind: contract.String}},
		{"number", contract.Contract{Kind: contract.Number}},
		{"bool", contract.Contract{Kind: contract.Bool}},
		{"boolean", contract.Contract{Kind: contract.Bool}},
		{"object", contract.Contract{Kind: contract.Object}},
		{"function", contract.Contract{Kind: contract.Func}},
		{"any", contract.Contract{Kind: contract.Any}},
		{"list(string)", contract.Contract{Kind: contract.String, Array: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := contract.ParseType(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want.Kind, got.Kind)
			assert.Equal(t, tc.want.Array, got.Array)
		})
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, expr := range []string{"integer", "map(string)", "list(list(string))", "list(string, number)", `"string"`, "a.b", "list("} {
		t.Run(expr, func(t *testing.T) {
			_, err := contract.ParseType(expr)
			require.Error(t, err)
		})
	}
}

func TestDecode(t *testing.T) {
	src := `
contract "greet" {
  type  = string
  check = strlen(value) > 0
}

contract "tags" {
  type  = list(string)
  check = length(value) <= 2
}

contract "age" {
  type = number
}

function "ignored" {
  params = []
  result = 1
}
`
	set, err := contract.Decode([]byte(src), "contracts.hcl")
	require.NoError(t, err)
	require.Len(t, set, 3)

	require.NoError(t, set.Validate("greet", []any{"Alice"}))
	assert.ErrorIs(t, set.Validate("greet", []any{""}), contract.ErrValidation)
	assert.ErrorIs(t, set.Validate("greet", []any{7}), contract.ErrValidation)

	require.NoError(t, set.Validate("tags", []any{[]string{"a", "b"}}))
	assert.ErrorIs(t, set.Validate("tags", []any{[]string{"a", "b", "c"}}), contract.ErrValidation)

	require.NoError(t, set.Validate("age", []any{30}))
	assert.Nil(t, set["age"].Check)
}

func TestDecode_CheckRejectsNonFiniteNumbers(t *testing.T) {
	set, err := contract.Decode([]byte(`contract "score" {
  type  = number
  check = value >= 0
}
`), "contracts.hcl")
	require.NoError(t, err)

	require.NoError(t, set.Validate("score", []any{1.5}))
	require.NotPanics(t, func() {
		assert.ErrorIs(t, set.Validate("score", []any{math.NaN()}), contract.ErrValidation)
		assert.ErrorIs(t, set.Validate("score", []any{math.Inf(1)}), contract.ErrValidation)
	})
}

func TestDecode_Errors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := contract.Decode([]byte(`contract "x" {`), "bad.hcl")
		require.Error(t, err)
	})
	t.Run("unknown type", func(t *testing.T) {
		_, err := contract.Decode([]byte(`contract "x" { type = text }`), "bad.hcl")
		require.ErrorContains(t, err, `unknown primitive type "text"`)
	})
	t.Run("duplicate", func(t *testing.T) {
		_, err := contract.Decode([]byte("contract \"x\" { type = string }\ncontract \"x\" { type = number }\n"), "dup.hcl")
		require.ErrorContains(t, err, "declared more than once")
	})
}
