package dependency

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type consoleLogger struct{ prefix string }

//
// -----------------------------------------------------------------------------
// Register / Get
// -----------------------------------------------------------------------------

// TestNew_Empty verifies New initializes an empty registry.
func TestNew_Empty(t *testing.T) {
	t.Parallel()

	r := New()
	require.NotNil(t, r.items)
	assert.Empty(t, r.Tokens())
}

// TestRegister_ValueKeepsIdentity verifies fixed values are returned as the same pointer.
func TestRegister_ValueKeepsIdentity(t *testing.T) {
	t.Parallel()

	r := New()
	logger := &consoleLogger{prefix: "[LOG]"}
	require.NoError(t, r.Register("logger", Value(logger)))

	got, err := r.Get("logger")
	require.NoError(t, err)
	assert.Same(t, logger, got)
}

// TestRegister_Overwrites verifies a second registration replaces the first.
func TestRegister_Overwrites(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("k", Value(1)))
	require.NoError(t, r.Register("k", Value(2)))

	got, err := r.Get("k")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []Token{"k"}, r.Tokens())
}

// TestRegister_Type verifies type rules allocate a new pointer once, at registration.
func TestRegister_Type(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("logger", Type(reflect.TypeOf(consoleLogger{}))))

	first, err := r.Get("logger")
	require.NoError(t, err)
	second, err := r.Get("logger")
	require.NoError(t, err)

	require.IsType(t, &consoleLogger{}, first)
	assert.Same(t, first, second)
}

// TestRegister_Constructor verifies constructor rules run eagerly exactly once.
func TestRegister_Constructor(t *testing.T) {
	t.Parallel()

	calls := 0
	r := New()
	require.NoError(t, r.Register("n", Constructor(func() any { calls++; return calls })))
	assert.Equal(t, 1, calls)

	got, err := r.Get("n")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, calls)
}

// TestRegister_FactoryResolvesDeps verifies factory deps are passed in declaration order.
func TestRegister_FactoryResolvesDeps(t *testing.T) {
	t.Parallel()

	r := New()
	require.NoError(t, r.Register("host", Value("localhost")))
	require.NoError(t, r.Register("port", Value(5432)))
	require.NoError(t, r.Register("dsn", Factory(func(deps ...any) (any, error) {
		return fmt.Sprintf("%s:%d", deps[0], deps[1]), nil
	}, "host", "port")))

	got, err := r.Get("dsn")
	require.NoError(t, err)
	assert.Equal(t, "localhost:5432", got)
}

// TestRegister_FactoryMissingDep verifies a factory naming an unknown token fails immediately.
func TestRegister_FactoryMissingDep(t *testing.T) {
	t.Parallel()

	r := New()
	called := false
	err := r.Register("svc", Factory(func(deps ...any) (any, error) {
		called = true
		return nil, nil
	}, "db"))

	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, Token("db"), nf.Token)
	assert.False(t, r.Has("svc"))
}

// TestRegister_FactoryError verifies factory errors are wrapped and nothing is stored.
func TestRegister_FactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := New()
	err := r.Register("svc", Factory(func(...any) (any, error) { return nil, boom }))
	require.ErrorIs(t, err, boom)
	assert.False(t, r.Has("svc"))
}

// TestRegister_EmptyRule verifies a zero Rule is rejected.
func TestRegister_EmptyRule(t *testing.T) {
	t.Parallel()

	require.Error(t, New().Register("x", Rule{}))
}

//
// -----------------------------------------------------------------------------
// Lookup failures
// -----------------------------------------------------------------------------

// TestGet_Missing verifies missing tokens produce a NotFoundError naming the token.
func TestGet_Missing(t *testing.T) {
	t.Parallel()

	_, err := New().Get("missing")
	require.Error(t, err)
	assert.EqualError(t, err, `dependency: "missing" not found`)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestMustGet_Missing verifies MustGet panics with the NotFoundError.
func TestMustGet_Missing(t *testing.T) {
	t.Parallel()

	require.PanicsWithError(t, `dependency: "missing" not found`, func() {
		_ = New().MustGet("missing")
	})
}
