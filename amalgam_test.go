package amalgam_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amalgam"
)

type greeter struct{}

func (greeter) Greet(name string) string { return "Hello, " + name + "!" }

type farewell struct{}

func (farewell) SayGoodbye(name string) string { return "Goodbye, " + name + "!" }

func TestDefaultEngine(t *testing.T) {
	assert.Same(t, amalgam.Default(), amalgam.Default())

	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, amalgam.Provide("facade.logger", amalgam.Value(logger)))

	g, f := amalgam.MustSourceOf(greeter{}), amalgam.MustSourceOf(farewell{})
	custom, err := amalgam.Compose("Custom", []amalgam.Element{g, f}, amalgam.Options{
		Implements:   []amalgam.Capability{amalgam.CapabilityOf(g)},
		Dependencies: []amalgam.Token{"facade.logger"},
		Conflict:     amalgam.Fail,
	})
	require.NoError(t, err)

	inst, err := custom.New()
	require.NoError(t, err)
	err = inst.Chain().Call("greet", "Alice").Call("sayGoodbye", "Bob").Err()
	require.NoError(t, err)

	hello, _ := inst.Result("greet")
	bye, _ := inst.Result("sayGoodbye")
	assert.Equal(t, "Hello, Alice!", hello)
	assert.Equal(t, "Goodbye, Bob!", bye)

	dep, ok := inst.Dependency("facade.logger")
	require.True(t, ok)
	assert.Same(t, logger, dep)
}

func TestNewEngineIsIsolated(t *testing.T) {
	eng := amalgam.NewEngine()
	require.NoError(t, eng.Provide("isolated", amalgam.Value(1)))
	assert.False(t, amalgam.Default().Registry().Has("isolated"))

	typ, err := eng.MixinMany(amalgam.MustSourceOf(greeter{}))
	require.NoError(t, err)
	assert.Equal(t, "MixedType", typ.Name())

	_, err = eng.Compose("T", []amalgam.Element{
		amalgam.Named{Name: "a", Fn: func() {}},
		amalgam.Named{Name: "a", Fn: func() {}},
	}, amalgam.Options{Conflict: amalgam.Fail})
	assert.ErrorIs(t, err, amalgam.ErrDuplicateName)
}
