package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/composer"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/manifest"
)

const greeterHCL = `
function "greet" {
  params = [name]
  result = "Hello, ${name}!"
}

function "sayGoodbye" {
  params = [name]
  result = "Goodbye, ${name}!"
}

contract "greet" {
  type = string
}

type "Greeter" {
  methods      = ["greet", "sayGoodbye"]
  properties   = ["title"]
  implements   = ["greet"]
  dependencies = ["prefix"]
  generics     = ["T"]
  conflict     = "fail"
  metadata = {
    version = "1.0.0"
  }
}

type "Everything" {
}
`

func TestParseAndCompose(t *testing.T) {
	m, err := manifest.Parse(nil, []byte(greeterHCL), "greeter.hcl")
	require.NoError(t, err)

	assert.Equal(t, []string{"Everything", "Greeter"}, m.TypeNames())
	assert.Contains(t, m.Contracts, "greet")

	decl := m.Types["Greeter"]
	assert.Equal(t, behavior.Fail, decl.Conflict)
	assert.Equal(t, []string{"title"}, decl.Properties)

	eng := composer.New()
	require.NoError(t, eng.Provide("prefix", dependency.Value("Dr.")))

	typ, err := m.Compose(eng, "Greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{"greet", "sayGoodbye"}, typ.Methods())
	assert.Equal(t, []string{"title"}, typ.Properties())
	v, ok := typ.MetadataValue("version")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", v)
	assert.Contains(t, typ.Generics(), "T")

	inst, err := typ.New()
	require.NoError(t, err)
	err = inst.Chain().Call("greet", "Alice").Call("sayGoodbye", "Bob").Err()
	require.NoError(t, err)

	hello, _ := inst.Result("greet")
	bye, _ := inst.Result("sayGoodbye")
	assert.Equal(t, "Hello, Alice!", hello)
	assert.Equal(t, "Goodbye, Bob!", bye)

	_, err = inst.Call("greet", 42)
	assert.ErrorIs(t, err, contract.ErrValidation)

	all, err := m.Compose(eng, "Everything")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"greet", "sayGoodbye"}, all.Methods())

	_, err = m.Compose(eng, "Missing")
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"syntax":           `type "A" {`,
		"bad policy":       "type \"A\" {\n  conflict = \"sometimes\"\n}\n",
		"duplicate type":   "type \"A\" {\n}\ntype \"A\" {\n}\n",
		"unknown contract": "contract \"x\" {\n  type = tuple\n}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := manifest.Parse(nil, []byte(src), "bad.hcl")
			assert.Error(t, err)
		})
	}
}

func TestCompose_UnknownMethod(t *testing.T) {
	m, err := manifest.Parse(nil, []byte("type \"A\" {\n  methods = [\"nope\"]\n}\n"), "a.hcl")
	require.NoError(t, err)

	_, err = m.Compose(composer.New(), "A")
	assert.Error(t, err)
}

func TestLoad_MergesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "funcs.hcl"), []byte(`
function "shout" {
  params = [s]
  result = upper(s)
}
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.hcl"), []byte(`
type "Loud" {
  methods = ["shout"]
}
`), 0o600))

	m, err := manifest.Load(context.Background(), nil, dir)
	require.NoError(t, err)

	typ, err := m.Compose(composer.New(), "Loud")
	require.NoError(t, err)
	inst := typ.MustNew()
	_, err = inst.Call("shout", "hey")
	require.NoError(t, err)
	v, _ := inst.Result("shout")
	assert.Equal(t, "HEY", v)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "again.hcl"), []byte(`
type "Loud" {
}
`), 0o600))
	_, err = manifest.Load(context.Background(), nil, dir)
	assert.Error(t, err)
}
