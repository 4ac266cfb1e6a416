package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestHCL = `
function "greet" {
  params = [name]
  result = "Hello, ${name}!"
}

function "add" {
  params = [a, b]
  result = a + b
}

type "Greeter" {
  methods = ["greet", "add"]
}
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greeter.hcl")
	require.NoError(t, os.WriteFile(path, []byte(manifestHCL), 0o600))
	return path
}

func TestExecute_Call(t *testing.T) {
	out := &bytes.Buffer{}
	err := Execute(context.Background(), out, []string{
		"call", "Greeter", "greet", "Alice",
		"--manifest", writeManifest(t),
		"--log-level", "error",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Alice!\n", out.String())
}

func TestExecute_CallParsesLiterals(t *testing.T) {
	out := &bytes.Buffer{}
	err := Execute(context.Background(), out, []string{
		"call", "Greeter", "add", "2", "40", "-m", writeManifest(t), "--log-level", "error",
	})
	require.NoError(t, err)
	assert.Equal(t, "42\n", out.String())
}

func TestExecute_Types(t *testing.T) {
	out := &bytes.Buffer{}
	err := Execute(context.Background(), out, []string{"types", "-m", writeManifest(t), "--log-level", "error"})
	require.NoError(t, err)
	assert.Equal(t, "Greeter\n", out.String())
}

func TestExecute_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AMALGAM_MANIFEST", writeManifest(t))
	t.Setenv("AMALGAM_LOG_LEVEL", "error")

	out := &bytes.Buffer{}
	require.NoError(t, Execute(context.Background(), out, []string{"types"}))
	assert.Equal(t, "Greeter\n", out.String())
}

func TestExecute_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "amalgam.yaml")
	content := "manifest: " + writeManifest(t) + "\nlog-level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	out := &bytes.Buffer{}
	require.NoError(t, Execute(context.Background(), out, []string{"types", "--config", cfgPath}))
	assert.Equal(t, "Greeter\n", out.String())
}

func TestExecute_Errors(t *testing.T) {
	manifest := writeManifest(t)

	t.Run("missing manifest", func(t *testing.T) {
		err := Execute(context.Background(), &bytes.Buffer{}, []string{"types", "--manifest", ""})
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr), "got %v", err)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("bad log level", func(t *testing.T) {
		err := Execute(context.Background(), &bytes.Buffer{}, []string{"types", "-m", manifest, "--log-level", "loud"})
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr), "got %v", err)
		assert.Contains(t, exitErr.Message, "invalid log level")
	})

	t.Run("too few args", func(t *testing.T) {
		err := Execute(context.Background(), &bytes.Buffer{}, []string{"call", "Greeter", "-m", manifest})
		assert.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		err := Execute(context.Background(), &bytes.Buffer{}, []string{"types", "--no-such-flag"})
		assert.Error(t, err)
	})

	t.Run("unknown method", func(t *testing.T) {
		err := Execute(context.Background(), &bytes.Buffer{}, []string{"call", "Greeter", "nope", "-m", manifest, "--log-level", "error"})
		assert.Error(t, err)
	})
}
