package telemetry_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/amalgam/internal/composer"
	"github.com/vk/amalgam/internal/telemetry"
)

func TestMetricsBundle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg, "amalgam")
	require.NoError(t, err)

	eng := composer.New()
	eng.Use(m.Bundle())

	typ, err := eng.Compose("Greeter", []composer.Element{
		composer.Named{Name: "greet", Fn: func(name string) string { return "Hello, " + name + "!" }},
		composer.Named{Name: "fail", Fn: func() error { return errors.New("nope") }},
	}, composer.Options{})
	require.NoError(t, err)

	inst := typ.MustNew()
	err = inst.Chain().Call("greet", "Alice").Call("greet", "Bob").Err()
	require.NoError(t, err)
	_, err = inst.Call("fail")
	require.Error(t, err)

	v, _ := inst.Result("greet")
	assert.Equal(t, "Hello, Bob!", v, "results pass through untouched")

	expected := `
# HELP amalgam_method_calls_total Completed method calls, by installed method name.
# TYPE amalgam_method_calls_total counter
amalgam_method_calls_total{method="greet"} 2
# HELP amalgam_method_errors_total Method calls that failed validation, returned an error or panicked.
# TYPE amalgam_method_errors_total counter
amalgam_method_errors_total 1
# HELP amalgam_types_composed_total Types assembled, by type name.
# TYPE amalgam_types_composed_total counter
amalgam_types_composed_total{type="Greeter"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := telemetry.NewMetrics(reg, "amalgam")
	require.NoError(t, err)

	_, err = telemetry.NewMetrics(reg, "amalgam")
	assert.Error(t, err)
}
