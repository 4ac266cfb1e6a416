package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/vk/amalgam/internal/composer"
	"github.com/vk/amalgam/internal/ctxlog"
	"github.com/vk/amalgam/internal/ctyconv"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/manifest"
	"github.com/vk/amalgam/internal/relay"
	"github.com/vk/amalgam/internal/telemetry"
	"github.com/vk/amalgam/internal/textfunc"
)

const metricsNamespace = "amalgam"

// App encapsulates the engine, its plugins and the run configuration.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	engine   *composer.Engine
	compiler *textfunc.Compiler
	metrics  *prometheus.Registry
}

// NewApp builds an App with its own logger, engine and metrics registry.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	compiler := textfunc.New()
	engine := composer.New(composer.WithLogger(logger), composer.WithCompiler(compiler))

	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg, metricsNamespace)
	if err != nil {
		return nil, err
	}
	engine.Use(m.Bundle())

	tokens := make([]string, 0, len(cfg.Dependencies))
	for token := range cfg.Dependencies {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		if err := engine.Provide(dependency.Token(token), dependency.Value(cfg.Dependencies[token])); err != nil {
			return nil, fmt.Errorf("provide %q: %w", token, err)
		}
	}
	logger.Debug("Engine configured.", "dependencies", len(tokens))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		engine:   engine,
		compiler: compiler,
		metrics:  reg,
	}, nil
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *composer.Engine { return a.engine }

// Run loads the manifest and either lists its types or calls the
// configured method on a fresh instance of the configured type.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.RelayURL != "" {
		client, err := relay.Dial(ctx, relay.Config{
			URL:       a.config.RelayURL,
			Namespace: a.config.RelayNamespace,
			Timeout:   a.config.RelayTimeout,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		a.engine.Use(relay.Bundle(client))
	}

	m, err := manifest.Load(ctxlog.With(ctx, "manifest", a.config.ManifestPath), a.compiler, a.config.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	if a.config.TypeName == "" {
		for _, name := range m.TypeNames() {
			fmt.Fprintln(a.outW, name)
		}
		return nil
	}

	typ, err := m.Compose(a.engine, a.config.TypeName)
	if err != nil {
		return err
	}
	a.logger.Info("Type composed.", "type", typ.Name(), "methods", typ.Methods())

	if a.config.Method != "" {
		if err := a.call(typ); err != nil {
			return err
		}
	}

	if a.config.PrintMetrics {
		if err := a.writeMetrics(); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) call(typ *composer.Type) error {
	inst, err := typ.New()
	if err != nil {
		return err
	}

	args := make([]any, len(a.config.Args))
	for i, raw := range a.config.Args {
		args[i] = ParseArg(raw)
	}

	if _, err := inst.Call(a.config.Method, args...); err != nil {
		return fmt.Errorf("call %s.%s: %w", typ.Name(), a.config.Method, err)
	}
	inst.Wait()

	a.logger.Info("Method called.", "type", typ.Name(), "method", a.config.Method)
	a.report(inst, a.config.Method)
	return nil
}

// report prints the captured result of method. Nothing is printed for a
// nil result or when no result was captured.
func (a *App) report(inst *composer.Instance, method string) {
	result, ok := inst.Result(method)
	if !ok {
		a.logger.Warn("Method captured no result.", "type", inst.Type().Name(), "method", method)
		return
	}
	if result != nil {
		fmt.Fprintln(a.outW, result)
	}
}

func (a *App) writeMetrics() error {
	families, err := a.metrics.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(a.outW, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// ParseArg reads a command-line argument as an HCL literal, so 42 is a
// number, true a bool and ["a", "b"] a list. Anything that is not a
// literal, such as a bare word, is passed through as a string.
func ParseArg(raw string) any {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "arg", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return raw
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return raw
	}
	native, err := ctyconv.ToNative(v)
	if err != nil {
		return raw
	}
	return native
}
