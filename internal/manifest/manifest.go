package manifest

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/amalgam/internal/behavior"
	"github.com/vk/amalgam/internal/composer"
	"github.com/vk/amalgam/internal/contract"
	"github.com/vk/amalgam/internal/ctxlog"
	"github.com/vk/amalgam/internal/dependency"
	"github.com/vk/amalgam/internal/fsutil"
	"github.com/vk/amalgam/internal/textfunc"
	"github.com/zclconf/go-cty/cty/function"
)

// Extension is the file suffix Load looks for.
const Extension = ".hcl"

// TypeDecl is one type block.
type TypeDecl struct {
	Name         string
	Methods      []string
	Properties   []string
	Implements   []string
	Dependencies []string
	Generics     []string
	Conflict     behavior.Policy
	Metadata     map[string]string
}

// Manifest is the merged content of one or more manifest files.
type Manifest struct {
	Functions map[string]function.Function
	Contracts contract.Set
	Types     map[string]*TypeDecl
}

type fileSchema struct {
	Types  []*typeBlock `hcl:"type,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type typeBlock struct {
	Name         string            `hcl:"name,label"`
	Methods      []string          `hcl:"methods,optional"`
	Properties   []string          `hcl:"properties,optional"`
	Implements   []string          `hcl:"implements,optional"`
	Dependencies []string          `hcl:"dependencies,optional"`
	Generics     []string          `hcl:"generics,optional"`
	Conflict     string            `hcl:"conflict,optional"`
	Metadata     map[string]string `hcl:"metadata,optional"`
}

func newManifest() *Manifest {
	return &Manifest{
		Functions: make(map[string]function.Function),
		Contracts: make(contract.Set),
		Types:     make(map[string]*TypeDecl),
	}
}

// Load reads every manifest file under the given paths and merges them.
// Names must be unique across files.
func Load(ctx context.Context, compiler *textfunc.Compiler, paths ...string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	m := newManifest()

	for _, root := range paths {
		files, err := fsutil.FindFiles(root, Extension)
		if err != nil {
			return nil, err
		}
		logger.Debug("Found manifest files.", "path", root, "count", len(files))
		for _, path := range files {
			src, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("manifest: read %s: %w", path, err)
			}
			if err := m.add(compiler, src, path); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Manifest loaded.", "functions", len(m.Functions), "contracts", len(m.Contracts), "types", len(m.Types))
	return m, nil
}

// Parse reads a single manifest from src.
func Parse(compiler *textfunc.Compiler, src []byte, filename string) (*Manifest, error) {
	m := newManifest()
	if err := m.add(compiler, src, filename); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) add(compiler *textfunc.Compiler, src []byte, filename string) error {
	if compiler == nil {
		compiler = textfunc.New()
	}

	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return fmt.Errorf("manifest: failed to parse %s: %w", filename, diags)
	}

	funcs, remain, err := compiler.DecodeBody(file.Body, filename)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	contracts, err := contract.DecodeBody(remain)
	if err != nil {
		return fmt.Errorf("manifest: %s: %w", filename, err)
	}
	var schema fileSchema
	if diags := gohcl.DecodeBody(remain, nil, &schema); diags.HasErrors() {
		return fmt.Errorf("manifest: failed to decode %s: %w", filename, diags)
	}

	for name, fn := range funcs {
		if _, dup := m.Functions[name]; dup {
			return fmt.Errorf("manifest: %s: function %q declared more than once", filename, name)
		}
		m.Functions[name] = fn
	}
	for name, c := range contracts {
		if _, dup := m.Contracts[name]; dup {
			return fmt.Errorf("manifest: %s: contract %q declared more than once", filename, name)
		}
		m.Contracts[name] = c
	}
	for _, tb := range schema.Types {
		if _, dup := m.Types[tb.Name]; dup {
			return fmt.Errorf("manifest: %s: type %q declared more than once", filename, tb.Name)
		}
		policy, err := behavior.ParsePolicy(tb.Conflict)
		if err != nil {
			return fmt.Errorf("manifest: %s: type %q: %w", filename, tb.Name, err)
		}
		m.Types[tb.Name] = &TypeDecl{
			Name:         tb.Name,
			Methods:      tb.Methods,
			Properties:   tb.Properties,
			Implements:   tb.Implements,
			Dependencies: tb.Dependencies,
			Generics:     tb.Generics,
			Conflict:     policy,
			Metadata:     tb.Metadata,
		}
	}
	return nil
}

// TypeNames returns the declared type names, sorted.
func (m *Manifest) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for name := range m.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compose composes the declared type name on eng.
func (m *Manifest) Compose(eng *composer.Engine, name string) (*composer.Type, error) {
	decl, ok := m.Types[name]
	if !ok {
		return nil, fmt.Errorf("manifest: no type %q", name)
	}

	methods := decl.Methods
	if methods == nil {
		methods = textfunc.Names(m.Functions)
	}

	elements := make([]composer.Element, 0, len(methods)+len(decl.Properties))
	for _, method := range methods {
		fn, ok := m.Functions[method]
		if !ok {
			return nil, fmt.Errorf("manifest: type %q: no function %q", name, method)
		}
		call := textfunc.Method(method, fn)
		elements = append(elements, composer.Named{
			Name: method,
			Fn: composer.Func(func(self *composer.Instance, args ...any) (any, error) {
				return call(self, args)
			}),
		})
	}
	for _, p := range decl.Properties {
		elements = append(elements, composer.Property{Name: p})
	}

	opts := composer.Options{
		Contracts: m.Contracts,
		Conflict:  decl.Conflict,
	}
	if len(decl.Implements) > 0 {
		opts.Implements = []composer.Capability{composer.NewCapability(name, decl.Implements...)}
	}
	for _, token := range decl.Dependencies {
		opts.Dependencies = append(opts.Dependencies, dependency.Token(token))
	}
	if len(decl.Metadata) > 0 {
		opts.Metadata = make(map[string]any, len(decl.Metadata))
		for k, v := range decl.Metadata {
			opts.Metadata[k] = v
		}
	}
	if len(decl.Generics) > 0 {
		opts.Generics = make(map[string]composer.Generic, len(decl.Generics))
		for _, label := range decl.Generics {
			opts.Generics[label] = composer.NewGeneric(label)
		}
	}

	return eng.Compose(name, elements, opts)
}
