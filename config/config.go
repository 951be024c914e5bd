// Package config loads the compiler registry and generation manifests.
// Defaults live here, in the loading layer; the core packages only see
// fully resolved records.
package config

import (
	"fmt"
	"os"
	"slices"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/syssam/protogen"
)

// DefaultSuffix is the output suffix of a compiler that declares none.
const DefaultSuffix = ".pb.go"

// Overrides are process-level settings read from PROTOGEN_-prefixed
// environment variables. They take precedence over file values.
type Overrides struct {
	Protoc   string `env:"PROTOC"`
	Tool     string `env:"TOOL"`
	Plugin   string `env:"PLUGIN"`
	OutDir   string `env:"OUT_DIR"`
	Workers  int    `env:"WORKERS"`
	ParamDir string `env:"PARAM_DIR"`
}

// LoadOverrides reads the process-level overrides from the environment.
func LoadOverrides() (*Overrides, error) {
	var o Overrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "PROTOGEN_"}); err != nil {
		return nil, fmt.Errorf("parse environment overrides: %w", err)
	}
	return &o, nil
}

// CompilerConfig is one backend entry in the compilers file.
type CompilerConfig struct {
	Name             string   `yaml:"name"`
	Tool             string   `yaml:"tool"`
	Protoc           string   `yaml:"protoc"`
	Plugin           string   `yaml:"plugin"`
	Suffixes         []string `yaml:"suffixes"`
	Options          []string `yaml:"options"`
	ImportPathOption bool     `yaml:"import_path_option"`
	ValidArchive     *bool    `yaml:"valid_archive"`
	Deps             []string `yaml:"deps"`

	// BasedOn composes this backend on top of another: the base's
	// implicit deps are merged in and the output is marked as not
	// independently buildable.
	BasedOn string `yaml:"based_on"`
}

// compilersFile is the on-disk shape of the registry.
type compilersFile struct {
	Compilers []CompilerConfig `yaml:"compilers"`
}

// Registry holds the configured compiler backends, in declaration order.
type Registry struct {
	names     []string
	compilers map[string]*protogen.Compiler
}

// Load reads a compilers file, applies environment overrides and resolves
// backend composition.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compilers file: %w", err)
	}
	o, err := LoadOverrides()
	if err != nil {
		return nil, err
	}
	return Parse(data, o)
}

// Parse builds a registry from the raw compilers file contents.
func Parse(data []byte, o *Overrides) (*Registry, error) {
	var file compilersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse compilers file: %w", err)
	}
	if o == nil {
		o = &Overrides{}
	}
	r := &Registry{compilers: make(map[string]*protogen.Compiler, len(file.Compilers))}
	for _, cc := range file.Compilers {
		c, err := r.resolve(cc, o)
		if err != nil {
			return nil, err
		}
		if _, ok := r.compilers[c.Name]; ok {
			return nil, protogen.NewConfigError("Name", c.Name, "compiler declared twice")
		}
		r.compilers[c.Name] = c
		r.names = append(r.names, c.Name)
	}
	return r, nil
}

// resolve turns one config entry into an immutable compiler record.
func (r *Registry) resolve(cc CompilerConfig, o *Overrides) (*protogen.Compiler, error) {
	if cc.Name == "" {
		return nil, protogen.NewConfigError("Name", nil, "compiler name cannot be empty")
	}
	c := &protogen.Compiler{
		Name:             cc.Name,
		Tool:             firstOf(o.Tool, cc.Tool),
		Protoc:           firstOf(o.Protoc, cc.Protoc),
		Plugin:           firstOf(o.Plugin, cc.Plugin),
		Suffixes:         cc.Suffixes,
		Options:          cc.Options,
		ImportPathOption: cc.ImportPathOption,
		ValidArchive:     cc.ValidArchive == nil || *cc.ValidArchive,
		Deps:             cc.Deps,
	}
	if len(c.Suffixes) == 0 {
		c.Suffixes = []string{DefaultSuffix}
	}
	if cc.BasedOn != "" {
		base, ok := r.compilers[cc.BasedOn]
		if !ok {
			return nil, protogen.NewConfigError("BasedOn", cc.BasedOn,
				fmt.Sprintf("compiler %q is based on an unknown compiler", cc.Name))
		}
		for _, d := range base.Deps {
			if !slices.Contains(c.Deps, d) {
				c.Deps = append(c.Deps, d)
			}
		}
		// A methods-only backend is never independently buildable.
		c.ValidArchive = false
	}
	if c.Tool == "" {
		return nil, protogen.NewConfigError("Tool", cc.Name, "compiler entry point cannot be empty")
	}
	return c, nil
}

// Compiler returns the backend registered under name.
func (r *Registry) Compiler(name string) (*protogen.Compiler, error) {
	c, ok := r.compilers[name]
	if !ok {
		return nil, protogen.NewConfigError("Compiler", name, "unknown compiler")
	}
	return c, nil
}

// Names returns the registered backend names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
