package compiler

import (
	"context"
	"slices"

	"github.com/syssam/protogen"
)

// execBackend is the baseline protogen.Backend: it owns a Generator and
// compiles requests through the external tool.
type execBackend struct {
	c   *protogen.Compiler
	gen *Generator
}

// NewBackend creates the baseline backend for a configured compiler.
func NewBackend(c *protogen.Compiler, opts ...Option) (protogen.Backend, error) {
	gen, err := New(c, opts...)
	if err != nil {
		return nil, err
	}
	return &execBackend{c: c, gen: gen}, nil
}

func (b *execBackend) Name() string { return b.c.Name }

func (b *execBackend) Compile(ctx context.Context, req *protogen.Request) (*protogen.Result, error) {
	return b.gen.Generate(ctx, req)
}

func (b *execBackend) Deps() []string { return slices.Clone(b.c.Deps) }

func (b *execBackend) ValidArchive() bool { return b.c.ValidArchive }

// augmentingBackend adds methods to types produced by a base backend. Its
// output is never independently buildable, so it reports its base's
// implicit dependencies merged with its own and ValidArchive false.
type augmentingBackend struct {
	execBackend
	base protogen.Backend
}

// NewAugmentingBackend creates a methods-only backend on top of base.
func NewAugmentingBackend(base protogen.Backend, c *protogen.Compiler, opts ...Option) (protogen.Backend, error) {
	if base == nil {
		return nil, protogen.NewConfigError("BasedOn", c.Name, "augmenting backend requires a base")
	}
	gen, err := New(c, opts...)
	if err != nil {
		return nil, err
	}
	return &augmentingBackend{
		execBackend: execBackend{c: c, gen: gen},
		base:        base,
	}, nil
}

func (b *augmentingBackend) Deps() []string {
	deps := b.base.Deps()
	for _, d := range b.c.Deps {
		if !slices.Contains(deps, d) {
			deps = append(deps, d)
		}
	}
	return deps
}

func (b *augmentingBackend) ValidArchive() bool { return false }
