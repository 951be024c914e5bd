// Package compiler runs the generation pipeline: import-path resolution,
// output planning and the batched external invocation, in that order.
package compiler

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler/invoke"
	"github.com/syssam/protogen/compiler/plan"
)

// Generator runs generation requests against one configured compiler.
// A Generator is immutable after construction; independent requests share
// no state and may be generated concurrently.
type Generator struct {
	compiler    *protogen.Compiler
	invoker     *invoke.Invoker
	declareRoot string
	workers     int
}

// Option configures a Generator.
type Option func(*Generator) error

// WithWorkers sets the number of requests GenerateAll processes in
// parallel. It defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(g *Generator) error {
		if n <= 0 {
			return protogen.NewConfigError("Workers", n, "worker count must be positive")
		}
		g.workers = n
		return nil
	}
}

// WithDeclareRoot sets the directory output files are declared under.
func WithDeclareRoot(dir string) Option {
	return func(g *Generator) error {
		g.declareRoot = dir
		return nil
	}
}

// WithInvoker sets a custom invoker, replacing the default one.
func WithInvoker(inv *invoke.Invoker) Option {
	return func(g *Generator) error {
		if inv == nil {
			return protogen.NewConfigError("Invoker", nil, "invoker cannot be nil")
		}
		g.invoker = inv
		return nil
	}
}

// New creates a Generator for the given compiler.
func New(c *protogen.Compiler, opts ...Option) (*Generator, error) {
	if c == nil {
		return nil, protogen.NewConfigError("Compiler", nil, "compiler cannot be nil")
	}
	if c.Tool == "" {
		return nil, protogen.NewConfigError("Tool", c.Name, "compiler entry point cannot be empty")
	}
	g := &Generator{
		compiler: c,
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.invoker == nil {
		inv, err := invoke.New()
		if err != nil {
			return nil, err
		}
		g.invoker = inv
	}
	return g, nil
}

// Generate processes one request synchronously to completion: plan the
// outputs, invoke the tool once, return the produced files. All failures
// abort the request before or during that single invocation; there is no
// partial result and no retry.
func (g *Generator) Generate(ctx context.Context, req *protogen.Request) (*protogen.Result, error) {
	p, err := plan.Build(req, g.compiler, g.declareRoot)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}
	res, err := g.invoker.Invoke(ctx, g.compiler, req, p)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", req.ID, err)
	}
	return res, nil
}

// GenerateAll processes independent requests in parallel, up to the
// configured worker limit. Results are returned in request order. The
// first failure cancels the remaining requests and is returned.
func (g *Generator) GenerateAll(ctx context.Context, reqs ...*protogen.Request) ([]*protogen.Result, error) {
	results := make([]*protogen.Result, len(reqs))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	for i, req := range reqs {
		i, req := i, req
		errg.Go(func() error {
			res, err := g.Generate(ctx, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
