// Package invoke assembles the argument set of a planned generation and
// performs the single batched external-process invocation that produces
// all declared outputs.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"sort"
	"strings"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler/plan"
)

// pathVar is the search-path variable the generator tool needs on
// platforms where the compiler runtime is dynamically linked. Its absence
// from the explicit environment triggers ambient-environment fallback.
const pathVar = "PATH"

// Invoker executes generator tools. The zero value is not usable; use New.
// An Invoker is immutable after construction and safe for concurrent use
// across independent requests.
type Invoker struct {
	env      map[string]string
	paramDir string
}

// Option configures an Invoker.
type Option func(*Invoker) error

// WithEnv sets the explicit process environment of the invocation.
// Generation runs hermetically against this environment when it carries
// the search-path variable; otherwise the ambient environment is
// inherited underneath it.
func WithEnv(env map[string]string) Option {
	return func(i *Invoker) error {
		i.env = make(map[string]string, len(env))
		for k, v := range env {
			if k == "" {
				return protogen.NewConfigError("Env", v, "environment variable name cannot be empty")
			}
			i.env[k] = v
		}
		return nil
	}
}

// WithParamDir sets the directory parameter files are written to.
// It defaults to the system temporary directory.
func WithParamDir(dir string) Option {
	return func(i *Invoker) error {
		i.paramDir = dir
		return nil
	}
}

// New creates an Invoker.
func New(opts ...Option) (*Invoker, error) {
	i := &Invoker{}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Args assembles the full argument list of one invocation, in the fixed
// order the generator tool expects: tool binaries and namespace first,
// then repeated options, descriptor sets, expected outputs and import
// remaps, and finally the bare claimed import paths marking which files
// in the descriptor sets are generation roots.
func Args(c *protogen.Compiler, req *protogen.Request, p *plan.Plan) []string {
	args := []string{
		"-protoc", c.Protoc,
		"-importpath", req.ImportPath,
		"-out_path", p.OutPath,
		"-plugin", c.Plugin,
	}
	for _, opt := range c.Options {
		args = append(args, "-option", opt)
	}
	if c.ImportPathOption {
		args = append(args, "-option", "import_path="+req.ImportPath)
	}
	for _, ds := range p.DescriptorSets {
		args = append(args, "-descriptor_set", ds)
	}
	for _, out := range p.Outputs {
		args = append(args, "-expected", out)
	}
	for _, k := range sortedKeys(req.ImportMap) {
		args = append(args, "-import", k+"="+req.ImportMap[k])
	}
	args = append(args, p.Paths...)
	return args
}

// Invoke runs the compiler's tool once for the planned request. The
// arguments are passed through a parameter file to avoid platform
// argument-length limits. The invocation is atomic from the caller's
// perspective: a non-zero exit or a missing declared output fails the
// whole generation step with the tool's diagnostics surfaced verbatim.
func (i *Invoker) Invoke(ctx context.Context, c *protogen.Compiler, req *protogen.Request, p *plan.Plan) (*protogen.Result, error) {
	if c.Tool == "" {
		return nil, protogen.NewConfigError("Tool", c.Name, "compiler entry point cannot be empty")
	}
	param, err := i.writeParams(Args(c, req, p))
	if err != nil {
		return nil, err
	}
	defer os.Remove(param)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Tool, "-param="+param)
	cmd.Env = i.Environ()
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, protogen.NewToolError(c.Tool, code, stderr.String(),
			fmt.Sprintf("generation of %s failed", req.ImportPath), err)
	}
	// The tool self-verifies the -expected contract; this re-check keeps
	// the atomicity guarantee even against a misbehaving tool.
	for _, out := range p.Outputs {
		if _, err := os.Stat(out); err != nil {
			return nil, protogen.NewToolError(c.Tool, 0, stderr.String(),
				fmt.Sprintf("declared output %s was not produced", out), err)
		}
	}
	return &protogen.Result{Files: slices.Clone(p.Outputs)}, nil
}

// Environ returns the environment of the next invocation, one "key=value"
// entry per variable. The ambient environment is forwarded only when the
// search-path variable is absent from the explicit environment.
func (i *Invoker) Environ() []string {
	explicit := make([]string, 0, len(i.env))
	for _, k := range sortedKeys(i.env) {
		explicit = append(explicit, k+"="+i.env[k])
	}
	if _, ok := i.env[pathVar]; ok {
		return explicit
	}
	return append(os.Environ(), explicit...)
}

// writeParams writes one argument per line to a fresh parameter file and
// returns its path.
func (i *Invoker) writeParams(args []string) (string, error) {
	f, err := os.CreateTemp(i.paramDir, "protogen-args-*.params")
	if err != nil {
		return "", fmt.Errorf("create parameter file: %w", err)
	}
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg)
		b.WriteString("\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write parameter file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close parameter file: %w", err)
	}
	return f.Name(), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
