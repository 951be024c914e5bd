package dbenum

import (
	"fmt"

	plugin "github.com/gogo/protobuf/protoc-gen-gogo/plugin"
	"github.com/gogo/protobuf/vanity"
	"github.com/gogo/protobuf/vanity/command"
)

// State is the pipeline's position in the two-pass run.
type State int

const (
	// Idle is the initial state, before the baseline pass.
	Idle State = iota
	// BaselineGenerated means the ordinary generation pass was written.
	BaselineGenerated
	// Filtering means the enum scan over the original batch is running.
	Filtering
	// TerminalDone means the augmented pass was written.
	TerminalDone
	// TerminalSkippedNoMatches means no file carried the marker and the
	// second pass was skipped. This is the common case, not an error.
	TerminalSkippedNoMatches
)

// String implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case BaselineGenerated:
		return "baseline-generated"
	case Filtering:
		return "filtering"
	case TerminalDone:
		return "done"
	case TerminalSkippedNoMatches:
		return "skipped-no-matches"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// WriteFunc receives each finished response. The plugin binary wires it
// to the stdout protocol writer; responses written in sequence
// concatenate into one response on the wire.
type WriteFunc func(*plugin.CodeGeneratorResponse)

// BaselineFunc runs the ordinary generation pass over a request.
type BaselineFunc func(*plugin.CodeGeneratorRequest) *plugin.CodeGeneratorResponse

// Pipeline runs the two-pass generation: a baseline pass over every file,
// then an augmented pass restricted to the files whose enums carry the
// db_enum marker. Every file always gets baseline output; the augmented
// output is optional specialization, never a substitute.
type Pipeline struct {
	gen      *Generator
	baseline BaselineFunc
	state    State
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBaseline replaces the ordinary generation pass. The default is the
// full gogo generator.
func WithBaseline(fn BaselineFunc) Option {
	return func(p *Pipeline) error {
		if fn == nil {
			return fmt.Errorf("dbenum: baseline function cannot be nil")
		}
		p.baseline = fn
		return nil
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		gen:      NewGenerator(),
		baseline: command.Generate,
		state:    Idle,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State { return p.state }

// Run processes one generation request to completion.
//
// The baseline pass disables the gostring and enum-stringer style
// annotations on every file except the well-known descriptor schema,
// generates, and writes the result immediately. The enum scan then runs
// over the original to-generate set; when it matches at least one file,
// a second pass restricted to exactly those files is generated and
// written with the augmented suffix.
func (p *Pipeline) Run(req *plugin.CodeGeneratorRequest, write WriteFunc) error {
	baseFiles := append([]string(nil), req.FileToGenerate...)

	files := vanity.FilterFiles(req.GetProtoFile(), vanity.NotGoogleProtobufDescriptorProto)
	vanity.ForEachFile(files, vanity.TurnOffGoStringerAll)
	vanity.ForEachFile(files, vanity.TurnOffGoEnumStringerAll)
	write(p.baseline(req))
	p.state = BaselineGenerated

	p.state = Filtering
	matched := EnumFileSet(req)
	Restrict(req, baseFiles, matched)
	if len(req.FileToGenerate) == 0 {
		p.state = TerminalSkippedNoMatches
		return nil
	}
	resp, err := p.gen.Generate(req)
	if err != nil {
		return err
	}
	write(resp)
	p.state = TerminalDone
	return nil
}
