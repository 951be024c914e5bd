// Package protogen orchestrates batched invocations of an external protobuf
// code generator. Given a set of schema files and a configured compiler
// backend, it derives a canonical import path for every file, declares the
// output files the generator is expected to produce, and dispatches a single
// external-process invocation that produces all of them atomically.
//
// The build system's dependency graph, action scheduling and caching are
// external collaborators: protogen processes one generation request
// synchronously and keeps no state across requests.
package protogen

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
)

// SchemaExt is the file extension of a protobuf schema file.
const SchemaExt = ".proto"

// File describes a single schema source artifact.
//
// Path is the full storage path of the file. Root is the storage-root
// directory the file lives under; it is empty for checked-in sources and
// names the generated-file tree for sources produced by an earlier build
// step. A File is immutable once observed by the generation pipeline.
type File struct {
	Path      string
	Root      string
	Generated bool
}

// Base returns the file's basename.
func (f File) Base() string { return path.Base(f.Path) }

// StrippedBase returns the basename without the schema extension.
func (f File) StrippedBase() string {
	return strings.TrimSuffix(f.Base(), SchemaExt)
}

// Library is one schema-compilation unit: the sources other compilation
// units compile against, the source-root prefix adjustments were applied
// under, and the serialized descriptor sets of its transitive closure.
type Library struct {
	// SourceRoot is the repository-relative directory the library's import
	// paths are rooted at. The sentinel "." marks generated sources.
	SourceRoot string

	// Sources are the schema files dependents compile against
	// (the check-deps source set).
	Sources []File

	// DescriptorSets are the serialized descriptor-set files of the
	// library's transitive closure.
	DescriptorSets []string
}

// Request bundles everything a single batched generator invocation needs.
// It is assembled by the build-rule evaluation layer and treated as
// read-only by the pipeline.
type Request struct {
	// ID correlates diagnostics of one request across the pipeline.
	ID uuid.UUID

	// ImportPath is the output library's import identifier. It prefixes
	// every declared output file.
	ImportPath string

	// Libraries are the schema-compilation units to generate code for,
	// in a stable caller-chosen order.
	Libraries []*Library

	// ImportMap maps foreign schema import paths to target-language
	// import identifiers.
	ImportMap map[string]string
}

// NewRequest returns a request for the given import path with a fresh
// correlation ID.
func NewRequest(importPath string, libs ...*Library) *Request {
	return &Request{
		ID:         uuid.New(),
		ImportPath: importPath,
		Libraries:  libs,
	}
}

// Result is the ordered list of generated source files. Every element was
// declared before the external invocation ran; the invocation either
// produced all of them or failed as a whole.
type Result struct {
	Files []string
}

// Compiler is the immutable capability record describing one configured
// generator backend. It is constructed once at configuration time and
// shared by reference across many requests; no field may be mutated after
// construction.
type Compiler struct {
	// Name identifies the backend in configuration and diagnostics.
	Name string

	// Tool is the generator entry point executed for each request.
	Tool string

	// Protoc is the schema compiler binary handed to the tool.
	Protoc string

	// Plugin is the target-language plugin binary handed to the tool.
	Plugin string

	// Suffixes are the output suffixes declared per schema file. A backend
	// emitting both a primary source file and a service file from one
	// schema file lists both here.
	Suffixes []string

	// Options are backend-specific generator options.
	Options []string

	// ImportPathOption injects a synthetic import_path option carrying
	// the request's import path.
	ImportPathOption bool

	// ValidArchive reports whether the backend's output is independently
	// buildable. Methods-only backends that add behavior to types
	// produced elsewhere set this to false.
	ValidArchive bool

	// Deps are the implicit library dependencies every consumer of the
	// backend's output must link against.
	Deps []string
}

// Backend compiles generation requests into target-language sources.
// Concrete backends are selected at configuration time and held by
// reference; implementations must be safe for concurrent use across
// independent requests.
type Backend interface {
	// Name identifies the backend.
	Name() string

	// Compile runs one batched generation request to completion.
	Compile(ctx context.Context, req *Request) (*Result, error)

	// Deps returns the implicit library dependencies of the backend's
	// output.
	Deps() []string

	// ValidArchive reports whether the backend's output is independently
	// buildable.
	ValidArchive() bool
}
