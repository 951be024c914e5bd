// Package plan declares the output files of a generation request before
// the external generator runs, and detects import-path collisions while
// doing so.
package plan

import (
	"path"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler/resolve"
)

// Plan is the declared shape of one generator invocation. All slices are
// in insertion order of first observation, so a stable request order
// yields an identical plan on every run.
type Plan struct {
	// Outputs are the files the generator must produce, one per claimed
	// import path per configured suffix.
	Outputs []string

	// OutPath is the shared directory prefix the generator writes all
	// outputs under. It is the first output's directory minus the
	// request's import-path suffix.
	OutPath string

	// Paths are the claimed import paths: the roots the generator must
	// emit code for, as opposed to dependencies carried only in
	// descriptor sets.
	Paths []string

	// DescriptorSets is the deduplicated transitive descriptor-set
	// closure of all libraries in the request.
	DescriptorSets []string

	owners map[string]protogen.File
}

// Owner returns the schema file that claimed the given import path.
func (p *Plan) Owner(importPath string) (protogen.File, bool) {
	f, ok := p.owners[importPath]
	return f, ok
}

// Build computes the plan for req when compiled by c, declaring outputs
// under declareRoot.
//
// Two distinct files resolving to the same import path is a fatal
// configuration error; re-observing the same file through duplicate
// dependency edges is expected and skipped. Build has no side effects, so
// a collision always fails the request before any external invocation.
func Build(req *protogen.Request, c *protogen.Compiler, declareRoot string) (*Plan, error) {
	if req.ImportPath == "" {
		return nil, protogen.NewConfigError("ImportPath", nil, "request import path cannot be empty")
	}
	if len(c.Suffixes) == 0 {
		return nil, protogen.NewConfigError("Suffixes", c.Name, "compiler declares no output suffixes")
	}
	p := &Plan{owners: make(map[string]protogen.File)}
	seenSets := make(map[string]struct{})
	for _, lib := range req.Libraries {
		for _, ds := range lib.DescriptorSets {
			if _, ok := seenSets[ds]; ok {
				continue
			}
			seenSets[ds] = struct{}{}
			p.DescriptorSets = append(p.DescriptorSets, ds)
		}
		for _, src := range lib.Sources {
			importPath := resolve.Path(src, lib.SourceRoot)
			if owner, ok := p.owners[importPath]; ok {
				if owner != src {
					return nil, protogen.NewDuplicatePathError(importPath, src.Path, owner.Path)
				}
				continue
			}
			p.owners[importPath] = src
			p.Paths = append(p.Paths, importPath)
			for _, suffix := range c.Suffixes {
				out := path.Join(declareRoot, req.ImportPath, src.StrippedBase()+suffix)
				p.Outputs = append(p.Outputs, out)
				if p.OutPath == "" {
					p.OutPath = outPath(out, req.ImportPath)
				}
			}
		}
	}
	return p, nil
}

// outPath strips the import-path suffix from the first output's directory,
// leaving the common prefix the generator writes under.
func outPath(out, importPath string) string {
	dir := path.Dir(out)
	dir = dir[:len(dir)-len(importPath)]
	if dir == "" {
		return "."
	}
	return path.Clean(dir)
}
