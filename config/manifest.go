package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/protogen"
)

// Manifest declares the schema libraries to generate code for. It is the
// file-based stand-in for the build-rule evaluation layer that normally
// assembles generation requests.
type Manifest struct {
	Libraries []LibraryConfig `yaml:"libraries"`
}

// LibraryConfig declares one generated library.
type LibraryConfig struct {
	// ImportPath is the output library's import identifier.
	ImportPath string `yaml:"importpath"`

	// Compiler names the backend in the registry.
	Compiler string `yaml:"compiler"`

	// SourceRoot is the directory prefix the sources' import paths are
	// rooted at; "." marks generated sources.
	SourceRoot string `yaml:"source_root"`

	// Root is the storage root of the sources; empty for checked-in files.
	Root string `yaml:"root"`

	Sources        []string          `yaml:"sources"`
	DescriptorSets []string          `yaml:"descriptor_sets"`
	ImportMap      map[string]string `yaml:"import_map"`
}

// LoadManifest reads a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	for i, lib := range m.Libraries {
		if lib.ImportPath == "" {
			return nil, protogen.NewConfigError("ImportPath", nil,
				fmt.Sprintf("library %d declares no import path", i))
		}
		if len(lib.Sources) == 0 {
			return nil, protogen.NewConfigError("Sources", lib.ImportPath, "library declares no sources")
		}
	}
	return &m, nil
}

// Request assembles the generation request of one declared library.
func (l *LibraryConfig) Request() *protogen.Request {
	lib := &protogen.Library{
		SourceRoot:     l.SourceRoot,
		DescriptorSets: append([]string(nil), l.DescriptorSets...),
	}
	for _, src := range l.Sources {
		lib.Sources = append(lib.Sources, protogen.File{
			Path:      src,
			Root:      l.Root,
			Generated: l.Root != "",
		})
	}
	req := protogen.NewRequest(l.ImportPath, lib)
	req.ImportMap = l.ImportMap
	return req
}
