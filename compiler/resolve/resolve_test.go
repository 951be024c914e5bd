package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler/resolve"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name       string
		src        protogen.File
		sourceRoot string
		want       string
	}{
		{
			name:       "source file without adjustment",
			src:        protogen.File{Path: "foo/bar.proto"},
			sourceRoot: "foo",
			want:       "bar.proto",
		},
		{
			name:       "nested source file",
			src:        protogen.File{Path: "proto/api/v1/user.proto"},
			sourceRoot: "proto",
			want:       "api/v1/user.proto",
		},
		{
			name:       "generated file uses storage root",
			src:        protogen.File{Path: "gen-out/bin/foo/bar.proto", Root: "gen-out/bin", Generated: true},
			sourceRoot: ".",
			want:       "foo/bar.proto",
		},
		{
			name:       "source root already carries storage root",
			src:        protogen.File{Path: "gen-out/bin/foo/_virtual/bar.proto", Root: "gen-out/bin", Generated: true},
			sourceRoot: "gen-out/bin/foo/_virtual",
			want:       "bar.proto",
		},
		{
			name:       "storage root joined with source root",
			src:        protogen.File{Path: "gen-out/bin/foo/bar.proto", Root: "gen-out/bin", Generated: true},
			sourceRoot: "foo",
			want:       "bar.proto",
		},
		{
			name:       "dotted library root keeps full relative path",
			src:        protogen.File{Path: "foo/bar/baz.proto"},
			sourceRoot: "",
			want:       "foo/bar/baz.proto",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolve.Path(tt.src, tt.sourceRoot))
		})
	}
}

// Paths that do not start with the computed prefix degrade to the full
// path instead of failing.
func TestPathPrefixMismatch(t *testing.T) {
	src := protogen.File{Path: "other/tree/bar.proto"}
	assert.Equal(t, "other/tree/bar.proto", resolve.Path(src, "foo"))

	// Same for generated files from a different storage root.
	gen := protogen.File{Path: "some/root/bar.proto", Root: "gen-out/bin", Generated: true}
	assert.Equal(t, "some/root/bar.proto", resolve.Path(gen, "."))
}

// Distinct storage paths under one source root must resolve to distinct
// import paths.
func TestPathDistinct(t *testing.T) {
	srcs := []protogen.File{
		{Path: "proto/a.proto"},
		{Path: "proto/b.proto"},
		{Path: "proto/sub/a.proto"},
		{Path: "proto/sub/b.proto"},
	}
	seen := make(map[string]string, len(srcs))
	for _, src := range srcs {
		p := resolve.Path(src, "proto")
		prev, ok := seen[p]
		assert.Falsef(t, ok, "files %s and %s resolved to the same path %q", src.Path, prev, p)
		seen[p] = src.Path
	}
}
