package compiler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler"
)

// touchTool honors the -expected contract of the real generator tool:
// it touches every expected output listed in the parameter file.
const touchTool = `#!/bin/sh
param="${1#-param=}"
prev=""
while IFS= read -r arg; do
	if [ "$prev" = "-expected" ]; then
		mkdir -p "$(dirname "$arg")"
		: > "$arg"
	fi
	prev="$arg"
done < "$param"
`

func writeTool(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "go-protoc")
	require.NoError(t, os.WriteFile(path, []byte(touchTool), 0o755))
	return path
}

func testCompiler(t *testing.T, suffixes ...string) *protogen.Compiler {
	t.Helper()
	if len(suffixes) == 0 {
		suffixes = []string{".pb.go"}
	}
	return &protogen.Compiler{
		Name:         "go_proto",
		Tool:         writeTool(t),
		Protoc:       "bin/protoc",
		Plugin:       "bin/protoc-gen-go",
		Suffixes:     suffixes,
		ValidArchive: true,
		Deps:         []string{"example.com/runtime/proto"},
	}
}

func libRequest(importPath string, paths ...string) *protogen.Request {
	lib := &protogen.Library{SourceRoot: "proto"}
	for _, p := range paths {
		lib.Sources = append(lib.Sources, protogen.File{Path: p})
	}
	return protogen.NewRequest(importPath, lib)
}

func TestGenerate(t *testing.T) {
	gen, err := compiler.New(testCompiler(t), compiler.WithDeclareRoot(t.TempDir()))
	require.NoError(t, err)

	res, err := gen.Generate(context.Background(), libRequest("example.com/pkg", "proto/bar.proto"))
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "bar.pb.go", filepath.Base(res.Files[0]))
	assert.FileExists(t, res.Files[0])
}

func TestGenerateDuplicatePathFailsBeforeInvocation(t *testing.T) {
	out := t.TempDir()
	gen, err := compiler.New(testCompiler(t), compiler.WithDeclareRoot(out))
	require.NoError(t, err)

	req := protogen.NewRequest("example.com/pkg",
		&protogen.Library{SourceRoot: "a", Sources: []protogen.File{{Path: "a/bar.proto"}}},
		&protogen.Library{SourceRoot: "b", Sources: []protogen.File{{Path: "b/bar.proto"}}},
	)
	_, err = gen.Generate(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, protogen.ErrDuplicatePath))

	// No side effects: nothing was written under the declare root.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateAll(t *testing.T) {
	gen, err := compiler.New(testCompiler(t),
		compiler.WithDeclareRoot(t.TempDir()),
		compiler.WithWorkers(2),
	)
	require.NoError(t, err)

	reqs := []*protogen.Request{
		libRequest("example.com/a", "proto/a.proto"),
		libRequest("example.com/b", "proto/b.proto"),
		libRequest("example.com/c", "proto/c.proto"),
	}
	results, err := gen.GenerateAll(context.Background(), reqs...)
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Results keep request order regardless of scheduling.
	assert.Equal(t, "a.pb.go", filepath.Base(results[0].Files[0]))
	assert.Equal(t, "b.pb.go", filepath.Base(results[1].Files[0]))
	assert.Equal(t, "c.pb.go", filepath.Base(results[2].Files[0]))
}

func TestNewValidation(t *testing.T) {
	t.Run("nil compiler", func(t *testing.T) {
		_, err := compiler.New(nil)
		assert.True(t, errors.Is(err, protogen.ErrBadConfig))
	})

	t.Run("missing tool", func(t *testing.T) {
		_, err := compiler.New(&protogen.Compiler{Name: "go_proto"})
		assert.True(t, errors.Is(err, protogen.ErrBadConfig))
	})

	t.Run("bad workers", func(t *testing.T) {
		_, err := compiler.New(testCompiler(t), compiler.WithWorkers(0))
		assert.True(t, errors.Is(err, protogen.ErrBadConfig))
	})
}

func TestBackend(t *testing.T) {
	c := testCompiler(t)
	b, err := compiler.NewBackend(c, compiler.WithDeclareRoot(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, "go_proto", b.Name())
	assert.True(t, b.ValidArchive())
	assert.Equal(t, []string{"example.com/runtime/proto"}, b.Deps())

	res, err := b.Compile(context.Background(), libRequest("example.com/pkg", "proto/bar.proto"))
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
}

func TestAugmentingBackend(t *testing.T) {
	base, err := compiler.NewBackend(testCompiler(t), compiler.WithDeclareRoot(t.TempDir()))
	require.NoError(t, err)

	aug := testCompiler(t)
	aug.Name = "go_grpc"
	aug.Suffixes = []string{"_grpc.pb.go"}
	aug.Deps = []string{"example.com/runtime/grpc", "example.com/runtime/proto"}

	b, err := compiler.NewAugmentingBackend(base, aug, compiler.WithDeclareRoot(t.TempDir()))
	require.NoError(t, err)

	// Base deps come first, own deps are merged without duplicates, and
	// the output is never independently buildable.
	assert.Equal(t, []string{"example.com/runtime/proto", "example.com/runtime/grpc"}, b.Deps())
	assert.False(t, b.ValidArchive())

	t.Run("requires base", func(t *testing.T) {
		_, err := compiler.NewAugmentingBackend(nil, aug)
		assert.True(t, errors.Is(err, protogen.ErrBadConfig))
	})
}
