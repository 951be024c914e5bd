package dbenum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protogen/plugin/dbenum"
)

func TestGenerate(t *testing.T) {
	req := threeFileRequest(t)
	dbenum.Restrict(req, req.FileToGenerate, dbenum.EnumFileSet(req))

	resp, err := dbenum.NewGenerator().Generate(req)
	require.NoError(t, err)
	require.Len(t, resp.File, 1)

	file := resp.File[0]
	assert.Equal(t, "proto/b"+dbenum.Suffix, file.GetName())

	content := file.GetContent()
	assert.Contains(t, content, "package testpb")
	assert.Contains(t, content, "Code generated by protoc-gen-dbenum. DO NOT EDIT.")
	assert.Contains(t, content, "source: proto/b.proto")
	assert.Contains(t, content, "func (x Kind) DBString() string")
	// Marked values are snake-cased, unmarked values keep the proto name.
	assert.Contains(t, content, `"bytes_type"`)
	assert.Contains(t, content, `"UNKNOWN"`)
}

func TestGenerateSkipsUnmarkedEnums(t *testing.T) {
	req := threeFileRequest(t)
	// Force generation of a.proto, whose only enum is unmarked: the file
	// is emitted but carries no mapping code.
	req.FileToGenerate = []string{"proto/a.proto"}

	resp, err := dbenum.NewGenerator().Generate(req)
	require.NoError(t, err)
	require.Len(t, resp.File, 1)
	assert.NotContains(t, resp.File[0].GetContent(), "DBString")
}

func TestGenerateMissingDescriptor(t *testing.T) {
	req := threeFileRequest(t)
	req.FileToGenerate = []string{"proto/missing.proto"}

	_, err := dbenum.NewGenerator().Generate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proto/missing.proto")
}
