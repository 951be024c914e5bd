package dbenum_test

import (
	"strings"
	"testing"

	"github.com/gogo/protobuf/proto"
	plugin "github.com/gogo/protobuf/protoc-gen-gogo/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protogen/plugin/dbenum"
)

// fakeBaseline stands in for the ordinary generation pass and records the
// to-generate set it saw.
type fakeBaseline struct {
	sawFiles []string
}

func (f *fakeBaseline) generate(req *plugin.CodeGeneratorRequest) *plugin.CodeGeneratorResponse {
	f.sawFiles = append([]string(nil), req.FileToGenerate...)
	resp := &plugin.CodeGeneratorResponse{}
	for _, name := range req.FileToGenerate {
		resp.File = append(resp.File, &plugin.CodeGeneratorResponse_File{
			Name: proto.String(strings.TrimSuffix(name, ".proto") + ".pb.go"),
		})
	}
	return resp
}

func TestPipelineRun(t *testing.T) {
	base := &fakeBaseline{}
	p, err := dbenum.NewPipeline(dbenum.WithBaseline(base.generate))
	require.NoError(t, err)
	assert.Equal(t, dbenum.Idle, p.State())

	var written []*plugin.CodeGeneratorResponse
	req := threeFileRequest(t)
	require.NoError(t, p.Run(req, func(resp *plugin.CodeGeneratorResponse) {
		written = append(written, resp)
	}))
	assert.Equal(t, dbenum.TerminalDone, p.State())

	// Baseline covered every file with the primary suffix.
	assert.Equal(t, []string{"proto/a.proto", "proto/b.proto", "proto/c.proto"}, base.sawFiles)
	require.Len(t, written, 2)
	var baseNames []string
	for _, f := range written[0].File {
		baseNames = append(baseNames, f.GetName())
	}
	assert.Equal(t, []string{"proto/a.pb.go", "proto/b.pb.go", "proto/c.pb.go"}, baseNames)

	// Exactly one augmented output, for the matched file only.
	require.Len(t, written[1].File, 1)
	assert.Equal(t, "proto/b"+dbenum.Suffix, written[1].File[0].GetName())
	for _, f := range written[0].File {
		assert.NotContains(t, f.GetName(), dbenum.Suffix)
	}
}

func TestPipelineRunNoMatches(t *testing.T) {
	base := &fakeBaseline{}
	p, err := dbenum.NewPipeline(dbenum.WithBaseline(base.generate))
	require.NoError(t, err)

	req := threeFileRequest(t)
	req.ProtoFile[1].EnumType = nil // drop the marked enum

	var written []*plugin.CodeGeneratorResponse
	require.NoError(t, p.Run(req, func(resp *plugin.CodeGeneratorResponse) {
		written = append(written, resp)
	}))

	// Baseline only; the second pass never ran.
	assert.Equal(t, dbenum.TerminalSkippedNoMatches, p.State())
	require.Len(t, written, 1)
	for _, f := range written[0].File {
		assert.NotContains(t, f.GetName(), dbenum.Suffix)
	}
}

func TestPipelineOptions(t *testing.T) {
	_, err := dbenum.NewPipeline(dbenum.WithBaseline(nil))
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", dbenum.Idle.String())
	assert.Equal(t, "baseline-generated", dbenum.BaselineGenerated.String())
	assert.Equal(t, "filtering", dbenum.Filtering.String())
	assert.Equal(t, "done", dbenum.TerminalDone.String())
	assert.Equal(t, "skipped-no-matches", dbenum.TerminalSkippedNoMatches.String())
}
