package dbenum

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	descriptor "github.com/gogo/protobuf/protoc-gen-gogo/descriptor"
	"github.com/gogo/protobuf/protoc-gen-gogo/generator"
	plugin "github.com/gogo/protobuf/protoc-gen-gogo/plugin"
	"github.com/gogo/protobuf/proto"
)

// Generator emits the augmented pass: one <base>_dbenum.pb.go file per
// matched schema file, mapping marked enum values to their database
// names. The emitted file belongs to the same Go package as the baseline
// output and only references types the baseline pass defines.
type Generator struct {
	suffix string
}

// NewGenerator creates a Generator with the fixed augmented suffix.
func NewGenerator() *Generator {
	return &Generator{suffix: Suffix}
}

// Generate produces the augmented response for every file in the
// request's to-generate set. Callers restrict the request to matched
// files first; files without marked enums yield an empty mapping file
// and should not be passed in.
func (g *Generator) Generate(req *plugin.CodeGeneratorRequest) (*plugin.CodeGeneratorResponse, error) {
	byName := make(map[string]*descriptor.FileDescriptorProto, len(req.ProtoFile))
	for _, file := range req.GetProtoFile() {
		byName[file.GetName()] = file
	}
	resp := &plugin.CodeGeneratorResponse{}
	for _, name := range req.FileToGenerate {
		fd, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("dbenum: file %s to generate is missing from the request descriptors", name)
		}
		content, err := g.genFile(fd)
		if err != nil {
			return nil, err
		}
		resp.File = append(resp.File, &plugin.CodeGeneratorResponse_File{
			Name:    proto.String(outputName(name, g.suffix)),
			Content: proto.String(content),
		})
	}
	return resp, nil
}

// genFile renders the augmentation file for one schema file.
func (g *Generator) genFile(fd *descriptor.FileDescriptorProto) (string, error) {
	f := jen.NewFile(goPackage(fd))
	f.HeaderComment("Code generated by protoc-gen-dbenum. DO NOT EDIT.")
	f.HeaderComment("source: " + fd.GetName())
	for _, enum := range fd.EnumType {
		if !HasDBEnum(enum.Value) {
			continue
		}
		g.genEnum(f, enum)
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("dbenum: render %s: %w", fd.GetName(), err)
	}
	return buf.String(), nil
}

// genEnum emits the db-name table, the DBString method and the reverse
// lookup table for one enum.
func (g *Generator) genEnum(f *jen.File, enum *descriptor.EnumDescriptorProto) {
	typeName := generator.CamelCase(enum.GetName())
	nameVar := typeName + "_dbname"
	valueVar := typeName + "_dbvalue"

	f.Commentf("%s maps %s values to their database names.", nameVar, typeName)
	f.Var().Id(nameVar).Op("=").Map(jen.Int32()).String().Values(jen.DictFunc(func(d jen.Dict) {
		seen := make(map[int32]bool)
		for _, v := range enum.Value {
			if seen[v.GetNumber()] {
				// allow_alias: the first declared value wins.
				continue
			}
			seen[v.GetNumber()] = true
			d[jen.Lit(int(v.GetNumber()))] = jen.Lit(dbName(v))
		}
	}))

	f.Commentf("%s maps database names back to %s values.", valueVar, typeName)
	f.Var().Id(valueVar).Op("=").Map(jen.String()).Id(typeName).Values(jen.DictFunc(func(d jen.Dict) {
		seen := make(map[string]bool)
		for _, v := range enum.Value {
			name := dbName(v)
			if seen[name] {
				continue
			}
			seen[name] = true
			d[jen.Lit(name)] = jen.Id(typeName).Call(jen.Lit(int(v.GetNumber())))
		}
	}))

	f.Comment("DBString returns the database name of x.")
	f.Func().Params(jen.Id("x").Id(typeName)).Id("DBString").Params().String().Block(
		jen.If(
			jen.List(jen.Id("s"), jen.Id("ok")).Op(":=").Id(nameVar).Index(jen.Id("int32").Call(jen.Id("x"))),
			jen.Id("ok"),
		).Block(
			jen.Return(jen.Id("s")),
		),
		jen.Return(jen.Qual("strconv", "Itoa").Call(jen.Id("int").Call(jen.Id("x")))),
	)
}

// dbName derives the database name of an enum value: marked values use
// the snake-cased value name, unmarked values keep the raw proto name.
func dbName(v *descriptor.EnumValueDescriptorProto) string {
	if Marked(v) {
		return inflect.Underscore(strings.ToLower(v.GetName()))
	}
	return v.GetName()
}

// goPackage returns the Go package name of a file: the part after ";" in
// the go_package option, its last path element otherwise, falling back
// to the proto package with dots flattened.
func goPackage(fd *descriptor.FileDescriptorProto) string {
	if gp := fd.GetOptions().GetGoPackage(); gp != "" {
		if i := strings.LastIndex(gp, ";"); i >= 0 {
			return gp[i+1:]
		}
		if i := strings.LastIndex(gp, "/"); i >= 0 {
			return gp[i+1:]
		}
		return gp
	}
	return strings.ReplaceAll(fd.GetPackage(), ".", "_")
}

// outputName maps a schema file name to its augmented output name.
func outputName(protoName, suffix string) string {
	return strings.TrimSuffix(protoName, ".proto") + suffix
}
