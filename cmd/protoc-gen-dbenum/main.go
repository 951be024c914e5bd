// Command protoc-gen-dbenum is a protoc plugin that augments ordinary Go
// code generation with database-name mappings for annotated enums. It
// speaks the standard plugin protocol on stdin/stdout.
package main

import (
	"github.com/gogo/protobuf/proto"
	plugin "github.com/gogo/protobuf/protoc-gen-gogo/plugin"
	"github.com/gogo/protobuf/vanity/command"

	"github.com/syssam/protogen/plugin/dbenum"
)

func main() {
	req := command.Read()
	p, err := dbenum.NewPipeline()
	if err == nil {
		err = p.Run(req, command.Write)
	}
	if err != nil {
		command.Write(&plugin.CodeGeneratorResponse{
			Error: proto.String(err.Error()),
		})
	}
}
