// Package dbenum is a generator wrapper that augments ordinary protobuf
// code generation with a second, narrower pass: every schema file gets
// its normal generated output, and files declaring enum values marked
// with the db_enum annotation additionally get database-name mapping
// code under a distinct output suffix.
package dbenum

import (
	"github.com/gogo/protobuf/proto"
	descriptor "github.com/gogo/protobuf/protoc-gen-gogo/descriptor"
)

// Suffix is the output suffix of augmented files. It is part of the
// persisted-layout contract: consumers treat baseline and augmented
// outputs as two independently-importable generated units.
const Suffix = "_dbenum.pb.go"

// E_DBEnum is the per-enum-value boolean annotation selecting values for
// the augmented pass. Name and field number are a fixed, versioned
// contract and must be matched exactly by schema authors.
var E_DBEnum = &proto.ExtensionDesc{
	ExtendedType:  (*descriptor.EnumValueOptions)(nil),
	ExtensionType: (*bool)(nil),
	Field:         66001,
	Name:          "protogen.db_enum",
	Tag:           "varint,66001,opt,name=db_enum",
	Filename:      "protogen/dbenum.proto",
}

// Marked reports whether a single enum value carries db_enum=true.
func Marked(v *descriptor.EnumValueDescriptorProto) bool {
	if v == nil || v.Options == nil {
		return false
	}
	ext, err := proto.GetExtension(v.Options, E_DBEnum)
	if err != nil {
		return false
	}
	b, ok := ext.(*bool)
	return ok && b != nil && *b
}

// HasDBEnum reports whether any value in the list carries the marker.
func HasDBEnum(values []*descriptor.EnumValueDescriptorProto) bool {
	for _, v := range values {
		if Marked(v) {
			return true
		}
	}
	return false
}
