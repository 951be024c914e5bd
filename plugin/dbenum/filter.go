package dbenum

import (
	plugin "github.com/gogo/protobuf/protoc-gen-gogo/plugin"
)

// EnumFileSet returns the names of schema files in the request whose
// declared enums carry the db_enum marker on at least one value. The set
// is recomputed per request and never persisted.
func EnumFileSet(req *plugin.CodeGeneratorRequest) map[string]bool {
	set := make(map[string]bool)
	for _, file := range req.GetProtoFile() {
		for _, enum := range file.EnumType {
			if HasDBEnum(enum.Value) {
				set[file.GetName()] = true
				break
			}
		}
	}
	return set
}

// Restrict narrows the request's to-generate set to the base files
// present in matched, preserving the base order, and returns the request.
// Files reachable only as dependencies are never promoted to generation
// roots.
func Restrict(req *plugin.CodeGeneratorRequest, baseFiles []string, matched map[string]bool) *plugin.CodeGeneratorRequest {
	files := make([]string, 0, len(baseFiles))
	for _, file := range baseFiles {
		if matched[file] {
			files = append(files, file)
		}
	}
	req.FileToGenerate = files
	return req
}
