// Package resolve derives the canonical import path of a schema file: the
// identifier other schema files use to import it, independent of how the
// source tree was rearranged by prefix-stripping or prefixing rules.
package resolve

import (
	"path"
	"strings"

	"github.com/syssam/protogen"
)

// Path returns the import path of src within a library rooted at
// sourceRoot.
//
// The prefix to strip is chosen by precedence:
//
//  1. sourceRoot == "." marks a generated file; the prefix is the file's
//     storage root.
//  2. sourceRoot already carries the storage root, which happens when
//     prefix adjustments were applied upstream; the prefix is sourceRoot
//     itself.
//  3. Otherwise the prefix is the storage root joined with sourceRoot,
//     the common unadjusted case.
//
// When src.Path does not start with the computed prefix, which occurs when
// schema files with differing prefix adjustments are combined in a single
// batch, the full path is returned unchanged. An inexact identifier is
// preferable to aborting the whole batch; Path never fails.
func Path(src protogen.File, sourceRoot string) string {
	var prefix string
	switch {
	case sourceRoot == ".":
		prefix = src.Root + "/"
	case strings.HasPrefix(sourceRoot, src.Root):
		prefix = sourceRoot + "/"
	default:
		prefix = path.Join(src.Root, sourceRoot) + "/"
	}
	if !strings.HasPrefix(src.Path, prefix) {
		return src.Path
	}
	return src.Path[len(prefix):]
}
