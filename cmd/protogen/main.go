// Command protogen plans and dispatches batched protobuf code generation.
package main

import (
	"os"

	"github.com/syssam/protogen/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
