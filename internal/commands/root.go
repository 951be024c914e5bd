// Package commands implements the protogen command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the protogen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "protogen",
		Short:        "Batched protobuf code generation",
		Long:         "protogen plans and dispatches batched invocations of an external\nprotobuf code generator, driven by a compilers file and a manifest\nof schema libraries.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("compilers", "compilers.yaml", "compiler registry file")
	root.PersistentFlags().String("manifest", "protogen.yaml", "schema library manifest")

	root.AddCommand(
		newGenerateCmd(),
		newCompilersCmd(),
		newWatchCmd(),
		newFmtCmd(),
	)
	return root
}
