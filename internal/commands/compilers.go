package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syssam/protogen/config"
)

func newCompilersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compilers",
		Short: "List the configured compiler backends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			compilersPath, err := cmd.Flags().GetString("compilers")
			if err != nil {
				return err
			}
			reg, err := config.Load(compilersPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range reg.Names() {
				c, err := reg.Compiler(name)
				if err != nil {
					return err
				}
				archive := "valid archive"
				if !c.ValidArchive {
					archive = "methods-only"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, strings.Join(c.Suffixes, ","), archive)
				if len(c.Deps) > 0 {
					fmt.Fprintf(w, "\tdeps: %s\n", strings.Join(c.Deps, ", "))
				}
			}
			return nil
		},
	}
}
