package commands

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/tools/imports"
)

func newFmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <dir>",
		Short: "Format generated Go sources under a directory",
		Long: `Run a goimports pass over every .go file under the directory,
pruning unused imports and adding missing ones. External generator
plugins do not always emit canonically-formatted code.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args[0])
		},
	}
}

func runFmt(cmd *cobra.Command, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := imports.Process(path, src, nil)
		if err != nil {
			return fmt.Errorf("format %s: %w", path, err)
		}
		if bytes.Equal(src, formatted) {
			return nil
		}
		if err := os.WriteFile(path, formatted, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	})
}
