package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/protogen"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever a schema file changes",
		Long: `Watch the source directories of every manifest library and re-run
generation when a schema file is written, created, renamed or removed.
Generation failures are reported and watching continues.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}
	cmd.Flags().String("out", "", "directory outputs are declared under")
	cmd.Flags().Int("workers", 0, "parallel requests per compiler (default GOMAXPROCS)")
	return cmd
}

func runWatch(cmd *cobra.Command) error {
	_, man, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]struct{})
	for _, lib := range man.Libraries {
		for _, src := range lib.Sources {
			dirs[filepath.Dir(src)] = struct{}{}
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	// Generate once up front so the watch starts from a consistent tree.
	if err := runGenerate(cmd); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, protogen.SchemaExt) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s changed, regenerating\n", ev.Name)
			if err := runGenerate(cmd); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		case <-cmd.Context().Done():
			return nil
		}
	}
}
