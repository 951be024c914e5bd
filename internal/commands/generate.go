package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/protogen"
	"github.com/syssam/protogen/compiler"
	"github.com/syssam/protogen/compiler/invoke"
	"github.com/syssam/protogen/config"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code for every library in the manifest",
		Example: `  # Generate using ./compilers.yaml and ./protogen.yaml
  protogen generate --out gen-out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd)
		},
	}
	cmd.Flags().String("out", "", "directory outputs are declared under")
	cmd.Flags().Int("workers", 0, "parallel requests per compiler (default GOMAXPROCS)")
	return cmd
}

func runGenerate(cmd *cobra.Command) error {
	reg, man, err := loadSetup(cmd)
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}
	overrides, err := config.LoadOverrides()
	if err != nil {
		return err
	}
	if out == "" {
		out = overrides.OutDir
	}
	if workers == 0 {
		workers = overrides.Workers
	}

	// Group requests by backend and run each group as one parallel batch.
	byCompiler := make(map[string][]*protogen.Request)
	for i := range man.Libraries {
		lib := &man.Libraries[i]
		byCompiler[lib.Compiler] = append(byCompiler[lib.Compiler], lib.Request())
	}
	for _, name := range reg.Names() {
		reqs := byCompiler[name]
		if len(reqs) == 0 {
			continue
		}
		c, err := reg.Compiler(name)
		if err != nil {
			return err
		}
		opts := []compiler.Option{compiler.WithDeclareRoot(out)}
		if workers > 0 {
			opts = append(opts, compiler.WithWorkers(workers))
		}
		if overrides.ParamDir != "" {
			inv, err := invoke.New(invoke.WithParamDir(overrides.ParamDir))
			if err != nil {
				return err
			}
			opts = append(opts, compiler.WithInvoker(inv))
		}
		gen, err := compiler.New(c, opts...)
		if err != nil {
			return err
		}
		results, err := gen.GenerateAll(cmd.Context(), reqs...)
		if err != nil {
			return err
		}
		for _, res := range results {
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
		}
		delete(byCompiler, name)
	}
	for name := range byCompiler {
		return protogen.NewConfigError("Compiler", name, "manifest references an unknown compiler")
	}
	return nil
}

// loadSetup reads the registry and manifest named by the persistent flags.
func loadSetup(cmd *cobra.Command) (*config.Registry, *config.Manifest, error) {
	compilersPath, err := cmd.Flags().GetString("compilers")
	if err != nil {
		return nil, nil, err
	}
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, nil, err
	}
	reg, err := config.Load(compilersPath)
	if err != nil {
		return nil, nil, err
	}
	man, err := config.LoadManifest(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	return reg, man, nil
}
