package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/internal/platform"
)

func newInitCmd(g *globals) *cobra.Command {
	var versioning bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a quill vault",
		Long: `Initialize a new vault in the target directory: creates the .quill marker,
writes a default quill.yaml and, with --versioning, runs 'git init'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := g.workDir()
			if err != nil {
				return err
			}
			versioning = versioning && !g.noVersioning

			ctx := context.Background()
			store, err := quill.New(ctx, dir,
				quill.WithAutoInit(true),
				quill.WithVersioning(versioning),
				quill.WithLogger(g.logger),
			)
			if err != nil {
				return fmt.Errorf("failed to initialize vault: %w", err)
			}

			cfgPath := filepath.Join(dir, platform.ConfigFile)
			if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
				cfg := quill.Config{Adapter: "fs", Versioning: versioning}
				data, err := yaml.Marshal(&cfg)
				if err != nil {
					return err
				}
				if err := os.WriteFile(cfgPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", platform.ConfigFile, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized quill vault in %s (%d categories)\n", dir, len(store.Categories()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&versioning, "versioning", false, "Commit every change with Git")
	return cmd
}
