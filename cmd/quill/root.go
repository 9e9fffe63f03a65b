package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	verbose      bool
	dir          string
	adapter      string
	noVersioning bool
	logger       *slog.Logger

	// handles opened by open, released after the command ran.
	closers []io.Closer
	closed  int
}

func newRootCmd() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *globals) {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "quill",
		Short: "A categorized note store with rich content",
		Long: `Quill keeps categorized notes in a vault.
Every change is written through a storage adapter (files + Git, Redis or SQLite)
before it becomes visible.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
			slog.SetDefault(g.logger)
		},
		// Not reached when a command fails; main then exits the process,
		// which releases the handles.
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			g.close()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&g.dir, "dir", "C", "", "Vault directory (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&g.adapter, "adapter", "", "Storage adapter: fs, redis, sqlite, memory")
	rootCmd.PersistentFlags().BoolVar(&g.noVersioning, "no-versioning", false, "Disable Git commits")

	rootCmd.AddCommand(
		newInitCmd(g),
		newNoteCmd(g),
		newCategoryCmd(g),
		newStateCmd(g),
		newWatchCmd(g),
		newVersionCmd(),
	)
	return rootCmd, g
}

// workDir resolves the --dir flag. Dev runs are kept inside the temp dir.
func (g *globals) workDir() (string, error) {
	dir := g.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return quill.ResolveVaultPath(dir, quill.IsDevRun()), nil
}

// open locates the vault, loads its configuration and opens the store.
// The storage is returned too, for commands that need adapter features.
func (g *globals) open(ctx context.Context) (*core.Store, core.Storage, error) {
	wd, err := g.workDir()
	if err != nil {
		return nil, nil, err
	}

	root, findErr := quill.FindVaultRoot(wd)
	if findErr != nil {
		root = wd
	}

	cfg, err := quill.LoadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	if g.adapter != "" {
		cfg.Adapter = g.adapter
	}
	if (cfg.Adapter == "" || cfg.Adapter == "fs") && findErr != nil {
		return nil, nil, fmt.Errorf("not a quill vault (run 'quill init'): %w", findErr)
	}

	opts := append(cfg.Options(), quill.WithLogger(g.logger))
	if g.noVersioning {
		opts = append(opts, quill.WithVersioning(false))
	}

	storage, err := quill.Init(ctx, cfg.URI(root), opts...)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := closerOf(storage); ok {
		g.closers = append(g.closers, c)
	}

	store, err := quill.New(ctx, "", append(opts, quill.WithStorage(storage))...)
	if err != nil {
		return nil, nil, err
	}
	return store, storage, nil
}

// closerOf finds the closable adapter, looking through decorators.
func closerOf(storage core.Storage) (io.Closer, bool) {
	for storage != nil {
		if c, ok := storage.(io.Closer); ok {
			return c, true
		}
		wrapper, ok := storage.(interface{ Inner() core.Storage })
		if !ok {
			break
		}
		storage = wrapper.Inner()
	}
	return nil, false
}

func (g *globals) close() {
	for _, c := range g.closers {
		if err := c.Close(); err != nil && g.logger != nil {
			g.logger.Warn("failed to close storage", "error", err)
		}
		g.closed++
	}
	g.closers = nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// errNoChange reports a rejected mutation; the store leaves state untouched.
var errNoChange = errors.New("nothing changed")
