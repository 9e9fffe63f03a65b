package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	quilllifecycle "github.com/aretw0/quill/pkg/adapters/lifecycle"
	"github.com/aretw0/quill/pkg/core"
)

func newWatchCmd(g *globals) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print note and category changes made by other processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, storage, err := g.open(ctx)
			if err != nil {
				return err
			}

			w, ok := storage.(core.Watchable)
			if !ok {
				return fmt.Errorf("adapter does not support watching")
			}
			events, err := w.Watch(ctx, pattern)
			if err != nil {
				return err
			}

			src := quilllifecycle.NewSource(events,
				quilllifecycle.WithReload(store),
				quilllifecycle.WithErrorHandler(func(err error) {
					g.logger.Error("reload failed", "error", err)
				}),
			)
			if err := src.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", pattern)
			for e := range src.Events() {
				state := store.State().(core.StoreState)
				fmt.Fprintf(out, "%s\tnotes=%d categories=%d\n", e.String(), state.Notes, state.Categories)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "*", "Glob of keys to watch")
	return cmd
}
