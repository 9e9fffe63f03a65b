package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newStateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the internal state of the store and its adapter as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := g.open(context.Background())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), store.State())
		},
	}
}
