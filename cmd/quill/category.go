package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/core"
)

func newCategoryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage note categories",
	}
	cmd.AddCommand(
		newCategoryAddCmd(g),
		newCategoryDeleteCmd(g),
		newCategoryListCmd(g),
	)
	return cmd
}

func newCategoryAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, _, err := g.open(ctx)
			if err != nil {
				return err
			}

			name := args[0]
			ctx = core.WithChangeReason(ctx, quill.FormatChangeReason(quill.CommitTypeFeat, "categories", "add "+name, ""))
			changed, err := store.CreateCategory(ctx, name)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("%w: category %q is empty or exists", errNoChange, name)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Category created: %s\n", name)
			return nil
		},
	}
}

func newCategoryDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a category (its notes are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, _, err := g.open(ctx)
			if err != nil {
				return err
			}

			name := args[0]
			ctx = core.WithChangeReason(ctx, quill.FormatChangeReason(quill.CommitTypeChore, "categories", "delete "+name, ""))
			changed, err := store.DeleteCategory(ctx, name)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("%w: category %q not found", errNoChange, name)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Category deleted: %s\n", name)
			return nil
		},
	}
}

func newCategoryListCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with their note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := g.open(context.Background())
			if err != nil {
				return err
			}

			categories := store.Categories()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", c, len(store.ListNotesByCategory(c)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
