package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quill"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of quill",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quill version %s\n", quill.Version)
		},
	}
}
