package main

import (
	"fmt"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var bare bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty gitlet repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			r, err := repo.Init(path, bare)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty gitlet repository in %s\n", r.GitletDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&bare, "bare", false, "create a bare repository")

	return cmd
}
