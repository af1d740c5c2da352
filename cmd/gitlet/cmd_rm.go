package main

import (
	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newRmCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files from the working copy and the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			for _, pathspec := range args {
				if err := r.Rm(pathspec, recursive); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories recursively")

	return cmd
}
