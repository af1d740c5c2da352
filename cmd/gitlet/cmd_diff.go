package main

import (
	"fmt"
	"sort"

	"github.com/icede/gitlet/pkg/diff"
	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var nameStatus bool

	cmd := &cobra.Command{
		Use:   "diff [revision] [revision]",
		Short: "Show changed paths between trees, index, and working copy",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !nameStatus {
				return fmt.Errorf("diff without --name-status is %w", repo.ErrUnsupported)
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			statuses, err := r.ReadDiff(args)
			if err != nil {
				return err
			}

			paths := make([]string, 0, len(statuses))
			for p := range statuses {
				paths = append(paths, p)
			}
			sort.Strings(paths)

			out := cmd.OutOrStdout()
			for _, p := range paths {
				if statuses[p] == diff.StatusSame {
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", statuses[p], p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&nameStatus, "name-status", false, "show only names and change status")

	return cmd
}
