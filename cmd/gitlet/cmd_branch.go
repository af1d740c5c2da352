package main

import (
	"fmt"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var upstream string

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, create one, or set an upstream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			// Upstream mode.
			if upstream != "" {
				if len(args) != 0 {
					return fmt.Errorf("branch: -u takes no branch argument")
				}
				return r.SetUpstream(upstream)
			}

			// Create mode.
			if len(args) == 1 {
				return r.CreateBranch(args[0])
			}

			// List mode.
			branches, err := r.Branches()
			if err != nil {
				return err
			}
			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&upstream, "set-upstream-to", "u", "", "record remote/branch as the current branch's upstream")

	return cmd
}
