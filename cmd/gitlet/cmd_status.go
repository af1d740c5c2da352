package main

import (
	"fmt"
	"io"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged changes, and conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			report, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Branches ===")
			for _, b := range report.Branches {
				if b == report.CurrentBranch {
					fmt.Fprintf(out, "* %s\n", b)
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			if report.Detached {
				fmt.Fprintln(out, "* (detached HEAD)")
			}

			printSection(out, "Staged Files", report.Staged)
			printSection(out, "Removed Files", report.Removed)
			printSection(out, "Unmerged Paths", report.Conflicted)
			printSection(out, "Modifications Not Staged For Commit", report.Modified)
			printSection(out, "Untracked Files", report.Untracked)
			return nil
		},
	}
}

func printSection(out io.Writer, title string, paths []string) {
	fmt.Fprintf(out, "\n=== %s ===\n", title)
	for _, p := range paths {
		fmt.Fprintln(out, p)
	}
}
