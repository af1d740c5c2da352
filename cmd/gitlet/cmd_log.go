package main

import (
	"fmt"
	"time"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show first-parent commit history from HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			head, err := r.ResolveRef("HEAD")
			if err != nil {
				return err
			}
			if head == "" {
				return fmt.Errorf("log: HEAD has no commit")
			}

			hashes, commits, err := r.Log(head, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, c := range commits {
				fmt.Fprintln(out, "===")
				fmt.Fprintf(out, "commit %s\n", hashes[i])
				if len(c.Parents) == 2 {
					fmt.Fprintf(out, "Merge: %s %s\n", c.Parents[0][:7], c.Parents[1][:7])
				}
				fmt.Fprintf(out, "Date: %s\n", time.Unix(c.Timestamp, 0).Format(time.ANSIC))
				fmt.Fprintf(out, "%s\n\n", c.Message)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "max-count", "n", 50, "limit the number of commits shown")

	return cmd
}
