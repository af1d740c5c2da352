package main

import (
	"fmt"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote>",
		Short: "Copy objects and branch tips from a peer repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			report, err := r.Fetch(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "From %s\n", report.RemoteURL)
			fmt.Fprintf(out, "Count %d\n", report.NewObjects)
			for _, u := range report.Updates {
				if u.Forced {
					fmt.Fprintf(out, " + %s -> %s/%s (forced update)\n", u.Branch, args[0], u.Branch)
				} else {
					fmt.Fprintf(out, "   %s -> %s/%s\n", u.Branch, args[0], u.Branch)
				}
			}
			return nil
		},
	}
}
