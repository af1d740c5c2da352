package main

import (
	"fmt"

	"github.com/icede/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

// Low-level commands exposing the index, tree writer, and ref store
// directly.

func newUpdateIndexCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "update-index <path>",
		Short: "Stage or unstage a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			if !remove {
				return r.Add(args[0])
			}

			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}
			if !idx.HasEntry(args[0], repo.StageNormal) && !idx.FileInConflict(args[0]) {
				return fmt.Errorf("update-index: pathspec %q %w", args[0], repo.ErrPathspecMismatch)
			}
			if err := idx.Remove(args[0]); err != nil {
				return err
			}
			return r.WriteIndex(idx)
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "drop the path from the index")

	return cmd
}

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write the staged tree to the object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}
			if conflicted := idx.ConflictedPaths(); len(conflicted) > 0 {
				return fmt.Errorf("write-tree: %w", repo.ErrUnmergedFiles)
			}
			treeHash, err := r.WriteTree(idx.Toc())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), treeHash)
			return nil
		},
	}
}

func newUpdateRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-ref <ref> <ref|hash>",
		Short: "Point the terminal of a ref at a commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}
			hash, err := r.ResolveRef(args[1])
			if err != nil {
				return err
			}
			if hash == "" {
				return fmt.Errorf("update-ref: %w: %q", repo.ErrRefNotFound, args[1])
			}
			terminal, err := r.Terminal(args[0])
			if err != nil {
				return err
			}
			return r.WriteRef(terminal, string(hash))
		},
	}
}
