package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosmos/internal/vcs"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "show the working tree's pending (uncommitted) changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := vcs.Open(workspace)
		status, err := repo.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("git status: %w", err)
		}
		if status.Clean() {
			fmt.Println("working tree is clean, nothing to review")
			return nil
		}
		for _, f := range status.Staged {
			fmt.Printf("staged:    %s\n", f)
		}
		for _, f := range status.Unstaged {
			fmt.Printf("unstaged:  %s\n", f)
		}
		for _, f := range status.Untracked {
			fmt.Printf("untracked: %s\n", f)
		}
		fmt.Println("\nrun interactively (cosmos, no subcommand) for the full adversarial review loop")
		return nil
	},
}
