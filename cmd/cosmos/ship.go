package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cosmos/internal/vcs"
)

var shipMessage string

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "commit and push the current working tree to the cosmos work branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runShip(ctx, workspace, shipMessage)
	},
}

func init() {
	shipCmd.Flags().StringVarP(&shipMessage, "message", "m", "", "commit message (required)")
}

func runShip(ctx context.Context, root, message string) error {
	if message == "" {
		return fmt.Errorf("--message is required")
	}

	repo := vcs.Open(root)
	status, err := repo.Status(ctx)
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}
	if status.Clean() {
		return fmt.Errorf("nothing to ship, working tree is clean")
	}

	base, err := repo.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("current branch: %w", err)
	}
	branch := workBranchPrefix(base)
	if base != branch {
		if err := repo.Checkout(ctx, branch, true); err != nil {
			return fmt.Errorf("checkout work branch: %w", err)
		}
	}

	if err := repo.CommitAll(ctx, message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if err := repo.Push(ctx, branch); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	fmt.Printf("shipped to %s\n", branch)
	return nil
}

func workBranchPrefix(base string) string {
	return "cosmos/" + base
}
