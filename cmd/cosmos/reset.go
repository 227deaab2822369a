package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosmos/internal/cachestore"
)

var resetCategories []string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "clear cached cosmos state (index, memory, glossary, ...)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cachestore.Open(workspace, cfg.Cache.Root, cfg.GetLockTimeout())
		if err != nil {
			return fmt.Errorf("open cache store: %w", err)
		}

		var cats []cachestore.Category
		if len(resetCategories) == 0 {
			cats = cachestore.AllCategories()
		} else {
			for _, c := range resetCategories {
				cats = append(cats, cachestore.Category(c))
			}
		}
		if err := store.Reset(cats...); err != nil {
			return fmt.Errorf("reset cache: %w", err)
		}
		fmt.Println("cache reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().StringSliceVar(&resetCategories, "category", nil,
		"categories to reset (default: all)")
}
