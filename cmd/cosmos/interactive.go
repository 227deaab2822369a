package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"cosmos/internal/cachestore"
	"cosmos/internal/config"
	"cosmos/internal/provider"
	"cosmos/internal/vcs"
	"cosmos/internal/workflow"
)

func runInteractive(ctx context.Context, root string, cfg *config.Config) error {
	repo := vcs.Open(root)
	base, err := repo.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("current branch: %w", err)
	}

	app := workflow.NewApp(base)
	app.ReviewMaxIters = cfg.Workflow.MaxReviewIterations
	if app.ReviewMaxIters == 0 {
		app.ReviewMaxIters = workflow.DefaultReviewMaxIterations
	}

	if store, err := cachestore.Open(root, cfg.Cache.Root, cfg.GetLockTimeout()); err == nil {
		if watcher, err := cachestore.NewIndexWatcher(store); err == nil {
			watcher.Start(ctx)
			defer watcher.Stop()
		}
	}

	env := workflow.Env{
		Read: func(path string) (string, error) {
			data, err := os.ReadFile(filepath.Join(root, path))
			if os.IsNotExist(err) {
				return "", nil
			}
			return string(data), err
		},
		Restorer: repo,
		Branches: repo,
		Pusher:   repo,
		Asker:    providerAsker{client: provider.NewClientFromConfig(cfg)},
	}

	model := workflow.NewModel(app, env)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
