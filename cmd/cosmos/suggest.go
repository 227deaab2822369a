package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cosmos/internal/agent"
	"cosmos/internal/cachestore"
	"cosmos/internal/evidence"
	"cosmos/internal/logging"
	"cosmos/internal/provider"
	"cosmos/internal/scan"
	"cosmos/internal/suggest"
	"cosmos/internal/vcs"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "run the suggestion pipeline and print the selected findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runSuggest(ctx, workspace)
	},
}

func runSuggest(ctx context.Context, root string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := cachestore.Open(root, cfg.Cache.Root, cfg.GetLockTimeout())
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}

	signals, err := scan.Signals(ctx, root, sourceExtensions)
	if err != nil {
		return fmt.Errorf("scan repo: %w", err)
	}

	client := provider.NewClientFromConfig(cfg)
	tools := agent.BuiltinTools(root)
	newLoop := func(role string) *agent.Loop {
		loopCfg := agent.DefaultConfig()
		loopCfg.MaxIterations = cfg.Agent.MaxIterations
		loopCfg.FinalizationGrace = cfg.Agent.FinalizationGrace
		loopCfg.WallClockBudget = cfg.GetWallClockBudget()
		loopCfg.MaxParallelTools = cfg.Agent.MaxParallelTools
		return agent.NewLoop(client, tools, loopCfg)
	}

	newID := func() string {
		return fmt.Sprintf("sg-%s", uuid.New().String()[:8])
	}

	pipeline := suggest.NewPipeline(newLoop, scan.Source{Root: root}, newID)

	repo := vcs.Open(root)
	branch, _ := repo.CurrentBranch(ctx)
	status, _ := repo.Status(ctx)
	workCtx := evidence.WorkContext{
		Branch:        branch,
		StagedFiles:   status.Staged,
		UnstagedFiles: status.Unstaged,
	}

	result := pipeline.Run(ctx, signals, workCtx)

	logging.Suggest("run produced %d selected suggestions (gate final=%d validated=%d rejected=%d)",
		len(result.Suggestions), result.Gate.Final, result.Gate.Validated, result.Gate.Rejected)
	_ = store.AppendSuggestionRunAudit(cachestore.SuggestionRunAuditRecord{
		Timestamp:         time.Now(),
		FinalCount:        result.Gate.Final,
		Validated:         result.Gate.Validated,
		Rejected:          result.Gate.Rejected,
		UniqueFiles:       result.Gate.UniqueFileCount,
		DominantFileRatio: result.Gate.DominantFileRatio,
		GatePassed:        len(result.Gate.FailReasons) == 0,
		FailReasons:       result.Gate.FailReasons,
	})

	if len(result.Suggestions) == 0 {
		fmt.Println("no suggestions survived validation")
		return nil
	}
	for _, s := range result.Suggestions {
		fmt.Printf("[%s] %s — %s\n", s.ID, s.PrimaryFile, s.Summary)
	}
	return nil
}
