package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"cosmos/internal/cachestore"
	"cosmos/internal/logging"
	"cosmos/internal/scan"
	"cosmos/internal/vcs"
)

var sourceExtensions = []string{".go", ".ts", ".tsx", ".js", ".py", ".rs", ".java"}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "rebuild the cached repo index (churn, complexity, recency signals)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return runScan(ctx, workspace)
	},
}

func runScan(ctx context.Context, root string) error {
	store, err := cachestore.Open(root, cfg.Cache.Root, cfg.GetLockTimeout())
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}

	signals, err := scan.Signals(ctx, root, sourceExtensions)
	if err != nil {
		return fmt.Errorf("scan repo: %w", err)
	}

	idx := cachestore.CodebaseIndex{Root: root, Files: map[string]cachestore.FileRecord{}}
	for _, s := range signals {
		hash, _ := hashFile(filepath.Join(root, s.Path))
		idx.Files[s.Path] = cachestore.FileRecord{Path: s.Path, ContentHash: hash}
	}
	head, _ := vcs.Open(root).HeadCommit(ctx)
	meta := cachestore.IndexMeta{
		Root:      root,
		GitHead:   head,
		FileCount: len(signals),
		CachedAt:  time.Now().Unix(),
	}
	if err := store.SaveIndex(idx, meta); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	logging.Boot("scanned %d files under %s", len(signals), root)
	fmt.Printf("scanned %d files\n", len(signals))
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
