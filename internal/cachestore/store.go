// Package cachestore implements the persistent, lock-serialized on-disk
// cache under <repo>/.cosmos/v2/: the code index, grouping, glossary,
// memory, per-run audits, and JSONL telemetry streams, with atomic
// replacement, advisory file locking, and schema-versioned records.
package cachestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cosmos/internal/logging"
)

const (
	fileIndex                = "index.json"
	fileIndexMeta            = "index.meta.json"
	fileGroupingAI           = "grouping_ai.json"
	fileMemory               = "memory.json"
	fileGlossary             = "glossary.json"
	fileQuestionCache        = "question_cache.json"
	fileSuggestionCoverage   = "suggestion_coverage.json"
	fileWelcomeSeen          = "welcome_seen"
	fileDataNoticeSeen       = "data_notice_seen"
	fileLock                 = ".lock"
	filePipelineMetrics      = "pipeline_metrics.jsonl"
	fileSuggestionQuality    = "suggestion_quality.jsonl"
	fileImplementationHarness = "implementation_harness.jsonl"
	fileSuggestionRuns       = "suggestion_runs.jsonl"
	fileApplyPlanAudit       = "apply_plan_audit.jsonl"
)

// Category is a logical group of cache files a reset operation can target.
type Category string

const (
	CategoryIndex                 Category = "Index"
	CategorySuggestions           Category = "Suggestions"
	CategoryGlossary              Category = "Glossary"
	CategoryMemory                Category = "Memory"
	CategoryGroupingAi             Category = "GroupingAi"
	CategoryQuestionCache         Category = "QuestionCache"
	CategoryPipelineMetrics       Category = "PipelineMetrics"
	CategorySuggestionQuality     Category = "SuggestionQuality"
	CategoryImplementationHarness Category = "ImplementationHarness"
	CategoryDataNotice            Category = "DataNotice"
)

// categoryFiles maps each logical reset category to the file set it owns.
var categoryFiles = map[Category][]string{
	CategoryIndex:                 {fileIndex, fileIndexMeta},
	CategorySuggestions:           {fileSuggestionCoverage, fileSuggestionRuns},
	CategoryGlossary:              {fileGlossary},
	CategoryMemory:                {fileMemory},
	CategoryGroupingAi:             {fileGroupingAI},
	CategoryQuestionCache:         {fileQuestionCache},
	CategoryPipelineMetrics:       {filePipelineMetrics},
	CategorySuggestionQuality:     {fileSuggestionQuality},
	CategoryImplementationHarness: {fileImplementationHarness},
	CategoryDataNotice:            {fileDataNoticeSeen},
}

// AllCategories returns every known reset category, for callers that want
// to reset the whole cache without enumerating categories by hand.
func AllCategories() []Category {
	cats := make([]Category, 0, len(categoryFiles))
	for c := range categoryFiles {
		cats = append(cats, c)
	}
	return cats
}

// Store is the on-disk cache rooted at <repoRoot>/<cacheDirName>/v2/.
type Store struct {
	repoRoot    string
	cacheDir    string // <repoRoot>/<cacheDirName>
	activeDir   string // <cacheDir>/v2
	lockTimeout time.Duration

	cacheMu     sync.RWMutex
	cachedIndex CodebaseIndex
	cachedMeta  IndexMeta
	cachedOK    bool
}

// Open ensures the cache directory layout exists (creating it and appending
// an ignore entry on first use) and returns a ready Store.
func Open(repoRoot, cacheDirName string, lockTimeout time.Duration) (*Store, error) {
	if cacheDirName == "" {
		cacheDirName = ".cosmos"
	}
	s := &Store{
		repoRoot:    repoRoot,
		cacheDir:    filepath.Join(repoRoot, cacheDirName),
		activeDir:   filepath.Join(repoRoot, cacheDirName, "v2"),
		lockTimeout: lockTimeout,
	}
	if err := os.MkdirAll(s.activeDir, 0o755); err != nil {
		return nil, fmt.Errorf("cachestore: create cache directory: %w", err)
	}
	if err := s.ensureIgnored(cacheDirName); err != nil {
		logging.CacheError("ensure gitignore entry: %v", err)
	}
	return s, nil
}

// ensureIgnored appends the cache directory name to .gitignore, or to the
// git exclude file when the repo has no tracked gitignore, unless already present.
func (s *Store) ensureIgnored(cacheDirName string) error {
	entry := cacheDirName + "/"

	gitignorePath := filepath.Join(s.repoRoot, ".gitignore")
	if data, err := os.ReadFile(gitignorePath); err == nil {
		if bytes.Contains(data, []byte(entry)) {
			return nil
		}
		return appendLine(gitignorePath, entry)
	}

	excludePath := filepath.Join(s.repoRoot, ".git", "info", "exclude")
	if data, err := os.ReadFile(excludePath); err == nil {
		if bytes.Contains(data, []byte(entry)) {
			return nil
		}
		return appendLine(excludePath, entry)
	}

	// Neither file exists: prefer creating .gitignore.
	return appendLine(gitignorePath, entry)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func (s *Store) path(rel string) string   { return filepath.Join(s.activeDir, rel) }
func (s *Store) lockPath() string         { return s.path(fileLock) }

// readJSON is a best-effort read helper: a missing file, a lock timeout, or a
// deserialization error returns false — the "absent" sentinel — never an
// error. Write helpers, by contrast, always return errors to the caller.
func (s *Store) readJSON(rel string, out interface{}) bool {
	lock, err := acquireLock(s.lockPath(), lockShared, s.lockTimeout)
	if err != nil {
		return false
	}
	defer lock.release()

	data, err := os.ReadFile(s.path(rel))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

func (s *Store) writeJSON(rel string, value interface{}) error {
	lock, err := acquireLock(s.lockPath(), lockExclusive, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("cachestore: marshal %s: %w", rel, err)
	}
	return writeFileAtomic(s.path(rel), data, 0o600)
}

// Reset removes exactly the files owned by the given categories.
func (s *Store) Reset(categories ...Category) error {
	lock, err := acquireLock(s.lockPath(), lockExclusive, s.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	var errs []error
	for _, cat := range categories {
		if cat == CategoryIndex {
			s.InvalidateIndexCache()
		}
		for _, f := range categoryFiles[cat] {
			if err := os.Remove(s.path(f)); err != nil && !os.IsNotExist(err) {
				errs = append(errs, fmt.Errorf("reset %s/%s: %w", cat, f, err))
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	combined := errs[0]
	for _, e := range errs[1:] {
		combined = fmt.Errorf("%w; %w", combined, e)
	}
	return combined
}

// Flags seen (welcome_seen / data_notice_seen) are presence-only files.

func (s *Store) flagSet(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

func (s *Store) setFlag(name string) error {
	return writeFileAtomic(s.path(name), []byte("1"), 0o600)
}

func (s *Store) WelcomeSeen() bool     { return s.flagSet(fileWelcomeSeen) }
func (s *Store) MarkWelcomeSeen() error { return s.setFlag(fileWelcomeSeen) }

func (s *Store) DataNoticeSeen() bool     { return s.flagSet(fileDataNoticeSeen) }
func (s *Store) MarkDataNoticeSeen() error { return s.setFlag(fileDataNoticeSeen) }
