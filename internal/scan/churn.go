// Package scan builds the evidence.FileSignal set and snippet source the
// suggestion pipeline (C4) needs from a real git working tree: churn from
// `git log --numstat`, complexity from a branching-keyword count, and
// recency from each file's last commit time. This is the minimal concrete
// Index the CLI wires up; it is deliberately not a semantic or embedding
// index, an AST graph, or anything the spec places out of scope — just the
// three scalar signals EvidenceWeight already expects.
package scan

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"cosmos/internal/evidence"
)

const defaultDepth = 200

// churnStats holds the raw counts accumulated per file before normalization.
type churnStats struct {
	changes     int
	lastCommit  int64
}

// Signals walks root's git history to produce a churn/complexity/recency
// FileSignal for every tracked file under root, limited to files with a
// recognized source extension.
func Signals(ctx context.Context, root string, extensions []string) ([]evidence.FileSignal, error) {
	stats, err := churnFromLog(ctx, root, defaultDepth)
	if err != nil {
		return nil, err
	}

	files, err := trackedFiles(ctx, root, extensions)
	if err != nil {
		return nil, err
	}

	maxChanges := 0
	newestCommit := int64(0)
	for _, s := range stats {
		if s.changes > maxChanges {
			maxChanges = s.changes
		}
		if s.lastCommit > newestCommit {
			newestCommit = s.lastCommit
		}
	}

	signals := make([]evidence.FileSignal, 0, len(files))
	for _, f := range files {
		complexity, err := complexityOf(filepath.Join(root, f))
		if err != nil {
			continue
		}
		s := stats[f]
		signals = append(signals, evidence.FileSignal{
			Path:       f,
			Churn:      normalize(float64(s.changes), float64(maxChanges)),
			Complexity: complexity,
			Recency:    recencyOf(s.lastCommit, newestCommit),
		})
	}
	return signals, nil
}

func normalize(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Min(1, v/max)
}

func recencyOf(commitTs, newest int64) float64 {
	if newest <= 0 || commitTs <= 0 {
		return 0
	}
	const windowSeconds = 90 * 24 * 60 * 60
	age := newest - commitTs
	if age < 0 {
		age = 0
	}
	return math.Max(0, 1-float64(age)/windowSeconds)
}

// churnFromLog parses `git log --numstat` the same way the teacher's git
// history scanner does: a COMMIT: marker line carries the commit metadata,
// subsequent numstat lines carry per-file added/deleted counts.
func churnFromLog(ctx context.Context, root string, depth int) (map[string]churnStats, error) {
	cmd := exec.CommandContext(ctx, "git", "log",
		fmt.Sprintf("-n%d", depth),
		"--pretty=format:COMMIT:%ct",
		"--numstat",
	)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}

	stats := make(map[string]churnStats)
	var currentTs int64
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "COMMIT:") {
			ts, _ := strconv.ParseInt(strings.TrimPrefix(line, "COMMIT:"), 10, 64)
			currentTs = ts
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		path := fields[2]
		s := stats[path]
		s.changes++
		if currentTs > s.lastCommit {
			s.lastCommit = currentTs
		}
		stats[path] = s
	}
	return stats, nil
}

func trackedFiles(ctx context.Context, root string, extensions []string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	allow := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allow[e] = true
	}
	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(allow) > 0 && !allow[filepath.Ext(line)] {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

// branchKeywords are counted as a cheap stand-in for cyclomatic complexity:
// more branching per line of code means more complexity weight.
var branchKeywords = []string{"if ", "for ", "switch ", "case ", "&&", "||", "catch ", "except "}

func complexityOf(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 {
		return 0, nil
	}
	branches := 0
	for _, line := range lines {
		for _, kw := range branchKeywords {
			branches += strings.Count(line, kw)
		}
	}
	density := float64(branches) / float64(len(lines))
	return math.Min(1, density*4), nil
}
