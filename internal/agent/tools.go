package agent

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"cosmos/internal/provider"
)

const reportBackToolName = "report_back"

// BuiltinTools returns the exploration tool catalog plus the mandatory
// report_back tool, every tool scoped to repoRoot via the path contract.
func BuiltinTools(repoRoot string) []Tool {
	return []Tool{
		listDirectoryTool(repoRoot),
		fileHeadTool(repoRoot),
		searchContentTool(repoRoot),
		readFileRangeTool(repoRoot),
		shellTool(repoRoot),
		reportBackTool(),
	}
}

func listDirectoryTool(repoRoot string) Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        "list_directory",
			Description: "List files and subdirectories under a repo-relative path, up to a depth limit.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  map[string]interface{}{"type": "string", "description": "repo-relative directory path"},
					"depth": map[string]interface{}{"type": "integer", "description": "max recursion depth (default 1)"},
				},
				"required": []string{"path"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			relPath, _ := args["path"].(string)
			depth := 1
			if d, ok := args["depth"].(float64); ok {
				depth = int(d)
			}

			abs, err := resolveRepoPath(repoRoot, relPath)
			if err != nil {
				return "", err
			}

			var lines []string
			err = filepath.Walk(abs, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if p == abs {
					return nil
				}
				rel, _ := filepath.Rel(abs, p)
				curDepth := strings.Count(rel, string(filepath.Separator)) + 1
				if curDepth > depth {
					if info.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				suffix := ""
				if info.IsDir() {
					suffix = "/"
				}
				lines = append(lines, filepath.ToSlash(filepath.Join(relPath, rel))+suffix)
				return nil
			})
			if err != nil {
				return "", fmt.Errorf("file_not_found: %w", err)
			}
			sort.Strings(lines)
			return strings.Join(lines, "\n"), nil
		},
	}
}

func fileHeadTool(repoRoot string) Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        "file_head",
			Description: "Read the first N lines of a repo-relative file (default 50).",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  map[string]interface{}{"type": "string"},
					"lines": map[string]interface{}{"type": "integer"},
				},
				"required": []string{"path"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			relPath, _ := args["path"].(string)
			n := 50
			if v, ok := args["lines"].(float64); ok && v > 0 {
				n = int(v)
			}

			abs, err := resolveRepoPath(repoRoot, relPath)
			if err != nil {
				return "", err
			}
			f, err := os.Open(abs)
			if err != nil {
				return "", fmt.Errorf("file_not_found: %w", err)
			}
			defer f.Close()

			var out strings.Builder
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			count := 0
			for scanner.Scan() && count < n {
				fmt.Fprintf(&out, "%d\t%s\n", count+1, scanner.Text())
				count++
			}
			return out.String(), nil
		},
	}
}

func readFileRangeTool(repoRoot string) Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        "read_file_range",
			Description: "Read a line range [start, end] (1-indexed, inclusive) of a repo-relative file.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  map[string]interface{}{"type": "string"},
					"start": map[string]interface{}{"type": "integer"},
					"end":   map[string]interface{}{"type": "integer"},
				},
				"required": []string{"path", "start", "end"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			relPath, _ := args["path"].(string)
			start, _ := args["start"].(float64)
			end, _ := args["end"].(float64)
			if start < 1 || end < start {
				return "", fmt.Errorf("invalid_arguments: start=%v end=%v", start, end)
			}

			abs, err := resolveRepoPath(repoRoot, relPath)
			if err != nil {
				return "", err
			}
			f, err := os.Open(abs)
			if err != nil {
				return "", fmt.Errorf("file_not_found: %w", err)
			}
			defer f.Close()

			var out strings.Builder
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			line := 0
			for scanner.Scan() {
				line++
				if line < int(start) {
					continue
				}
				if line > int(end) {
					break
				}
				fmt.Fprintf(&out, "%d\t%s\n", line, scanner.Text())
			}
			return out.String(), nil
		},
	}
}

func searchContentTool(repoRoot string) Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        "search_content",
			Description: "Search repo-relative files for a regular expression, returning matching lines.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    map[string]interface{}{"type": "string", "description": "repo-relative directory to search under"},
					"pattern": map[string]interface{}{"type": "string"},
					"max":     map[string]interface{}{"type": "integer"},
				},
				"required": []string{"path", "pattern"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			relPath, _ := args["path"].(string)
			pattern, _ := args["pattern"].(string)
			maxMatches := 50
			if v, ok := args["max"].(float64); ok && v > 0 {
				maxMatches = int(v)
			}

			re, err := regexp.Compile(pattern)
			if err != nil {
				return "", fmt.Errorf("invalid_arguments: bad regex: %w", err)
			}

			abs, err := resolveRepoPath(repoRoot, relPath)
			if err != nil {
				return "", err
			}

			var out strings.Builder
			matches := 0
			err = filepath.Walk(abs, func(p string, info os.FileInfo, err error) error {
				if err != nil || matches >= maxMatches {
					return nil
				}
				if info.IsDir() {
					if info.Name() == ".git" || info.Name() == ".cosmos" {
						return filepath.SkipDir
					}
					return nil
				}
				f, err := os.Open(p)
				if err != nil {
					return nil
				}
				defer f.Close()
				scanner := bufio.NewScanner(f)
				scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
				lineNo := 0
				for scanner.Scan() && matches < maxMatches {
					lineNo++
					if re.MatchString(scanner.Text()) {
						rel, _ := filepath.Rel(repoRoot, p)
						fmt.Fprintf(&out, "%s:%d:%s\n", filepath.ToSlash(rel), lineNo, scanner.Text())
						matches++
					}
				}
				return nil
			})
			if err != nil {
				return "", fmt.Errorf("file_not_found: %w", err)
			}
			return out.String(), nil
		},
	}
}

func shellTool(repoRoot string) Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        "shell",
			Description: "Escape hatch: run a read-only shell command (e.g. git log, grep) rooted at the repo for exploration.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{"type": "string"},
				},
				"required": []string{"command"},
			},
		},
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			command, _ := args["command"].(string)
			if strings.TrimSpace(command) == "" {
				return "", fmt.Errorf("invalid_arguments: empty command")
			}
			cmd := exec.CommandContext(ctx, "sh", "-c", command)
			cmd.Dir = repoRoot
			out, err := cmd.CombinedOutput()
			if err != nil {
				return string(out), fmt.Errorf("shell command failed: %w", err)
			}
			return string(out), nil
		},
	}
}

func reportBackTool() Tool {
	return Tool{
		Definition: provider.ToolDefinition{
			Name:        reportBackToolName,
			Description: "Finalize the call with structured findings. Must be the last tool called.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"role":     map[string]interface{}{"type": "string"},
					"findings": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
				},
				"required": []string{"role", "findings"},
			},
		},
		// report_back is intercepted by the loop before generic tool
		// execution; this Execute is never called in practice.
		Execute: func(ctx context.Context, args map[string]interface{}) (string, error) {
			return "", fmt.Errorf("report_back must be handled by the loop, not executed directly")
		},
	}
}
