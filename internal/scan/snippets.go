package scan

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmos/internal/evidence"
)

// snippetLines is the window size around each extracted snippet.
const snippetLines = 24

// Source reads snippet text directly from the working tree, satisfying
// suggest.SnippetSource without needing a cached index.
type Source struct {
	Root string
}

// Snippets returns a handful of fixed-size windows from path, anchored at
// the start of the file and then every snippetLines thereafter, each
// prefixed with 1-based line numbers the way the normalizer's scrub regexes
// expect.
func (s Source) Snippets(path string) []evidence.Snippet {
	f, err := os.Open(filepath.Join(s.Root, path))
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) == 0 {
		return nil
	}

	var out []evidence.Snippet
	for start := 0; start < len(lines); start += snippetLines {
		end := start + snippetLines
		if end > len(lines) {
			end = len(lines)
		}
		var b strings.Builder
		for i := start; i < end; i++ {
			fmt.Fprintf(&b, "%d\t%s\n", i+1, lines[i])
		}
		out = append(out, evidence.Snippet{
			Path:      path,
			StartLine: start + 1,
			Text:      b.String(),
		})
	}
	return out
}
