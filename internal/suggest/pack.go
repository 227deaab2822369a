package suggest

import "cosmos/internal/evidence"

// SnippetSource extracts the candidate snippet text for one file. The
// concrete implementation (outside this package's scope) reads the repo and
// the index; tests supply a fake.
type SnippetSource interface {
	Snippets(path string) []evidence.Snippet
}

// AssembleEvidencePack asks the index (via src) for snippets from the
// highest-weighted files first, numbering every snippet's SnippetID
// starting at 0 in that order regardless of which file it came from.
func AssembleEvidencePack(signals []evidence.FileSignal, src SnippetSource) evidence.EvidencePack {
	ranked := RankFiles(signals)

	var pack evidence.EvidencePack
	id := 0
	for _, sig := range ranked {
		for _, s := range src.Snippets(sig.Path) {
			s.SnippetID = id
			pack.Snippets = append(pack.Snippets, s)
			id++
		}
	}
	return pack
}
