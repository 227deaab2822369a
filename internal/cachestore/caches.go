package cachestore

import "time"

// GroupingEntry records an AI-assigned layer for one file with the content
// hash used at cache time, so a later hash mismatch invalidates the entry.
type GroupingEntry struct {
	Layer      string    `json:"layer"`
	Confidence float64   `json:"confidence"`
	FileHash   string    `json:"file_hash"`
	CachedAt   time.Time `json:"cached_at"`
}

// GroupingAiCache maps repo-relative path to its grouping entry.
type GroupingAiCache map[string]GroupingEntry

func (s *Store) LoadGroupingAi() (GroupingAiCache, bool) {
	c := GroupingAiCache{}
	ok := s.readJSON(fileGroupingAI, &c)
	return c, ok
}

func (s *Store) SaveGroupingAi(c GroupingAiCache) error {
	return s.writeJSON(fileGroupingAI, c)
}

// RepoMemory holds cross-run semantic context: free-form key/value notes
// the pipeline accumulates about the repository over time.
type RepoMemory map[string]string

func (s *Store) LoadMemory() (RepoMemory, bool) {
	m := RepoMemory{}
	ok := s.readJSON(fileMemory, &m)
	return m, ok
}

func (s *Store) SaveMemory(m RepoMemory) error {
	return s.writeJSON(fileMemory, m)
}

// DomainGlossary maps a term to its repo-specific definition.
type DomainGlossary map[string]string

func (s *Store) LoadGlossary() (DomainGlossary, bool) {
	g := DomainGlossary{}
	ok := s.readJSON(fileGlossary, &g)
	return g, ok
}

func (s *Store) SaveGlossary(g DomainGlossary) error {
	return s.writeJSON(fileGlossary, g)
}

// QuestionCache maps a normalized question to its last answer, keyed for
// the Ask panel.
type QuestionCache map[string]string

func (s *Store) LoadQuestionCache() (QuestionCache, bool) {
	q := QuestionCache{}
	ok := s.readJSON(fileQuestionCache, &q)
	return q, ok
}

func (s *Store) SaveQuestionCache(q QuestionCache) error {
	return s.writeJSON(fileQuestionCache, q)
}

// SuggestionCoverageCache tracks which paths were analyzed recently, as a
// path -> last-analyzed-unix-seconds map.
type SuggestionCoverageCache map[string]int64

func (s *Store) LoadSuggestionCoverage() (SuggestionCoverageCache, bool) {
	c := SuggestionCoverageCache{}
	ok := s.readJSON(fileSuggestionCoverage, &c)
	return c, ok
}

func (s *Store) SaveSuggestionCoverage(c SuggestionCoverageCache) error {
	return s.writeJSON(fileSuggestionCoverage, c)
}
