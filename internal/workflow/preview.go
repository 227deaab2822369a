package workflow

// previewHit reports whether the cached preview for suggestionID is still
// valid against the current hash of every file it covers: same suggestion
// id, a non-empty preview, and a hash match for every target file (a file
// that does not exist yet matches the empty hash, so brand-new files count
// as a hit too).
func (a *App) previewHit(suggestionID string, currentHashes map[string]string) (FixPreview, bool) {
	p, ok := a.previewCache[suggestionID]
	if !ok {
		return FixPreview{}, false
	}
	if p.SuggestionID != suggestionID || (p.Diff == "" && p.Explanation == "") {
		return FixPreview{}, false
	}
	for path, wantHash := range p.FileHashes {
		if currentHashes[path] != wantHash {
			return FixPreview{}, false
		}
	}
	return p, true
}

// storePreview caches a freshly generated preview for suggestionID.
func (a *App) storePreview(p FixPreview) {
	a.previewCache[p.SuggestionID] = p
}

// CurrentPreview returns the cached fix preview for whichever suggestion is
// currently relevant: the one armed by an accepted ApplyPlan overlay, or
// failing that the one selected in the Suggestions panel. Used by the Review
// panel's diff viewport; reports false if nothing is cached yet.
func (a *App) CurrentPreview() (FixPreview, bool) {
	var id string
	if a.armedApply != nil {
		id = a.armedApply.SuggestionID
	} else if s, ok := a.selectedSuggestion(); ok {
		id = s.ID
	} else {
		return FixPreview{}, false
	}
	p, ok := a.previewCache[id]
	return p, ok
}
