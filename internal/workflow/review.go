package workflow

import "context"

// Reviewer drives one adversarial-review iteration: given the current diff
// and the titles of findings already fixed in this session, it returns the
// fresh findings for this pass (through C3/C2, opaque to this package).
type Reviewer interface {
	Review(ctx context.Context, diff string, previouslyFixed []string) ([]ReviewFinding, error)
}

// Fixer applies the user-selected findings, returning the updated file
// contents for every file it touched.
type Fixer interface {
	Fix(ctx context.Context, selected []ReviewFinding) (map[string]string, error)
}

// ReviewStep runs one bounded review iteration: call the reviewer with the
// diff and the titles already fixed, record the findings, and stop once
// either the iteration cap is hit or the reviewer returns nothing. It does
// not itself apply fixes; the caller selects findings (via SelectFindings)
// and calls ApplyFixes to drive a fix pass.
func (a *App) ReviewStep(ctx context.Context, diff string, r Reviewer) (passed bool, err error) {
	if a.ReviewIteration >= a.ReviewMaxIters {
		return false, nil
	}
	findings, err := r.Review(ctx, diff, a.FixedTitles)
	if err != nil {
		return false, err
	}
	a.ReviewFindings = findings
	a.ReviewIteration++
	a.markDirty()
	if len(findings) == 0 {
		return true, nil
	}
	return false, nil
}

// SelectFindings toggles the Selected flag on the finding at idx.
func (a *App) SelectFindings(idx int) {
	if idx < 0 || idx >= len(a.ReviewFindings) {
		return
	}
	a.ReviewFindings[idx].Selected = !a.ReviewFindings[idx].Selected
	a.markDirty()
}

// ApplyFixes runs a fix pass over the currently-selected findings, updating
// the in-memory pending change's edits and recording the fixed titles so a
// later review iteration will not re-surface them.
func (a *App) ApplyFixes(ctx context.Context, f Fixer) error {
	var selected []ReviewFinding
	for _, rf := range a.ReviewFindings {
		if rf.Selected {
			selected = append(selected, rf)
		}
	}
	if len(selected) == 0 {
		return nil
	}
	updated, err := f.Fix(ctx, selected)
	if err != nil {
		return err
	}
	if len(a.PendingChanges) > 0 {
		last := &a.PendingChanges[len(a.PendingChanges)-1]
		for i := range last.Edits {
			if content, ok := updated[last.Edits[i].Path]; ok {
				last.Edits[i].After = content
			}
		}
	}
	for _, rf := range selected {
		a.FixedTitles = append(a.FixedTitles, rf.Title)
	}
	a.ReviewFindings = nil
	a.markDirty()
	return nil
}
