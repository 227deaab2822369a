package workflow

import (
	"context"
	"errors"
)

// Restorer restores a single file to its last-committed state, the
// version-control integration's "restore file to HEAD" operation.
type Restorer interface {
	RestoreFile(ctx context.Context, path string) error
}

// BranchSwitcher checks out a branch, the version-control integration's
// "checkout branch" operation.
type BranchSwitcher interface {
	Checkout(ctx context.Context, branch string, create bool) error
}

// undoLast is the bare Dispatch path; real undo needs a Restorer so it is
// driven by undoLastWith from the TUI wrapper, which holds the vcs.Repo.
func (a *App) undoLast() error {
	return errors.New("undo requires a version-control integration")
}

// undoLastWith pops the most recent pending change and restores every file
// it touched, atomically from the caller's perspective: if any file fails
// to restore, the change is re-pushed onto the queue (LIFO) and the error
// surfaces rather than leaving the stack inconsistent. When the queue
// empties, the workflow returns to the base branch and transitions back to
// the Suggestions panel.
func (a *App) undoLastWith(ctx context.Context, r Restorer, b BranchSwitcher) error {
	if len(a.PendingChanges) == 0 {
		return errors.New("no pending changes to undo")
	}
	last := a.PendingChanges[len(a.PendingChanges)-1]
	a.PendingChanges = a.PendingChanges[:len(a.PendingChanges)-1]

	for _, edit := range last.Edits {
		if err := r.RestoreFile(ctx, edit.Path); err != nil {
			a.PendingChanges = append(a.PendingChanges, last)
			a.markDirty()
			return err
		}
	}

	if len(a.PendingChanges) == 0 {
		if err := b.Checkout(ctx, a.BaseBranch, false); err != nil {
			return err
		}
		a.Panel = PanelSuggestions
	}
	a.markDirty()
	return nil
}
