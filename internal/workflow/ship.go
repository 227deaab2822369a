package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pusher is the subset of the version-control integration the Ship flow
// needs beyond Checkout/RestoreFile: add-all-and-commit, push.
type Pusher interface {
	BranchSwitcher
	CommitAll(ctx context.Context, message string) error
	Push(ctx context.Context, branch string) error
}

// PRCreator opens a pull request for branch against base, an external
// collaborator the core only calls through this interface.
type PRCreator interface {
	CreatePR(ctx context.Context, branch, base, title, body string) (url string, err error)
}

const workBranchPrefix = "cosmos/"

// CommitMessage synthesizes a commit message from the pending changes: a
// single change ships as its own description, multiple changes ship as a
// conventional-commit summary line plus a bullet per change.
func (a *App) CommitMessage() string {
	if len(a.PendingChanges) == 0 {
		return ""
	}
	if len(a.PendingChanges) == 1 {
		return a.PendingChanges[0].Description
	}
	var b strings.Builder
	fmt.Fprintf(&b, "fix: apply %d cosmos suggestions\n\n", len(a.PendingChanges))
	for _, c := range a.PendingChanges {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// pickWorkBranch returns the existing work branch if one was already
// created this session, or synthesizes a new one from the base branch.
func (a *App) pickWorkBranch() string {
	if a.WorkBranch != "" {
		return a.WorkBranch
	}
	return workBranchPrefix + a.BaseBranch
}

// StartShip drives the Ship flow: Confirm -> Committing -> Pushing ->
// CreatingPR -> Done. Any stage failure leaves ShipStage at the stage that
// failed and returns the error; a retry re-enters at Confirm.
func (a *App) StartShip(ctx context.Context, p Pusher, pr PRCreator) error {
	if len(a.PendingChanges) == 0 {
		return errors.New("no pending changes to ship")
	}
	a.ShipStage = ShipConfirm
	a.markDirty()

	branch := a.pickWorkBranch()
	if branch != a.BaseBranch {
		if err := p.Checkout(ctx, branch, a.WorkBranch == ""); err != nil {
			return err
		}
		a.WorkBranch = branch
	}

	a.ShipStage = ShipCommitting
	a.markDirty()
	if err := p.CommitAll(ctx, a.CommitMessage()); err != nil {
		return err
	}

	a.ShipStage = ShipPushing
	a.markDirty()
	if err := p.Push(ctx, branch); err != nil {
		return err
	}

	a.ShipStage = ShipCreatingPR
	a.markDirty()
	if pr != nil {
		if _, err := pr.CreatePR(ctx, branch, a.BaseBranch, a.CommitMessage(), ""); err != nil {
			return err
		}
	}

	a.ShipStage = ShipDone
	a.PendingChanges = nil
	a.markDirty()
	return nil
}
