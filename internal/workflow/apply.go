package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// emptyFileHash is the hash recorded for a file that does not exist yet, so
// a freshly-created file matches the snapshot taken before it existed.
const emptyFileHash = ""

func hashContent(content string) string {
	if content == "" {
		return emptyFileHash
	}
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// FileReader reads the current on-disk content of a repo-relative path,
// returning "" if the file does not exist.
type FileReader func(path string) (string, error)

// openApplyPlan opens the ApplyPlan overlay for the selected suggestion:
// appends an Opened audit record and arms the apply with an empty hash
// snapshot, which armSnapshot then fills in for every file the fix will touch.
func (a *App) openApplyPlan() error {
	s, ok := a.selectedSuggestion()
	if !ok {
		return errors.New("no suggestion selected")
	}
	a.AuditLog = append(a.AuditLog, ApplyPlanAuditRecord{
		Event:        ApplyPlanOpened,
		SuggestionID: s.ID,
		At:           time.Now(),
	})
	a.armedApply = &ArmedApply{SuggestionID: s.ID, FileHashes: map[string]string{}}
	a.pushOverlay(OverlayApplyPlan)
	return nil
}

// armSnapshot records the current hash of every file in files, captured via
// read. Called once the caller has the file contents to hash (the caller
// owns the actual filesystem read).
func (a *App) armSnapshot(files []string, read FileReader) error {
	if a.armedApply == nil {
		return errors.New("no apply plan is open")
	}
	for _, f := range files {
		content, err := read(f)
		if err != nil {
			return err
		}
		a.armedApply.FileHashes[f] = hashContent(content)
	}
	return nil
}

// confirmApplyWithEdits compares current file hashes against the armed
// snapshot; a mismatch aborts with a user-visible error rather than applying
// a stale fix. The caller supplies the applied edits (post-generation) and a
// FileReader to re-check hashes at confirm time.
func (a *App) confirmApplyWithEdits(edits []FileEdit, read FileReader) error {
	if a.armedApply == nil {
		return errors.New("no apply plan is armed")
	}
	for path, snapshot := range a.armedApply.FileHashes {
		current, err := read(path)
		if err != nil {
			return err
		}
		if hashContent(current) != snapshot {
			a.abortApply()
			return errors.New("file changed since apply plan was opened: " + path)
		}
	}
	s, ok := a.selectedSuggestion()
	if !ok || s.ID != a.armedApply.SuggestionID {
		a.abortApply()
		return errors.New("selected suggestion changed since apply plan was opened")
	}

	change := PendingChange{
		SuggestionID:   s.ID,
		Edits:          edits,
		Description:    s.Summary,
		FriendlyTitle:  s.Summary,
		ProblemSummary: s.ObservedBehavior,
		Outcome:        s.TechnicalDetail,
		AppliedAt:      time.Now(),
	}
	a.PendingChanges = append(a.PendingChanges, change)
	a.AuditLog = append(a.AuditLog, ApplyPlanAuditRecord{
		Event:        ApplyPlanConfirmed,
		SuggestionID: s.ID,
		At:           time.Now(),
	})
	a.armedApply = nil
	a.popOverlay()
	a.Panel = PanelReview
	a.markDirty()
	return nil
}

// confirmApply exists so Dispatch has an argument-free path; it is a no-op
// guard used when the caller has not yet supplied edits (e.g. a bare
// "confirm" keypress before generation completed). Real confirmation goes
// through confirmApplyWithEdits once the TUI has the generated edits.
func (a *App) confirmApply() error {
	if a.armedApply == nil {
		return errors.New("no apply plan is armed")
	}
	return nil
}

func (a *App) abortApply() {
	if a.armedApply == nil {
		return
	}
	a.AuditLog = append(a.AuditLog, ApplyPlanAuditRecord{
		Event:        ApplyPlanAborted,
		SuggestionID: a.armedApply.SuggestionID,
		At:           time.Now(),
	})
	a.armedApply = nil
	a.popOverlay()
	a.markDirty()
}
