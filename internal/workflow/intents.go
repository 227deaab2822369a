package workflow

import "cosmos/internal/suggest"

// Intent is a named, keyboard-bindings-agnostic user action. Concrete key
// bindings live in the TUI wrapper; the core only reacts to these.
type Intent int

const (
	IntentNavigateUp Intent = iota
	IntentNavigateDown
	IntentTogglePanel
	IntentStartSearch
	IntentSubmitQuestion
	IntentOpenApplyPlan
	IntentConfirmApply
	IntentAbortApply
	IntentUndoLast
	IntentStartShip
	IntentToggleHelp
	IntentCloseOverlay
)

// Dispatch applies one intent to the app, returning any error surfaced to
// the user. Every branch that mutates state calls markDirty; readers (like
// ConsumeRedraw) never do.
func (a *App) Dispatch(intent Intent) error {
	switch intent {
	case IntentNavigateUp:
		if a.SelectedIdx > 0 {
			a.SelectedIdx--
			a.markDirty()
		}
	case IntentNavigateDown:
		if a.SelectedIdx < len(a.VisibleSuggestions())-1 {
			a.SelectedIdx++
			a.markDirty()
		}
	case IntentTogglePanel:
		a.Panel = (a.Panel + 1) % 4
		a.markDirty()
	case IntentStartSearch:
		a.Searching = true
		a.SearchQuery = ""
		a.SelectedIdx = 0
		a.markDirty()
	case IntentToggleHelp:
		a.toggleOverlay(OverlayHelp)
	case IntentCloseOverlay:
		a.popOverlay()
	case IntentOpenApplyPlan:
		return a.openApplyPlan()
	case IntentConfirmApply:
		return a.confirmApply()
	case IntentAbortApply:
		a.abortApply()
	case IntentUndoLast:
		return a.undoLast()
	case IntentStartShip:
		a.Panel = PanelShip
		a.ShipStage = ShipConfirm
		a.markDirty()
	}
	return nil
}

func (a *App) pushOverlay(o Overlay) {
	a.Overlays = append(a.Overlays, o)
	a.markDirty()
}

func (a *App) popOverlay() {
	if len(a.Overlays) == 0 {
		return
	}
	a.Overlays = a.Overlays[:len(a.Overlays)-1]
	a.markDirty()
}

func (a *App) toggleOverlay(o Overlay) {
	if len(a.Overlays) > 0 && a.Overlays[len(a.Overlays)-1] == o {
		a.popOverlay()
		return
	}
	a.pushOverlay(o)
}

// TopOverlay returns the active (topmost) overlay, if any.
func (a *App) TopOverlay() (Overlay, bool) {
	if len(a.Overlays) == 0 {
		return 0, false
	}
	return a.Overlays[len(a.Overlays)-1], true
}

// selectedSuggestion returns the suggestion at SelectedIdx within the
// currently visible (possibly search-filtered) list, if any.
func (a *App) selectedSuggestion() (suggest.Suggestion, bool) {
	visible := a.VisibleSuggestions()
	if a.SelectedIdx < 0 || a.SelectedIdx >= len(visible) {
		return suggest.Suggestion{}, false
	}
	return visible[a.SelectedIdx], true
}
