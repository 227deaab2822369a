// Package workflow implements the four-panel, overlay-stacked state machine
// (C5) that drives the interactive session: Suggestions, Review, Ship, and
// Ask panels, plus a stack of modal overlays. The App type owns all of this
// state and exposes named intents the same way the teacher's chat Model
// exposed tea.Msg-driven transitions; rendering is left to a thin bubbletea
// wrapper so the state machine itself can be exercised without a terminal.
package workflow

import (
	"time"

	"cosmos/internal/suggest"
)

// Panel is one of the four always-visible views.
type Panel int

const (
	PanelSuggestions Panel = iota
	PanelReview
	PanelShip
	PanelAsk
)

func (p Panel) String() string {
	switch p {
	case PanelSuggestions:
		return "suggestions"
	case PanelReview:
		return "review"
	case PanelShip:
		return "ship"
	case PanelAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// Overlay is a modal pushed on top of the panel stack.
type Overlay int

const (
	OverlayHelp Overlay = iota
	OverlayApplyPlan
	OverlayReset
	OverlayStartupCheck
	OverlayAPIKeySetup
	OverlayWelcome
	OverlayFileDetail
	OverlayUpdate
	OverlayAlert
)

// ShipStage tracks progress through the Ship flow.
type ShipStage int

const (
	ShipIdle ShipStage = iota
	ShipConfirm
	ShipCommitting
	ShipPushing
	ShipCreatingPR
	ShipDone
)

// FileEdit is one file's before/after content pair applied by a suggestion.
type FileEdit struct {
	Path    string
	Before  string
	After   string
}

// PendingChange is an applied-but-uncommitted fix. Popped in LIFO order on
// undo, cleared when a Ship run completes.
type PendingChange struct {
	SuggestionID   string
	Edits          []FileEdit
	Description    string
	FriendlyTitle  string
	ProblemSummary string
	Outcome        string
	AppliedAt      time.Time
}

// ApplyPlanEvent is the audit event kind recorded for an apply plan.
type ApplyPlanEvent string

const (
	ApplyPlanOpened    ApplyPlanEvent = "opened"
	ApplyPlanConfirmed ApplyPlanEvent = "confirmed"
	ApplyPlanAborted   ApplyPlanEvent = "aborted"
)

// ApplyPlanAuditRecord is appended for every apply-plan lifecycle event.
type ApplyPlanAuditRecord struct {
	Event        ApplyPlanEvent
	SuggestionID string
	At           time.Time
	Detail       string
}

// ArmedApply is the state recorded once a user accepts an ApplyPlan overlay:
// the suggestion id plus the file-hash snapshot taken at accept time.
type ArmedApply struct {
	SuggestionID string
	FileHashes   map[string]string
}

// FixPreview is the cached result of generating a fix's diff/explanation for
// the Review panel's Verify state.
type FixPreview struct {
	SuggestionID string
	FileHashes   map[string]string
	Diff         string
	Explanation  string
}

// ReviewFinding is one adversarial-reviewer finding surfaced during the
// review loop.
type ReviewFinding struct {
	Title       string
	Detail      string
	File        string
	Selected    bool
}

// App owns the suggestion engine output, pending-change stack, and all
// panel/overlay state for one session. It holds no codebase index or work
// context.
type App struct {
	Panel       Panel
	Overlays    []Overlay
	NeedsRedraw bool

	Suggestions []suggest.Suggestion
	SelectedIdx int
	Searching   bool
	SearchQuery string

	PendingChanges []PendingChange
	AuditLog       []ApplyPlanAuditRecord

	armedApply  *ArmedApply
	previewCache map[string]FixPreview

	ReviewFindings   []ReviewFinding
	ReviewIteration  int
	ReviewMaxIters   int
	FixedTitles      []string

	ShipStage  ShipStage
	BaseBranch string
	WorkBranch string

	AskQuestion string
	AskAnswer   string
	AskPending  bool
	lastAskID   string

	Err error
}

const DefaultReviewMaxIterations = 3

// NewApp constructs an App starting on the Suggestions panel with no
// overlays, ready to receive suggestions from a pipeline run.
func NewApp(baseBranch string) *App {
	return &App{
		Panel:          PanelSuggestions,
		Suggestions:    nil,
		ReviewMaxIters: DefaultReviewMaxIterations,
		BaseBranch:     baseBranch,
		previewCache:   make(map[string]FixPreview),
	}
}

func (a *App) markDirty() {
	a.NeedsRedraw = true
}

// ConsumeRedraw reports and clears the pending redraw flag. Only the render
// loop calls this; every other reader must not clear it.
func (a *App) ConsumeRedraw() bool {
	v := a.NeedsRedraw
	a.NeedsRedraw = false
	return v
}
