package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"cosmos/internal/suggest"
)

// Env is the set of external collaborators the TUI wrapper needs to drive
// App methods that require them (undo, ship, ask). The core state machine
// never imports these directly; only this wrapper does. The wrapper does not
// use Read: enter on an open overlay dispatches IntentConfirmApply, which
// only checks that an apply is armed and records no edits.
type Env struct {
	Read     FileReader
	Restorer Restorer
	Branches BranchSwitcher
	Pusher   Pusher
	PR       PRCreator
	Asker    Asker
}

// Model is the bubbletea wrapper around App. It owns only rendering
// concerns (spinner, width/height, a glamour renderer for technical detail
// previews) and translates key presses into Intents; all session state
// lives on App.
type Model struct {
	App      *App
	env      Env
	spinner  spinner.Model
	ask      textarea.Model
	list     list.Model
	reviewVP viewport.Model
	styles   styles
	width    int
	height   int
	busy     bool
}

// suggestionItem adapts suggest.Suggestion to list.Item so the Suggestions
// panel can render through bubbles/list instead of a hand-rolled loop.
type suggestionItem struct {
	s suggest.Suggestion
}

func (i suggestionItem) Title() string       { return i.s.PrimaryFile }
func (i suggestionItem) Description() string { return i.s.Summary }
func (i suggestionItem) FilterValue() string { return i.s.PrimaryFile + " " + i.s.Summary }

type styles struct {
	title  lipgloss.Style
	dim    lipgloss.Style
	active lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Faint(true),
		active: lipgloss.NewStyle().Reverse(true),
	}
}

func NewModel(app *App, env Env) Model {
	s := spinner.New()
	ta := textarea.New()
	ta.Placeholder = "ask a question about this repo…"
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.Focus()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "suggestions"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return Model{App: app, env: env, spinner: s, ask: ta, list: l, reviewVP: vp, styles: defaultStyles()}
}

// askResultMsg carries an Asker's answer back to Update, tagged with the
// correlation id SubmitQuestion handed out so a stale answer (superseded by
// a newer question) is dropped instead of rendered.
type askResultMsg struct {
	id     string
	answer string
	err    error
}

func askCmd(asker Asker, id, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := asker.Ask(context.Background(), question)
		return askResultMsg{id: id, answer: answer, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

type errMsg error

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		m.reviewVP.Width = msg.Width
		m.reviewVP.Height = msg.Height - 4
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.App.Err = msg
		return m, nil

	case askResultMsg:
		m.App.ResolveAnswer(msg.id, msg.answer, msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if _, overlayOpen := m.App.TopOverlay(); overlayOpen {
		switch msg.String() {
		case "esc":
			_ = m.App.Dispatch(IntentCloseOverlay)
			return m, nil
		case "enter":
			if err := m.App.Dispatch(IntentConfirmApply); err != nil {
				m.App.Err = err
			}
			return m, nil
		}
		return m, nil
	}

	if m.App.Panel == PanelAsk {
		return m.handleAskKey(msg)
	}

	if m.App.Panel == PanelSuggestions && m.App.Searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		_ = m.App.Dispatch(IntentNavigateUp)
	case "down", "j":
		_ = m.App.Dispatch(IntentNavigateDown)
	case "tab":
		_ = m.App.Dispatch(IntentTogglePanel)
	case "?":
		_ = m.App.Dispatch(IntentToggleHelp)
	case "/":
		if m.App.Panel == PanelSuggestions {
			_ = m.App.Dispatch(IntentStartSearch)
		}
	case "a":
		if err := m.App.Dispatch(IntentOpenApplyPlan); err != nil {
			m.App.Err = err
		}
	case "u":
		if m.env.Restorer != nil && m.env.Branches != nil {
			if err := m.App.undoLastWith(context.Background(), m.env.Restorer, m.env.Branches); err != nil {
				m.App.Err = err
			}
		}
	case "s":
		if m.env.Pusher != nil {
			if err := m.App.StartShip(context.Background(), m.env.Pusher, m.env.PR); err != nil {
				m.App.Err = err
			}
		}
	}
	return m, nil
}

// handleSearchKey routes key presses to the Suggestions search filter while
// Searching is active; esc cancels, enter commits and exits search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.App.SearchQuery = ""
		m.App.StopSearch()
	case tea.KeyEnter:
		m.App.StopSearch()
	case tea.KeyBackspace:
		if n := len(m.App.SearchQuery); n > 0 {
			m.App.SetSearchQuery(m.App.SearchQuery[:n-1])
		}
	case tea.KeyRunes:
		m.App.SetSearchQuery(m.App.SearchQuery + string(msg.Runes))
	}
	return m, nil
}

// handleAskKey routes key presses to the Ask panel's question textarea;
// enter submits the question (if non-blank and an Asker is wired) as an
// async command correlated by the id SubmitQuestion returns.
func (m Model) handleAskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		_ = m.App.Dispatch(IntentTogglePanel)
		return m, nil
	case tea.KeyEnter:
		question := strings.TrimSpace(m.ask.Value())
		if question == "" || m.env.Asker == nil {
			return m, nil
		}
		id := m.App.SubmitQuestion(question)
		m.ask.Reset()
		return m, askCmd(m.env.Asker, id, question)
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.ask, cmd = m.ask.Update(msg)
	return m, cmd
}

// View renders the current panel and any open overlay on top of it.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(fmt.Sprintf("cosmos — %s", m.App.Panel)))
	b.WriteString("\n\n")
	b.WriteString(m.renderPanel())

	if overlay, ok := m.App.TopOverlay(); ok {
		b.WriteString("\n\n")
		b.WriteString(m.renderOverlay(overlay))
	}
	if m.App.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.App.Err.Error()))
	}
	return b.String()
}

func (m Model) renderPanel() string {
	switch m.App.Panel {
	case PanelSuggestions:
		return m.renderSuggestions()
	case PanelReview:
		return m.renderReview()
	case PanelShip:
		return m.renderShip()
	default:
		return m.renderAsk()
	}
}

func (m Model) renderSuggestions() string {
	var b strings.Builder
	if m.App.Searching {
		fmt.Fprintf(&b, "/%s\n", m.App.SearchQuery)
	}
	visible := m.App.VisibleSuggestions()
	if len(visible) == 0 {
		b.WriteString(m.styles.dim.Render("no suggestions"))
		return b.String()
	}
	items := make([]list.Item, len(visible))
	for i, s := range visible {
		items[i] = suggestionItem{s: s}
	}
	l := m.list
	l.SetItems(items)
	if m.App.SelectedIdx >= 0 && m.App.SelectedIdx < len(items) {
		l.Select(m.App.SelectedIdx)
	}
	if l.Width() == 0 {
		l.SetSize(80, 20)
	}
	b.WriteString(l.View())
	return b.String()
}

func (m Model) renderAsk() string {
	var b strings.Builder
	b.WriteString(m.ask.View())
	b.WriteString("\n\n")
	if m.App.AskPending {
		b.WriteString(m.styles.dim.Render("thinking…"))
	} else if m.App.AskAnswer != "" {
		b.WriteString(m.App.AskAnswer)
	}
	return b.String()
}

func (m Model) renderReview() string {
	var b strings.Builder
	if len(m.App.ReviewFindings) == 0 {
		b.WriteString(m.styles.dim.Render(fmt.Sprintf("review iteration %d/%d: clean", m.App.ReviewIteration, m.App.ReviewMaxIters)))
	} else {
		for _, f := range m.App.ReviewFindings {
			mark := " "
			if f.Selected {
				mark = "x"
			}
			fmt.Fprintf(&b, "[%s] %s — %s\n", mark, f.Title, f.File)
		}
	}

	if p, ok := m.App.CurrentPreview(); ok && p.Diff != "" {
		vp := m.reviewVP
		if vp.Width == 0 {
			vp.Width, vp.Height = 80, 20
		}
		vp.SetContent(p.Diff)
		b.WriteString("\n")
		b.WriteString(vp.View())
	}
	return b.String()
}

func (m Model) renderShip() string {
	stage := [...]string{"idle", "confirm", "committing", "pushing", "creating pr", "done"}[m.App.ShipStage]
	return fmt.Sprintf("branch: %s\nstage: %s", m.App.pickWorkBranch(), stage)
}

func (m Model) renderOverlay(o Overlay) string {
	switch o {
	case OverlayApplyPlan:
		s, ok := m.App.selectedSuggestion()
		if !ok {
			return ""
		}
		detail := s.TechnicalDetail
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			if out, err := r.Render(detail); err == nil {
				detail = out
			}
		}
		return fmt.Sprintf("apply: %s\n%s\n\n%s", s.Summary, s.ObservedBehavior, detail)
	case OverlayHelp:
		return "up/down: select  tab: panel  /: search  a: apply  u: undo  s: ship  ?: help  q: quit"
	default:
		return ""
	}
}
