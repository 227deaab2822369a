package workflow

import (
	"context"

	"github.com/google/uuid"
)

// Asker answers a free-text question about the repository, typically backed
// by an agent loop running in read-only mode (no apply/shell-write tools).
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// SubmitQuestion records a new pending question and returns its correlation
// id. The caller is expected to run the Asker call asynchronously (a
// bubbletea command) and report the result back through ResolveAnswer.
func (a *App) SubmitQuestion(question string) string {
	id := uuid.New().String()
	a.AskQuestion = question
	a.AskAnswer = ""
	a.AskPending = true
	a.lastAskID = id
	a.markDirty()
	return id
}

// ResolveAnswer applies an answer (or error) for the given ask id. A stale
// id — one superseded by a later SubmitQuestion call — is dropped silently,
// never rendered, matching the ask-request id pattern: only the latest
// outstanding question's response is ever shown.
func (a *App) ResolveAnswer(id, answer string, err error) {
	if id != a.lastAskID {
		return
	}
	a.AskPending = false
	if err != nil {
		a.Err = err
		a.markDirty()
		return
	}
	a.AskAnswer = answer
	a.markDirty()
}
