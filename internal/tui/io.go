// Package tui defines the UI contract between the session controller and
// the rendering layer, plus PlainUI (terminal fallback) and TermUI
// (bubbletea).
package tui

import "github.com/pawchat/pawchat/internal/session"

// UI is the notification contract from the controller to the rendering
// layer. Every method maps to a distinct visual event — the controller
// never depends on any specific rendering implementation.
type UI interface {
	// ReadInput blocks until the user submits a line of input.
	// Returns ("", io.EOF) when the user quits.
	ReadInput() (string, error)

	// RenderTurn displays one conversation turn. sources is nil or empty
	// for user turns and for assistant turns without references; empty
	// renders nothing.
	RenderTurn(role session.Role, content string, sources []session.Source)

	// RenderSessionList displays the session collection, newest first,
	// with the active session marked.
	RenderSessionList(sessions []*session.Session, activeID string)

	// SetActiveSession signals that sess became the active session.
	// Implementations update the visible title and replay its turns.
	SetActiveSession(sess *session.Session)

	// ThinkingStart signals that an exchange with the service began.
	ThinkingStart()

	// ThinkingDone signals that the exchange finished (either way).
	ThinkingDone()

	// TransientError shows a failure notice that is never persisted to
	// any session.
	TransientError(text string)

	// Info displays a system-level notice (command feedback, status).
	Info(text string)
}
