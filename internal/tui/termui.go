package tui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pawchat/pawchat/internal/session"
)

// TermUI implements the UI interface by sending messages to a bubbletea
// Program. All methods are safe to call from the controller goroutine.
type TermUI struct {
	program *tea.Program
	inputCh chan inputResult
}

var _ UI = (*TermUI)(nil)

func (t *TermUI) ReadInput() (string, error) {
	// Tell the TUI to activate the text input.
	t.program.Send(readInputMsg{})

	// Block until the user submits or the TUI exits.
	res := <-t.inputCh
	if res.err != nil {
		return "", io.EOF
	}
	return res.text, nil
}

func (t *TermUI) RenderTurn(role session.Role, content string, sources []session.Source) {
	t.program.Send(turnMsg{role: role, content: content, sources: sources})
}

func (t *TermUI) RenderSessionList(sessions []*session.Session, activeID string) {
	t.program.Send(sessionListMsg{items: sessionItems(sessions, activeID, time.Now())})
}

func (t *TermUI) SetActiveSession(sess *session.Session) {
	turns := make([]turnMsg, 0, len(sess.Turns))
	for _, turn := range sess.Turns {
		turns = append(turns, turnMsg{role: turn.Role, content: turn.Content, sources: turn.Sources})
	}
	t.program.Send(activeSessionMsg{title: sess.Title, turns: turns})
}

func (t *TermUI) ThinkingStart() {
	t.program.Send(thinkingStartMsg{})
}

func (t *TermUI) ThinkingDone() {
	t.program.Send(thinkingDoneMsg{})
}

func (t *TermUI) TransientError(text string) {
	t.program.Send(transientErrMsg{text: text})
}

func (t *TermUI) Info(text string) {
	t.program.Send(infoMsg{text: text})
}

// RunUI starts the bubbletea program and runs controllerFn concurrently.
// It blocks until either the controller finishes or the user quits; the
// context handed to controllerFn is cancelled when the program exits.
func RunUI(cfg UIConfig, controllerFn func(ctx context.Context, ui UI) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inputCh := make(chan inputResult, 1)
	model := NewModel(inputCh, cfg)

	p := tea.NewProgram(model)
	termUI := &TermUI{program: p, inputCh: inputCh}

	var (
		controllerErr error
		wg            sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		controllerErr = controllerFn(ctx, termUI)
		p.Send(controllerDoneMsg{err: controllerErr})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// The program exited; unblock a controller stuck in ReadInput and
	// wait for its goroutine to finish.
	cancel()
	select {
	case inputCh <- inputResult{err: io.EOF}:
	default:
	}
	wg.Wait()

	return controllerErr
}
