// Package controller owns the interactive chat lifecycle: the active
// session, the in-flight exchange guard, and the command loop gluing the
// repository, the exchange client, and the UI together.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pawchat/pawchat/internal/client"
	"github.com/pawchat/pawchat/internal/session"
	"github.com/pawchat/pawchat/internal/tui"
)

// Exchanger is the outbound contract to the chat service. Implemented by
// client.Client; faked in tests.
type Exchanger interface {
	Send(ctx context.Context, message, chatID string) (*client.Reply, error)
}

// Controller drives the session lifecycle. All methods run on one logical
// flow of control; the only suspension point is the Exchanger call, and
// submissions are rejected while one is pending.
type Controller struct {
	repo *session.Repository
	exch Exchanger
	ui   tui.UI

	activeID string
	inFlight bool
}

// New creates a Controller. Call Init before any other method.
func New(repo *session.Repository, exch Exchanger, ui tui.UI) *Controller {
	return &Controller{repo: repo, exch: exch, ui: ui}
}

// Init brings the controller to its ready state: with an empty repository
// it creates a default session; otherwise it activates the most recently
// created one.
func (c *Controller) Init() error {
	if c.repo.Len() == 0 {
		sess, err := c.repo.Create(session.DefaultTitle)
		if err != nil {
			return fmt.Errorf("creating initial session: %w", err)
		}
		c.activeID = sess.ID
		c.ui.SetActiveSession(sess)
		return nil
	}
	sess := c.repo.All()[0]
	c.activeID = sess.ID
	c.ui.SetActiveSession(sess)
	return nil
}

// ActiveID returns the identifier of the active session.
func (c *Controller) ActiveID() string { return c.activeID }

// NewSession creates and activates a fresh default-titled session.
func (c *Controller) NewSession() error {
	sess, err := c.repo.Create(session.DefaultTitle)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	c.activeID = sess.ID
	c.ui.SetActiveSession(sess)
	return nil
}

// Activate switches the active session. Unknown ids are ignored without
// any state change.
func (c *Controller) Activate(id string) {
	sess, ok := c.repo.Find(id)
	if !ok {
		return
	}
	c.activeID = sess.ID
	c.ui.SetActiveSession(sess)
}

// Submit sends one user message through the exchange service and, on
// success, appends the user and assistant turns to the session the reply
// names. Failed exchanges never mutate any session. Blank input and
// submissions while an exchange is pending are rejected.
func (c *Controller) Submit(ctx context.Context, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}
	if c.inFlight {
		c.ui.TransientError("Still waiting for the previous reply.")
		return
	}

	c.inFlight = true
	defer func() { c.inFlight = false }()

	// The id the exchange was made against. The active session may change
	// while the call is pending; the reply is applied to this one.
	originID := c.activeID

	c.ui.RenderTurn(session.RoleUser, text, nil)
	c.ui.ThinkingStart()
	reply, err := c.exch.Send(ctx, text, originID)
	c.ui.ThinkingDone()
	if err != nil {
		c.ui.TransientError(exchangeNotice(err))
		return
	}

	// The service may mint its own identifier on the first message of a
	// session. Adopt it so later messages land in the same remote chat.
	targetID := originID
	if reply.ChatID != "" && reply.ChatID != originID {
		if err := c.repo.Rename(originID, reply.ChatID); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.ui.TransientError("Session was deleted while waiting; the reply was discarded.")
				return
			}
			c.ui.TransientError(fmt.Sprintf("Could not adopt server session id: %v", err))
			return
		}
		targetID = reply.ChatID
		if c.activeID == originID {
			c.activeID = targetID
		}
	}

	now := time.Now()
	err = c.repo.AppendTurns(targetID,
		session.Turn{Role: session.RoleUser, Content: text, Timestamp: now},
		session.Turn{Role: session.RoleAssistant, Content: reply.Message, Sources: reply.Sources, Timestamp: now},
	)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.ui.TransientError("Session was deleted while waiting; the reply was discarded.")
			return
		}
		c.ui.TransientError(fmt.Sprintf("Could not save the reply: %v", err))
		return
	}

	if c.activeID == targetID {
		c.ui.RenderTurn(session.RoleAssistant, reply.Message, reply.Sources)
	}
}

// DeleteSession removes a session. When the active one is removed, the
// most recently created remaining session takes over; with none left a
// fresh default session is created.
func (c *Controller) DeleteSession(id string) error {
	wasActive := id == c.activeID
	if err := c.repo.Delete(id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if !wasActive {
		return nil
	}
	if c.repo.Len() == 0 {
		return c.NewSession()
	}
	sess := c.repo.All()[0]
	c.activeID = sess.ID
	c.ui.SetActiveSession(sess)
	return nil
}

// Run is the interactive loop: reads input, intercepts slash commands,
// and submits everything else as a chat message. Returns when the user
// quits or input is exhausted.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Init(); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := c.ui.ReadInput()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit := c.handleSlashCommand(input)
			if quit {
				return nil
			}
			continue
		}

		c.Submit(ctx, input)
	}
}

// handleSlashCommand processes built-in commands. Returns true when the
// loop should exit.
func (c *Controller) handleSlashCommand(input string) bool {
	parts := strings.SplitN(strings.TrimSpace(input), " ", 2)
	cmd := parts[0]
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		c.ui.Info("Bye.")
		return true
	case "/new":
		if err := c.NewSession(); err != nil {
			c.ui.TransientError(err.Error())
		}
	case "/sessions", "/list":
		c.ui.RenderSessionList(c.repo.All(), c.activeID)
	case "/switch":
		if arg == "" {
			c.ui.Info("Usage: /switch <number|id>")
			break
		}
		id, ok := c.resolveSessionArg(arg)
		if !ok {
			c.ui.TransientError("No such session: " + arg)
			break
		}
		c.Activate(id)
	case "/delete":
		id := c.activeID
		if arg != "" {
			resolved, ok := c.resolveSessionArg(arg)
			if !ok {
				c.ui.TransientError("No such session: " + arg)
				break
			}
			id = resolved
		}
		if err := c.DeleteSession(id); err != nil {
			c.ui.TransientError(err.Error())
		}
	case "/help":
		c.ui.Info(helpText)
	default:
		c.ui.Info("Unknown command: " + cmd + " (try /help)")
	}
	return false
}

// resolveSessionArg maps a 1-based list position or a raw id to a session
// id, using the same newest-first order the session list shows.
func (c *Controller) resolveSessionArg(arg string) (string, bool) {
	sessions := c.repo.All()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(sessions) {
			return "", false
		}
		return sessions[n-1].ID, true
	}
	for _, s := range sessions {
		if s.ID == arg {
			return s.ID, true
		}
	}
	return "", false
}

// exchangeNotice turns a transport failure into a short user-facing line.
func exchangeNotice(err error) string {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("The chat service answered %d; please try again.", statusErr.Code)
	}
	return "Could not reach the chat service: " + err.Error()
}

const helpText = `Commands:
  /new             start a new session
  /sessions        list sessions
  /switch <n|id>   switch to a session
  /delete [n|id]   delete a session (default: current)
  /help            show this help
  /quit            exit`
