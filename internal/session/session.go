// Package session holds the conversation data model, the durable store
// adapter, and the in-memory repository that keeps both congruent.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the sentinel title given to every new session. It is
// replaced exactly once, by the first turn appended to the session.
const DefaultTitle = "Untitled"

// titleLimit is the maximum number of characters carried into a derived
// session title before the ellipsis marker is appended.
const titleLimit = 30

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Source is a reference snippet attached to an assistant turn.
type Source struct {
	Text  string  `json:"text"`
	Score float64 `json:"score,omitempty"`
	URL   string  `json:"url,omitempty"`
	Title string  `json:"title,omitempty"`
}

// Turn is a single message within a session. Sources is populated only on
// assistant turns, and an empty slice means "no sources".
type Turn struct {
	Role      Role
	Content   string
	Sources   []Source
	Timestamp time.Time
}

// Session is one conversation: an ordered, append-only sequence of turns.
type Session struct {
	ID      string
	Title   string
	Created time.Time
	Turns   []Turn
}

// New creates a session with a fresh ID and the sentinel title.
func New(title string) *Session {
	if title == "" {
		title = DefaultTitle
	}
	return &Session{
		ID:      newID(),
		Title:   title,
		Created: time.Now(),
	}
}

// newID mints a session identifier in the same shape the answering service
// uses for server-minted sessions ("chat_" + 12 hex chars).
func newID() string {
	return "chat_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// DeriveTitle turns the first message of a session into its title: the
// first 30 characters, with "..." appended when the content was longer.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit]) + "..."
}
