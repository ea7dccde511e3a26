package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists the full session collection in a single named slot.
//
// LoadAll never fails: an absent or unreadable slot reads as an empty
// collection. SaveAll overwrites the slot with the complete collection and
// returns only once the write is durable.
type Store interface {
	LoadAll() []*Session
	SaveAll(sessions []*Session) error
	Close() error
}

// slotKey is the single slot holding the serialized session collection.
const slotKey = "chats"

// schemaVersion is written into the slot envelope so a future format
// change fails loudly instead of silently misreading old data.
const schemaVersion = 1

const createSlotTableSQL = `
CREATE TABLE IF NOT EXISTS slots (
    key  TEXT PRIMARY KEY,
    data TEXT NOT NULL
);`

// SQLiteStore implements Store backed by a key/value table in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultStorePath returns ~/.config/pawchat/sessions.db, creating the
// directory if needed.
func DefaultStorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "pawchat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return filepath.Join(dir, "sessions.db"), nil
}

// NewSQLiteStore opens (or creates) the store at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(createSlotTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// slotEnvelope is the persisted shape of the session collection.
type slotEnvelope struct {
	SchemaVersion int             `json:"schema_version"`
	Chats         []storedSession `json:"chats"`
}

type storedSession struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Created  string       `json:"created"` // ISO-8601
	Messages []storedTurn `json:"messages"`
}

type storedTurn struct {
	Role      string   `json:"role"`
	Content   string   `json:"content"`
	Sources   []Source `json:"sources,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// LoadAll reads the session collection from the slot. A missing or
// malformed slot is treated as "no sessions", never as an error.
func (s *SQLiteStore) LoadAll() []*Session {
	var data string
	err := s.db.QueryRow("SELECT data FROM slots WHERE key = ?", slotKey).Scan(&data)
	if err != nil {
		return nil
	}

	var env slotEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		// Pre-envelope layout: the slot held the bare array.
		var bare []storedSession
		if json.Unmarshal([]byte(data), &bare) != nil {
			return nil
		}
		env.Chats = bare
	}

	sessions := make([]*Session, 0, len(env.Chats))
	for _, sc := range env.Chats {
		sessions = append(sessions, fromStored(sc))
	}
	return sessions
}

// SaveAll overwrites the slot with the full collection.
func (s *SQLiteStore) SaveAll(sessions []*Session) error {
	env := slotEnvelope{
		SchemaVersion: schemaVersion,
		Chats:         make([]storedSession, 0, len(sessions)),
	}
	for _, sess := range sessions {
		env.Chats = append(env.Chats, toStored(sess))
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO slots (key, data) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data`,
		slotKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("write sessions slot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toStored(sess *Session) storedSession {
	sc := storedSession{
		ID:       sess.ID,
		Title:    sess.Title,
		Created:  sess.Created.Format(time.RFC3339Nano),
		Messages: make([]storedTurn, 0, len(sess.Turns)),
	}
	for _, t := range sess.Turns {
		sc.Messages = append(sc.Messages, storedTurn{
			Role:      string(t.Role),
			Content:   t.Content,
			Sources:   t.Sources,
			Timestamp: t.Timestamp.Format(time.RFC3339Nano),
		})
	}
	return sc
}

func fromStored(sc storedSession) *Session {
	sess := &Session{
		ID:    sc.ID,
		Title: sc.Title,
	}
	sess.Created, _ = time.Parse(time.RFC3339Nano, sc.Created)
	for _, m := range sc.Messages {
		turn := Turn{
			Role:    Role(m.Role),
			Content: m.Content,
			Sources: m.Sources,
		}
		turn.Timestamp, _ = time.Parse(time.RFC3339Nano, m.Timestamp)
		sess.Turns = append(sess.Turns, turn)
	}
	return sess
}
