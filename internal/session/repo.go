package session

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when an operation references an unknown session.
var ErrNotFound = errors.New("session not found")

// Repository is the in-memory session collection, kept congruent with the
// Store: every mutation persists the full collection before returning.
//
// The repository is not safe for concurrent use; the client runs all
// operations on a single flow of control.
type Repository struct {
	store    Store
	sessions []*Session // insertion order
}

// NewRepository creates a repository primed with the store's contents.
func NewRepository(store Store) *Repository {
	return &Repository{
		store:    store,
		sessions: store.LoadAll(),
	}
}

// All returns the sessions sorted by creation time, newest first. The sort
// is computed per call; stored insertion order is untouched and breaks
// ties stably.
func (r *Repository) All() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out
}

// Find returns the session with the given id, or false.
func (r *Repository) Find(id string) (*Session, bool) {
	for _, s := range r.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Create allocates a new session and persists the collection.
func (r *Repository) Create(title string) (*Session, error) {
	sess := New(title)
	r.sessions = append(r.sessions, sess)
	if err := r.save(); err != nil {
		return nil, err
	}
	return sess, nil
}

// AppendTurns appends turns to the session in the given order and
// persists. When the target still carries the sentinel title and has no
// turns, the title is derived from the first appended turn — exactly once.
func (r *Repository) AppendTurns(id string, turns ...Turn) error {
	sess, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("append turns to %s: %w", id, ErrNotFound)
	}
	if len(turns) == 0 {
		return nil
	}

	if sess.Title == DefaultTitle && len(sess.Turns) == 0 {
		sess.Title = DeriveTitle(turns[0].Content)
	}
	sess.Turns = append(sess.Turns, turns...)

	return r.save()
}

// Rename rebinds a session to a new identifier, preserving everything
// else. Used when the answering service mints its own identifier for a
// session's first exchange. Fails if newID is already taken.
func (r *Repository) Rename(oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	if _, taken := r.Find(newID); taken {
		return fmt.Errorf("rename %s to %s: id already in use", oldID, newID)
	}
	sess, ok := r.Find(oldID)
	if !ok {
		return fmt.Errorf("rename %s: %w", oldID, ErrNotFound)
	}
	sess.ID = newID
	return r.save()
}

// Delete removes the session if present (no-op when absent) and persists.
func (r *Repository) Delete(id string) error {
	for i, s := range r.sessions {
		if s.ID == id {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return r.save()
		}
	}
	return nil
}

// Len reports how many sessions the repository holds.
func (r *Repository) Len() int {
	return len(r.sessions)
}

func (r *Repository) save() error {
	if err := r.store.SaveAll(r.sessions); err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}
