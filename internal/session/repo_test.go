package session

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	return NewRepository(openTestStore(t, path)), path
}

func userTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

func assistantTurn(content string, sources []Source) Turn {
	return Turn{Role: RoleAssistant, Content: content, Sources: sources, Timestamp: time.Now()}
}

func TestRepository_CreateUniqueIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := repo.Create(DefaultTitle)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[s.ID] {
			t.Fatalf("duplicate id %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestRepository_AllNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t)

	a, _ := repo.Create(DefaultTitle)
	b, _ := repo.Create(DefaultTitle)
	c, _ := repo.Create(DefaultTitle)
	// Force distinct creation times regardless of clock resolution.
	a.Created = time.Now().Add(-2 * time.Hour)
	b.Created = time.Now().Add(-1 * time.Hour)
	c.Created = time.Now()

	all := repo.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].ID != c.ID || all[1].ID != b.ID || all[2].ID != a.ID {
		t.Errorf("expected newest-first order c,b,a; got %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	// The sort must not disturb stored insertion order.
	if repo.sessions[0].ID != a.ID {
		t.Errorf("All() mutated stored order")
	}
}

func TestRepository_AllStableOnTies(t *testing.T) {
	repo, _ := newTestRepo(t)
	created := time.Now()
	for i := 0; i < 5; i++ {
		s, _ := repo.Create(DefaultTitle)
		s.Created = created
	}

	first := repo.All()
	second := repo.All()
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("tie order unstable between calls at index %d", i)
		}
	}
}

func TestRepository_AppendTurns_TitleDerivation(t *testing.T) {
	repo, _ := newTestRepo(t)
	s, _ := repo.Create(DefaultTitle)

	err := repo.AppendTurns(s.ID, userTurn("Hello"), assistantTurn("Hi", nil))
	if err != nil {
		t.Fatalf("AppendTurns: %v", err)
	}
	if s.Title != "Hello" {
		t.Errorf("expected derived title %q, got %q", "Hello", s.Title)
	}
	if len(s.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(s.Turns))
	}

	// Title derivation happens exactly once.
	if err := repo.AppendTurns(s.ID, userTurn("Something else entirely"), assistantTurn("Sure", nil)); err != nil {
		t.Fatalf("AppendTurns: %v", err)
	}
	if s.Title != "Hello" {
		t.Errorf("title re-derived on second append: %q", s.Title)
	}
}

func TestRepository_AppendTurns_LongTitle(t *testing.T) {
	repo, _ := newTestRepo(t)
	s, _ := repo.Create(DefaultTitle)

	msg := strings.Repeat("x", 40)
	if err := repo.AppendTurns(s.ID, userTurn(msg), assistantTurn("ok", nil)); err != nil {
		t.Fatalf("AppendTurns: %v", err)
	}
	want := strings.Repeat("x", 30) + "..."
	if s.Title != want {
		t.Errorf("expected %q, got %q", want, s.Title)
	}
}

func TestRepository_AppendTurns_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	err := repo.AppendTurns("chat_missing", userTurn("hi"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	s, _ := repo.Create(DefaultTitle)

	if err := repo.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.Find(s.ID); ok {
		t.Error("session still present after delete")
	}

	// Deleting an unknown id is a no-op, not an error.
	if err := repo.Delete("chat_missing"); err != nil {
		t.Errorf("delete of unknown id should be a no-op, got %v", err)
	}
}

func TestRepository_Rename(t *testing.T) {
	repo, _ := newTestRepo(t)
	s, _ := repo.Create(DefaultTitle)
	repo.AppendTurns(s.ID, userTurn("Hello"), assistantTurn("Hi", nil))

	if err := repo.Rename(s.ID, "chat_remote01"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, ok := repo.Find("chat_remote01")
	if !ok {
		t.Fatal("renamed session not findable under new id")
	}
	if got.Title != "Hello" || len(got.Turns) != 2 {
		t.Errorf("rename lost session data: %+v", got)
	}

	if err := repo.Rename("chat_missing", "chat_x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	other, _ := repo.Create(DefaultTitle)
	if err := repo.Rename(other.ID, "chat_remote01"); err == nil {
		t.Error("rename onto an existing id must fail")
	}
}

func TestRepository_PersistenceCongruence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	repo := NewRepository(openTestStore(t, path))

	s, _ := repo.Create(DefaultTitle)
	repo.AppendTurns(s.ID, userTurn("Hello"), assistantTurn("Hi", []Source{{Text: "snippet"}}))
	other, _ := repo.Create(DefaultTitle)
	repo.Delete(other.ID)

	// After every mutation chain, a fresh store view equals memory.
	fresh := openTestStore(t, path).LoadAll()
	if len(fresh) != repo.Len() {
		t.Fatalf("store holds %d sessions, memory holds %d", len(fresh), repo.Len())
	}
	if fresh[0].ID != s.ID || fresh[0].Title != "Hello" {
		t.Errorf("store content diverged: %+v", fresh[0])
	}
	if len(fresh[0].Turns) != 2 {
		t.Errorf("expected 2 persisted turns, got %d", len(fresh[0].Turns))
	}
}

func TestNewRepository_LoadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	first := NewRepository(openTestStore(t, path))
	s, _ := first.Create(DefaultTitle)
	first.AppendTurns(s.ID, userTurn("Hello"), assistantTurn("Hi", nil))

	second := NewRepository(openTestStore(t, path))
	got, ok := second.Find(s.ID)
	if !ok {
		t.Fatal("session not loaded by new repository")
	}
	if got.Title != "Hello" {
		t.Errorf("expected title %q, got %q", "Hello", got.Title)
	}
}
