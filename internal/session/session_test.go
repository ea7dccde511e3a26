package session

import (
	"strings"
	"testing"
)

func TestNew_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		s := New(DefaultTitle)
		if seen[s.ID] {
			t.Fatalf("duplicate session id generated: %s", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestNew_IDShape(t *testing.T) {
	s := New("")
	if !strings.HasPrefix(s.ID, "chat_") {
		t.Errorf("expected chat_ prefix, got %q", s.ID)
	}
	if len(s.ID) != len("chat_")+12 {
		t.Errorf("expected 12-char suffix, got %q", s.ID)
	}
	if s.Title != DefaultTitle {
		t.Errorf("empty title should default to %q, got %q", DefaultTitle, s.Title)
	}
}

func TestDeriveTitle_Short(t *testing.T) {
	if got := DeriveTitle("Hello"); got != "Hello" {
		t.Errorf("expected title %q, got %q", "Hello", got)
	}
}

func TestDeriveTitle_ExactLimit(t *testing.T) {
	content := strings.Repeat("a", 30)
	if got := DeriveTitle(content); got != content {
		t.Errorf("30-char content should pass through unchanged, got %q", got)
	}
}

func TestDeriveTitle_Truncated(t *testing.T) {
	content := strings.Repeat("a", 40)
	want := strings.Repeat("a", 30) + "..."
	if got := DeriveTitle(content); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDeriveTitle_Multibyte(t *testing.T) {
	// Truncation counts characters, not bytes.
	content := strings.Repeat("犬", 31)
	want := strings.Repeat("犬", 30) + "..."
	if got := DeriveTitle(content); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
