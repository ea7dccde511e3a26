package tui

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/pawchat/pawchat/internal/session"
)

// sessionItem is one row of the rendered session list.
type sessionItem struct {
	index  int // 1-based position in the newest-first order
	id     string
	title  string
	age    string
	turns  int
	active bool
}

// sessionItems flattens the collection into display rows. sessions must
// already be in newest-first order (Repository.All).
func sessionItems(sessions []*session.Session, activeID string, now time.Time) []sessionItem {
	items := make([]sessionItem, 0, len(sessions))
	for i, s := range sessions {
		items = append(items, sessionItem{
			index:  i + 1,
			id:     s.ID,
			title:  s.Title,
			age:    timeAgo(s.Created, now),
			turns:  len(s.Turns),
			active: s.ID == activeID,
		})
	}
	return items
}

// timeAgo formats how long ago t was, in the coarse style of the session
// sidebar: "Just now", "5m ago", "3h ago", "2d ago", then a date.
func timeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// truncateTitle fits a title into the given display width, accounting for
// wide characters, with "…" marking the cut.
func truncateTitle(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
