package tui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pawchat/pawchat/internal/session"
)

// PlainUI implements UI using plain terminal output (fmt.Print /
// bufio.Scanner). Used when TUI mode is disabled or the terminal does not
// support it.
type PlainUI struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPlainUI creates a PlainUI reading from stdin and writing to stdout.
func NewPlainUI() *PlainUI {
	s := bufio.NewScanner(os.Stdin)
	s.Buffer(make([]byte, 64*1024), 64*1024)
	return &PlainUI{scanner: s, out: os.Stdout}
}

func (p *PlainUI) ReadInput() (string, error) {
	fmt.Fprint(p.out, "\n> ")
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *PlainUI) RenderTurn(role session.Role, content string, sources []session.Source) {
	switch role {
	case session.RoleUser:
		fmt.Fprintf(p.out, "You: %s\n", content)
	default:
		fmt.Fprintf(p.out, "\n%s\n", content)
		if block := formatSources(sources); block != "" {
			fmt.Fprintln(p.out, block)
		}
	}
}

func (p *PlainUI) RenderSessionList(sessions []*session.Session, activeID string) {
	items := sessionItems(sessions, activeID, time.Now())
	if len(items) == 0 {
		fmt.Fprintln(p.out, "No sessions.")
		return
	}
	fmt.Fprintf(p.out, "Sessions (%d):\n", len(items))
	for _, it := range items {
		marker := " "
		if it.active {
			marker = "*"
		}
		fmt.Fprintf(p.out, " %s %2d. %-32s %s  %d msgs  %s\n",
			marker, it.index, truncateTitle(it.title, 32), it.age, it.turns, it.id)
	}
}

func (p *PlainUI) SetActiveSession(sess *session.Session) {
	fmt.Fprintf(p.out, "\n--- %s ---\n", sess.Title)
	for _, t := range sess.Turns {
		p.RenderTurn(t.Role, t.Content, t.Sources)
	}
}

func (p *PlainUI) ThinkingStart() {
	fmt.Fprint(p.out, "\n...")
}

func (p *PlainUI) ThinkingDone() {
	fmt.Fprint(p.out, "\r   \r")
}

func (p *PlainUI) TransientError(text string) {
	fmt.Fprintf(os.Stderr, "error: %s\n", text)
}

func (p *PlainUI) Info(text string) {
	fmt.Fprintln(p.out, text)
}

// formatSources renders the reference snippets of an assistant turn.
// Empty or absent sources render nothing.
func formatSources(sources []session.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Sources:")
	for _, src := range sources {
		sb.WriteString("\n  - ")
		if src.Title != "" {
			sb.WriteString(src.Title + ": ")
		}
		sb.WriteString(truncateTitle(src.Text, 100))
		if src.URL != "" {
			sb.WriteString(" (" + src.URL + ")")
		}
	}
	return sb.String()
}
