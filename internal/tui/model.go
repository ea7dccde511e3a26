package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pawchat/pawchat/internal/session"
)

// ---------- messages sent from the controller goroutine via program.Send() ----------

type readInputMsg struct{}

type inputResult struct {
	text string
	err  error
}

type turnMsg struct {
	role    session.Role
	content string
	sources []session.Source
}

type sessionListMsg struct{ items []sessionItem }

type activeSessionMsg struct {
	title string
	turns []turnMsg
}

type thinkingStartMsg struct{}
type thinkingDoneMsg struct{}
type transientErrMsg struct{ text string }
type infoMsg struct{ text string }
type controllerDoneMsg struct{ err error }

// UIConfig carries version/server info for the welcome page and status bar.
type UIConfig struct {
	Version     string
	ServerURL   string
	SessionID   string
	ShowWelcome bool
}

// ---------- styles ----------

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sourceTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2"))

	listActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	listItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	listAgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	statusTitleStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("2")).
				Bold(true)

	welcomeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(0, 1)

	welcomeTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Bold(true)

	welcomeLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	welcomeValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

// examplePrompts are shown on the welcome page for a fresh session.
var examplePrompts = []string{
	"What should I feed my dog?",
	"How often should I bathe my cat?",
	"Why does my puppy chew everything?",
}

// ---------- Model ----------

// Model is the bubbletea model managing the chat TUI state.
type Model struct {
	textinput textinput.Model
	spinner   spinner.Model
	width     int
	height    int

	inputMode   bool
	thinking    bool
	quitting    bool
	activeTitle string

	inputCh chan inputResult
	cfg     UIConfig

	mdRenderer      *glamour.TermRenderer
	mdRendererWidth int
}

// NewModel creates the initial bubbletea model.
func NewModel(inputCh chan inputResult, cfg UIConfig) Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.CharLimit = 1000 // matches the service's message length cap

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		textinput: ti,
		spinner:   sp,
		inputCh:   inputCh,
		cfg:       cfg,
	}
}

func (m Model) Init() tea.Cmd {
	if m.cfg.ShowWelcome {
		return tea.Println(renderWelcome(m.cfg))
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textinput.Width = m.width - 4

	case spinner.TickMsg:
		if m.thinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.inputMode {
				m.inputCh <- inputResult{err: fmt.Errorf("interrupted")}
				m.inputMode = false
				m.textinput.Blur()
			}
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.inputMode {
				text := strings.TrimSpace(m.textinput.Value())
				m.textinput.SetValue("")
				m.inputCh <- inputResult{text: text}
				m.inputMode = false
				m.textinput.Blur()
			}
			return m, nil
		}
		if m.inputMode {
			var cmd tea.Cmd
			m.textinput, cmd = m.textinput.Update(msg)
			cmds = append(cmds, cmd)
		}

	// ---------- custom messages from the controller goroutine ----------

	case readInputMsg:
		m.inputMode = true
		m.textinput.Focus()
		cmds = append(cmds, textinput.Blink)

	case turnMsg:
		cmds = append(cmds, tea.Println(m.renderTurn(msg)))

	case sessionListMsg:
		cmds = append(cmds, tea.Println(renderSessionList(msg.items)))

	case activeSessionMsg:
		m.activeTitle = msg.title
		block := systemStyle.Render("── " + msg.title + " ──")
		for _, t := range msg.turns {
			block += "\n" + m.renderTurn(t)
		}
		cmds = append(cmds, tea.Println(block))

	case thinkingStartMsg:
		m.thinking = true
		cmds = append(cmds, m.spinner.Tick)

	case thinkingDoneMsg:
		m.thinking = false

	case transientErrMsg:
		cmds = append(cmds, tea.Println(errorStyle.Render("⚠ "+msg.text)))

	case infoMsg:
		cmds = append(cmds, tea.Println(systemStyle.Render(msg.text)))

	case controllerDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var live string
	if m.thinking {
		live = m.spinner.View() + hintStyle.Render(" Thinking…")
	}

	var input string
	if m.inputMode {
		input = m.textinput.View()
	} else {
		input = systemStyle.Render("❯")
	}

	var parts []string
	if live != "" {
		parts = append(parts, live)
	}
	parts = append(parts, input, m.renderStatusBar())
	return strings.Join(parts, "\n")
}

// ---------- rendering ----------

// renderTurn renders one turn for the scrollback. Assistant text goes
// through the markdown renderer; sources render only when present.
func (m *Model) renderTurn(t turnMsg) string {
	if t.role == session.RoleUser {
		return userStyle.Render("You: ") + t.content
	}

	out := m.renderMarkdown(t.content)
	if len(t.sources) > 0 {
		var sb strings.Builder
		sb.WriteString(sourceStyle.Render("Sources:"))
		for _, src := range t.sources {
			sb.WriteString("\n  ")
			if src.Title != "" {
				sb.WriteString(sourceTitleStyle.Render(src.Title) + sourceStyle.Render(" — "))
			}
			sb.WriteString(sourceStyle.Render(truncateTitle(src.Text, 90)))
			if src.URL != "" {
				sb.WriteString("\n    " + sourceStyle.Render(src.URL))
			}
		}
		out += "\n" + sb.String()
	}
	return out
}

func renderSessionList(items []sessionItem) string {
	if len(items) == 0 {
		return systemStyle.Render("No sessions.")
	}
	var lines []string
	lines = append(lines, systemStyle.Render(fmt.Sprintf("Sessions (%d):", len(items))))
	for _, it := range items {
		line := fmt.Sprintf(" %2d. %-32s %s", it.index, truncateTitle(it.title, 32), listAgeStyle.Render(it.age))
		if it.active {
			lines = append(lines, listActiveStyle.Render("*")+listActiveStyle.Render(line))
		} else {
			lines = append(lines, " "+listItemStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the bottom separator + title/server bar.
func (m *Model) renderStatusBar() string {
	title := m.activeTitle
	if title == "" {
		title = session.DefaultTitle
	}
	bar := statusTitleStyle.Render(" "+truncateTitle(title, 40)) +
		statusBarStyle.Render(" │ "+m.cfg.ServerURL)
	width := m.width
	if width <= 0 {
		width = 80
	}
	return separatorStyle.Render(strings.Repeat("─", width)) + "\n" + bar
}

// renderWelcome renders the startup box with version and example prompts.
func renderWelcome(cfg UIConfig) string {
	var lines []string
	lines = append(lines, welcomeTitleStyle.Render("🐾 pawchat ")+welcomeValueStyle.Render("v"+cfg.Version))
	lines = append(lines, welcomeLabelStyle.Render("server  ")+welcomeValueStyle.Render(cfg.ServerURL))
	if cfg.SessionID != "" {
		lines = append(lines, welcomeLabelStyle.Render("session ")+welcomeValueStyle.Render(cfg.SessionID))
	}
	lines = append(lines, "")
	lines = append(lines, welcomeLabelStyle.Render("Try asking:"))
	for _, p := range examplePrompts {
		lines = append(lines, welcomeValueStyle.Render("  • "+p))
	}
	lines = append(lines, "")
	lines = append(lines, hintStyle.Render("/help for commands"))
	return welcomeBorderStyle.Render(strings.Join(lines, "\n"))
}

// renderMarkdown renders assistant text as markdown, rebuilding the
// renderer when the terminal width changes.
func (m *Model) renderMarkdown(text string) string {
	width := m.width - 2
	if width < 20 {
		width = 78
	}
	if m.mdRenderer == nil || m.mdRendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		m.mdRenderer = r
		m.mdRendererWidth = width
	}
	out, err := m.mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
