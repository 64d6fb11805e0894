package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/elysium/cli"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the Elysium TUI.
type Model struct {
	ctx     context.Context
	session *cli.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated output lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
	status   string // transient warning shown in the status bar

	showBoard bool // side panel, hidden anyway on narrow terminals
}

// minBoardWidth is the narrowest terminal that still gets the board.
const minBoardWidth = 80

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// CatalogChangedMsg tells the model the deck file changed on disk.
type CatalogChangedMsg struct{}

// SaveFailedMsg reports a failed autosave.
type SaveFailedMsg struct {
	Err error
}

// New creates a TUI model wired to the given session.
func New(ctx context.Context, sess *cli.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		ctx:       ctx,
		session:   sess,
		input:     ti,
		history:   NewHistory(100),
		showBoard: true,
	}
}

// NewProgram wraps m in a full-screen Bubble Tea program. Callers keep the
// program to deliver CatalogChangedMsg and SaveFailedMsg with Send.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
}

// Init returns the initial command that produces the title and first look.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		lines := []string{"Elysium", "Tab completes card names. Ctrl+B toggles the board.", ""}
		result := m.session.Engine.Step("look")
		lines = append(lines, result.Output...)
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "tab":
			line, matches := complete(m.session.Engine, m.input.Value())
			m.input.SetValue(line)
			m.input.CursorEnd()
			m.status = ""
			if len(matches) > 1 {
				m.status = strings.Join(matches, " | ")
			}
			return m, nil

		case "ctrl+b":
			m.showBoard = !m.showBoard
			if m.ready {
				m.layout()
			}
			return m, nil

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)

	case CatalogChangedMsg:
		lines, err := m.session.ReloadCatalog()
		if err != nil {
			m.status = "Deck reload failed"
			lines = []string{fmt.Sprintf("Deck reload failed: %v", err)}
		}
		m = m.appendOutput(gameOutputMsg{lines: lines, isSystem: true})

	case SaveFailedMsg:
		m.status = "Autosave failed"
		m = m.appendOutput(gameOutputMsg{
			lines:    []string{fmt.Sprintf("Autosave failed: %v", msg.Err)},
			isSystem: true,
		})
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()
	m.status = ""

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		r := m.session.Meta(m.ctx, input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: r.Notices, isSystem: true})
		if len(r.Output) > 0 {
			m = m.appendOutput(gameOutputMsg{lines: r.Output})
		}
		m = m.appendNotices()
		if r.Quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result := m.session.Engine.Step(input)
	output := result.Output
	if m.session.Trace {
		output = append(output, cli.FormatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})
	m = m.appendNotices()
	return m, nil
}

// appendNotices shows status messages queued on the session.
func (m Model) appendNotices() Model {
	if notices := m.session.Notices(); len(notices) > 0 {
		m.status = notices[len(notices)-1]
		m = m.appendOutput(gameOutputMsg{lines: notices, isSystem: true})
	}
	return m
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// boardVisible reports whether the side panel fits and is switched on.
func (m Model) boardVisible() bool {
	return m.showBoard && m.width >= minBoardWidth
}

// layout sizes the viewport to what the status bar, input line and board
// leave free, then re-wraps the scrollback.
func (m *Model) layout() {
	vpWidth := m.width
	if m.boardVisible() {
		vpWidth -= boardWidth
	}
	vpHeight := max(m.height-2, 1) // 1 status bar + 1 input line

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := max(m.viewport.Width, 10)

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given display width, breaking at
// word boundaries. Leading indentation is kept on continuation lines.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}

	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := lipgloss.Width(word)

		if i == 0 {
			result.WriteString(indent)
			result.WriteString(word)
			lineLen = len(indent) + wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(indent)
			result.WriteString(word)
			lineLen = len(indent) + wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the scrollback beside the board, then the status bar and
// the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	if m.boardVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderBoard(m.viewport.Height))
	}
	return body + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
