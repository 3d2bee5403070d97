// Package tui provides a Bubble Tea terminal UI for a CardBattle match:
// both boards on top, the narrative in a scrolling viewport, a status bar
// and a command line. Resolved rounds are replayed a line at a time while
// the board still shows the position they started from.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/Fedya1234/CardBattle/engine/session"
	"github.com/Fedya1234/CardBattle/types"
)

// entry is one unstyled narrative line. Styling and wrapping happen on
// every refresh so a resize reflows the whole log.
type entry struct {
	text string
	kind lineKind
}

// replay reveals a resolved round one line per tick.
type replay struct {
	id     int
	before *types.GameState
	lines  []string
	next   int
}

// Model is the Bubble Tea model for the CardBattle TUI.
type Model struct {
	console *session.Console
	session *session.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	log     []entry
	replay  *replay
	replays int // last replay id; ticks for older ids are dropped
	pace    time.Duration

	width    int
	height   int
	ready    bool
	quitting bool
}

type introMsg []string

type replayTickMsg struct{ id int }

// New creates a TUI model driving con. A zero pace shows a resolved round
// at once.
func New(con *session.Console, pace time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.CharLimit = 256
	ti.Focus()

	con.HelpFooter = []string{
		"PgUp/PgDn scroll, Up/Down recall commands starting with what you typed,",
		"Enter during a fight skips to its end.",
	}
	return Model{
		console: con,
		session: con.Session,
		input:   ti,
		history: NewHistory(100),
		pace:    pace,
	}
}

// Run starts the Bubble Tea program on the alternate screen.
func Run(con *session.Console, pace time.Duration) error {
	_, err := tea.NewProgram(New(con, pace), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}

// Init deals the opening hands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.intro)
}

func (m Model) intro() tea.Msg {
	game := m.session.Engine.Defs.Game
	lines := []string{game.Title + " v" + game.Version + " by " + game.Author, ""}
	if game.Intro != "" {
		lines = append(lines, game.Intro, "")
	}
	return introMsg(append(lines, m.session.Start().Output...))
}

// Update handles resizes, keys, mouse scrolling, the intro and replay ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if next, cmd, ok := m.handleKey(msg); ok {
			return next, cmd
		}
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case introMsg:
		m.narrate(msg)
		return m, nil
	case replayTickMsg:
		return m.advanceReplay(msg.id)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize gives the viewport whatever the board, status bar and input
// line leave over.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vpHeight := max(height-boardHeight-2, 1)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.viewport.KeyMap = viewport.KeyMap{
			PageDown:     key.NewBinding(key.WithKeys("pgdown")),
			PageUp:       key.NewBinding(key.WithKeys("pgup")),
			HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
			HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
			Up:           key.NewBinding(key.WithDisabled()),
			Down:         key.NewBinding(key.WithDisabled()),
		}
		m.ready = true
	} else {
		m.viewport.Width, m.viewport.Height = width, vpHeight
	}
	m.refreshViewport()
}

// handleKey consumes the keys the model owns. Anything else goes to the
// text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd := m.handleEnter()
		return next, cmd, true
	case "up":
		if prev, ok := m.history.Prev(m.input.Value()); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil, true
	case "down":
		next, _ := m.history.Next()
		m.input.SetValue(next)
		m.input.CursorEnd()
		return m, nil, true
	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.replay != nil {
		m.narrate(m.replay.lines[m.replay.next:])
		m.replay = nil
		return m, nil
	}

	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.Reset()

	reply := m.console.Handle(input)
	m.log = append(m.log, entry{text: "> " + input, kind: kindInput})
	for _, s := range reply.System {
		m.log = append(m.log, entry{text: "[" + s + "]", kind: kindSystem})
	}
	if reply.Quit {
		m.quitting = true
		return m, tea.Quit
	}

	if reply.Before == nil || m.pace <= 0 || len(reply.Output) == 0 {
		m.narrate(reply.Output)
		return m, nil
	}
	m.replays++
	m.replay = &replay{id: m.replays, before: reply.Before, lines: reply.Output}
	m.refreshViewport()
	return m, m.tick(m.replays)
}

func (m Model) tick(id int) tea.Cmd {
	return tea.Tick(m.pace, func(time.Time) tea.Msg { return replayTickMsg{id: id} })
}

// advanceReplay reveals the next line of replay id.
func (m Model) advanceReplay(id int) (tea.Model, tea.Cmd) {
	if m.replay == nil || m.replay.id != id {
		return m, nil
	}
	r := *m.replay
	line := r.lines[r.next]
	r.next++
	if r.next == len(r.lines) {
		m.replay = nil
		m.narrate([]string{line})
		return m, nil
	}
	m.replay = &r
	m.log = append(m.log, entry{text: line, kind: classifyLine(line)})
	m.refreshViewport()
	return m, m.tick(id)
}

// narrate appends game output followed by a blank separator.
func (m *Model) narrate(lines []string) {
	for _, line := range lines {
		m.log = append(m.log, entry{text: line, kind: classifyLine(line)})
	}
	m.log = append(m.log, entry{})
	m.refreshViewport()
}

// displayState is the pre-round snapshot while a replay runs and the live
// state otherwise.
func (m Model) displayState() *types.GameState {
	if m.replay != nil {
		return m.replay.before
	}
	return m.session.Engine.State
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)
	styled := make([]string, len(m.log))
	for i, e := range m.log {
		if e.text != "" {
			styled[i] = kindStyles[e.kind].Render(ansi.Wordwrap(e.text, width, ""))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders board, narrative, status bar and input, top to bottom.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return strings.Join([]string{
		m.renderBoard(m.displayState()),
		m.viewport.View(),
		m.renderStatusBar(),
		m.input.View(),
	}, "\n")
}
