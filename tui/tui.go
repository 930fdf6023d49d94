// Package tui provides a Bubble Tea terminal viewer that drives the engine
// with a fixed frame tick and shows the area map, a feedback log and a
// command line.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/turncore/cli"
	"github.com/nathoo/turncore/engine/entity"
)

// maxLogLines bounds the feedback log.
const maxLogLines = 500

// Model is the Bubble Tea model for the viewer.
type Model struct {
	session *cli.Session
	ctx     context.Context

	viewport viewport.Model
	input    textinput.Model
	help     help.Model
	keys     keyMap
	history  *History

	log []string // styled log lines, newest last

	width    int
	height   int
	ready    bool
	paused   bool
	quitting bool
}

// tickMsg advances the engine by one frame.
type tickMsg time.Time

// New creates a viewer over session. The session is switched to realtime
// mode: the viewer's tick advances the engine.
func New(ctx context.Context, session *cli.Session) Model {
	session.Realtime = true

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		session: session,
		ctx:     ctx,
		input:   ti,
		help:    help.New(),
		keys:    defaultKeyMap(),
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, session *cli.Session) error {
	m := New(ctx, session)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the frame tick and shows the intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick(), m.intro())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.session.FrameMillis)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// outputMsg carries lines produced outside Update into the log.
type outputMsg []cli.Line

func (m Model) intro() tea.Cmd {
	game := m.session.Engine.Defs.Game
	return func() tea.Msg {
		var lines []cli.Line
		title := game.Title
		if game.Author != "" {
			title += " by " + game.Author
		}
		lines = append(lines, cli.Line{Text: title, Kind: cli.LineSystem})
		if game.Intro != "" {
			lines = append(lines, cli.Line{Text: game.Intro})
		}
		return outputMsg(lines)
	}
}

// Update handles key presses, window resizes and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		if !m.paused {
			m.appendLines(m.session.Frame())
		}
		return m, m.tick()

	case outputMsg:
		m.appendLines(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Submit):
			return m.handleEnter()

		case key.Matches(msg, m.keys.EndTurn):
			m.endTurn()
			return m, nil

		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			return m, nil

		case key.Matches(msg, m.keys.Prev):
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, m.keys.Next):
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, m.keys.Scroll):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter runs the submitted input line through the session.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)

	m.log = append(m.log, styledInput(input))
	out, quit := m.session.Exec(m.ctx, input)
	m.appendLines(out)
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) endTurn() {
	eng := m.session.Engine
	if cur := eng.Current(); cur != nil && eng.IsPartyMember(cur) && eng.EndTurn(cur) {
		m.appendLines([]cli.Line{{Text: cur.Name() + " ends the turn.", Kind: cli.LineSystem}})
	}
}

// appendLines adds styled lines to the log and refreshes the viewport.
func (m *Model) appendLines(lines []cli.Line) {
	if len(lines) == 0 {
		return
	}
	for _, l := range lines {
		m.log = append(m.log, cli.Render(l))
	}
	if extra := len(m.log) - maxLogLines; extra > 0 {
		m.log = m.log[extra:]
	}
	m.refreshViewport()
}

// mapHeight is the number of rows the map pane takes.
func (m Model) mapHeight() int {
	if a := m.session.Engine.Area(); a != nil {
		return a.Height()
	}
	return 0
}

func (m *Model) resize() {
	// map + status bar + input + help
	vpHeight := m.height - m.mapHeight() - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.viewport.KeyMap = viewportKeyMap()
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.log, "\n"))
	m.viewport.GotoBottom()
}

// renderMap draws the current area with party members and hostiles
// highlighted.
func (m Model) renderMap() string {
	eng := m.session.Engine
	rows := m.session.MapRows()
	if rows == nil {
		return ""
	}
	party, hostile := map[rune]bool{}, map[rune]bool{}
	var pc *entity.EntityState
	if p := eng.Party(); len(p) > 0 {
		pc = p[0]
	}
	for _, ent := range eng.Area().Entities() {
		switch {
		case ent.Party:
			party[cli.Glyph(ent)] = true
		case pc != nil && ent.IsHostile(pc):
			hostile[cli.Glyph(ent)] = true
		}
	}
	styled := make([]string, len(rows))
	for i, row := range rows {
		styled[i] = styleMapRow(row, party, hostile)
	}
	return strings.Join(styled, "\n")
}

// View renders the layout: map, log, status bar, input and key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	parts := []string{}
	if mp := m.renderMap(); mp != "" {
		parts = append(parts, mp)
	}
	parts = append(parts, m.viewport.View(), m.renderStatusBar(), m.input.View(), m.help.View(m.keys))
	return strings.Join(parts, "\n")
}
