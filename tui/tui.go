// Package tui provides a Bubble Tea terminal UI for the Aventuro player.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/nathoo/aventuro/cli"
	"github.com/nathoo/aventuro/engine"
	"github.com/nathoo/aventuro/engine/message"
)

// rawLine is an unstyled output line, kept so the narrative can be
// re-wrapped when the terminal is resized. An empty text is a paragraph
// break.
type rawLine struct {
	text string
	kind lineKind
}

// Options configure the TUI.
type Options struct {
	SaveDir string
	Trace   bool
	Log     *zap.Logger
}

// Model is the Bubble Tea model for the Aventuro TUI.
type Model struct {
	engine *engine.Engine
	log    *zap.Logger

	viewport viewport.Model
	input    textinput.Model
	history  *cli.History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	saveDir  string
}

// gameOutputMsg carries one batch of output into the Update loop.
type gameOutputMsg struct {
	header   string            // title line, only at start
	input    string            // echoed player input, empty at start
	messages []message.Message // game text
	system   []string          // meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.SaveDir == "" {
		opts.SaveDir = "."
	}
	return Model{
		engine:  eng,
		log:     opts.Log,
		input:   ti,
		history: cli.NewHistory(100),
		trace:   opts.Trace,
		saveDir: opts.SaveDir,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	p := tea.NewProgram(New(eng, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init shows the header and whatever the engine queued at start.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return gameOutputMsg{
			header:   cli.Header(m.engine.Definition()),
			messages: drain(m.engine),
		}
	}
}

// drain reads every queued message.
func drain(eng *engine.Engine) []message.Message {
	var out []message.Message
	for {
		msg, ok := eng.NextMessage()
		if !ok {
			return out
		}
		out = append(out, msg)
	}
}

// Update handles key presses, window resizes and game output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := max(m.height-2, 1) // status bar and input line

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Older(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Newer(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Record(input)

	if strings.HasPrefix(input, "/") {
		out, quit := m.handleMeta(input)
		out.input = input
		m = m.appendOutput(out)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if cli.IsRepeat(input) {
		last, ok := m.history.Repeat()
		if !ok {
			m = m.appendOutput(gameOutputMsg{input: input, system: []string{"Nothing to repeat."}})
			return m, nil
		}
		input = last
	}

	m = m.appendOutput(m.step(input))
	return m, nil
}

// step runs a game command and collects what it produced.
func (m *Model) step(input string) gameOutputMsg {
	result := m.engine.Step(input)
	out := gameOutputMsg{input: input, messages: result.Messages}
	if m.trace {
		out.system = append(out.system, formatTrace(result)...)
	}
	if m.engine.GameIsOver() {
		out.system = append(out.system, "The game is over. Type /restart to play again or /quit to leave.")
	}
	return out
}

// appendOutput adds a batch to the narrative and refreshes the viewport.
// Normal messages start a paragraph; delayed ones continue the current
// one.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.header != "" {
		m.rawLines = append(m.rawLines, rawLine{text: msg.header, kind: kindHeader})
	}
	if msg.input != "" {
		m.paragraph()
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, kind: kindInput})
	}

	for _, gm := range msg.messages {
		if gm.Type != message.Delay {
			m.paragraph()
		}
		m.rawLines = append(m.rawLines, rawLine{text: gm.Text, kind: classifyLine(gm.Text)})
	}

	if len(msg.system) > 0 {
		m.paragraph()
	}
	for _, line := range msg.system {
		if strings.HasPrefix(line, "[trace]") {
			m.rawLines = append(m.rawLines, rawLine{text: line, kind: kindTrace})
			continue
		}
		m.rawLines = append(m.rawLines, rawLine{text: "[" + line + "]", kind: kindSystem})
	}

	m.refreshViewport()
	return m
}

// paragraph ends the current paragraph with a blank line.
func (m *Model) paragraph() {
	if n := len(m.rawLines); n > 0 && m.rawLines[n-1].text != "" {
		m.rawLines = append(m.rawLines, rawLine{})
	}
}

// refreshViewport re-wraps and re-styles every line at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := max(m.width, 10)

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		styled = append(styled, renderLine(ansi.Wordwrap(rl.text, width, ""), rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// View renders the viewport, the status bar and the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Ŝargante..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. It returns the output and whether
// to quit.
func (m *Model) handleMeta(input string) (gameOutputMsg, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	system := func(lines ...string) gameOutputMsg { return gameOutputMsg{system: lines} }

	switch cmd {
	case "/quit", "/exit":
		return system("Ĝis revido."), true

	case "/save":
		path, err := cli.SaveGame(m.engine, m.saveDir, arg)
		if err != nil {
			return system(m.failed("Save", path, err)), false
		}
		return system(fmt.Sprintf("Game saved to %s.", path)), false

	case "/load":
		path, sd, err := cli.LoadGame(m.engine, m.saveDir, arg)
		if err != nil {
			return system(m.failed("Load", path, err)), false
		}
		m.history.Forget()
		m.engine.Describe()
		out := system(fmt.Sprintf("Game loaded from %s (turn %d).", path, sd.Turn))
		out.messages = drain(m.engine)
		return out, false

	case "/restart":
		m.engine.Restart()
		m.history.Forget()
		out := system("Game restarted.")
		out.messages = drain(m.engine)
		return out, false

	case "/help":
		return system(helpLines...), false

	case "/state":
		return system(m.stateLines()...), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return system("Trace output enabled."), false
		}
		return system("Trace output disabled."), false

	default:
		return system(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)), false
	}
}

func (m *Model) failed(what, path string, err error) string {
	m.log.Error(strings.ToLower(what)+" failed", zap.String("path", path), zap.Error(err))
	return fmt.Sprintf("%s failed: %v", what, err)
}

var helpLines = []string{
	"/save [name]  Save game (default: quicksave)",
	"/load [name]  Load game (default: quicksave)",
	"/restart      Start again from the beginning",
	"/quit         Exit game",
	"/state        Debug: dump current state",
	"/trace        Toggle debug trace output",
	"Ludkomandoj: norden (n), suden (s), orienten (o), okcidenten (ok), supren, suben, eliru",
	"rigardu, prenu la libron, demetu ĝin, metu ĝin en la skatolon, kion mi portas (i)",
	"malfermu, fermu, legu, denove (g)",
	"PgUp/PgDn scroll, Up/Down recall commands",
}

func (m *Model) stateLines() []string {
	e := m.engine
	s := e.State()
	return []string{
		fmt.Sprintf("Turn: %d", e.Turn()),
		fmt.Sprintf("Score: %d", e.Score()),
		fmt.Sprintf("Room: %d (%s)", s.CurrentRoom, e.Definition().Rooms[s.CurrentRoom].Name),
		fmt.Sprintf("Carried: %v (weight %d)", s.Carried, s.CarriedWeight()),
		fmt.Sprintf("Player attributes: %#x", s.PlayerAttributes),
		fmt.Sprintf("Session: %s", e.SessionID()),
	}
}

func formatTrace(result engine.Result) []string {
	if len(result.Events) == 0 {
		return nil
	}
	lines := []string{fmt.Sprintf("[trace] Events: %d", len(result.Events))}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s", e))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled, since
// those keys recall commands.
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
