// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the Aventuro player.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"github.com/nathoo/aventuro/engine"
	"github.com/nathoo/aventuro/engine/message"
	"github.com/nathoo/aventuro/engine/save"
	"github.com/nathoo/aventuro/types"
)

// DefaultWidth is the column messages are wrapped at.
const DefaultWidth = 78

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Log       *zap.Logger
	SaveDir   string
	Width     int           // wrap column, 0 disables wrapping
	Pause     time.Duration // wait before each delayed message
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	History   *History
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     zap.NewNop(),
		SaveDir: ".",
		Width:   DefaultWidth,
		History: NewHistory(100),
	}
}

// Header returns the title line shown when a game starts.
func Header(def *types.Definition) string {
	return fmt.Sprintf("%s / © %s %s", def.Name, def.Year, def.Author)
}

// Run starts the game loop. It shows the header and whatever the engine
// queued at start, then loops: prompt → input → dispatch → output.
func (c *CLI) Run() {
	c.printLine(Header(c.Engine.Definition()))
	c.printMessages()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			c.printLine("")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}
		c.History.Record(input)

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		if IsRepeat(input) {
			last, ok := c.History.Repeat()
			if !ok {
				c.printSystem("Nothing to repeat.")
				continue
			}
			input = last
		}

		result := c.Engine.Step(input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
		if c.Engine.GameIsOver() {
			c.printLine("")
			c.printSystem("The game is over. Type /restart to play again or /quit to leave.")
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Ĝis revido.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/restart":
		c.Engine.Restart()
		c.History.Forget()
		c.printSystem("Game restarted.")
		c.printMessages()

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// SavePath returns the file for a save name. Names are plain words; any
// directory part is dropped.
func SavePath(dir, name string) string {
	if name == "" {
		name = "quicksave"
	}
	return filepath.Join(dir, filepath.Base(name)+".yaml")
}

// SaveGame writes a snapshot of the engine to dir and returns the path.
func SaveGame(eng *engine.Engine, dir, name string) (string, error) {
	path := SavePath(dir, name)

	data, err := save.Save(eng.Snapshot())
	if err != nil {
		return path, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// LoadGame restores the engine from a save in dir. The engine is left
// untouched when anything fails.
func LoadGame(eng *engine.Engine, dir, name string) (string, *save.SaveData, error) {
	path := SavePath(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return path, nil, err
	}
	sd, err := save.Load(data)
	if err != nil {
		return path, nil, err
	}
	if err := eng.Restore(sd); err != nil {
		return path, nil, err
	}
	return path, sd, nil
}

func (c *CLI) cmdSave(name string) {
	path, err := SaveGame(c.Engine, c.SaveDir, name)
	if err != nil {
		c.saveFailed("Save", path, err)
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", path))
}

func (c *CLI) cmdLoad(name string) {
	path, sd, err := LoadGame(c.Engine, c.SaveDir, name)
	if err != nil {
		c.saveFailed("Load", path, err)
		return
	}

	c.History.Forget()
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", path, sd.Turn))

	// Show current room after loading.
	c.Engine.Describe()
	c.printMessages()
}

func (c *CLI) saveFailed(what, path string, err error) {
	c.Log.Error(strings.ToLower(what)+" failed", zap.String("path", path), zap.Error(err))
	c.printSystem(fmt.Sprintf("%s failed: %v", what, err))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name]     Load game (default: quicksave)",
		"  /restart         Start again from the beginning",
		"  /quit            Exit game",
		"  /help            Show this help",
		"  /state           Debug: dump current state",
		"  /trace           Toggle debug trace output",
		"",
		"Game commands (Esperanto, x-system accepted: cx = ĉ):",
		"  norden, suden, orienten, okcidenten, supren, suben (n s o ok sup sub)",
		"  eliru (el), eniru en la domon",
		"  rigardu, rigardu la libron",
		"  prenu la libron, demetu ĝin, metu la pomon en la skatolon",
		"  kion mi portas (i)",
		"  malfermu la pordon, fermu ĝin, legu la leteron",
		"  denove (g)       Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	e := c.Engine
	s := e.State()
	def := e.Definition()

	c.printSystem(fmt.Sprintf("Turn: %d", e.Turn()))
	c.printSystem(fmt.Sprintf("Score: %d", e.Score()))
	c.printSystem(fmt.Sprintf("Room: %d (%s)", s.CurrentRoom, def.Rooms[s.CurrentRoom].Name))
	c.printSystem(fmt.Sprintf("Carried: %v (weight %d)", s.Carried, s.CarriedWeight()))
	c.printSystem(fmt.Sprintf("Player attributes: %#x", s.PlayerAttributes))
	c.printSystem(fmt.Sprintf("Session: %s", e.SessionID()))
}

func (c *CLI) printTrace(result engine.Result) {
	if len(result.Events) == 0 {
		return
	}
	c.printLine(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
	for _, e := range result.Events {
		c.printLine(fmt.Sprintf("[trace]   %s", e))
	}
}

// printMessages drains the engine's queue.
func (c *CLI) printMessages() {
	for {
		m, ok := c.Engine.NextMessage()
		if !ok {
			return
		}
		c.printMessage(m)
	}
}

func (c *CLI) printResult(result engine.Result) {
	for _, m := range result.Messages {
		c.printMessage(m)
	}
}

// printMessage writes one message. A normal message starts a new
// paragraph; a delayed one continues the current paragraph after the
// pause.
func (c *CLI) printMessage(m message.Message) {
	if m.Type == message.Delay {
		if c.Pause > 0 {
			time.Sleep(c.Pause)
		}
	} else {
		c.printLine("")
	}
	c.printLine(c.wrap(m.Text))
}

func (c *CLI) wrap(text string) string {
	if c.Width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, c.Width, "")
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
