// Package scenario replays scripted play-throughs against an engine and
// checks every message it produces.
//
// A script is line based. Leading and trailing spaces are ignored, as are
// blank lines and lines starting with '#'.
//
//	> prenu la libron     run a command; every earlier message must be consumed
//	Vi prenis la libron.  the next message must be exactly this text
//	@restart              start a new game
//	@game_over            the game must be over
//	@not_game_over        the game must not be over
//	@random 42            every chance draw returns 42 from now on
//	@room Kuirejo         the player must be in this room
//
// Messages left over at the end of the script are an error.
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nathoo/aventuro/engine"
)

// Failure describes the first line of a script that did not hold.
type Failure struct {
	Line int
	Msg  string
}

func (f *Failure) Error() string {
	if f.Line == 0 {
		return f.Msg
	}
	return fmt.Sprintf("line %d: %s", f.Line, f.Msg)
}

// Run plays a script against e. It returns a *Failure if the engine did
// not behave as the script expects, or the read error if the script could
// not be read.
func Run(e *engine.Engine, script io.Reader) error {
	sc := bufio.NewScanner(script)
	line := 0

	fail := func(format string, args ...any) error {
		return &Failure{Line: line, Msg: fmt.Sprintf(format, args...)}
	}
	expectEmpty := func() error {
		if m, ok := e.NextMessage(); ok {
			return fail("unexpected message: %s", m.Text)
		}
		return nil
	}

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		if !utf8.ValidString(text) {
			return fail("invalid UTF-8")
		}

		switch text[0] {
		case '>':
			if err := expectEmpty(); err != nil {
				return err
			}
			e.RunCommand(strings.TrimSpace(text[1:]))

		case '@':
			cmd := strings.TrimSpace(text[1:])
			switch {
			case cmd == "restart":
				if err := expectEmpty(); err != nil {
					return err
				}
				e.Restart()
			case cmd == "game_over":
				if !e.GameIsOver() {
					return fail("game over expected but not reported")
				}
			case cmd == "not_game_over":
				if e.GameIsOver() {
					return fail("unexpected game over")
				}
			case strings.HasPrefix(cmd, "random "):
				n, err := strconv.Atoi(strings.TrimSpace(cmd[len("random "):]))
				if err != nil {
					return fail("bad random number: %v", err)
				}
				e.ForceChance(n)
			case strings.HasPrefix(cmd, "room "):
				want := strings.TrimSpace(cmd[len("room "):])
				got := e.Definition().Rooms[e.CurrentRoom()].Name
				if got != want {
					return fail("wrong room\n expected: %s\n received: %s", want, got)
				}
			default:
				return fail("unknown test command %q", cmd)
			}

		default:
			m, ok := e.NextMessage()
			if !ok {
				return fail("expected message but none received")
			}
			if m.Text != text {
				return fail("\n expected: %s\n received: %s", text, m.Text)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}

	if m, ok := e.NextMessage(); ok {
		return &Failure{Msg: "extra message received after script: " + m.Text}
	}
	return nil
}
