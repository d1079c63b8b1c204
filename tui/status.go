package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/aventuro/engine/message"
	"github.com/nathoo/aventuro/engine/morph"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// exitNames are the short forms of the fixed exits, in Movements order.
var exitNames = [types.NDirections]string{"n", "o", "s", "ok", "sup", "sub", "el"}

// roomExits lists the fixed exits that lead somewhere followed by the
// room's named directions.
func roomExits(def *types.Definition, room int) []string {
	r := def.Rooms[room]
	var exits []string
	for dir, target := range r.Movements {
		if target != types.Blocked {
			exits = append(exits, exitNames[dir])
		}
	}
	for _, d := range r.Directions {
		exits = append(exits, d.Name+"o")
	}
	return exits
}

// carriedNames names what the player holds, "ruĝa pomo".
func carriedNames(s *state.State) []string {
	names := make([]string, 0, len(s.Carried))
	for _, h := range s.Carried {
		in := s.Get(h)
		names = append(names, message.Inflect(in.Name, in.Adjective, in.Pronoun == types.PronounPlural, false, false))
	}
	return names
}

// renderStatusBar produces a full-width status line with the room, its
// exits, what is carried, the score and the turn.
func (m Model) renderStatusBar() string {
	e := m.engine
	s := e.State()

	left := fmt.Sprintf(" %s | Eliroj: %s", morph.Capitalize(e.Definition().Rooms[s.CurrentRoom].Name),
		strings.Join(roomExits(e.Definition(), s.CurrentRoom), ","))
	counters := fmt.Sprintf("P:%d T:%d ", e.Score(), e.Turn())
	right := counters

	// Name the carried objects when they fit, otherwise count them.
	if len(s.Carried) > 0 {
		candidate := fmt.Sprintf("Portas: %s | %s", strings.Join(carriedNames(s), ", "), counters)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Portas: %d | %s", len(s.Carried), counters)
		}
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
