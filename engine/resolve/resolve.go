// Package resolve maps noun phrases from parsed commands to instance
// handles.
package resolve

import (
	"fmt"

	"github.com/nathoo/aventuro/engine/parser"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// NotFoundError indicates that nothing present matched a noun phrase.
type NotFoundError struct {
	Noun parser.Noun
}

func (e *NotFoundError) Error() string {
	if e.Noun.IsPronoun {
		return "pronoun does not refer to anything present"
	}
	if e.Noun.Adjective != "" {
		return fmt.Sprintf("no %s %s present", e.Noun.Adjective, e.Noun.Name)
	}
	return fmt.Sprintf("no %s present", e.Noun.Name)
}

// Mentions remembers the instance most recently referred to for each
// pronoun class, so that "prenu ĝin" can follow "rigardu la libron".
type Mentions struct {
	last  [4]state.Handle
	stamp [4]int
	clock int
}

// NewMentions returns an empty set of mentions.
func NewMentions() *Mentions {
	m := &Mentions{}
	m.Reset()
	return m
}

// Reset forgets every mention.
func (m *Mentions) Reset() {
	for i := range m.last {
		m.last[i] = state.NoHandle
		m.stamp[i] = 0
	}
	m.clock = 0
}

// Note records that h was just referred to.
func (m *Mentions) Note(s *state.State, h state.Handle) {
	if !s.Valid(h) {
		return
	}
	p := s.Get(h).Pronoun
	m.clock++
	m.last[p] = h
	m.stamp[p] = m.clock
}

// lookup returns the most recent mention among the pronoun classes the
// pronoun can stand for.
func (m *Mentions) lookup(pr parser.Pronoun) state.Handle {
	if pr.Person != 3 {
		return state.NoHandle
	}

	var classes []types.Pronoun
	if pr.Plural {
		classes = []types.Pronoun{types.PronounPlural}
	} else {
		if pr.Genders&parser.GenderMan != 0 {
			classes = append(classes, types.PronounMan)
		}
		if pr.Genders&parser.GenderWoman != 0 {
			classes = append(classes, types.PronounWoman)
		}
		if pr.Genders&parser.GenderThing != 0 {
			classes = append(classes, types.PronounAnimal)
		}
	}

	best, bestStamp := state.NoHandle, 0
	for _, c := range classes {
		if m.stamp[c] > bestStamp {
			best, bestStamp = m.last[c], m.stamp[c]
		}
	}
	return best
}

// Resolve finds the instance a noun phrase refers to. It searches the
// player's belongings first, then the current room, then the aliases.
// Containers are searched unless they are closed.
func Resolve(s *state.State, def *types.Definition, m *Mentions, noun parser.Noun) (state.Handle, error) {
	if noun.IsPronoun {
		if m != nil {
			if h := m.lookup(noun.Pronoun); h != state.NoHandle && s.IsPresent(h) {
				return h, nil
			}
		}
		return state.NoHandle, &NotFoundError{Noun: noun}
	}

	if h := search(s, s.Carried, noun); h != state.NoHandle {
		return h, nil
	}
	if h := search(s, s.Rooms[s.CurrentRoom].Contents, noun); h != state.NoHandle {
		return h, nil
	}

	for _, a := range def.Aliases {
		if a.Name != noun.Name || a.Plural != noun.Plural {
			continue
		}
		if noun.Adjective != "" && noun.Adjective != a.Adjective {
			continue
		}
		var h state.Handle
		if a.Kind == types.AliasMonster {
			h = s.MonsterHandle(a.Index)
		} else {
			h = s.ObjectHandle(a.Index)
		}
		if s.IsPresent(h) {
			return h, nil
		}
	}

	return state.NoHandle, &NotFoundError{Noun: noun}
}

// search walks a list of instances depth first.
func search(s *state.State, list []state.Handle, noun parser.Noun) state.Handle {
	for _, h := range list {
		in := s.Get(h)
		if Matches(in, noun) {
			return h
		}
		if in.Closed() {
			continue
		}
		if found := search(s, in.Contents, noun); found != state.NoHandle {
			return found
		}
	}
	return state.NoHandle
}

// Matches reports whether an instance's current name fits a noun phrase.
func Matches(in *state.Instance, noun parser.Noun) bool {
	if in.Name != noun.Name {
		return false
	}
	if noun.Plural != (in.Pronoun == types.PronounPlural) {
		return false
	}
	if noun.Adjective != "" && noun.Adjective != in.Adjective {
		return false
	}
	return true
}
