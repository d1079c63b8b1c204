// Package message holds the output side of the engine: the FIFO queue of
// messages produced by a command and the helpers that inflect nouns and
// expand rule message templates.
package message

import (
	"fmt"
	"strings"

	"github.com/nathoo/aventuro/engine/morph"
)

// Type tells the front end how to present a message.
type Type int

const (
	// Normal starts a new paragraph.
	Normal Type = iota
	// Delay continues the previous paragraph after a pause.
	Delay
)

func (t Type) String() string {
	if t == Delay {
		return "delay"
	}
	return "normal"
}

// Message is one unit of output.
type Message struct {
	Type Type
	Text string
}

// Queue is a FIFO of messages. Messages stay queued until they are read
// with Next.
type Queue struct {
	items []Message
	head  int
}

// Send appends a message.
func (q *Queue) Send(t Type, text string) {
	q.items = append(q.items, Message{Type: t, Text: text})
}

// Sendf appends a Normal message built with fmt.Sprintf.
func (q *Queue) Sendf(format string, args ...any) {
	q.Send(Normal, fmt.Sprintf(format, args...))
}

// Next returns the oldest unread message.
func (q *Queue) Next() (Message, bool) {
	if q.head >= len(q.items) {
		return Message{}, false
	}
	m := q.items[q.head]
	q.head++
	return m, true
}

// Pending returns the number of unread messages.
func (q *Queue) Pending() int {
	return len(q.items) - q.head
}

// Compact drops the messages that have already been read.
func (q *Queue) Compact() {
	n := copy(q.items, q.items[q.head:])
	clear(q.items[n:])
	q.items = q.items[:n]
	q.head = 0
}

// Clear drops every message, read or not.
func (q *Queue) Clear() {
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}

// Noun is a noun phrase that can be re-inflected for output. Name and
// Adjective are roots.
type Noun struct {
	Name      string
	Adjective string
	Plural    bool
}

// Inflect renders the noun with the definite article, e.g. "la grizajn
// hundojn" for a plural accusative.
func (n Noun) Inflect(accusative bool) string {
	return Inflect(n.Name, n.Adjective, n.Plural, accusative, true)
}

// Inflect builds an inflected noun phrase from its roots.
func Inflect(name, adjective string, plural, accusative, article bool) string {
	var b strings.Builder

	ending := func(vowel byte) {
		b.WriteByte(vowel)
		if plural {
			b.WriteByte('j')
		}
		if accusative {
			b.WriteByte('n')
		}
	}

	if article {
		b.WriteString("la ")
	}
	if adjective != "" {
		b.WriteString(adjective)
		ending('a')
		b.WriteByte(' ')
	}
	b.WriteString(name)
	ending('o')

	return b.String()
}

// Refs are the instances a rule template can refer to. Nil entries render
// as nothing.
type Refs struct {
	Object  *Noun
	Tool    *Noun
	Monster *Noun
}

// Expand substitutes the placeholders of a rule message:
//
//	$A  the object      $P  the tool      $M  the monster
//	$An, $Pn, $Mn       the same in the accusative
//	$D  pause: the rest of the text becomes a Delay message
//	$F, $S              ignored
//	$$  a literal dollar sign
//
// An "n" directly after $A, $P or $M is always read as the accusative
// marker, never as text. A reference is a whole word, so text must be
// separated from it by a space or punctuation anyway.
// Unknown directives are copied through unchanged.
func Expand(template string, refs Refs) []Message {
	var out []Message
	var b strings.Builder
	typ := Normal
	startsWithRef := false

	flush := func() {
		text := strings.TrimSpace(b.String())
		if startsWithRef {
			text = morph.Capitalize(text)
		}
		if text != "" {
			out = append(out, Message{Type: typ, Text: text})
		}
		b.Reset()
		startsWithRef = false
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			continue
		}

		d := template[i+1]
		i++

		var ref *Noun
		switch d {
		case '$':
			b.WriteByte('$')
			continue
		case 'D':
			flush()
			typ = Delay
			continue
		case 'F', 'S':
			continue
		case 'A':
			ref = refs.Object
		case 'P':
			ref = refs.Tool
		case 'M':
			ref = refs.Monster
		default:
			b.WriteByte('$')
			b.WriteByte(d)
			continue
		}

		accusative := i+1 < len(template) && template[i+1] == 'n'
		if accusative {
			i++
		}
		if ref == nil {
			continue
		}
		if strings.TrimSpace(b.String()) == "" {
			startsWithRef = true
		}
		b.WriteString(ref.Inflect(accusative))
	}
	flush()

	return out
}

// Join lists phrases as "a, b kaj c".
func Join(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " kaj " + items[len(items)-1]
}
