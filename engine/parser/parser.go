// Package parser converts a line of Esperanto player input into a Command.
// The grammar is small and fixed: noun phrases with case and number
// agreement, a closed set of personal pronouns, verbs, "per" tools,
// directions and "en" locatives, in any order.
package parser

import (
	"strings"

	"github.com/nathoo/aventuro/engine/morph"
)

// Has is a bitmask of the slots filled in a Command.
type Has uint

const (
	HasSubject Has = 1 << iota
	HasObject
	HasTool
	HasDirection
	HasIn
	HasVerb
)

// Gender is a bitmask of the genders a pronoun can refer to.
type Gender uint

const (
	GenderMan Gender = 1 << iota
	GenderWoman
	GenderThing

	GenderAll = GenderMan | GenderWoman | GenderThing
)

// Pronoun describes a personal pronoun used in place of a noun.
type Pronoun struct {
	Person  int
	Genders Gender
	Plural  bool
}

// Noun is a parsed noun phrase. Name and Adjective are roots without their
// endings; Adjective is empty when none was given.
type Noun struct {
	Article    bool
	Plural     bool
	Accusative bool
	Name       string
	Adjective  string

	IsPronoun bool
	Pronoun   Pronoun
}

// Command is the structured form of one line of input.
type Command struct {
	Has Has

	Subject Noun
	Object  Noun
	Tool    Noun
	In      Noun

	Direction string
	Verb      string
}

// shortcuts are whole-line abbreviations expanded before parsing.
var shortcuts = map[string]string{
	"n":   "mi iras norden",
	"o":   "mi iras orienten",
	"s":   "mi iras suden",
	"ok":  "mi iras okcidenten",
	"sup": "mi iras supren",
	"sub": "mi iras suben",
	"el":  "mi iras elen",
	"i":   "kion mi portas",
	"r":   "rigardu",
}

var pronouns = map[string]Pronoun{
	"mi":  {Person: 1, Genders: GenderAll},
	"ni":  {Person: 1, Genders: GenderAll, Plural: true},
	"vi":  {Person: 2, Genders: GenderAll},
	"li":  {Person: 3, Genders: GenderMan},
	"ŝi":  {Person: 3, Genders: GenderWoman},
	"ĝi":  {Person: 3, Genders: GenderThing},
	"ri":  {Person: 3, Genders: GenderMan | GenderWoman},
	"ili": {Person: 3, Genders: GenderAll, Plural: true},
}

// ExpandShortcut returns the full command for an abbreviation, or the
// input unchanged.
func ExpandShortcut(input string) string {
	key := morph.Normalize(strings.TrimSpace(input))
	if full, ok := shortcuts[key]; ok {
		return full
	}
	return input
}

// Parse parses one line of input. The bool is false if the line is not
// understood; no partial command is returned in that case.
func Parse(input string) (Command, bool) {
	text := morph.Normalize(ExpandShortcut(input))

	text = strings.TrimRight(text, " ")
	if n := len(text); n > 0 && strings.ContainsRune(".?!", rune(text[n-1])) {
		text = text[:n-1]
	}

	var words []string
	for _, w := range strings.Split(text, " ") {
		if w == "" {
			continue
		}
		if !morph.IsWord(w) {
			return Command{}, false
		}
		words = append(words, w)
	}

	p := &parsePos{words: words}
	var cmd Command

	for !p.done() {
		if verb, ok := p.verb(); ok {
			if !cmd.fill(HasVerb) {
				return Command{}, false
			}
			cmd.Verb = verb
			continue
		}

		if noun, ok := p.noun(); ok {
			if noun.Accusative {
				if !cmd.fill(HasObject) {
					return Command{}, false
				}
				cmd.Object = noun
			} else {
				if !cmd.fill(HasSubject) {
					return Command{}, false
				}
				cmd.Subject = noun
			}
			continue
		}

		if tool, ok := p.tool(); ok {
			if !cmd.fill(HasTool) {
				return Command{}, false
			}
			cmd.Tool = tool
			continue
		}

		if dir, ok := p.direction(); ok {
			if !cmd.fill(HasDirection) {
				return Command{}, false
			}
			cmd.Direction = dir
			continue
		}

		if in, ok := p.in(); ok {
			if !cmd.fill(HasIn) {
				return Command{}, false
			}
			cmd.In = in
			continue
		}

		return Command{}, false
	}

	return cmd, true
}

// fill marks a slot as used, failing if it already was.
func (c *Command) fill(h Has) bool {
	if c.Has&h != 0 {
		return false
	}
	c.Has |= h
	return true
}

// parsePos walks the words of a command. Every parse method either
// consumes words and succeeds, or leaves the position untouched.
type parsePos struct {
	words []string
	pos   int
}

func (p *parsePos) done() bool {
	return p.pos >= len(p.words)
}

func (p *parsePos) peek(offset int) (string, bool) {
	i := p.pos + offset
	if i >= len(p.words) {
		return "", false
	}
	return p.words[i], true
}

type nounPart struct {
	accusative bool
	plural     bool
	adjective  bool
	root       string
}

// parseNounPart splits a single adjective or noun word into its root and
// its case and number markers.
func parseNounPart(word string) (nounPart, bool) {
	var part nounPart
	r := []rune(word)

	if r[len(r)-1] == 'n' {
		part.accusative = true
		r = r[:len(r)-1]
		if len(r) < 1 {
			return part, false
		}
	}

	if r[len(r)-1] == 'j' {
		part.plural = true
		r = r[:len(r)-1]
		if len(r) < 1 {
			return part, false
		}
	}

	if len(r) < 2 {
		return part, false
	}

	switch r[len(r)-1] {
	case 'a':
		part.adjective = true
	case 'o':
		part.adjective = false
	default:
		return part, false
	}

	part.root = string(r[:len(r)-1])
	return part, true
}

// pronoun recognises a pronoun word, optionally in the accusative.
func pronoun(word string) (Noun, bool) {
	accusative := false
	if strings.HasSuffix(word, "n") {
		accusative = true
		word = strings.TrimSuffix(word, "n")
	}
	pr, ok := pronouns[word]
	if !ok {
		return Noun{}, false
	}
	return Noun{
		IsPronoun:  true,
		Pronoun:    pr,
		Plural:     pr.Plural,
		Accusative: accusative,
	}, true
}

func (p *parsePos) noun() (Noun, bool) {
	word, ok := p.peek(0)
	if !ok {
		return Noun{}, false
	}

	if n, ok := pronoun(word); ok {
		p.pos++
		return n, true
	}

	var noun Noun
	offset := 0
	if word == "la" {
		noun.Article = true
		offset = 1
	}

	w1, ok := p.peek(offset)
	if !ok {
		return Noun{}, false
	}
	part1, ok := parseNounPart(w1)
	if !ok {
		return Noun{}, false
	}
	offset++

	noun.Accusative = part1.accusative
	noun.Plural = part1.plural

	var part2 nounPart
	ok = false
	if w2, more := p.peek(offset); more {
		part2, ok = parseNounPart(w2)
	}

	switch {
	case ok && part1.accusative == part2.accusative:
		if part1.adjective == part2.adjective || part1.plural != part2.plural {
			return Noun{}, false
		}
		if part1.adjective {
			noun.Adjective, noun.Name = part1.root, part2.root
		} else {
			noun.Adjective, noun.Name = part2.root, part1.root
		}
		offset++
	case part1.adjective:
		return Noun{}, false
	default:
		noun.Name = part1.root
	}

	p.pos += offset
	return noun, true
}

func (p *parsePos) verb() (string, bool) {
	word, ok := p.peek(0)
	if !ok {
		return "", false
	}

	if _, ok := pronouns[word]; ok {
		return "", false
	}

	root, ok := VerbRoot(word)
	if !ok {
		return "", false
	}
	p.pos++
	return root, true
}

// VerbRoot strips the imperative, infinitive or tense ending from a
// normalized verb. Words without a verb ending are rejected.
func VerbRoot(word string) (string, bool) {
	r := []rune(word)
	if len(r) < 2 {
		return "", false
	}

	switch r[len(r)-1] {
	case 'u', 'i':
		r = r[:len(r)-1]
	case 's':
		if len(r) < 3 {
			return "", false
		}
		switch r[len(r)-2] {
		case 'o', 'a':
		default:
			return "", false
		}
		r = r[:len(r)-2]
	default:
		return "", false
	}
	return string(r), true
}

// keywordNoun parses a fixed preposition followed by a noun phrase.
func (p *parsePos) keywordNoun(keyword string) (Noun, bool) {
	word, ok := p.peek(0)
	if !ok || word != keyword {
		return Noun{}, false
	}

	sub := &parsePos{words: p.words, pos: p.pos + 1}
	noun, ok := sub.noun()
	if !ok {
		return Noun{}, false
	}

	p.pos = sub.pos
	return noun, true
}

func (p *parsePos) tool() (Noun, bool) {
	saved := p.pos
	noun, ok := p.keywordNoun("per")
	if !ok {
		return Noun{}, false
	}
	if noun.Accusative {
		p.pos = saved
		return Noun{}, false
	}
	return noun, true
}

func (p *parsePos) direction() (string, bool) {
	word, ok := p.peek(0)
	if !ok {
		return "", false
	}

	// "maren" is short for "al la maro".
	if r := []rune(word); len(r) > 2 && strings.HasSuffix(word, "en") {
		p.pos++
		return string(r[:len(r)-2]), true
	}

	saved := p.pos
	noun, ok := p.keywordNoun("al")
	if !ok {
		return "", false
	}
	if noun.Accusative || noun.Adjective != "" || noun.IsPronoun {
		p.pos = saved
		return "", false
	}
	return noun.Name, true
}

func (p *parsePos) in() (Noun, bool) {
	// The accusative is tolerated after "en".
	return p.keywordNoun("en")
}
