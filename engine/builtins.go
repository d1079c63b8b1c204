package engine

import (
	"errors"
	"strings"

	"github.com/nathoo/aventuro/engine/events"
	"github.com/nathoo/aventuro/engine/message"
	"github.com/nathoo/aventuro/engine/morph"
	"github.com/nathoo/aventuro/engine/parser"
	"github.com/nathoo/aventuro/engine/resolve"
	"github.com/nathoo/aventuro/engine/rules"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

const (
	msgNotUnderstood  = "Mi ne komprenas vin."
	msgCantGo         = "Vi ne povas iri %sen de ĉi tie."
	msgNotHere        = "Vi ne vidas %s ĉi tie."
	msgTaken          = "Vi prenis %s."
	msgAlreadyCarried = "Vi jam portas %s."
	msgCantTake       = "Vi ne povas preni %s."
	msgTooHeavy       = "%s estas tro peza."
	msgDropped        = "Vi demetis %s."
	msgNotCarried     = "Vi ne portas %s."
	msgPutIn          = "Vi metis %s en %s."
	msgCantPutIn      = "Vi ne povas meti ion en %s."
	msgClosed         = "%s estas fermita."
	msgNoSpace        = "Ne estas sufiĉe da spaco en %s."
	msgCarrying       = "Vi portas %s."
	msgCarryingNone   = "Vi portas nenion."
	msgHereIs         = "Ĉi tie estas %s."
	msgNothingSpecial = "Vi vidas nenion specialan pri %s."
	msgInside         = "En %s estas %s."
	msgCantEnter      = "Vi ne povas eniri %s."
	msgCantExit       = "Vi ne povas eliri de ĉi tie."
	msgCantOpen       = "Vi ne povas malfermi %s."
	msgCantClose      = "Vi ne povas fermi %s."
	msgAlreadyOpen    = "%s jam estas malfermita."
	msgAlreadyClosed  = "%s jam estas fermita."
	msgOpened         = "Vi malfermis %s."
	msgClosedIt       = "Vi fermis %s."
	msgUnknownVerb    = "Mi ne scias kiel %si."
	msgNothingHappens = "Nenio okazas."
)

// compass maps direction roots to fixed exits.
var compass = map[string]int{
	"nord":     types.DirNorth,
	"orient":   types.DirEast,
	"sud":      types.DirSouth,
	"okcident": types.DirWest,
	"supr":     types.DirUp,
	"malsupr":  types.DirDown,
	"sub":      types.DirDown,
	"el":       types.DirOut,
}

// only reports whether the command fills exactly the required slots plus
// any of the optional ones.
func only(cmd parser.Command, required, optional parser.Has) bool {
	return cmd.Has&required == required && cmd.Has&^(required|optional) == 0
}

func (e *Engine) handleDirection(cmd parser.Command) bool {
	if !only(cmd, parser.HasDirection, parser.HasSubject|parser.HasVerb) {
		return false
	}
	if cmd.Has&parser.HasVerb != 0 && cmd.Verb != "ir" {
		return false
	}

	room := e.def.Rooms[e.state.CurrentRoom]
	if dir, ok := compass[cmd.Direction]; ok {
		target := room.Movements[dir]
		if target == types.Blocked {
			e.send(msgCantGo, cmd.Direction)
			return true
		}
		e.MovePlayer(target)
		return true
	}

	for _, d := range room.Directions {
		if d.Name != cmd.Direction {
			continue
		}
		if d.Description != "" {
			e.queue.Send(message.Normal, d.Description)
		}
		e.MovePlayer(d.Target)
		return true
	}

	e.send(msgCantGo, cmd.Direction)
	return true
}

func (e *Engine) handleLook(cmd parser.Command) bool {
	if cmd.Verb != "rigard" {
		return false
	}
	if only(cmd, parser.HasVerb, parser.HasSubject) {
		e.describeRoom()
		return true
	}
	if !only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) {
		return false
	}

	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	in := e.state.Get(h)
	if in.Description != "" {
		e.queue.Send(message.Normal, in.Description)
	} else {
		e.send(msgNothingSpecial, e.noun(h).Inflect(false))
	}
	if !in.Closed() && len(in.Contents) > 0 {
		e.send(msgInside, e.noun(h).Inflect(false), e.list(in.Contents, false))
	}
	return true
}

func (e *Engine) handleTake(cmd parser.Command) bool {
	if cmd.Verb != "pren" || !only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) {
		return false
	}
	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	name := e.noun(h).Inflect(true)
	in := e.state.Get(h)

	switch {
	case e.state.IsCarried(h):
		e.send(msgAlreadyCarried, name)
	case in.Kind != state.KindObject || in.Attributes&types.ObjectPortable == 0:
		e.send(msgCantTake, name)
	case !e.carriedDeep(h) && e.state.CarriedWeight()+e.state.Weight(h) > e.maxCarryWeight:
		e.send(plural(msgTooHeavy, in), morph.Capitalize(e.noun(h).Inflect(false)))
	default:
		e.state.MoveToCarried(h)
		e.events.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "to": "carried"})
		e.send(msgTaken, name)
	}
	return true
}

func (e *Engine) handleDrop(cmd parser.Command) bool {
	if (cmd.Verb != "demet" && cmd.Verb != "falig") || !only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) {
		return false
	}
	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	name := e.noun(h).Inflect(true)
	// Things inside a carried container are dropped straight out of it.
	if !e.carriedDeep(h) {
		e.send(msgNotCarried, name)
		return true
	}
	e.state.MoveToRoom(h, e.state.CurrentRoom)
	e.events.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "room": e.state.CurrentRoom})
	e.send(msgDropped, name)
	return true
}

func (e *Engine) handlePutIn(cmd parser.Command) bool {
	if cmd.Verb != "met" || !only(cmd, parser.HasVerb|parser.HasObject|parser.HasIn, parser.HasSubject) {
		return false
	}
	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	c, ok := e.find(cmd.In)
	if !ok {
		return true
	}

	in := e.state.Get(h)
	container := e.state.Get(c)
	cname := e.noun(c).Inflect(true)

	if in.Kind != state.KindObject || in.Attributes&types.ObjectPortable == 0 {
		e.send(msgCantTake, e.noun(h).Inflect(true))
		return true
	}
	co := container.Object()
	if co == nil || co.ContainerSize <= 0 {
		e.send(msgCantPutIn, cname)
		return true
	}
	if container.Closed() {
		e.send(plural(msgClosed, container), morph.Capitalize(e.noun(c).Inflect(false)))
		return true
	}
	if e.state.ContentsSize(c)+in.Object().Size > co.ContainerSize {
		e.send(msgNoSpace, e.noun(c).Inflect(false))
		return true
	}
	if !e.carriedDeep(h) && e.carriedDeep(c) &&
		e.state.CarriedWeight()+e.state.Weight(h) > e.maxCarryWeight {
		e.send(plural(msgTooHeavy, in), morph.Capitalize(e.noun(h).Inflect(false)))
		return true
	}
	if err := e.state.MoveInto(h, c); err != nil {
		if errors.Is(err, state.ErrCycle) {
			e.events.Emit(events.MoveRejected, map[string]any{"handle": int(h), "parent": int(c)})
		}
		e.send(msgCantPutIn, cname)
		return true
	}
	e.events.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "parent": int(c)})
	e.send(msgPutIn, e.noun(h).Inflect(true), cname)
	return true
}

func (e *Engine) handleInventory(cmd parser.Command) bool {
	switch {
	case cmd.Verb == "inventar" && only(cmd, parser.HasVerb, parser.HasSubject):
	case cmd.Verb == "port" && only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) &&
		!cmd.Object.IsPronoun && cmd.Object.Name == "ki" && cmd.Object.Adjective == "":
	default:
		return false
	}
	if len(e.state.Carried) == 0 {
		e.send(msgCarryingNone)
		return true
	}
	e.send(msgCarrying, e.list(e.state.Carried, true))
	return true
}

func (e *Engine) handleEnter(cmd parser.Command) bool {
	var noun parser.Noun
	switch {
	case (cmd.Verb == "ir" || cmd.Verb == "enir") && only(cmd, parser.HasVerb|parser.HasIn, parser.HasSubject):
		noun = cmd.In
	case cmd.Verb == "enir" && only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject):
		noun = cmd.Object
	default:
		return false
	}
	h, ok := e.find(noun)
	if !ok {
		return true
	}
	o := e.state.Get(h).Object()
	if o == nil || o.EnterRoom == types.Blocked {
		e.send(msgCantEnter, e.noun(h).Inflect(true))
		return true
	}
	e.MovePlayer(o.EnterRoom)
	return true
}

func (e *Engine) handleExit(cmd parser.Command) bool {
	if cmd.Verb != "elir" || !only(cmd, parser.HasVerb, parser.HasSubject) {
		return false
	}
	target := e.def.Rooms[e.state.CurrentRoom].Movements[types.DirOut]
	if target == types.Blocked {
		e.send(msgCantExit)
		return true
	}
	e.MovePlayer(target)
	return true
}

func (e *Engine) handleOpenClose(cmd parser.Command) bool {
	if (cmd.Verb != "malferm" && cmd.Verb != "ferm") || !only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) {
		return false
	}
	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	opening := cmd.Verb == "malferm"
	in := e.state.Get(h)
	acc := e.noun(h).Inflect(true)
	nom := morph.Capitalize(e.noun(h).Inflect(false))

	switch {
	case in.Kind != state.KindObject || in.Attributes&types.ObjectClosable == 0:
		if opening {
			e.send(msgCantOpen, acc)
		} else {
			e.send(msgCantClose, acc)
		}
	case opening && !in.Closed():
		e.send(plural(msgAlreadyOpen, in), nom)
	case !opening && in.Closed():
		e.send(plural(msgAlreadyClosed, in), nom)
	case opening:
		in.Attributes &^= types.ObjectClosed
		e.events.Emit(events.AttributeChanged, map[string]any{"handle": int(h), "closed": false})
		e.send(msgOpened, acc)
	default:
		in.Attributes |= types.ObjectClosed
		e.events.Emit(events.AttributeChanged, map[string]any{"handle": int(h), "closed": true})
		e.send(msgClosedIt, acc)
	}
	return true
}

func (e *Engine) handleRead(cmd parser.Command) bool {
	if cmd.Verb != "leg" || !only(cmd, parser.HasVerb|parser.HasObject, parser.HasSubject) {
		return false
	}
	h, ok := e.find(cmd.Object)
	if !ok {
		return true
	}
	o := e.state.Get(h).Object()
	if o == nil || o.ReadText == "" {
		// Nothing written on it; let the rules have a go.
		return false
	}
	e.queue.Send(message.Normal, o.ReadText)
	return true
}

// handleCustom runs the author's rules. The object slot binds to the
// monster role when it names a monster, and a locative stands in for a
// missing tool.
func (e *Engine) handleCustom(cmd parser.Command) bool {
	if cmd.Has&parser.HasVerb == 0 || cmd.Has&parser.HasDirection != 0 {
		return false
	}
	if cmd.Has&parser.HasTool != 0 && cmd.Has&parser.HasIn != 0 {
		return false
	}
	if !rules.KnownVerb(e.def, cmd.Verb) {
		e.send(msgUnknownVerb, cmd.Verb)
		return true
	}

	b := rules.NoBindings
	if cmd.Has&parser.HasObject != 0 {
		h, ok := e.find(cmd.Object)
		if !ok {
			return true
		}
		if e.state.Get(h).Kind == state.KindMonster {
			b.Monster = h
		} else {
			b.Object = h
		}
	}
	tool, hasTool := cmd.Tool, cmd.Has&parser.HasTool != 0
	if cmd.Has&parser.HasIn != 0 {
		tool, hasTool = cmd.In, true
	}
	if hasTool {
		h, ok := e.find(tool)
		if !ok {
			return true
		}
		b.Tool = h
	}

	if !e.runRules(cmd.Verb, b) && !e.aborted {
		e.send(msgNothingHappens)
	}
	return true
}

// find resolves a noun phrase, reporting a failure to the player.
func (e *Engine) find(noun parser.Noun) (state.Handle, bool) {
	h, err := resolve.Resolve(e.state, e.def, e.mentions, noun)
	if err != nil {
		e.send(msgNotHere, phrase(noun))
		return state.NoHandle, false
	}
	e.mentions.Note(e.state, h)
	return h, true
}

// carriedDeep reports whether h is held by the player, directly or inside
// something carried.
func (e *Engine) carriedDeep(h state.Handle) bool {
	for _, c := range e.state.Carried {
		if e.state.Contains(c, h) {
			return true
		}
	}
	return false
}

// describeRoom queues the current room's description and what is in it.
func (e *Engine) describeRoom() {
	room := e.def.Rooms[e.state.CurrentRoom]
	e.queue.Send(message.Normal, room.Description)
	if contents := e.state.Rooms[e.state.CurrentRoom].Contents; len(contents) > 0 {
		e.send(msgHereIs, e.list(contents, false))
	}
}

// list names instances without the article, e.g. "libro kaj du pomoj".
func (e *Engine) list(hs []state.Handle, accusative bool) string {
	names := make([]string, 0, len(hs))
	for _, h := range hs {
		n := e.noun(h)
		names = append(names, message.Inflect(n.Name, n.Adjective, n.Plural, accusative, false))
	}
	return message.Join(names)
}

// phrase renders a parsed noun back into text for an error message.
func phrase(n parser.Noun) string {
	if !n.IsPronoun {
		return message.Inflect(n.Name, n.Adjective, n.Plural, true, n.Article)
	}
	word := "ĝi"
	p := n.Pronoun
	switch {
	case p.Person == 1 && p.Plural:
		word = "ni"
	case p.Person == 1:
		word = "mi"
	case p.Person == 2:
		word = "vi"
	case p.Plural:
		word = "ili"
	case p.Genders == parser.GenderMan:
		word = "li"
	case p.Genders == parser.GenderWoman:
		word = "ŝi"
	case p.Genders == parser.GenderMan|parser.GenderWoman:
		word = "ri"
	}
	return word + "n"
}

// plural makes a sentence-final adjective agree with a plural instance.
func plural(format string, in *state.Instance) string {
	if in.Pronoun != types.PronounPlural || !strings.HasSuffix(format, "a.") {
		return format
	}
	return strings.TrimSuffix(format, ".") + "j."
}
