// Package engine provides the Engine, which wires together parsing,
// resolution, rules and effects into a single command, and owns the
// message queue the front ends read from.
package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nathoo/aventuro/engine/effects"
	"github.com/nathoo/aventuro/engine/events"
	"github.com/nathoo/aventuro/engine/message"
	"github.com/nathoo/aventuro/engine/parser"
	"github.com/nathoo/aventuro/engine/resolve"
	"github.com/nathoo/aventuro/engine/rules"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// MaxRuleDepth is the deepest rule firings may nest within one command.
const MaxRuleDepth = 10

// DefaultMaxCarryWeight is the carry limit used when none is configured.
const DefaultMaxCarryWeight = 100

// Result is the output of one command.
type Result struct {
	Messages []message.Message
	Events   []events.Event
}

// Engine holds a game definition and one session's mutable world.
type Engine struct {
	def      *types.Definition
	state    *state.State
	rng      *RNG
	queue    message.Queue
	mentions *resolve.Mentions
	events   events.Log
	log      *zap.Logger

	session        string
	seed           int64
	maxCarryWeight int

	score      int
	turn       int
	commandLog []string

	depth   int
	aborted bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for rule and movement tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSeed fixes the seed of the random source used by chance conditions.
// Zero picks a seed from the clock.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithMaxCarryWeight sets how much weight the player can carry.
func WithMaxCarryWeight(w int) Option {
	return func(e *Engine) {
		if w > 0 {
			e.maxCarryWeight = w
		}
	}
}

// New creates an engine positioned in the first room. The introduction and
// the first room's description are queued.
func New(def *types.Definition, opts ...Option) *Engine {
	e := &Engine{
		def:            def,
		log:            zap.NewNop(),
		maxCarryWeight: DefaultMaxCarryWeight,
		session:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seed == 0 {
		e.seed = time.Now().UnixNano()
	}
	e.log = e.log.With(zap.String("session", e.session))
	e.reset()

	e.log.Debug("game started",
		zap.String("game", def.Name),
		zap.Int("rooms", len(def.Rooms)),
		zap.Int("rules", len(def.Rules)),
	)
	return e
}

// reset builds a fresh world from the definition.
func (e *Engine) reset() {
	e.state = state.New(e.def)
	e.rng = NewRNG(e.seed)
	e.mentions = resolve.NewMentions()
	e.queue.Clear()
	e.events.Reset()
	e.score = 0
	e.turn = 0
	e.commandLog = nil

	if e.def.Introduction != "" {
		e.queue.Send(message.Normal, e.def.Introduction)
	}
	e.enterRoom(0)
}

// Restart throws the current world away and starts over with the same
// definition and seed.
func (e *Engine) Restart() {
	e.reset()
	e.log.Debug("game restarted")
}

// RunCommand interprets one line of player input. Messages from the
// previous command that were already read are discarded first.
func (e *Engine) RunCommand(input string) {
	e.queue.Compact()
	e.events.Reset()
	e.depth = 0
	e.aborted = false
	e.turn++
	e.commandLog = append(e.commandLog, input)

	cmd, ok := parser.Parse(input)
	if !ok || cmd.Has == 0 || !validSubject(cmd) {
		e.events.Emit(events.NotUnderstood, map[string]any{"input": input})
		e.send(msgNotUnderstood)
		return
	}
	e.events.Emit(events.CommandParsed, map[string]any{"has": int(cmd.Has), "verb": cmd.Verb})

	for _, handle := range []func(parser.Command) bool{
		e.handleDirection,
		e.handleLook,
		e.handleTake,
		e.handleDrop,
		e.handlePutIn,
		e.handleInventory,
		e.handleEnter,
		e.handleExit,
		e.handleOpenClose,
		e.handleRead,
		e.handleCustom,
	} {
		if handle(cmd) {
			return
		}
	}
	e.send(msgNotUnderstood)
}

// Step runs a command and drains everything it produced.
func (e *Engine) Step(input string) Result {
	e.RunCommand(input)
	var r Result
	for {
		m, ok := e.NextMessage()
		if !ok {
			break
		}
		r.Messages = append(r.Messages, m)
	}
	r.Events = append(r.Events, e.events.Events()...)
	return r
}

// NextMessage returns the oldest message not yet read.
func (e *Engine) NextMessage() (message.Message, bool) {
	return e.queue.Next()
}

// GameIsOver reports whether the player stands in a room that ends the
// game.
func (e *Engine) GameIsOver() bool {
	return e.state.Rooms[e.state.CurrentRoom].Attributes&types.RoomGameOver != 0
}

// CurrentRoom returns the index of the player's room.
func (e *Engine) CurrentRoom() int { return e.state.CurrentRoom }

// Score returns the points earned so far.
func (e *Engine) Score() int { return e.score }

// Turn returns the number of commands run.
func (e *Engine) Turn() int { return e.turn }

// SessionID identifies this engine in logs and saves.
func (e *Engine) SessionID() string { return e.session }

// CommandLog returns every line of input run since the game started.
func (e *Engine) CommandLog() []string { return e.commandLog }

// ForceChance makes every chance condition draw v. A negative v goes back
// to random draws.
func (e *Engine) ForceChance(v int) { e.rng.Force(v) }

// State returns the live world.
func (e *Engine) State() *state.State { return e.state }

// Definition returns the game definition.
func (e *Engine) Definition() *types.Definition { return e.def }

// MovePlayer takes the player to a room and describes it.
func (e *Engine) MovePlayer(room int) {
	if room < 0 || room >= len(e.def.Rooms) {
		return
	}
	from := e.state.CurrentRoom
	e.enterRoom(room)
	e.events.Emit(events.PlayerMoved, map[string]any{"from": from, "to": room})
	e.log.Debug("player moved", zap.Int("from", from), zap.Int("to", room))
}

// Describe queues the description of the player's room without taking a
// turn.
func (e *Engine) Describe() {
	e.describeRoom()
}

// enterRoom sets the current room, awards its points on the first visit
// and queues its description.
func (e *Engine) enterRoom(room int) {
	e.state.CurrentRoom = room
	rs := &e.state.Rooms[room]
	if !rs.Visited {
		rs.Visited = true
		e.addScore(e.def.Rooms[room].Points)
	}
	e.describeRoom()
}

func (e *Engine) addScore(points int) {
	if points == 0 {
		return
	}
	e.score += points
	e.events.Emit(events.ScoreChanged, map[string]any{"points": points, "score": e.score})
}

// RunVerb fires every rule of a verb whose conditions hold. It is also
// how a rule's trigger action runs another verb.
func (e *Engine) RunVerb(verb string, b rules.Bindings) {
	e.runRules(verb, b)
}

// runRules fires the rules of a verb in declaration order and reports
// whether any fired. Nesting deeper than MaxRuleDepth stops all rule
// execution for the rest of the command.
func (e *Engine) runRules(verb string, b rules.Bindings) bool {
	fired := false
	for _, i := range rules.RulesFor(e.def, verb) {
		if e.aborted {
			return fired
		}
		rule := e.def.Rules[i]
		env := rules.Env{Def: e.def, State: e.state, Bound: b, Rand: e.rng}
		if !rules.Fires(rule, env) {
			continue
		}

		if e.depth >= MaxRuleDepth {
			e.aborted = true
			e.events.Emit(events.RecursionLimit, map[string]any{"rule": i, "verb": verb})
			e.log.Debug("rule recursion limit reached", zap.Int("rule", i), zap.String("verb", verb))
			return fired
		}
		e.depth++
		fired = true

		e.events.Emit(events.RuleFired, map[string]any{"rule": i, "verb": verb, "depth": e.depth})
		e.log.Debug("rule fired", zap.Int("rule", i), zap.String("verb", verb), zap.Int("depth", e.depth))

		if rule.Message != "" {
			for _, m := range message.Expand(rule.Message, e.refs(b)) {
				e.queue.Send(m.Type, m.Text)
			}
		}
		for role, a := range rule.Actions {
			effects.Apply(e, types.Role(role), a, b, &e.events)
		}
		e.addScore(rule.Points)

		e.depth--
	}
	return fired
}

// refs builds the template references for the bound instances from their
// current names.
func (e *Engine) refs(b rules.Bindings) message.Refs {
	noun := func(h state.Handle) *message.Noun {
		if h == state.NoHandle {
			return nil
		}
		return e.noun(h)
	}
	return message.Refs{
		Object:  noun(b.Object),
		Tool:    noun(b.Tool),
		Monster: noun(b.Monster),
	}
}

func (e *Engine) noun(h state.Handle) *message.Noun {
	in := e.state.Get(h)
	return &message.Noun{
		Name:      in.Name,
		Adjective: in.Adjective,
		Plural:    in.Pronoun == types.PronounPlural,
	}
}

func (e *Engine) send(format string, args ...any) {
	e.queue.Sendf(format, args...)
}

// validSubject accepts commands without a subject or with "mi".
func validSubject(cmd parser.Command) bool {
	if cmd.Has&parser.HasSubject == 0 {
		return true
	}
	s := cmd.Subject
	return s.IsPronoun && s.Pronoun.Person == 1 && !s.Pronoun.Plural
}
