// Package events records what happened during a command: rules fired,
// instances moved, attributes changed. The records feed the trace output
// and the debug log; they never change the game.
package events

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Type names a kind of event.
type Type string

const (
	CommandParsed    Type = "command_parsed"
	NotUnderstood    Type = "not_understood"
	RuleFired        Type = "rule_fired"
	RecursionLimit   Type = "recursion_limit"
	PlayerMoved      Type = "player_moved"
	InstanceMoved    Type = "instance_moved"
	MoveRejected     Type = "move_rejected"
	AttributeChanged Type = "attribute_changed"
	StatChanged      Type = "stat_changed"
	Renamed          Type = "renamed"
	ScoreChanged     Type = "score_changed"
)

// Event is one record.
type Event struct {
	Type Type
	Data map[string]any
}

// String renders the event on one line with sorted keys.
func (e Event) String() string {
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := string(e.Type)
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%v", k, e.Data[k])
	}
	return s
}

// Fields converts the event data into zap fields.
func (e Event) Fields() []zap.Field {
	fields := make([]zap.Field, 0, len(e.Data)+1)
	fields = append(fields, zap.String("event", string(e.Type)))
	for k, v := range e.Data {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

// Log collects the events of one command.
type Log struct {
	events []Event
}

// Emit appends an event.
func (l *Log) Emit(t Type, data map[string]any) {
	l.events = append(l.events, Event{Type: t, Data: data})
}

// Events returns the recorded events in order.
func (l *Log) Events() []Event {
	return l.events
}

// Count returns how many events of a type were recorded.
func (l *Log) Count(t Type) int {
	n := 0
	for _, e := range l.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Reset forgets every event.
func (l *Log) Reset() {
	l.events = l.events[:0]
}
