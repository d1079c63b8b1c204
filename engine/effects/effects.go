// Package effects implements centralized state mutation for rule actions.
// Every action is one atomic operation on the world; choosing which
// actions run is the rule engine's job.
package effects

import (
	"github.com/nathoo/aventuro/engine/events"
	"github.com/nathoo/aventuro/engine/rules"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// Host is the part of the engine an action can reach.
type Host interface {
	State() *state.State
	Definition() *types.Definition
	// MovePlayer takes the player to a room and describes it.
	MovePlayer(room int)
	// RunVerb fires the rules of another verb with the same operands.
	RunVerb(verb string, b rules.Bindings)
}

// Apply runs one action in the slot of the given role. Actions on an
// unbound slot do nothing, except the ones that only touch the room, the
// player or a fixed instance.
func Apply(host Host, role types.Role, a types.Action, b rules.Bindings, log *events.Log) {
	s := host.State()
	h := b.For(role)
	bound := h != state.NoHandle

	switch a.Kind {
	case types.ActNone:

	case types.ActMove:
		if role == types.RoleRoom {
			host.MovePlayer(a.Data)
			return
		}
		if bound {
			s.MoveToRoom(h, a.Data)
			log.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "room": a.Data})
		}

	case types.ActReplaceObject, types.ActReplaceMonster:
		target := s.ObjectHandle(a.Data)
		if a.Kind == types.ActReplaceMonster {
			target = s.MonsterHandle(a.Data)
		}
		if bound && h != target {
			s.MoveToNowhere(h)
			log.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "to": "nowhere"})
		}
		s.MoveToRoom(target, s.CurrentRoom)
		log.Emit(events.InstanceMoved, map[string]any{"handle": int(target), "room": s.CurrentRoom})

	case types.ActCopyObject, types.ActCopyMonster:
		if !bound {
			return
		}
		src := s.ObjectHandle(a.Data)
		if a.Kind == types.ActCopyMonster {
			src = s.MonsterHandle(a.Data)
		}
		copyInstance(s.Get(h), s.Get(src))
		log.Emit(events.Renamed, map[string]any{"handle": int(h), "from": int(src)})

	case types.ActShots, types.ActWeight, types.ActSize, types.ActContainerSize, types.ActBurnTime:
		if !bound {
			return
		}
		if o := s.Get(h).Object(); o != nil {
			*objectStat(o, a.Kind) = a.Data
			log.Emit(events.StatChanged, map[string]any{"handle": int(h), "stat": int(a.Kind), "value": a.Data})
		}

	case types.ActSetAttribute, types.ActUnsetAttribute:
		var attrs *uint32
		switch {
		case role == types.RoleRoom:
			attrs = &s.Rooms[s.CurrentRoom].Attributes
		case bound:
			attrs = &s.Get(h).Attributes
		default:
			return
		}
		setBit(attrs, a.Data, a.Kind == types.ActSetAttribute)
		log.Emit(events.AttributeChanged, map[string]any{"role": int(role), "bit": a.Data, "set": a.Kind == types.ActSetAttribute})

	case types.ActSetRoomAttribute, types.ActUnsetRoomAttribute:
		setBit(&s.Rooms[s.CurrentRoom].Attributes, a.Data, a.Kind == types.ActSetRoomAttribute)
		log.Emit(events.AttributeChanged, map[string]any{"room": s.CurrentRoom, "bit": a.Data, "set": a.Kind == types.ActSetRoomAttribute})

	case types.ActSetPlayerAttribute, types.ActUnsetPlayerAttribute:
		bit := uint64(1) << uint(a.Data)
		if a.Kind == types.ActSetPlayerAttribute {
			s.PlayerAttributes |= bit
		} else {
			s.PlayerAttributes &^= bit
		}
		log.Emit(events.AttributeChanged, map[string]any{"player": true, "bit": a.Data, "set": a.Kind == types.ActSetPlayerAttribute})

	case types.ActCarry:
		if bound {
			s.MoveToCarried(h)
			log.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "to": "carried"})
		}

	case types.ActNowhere:
		if bound {
			s.MoveToNowhere(h)
			log.Emit(events.InstanceMoved, map[string]any{"handle": int(h), "to": "nowhere"})
		}

	case types.ActRename, types.ActReadjective:
		if !bound {
			return
		}
		src := s.Get(rules.Reference(s, role, a.Data))
		in := s.Get(h)
		if a.Kind == types.ActRename {
			in.Name = src.Name
		} else {
			in.Adjective = src.Adjective
		}
		log.Emit(events.Renamed, map[string]any{"handle": int(h), "name": in.Name, "adjective": in.Adjective})

	case types.ActTrigger:
		def := host.Definition()
		if a.Data >= 0 && a.Data < len(def.Verbs) {
			host.RunVerb(def.Verbs[a.Data].Name, b)
		}
	}
}

// copyInstance overwrites dst's mutable fields with src's. Location and
// contents stay with dst.
func copyInstance(dst, src *state.Instance) {
	dst.Name = src.Name
	dst.Adjective = src.Adjective
	dst.Description = src.Description
	dst.Pronoun = src.Pronoun
	dst.Attributes = src.Attributes

	switch p := src.Payload.(type) {
	case *state.ObjectStats:
		if o := dst.Object(); o != nil {
			*o = *p
		}
	case *state.MonsterStats:
		if m := dst.Monster(); m != nil {
			*m = *p
		}
	}
}

func objectStat(o *state.ObjectStats, kind types.ActionKind) *int {
	switch kind {
	case types.ActShots:
		return &o.Shots
	case types.ActWeight:
		return &o.Weight
	case types.ActSize:
		return &o.Size
	case types.ActContainerSize:
		return &o.ContainerSize
	default:
		return &o.BurnTime
	}
}

func setBit(attrs *uint32, bit int, on bool) {
	if on {
		*attrs |= 1 << uint(bit)
	} else {
		*attrs &^= 1 << uint(bit)
	}
}
