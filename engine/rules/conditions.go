package rules

import (
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// EvalCondition evaluates a single condition in the slot of the given
// role. A condition about the bound instance fails if nothing is bound.
func EvalCondition(role types.Role, c types.Condition, env Env) bool {
	s := env.State
	h := env.Bound.For(role)
	bound := h != state.NoHandle

	switch c.Kind {
	case types.CondNone:
		return true

	case types.CondInRoom:
		if role == types.RoleRoom {
			return s.CurrentRoom == c.Data
		}
		return bound && s.RoomOf(h) == c.Data

	case types.CondObjectIs:
		return bound && h == s.ObjectHandle(c.Data)

	case types.CondMonsterIs:
		return bound && h == s.MonsterHandle(c.Data)

	case types.CondObjectPresent:
		return s.IsPresent(s.ObjectHandle(c.Data))

	case types.CondMonsterPresent:
		return s.IsPresent(s.MonsterHandle(c.Data))

	case types.CondObjectCarried:
		return s.IsCarried(s.ObjectHandle(c.Data))

	case types.CondShots, types.CondWeight, types.CondSize,
		types.CondContainerSize, types.CondBurnTime:
		if !bound {
			return false
		}
		o := s.Get(h).Object()
		if o == nil {
			return false
		}
		return objectStat(o, c.Kind) >= c.Data

	case types.CondAttribute, types.CondNotAttribute:
		var attrs uint32
		switch {
		case role == types.RoleRoom:
			attrs = s.Rooms[s.CurrentRoom].Attributes
		case bound:
			attrs = s.Get(h).Attributes
		default:
			return false
		}
		set := attrs&(1<<uint(c.Data)) != 0
		return set == (c.Kind == types.CondAttribute)

	case types.CondRoomAttribute, types.CondNotRoomAttribute:
		set := s.Rooms[s.CurrentRoom].Attributes&(1<<uint(c.Data)) != 0
		return set == (c.Kind == types.CondRoomAttribute)

	case types.CondPlayerAttribute, types.CondNotPlayerAttribute:
		set := s.PlayerAttributes&(1<<uint(c.Data)) != 0
		return set == (c.Kind == types.CondPlayerAttribute)

	case types.CondChance:
		if env.Rand == nil {
			return false
		}
		return env.Rand.Percent() < c.Data

	case types.CondSameAdjective, types.CondSameName, types.CondSameNoun:
		if !bound {
			return false
		}
		in := s.Get(h)
		other := s.Get(reference(s, role, c.Data))
		switch c.Kind {
		case types.CondSameAdjective:
			return in.Adjective == other.Adjective
		case types.CondSameNoun:
			return in.Name == other.Name
		default:
			return in.Name == other.Name && in.Adjective == other.Adjective
		}

	case types.CondNothing:
		return role != types.RoleRoom && !bound

	case types.CondSomething:
		return role == types.RoleRoom || bound

	default:
		return false
	}
}

// reference resolves an index operand to the instance it names: a monster
// in the monster slot, an object anywhere else.
func reference(s *state.State, role types.Role, index int) state.Handle {
	if role == types.RoleMonster {
		return s.MonsterHandle(index)
	}
	return s.ObjectHandle(index)
}

// Reference is the exported form of reference, shared with the action
// code so both sides agree on what an operand names.
func Reference(s *state.State, role types.Role, index int) state.Handle {
	return reference(s, role, index)
}

func objectStat(o *state.ObjectStats, kind types.ConditionKind) int {
	switch kind {
	case types.CondShots:
		return o.Shots
	case types.CondWeight:
		return o.Weight
	case types.CondSize:
		return o.Size
	case types.CondContainerSize:
		return o.ContainerSize
	case types.CondBurnTime:
		return o.BurnTime
	}
	return 0
}
