package builder

import (
	"fmt"
	"strings"

	"github.com/nathoo/aventuro/engine/morph"
	"github.com/nathoo/aventuro/types"
)

// ValidationError collects every integrity problem found in a definition.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Validate checks a definition for referential integrity: every index in
// range, every room described, every name a valid root. It is run on
// everything Build produces and is usable on definitions from any source.
func Validate(def *types.Definition) error {
	ve := &ValidationError{}

	if len(def.Rooms) == 0 {
		ve.add("the game has no rooms")
	}

	nRooms, nObjects, nMonsters := len(def.Rooms), len(def.Objects), len(def.Monsters)
	inRange := func(i, n int) bool { return i >= 0 && i < n }

	for i, r := range def.Rooms {
		if r.Description == "" {
			ve.add("room %d (%s) has no description", i, r.Name)
		}
		for dir, m := range r.Movements {
			if m != types.Blocked && !inRange(m, nRooms) {
				ve.add("room %d exit %d leads to invalid room %d", i, dir, m)
			}
		}
		for _, d := range r.Directions {
			if !morph.IsWord(d.Name) {
				ve.add("room %d direction %q is not a valid root", i, d.Name)
			}
			if !inRange(d.Target, nRooms) {
				ve.add("room %d direction %q leads to invalid room %d", i, d.Name, d.Target)
			}
		}
	}

	movable := func(what string, i int, m types.Movable, self types.LocationType) {
		if !morph.IsWord(m.Name) {
			ve.add("%s %d name %q is not a valid root", what, i, m.Name)
		}
		if m.Adjective != "" && !morph.IsWord(m.Adjective) {
			ve.add("%s %d adjective %q is not a valid root", what, i, m.Adjective)
		}
		loc := m.Location
		switch loc.Type {
		case types.LocationRoom:
			if !inRange(loc.Index, nRooms) {
				ve.add("%s %d is in invalid room %d", what, i, loc.Index)
			}
		case types.LocationWithMonster:
			if !inRange(loc.Index, nMonsters) || (self == types.LocationWithMonster && loc.Index == i) {
				ve.add("%s %d is with invalid monster %d", what, i, loc.Index)
			}
		case types.LocationInObject:
			if !inRange(loc.Index, nObjects) || (self == types.LocationInObject && loc.Index == i) {
				ve.add("%s %d is in invalid object %d", what, i, loc.Index)
			}
		case types.LocationCarried, types.LocationNowhere:
		default:
			ve.add("%s %d has invalid location type %d", what, i, loc.Type)
		}
	}

	for i, o := range def.Objects {
		movable("object", i, o.Movable, types.LocationInObject)
		if o.EnterRoom != types.Blocked && !inRange(o.EnterRoom, nRooms) {
			ve.add("object %d enters invalid room %d", i, o.EnterRoom)
		}
	}
	for i, m := range def.Monsters {
		movable("monster", i, m.Movable, types.LocationWithMonster)
		if m.DeadObject != types.Blocked && !inRange(m.DeadObject, nObjects) {
			ve.add("monster %d leaves invalid object %d", i, m.DeadObject)
		}
	}

	for i, a := range def.Aliases {
		if !morph.IsWord(a.Name) {
			ve.add("alias %d name %q is not a valid root", i, a.Name)
		}
		n := nObjects
		if a.Kind == types.AliasMonster {
			n = nMonsters
		}
		if !inRange(a.Index, n) {
			ve.add("alias %d (%s) refers to invalid index %d", i, a.Name, a.Index)
		}
	}

	for i, v := range def.Verbs {
		if !morph.IsWord(v.Name) {
			ve.add("verb %d name %q is not a valid root", i, v.Name)
		}
		for _, r := range v.Rules {
			if !inRange(r, len(def.Rules)) {
				ve.add("verb %q triggers invalid rule %d", v.Name, r)
			}
		}
	}

	for i, r := range def.Rules {
		for role := types.Role(0); role < types.NRoles; role++ {
			if msg := checkCondition(def, role, r.Conditions[role]); msg != "" {
				ve.add("rule %d (%s) condition %d: %s", i, r.Verb, role, msg)
			}
			if msg := checkAction(def, role, r.Actions[role]); msg != "" {
				ve.add("rule %d (%s) action %d: %s", i, r.Verb, role, msg)
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func sameKindRange(def *types.Definition, role types.Role) int {
	if role == types.RoleMonster {
		return len(def.Monsters)
	}
	return len(def.Objects)
}

func checkCondition(def *types.Definition, role types.Role, c types.Condition) string {
	check := func(ok bool) string {
		if ok {
			return ""
		}
		return fmt.Sprintf("invalid operand %d for kind %d", c.Data, c.Kind)
	}
	in := func(n int) bool { return c.Data >= 0 && c.Data < n }

	switch c.Kind {
	case types.CondNone, types.CondNothing, types.CondSomething,
		types.CondShots, types.CondWeight, types.CondSize, types.CondContainerSize, types.CondBurnTime:
		return ""
	case types.CondInRoom:
		return check(in(len(def.Rooms)))
	case types.CondObjectIs, types.CondObjectPresent, types.CondObjectCarried:
		return check(in(len(def.Objects)))
	case types.CondMonsterIs, types.CondMonsterPresent:
		return check(in(len(def.Monsters)))
	case types.CondAttribute, types.CondNotAttribute,
		types.CondRoomAttribute, types.CondNotRoomAttribute:
		return check(in(types.MaxAttributeBit + 1))
	case types.CondPlayerAttribute, types.CondNotPlayerAttribute:
		return check(in(types.MaxGameAttributeBit + 1))
	case types.CondChance:
		return check(c.Data >= 0 && c.Data <= 100)
	case types.CondSameAdjective, types.CondSameName, types.CondSameNoun:
		return check(in(sameKindRange(def, role)))
	}
	return fmt.Sprintf("unknown condition kind %d", c.Kind)
}

func checkAction(def *types.Definition, role types.Role, a types.Action) string {
	check := func(ok bool) string {
		if ok {
			return ""
		}
		return fmt.Sprintf("invalid operand %d for kind %d", a.Data, a.Kind)
	}
	in := func(n int) bool { return a.Data >= 0 && a.Data < n }

	switch a.Kind {
	case types.ActNone, types.ActCarry, types.ActNowhere,
		types.ActShots, types.ActWeight, types.ActSize, types.ActContainerSize, types.ActBurnTime:
		return ""
	case types.ActMove:
		return check(in(len(def.Rooms)))
	case types.ActReplaceObject, types.ActCopyObject:
		return check(in(len(def.Objects)))
	case types.ActReplaceMonster, types.ActCopyMonster:
		return check(in(len(def.Monsters)))
	case types.ActSetAttribute, types.ActUnsetAttribute,
		types.ActSetRoomAttribute, types.ActUnsetRoomAttribute:
		return check(in(types.MaxAttributeBit + 1))
	case types.ActSetPlayerAttribute, types.ActUnsetPlayerAttribute:
		return check(in(types.MaxGameAttributeBit + 1))
	case types.ActRename, types.ActReadjective:
		return check(in(sameKindRange(def, role)))
	case types.ActTrigger:
		return check(in(len(def.Verbs)))
	}
	return fmt.Sprintf("unknown action kind %d", a.Kind)
}

// Warnings reports suspicious but legal things in a definition, such as
// rooms the player can never reach.
func Warnings(def *types.Definition) []string {
	if len(def.Rooms) == 0 {
		return nil
	}

	links := make([][]int, len(def.Rooms))
	for i, r := range def.Rooms {
		for _, m := range r.Movements {
			if m != types.Blocked {
				links[i] = append(links[i], m)
			}
		}
		for _, d := range r.Directions {
			links[i] = append(links[i], d.Target)
		}
	}

	// Rooms reachable through objects or rule moves count as reachable
	// from anywhere.
	reached := make([]bool, len(def.Rooms))
	queue := []int{0}
	for _, o := range def.Objects {
		if o.EnterRoom != types.Blocked {
			queue = append(queue, o.EnterRoom)
		}
	}
	for _, r := range def.Rules {
		if a := r.Actions[types.RoleRoom]; a.Kind == types.ActMove {
			queue = append(queue, a.Data)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if i < 0 || i >= len(reached) || reached[i] {
			continue
		}
		reached[i] = true
		queue = append(queue, links[i]...)
	}

	var warnings []string
	for i, ok := range reached {
		if !ok {
			warnings = append(warnings, fmt.Sprintf("room %d (%s) cannot be reached", i, def.Rooms[i].Name))
		}
	}
	for _, v := range def.Verbs {
		if len(v.Rules) == 0 {
			warnings = append(warnings, fmt.Sprintf("verb %q has no rules", v.Name))
		}
	}
	return warnings
}
