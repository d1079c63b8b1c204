// Package rules evaluates game rules: finding the rules a verb triggers
// and checking their conditions against the current world.
package rules

import (
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// Bindings are the instances a command's rules operate on. Absent roles
// are state.NoHandle.
type Bindings struct {
	Object  state.Handle
	Tool    state.Handle
	Monster state.Handle
}

// NoBindings has every role empty.
var NoBindings = Bindings{
	Object:  state.NoHandle,
	Tool:    state.NoHandle,
	Monster: state.NoHandle,
}

// For returns the instance bound to a role. The room role never has an
// instance.
func (b Bindings) For(role types.Role) state.Handle {
	switch role {
	case types.RoleObject:
		return b.Object
	case types.RoleTool:
		return b.Tool
	case types.RoleMonster:
		return b.Monster
	default:
		return state.NoHandle
	}
}

// Chance draws uniform integers in [0, 100).
type Chance interface {
	Percent() int
}

// Env is everything a condition can look at.
type Env struct {
	Def   *types.Definition
	State *state.State
	Bound Bindings
	Rand  Chance
}

// Fires reports whether all four conditions of a rule hold.
func Fires(rule types.Rule, env Env) bool {
	for role, c := range rule.Conditions {
		if !EvalCondition(types.Role(role), c, env) {
			return false
		}
	}
	return true
}
