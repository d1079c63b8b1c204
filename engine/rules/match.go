package rules

import (
	"slices"

	"github.com/nathoo/aventuro/types"
)

// RulesFor returns the indices of the rules a verb root triggers, in
// declaration order. Verbs that share a root are merged.
func RulesFor(def *types.Definition, verb string) []int {
	var out []int
	merged := 0
	for _, v := range def.Verbs {
		if v.Name == verb {
			out = append(out, v.Rules...)
			merged++
		}
	}
	if merged > 1 {
		slices.Sort(out)
	}
	return out
}

// KnownVerb reports whether any rule is attached to the verb root.
func KnownVerb(def *types.Definition, verb string) bool {
	for _, v := range def.Verbs {
		if v.Name == verb && len(v.Rules) > 0 {
			return true
		}
	}
	return false
}
