package builder

import "github.com/nathoo/aventuro/types"

// RoomFlags maps the built-in room attribute names to their bits.
var RoomFlags = map[string]uint32{
	"luma":        types.RoomLit,
	"nelumigebla": types.RoomUnlightable,
	"ludfino":     types.RoomGameOver,
}

// ObjectFlags maps the built-in object attribute names to their bits.
var ObjectFlags = map[string]uint32{
	"portebla":  types.ObjectPortable,
	"fermebla":  types.ObjectClosable,
	"fermita":   types.ObjectClosed,
	"lumigebla": types.ObjectLightable,
	"lumigita":  types.ObjectLit,
	"fajrebla":  types.ObjectFlammable,
	"fajrilo":   types.ObjectLighter,
	"brulanta":  types.ObjectBurning,
	"bruligita": types.ObjectBurntOut,
	"manĝebla":  types.ObjectEdible,
	"trinkebla": types.ObjectDrinkable,
	"venena":    types.ObjectPoisonous,
}

// attributeSet numbers attribute names in one namespace. Built-in names
// keep their fixed bit; custom names get the next free bit in order of
// first use.
type attributeSet struct {
	builtin map[string]uint32
	custom  map[string]int
	next    int
	max     int
}

func newAttributeSet(builtin map[string]uint32, first, max int) *attributeSet {
	return &attributeSet{
		builtin: builtin,
		custom:  map[string]int{},
		next:    first,
		max:     max,
	}
}

func (s *attributeSet) bit(r Ref) (int, error) {
	if r.IsZero() {
		return 0, errorf(r.Line, "Item name expected")
	}
	if flag, ok := s.builtin[r.Symbol]; ok {
		return bitNumber(flag), nil
	}
	if bit, ok := s.custom[r.Symbol]; ok {
		return bit, nil
	}
	if s.next > s.max {
		return 0, errorf(r.Line, "Too many unique attributes")
	}
	bit := s.next
	s.custom[r.Symbol] = bit
	s.next++
	return bit, nil
}

func bitNumber(flag uint32) int {
	n := 0
	for flag > 1 {
		flag >>= 1
		n++
	}
	return n
}
