// Package state manages the mutable world of one game session: an arena of
// movable instances addressed by handles, the rooms' runtime attributes and
// the containment graph between them.
package state

import (
	"errors"
	"slices"

	"github.com/nathoo/aventuro/types"
)

// Handle addresses a movable instance. Objects come first, then monsters,
// in definition order.
type Handle int

// NoHandle is the zero value for an absent instance.
const NoHandle Handle = -1

// ErrCycle is returned by MoveInto when the move would put an instance
// inside itself.
var ErrCycle = errors.New("containment cycle")

// Kind says which definition collection an instance came from.
type Kind int

const (
	KindObject Kind = iota
	KindMonster
)

// Payload is the kind-specific part of an instance: *ObjectStats or
// *MonsterStats.
type Payload interface {
	payload()
}

// ObjectStats holds the mutable copy of an object's numbers.
type ObjectStats struct {
	ReadText      string
	Points        int
	Weight        int
	Size          int
	ShotDamage    int
	Shots         int
	HitDamage     int
	StabDamage    int
	FoodPoints    int
	DrinkPoints   int
	BurnTime      int
	End           int
	ContainerSize int
	EnterRoom     int
}

// MonsterStats holds the mutable copy of a monster's numbers.
type MonsterStats struct {
	DeadObject int
	Hunger     int
	Thirst     int
	Aggression int
	Attack     int
	Protection int
	Lives      int
	Escape     int
	Wander     int
}

func (*ObjectStats) payload()  {}
func (*MonsterStats) payload() {}

// Instance is the runtime copy of one object or monster.
type Instance struct {
	Kind  Kind
	Index int

	Name        string
	Adjective   string
	Description string
	Pronoun     types.Pronoun
	Attributes  uint32

	Location types.LocationType
	Room     int    // valid for LocationRoom
	Parent   Handle // valid for LocationWithMonster and LocationInObject
	Contents []Handle

	Payload Payload
}

// Object returns the object stats, or nil for a monster.
func (in *Instance) Object() *ObjectStats {
	o, _ := in.Payload.(*ObjectStats)
	return o
}

// Monster returns the monster stats, or nil for an object.
func (in *Instance) Monster() *MonsterStats {
	m, _ := in.Payload.(*MonsterStats)
	return m
}

// Closed reports whether the instance is a closed container.
func (in *Instance) Closed() bool {
	return in.Kind == KindObject && in.Attributes&types.ObjectClosed != 0
}

// RoomState is the mutable part of a room.
type RoomState struct {
	Attributes uint32
	Contents   []Handle
	Visited    bool
}

// State is the world of one session. Every instance is in exactly one of
// the lists: a room's Contents, Carried, Nowhere or a parent's Contents.
type State struct {
	Instances []Instance
	Rooms     []RoomState
	Carried   []Handle
	Nowhere   []Handle

	CurrentRoom      int
	PlayerAttributes uint64

	nObjects int
}

// New builds the initial world for a definition. The definition is only
// read.
func New(def *types.Definition) *State {
	s := &State{
		Instances:        make([]Instance, 0, len(def.Objects)+len(def.Monsters)),
		Rooms:            make([]RoomState, len(def.Rooms)),
		PlayerAttributes: def.GameAttributes,
		nObjects:         len(def.Objects),
	}

	for i, r := range def.Rooms {
		s.Rooms[i].Attributes = r.Attributes
	}

	for i, o := range def.Objects {
		in := newInstance(KindObject, i, o.Movable)
		in.Payload = &ObjectStats{
			ReadText:      o.ReadText,
			Points:        o.Points,
			Weight:        o.Weight,
			Size:          o.Size,
			ShotDamage:    o.ShotDamage,
			Shots:         o.Shots,
			HitDamage:     o.HitDamage,
			StabDamage:    o.StabDamage,
			FoodPoints:    o.FoodPoints,
			DrinkPoints:   o.DrinkPoints,
			BurnTime:      o.BurnTime,
			End:           o.End,
			ContainerSize: o.ContainerSize,
			EnterRoom:     o.EnterRoom,
		}
		s.Instances = append(s.Instances, in)
	}

	for i, m := range def.Monsters {
		in := newInstance(KindMonster, i, m.Movable)
		in.Payload = &MonsterStats{
			DeadObject: m.DeadObject,
			Hunger:     m.Hunger,
			Thirst:     m.Thirst,
			Aggression: m.Aggression,
			Attack:     m.Attack,
			Protection: m.Protection,
			Lives:      m.Lives,
			Escape:     m.Escape,
			Wander:     m.Wander,
		}
		s.Instances = append(s.Instances, in)
	}

	// Place everything once all instances exist so that parents can be
	// referenced regardless of order.
	for h := range s.Instances {
		in := &s.Instances[h]
		var loc types.Location
		if in.Kind == KindObject {
			loc = def.Objects[in.Index].Location
		} else {
			loc = def.Monsters[in.Index].Location
		}
		s.place(Handle(h), loc)
	}

	return s
}

func newInstance(kind Kind, index int, m types.Movable) Instance {
	return Instance{
		Kind:        kind,
		Index:       index,
		Name:        m.Name,
		Adjective:   m.Adjective,
		Description: m.Description,
		Pronoun:     m.Pronoun,
		Attributes:  m.Attributes,
		Location:    types.LocationNowhere,
		Parent:      NoHandle,
	}
}

// place puts a freshly created instance at its initial location. Anything
// that cannot be placed ends up nowhere.
func (s *State) place(h Handle, loc types.Location) {
	in := s.Get(h)
	in.Location = types.LocationNowhere

	switch loc.Type {
	case types.LocationRoom:
		if loc.Index >= 0 && loc.Index < len(s.Rooms) {
			s.MoveToRoom(h, loc.Index)
			return
		}
	case types.LocationCarried:
		s.MoveToCarried(h)
		return
	case types.LocationWithMonster:
		if loc.Index >= 0 && loc.Index < len(s.Instances)-s.nObjects {
			if s.MoveInto(h, s.MonsterHandle(loc.Index)) == nil {
				return
			}
		}
	case types.LocationInObject:
		if loc.Index >= 0 && loc.Index < s.nObjects {
			if s.MoveInto(h, s.ObjectHandle(loc.Index)) == nil {
				return
			}
		}
	}

	s.Nowhere = append(s.Nowhere, h)
}

// ObjectHandle returns the handle of the instance of object i.
func (s *State) ObjectHandle(i int) Handle {
	return Handle(i)
}

// MonsterHandle returns the handle of the instance of monster i.
func (s *State) MonsterHandle(i int) Handle {
	return Handle(s.nObjects + i)
}

// Get returns the instance for a handle.
func (s *State) Get(h Handle) *Instance {
	return &s.Instances[h]
}

// Valid reports whether h addresses an instance.
func (s *State) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(s.Instances)
}

// detach removes h from whichever list currently holds it.
func (s *State) detach(h Handle) {
	in := s.Get(h)
	switch in.Location {
	case types.LocationRoom:
		r := &s.Rooms[in.Room]
		r.Contents = remove(r.Contents, h)
	case types.LocationCarried:
		s.Carried = remove(s.Carried, h)
	case types.LocationNowhere:
		s.Nowhere = remove(s.Nowhere, h)
	case types.LocationWithMonster, types.LocationInObject:
		p := s.Get(in.Parent)
		p.Contents = remove(p.Contents, h)
	}
	in.Parent = NoHandle
}

func remove(list []Handle, h Handle) []Handle {
	if i := slices.Index(list, h); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

// MoveToRoom puts an instance on the floor of a room.
func (s *State) MoveToRoom(h Handle, room int) {
	s.detach(h)
	in := s.Get(h)
	in.Location = types.LocationRoom
	in.Room = room
	s.Rooms[room].Contents = append(s.Rooms[room].Contents, h)
}

// MoveToCarried gives an instance to the player.
func (s *State) MoveToCarried(h Handle) {
	s.detach(h)
	s.Get(h).Location = types.LocationCarried
	s.Carried = append(s.Carried, h)
}

// MoveToNowhere takes an instance out of play.
func (s *State) MoveToNowhere(h Handle) {
	s.detach(h)
	s.Get(h).Location = types.LocationNowhere
	s.Nowhere = append(s.Nowhere, h)
}

// MoveInto puts h inside parent (an object) or with parent (a monster).
// The move is refused without changing anything if parent is h or is
// already inside h.
func (s *State) MoveInto(h, parent Handle) error {
	if s.Contains(h, parent) {
		return ErrCycle
	}

	s.detach(h)
	in := s.Get(h)
	if s.Get(parent).Kind == KindMonster {
		in.Location = types.LocationWithMonster
	} else {
		in.Location = types.LocationInObject
	}
	in.Parent = parent
	p := s.Get(parent)
	p.Contents = append(p.Contents, h)
	return nil
}

// Contains reports whether inner is outer or is nested, at any depth,
// inside outer.
func (s *State) Contains(outer, inner Handle) bool {
	h := inner
	for steps := 0; steps <= len(s.Instances); steps++ {
		if h == outer {
			return true
		}
		in := s.Get(h)
		if in.Location != types.LocationWithMonster && in.Location != types.LocationInObject {
			return false
		}
		h = in.Parent
	}
	return true
}

// IsPresent reports whether the player can reach h: it is carried, in the
// current room, or inside something present that is not closed.
func (s *State) IsPresent(h Handle) bool {
	start := h
	for steps := 0; steps <= len(s.Instances); steps++ {
		in := s.Get(h)
		switch in.Location {
		case types.LocationCarried:
			return true
		case types.LocationRoom:
			return in.Room == s.CurrentRoom
		case types.LocationWithMonster, types.LocationInObject:
			parent := s.Get(in.Parent)
			if parent.Closed() {
				return false
			}
			h = in.Parent
			if h == start {
				return false
			}
		default:
			return false
		}
	}
	return false
}

// IsCarried reports whether the player holds h directly.
func (s *State) IsCarried(h Handle) bool {
	return s.Get(h).Location == types.LocationCarried
}

// ContentsSize returns the total size of the objects directly inside h.
func (s *State) ContentsSize(h Handle) int {
	total := 0
	for _, c := range s.Get(h).Contents {
		if o := s.Get(c).Object(); o != nil {
			total += o.Size
		}
	}
	return total
}

// Weight returns the weight of h including everything inside it.
func (s *State) Weight(h Handle) int {
	total := 0
	s.walk(h, func(c Handle) {
		if o := s.Get(c).Object(); o != nil {
			total += o.Weight
		}
	})
	return total
}

// CarriedWeight returns the weight of everything the player holds.
func (s *State) CarriedWeight() int {
	total := 0
	for _, h := range s.Carried {
		total += s.Weight(h)
	}
	return total
}

// walk visits h and everything nested inside it, depth first.
func (s *State) walk(h Handle, fn func(Handle)) {
	fn(h)
	for _, c := range s.Get(h).Contents {
		s.walk(c, fn)
	}
}

// RoomOf returns the room that h is in, following containers upwards, or
// -1 if it is carried or out of play.
func (s *State) RoomOf(h Handle) int {
	for steps := 0; steps <= len(s.Instances); steps++ {
		in := s.Get(h)
		switch in.Location {
		case types.LocationRoom:
			return in.Room
		case types.LocationWithMonster, types.LocationInObject:
			h = in.Parent
		default:
			return -1
		}
	}
	return -1
}
