// Package save implements YAML serialization of a game session: the
// world, the score and the random source position.
package save

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
)

// Version is the save format version written by Save.
const Version = 1

// ErrMismatch is returned when a save does not fit the game definition it
// is applied to.
var ErrMismatch = errors.New("save does not match game")

// SaveData is the YAML save format.
type SaveData struct {
	Version     int      `yaml:"version"`
	Game        string   `yaml:"game"`
	Session     string   `yaml:"session"`
	Turn        int      `yaml:"turn"`
	Score       int      `yaml:"score"`
	RNGSeed     int64    `yaml:"rng_seed"`
	RNGPosition int64    `yaml:"rng_position"`
	CommandLog  []string `yaml:"command_log"`
	World       World    `yaml:"world"`
}

// World is the serializable form of a state.State. Contents lists hold
// handles and keep their order.
type World struct {
	CurrentRoom      int        `yaml:"current_room"`
	PlayerAttributes uint64     `yaml:"player_attributes"`
	Rooms            []Room     `yaml:"rooms"`
	Carried          []int      `yaml:"carried,flow"`
	Nowhere          []int      `yaml:"nowhere,flow"`
	Instances        []Instance `yaml:"instances"`
}

// Room is the mutable part of one room.
type Room struct {
	Attributes uint32 `yaml:"attributes"`
	Visited    bool   `yaml:"visited"`
	Contents   []int  `yaml:"contents,flow"`
}

// Instance is one object or monster.
type Instance struct {
	Name        string              `yaml:"name"`
	Adjective   string              `yaml:"adjective,omitempty"`
	Description string              `yaml:"description,omitempty"`
	Pronoun     int                 `yaml:"pronoun"`
	Attributes  uint32              `yaml:"attributes"`
	Contents    []int               `yaml:"contents,flow,omitempty"`
	Object      *state.ObjectStats  `yaml:"object,omitempty"`
	Monster     *state.MonsterStats `yaml:"monster,omitempty"`
}

// Capture copies a world into its serializable form.
func Capture(s *state.State) World {
	w := World{
		CurrentRoom:      s.CurrentRoom,
		PlayerAttributes: s.PlayerAttributes,
		Rooms:            make([]Room, len(s.Rooms)),
		Carried:          handles(s.Carried),
		Nowhere:          handles(s.Nowhere),
		Instances:        make([]Instance, len(s.Instances)),
	}
	for i, r := range s.Rooms {
		w.Rooms[i] = Room{Attributes: r.Attributes, Visited: r.Visited, Contents: handles(r.Contents)}
	}
	for i := range s.Instances {
		in := &s.Instances[i]
		out := Instance{
			Name:        in.Name,
			Adjective:   in.Adjective,
			Description: in.Description,
			Pronoun:     int(in.Pronoun),
			Attributes:  in.Attributes,
			Contents:    handles(in.Contents),
		}
		if o := in.Object(); o != nil {
			cp := *o
			out.Object = &cp
		}
		if m := in.Monster(); m != nil {
			cp := *m
			out.Monster = &cp
		}
		w.Instances[i] = out
	}
	return w
}

// Restore builds a world for def from a saved one. The save must have
// the same shape as def, place every instance exactly once and contain no
// containment cycle.
func (w World) Restore(def *types.Definition) (*state.State, error) {
	s := state.New(def)
	if len(w.Rooms) != len(s.Rooms) || len(w.Instances) != len(s.Instances) {
		return nil, fmt.Errorf("%w: %d rooms and %d instances, want %d and %d",
			ErrMismatch, len(w.Rooms), len(w.Instances), len(s.Rooms), len(s.Instances))
	}
	if w.CurrentRoom < 0 || w.CurrentRoom >= len(s.Rooms) {
		return nil, fmt.Errorf("%w: current room %d", ErrMismatch, w.CurrentRoom)
	}

	n := len(s.Instances)
	seen := make([]bool, n)
	claim := func(list []int) ([]state.Handle, error) {
		out := make([]state.Handle, 0, len(list))
		for _, h := range list {
			if h < 0 || h >= n {
				return nil, fmt.Errorf("%w: handle %d out of range", ErrMismatch, h)
			}
			if seen[h] {
				return nil, fmt.Errorf("%w: instance %d placed twice", ErrMismatch, h)
			}
			seen[h] = true
			out = append(out, state.Handle(h))
		}
		return out, nil
	}

	var err error
	s.CurrentRoom = w.CurrentRoom
	s.PlayerAttributes = w.PlayerAttributes

	for i, r := range w.Rooms {
		rs := &s.Rooms[i]
		rs.Attributes = r.Attributes
		rs.Visited = r.Visited
		if rs.Contents, err = claim(r.Contents); err != nil {
			return nil, err
		}
		for _, h := range rs.Contents {
			in := s.Get(h)
			in.Location = types.LocationRoom
			in.Room = i
			in.Parent = state.NoHandle
		}
	}
	if s.Carried, err = claim(w.Carried); err != nil {
		return nil, err
	}
	for _, h := range s.Carried {
		s.Get(h).Location = types.LocationCarried
		s.Get(h).Parent = state.NoHandle
	}
	if s.Nowhere, err = claim(w.Nowhere); err != nil {
		return nil, err
	}
	for _, h := range s.Nowhere {
		s.Get(h).Location = types.LocationNowhere
		s.Get(h).Parent = state.NoHandle
	}

	for i, saved := range w.Instances {
		in := s.Get(state.Handle(i))
		in.Name = saved.Name
		in.Adjective = saved.Adjective
		in.Description = saved.Description
		if saved.Pronoun < int(types.PronounMan) || saved.Pronoun > int(types.PronounPlural) {
			return nil, fmt.Errorf("%w: instance %d has pronoun %d", ErrMismatch, i, saved.Pronoun)
		}
		in.Pronoun = types.Pronoun(saved.Pronoun)
		in.Attributes = saved.Attributes

		switch {
		case saved.Object != nil && in.Kind == state.KindObject:
			*in.Object() = *saved.Object
		case saved.Monster != nil && in.Kind == state.KindMonster:
			*in.Monster() = *saved.Monster
		default:
			return nil, fmt.Errorf("%w: instance %d has the wrong kind", ErrMismatch, i)
		}

		if in.Contents, err = claim(saved.Contents); err != nil {
			return nil, err
		}
		for _, h := range in.Contents {
			c := s.Get(h)
			c.Parent = state.Handle(i)
			if in.Kind == state.KindMonster {
				c.Location = types.LocationWithMonster
			} else {
				c.Location = types.LocationInObject
			}
		}
	}

	for h, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: instance %d is nowhere", ErrMismatch, h)
		}
	}
	for h := range s.Instances {
		in := s.Get(state.Handle(h))
		if in.Parent != state.NoHandle && s.Contains(state.Handle(h), in.Parent) {
			return nil, fmt.Errorf("%w: instance %d contains itself", ErrMismatch, h)
		}
	}
	return s, nil
}

// Save serializes save data to YAML.
func Save(sd *SaveData) ([]byte, error) {
	sd.Version = Version
	return yaml.Marshal(sd)
}

// Load deserializes YAML into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := yaml.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parsing save: %w", err)
	}
	if sd.Version != Version {
		return nil, fmt.Errorf("unsupported save version %d", sd.Version)
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

func handles(list []state.Handle) []int {
	out := make([]int, len(list))
	for i, h := range list {
		out[i] = int(h)
	}
	return out
}
