package state

import (
	"testing"

	"github.com/nathoo/aventuro/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func blockedExits() [types.NDirections]int {
	var m [types.NDirections]int
	for i := range m {
		m[i] = types.Blocked
	}
	return m
}

func testDef() *types.Definition {
	obj := func(name string, loc types.Location, size, weight, container int) types.Object {
		return types.Object{
			Movable: types.Movable{
				Name:       name,
				Pronoun:    types.PronounAnimal,
				Location:   loc,
				Attributes: types.ObjectPortable,
			},
			Size:          size,
			Weight:        weight,
			ContainerSize: container,
			EnterRoom:     types.Blocked,
		}
	}
	return &types.Definition{
		Name: "Testo",
		Rooms: []types.Room{
			{Name: "Kuirejo", Description: "Granda kuirejo.", Movements: blockedExits(), Attributes: types.RoomLit},
			{Name: "Ĝardeno", Description: "Verda ĝardeno.", Movements: blockedExits()},
		},
		Objects: []types.Object{
			obj("skatol", types.Location{Type: types.LocationRoom, Index: 0}, 5, 2, 10),  // 0
			obj("pilk", types.Location{Type: types.LocationInObject, Index: 0}, 2, 1, 0), // 1
			obj("sak", types.Location{Type: types.LocationCarried}, 3, 1, 8),             // 2
			obj("ŝlosil", types.Location{Type: types.LocationInObject, Index: 2}, 1, 1, 0), // 3
			obj("ŝton", types.Location{Type: types.LocationNowhere}, 1, 9, 0),             // 4
			obj("ost", types.Location{Type: types.LocationWithMonster, Index: 0}, 1, 1, 0), // 5
			obj("flor", types.Location{Type: types.LocationRoom, Index: 1}, 1, 1, 0),      // 6
		},
		Monsters: []types.Monster{
			{Movable: types.Movable{Name: "hund", Pronoun: types.PronounAnimal,
				Location: types.Location{Type: types.LocationRoom, Index: 0}}},
		},
		GameAttributes: 1 << 5,
	}
}

func TestNew_Placement(t *testing.T) {
	s := New(testDef())

	require.Len(t, s.Instances, 8)
	assert.Equal(t, []Handle{0, 7}, s.Rooms[0].Contents)
	assert.Equal(t, []Handle{6}, s.Rooms[1].Contents)
	assert.Equal(t, []Handle{2}, s.Carried)
	assert.Equal(t, []Handle{4}, s.Nowhere)
	assert.Equal(t, []Handle{1}, s.Get(0).Contents)
	assert.Equal(t, []Handle{3}, s.Get(2).Contents)
	assert.Equal(t, []Handle{5}, s.Get(7).Contents)
	assert.Equal(t, types.LocationWithMonster, s.Get(5).Location)
	assert.Equal(t, types.LocationInObject, s.Get(1).Location)
	assert.Equal(t, uint64(1<<5), s.PlayerAttributes)
	assert.Equal(t, types.RoomLit, s.Rooms[0].Attributes)
}

func TestNew_DoesNotShareDefinition(t *testing.T) {
	def := testDef()
	s := New(def)
	s.Get(0).Name = "kest"
	s.Get(0).Object().Size = 99

	assert.Equal(t, "skatol", def.Objects[0].Name)
	assert.Equal(t, 5, def.Objects[0].Size)

	s2 := New(def)
	assert.Equal(t, "skatol", s2.Get(0).Name)
}

func TestPayload(t *testing.T) {
	s := New(testDef())
	assert.NotNil(t, s.Get(0).Object())
	assert.Nil(t, s.Get(0).Monster())
	assert.NotNil(t, s.Get(s.MonsterHandle(0)).Monster())
	assert.Nil(t, s.Get(s.MonsterHandle(0)).Object())
}

func TestIsPresent(t *testing.T) {
	s := New(testDef())

	tests := []struct {
		name string
		h    Handle
		want bool
	}{
		{"in current room", 0, true},
		{"inside open box in room", 1, true},
		{"carried", 2, true},
		{"inside carried bag", 3, true},
		{"nowhere", 4, false},
		{"with monster in room", 5, true},
		{"in other room", 6, false},
		{"monster", 7, true},
	}
	for _, tt := range tests {
		if got := s.IsPresent(tt.h); got != tt.want {
			t.Errorf("%s: IsPresent(%d) = %v, want %v", tt.name, tt.h, got, tt.want)
		}
	}
}

func TestIsPresent_ClosedContainer(t *testing.T) {
	s := New(testDef())
	s.Get(0).Attributes |= types.ObjectClosed
	assert.False(t, s.IsPresent(1))
	assert.True(t, s.IsPresent(0))
}

func TestIsPresent_OtherRoom(t *testing.T) {
	s := New(testDef())
	s.CurrentRoom = 1
	assert.False(t, s.IsPresent(0))
	assert.False(t, s.IsPresent(1))
	assert.True(t, s.IsPresent(6))
	assert.True(t, s.IsPresent(3))
}

func TestMoves(t *testing.T) {
	s := New(testDef())

	s.MoveToCarried(1)
	assert.Empty(t, s.Get(0).Contents)
	assert.Equal(t, []Handle{2, 1}, s.Carried)
	assert.Equal(t, NoHandle, s.Get(1).Parent)

	s.MoveToRoom(1, 1)
	assert.Equal(t, []Handle{2}, s.Carried)
	assert.Equal(t, []Handle{6, 1}, s.Rooms[1].Contents)
	assert.Equal(t, 1, s.Get(1).Room)

	s.MoveToNowhere(1)
	assert.Equal(t, []Handle{6}, s.Rooms[1].Contents)
	assert.Equal(t, []Handle{4, 1}, s.Nowhere)

	require.NoError(t, s.MoveInto(1, 2))
	assert.Equal(t, []Handle{4}, s.Nowhere)
	assert.Equal(t, []Handle{3, 1}, s.Get(2).Contents)
	assert.Equal(t, Handle(2), s.Get(1).Parent)
}

func TestMoveInto_RejectsCycle(t *testing.T) {
	s := New(testDef())

	// The bag (2) holds the key (3); putting the bag in the key is a cycle.
	err := s.MoveInto(2, 3)
	assert.ErrorIs(t, err, ErrCycle)
	assert.Equal(t, []Handle{2}, s.Carried)
	assert.Equal(t, []Handle{3}, s.Get(2).Contents)
	assert.Equal(t, types.LocationCarried, s.Get(2).Location)

	assert.ErrorIs(t, s.MoveInto(0, 0), ErrCycle)

	// A deeper chain: box(0) ⊃ ball(1); put the bag in the ball then the
	// box in the bag.
	require.NoError(t, s.MoveInto(2, 1))
	assert.ErrorIs(t, s.MoveInto(0, 2), ErrCycle)
	assert.Equal(t, types.LocationRoom, s.Get(0).Location)
}

func TestWeights(t *testing.T) {
	s := New(testDef())
	assert.Equal(t, 2, s.Weight(2))
	assert.Equal(t, 2, s.CarriedWeight())
	assert.Equal(t, 2, s.ContentsSize(0))
	assert.Equal(t, 1, s.ContentsSize(2))
}

func TestRoomOf(t *testing.T) {
	s := New(testDef())
	assert.Equal(t, 0, s.RoomOf(1))
	assert.Equal(t, 0, s.RoomOf(5))
	assert.Equal(t, 1, s.RoomOf(6))
	assert.Equal(t, -1, s.RoomOf(3))
	assert.Equal(t, -1, s.RoomOf(4))
}

// checkInvariants verifies that every instance is in exactly one list and
// that no instance contains itself.
func checkInvariants(t *rapid.T, s *State) {
	seen := map[Handle]int{}
	for _, r := range s.Rooms {
		for _, h := range r.Contents {
			seen[h]++
		}
	}
	for _, h := range s.Carried {
		seen[h]++
	}
	for _, h := range s.Nowhere {
		seen[h]++
	}
	for i := range s.Instances {
		for _, h := range s.Instances[i].Contents {
			seen[h]++
		}
	}
	for h := range s.Instances {
		if seen[Handle(h)] != 1 {
			t.Fatalf("instance %d is in %d lists", h, seen[Handle(h)])
		}
		in := s.Get(Handle(h))
		if in.Location == types.LocationInObject || in.Location == types.LocationWithMonster {
			if s.Contains(Handle(h), in.Parent) {
				t.Fatalf("instance %d is inside itself", h)
			}
		}
	}
}

func TestContainment_Acyclic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(testDef())
		n := len(s.Instances)
		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			h := Handle(rapid.IntRange(0, n-1).Draw(t, "h"))
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				s.MoveToRoom(h, rapid.IntRange(0, 1).Draw(t, "room"))
			case 1:
				s.MoveToCarried(h)
			case 2:
				s.MoveToNowhere(h)
			case 3:
				parent := Handle(rapid.IntRange(0, n-1).Draw(t, "parent"))
				wasLoc := s.Get(h).Location
				if err := s.MoveInto(h, parent); err != nil {
					if s.Get(h).Location != wasLoc {
						t.Fatalf("rejected move changed location of %d", h)
					}
				}
			}
			checkInvariants(t, s)
		}
	})
}
