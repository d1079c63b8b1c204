package effects

import (
	"testing"

	"github.com/nathoo/aventuro/engine/events"
	"github.com/nathoo/aventuro/engine/rules"
	"github.com/nathoo/aventuro/engine/state"
	"github.com/nathoo/aventuro/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	def   *types.Definition
	s     *state.State
	moves []int
	verbs []string
}

func (f *fakeHost) State() *state.State           { return f.s }
func (f *fakeHost) Definition() *types.Definition { return f.def }
func (f *fakeHost) MovePlayer(room int) {
	f.moves = append(f.moves, room)
	f.s.CurrentRoom = room
}
func (f *fakeHost) RunVerb(verb string, _ rules.Bindings) { f.verbs = append(f.verbs, verb) }

func testSetup() (*fakeHost, rules.Bindings) {
	blocked := [types.NDirections]int{-1, -1, -1, -1, -1, -1, -1}
	here := types.Location{Type: types.LocationRoom, Index: 0}
	def := &types.Definition{
		Rooms: []types.Room{
			{Name: "Halo", Movements: blocked},
			{Name: "Kelo", Movements: blocked},
		},
		Objects: []types.Object{
			{ // 0
				Movable: types.Movable{Name: "ov", Adjective: "blank", Description: "Ovo.", Location: here},
				Weight:  1, Shots: 2, EnterRoom: -1,
			},
			{ // 1
				Movable: types.Movable{Name: "kokid", Adjective: "flav", Description: "Kokido.", Location: types.Location{Type: types.LocationNowhere}, Attributes: types.ObjectPortable},
				Weight:  3, EnterRoom: -1,
			},
		},
		Monsters: []types.Monster{
			{Movable: types.Movable{Name: "vulp", Location: here}, Lives: 1},
			{Movable: types.Movable{Name: "lup", Location: types.Location{Type: types.LocationNowhere}}, Lives: 3},
		},
		Verbs: []types.Verb{{Name: "elkov"}, {Name: "kant"}},
	}
	h := &fakeHost{def: def, s: state.New(def)}
	return h, rules.Bindings{Object: 0, Tool: state.NoHandle, Monster: h.s.MonsterHandle(0)}
}

func act(k types.ActionKind, data int) types.Action {
	return types.Action{Kind: k, Data: data}
}

func TestApply_MovePlayer(t *testing.T) {
	h, b := testSetup()
	log := &events.Log{}
	Apply(h, types.RoleRoom, act(types.ActMove, 1), b, log)
	assert.Equal(t, []int{1}, h.moves)
	assert.Equal(t, 1, h.s.CurrentRoom)
	assert.Equal(t, types.LocationRoom, h.s.Get(0).Location, "object stays put")
}

func TestApply_MoveInstance(t *testing.T) {
	h, b := testSetup()
	log := &events.Log{}
	Apply(h, types.RoleObject, act(types.ActMove, 1), b, log)
	assert.Empty(t, h.moves)
	assert.Equal(t, 1, h.s.Get(0).Room)
	assert.Equal(t, 1, log.Count(events.InstanceMoved))
}

func TestApply_Replace(t *testing.T) {
	h, b := testSetup()
	log := &events.Log{}
	Apply(h, types.RoleObject, act(types.ActReplaceObject, 1), b, log)

	assert.Equal(t, types.LocationNowhere, h.s.Get(0).Location)
	assert.True(t, h.s.IsPresent(1))
	assert.Contains(t, h.s.Rooms[0].Contents, state.Handle(1))
}

func TestApply_ReplaceUnbound(t *testing.T) {
	h, _ := testSetup()
	Apply(h, types.RoleTool, act(types.ActReplaceMonster, 1), rules.NoBindings, &events.Log{})
	assert.True(t, h.s.IsPresent(h.s.MonsterHandle(1)))
	assert.True(t, h.s.IsPresent(0))
}

func TestApply_Copy(t *testing.T) {
	h, b := testSetup()
	Apply(h, types.RoleObject, act(types.ActCopyObject, 1), b, &events.Log{})

	in := h.s.Get(0)
	assert.Equal(t, "kokid", in.Name)
	assert.Equal(t, "flav", in.Adjective)
	assert.Equal(t, "Kokido.", in.Description)
	assert.Equal(t, types.ObjectPortable, in.Attributes)
	assert.Equal(t, 3, in.Object().Weight)
	assert.Equal(t, types.LocationRoom, in.Location, "location is not copied")

	// The copy is independent of its source.
	in.Object().Weight = 7
	assert.Equal(t, 3, h.s.Get(1).Object().Weight)
}

func TestApply_CopyAcrossKinds(t *testing.T) {
	h, b := testSetup()
	Apply(h, types.RoleMonster, act(types.ActCopyObject, 0), b, &events.Log{})
	m := h.s.Get(b.Monster)
	assert.Equal(t, "ov", m.Name)
	require.NotNil(t, m.Monster())
	assert.Equal(t, 1, m.Monster().Lives)
}

func TestApply_Stats(t *testing.T) {
	tests := []struct {
		kind types.ActionKind
		get  func(*state.ObjectStats) int
	}{
		{types.ActShots, func(o *state.ObjectStats) int { return o.Shots }},
		{types.ActWeight, func(o *state.ObjectStats) int { return o.Weight }},
		{types.ActSize, func(o *state.ObjectStats) int { return o.Size }},
		{types.ActContainerSize, func(o *state.ObjectStats) int { return o.ContainerSize }},
		{types.ActBurnTime, func(o *state.ObjectStats) int { return o.BurnTime }},
	}
	for _, tt := range tests {
		h, b := testSetup()
		Apply(h, types.RoleObject, act(tt.kind, 9), b, &events.Log{})
		if got := tt.get(h.s.Get(0).Object()); got != 9 {
			t.Errorf("action %d: stat = %d, want 9", tt.kind, got)
		}
	}
}

func TestApply_Attributes(t *testing.T) {
	h, b := testSetup()
	log := &events.Log{}

	Apply(h, types.RoleObject, act(types.ActSetAttribute, 15), b, log)
	assert.NotZero(t, h.s.Get(0).Attributes&(1<<15))
	Apply(h, types.RoleObject, act(types.ActUnsetAttribute, 15), b, log)
	assert.Zero(t, h.s.Get(0).Attributes&(1<<15))

	Apply(h, types.RoleRoom, act(types.ActSetAttribute, 5), b, log)
	assert.Equal(t, uint32(1<<5), h.s.Rooms[0].Attributes)

	Apply(h, types.RoleTool, act(types.ActSetRoomAttribute, 6), b, log)
	assert.Equal(t, uint32(1<<5|1<<6), h.s.Rooms[0].Attributes)
	Apply(h, types.RoleTool, act(types.ActUnsetRoomAttribute, 5), b, log)
	assert.Equal(t, uint32(1<<6), h.s.Rooms[0].Attributes)

	Apply(h, types.RoleRoom, act(types.ActSetPlayerAttribute, 50), b, log)
	assert.Equal(t, uint64(1<<50), h.s.PlayerAttributes)
	Apply(h, types.RoleRoom, act(types.ActUnsetPlayerAttribute, 50), b, log)
	assert.Zero(t, h.s.PlayerAttributes)

	// Unbound tool slot: nothing changes.
	Apply(h, types.RoleTool, act(types.ActSetAttribute, 20), b, log)
	assert.Equal(t, uint32(1<<6), h.s.Rooms[0].Attributes)

	assert.Equal(t, 7, log.Count(events.AttributeChanged))
}

func TestApply_CarryAndNowhere(t *testing.T) {
	h, b := testSetup()
	Apply(h, types.RoleObject, act(types.ActCarry, 0), b, &events.Log{})
	assert.True(t, h.s.IsCarried(0))

	Apply(h, types.RoleMonster, act(types.ActNowhere, 0), b, &events.Log{})
	assert.Equal(t, types.LocationNowhere, h.s.Get(b.Monster).Location)
}

func TestApply_Rename(t *testing.T) {
	h, b := testSetup()
	Apply(h, types.RoleObject, act(types.ActRename, 1), b, &events.Log{})
	assert.Equal(t, "kokid", h.s.Get(0).Name)
	assert.Equal(t, "blank", h.s.Get(0).Adjective)

	Apply(h, types.RoleObject, act(types.ActReadjective, 1), b, &events.Log{})
	assert.Equal(t, "flav", h.s.Get(0).Adjective)

	// In the monster slot the operand names a monster.
	Apply(h, types.RoleMonster, act(types.ActRename, 1), b, &events.Log{})
	assert.Equal(t, "lup", h.s.Get(b.Monster).Name)
}

func TestApply_Trigger(t *testing.T) {
	h, b := testSetup()
	Apply(h, types.RoleRoom, act(types.ActTrigger, 1), b, &events.Log{})
	Apply(h, types.RoleRoom, act(types.ActTrigger, 9), b, &events.Log{})
	assert.Equal(t, []string{"kant"}, h.verbs)
}
