package loader

import (
	"errors"
	"testing"

	"github.com/nathoo/aventuro/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inObject(i int) types.Location { return types.Location{Type: types.LocationInObject, Index: i} }
func withMonster(i int) types.Location { return types.Location{Type: types.LocationWithMonster, Index: i} }

func TestCheckContainment(t *testing.T) {
	room := types.Location{Type: types.LocationRoom}
	tests := []struct {
		name     string
		objects  []types.Location
		monsters []types.Location
		kind     ErrorKind
		ok       bool
	}{
		{"flat", []types.Location{room, room}, []types.Location{room}, 0, true},
		{"nested", []types.Location{room, inObject(0), inObject(1), withMonster(0)}, []types.Location{room}, 0, true},
		{"carried chain", []types.Location{{Type: types.LocationCarried}, inObject(0)}, nil, 0, true},
		{"object in itself", []types.Location{inObject(0)}, nil, InvalidObject, false},
		{"object loop", []types.Location{room, inObject(2), inObject(1)}, nil, InvalidObject, false},
		{"monster loop", nil, []types.Location{withMonster(1), withMonster(0)}, InvalidMonster, false},
		{"mixed loop", []types.Location{withMonster(0)}, []types.Location{inObject(0)}, InvalidObject, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			def := &types.Definition{}
			for _, loc := range tt.objects {
				def.Objects = append(def.Objects, types.Object{Movable: types.Movable{Location: loc}})
			}
			for _, loc := range tt.monsters {
				def.Monsters = append(def.Monsters, types.Monster{Movable: types.Movable{Location: loc}})
			}

			err := checkContainment(def)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var le *LoadError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.kind, le.Kind)
			assert.Contains(t, le.Msg, "is inside itself")
		})
	}
}
