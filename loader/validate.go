package loader

import (
	"github.com/nathoo/aventuro/builder"
	"github.com/nathoo/aventuro/types"
	"go.uber.org/zap"
)

// validateLocations is the second pass over the movables of a binary file.
// A location index can only be checked once every list has been read,
// because its range depends on which list it refers to.
func (l *avtLoader) validateLocations() error {
	d := l.def
	check := func(loc *types.Location) error {
		n := loc.Index
		switch loc.Type {
		case types.LocationCarried, types.LocationNowhere:
			loc.Index = 0
		case types.LocationRoom:
			if n < 1 || n > len(d.Rooms) {
				return loadErrorf(InvalidRoom, "An invalid room number was referenced")
			}
			loc.Index = n - 1
		case types.LocationWithMonster:
			if n < 1 || n > len(d.Monsters) {
				return loadErrorf(InvalidMonster, "An invalid monster number was referenced")
			}
			loc.Index = n - 1
		case types.LocationInObject:
			if n < 1 || n > len(d.Objects) {
				return loadErrorf(InvalidObject, "An invalid object number was referenced")
			}
			loc.Index = n - 1
		}
		return nil
	}

	for i := range d.Objects {
		if err := check(&d.Objects[i].Location); err != nil {
			return err
		}
	}
	for i := range d.Monsters {
		if err := check(&d.Monsters[i].Location); err != nil {
			return err
		}
	}
	return checkContainment(d)
}

// checkContainment rejects a definition where following the "in object" and
// "with monster" links from some movable never reaches a room, the player
// or nowhere.
func checkContainment(d *types.Definition) error {
	nObj := len(d.Objects)
	parent := func(h int) (int, bool) {
		var loc types.Location
		if h < nObj {
			loc = d.Objects[h].Location
		} else {
			loc = d.Monsters[h-nObj].Location
		}
		switch loc.Type {
		case types.LocationInObject:
			return loc.Index, true
		case types.LocationWithMonster:
			return nObj + loc.Index, true
		}
		return 0, false
	}

	total := nObj + len(d.Monsters)
	for h := 0; h < total; h++ {
		cur, steps := h, 0
		for {
			p, ok := parent(cur)
			if !ok {
				break
			}
			if steps++; steps > total {
				if h < nObj {
					return loadErrorf(InvalidObject, "Object %d is inside itself", h+1)
				}
				return loadErrorf(InvalidMonster, "Monster %d is inside itself", h-nObj+1)
			}
			cur = p
		}
	}
	return nil
}

// validate runs the integrity checks shared by every format on a loaded
// definition and logs the warnings.
func validate(def *types.Definition, log *zap.Logger) error {
	if err := builder.Validate(def); err != nil {
		return err
	}
	for _, w := range builder.Warnings(def) {
		log.Warn("game warning", zap.String("warning", w))
	}
	return nil
}
