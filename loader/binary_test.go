package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/aventuro/engine"
	"github.com/nathoo/aventuro/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// encode converts text to the game's code page.
func encode(s string) []byte {
	rev := map[rune]byte{}
	for b, r := range codePage {
		rev[r] = b
	}
	var out []byte
	for _, r := range s {
		if b, ok := rev[r]; ok {
			out = append(out, b)
		} else {
			out = append(out, byte(r))
		}
	}
	return out
}

func putStr(rec []byte, off int, s string) {
	enc := encode(s)
	rec[off] = byte(len(enc))
	copy(rec[off+1:], enc)
}

// textPages lays out strings as 128-byte pages, splitting long ones.
func textPages(strs []string) []byte {
	var out []byte
	for _, s := range strs {
		enc := encode(s)
		for {
			page := make([]byte, textChunkSize)
			if len(enc) <= textChunkSize-2 {
				page[0] = byte(len(enc) + 1)
				copy(page[1:], enc)
				page[len(enc)+1] = '@'
				out = append(out, page...)
				break
			}
			page[0] = textChunkSize - 1
			copy(page[1:], enc[:textChunkSize-1])
			enc = enc[textChunkSize-1:]
			out = append(out, page...)
		}
	}
	return out
}

// avtFile assembles a binary game in memory.
type avtFile struct {
	buf     []byte
	strings []string
}

func newAVTFile() *avtFile {
	a := &avtFile{buf: make([]byte, textOffset)}
	copy(a.buf, Magic)
	return a
}

func (a *avtFile) fill(s section, recs ...[]byte) {
	for i, rec := range recs {
		copy(a.buf[int(s.offset)+i*s.size:], rec)
	}
}

func (a *avtFile) bytes() []byte {
	out := append([]byte(nil), a.buf...)
	for i := range a.strings {
		out[pointersOffset+pointerSize*i] = byte(i + 1)
		out[pointersOffset+pointerSize*i+2] = 0x10
	}
	return append(out, textPages(a.strings)...)
}

func le16(n int) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(n))
	return b
}

func roomRec(name string, desc int, exits [types.NDirections]byte) []byte {
	rec := make([]byte, roomSection.size)
	putStr(rec, 0, name)
	copy(rec[21:], le16(desc))
	copy(rec[24:], exits[:])
	return rec
}

func directionRec(name string, desc int, src, target byte) []byte {
	rec := make([]byte, directionSection.size)
	putStr(rec, 0, name)
	copy(rec[directionDescription:], le16(desc))
	rec[directionSource] = src
	rec[directionTarget] = target
	return rec
}

func movableRec(size int, name, adj string, pronoun types.Pronoun) []byte {
	rec := make([]byte, size)
	putStr(rec, 0, name)
	putStr(rec, 21, adj)
	rec[44] = byte(pronoun)
	return rec
}

func objectRec(name, adj string, locType, loc, inside0, inside1 byte) []byte {
	rec := movableRec(objectSection.size, name, adj, types.PronounAnimal)
	rec[58], rec[59] = locType, loc
	rec[60], rec[61] = inside0, inside1
	return rec
}

func ruleRec(verb byte, conds, acts [types.NRoles][2]byte, msg, points int) []byte {
	rec := make([]byte, ruleSection.size)
	rec[0] = verb
	for i, c := range conds {
		rec[1+2*i], rec[2+2*i] = c[0], c[1]
	}
	copy(rec[9:], le16(msg))
	for i, a := range acts {
		rec[11+2*i], rec[12+2*i] = a[0], a[1]
	}
	rec[19] = byte(points)
	return rec
}

func verbRec(word string) []byte {
	rec := make([]byte, verbSection.size)
	putStr(rec, 0, word)
	return rec
}

func aliasRec(phrase string, kind, index byte) []byte {
	rec := make([]byte, aliasSection.size)
	putStr(rec, 0, phrase)
	rec[21], rec[22] = kind, index
	return rec
}

// Absolute offsets of interesting bytes in validAVT.
const (
	room1North     = 0x0101 + 24
	object1        = 0x43ff
	object2        = 0x43ff + 62
	object3        = 0x43ff + 2*62
	monster1       = 0x8c43
	alias1         = 0x6853
	rule1          = 0x9cf6
	rule2          = 0x9cf6 + 20
	direction1     = 0x132b
	attributeCount = attributesOffset
)

// validAVT returns a small well-formed game: two rooms, five objects, a
// monster, two aliases, two verbs and two rules.
func validAVT() []byte {
	a := newAVTFile()
	a.strings = []string{
		"Vi staras en halo.",
		"Malhela kelo.",
		"Vi malfermas la pordon.",
		"La lampo ekbrilas!",
		"Bonvenon!",
		"Farita en Parizo.",
	}

	a.fill(roomSection,
		roomRec("Halo", 1, [7]byte{2}),
		roomRec("Kelo", 2, [7]byte{0, 0, 1}),
	)

	// Deliberately not grouped by source room.
	a.fill(directionSection,
		directionRec("truo", 0, 2, 1),
		directionRec("pordo", 3, 1, 2),
		directionRec("fenestro", 0, 1, 2),
	)

	lamp := objectRec("lampo", "malnova", locInRoom, 1, insideNormal, 0)
	lamp[45], lamp[46], lamp[47] = 3, 2, 1
	copy(lamp[52:], le16(6))
	lamp[56] = 40
	a.fill(objectSection,
		lamp,
		objectRec("skatolo", "", locInRoom, 1, insideContainer, 5),
		objectRec("ŝlosilo", "", locInObject, 2, insideNormal, 0),
		objectRec("osto", "", locNowhere, 0, insideNormal, 0),
		objectRec("ŝranko", "", locInRoom, 1, insideEnter, 2),
	)

	dog := movableRec(monsterSection.size, "hundo", "", types.PronounMan)
	dog[45], dog[46], dog[47] = 4, 1, 2
	copy(dog[48:], []byte{0xfe, 0xff})
	copy(dog[50:], []byte{3, 4, 5, 6, 7})
	dog[55], dog[56] = locInRoom, 2
	a.fill(monsterSection, dog)

	a.fill(aliasSection,
		aliasRec("besto", locWithMonster, 1),
		aliasRec("lanternoj", locInObject, 1),
	)

	a.fill(verbSection, verbRec("frotu"), verbRec("boji"))

	var conds, acts [types.NRoles][2]byte
	conds[types.RoleObject] = [2]byte{byte(types.CondObjectIs), 1}
	conds[types.RoleRoom] = [2]byte{byte(types.CondNotRoomAttribute), 0}
	acts[types.RoleObject] = [2]byte{byte(types.ActSetAttribute), 4}
	r1 := ruleRec(1, conds, acts, 4, 2)

	conds, acts = [types.NRoles][2]byte{}, [types.NRoles][2]byte{}
	conds[types.RoleMonster] = [2]byte{byte(types.CondMonsterIs), 1}
	acts[types.RoleMonster] = [2]byte{opCreateObject, 4}
	acts[types.RoleRoom] = [2]byte{byte(types.ActTrigger), 1}
	r2 := ruleRec(2, conds, acts, 0, 0)
	a.fill(ruleSection, r1, r2)

	// One object row (portable), no monster rows, three room rows.
	attrs := a.buf[attributesOffset:]
	attrs[0], attrs[1], attrs[2] = 1, 0, 3
	attrs[3] = 0x05 // objects 1 and 3
	roomRows := 3 + objectRowSize
	attrs[roomRows] = 0x01               // lit: room 1
	attrs[roomRows+2*roomRowSize] = 0x02 // game over: room 2

	info := a.buf[infoOffset:]
	putStr(info, infoName, "La halo")
	putStr(info, infoAuthor, "Iu")
	putStr(info, infoYear, "2024")
	copy(info[infoIntro:], le16(5))
	copy(info[infoAttributes:], []byte{0x03, 0, 0, 0, 0, 0x80})

	return a.bytes()
}

func loadBytes(b []byte) (*types.Definition, error) {
	return LoadAVT(bytes.NewReader(b))
}

func TestLoadAVT_Game(t *testing.T) {
	def, err := loadBytes(validAVT())
	require.NoError(t, err)

	assert.Equal(t, "La halo", def.Name)
	assert.Equal(t, "Iu", def.Author)
	assert.Equal(t, "2024", def.Year)
	assert.Equal(t, "Bonvenon!", def.Introduction)
	assert.Equal(t, uint64(0x800000000003), def.GameAttributes)
	assert.Len(t, def.Strings, 6)

	require.Len(t, def.Rooms, 2)
	hall, cellar := def.Rooms[0], def.Rooms[1]
	assert.Equal(t, "Halo", hall.Name)
	assert.Equal(t, "Vi staras en halo.", hall.Description)
	assert.Equal(t, [types.NDirections]int{1, -1, -1, -1, -1, -1, -1}, hall.Movements)
	assert.Equal(t, 0, cellar.Movements[types.DirSouth])
	assert.Equal(t, []types.Direction{
		{Name: "pord", Description: "Vi malfermas la pordon.", Target: 1},
		{Name: "fenestr", Target: 1},
	}, hall.Directions)
	assert.Equal(t, []types.Direction{{Name: "tru", Target: 0}}, cellar.Directions)
	assert.Equal(t, types.RoomLit, hall.Attributes)
	assert.Equal(t, types.RoomGameOver, cellar.Attributes)

	require.Len(t, def.Objects, 5)
	lamp := def.Objects[0]
	assert.Equal(t, "lamp", lamp.Name)
	assert.Equal(t, "malnov", lamp.Adjective)
	assert.Equal(t, types.PronounAnimal, lamp.Pronoun)
	assert.Equal(t, 3, lamp.Points)
	assert.Equal(t, 2, lamp.Weight)
	assert.Equal(t, 1, lamp.Size)
	assert.Equal(t, 40, lamp.BurnTime)
	assert.Equal(t, "Farita en Parizo.", lamp.ReadText)
	assert.Equal(t, types.Location{Type: types.LocationRoom, Index: 0}, lamp.Location)
	assert.Equal(t, types.ObjectPortable, lamp.Attributes)
	assert.Equal(t, types.Blocked, lamp.EnterRoom)

	assert.Equal(t, 5, def.Objects[1].ContainerSize)
	assert.Equal(t, uint32(0), def.Objects[1].Attributes)
	assert.Equal(t, "ŝlosil", def.Objects[2].Name)
	assert.Equal(t, types.Location{Type: types.LocationInObject, Index: 1}, def.Objects[2].Location)
	assert.Equal(t, types.ObjectPortable, def.Objects[2].Attributes)
	assert.Equal(t, types.LocationNowhere, def.Objects[3].Location.Type)
	assert.Equal(t, 1, def.Objects[4].EnterRoom)

	require.Len(t, def.Monsters, 1)
	dog := def.Monsters[0]
	assert.Equal(t, "hund", dog.Name)
	assert.Equal(t, "", dog.Adjective)
	assert.Equal(t, types.PronounMan, dog.Pronoun)
	assert.Equal(t, 3, dog.DeadObject)
	assert.Equal(t, 1, dog.Hunger)
	assert.Equal(t, 2, dog.Thirst)
	assert.Equal(t, -2, dog.Aggression)
	assert.Equal(t, []int{3, 4, 5, 6, 7}, []int{dog.Attack, dog.Protection, dog.Lives, dog.Escape, dog.Wander})
	assert.Equal(t, types.Location{Type: types.LocationRoom, Index: 1}, dog.Location)

	assert.Equal(t, []types.Alias{
		{Name: "best", Kind: types.AliasMonster, Index: 0},
		{Name: "lantern", Plural: true, Kind: types.AliasObject, Index: 0},
	}, def.Aliases)

	assert.Equal(t, []types.Verb{{Name: "frot", Rules: []int{0}}, {Name: "boj", Rules: []int{1}}}, def.Verbs)

	rub := def.Rules[0]
	assert.Equal(t, "frot", rub.Verb)
	assert.Equal(t, "La lampo ekbrilas!", rub.Message)
	assert.Equal(t, 2, rub.Points)
	assert.Equal(t, types.Condition{Kind: types.CondObjectIs, Data: 0}, rub.Conditions[types.RoleObject])
	assert.Equal(t, types.Condition{Kind: types.CondNotRoomAttribute, Data: 1}, rub.Conditions[types.RoleRoom])
	assert.Equal(t, types.Action{Kind: types.ActSetAttribute, Data: 5}, rub.Actions[types.RoleObject])

	bark := def.Rules[1]
	assert.Equal(t, "", bark.Message)
	assert.Equal(t, types.Condition{Kind: types.CondMonsterIs, Data: 0}, bark.Conditions[types.RoleMonster])
	assert.Equal(t, types.Action{Kind: types.ActReplaceObject, Data: 3}, bark.Actions[types.RoleMonster])
	assert.Equal(t, types.Action{Kind: types.ActTrigger, Data: 0}, bark.Actions[types.RoleRoom])
	assert.Equal(t, types.Condition{}, bark.Conditions[types.RoleTool])
}

func TestLoadAVT_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b []byte) []byte
		kind   ErrorKind
	}{
		{"no rooms", func(b []byte) []byte { b[0x0101] = 0; return b }, InvalidRoom},
		{"exit past last room", func(b []byte) []byte { b[room1North] = 3; return b }, InvalidRoom},
		{"direction to room 0", func(b []byte) []byte { b[direction1+directionTarget] = 0; return b }, InvalidDirection},
		{"direction from missing room", func(b []byte) []byte { b[direction1+directionSource] = 9; return b }, InvalidDirection},
		{"bad description", func(b []byte) []byte { b[0x0101+21] = 99; return b }, InvalidStringNum},
		{"missing description", func(b []byte) []byte { b[0x0101+21] = 0; return b }, InvalidStringNum},
		{"name too long", func(b []byte) []byte { b[0x0101] = 21; return b }, InvalidString},
		{"name with sentinel", func(b []byte) []byte { b[0x0101+1] = '@'; return b }, InvalidString},
		{"name with control byte", func(b []byte) []byte { b[0x0101+1] = 0x07; return b }, InvalidString},
		{"pronoun", func(b []byte) []byte { b[object1+44] = 4; return b }, InvalidPronoun},
		{"location type", func(b []byte) []byte { b[object1+58] = 0x05; return b }, InvalidLocationType},
		{"insideness", func(b []byte) []byte { b[object1+60] = 0x07; return b }, InvalidInsideness},
		{"enter missing room", func(b []byte) []byte { b[object1+60], b[object1+61] = insideEnter, 3; return b }, InvalidInsideness},
		{"in room 0", func(b []byte) []byte { b[object1+59] = 0; return b }, InvalidRoom},
		{"in missing object", func(b []byte) []byte { b[object3+59] = 6; return b }, InvalidObject},
		{"with missing monster", func(b []byte) []byte { b[object1+58], b[object1+59] = locWithMonster, 2; return b }, InvalidMonster},
		{"containment cycle", func(b []byte) []byte { b[object2+58], b[object2+59] = locInObject, 3; return b }, InvalidObject},
		{"dead object", func(b []byte) []byte { b[monster1+45] = 0; return b }, InvalidObject},
		{"alias type", func(b []byte) []byte { b[alias1+21] = 0x02; return b }, InvalidAlias},
		{"alias index", func(b []byte) []byte { b[alias1+22] = 2; return b }, InvalidAlias},
		{"alias phrase", func(b []byte) []byte { copy(b[alias1:], []byte{3, 'm', 'i', ' '}); return b }, InvalidAlias},
		{"rule verb", func(b []byte) []byte { b[rule1] = 3; return b }, InvalidVerb},
		{"condition opcode", func(b []byte) []byte { b[rule1+3] = 0x40; return b }, InvalidCondition},
		{"condition operand", func(b []byte) []byte { b[rule1+4] = 0; return b }, InvalidCondition},
		{"chance over 100", func(b []byte) []byte { b[rule1+1], b[rule1+2] = byte(types.CondChance), 101; return b }, InvalidCondition},
		{"attribute past word", func(b []byte) []byte { b[rule1+2] = 31; return b }, InvalidCondition},
		{"action opcode", func(b []byte) []byte { b[rule1+13] = 0x30; return b }, InvalidAction},
		{"trigger missing verb", func(b []byte) []byte { b[rule2+12] = 3; return b }, InvalidAction},
		{"rename monster out of range", func(b []byte) []byte {
			b[rule2+17], b[rule2+18] = byte(types.ActRename), 2
			return b
		}, InvalidAction},
		{"too many attributes", func(b []byte) []byte {
			b[attributeCount], b[attributeCount+1], b[attributeCount+2] = 31, 31, 31
			return b
		}, InvalidAttributes},
		{"undeclared string", func(b []byte) []byte { b[pointersOffset+6*pointerSize] = 1; return b }, InvalidString},
		{"truncated page", func(b []byte) []byte { return b[:len(b)-10] }, InvalidString},
		{"empty page", func(b []byte) []byte { b[textOffset] = 0; return b }, InvalidString},
		{"truncated list", func(b []byte) []byte { return b[:0x4400] }, InvalidItemList},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			def, err := loadBytes(tt.mutate(validAVT()))
			require.Error(t, err)
			assert.Nil(t, def)
			var le *LoadError
			require.True(t, errors.As(err, &le), "error %v is not a *LoadError", err)
			assert.Equal(t, tt.kind, le.Kind, "message: %s", le.Msg)
		})
	}
}

func TestLoadAVT_SameRootVerbs(t *testing.T) {
	a := newAVTFile()
	a.strings = []string{"Ĉambro.", "Unua.", "Dua.", "Tria."}
	a.fill(roomSection, roomRec("Ĉambro", 1, [7]byte{}))
	a.fill(verbSection, verbRec("frotu"), verbRec("frotas"), verbRec("boji"))

	var none [types.NRoles][2]byte
	trigger := none
	trigger[types.RoleRoom] = [2]byte{byte(types.ActTrigger), 2}
	a.fill(ruleSection,
		ruleRec(1, none, none, 2, 0),
		ruleRec(2, none, none, 3, 0),
		ruleRec(1, none, none, 4, 0),
		ruleRec(3, none, trigger, 0, 0),
	)

	def, err := loadBytes(a.bytes())
	require.NoError(t, err)
	assert.Equal(t, []types.Verb{
		{Name: "frot", Rules: []int{0, 1, 2}},
		{Name: "boj", Rules: []int{3}},
	}, def.Verbs)
	assert.Equal(t, "frot", def.Rules[1].Verb)
	assert.Equal(t, types.Action{Kind: types.ActTrigger, Data: 0}, def.Rules[3].Actions[types.RoleRoom])

	texts := func(input string) []string {
		eng := engine.New(def, engine.WithSeed(1))
		for _, ok := eng.NextMessage(); ok; _, ok = eng.NextMessage() {
		}
		var out []string
		for _, m := range eng.Step(input).Messages {
			out = append(out, m.Text)
		}
		return out
	}
	assert.Equal(t, []string{"Unua.", "Dua.", "Tria."}, texts("frotu"))
	assert.Equal(t, []string{"Unua.", "Dua.", "Tria."}, texts("frotas"))
	assert.Equal(t, []string{"Unua.", "Dua.", "Tria."}, texts("boju"))
}

func TestLoadAVT_SectionCap(t *testing.T) {
	a := newAVTFile()
	a.strings = []string{"Ĉambro."}
	recs := make([][]byte, roomSection.max)
	for i := range recs {
		recs[i] = roomRec("a", 1, [7]byte{})
	}
	a.fill(roomSection, recs...)

	_, err := loadBytes(a.bytes())
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, InvalidItemList, le.Kind)

	// One fewer leaves room for the terminator.
	a = newAVTFile()
	a.strings = []string{"Ĉambro."}
	a.fill(roomSection, recs[:roomSection.max-1]...)
	def, err := loadBytes(a.bytes())
	require.NoError(t, err)
	assert.Len(t, def.Rooms, roomSection.max-1)
}

func TestLoadAVT_LongString(t *testing.T) {
	long := strings.Repeat("ĉu ", 100) + "fino"
	a := newAVTFile()
	a.strings = []string{long}
	a.fill(roomSection, roomRec("Halo", 1, [7]byte{}))

	def, err := loadBytes(a.bytes())
	require.NoError(t, err)
	assert.Equal(t, long, def.Rooms[0].Description)
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "invalid room", InvalidRoom.String())
	assert.Equal(t, "invalid alias", InvalidAlias.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestDecodeChunk(t *testing.T) {
	s, err := decodeChunk([]byte{0x8e, 'e', 'f', 'o', ' ', 0x80, 'u', ' ', 0x97})
	require.NoError(t, err)
	assert.Equal(t, "Ĉefo ĉu ŭ", s)

	for _, b := range []byte{'@', 0x1f, 0xff, 0x81} {
		_, err := decodeChunk([]byte{'a', b})
		assert.Error(t, err, "byte 0x%02x", b)
	}
}

func TestReadStrings_Property(t *testing.T) {
	alphabet := []rune("abcĉdefgĝhĥijĵklmnoprsŝtuŭvzĈĜĤŜŬ .,!?'-0123456789")
	rapid.Check(t, func(t *rapid.T) {
		strs := rapid.SliceOfN(
			rapid.StringOfN(rapid.SampledFrom(alphabet), 1, 400, -1), 1, 8,
		).Draw(t, "strings")
		for i, s := range strs {
			// Trailing spaces before the sentinel are trimmed by the format.
			strs[i] = strings.TrimRight(s, " ") + "."
		}

		file := append(make([]byte, textOffset), textPages(strs)...)
		got, err := readStrings(bytes.NewReader(file), len(strs))
		if err != nil {
			t.Fatalf("readStrings: %v", err)
		}
		if len(got) != len(strs) {
			t.Fatalf("got %d strings, want %d", len(got), len(strs))
		}
		for i := range strs {
			if got[i] != strs[i] {
				t.Fatalf("string %d = %q, want %q", i, got[i], strs[i])
			}
		}
	})
}
