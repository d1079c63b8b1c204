package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nathoo/aventuro/engine/morph"
	"github.com/nathoo/aventuro/engine/parser"
	"github.com/nathoo/aventuro/types"
	"go.uber.org/zap"
)

// Magic is the marker at the start of every binary game file.
const Magic = "Aventur-programo"

// ErrorKind says which validation rule a binary file broke.
type ErrorKind int

const (
	InvalidString ErrorKind = iota
	InvalidStringNum
	InvalidItemList
	InvalidRoom
	InvalidDirection
	InvalidPronoun
	InvalidLocationType
	InvalidInsideness
	InvalidObject
	InvalidMonster
	InvalidAttributes
	InvalidVerb
	InvalidCondition
	InvalidAction
	InvalidAlias
)

var errorKindNames = [...]string{
	"invalid string",
	"invalid string number",
	"invalid item list",
	"invalid room",
	"invalid direction",
	"invalid pronoun",
	"invalid location type",
	"invalid insideness",
	"invalid object",
	"invalid monster",
	"invalid attributes",
	"invalid verb",
	"invalid condition",
	"invalid action",
	"invalid alias",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// LoadError is returned for a binary file that is structurally or
// referentially broken.
type LoadError struct {
	Kind ErrorKind
	Msg  string
}

func (e *LoadError) Error() string { return e.Msg }

func loadErrorf(kind ErrorKind, format string, args ...any) error {
	return &LoadError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// section is a zero-terminated list of fixed-size records.
type section struct {
	offset int64
	size   int
	max    int
}

var (
	roomSection      = section{0x0101, 31, 150}
	directionSection = section{0x132b, 25, 500}
	objectSection    = section{0x43ff, 62, 150}
	aliasSection     = section{0x6853, 23, 400}
	monsterSection   = section{0x8c43, 57, 75}
	ruleSection      = section{0x9cf6, 20, 200}
	verbSection      = section{0xbc41, 11, 199}
)

const (
	attributesOffset = 0xc51a
	attributesSize   = 966
	infoOffset       = 0xc8e0
	infoSize         = 416
)

// Byte positions inside a direction record.
const (
	directionDescription = 21
	directionSource      = 23
	directionTarget      = 24
)

// Location type codes.
const (
	locInRoom      = 0x00
	locInObject    = 0x01
	locWithMonster = 0x03
	locNowhere     = 0x0f
	locCarrying    = 0x10
)

// Insideness codes in the last two bytes of an object record.
const (
	insideEnter     = 0x00
	insideContainer = 0x09
	insideNormal    = 0x0c
)

// Second opcode for the "create" actions. They behave the same as replace.
const (
	opCreateObject  = 0x16
	opCreateMonster = 0x17
)

// maxPlayerAttribute is the last bit of the 6-byte player bitfield.
const maxPlayerAttribute = 47

func firstByteZero(rec []byte) bool { return rec[0] == 0 }

// readRecords reads a zero-terminated list. The terminator is found by
// looking at the next record, never by a stored count.
func readRecords(r io.ReadSeeker, offset int64, size, max int, end func([]byte) bool) ([][]byte, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to 0x%x: %w", offset, err)
	}

	var recs [][]byte
	for {
		if len(recs) >= max {
			return nil, loadErrorf(InvalidItemList, "Invalid item list")
		}
		rec := make([]byte, size)
		if _, err := io.ReadFull(r, rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, loadErrorf(InvalidItemList, "Invalid item list")
			}
			return nil, fmt.Errorf("reading list at 0x%x: %w", offset, err)
		}
		if end(rec) {
			return recs, nil
		}
		recs = append(recs, rec)
	}
}

func readSection(r io.ReadSeeker, s section) ([][]byte, error) {
	return readRecords(r, s.offset, s.size, s.max, firstByteZero)
}

// avtLoader holds the definition while it is being read. Nothing is handed
// to the caller until every section has been validated.
type avtLoader struct {
	r   io.ReadSeeker
	log *zap.Logger
	def *types.Definition

	verbIndex []int // verb record → merged verb
}

// LoadAVT reads a binary game. Any defect in the file is reported as a
// *LoadError and no definition is returned.
func LoadAVT(r io.ReadSeeker, opts ...Option) (*types.Definition, error) {
	o := newOptions(opts)
	l := &avtLoader{r: r, log: o.logger, def: &types.Definition{}}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"strings", l.loadStrings},
		{"rooms", l.loadRooms},
		{"directions", l.loadDirections},
		{"objects", l.loadObjects},
		{"monsters", l.loadMonsters},
		{"aliases", l.loadAliases},
		{"verbs", l.loadVerbs},
		{"rules", l.loadRules},
		{"attributes", l.loadAttributes},
		{"info", l.loadInfo},
		{"locations", l.validateLocations},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			l.log.Debug("binary load failed", zap.String("section", s.name), zap.Error(err))
			return nil, err
		}
	}

	d := l.def
	l.log.Debug("binary game loaded",
		zap.String("name", d.Name),
		zap.Int("strings", len(d.Strings)),
		zap.Int("rooms", len(d.Rooms)),
		zap.Int("objects", len(d.Objects)),
		zap.Int("monsters", len(d.Monsters)),
		zap.Int("aliases", len(d.Aliases)),
		zap.Int("verbs", len(d.Verbs)),
		zap.Int("rules", len(d.Rules)),
	)
	return d, nil
}

func (l *avtLoader) loadStrings() error {
	n, err := countStrings(l.r)
	if err != nil {
		return err
	}
	l.def.Strings, err = readStrings(l.r, n)
	return err
}

// stringNum resolves a 1-based little-endian string number.
func (l *avtLoader) stringNum(field []byte) (string, error) {
	n := int(binary.LittleEndian.Uint16(field))
	if n < 1 || n > len(l.def.Strings) {
		return "", loadErrorf(InvalidStringNum, "An invalid string was referenced")
	}
	return l.def.Strings[n-1], nil
}

// optionalString is stringNum where zero means no string.
func (l *avtLoader) optionalString(field []byte) (string, error) {
	if field[0] == 0 && field[1] == 0 {
		return "", nil
	}
	return l.stringNum(field)
}

// root strips the part of speech and plural endings from a stored word.
// Words that are already bare roots are returned as they are.
func root(word string) (string, error) {
	w := morph.Normalize(strings.TrimSpace(word))
	w = strings.TrimSuffix(w, "j")
	if n := len(w); n > 1 && (w[n-1] == 'o' || w[n-1] == 'a') {
		w = w[:n-1]
	}
	if !morph.IsWord(w) {
		return "", loadErrorf(InvalidString, "Invalid name “%s”", word)
	}
	return w, nil
}

func (l *avtLoader) roomNum(b byte, kind ErrorKind, msg string) (int, error) {
	if b < 1 || int(b) > len(l.def.Rooms) {
		return 0, loadErrorf(kind, "%s", msg)
	}
	return int(b) - 1, nil
}

func (l *avtLoader) loadRooms() error {
	recs, err := readSection(l.r, roomSection)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return loadErrorf(InvalidRoom, "The game has no rooms")
	}
	l.def.Rooms = make([]types.Room, len(recs))

	for i, rec := range recs {
		room := &l.def.Rooms[i]
		if room.Name, err = extractString(rec, 20); err != nil {
			return err
		}
		if room.Description, err = l.stringNum(rec[21:]); err != nil {
			return err
		}
		// rec[23] is unused.
		for dir := 0; dir < types.NDirections; dir++ {
			b := rec[24+dir]
			if b == 0 {
				room.Movements[dir] = types.Blocked
				continue
			}
			if room.Movements[dir], err = l.roomNum(b, InvalidRoom,
				"A room direction points to an invalid room"); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadDirections attaches the custom directions to their rooms. The file
// keeps them in one unsorted list, so they are grouped by source room
// first, keeping file order within a room.
func (l *avtLoader) loadDirections() error {
	recs, err := readSection(l.r, directionSection)
	if err != nil {
		return err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i][directionSource] < recs[j][directionSource]
	})

	for _, rec := range recs {
		src, err := l.roomNum(rec[directionSource], InvalidDirection, "A direction has an invalid source")
		if err != nil {
			return err
		}
		name, err := extractString(rec, 20)
		if err != nil {
			return err
		}
		d := types.Direction{}
		if d.Name, err = root(name); err != nil {
			return err
		}
		if d.Description, err = l.optionalString(rec[directionDescription:]); err != nil {
			return err
		}
		if d.Target, err = l.roomNum(rec[directionTarget], InvalidDirection, "A direction has an invalid target"); err != nil {
			return err
		}
		l.def.Rooms[src].Directions = append(l.def.Rooms[src].Directions, d)
	}
	return nil
}

// movable decodes the fields shared by object and monster records: name,
// adjective, description and pronoun in the first 45 bytes.
func (l *avtLoader) movable(rec []byte) (types.Movable, error) {
	var m types.Movable

	name, err := extractString(rec, 20)
	if err != nil {
		return m, err
	}
	if m.Name, err = root(name); err != nil {
		return m, err
	}

	adj, err := extractString(rec[21:], 20)
	if err != nil {
		return m, err
	}
	if adj != "" {
		if m.Adjective, err = root(adj); err != nil {
			return m, err
		}
	}

	if m.Description, err = l.optionalString(rec[42:]); err != nil {
		return m, err
	}

	if rec[44] > byte(types.PronounPlural) {
		return m, loadErrorf(InvalidPronoun, "An invalid pronoun number was encountered.")
	}
	m.Pronoun = types.Pronoun(rec[44])
	return m, nil
}

// location decodes a location type code. The index is kept as the raw
// 1-based byte until validateLocations checks it against the right list.
func location(code, index byte) (types.Location, error) {
	loc := types.Location{Index: int(index)}
	switch code {
	case locInRoom:
		loc.Type = types.LocationRoom
	case locCarrying:
		loc.Type = types.LocationCarried
	case locNowhere:
		loc.Type = types.LocationNowhere
	case locWithMonster:
		loc.Type = types.LocationWithMonster
	case locInObject:
		loc.Type = types.LocationInObject
	default:
		return loc, loadErrorf(InvalidLocationType, "An invalid location type was encountered.")
	}
	return loc, nil
}

func (l *avtLoader) loadObjects() error {
	recs, err := readSection(l.r, objectSection)
	if err != nil {
		return err
	}
	l.def.Objects = make([]types.Object, len(recs))

	for i, rec := range recs {
		o := &l.def.Objects[i]
		if o.Movable, err = l.movable(rec); err != nil {
			return err
		}

		o.Points = int(rec[45])
		o.Weight = int(rec[46])
		o.Size = int(rec[47])
		o.ShotDamage = int(rec[48])
		o.Shots = int(rec[49])
		o.HitDamage = int(rec[50])
		o.StabDamage = int(rec[51])
		if o.ReadText, err = l.optionalString(rec[52:]); err != nil {
			return err
		}
		o.FoodPoints = int(rec[54])
		o.DrinkPoints = int(rec[55])
		o.BurnTime = int(rec[56])
		o.End = int(rec[57])

		if o.Location, err = location(rec[58], rec[59]); err != nil {
			return err
		}

		o.EnterRoom = types.Blocked
		switch rec[60] {
		case insideContainer:
			o.ContainerSize = int(rec[61])
		case insideNormal:
		case insideEnter:
			if o.EnterRoom, err = l.roomNum(rec[61], InvalidInsideness, "An object leads to an invalid room"); err != nil {
				return err
			}
		default:
			return loadErrorf(InvalidInsideness, "An invalid insideness value was encountered.")
		}
	}
	return nil
}

func (l *avtLoader) loadMonsters() error {
	recs, err := readSection(l.r, monsterSection)
	if err != nil {
		return err
	}
	l.def.Monsters = make([]types.Monster, len(recs))

	for i, rec := range recs {
		m := &l.def.Monsters[i]
		if m.Movable, err = l.movable(rec); err != nil {
			return err
		}

		dead := rec[45]
		if dead < 1 || int(dead) > len(l.def.Objects) {
			return loadErrorf(InvalidObject, "A monster has an invalid dead object number.")
		}
		m.DeadObject = int(dead) - 1

		m.Hunger = int(rec[46])
		m.Thirst = int(rec[47])
		m.Aggression = int(int16(binary.LittleEndian.Uint16(rec[48:])))
		m.Attack = int(rec[50])
		m.Protection = int(rec[51])
		m.Lives = int(rec[52])
		m.Escape = int(rec[53])
		m.Wander = int(rec[54])

		if m.Location, err = location(rec[55], rec[56]); err != nil {
			return err
		}
	}
	return nil
}

// loadAliases reads the synonyms. The name field holds a noun phrase; the
// kind byte uses the same codes as locations (object 0x01, monster 0x03).
func (l *avtLoader) loadAliases() error {
	recs, err := readSection(l.r, aliasSection)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		phrase, err := extractString(rec, 20)
		if err != nil {
			return err
		}
		cmd, ok := parser.Parse(phrase)
		if !ok || cmd.Has != parser.HasSubject || cmd.Subject.IsPronoun {
			return loadErrorf(InvalidAlias, "Invalid alias name “%s”", phrase)
		}

		a := types.Alias{
			Name:      cmd.Subject.Name,
			Adjective: cmd.Subject.Adjective,
			Plural:    cmd.Subject.Plural,
		}
		n := 0
		switch rec[21] {
		case locInObject:
			a.Kind, n = types.AliasObject, len(l.def.Objects)
		case locWithMonster:
			a.Kind, n = types.AliasMonster, len(l.def.Monsters)
		default:
			return loadErrorf(InvalidAlias, "An alias has an invalid type")
		}
		if rec[22] < 1 || int(rec[22]) > n {
			return loadErrorf(InvalidAlias, "An alias refers to an invalid item")
		}
		a.Index = int(rec[22]) - 1
		l.def.Aliases = append(l.def.Aliases, a)
	}
	return nil
}

// loadVerbs reads the verb records. Records whose words share a root
// become one verb, so the rules of "frotu" and "frotas" run together in
// declaration order. verbIndex maps each record to its merged verb.
func (l *avtLoader) loadVerbs() error {
	recs, err := readSection(l.r, verbSection)
	if err != nil {
		return err
	}
	l.verbIndex = make([]int, len(recs))
	seen := make(map[string]int, len(recs))

	for i, rec := range recs {
		word, err := extractString(rec, 10)
		if err != nil {
			return err
		}
		name := morph.Normalize(word)
		if r, ok := parser.VerbRoot(name); ok {
			name = r
		}
		if !morph.IsWord(name) {
			return loadErrorf(InvalidVerb, "Invalid verb “%s”", word)
		}
		v, ok := seen[name]
		if !ok {
			v = len(l.def.Verbs)
			seen[name] = v
			l.def.Verbs = append(l.def.Verbs, types.Verb{Name: name})
		}
		l.verbIndex[i] = v
	}
	return nil
}

// loadRules reads the rule records: verb number, four conditions, message
// string, four actions and points.
func (l *avtLoader) loadRules() error {
	recs, err := readSection(l.r, ruleSection)
	if err != nil {
		return err
	}
	l.def.Rules = make([]types.Rule, len(recs))

	for i, rec := range recs {
		v := int(rec[0])
		if v < 1 || v > len(l.verbIndex) {
			return loadErrorf(InvalidVerb, "A rule refers to an invalid verb")
		}
		verb := &l.def.Verbs[l.verbIndex[v-1]]
		verb.Rules = append(verb.Rules, i)

		rule := &l.def.Rules[i]
		rule.Verb = verb.Name
		for role := types.Role(0); role < types.NRoles; role++ {
			p := 1 + 2*int(role)
			if rule.Conditions[role], err = l.condition(role, rec[p], rec[p+1]); err != nil {
				return err
			}
		}
		if rule.Message, err = l.optionalString(rec[9:]); err != nil {
			return err
		}
		for role := types.Role(0); role < types.NRoles; role++ {
			p := 11 + 2*int(role)
			if rule.Actions[role], err = l.action(role, rec[p], rec[p+1]); err != nil {
				return err
			}
		}
		rule.Points = int(rec[19])
	}
	return nil
}

// sameKind is the number of instances an operand of a role-relative
// opcode such as "same name as" can refer to.
func (l *avtLoader) sameKind(role types.Role) int {
	if role == types.RoleMonster {
		return len(l.def.Monsters)
	}
	return len(l.def.Objects)
}

// operand converts the data byte of a condition or action for opcodes of
// the given shape. ok is false if the byte is out of range.
type operandShape int

const (
	opNone operandShape = iota
	opLiteral
	opRoom
	opObject
	opMonster
	opVerb
	opSameKind
	opAttribute
	opPlayerAttribute
	opChance
)

func (l *avtLoader) operand(shape operandShape, role types.Role, data byte) (int, bool) {
	in := func(n int) (int, bool) { return int(data) - 1, data >= 1 && int(data) <= n }

	switch shape {
	case opNone:
		return 0, true
	case opLiteral:
		return int(data), true
	case opRoom:
		return in(len(l.def.Rooms))
	case opObject:
		return in(len(l.def.Objects))
	case opMonster:
		return in(len(l.def.Monsters))
	case opVerb:
		v, ok := in(len(l.verbIndex))
		if !ok {
			return 0, false
		}
		return l.verbIndex[v], true
	case opSameKind:
		return in(l.sameKind(role))
	case opAttribute:
		// Bit 0 is reserved, so attribute n is bit n+1.
		return int(data) + 1, int(data)+1 <= types.MaxAttributeBit
	case opPlayerAttribute:
		return int(data), int(data) <= maxPlayerAttribute
	case opChance:
		return int(data), data <= 100
	}
	return 0, false
}

var conditionShapes = map[types.ConditionKind]operandShape{
	types.CondNone:               opNone,
	types.CondInRoom:             opRoom,
	types.CondObjectIs:           opObject,
	types.CondMonsterIs:          opMonster,
	types.CondObjectPresent:      opObject,
	types.CondMonsterPresent:     opMonster,
	types.CondObjectCarried:      opObject,
	types.CondShots:              opLiteral,
	types.CondWeight:             opLiteral,
	types.CondSize:               opLiteral,
	types.CondContainerSize:      opLiteral,
	types.CondBurnTime:           opLiteral,
	types.CondAttribute:          opAttribute,
	types.CondNotAttribute:       opAttribute,
	types.CondRoomAttribute:      opAttribute,
	types.CondNotRoomAttribute:   opAttribute,
	types.CondPlayerAttribute:    opPlayerAttribute,
	types.CondNotPlayerAttribute: opPlayerAttribute,
	types.CondChance:             opChance,
	types.CondSameAdjective:      opSameKind,
	types.CondSameName:           opSameKind,
	types.CondSameNoun:           opSameKind,
	types.CondNothing:            opNone,
	types.CondSomething:          opNone,
}

var actionShapes = map[types.ActionKind]operandShape{
	types.ActNone:                 opNone,
	types.ActMove:                 opRoom,
	types.ActReplaceObject:        opObject,
	types.ActReplaceMonster:       opMonster,
	types.ActCopyObject:           opObject,
	types.ActCopyMonster:          opMonster,
	types.ActShots:                opLiteral,
	types.ActWeight:               opLiteral,
	types.ActSize:                 opLiteral,
	types.ActContainerSize:        opLiteral,
	types.ActBurnTime:             opLiteral,
	types.ActSetAttribute:         opAttribute,
	types.ActUnsetAttribute:       opAttribute,
	types.ActSetRoomAttribute:     opAttribute,
	types.ActUnsetRoomAttribute:   opAttribute,
	types.ActSetPlayerAttribute:   opPlayerAttribute,
	types.ActUnsetPlayerAttribute: opPlayerAttribute,
	types.ActCarry:                opNone,
	types.ActNowhere:              opNone,
	types.ActRename:               opSameKind,
	types.ActReadjective:          opSameKind,
	types.ActTrigger:              opVerb,
}

// condition decodes a condition. The opcode is the ConditionKind value.
func (l *avtLoader) condition(role types.Role, op, data byte) (types.Condition, error) {
	kind := types.ConditionKind(op)
	shape, ok := conditionShapes[kind]
	if !ok {
		return types.Condition{}, loadErrorf(InvalidCondition, "Unknown condition 0x%02x", op)
	}
	n, ok := l.operand(shape, role, data)
	if !ok {
		return types.Condition{}, loadErrorf(InvalidCondition, "Condition 0x%02x has an invalid operand %d", op, data)
	}
	return types.Condition{Kind: kind, Data: n}, nil
}

// action decodes an action. The opcode is the ActionKind value, plus the
// two create opcodes which are loaded as replace.
func (l *avtLoader) action(role types.Role, op, data byte) (types.Action, error) {
	kind := types.ActionKind(op)
	switch op {
	case opCreateObject:
		kind = types.ActReplaceObject
	case opCreateMonster:
		kind = types.ActReplaceMonster
	}
	shape, ok := actionShapes[kind]
	if !ok {
		return types.Action{}, loadErrorf(InvalidAction, "Unknown action 0x%02x", op)
	}
	n, ok := l.operand(shape, role, data)
	if !ok {
		return types.Action{}, loadErrorf(InvalidAction, "Action 0x%02x has an invalid operand %d", op, data)
	}
	return types.Action{Kind: kind, Data: n}, nil
}

// Attribute section layout: three counts (object, monster and room rows)
// followed by the rows. Each row is a bitmask with one bit per entity,
// least significant bit first.
const (
	objectRowSize  = 19 // 150 objects
	monsterRowSize = 10 // 75 monsters
	roomRowSize    = 19 // 150 rooms
)

func rowBit(row []byte, i int) bool {
	return row[i/8]&(1<<uint(i%8)) != 0
}

func (l *avtLoader) loadAttributes() error {
	if _, err := l.r.Seek(attributesOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to attributes: %w", err)
	}
	buf := make([]byte, attributesSize)
	if _, err := io.ReadFull(l.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return loadErrorf(InvalidAttributes, "The attributes are truncated")
		}
		return fmt.Errorf("reading attributes: %w", err)
	}

	nObj, nMon, nRoom := int(buf[0]), int(buf[1]), int(buf[2])
	maxRows := types.MaxAttributeBit
	if nObj > maxRows || nMon > maxRows || nRoom > maxRows ||
		3+nObj*objectRowSize+nMon*monsterRowSize+nRoom*roomRowSize > attributesSize {
		return loadErrorf(InvalidAttributes, "Too many attributes")
	}

	p := 3
	for a := 0; a < nObj; a++ {
		row := buf[p : p+objectRowSize]
		for i := range l.def.Objects {
			if rowBit(row, i) {
				l.def.Objects[i].Attributes |= 1 << uint(a+1)
			}
		}
		p += objectRowSize
	}
	for a := 0; a < nMon; a++ {
		row := buf[p : p+monsterRowSize]
		for i := range l.def.Monsters {
			if rowBit(row, i) {
				l.def.Monsters[i].Attributes |= 1 << uint(a+1)
			}
		}
		p += monsterRowSize
	}
	for a := 0; a < nRoom; a++ {
		row := buf[p : p+roomRowSize]
		for i := range l.def.Rooms {
			if rowBit(row, i) {
				l.def.Rooms[i].Attributes |= 1 << uint(a+1)
			}
		}
		p += roomRowSize
	}
	return nil
}

// Game info layout.
const (
	infoName       = 0   // length + 80
	infoAuthor     = 81  // length + 40
	infoYear       = 122 // length + 10
	infoIntro      = 133 // string number, 0 for none
	infoAttributes = 135 // 6 bytes, little endian
)

func (l *avtLoader) loadInfo() error {
	if _, err := l.r.Seek(infoOffset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to game info: %w", err)
	}
	buf := make([]byte, infoSize)
	if _, err := io.ReadFull(l.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return loadErrorf(InvalidString, "The game information is truncated")
		}
		return fmt.Errorf("reading game info: %w", err)
	}

	var err error
	d := l.def
	if d.Name, err = extractString(buf[infoName:], 80); err != nil {
		return err
	}
	if d.Author, err = extractString(buf[infoAuthor:], 40); err != nil {
		return err
	}
	if d.Year, err = extractString(buf[infoYear:], 10); err != nil {
		return err
	}
	if d.Introduction, err = l.optionalString(buf[infoIntro:]); err != nil {
		return err
	}

	var attrs [8]byte
	copy(attrs[:], buf[infoAttributes:infoAttributes+6])
	d.GameAttributes = binary.LittleEndian.Uint64(attrs[:])
	return nil
}
