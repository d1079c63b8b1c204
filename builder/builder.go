// Package builder turns symbolic game drafts into a validated
// types.Definition. The source compiler and the Lua front end both fill a
// Builder; symbols are resolved only when Build is called, so drafts may
// refer to things declared later.
package builder

import (
	"fmt"
	"strings"

	"github.com/nathoo/aventuro/engine/parser"
	"github.com/nathoo/aventuro/types"
)

// Error is a construction failure, optionally tied to a source line.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d", e.Msg, e.Line)
	}
	return e.Msg
}

func errorf(line int, format string, args ...any) error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Ref names a symbol at a source line.
type Ref struct {
	Symbol string
	Line   int
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Symbol == ""
}

// Text is a literal string or a reference to a named text. In a room
// description the reference may also name another room, whose
// description is then shared.
type Text struct {
	Literal string
	Ref     Ref
	set     bool
}

// Literal returns an inline text.
func Literal(s string) Text {
	return Text{Literal: s, set: true}
}

// TextRef returns a text that refers to a symbol.
func TextRef(symbol string, line int) Text {
	return Text{Ref: Ref{Symbol: symbol, Line: line}, set: true}
}

// IsSet reports whether the text was given at all.
func (t Text) IsSet() bool {
	return t.set
}

// Direction is a custom exit. Name is a noun such as "pordo".
type Direction struct {
	Name        string
	Description string
	Target      Ref
	Line        int
}

// Room is a room draft. An empty Name defaults to the symbol with
// underscores turned into spaces.
type Room struct {
	Symbol      string
	Line        int
	Name        string
	Description Text
	Exits       [types.NDirections]Ref
	Directions  []Direction
	Flags       uint32
	Points      int
	Attributes  []Ref
}

// Location is where a movable starts. A set Ref places it in a room,
// inside an object or with a monster depending on what the symbol names.
type Location struct {
	Ref     Ref
	Carried bool
}

// Object is an object draft. Name is a noun phrase such as "ruĝa pomo".
type Object struct {
	Symbol      string
	Line        int
	Name        string
	Description Text
	ReadText    Text
	Pronoun     types.Pronoun
	HasPronoun  bool
	Location    Location
	Flags       uint32
	Attributes  []Ref
	EnterRoom   Ref

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
}

// Monster is a monster draft.
type Monster struct {
	Symbol      string
	Line        int
	Name        string
	Description Text
	Pronoun     types.Pronoun
	HasPronoun  bool
	Location    Location
	Attributes  []Ref
	DeadObject  Ref

	Hunger     int
	Thirst     int
	Aggression int
	Attack     int
	Protection int
	Lives      int
	Escape     int
	Wander     int
}

// Alias is another noun phrase for an object or monster.
type Alias struct {
	Target Ref
	Phrase string
	Line   int
}

// Condition is a rule condition draft. Ref holds the symbolic operand
// (room, object, monster or attribute name), Number the numeric one.
// CondObjectIs and CondObjectPresent become their monster forms when the
// symbol names a monster.
type Condition struct {
	Kind   types.ConditionKind
	Ref    Ref
	Number int
}

// Action is a rule action draft. ActReplaceObject and ActCopyObject become
// their monster forms when the symbol names a monster. For ActTrigger
// Ref.Symbol is a verb such as "sonorigu".
type Action struct {
	Kind   types.ActionKind
	Ref    Ref
	Number int
}

// Rule is a rule draft. Verb is a verb word in any form the command parser
// accepts.
type Rule struct {
	Line       int
	Verb       string
	Message    Text
	Points     int
	Conditions [types.NRoles]Condition
	Actions    [types.NRoles]Action
}

type symbolKind int

const (
	symText symbolKind = iota
	symRoom
	symObject
	symMonster
)

func (k symbolKind) String() string {
	return [...]string{"text", "room", "object", "monster"}[k]
}

type symbol struct {
	kind  symbolKind
	index int
	line  int
}

type namedText struct {
	symbol string
	text   string
}

// Builder collects drafts.
type Builder struct {
	Name         string
	Author       string
	Year         string
	Introduction string

	texts    []namedText
	rooms    []Room
	objects  []Object
	monsters []Monster
	aliases  []Alias
	rules    []Rule

	playerAttributes []Ref
	symbols          map[string]symbol
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{symbols: map[string]symbol{}}
}

func (b *Builder) declare(name string, kind symbolKind, index, line int) error {
	if name == "" {
		return errorf(line, "Item name expected")
	}
	if _, ok := b.symbols[name]; ok {
		return errorf(line, "Same name used for multiple objects")
	}
	b.symbols[name] = symbol{kind: kind, index: index, line: line}
	return nil
}

// AddText declares a named text.
func (b *Builder) AddText(name, text string, line int) error {
	if err := b.declare(name, symText, len(b.texts), line); err != nil {
		return err
	}
	b.texts = append(b.texts, namedText{symbol: name, text: text})
	return nil
}

// AddRoom declares a room. The first room added is where the game starts.
func (b *Builder) AddRoom(r Room) error {
	if err := b.declare(r.Symbol, symRoom, len(b.rooms), r.Line); err != nil {
		return err
	}
	b.rooms = append(b.rooms, r)
	return nil
}

// AddObject declares an object.
func (b *Builder) AddObject(o Object) error {
	if err := b.declare(o.Symbol, symObject, len(b.objects), o.Line); err != nil {
		return err
	}
	b.objects = append(b.objects, o)
	return nil
}

// AddMonster declares a monster.
func (b *Builder) AddMonster(m Monster) error {
	if err := b.declare(m.Symbol, symMonster, len(b.monsters), m.Line); err != nil {
		return err
	}
	b.monsters = append(b.monsters, m)
	return nil
}

// AddAlias adds an alias.
func (b *Builder) AddAlias(a Alias) {
	b.aliases = append(b.aliases, a)
}

// AddRule adds a rule. Rules fire in the order they were added.
func (b *Builder) AddRule(r Rule) {
	b.rules = append(b.rules, r)
}

// SetPlayerAttribute makes a player attribute set at the start of the
// game.
func (b *Builder) SetPlayerAttribute(name string, line int) {
	b.playerAttributes = append(b.playerAttributes, Ref{Symbol: name, Line: line})
}

// Rooms returns the number of rooms added so far.
func (b *Builder) Rooms() int {
	return len(b.rooms)
}

// build holds the state of one Build call.
type build struct {
	*Builder
	def *types.Definition

	roomAttrs   *attributeSet
	objectAttrs *attributeSet
	playerAttrs *attributeSet

	roomDescriptions []string
	resolving        map[string]bool
	verbs            map[string]int
}

// Build resolves every draft and returns the finished definition.
func (b *Builder) Build() (*types.Definition, error) {
	switch {
	case b.Name == "":
		return nil, errorf(0, "The game is missing the “nomo”")
	case b.Author == "":
		return nil, errorf(0, "The game is missing the “aŭtoro”")
	case b.Year == "":
		return nil, errorf(0, "The game is missing the “jaro”")
	case len(b.rooms) == 0:
		return nil, errorf(0, "The game needs at least one room")
	}

	bd := &build{
		Builder: b,
		def: &types.Definition{
			Name:         b.Name,
			Author:       b.Author,
			Year:         b.Year,
			Introduction: b.Introduction,
		},
		roomAttrs:        newAttributeSet(RoomFlags, types.FirstCustomRoomAttribute, types.MaxAttributeBit),
		objectAttrs:      newAttributeSet(ObjectFlags, types.FirstCustomObjectAttribute, types.MaxAttributeBit),
		playerAttrs:      newAttributeSet(nil, 0, types.MaxGameAttributeBit),
		roomDescriptions: make([]string, len(b.rooms)),
		resolving:        map[string]bool{},
		verbs:            map[string]int{},
	}

	for _, t := range b.texts {
		bd.def.Strings = append(bd.def.Strings, t.text)
	}

	steps := []func() error{
		bd.buildRooms,
		bd.buildObjects,
		bd.buildMonsters,
		bd.buildAliases,
		bd.buildRules,
		bd.buildPlayerAttributes,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	if err := Validate(bd.def); err != nil {
		return nil, err
	}
	return bd.def, nil
}

// lookup resolves a reference to a symbol of one of the wanted kinds.
func (bd *build) lookup(r Ref, what string, kinds ...symbolKind) (symbol, error) {
	sym, ok := bd.symbols[r.Symbol]
	if ok {
		for _, k := range kinds {
			if sym.kind == k {
				return sym, nil
			}
		}
	}
	return symbol{}, errorf(r.Line, "Invalid %s reference “%s”", what, r.Symbol)
}

// text resolves a text draft. Inline strings join the string table.
func (bd *build) text(t Text) (string, error) {
	if !t.IsSet() {
		return "", nil
	}
	if t.Ref.IsZero() {
		bd.def.Strings = append(bd.def.Strings, t.Literal)
		return t.Literal, nil
	}
	sym, err := bd.lookup(t.Ref, "text", symText)
	if err != nil {
		return "", errorf(t.Ref.Line, "Invalid text reference")
	}
	return bd.texts[sym.index].text, nil
}

// roomDescription resolves a room's description, following references to
// other rooms.
func (bd *build) roomDescription(i int) (string, error) {
	if d := bd.roomDescriptions[i]; d != "" {
		return d, nil
	}
	r := bd.rooms[i]
	if !r.Description.IsSet() {
		return "", errorf(r.Line, "Room is missing description")
	}
	if r.Description.Ref.IsZero() {
		bd.roomDescriptions[i] = r.Description.Literal
		bd.def.Strings = append(bd.def.Strings, r.Description.Literal)
		return r.Description.Literal, nil
	}

	if bd.resolving[r.Symbol] {
		return "", errorf(r.Description.Ref.Line, "Cyclic reference detected")
	}
	bd.resolving[r.Symbol] = true
	defer delete(bd.resolving, r.Symbol)

	sym, ok := bd.symbols[r.Description.Ref.Symbol]
	var d string
	var err error
	switch {
	case ok && sym.kind == symText:
		d = bd.texts[sym.index].text
	case ok && sym.kind == symRoom:
		d, err = bd.roomDescription(sym.index)
	default:
		err = errorf(r.Description.Ref.Line, "Invalid text reference")
	}
	if err != nil {
		return "", err
	}
	bd.roomDescriptions[i] = d
	return d, nil
}

func (bd *build) room(r Ref) (int, error) {
	sym, err := bd.lookup(r, "room", symRoom)
	if err != nil {
		return 0, errorf(r.Line, "Invalid room reference")
	}
	return sym.index, nil
}

func (bd *build) buildRooms() error {
	for i, r := range bd.rooms {
		room := types.Room{
			Name:       r.Name,
			Attributes: r.Flags,
			Points:     r.Points,
		}
		if room.Name == "" {
			room.Name = strings.ReplaceAll(r.Symbol, "_", " ")
		}

		d, err := bd.roomDescription(i)
		if err != nil {
			return err
		}
		room.Description = d

		for dir, exit := range r.Exits {
			room.Movements[dir] = types.Blocked
			if exit.IsZero() {
				continue
			}
			if room.Movements[dir], err = bd.room(exit); err != nil {
				return err
			}
		}

		for _, d := range r.Directions {
			noun, err := nounPhrase(d.Name, d.Line)
			if err != nil {
				return err
			}
			if noun.Adjective != "" {
				return errorf(d.Line, "Invalid direction name “%s”", d.Name)
			}
			target, err := bd.room(d.Target)
			if err != nil {
				return err
			}
			room.Directions = append(room.Directions, types.Direction{
				Name:        noun.Name,
				Description: d.Description,
				Target:      target,
			})
		}

		for _, a := range r.Attributes {
			bit, err := bd.roomAttrs.bit(a)
			if err != nil {
				return err
			}
			room.Attributes |= 1 << uint(bit)
		}

		bd.def.Rooms = append(bd.def.Rooms, room)
	}
	return nil
}

// movable resolves the parts shared by objects and monsters.
func (bd *build) movable(name string, line int, desc Text, pronoun types.Pronoun, hasPronoun bool,
	loc Location, flags uint32, attrs []Ref) (types.Movable, error) {
	var m types.Movable

	noun, err := nounPhrase(name, line)
	if err != nil {
		return m, err
	}
	m.Name = noun.Name
	m.Adjective = noun.Adjective
	m.Pronoun = types.PronounAnimal
	if noun.Plural {
		m.Pronoun = types.PronounPlural
	}
	if hasPronoun {
		m.Pronoun = pronoun
	}

	if m.Description, err = bd.text(desc); err != nil {
		return m, err
	}

	m.Location = types.Location{Type: types.LocationNowhere}
	switch {
	case !loc.Ref.IsZero():
		sym, err := bd.lookup(loc.Ref, "location", symRoom, symObject, symMonster)
		if err != nil {
			return m, err
		}
		m.Location.Index = sym.index
		switch sym.kind {
		case symRoom:
			m.Location.Type = types.LocationRoom
		case symObject:
			m.Location.Type = types.LocationInObject
		default:
			m.Location.Type = types.LocationWithMonster
		}
	case loc.Carried:
		m.Location.Type = types.LocationCarried
	}

	m.Attributes = flags
	for _, a := range attrs {
		bit, err := bd.objectAttrs.bit(a)
		if err != nil {
			return m, err
		}
		m.Attributes |= 1 << uint(bit)
	}
	return m, nil
}

func (bd *build) buildObjects() error {
	for _, o := range bd.objects {
		m, err := bd.movable(o.Name, o.Line, o.Description, o.Pronoun, o.HasPronoun, o.Location, o.Flags, o.Attributes)
		if err != nil {
			return err
		}
		obj := types.Object{
			Movable:       m,
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
			EnterRoom:     types.Blocked,
		}
		if obj.ReadText, err = bd.text(o.ReadText); err != nil {
			return err
		}
		if !o.EnterRoom.IsZero() {
			if obj.EnterRoom, err = bd.room(o.EnterRoom); err != nil {
				return err
			}
		}
		bd.def.Objects = append(bd.def.Objects, obj)
	}
	return nil
}

func (bd *build) buildMonsters() error {
	for _, mo := range bd.monsters {
		m, err := bd.movable(mo.Name, mo.Line, mo.Description, mo.Pronoun, mo.HasPronoun, mo.Location, 0, mo.Attributes)
		if err != nil {
			return err
		}
		mon := types.Monster{
			Movable:    m,
			DeadObject: types.Blocked,
			Hunger:     mo.Hunger,
			Thirst:     mo.Thirst,
			Aggression: mo.Aggression,
			Attack:     mo.Attack,
			Protection: mo.Protection,
			Lives:      mo.Lives,
			Escape:     mo.Escape,
			Wander:     mo.Wander,
		}
		if !mo.DeadObject.IsZero() {
			sym, err := bd.lookup(mo.DeadObject, "object", symObject)
			if err != nil {
				return err
			}
			mon.DeadObject = sym.index
		}
		bd.def.Monsters = append(bd.def.Monsters, mon)
	}
	return nil
}

func (bd *build) buildAliases() error {
	for _, a := range bd.aliases {
		sym, err := bd.lookup(a.Target, "alias target", symObject, symMonster)
		if err != nil {
			return err
		}
		noun, err := nounPhrase(a.Phrase, a.Line)
		if err != nil {
			return err
		}
		alias := types.Alias{
			Name:      noun.Name,
			Adjective: noun.Adjective,
			Plural:    noun.Plural,
			Index:     sym.index,
		}
		if sym.kind == symMonster {
			alias.Kind = types.AliasMonster
		}
		bd.def.Aliases = append(bd.def.Aliases, alias)
	}
	return nil
}

// verb returns the index of the verb entry for a verb word, creating an
// empty one if needed.
func (bd *build) verb(word string, line int) (int, error) {
	cmd, ok := parser.Parse(word)
	if !ok || cmd.Has != parser.HasVerb {
		return 0, errorf(line, "Invalid verb “%s”", word)
	}
	if i, ok := bd.verbs[cmd.Verb]; ok {
		return i, nil
	}
	i := len(bd.def.Verbs)
	bd.verbs[cmd.Verb] = i
	bd.def.Verbs = append(bd.def.Verbs, types.Verb{Name: cmd.Verb})
	return i, nil
}

func (bd *build) buildRules() error {
	for _, r := range bd.rules {
		v, err := bd.verb(r.Verb, r.Line)
		if err != nil {
			return err
		}
		rule := types.Rule{
			Verb:   bd.def.Verbs[v].Name,
			Points: r.Points,
		}
		if rule.Message, err = bd.text(r.Message); err != nil {
			return err
		}
		for role := types.Role(0); role < types.NRoles; role++ {
			if rule.Conditions[role], err = bd.condition(role, r.Conditions[role]); err != nil {
				return err
			}
			if rule.Actions[role], err = bd.action(role, r.Actions[role]); err != nil {
				return err
			}
		}
		bd.def.Verbs[v].Rules = append(bd.def.Verbs[v].Rules, len(bd.def.Rules))
		bd.def.Rules = append(bd.def.Rules, rule)
	}
	return nil
}

// instanceAttrs picks the attribute namespace of a role.
func (bd *build) instanceAttrs(role types.Role) *attributeSet {
	if role == types.RoleRoom {
		return bd.roomAttrs
	}
	return bd.objectAttrs
}

// operand resolves the symbol of an instance operand.
func (bd *build) operand(r Ref) (symbol, error) {
	return bd.lookup(r, "object or monster", symObject, symMonster)
}

func (bd *build) condition(role types.Role, c Condition) (types.Condition, error) {
	out := types.Condition{Kind: c.Kind}
	var err error

	switch c.Kind {
	case types.CondNone, types.CondNothing, types.CondSomething:

	case types.CondInRoom:
		out.Data, err = bd.room(c.Ref)

	case types.CondObjectIs, types.CondMonsterIs, types.CondObjectPresent, types.CondMonsterPresent:
		var sym symbol
		if sym, err = bd.operand(c.Ref); err != nil {
			break
		}
		out.Data = sym.index
		if sym.kind == symMonster {
			if out.Kind == types.CondObjectIs {
				out.Kind = types.CondMonsterIs
			} else if out.Kind == types.CondObjectPresent {
				out.Kind = types.CondMonsterPresent
			}
		} else if out.Kind == types.CondMonsterIs || out.Kind == types.CondMonsterPresent {
			err = errorf(c.Ref.Line, "Invalid monster reference “%s”", c.Ref.Symbol)
		}

	case types.CondObjectCarried:
		var sym symbol
		if sym, err = bd.lookup(c.Ref, "object", symObject); err == nil {
			out.Data = sym.index
		}

	case types.CondShots, types.CondWeight, types.CondSize, types.CondContainerSize, types.CondBurnTime:
		out.Data = c.Number

	case types.CondChance:
		if c.Number < 0 || c.Number > 100 {
			err = errorf(c.Ref.Line, "Number out of range")
		}
		out.Data = c.Number

	case types.CondAttribute, types.CondNotAttribute:
		out.Data, err = bd.instanceAttrs(role).bit(c.Ref)

	case types.CondRoomAttribute, types.CondNotRoomAttribute:
		out.Data, err = bd.roomAttrs.bit(c.Ref)

	case types.CondPlayerAttribute, types.CondNotPlayerAttribute:
		out.Data, err = bd.playerAttrs.bit(c.Ref)

	case types.CondSameAdjective, types.CondSameName, types.CondSameNoun:
		want := symObject
		if role == types.RoleMonster {
			want = symMonster
		}
		var sym symbol
		if sym, err = bd.lookup(c.Ref, want.String(), want); err == nil {
			out.Data = sym.index
		}

	default:
		err = errorf(c.Ref.Line, "Invalid condition")
	}

	return out, err
}

func (bd *build) action(role types.Role, a Action) (types.Action, error) {
	out := types.Action{Kind: a.Kind}
	var err error

	switch a.Kind {
	case types.ActNone, types.ActCarry, types.ActNowhere:

	case types.ActMove:
		out.Data, err = bd.room(a.Ref)

	case types.ActReplaceObject, types.ActReplaceMonster, types.ActCopyObject, types.ActCopyMonster:
		var sym symbol
		if sym, err = bd.operand(a.Ref); err != nil {
			break
		}
		out.Data = sym.index
		if sym.kind == symMonster {
			if out.Kind == types.ActReplaceObject {
				out.Kind = types.ActReplaceMonster
			} else if out.Kind == types.ActCopyObject {
				out.Kind = types.ActCopyMonster
			}
		} else if out.Kind == types.ActReplaceMonster || out.Kind == types.ActCopyMonster {
			err = errorf(a.Ref.Line, "Invalid monster reference “%s”", a.Ref.Symbol)
		}

	case types.ActShots, types.ActWeight, types.ActSize, types.ActContainerSize, types.ActBurnTime:
		out.Data = a.Number

	case types.ActSetAttribute, types.ActUnsetAttribute:
		out.Data, err = bd.instanceAttrs(role).bit(a.Ref)

	case types.ActSetRoomAttribute, types.ActUnsetRoomAttribute:
		out.Data, err = bd.roomAttrs.bit(a.Ref)

	case types.ActSetPlayerAttribute, types.ActUnsetPlayerAttribute:
		out.Data, err = bd.playerAttrs.bit(a.Ref)

	case types.ActRename, types.ActReadjective:
		want := symObject
		if role == types.RoleMonster {
			want = symMonster
		}
		var sym symbol
		if sym, err = bd.lookup(a.Ref, want.String(), want); err == nil {
			out.Data = sym.index
		}

	case types.ActTrigger:
		out.Data, err = bd.verb(a.Ref.Symbol, a.Ref.Line)

	default:
		err = errorf(a.Ref.Line, "Invalid action")
	}

	return out, err
}

func (bd *build) buildPlayerAttributes() error {
	for _, a := range bd.playerAttributes {
		bit, err := bd.playerAttrs.bit(a)
		if err != nil {
			return err
		}
		bd.def.GameAttributes |= 1 << uint(bit)
	}
	return nil
}

// nounPhrase reduces a noun phrase such as "ruĝaj pomoj" to its roots.
func nounPhrase(phrase string, line int) (parser.Noun, error) {
	cmd, ok := parser.Parse(phrase)
	if !ok || cmd.Has != parser.HasSubject || cmd.Subject.IsPronoun {
		return parser.Noun{}, errorf(line, "Invalid name “%s”", phrase)
	}
	return cmd.Subject, nil
}
