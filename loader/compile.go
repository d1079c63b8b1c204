package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/aventuro/builder"
	"github.com/nathoo/aventuro/types"
	lua "github.com/yuin/gopher-lua"
)

// rawItem holds a Room, Object, Monster or Rule table before compilation.
// For rules id is the verb.
type rawItem struct {
	id    string
	line  int
	table *lua.LTable
}

type rawText struct {
	id   string
	line int
	text string
}

type rawAlias struct {
	target string
	phrase string
	line   int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// getByte returns a numeric field that must fit in one byte.
func getByte(tbl *lua.LTable, key string, line int) (int, error) {
	n := getInt(tbl, key)
	if n < 0 || n > 255 {
		return 0, &builder.Error{Line: line, Msg: fmt.Sprintf("“%s” must be between 0 and 255", key)}
	}
	return n, nil
}

// getText returns a text field: a plain string or a Ref("id") table.
func getText(tbl *lua.LTable, key string, line int) builder.Text {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LString:
		return builder.Literal(string(v))
	case *lua.LTable:
		if l := getInt(v, "line"); l > 0 {
			line = l
		}
		return builder.TextRef(getString(v, "__ref"), line)
	}
	return builder.Text{}
}

func ref(sym string, line int) builder.Ref {
	return builder.Ref{Symbol: sym, Line: line}
}

func refs(names []string, line int) []builder.Ref {
	out := make([]builder.Ref, len(names))
	for i, n := range names {
		out[i] = ref(n, line)
	}
	return out
}

// compile turns the collected Lua tables into a definition.
func compile(coll *collector) (*types.Definition, error) {
	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}

	b := builder.New()
	b.Name = getString(coll.game, "name")
	b.Author = getString(coll.game, "author")
	b.Year = getString(coll.game, "year")
	b.Introduction = getString(coll.game, "intro")
	for _, a := range getStrings(coll.game, "attributes") {
		b.SetPlayerAttribute(a, coll.gameLine)
	}

	for _, t := range coll.texts {
		if err := b.AddText(t.id, t.text, t.line); err != nil {
			return nil, err
		}
	}

	for _, raw := range coll.rooms {
		room, err := compileRoom(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling room %s: %w", raw.id, err)
		}
		if err := b.AddRoom(room); err != nil {
			return nil, err
		}
	}

	for _, raw := range coll.objects {
		obj, err := compileObject(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling object %s: %w", raw.id, err)
		}
		if err := b.AddObject(obj); err != nil {
			return nil, err
		}
	}

	for _, raw := range coll.monsters {
		mon, err := compileMonster(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling monster %s: %w", raw.id, err)
		}
		if err := b.AddMonster(mon); err != nil {
			return nil, err
		}
	}

	for _, a := range coll.aliases {
		b.AddAlias(builder.Alias{Target: ref(a.target, a.line), Phrase: a.phrase, Line: a.line})
	}

	for _, raw := range coll.rules {
		rule, err := compileRule(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", raw.id, err)
		}
		b.AddRule(rule)
	}

	return b.Build()
}

// exitKeys maps the keys of a room's exits table to movement indices.
var exitKeys = map[string]int{
	"north": types.DirNorth,
	"east":  types.DirEast,
	"south": types.DirSouth,
	"west":  types.DirWest,
	"up":    types.DirUp,
	"down":  types.DirDown,
	"out":   types.DirOut,
}

func compileRoom(raw rawItem) (builder.Room, error) {
	tbl := raw.table
	room := builder.Room{
		Symbol:      raw.id,
		Line:        raw.line,
		Name:        getString(tbl, "name"),
		Description: getText(tbl, "description", raw.line),
		Attributes:  refs(getStrings(tbl, "attributes"), raw.line),
	}

	var err error
	if room.Points, err = getByte(tbl, "points", raw.line); err != nil {
		return room, err
	}

	if exits := getTable(tbl, "exits"); exits != nil {
		exits.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			dir, ok := exitKeys[k.String()]
			target, isString := v.(lua.LString)
			if !ok || !isString {
				err = &builder.Error{Line: raw.line, Msg: fmt.Sprintf("Invalid exit “%s”", k.String())}
				return
			}
			room.Exits[dir] = ref(string(target), raw.line)
		})
		if err != nil {
			return room, err
		}
	}

	// directions = { { "pordo", "kelo", "Vi malfermas la pordon." }, ... }
	if dirs := getTable(tbl, "directions"); dirs != nil {
		for i := 1; i <= dirs.MaxN(); i++ {
			d, ok := dirs.RawGetInt(i).(*lua.LTable)
			if !ok {
				return room, &builder.Error{Line: raw.line, Msg: "Invalid direction"}
			}
			room.Directions = append(room.Directions, builder.Direction{
				Name:        d.RawGetInt(1).String(),
				Target:      ref(d.RawGetInt(2).String(), raw.line),
				Description: lua.LVAsString(d.RawGetInt(3)),
				Line:        raw.line,
			})
		}
	}

	return room, nil
}

// pronouns maps the pronoun names accepted in object and monster tables.
var pronouns = map[string]types.Pronoun{
	"viro":    types.PronounMan,
	"ino":     types.PronounWoman,
	"besto":   types.PronounAnimal,
	"pluralo": types.PronounPlural,
}

// movable reads the fields shared by Object and Monster tables.
func movable(raw rawItem) (name string, desc builder.Text, pronoun types.Pronoun, hasPronoun bool,
	loc builder.Location, attrs []builder.Ref, err error) {
	tbl := raw.table
	name = getString(tbl, "name")
	desc = getText(tbl, "description", raw.line)
	attrs = refs(getStrings(tbl, "attributes"), raw.line)

	if p := getString(tbl, "pronoun"); p != "" {
		if pronoun, hasPronoun = pronouns[p]; !hasPronoun {
			err = &builder.Error{Line: raw.line, Msg: fmt.Sprintf("Invalid pronoun “%s”", p)}
			return
		}
	}

	if where := getString(tbl, "location"); where != "" {
		loc.Ref = ref(where, raw.line)
	}
	loc.Carried = getBool(tbl, "carried", false)
	return
}

// objectStats maps the numeric Object table fields to the draft.
func objectStats(o *builder.Object) map[string]*int {
	return map[string]*int{
		"points":      &o.Points,
		"weight":      &o.Weight,
		"size":        &o.Size,
		"shot_damage": &o.ShotDamage,
		"shots":       &o.Shots,
		"hit_damage":  &o.HitDamage,
		"stab_damage": &o.StabDamage,
		"food":        &o.FoodPoints,
		"drink":       &o.DrinkPoints,
		"burn_time":   &o.BurnTime,
		"end":         &o.End,
		"container":   &o.ContainerSize,
	}
}

func monsterStats(m *builder.Monster) map[string]*int {
	return map[string]*int{
		"hunger":     &m.Hunger,
		"thirst":     &m.Thirst,
		"attack":     &m.Attack,
		"protection": &m.Protection,
		"lives":      &m.Lives,
		"escape":     &m.Escape,
		"wander":     &m.Wander,
	}
}

// setStats reads every present numeric field in sorted key order, so the
// first bad field reported is always the same.
func setStats(raw rawItem, stats map[string]*int) error {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, err := getByte(raw.table, k, raw.line)
		if err != nil {
			return err
		}
		*stats[k] = n
	}
	return nil
}

func compileObject(raw rawItem) (builder.Object, error) {
	o := builder.Object{Symbol: raw.id, Line: raw.line}

	var err error
	o.Name, o.Description, o.Pronoun, o.HasPronoun, o.Location, o.Attributes, err = movable(raw)
	if err != nil {
		return o, err
	}
	o.ReadText = getText(raw.table, "read", raw.line)
	if getBool(raw.table, "portable", true) {
		o.Flags |= types.ObjectPortable
	}
	if enter := getString(raw.table, "enter"); enter != "" {
		o.EnterRoom = ref(enter, raw.line)
	}
	return o, setStats(raw, objectStats(&o))
}

func compileMonster(raw rawItem) (builder.Monster, error) {
	m := builder.Monster{Symbol: raw.id, Line: raw.line}

	var err error
	m.Name, m.Description, m.Pronoun, m.HasPronoun, m.Location, m.Attributes, err = movable(raw)
	if err != nil {
		return m, err
	}
	if dead := getString(raw.table, "dead"); dead != "" {
		m.DeadObject = ref(dead, raw.line)
	}

	m.Aggression = getInt(raw.table, "aggression")
	if m.Aggression < -32768 || m.Aggression > 32767 {
		return m, &builder.Error{Line: raw.line, Msg: "“aggression” is out of range"}
	}
	return m, setStats(raw, monsterStats(&m))
}

// roleKeys are the keys of a Rule table, indexed by role.
var roleKeys = [types.NRoles]string{"room", "object", "tool", "monster"}

// helperFields checks that tbl was made by a helper of the given type and
// returns its kind, symbolic operand and numeric operand.
func helperFields(tbl *lua.LTable, typ string, line int) (int, builder.Ref, int, error) {
	if getString(tbl, "type") != typ {
		return 0, builder.Ref{}, 0, &builder.Error{Line: line, Msg: fmt.Sprintf("Expected %s", typ)}
	}
	if l := getInt(tbl, "line"); l > 0 {
		line = l
	}
	n := getInt(tbl, "n")
	if n < 0 || n > 255 {
		return 0, builder.Ref{}, 0, &builder.Error{Line: line, Msg: "Number out of range"}
	}
	return getInt(tbl, "kind"), ref(getString(tbl, "ref"), line), n, nil
}

func compileRule(raw rawItem) (builder.Rule, error) {
	tbl := raw.table
	r := builder.Rule{
		Line:    raw.line,
		Verb:    raw.id,
		Message: getText(tbl, "message", raw.line),
	}

	var err error
	if r.Points, err = getByte(tbl, "points", raw.line); err != nil {
		return r, err
	}

	for role, key := range roleKeys {
		part := getTable(tbl, key)
		if part == nil {
			continue
		}
		if c := getTable(part, "condition"); c != nil {
			kind, sym, n, err := helperFields(c, "condition", raw.line)
			if err != nil {
				return r, err
			}
			r.Conditions[role] = builder.Condition{Kind: types.ConditionKind(kind), Ref: sym, Number: n}
		}
		if a := getTable(part, "action"); a != nil {
			kind, sym, n, err := helperFields(a, "action", raw.line)
			if err != nil {
				return r, err
			}
			r.Actions[role] = builder.Action{Kind: types.ActionKind(kind), Ref: sym, Number: n}
		}
	}
	return r, nil
}

// sortedLuaFiles returns .lua files in a directory, with game.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
