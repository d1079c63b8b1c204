// Package compiler compiles adventure source files into world
// definitions. A source file is a sequence of top-level items:
//
//	nomo "La kaverno"
//	aŭtoro "Iu"
//	jaro "2024"
//
//	ejo kuirejo {
//	        priskribo "Vi estas en la kuirejo."
//	        norden ĝardeno
//	        aĵo pomo { nomo "ruĝa pomo" manĝebla }
//	}
//
// Symbols may be used before they are declared.
package compiler

import (
	"fmt"
	"io"
	"os"

	"github.com/nathoo/aventuro/builder"
	"github.com/nathoo/aventuro/types"
)

// Parse compiles the source read from r.
func Parse(r io.Reader) (*types.Definition, error) {
	p := &parser{lex: newLexer(r), b: builder.New()}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.b.Build()
}

// ParseFile compiles the source file at path.
func ParseFile(path string) (*types.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	def, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", path, err)
	}
	return def, nil
}

type parser struct {
	lex *lexer
	b   *builder.Builder
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &builder.Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// exitKeywords maps the compass keywords to exit indices.
var exitKeywords = map[string]int{
	"norden":     types.DirNorth,
	"orienten":   types.DirEast,
	"suden":      types.DirSouth,
	"okcidenten": types.DirWest,
	"supren":     types.DirUp,
	"suben":      types.DirDown,
	"elen":       types.DirOut,
}

var exitNames = [types.NDirections]string{
	"north", "east", "south", "west", "up", "down", "out",
}

var pronounKeywords = map[string]types.Pronoun{
	"viro":    types.PronounMan,
	"ino":     types.PronounWoman,
	"besto":   types.PronounAnimal,
	"pluralo": types.PronounPlural,
}

func (p *parser) parse() error {
	header := map[string]*string{
		"nomo":      &p.b.Name,
		"aŭtoro":    &p.b.Author,
		"jaro":      &p.b.Year,
		"enkonduko": &p.b.Introduction,
	}

	for {
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return nil
		}
		if tok.kind != tokKeyword {
			return p.errorf(tok.line, "Expected toplevel item")
		}

		if field, ok := header[tok.text]; ok {
			if *field != "" {
				return p.errorf(tok.line, "The game already has a “%s”", tok.text)
			}
			if *field, err = p.expectString(); err != nil {
				return err
			}
			continue
		}

		switch tok.text {
		case "teksto":
			var name, text string
			if name, err = p.expectSymbol(); err != nil {
				return err
			}
			if text, err = p.expectString(); err != nil {
				return err
			}
			err = p.b.AddText(name, text, tok.line)
		case "eco":
			var name string
			if name, err = p.expectSymbol(); err == nil {
				p.b.SetPlayerAttribute(name, tok.line)
			}
		case "ejo":
			err = p.parseRoom(tok.line)
		case "aĵo":
			err = p.parseObject(tok.line, builder.Location{})
		case "monstro":
			err = p.parseMonster(tok.line, builder.Location{})
		case "alinomo":
			err = p.parseAlias(tok.line)
		case "fenomeno":
			err = p.parseRule(tok.line)
		default:
			err = p.errorf(tok.line, "Expected toplevel item")
		}
		if err != nil {
			return err
		}
	}
}

func (p *parser) expect(kind tokenKind, msg string) (token, error) {
	tok, err := p.lex.next()
	if err != nil {
		return tok, err
	}
	if tok.kind != kind {
		return tok, p.errorf(tok.line, "%s", msg)
	}
	return tok, nil
}

func (p *parser) expectString() (string, error) {
	tok, err := p.expect(tokString, "String expected")
	return tok.text, err
}

func (p *parser) expectSymbol() (string, error) {
	tok, err := p.expect(tokSymbol, "Item name expected")
	return tok.text, err
}

func (p *parser) expectRef() (builder.Ref, error) {
	tok, err := p.expect(tokSymbol, "Item name expected")
	return builder.Ref{Symbol: tok.text, Line: tok.line}, err
}

// expectName reads an attribute name. Built-in attribute names are
// keywords, so those are accepted too.
func (p *parser) expectName() (builder.Ref, error) {
	tok, err := p.lex.next()
	if err != nil {
		return builder.Ref{}, err
	}
	if tok.kind != tokSymbol && tok.kind != tokKeyword {
		return builder.Ref{}, p.errorf(tok.line, "Item name expected")
	}
	return builder.Ref{Symbol: tok.text, Line: tok.line}, nil
}

func (p *parser) expectNumber(min, max int) (int, error) {
	tok, err := p.expect(tokNumber, "Number expected")
	if err != nil {
		return 0, err
	}
	if tok.num < min || tok.num > max {
		return 0, p.errorf(tok.line, "Number out of range")
	}
	return tok.num, nil
}

// expectText reads a string or a symbol naming a text.
func (p *parser) expectText() (builder.Text, error) {
	tok, err := p.lex.next()
	if err != nil {
		return builder.Text{}, err
	}
	switch tok.kind {
	case tokString:
		return builder.Literal(tok.text), nil
	case tokSymbol:
		return builder.TextRef(tok.text, tok.line), nil
	}
	return builder.Text{}, p.errorf(tok.line, "String expected")
}

func (p *parser) openBrace() error {
	_, err := p.expect(tokOpenBrace, "Expected ‘{’")
	return err
}

// block reads items up to the closing brace, calling item for each
// keyword.
func (p *parser) block(what string, item func(tok token) error) error {
	if err := p.openBrace(); err != nil {
		return err
	}
	for {
		tok, err := p.lex.next()
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokCloseBrace:
			return nil
		case tokKeyword:
			if err := item(tok); err != nil {
				return err
			}
		default:
			return p.errorf(tok.line, "Expected %s item or ‘}’", what)
		}
	}
}

// once guards against a property being given twice.
type once map[string]bool

func (o once) check(p *parser, tok token, what, name string) error {
	if o[tok.text] {
		return p.errorf(tok.line, "%s already has a %s", what, name)
	}
	o[tok.text] = true
	return nil
}

func (p *parser) parseRoom(line int) error {
	name, err := p.expectSymbol()
	if err != nil {
		return err
	}
	r := builder.Room{Symbol: name, Line: line}
	seen := once{}
	here := builder.Location{Ref: builder.Ref{Symbol: name, Line: line}}

	err = p.block("room", func(tok token) error {
		if dir, ok := exitKeywords[tok.text]; ok {
			if err := seen.check(p, tok, "Room", exitNames[dir]+" direction"); err != nil {
				return err
			}
			var err error
			r.Exits[dir], err = p.expectRef()
			return err
		}

		switch tok.text {
		case "nomo":
			if err := seen.check(p, tok, "Room", "name"); err != nil {
				return err
			}
			var err error
			r.Name, err = p.expectString()
			return err
		case "priskribo":
			if err := seen.check(p, tok, "Room", "description"); err != nil {
				return err
			}
			var err error
			r.Description, err = p.expectText()
			return err
		case "direkto":
			d := builder.Direction{Line: tok.line}
			var err error
			if d.Name, err = p.expectString(); err != nil {
				return err
			}
			if d.Target, err = p.expectRef(); err != nil {
				return err
			}
			next, err := p.lex.next()
			if err != nil {
				return err
			}
			if next.kind == tokString {
				d.Description = next.text
			} else {
				p.lex.putBack(next)
			}
			r.Directions = append(r.Directions, d)
			return nil
		case "luma", "nelumigebla", "ludfino":
			r.Flags |= builder.RoomFlags[tok.text]
			return nil
		case "poentoj":
			if err := seen.check(p, tok, "Room", "score"); err != nil {
				return err
			}
			var err error
			r.Points, err = p.expectNumber(0, 255)
			return err
		case "eco":
			a, err := p.expectRef()
			r.Attributes = append(r.Attributes, a)
			return err
		case "aĵo":
			return p.parseObject(tok.line, here)
		case "monstro":
			return p.parseMonster(tok.line, here)
		}
		return p.errorf(tok.line, "Expected room item or ‘}’")
	})
	if err != nil {
		return err
	}
	return p.b.AddRoom(r)
}

// objectStats maps the numeric object properties to their fields.
func objectStats(o *builder.Object) map[string]*int {
	return map[string]*int{
		"poentoj":    &o.Points,
		"pezo":       &o.Weight,
		"grando":     &o.Size,
		"perpafo":    &o.ShotDamage,
		"ŝargo":      &o.Shots,
		"perbato":    &o.HitDamage,
		"perpiko":    &o.StabDamage,
		"manĝeblo":   &o.FoodPoints,
		"trinkeblo":  &o.DrinkPoints,
		"fajrodaŭro": &o.BurnTime,
		"fino":       &o.End,
		"enhavo":     &o.ContainerSize,
	}
}

// parseMovable handles the properties shared by objects and monsters. It
// reports whether tok was one of them.
func (p *parser) parseMovable(tok token, seen once, name *string, desc *builder.Text,
	pronoun *types.Pronoun, hasPronoun *bool, loc *builder.Location, attrs *[]builder.Ref) (bool, error) {
	var err error
	switch tok.text {
	case "nomo":
		if err = seen.check(p, tok, "Item", "name"); err == nil {
			*name, err = p.expectString()
		}
	case "priskribo":
		if err = seen.check(p, tok, "Item", "description"); err == nil {
			*desc, err = p.expectText()
		}
	case "viro", "ino", "besto", "pluralo":
		if err = seen.check(p, token{text: "pronoun", line: tok.line}, "Item", "pronoun"); err == nil {
			*pronoun = pronounKeywords[tok.text]
			*hasPronoun = true
		}
	case "loko":
		if err = seen.check(p, token{text: "location", line: tok.line}, "Item", "location"); err == nil {
			loc.Ref, err = p.expectRef()
			loc.Carried = false
		}
	case "kunportata":
		if err = seen.check(p, token{text: "location", line: tok.line}, "Item", "location"); err == nil {
			*loc = builder.Location{Carried: true}
		}
	case "eco":
		var a builder.Ref
		a, err = p.expectRef()
		*attrs = append(*attrs, a)
	default:
		return false, nil
	}
	return true, err
}

func (p *parser) parseObject(line int, loc builder.Location) error {
	name, err := p.expectSymbol()
	if err != nil {
		return err
	}
	o := builder.Object{Symbol: name, Line: line, Location: loc, Flags: types.ObjectPortable}
	stats := objectStats(&o)
	seen := once{}
	inside := builder.Location{Ref: builder.Ref{Symbol: name, Line: line}}

	err = p.block("object", func(tok token) error {
		ok, err := p.parseMovable(tok, seen, &o.Name, &o.Description, &o.Pronoun, &o.HasPronoun, &o.Location, &o.Attributes)
		if ok || err != nil {
			return err
		}

		if field, ok := stats[tok.text]; ok {
			if err := seen.check(p, tok, "Object", "“"+tok.text+"”"); err != nil {
				return err
			}
			*field, err = p.expectNumber(0, 255)
			return err
		}
		if flag, ok := builder.ObjectFlags[tok.text]; ok {
			o.Flags |= flag
			return nil
		}

		switch tok.text {
		case "neportebla":
			o.Flags &^= types.ObjectPortable
			return nil
		case "legebla":
			if err := seen.check(p, tok, "Object", "text to read"); err != nil {
				return err
			}
			o.ReadText, err = p.expectText()
			return err
		case "enen":
			if err := seen.check(p, tok, "Object", "room to enter"); err != nil {
				return err
			}
			o.EnterRoom, err = p.expectRef()
			return err
		case "aĵo":
			return p.parseObject(tok.line, inside)
		}
		return p.errorf(tok.line, "Expected object item or ‘}’")
	})
	if err != nil {
		return err
	}
	if o.Name == "" {
		return p.errorf(line, "Object is missing a name")
	}
	return p.b.AddObject(o)
}

func (p *parser) parseMonster(line int, loc builder.Location) error {
	name, err := p.expectSymbol()
	if err != nil {
		return err
	}
	m := builder.Monster{Symbol: name, Line: line, Location: loc}
	stats := map[string]*int{
		"malsato": &m.Hunger,
		"soifo":   &m.Thirst,
		"atako":   &m.Attack,
		"defendo": &m.Protection,
		"vivoj":   &m.Lives,
		"fuĝo":    &m.Escape,
		"vagado":  &m.Wander,
	}
	seen := once{}
	with := builder.Location{Ref: builder.Ref{Symbol: name, Line: line}}

	err = p.block("monster", func(tok token) error {
		ok, err := p.parseMovable(tok, seen, &m.Name, &m.Description, &m.Pronoun, &m.HasPronoun, &m.Location, &m.Attributes)
		if ok || err != nil {
			return err
		}

		if field, ok := stats[tok.text]; ok {
			if err := seen.check(p, tok, "Monster", "“"+tok.text+"”"); err != nil {
				return err
			}
			*field, err = p.expectNumber(0, 255)
			return err
		}

		switch tok.text {
		case "agreso":
			if err := seen.check(p, tok, "Monster", "“agreso”"); err != nil {
				return err
			}
			m.Aggression, err = p.expectNumber(-32768, 32767)
			return err
		case "kadavro":
			if err := seen.check(p, tok, "Monster", "dead body"); err != nil {
				return err
			}
			m.DeadObject, err = p.expectRef()
			return err
		case "aĵo":
			return p.parseObject(tok.line, with)
		}
		return p.errorf(tok.line, "Expected monster item or ‘}’")
	})
	if err != nil {
		return err
	}
	if m.Name == "" {
		return p.errorf(line, "Monster is missing a name")
	}
	return p.b.AddMonster(m)
}

func (p *parser) parseAlias(line int) error {
	target, err := p.expectRef()
	if err != nil {
		return err
	}
	phrase, err := p.expectString()
	if err != nil {
		return err
	}
	p.b.AddAlias(builder.Alias{Target: target, Phrase: phrase, Line: line})
	return nil
}

var roleKeywords = map[string]types.Role{
	"ejo":     types.RoleRoom,
	"aĵo":     types.RoleObject,
	"pero":    types.RoleTool,
	"monstro": types.RoleMonster,
}

func (p *parser) parseRule(line int) error {
	verb, err := p.expectString()
	if err != nil {
		return err
	}
	r := builder.Rule{Line: line, Verb: verb}
	seen := once{}

	err = p.block("rule", func(tok token) error {
		if role, ok := roleKeywords[tok.text]; ok {
			if err := seen.check(p, tok, "Rule", "“"+tok.text+"” part"); err != nil {
				return err
			}
			return p.parseRole(&r, role)
		}

		var err error
		switch tok.text {
		case "mesaĝo":
			if err = seen.check(p, tok, "Rule", "message"); err == nil {
				r.Message, err = p.expectText()
			}
		case "poentoj":
			if err = seen.check(p, tok, "Rule", "score"); err == nil {
				r.Points, err = p.expectNumber(0, 255)
			}
		default:
			err = p.errorf(tok.line, "Expected rule item or ‘}’")
		}
		return err
	})
	if err != nil {
		return err
	}
	p.b.AddRule(r)
	return nil
}

// parseRole reads the condition and action for one role:
//
//	aĵo { se estas sonorilo  do eco sonorita }
func (p *parser) parseRole(r *builder.Rule, role types.Role) error {
	seen := once{}
	return p.block("rule part", func(tok token) error {
		var err error
		switch tok.text {
		case "se":
			if err = seen.check(p, tok, "Rule part", "condition"); err == nil {
				r.Conditions[role], err = p.parseCondition()
			}
		case "do":
			if err = seen.check(p, tok, "Rule part", "action"); err == nil {
				r.Actions[role], err = p.parseAction()
			}
		default:
			err = p.errorf(tok.line, "Expected ‘se’, ‘do’ or ‘}’")
		}
		return err
	})
}

var conditionRefs = map[string]types.ConditionKind{
	"loko":           types.CondInRoom,
	"estas":          types.CondObjectIs,
	"ĉeestas":        types.CondObjectPresent,
	"kunportata":     types.CondObjectCarried,
	"samnoma":        types.CondSameName,
	"samsubstantiva": types.CondSameNoun,
	"samadjektiva":   types.CondSameAdjective,
}

var conditionNumbers = map[string]types.ConditionKind{
	"ŝargo":      types.CondShots,
	"pezo":       types.CondWeight,
	"grando":     types.CondSize,
	"enhavo":     types.CondContainerSize,
	"fajrodaŭro": types.CondBurnTime,
}

// conditionAttributes gives the set and negated kinds for each attribute
// namespace keyword.
var conditionAttributes = map[string][2]types.ConditionKind{
	"eco":    {types.CondAttribute, types.CondNotAttribute},
	"ejeco":  {types.CondRoomAttribute, types.CondNotRoomAttribute},
	"ludeco": {types.CondPlayerAttribute, types.CondNotPlayerAttribute},
}

func (p *parser) parseCondition() (builder.Condition, error) {
	tok, err := p.expect(tokKeyword, "Expected condition")
	if err != nil {
		return builder.Condition{}, err
	}

	negate := tok.text == "ne"
	if negate {
		if tok, err = p.expect(tokKeyword, "Expected condition"); err != nil {
			return builder.Condition{}, err
		}
		if _, ok := conditionAttributes[tok.text]; !ok {
			return builder.Condition{}, p.errorf(tok.line, "Only attributes can be negated")
		}
	}

	c := builder.Condition{Ref: builder.Ref{Line: tok.line}}
	if kinds, ok := conditionAttributes[tok.text]; ok {
		c.Kind = kinds[0]
		if negate {
			c.Kind = kinds[1]
		}
		c.Ref, err = p.expectName()
		return c, err
	}
	if kind, ok := conditionRefs[tok.text]; ok {
		c.Kind = kind
		c.Ref, err = p.expectRef()
		return c, err
	}
	if kind, ok := conditionNumbers[tok.text]; ok {
		c.Kind = kind
		c.Number, err = p.expectNumber(0, 255)
		return c, err
	}

	switch tok.text {
	case "ŝanco":
		c.Kind = types.CondChance
		c.Number, err = p.expectNumber(0, 100)
	case "nenio":
		c.Kind = types.CondNothing
	case "io":
		c.Kind = types.CondSomething
	default:
		err = p.errorf(tok.line, "Expected condition")
	}
	return c, err
}

var actionRefs = map[string]types.ActionKind{
	"alien":     types.ActMove,
	"nova":      types.ActReplaceObject,
	"kopio":     types.ActCopyObject,
	"nomo":      types.ActRename,
	"adjektivo": types.ActReadjective,
}

var actionNumbers = map[string]types.ActionKind{
	"ŝargo":      types.ActShots,
	"pezo":       types.ActWeight,
	"grando":     types.ActSize,
	"enhavo":     types.ActContainerSize,
	"fajrodaŭro": types.ActBurnTime,
}

var actionAttributes = map[string][2]types.ActionKind{
	"eco":    {types.ActSetAttribute, types.ActUnsetAttribute},
	"ejeco":  {types.ActSetRoomAttribute, types.ActUnsetRoomAttribute},
	"ludeco": {types.ActSetPlayerAttribute, types.ActUnsetPlayerAttribute},
}

func (p *parser) parseAction() (builder.Action, error) {
	tok, err := p.expect(tokKeyword, "Expected action")
	if err != nil {
		return builder.Action{}, err
	}

	unset := tok.text == "ne"
	if unset {
		if tok, err = p.expect(tokKeyword, "Expected action"); err != nil {
			return builder.Action{}, err
		}
		if _, ok := actionAttributes[tok.text]; !ok {
			return builder.Action{}, p.errorf(tok.line, "Only attributes can be negated")
		}
	}

	a := builder.Action{Ref: builder.Ref{Line: tok.line}}
	if kinds, ok := actionAttributes[tok.text]; ok {
		a.Kind = kinds[0]
		if unset {
			a.Kind = kinds[1]
		}
		a.Ref, err = p.expectName()
		return a, err
	}
	if kind, ok := actionRefs[tok.text]; ok {
		a.Kind = kind
		a.Ref, err = p.expectRef()
		return a, err
	}
	if kind, ok := actionNumbers[tok.text]; ok {
		a.Kind = kind
		a.Number, err = p.expectNumber(0, 255)
		return a, err
	}

	switch tok.text {
	case "porti":
		a.Kind = types.ActCarry
	case "forigi":
		a.Kind = types.ActNowhere
	case "ekigi":
		a.Kind = types.ActTrigger
		a.Ref.Symbol, err = p.expectString()
	default:
		err = p.errorf(tok.line, "Expected action")
	}
	return a, err
}
