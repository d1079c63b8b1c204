package loader

import (
	"strconv"
	"strings"

	"github.com/nathoo/aventuro/types"
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerActionHelpers(L)
}

// callerLine returns the line of the Lua code that called the current Go
// function, or 0 if it is unknown.
func callerLine(L *lua.LState) int {
	where := strings.TrimSuffix(L.Where(1), ":")
	i := strings.LastIndexByte(where, ':')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(where[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// curried registers a constructor used as Name "id" { ... }.
func curried(L *lua.LState, name string, add func(id string, line int, tbl *lua.LTable)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		line := callerLine(L)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(id, line, L.CheckTable(1))
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { name = "...", author = "...", year = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		coll.gameLine = callerLine(L)
		return 0
	}))

	// Text "id" "contents"
	L.SetGlobal("Text", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		line := callerLine(L)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.texts = append(coll.texts, rawText{id: id, line: line, text: L.CheckString(1)})
			return 0
		}))
		return 1
	}))

	curried(L, "Room", func(id string, line int, tbl *lua.LTable) {
		coll.rooms = append(coll.rooms, rawItem{id: id, line: line, table: tbl})
	})
	curried(L, "Object", func(id string, line int, tbl *lua.LTable) {
		coll.objects = append(coll.objects, rawItem{id: id, line: line, table: tbl})
	})
	curried(L, "Monster", func(id string, line int, tbl *lua.LTable) {
		coll.monsters = append(coll.monsters, rawItem{id: id, line: line, table: tbl})
	})
	// Rule "verb" { message = "...", object = { condition = ..., action = ... } }
	curried(L, "Rule", func(verb string, line int, tbl *lua.LTable) {
		coll.rules = append(coll.rules, rawItem{id: verb, line: line, table: tbl})
	})

	// Alias("id", "noun phrase")
	L.SetGlobal("Alias", L.NewFunction(func(L *lua.LState) int {
		coll.aliases = append(coll.aliases, rawAlias{
			target: L.CheckString(1),
			phrase: L.CheckString(2),
			line:   callerLine(L),
		})
		return 0
	}))

	// Ref("id") refers to a named text, or to a room to share its
	// description.
	L.SetGlobal("Ref", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("__ref", lua.LString(L.CheckString(1)))
		tbl.RawSetString("line", lua.LNumber(callerLine(L)))
		L.Push(tbl)
		return 1
	}))
}

// argKind is the argument a condition or action helper takes.
type argKind int

const (
	argNone argKind = iota
	argRef
	argNumber
)

type helper struct {
	name string
	kind int
	arg  argKind
}

var conditionHelpers = []helper{
	{"InRoom", int(types.CondInRoom), argRef},
	{"Is", int(types.CondObjectIs), argRef},
	{"Present", int(types.CondObjectPresent), argRef},
	{"Carried", int(types.CondObjectCarried), argRef},
	{"Shots", int(types.CondShots), argNumber},
	{"Weight", int(types.CondWeight), argNumber},
	{"Size", int(types.CondSize), argNumber},
	{"Capacity", int(types.CondContainerSize), argNumber},
	{"BurnTime", int(types.CondBurnTime), argNumber},
	{"Attr", int(types.CondAttribute), argRef},
	{"NotAttr", int(types.CondNotAttribute), argRef},
	{"RoomAttr", int(types.CondRoomAttribute), argRef},
	{"NotRoomAttr", int(types.CondNotRoomAttribute), argRef},
	{"PlayerAttr", int(types.CondPlayerAttribute), argRef},
	{"NotPlayerAttr", int(types.CondNotPlayerAttribute), argRef},
	{"Chance", int(types.CondChance), argNumber},
	{"SameAdjective", int(types.CondSameAdjective), argRef},
	{"SameName", int(types.CondSameName), argRef},
	{"SameNoun", int(types.CondSameNoun), argRef},
	{"Nothing", int(types.CondNothing), argNone},
	{"Something", int(types.CondSomething), argNone},
}

var actionHelpers = []helper{
	{"MoveTo", int(types.ActMove), argRef},
	{"Replace", int(types.ActReplaceObject), argRef},
	{"Copy", int(types.ActCopyObject), argRef},
	{"SetShots", int(types.ActShots), argNumber},
	{"SetWeight", int(types.ActWeight), argNumber},
	{"SetSize", int(types.ActSize), argNumber},
	{"SetCapacity", int(types.ActContainerSize), argNumber},
	{"SetBurnTime", int(types.ActBurnTime), argNumber},
	{"SetAttr", int(types.ActSetAttribute), argRef},
	{"UnsetAttr", int(types.ActUnsetAttribute), argRef},
	{"SetRoomAttr", int(types.ActSetRoomAttribute), argRef},
	{"UnsetRoomAttr", int(types.ActUnsetRoomAttribute), argRef},
	{"SetPlayerAttr", int(types.ActSetPlayerAttribute), argRef},
	{"UnsetPlayerAttr", int(types.ActUnsetPlayerAttribute), argRef},
	{"Carry", int(types.ActCarry), argNone},
	{"Remove", int(types.ActNowhere), argNone},
	{"Rename", int(types.ActRename), argRef},
	{"Readjective", int(types.ActReadjective), argRef},
	{"Trigger", int(types.ActTrigger), argRef},
}

// register makes each helper a global returning a marker table such as
// { type = "condition", kind = 2, ref = "lampo", line = 12 }.
func register(L *lua.LState, typ string, helpers []helper) {
	for _, h := range helpers {
		h := h
		L.SetGlobal(h.name, L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("type", lua.LString(typ))
			tbl.RawSetString("kind", lua.LNumber(h.kind))
			tbl.RawSetString("line", lua.LNumber(callerLine(L)))
			switch h.arg {
			case argRef:
				tbl.RawSetString("ref", lua.LString(L.CheckString(1)))
			case argNumber:
				tbl.RawSetString("n", lua.LNumber(L.CheckInt(1)))
			}
			L.Push(tbl)
			return 1
		}))
	}
}

func registerConditionHelpers(L *lua.LState) {
	register(L, "condition", conditionHelpers)
}

func registerActionHelpers(L *lua.LState) {
	register(L, "action", actionHelpers)
}
