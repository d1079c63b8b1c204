package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/aventuro/types"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	gameLine int
	texts    []rawText
	rooms    []rawItem
	objects  []rawItem
	monsters []rawItem
	aliases  []rawAlias
	rules    []rawItem
}

// LoadLua runs a Lua game script, or every .lua file of a directory with
// game.lua first, and compiles what it declares. The Lua VM is discarded
// after loading.
func LoadLua(path string, opts ...Option) (*types.Definition, error) {
	o := newOptions(opts)

	files, err := luaFiles(path)
	if err != nil {
		return nil, err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	def, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", path, err)
	}
	o.logger.Debug("lua game compiled",
		zap.String("path", path),
		zap.Int("files", len(files)),
		zap.Int("rooms", len(def.Rooms)),
		zap.Int("rules", len(def.Rules)),
	)
	return def, nil
}

// luaFiles lists the scripts to run for path.
func luaFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", path)
	}

	var files []string
	for _, n := range sortedLuaFiles(names) {
		files = append(files, filepath.Join(path, n))
	}
	return files, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the script.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}

	// Game content must not depend on the Lua random generator.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
