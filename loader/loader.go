package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Fedya1234/CardBattle/engine/state"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	game     *lua.LTable
	heroes   []rawDef
	units    []rawDef
	cards    []rawCard
	decks    []rawDef
	passives []rawDef
}

// blockedGlobals reach outside the VM or around its metatables.
var blockedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring",
	"rawset", "rawget", "rawequal",
	"collectgarbage",
}

// Load runs every .lua file in dir, game.lua first, then compiles and
// validates what they declared. Validation warnings go to logger; a nil
// logger discards them. The VM does not outlive the call.
func Load(dir string, logger *zap.Logger) (*state.Defs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := contentFiles(dir)
	if err != nil {
		return nil, err
	}

	L, coll := newVM()
	defer L.Close()
	for _, f := range files {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling content: %w", err)
	}
	warnings, err := validate(defs)
	for _, w := range warnings {
		logger.Warn("content warning", zap.String("dir", dir), zap.String("detail", w))
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("content loaded",
		zap.String("dir", dir),
		zap.Strings("files", files),
		zap.Int("cards", len(defs.Cards)),
		zap.Int("units", len(defs.Units)),
		zap.Int("heroes", len(defs.Heroes)),
		zap.Int("decks", len(defs.Decks)),
		zap.Int("passives", len(defs.Passives)),
	)
	return defs, nil
}

// contentFiles lists the .lua files in dir with game.lua first and the
// rest in name order, so every file can rely on the game settings.
func contentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// ReadDir sorts by name already.
	if i := slices.Index(files, "game.lua"); i > 0 {
		files = slices.Insert(slices.Delete(files, i, i+1), 0, "game.lua")
	}
	return files, nil
}

// newVM opens a Lua state with the base, table, string and math libraries
// only, strips blockedGlobals and math's random functions, and registers the
// content constructors against a fresh collector.
func newVM() (*lua.LState, *collector) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if math, ok := L.GetGlobal("math").(*lua.LTable); ok {
		math.RawSetString("random", lua.LNil)
		math.RawSetString("randomseed", lua.LNil)
	}

	coll := &collector{}
	registerAPI(L, coll)
	return L, coll
}
