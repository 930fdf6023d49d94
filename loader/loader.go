package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/luavm"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/logger"
)

// ScriptsDir is the module subdirectory whose .lua files are registered as
// runtime scripts instead of being executed at load time.
const ScriptsDir = "scripts"

// rawDef holds a definition table before compilation.
type rawDef struct {
	id     string
	table  *lua.LTable
	file   string
	module int
}

// rawScript holds runtime script source.
type rawScript struct {
	id     string
	source string
	file   string
	module int
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game      *lua.LTable
	areas     []rawDef
	actors    []rawDef
	abilities []rawDef
	items     []rawDef
	sizes     []rawDef
	scripts   []rawScript

	// file and module identify the file being executed.
	file   string
	module int
}

func (c *collector) def(id string, tbl *lua.LTable) rawDef {
	return rawDef{id: id, table: tbl, file: c.file, module: c.module}
}

// Load reads a module directory, compiles it into definitions, validates
// references and returns the immutable Defs. The Lua VM is discarded after
// loading.
func Load(dir string) (*state.Defs, error) {
	return LoadAll(dir)
}

// LoadAll loads several module directories into one set of definitions.
// Later modules override definitions of earlier ones with the same id; a
// duplicate id within one module is an error.
func LoadAll(dirs ...string) (*state.Defs, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no module directories given")
	}

	L := luavm.NewState()
	defer L.Close()

	coll := &collector{}
	registerAPI(L, coll)

	for i, dir := range dirs {
		coll.module = i
		if err := loadModule(L, coll, dir); err != nil {
			return nil, err
		}
	}

	defs, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling module data: %w", err)
	}

	if err := validate(defs); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"modules": len(dirs),
		"areas":   len(defs.Areas),
		"actors":  len(defs.Actors),
		"scripts": len(defs.Scripts),
	}).Info("Module definitions loaded")
	return defs, nil
}

func loadModule(L *lua.LState, coll *collector, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading module directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return fmt.Errorf("no .lua files found in %s", dir)
	}

	for _, f := range sortedLuaFiles(luaFiles) {
		coll.file = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}

	return loadScripts(coll, filepath.Join(dir, ScriptsDir))
}

// loadScripts registers every .lua file under dir as a script named after
// the file. A module without a scripts directory is fine.
func loadScripts(coll *collector, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading scripts directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading script %s: %w", e.Name(), err)
		}
		coll.scripts = append(coll.scripts, rawScript{
			id:     strings.TrimSuffix(e.Name(), ".lua"),
			source: string(src),
			file:   filepath.Join(ScriptsDir, e.Name()),
			module: coll.module,
		})
	}
	return nil
}

// sortedLuaFiles returns .lua files with game.lua first and the rest sorted
// alphabetically.
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
