// Package loader reads goal decks written in Lua.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/elysium/types"
)

// Deck is a compiled Lua deck: an optional title and goal templates in
// definition order.
type Deck struct {
	Title    string
	Cards    []types.GoalCard
	Warnings []string
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	deck  *lua.LTable
	goals []rawGoal
	file  string
}

// Load reads a single .lua file, or every .lua file in a directory, and
// compiles and validates the goals they define. The Lua VM is discarded
// after loading.
func Load(path string) (*Deck, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading deck %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("reading deck directory %s: %w", path, err)
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
		for _, n := range sortedLuaFiles(names) {
			files = append(files, filepath.Join(path, n))
		}
	} else {
		files = []string{path}
	}

	return run(func(L *lua.LState, coll *collector) error {
		for _, f := range files {
			coll.file = filepath.Base(f)
			if err := L.DoFile(f); err != nil {
				return fmt.Errorf("executing %s: %w", coll.file, err)
			}
		}
		return nil
	})
}

// LoadString compiles a deck from Lua source. name is used in messages.
func LoadString(name, src string) (*Deck, error) {
	return run(func(L *lua.LState, coll *collector) error {
		coll.file = name
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("executing %s: %w", name, err)
		}
		return nil
	})
}

func run(exec func(*lua.LState, *collector) error) (*Deck, error) {
	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	if err := exec(L, coll); err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	deck := compile(coll, ve)
	validate(deck, ve)
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	deck.Warnings = ve.Warnings
	return deck, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "require", "module",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Decks must load the same way every time.
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("random", lua.LNil)
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

// sortedLuaFiles returns files with deck.lua first, rest alphabetical.
func sortedLuaFiles(files []string) []string {
	var deckFile string
	var rest []string
	for _, f := range files {
		if f == "deck.lua" {
			deckFile = f
		} else {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	if deckFile != "" {
		return append([]string{deckFile}, rest...)
	}
	return rest
}
