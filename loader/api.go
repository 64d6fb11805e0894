package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Deck { title = "..." }
	L.SetGlobal("Deck", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.deck = tbl
		return 0
	}))

	// Goal "title" { ... } is curried: Goal("title") returns a function that takes a table.
	L.SetGlobal("Goal", L.NewFunction(func(L *lua.LState) int {
		title := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.goals = append(coll.goals, rawGoal{
				title: title,
				table: tbl,
				file:  coll.file,
			})
			return 0
		}))
		return 1
	}))

	// Cost { soma = 2 } and Criteria { "a", "b" } are pass-through and return the table.
	passThrough := func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		L.Push(tbl)
		return 1
	}
	L.SetGlobal("Cost", L.NewFunction(passThrough))
	L.SetGlobal("Criteria", L.NewFunction(passThrough))
}
