package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the definition constructors as globals.
//
//	Game { title = "...", start_area = "cave", start = {x = 1, y = 1}, player = "hero" }
//	Area "cave" { map = {"#####", "#...#"}, actors = {...}, triggers = {...} }
//	Actor "goblin" { hit_points = 12, attack = {...} }
//	Ability "bless" { script = "bless", ap_cost = 2000 }
//	Item "sword" { bonuses = {{kind = "accuracy", amount = 5}} }
//	Size "2x2" { width = 2, height = 2 }
//	Script "bless" [[ function on_activate(parent) ... end ]]
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	curried := func(name string, add func(rawDef)) {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				add(coll.def(id, L.CheckTable(1)))
				return 0
			}))
			return 1
		}))
	}
	curried("Area", func(d rawDef) { coll.areas = append(coll.areas, d) })
	curried("Actor", func(d rawDef) { coll.actors = append(coll.actors, d) })
	curried("Ability", func(d rawDef) { coll.abilities = append(coll.abilities, d) })
	curried("Item", func(d rawDef) { coll.items = append(coll.items, d) })
	curried("Size", func(d rawDef) { coll.sizes = append(coll.sizes, d) })

	// Script "id" [[ source ]]: curried, takes the source string.
	L.SetGlobal("Script", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.scripts = append(coll.scripts, rawScript{
				id:     id,
				source: L.CheckString(1),
				file:   coll.file,
				module: coll.module,
			})
			return 0
		}))
		return 1
	}))

	// Trigger("OnAreaLoad", "script", "func") builds a trigger table.
	L.SetGlobal("Trigger", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("kind", lua.LString(L.CheckString(1)))
		tbl.RawSetString("script", lua.LString(L.CheckString(2)))
		tbl.RawSetString("func", lua.LString(L.CheckString(3)))
		L.Push(tbl)
		return 1
	}))
}
