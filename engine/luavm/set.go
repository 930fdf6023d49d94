package luavm

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/script"
)

func (r *Runner) checkSet(L *lua.LState, n int) script.EntitySet {
	ud := L.CheckUserData(n)
	if s, ok := ud.Value.(script.EntitySet); ok {
		return s
	}
	L.ArgError(n, "entity set expected")
	return script.EntitySet{}
}

func (r *Runner) pushSet(L *lua.LState, s script.EntitySet) int {
	L.Push(r.newUserData(L, s, entitySetType))
	return 1
}

func (r *Runner) setMethods() map[string]lua.LGFunction {
	filter := func(f func(script.EntitySet, script.World) script.EntitySet) lua.LGFunction {
		return func(L *lua.LState) int {
			return r.pushSet(L, f(r.checkSet(L, 1), r.world()))
		}
	}
	return map[string]lua.LGFunction{
		"len": func(L *lua.LState) int {
			L.Push(lua.LNumber(r.checkSet(L, 1).Len()))
			return 1
		},
		"is_empty": func(L *lua.LState) int {
			L.Push(lua.LBool(r.checkSet(L, 1).IsEmpty()))
			return 1
		},
		"first": func(L *lua.LState) int {
			r.pushEntity(L, r.checkSet(L, 1).First())
			return 1
		},
		"parent": func(L *lua.LState) int {
			r.pushEntity(L, r.checkSet(L, 1).Parent())
			return 1
		},
		"selected_point": func(L *lua.LState) int {
			p, ok := r.checkSet(L, 1).SelectedPoint()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(p.X))
			L.Push(lua.LNumber(p.Y))
			return 2
		},
		"with_selected_point": func(L *lua.LState) int {
			p := script.TargetPoint{X: L.CheckInt(2), Y: L.CheckInt(3)}
			return r.pushSet(L, r.checkSet(L, 1).WithSelectedPoint(p))
		},
		"to_table": func(L *lua.LState) int {
			t := L.NewTable()
			for _, e := range r.checkSet(L, 1).Collect(r.world()) {
				t.Append(r.entityValue(e))
			}
			L.Push(t)
			return 1
		},
		"without_self": func(L *lua.LState) int {
			return r.pushSet(L, r.checkSet(L, 1).WithoutSelf())
		},
		"visible_within": func(L *lua.LState) int {
			dist := float64(L.CheckNumber(2))
			return r.pushSet(L, r.checkSet(L, 1).VisibleWithin(r.world(), dist))
		},
		"visible":    filter(script.EntitySet.Visible),
		"hostile":    filter(script.EntitySet.Hostile),
		"friendly":   filter(script.EntitySet.Friendly),
		"reachable":  filter(script.EntitySet.Reachable),
		"attackable": filter(script.EntitySet.Attackable),
		"alive":      filter(script.EntitySet.Alive),
	}
}
