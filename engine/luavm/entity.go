package luavm

import (
	"fmt"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/script"
)

const (
	entityType    = "Entity"
	entitySetType = "EntitySet"
	effectType    = "Effect"
	callbackType  = "Callback"
)

func (r *Runner) registerTypes() {
	L := r.L

	mt := L.NewTypeMetatable(entityType)
	mt.RawSetString("__index", L.SetFuncs(L.NewTable(), r.entityMethods()))
	mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fmt.Sprintf("Entity(%d)", r.checkEntity(L, 1).Index)))
		return 1
	}))
	mt.RawSetString("__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(r.checkEntity(L, 1).Index == r.checkEntity(L, 2).Index))
		return 1
	}))

	mt = L.NewTypeMetatable(entitySetType)
	mt.RawSetString("__index", L.SetFuncs(L.NewTable(), r.setMethods()))
	mt.RawSetString("__len", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(r.checkSet(L, 1).Len()))
		return 1
	}))

	mt = L.NewTypeMetatable(effectType)
	mt.RawSetString("__index", L.SetFuncs(L.NewTable(), r.effectMethods()))

	mt = L.NewTypeMetatable(callbackType)
	mt.RawSetString("__index", L.SetFuncs(L.NewTable(), r.callbackMethods()))
}

func (r *Runner) newUserData(L *lua.LState, value interface{}, typ string) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(typ))
	return ud
}

// entityValue wraps e for Lua; nil becomes nil.
func (r *Runner) entityValue(e *entity.EntityState) lua.LValue {
	if e == nil {
		return lua.LNil
	}
	return r.newUserData(r.L, script.EntityOf(e), entityType)
}

func (r *Runner) pushEntity(L *lua.LState, s script.Entity) {
	if s.Index == script.NoIndex {
		L.Push(lua.LNil)
		return
	}
	L.Push(r.newUserData(L, s, entityType))
}

func (r *Runner) checkEntity(L *lua.LState, n int) script.Entity {
	ud := L.CheckUserData(n)
	if s, ok := ud.Value.(script.Entity); ok {
		return s
	}
	L.ArgError(n, "entity expected")
	return script.Entity{Index: script.NoIndex}
}

// resolve returns the entity at argument n, or nil with a warning when the
// handle no longer refers to a live entity in the current area.
func (r *Runner) resolve(L *lua.LState, n int) *entity.EntityState {
	return r.checkEntity(L, n).Resolve(r.world())
}

// optEntity resolves argument n if it is present.
func (r *Runner) optEntity(L *lua.LState, n int) *entity.EntityState {
	if L.Get(n) == lua.LNil {
		return nil
	}
	return r.resolve(L, n)
}

// entityMethod wraps fn so it only runs on a resolvable entity. Invalid
// entities return nil to Lua.
func (r *Runner) entityMethod(name string, fn func(L *lua.LState, e *entity.EntityState) int) lua.LGFunction {
	return func(L *lua.LState) int {
		e := r.resolve(L, 1)
		if e == nil {
			r.warn("Method called on invalid entity", logrus.Fields{"method": name})
			L.Push(lua.LNil)
			return 1
		}
		return fn(L, e)
	}
}

func (r *Runner) entityMethods() map[string]lua.LGFunction {
	m := map[string]func(*lua.LState, *entity.EntityState) int{
		"name": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LString(e.Name()))
			return 1
		},
		"x": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LNumber(e.Location.X))
			return 1
		},
		"y": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LNumber(e.Location.Y))
			return 1
		},
		"is_party_member": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(e.Party))
			return 1
		},
		"is_hostile": func(L *lua.LState, e *entity.EntityState) int {
			other := r.resolve(L, 2)
			L.Push(lua.LBool(other != nil && e.IsHostile(other)))
			return 1
		},
		"is_dead": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(e.IsDead()))
			return 1
		},
		"dist_to_entity": func(L *lua.LState, e *entity.EntityState) int {
			other := r.resolve(L, 2)
			if other == nil {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LNumber(e.DistTo(other)))
			return 1
		},
		"dist_to_point": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LNumber(e.DistToPoint(float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))))
			return 1
		},
		"targets": func(L *lua.LState, e *entity.EntityState) int {
			var indices []int
			for _, t := range r.eng.Area().Entities() {
				indices = append(indices, t.Index)
			}
			L.Push(r.newUserData(L, script.NewEntitySet(e.Index, indices), entitySetType))
			return 1
		},
		"stats": func(L *lua.LState, e *entity.EntityState) int {
			t := L.NewTable()
			for k, v := range script.StatsTable(e) {
				t.RawSetString(k, lua.LNumber(v))
			}
			L.Push(t)
			return 1
		},
		"has_ability": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(e.Actor.HasAbility(L.CheckString(2))))
			return 1
		},
		"set_flag": func(L *lua.LState, e *entity.EntityState) int {
			e.SetFlag(L.CheckString(2), L.OptString(3, "true"))
			return 0
		},
		"get_flag": func(L *lua.LState, e *entity.EntityState) int {
			v, ok := e.Flag(L.CheckString(2))
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(v))
			return 1
		},
		"take_damage": func(L *lua.LState, e *entity.EntityState) int {
			e.Actor.TakeDamage(L.CheckInt(2))
			return 0
		},
		"heal_damage": func(L *lua.LState, e *entity.EntityState) int {
			e.Actor.HealDamage(L.CheckInt(2))
			return 0
		},
		"remove_ap": func(L *lua.LState, e *entity.EntityState) int {
			e.Actor.RemoveAP(L.CheckInt(2))
			return 0
		},
		"teleport_to": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(r.eng.Teleport(e, L.CheckInt(2), L.CheckInt(3))))
			return 1
		},
		"move_towards_point": func(L *lua.LState, e *entity.EntityState) int {
			x, y := float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
			dist := float64(L.OptNumber(4, 0))
			L.Push(lua.LBool(r.eng.MoveTowardsPoint(e, x, y, dist)))
			return 1
		},
		"move_towards": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(r.eng.MoveTowards(e, r.resolve(L, 2))))
			return 1
		},
		"weapon_attack": func(L *lua.LState, e *entity.EntityState) int {
			target := r.resolve(L, 2)
			if target == nil {
				L.Push(lua.LNil)
				return 1
			}
			res := r.eng.Resolver.WeaponAttack(e, target)
			L.Push(lua.LString(res.Hit.String()))
			L.Push(lua.LNumber(res.Damage))
			return 2
		},
		"anim_weapon_attack": func(L *lua.LState, e *entity.EntityState) int {
			target := r.resolve(L, 2)
			L.Push(lua.LBool(r.eng.Attack(e, target, r.optCallbacks(L, 3)...)))
			return 1
		},
		"anim_special_attack": func(L *lua.LState, e *entity.EntityState) int {
			target := r.resolve(L, 2)
			attack := attackFromTable(L.CheckTable(3)).Build()
			L.Push(lua.LBool(r.eng.SpecialAttack(e, target, attack, r.optCallbacks(L, 4)...)))
			return 1
		},
		"create_effect": func(L *lua.LState, e *entity.EntityState) int {
			name := L.CheckString(2)
			var b *script.EffectBuilder
			if L.Get(3) == lua.LNil {
				b = script.NewPermanentEffect(e.Index, name)
			} else {
				b = script.NewEffect(e.Index, name, uint32(L.CheckInt(3)))
			}
			L.Push(r.newUserData(L, &effectValue{b: b}, effectType))
			return 1
		},
		"end_turn": func(L *lua.LState, e *entity.EntityState) int {
			L.Push(lua.LBool(r.eng.EndTurn(e)))
			return 1
		},
	}

	out := map[string]lua.LGFunction{
		"index": func(L *lua.LState) int {
			L.Push(lua.LNumber(r.checkEntity(L, 1).Index))
			return 1
		},
		"is_valid": func(L *lua.LState) int {
			L.Push(lua.LBool(r.isLive(r.checkEntity(L, 1).Index)))
			return 1
		},
	}
	for name, fn := range m {
		out[name] = r.entityMethod(name, fn)
	}
	return out
}

// isLive reports without warning whether index is an entity of the current
// area.
func (r *Runner) isLive(index int) bool {
	a := r.eng.Area()
	if a == nil || index == script.NoIndex {
		return false
	}
	for _, e := range a.Entities() {
		if e.Index == index {
			return true
		}
	}
	return false
}

func (r *Runner) optCallbacks(L *lua.LState, n int) []script.Callback {
	if L.Get(n) == lua.LNil {
		return nil
	}
	return []script.Callback{r.checkCallback(L, n)}
}
