package luavm

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// registerGame installs the "game" table: engine-wide queries and actions
// that are not tied to one entity.
func (r *Runner) registerGame() {
	L := r.L
	game := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			logger.Log.WithField("script", r.currentScript()).Info(L.CheckString(1))
			return 0
		},
		"warn": func(L *lua.LState) int {
			logger.Log.WithField("script", r.currentScript()).Warn(L.CheckString(1))
			return 0
		},
		"entity": func(L *lua.LState) int {
			idx := L.CheckInt(1)
			if !r.isLive(idx) {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(r.entityValue(r.eng.Area().CheckGetEntity(idx)))
			return 1
		},
		"player": func(L *lua.LState) int {
			party := r.eng.Party()
			if len(party) == 0 {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(r.entityValue(party[0]))
			return 1
		},
		"party": func(L *lua.LState) int {
			L.Push(r.entityTable(L, r.eng.Party()))
			return 1
		},
		"selected": func(L *lua.LState) int {
			L.Push(r.entityTable(L, r.eng.Selected()))
			return 1
		},
		"current": func(L *lua.LState) int {
			L.Push(r.entityValue(r.eng.Current()))
			return 1
		},
		"area_id": func(L *lua.LState) int {
			if a := r.eng.Area(); a != nil {
				L.Push(lua.LString(a.ID()))
				return 1
			}
			L.Push(lua.LNil)
			return 1
		},
		"in_combat": func(L *lua.LState) int {
			L.Push(lua.LBool(r.eng.InCombat()))
			return 1
		},
		"transition": func(L *lua.LState) int {
			if err := r.eng.Transition(L.CheckString(1), L.CheckInt(2), L.CheckInt(3)); err != nil {
				L.Push(lua.LFalse)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LTrue)
			return 1
		},
		"spawn": func(L *lua.LState) int {
			ent, err := r.eng.Spawn(L.CheckString(1), L.CheckInt(2), L.CheckInt(3))
			if err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(r.entityValue(ent))
			return 1
		},
		"add_party_member": func(L *lua.LState) int {
			L.Push(lua.LBool(r.eng.AddPartyMember(r.resolve(L, 1))))
			return 1
		},
		"remove_party_member": func(L *lua.LState) int {
			L.Push(lua.LBool(r.eng.RemovePartyMember(r.resolve(L, 1))))
			return 1
		},
		"create_callback": func(L *lua.LState) int {
			cb := r.newCallback(r.checkEntity(L, 1).Index)
			L.Push(r.newUserData(L, cb, callbackType))
			return 1
		},
		"add_feedback": func(L *lua.LState) int {
			target := r.resolve(L, 1)
			if target == nil {
				return 0
			}
			r.eng.Area().AddFeedbackText(L.CheckString(2), target, area.FeedbackInfo)
			return 0
		},
		"roll": func(L *lua.LState) int {
			L.Push(lua.LNumber(r.eng.Dice.Roll(L.CheckInt(1))))
			return 1
		},
		"set_modal": func(L *lua.LState) int {
			r.eng.SetModalLocked(L.CheckBool(1))
			return 0
		},
		"clear_animations": func(L *lua.LState) int {
			r.eng.RequestClearAnimations()
			return 0
		},
		"queue_ui_callback": func(L *lua.LState) int {
			t := types.Trigger{
				Kind:   types.TriggerKind(L.CheckString(1)),
				Script: r.currentScript(),
				Func:   L.CheckString(2),
			}
			r.eng.AddUICallbacksOfKind(string(t.Kind), []types.Trigger{t}, r.optEntity(L, 3), r.optEntity(L, 4))
			return 0
		},
		"activate_ability": func(L *lua.LState) int {
			L.Push(lua.LBool(r.eng.ExecuteAbilityOnActivate(r.resolve(L, 1), L.CheckString(2))))
			return 1
		},
	})
	L.SetGlobal("game", game)
}

// registerRandom replaces math.random with one drawing from the engine's
// dice so saves reproduce scripted randomness.
func (r *Runner) registerRandom() {
	tbl, ok := r.L.GetGlobal("math").(*lua.LTable)
	if !ok {
		return
	}
	tbl.RawSetString("random", r.L.NewFunction(func(L *lua.LState) int {
		switch L.GetTop() {
		case 0:
			L.Push(lua.LNumber(r.eng.Dice.Fraction()))
		case 1:
			L.Push(lua.LNumber(r.eng.Dice.Roll(L.CheckInt(1))))
		default:
			lo, hi := L.CheckInt(1), L.CheckInt(2)
			if hi < lo {
				L.ArgError(2, "interval is empty")
			}
			L.Push(lua.LNumber(r.eng.Dice.Between(lo, hi)))
		}
		return 1
	}))
}

func (r *Runner) entityTable(L *lua.LState, list []*entity.EntityState) *lua.LTable {
	t := L.NewTable()
	for _, e := range list {
		t.Append(r.entityValue(e))
	}
	return t
}
