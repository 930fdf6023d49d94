package luavm

import (
	"strings"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/logger"
)

// effectValue is the Lua side of an effect builder. A builder can only be
// applied once.
type effectValue struct {
	b       *script.EffectBuilder
	applied bool
}

func (r *Runner) checkEffect(L *lua.LState, n int) *effectValue {
	ud := L.CheckUserData(n)
	if ev, ok := ud.Value.(*effectValue); ok {
		return ev
	}
	L.ArgError(n, "effect expected")
	return nil
}

func (r *Runner) effectMethods() map[string]lua.LGFunction {
	// builder wraps a method that mutates the builder and returns it for
	// chaining.
	builder := func(fn func(L *lua.LState, b *script.EffectBuilder)) lua.LGFunction {
		return func(L *lua.LState) int {
			ev := r.checkEffect(L, 1)
			fn(L, ev.b)
			L.Push(L.Get(1))
			return 1
		}
	}
	return map[string]lua.LGFunction{
		"set_tag": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.SetTag(L.CheckString(2))
		}),
		"deactivate_with": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.DeactivateWithAbility(L.CheckString(2))
		}),
		"set_visual": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.Visual = L.CheckString(2)
		}),
		"add_num_bonus": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddNumBonus(L.CheckString(2), float64(L.CheckNumber(3)))
		}),
		"add_damage": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddDamage(L.CheckInt(2), L.CheckInt(3), L.OptInt(4, 0))
		}),
		"add_damage_of_kind": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddDamageOfKind(L.CheckInt(2), L.CheckInt(3), L.CheckString(4))
		}),
		"add_armor_of_kind": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddArmorOfKind(L.CheckInt(2), L.CheckString(3))
		}),
		"add_attribute_bonus": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddAttributeBonus(L.CheckString(2), L.CheckInt(3))
		}),
		"add_hidden": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddHidden()
		}),
		"add_move_disabled": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddMoveDisabled()
		}),
		"add_attack_disabled": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddAttackDisabled()
		}),
		"add_callback": builder(func(L *lua.LState, b *script.EffectBuilder) {
			b.AddCallback(r.checkCallback(L, 2))
		}),
		"apply": func(L *lua.LState) int {
			ev := r.checkEffect(L, 1)
			if ev.applied {
				r.warn("Effect applied twice", logrus.Fields{"effect": ev.b.Name})
				L.Push(lua.LNumber(-1))
				return 1
			}
			ev.applied = true
			L.Push(lua.LNumber(r.eng.ApplyEffect(ev.b)))
			return 1
		},
	}
}

// Callback events scripts can attach functions to. The set_<event>_fn
// methods on a callback are generated from this list.
var callbackEvents = []string{
	"before_attack",
	"after_attack",
	"before_defense",
	"after_defense",
	"on_round_elapsed",
	"on_applied",
	"on_removed",
	"on_anim_complete",
}

// callback forwards engine events to functions of the script that created
// it. The first argument is always the parent entity.
type callback struct {
	r    *Runner
	data script.CallbackData
}

func (r *Runner) newCallback(parent int) *callback {
	return &callback{
		r: r,
		data: script.CallbackData{
			Script: r.currentScript(),
			Parent: parent,
			Funcs:  map[string]string{},
		},
	}
}

func (r *Runner) checkCallback(L *lua.LState, n int) *callback {
	ud := L.CheckUserData(n)
	if cb, ok := ud.Value.(*callback); ok {
		return cb
	}
	L.ArgError(n, "callback expected")
	return nil
}

func (r *Runner) callbackMethods() map[string]lua.LGFunction {
	m := map[string]lua.LGFunction{}
	for _, event := range callbackEvents {
		event := event
		m["set_"+event+"_fn"] = func(L *lua.LState) int {
			cb := r.checkCallback(L, 1)
			cb.data.Funcs[event] = L.CheckString(2)
			L.Push(L.Get(1))
			return 1
		}
	}
	return m
}

// Data returns the saved form of the callback.
func (c *callback) Data() script.CallbackData {
	funcs := make(map[string]string, len(c.data.Funcs))
	for k, v := range c.data.Funcs {
		funcs[k] = v
	}
	return script.CallbackData{Script: c.data.Script, Parent: c.data.Parent, Funcs: funcs}
}

func (c *callback) fire(event string, args ...lua.LValue) {
	name, ok := c.data.Funcs[event]
	if !ok {
		return
	}
	parent := c.r.newUserData(c.r.L, script.Entity{Index: c.data.Parent}, entityType)
	if err := c.r.call(c.data.Script, name, append([]lua.LValue{parent}, args...)...); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"script": c.data.Script,
			"event":  event,
		}).WithError(err).Warn("Callback failed")
	}
}

func (c *callback) hitValue(hit script.HitResult) lua.LValue {
	t := c.r.L.NewTable()
	t.RawSetString("kind", lua.LString(hit.Kind.String()))
	t.RawSetString("damage", lua.LNumber(hit.Damage))
	return t
}

func (c *callback) BeforeAttack(targets script.EntitySet) {
	c.fire("before_attack", c.r.newUserData(c.r.L, targets, entitySetType))
}

func (c *callback) AfterAttack(targets script.EntitySet, hit script.HitResult) {
	c.fire("after_attack", c.r.newUserData(c.r.L, targets, entitySetType), c.hitValue(hit))
}

func (c *callback) BeforeDefense(attacker script.Entity) {
	c.fire("before_defense", c.r.newUserData(c.r.L, attacker, entityType))
}

func (c *callback) AfterDefense(attacker script.Entity, hit script.HitResult) {
	c.fire("after_defense", c.r.newUserData(c.r.L, attacker, entityType), c.hitValue(hit))
}

func (c *callback) OnRoundElapsed() { c.fire("on_round_elapsed") }
func (c *callback) OnApplied()      { c.fire("on_applied") }
func (c *callback) OnRemoved()      { c.fire("on_removed") }
func (c *callback) OnAnimComplete() { c.fire("on_anim_complete") }

// attackFromTable reads a scripted attack description:
//
//	{kind = "melee", reach = 1, min_damage = 2, max_damage = 6,
//	 ap = 0, damage_kind = "fire", accuracy = 10}
//
// kind is melee, ranged (with range and projectile) or one of the
// defense-targeting kinds fortitude, reflex and will.
func attackFromTable(t *lua.LTable) script.AttackBuilder {
	var b script.AttackBuilder
	switch kind := strings.ToLower(tableString(t, "kind", "melee")); kind {
	case "melee":
		b = script.Melee(tableNumber(t, "reach", 1))
	case "ranged":
		b = script.Ranged(tableNumber(t, "range", 0), tableString(t, "projectile", ""))
	default:
		b = script.AttackBuilder{Kind: rules.ParseAttackKind(kind)}
	}
	b.MinDamage = int(tableNumber(t, "min_damage", 0))
	b.MaxDamage = int(tableNumber(t, "max_damage", float64(b.MinDamage)))
	b.AP = int(tableNumber(t, "ap", 0))
	b.Accuracy = int(tableNumber(t, "accuracy", 0))
	if dk := tableString(t, "damage_kind", ""); dk != "" {
		b.DamageKind = rules.ParseDamageKind(dk)
	}
	return b
}

func tableString(t *lua.LTable, key, def string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return def
}

func tableNumber(t *lua.LTable, key string, def float64) float64 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float64(v)
	}
	return def
}
