package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/anim"
	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/combat"
	"github.com/nathoo/turncore/engine/effects"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// canAct reports whether ent may start an action now: it must be in the
// current area and, in combat, hold the turn.
func (e *Engine) canAct(ent *entity.EntityState) bool {
	if ent == nil || e.current == nil || e.current.Entity(ent.Handle()) != ent {
		return false
	}
	if ent.IsDead() {
		return false
	}
	if e.InCombat() && !e.Turns.IsCurrent(e.current, ent) {
		return false
	}
	return true
}

// CanMoveTowardsPoint returns the path mover would walk to bring its center
// within dist of (x, y). It fails if movement is disabled, if in combat the
// mover cannot afford a step, or if no path exists.
func (e *Engine) CanMoveTowardsPoint(mover *entity.EntityState, x, y, dist float64) ([]types.Point, bool) {
	if mover == nil || mover.Actor.Stats.MoveDisabled {
		return nil, false
	}
	if !e.canAct(mover) {
		return nil, false
	}
	// Outside combat AP stays full, so only combat checks for a step.
	if e.InCombat() && !mover.Actor.CanMove() {
		return nil, false
	}
	a := e.current
	return a.Finder().Find(a, mover, nil, x, y, dist)
}

// MoveTowardsPoint queues a move bringing mover's center within dist of
// (x, y). Any blocking animation mover already has is cancelled first. A
// mover already within dist succeeds without moving.
func (e *Engine) MoveTowardsPoint(mover *entity.EntityState, x, y, dist float64) bool {
	path, ok := e.CanMoveTowardsPoint(mover, x, y, dist)
	if !ok {
		return false
	}
	a := e.current
	e.Anims.RemoveBlocking(mover.Handle())
	if len(path) == 0 {
		e.Turns.CheckAIActivation(mover, a)
		return true
	}

	apPerSquare := 0
	if e.InCombat() {
		apPerSquare = mover.Actor.MoveAPCost()
	}
	m := anim.NewMove(a, mover, path, e.Timing.MoveMillisPerSquare, apPerSquare)
	m.OnDone(func() {
		if a.Entity(mover.Handle()) == mover {
			e.Turns.CheckAIActivation(mover, a)
		}
	})
	e.Anims.Add(m)

	logger.Log.WithFields(logrus.Fields{
		"entity": mover.Name(),
		"steps":  len(path),
	}).Debug("Move queued")
	return true
}

// MoveTo moves mover so its footprint's top-left corner lands on (x, y).
func (e *Engine) MoveTo(mover *entity.EntityState, x, y int) bool {
	if mover == nil {
		return false
	}
	cx := float64(x) + float64(mover.Size.Width)/2
	cy := float64(y) + float64(mover.Size.Height)/2
	return e.MoveTowardsPoint(mover, cx, cy, 0)
}

// MoveTowards moves mover until target is within its attack distance.
// Targets farther than the area's visibility distance are ignored.
func (e *Engine) MoveTowards(mover, target *entity.EntityState) bool {
	if mover == nil || target == nil || e.current == nil {
		return false
	}
	if mover.DistTo(target) > float64(e.current.VisDist()) {
		return false
	}
	tx, ty := target.Center()
	dist := mover.Actor.Stats.AttackDistance() + (mover.Size.Diagonal+target.Size.Diagonal)/2
	return e.MoveTowardsPoint(mover, tx, ty, dist)
}

// Teleport places ent at (x, y) in the current area without a path.
func (e *Engine) Teleport(ent *entity.EntityState, x, y int) bool {
	if ent == nil || e.current == nil || !e.current.MoveEntity(ent, x, y) {
		return false
	}
	e.Anims.RemoveBlocking(ent.Handle())
	e.Turns.CheckAIActivation(ent, e.current)
	return true
}

// Attack starts a weapon attack from attacker on target, spending the
// attack's action points in combat. Extra callbacks see the attack's
// events along with attacker's effect callbacks. It fails while attacker
// is still busy with a blocking animation.
func (e *Engine) Attack(attacker, target *entity.EntityState, extra ...script.Callback) bool {
	if !e.canAct(attacker) || target == nil || e.current.Entity(target.Handle()) != target {
		return false
	}
	if e.Anims.HasBlocking(attacker.Handle()) {
		return false
	}
	if !e.current.CanAttack(attacker, target) {
		return false
	}
	if e.InCombat() {
		if !attacker.Actor.CanAttack() {
			return false
		}
		attacker.Actor.RemoveAP(attacker.Actor.AttackAPCost())
	}
	e.queueAttack(attacker, target, attacker.Actor.Stats.Attack, extra)
	return true
}

// SpecialAttack starts a scripted attack. Costs are the caller's concern.
// Like Attack, it fails while attacker has a blocking animation.
func (e *Engine) SpecialAttack(attacker, target *entity.EntityState, attack rules.Attack, extra ...script.Callback) bool {
	if attacker == nil || target == nil || e.current == nil {
		return false
	}
	if e.current.Entity(attacker.Handle()) != attacker || e.current.Entity(target.Handle()) != target {
		logger.Log.Warn("Special attack between entities outside the current area")
		return false
	}
	if e.Anims.HasBlocking(attacker.Handle()) {
		return false
	}
	e.queueAttack(attacker, target, attack, extra)
	return true
}

func (e *Engine) queueAttack(attacker, target *entity.EntityState, attack rules.Attack, extra []script.Callback) {
	ctx := attackContext{e: e, area: e.current}
	var a *anim.Attack
	if attack.IsRanged() {
		a = anim.NewRangedAttack(ctx, attacker, target, attack, extra, e.Timing.ProjectileMillisPerSquare)
	} else {
		a = anim.NewMeleeAttack(ctx, attacker, target, attack, extra, e.Timing.MeleeMillis)
	}
	cur := e.current
	a.OnDone(func() {
		if cur.Entity(attacker.Handle()) == attacker {
			e.Turns.CheckAIActivation(attacker, cur)
		}
	})
	e.Anims.Add(a)
}

// ApplyEffect turns a finished script builder into a live effect on its
// parent and returns the effect id, or -1 if the parent is invalid. A
// builder visual becomes a timed animation removed with the effect.
func (e *Engine) ApplyEffect(b *script.EffectBuilder) int {
	parent := e.EntityByIndex(b.Parent)
	if parent == nil {
		return -1
	}
	eff := effects.FromBuilder(b)
	id := e.Turns.AddEffect(eff, parent)
	if id < 0 {
		return id
	}
	if b.Visual != "" {
		v := anim.NewTimed(parent.Handle(), b.Visual, 0)
		eff.AddRemovalListener("visual", func(*effects.Effect) { v.MarkForRemoval() })
		e.Anims.Add(v)
	}
	return id
}

// attackContext gives attack animations access to one area.
type attackContext struct {
	e    *Engine
	area *area.State
}

func (c attackContext) Entity(h entity.Handle) *entity.EntityState {
	return c.area.Entity(h)
}

func (c attackContext) Callbacks(ent *entity.EntityState) []script.Callback {
	return c.e.Turns.Callbacks(ent)
}

func (c attackContext) Resolve(attacker, defender *entity.EntityState, attack rules.Attack) combat.Result {
	return c.e.Resolver.Attack(attacker, defender, attack)
}

func (c attackContext) Feedback(defender *entity.EntityState, res combat.Result) {
	switch res.Hit {
	case rules.Miss:
		c.area.AddFeedbackText("Miss", defender, area.FeedbackMiss)
	default:
		c.area.AddFeedbackText(fmt.Sprintf("%s: %d", res.Hit, res.Damage), defender, area.FeedbackDamage)
	}
}

// scriptWorld adapts an area to the index-based lookups scripts use.
type scriptWorld struct {
	area *area.State
}

// ScriptWorld returns the script view of the current area.
func (e *Engine) ScriptWorld() script.World {
	return scriptWorld{area: e.current}
}

func (w scriptWorld) Entity(index int) *entity.EntityState {
	if w.area == nil {
		return nil
	}
	return w.area.CheckGetEntity(index)
}

func (w scriptWorld) HasVisibility(observer, target *entity.EntityState) bool {
	return w.area.HasVisibility(observer, target)
}

func (w scriptWorld) CanAttack(attacker, target *entity.EntityState) bool {
	return w.area.CanAttack(attacker, target)
}

func (w scriptWorld) CanReach(mover, target *entity.EntityState) bool {
	return w.area.CanReach(mover, target)
}
