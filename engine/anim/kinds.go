package anim

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/combat"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// World is the area a movement animation walks through.
type World interface {
	Entity(h entity.Handle) *entity.EntityState
	MoveEntity(e *entity.EntityState, x, y int) bool
}

// Move walks an entity along a path one tile per millisPerSquare.
type Move struct {
	Base
	world           World
	path            []types.Point
	step            int
	millisPerSquare int
	apPerSquare     int
}

// NewMove creates a blocking move. apPerSquare is spent for each tile
// entered; pass 0 outside combat.
func NewMove(world World, mover *entity.EntityState, path []types.Point, millisPerSquare, apPerSquare int) *Move {
	return &Move{
		Base:            newBase(mover.Handle(), true, len(path)*millisPerSquare),
		world:           world,
		path:            append([]types.Point(nil), path...),
		millisPerSquare: millisPerSquare,
		apPerSquare:     apPerSquare,
	}
}

// Path returns the remaining waypoints.
func (m *Move) Path() []types.Point {
	return m.path[m.step:]
}

// Update enters each tile whose time has come. The move stops early if a
// tile is blocked or the mover runs out of action points.
func (m *Move) Update(millis int) bool {
	e := m.world.Entity(m.owner)
	if e == nil {
		return false
	}
	m.elapsed += millis
	for m.step < len(m.path) && m.elapsed >= (m.step+1)*m.millisPerSquare {
		if m.apPerSquare > 0 && e.Actor.AP < m.apPerSquare {
			return false
		}
		p := m.path[m.step]
		if !m.world.MoveEntity(e, p.X, p.Y) {
			logger.Log.WithFields(logrus.Fields{
				"entity": e.Name(),
				"x":      p.X,
				"y":      p.Y,
			}).Debug("Move interrupted by obstacle")
			return false
		}
		e.Actor.RemoveAP(m.apPerSquare)
		m.step++
	}
	if m.step >= len(m.path) {
		return false
	}

	frac := float64(m.elapsed-m.step*m.millisPerSquare) / float64(m.millisPerSquare)
	next := m.path[m.step]
	e.SubX = float64(next.X-e.Location.X) * frac
	e.SubY = float64(next.Y-e.Location.Y) * frac
	return true
}

// Cleanup clears the sub-tile offset and runs completion hooks.
func (m *Move) Cleanup() {
	if e := m.world.Entity(m.owner); e != nil {
		e.SubX, e.SubY = 0, 0
	}
	m.Base.Cleanup()
}

// AttackContext is what an attack animation needs from the engine.
type AttackContext interface {
	Entity(h entity.Handle) *entity.EntityState
	Callbacks(e *entity.EntityState) []script.Callback
	Resolve(attacker, defender *entity.EntityState, attack rules.Attack) combat.Result
	Feedback(defender *entity.EntityState, res combat.Result)
}

// Attack is a melee or ranged attack. The attack resolves exactly once, when
// the animation reaches its firing fraction.
type Attack struct {
	Base
	ctx      AttackContext
	defender entity.Handle
	attack   rules.Attack
	extra    []script.Callback
	fireAt   float64

	// projectile position for ranged attacks
	startX, startY float64
	endX, endY     float64
	X, Y           float64

	hasAttacked bool
	result      combat.Result
}

// NewMeleeAttack creates a melee swing that lands halfway through.
func NewMeleeAttack(ctx AttackContext, attacker, defender *entity.EntityState, attack rules.Attack, extra []script.Callback, duration int) *Attack {
	return &Attack{
		Base:     newBase(attacker.Handle(), true, duration),
		ctx:      ctx,
		defender: defender.Handle(),
		attack:   attack,
		extra:    extra,
		fireAt:   0.5,
	}
}

// NewRangedAttack creates a projectile that flies from attacker to defender
// at millisPerSquare and lands on arrival.
func NewRangedAttack(ctx AttackContext, attacker, defender *entity.EntityState, attack rules.Attack, extra []script.Callback, millisPerSquare int) *Attack {
	sx, sy := attacker.Center()
	ex, ey := defender.Center()
	dist := attacker.DistTo(defender)
	if dist < 1 {
		dist = 1
	}
	return &Attack{
		Base:     newBase(attacker.Handle(), true, int(dist*float64(millisPerSquare))),
		ctx:      ctx,
		defender: defender.Handle(),
		attack:   attack,
		extra:    extra,
		fireAt:   1.0,
		startX:   sx,
		startY:   sy,
		endX:     ex,
		endY:     ey,
		X:        sx,
		Y:        sy,
	}
}

// Result returns the resolution, valid once HasAttacked is true.
func (a *Attack) Result() combat.Result { return a.result }

// HasAttacked reports whether the attack has resolved.
func (a *Attack) HasAttacked() bool { return a.hasAttacked }

// Update advances the swing or projectile and resolves the attack at the
// firing fraction.
func (a *Attack) Update(millis int) bool {
	frac := a.frac(millis)
	if a.attack.IsRanged() {
		f := frac
		if f > 1 {
			f = 1
		}
		a.X = a.startX + (a.endX-a.startX)*f
		a.Y = a.startY + (a.endY-a.startY)*f
	}
	if frac >= a.fireAt {
		a.resolve()
	}
	return frac < 1.0
}

func (a *Attack) resolve() {
	if a.hasAttacked {
		return
	}
	a.hasAttacked = true

	attacker := a.ctx.Entity(a.owner)
	defender := a.ctx.Entity(a.defender)
	if attacker == nil || defender == nil {
		logger.Log.WithField("attacker", a.owner.String()).Warn("Attack target or attacker no longer valid")
		return
	}

	var attackerCbs []script.Callback
	attackerCbs = append(attackerCbs, a.ctx.Callbacks(attacker)...)
	attackerCbs = append(attackerCbs, a.extra...)
	defenderCbs := a.ctx.Callbacks(defender)
	targets := script.SetOf(attacker, defender)
	from := script.EntityOf(attacker)

	for _, cb := range attackerCbs {
		cb.BeforeAttack(targets)
	}
	for _, cb := range defenderCbs {
		cb.BeforeDefense(from)
	}

	a.result = a.ctx.Resolve(attacker, defender, a.attack)
	a.ctx.Feedback(defender, a.result)

	hit := script.HitResult{Kind: a.result.Hit, Damage: a.result.Damage}
	for _, cb := range attackerCbs {
		cb.AfterAttack(targets, hit)
	}
	for _, cb := range defenderCbs {
		cb.AfterDefense(from, hit)
	}
}

// Cleanup fires OnAnimComplete on the attack's own callbacks.
func (a *Attack) Cleanup() {
	for _, cb := range a.extra {
		cb.OnAnimComplete()
	}
	a.Base.Cleanup()
}

// Timed is a non-blocking visual, such as an effect's aura. A duration of
// zero or less lasts until the animation is marked for removal.
type Timed struct {
	Base
	Image string
}

// NewTimed creates a timed visual on owner.
func NewTimed(owner entity.Handle, image string, duration int) *Timed {
	return &Timed{Base: newBase(owner, false, duration), Image: image}
}

// Update keeps the visual until its duration passes.
func (t *Timed) Update(millis int) bool {
	t.elapsed += millis
	return t.duration <= 0 || t.elapsed < t.duration
}
