package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
)

// AI kinds set on an actor definition. Any other value names the script
// that drives the actor.
const (
	AIDefault = ""
	AINone    = "none"
)

// runAI acts for the entity holding the combat turn if it is not a party
// member. Once the entity has nothing left to do its turn ends.
func (e *Engine) runAI() {
	if !e.InCombat() {
		return
	}
	cur := e.Current()
	if cur == nil || cur.Party || cur.Actor.EndTurn {
		return
	}
	if e.Anims.HasBlocking(cur.Handle()) {
		return
	}

	switch cur.Actor.Def.AI {
	case AINone:
	case AIDefault:
		e.defaultAI(cur)
	default:
		if err := e.Scripts.RunAI(cur); err != nil {
			logger.Log.WithFields(logrus.Fields{
				"entity": cur.Name(),
				"script": cur.Actor.Def.AI,
			}).WithError(err).Warn("AI script failed")
		}
	}

	if !e.Anims.HasBlocking(cur.Handle()) {
		cur.Actor.EndTurn = true
	}
}

// defaultAI picks a visible hostile by weighted random choice, preferring
// close, attackable and wounded targets, then attacks it or closes in.
func (e *Engine) defaultAI(cur *entity.EntityState) {
	targets := e.aiTargets(cur)
	if len(targets) == 0 {
		return
	}
	a := e.current
	weights := make([]int, len(targets))
	for i, t := range targets {
		w := 100 / (1 + int(cur.DistTo(t)))
		if a.CanAttack(cur, t) {
			w *= 3
		}
		w += t.Actor.Stats.MaxHP - t.Actor.HP
		if w < 1 {
			w = 1
		}
		weights[i] = w
	}
	target := targets[e.Dice.WeightedSelect(weights)]

	if a.CanAttack(cur, target) {
		if cur.Actor.CanAttack() {
			e.Attack(cur, target)
		}
		return
	}
	if cur.Actor.CanMove() {
		e.MoveTowards(cur, target)
	}
}

// aiTargets returns the living hostiles cur can see.
func (e *Engine) aiTargets(cur *entity.EntityState) []*entity.EntityState {
	var out []*entity.EntityState
	for _, t := range e.current.Entities() {
		if t.IsDead() || !cur.IsHostile(t) {
			continue
		}
		if e.current.HasVisibility(cur, t) {
			out = append(out, t)
		}
	}
	return out
}
