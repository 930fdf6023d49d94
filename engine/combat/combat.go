// Package combat resolves attacks: a d100 roll plus accuracy against the
// defender's defense picks miss, graze, hit or crit, then damage is rolled
// against armor and applied.
package combat

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/logger"
)

// Result is the outcome of one resolved attack.
type Result struct {
	Hit    rules.HitKind
	Roll   int
	Rolls  []rules.DamageRoll
	Damage int
}

// Resolver rolls attacks with its dice source.
type Resolver struct {
	Roller rules.Roller
}

// NewResolver creates a resolver using roller.
func NewResolver(roller rules.Roller) *Resolver {
	return &Resolver{Roller: roller}
}

// WeaponAttack resolves attacker's weapon attack against defender.
func (r *Resolver) WeaponAttack(attacker, defender *entity.EntityState) Result {
	return r.Attack(attacker, defender, attacker.Actor.Stats.Attack)
}

// Attack resolves attack and applies the damage to defender.
func (r *Resolver) Attack(attacker, defender *entity.EntityState, attack rules.Attack) Result {
	hit, roll := r.RollHit(attacker, defender, attack)
	res := Result{Hit: hit, Roll: roll}
	if hit != rules.Miss {
		mult := multiplier(attacker.Actor.Stats, attack.Bonuses, hit)
		res.Rolls = attack.Damage.Roll(r.Roller, &defender.Actor.Stats.Armor, mult)
		res.Damage = rules.TotalDamage(res.Rolls)
		defender.Actor.TakeDamage(res.Damage)
	}

	logger.Log.WithFields(logrus.Fields{
		"attacker": attacker.Name(),
		"defender": defender.Name(),
		"kind":     attack.Kind.Type.String(),
		"roll":     roll,
		"hit":      hit.String(),
		"damage":   res.Damage,
	}).Debug("Attack resolved")
	return res
}

// RollHit rolls whether attack lands. Concealment is rolled first and turns
// the attack into a miss outright.
func (r *Resolver) RollHit(attacker, defender *entity.EntityState, attack rules.Attack) (rules.HitKind, int) {
	as, ds := attacker.Actor.Stats, defender.Actor.Stats

	if conceal := ds.Concealment - as.ConcealmentIgnore; conceal > 0 {
		if r.Roller.Roll(100) <= conceal {
			return rules.Miss, 0
		}
	}

	roll := r.Roller.Roll(100)
	score := roll + as.Accuracy + attack.Bonuses.Accuracy - ds.DefenseAgainst(attack.Kind.Type)
	b := attack.Bonuses
	switch {
	case score >= as.CritThreshold-b.CritThreshold:
		return rules.Crit, roll
	case score >= as.HitThreshold-b.HitThreshold:
		return rules.Hit, roll
	case score >= as.GrazeThreshold-b.GrazeThreshold:
		return rules.Graze, roll
	default:
		return rules.Miss, roll
	}
}

func multiplier(s *rules.StatList, b rules.AttackBonuses, hit rules.HitKind) float64 {
	switch hit {
	case rules.Crit:
		return s.CritMultiplier + b.CritMultiplier
	case rules.Hit:
		return s.HitMultiplier + b.HitMultiplier
	case rules.Graze:
		return s.GrazeMultiplier + b.GrazeMultiplier
	default:
		return 0
	}
}
