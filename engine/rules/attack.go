// Package rules holds the combat arithmetic: stats, bonuses, attack
// kinds, hit tables and damage.
package rules

import (
	"strings"

	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// Roller produces dice rolls in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// AttackKindType is the closed set of attack kinds.
type AttackKindType int

const (
	Melee AttackKindType = iota
	Ranged
	Fortitude
	Reflex
	Will
)

func (t AttackKindType) String() string {
	switch t {
	case Melee:
		return "Melee"
	case Ranged:
		return "Ranged"
	case Fortitude:
		return "Fortitude"
	case Reflex:
		return "Reflex"
	default:
		return "Will"
	}
}

// AttackKind is a tagged attack kind. Reach is set for melee, Range and
// Projectile for ranged.
type AttackKind struct {
	Type       AttackKindType
	Reach      float64
	Range      float64
	Projectile string
}

// ParseAttackKind parses a defense-targeting attack kind name. Unknown names
// log a warning and become Will.
func ParseAttackKind(s string) AttackKind {
	switch strings.ToLower(s) {
	case "fortitude":
		return AttackKind{Type: Fortitude}
	case "reflex":
		return AttackKind{Type: Reflex}
	case "will":
		return AttackKind{Type: Will}
	}
	logger.Log.WithField("kind", s).Warn("Unable to parse attack kind, using Will")
	return AttackKind{Type: Will}
}

// AttackBonuses are the per-attack modifiers on top of the attacker's stats.
type AttackBonuses struct {
	Accuracy        int
	CritThreshold   int
	HitThreshold    int
	GrazeThreshold  int
	CritMultiplier  float64
	HitMultiplier   float64
	GrazeMultiplier float64
}

// Attack is a fully resolved attack ready to roll.
type Attack struct {
	Damage  DamageList
	Kind    AttackKind
	Bonuses AttackBonuses
}

// NewAttack builds an actor's weapon attack from its definition and stats.
func NewAttack(def types.AttackDef, stats *StatList) Attack {
	primary := Damage{Min: def.MinDamage, Max: def.MaxDamage, AP: def.AP}
	if def.DamageKind != "" {
		primary.Kind = ParseDamageKind(def.DamageKind)
	}

	var kind AttackKind
	switch strings.ToLower(def.Kind) {
	case "ranged":
		kind = AttackKind{Type: Ranged, Range: def.Range + stats.BonusRange, Projectile: def.Projectile}
	default:
		reach := def.Reach
		if reach == 0 {
			reach = 1
		}
		kind = AttackKind{Type: Melee, Reach: reach + stats.BonusReach}
	}

	return Attack{
		Damage: NewDamageList(primary, stats.BonusDamage),
		Kind:   kind,
	}
}

// SpecialAttack builds a scripted attack outside the weapon system.
func SpecialAttack(min, max, ap int, damageKind DamageKind, kind AttackKind) Attack {
	return Attack{
		Damage: NewDamageList(Damage{Min: min, Max: max, AP: ap, Kind: damageKind}, nil),
		Kind:   kind,
	}
}

// IsMelee reports whether this is a melee attack.
func (a Attack) IsMelee() bool {
	return a.Kind.Type == Melee
}

// IsRanged reports whether this is a ranged attack.
func (a Attack) IsRanged() bool {
	return a.Kind.Type == Ranged
}

// Distance returns how far the attack reaches.
func (a Attack) Distance() float64 {
	switch a.Kind.Type {
	case Melee:
		return a.Kind.Reach
	case Ranged:
		return a.Kind.Range
	default:
		return 0
	}
}

// HitKind is the outcome of an attack roll.
type HitKind int

const (
	Miss HitKind = iota
	Graze
	Hit
	Crit
)

func (h HitKind) String() string {
	switch h {
	case Graze:
		return "Graze"
	case Hit:
		return "Hit"
	case Crit:
		return "Crit"
	default:
		return "Miss"
	}
}
