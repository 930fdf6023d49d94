package entity

import (
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// Action point units. An actor gets BaseAP at the start of each combat turn.
const (
	BaseAP      = 6000
	APPerSquare = 1000
	AttackAP    = 3000
)

// AbilityState tracks one ability an actor owns.
type AbilityState struct {
	Def *types.AbilityDef
	// Cooldown is the number of rounds before the ability can be used again.
	Cooldown uint32
	Active   bool
}

// IsReady reports whether the ability is off cooldown.
func (a *AbilityState) IsReady() bool {
	return a.Cooldown == 0
}

// ActorState is the mutable game data of a character.
type ActorState struct {
	Def       *types.ActorDef
	Stats     *rules.StatList
	HP        int
	AP        int
	Inventory []*types.ItemDef
	Abilities map[string]*AbilityState
	// EndTurn is set when the actor has finished acting this combat turn.
	EndTurn bool
	// Effects are the ids of effects currently applied, in application order.
	Effects []int
}

// NewActorState creates full-health actor state with stats computed from
// the definition alone. Inventory and abilities are attached separately.
func NewActorState(def *types.ActorDef) *ActorState {
	a := &ActorState{
		Def:       def,
		Abilities: map[string]*AbilityState{},
	}
	a.Recompute(nil)
	a.HP = a.Stats.MaxHP
	a.AP = a.MaxAP()
	return a
}

// AddItem adds an item to the inventory and recomputes stats.
func (a *ActorState) AddItem(item *types.ItemDef, effectBonuses []rules.BonusList) {
	a.Inventory = append(a.Inventory, item)
	a.Recompute(effectBonuses)
}

// AddAbility grants an ability.
func (a *ActorState) AddAbility(def *types.AbilityDef) {
	a.Abilities[def.ID] = &AbilityState{Def: def}
}

// HasAbility reports whether the actor owns the ability id.
func (a *ActorState) HasAbility(id string) bool {
	_, ok := a.Abilities[id]
	return ok
}

// Recompute rebuilds the stat list from the definition, items and the given
// effect bonuses. Hit points are clamped to the new maximum.
func (a *ActorState) Recompute(effectBonuses []rules.BonusList) {
	stats := rules.NewStatList(a.Def)
	for _, item := range a.Inventory {
		stats.Apply(ItemBonuses(item))
	}
	for _, list := range effectBonuses {
		stats.Apply(list)
	}
	stats.Finalize(a.Def.Attack)
	a.Stats = stats
	if a.HP > stats.MaxHP {
		a.HP = stats.MaxHP
	}
}

// MaxAP returns the action points available at the start of a turn.
func (a *ActorState) MaxAP() int {
	return BaseAP + a.Stats.BonusAP
}

// MoveAPCost returns the action points one square of movement costs.
func (a *ActorState) MoveAPCost() int {
	return int(float64(APPerSquare) / a.Stats.MovementRate)
}

// AttackAPCost returns the action points a weapon attack costs.
func (a *ActorState) AttackAPCost() int {
	cost := AttackAP + a.Stats.AttackCost
	if cost < 0 {
		return 0
	}
	return cost
}

// CanMove reports whether the actor can take at least one step.
func (a *ActorState) CanMove() bool {
	return !a.Stats.MoveDisabled && a.AP >= a.MoveAPCost()
}

// CanAttack reports whether the actor can afford a weapon attack.
func (a *ActorState) CanAttack() bool {
	return !a.Stats.AttackDisabled && a.AP >= a.AttackAPCost()
}

// RemoveAP spends action points, flooring at zero.
func (a *ActorState) RemoveAP(amount int) {
	a.AP -= amount
	if a.AP < 0 {
		a.AP = 0
	}
}

// StartTurn refills action points for a new combat turn.
func (a *ActorState) StartTurn() {
	a.AP = a.MaxAP()
	a.EndTurn = false
}

// TakeDamage removes hit points.
func (a *ActorState) TakeDamage(amount int) {
	if amount < 0 {
		return
	}
	a.HP -= amount
}

// HealDamage restores hit points up to the maximum.
func (a *ActorState) HealDamage(amount int) {
	if amount < 0 {
		return
	}
	a.HP += amount
	if a.HP > a.Stats.MaxHP {
		a.HP = a.Stats.MaxHP
	}
}

// TickCooldowns counts every ability cooldown down by one round.
func (a *ActorState) TickCooldowns() {
	for _, ab := range a.Abilities {
		if ab.Cooldown > 0 {
			ab.Cooldown--
		}
	}
}

// ActivateAbility spends the ability's AP and starts its cooldown. It
// returns false if the ability is missing, cooling down or unaffordable.
func (a *ActorState) ActivateAbility(id string, inCombat bool) bool {
	ab, ok := a.Abilities[id]
	if !ok {
		logger.Log.WithField("ability", id).Warn("Actor does not have ability")
		return false
	}
	if !ab.IsReady() {
		return false
	}
	if inCombat {
		if a.AP < ab.Def.APCost {
			return false
		}
		a.RemoveAP(ab.Def.APCost)
	}
	ab.Cooldown = uint32(ab.Def.Cooldown)
	if ab.Def.Mode {
		ab.Active = true
	}
	return true
}

// ItemBonuses converts an item's bonus definitions into a bonus list.
// Unknown kinds log a warning and are skipped.
func ItemBonuses(item *types.ItemDef) rules.BonusList {
	var list rules.BonusList
	for _, def := range item.Bonuses {
		b, ok := BonusFromDef(def)
		if !ok {
			logger.Log.WithField("item", item.ID).WithField("kind", def.Kind).Warn("Unknown item bonus")
			continue
		}
		list.Add(b)
	}
	return list
}

// BonusFromDef converts one definition-file bonus.
func BonusFromDef(def types.BonusDef) (rules.Bonus, bool) {
	switch def.Kind {
	case "armor_kind":
		return rules.Bonus{Kind: rules.BonusArmorKind, Amount: int(def.Amount), DamageKind: rules.ParseDamageKind(def.Damage)}, true
	case "damage":
		var kind rules.DamageKind
		if def.Damage != "" {
			kind = rules.ParseDamageKind(def.Damage)
		}
		n := int(def.Amount)
		return rules.Bonus{Kind: rules.BonusDamage, Damage: rules.Damage{Min: n, Max: n, Kind: kind}}, true
	case "move_disabled":
		return rules.Bonus{Kind: rules.BonusMoveDisabled}, true
	case "attack_disabled":
		return rules.Bonus{Kind: rules.BonusAttackDisabled}, true
	case "hidden":
		return rules.Bonus{Kind: rules.BonusHidden}, true
	}
	if attr, ok := rules.ParseAttribute(def.Kind); ok {
		return rules.Bonus{Kind: rules.BonusAttribute, Attribute: attr, Amount: int(def.Amount)}, true
	}
	return rules.NumBonus(def.Kind, def.Amount)
}
