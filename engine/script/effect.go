package script

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/logger"
)

// EffectBuilder collects an effect's definition before the engine applies
// it to its parent entity.
type EffectBuilder struct {
	Parent         int
	Name           string
	Tag            string
	Duration       rules.ExtInt
	Bonuses        rules.BonusList
	Callbacks      []Callback
	DeactivateWith string
	// Visual names an optional timed animation that lives as long as the effect.
	Visual string
}

// NewEffect starts a builder for parent with a finite duration in rounds.
func NewEffect(parent int, name string, duration uint32) *EffectBuilder {
	return &EffectBuilder{Parent: parent, Name: name, Duration: rules.Int(duration)}
}

// NewPermanentEffect starts a builder with an infinite duration.
func NewPermanentEffect(parent int, name string) *EffectBuilder {
	return &EffectBuilder{Parent: parent, Name: name, Duration: rules.Infinity}
}

// SetTag sets the effect tag used for grouping and display.
func (b *EffectBuilder) SetTag(tag string) {
	b.Tag = tag
}

// DeactivateWithAbility links the effect to a mode ability; deactivating the
// ability removes the effect.
func (b *EffectBuilder) DeactivateWithAbility(id string) {
	b.DeactivateWith = id
}

// AddNumBonus adds a numeric bonus by name. Unknown names log a warning and
// are ignored.
func (b *EffectBuilder) AddNumBonus(name string, amount float64) {
	bonus, ok := rules.NumBonus(name, amount)
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"effect": b.Name,
			"bonus":  name,
		}).Warn("Attempted to add unknown numeric bonus to effect")
		return
	}
	b.Bonuses.Add(bonus)
}

// AddDamage adds bonus damage of the attack's own kind.
func (b *EffectBuilder) AddDamage(min, max, ap int) {
	b.Bonuses.Add(rules.Bonus{Kind: rules.BonusDamage, Damage: rules.Damage{Min: min, Max: max, AP: ap}})
}

// AddDamageOfKind adds bonus damage of a fixed kind.
func (b *EffectBuilder) AddDamageOfKind(min, max int, kind string) {
	b.Bonuses.Add(rules.Bonus{Kind: rules.BonusDamage, Damage: rules.Damage{Min: min, Max: max, Kind: rules.ParseDamageKind(kind)}})
}

// AddArmorOfKind adds armor against one damage kind.
func (b *EffectBuilder) AddArmorOfKind(amount int, kind string) {
	b.Bonuses.Add(rules.Bonus{Kind: rules.BonusArmorKind, Amount: amount, DamageKind: rules.ParseDamageKind(kind)})
}

// AddAttributeBonus adds to a primary attribute. Unknown attributes log a
// warning and are ignored.
func (b *EffectBuilder) AddAttributeBonus(name string, amount int) {
	attr, ok := rules.ParseAttribute(name)
	if !ok {
		logger.Log.WithField("attribute", name).Warn("Invalid attribute in effect bonus")
		return
	}
	b.Bonuses.Add(rules.Bonus{Kind: rules.BonusAttribute, Attribute: attr, Amount: amount})
}

// AddHidden makes the parent hidden while the effect lasts.
func (b *EffectBuilder) AddHidden() {
	b.Bonuses.AddKind(rules.BonusHidden)
}

// AddMoveDisabled stops the parent from moving.
func (b *EffectBuilder) AddMoveDisabled() {
	b.Bonuses.AddKind(rules.BonusMoveDisabled)
}

// AddAttackDisabled stops the parent from attacking.
func (b *EffectBuilder) AddAttackDisabled() {
	b.Bonuses.AddKind(rules.BonusAttackDisabled)
}

// AddCallback registers a callback fired for the effect's events.
func (b *EffectBuilder) AddCallback(cb Callback) {
	b.Callbacks = append(b.Callbacks, cb)
}
