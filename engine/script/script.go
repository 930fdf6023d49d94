// Package script defines the data contract exchanged between the engine and
// an embedded scripting runtime: entity handles, entity sets with pure
// filters, effect and attack builders, callbacks and stat tables. Nothing in
// here depends on a particular scripting language.
package script

import (
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/types"
)

// NoIndex marks an empty entity slot in handles and sets.
const NoIndex = -1

// World is the read-only view of the active area that scripts resolve
// indices against. Entity returns nil for an index that is no longer valid.
type World interface {
	Entity(index int) *entity.EntityState
	HasVisibility(observer, target *entity.EntityState) bool
	CanAttack(attacker, target *entity.EntityState) bool
	CanReach(mover, target *entity.EntityState) bool
}

// Entity is a lazily validated reference to an entity by index.
type Entity struct {
	Index int
}

// EntityOf returns the script handle for e. A nil entity gives an empty handle.
func EntityOf(e *entity.EntityState) Entity {
	if e == nil {
		return Entity{Index: NoIndex}
	}
	return Entity{Index: e.Index}
}

// IsValid reports whether the index still resolves in w.
func (s Entity) IsValid(w World) bool {
	return s.Resolve(w) != nil
}

// Resolve returns the entity or nil.
func (s Entity) Resolve(w World) *entity.EntityState {
	if s.Index == NoIndex {
		return nil
	}
	return w.Entity(s.Index)
}

// HitResult is the outcome of one attack passed to after-attack callbacks.
type HitResult struct {
	Kind   rules.HitKind
	Damage int
}

// Callback receives engine events for an effect, ability or attack. Which
// entity a callback is attached to is known to the implementation.
type Callback interface {
	BeforeAttack(targets EntitySet)
	AfterAttack(targets EntitySet, hit HitResult)
	BeforeDefense(attacker Entity)
	AfterDefense(attacker Entity, hit HitResult)
	OnRoundElapsed()
	OnApplied()
	OnRemoved()
	OnAnimComplete()
}

// NopCallback implements Callback with no-ops. Embed it to override only the
// events a callback cares about.
type NopCallback struct{}

func (NopCallback) BeforeAttack(EntitySet)           {}
func (NopCallback) AfterAttack(EntitySet, HitResult) {}
func (NopCallback) BeforeDefense(Entity)             {}
func (NopCallback) AfterDefense(Entity, HitResult)   {}
func (NopCallback) OnRoundElapsed()                  {}
func (NopCallback) OnApplied()                       {}
func (NopCallback) OnRemoved()                       {}
func (NopCallback) OnAnimComplete()                  {}

// AttackBuilder describes a scripted attack outside the weapon system.
type AttackBuilder struct {
	Kind       rules.AttackKind
	MinDamage  int
	MaxDamage  int
	AP         int
	DamageKind rules.DamageKind
	Accuracy   int
}

// Melee returns a melee builder with the given reach.
func Melee(reach float64) AttackBuilder {
	return AttackBuilder{Kind: rules.AttackKind{Type: rules.Melee, Reach: reach}}
}

// Ranged returns a ranged builder.
func Ranged(rng float64, projectile string) AttackBuilder {
	return AttackBuilder{Kind: rules.AttackKind{Type: rules.Ranged, Range: rng, Projectile: projectile}}
}

// Build converts the builder into a resolvable attack.
func (b AttackBuilder) Build() rules.Attack {
	kind := b.DamageKind
	if kind == "" {
		kind = rules.Raw
	}
	a := rules.SpecialAttack(b.MinDamage, b.MaxDamage, b.AP, kind, b.Kind)
	a.Bonuses.Accuracy = b.Accuracy
	return a
}

// TargetPoint is the optional selected point of an entity set.
type TargetPoint = types.Point

// CallbackData is the saved form of a callback a scripting runtime can
// rebuild. Parent is an entity index and is remapped on load.
type CallbackData struct {
	Script string            `json:"script"`
	Parent int               `json:"parent"`
	Funcs  map[string]string `json:"funcs"`
}

// Persistent is implemented by callbacks that can be saved.
type Persistent interface {
	Data() CallbackData
}
