package script

import (
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
)

// StatsTable flattens an entity's computed stats into the key-value table
// scripts read.
func StatsTable(e *entity.EntityState) map[string]float64 {
	s := e.Actor.Stats
	t := map[string]float64{
		"current_hp":         float64(e.Actor.HP),
		"current_ap":         float64(e.Actor.AP),
		"max_hp":             float64(s.MaxHP),
		"base_armor":         float64(s.Armor.Base()),
		"accuracy":           float64(s.Accuracy),
		"defense":            float64(s.Defense),
		"fortitude":          float64(s.Fortitude),
		"reflex":             float64(s.Reflex),
		"will":               float64(s.Will),
		"initiative":         float64(s.Initiative),
		"concealment":        float64(s.Concealment),
		"concealment_ignore": float64(s.ConcealmentIgnore),
		"crit_threshold":     float64(s.CritThreshold),
		"hit_threshold":      float64(s.HitThreshold),
		"graze_threshold":    float64(s.GrazeThreshold),
		"crit_multiplier":    s.CritMultiplier,
		"hit_multiplier":     s.HitMultiplier,
		"graze_multiplier":   s.GrazeMultiplier,
		"movement_rate":      s.MovementRate,
		"attack_distance":    s.AttackDistance(),
		"attack_cost":        float64(e.Actor.AttackAPCost()),
		"damage_min":         float64(s.Attack.Damage.Min()),
		"damage_max":         float64(s.Attack.Damage.Max()),
		"damage_ap":          float64(s.Attack.Damage.AP()),
		"move_disabled":      boolStat(s.MoveDisabled),
		"attack_disabled":    boolStat(s.AttackDisabled),
		"hidden":             boolStat(s.Hidden),
	}
	for _, attr := range rules.Attributes {
		t[string(attr)] = float64(s.Attributes[attr])
	}
	for _, kind := range rules.DamageKinds {
		t["armor_"+string(kind)] = float64(s.Armor.Amount(kind))
	}
	return t
}

func boolStat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
