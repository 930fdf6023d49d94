package rules

import "strings"

// Attribute is one of the six primary character attributes.
type Attribute string

const (
	Strength   Attribute = "strength"
	Dexterity  Attribute = "dexterity"
	Endurance  Attribute = "endurance"
	Perception Attribute = "perception"
	Intellect  Attribute = "intellect"
	Wisdom     Attribute = "wisdom"
)

// Attributes lists every attribute in display order.
var Attributes = []Attribute{Strength, Dexterity, Endurance, Perception, Intellect, Wisdom}

// BaseAttribute is the value of an attribute nobody has modified.
const BaseAttribute = 10

// ParseAttribute returns the attribute named s.
func ParseAttribute(s string) (Attribute, bool) {
	a := Attribute(strings.ToLower(s))
	for _, known := range Attributes {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// BonusKind identifies what a Bonus modifies.
type BonusKind int

const (
	BonusArmor BonusKind = iota
	BonusArmorKind
	BonusDamage
	BonusAccuracy
	BonusDefense
	BonusFortitude
	BonusReflex
	BonusWill
	BonusConcealment
	BonusConcealmentIgnore
	BonusCritThreshold
	BonusHitThreshold
	BonusGrazeThreshold
	BonusCritMultiplier
	BonusHitMultiplier
	BonusGrazeMultiplier
	BonusMovementRate
	BonusAttribute
	BonusActionPoints
	BonusAttackCost
	BonusReach
	BonusRange
	BonusInitiative
	BonusHitPoints
	BonusMoveDisabled
	BonusAttackDisabled
	BonusHidden
)

// Bonus is a single stat modifier. Only the fields relevant to Kind are set.
type Bonus struct {
	Kind       BonusKind  `json:"kind"`
	Amount     int        `json:"amount,omitempty"`
	Value      float64    `json:"value,omitempty"`
	Damage     Damage     `json:"damage,omitempty"`
	DamageKind DamageKind `json:"damage_kind,omitempty"`
	Attribute  Attribute  `json:"attribute,omitempty"`
}

// numBonusKinds maps the numeric bonus names scripts and item definitions use.
var numBonusKinds = map[string]BonusKind{
	"armor":              BonusArmor,
	"ap":                 BonusActionPoints,
	"reach":              BonusReach,
	"range":              BonusRange,
	"initiative":         BonusInitiative,
	"hit_points":         BonusHitPoints,
	"accuracy":           BonusAccuracy,
	"defense":            BonusDefense,
	"fortitude":          BonusFortitude,
	"reflex":             BonusReflex,
	"will":               BonusWill,
	"concealment":        BonusConcealment,
	"concealment_ignore": BonusConcealmentIgnore,
	"crit_threshold":     BonusCritThreshold,
	"hit_threshold":      BonusHitThreshold,
	"graze_threshold":    BonusGrazeThreshold,
	"graze_multiplier":   BonusGrazeMultiplier,
	"hit_multiplier":     BonusHitMultiplier,
	"crit_multiplier":    BonusCritMultiplier,
	"movement_rate":      BonusMovementRate,
	"attack_cost":        BonusAttackCost,
}

// fractional kinds keep their float value; the rest are truncated to int.
var fractionalKinds = map[BonusKind]bool{
	BonusReach:           true,
	BonusRange:           true,
	BonusGrazeMultiplier: true,
	BonusHitMultiplier:   true,
	BonusCritMultiplier:  true,
	BonusMovementRate:    true,
}

// NumBonus builds a numeric bonus from its name. The bool is false for
// unknown names.
func NumBonus(name string, amount float64) (Bonus, bool) {
	kind, ok := numBonusKinds[strings.ToLower(name)]
	if !ok {
		return Bonus{}, false
	}
	if fractionalKinds[kind] {
		return Bonus{Kind: kind, Value: amount}, true
	}
	return Bonus{Kind: kind, Amount: int(amount)}, true
}

// BonusList is an ordered list of bonuses.
type BonusList struct {
	bonuses []Bonus
}

// Add appends a bonus.
func (l *BonusList) Add(b Bonus) {
	l.bonuses = append(l.bonuses, b)
}

// AddKind appends a flag bonus such as BonusHidden.
func (l *BonusList) AddKind(kind BonusKind) {
	l.bonuses = append(l.bonuses, Bonus{Kind: kind})
}

// Len returns the number of bonuses.
func (l BonusList) Len() int {
	return len(l.bonuses)
}

// All returns a copy of the bonuses.
func (l BonusList) All() []Bonus {
	out := make([]Bonus, len(l.bonuses))
	copy(out, l.bonuses)
	return out
}

// Clone returns an independent copy.
func (l BonusList) Clone() BonusList {
	return BonusList{bonuses: l.All()}
}
