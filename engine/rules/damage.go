package rules

import (
	"strings"

	"github.com/nathoo/turncore/logger"
)

// DamageKind is the type of damage dealt or resisted.
type DamageKind string

const (
	Slashing   DamageKind = "slashing"
	Piercing   DamageKind = "piercing"
	Crushing   DamageKind = "crushing"
	Acid       DamageKind = "acid"
	Cold       DamageKind = "cold"
	Electrical DamageKind = "electrical"
	Fire       DamageKind = "fire"
	Sonic      DamageKind = "sonic"
	Raw        DamageKind = "raw"
)

// DamageKinds lists every kind in display order.
var DamageKinds = []DamageKind{Slashing, Piercing, Crushing, Acid, Cold, Electrical, Fire, Sonic, Raw}

// ParseDamageKind parses a damage kind name. Unknown names log a warning and
// become Raw.
func ParseDamageKind(s string) DamageKind {
	k := DamageKind(strings.ToLower(s))
	for _, known := range DamageKinds {
		if k == known {
			return k
		}
	}
	logger.Log.WithField("kind", s).Warn("Unable to parse damage kind, using raw")
	return Raw
}

// Damage is a damage range with armor penetration. An empty Kind means the
// damage takes the kind of the attack it is added to.
type Damage struct {
	Min  int        `json:"min"`
	Max  int        `json:"max"`
	AP   int        `json:"ap"`
	Kind DamageKind `json:"kind,omitempty"`
}

// DamageRoll is the rolled damage of one kind after armor.
type DamageRoll struct {
	Kind   DamageKind
	Amount int
}

// DamageList is a primary damage plus any bonus damage entries.
type DamageList struct {
	primary Damage
	bonus   []Damage
}

// NewDamageList builds a list from a primary damage and bonuses. Bonuses
// without a kind inherit the primary kind.
func NewDamageList(primary Damage, bonus []Damage) DamageList {
	if primary.Kind == "" {
		primary.Kind = Raw
	}
	out := DamageList{primary: primary}
	for _, b := range bonus {
		if b.Kind == "" {
			b.Kind = primary.Kind
		}
		out.bonus = append(out.bonus, b)
	}
	return out
}

// Min returns the summed minimum damage.
func (d DamageList) Min() int {
	total := d.primary.Min
	for _, b := range d.bonus {
		total += b.Min
	}
	return total
}

// Max returns the summed maximum damage.
func (d DamageList) Max() int {
	total := d.primary.Max
	for _, b := range d.bonus {
		total += b.Max
	}
	return total
}

// AP returns the armor penetration of the primary damage.
func (d DamageList) AP() int {
	return d.primary.AP
}

// Kind returns the primary damage kind.
func (d DamageList) Kind() DamageKind {
	return d.primary.Kind
}

// Mult scales every entry by m, rounding down.
func (d DamageList) Mult(m float64) DamageList {
	scale := func(x Damage) Damage {
		x.Min = int(float64(x.Min) * m)
		x.Max = int(float64(x.Max) * m)
		return x
	}
	out := DamageList{primary: scale(d.primary)}
	for _, b := range d.bonus {
		out.bonus = append(out.bonus, scale(b))
	}
	return out
}

// Roll rolls every entry, reduces it by armor less penetration, and scales by
// multiplier. Raw damage ignores armor.
func (d DamageList) Roll(roller Roller, armor *Armor, multiplier float64) []DamageRoll {
	var out []DamageRoll
	for _, entry := range append([]Damage{d.primary}, d.bonus...) {
		amount := rollRange(roller, entry.Min, entry.Max)
		amount = int(float64(amount) * multiplier)
		if entry.Kind != Raw && armor != nil {
			reduction := armor.Amount(entry.Kind) - entry.AP
			if reduction > 0 {
				amount -= reduction
			}
		}
		if amount < 0 {
			amount = 0
		}
		out = append(out, DamageRoll{Kind: entry.Kind, Amount: amount})
	}
	return out
}

// TotalDamage sums rolled damage.
func TotalDamage(rolls []DamageRoll) int {
	total := 0
	for _, r := range rolls {
		total += r.Amount
	}
	return total
}

func rollRange(roller Roller, min, max int) int {
	if max <= min {
		return min
	}
	return min + roller.Roll(max-min+1) - 1
}
