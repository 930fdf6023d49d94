package rules

import "github.com/nathoo/turncore/types"

// Default thresholds and multipliers for attack rolls. An attack roll is
// d100 + accuracy - defense compared against the thresholds.
const (
	DefaultCritThreshold   = 95
	DefaultHitThreshold    = 40
	DefaultGrazeThreshold  = 15
	DefaultCritMultiplier  = 1.5
	DefaultHitMultiplier   = 1.0
	DefaultGrazeMultiplier = 0.5
)

// StatList is the computed set of an actor's stats after all bonuses.
type StatList struct {
	Attributes map[Attribute]int
	Armor      Armor

	BonusDamage []Damage
	BonusReach  float64
	BonusRange  float64

	MaxHP      int
	Initiative int
	Accuracy   int
	Defense    int
	Fortitude  int
	Reflex     int
	Will       int

	Concealment       int
	ConcealmentIgnore int

	CritThreshold   int
	HitThreshold    int
	GrazeThreshold  int
	CritMultiplier  float64
	HitMultiplier   float64
	GrazeMultiplier float64

	MovementRate float64
	BonusAP      int
	AttackCost   int

	MoveDisabled   bool
	AttackDisabled bool
	Hidden         bool

	Attack Attack
}

// NewStatList starts a stat list from an actor definition with no bonuses.
func NewStatList(def *types.ActorDef) *StatList {
	s := &StatList{
		Attributes:      map[Attribute]int{},
		MaxHP:           def.HitPoints,
		Initiative:      def.Initiative,
		Accuracy:        def.Accuracy,
		Defense:         def.Defense,
		CritThreshold:   DefaultCritThreshold,
		HitThreshold:    DefaultHitThreshold,
		GrazeThreshold:  DefaultGrazeThreshold,
		CritMultiplier:  DefaultCritMultiplier,
		HitMultiplier:   DefaultHitMultiplier,
		GrazeMultiplier: DefaultGrazeMultiplier,
		MovementRate:    1.0,
	}
	for _, a := range Attributes {
		s.Attributes[a] = BaseAttribute
	}
	for name, v := range def.Attributes {
		if a, ok := ParseAttribute(name); ok {
			s.Attributes[a] = v
		}
	}
	s.Armor.AddBase(def.Armor)
	return s
}

// Apply adds every bonus in list to the stats.
func (s *StatList) Apply(list BonusList) {
	for _, b := range list.bonuses {
		s.apply(b)
	}
}

func (s *StatList) apply(b Bonus) {
	switch b.Kind {
	case BonusArmor:
		s.Armor.AddBase(b.Amount)
	case BonusArmorKind:
		s.Armor.AddKind(b.DamageKind, b.Amount)
	case BonusDamage:
		s.BonusDamage = append(s.BonusDamage, b.Damage)
	case BonusAccuracy:
		s.Accuracy += b.Amount
	case BonusDefense:
		s.Defense += b.Amount
	case BonusFortitude:
		s.Fortitude += b.Amount
	case BonusReflex:
		s.Reflex += b.Amount
	case BonusWill:
		s.Will += b.Amount
	case BonusConcealment:
		s.Concealment += b.Amount
	case BonusConcealmentIgnore:
		s.ConcealmentIgnore += b.Amount
	case BonusCritThreshold:
		s.CritThreshold += b.Amount
	case BonusHitThreshold:
		s.HitThreshold += b.Amount
	case BonusGrazeThreshold:
		s.GrazeThreshold += b.Amount
	case BonusCritMultiplier:
		s.CritMultiplier += b.Value
	case BonusHitMultiplier:
		s.HitMultiplier += b.Value
	case BonusGrazeMultiplier:
		s.GrazeMultiplier += b.Value
	case BonusMovementRate:
		s.MovementRate += b.Value
	case BonusAttribute:
		s.Attributes[b.Attribute] += b.Amount
	case BonusActionPoints:
		s.BonusAP += b.Amount
	case BonusAttackCost:
		s.AttackCost += b.Amount
	case BonusReach:
		s.BonusReach += b.Value
	case BonusRange:
		s.BonusRange += b.Value
	case BonusInitiative:
		s.Initiative += b.Amount
	case BonusHitPoints:
		s.MaxHP += b.Amount
	case BonusMoveDisabled:
		s.MoveDisabled = true
	case BonusAttackDisabled:
		s.AttackDisabled = true
	case BonusHidden:
		s.Hidden = true
	}
}

// Finalize folds attributes into derived stats and builds the weapon attack.
// Call it once after every Apply.
func (s *StatList) Finalize(attack types.AttackDef) {
	s.Accuracy += s.Attributes[Perception] - BaseAttribute
	s.Defense += s.Attributes[Dexterity] - BaseAttribute
	s.Initiative += (s.Attributes[Dexterity] + s.Attributes[Perception] - 2*BaseAttribute) / 2
	s.MaxHP += 2 * (s.Attributes[Endurance] - BaseAttribute)
	s.Fortitude += s.Attributes[Strength] + s.Attributes[Endurance] - BaseAttribute
	s.Reflex += s.Attributes[Dexterity] + s.Attributes[Perception] - BaseAttribute
	s.Will += s.Attributes[Intellect] + s.Attributes[Wisdom] - BaseAttribute
	if s.MaxHP < 1 {
		s.MaxHP = 1
	}
	if s.MovementRate < 0.1 {
		s.MovementRate = 0.1
	}
	s.Attack = NewAttack(attack, s)
}

// AttackDistance returns the reach or range of the weapon attack.
func (s *StatList) AttackDistance() float64 {
	return s.Attack.Distance()
}

// DefenseAgainst returns the defense value an attack kind rolls against.
func (s *StatList) DefenseAgainst(kind AttackKindType) int {
	switch kind {
	case Fortitude:
		return s.Fortitude
	case Reflex:
		return s.Reflex
	case Will:
		return s.Will
	default:
		return s.Defense
	}
}
