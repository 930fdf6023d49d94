package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/types"
)

// seqRoller returns queued results, clamped to the die size.
type seqRoller struct {
	rolls []int
}

func (s *seqRoller) Roll(sides int) int {
	if len(s.rolls) == 0 {
		return 1
	}
	v := s.rolls[0]
	s.rolls = s.rolls[1:]
	if v > sides {
		return sides
	}
	return v
}

func fighter(armor int) *entity.EntityState {
	return entity.New(&types.ActorDef{
		ID:        "fighter",
		HitPoints: 30,
		Armor:     armor,
		Attack:    types.AttackDef{Kind: "melee", Reach: 1, MinDamage: 4, MaxDamage: 4, DamageKind: "crushing"},
	}, types.ObjectSize{})
}

func TestHitKinds(t *testing.T) {
	cases := []struct {
		roll int
		want rules.HitKind
	}{
		{10, rules.Miss},
		{15, rules.Graze},
		{40, rules.Hit},
		{95, rules.Crit},
	}
	for _, c := range cases {
		r := NewResolver(&seqRoller{rolls: []int{c.roll}})
		hit, roll := r.RollHit(fighter(0), fighter(0), fighter(0).Actor.Stats.Attack)
		assert.Equal(t, c.want, hit, "roll %d", c.roll)
		assert.Equal(t, c.roll, roll)
	}
}

func TestWeaponAttackAppliesDamage(t *testing.T) {
	attacker, defender := fighter(0), fighter(1)
	r := NewResolver(&seqRoller{rolls: []int{50, 1}})

	res := r.WeaponAttack(attacker, defender)

	assert.Equal(t, rules.Hit, res.Hit)
	assert.Equal(t, 3, res.Damage)
	assert.Equal(t, 27, defender.Actor.HP)
}

func TestCritMultiplier(t *testing.T) {
	attacker, defender := fighter(0), fighter(0)
	r := NewResolver(&seqRoller{rolls: []int{99, 1}})

	res := r.WeaponAttack(attacker, defender)

	assert.Equal(t, rules.Crit, res.Hit)
	assert.Equal(t, 6, res.Damage)
}

func TestMissDealsNothing(t *testing.T) {
	attacker, defender := fighter(0), fighter(0)
	res := NewResolver(&seqRoller{rolls: []int{2}}).WeaponAttack(attacker, defender)
	assert.Equal(t, rules.Miss, res.Hit)
	assert.Equal(t, 30, defender.Actor.HP)
}

func TestConcealment(t *testing.T) {
	attacker, defender := fighter(0), fighter(0)
	defender.Actor.Stats.Concealment = 50

	hit, _ := NewResolver(&seqRoller{rolls: []int{20, 99}}).RollHit(attacker, defender, attacker.Actor.Stats.Attack)
	assert.Equal(t, rules.Miss, hit)

	hit, _ = NewResolver(&seqRoller{rolls: []int{80, 99}}).RollHit(attacker, defender, attacker.Actor.Stats.Attack)
	assert.Equal(t, rules.Crit, hit)
}

func TestSpecialAttackTargetsSave(t *testing.T) {
	attacker, defender := fighter(0), fighter(0)
	defender.Actor.Stats.Reflex = 30
	attack := rules.SpecialAttack(5, 5, 0, rules.Fire, rules.AttackKind{Type: rules.Reflex})

	res := NewResolver(&seqRoller{rolls: []int{60, 1}}).Attack(attacker, defender, attack)

	// 60 - 30 reflex = 30: a graze at half damage
	assert.Equal(t, rules.Graze, res.Hit)
	assert.Equal(t, 2, res.Damage)
}
