package rules

// Armor accumulates a base armor value plus per-kind deltas. A kind whose
// total differs from the base is tracked so displays can show it separately.
type Armor struct {
	base   int
	deltas map[DamageKind]int
}

// Base returns the armor value that applies to every kind.
func (a *Armor) Base() int {
	return a.base
}

// AddBase adds to the base value.
func (a *Armor) AddBase(amount int) {
	a.base += amount
}

// AddKind adds a delta for one damage kind.
func (a *Armor) AddKind(kind DamageKind, amount int) {
	if a.deltas == nil {
		a.deltas = map[DamageKind]int{}
	}
	a.deltas[kind] += amount
}

// Amount returns the total armor against kind.
func (a *Armor) Amount(kind DamageKind) int {
	return a.base + a.deltas[kind]
}

// Differs reports whether kind's armor differs from the base value.
func (a *Armor) Differs(kind DamageKind) bool {
	return a.deltas[kind] != 0
}

// Clear resets the accumulator.
func (a *Armor) Clear() {
	a.base = 0
	a.deltas = nil
}
