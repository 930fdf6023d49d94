package engine

import "math/rand"

// countingSource counts every value drawn from the underlying source, so
// a stream can be replayed to the same point even when one roll consumes
// several values.
type countingSource struct {
	src   rand.Source
	drawn int64
}

func (c *countingSource) Int63() int64 {
	c.drawn++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
	c.drawn = 0
}

// Dice is the engine's only source of randomness: combat rolls, AI target
// choice and script math.random all draw from it. Seed and Position are
// saved with the game.
type Dice struct {
	seed int64
	src  *countingSource
	r    *rand.Rand
}

// NewDice creates dice seeded with seed.
func NewDice(seed int64) *Dice {
	src := &countingSource{src: rand.NewSource(seed)}
	return &Dice{seed: seed, src: src, r: rand.New(src)}
}

// RestoreDice recreates dice from seed and fast-forwards them to position.
func RestoreDice(seed, position int64) *Dice {
	d := NewDice(seed)
	for d.src.drawn < position {
		d.src.Int63()
	}
	return d
}

// Roll returns a value in [1, sides]. A die with fewer than two sides
// shows 1 and draws nothing.
func (d *Dice) Roll(sides int) int {
	if sides < 2 {
		return 1
	}
	return d.r.Intn(sides) + 1
}

// Between returns a value in [lo, hi]. hi below lo yields lo.
func (d *Dice) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + d.Roll(hi-lo+1) - 1
}

// Fraction returns a value in [0, 1).
func (d *Dice) Fraction() float64 {
	return d.r.Float64()
}

// WeightedSelect picks an index with probability proportional to its
// weight. Non-positive weights never win; when no weight is positive the
// first index is returned without drawing.
func (d *Dice) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	roll := d.Roll(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll <= w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// Seed returns the seed the dice started from.
func (d *Dice) Seed() int64 { return d.seed }

// Position returns how many source values have been drawn.
func (d *Dice) Position() int64 { return d.src.drawn }
