// Package turn implements combat initiative rotation and the global owner of
// live effects.
package turn

import (
	"sort"

	"github.com/nathoo/turncore/engine/entity"
)

// Timer is the initiative rotation of one area. When active exactly one
// handle is current; when inactive none is.
type Timer struct {
	order   []entity.Handle
	current int
	round   uint32
	active  bool

	// Set when Remove hands the turn to another entity; the manager starts
	// that entity's turn and elapses the wrapped rounds.
	startDue bool
	wrapsDue int
}

// NewTimer returns an inactive timer.
func NewTimer() *Timer {
	return &Timer{}
}

// IsActive reports whether combat is running.
func (t *Timer) IsActive() bool {
	return t.active
}

// Round returns the number of completed rotations since activation.
func (t *Timer) Round() uint32 {
	return t.round
}

// Order returns a copy of the rotation.
func (t *Timer) Order() []entity.Handle {
	out := make([]entity.Handle, len(t.order))
	copy(out, t.order)
	return out
}

// Current returns the handle whose turn it is.
func (t *Timer) Current() (entity.Handle, bool) {
	if !t.active || len(t.order) == 0 {
		return entity.NoHandle, false
	}
	return t.order[t.current], true
}

// Activate starts combat with the given entities ordered by initiative,
// highest first. Ties keep the order of the slice.
func (t *Timer) Activate(entities []*entity.EntityState) {
	sorted := make([]*entity.EntityState, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Actor.Stats.Initiative > sorted[j].Actor.Stats.Initiative
	})

	t.order = t.order[:0]
	for _, e := range sorted {
		t.order = append(t.order, e.Handle())
	}
	t.current = 0
	t.round = 0
	t.active = len(t.order) > 0
}

// Deactivate ends combat.
func (t *Timer) Deactivate() {
	t.order = nil
	t.current = 0
	t.active = false
	t.startDue, t.wrapsDue = false, 0
}

// Contains reports whether h is in the rotation.
func (t *Timer) Contains(h entity.Handle) bool {
	for _, o := range t.order {
		if o == h {
			return true
		}
	}
	return false
}

// Add appends h to the end of the rotation.
func (t *Timer) Add(h entity.Handle) {
	if !t.active || t.Contains(h) {
		return
	}
	t.order = append(t.order, h)
}

// Remove drops h from the rotation. If h was current, the next entity
// becomes current and is recorded as due to start its turn; a removal that
// wraps past the end also records a round. TakeDue collects both.
func (t *Timer) Remove(h entity.Handle) {
	for i, o := range t.order {
		if o != h {
			continue
		}
		wasCurrent := i == t.current
		t.order = append(t.order[:i], t.order[i+1:]...)
		if i < t.current {
			t.current--
		}
		if len(t.order) == 0 {
			t.Deactivate()
			return
		}
		if t.current >= len(t.order) {
			t.current = 0
			t.round++
			t.wrapsDue++
		}
		if wasCurrent {
			t.startDue = true
		}
		return
	}
}

// TakeDue returns and clears the pending turn start and wrapped rounds
// left by Remove.
func (t *Timer) TakeDue() (start bool, wraps int) {
	start, wraps = t.startDue, t.wrapsDue
	t.startDue, t.wrapsDue = false, 0
	return start, wraps
}

// Next advances to the next entity and reports whether the rotation wrapped
// into a new round.
func (t *Timer) Next() bool {
	if !t.active || len(t.order) == 0 {
		return false
	}
	t.current++
	if t.current >= len(t.order) {
		t.current = 0
		t.round++
		return true
	}
	return false
}

// Restore sets the rotation from saved data. Callers remap handles first.
func (t *Timer) Restore(order []entity.Handle, current int, round uint32, active bool) {
	t.order = append([]entity.Handle(nil), order...)
	t.round = round
	t.active = active && len(order) > 0
	t.startDue, t.wrapsDue = false, 0
	t.current = 0
	if current >= 0 && current < len(order) {
		t.current = current
	}
}

// CurrentIndex returns the position of the current handle in Order.
func (t *Timer) CurrentIndex() int {
	return t.current
}
