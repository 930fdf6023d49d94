// Package effects implements timed and permanent modifiers attached to one
// entity. The turn manager owns every live effect; this package only knows
// an effect's own lifecycle.
package effects

import (
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/events"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
)

// Effect is a bundle of bonuses on one owner entity.
type Effect struct {
	ID             int
	Name           string
	Tag            string
	Owner          entity.Handle
	Bonuses        rules.BonusList
	DeactivateWith string

	total     rules.ExtInt
	remaining rules.ExtInt
	callbacks []script.Callback
	listeners events.ListenerList[*Effect]
	removed   bool
}

// New creates an effect. Duration is in rounds and may be rules.Infinity.
func New(name, tag string, duration rules.ExtInt, bonuses rules.BonusList, deactivateWith string) *Effect {
	return &Effect{
		Name:           name,
		Tag:            tag,
		Owner:          entity.NoHandle,
		Bonuses:        bonuses.Clone(),
		DeactivateWith: deactivateWith,
		total:          duration,
		remaining:      duration,
	}
}

// FromBuilder converts a finished script effect builder.
func FromBuilder(b *script.EffectBuilder) *Effect {
	e := New(b.Name, b.Tag, b.Duration, b.Bonuses, b.DeactivateWith)
	for _, cb := range b.Callbacks {
		e.AddCallback(cb)
	}
	return e
}

// AddCallback registers a callback. Callbacks fire in registration order.
func (e *Effect) AddCallback(cb script.Callback) {
	e.callbacks = append(e.callbacks, cb)
}

// Callbacks returns the registered callbacks.
func (e *Effect) Callbacks() []script.Callback {
	out := make([]script.Callback, len(e.callbacks))
	copy(out, e.callbacks)
	return out
}

// AddRemovalListener registers fn to run after the removal callbacks.
func (e *Effect) AddRemovalListener(id string, fn func(*Effect)) {
	e.listeners.Add(id, fn)
}

// Remaining returns the rounds left.
func (e *Effect) Remaining() rules.ExtInt {
	return e.remaining
}

// Total returns the duration the effect started with.
func (e *Effect) Total() rules.ExtInt {
	return e.total
}

// SetRemaining overwrites the rounds left, used when restoring a save.
func (e *Effect) SetRemaining(r rules.ExtInt) {
	e.remaining = r
}

// IsRemoved reports whether Remove has run.
func (e *Effect) IsRemoved() bool {
	return e.removed
}

// Tick counts one elapsed round and reports whether the effect expired.
// Infinite effects never expire here.
func (e *Effect) Tick() bool {
	if e.removed || e.remaining.IsInfinite() {
		return false
	}
	e.remaining = e.remaining.Sub(1)
	return e.remaining.IsZero()
}

// Remove fires OnRemoved on each callback in registration order, then the
// removal listeners. Later calls do nothing.
func (e *Effect) Remove() {
	if e.removed {
		return
	}
	e.removed = true
	for _, cb := range e.callbacks {
		cb.OnRemoved()
	}
	e.listeners.Notify(e)
	e.listeners.Clear()
}
