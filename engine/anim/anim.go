// Package anim implements the animation queue. Animations are the only way
// deferred work happens: movement, attacks landing and effect visuals all
// run as animations updated once per tick.
package anim

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
)

// Lifecycle states.
const (
	StateQueued    = "queued"
	StateActive    = "active"
	StateCompleted = "completed"
	StateMarked    = "marked"
	StateCleanup   = "cleanup"
	StateDiscarded = "discarded"
)

// Animation is one time-boxed unit of deferred work.
type Animation interface {
	Owner() entity.Handle
	IsBlocking() bool
	// Update advances the animation and reports whether to keep it.
	Update(millis int) bool
	// Cleanup runs once when the animation leaves the queue.
	Cleanup()
	MarkForRemoval()
	IsMarked() bool
	base() *Base
}

// Base carries the lifecycle shared by every animation kind. Embed it and
// implement Update.
type Base struct {
	owner    entity.Handle
	blocking bool
	elapsed  int
	duration int
	machine  *fsm.FSM
	onDone   []func()
}

func newBase(owner entity.Handle, blocking bool, duration int) Base {
	return Base{
		owner:    owner,
		blocking: blocking,
		duration: duration,
		machine: fsm.NewFSM(
			StateQueued,
			fsm.Events{
				{Name: "promote", Src: []string{StateQueued}, Dst: StateActive},
				{Name: "complete", Src: []string{StateActive}, Dst: StateCompleted},
				{Name: "mark", Src: []string{StateQueued, StateActive}, Dst: StateMarked},
				{Name: "cleanup", Src: []string{StateCompleted, StateMarked}, Dst: StateCleanup},
				{Name: "discard", Src: []string{StateCleanup}, Dst: StateDiscarded},
			},
			fsm.Callbacks{},
		),
	}
}

func (b *Base) base() *Base { return b }

// Owner returns the entity the animation belongs to.
func (b *Base) Owner() entity.Handle { return b.owner }

// IsBlocking reports whether the owner must wait for this animation.
func (b *Base) IsBlocking() bool { return b.blocking }

// State returns the lifecycle state.
func (b *Base) State() string { return b.machine.Current() }

// MarkForRemoval requests early termination at the next sweep.
func (b *Base) MarkForRemoval() { b.fire("mark") }

// IsMarked reports whether removal was requested.
func (b *Base) IsMarked() bool { return b.machine.Is(StateMarked) }

// Cleanup runs the completion hooks. Kinds that need their own cleanup
// should call it from theirs.
func (b *Base) Cleanup() {
	for _, fn := range b.onDone {
		fn()
	}
}

// OnDone adds a hook run during cleanup, such as an AI activation check.
func (b *Base) OnDone(fn func()) { b.onDone = append(b.onDone, fn) }

// Elapsed returns the milliseconds the animation has been active.
func (b *Base) Elapsed() int { return b.elapsed }

// frac advances the clock by millis and returns the completed fraction.
func (b *Base) frac(millis int) float64 {
	b.elapsed += millis
	if b.duration <= 0 {
		return 1
	}
	return float64(b.elapsed) / float64(b.duration)
}

func (b *Base) isDone() bool {
	return b.machine.Is(StateCleanup) || b.machine.Is(StateDiscarded)
}

func (b *Base) fire(event string) {
	if !b.machine.Can(event) {
		return
	}
	if err := b.machine.Event(context.Background(), event); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"event": event,
			"state": b.machine.Current(),
		}).WithError(err).Debug("Animation transition rejected")
	}
}
