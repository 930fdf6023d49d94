package anim

import "github.com/nathoo/turncore/engine/entity"

// Queue holds queued and active animations. New animations wait in the
// queue until the start of the next Update so the active list is never
// modified while it is being iterated.
type Queue struct {
	pending []Animation
	active  []Animation
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add queues a for the next Update.
func (q *Queue) Add(a Animation) {
	q.pending = append(q.pending, a)
}

// Update promotes every queued animation, then updates each active one.
// Marked animations are removed without being updated. Every removed
// animation is cleaned up exactly once.
func (q *Queue) Update(millis int) {
	for _, a := range q.pending {
		a.base().fire("promote")
		q.active = append(q.active, a)
	}
	q.pending = nil

	snapshot := q.active
	for _, a := range snapshot {
		if a.base().isDone() {
			continue
		}
		if a.IsMarked() {
			q.finish(a)
			continue
		}
		if !a.Update(millis) || a.IsMarked() {
			a.base().fire("complete")
			q.finish(a)
		}
	}

	kept := make([]Animation, 0, len(snapshot))
	for _, a := range snapshot {
		if !a.base().isDone() {
			kept = append(kept, a)
		}
	}
	q.active = kept
}

func (q *Queue) finish(a Animation) {
	b := a.base()
	if b.isDone() {
		return
	}
	b.fire("cleanup")
	a.Cleanup()
	b.fire("discard")
}

// Active returns the active animations.
func (q *Queue) Active() []Animation {
	out := make([]Animation, len(q.active))
	copy(out, q.active)
	return out
}

// Pending returns the animations waiting for promotion.
func (q *Queue) Pending() []Animation {
	out := make([]Animation, len(q.pending))
	copy(out, q.pending)
	return out
}

// HasBlocking reports whether owner has a blocking animation queued or active.
func (q *Queue) HasBlocking(owner entity.Handle) bool {
	for _, list := range [][]Animation{q.active, q.pending} {
		for _, a := range list {
			if a.Owner() == owner && a.IsBlocking() && !a.IsMarked() {
				return true
			}
		}
	}
	return false
}

// HasAnyBlocking reports whether any entity has a blocking animation.
func (q *Queue) HasAnyBlocking() bool {
	for _, list := range [][]Animation{q.active, q.pending} {
		for _, a := range list {
			if a.IsBlocking() && !a.IsMarked() {
				return true
			}
		}
	}
	return false
}

// RemoveBlocking marks owner's blocking animations for removal.
func (q *Queue) RemoveBlocking(owner entity.Handle) {
	for _, list := range [][]Animation{q.active, q.pending} {
		for _, a := range list {
			if a.Owner() == owner && a.IsBlocking() {
				a.MarkForRemoval()
			}
		}
	}
}

// RemoveAll marks every animation owned by owner.
func (q *Queue) RemoveAll(owner entity.Handle) {
	for _, list := range [][]Animation{q.active, q.pending} {
		for _, a := range list {
			if a.Owner() == owner {
				a.MarkForRemoval()
			}
		}
	}
}

// ClearBlocking force-completes every blocking animation now. Non-blocking
// animations are left alone.
func (q *Queue) ClearBlocking() {
	var pending []Animation
	for _, a := range q.pending {
		if a.IsBlocking() {
			a.MarkForRemoval()
			q.finish(a)
			continue
		}
		pending = append(pending, a)
	}
	q.pending = pending

	var active []Animation
	for _, a := range q.active {
		if a.IsBlocking() {
			a.MarkForRemoval()
			q.finish(a)
			continue
		}
		active = append(active, a)
	}
	q.active = active
}

// Len returns the number of queued and active animations.
func (q *Queue) Len() int {
	return len(q.pending) + len(q.active)
}
