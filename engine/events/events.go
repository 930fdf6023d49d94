// Package events implements id-keyed change listener lists.
// Listeners are notified in registration order; notification never recurses
// into listeners added while it runs.
package events

// Listener is one registered change callback.
type Listener[T any] struct {
	ID string
	Fn func(T)
}

// ListenerList holds listeners keyed by id. Adding an id that is already
// present replaces the old listener in place.
type ListenerList[T any] struct {
	listeners []Listener[T]
}

// Add registers fn under id.
func (l *ListenerList[T]) Add(id string, fn func(T)) {
	for i := range l.listeners {
		if l.listeners[i].ID == id {
			l.listeners[i].Fn = fn
			return
		}
	}
	l.listeners = append(l.listeners, Listener[T]{ID: id, Fn: fn})
}

// Remove drops the listener with id, if any.
func (l *ListenerList[T]) Remove(id string) {
	kept := l.listeners[:0]
	for _, ln := range l.listeners {
		if ln.ID != id {
			kept = append(kept, ln)
		}
	}
	l.listeners = kept
}

// Has reports whether id is registered.
func (l *ListenerList[T]) Has(id string) bool {
	for _, ln := range l.listeners {
		if ln.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of listeners.
func (l *ListenerList[T]) Len() int {
	return len(l.listeners)
}

// Notify calls every listener with v. Listeners added or removed during the
// pass take effect on the next Notify.
func (l *ListenerList[T]) Notify(v T) {
	snapshot := make([]Listener[T], len(l.listeners))
	copy(snapshot, l.listeners)
	for _, ln := range snapshot {
		ln.Fn(v)
	}
}

// Clear removes every listener.
func (l *ListenerList[T]) Clear() {
	l.listeners = nil
}
