package events

import "testing"

func TestNotifyInOrder(t *testing.T) {
	var l ListenerList[int]
	var got []string
	l.Add("a", func(v int) { got = append(got, "a") })
	l.Add("b", func(v int) { got = append(got, "b") })

	l.Notify(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestAddReplacesSameID(t *testing.T) {
	var l ListenerList[int]
	calls := map[string]int{}
	l.Add("ui", func(int) { calls["old"]++ })
	l.Add("ui", func(int) { calls["new"]++ })

	l.Notify(0)

	if l.Len() != 1 {
		t.Errorf("expected 1 listener, got %d", l.Len())
	}
	if calls["old"] != 0 || calls["new"] != 1 {
		t.Errorf("expected only the replacement to fire, got %v", calls)
	}
}

func TestRemove(t *testing.T) {
	var l ListenerList[string]
	l.Add("a", func(string) {})
	l.Add("b", func(string) {})
	l.Remove("a")

	if l.Has("a") || !l.Has("b") {
		t.Error("expected only b to remain")
	}
}

func TestAddDuringNotifyDoesNotFire(t *testing.T) {
	var l ListenerList[int]
	fired := 0
	l.Add("outer", func(int) {
		l.Add("inner", func(int) { fired++ })
	})

	l.Notify(0)
	if fired != 0 {
		t.Errorf("expected inner listener to wait for the next notify, fired %d", fired)
	}

	l.Notify(0)
	if fired != 1 {
		t.Errorf("expected inner listener to fire once, fired %d", fired)
	}
}
