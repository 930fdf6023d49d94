package effects

import (
	"testing"

	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
)

// recorder appends its name to a shared log on removal.
type recorder struct {
	script.NopCallback
	name string
	log  *[]string
}

func (r recorder) OnRemoved() { *r.log = append(*r.log, r.name) }

func TestFiniteEffectExpiresAfterDuration(t *testing.T) {
	e := New("Haste", "buff", rules.Int(3), rules.BonusList{}, "")
	for i := 1; i <= 2; i++ {
		if e.Tick() {
			t.Fatalf("expected effect alive after %d ticks", i)
		}
	}
	if !e.Tick() {
		t.Error("expected effect to expire on tick 3")
	}
}

func TestInfiniteEffectNeverExpires(t *testing.T) {
	e := New("Aura", "", rules.Infinity, rules.BonusList{}, "")
	for i := 0; i < 1000; i++ {
		if e.Tick() {
			t.Fatalf("infinite effect expired after %d ticks", i+1)
		}
	}
}

func TestRemoveFiresCallbacksOnceInOrder(t *testing.T) {
	var log []string
	e := New("Curse", "", rules.Int(1), rules.BonusList{}, "")
	e.AddCallback(recorder{name: "first", log: &log})
	e.AddCallback(recorder{name: "second", log: &log})
	e.AddRemovalListener("anim", func(*Effect) { log = append(log, "listener") })

	e.Remove()
	e.Remove()

	want := []string{"first", "second", "listener"}
	if len(log) != len(want) {
		t.Fatalf("expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("expected %q at %d, got %q", want[i], i, log[i])
		}
	}
	if !e.IsRemoved() {
		t.Error("expected effect to be marked removed")
	}
	if e.Tick() {
		t.Error("removed effect should not expire again")
	}
}

func TestFromBuilder(t *testing.T) {
	b := script.NewEffect(2, "Shield", 4)
	b.SetTag("spell")
	b.AddNumBonus("armor", 3)
	b.AddCallback(script.NopCallback{})
	b.DeactivateWithAbility("ward")

	e := FromBuilder(b)
	if e.Name != "Shield" || e.Tag != "spell" || e.DeactivateWith != "ward" {
		t.Errorf("unexpected effect %+v", e)
	}
	if e.Bonuses.Len() != 1 || len(e.Callbacks()) != 1 {
		t.Errorf("expected 1 bonus and 1 callback, got %d and %d", e.Bonuses.Len(), len(e.Callbacks()))
	}
	if v, _ := e.Remaining().Value(); v != 4 {
		t.Errorf("expected 4 rounds remaining, got %v", e.Remaining())
	}

	// The builder's bonus list is copied, not shared.
	b.AddNumBonus("defense", 1)
	if e.Bonuses.Len() != 1 {
		t.Error("effect bonuses should not follow builder changes")
	}
}
