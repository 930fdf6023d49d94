package resolve

import (
	"errors"
	"strconv"
	"testing"

	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/types"
)

type testCatalog map[string]*types.ActorDef

func (c testCatalog) Actor(id string) (*types.ActorDef, bool) {
	a, ok := c[id]
	return a, ok
}
func (c testCatalog) Size(string) types.ObjectSize             { return types.ObjectSize{} }
func (c testCatalog) Item(string) (*types.ItemDef, bool)       { return nil, false }
func (c testCatalog) Ability(string) (*types.AbilityDef, bool) { return nil, false }

// testScene places a hero at the west end of a corridor with a wall
// hiding the east end.
func testScene(t *testing.T) (*area.State, map[string]*entity.EntityState) {
	t.Helper()
	rows := []string{
		"........#..",
		"........#..",
	}
	def := &types.AreaDef{ID: "corridor", Width: len(rows[0]), Height: len(rows), VisDist: 20}
	for _, row := range rows {
		for _, c := range row {
			def.Passable = append(def.Passable, c != '#')
			def.Transparent = append(def.Transparent, c != '#')
		}
	}
	a := area.New(def)
	cat := testCatalog{
		"hero":      {ID: "hero", Name: "Hero", HitPoints: 10},
		"giant_rat": {ID: "giant_rat", Name: "Giant Rat", Faction: types.FactionHostile, HitPoints: 4},
		"rat":       {ID: "rat", Name: "Rat", Faction: types.FactionHostile, HitPoints: 2},
		"guard":     {ID: "guard", Name: "Old Guard", HitPoints: 8},
	}
	ents := map[string]*entity.EntityState{}
	place := func(key, id string, x, y int, party bool) {
		e, err := a.AddActor(cat, id, x, y, party)
		if err != nil {
			t.Fatalf("placing %s: %v", id, err)
		}
		ents[key] = e
	}
	place("hero", "hero", 0, 0, true)
	place("giant_rat", "giant_rat", 3, 0, false)
	place("guard_a", "guard", 4, 1, false)
	place("guard_b", "guard", 5, 1, false)
	place("hidden_rat", "rat", 10, 0, false)
	return a, ents
}

func TestTarget_ByIndex(t *testing.T) {
	a, ents := testScene(t)
	want := ents["giant_rat"]
	got, err := Target(a, ents["hero"], strconv.Itoa(want.Index))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want.Name(), got.Name())
	}
}

func TestTarget_ByID(t *testing.T) {
	a, ents := testScene(t)
	for _, ref := range []string{"giant_rat", "Giant Rat", "giant rat", "GIANT RAT"} {
		got, err := Target(a, ents["hero"], ref)
		if err != nil {
			t.Errorf("Target(%q): unexpected error: %v", ref, err)
			continue
		}
		if got != ents["giant_rat"] {
			t.Errorf("Target(%q) = %s, want Giant Rat", ref, got.Name())
		}
	}
}

func TestTarget_WordMatch(t *testing.T) {
	a, ents := testScene(t)
	got, err := Target(a, ents["hero"], "rat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The plain Rat is behind the wall, so the word match wins.
	if got != ents["giant_rat"] {
		t.Errorf("expected Giant Rat, got %s", got.Name())
	}
}

func TestTarget_ExactShadowsWord(t *testing.T) {
	a, ents := testScene(t)
	// With no viewer every entity counts.
	got, err := Target(a, nil, "rat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ents["hidden_rat"] {
		t.Errorf("expected Rat, got %s", got.Name())
	}
}

func TestTarget_Ambiguous(t *testing.T) {
	a, ents := testScene(t)
	_, err := Target(a, ents["hero"], "guard")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguityError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %v", amb.Candidates)
	}
}

func TestTarget_NotVisible(t *testing.T) {
	a, ents := testScene(t)
	for _, ref := range []string{"Rat King", strconv.Itoa(ents["hidden_rat"].Index), "", "99"} {
		_, err := Target(a, ents["hero"], ref)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Target(%q): expected NotFoundError, got %v", ref, err)
		}
	}
}

func TestTarget_SkipsViewer(t *testing.T) {
	a, ents := testScene(t)
	if _, err := Target(a, ents["hero"], "hero"); err == nil {
		t.Error("expected the viewer to be excluded from name matches")
	}
}
