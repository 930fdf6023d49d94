package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	d := state.NewDefs()
	d.Game = types.GameDef{
		Title:            "Test",
		StartingArea:     "hall",
		StartingLocation: types.Point{X: 1, Y: 0},
		Player:           "hero",
	}
	d.Areas["hall"] = &types.AreaDef{
		ID:          "hall",
		Width:       3,
		Height:      1,
		Passable:    []bool{false, true, true},
		Transparent: []bool{false, true, true},
	}
	d.Actors["hero"] = &types.ActorDef{ID: "hero", HitPoints: 10}
	return d
}

func validationErrors(t *testing.T, defs *state.Defs) *ValidationError {
	t.Helper()
	err := validate(defs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve
}

func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a message containing %q, got %v", substr, msgs)
}

func TestValidate_ValidDefs(t *testing.T) {
	if err := validate(validDefs()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidate_Game(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*state.Defs)
		want   string
	}{
		{"empty title", func(d *state.Defs) { d.Game.Title = "" }, "title is required"},
		{"missing player", func(d *state.Defs) { d.Game.Player = "" }, "player is required"},
		{"unknown player", func(d *state.Defs) { d.Game.Player = "ghost" }, `player actor "ghost"`},
		{"unknown area", func(d *state.Defs) { d.Game.StartingArea = "void" }, `starting area "void"`},
		{"blocked start", func(d *state.Defs) { d.Game.StartingLocation = types.Point{X: 0, Y: 0} }, "not a passable tile"},
		{"start out of bounds", func(d *state.Defs) { d.Game.StartingLocation = types.Point{X: 5, Y: 0} }, "not a passable tile"},
		{"bad trigger", func(d *state.Defs) {
			d.Game.Triggers = []types.Trigger{{Kind: "OnWhatever", Script: "x", Func: "f"}}
		}, "unknown trigger kind"},
		{"trigger script", func(d *state.Defs) {
			d.Game.Triggers = []types.Trigger{{Kind: types.OnCampaignStart, Script: "x", Func: "f"}}
		}, `undefined script "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefs()
			tt.mutate(d)
			assertContains(t, validationErrors(t, d).Errors, tt.want)
		})
	}
}

func TestValidate_Actors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.ActorDef)
		want   string
	}{
		{"no hit points", func(a *types.ActorDef) { a.HitPoints = 0 }, "positive hit_points"},
		{"faction", func(a *types.ActorDef) { a.Faction = "pirates" }, "unknown faction"},
		{"size", func(a *types.ActorDef) { a.Size = "huge" }, `undefined size "huge"`},
		{"ability", func(a *types.ActorDef) { a.Abilities = []string{"fly"} }, `undefined ability "fly"`},
		{"item", func(a *types.ActorDef) { a.Inventory = []string{"gem"} }, `undefined item "gem"`},
		{"ai script", func(a *types.ActorDef) { a.AI = "smart" }, `undefined AI script "smart"`},
		{"attack kind", func(a *types.ActorDef) { a.Attack.Kind = "magic" }, "unknown attack kind"},
		{"ranged without range", func(a *types.ActorDef) { a.Attack.Kind = "ranged" }, "without range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefs()
			tt.mutate(d.Actors["hero"])
			assertContains(t, validationErrors(t, d).Errors, tt.want)
		})
	}
}

func TestValidate_BuiltinAI(t *testing.T) {
	d := validDefs()
	d.Actors["hero"].AI = "none"
	if err := validate(d); err != nil {
		t.Errorf("expected inert AI to need no script, got %v", err)
	}
}

func TestValidate_AreaReferences(t *testing.T) {
	d := validDefs()
	hall := d.Areas["hall"]
	hall.Actors = []types.ActorPlacement{
		{Actor: "troll", Location: types.Point{X: 2, Y: 0}},
		{Actor: "hero", Location: types.Point{X: 0, Y: 0}},
	}
	hall.Props = []types.PropDef{{ID: "chest", Location: types.Point{X: 9, Y: 9}, Items: []string{"gold"}}}
	hall.Merchants = []types.MerchantDef{{ID: "shop", Items: []string{"gem"}}}

	ve := validationErrors(t, d)
	assertContains(t, ve.Errors, `undefined actor "troll"`)
	assertContains(t, ve.Errors, "blocked tile (0,0)")
	assertContains(t, ve.Errors, `prop "chest" is outside the map`)
	assertContains(t, ve.Errors, `prop "chest" references undefined item "gold"`)
	assertContains(t, ve.Errors, `merchant "shop" references undefined item "gem"`)
	assertContains(t, ve.Warnings, "non-positive price fraction")
}

func TestValidate_AbilitiesItemsSizes(t *testing.T) {
	d := validDefs()
	d.Abilities["bless"] = &types.AbilityDef{ID: "bless", Active: true, Script: "missing"}
	d.Abilities["rage"] = &types.AbilityDef{ID: "rage", Active: true}
	d.Items["cursed"] = &types.ItemDef{ID: "cursed", Bonuses: []types.BonusDef{{Kind: "luck", Amount: 1}}}
	d.Sizes["flat"] = types.ObjectSize{ID: "flat", Width: 0, Height: 1}

	ve := validationErrors(t, d)
	assertContains(t, ve.Errors, `ability "bless" references undefined script "missing"`)
	assertContains(t, ve.Warnings, `active ability "rage" has no script`)
	assertContains(t, ve.Errors, `unknown bonus kind "luck"`)
	assertContains(t, ve.Errors, `size "flat" must be at least 1x1`)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"a", "b"}}
	msg := ve.Error()
	if !strings.Contains(msg, "2 error(s)") || !strings.Contains(msg, "a\n  b") {
		t.Errorf("unexpected message %q", msg)
	}
}
