package state

import (
	"testing"

	"github.com/nathoo/turncore/types"
)

func testDefs() *Defs {
	d := NewDefs()
	d.Game = types.GameDef{
		Title:        "Test Game",
		StartingArea: "cave",
		Player:       "hero",
		Triggers: []types.Trigger{
			{Kind: types.OnCampaignStart, Script: "intro", Func: "start"},
		},
	}
	d.Areas["cave"] = &types.AreaDef{
		ID: "cave",
		Triggers: []types.Trigger{
			{Kind: types.OnAreaLoad, Script: "cave", Func: "on_load"},
			{Kind: types.OnCampaignStart, Script: "cave", Func: "never"},
		},
	}
	d.Areas["forest"] = &types.AreaDef{ID: "forest"}
	d.Actors["hero"] = &types.ActorDef{ID: "hero", Size: "2x2"}
	d.Sizes["2x2"] = types.ObjectSize{ID: "2x2", Width: 2, Height: 2}
	d.Scripts["intro"] = "function start() end"
	return d
}

func TestLookups_Found(t *testing.T) {
	d := testDefs()

	if _, ok := d.Actor("hero"); !ok {
		t.Error("expected hero to be found")
	}
	if _, ok := d.Area("cave"); !ok {
		t.Error("expected cave to be found")
	}
	if src, ok := d.Script("intro"); !ok || src == "" {
		t.Errorf("expected intro script, got %q", src)
	}
}

func TestLookups_Missing(t *testing.T) {
	d := testDefs()

	if _, ok := d.Actor("dragon"); ok {
		t.Error("expected dragon to be missing")
	}
	if _, ok := d.Item("sword"); ok {
		t.Error("expected sword to be missing")
	}
	if _, ok := d.Ability("fireball"); ok {
		t.Error("expected fireball to be missing")
	}
}

func TestSize_Fallback(t *testing.T) {
	d := testDefs()

	if got := d.Size("2x2"); got.Width != 2 {
		t.Errorf("expected width 2, got %d", got.Width)
	}
	if got := d.Size(""); got != DefaultSize {
		t.Errorf("expected default size, got %+v", got)
	}
	if got := d.Size("huge"); got != DefaultSize {
		t.Errorf("expected default size for unknown id, got %+v", got)
	}
}

func TestTriggers_FilterByKind(t *testing.T) {
	d := testDefs()

	if got := d.CampaignTriggers(types.OnCampaignStart); len(got) != 1 || got[0].Func != "start" {
		t.Errorf("expected one campaign start trigger, got %v", got)
	}
	if got := d.CampaignTriggers(types.OnAreaLoad); len(got) != 0 {
		t.Errorf("expected no campaign area-load triggers, got %v", got)
	}
	got := AreaTriggers(d.Areas["cave"], types.OnAreaLoad)
	if len(got) != 1 || got[0].Func != "on_load" {
		t.Errorf("expected cave on_load trigger, got %v", got)
	}
}

func TestAreaIDs_Sorted(t *testing.T) {
	d := testDefs()
	ids := d.AreaIDs()
	if len(ids) != 2 || ids[0] != "cave" || ids[1] != "forest" {
		t.Errorf("expected [cave forest], got %v", ids)
	}
}
