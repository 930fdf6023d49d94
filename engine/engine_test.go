package engine

import (
	"errors"
	"testing"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/save"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/types"
)

// fakeRunner records which script functions ran.
type fakeRunner struct {
	ran []string
}

func (r *fakeRunner) RunTrigger(t types.Trigger, _, _ *entity.EntityState) error {
	r.ran = append(r.ran, t.Script+"."+t.Func)
	return nil
}

func (r *fakeRunner) RunAbility(_ *entity.EntityState, ab *types.AbilityDef) error {
	r.ran = append(r.ran, "ability."+ab.ID)
	return nil
}

func (r *fakeRunner) RunAI(*entity.EntityState) error { return nil }

func (r *fakeRunner) RunConsole(src string) (string, error) {
	r.ran = append(r.ran, "console")
	return src, nil
}

func (r *fakeRunner) RestoreCallback(script.CallbackData) (script.Callback, error) {
	return script.NopCallback{}, nil
}

func (r *fakeRunner) Close() {}

func (r *fakeRunner) count(name string) int {
	n := 0
	for _, s := range r.ran {
		if s == name {
			n++
		}
	}
	return n
}

// mapArea builds an area definition from rows: '#' wall, '.' floor.
func mapArea(id string, rows ...string) *types.AreaDef {
	def := &types.AreaDef{ID: id, Width: len(rows[0]), Height: len(rows), VisDist: 10}
	for _, row := range rows {
		for _, c := range row {
			def.Passable = append(def.Passable, c != '#')
			def.Transparent = append(def.Transparent, c != '#')
		}
	}
	def.Triggers = []types.Trigger{{Kind: types.OnAreaLoad, Script: id, Func: "on_load"}}
	return def
}

func testDefs() *state.Defs {
	d := state.NewDefs()
	d.Game = types.GameDef{
		Title:            "Test Game",
		StartingArea:     "cave",
		StartingLocation: types.Point{X: 1, Y: 1},
		Player:           "hero",
		Triggers:         []types.Trigger{{Kind: types.OnCampaignStart, Script: "campaign", Func: "start"}},
	}
	melee := types.AttackDef{Kind: "melee", Reach: 1, MinDamage: 2, MaxDamage: 4}
	d.Actors["hero"] = &types.ActorDef{ID: "hero", Name: "Hero", HitPoints: 20, Abilities: []string{"dash"}, Attack: melee}
	d.Actors["ally"] = &types.ActorDef{ID: "ally", Name: "Ally", Faction: types.FactionFriendly, HitPoints: 15, Attack: melee}
	d.Actors["statue"] = &types.ActorDef{ID: "statue", Name: "Statue", HitPoints: 50, AI: AINone, Attack: melee}
	d.Actors["goblin"] = &types.ActorDef{ID: "goblin", Name: "Goblin", Faction: types.FactionHostile, HitPoints: 30, Attack: melee}
	d.Abilities["dash"] = &types.AbilityDef{ID: "dash", Name: "Dash", Active: true, Cooldown: 3, Script: "dash"}

	d.Areas["cave"] = mapArea("cave",
		"..........",
		"......###.",
		"......#.#.",
		"......###.",
	)
	forest := mapArea("forest",
		".....",
		".....",
		".....",
		".....",
	)
	forest.Actors = []types.ActorPlacement{{Actor: "statue", Location: types.Point{X: 2, Y: 2}}}
	d.Areas["forest"] = forest
	d.Areas["closet"] = mapArea("closet",
		"###",
		"###",
	)
	arena := mapArea("arena",
		"......",
		"......",
		"......",
	)
	arena.Actors = []types.ActorPlacement{{Actor: "goblin", Location: types.Point{X: 4, Y: 1}}}
	d.Areas["arena"] = arena
	return d
}

func testEngine(t *testing.T) (*Engine, *fakeRunner) {
	t.Helper()
	r := &fakeRunner{}
	e := New(testDefs(), WithSeed(42), WithScripts(r))
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	return e, r
}

func hero(e *Engine) *entity.EntityState {
	return e.Party()[0]
}

func runUntilIdle(e *Engine, maxTicks int) {
	for i := 0; i < maxTicks && e.Anims.Len() > 0; i++ {
		e.Update(100)
	}
}

func TestInit_PlacesPlayerAndFiresTriggers(t *testing.T) {
	e, r := testEngine(t)

	pc := hero(e)
	if pc.Location.X != 1 || pc.Location.Y != 1 || pc.Location.AreaID != "cave" {
		t.Errorf("expected hero at cave (1,1), got %+v", pc.Location)
	}
	if len(e.Selected()) != 1 || e.Selected()[0] != pc {
		t.Errorf("expected hero selected, got %v", e.Selected())
	}
	if r.count("campaign.start") != 1 || r.count("cave.on_load") != 1 {
		t.Errorf("expected campaign and area triggers once each, got %v", r.ran)
	}
	if !e.Area().OnLoadFired {
		t.Error("expected on_load_fired to be set")
	}
}

func TestInit_Errors(t *testing.T) {
	d := testDefs()
	d.Game.StartingArea = "nowhere"
	if err := New(d).Init(); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("expected ErrUnknownArea, got %v", err)
	}

	d = testDefs()
	d.Game.StartingLocation = types.Point{X: 6, Y: 1}
	if err := New(d).Init(); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestMoveTo_WalksPath(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	if !e.MoveTo(pc, 4, 0) {
		t.Fatal("expected move to be queued")
	}
	if !e.Anims.HasBlocking(pc.Handle()) {
		t.Error("expected a blocking move animation")
	}
	runUntilIdle(e, 50)

	if pc.Location.X != 4 || pc.Location.Y != 0 {
		t.Errorf("expected hero at (4,0), got (%d,%d)", pc.Location.X, pc.Location.Y)
	}
	if pc.Actor.AP != pc.Actor.MaxAP() {
		t.Errorf("expected no AP spent outside combat, got %d", pc.Actor.AP)
	}
}

func TestMoveDisabled_CannotMove(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	if _, ok := e.CanMoveTowardsPoint(pc, 5.5, 0.5, 0); !ok {
		t.Fatal("expected an open path before the effect")
	}

	b := script.NewPermanentEffect(pc.Index, "rooted")
	b.AddMoveDisabled()
	id := e.ApplyEffect(b)
	if id < 0 {
		t.Fatal("expected effect to apply")
	}
	if _, ok := e.CanMoveTowardsPoint(pc, 5.5, 0.5, 0); ok {
		t.Error("expected move_disabled to block movement")
	}
	if e.MoveTo(pc, 5, 0) {
		t.Error("expected MoveTo to fail while rooted")
	}

	e.Turns.RemoveEffect(id)
	if _, ok := e.CanMoveTowardsPoint(pc, 5.5, 0.5, 0); !ok {
		t.Error("expected movement to return after the effect is removed")
	}
}

func TestUnreachableTarget(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	if _, ok := e.CanMoveTowardsPoint(pc, 7.5, 2.5, 0); ok {
		t.Error("expected walled-in tile to be unreachable")
	}
	if e.MoveTo(pc, 7, 2) {
		t.Error("expected MoveTo into a walled-in tile to fail")
	}
}

func blockingAnims(e *Engine, ent *entity.EntityState) int {
	n := 0
	for _, a := range append(e.Anims.Active(), e.Anims.Pending()...) {
		if a.Owner() == ent.Handle() && a.IsBlocking() && !a.IsMarked() {
			n++
		}
	}
	return n
}

func TestAttack_WaitsForMoveToFinish(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)
	statue, err := e.Area().AddActor(e.Defs, "statue", 2, 1, false)
	if err != nil {
		t.Fatalf("add statue: %v", err)
	}

	if !e.MoveTo(pc, 1, 0) {
		t.Fatal("expected move to be queued")
	}
	if e.Attack(pc, statue) {
		t.Error("expected attack to be refused during the move")
	}
	special := rules.SpecialAttack(1, 2, 0, rules.Fire, rules.AttackKind{Type: rules.Reflex})
	if e.SpecialAttack(pc, statue, special) {
		t.Error("expected special attack to be refused during the move")
	}
	if n := blockingAnims(e, pc); n != 1 {
		t.Errorf("expected one blocking animation, got %d", n)
	}

	runUntilIdle(e, 50)
	if pc.Location.X != 1 || pc.Location.Y != 0 {
		t.Fatalf("expected hero at (1,0), got (%d,%d)", pc.Location.X, pc.Location.Y)
	}
	if !e.Attack(pc, statue) {
		t.Fatal("expected attack once the move is done")
	}
	if n := blockingAnims(e, pc); n != 1 {
		t.Errorf("expected only the attack animation, got %d", n)
	}
	runUntilIdle(e, 50)
	if !e.SpecialAttack(pc, statue, special) {
		t.Error("expected special attack once idle")
	}
}

func TestMoveTo_AlreadyThere(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	path, ok := e.CanMoveTowardsPoint(pc, 1.5, 1.5, 0)
	if !ok || len(path) != 0 {
		t.Fatalf("expected an empty path, got %v %v", path, ok)
	}
	if !e.MoveTo(pc, 4, 0) {
		t.Fatal("expected move to be queued")
	}
	if !e.MoveTo(pc, 1, 1) {
		t.Error("expected a move to the current tile to succeed")
	}
	if e.Anims.HasBlocking(pc.Handle()) {
		t.Error("expected the earlier move to be cancelled")
	}
	runUntilIdle(e, 50)
	if pc.Location.X != 1 || pc.Location.Y != 1 {
		t.Errorf("expected hero to stay at (1,1), got (%d,%d)", pc.Location.X, pc.Location.Y)
	}
}

func TestTransition_OnLoadFiresOnce(t *testing.T) {
	e, r := testEngine(t)

	for _, step := range []struct {
		area string
		x, y int
	}{
		{"forest", 0, 0}, {"cave", 1, 1}, {"forest", 4, 3}, {"cave", 0, 0},
	} {
		if err := e.Transition(step.area, step.x, step.y); err != nil {
			t.Fatalf("transition to %s: %v", step.area, err)
		}
	}

	if r.count("cave.on_load") != 1 {
		t.Errorf("expected cave on_load once, got %d", r.count("cave.on_load"))
	}
	if r.count("forest.on_load") != 1 {
		t.Errorf("expected forest on_load once, got %d", r.count("forest.on_load"))
	}
	if forest, _ := e.LoadedArea("forest"); len(forest.Entities()) != 1 {
		t.Errorf("expected only the statue left in the forest, got %d entities", len(forest.Entities()))
	}
}

func TestTransition_RingSearch(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	if err := e.Transition("forest", 2, 2); err != nil {
		t.Fatalf("transition: %v", err)
	}
	dx, dy := abs(pc.Location.X-2), abs(pc.Location.Y-2)
	if dx > 1 || dy > 1 || (dx == 0 && dy == 0) {
		t.Errorf("expected hero on the first ring around the statue, got (%d,%d)", pc.Location.X, pc.Location.Y)
	}
	if e.Area().ID() != "forest" || e.Entity(pc.Handle()) != pc {
		t.Error("expected hero to be in the forest")
	}
}

func TestTransition_NoPlacementRollsBack(t *testing.T) {
	e, r := testEngine(t)
	pc := hero(e)
	cave := e.Area()

	err := e.Transition("closet", 1, 1)
	if !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("expected ErrNoPlacement, got %v", err)
	}
	if e.Area() != cave {
		t.Errorf("expected to stay in the cave, now in %s", e.Area().ID())
	}
	if cave.Entity(pc.Handle()) != pc || pc.Location.X != 1 || pc.Location.Y != 1 {
		t.Errorf("expected hero back at (1,1) in the cave, got %+v", pc.Location)
	}
	if r.count("closet.on_load") != 0 {
		t.Error("expected no on_load for a failed transition")
	}
}

func TestTransition_RollbackKeepsCombatOrder(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)
	if err := e.Transition("arena", 1, 1); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !e.InCombat() {
		t.Fatal("expected combat in the arena")
	}
	arena := e.Area()
	names := func() []string {
		var out []string
		for _, h := range arena.Timer().Order() {
			if ent := arena.Entity(h); ent != nil {
				out = append(out, ent.Actor.Def.ID)
			}
		}
		return out
	}
	before := names()
	current := e.Current()

	if err := e.Transition("closet", 1, 1); !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("expected ErrNoPlacement, got %v", err)
	}
	if !e.InCombat() {
		t.Fatal("expected combat to continue after the rollback")
	}
	after := names()
	if len(after) != len(before) {
		t.Fatalf("expected turn order %v, got %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("expected turn order %v, got %v", before, after)
			break
		}
	}
	if e.Current() != current {
		t.Errorf("expected %s to keep the turn, got %v", current.Name(), e.Current())
	}

	for i := 0; i < 100 && e.Current() != pc; i++ {
		e.Update(100)
	}
	if e.Current() != pc {
		t.Fatal("expected the hero to get its turn after the rollback")
	}
	if !e.EndTurn(pc) {
		t.Error("expected the hero to be able to end its turn")
	}
}

// killOnRound kills victim when a round elapses.
type killOnRound struct {
	script.NopCallback
	victim *entity.EntityState
}

func (c killOnRound) OnRoundElapsed() { c.victim.Actor.TakeDamage(1000) }

func TestCombat_DeathOfCurrentStartsNextTurn(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)
	if err := e.Transition("arena", 1, 1); err != nil {
		t.Fatalf("transition: %v", err)
	}
	goblin := e.Current()
	if goblin == nil || goblin.Party {
		t.Fatalf("expected the goblin to act first, got %v", goblin)
	}
	for i := 0; i < 100 && e.Current() != pc; i++ {
		e.Update(100)
	}
	if e.Current() != pc {
		t.Fatal("expected the turn to pass to the hero")
	}

	b := script.NewPermanentEffect(pc.Index, "doom")
	b.AddCallback(killOnRound{victim: goblin})
	if e.ApplyEffect(b) < 0 {
		t.Fatal("expected effect to apply")
	}
	pc.Actor.AP = 0
	e.EndTurn(pc)

	// The wrap hands the turn to the goblin, which dies as the round elapses.
	e.Update(100)
	if e.Entity(goblin.Handle()) != nil {
		t.Fatal("expected the dead goblin to be removed")
	}
	if e.Current() != pc {
		t.Fatalf("expected the hero to inherit the turn, got %v", e.Current())
	}
	if pc.Actor.AP != pc.Actor.MaxAP() {
		t.Errorf("expected a fresh turn with %d AP, got %d", pc.Actor.MaxAP(), pc.Actor.AP)
	}
	if pc.Actor.EndTurn {
		t.Error("expected the end-turn flag to be reset")
	}
}

func TestTransition_Errors(t *testing.T) {
	e, _ := testEngine(t)

	if err := e.Transition("nowhere", 0, 0); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("expected ErrUnknownArea, got %v", err)
	}
	if err := e.Transition("forest", 9, 0); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestRemovePartyMember_SelectionFallsBack(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)
	ally, err := e.Area().AddActor(e.Defs, "ally", 3, 0, false)
	if err != nil {
		t.Fatalf("add ally: %v", err)
	}
	if !e.AddPartyMember(ally) {
		t.Fatal("expected ally to join")
	}
	e.SelectPartyMembers([]*entity.EntityState{ally})

	notified := 0
	e.AddPartyListener("test", func(*Engine) { notified++ })

	e.RemovePartyMember(ally)
	if notified != 1 {
		t.Errorf("expected one notification, got %d", notified)
	}
	if sel := e.Selected(); len(sel) != 1 || sel[0] != pc {
		t.Errorf("expected selection to fall back to the hero, got %v", sel)
	}

	e.RemovePartyMember(pc)
	if notified != 2 {
		t.Errorf("expected two notifications, got %d", notified)
	}
	if len(e.Selected()) != 0 || len(e.Party()) != 0 {
		t.Error("expected empty party and selection")
	}
}

// removalCounter counts OnRemoved calls.
type removalCounter struct {
	script.NopCallback
	removed *int
}

func (c removalCounter) OnRemoved() { *c.removed++ }

func TestFiniteEffect_ExpiresAfterDuration(t *testing.T) {
	r := &fakeRunner{}
	e := New(testDefs(), WithScripts(r), WithRoundMillis(100))
	if err := e.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	pc := hero(e)

	removed := 0
	b := script.NewEffect(pc.Index, "bless", 2)
	b.AddNumBonus("accuracy", 5)
	b.AddCallback(removalCounter{removed: &removed})
	id := e.ApplyEffect(b)

	e.Update(100)
	if _, ok := e.Turns.Effect(id); !ok {
		t.Fatal("expected effect to survive one round")
	}
	e.Update(100)
	if _, ok := e.Turns.Effect(id); ok {
		t.Error("expected effect removed after two rounds")
	}
	if removed != 1 {
		t.Errorf("expected one removal callback, got %d", removed)
	}
	e.Update(100)
	if removed != 1 {
		t.Errorf("expected removal callback to stay at one, got %d", removed)
	}
}

func TestCombat_AITakesTurn(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)

	if err := e.Transition("arena", 1, 1); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !e.InCombat() {
		t.Fatal("expected combat to start when the goblin is in view")
	}
	goblin := e.Current()
	if goblin == nil || goblin.Party {
		t.Fatalf("expected the goblin to act first, got %v", goblin)
	}

	for i := 0; i < 100 && e.Current() != pc; i++ {
		e.Update(100)
	}
	if e.Current() != pc {
		t.Fatal("expected the turn to pass to the hero")
	}
	if goblin.Location.X != 3 {
		t.Errorf("expected goblin to close to x=3, got %d", goblin.Location.X)
	}
	if goblin.Actor.AP != goblin.Actor.MaxAP()-1000-3000 {
		t.Errorf("expected goblin to spend a step and an attack, AP %d", goblin.Actor.AP)
	}
	if len(e.Area().FeedbackTexts()) == 0 {
		t.Error("expected attack feedback text")
	}

	if e.MoveTo(goblin, 4, 1) {
		t.Error("expected the goblin unable to move out of turn")
	}
	if !e.EndTurn(pc) {
		t.Error("expected hero to end its turn")
	}
}

func TestAbility_CooldownBlocksReuse(t *testing.T) {
	e, r := testEngine(t)
	pc := hero(e)

	if !e.ExecuteAbilityOnActivate(pc, "dash") {
		t.Fatal("expected dash to activate")
	}
	if r.count("ability.dash") != 1 {
		t.Errorf("expected ability script to run, got %v", r.ran)
	}
	if e.ExecuteAbilityOnActivate(pc, "dash") {
		t.Error("expected dash to be cooling down")
	}
	if e.ExecuteAbilityOnActivate(pc, "fireball") {
		t.Error("expected unknown ability to fail")
	}
}

func TestUICallbacks_RunInOrder(t *testing.T) {
	e, r := testEngine(t)
	pc := hero(e)

	e.AddUICallbacksOfKind("dialog", []types.Trigger{
		{Script: "npc", Func: "greet"},
		{Script: "npc", Func: "farewell"},
	}, pc, nil)
	if e.PendingUICallbacks() != 2 {
		t.Fatalf("expected 2 pending callbacks, got %d", e.PendingUICallbacks())
	}
	cb, ok := e.PopUICallback()
	if !ok || cb.Trigger.Func != "greet" || cb.Kind != "dialog" {
		t.Errorf("expected greet first, got %+v", cb)
	}
	before := len(r.ran)
	if n := e.RunUICallbacks(); n != 1 {
		t.Errorf("expected 1 callback run, got %d", n)
	}
	if r.ran[before] != "npc.farewell" {
		t.Errorf("expected farewell to run, got %v", r.ran[before:])
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	e, _ := testEngine(t)
	pc := hero(e)
	ally, _ := e.Area().AddActor(e.Defs, "ally", 3, 0, false)
	e.AddPartyMember(ally)
	b := script.NewPermanentEffect(pc.Index, "rooted")
	b.AddMoveDisabled()
	e.ApplyEffect(b)
	pc.Actor.TakeDamage(5)

	ss, err := e.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := save.Marshal(ss)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	loaded, err := save.Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	e2 := New(testDefs(), WithScripts(&fakeRunner{}))
	if err := e2.Load(loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	party := e2.Party()
	if len(party) != 2 {
		t.Fatalf("expected 2 party members, got %d", len(party))
	}
	pc2 := party[0]
	if pc2.Location != pc.Location || pc2.Actor.HP != pc.Actor.HP {
		t.Errorf("expected hero restored at %+v with %d HP, got %+v with %d", pc.Location, pc.Actor.HP, pc2.Location, pc2.Actor.HP)
	}
	if !pc2.Actor.Stats.MoveDisabled {
		t.Error("expected the rooted effect to be restored")
	}
	if !e2.Area().OnLoadFired {
		t.Error("expected on_load_fired to survive the save")
	}
	if e2.Dice.Position() != e.Dice.Position() {
		t.Errorf("expected dice position %d, got %d", e.Dice.Position(), e2.Dice.Position())
	}
}

func TestLoad_InvalidIndexFails(t *testing.T) {
	e, _ := testEngine(t)
	ss, err := e.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	ss.Party = append(ss.Party, 99)

	e2 := New(testDefs())
	if err := e2.Load(ss); !errors.Is(err, save.ErrInvalidIndex) {
		t.Errorf("expected ErrInvalidIndex, got %v", err)
	}
	if e2.Area() != nil {
		t.Error("expected a failed load to leave the engine empty")
	}
}

func TestSave_NoGame(t *testing.T) {
	if _, err := New(testDefs()).Save(); !errors.Is(err, ErrNoGame) {
		t.Errorf("expected ErrNoGame, got %v", err)
	}
}
