package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/turncore/engine"
	"github.com/nathoo/turncore/engine/luavm"
	"github.com/nathoo/turncore/engine/save"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/types"
)

// testDefs returns a small walled room with a hero and a spawnable rat.
func testDefs() *state.Defs {
	d := state.NewDefs()
	d.Game = types.GameDef{
		Title:            "Test Game",
		StartingArea:     "hall",
		StartingLocation: types.Point{X: 1, Y: 1},
		Player:           "hero",
		Intro:            "Welcome to the test.",
	}
	melee := types.AttackDef{Kind: "melee", Reach: 1, MinDamage: 1, MaxDamage: 2}
	d.Actors["hero"] = &types.ActorDef{ID: "hero", Name: "Hero", HitPoints: 30, Attack: melee}
	d.Actors["rat"] = &types.ActorDef{ID: "rat", Name: "Rat", Faction: types.FactionHostile, HitPoints: 3, Attack: melee}

	hall := &types.AreaDef{ID: "hall", Width: 6, Height: 3, VisDist: 10}
	for y := 0; y < hall.Height; y++ {
		for x := 0; x < hall.Width; x++ {
			open := x != 0
			hall.Passable = append(hall.Passable, open)
			hall.Transparent = append(hall.Transparent, open)
		}
	}
	d.Areas["hall"] = hall
	return d
}

func newTestSession(t *testing.T, withStore bool) *Session {
	t.Helper()
	eng := engine.New(testDefs(), engine.WithSeed(3), engine.WithRoundMillis(200))
	r := luavm.New(eng)
	t.Cleanup(r.Close)
	if err := eng.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var store *save.Store
	if withStore {
		var err error
		store, err = save.Open(filepath.Join(t.TempDir(), "saves.db"))
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		t.Cleanup(func() { store.Close() })
	}
	return NewSession(eng, store, 50)
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Session: newTestSession(t, true),
		In:      strings.NewReader(input),
		Out:     &out,
	}
	return c, &out
}

func exec(t *testing.T, s *Session, input string) string {
	t.Helper()
	out, _ := s.Exec(context.Background(), input)
	var lines []string
	for _, l := range out {
		lines = append(lines, Plain(l))
	}
	return strings.Join(lines, "\n")
}

func TestCLI_IntroAndQuit(t *testing.T) {
	c, out := newTestCLI(t, "/quit\nlook\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Welcome to the test.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "[Goodbye.]") {
		t.Error("expected goodbye message")
	}
}

func TestNew_Defaults(t *testing.T) {
	s := newTestSession(t, false)
	c := New(s)
	if c.Session != s || c.In != os.Stdin || c.Out != os.Stdout || !c.Color {
		t.Errorf("unexpected defaults: %+v", c)
	}
}

func TestCLI_ConsoleScript(t *testing.T) {
	c, out := newTestCLI(t, "# a comment\ngame.player():name()\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Hero") {
		t.Errorf("expected console result in output, got %q", out.String())
	}
}

func TestCLI_EchoInput(t *testing.T) {
	c, out := newTestCLI(t, "/help\n")
	c.EchoInput = true
	c.Run(context.Background())

	if !strings.Contains(out.String(), "> /help\n") {
		t.Errorf("expected echoed input, got %q", out.String())
	}
}

func TestSession_ScriptError(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "error('nope')"); !strings.Contains(got, "Script error") {
		t.Errorf("expected script error, got %q", got)
	}
}

func TestSession_Status(t *testing.T) {
	s := newTestSession(t, false)
	got := exec(t, s, "/status")
	if !strings.Contains(got, "Area: hall") || !strings.Contains(got, "Hero [party] at (1,1) HP 30/30") {
		t.Errorf("unexpected status %q", got)
	}
	if !strings.Contains(got, "Exploring") {
		t.Errorf("expected exploring status, got %q", got)
	}
}

func TestSession_MoveSettles(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/move 4 1"); !strings.Contains(got, "moves toward (4,1)") {
		t.Fatalf("move failed: %q", got)
	}
	hero := s.Engine.Party()[0]
	if hero.Location.X != 4 || hero.Location.Y != 1 {
		t.Errorf("hero at (%d,%d), want (4,1)", hero.Location.X, hero.Location.Y)
	}
	if s.Engine.Anims.HasAnyBlocking() {
		t.Error("expected no blocking animation after settling")
	}

	if got := exec(t, s, "/move 0 0"); !strings.Contains(got, "can't move") {
		t.Errorf("expected wall move to fail, got %q", got)
	}
	if got := exec(t, s, "/move x"); !strings.Contains(got, "Usage") {
		t.Errorf("expected usage, got %q", got)
	}
}

func TestSession_Map(t *testing.T) {
	s := newTestSession(t, false)
	got := exec(t, s, "/map")
	rows := strings.Split(got, "\n")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %q", len(rows), got)
	}
	if rows[1] != "#@...." {
		t.Errorf("row 1 = %q, want %q", rows[1], "#@....")
	}
}

func TestSession_SpawnStartsCombat(t *testing.T) {
	s := newTestSession(t, false)
	got := exec(t, s, "/spawn rat 3 1")
	if !strings.Contains(got, "Rat appears") {
		t.Fatalf("spawn failed: %q", got)
	}
	if !s.Engine.InCombat() {
		t.Fatal("expected a visible hostile to start combat")
	}
	cur := s.Engine.Current()
	if cur == nil || !s.Engine.IsPartyMember(cur) {
		t.Error("expected settling to hand the turn back to the party")
	}
	if got := exec(t, s, "/wait"); !strings.Contains(got, "can't wait") {
		t.Errorf("expected wait to be refused in combat, got %q", got)
	}

	if got := exec(t, s, "/spawn dragon 2 2"); !strings.Contains(got, "Spawn failed") {
		t.Errorf("expected unknown actor to fail, got %q", got)
	}
}

func TestSession_AttackByName(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/attack"); !strings.Contains(got, "Usage") {
		t.Errorf("expected usage, got %q", got)
	}
	exec(t, s, "/spawn rat 2 1")
	if got := exec(t, s, "/attack goblin"); !strings.Contains(got, `You don't see "goblin" here`) {
		t.Errorf("expected unknown target to be reported, got %q", got)
	}
	if got := exec(t, s, "/attack rat"); !strings.Contains(got, "Hero attacks Rat.") {
		t.Errorf("expected the attack to start, got %q", got)
	}
}

func TestSession_EndTurnOutsideCombat(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/end"); !strings.Contains(got, "not your turn") {
		t.Errorf("expected refusal, got %q", got)
	}
}

func TestSession_Wait(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/wait 500"); !strings.Contains(got, "Time passes") {
		t.Errorf("unexpected output %q", got)
	}
	if got := exec(t, s, "/wait -5"); !strings.Contains(got, "Usage") {
		t.Errorf("expected usage, got %q", got)
	}
}

func TestSession_Go(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/go nowhere 1 1"); !strings.Contains(got, "Transition failed") {
		t.Errorf("expected unknown area to fail, got %q", got)
	}
	if got := exec(t, s, "/go hall 99 99"); !strings.Contains(got, "invalid location") {
		t.Errorf("expected out of bounds target to fail, got %q", got)
	}
}

func TestSession_SaveLoad(t *testing.T) {
	s := newTestSession(t, true)

	if got := exec(t, s, "/save slot1"); !strings.Contains(got, "Game saved to slot1") {
		t.Fatalf("save failed: %q", got)
	}
	exec(t, s, "/move 4 1")

	if got := exec(t, s, "/slots"); !strings.Contains(got, "slot1: Test Game, hall") {
		t.Errorf("slots = %q", got)
	}
	if got := exec(t, s, "/load slot1"); !strings.Contains(got, "Game loaded from slot1") {
		t.Fatalf("load failed: %q", got)
	}
	hero := s.Engine.Party()[0]
	if hero.Location.X != 1 {
		t.Errorf("expected loaded hero back at x=1, got %d", hero.Location.X)
	}

	if got := exec(t, s, "/load missing"); !strings.Contains(got, "Load failed") {
		t.Errorf("expected missing slot to fail, got %q", got)
	}
	exec(t, s, "/delete slot1")
	if got := exec(t, s, "/slots"); !strings.Contains(got, "No saved games") {
		t.Errorf("expected empty slot list, got %q", got)
	}
}

func TestSession_SaveWithoutStore(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/save"); !strings.Contains(got, "no save database") {
		t.Errorf("expected failure, got %q", got)
	}
}

func TestSession_UnknownAndQuit(t *testing.T) {
	s := newTestSession(t, false)
	if got := exec(t, s, "/dance"); !strings.Contains(got, "Unknown command: /dance") {
		t.Errorf("unexpected output %q", got)
	}
	if _, quit := s.Exec(context.Background(), "/exit"); !quit {
		t.Error("expected /exit to quit")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		line Line
		want string
	}{
		{Line{Text: "saved", Kind: LineSystem}, "[saved]"},
		{Line{Text: "5", Kind: LineDamage}, "5"},
		{Line{Text: "plain"}, "plain"},
	}
	for _, tt := range tests {
		if got := Plain(tt.line); got != tt.want {
			t.Errorf("Plain(%+v) = %q, want %q", tt.line, got, tt.want)
		}
		if got := Render(tt.line); !strings.Contains(got, tt.line.Text) {
			t.Errorf("Render(%+v) = %q, lost the text", tt.line, got)
		}
	}
}
