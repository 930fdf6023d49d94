package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/turncore/engine"
	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/resolve"
	"github.com/nathoo/turncore/engine/save"
)

// DefaultSlot is used by /save and /load without a slot name.
const DefaultSlot = "quicksave"

// maxSettleFrames bounds how long Settle runs the frame loop on its own.
const maxSettleFrames = 2000

// LineKind picks how an output line is displayed.
type LineKind int

const (
	LineText LineKind = iota
	LineSystem
	LineError
	LineScript
	LineDamage
	LineHeal
	LineMiss
)

// Line is one line of driver output.
type Line struct {
	Text string
	Kind LineKind
}

// Session interprets driver commands against an engine. Input starting
// with '/' is a command; anything else is run as console script.
// Both the line driver and the terminal viewer share it.
type Session struct {
	Engine *engine.Engine
	// Store may be nil, in which case saving is unavailable.
	Store *save.Store
	// FrameMillis is the update step used when settling.
	FrameMillis int
	// Realtime drivers advance the engine themselves, so commands return
	// without settling.
	Realtime bool
}

// NewSession creates a session stepping the engine frameMillis at a time.
func NewSession(eng *engine.Engine, store *save.Store, frameMillis int) *Session {
	if frameMillis <= 0 {
		frameMillis = 50
	}
	return &Session{Engine: eng, Store: store, FrameMillis: frameMillis}
}

func system(format string, args ...any) Line {
	return Line{Text: fmt.Sprintf(format, args...), Kind: LineSystem}
}

func failure(format string, args ...any) Line {
	return Line{Text: fmt.Sprintf(format, args...), Kind: LineError}
}

// Exec runs one input line and returns its output. quit is true for /quit.
func (s *Session) Exec(ctx context.Context, input string) (out []Line, quit bool) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, false
	}
	if !strings.HasPrefix(input, "/") {
		res, err := s.Engine.ExecuteConsoleScript(input)
		if err != nil {
			out = append(out, failure("Script error: %v", err))
		} else if res != "" {
			out = append(out, Line{Text: res, Kind: LineScript})
		}
		return append(out, s.after()...), false
	}

	cmd := ParseCommand(input)
	args := cmd.Args
	switch cmd.Verb {
	case "quit":
		return []Line{system("Goodbye.")}, true
	case "help":
		return helpLines(), false
	case "status":
		return s.statusLines(), false
	case "map":
		return s.mapLines(), false
	case "save":
		return []Line{s.cmdSave(ctx, slotArg(args))}, false
	case "load":
		out = []Line{s.cmdLoad(ctx, slotArg(args))}
	case "slots":
		return s.cmdSlots(ctx), false
	case "delete":
		return []Line{s.cmdDelete(ctx, args)}, false
	case "move":
		out = []Line{s.cmdMove(args)}
	case "attack":
		out = []Line{s.cmdAttack(args)}
	case "ability":
		out = []Line{s.cmdAbility(args)}
	case "end":
		out = []Line{s.cmdEnd()}
	case "wait":
		out = []Line{s.cmdWait(args)}
	case "go":
		out = []Line{s.cmdGo(args)}
	case "spawn":
		out = []Line{s.cmdSpawn(args)}
	default:
		return []Line{system("Unknown command: /%s. Type /help for available commands.", cmd.Verb)}, false
	}
	return append(out, s.after()...), false
}

func (s *Session) after() []Line {
	if s.Realtime {
		return s.Feedback()
	}
	return s.Settle()
}

// Frame advances the engine by one frame, runs queued UI callbacks and
// returns new feedback text.
func (s *Session) Frame() []Line {
	s.Engine.Update(s.FrameMillis)
	s.Engine.RunUICallbacks()
	return s.Feedback()
}

// Settle runs frames until no blocking animation is left and, in combat,
// the turn is back with the party. It then runs queued UI callbacks and
// returns the feedback text produced meanwhile.
func (s *Session) Settle() []Line {
	eng := s.Engine
	for i := 0; i < maxSettleFrames; i++ {
		if !s.busy() {
			break
		}
		eng.Update(s.FrameMillis)
	}
	eng.RunUICallbacks()
	return s.Feedback()
}

func (s *Session) busy() bool {
	eng := s.Engine
	if eng.Area() == nil {
		return false
	}
	if eng.Anims.HasAnyBlocking() {
		return true
	}
	if !eng.InCombat() {
		return false
	}
	cur := eng.Current()
	return cur == nil || !eng.IsPartyMember(cur)
}

// Feedback returns feedback text not yet reported.
func (s *Session) Feedback() []Line {
	a := s.Engine.Area()
	if a == nil {
		return nil
	}
	var out []Line
	for _, f := range a.NewFeedback() {
		out = append(out, Line{Text: f.Text, Kind: feedbackKind(f.Kind)})
	}
	return out
}

func feedbackKind(k area.FeedbackKind) LineKind {
	switch k {
	case area.FeedbackDamage:
		return LineDamage
	case area.FeedbackHeal:
		return LineHeal
	case area.FeedbackMiss:
		return LineMiss
	}
	return LineText
}

// actor is the party member commands act for: the combat turn holder if
// it is in the party, otherwise the first selected member.
func (s *Session) actor() *entity.EntityState {
	eng := s.Engine
	if cur := eng.Current(); cur != nil && eng.IsPartyMember(cur) {
		return cur
	}
	if sel := eng.Selected(); len(sel) > 0 {
		return sel[0]
	}
	return nil
}

func slotArg(args []string) string {
	if len(args) == 0 {
		return DefaultSlot
	}
	return args[0]
}

func intArgs(args []string, n int) ([]int, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (s *Session) cmdSave(ctx context.Context, slot string) Line {
	if s.Store == nil {
		return failure("Save failed: no save database")
	}
	ss, err := s.Engine.Save()
	if err != nil {
		return failure("Save failed: %v", err)
	}
	if err := s.Store.Put(ctx, slot, ss); err != nil {
		return failure("Save failed: %v", err)
	}
	return system("Game saved to %s.", slot)
}

func (s *Session) cmdLoad(ctx context.Context, slot string) Line {
	if s.Store == nil {
		return failure("Load failed: no save database")
	}
	ss, err := s.Store.Get(ctx, slot)
	if err != nil {
		return failure("Load failed: %v", err)
	}
	if err := s.Engine.Load(ss); err != nil {
		return failure("Load failed: %v", err)
	}
	return system("Game loaded from %s (%s).", slot, ss.CurrentArea)
}

func (s *Session) cmdSlots(ctx context.Context) []Line {
	if s.Store == nil {
		return []Line{failure("No save database")}
	}
	slots, err := s.Store.List(ctx)
	if err != nil {
		return []Line{failure("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []Line{system("No saved games.")}
	}
	var out []Line
	for _, sl := range slots {
		out = append(out, system("%s: %s, %s (%s)", sl.Name, sl.Game, sl.Area, sl.SavedAt.Format("2006-01-02 15:04")))
	}
	return out
}

func (s *Session) cmdDelete(ctx context.Context, args []string) Line {
	if s.Store == nil {
		return failure("No save database")
	}
	if len(args) == 0 {
		return failure("Usage: /delete <slot>")
	}
	if err := s.Store.Delete(ctx, args[0]); err != nil {
		return failure("Delete failed: %v", err)
	}
	return system("Deleted %s.", args[0])
}

func (s *Session) cmdMove(args []string) Line {
	xy, ok := intArgs(args, 2)
	if !ok {
		return failure("Usage: /move <x> <y>")
	}
	mover := s.actor()
	if mover == nil || !s.Engine.MoveTo(mover, xy[0], xy[1]) {
		return failure("You can't move there.")
	}
	return system("%s moves toward (%d,%d).", mover.Name(), xy[0], xy[1])
}

func (s *Session) cmdAttack(args []string) Line {
	if len(args) == 0 {
		return failure("Usage: /attack <target>")
	}
	attacker := s.actor()
	if attacker == nil {
		return failure("You can't attack that.")
	}
	target, err := resolve.Target(s.Engine.Area(), attacker, strings.Join(args, " "))
	if err != nil {
		return failure("%s", capitalize(err.Error()))
	}
	if !s.Engine.Attack(attacker, target) {
		return failure("You can't attack that.")
	}
	return system("%s attacks %s.", attacker.Name(), target.Name())
}

func (s *Session) cmdAbility(args []string) Line {
	if len(args) == 0 {
		return failure("Usage: /ability <id>")
	}
	parent := s.actor()
	if parent == nil || !s.Engine.ExecuteAbilityOnActivate(parent, args[0]) {
		return failure("You can't use %s now.", args[0])
	}
	return system("%s uses %s.", parent.Name(), args[0])
}

func (s *Session) cmdEnd() Line {
	cur := s.Engine.Current()
	if cur == nil || !s.Engine.IsPartyMember(cur) || !s.Engine.EndTurn(cur) {
		return failure("It is not your turn.")
	}
	return system("%s ends the turn.", cur.Name())
}

func (s *Session) cmdWait(args []string) Line {
	millis := s.Engine.Turns.RoundMillis
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return failure("Usage: /wait [millis]")
		}
		millis = v
	}
	if s.Engine.InCombat() {
		return failure("You can't wait during combat.")
	}
	for left := millis; left > 0; left -= s.FrameMillis {
		s.Engine.Update(min(left, s.FrameMillis))
	}
	return system("Time passes.")
}

func (s *Session) cmdGo(args []string) Line {
	if len(args) < 3 {
		return failure("Usage: /go <area> <x> <y>")
	}
	xy, ok := intArgs(args[1:], 2)
	if !ok {
		return failure("Usage: /go <area> <x> <y>")
	}
	if err := s.Engine.Transition(args[0], xy[0], xy[1]); err != nil {
		if errors.Is(err, engine.ErrNoPlacement) {
			return failure("There is no room for the party there.")
		}
		return failure("Transition failed: %v", err)
	}
	return system("Entered %s.", s.Engine.Area().ID())
}

func (s *Session) cmdSpawn(args []string) Line {
	if len(args) < 3 {
		return failure("Usage: /spawn <actor> <x> <y>")
	}
	xy, ok := intArgs(args[1:], 2)
	if !ok {
		return failure("Usage: /spawn <actor> <x> <y>")
	}
	ent, err := s.Engine.Spawn(args[0], xy[0], xy[1])
	if err != nil {
		return failure("Spawn failed: %v", err)
	}
	return system("%s appears (#%d).", ent.Name(), ent.Index)
}

func (s *Session) statusLines() []Line {
	eng := s.Engine
	a := eng.Area()
	if a == nil {
		return []Line{failure("No game in progress.")}
	}
	out := []Line{system("Area: %s", a.ID())}
	if eng.InCombat() {
		cur := "none"
		if c := eng.Current(); c != nil {
			cur = c.Name()
		}
		out = append(out, system("Combat: round %d, turn of %s", a.Timer().Round(), cur))
	} else {
		out = append(out, system("Exploring"))
	}
	ents := a.Entities()
	sort.Slice(ents, func(i, j int) bool { return ents[i].Index < ents[j].Index })
	for _, ent := range ents {
		tag := ""
		if ent.Party {
			tag = " [party]"
		}
		out = append(out, system("#%d %s%s at (%d,%d) HP %d/%d AP %d",
			ent.Index, ent.Name(), tag, ent.Location.X, ent.Location.Y,
			ent.Actor.HP, ent.Actor.Stats.MaxHP, ent.Actor.AP))
	}
	if n := eng.Anims.Len(); n > 0 {
		out = append(out, system("Animations: %d", n))
	}
	return out
}

func (s *Session) mapLines() []Line {
	rows := s.MapRows()
	if rows == nil {
		return []Line{failure("No game in progress.")}
	}
	out := make([]Line, len(rows))
	for y, row := range rows {
		out[y] = Line{Text: row}
	}
	return out
}

// MapRows draws the current area, entities by Glyph over the terrain. It
// returns nil when no game is in progress.
func (s *Session) MapRows() []string {
	a := s.Engine.Area()
	if a == nil {
		return nil
	}
	grid := make([][]rune, a.Height())
	for y := range grid {
		grid[y] = make([]rune, a.Width())
		for x := range grid[y] {
			grid[y][x] = terrainGlyph(a.IsTerrainPassable(x, y), a.IsTransparent(x, y))
		}
	}
	for _, ent := range a.Entities() {
		g := Glyph(ent)
		for _, p := range ent.Points(ent.Location.X, ent.Location.Y) {
			if a.InBounds(p.X, p.Y) {
				grid[p.Y][p.X] = g
			}
		}
	}
	rows := make([]string, len(grid))
	for y, row := range grid {
		rows[y] = string(row)
	}
	return rows
}

func terrainGlyph(passable, transparent bool) rune {
	switch {
	case passable && transparent:
		return '.'
	case passable:
		return '%'
	case transparent:
		return '~'
	}
	return '#'
}

// Glyph is the map character for ent: its definition's glyph, '@' for
// the party, else the first letter of its name.
func Glyph(ent *entity.EntityState) rune {
	if g := ent.Actor.Def.Glyph; g != "" {
		return []rune(g)[0]
	}
	if ent.Party {
		return '@'
	}
	if name := ent.Name(); name != "" {
		return []rune(name)[0]
	}
	return '?'
}

func helpLines() []Line {
	help := []string{
		"Commands:",
		"  /status             Show the area, combat state and entities",
		"  /map                Draw the current area",
		"  /move <x> <y>       Walk the active party member to a tile",
		"  /attack <target>    Attack by name or index",
		"  /ability <id>       Activate an ability",
		"  /end                End the current turn",
		"  /wait [millis]      Let time pass outside combat",
		"  /go <area> <x> <y>  Move the party to another area",
		"  /spawn <actor> <x> <y>",
		"  /save [slot]        Save the game (default: quicksave)",
		"  /load [slot]        Load a saved game",
		"  /slots              List saved games",
		"  /delete <slot>      Delete a saved game",
		"  /help               Show this help",
		"  /quit               Exit",
		"",
		"Short forms: /a attack, /mv move, /use ability, /e end, /z wait, /q quit",
		"Any other input runs as console script, e.g. game.player():name()",
	}
	out := make([]Line, len(help))
	for i, h := range help {
		out[i] = Line{Text: h}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
