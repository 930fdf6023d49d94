// Package engine provides the Engine orchestrator that ties the loaded
// areas, the party, the turn manager and the animation queue into one
// per-frame update tick.
package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/anim"
	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/combat"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/events"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/engine/turn"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

var (
	// ErrUnknownArea is returned for an area id with no definition.
	ErrUnknownArea = errors.New("unknown area")
	// ErrInvalidLocation is returned for coordinates outside an area or a
	// starting location the player cannot stand on.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrNoPlacement is returned when a transition finds no free tile for a
	// party member. The party is left where it was.
	ErrNoPlacement = errors.New("no free tile near destination")
)

// Timing holds animation speeds in milliseconds.
type Timing struct {
	MoveMillisPerSquare       int
	MeleeMillis               int
	ProjectileMillisPerSquare int
}

// DefaultTiming is used unless WithTiming overrides it.
var DefaultTiming = Timing{
	MoveMillisPerSquare:       150,
	MeleeMillis:               400,
	ProjectileMillisPerSquare: 50,
}

// ScriptRunner executes module scripts. Implementations catch script
// errors and return them; the engine logs them and abandons the action.
type ScriptRunner interface {
	RunTrigger(t types.Trigger, parent, target *entity.EntityState) error
	RunAbility(parent *entity.EntityState, ability *types.AbilityDef) error
	RunAI(parent *entity.EntityState) error
	RunConsole(source string) (string, error)
	RestoreCallback(data script.CallbackData) (script.Callback, error)
	Close()
}

// Engine holds the module definitions and all mutable game state.
type Engine struct {
	Defs     *state.Defs
	Dice     *Dice
	Turns    *turn.Manager
	Anims    *anim.Queue
	Resolver *combat.Resolver
	Timing   Timing
	Scripts  ScriptRunner

	areas    map[string]*area.State
	current  *area.State
	party    []*entity.EntityState
	selected []*entity.EntityState

	partyListeners events.ListenerList[*Engine]
	uiCallbacks    []UICallback

	clearAnims bool
	modal      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed seeds the engine's dice.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.Dice = NewDice(seed) }
}

// WithTiming sets the animation speeds.
func WithTiming(t Timing) Option {
	return func(e *Engine) { e.Timing = t }
}

// WithRoundMillis sets how long a round lasts outside combat.
func WithRoundMillis(ms int) Option {
	return func(e *Engine) { e.Turns.RoundMillis = ms }
}

// WithScripts installs a script runner.
func WithScripts(r ScriptRunner) Option {
	return func(e *Engine) { e.Scripts = r }
}

// New creates an engine for defs. Call Init or Load before Update.
func New(defs *state.Defs, opts ...Option) *Engine {
	e := &Engine{
		Defs:    defs,
		Dice:    NewDice(0),
		Turns:   turn.NewManager(),
		Anims:   anim.NewQueue(),
		Timing:  DefaultTiming,
		Scripts: nopRunner{},
		areas:   map[string]*area.State{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Resolver = combat.NewResolver(e.Dice)
	return e
}

// SetScripts installs a script runner after construction, for runners that
// need the engine to build themselves.
func (e *Engine) SetScripts(r ScriptRunner) {
	if r == nil {
		r = nopRunner{}
	}
	e.Scripts = r
}

// Init starts a new campaign: it loads the starting area, places the player
// character, then fires OnCampaignStart and OnAreaLoad triggers.
func (e *Engine) Init() error {
	g := e.Defs.Game
	def, ok := e.Defs.Areas[g.StartingArea]
	if !ok {
		return fmt.Errorf("starting area %q: %w", g.StartingArea, ErrUnknownArea)
	}
	a := e.loadArea(def)

	pc, err := area.BuildEntity(e.Defs, g.Player)
	if err != nil {
		return fmt.Errorf("player character: %w", err)
	}
	pc.Party = true
	loc := g.StartingLocation
	if err := a.AddEntity(pc, loc.X, loc.Y); err != nil {
		return fmt.Errorf("starting location (%d,%d): %v: %w", loc.X, loc.Y, err, ErrInvalidLocation)
	}

	e.current = a
	e.party = []*entity.EntityState{pc}
	e.selected = []*entity.EntityState{pc}
	a.UpdateViewVisibility()

	logger.Log.WithFields(logrus.Fields{
		"campaign": g.Title,
		"area":     a.ID(),
		"player":   pc.Name(),
	}).Info("Campaign started")

	for _, t := range e.Defs.CampaignTriggers(types.OnCampaignStart) {
		e.ExecuteTriggerScript(t, pc, nil)
	}
	e.fireAreaLoad(a)
	e.Turns.CheckAIActivation(nil, a)
	e.partyListeners.Notify(e)
	return nil
}

// Close releases the script runner.
func (e *Engine) Close() {
	if e.Scripts != nil {
		e.Scripts.Close()
	}
}

// loadArea returns the loaded area for def, creating and populating it on
// first use.
func (e *Engine) loadArea(def *types.AreaDef) *area.State {
	if a, ok := e.areas[def.ID]; ok {
		return a
	}
	a := area.New(def)
	a.Populate(e.Defs)
	e.areas[def.ID] = a
	logger.Log.WithField("area", def.ID).Debug("Area loaded")
	return a
}

func (e *Engine) fireAreaLoad(a *area.State) {
	if a.OnLoadFired {
		return
	}
	a.OnLoadFired = true
	var pc *entity.EntityState
	if len(e.party) > 0 {
		pc = e.party[0]
	}
	for _, t := range state.AreaTriggers(a.Def, types.OnAreaLoad) {
		e.ExecuteTriggerScript(t, pc, nil)
	}
}

// Update advances the game by millis. The order is fixed: animations
// (queued ones promoted first), the turn manager and its round-elapsed
// callbacks, pruning of the dead (starting the turn of whoever inherits it),
// a requested blocking-animation clear, then AI for the current non-party
// entity.
func (e *Engine) Update(millis int) {
	a := e.current
	if a == nil {
		return
	}
	a.Update(millis)
	e.Anims.Update(millis)

	a = e.current
	cbs := e.Turns.Update(a, millis, func(ent *entity.EntityState) bool {
		return e.Anims.HasBlocking(ent.Handle())
	})
	for _, cb := range cbs {
		cb.OnRoundElapsed()
	}

	e.pruneDead()
	for _, cb := range e.Turns.SettleRemovals(e.current) {
		cb.OnRoundElapsed()
	}

	if e.clearAnims {
		e.Anims.ClearBlocking()
		e.clearAnims = false
	}

	e.runAI()
}

// pruneDead drops dead members from the party and removes other dead
// entities from the current area along with their effects and animations.
func (e *Engine) pruneDead() {
	for _, m := range e.Party() {
		if m.IsDead() {
			logger.Log.WithField("entity", m.Name()).Info("Party member died")
			e.RemovePartyMember(m)
		}
	}
	a := e.current
	for _, ent := range a.Entities() {
		if !ent.IsDead() || ent.Party {
			continue
		}
		e.Anims.RemoveAll(ent.Handle())
		e.Turns.RemoveEffectsOn(ent)
		a.RemoveEntity(ent.Handle())
		logger.Log.WithField("entity", ent.Name()).Debug("Removed dead entity")
	}
}

// RequestClearAnimations asks the next Update to force-complete every
// blocking animation.
func (e *Engine) RequestClearAnimations() {
	e.clearAnims = true
}

// Area returns the current area.
func (e *Engine) Area() *area.State {
	return e.current
}

// LoadedArea returns a loaded area by id.
func (e *Engine) LoadedArea(id string) (*area.State, bool) {
	a, ok := e.areas[id]
	return a, ok
}

// Entity resolves a handle in the current area.
func (e *Engine) Entity(h entity.Handle) *entity.EntityState {
	if e.current == nil {
		return nil
	}
	return e.current.Entity(h)
}

// EntityByIndex resolves a script index in the current area, warning on
// an invalid index.
func (e *Engine) EntityByIndex(index int) *entity.EntityState {
	if e.current == nil {
		return nil
	}
	return e.current.CheckGetEntity(index)
}

// Spawn places a new non-party actor in the current area. The newcomer may
// start combat if it can see a hostile.
func (e *Engine) Spawn(actorID string, x, y int) (*entity.EntityState, error) {
	if e.current == nil {
		return nil, ErrNoGame
	}
	ent, err := e.current.AddActor(e.Defs, actorID, x, y, false)
	if err != nil {
		return nil, fmt.Errorf("spawning %s: %w", actorID, err)
	}
	e.Turns.CheckAIActivation(ent, e.current)
	return ent, nil
}

// InCombat reports whether the current area's turn timer is running.
func (e *Engine) InCombat() bool {
	return e.current != nil && e.current.Timer().IsActive()
}

// Current returns the entity holding the combat turn, if any.
func (e *Engine) Current() *entity.EntityState {
	if e.current == nil {
		return nil
	}
	return e.Turns.Current(e.current)
}

// IsModalLocked reports whether a modal dialog holds player input.
func (e *Engine) IsModalLocked() bool {
	return e.modal
}

// SetModalLocked sets the modal input lock.
func (e *Engine) SetModalLocked(locked bool) {
	e.modal = locked
}

// EndTurn ends the current entity's turn if it is ent's.
func (e *Engine) EndTurn(ent *entity.EntityState) bool {
	if !e.InCombat() || !e.Turns.IsCurrent(e.current, ent) {
		return false
	}
	ent.Actor.EndTurn = true
	return true
}

// nopRunner is the runner used when no scripting runtime is installed.
type nopRunner struct{}

func (nopRunner) RunTrigger(t types.Trigger, _, _ *entity.EntityState) error {
	logger.Log.WithField("script", t.Script).Debug("No script runner, trigger skipped")
	return nil
}

func (nopRunner) RunAbility(_ *entity.EntityState, ab *types.AbilityDef) error {
	logger.Log.WithField("ability", ab.ID).Debug("No script runner, ability script skipped")
	return nil
}

func (nopRunner) RunAI(*entity.EntityState) error { return nil }

func (nopRunner) RunConsole(string) (string, error) {
	return "", errors.New("no script runner installed")
}

func (nopRunner) RestoreCallback(data script.CallbackData) (script.Callback, error) {
	return nil, fmt.Errorf("restore callback from %q: no script runner installed", data.Script)
}

func (nopRunner) Close() {}
