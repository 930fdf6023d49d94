package turn

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/effects"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/logger"
)

// RoundMillis is the game time one round lasts outside combat.
const RoundMillis = 5000

// Roster is the area the manager is running turns for.
type Roster interface {
	Entity(h entity.Handle) *entity.EntityState
	Entities() []*entity.EntityState
	Timer() *Timer
	HasVisibility(observer, target *entity.EntityState) bool
}

// Manager owns every live effect and advances rounds.
type Manager struct {
	RoundMillis int

	effects map[int]*effects.Effect
	owners  map[int]*entity.EntityState
	ids     []int
	nextID  int
	elapsed int
}

// NewManager creates a manager with no effects.
func NewManager() *Manager {
	return &Manager{
		RoundMillis: RoundMillis,
		effects:     map[int]*effects.Effect{},
		owners:      map[int]*entity.EntityState{},
	}
}

// Current returns the entity whose combat turn it is, or nil outside combat.
// A stale current handle logs a warning and returns nil.
func (m *Manager) Current(r Roster) *entity.EntityState {
	h, ok := r.Timer().Current()
	if !ok {
		return nil
	}
	e := r.Entity(h)
	if e == nil {
		logger.Log.WithField("handle", h.String()).Warn("Current turn entity is no longer valid")
	}
	return e
}

// IsCurrent reports whether e holds the current turn.
func (m *Manager) IsCurrent(r Roster, e *entity.EntityState) bool {
	h, ok := r.Timer().Current()
	return ok && h == e.Handle()
}

// AddEffect attaches eff to e and takes ownership of it. It returns the new
// effect id, or -1 if e is not placed in an area.
func (m *Manager) AddEffect(eff *effects.Effect, e *entity.EntityState) int {
	if e == nil || e.Index < 0 {
		logger.Log.WithField("effect", eff.Name).Warn("Attempted to add effect to an invalid entity")
		return -1
	}
	id := m.nextID
	m.nextID++
	eff.ID = id
	eff.Owner = e.Handle()
	m.effects[id] = eff
	m.owners[id] = e
	m.ids = append(m.ids, id)
	e.Actor.Effects = append(e.Actor.Effects, id)
	m.Recompute(e)

	logger.Log.WithFields(logrus.Fields{
		"effect": eff.Name,
		"id":     id,
		"entity": e.Name(),
	}).Debug("Effect applied")

	for _, cb := range eff.Callbacks() {
		cb.OnApplied()
	}
	return id
}

// Effect returns a live effect by id.
func (m *Manager) Effect(id int) (*effects.Effect, bool) {
	eff, ok := m.effects[id]
	return eff, ok
}

// Owner returns the entity an effect is attached to.
func (m *Manager) Owner(id int) *entity.EntityState {
	return m.owners[id]
}

// All returns every live effect in application order.
func (m *Manager) All() []*effects.Effect {
	out := make([]*effects.Effect, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.effects[id])
	}
	return out
}

// RemoveEffect removes an effect. Its removal callbacks fire before the
// owner's stats drop its bonuses. Unknown ids are ignored.
func (m *Manager) RemoveEffect(id int) {
	eff, ok := m.effects[id]
	if !ok {
		return
	}
	eff.Remove()

	owner := m.owners[id]
	delete(m.effects, id)
	delete(m.owners, id)
	m.ids = removeID(m.ids, id)
	if owner != nil {
		owner.Actor.Effects = removeID(owner.Actor.Effects, id)
		m.Recompute(owner)
	}

	logger.Log.WithFields(logrus.Fields{
		"effect": eff.Name,
		"id":     id,
	}).Debug("Effect removed")
}

// RemoveEffectsOn removes every effect attached to e.
func (m *Manager) RemoveEffectsOn(e *entity.EntityState) {
	for _, id := range append([]int(nil), e.Actor.Effects...) {
		m.RemoveEffect(id)
	}
}

// EffectsOn returns the effects attached to e in application order.
func (m *Manager) EffectsOn(e *entity.EntityState) []*effects.Effect {
	var out []*effects.Effect
	for _, id := range e.Actor.Effects {
		if eff, ok := m.effects[id]; ok {
			out = append(out, eff)
		}
	}
	return out
}

// Callbacks returns the callbacks of every effect on e.
func (m *Manager) Callbacks(e *entity.EntityState) []script.Callback {
	var out []script.Callback
	for _, eff := range m.EffectsOn(e) {
		out = append(out, eff.Callbacks()...)
	}
	return out
}

// DeactivateAbility switches off a mode ability and removes the effects
// linked to it.
func (m *Manager) DeactivateAbility(e *entity.EntityState, abilityID string) {
	if ab, ok := e.Actor.Abilities[abilityID]; ok {
		ab.Active = false
	} else {
		logger.Log.WithField("ability", abilityID).Warn("Deactivating an ability the entity does not have")
	}
	for _, eff := range m.EffectsOn(e) {
		if eff.DeactivateWith == abilityID {
			m.RemoveEffect(eff.ID)
		}
	}
}

// Recompute rebuilds e's stats from its applied effects.
func (m *Manager) Recompute(e *entity.EntityState) {
	var lists []rules.BonusList
	for _, eff := range m.EffectsOn(e) {
		lists = append(lists, eff.Bonuses)
	}
	e.Actor.Recompute(lists)
}

// Update advances turn state by millis of game time. In combat the rotation
// moves on once the current entity has ended its turn and blocked reports no
// blocking animation for it. Outside combat a round passes every
// RoundMillis. It returns the round-elapsed callbacks for the caller to fire.
func (m *Manager) Update(r Roster, millis int, blocked func(*entity.EntityState) bool) []script.Callback {
	rounds := 0
	if r.Timer().IsActive() {
		m.elapsed = 0
		rounds = m.advance(r, blocked)
	} else if m.RoundMillis > 0 {
		m.elapsed += millis
		for m.elapsed >= m.RoundMillis {
			m.elapsed -= m.RoundMillis
			rounds++
		}
	}

	var cbs []script.Callback
	for i := 0; i < rounds; i++ {
		cbs = append(cbs, m.elapseRound(r)...)
	}
	return cbs
}

func (m *Manager) advance(r Roster, blocked func(*entity.EntityState) bool) int {
	t := r.Timer()
	wraps := m.settleRemovals(r)
	for guard := len(t.order) + 1; guard > 0; guard-- {
		h, ok := t.Current()
		if !ok {
			return wraps
		}
		cur := r.Entity(h)
		if cur == nil || cur.IsDead() {
			if cur == nil {
				logger.Log.WithField("handle", h.String()).Warn("Dropping stale entity from turn order")
			}
			t.Remove(h)
			wraps += m.settleRemovals(r)
			continue
		}
		if !cur.Actor.EndTurn || blocked(cur) {
			return wraps
		}
		cur.Actor.EndTurn = false
		if t.Next() {
			wraps++
		}
		if !m.anyAware(r) {
			m.endCombat(r)
			return wraps
		}
		m.startCurrent(r)
		return wraps
	}
	return wraps
}

// SettleRemovals starts the turn of an entity that became current because
// the previous one was removed from the rotation outside Update, such as
// pruning of the dead. Rounds the removal wrapped into are elapsed and their
// callbacks returned for the caller to fire.
func (m *Manager) SettleRemovals(r Roster) []script.Callback {
	var cbs []script.Callback
	for i := m.settleRemovals(r); i > 0; i-- {
		cbs = append(cbs, m.elapseRound(r)...)
	}
	return cbs
}

func (m *Manager) settleRemovals(r Roster) int {
	start, wraps := r.Timer().TakeDue()
	if start {
		m.startCurrent(r)
	}
	return wraps
}

func (m *Manager) startCurrent(r Roster) {
	if e := m.Current(r); e != nil {
		e.Actor.StartTurn()
	}
}

// elapseRound collects the round-elapsed callbacks of live effects, then
// ticks every effect and the roster's cooldowns, removing expired effects.
func (m *Manager) elapseRound(r Roster) []script.Callback {
	var cbs []script.Callback
	for _, eff := range m.All() {
		cbs = append(cbs, eff.Callbacks()...)
	}
	for _, eff := range m.All() {
		if eff.Tick() {
			m.RemoveEffect(eff.ID)
		}
	}
	for _, e := range r.Entities() {
		e.Actor.TickCooldowns()
	}
	return cbs
}

// CheckAIActivation starts combat in r if mover and a hostile entity can see
// each other. A nil mover checks every party member. It reports whether
// combat is active afterwards; newly arrived entities join a running combat.
func (m *Manager) CheckAIActivation(mover *entity.EntityState, r Roster) bool {
	t := r.Timer()
	living := livingEntities(r)
	if t.IsActive() {
		for _, e := range living {
			if !t.Contains(e.Handle()) {
				t.Add(e.Handle())
			}
		}
		return true
	}

	var movers []*entity.EntityState
	if mover != nil {
		movers = []*entity.EntityState{mover}
	} else {
		for _, e := range living {
			if e.Party {
				movers = append(movers, e)
			}
		}
	}
	for _, a := range movers {
		for _, b := range living {
			if a.IsHostile(b) && (r.HasVisibility(a, b) || r.HasVisibility(b, a)) {
				t.Activate(living)
				m.startCurrent(r)
				logger.Log.WithFields(logrus.Fields{
					"mover":   a.Name(),
					"spotted": b.Name(),
				}).Info("Combat started")
				return true
			}
		}
	}
	return false
}

// anyAware reports whether any pair of hostile living entities can see each other.
func (m *Manager) anyAware(r Roster) bool {
	living := livingEntities(r)
	for _, a := range living {
		if !a.Party {
			continue
		}
		for _, b := range living {
			if a.IsHostile(b) && (r.HasVisibility(a, b) || r.HasVisibility(b, a)) {
				return true
			}
		}
	}
	return false
}

func (m *Manager) endCombat(r Roster) {
	r.Timer().Deactivate()
	for _, e := range r.Entities() {
		e.Actor.StartTurn()
	}
	logger.Log.Info("Combat ended")
}

// EndCombatIfClear ends combat when no hostile can see the party.
func (m *Manager) EndCombatIfClear(r Roster) {
	if r.Timer().IsActive() && !m.anyAware(r) {
		m.endCombat(r)
	}
}

// RestoreEffect re-registers a saved effect under its saved id.
func (m *Manager) RestoreEffect(eff *effects.Effect, e *entity.EntityState) {
	id := eff.ID
	eff.Owner = e.Handle()
	m.effects[id] = eff
	m.owners[id] = e
	m.ids = append(m.ids, id)
	e.Actor.Effects = append(e.Actor.Effects, id)
	if id >= m.nextID {
		m.nextID = id + 1
	}
	m.Recompute(e)
}

// Reset drops every effect without firing callbacks, for loading a save.
func (m *Manager) Reset() {
	m.effects = map[int]*effects.Effect{}
	m.owners = map[int]*entity.EntityState{}
	m.ids = nil
	m.nextID = 0
	m.elapsed = 0
}

func livingEntities(r Roster) []*entity.EntityState {
	var out []*entity.EntityState
	for _, e := range r.Entities() {
		if !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
