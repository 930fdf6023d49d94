package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
)

// Party returns the party members in order.
func (e *Engine) Party() []*entity.EntityState {
	out := make([]*entity.EntityState, len(e.party))
	copy(out, e.party)
	return out
}

// Selected returns the selected party members.
func (e *Engine) Selected() []*entity.EntityState {
	out := make([]*entity.EntityState, len(e.selected))
	copy(out, e.selected)
	return out
}

// IsPartyMember reports whether ent is in the party.
func (e *Engine) IsPartyMember(ent *entity.EntityState) bool {
	return indexOf(e.party, ent) >= 0
}

// AddPartyListener registers fn to run after every party or selection
// change. Registering an existing id replaces its listener.
func (e *Engine) AddPartyListener(id string, fn func(*Engine)) {
	e.partyListeners.Add(id, fn)
}

// RemovePartyListener drops the listener registered under id.
func (e *Engine) RemovePartyListener(id string) {
	e.partyListeners.Remove(id)
}

// AddPartyMember adds an entity in the current area to the party. The first
// member added to an empty selection becomes selected.
func (e *Engine) AddPartyMember(ent *entity.EntityState) bool {
	if ent == nil || e.current == nil || e.current.Entity(ent.Handle()) != ent {
		logger.Log.Warn("Attempted to add an entity outside the current area to the party")
		return false
	}
	if e.IsPartyMember(ent) {
		return false
	}
	ent.Party = true
	e.party = append(e.party, ent)
	if len(e.selected) == 0 {
		e.selected = []*entity.EntityState{ent}
	}
	e.Turns.EndCombatIfClear(e.current)
	e.current.UpdateViewVisibility()

	logger.Log.WithField("entity", ent.Name()).Info("Party member added")
	e.partyListeners.Notify(e)
	return true
}

// RemovePartyMember removes ent from the party. If the selection becomes
// empty it falls back to the first remaining member, or none. Listeners are
// notified once.
func (e *Engine) RemovePartyMember(ent *entity.EntityState) bool {
	i := indexOf(e.party, ent)
	if i < 0 {
		return false
	}
	e.party = append(e.party[:i:i], e.party[i+1:]...)
	ent.Party = false

	if j := indexOf(e.selected, ent); j >= 0 {
		e.selected = append(e.selected[:j:j], e.selected[j+1:]...)
	}
	if len(e.selected) == 0 && len(e.party) > 0 {
		e.selected = []*entity.EntityState{e.party[0]}
	}
	if e.current != nil {
		e.current.UpdateViewVisibility()
	}

	logger.Log.WithFields(logrus.Fields{
		"entity":    ent.Name(),
		"remaining": len(e.party),
	}).Info("Party member removed")
	e.partyListeners.Notify(e)
	return true
}

// SelectPartyMembers replaces the selection. Entities outside the party are
// ignored.
func (e *Engine) SelectPartyMembers(members []*entity.EntityState) {
	var sel []*entity.EntityState
	for _, m := range members {
		if e.IsPartyMember(m) && indexOf(sel, m) < 0 {
			sel = append(sel, m)
		}
	}
	e.selected = sel
	e.partyListeners.Notify(e)
}

func indexOf(list []*entity.EntityState, ent *entity.EntityState) int {
	for i, m := range list {
		if m == ent {
			return i
		}
	}
	return -1
}
