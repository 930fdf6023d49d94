package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// UICallback is a script function the frame driver runs when it next
// regains control, such as a dialog or loot window opening.
type UICallback struct {
	Kind    string
	Trigger types.Trigger
	Parent  entity.Handle
	Target  entity.Handle
}

// AddUICallbacksOfKind queues one UI callback per trigger.
func (e *Engine) AddUICallbacksOfKind(kind string, triggers []types.Trigger, parent, target *entity.EntityState) {
	for _, t := range triggers {
		cb := UICallback{Kind: kind, Trigger: t, Parent: entity.NoHandle, Target: entity.NoHandle}
		if parent != nil {
			cb.Parent = parent.Handle()
		}
		if target != nil {
			cb.Target = target.Handle()
		}
		e.uiCallbacks = append(e.uiCallbacks, cb)
	}
}

// PopUICallback removes and returns the oldest pending UI callback.
func (e *Engine) PopUICallback() (UICallback, bool) {
	if len(e.uiCallbacks) == 0 {
		return UICallback{}, false
	}
	cb := e.uiCallbacks[0]
	e.uiCallbacks = e.uiCallbacks[1:]
	return cb, true
}

// PendingUICallbacks returns the number of queued UI callbacks.
func (e *Engine) PendingUICallbacks() int {
	return len(e.uiCallbacks)
}

// RunUICallbacks drains the queue, running each callback's script. Handles
// that no longer resolve are passed as nil.
func (e *Engine) RunUICallbacks() int {
	n := 0
	for {
		cb, ok := e.PopUICallback()
		if !ok {
			return n
		}
		e.ExecuteTriggerScript(cb.Trigger, e.Entity(cb.Parent), e.Entity(cb.Target))
		n++
	}
}

// ExecuteTriggerScript runs a trigger's script function. Errors are logged
// and the action is abandoned.
func (e *Engine) ExecuteTriggerScript(t types.Trigger, parent, target *entity.EntityState) bool {
	if err := e.Scripts.RunTrigger(t, parent, target); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"script": t.Script,
			"func":   t.Func,
		}).WithError(err).Warn("Trigger script failed")
		return false
	}
	return true
}

// ExecuteConsoleScript runs a line of script source typed at the console.
func (e *Engine) ExecuteConsoleScript(source string) (string, error) {
	out, err := e.Scripts.RunConsole(source)
	if err != nil {
		logger.Log.WithError(err).Warn("Console script failed")
	}
	return out, err
}

// ExecuteAbilityOnActivate activates one of parent's abilities: a mode that
// is on is switched off, otherwise the ability's cost and cooldown are paid
// and its script runs.
func (e *Engine) ExecuteAbilityOnActivate(parent *entity.EntityState, abilityID string) bool {
	if parent == nil || e.Entity(parent.Handle()) != parent {
		logger.Log.WithField("ability", abilityID).Warn("Ability activated by an invalid entity")
		return false
	}
	ab, ok := parent.Actor.Abilities[abilityID]
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"entity":  parent.Name(),
			"ability": abilityID,
		}).Warn("Entity does not have ability")
		return false
	}
	if ab.Def.Mode && ab.Active {
		e.Turns.DeactivateAbility(parent, abilityID)
		return true
	}
	if e.InCombat() && !e.Turns.IsCurrent(e.current, parent) {
		return false
	}
	if !parent.Actor.ActivateAbility(abilityID, e.InCombat()) {
		return false
	}
	if err := e.Scripts.RunAbility(parent, ab.Def); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"entity":  parent.Name(),
			"ability": abilityID,
		}).WithError(err).Warn("Ability script failed")
		return false
	}
	return true
}
