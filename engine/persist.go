package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/anim"
	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/combat"
	"github.com/nathoo/turncore/engine/effects"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/save"
	"github.com/nathoo/turncore/engine/script"
	"github.com/nathoo/turncore/engine/turn"
	"github.com/nathoo/turncore/logger"
)

// ErrNoGame is returned when saving before Init or Load.
var ErrNoGame = errors.New("no game in progress")

// Save captures every loaded area, the party, live effects and the dice
// position. Callbacks that cannot be persisted are dropped with a warning.
func (e *Engine) Save() (*save.SaveState, error) {
	if e.current == nil {
		return nil, ErrNoGame
	}
	ss := &save.SaveState{
		Version:      save.Version,
		Game:         e.Defs.Game.Title,
		CurrentArea:  e.current.ID(),
		Party:        []int{},
		Selected:     []int{},
		DiceSeed:     e.Dice.Seed(),
		DicePosition: e.Dice.Position(),
	}

	ids := make([]string, 0, len(e.areas))
	for id := range e.areas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ss.Areas = append(ss.Areas, e.areas[id].Save())
	}

	for _, m := range e.party {
		ss.Party = append(ss.Party, m.Index)
	}
	for _, m := range e.selected {
		ss.Selected = append(ss.Selected, m.Index)
	}

	for _, eff := range e.Turns.All() {
		owner := e.Turns.Owner(eff.ID)
		if owner == nil || owner.Index < 0 {
			continue
		}
		ed := save.EffectData{
			ID:             eff.ID,
			Area:           owner.Location.AreaID,
			Owner:          owner.Index,
			Name:           eff.Name,
			Tag:            eff.Tag,
			Total:          eff.Total(),
			Remaining:      eff.Remaining(),
			Bonuses:        eff.Bonuses.All(),
			DeactivateWith: eff.DeactivateWith,
		}
		for _, cb := range eff.Callbacks() {
			p, ok := cb.(script.Persistent)
			if !ok {
				logger.Log.WithField("effect", eff.Name).Warn("Effect callback cannot be saved, dropping it")
				continue
			}
			ed.Callbacks = append(ed.Callbacks, p.Data())
		}
		ss.Effects = append(ss.Effects, ed)
	}
	return ss, nil
}

// Load replaces the game with a saved one. Areas are rebuilt first and
// every saved entity index is remapped through the table built while doing
// so; a reference to an index that was not rebuilt fails the load with
// save.ErrInvalidIndex. On error the running game is left untouched.
func (e *Engine) Load(ss *save.SaveState) error {
	areas := map[string]*area.State{}
	table := save.IndexTable{}
	for _, ad := range ss.Areas {
		def, ok := e.Defs.Areas[ad.ID]
		if !ok {
			return fmt.Errorf("load: area %q: %w", ad.ID, ErrUnknownArea)
		}
		a := area.New(def)
		if err := a.Restore(ad, e.Defs, table); err != nil {
			return fmt.Errorf("load: %w", err)
		}
		areas[ad.ID] = a
	}

	cur, ok := areas[ss.CurrentArea]
	if !ok {
		return fmt.Errorf("load: current area %q: %w", ss.CurrentArea, ErrUnknownArea)
	}
	party, err := remapEntities(cur, table, ss.Party)
	if err != nil {
		return fmt.Errorf("load party: %w", err)
	}
	selected, err := remapEntities(cur, table, ss.Selected)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}

	turns := turn.NewManager()
	turns.RoundMillis = e.Turns.RoundMillis
	for _, ed := range ss.Effects {
		a, ok := areas[ed.Area]
		if !ok {
			return fmt.Errorf("load effect %q: area %q: %w", ed.Name, ed.Area, ErrUnknownArea)
		}
		idx, err := table.Remap(ed.Area, ed.Owner)
		if err != nil {
			return fmt.Errorf("load effect %q: %w", ed.Name, err)
		}
		eff, err := e.restoreEffect(ed, table)
		if err != nil {
			return err
		}
		turns.RestoreEffect(eff, a.CheckGetEntity(idx))
	}

	e.areas = areas
	e.current = cur
	e.party = party
	e.selected = selected
	if len(e.selected) == 0 && len(e.party) > 0 {
		e.selected = []*entity.EntityState{e.party[0]}
	}
	e.Turns = turns
	e.Anims = anim.NewQueue()
	e.RestoreDice(ss.DiceSeed, ss.DicePosition)
	e.uiCallbacks = nil
	e.clearAnims = false
	e.modal = false
	cur.UpdateViewVisibility()

	logger.Log.WithFields(logrus.Fields{
		"area":    cur.ID(),
		"areas":   len(areas),
		"effects": len(ss.Effects),
	}).Info("Game loaded")
	e.partyListeners.Notify(e)
	return nil
}

// RestoreDice re-creates the dice from seed at the saved position.
func (e *Engine) RestoreDice(seed, position int64) {
	e.Dice = RestoreDice(seed, position)
	e.Resolver = combat.NewResolver(e.Dice)
}

func (e *Engine) restoreEffect(ed save.EffectData, table save.IndexTable) (*effects.Effect, error) {
	var bonuses rules.BonusList
	for _, b := range ed.Bonuses {
		bonuses.Add(b)
	}
	eff := effects.New(ed.Name, ed.Tag, ed.Total, bonuses, ed.DeactivateWith)
	eff.ID = ed.ID
	eff.SetRemaining(ed.Remaining)

	for _, cd := range ed.Callbacks {
		if cd.Parent != script.NoIndex {
			idx, err := table.Remap(ed.Area, cd.Parent)
			if err != nil {
				return nil, fmt.Errorf("load effect %q callback: %w", ed.Name, err)
			}
			cd.Parent = idx
		}
		cb, err := e.Scripts.RestoreCallback(cd)
		if err != nil {
			logger.Log.WithField("effect", ed.Name).WithError(err).Warn("Could not restore effect callback")
			continue
		}
		eff.AddCallback(cb)
	}
	return eff, nil
}

func remapEntities(a *area.State, table save.IndexTable, indices []int) ([]*entity.EntityState, error) {
	remapped, err := table.RemapAll(a.ID(), indices)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.EntityState, 0, len(remapped))
	for _, idx := range remapped {
		out = append(out, a.CheckGetEntity(idx))
	}
	return out, nil
}
