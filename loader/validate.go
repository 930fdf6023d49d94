package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validTriggerKinds = map[types.TriggerKind]bool{
	types.OnCampaignStart: true,
	types.OnAreaLoad:      true,
}

var validFactions = map[types.Faction]bool{
	"":                    true,
	types.FactionFriendly: true,
	types.FactionHostile:  true,
	types.FactionNeutral:  true,
}

// AI values that do not name a script.
var builtinAI = map[string]bool{"": true, "none": true}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	validateGame(defs, ve)
	for _, id := range sortedKeys(defs.Areas) {
		validateArea(defs.Areas[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Actors) {
		validateActor(defs.Actors[id], defs, ve)
	}
	for _, id := range sortedKeys(defs.Abilities) {
		ab := defs.Abilities[id]
		if ab.Active && ab.Script == "" {
			ve.warnf("active ability %q has no script", id)
		} else if ab.Script != "" {
			if _, ok := defs.Scripts[ab.Script]; !ok {
				ve.errorf("ability %q references undefined script %q", id, ab.Script)
			}
		}
	}
	for _, id := range sortedKeys(defs.Items) {
		for _, b := range defs.Items[id].Bonuses {
			if _, ok := entity.BonusFromDef(b); !ok {
				ve.errorf("item %q has unknown bonus kind %q", id, b.Kind)
			}
		}
	}
	for _, id := range sortedKeys(defs.Sizes) {
		if s := defs.Sizes[id]; s.Width < 1 || s.Height < 1 {
			ve.errorf("size %q must be at least 1x1, got %dx%d", id, s.Width, s.Height)
		}
	}

	for _, w := range ve.Warnings {
		logger.Log.WithField("warning", w).Warn("Module validation warning")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateGame(defs *state.Defs, ve *ValidationError) {
	g := defs.Game
	if g.Title == "" {
		ve.errorf("Game.title is required")
	}
	if g.Player == "" {
		ve.errorf("Game.player is required")
	} else if _, ok := defs.Actors[g.Player]; !ok {
		ve.errorf("player actor %q not found in defined actors", g.Player)
	}
	if g.StartingArea == "" {
		ve.errorf("Game.start_area is required")
	} else if area, ok := defs.Areas[g.StartingArea]; !ok {
		ve.errorf("starting area %q not found in defined areas", g.StartingArea)
	} else if !tilePassable(area, g.StartingLocation) {
		ve.errorf("starting location (%d,%d) is not a passable tile of %q",
			g.StartingLocation.X, g.StartingLocation.Y, g.StartingArea)
	}
	validateTriggers("game", g.Triggers, defs, ve)
}

func validateArea(area *types.AreaDef, defs *state.Defs, ve *ValidationError) {
	for _, p := range area.Actors {
		if _, ok := defs.Actors[p.Actor]; !ok {
			ve.errorf("area %q places undefined actor %q", area.ID, p.Actor)
		}
		if !tilePassable(area, p.Location) {
			ve.errorf("area %q places actor %q on blocked tile (%d,%d)",
				area.ID, p.Actor, p.Location.X, p.Location.Y)
		}
	}
	for _, p := range area.Props {
		if !inBounds(area, p.Location) {
			ve.errorf("area %q prop %q is outside the map", area.ID, p.ID)
		}
		validateItemRefs(fmt.Sprintf("area %q prop %q", area.ID, p.ID), p.Items, defs, ve)
	}
	for _, m := range area.Merchants {
		validateItemRefs(fmt.Sprintf("area %q merchant %q", area.ID, m.ID), m.Items, defs, ve)
		if m.BuyFrac <= 0 || m.SellFrac <= 0 {
			ve.warnf("area %q merchant %q has a non-positive price fraction", area.ID, m.ID)
		}
	}
	validateTriggers("area "+area.ID, area.Triggers, defs, ve)
}

func validateActor(actor *types.ActorDef, defs *state.Defs, ve *ValidationError) {
	if actor.HitPoints <= 0 {
		ve.errorf("actor %q must have positive hit_points", actor.ID)
	}
	if !validFactions[actor.Faction] {
		ve.errorf("actor %q has unknown faction %q", actor.ID, actor.Faction)
	}
	if actor.Size != "" {
		if _, ok := defs.Sizes[actor.Size]; !ok {
			ve.errorf("actor %q references undefined size %q", actor.ID, actor.Size)
		}
	}
	for _, id := range actor.Abilities {
		if _, ok := defs.Abilities[id]; !ok {
			ve.errorf("actor %q references undefined ability %q", actor.ID, id)
		}
	}
	validateItemRefs(fmt.Sprintf("actor %q", actor.ID), actor.Inventory, defs, ve)
	if !builtinAI[actor.AI] {
		if _, ok := defs.Scripts[actor.AI]; !ok {
			ve.errorf("actor %q references undefined AI script %q", actor.ID, actor.AI)
		}
	}
	switch strings.ToLower(actor.Attack.Kind) {
	case "", "melee":
	case "ranged":
		if actor.Attack.Range <= 0 {
			ve.errorf("actor %q has a ranged attack without range", actor.ID)
		}
	default:
		ve.errorf("actor %q has unknown attack kind %q", actor.ID, actor.Attack.Kind)
	}
	if actor.Attack.MaxDamage < actor.Attack.MinDamage {
		ve.warnf("actor %q attack max_damage is below min_damage", actor.ID)
	}
}

func validateItemRefs(owner string, items []string, defs *state.Defs, ve *ValidationError) {
	for _, id := range items {
		if _, ok := defs.Items[id]; !ok {
			ve.errorf("%s references undefined item %q", owner, id)
		}
	}
}

func validateTriggers(owner string, triggers []types.Trigger, defs *state.Defs, ve *ValidationError) {
	for _, t := range triggers {
		if !validTriggerKinds[t.Kind] {
			ve.errorf("%s has unknown trigger kind %q", owner, t.Kind)
		}
		if _, ok := defs.Scripts[t.Script]; !ok {
			ve.errorf("%s trigger references undefined script %q", owner, t.Script)
		}
		if t.Func == "" {
			ve.errorf("%s trigger on script %q has no func", owner, t.Script)
		}
	}
}

func inBounds(area *types.AreaDef, p types.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < area.Width && p.Y < area.Height
}

func tilePassable(area *types.AreaDef, p types.Point) bool {
	return inBounds(area, p) && area.Passable[p.Y*area.Width+p.X]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
