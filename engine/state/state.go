// Package state holds the immutable module definitions with lookups that
// warn and fall back instead of failing.
package state

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// DefaultSize is the footprint used when an actor names no size.
var DefaultSize = types.ObjectSize{ID: "1x1", Width: 1, Height: 1, Diagonal: math.Sqrt2}

// Defs holds the immutable module definitions loaded from Lua.
type Defs struct {
	Game      types.GameDef
	Areas     map[string]*types.AreaDef
	Actors    map[string]*types.ActorDef
	Abilities map[string]*types.AbilityDef
	Items     map[string]*types.ItemDef
	Sizes     map[string]types.ObjectSize
	Scripts   map[string]string // script id -> Lua source
}

// NewDefs creates an empty registry.
func NewDefs() *Defs {
	return &Defs{
		Areas:     map[string]*types.AreaDef{},
		Actors:    map[string]*types.ActorDef{},
		Abilities: map[string]*types.AbilityDef{},
		Items:     map[string]*types.ItemDef{},
		Sizes:     map[string]types.ObjectSize{},
		Scripts:   map[string]string{},
	}
}

func warnMissing(kind, id string) {
	logger.Log.WithFields(logrus.Fields{"kind": kind, "id": id}).Warn("Unknown definition id")
}

// Area returns the area definition for id.
func (d *Defs) Area(id string) (*types.AreaDef, bool) {
	a, ok := d.Areas[id]
	if !ok {
		warnMissing("area", id)
	}
	return a, ok
}

// Actor returns the actor definition for id.
func (d *Defs) Actor(id string) (*types.ActorDef, bool) {
	a, ok := d.Actors[id]
	if !ok {
		warnMissing("actor", id)
	}
	return a, ok
}

// Ability returns the ability definition for id.
func (d *Defs) Ability(id string) (*types.AbilityDef, bool) {
	a, ok := d.Abilities[id]
	if !ok {
		warnMissing("ability", id)
	}
	return a, ok
}

// Item returns the item definition for id.
func (d *Defs) Item(id string) (*types.ItemDef, bool) {
	i, ok := d.Items[id]
	if !ok {
		warnMissing("item", id)
	}
	return i, ok
}

// Size returns the size named id. An empty id is the default size; an
// unknown one warns and uses it too.
func (d *Defs) Size(id string) types.ObjectSize {
	if id == "" {
		return DefaultSize
	}
	s, ok := d.Sizes[id]
	if !ok {
		warnMissing("size", id)
		return DefaultSize
	}
	return s
}

// Script returns the Lua source of script id.
func (d *Defs) Script(id string) (string, bool) {
	src, ok := d.Scripts[id]
	if !ok {
		warnMissing("script", id)
	}
	return src, ok
}

// CampaignTriggers returns the campaign-level triggers of kind.
func (d *Defs) CampaignTriggers(kind types.TriggerKind) []types.Trigger {
	return filterTriggers(d.Game.Triggers, kind)
}

// AreaTriggers returns area's triggers of kind.
func AreaTriggers(area *types.AreaDef, kind types.TriggerKind) []types.Trigger {
	return filterTriggers(area.Triggers, kind)
}

func filterTriggers(ts []types.Trigger, kind types.TriggerKind) []types.Trigger {
	var out []types.Trigger
	for _, t := range ts {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// AreaIDs returns every area id, sorted.
func (d *Defs) AreaIDs() []string {
	ids := make([]string, 0, len(d.Areas))
	for id := range d.Areas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
