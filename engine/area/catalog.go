package area

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// Catalog resolves definition ids. Missing ids report false.
type Catalog interface {
	Actor(id string) (*types.ActorDef, bool)
	Size(id string) types.ObjectSize
	Item(id string) (*types.ItemDef, bool)
	Ability(id string) (*types.AbilityDef, bool)
}

// BuildEntity creates an unplaced entity for actorID with its starting
// inventory and abilities. Unknown items and abilities are skipped with a
// warning.
func BuildEntity(c Catalog, actorID string) (*entity.EntityState, error) {
	def, ok := c.Actor(actorID)
	if !ok {
		return nil, fmt.Errorf("unknown actor %q", actorID)
	}
	e := entity.New(def, c.Size(def.Size))
	for _, id := range def.Inventory {
		item, ok := c.Item(id)
		if !ok {
			logger.Log.WithFields(logrus.Fields{"actor": actorID, "item": id}).Warn("Unknown item in actor inventory")
			continue
		}
		e.Actor.Inventory = append(e.Actor.Inventory, item)
	}
	for _, id := range def.Abilities {
		ab, ok := c.Ability(id)
		if !ok {
			logger.Log.WithFields(logrus.Fields{"actor": actorID, "ability": id}).Warn("Unknown ability for actor")
			continue
		}
		e.Actor.AddAbility(ab)
	}
	e.Actor.Recompute(nil)
	e.Actor.HP = e.Actor.Stats.MaxHP
	e.Actor.AP = e.Actor.MaxAP()
	return e, nil
}

// Populate places the actors listed in the area definition. Actors that do
// not fit are skipped with a warning.
func (s *State) Populate(c Catalog) {
	for _, p := range s.Def.Actors {
		e, err := s.AddActor(c, p.Actor, p.Location.X, p.Location.Y, false)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"area":  s.ID(),
				"actor": p.Actor,
			}).WithError(err).Warn("Unable to place actor")
			continue
		}
		for k, v := range p.Flags {
			e.SetFlag(k, v)
		}
	}
}
