package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/area"
	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
)

// MaxPlacementRadius is the largest ring searched around a transition
// target for a free tile.
const MaxPlacementRadius = 9

// Transition moves the party to (x, y) in areaID, loading the area on first
// visit. Each member takes the nearest free tile found by a ring search
// around the target. If any member cannot be placed the whole party is put
// back where it was and ErrNoPlacement is returned.
func (e *Engine) Transition(areaID string, x, y int) error {
	def, ok := e.Defs.Area(areaID)
	if !ok {
		return fmt.Errorf("transition: %q: %w", areaID, ErrUnknownArea)
	}
	if x < 0 || y < 0 || x >= def.Width || y >= def.Height {
		return fmt.Errorf("transition: %q (%d,%d): %w", areaID, x, y, ErrInvalidLocation)
	}

	from := e.current
	to := e.loadArea(def)
	e.Anims.ClearBlocking()

	var turns turnSnapshot
	if from != nil {
		turns = snapshotTurns(from, e.party)
	}
	type origin struct{ x, y int }
	origins := make([]origin, len(e.party))
	for i, m := range e.party {
		origins[i] = origin{m.Location.X, m.Location.Y}
		if from != nil {
			from.RemoveEntity(m.Handle())
		}
	}

	var placed []*entity.EntityState
	for _, m := range e.party {
		if !placeNear(to, m, x, y) {
			for _, p := range placed {
				to.RemoveEntity(p.Handle())
			}
			if from != nil {
				for i, p := range e.party {
					if err := from.AddEntity(p, origins[i].x, origins[i].y); err != nil {
						logger.Log.WithError(err).WithField("entity", p.Name()).Error("Could not restore party member after failed transition")
					}
				}
				turns.restore(from)
				from.UpdateViewVisibility()
			}
			e.refreshEffectOwners()
			return fmt.Errorf("transition: %s to %q (%d,%d): %w", m.Name(), areaID, x, y, ErrNoPlacement)
		}
		placed = append(placed, m)
	}

	e.current = to
	e.refreshEffectOwners()
	if from != nil && from != to {
		e.Turns.EndCombatIfClear(from)
	}
	to.UpdateViewVisibility()

	logger.Log.WithFields(logrus.Fields{
		"area": to.ID(),
		"x":    x,
		"y":    y,
	}).Info("Party transitioned")

	e.fireAreaLoad(to)
	e.Turns.CheckAIActivation(nil, to)
	e.partyListeners.Notify(e)
	return nil
}

// placeNear adds ent to a at the first free spot in rings of growing radius
// around (x, y).
func placeNear(a *area.State, ent *entity.EntityState, x, y int) bool {
	for r := 0; r <= MaxPlacementRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				if !a.IsPassableFor(ent, x+dx, y+dy, nil) {
					continue
				}
				if err := a.AddEntity(ent, x+dx, y+dy); err == nil {
					return true
				}
			}
		}
	}
	return false
}

// turnSnapshot remembers an area's combat rotation across the party's
// removal so a failed transition can put every member back in its place.
type turnSnapshot struct {
	order   []entity.Handle
	members map[entity.Handle]*entity.EntityState
	current int
	round   uint32
	active  bool
}

func snapshotTurns(a *area.State, party []*entity.EntityState) turnSnapshot {
	t := a.Timer()
	s := turnSnapshot{
		order:   t.Order(),
		members: make(map[entity.Handle]*entity.EntityState, len(party)),
		current: t.CurrentIndex(),
		round:   t.Round(),
		active:  t.IsActive(),
	}
	for _, m := range party {
		s.members[m.Handle()] = m
	}
	return s
}

// restore rebuilds the rotation with the members' new handles. Members
// that could not be re-added are dropped.
func (s turnSnapshot) restore(a *area.State) {
	if !s.active {
		return
	}
	order := make([]entity.Handle, 0, len(s.order))
	current := s.current
	for i, h := range s.order {
		if m, ok := s.members[h]; ok {
			if a.Entity(m.Handle()) != m {
				if i < s.current {
					current--
				}
				continue
			}
			h = m.Handle()
		}
		order = append(order, h)
	}
	a.Timer().Restore(order, current, s.round, s.active)
}

// refreshEffectOwners points party effects at their members' new handles.
func (e *Engine) refreshEffectOwners() {
	for _, m := range e.party {
		for _, eff := range e.Turns.EffectsOn(m) {
			eff.Owner = m.Handle()
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
