// Package area holds the mutable state of one map region: the entity slot
// arena, occupancy, visibility, props, merchants and feedback text.
package area

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/pathfind"
	"github.com/nathoo/turncore/engine/turn"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

var (
	// ErrOutOfBounds is returned when a footprint leaves the map.
	ErrOutOfBounds = errors.New("footprint out of bounds")
	// ErrImpassable is returned when a footprint covers a wall or another entity.
	ErrImpassable = errors.New("footprint not passable")
)

// DefaultVisDist is used for areas that do not set a visibility distance.
const DefaultVisDist = 12

const noEntity = -1

// State is one loaded area.
type State struct {
	Def         *types.AreaDef
	OnLoadFired bool

	entities  []*entity.EntityState
	gens      []uint32
	occupancy []int
	timer     *turn.Timer
	finder    *pathfind.Finder

	pcVis   map[int][]bool
	visible []bool

	props     []*Prop
	merchants []*Merchant
	feedback  []*FeedbackText
}

// New creates an empty area for def. Props and merchants come from the
// definition; actors are placed by the caller.
func New(def *types.AreaDef) *State {
	s := &State{
		Def:       def,
		occupancy: make([]int, def.Width*def.Height),
		timer:     turn.NewTimer(),
		finder:    pathfind.New(),
		pcVis:     map[int][]bool{},
		visible:   make([]bool, def.Width*def.Height),
	}
	for i := range s.occupancy {
		s.occupancy[i] = noEntity
	}
	for _, p := range def.Props {
		s.props = append(s.props, &Prop{ID: p.ID, Name: p.Name, Location: p.Location, Items: append([]string(nil), p.Items...)})
	}
	for _, m := range def.Merchants {
		s.merchants = append(s.merchants, &Merchant{ID: m.ID, Items: append([]string(nil), m.Items...), BuyFrac: m.BuyFrac, SellFrac: m.SellFrac})
	}
	return s
}

// ID returns the area id.
func (s *State) ID() string { return s.Def.ID }

// Width returns the map width in tiles.
func (s *State) Width() int { return s.Def.Width }

// Height returns the map height in tiles.
func (s *State) Height() int { return s.Def.Height }

// VisDist returns how far party members see.
func (s *State) VisDist() int {
	if s.Def.VisDist > 0 {
		return s.Def.VisDist
	}
	return DefaultVisDist
}

// Timer returns the area's turn timer.
func (s *State) Timer() *turn.Timer { return s.timer }

// Finder returns the path finder used for this area.
func (s *State) Finder() *pathfind.Finder { return s.finder }

// InBounds reports whether (x, y) is on the map.
func (s *State) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.Def.Width && y < s.Def.Height
}

func (s *State) tile(x, y int) int { return y*s.Def.Width + x }

// IsTerrainPassable reports whether the static map allows walking on (x, y).
func (s *State) IsTerrainPassable(x, y int) bool {
	if !s.InBounds(x, y) {
		return false
	}
	if len(s.Def.Passable) == 0 {
		return true
	}
	return s.Def.Passable[s.tile(x, y)]
}

// IsTransparent reports whether light passes (x, y). Maps without a
// transparency grid use passability.
func (s *State) IsTransparent(x, y int) bool {
	if !s.InBounds(x, y) {
		return false
	}
	if len(s.Def.Transparent) == 0 {
		return s.IsTerrainPassable(x, y)
	}
	return s.Def.Transparent[s.tile(x, y)]
}

// IsPassableFor reports whether mover's footprint fits at (x, y). Mover
// itself and the ignored handles never block.
func (s *State) IsPassableFor(mover *entity.EntityState, x, y int, ignore []entity.Handle) bool {
	return s.checkFootprint(mover, x, y, ignore) == nil
}

func (s *State) checkFootprint(mover *entity.EntityState, x, y int, ignore []entity.Handle) error {
	for _, p := range mover.Points(x, y) {
		if !s.InBounds(p.X, p.Y) {
			return ErrOutOfBounds
		}
		if !s.IsTerrainPassable(p.X, p.Y) {
			return ErrImpassable
		}
		occ := s.occupancy[s.tile(p.X, p.Y)]
		if occ == noEntity {
			continue
		}
		other := s.entities[occ]
		if other == mover || containsHandle(ignore, other.Handle()) {
			continue
		}
		return ErrImpassable
	}
	return nil
}

// AddEntity places e with its top-left corner at (x, y), assigning it a slot.
// The footprint must be in bounds and free.
func (s *State) AddEntity(e *entity.EntityState, x, y int) error {
	if err := s.checkFootprint(e, x, y, nil); err != nil {
		return fmt.Errorf("add %s to %s at (%d,%d): %w", e.Name(), s.ID(), x, y, err)
	}

	idx := -1
	for i, slot := range s.entities {
		if slot == nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		idx = len(s.entities)
		s.entities = append(s.entities, nil)
		s.gens = append(s.gens, 0)
	}

	s.entities[idx] = e
	e.Index = idx
	e.Gen = s.gens[idx]
	e.Location = entity.Location{AreaID: s.ID(), X: x, Y: y}
	e.SubX, e.SubY = 0, 0
	s.occupy(e, idx)

	logger.Log.WithFields(logrus.Fields{
		"area":   s.ID(),
		"entity": e.Name(),
		"index":  idx,
	}).Debug("Entity added")
	return nil
}

// AddActor builds an actor from the catalog and places it.
func (s *State) AddActor(c Catalog, actorID string, x, y int, party bool) (*entity.EntityState, error) {
	e, err := BuildEntity(c, actorID)
	if err != nil {
		return nil, err
	}
	e.Party = party
	if err := s.AddEntity(e, x, y); err != nil {
		return nil, err
	}
	if party {
		s.ComputePCVisibility(e)
		s.UpdateViewVisibility()
	}
	return e, nil
}

// RemoveEntity frees h's slot and returns the entity, or nil if h is stale.
// The slot's generation is bumped so old handles stop resolving.
func (s *State) RemoveEntity(h entity.Handle) *entity.EntityState {
	e := s.Entity(h)
	if e == nil {
		logger.Log.WithFields(logrus.Fields{
			"area":   s.ID(),
			"handle": h.String(),
		}).Warn("Attempted to remove invalid entity")
		return nil
	}
	s.vacate(e)
	s.timer.Remove(h)
	delete(s.pcVis, h.Index)
	s.entities[h.Index] = nil
	s.gens[h.Index]++
	e.Index = -1
	if e.Party {
		s.UpdateViewVisibility()
	}
	return e
}

// MoveEntity moves e to (x, y) if its footprint fits there.
func (s *State) MoveEntity(e *entity.EntityState, x, y int) bool {
	if s.Entity(e.Handle()) != e {
		logger.Log.WithField("entity", e.Name()).Warn("Attempted to move entity not in this area")
		return false
	}
	if !s.IsPassableFor(e, x, y, nil) {
		return false
	}
	s.vacate(e)
	e.Location.X, e.Location.Y = x, y
	s.occupy(e, e.Index)
	if e.Party {
		s.ComputePCVisibility(e)
		s.UpdateViewVisibility()
	}
	return true
}

func (s *State) occupy(e *entity.EntityState, idx int) {
	for _, p := range e.Points(e.Location.X, e.Location.Y) {
		s.occupancy[s.tile(p.X, p.Y)] = idx
	}
}

func (s *State) vacate(e *entity.EntityState) {
	for _, p := range e.Points(e.Location.X, e.Location.Y) {
		if s.InBounds(p.X, p.Y) && s.occupancy[s.tile(p.X, p.Y)] == e.Index {
			s.occupancy[s.tile(p.X, p.Y)] = noEntity
		}
	}
}

// Entity resolves a handle, returning nil if the slot is empty or reused.
func (s *State) Entity(h entity.Handle) *entity.EntityState {
	if h.Index < 0 || h.Index >= len(s.entities) {
		return nil
	}
	if s.gens[h.Index] != h.Gen {
		return nil
	}
	return s.entities[h.Index]
}

// CheckGetEntity resolves a bare index, logging a warning if it is invalid.
func (s *State) CheckGetEntity(index int) *entity.EntityState {
	if index < 0 || index >= len(s.entities) || s.entities[index] == nil {
		logger.Log.WithFields(logrus.Fields{
			"area":  s.ID(),
			"index": index,
		}).Warn("Invalid entity index")
		return nil
	}
	return s.entities[index]
}

// EntityAt returns the entity covering (x, y).
func (s *State) EntityAt(x, y int) *entity.EntityState {
	if !s.InBounds(x, y) {
		return nil
	}
	occ := s.occupancy[s.tile(x, y)]
	if occ == noEntity {
		return nil
	}
	return s.entities[occ]
}

// Entities returns every entity in slot order.
func (s *State) Entities() []*entity.EntityState {
	var out []*entity.EntityState
	for _, e := range s.entities {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// CanAttack reports whether attacker can hit target with its weapon now.
func (s *State) CanAttack(attacker, target *entity.EntityState) bool {
	if attacker == target || attacker.IsDead() || target.IsDead() {
		return false
	}
	if attacker.Actor.Stats.AttackDisabled {
		return false
	}
	if attacker.DistTo(target) > attacker.Actor.Stats.AttackDistance() {
		return false
	}
	return s.HasVisibility(attacker, target)
}

// CanReach reports whether some tile within mover's attack distance of
// target is pathable from where mover stands.
func (s *State) CanReach(mover, target *entity.EntityState) bool {
	dist := mover.Actor.Stats.AttackDistance()
	if mover.DistTo(target) <= dist {
		return true
	}
	if mover.Actor.Stats.MoveDisabled {
		return false
	}
	tx, ty := target.Center()
	reach := dist + (mover.Size.Diagonal+target.Size.Diagonal)/2
	_, ok := s.finder.Find(s, mover, []entity.Handle{target.Handle()}, tx, ty, reach)
	return ok
}

func containsHandle(hs []entity.Handle, h entity.Handle) bool {
	for _, o := range hs {
		if o == h {
			return true
		}
	}
	return false
}
