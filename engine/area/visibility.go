package area

import (
	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
)

// octant transforms for recursive shadowcasting
var multipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// ComputePCVisibility recomputes and stores the field of view of party
// member e.
func (s *State) ComputePCVisibility(e *entity.EntityState) {
	if e.Index < 0 {
		return
	}
	s.pcVis[e.Index] = s.fieldOfView(e)
}

// UpdateViewVisibility recomputes every party member's field of view and
// the union the player sees. Fields of entities no longer in the party are
// dropped.
func (s *State) UpdateViewVisibility() {
	for i := range s.visible {
		s.visible[i] = false
	}
	s.pcVis = map[int][]bool{}
	for _, e := range s.Entities() {
		if !e.Party {
			continue
		}
		field := s.fieldOfView(e)
		s.pcVis[e.Index] = field
		for i, v := range field {
			if v {
				s.visible[i] = true
			}
		}
	}
}

// IsVisible reports whether any party member sees (x, y).
func (s *State) IsVisible(x, y int) bool {
	return s.InBounds(x, y) && s.visible[s.tile(x, y)]
}

// HasVisibility reports whether observer can see any tile of target.
// Hidden targets cannot be seen by entities hostile to them.
func (s *State) HasVisibility(observer, target *entity.EntityState) bool {
	if observer == target {
		return true
	}
	if target.Actor.Stats.Hidden && observer.IsHostile(target) {
		return false
	}
	field, ok := s.pcVis[observer.Index]
	if !ok || !observer.Party {
		field = s.fieldOfView(observer)
	}
	for _, p := range target.Points(target.Location.X, target.Location.Y) {
		if s.InBounds(p.X, p.Y) && field[s.tile(p.X, p.Y)] {
			return true
		}
	}
	return false
}

// fieldOfView runs recursive shadowcasting from the center tile of e.
func (s *State) fieldOfView(e *entity.EntityState) []bool {
	field := make([]bool, s.Def.Width*s.Def.Height)
	cx := e.Location.X + e.Size.Width/2
	cy := e.Location.Y + e.Size.Height/2
	radius := s.VisDist()
	if !s.InBounds(cx, cy) {
		logger.Log.WithFields(logrus.Fields{
			"area":   s.ID(),
			"entity": e.Name(),
		}).Warn("Field of view requested for entity outside the map")
		return field
	}

	field[s.tile(cx, cy)] = true
	// the whole footprint of the viewer is always visible
	for _, p := range e.Points(e.Location.X, e.Location.Y) {
		if s.InBounds(p.X, p.Y) {
			field[s.tile(p.X, p.Y)] = true
		}
	}
	for oct := 0; oct < 8; oct++ {
		s.castLight(field, cx, cy, 1, 1.0, 0.0, radius,
			multipliers[0][oct], multipliers[1][oct],
			multipliers[2][oct], multipliers[3][oct])
	}
	return field
}

func (s *State) castLight(field []bool, cx, cy, row int, start, end float64, radius, xx, xy, yx, yy int) {
	if start < end {
		return
	}
	radiusSq := float64(radius * radius)

	for j := row; j <= radius; j++ {
		dx, dy := -j-1, -j
		blocked := false
		newStart := start

		for {
			dx++
			if dx > 0 {
				break
			}

			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)
			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			x := cx + dx*xx + dy*xy
			y := cy + dx*yx + dy*yy
			if s.InBounds(x, y) && float64(dx*dx+dy*dy) < radiusSq {
				field[s.tile(x, y)] = true
			}

			opaque := !s.IsTransparent(x, y)
			if blocked {
				if opaque {
					newStart = rSlope
					continue
				}
				blocked = false
				start = newStart
			} else if opaque && j < radius {
				blocked = true
				s.castLight(field, cx, cy, j+1, start, lSlope, radius, xx, xy, yx, yy)
				newStart = rSlope
			}
		}
		if blocked {
			break
		}
	}
}
