package script

import (
	"github.com/nathoo/turncore/engine/entity"
)

// EntitySet is an immutable ordered list of entity indices with the index of
// the entity that produced it and an optional selected point. Filters
// return new sets and never change the receiver.
type EntitySet struct {
	indices  []int
	parent   int
	selected *TargetPoint
}

// NewEntitySet builds a set owned by parent.
func NewEntitySet(parent int, indices []int) EntitySet {
	cp := make([]int, len(indices))
	copy(cp, indices)
	return EntitySet{indices: cp, parent: parent}
}

// SetOf builds a set from resolved entities.
func SetOf(parent *entity.EntityState, targets ...*entity.EntityState) EntitySet {
	indices := make([]int, len(targets))
	for i, t := range targets {
		indices[i] = EntityOf(t).Index
	}
	return EntitySet{indices: indices, parent: EntityOf(parent).Index}
}

// WithSelectedPoint returns a copy carrying the selected point p.
func (s EntitySet) WithSelectedPoint(p TargetPoint) EntitySet {
	out := s.clone()
	out.selected = &p
	return out
}

// SelectedPoint returns the selected point if one is set.
func (s EntitySet) SelectedPoint() (TargetPoint, bool) {
	if s.selected == nil {
		return TargetPoint{}, false
	}
	return *s.selected, true
}

// Parent returns the owning entity handle.
func (s EntitySet) Parent() Entity {
	return Entity{Index: s.parent}
}

// Indices returns a copy of the raw indices, including empty slots.
func (s EntitySet) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Len returns the number of slots in the set.
func (s EntitySet) Len() int {
	return len(s.indices)
}

// IsEmpty reports whether the set has no slots.
func (s EntitySet) IsEmpty() bool {
	return len(s.indices) == 0
}

// First returns the first slot as a handle.
func (s EntitySet) First() Entity {
	if len(s.indices) == 0 {
		return Entity{Index: NoIndex}
	}
	return Entity{Index: s.indices[0]}
}

// Collect resolves every slot that is still valid.
func (s EntitySet) Collect(w World) []*entity.EntityState {
	var out []*entity.EntityState
	for _, idx := range s.indices {
		if idx == NoIndex {
			continue
		}
		if e := w.Entity(idx); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (s EntitySet) clone() EntitySet {
	out := EntitySet{indices: s.Indices(), parent: s.parent}
	if s.selected != nil {
		p := *s.selected
		out.selected = &p
	}
	return out
}

// filter keeps the slots for which keep returns true. Slots that no longer
// resolve, and a parent that no longer resolves, yield an empty result.
func (s EntitySet) filter(w World, keep func(parent, target *entity.EntityState) bool) EntitySet {
	out := s.clone()
	out.indices = nil
	parent := w.Entity(s.parent)
	if parent == nil {
		return out
	}
	for _, idx := range s.indices {
		if idx == NoIndex {
			continue
		}
		target := w.Entity(idx)
		if target == nil {
			continue
		}
		if keep(parent, target) {
			out.indices = append(out.indices, idx)
		}
	}
	return out
}

// WithoutSelf drops the parent from the set.
func (s EntitySet) WithoutSelf() EntitySet {
	out := s.clone()
	out.indices = nil
	for _, idx := range s.indices {
		if idx != s.parent {
			out.indices = append(out.indices, idx)
		}
	}
	return out
}

// VisibleWithin keeps targets the parent can see within dist.
func (s EntitySet) VisibleWithin(w World, dist float64) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return p.DistTo(t) <= dist && w.HasVisibility(p, t)
	})
}

// Visible keeps targets the parent can see.
func (s EntitySet) Visible(w World) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return w.HasVisibility(p, t)
	})
}

// Hostile keeps targets hostile to the parent.
func (s EntitySet) Hostile(w World) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return p.IsHostile(t)
	})
}

// Friendly keeps targets friendly to the parent.
func (s EntitySet) Friendly(w World) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return p.IsFriendly(t)
	})
}

// Reachable keeps targets the parent can get within attack distance of.
func (s EntitySet) Reachable(w World) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return w.CanReach(p, t)
	})
}

// Attackable keeps targets the parent can attack right now.
func (s EntitySet) Attackable(w World) EntitySet {
	return s.filter(w, func(p, t *entity.EntityState) bool {
		return w.CanAttack(p, t)
	})
}

// Alive keeps targets with hit points left.
func (s EntitySet) Alive(w World) EntitySet {
	return s.filter(w, func(_, t *entity.EntityState) bool {
		return !t.IsDead()
	})
}
