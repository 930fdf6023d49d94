package area

import (
	"fmt"
	"sort"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/engine/save"
)

// Save captures the area's entities, turn timer and containers.
func (s *State) Save() save.AreaData {
	data := save.AreaData{ID: s.ID(), OnLoadFired: s.OnLoadFired}
	for _, e := range s.Entities() {
		ed := save.EntityData{
			Index:     e.Index,
			ActorID:   e.Actor.Def.ID,
			X:         e.Location.X,
			Y:         e.Location.Y,
			Party:     e.Party,
			HP:        e.Actor.HP,
			AP:        e.Actor.AP,
			EndTurn:   e.Actor.EndTurn,
			Cooldowns: map[string]uint32{},
			Flags:     map[string]string{},
		}
		for _, item := range e.Actor.Inventory {
			ed.Inventory = append(ed.Inventory, item.ID)
		}
		for id, ab := range e.Actor.Abilities {
			if ab.Cooldown > 0 {
				ed.Cooldowns[id] = ab.Cooldown
			}
			if ab.Active {
				ed.ActiveModes = append(ed.ActiveModes, id)
			}
		}
		sort.Strings(ed.ActiveModes)
		for k, v := range e.Flags {
			ed.Flags[k] = v
		}
		data.Entities = append(data.Entities, ed)
	}

	data.Turn = save.TurnData{
		Active:  s.timer.IsActive(),
		Round:   s.timer.Round(),
		Current: s.timer.CurrentIndex(),
	}
	for _, h := range s.timer.Order() {
		data.Turn.Order = append(data.Turn.Order, h.Index)
	}
	for _, p := range s.props {
		data.Props = append(data.Props, save.ContainerData{ID: p.ID, Items: append([]string(nil), p.Items...)})
	}
	for _, m := range s.merchants {
		data.Merchants = append(data.Merchants, save.ContainerData{ID: m.ID, Items: append([]string(nil), m.Items...)})
	}
	return data
}

// Restore rebuilds saved entities into an empty area, recording each saved
// index's new index in table. A turn order entry missing from the rebuilt
// area fails with save.ErrInvalidIndex.
func (s *State) Restore(data save.AreaData, c Catalog, table save.IndexTable) error {
	s.OnLoadFired = data.OnLoadFired
	for _, ed := range data.Entities {
		e, err := BuildEntity(c, ed.ActorID)
		if err != nil {
			return fmt.Errorf("restore area %q: %w", s.ID(), err)
		}
		e.Actor.Inventory = nil
		for _, id := range ed.Inventory {
			if item, ok := c.Item(id); ok {
				e.Actor.Inventory = append(e.Actor.Inventory, item)
			}
		}
		e.Actor.Recompute(nil)
		for id, cd := range ed.Cooldowns {
			if ab, ok := e.Actor.Abilities[id]; ok {
				ab.Cooldown = cd
			}
		}
		for _, id := range ed.ActiveModes {
			if ab, ok := e.Actor.Abilities[id]; ok {
				ab.Active = true
			}
		}
		for k, v := range ed.Flags {
			e.SetFlag(k, v)
		}
		e.Party = ed.Party
		e.Actor.HP = ed.HP
		e.Actor.AP = ed.AP
		e.Actor.EndTurn = ed.EndTurn
		if err := s.AddEntity(e, ed.X, ed.Y); err != nil {
			return fmt.Errorf("restore area %q: %w", s.ID(), err)
		}
		table.Set(s.ID(), ed.Index, e.Index)
	}

	var order []entity.Handle
	for _, old := range data.Turn.Order {
		idx, err := table.Remap(s.ID(), old)
		if err != nil {
			return fmt.Errorf("restore turn order: %w", err)
		}
		order = append(order, s.entities[idx].Handle())
	}
	s.timer.Restore(order, data.Turn.Current, data.Turn.Round, data.Turn.Active)

	for _, cd := range data.Props {
		if p := s.Prop(cd.ID); p != nil {
			p.Items = append([]string(nil), cd.Items...)
		}
	}
	for _, cd := range data.Merchants {
		if m := s.Merchant(cd.ID); m != nil {
			m.Items = append([]string(nil), cd.Items...)
		}
	}
	s.UpdateViewVisibility()
	return nil
}
