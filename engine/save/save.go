// Package save implements the JSON save format and the entity index
// remapping contract used when a save is loaded.
package save

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nathoo/turncore/engine/rules"
	"github.com/nathoo/turncore/engine/script"
)

// Version is written into every save.
const Version = "1"

// ErrInvalidIndex is returned when a save refers to an entity index that the
// rebuilt area does not contain.
var ErrInvalidIndex = errors.New("invalid entity index")

// EntityData is one saved entity.
type EntityData struct {
	Index       int               `json:"index"`
	ActorID     string            `json:"actor_id"`
	X           int               `json:"x"`
	Y           int               `json:"y"`
	Party       bool              `json:"party"`
	HP          int               `json:"hp"`
	AP          int               `json:"ap"`
	EndTurn     bool              `json:"end_turn"`
	Inventory   []string          `json:"inventory"`
	Cooldowns   map[string]uint32 `json:"cooldowns"`
	ActiveModes []string          `json:"active_modes"`
	Flags       map[string]string `json:"flags"`
}

// TurnData is a saved turn timer; Order holds entity indices.
type TurnData struct {
	Active  bool   `json:"active"`
	Round   uint32 `json:"round"`
	Order   []int  `json:"order"`
	Current int    `json:"current"`
}

// ContainerData is the saved item list of a prop or merchant.
type ContainerData struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

// AreaData is one saved area.
type AreaData struct {
	ID          string          `json:"id"`
	OnLoadFired bool            `json:"on_load_fired"`
	Entities    []EntityData    `json:"entities"`
	Turn        TurnData        `json:"turn"`
	Props       []ContainerData `json:"props"`
	Merchants   []ContainerData `json:"merchants"`
}

// EffectData is one saved effect. Owner is an entity index in Area.
type EffectData struct {
	ID             int                   `json:"id"`
	Area           string                `json:"area"`
	Owner          int                   `json:"owner"`
	Name           string                `json:"name"`
	Tag            string                `json:"tag"`
	Total          rules.ExtInt          `json:"total"`
	Remaining      rules.ExtInt          `json:"remaining"`
	Bonuses        []rules.Bonus         `json:"bonuses"`
	DeactivateWith string                `json:"deactivate_with"`
	Callbacks      []script.CallbackData `json:"callbacks"`
}

// SaveState is the whole saved game. Party and Selected are entity indices
// in CurrentArea.
type SaveState struct {
	Version      string       `json:"version"`
	Game         string       `json:"game"`
	CurrentArea  string       `json:"current_area"`
	Areas        []AreaData   `json:"areas"`
	Party        []int        `json:"party"`
	Selected     []int        `json:"selected"`
	Effects      []EffectData `json:"effects"`
	DiceSeed     int64        `json:"dice_seed"`
	DicePosition int64        `json:"dice_position"`
}

// Marshal serializes a save to indented JSON.
func Marshal(ss *SaveState) ([]byte, error) {
	return json.MarshalIndent(ss, "", "  ")
}

// Unmarshal parses a save. Nil maps and slices are normalised to empty ones.
func Unmarshal(data []byte) (*SaveState, error) {
	var ss SaveState
	if err := json.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("parse save: %w", err)
	}
	if ss.Version != Version {
		return nil, fmt.Errorf("unsupported save version %q", ss.Version)
	}
	if ss.Party == nil {
		ss.Party = []int{}
	}
	if ss.Selected == nil {
		ss.Selected = []int{}
	}
	for i := range ss.Areas {
		for j := range ss.Areas[i].Entities {
			ed := &ss.Areas[i].Entities[j]
			if ed.Flags == nil {
				ed.Flags = map[string]string{}
			}
			if ed.Cooldowns == nil {
				ed.Cooldowns = map[string]uint32{}
			}
		}
	}
	return &ss, nil
}

// IndexTable maps saved entity indices to the indices assigned when each
// area was rebuilt.
type IndexTable map[string]map[int]int

// Set records that old in area became new.
func (t IndexTable) Set(area string, old, new int) {
	if t[area] == nil {
		t[area] = map[int]int{}
	}
	t[area][old] = new
}

// Remap returns the new index for old in area, or an error wrapping
// ErrInvalidIndex.
func (t IndexTable) Remap(area string, old int) (int, error) {
	if idx, ok := t[area][old]; ok {
		return idx, nil
	}
	return -1, fmt.Errorf("area %q index %d: %w", area, old, ErrInvalidIndex)
}

// RemapAll remaps a list of indices.
func (t IndexTable) RemapAll(area string, old []int) ([]int, error) {
	out := make([]int, 0, len(old))
	for _, o := range old {
		idx, err := t.Remap(area, o)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}
