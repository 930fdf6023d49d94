// Package entity holds per-character mutable state. Entities live in an
// area's slot arena and are referenced elsewhere by Handle.
package entity

import (
	"fmt"
	"math"

	"github.com/nathoo/turncore/types"
)

// Handle addresses an entity slot. Gen must match the slot's generation for
// the handle to resolve, so a handle never outlives the entity it named.
type Handle struct {
	Index int    `json:"index"`
	Gen   uint32 `json:"gen"`
}

// NoHandle refers to nothing.
var NoHandle = Handle{Index: -1}

// IsSet reports whether h names a slot at all.
func (h Handle) IsSet() bool {
	return h.Index >= 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.Index, h.Gen)
}

// Location is an entity's tile position inside an area.
type Location struct {
	AreaID string `json:"area_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// EntityState is one character in an area.
type EntityState struct {
	Index    int
	Gen      uint32
	Location Location
	// SubX and SubY are the sub-tile offset used while a move animation
	// interpolates between tiles.
	SubX, SubY float64
	Size       types.ObjectSize
	Actor      *ActorState
	Party      bool
	Flags      map[string]string
}

// New creates an unplaced entity for an actor definition.
func New(def *types.ActorDef, size types.ObjectSize) *EntityState {
	if size.Width < 1 {
		size.Width = 1
	}
	if size.Height < 1 {
		size.Height = 1
	}
	if size.Diagonal == 0 {
		size.Diagonal = math.Hypot(float64(size.Width), float64(size.Height))
	}
	return &EntityState{
		Index: -1,
		Size:  size,
		Actor: NewActorState(def),
		Flags: map[string]string{},
	}
}

// Handle returns the handle for the entity's current slot.
func (e *EntityState) Handle() Handle {
	return Handle{Index: e.Index, Gen: e.Gen}
}

// Name returns the display name.
func (e *EntityState) Name() string {
	if e.Actor.Def.Name != "" {
		return e.Actor.Def.Name
	}
	return e.Actor.Def.ID
}

// Faction returns the entity's faction. Party members are always friendly.
func (e *EntityState) Faction() types.Faction {
	if e.Party {
		return types.FactionFriendly
	}
	if e.Actor.Def.Faction == "" {
		return types.FactionNeutral
	}
	return e.Actor.Def.Faction
}

// IsHostile reports whether e and other fight each other.
func (e *EntityState) IsHostile(other *EntityState) bool {
	a, b := e.Faction(), other.Faction()
	return (a == types.FactionHostile && b == types.FactionFriendly) ||
		(a == types.FactionFriendly && b == types.FactionHostile)
}

// IsFriendly reports whether e and other share a faction.
func (e *EntityState) IsFriendly(other *EntityState) bool {
	return e.Faction() == other.Faction()
}

// IsDead reports whether the entity has no hit points left.
func (e *EntityState) IsDead() bool {
	return e.Actor.HP <= 0
}

// Center returns the center of the footprint in tile coordinates.
func (e *EntityState) Center() (float64, float64) {
	return float64(e.Location.X) + float64(e.Size.Width)/2,
		float64(e.Location.Y) + float64(e.Size.Height)/2
}

// DistToPoint is the distance from the footprint edge to a point.
func (e *EntityState) DistToPoint(x, y float64) float64 {
	cx, cy := e.Center()
	return math.Hypot(cx-x, cy-y) - e.Size.Diagonal/2
}

// DistTo is the edge-to-edge distance between two footprints.
func (e *EntityState) DistTo(other *EntityState) float64 {
	cx, cy := e.Center()
	ox, oy := other.Center()
	return math.Hypot(cx-ox, cy-oy) - (e.Size.Diagonal+other.Size.Diagonal)/2
}

// Points returns every tile the footprint covers at (x, y).
func (e *EntityState) Points(x, y int) []types.Point {
	pts := make([]types.Point, 0, e.Size.Width*e.Size.Height)
	for dy := 0; dy < e.Size.Height; dy++ {
		for dx := 0; dx < e.Size.Width; dx++ {
			pts = append(pts, types.Point{X: x + dx, Y: y + dy})
		}
	}
	return pts
}

// SetFlag stores a custom flag.
func (e *EntityState) SetFlag(key, value string) {
	e.Flags[key] = value
}

// Flag returns a custom flag and whether it is set.
func (e *EntityState) Flag(key string) (string, bool) {
	v, ok := e.Flags[key]
	return v, ok
}
