// Package types defines the shared definition data for the turncore engine.
// The package holds data only: no logic and no methods.
package types

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ObjectSize is the footprint of an entity in tiles.
type ObjectSize struct {
	ID       string
	Width    int
	Height   int
	Diagonal float64 // precomputed sqrt(w*w + h*h)
}

// TriggerKind selects when a trigger fires.
type TriggerKind string

const (
	OnCampaignStart TriggerKind = "OnCampaignStart"
	OnAreaLoad      TriggerKind = "OnAreaLoad"
)

// Trigger runs a script function when its kind fires.
type Trigger struct {
	Kind   TriggerKind
	Script string // script id in Defs.Scripts
	Func   string // function name within the script
}

// Faction decides hostility between actors.
type Faction string

const (
	FactionFriendly Faction = "friendly"
	FactionHostile  Faction = "hostile"
	FactionNeutral  Faction = "neutral"
)

// AttackDef is the weapon attack an actor makes.
type AttackDef struct {
	Kind       string  // "melee" or "ranged"
	Reach      float64 // melee only
	Range      float64 // ranged only
	Projectile string  // ranged only: projectile image id
	MinDamage  int
	MaxDamage  int
	AP         int    // armor penetration
	DamageKind string // optional
}

// ActorDef is the base definition of a character, NPC or monster.
type ActorDef struct {
	ID         string
	Name       string
	Faction    Faction
	Size       string // size id in Defs.Sizes
	Attributes map[string]int
	HitPoints  int
	Armor      int
	Accuracy   int
	Defense    int
	Initiative int
	Inventory  []string // item ids
	Abilities  []string // ability ids
	Attack     AttackDef
	AI         string // "" = default behavior, "none" = inert
	Glyph      string // single-character display hint for terminal drivers
}

// AbilityDef is an active or passive ability.
type AbilityDef struct {
	ID         string
	Name       string
	Active     bool
	Mode       bool // active modes stay on until deactivated
	APCost     int
	Cooldown   int // rounds
	Script     string
	OnActivate string // function name, defaults to "on_activate"
}

// BonusDef is a single numeric or flag bonus granted by an item.
type BonusDef struct {
	Kind   string // same keys as the script effect builder
	Amount float64
	Damage string // damage kind for armor/damage bonuses
}

// ItemDef is the base definition of an item.
type ItemDef struct {
	ID      string
	Name    string
	Value   int
	Bonuses []BonusDef
}

// ActorPlacement places an actor in an area when it is first populated.
type ActorPlacement struct {
	Actor    string
	Location Point
	Flags    map[string]string
}

// PropDef is a container placed in an area.
type PropDef struct {
	ID       string
	Name     string
	Location Point
	Items    []string
}

// MerchantDef is a shop attached to an area.
type MerchantDef struct {
	ID       string
	Items    []string
	BuyFrac  float64
	SellFrac float64
}

// AreaDef is the static definition of one map region.
type AreaDef struct {
	ID          string
	Name        string
	Width       int
	Height      int
	Passable    []bool // row-major, len = Width*Height
	Transparent []bool // row-major, len = Width*Height
	VisDist     int
	Actors      []ActorPlacement
	Props       []PropDef
	Merchants   []MerchantDef
	Triggers    []Trigger
}

// GameDef holds campaign metadata.
type GameDef struct {
	Title            string
	Author           string
	Version          string
	StartingArea     string
	StartingLocation Point
	Player           string // actor id of the player character
	Intro            string
	Triggers         []Trigger
}
