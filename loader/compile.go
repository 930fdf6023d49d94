// Package loader loads Lua module content into Go structs at load time.
// Definition files are executed once in a sandboxed VM that is discarded
// afterwards; runtime scripts are kept as source for the script runner.
package loader

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// Map legend. Walls block movement and sight, water blocks only movement
// and brush blocks only sight.
const (
	TileFloor = '.'
	TileWall  = '#'
	TileWater = '~'
	TileBrush = '%'
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToIntMap converts a Lua table of numbers to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(n)
			}
		}
	})
	return m
}

// stringList converts the array part of a Lua table to strings.
func stringList(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableList returns the tables in the array part of a Lua table.
func tableList(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

func getPoint(tbl *lua.LTable) types.Point {
	if tbl == nil {
		return types.Point{}
	}
	return types.Point{X: getInt(tbl, "x"), Y: getInt(tbl, "y")}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := state.NewDefs()

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	seen := map[string]rawDef{}
	// claim records id under kind and reports a duplicate within one module.
	claim := func(kind string, raw rawDef) error {
		key := kind + ":" + raw.id
		if prev, ok := seen[key]; ok {
			if prev.module == raw.module {
				return fmt.Errorf("duplicate %s %q in %s and %s", kind, raw.id, prev.file, raw.file)
			}
			logger.Log.WithFields(logrus.Fields{
				"kind": kind,
				"id":   raw.id,
				"file": raw.file,
			}).Debug("Definition overridden by later module")
		}
		seen[key] = raw
		return nil
	}

	for _, raw := range coll.sizes {
		if err := claim("size", raw); err != nil {
			return nil, err
		}
		defs.Sizes[raw.id] = compileSize(raw)
	}
	for _, raw := range coll.items {
		if err := claim("item", raw); err != nil {
			return nil, err
		}
		defs.Items[raw.id] = compileItem(raw)
	}
	for _, raw := range coll.abilities {
		if err := claim("ability", raw); err != nil {
			return nil, err
		}
		defs.Abilities[raw.id] = compileAbility(raw)
	}
	for _, raw := range coll.actors {
		if err := claim("actor", raw); err != nil {
			return nil, err
		}
		defs.Actors[raw.id] = compileActor(raw)
	}
	for _, raw := range coll.areas {
		if err := claim("area", raw); err != nil {
			return nil, err
		}
		area, err := compileArea(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling area %s: %w", raw.id, err)
		}
		defs.Areas[raw.id] = area
	}
	for _, s := range coll.scripts {
		if err := claim("script", rawDef{id: s.id, file: s.file, module: s.module}); err != nil {
			return nil, err
		}
		defs.Scripts[s.id] = s.source
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:            getString(tbl, "title"),
		Author:           getString(tbl, "author"),
		Version:          getString(tbl, "version"),
		StartingArea:     getString(tbl, "start_area"),
		StartingLocation: getPoint(getTable(tbl, "start")),
		Player:           getString(tbl, "player"),
		Intro:            getString(tbl, "intro"),
		Triggers:         compileTriggers(getTable(tbl, "triggers")),
	}
}

func compileTriggers(tbl *lua.LTable) []types.Trigger {
	var out []types.Trigger
	for _, t := range tableList(tbl) {
		out = append(out, types.Trigger{
			Kind:   types.TriggerKind(getString(t, "kind")),
			Script: getString(t, "script"),
			Func:   getString(t, "func"),
		})
	}
	return out
}

func compileSize(raw rawDef) types.ObjectSize {
	w, h := getInt(raw.table, "width"), getInt(raw.table, "height")
	return types.ObjectSize{
		ID:       raw.id,
		Width:    w,
		Height:   h,
		Diagonal: math.Hypot(float64(w), float64(h)),
	}
}

func compileItem(raw rawDef) *types.ItemDef {
	item := &types.ItemDef{
		ID:    raw.id,
		Name:  getString(raw.table, "name"),
		Value: getInt(raw.table, "value"),
	}
	for _, b := range tableList(getTable(raw.table, "bonuses")) {
		item.Bonuses = append(item.Bonuses, types.BonusDef{
			Kind:   getString(b, "kind"),
			Amount: getNumber(b, "amount"),
			Damage: getString(b, "damage"),
		})
	}
	return item
}

func compileAbility(raw rawDef) *types.AbilityDef {
	tbl := raw.table
	return &types.AbilityDef{
		ID:         raw.id,
		Name:       getString(tbl, "name"),
		Active:     getBool(tbl, "active", true),
		Mode:       getBool(tbl, "mode", false),
		APCost:     getInt(tbl, "ap_cost"),
		Cooldown:   getInt(tbl, "cooldown"),
		Script:     getString(tbl, "script"),
		OnActivate: getString(tbl, "on_activate"),
	}
}

func compileActor(raw rawDef) *types.ActorDef {
	tbl := raw.table
	actor := &types.ActorDef{
		ID:         raw.id,
		Name:       getString(tbl, "name"),
		Faction:    types.Faction(getString(tbl, "faction")),
		Size:       getString(tbl, "size"),
		Attributes: tableToIntMap(getTable(tbl, "attributes")),
		HitPoints:  getInt(tbl, "hit_points"),
		Armor:      getInt(tbl, "armor"),
		Accuracy:   getInt(tbl, "accuracy"),
		Defense:    getInt(tbl, "defense"),
		Initiative: getInt(tbl, "initiative"),
		Inventory:  stringList(getTable(tbl, "inventory")),
		Abilities:  stringList(getTable(tbl, "abilities")),
		AI:         getString(tbl, "ai"),
		Glyph:      getString(tbl, "glyph"),
	}
	if atk := getTable(tbl, "attack"); atk != nil {
		actor.Attack = types.AttackDef{
			Kind:       getString(atk, "kind"),
			Reach:      getNumber(atk, "reach"),
			Range:      getNumber(atk, "range"),
			Projectile: getString(atk, "projectile"),
			MinDamage:  getInt(atk, "min_damage"),
			MaxDamage:  getInt(atk, "max_damage"),
			AP:         getInt(atk, "ap"),
			DamageKind: getString(atk, "damage_kind"),
		}
	}
	return actor
}

func compileArea(raw rawDef) (*types.AreaDef, error) {
	tbl := raw.table
	area := &types.AreaDef{
		ID:       raw.id,
		Name:     getString(tbl, "name"),
		VisDist:  getInt(tbl, "vis_dist"),
		Triggers: compileTriggers(getTable(tbl, "triggers")),
	}

	rows := stringList(getTable(tbl, "map"))
	if len(rows) == 0 {
		return nil, fmt.Errorf("map is empty")
	}
	area.Width = len(rows[0])
	area.Height = len(rows)
	for y, row := range rows {
		if len(row) != area.Width {
			return nil, fmt.Errorf("map row %d has width %d, want %d", y, len(row), area.Width)
		}
		for x, c := range row {
			passable, transparent, ok := tileFlags(c)
			if !ok {
				return nil, fmt.Errorf("unknown map tile %q at (%d,%d)", c, x, y)
			}
			area.Passable = append(area.Passable, passable)
			area.Transparent = append(area.Transparent, transparent)
		}
	}

	for _, a := range tableList(getTable(tbl, "actors")) {
		area.Actors = append(area.Actors, types.ActorPlacement{
			Actor:    getString(a, "actor"),
			Location: types.Point{X: getInt(a, "x"), Y: getInt(a, "y")},
			Flags:    tableToStringMap(getTable(a, "flags")),
		})
	}
	for _, p := range tableList(getTable(tbl, "props")) {
		area.Props = append(area.Props, types.PropDef{
			ID:       getString(p, "id"),
			Name:     getString(p, "name"),
			Location: types.Point{X: getInt(p, "x"), Y: getInt(p, "y")},
			Items:    stringList(getTable(p, "items")),
		})
	}
	for _, m := range tableList(getTable(tbl, "merchants")) {
		area.Merchants = append(area.Merchants, types.MerchantDef{
			ID:       getString(m, "id"),
			Items:    stringList(getTable(m, "items")),
			BuyFrac:  getNumber(m, "buy_frac"),
			SellFrac: getNumber(m, "sell_frac"),
		})
	}
	return area, nil
}

func tileFlags(c rune) (passable, transparent, ok bool) {
	switch c {
	case TileFloor:
		return true, true, true
	case TileWall:
		return false, false, true
	case TileWater:
		return false, true, true
	case TileBrush:
		return true, false, true
	}
	return false, false, false
}
