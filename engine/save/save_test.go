package save

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/turncore/engine/rules"
)

func testSave() *SaveState {
	return &SaveState{
		Version:     Version,
		Game:        "Test Game",
		CurrentArea: "cave",
		Areas: []AreaData{{
			ID:          "cave",
			OnLoadFired: true,
			Entities: []EntityData{
				{Index: 3, ActorID: "hero", X: 1, Y: 1, Party: true, HP: 9},
				{Index: 5, ActorID: "goblin", X: 4, Y: 2, HP: 3},
			},
			Turn: TurnData{Active: true, Order: []int{5, 3}, Current: 1},
		}},
		Party:    []int{3},
		Selected: []int{3},
		Effects: []EffectData{{
			ID: 0, Area: "cave", Owner: 5, Name: "Slow",
			Total: rules.Int(3), Remaining: rules.Infinity,
			Bonuses: []rules.Bonus{{Kind: rules.BonusMovementRate, Value: -0.5}},
		}},
		DiceSeed: 42,
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(testSave())
	require.NoError(t, err)

	ss, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "cave", ss.CurrentArea)
	assert.True(t, ss.Effects[0].Remaining.IsInfinite())
	assert.Equal(t, -0.5, ss.Effects[0].Bonuses[0].Value)
	assert.NotNil(t, ss.Areas[0].Entities[0].Flags)
	assert.Equal(t, []int{5, 3}, ss.Areas[0].Turn.Order)
}

func TestUnmarshalRejectsBadData(t *testing.T) {
	_, err := Unmarshal([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"version":"99"}`))
	assert.Error(t, err)
}

func TestIndexTableRemap(t *testing.T) {
	table := IndexTable{}
	table.Set("cave", 3, 0)
	table.Set("cave", 5, 1)

	idx, err := table.Remap("cave", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	all, err := table.RemapAll("cave", []int{5, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, all)

	_, err = table.Remap("cave", 7)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
	_, err = table.Remap("forest", 3)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "quick", testSave()))
	second := testSave()
	second.CurrentArea = "forest"
	require.NoError(t, store.Put(ctx, "quick", second))

	got, err := store.Get(ctx, "quick")
	require.NoError(t, err)
	assert.Equal(t, "forest", got.CurrentArea)

	slots, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "quick", slots[0].Name)
	assert.Equal(t, "Test Game", slots[0].Game)

	require.NoError(t, store.Delete(ctx, "quick"))
	_, err = store.Get(ctx, "quick")
	assert.True(t, errors.Is(err, ErrSlotNotFound))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}
