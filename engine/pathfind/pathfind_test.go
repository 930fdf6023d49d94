package pathfind

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/types"
)

// testGrid is a rectangular map with blocked tiles and occupants.
type testGrid struct {
	w, h     int
	walls    map[types.Point]bool
	occupied map[types.Point]entity.Handle
}

func newGrid(w, h int) *testGrid {
	return &testGrid{w: w, h: h, walls: map[types.Point]bool{}, occupied: map[types.Point]entity.Handle{}}
}

func (g *testGrid) Width() int  { return g.w }
func (g *testGrid) Height() int { return g.h }

func (g *testGrid) IsPassableFor(mover *entity.EntityState, x, y int, ignore []entity.Handle) bool {
	for _, p := range mover.Points(x, y) {
		if p.X < 0 || p.Y < 0 || p.X >= g.w || p.Y >= g.h || g.walls[p] {
			return false
		}
		if h, ok := g.occupied[p]; ok && h != mover.Handle() {
			skip := false
			for _, ig := range ignore {
				if ig == h {
					skip = true
				}
			}
			if !skip {
				return false
			}
		}
	}
	return true
}

func mover(x, y int) *entity.EntityState {
	e := entity.New(&types.ActorDef{ID: "mover", HitPoints: 1}, types.ObjectSize{})
	e.Index = 0
	e.Location = entity.Location{X: x, Y: y}
	return e
}

func endsWithin(t *testing.T, e *entity.EntityState, path []types.Point, tx, ty, dist float64) {
	t.Helper()
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	d := math.Hypot(float64(last.X)+0.5-tx, float64(last.Y)+0.5-ty)
	assert.LessOrEqual(t, d, dist)
}

func TestStraightLineApproach(t *testing.T) {
	g := newGrid(10, 3)
	m := mover(0, 0)

	path, ok := New().Find(g, m, nil, 5, 0, 1)

	require.True(t, ok)
	last := path[len(path)-1]
	assert.Contains(t, []types.Point{{X: 4, Y: 0}, {X: 5, Y: 0}}, last)
	assert.Equal(t, types.Point{X: 1, Y: 0}, path[0])
	endsWithin(t, m, path, 5, 0, 1)
}

func TestAlreadySatisfied(t *testing.T) {
	g := newGrid(5, 5)
	path, ok := New().Find(g, mover(2, 2), nil, 2.5, 2.5, 1)
	assert.True(t, ok)
	assert.Empty(t, path)
}

func TestBlockedTargetTile(t *testing.T) {
	g := newGrid(8, 8)
	g.walls[types.Point{X: 6, Y: 6}] = true
	m := mover(0, 0)

	path, ok := New().Find(g, m, nil, 6.5, 6.5, 1.5)

	require.True(t, ok)
	endsWithin(t, m, path, 6.5, 6.5, 1.5)
	assert.NotContains(t, path, types.Point{X: 6, Y: 6})
}

func TestWallDetour(t *testing.T) {
	g := newGrid(7, 5)
	for y := 0; y < 4; y++ {
		g.walls[types.Point{X: 3, Y: y}] = true
	}
	m := mover(0, 0)

	path, ok := New().Find(g, m, nil, 6.5, 0.5, 0.5)

	require.True(t, ok)
	assert.Equal(t, types.Point{X: 6, Y: 0}, path[len(path)-1])
	for _, p := range path {
		assert.False(t, g.walls[p], "path crosses wall at %v", p)
	}
}

func TestNoCornerCutting(t *testing.T) {
	g := newGrid(3, 3)
	g.walls[types.Point{X: 1, Y: 0}] = true
	g.walls[types.Point{X: 0, Y: 1}] = true
	m := mover(0, 0)

	_, ok := New().Find(g, m, nil, 1.5, 1.5, 0.1)
	assert.False(t, ok)
}

func TestUnreachable(t *testing.T) {
	g := newGrid(6, 3)
	for y := 0; y < 3; y++ {
		g.walls[types.Point{X: 3, Y: y}] = true
	}
	_, ok := New().Find(g, mover(0, 1), nil, 5.5, 1.5, 0.5)
	assert.False(t, ok)
}

func TestOccupantsBlockUnlessIgnored(t *testing.T) {
	g := newGrid(5, 1)
	blocker := entity.Handle{Index: 7}
	g.occupied[types.Point{X: 2, Y: 0}] = blocker
	m := mover(0, 0)

	_, ok := New().Find(g, m, nil, 4.5, 0.5, 0.1)
	assert.False(t, ok)

	path, ok := New().Find(g, m, []entity.Handle{blocker}, 4.5, 0.5, 0.1)
	require.True(t, ok)
	assert.Equal(t, types.Point{X: 4, Y: 0}, path[len(path)-1])
}

func TestIterationCap(t *testing.T) {
	g := newGrid(50, 50)
	f := &Finder{MaxIterations: 3}
	_, ok := f.Find(g, mover(0, 0), nil, 49.5, 49.5, 0.1)
	assert.False(t, ok)
}
