// Package pathfind finds routes for entities across an area grid with A*.
package pathfind

import (
	"container/heap"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/turncore/engine/entity"
	"github.com/nathoo/turncore/logger"
	"github.com/nathoo/turncore/types"
)

// Grid is the passability view of an area.
type Grid interface {
	Width() int
	Height() int
	// IsPassableFor reports whether mover's whole footprint fits at (x, y),
	// treating every entity except mover and ignore as an obstacle.
	IsPassableFor(mover *entity.EntityState, x, y int, ignore []entity.Handle) bool
}

// DefaultMaxIterations bounds the search when the finder has no cap of its own.
const DefaultMaxIterations = 20000

// Finder runs path searches. It keeps no state between calls, so every
// search sees the current obstacles.
type Finder struct {
	MaxIterations int
}

// New returns a finder with the default iteration cap.
func New() *Finder {
	return &Finder{MaxIterations: DefaultMaxIterations}
}

var dirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Find searches for a route that brings the center of mover's footprint
// within dist of (tx, ty). The returned waypoints exclude the start tile and
// end at the first tile that satisfies the goal; the target tile itself may
// be blocked. A mover that already satisfies the goal gets an empty path and
// true. Unreachable targets, or searches over the iteration cap, return false.
func (f *Finder) Find(g Grid, mover *entity.EntityState, ignore []entity.Handle, tx, ty, dist float64) ([]types.Point, bool) {
	w, h := g.Width(), g.Height()
	if w <= 0 || h <= 0 {
		return nil, false
	}
	halfW := float64(mover.Size.Width) / 2
	halfH := float64(mover.Size.Height) / 2
	goalDist := func(x, y int) float64 {
		return math.Hypot(float64(x)+halfW-tx, float64(y)+halfH-ty)
	}
	heuristic := func(x, y int) float64 {
		d := goalDist(x, y) - dist
		if d < 0 {
			return 0
		}
		return d
	}

	sx, sy := mover.Location.X, mover.Location.Y
	if goalDist(sx, sy) <= dist {
		return []types.Point{}, true
	}

	maxIter := f.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	idx := func(x, y int) int { return y*w + x }
	gScore := map[int]float64{idx(sx, sy): 0}
	cameFrom := map[int]int{}
	closed := map[int]bool{}

	open := &nodeHeap{}
	heap.Push(open, &node{x: sx, y: sy, f: heuristic(sx, sy)})

	for iter := 0; open.Len() > 0; iter++ {
		if iter >= maxIter {
			logger.Log.WithFields(logrus.Fields{
				"mover":  mover.Name(),
				"target": types.Point{X: int(tx), Y: int(ty)},
			}).Debug("Path search hit iteration cap")
			return nil, false
		}
		cur := heap.Pop(open).(*node)
		ci := idx(cur.x, cur.y)
		if closed[ci] {
			continue
		}
		closed[ci] = true

		if goalDist(cur.x, cur.y) <= dist {
			return reconstruct(cameFrom, ci, idx(sx, sy), w), true
		}

		for _, d := range dirs {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := idx(nx, ny)
			if closed[ni] {
				continue
			}
			if !g.IsPassableFor(mover, nx, ny, ignore) {
				continue
			}
			cost := 1.0
			if d[0] != 0 && d[1] != 0 {
				// no cutting corners past a blocked orthogonal neighbour
				if !g.IsPassableFor(mover, cur.x+d[0], cur.y, ignore) || !g.IsPassableFor(mover, cur.x, cur.y+d[1], ignore) {
					continue
				}
				cost = math.Sqrt2
			}
			tentative := gScore[ci] + cost
			if old, seen := gScore[ni]; seen && tentative >= old {
				continue
			}
			gScore[ni] = tentative
			cameFrom[ni] = ci
			heap.Push(open, &node{x: nx, y: ny, g: tentative, f: tentative + heuristic(nx, ny)})
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[int]int, end, start, w int) []types.Point {
	var path []types.Point
	for cur := end; cur != start; cur = cameFrom[cur] {
		path = append(path, types.Point{X: cur % w, Y: cur / w})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	x, y int
	g, f float64
}

// nodeHeap is a min-heap on f, ties broken towards the larger g so the
// search prefers nodes closer to the goal.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f == h[j].f {
		return h[i].g > h[j].g
	}
	return h[i].f < h[j].f
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
