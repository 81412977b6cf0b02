package refphys

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// cellKey identifies one cell of the uniform broad-phase grid.
type cellKey struct{ x, y, z int }

// spatialGrid is a uniform hashed grid used to narrow down which bodies a
// query shape's AABB can possibly touch before paying for GJK/EPA against
// each of them. It is rebuilt per query rather than incrementally
// maintained across a running simulation: refphys backs this module's own
// tests, not a stepping engine, so query-time rebuild trades a little CPU
// for not having to track body movement between queries.
type spatialGrid struct {
	cellSize  float64
	cells     map[cellKey][]host.BodyID
	unbounded []host.BodyID // bodies whose AABB span dwarfs the grid (e.g. infinite planes)
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{cellSize: cellSize, cells: make(map[cellKey][]host.BodyID)}
}

// maxCellSpan caps how many cells one body's insertion may touch along an
// axis; a plane's practically-infinite bounds would otherwise turn Insert
// into a multi-billion-iteration loop. Anything wider goes on the
// unbounded list and is considered a candidate for every query instead.
const maxCellSpan = 64

func (g *spatialGrid) insert(id host.BodyID, bounds geom.AABB) {
	min := g.worldToCell(bounds.Min)
	max := g.worldToCell(bounds.Max)

	if max.x-min.x > maxCellSpan || max.y-min.y > maxCellSpan || max.z-min.z > maxCellSpan {
		g.unbounded = append(g.unbounded, id)
		return
	}

	for x := min.x; x <= max.x; x++ {
		for y := min.y; y <= max.y; y++ {
			for z := min.z; z <= max.z; z++ {
				key := cellKey{x, y, z}
				g.cells[key] = append(g.cells[key], id)
			}
		}
	}
}

// query returns the (deduplicated) set of body IDs whose cells overlap
// bounds, plus every unbounded body.
func (g *spatialGrid) query(bounds geom.AABB) []host.BodyID {
	min := g.worldToCell(bounds.Min)
	max := g.worldToCell(bounds.Max)

	seen := map[host.BodyID]bool{}
	out := append([]host.BodyID{}, g.unbounded...)
	for _, id := range g.unbounded {
		seen[id] = true
	}

	clampSpan := func(lo, hi int) (int, int) {
		if hi-lo > maxCellSpan {
			hi = lo + maxCellSpan
		}
		return lo, hi
	}
	min.x, max.x = clampSpan(min.x, max.x)
	min.y, max.y = clampSpan(min.y, max.y)
	min.z, max.z = clampSpan(min.z, max.z)

	for x := min.x; x <= max.x; x++ {
		for y := min.y; y <= max.y; y++ {
			for z := min.z; z <= max.z; z++ {
				for _, id := range g.cells[cellKey{x, y, z}] {
					if !seen[id] {
						seen[id] = true
						out = append(out, id)
					}
				}
			}
		}
	}
	return out
}

func (g *spatialGrid) worldToCell(p mgl64.Vec3) cellKey {
	return cellKey{
		x: int(math.Floor(p.X() / g.cellSize)),
		y: int(math.Floor(p.Y() / g.cellSize)),
		z: int(math.Floor(p.Z() / g.cellSize)),
	}
}
