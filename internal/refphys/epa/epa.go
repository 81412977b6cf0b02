// Package epa implements the Expanding Polytope Algorithm, run after gjk.Run
// reports an overlap to recover a penetration depth and separating normal
// from the tetrahedron GJK left behind.
package epa

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/internal/refphys/gjk"
)

const (
	maxIterations = 32
	tolerance     = 1e-4
)

type face struct {
	a, b, c int
	normal  mgl64.Vec3
	dist    float64
}

// Run expands simplex (a GJK tetrahedron known to contain the origin) until
// it finds the polytope face closest to the origin, returning a normal
// pointing from B out toward A - the same convention Contact.Normal uses -
// and the penetration depth along it. That face's outward normal in A-B
// space points from A toward B, so it is returned negated. A degenerate
// simplex (GJK terminated early on a touching/near-zero case), or a
// polytope left with no faces, falls back to a coarse estimate rather than
// failing the caller.
func Run(a, b gjk.Support, simplex *gjk.Simplex) (normal mgl64.Vec3, depth float64) {
	if simplex.Count < 4 {
		n, d := degenerate(a, b, simplex)
		return n.Mul(-1), d
	}

	verts := []mgl64.Vec3{simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]}
	faces := []face{
		newFace(verts, 0, 1, 2),
		newFace(verts, 0, 3, 1),
		newFace(verts, 0, 2, 3),
		newFace(verts, 1, 3, 2),
	}

	for iter := 0; iter < maxIterations; iter++ {
		if len(faces) == 0 {
			break
		}

		closest := 0
		for i := 1; i < len(faces); i++ {
			if faces[i].dist < faces[closest].dist {
				closest = i
			}
		}
		f := faces[closest]

		support := gjk.MinkowskiSupport(a, b, f.normal)
		d := support.Dot(f.normal)

		if d-f.dist < tolerance {
			return f.normal.Mul(-1), f.dist
		}

		newIdx := len(verts)
		verts = append(verts, support)
		faces = expandPolytope(verts, faces, newIdx)
	}

	if len(faces) == 0 {
		n, d := degenerate(a, b, simplex)
		return n.Mul(-1), d
	}
	f := faces[0]
	for _, cand := range faces[1:] {
		if cand.dist < f.dist {
			f = cand
		}
	}
	return f.normal.Mul(-1), f.dist
}

func newFace(verts []mgl64.Vec3, a, b, c int) face {
	ab := verts[b].Sub(verts[a])
	ac := verts[c].Sub(verts[a])
	n := ab.Cross(ac)
	if n.LenSqr() < 1e-16 {
		return face{a: a, b: b, c: c, normal: mgl64.Vec3{0, 1, 0}, dist: math.Inf(1)}
	}
	n = n.Normalize()
	dist := n.Dot(verts[a])
	if dist < 0 {
		n = n.Mul(-1)
		dist = -dist
	}
	return face{a: a, b: b, c: c, normal: n, dist: dist}
}

// expandPolytope removes every face the new point can see (its normal faces
// the point) and stitches a fan of new faces connecting the point to the
// resulting hole's boundary edges.
func expandPolytope(verts []mgl64.Vec3, faces []face, point int) []face {
	type edge struct{ a, b int }
	var kept []face
	edgeCount := map[edge]int{}

	addEdge := func(a, b int) {
		e := edge{a, b}
		if a > b {
			e = edge{b, a}
		}
		edgeCount[e]++
	}

	for _, f := range faces {
		if f.normal.Dot(verts[point].Sub(verts[f.a])) > 0 {
			addEdge(f.a, f.b)
			addEdge(f.b, f.c)
			addEdge(f.c, f.a)
			continue
		}
		kept = append(kept, f)
	}

	// Boundary edges of the hole are the ones that appeared in exactly one
	// removed face's winding; an edge shared by two removed faces is
	// interior to the hole and must not get a new face.
	seen := map[edge]bool{}
	for _, f := range faces {
		if f.normal.Dot(verts[point].Sub(verts[f.a])) <= 0 {
			continue
		}
		for _, e := range [][2]int{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			key := edge{e[0], e[1]}
			if key.a > key.b {
				key = edge{key.b, key.a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			if edgeCount[key] == 1 {
				kept = append(kept, newFace(verts, e[0], e[1], point))
			}
		}
	}

	return kept
}

// degenerate handles the rare case where GJK reports overlap without a full
// tetrahedron (shapes touching at a vertex or edge). The estimate is coarse
// but the contact it produces still satisfies the "non-blocking on failure"
// contract: a direction and a small positive depth, never a crash.
//
// The returned direction has the same sign as the main loop's face normal
// before Run negates it: the direction of the Minkowski-space point nearest
// the origin, which points from A toward B when the shapes overlap. Run
// flips it, like the face normal, to the B-toward-A convention.
func degenerate(a, b gjk.Support, simplex *gjk.Simplex) (mgl64.Vec3, float64) {
	if simplex.Count >= 2 {
		p := simplex.Points[0]
		best := p.LenSqr()
		for i := 1; i < simplex.Count; i++ {
			if l := simplex.Points[i].LenSqr(); l < best {
				best = l
				p = simplex.Points[i]
			}
		}
		if best < 1e-16 {
			return mgl64.Vec3{0, 1, 0}, 0.01
		}
		return p.Normalize(), math.Sqrt(best)
	}

	probe := a(mgl64.Vec3{0, 1, 0}).Sub(b(mgl64.Vec3{0, -1, 0}))
	if probe.LenSqr() < 1e-16 {
		return mgl64.Vec3{0, 1, 0}, 0.01
	}
	return probe.Normalize(), 0.01
}
