// Package gjk implements the Gilbert-Johnson-Keerthi algorithm for convex
// overlap detection, generalized away from any particular body or shape
// type: callers supply a Support function per side of the pair, so the
// same simplex-refinement code serves the reference host's bodies, the
// character's own query shape, or a bare unit test fixture.
//
// GJK detects whether two convex shapes overlap by testing whether their
// Minkowski difference contains the origin. The algorithm builds a simplex
// incrementally, converging toward the origin in typically 3-6 iterations.
package gjk

import "github.com/go-gl/mathgl/mgl64"

// Support returns the point of a convex shape furthest along direction, in
// whatever space the caller wants GJK to operate (usually world space: the
// closure already bakes in the shape's transform).
type Support func(direction mgl64.Vec3) mgl64.Vec3

// Simplex holds the 1-4 points of the Minkowski difference GJK has found so
// far. Size progression: 1 point -> line -> triangle -> tetrahedron.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

// MinkowskiSupport computes a support point of A-B: furthest(A, dir) minus
// furthest(B, -dir).
func MinkowskiSupport(a, b Support, direction mgl64.Vec3) mgl64.Vec3 {
	return a(direction).Sub(b(direction.Mul(-1)))
}

const maxIterations = 32

// Run performs GJK between two convex shapes described by their support
// functions, leaving the final simplex in place (a tetrahedron containing
// the origin on overlap, otherwise whatever feature was closest to it -
// callers doing a distance query can use that leftover simplex directly).
func Run(a, b Support, simplex *Simplex) bool {
	direction := mgl64.Vec3{1, 0, 0}
	if p0 := MinkowskiSupport(a, b, direction); p0.LenSqr() > 1e-16 {
		direction = p0.Mul(-1)
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return ao.LenSqr() < 1e-8
	}

	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		return true
	}
	*direction = abPerp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.LenSqr() < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}
	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}
	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}
	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}
	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}
	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}
