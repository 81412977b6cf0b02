package geom

import "math"

import "github.com/go-gl/mathgl/mgl64"

// Shape is the read-only contract the character core and its host
// collaborator both query. Shapes are shared-immutable: many characters or
// bodies may reference the same shape instance, and nothing here ever
// mutates one. Implementations must be safe for concurrent read access.
type Shape interface {
	// Support returns the point of the shape, in the shape's local frame,
	// furthest along direction. This is the only primitive GJK/EPA need and
	// the one the reference host's overlap and cast queries call.
	Support(direction mgl64.Vec3) mgl64.Vec3

	// CenterOfMass is the local-space offset from the shape's origin to its
	// center of mass. The character adds this (rotated) to its position
	// when building the world transform it queries the host with.
	CenterOfMass() mgl64.Vec3

	// LocalBounds returns the local-space AABB of the shape, before any
	// transform is applied.
	LocalBounds() AABB

	// ContactFace returns, in local space, the vertices of the feature
	// (face, edge or point) most aligned with direction. Contacts in this
	// module carry a single point each, and nothing here calls it.
	ContactFace(direction mgl64.Vec3) []mgl64.Vec3
}

// WorldBounds transforms a shape's local bounds into world space by
// conservatively enclosing its rotated corner set.
func WorldBounds(s Shape, transform Transform) AABB {
	local := s.LocalBounds()
	corners := [8]mgl64.Vec3{
		{local.Min.X(), local.Min.Y(), local.Min.Z()},
		{local.Max.X(), local.Min.Y(), local.Min.Z()},
		{local.Min.X(), local.Max.Y(), local.Min.Z()},
		{local.Max.X(), local.Max.Y(), local.Min.Z()},
		{local.Min.X(), local.Min.Y(), local.Max.Z()},
		{local.Max.X(), local.Min.Y(), local.Max.Z()},
		{local.Min.X(), local.Max.Y(), local.Max.Z()},
		{local.Max.X(), local.Max.Y(), local.Max.Z()},
	}

	world := transform.TransformPoint(corners[0])
	bounds := AABB{Min: world, Max: world}
	for _, c := range corners[1:] {
		w := transform.TransformPoint(c)
		bounds = bounds.Union(AABB{Min: w, Max: w})
	}
	return bounds
}

// SupportWorld computes the support point of s in world space, given the
// world transform under which s is placed.
func SupportWorld(s Shape, transform Transform, direction mgl64.Vec3) mgl64.Vec3 {
	local := transform.InverseTransformDirection(direction)
	return transform.TransformPoint(s.Support(local))
}

// Box is an axis-aligned (in local space) box defined by half-extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b Box) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (b Box) LocalBounds() AABB {
	return AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
}

func (b Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}
	return mgl64.Vec3{hx, hy, hz}
}

func (b Box) ContactFace(direction mgl64.Vec3) []mgl64.Vec3 {
	dir := direction.Normalize()
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	faces := []struct {
		normal   mgl64.Vec3
		vertices []mgl64.Vec3
	}{
		{mgl64.Vec3{1, 0, 0}, []mgl64.Vec3{{hx, -hy, -hz}, {hx, -hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{mgl64.Vec3{-1, 0, 0}, []mgl64.Vec3{{-hx, -hy, hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {-hx, hy, hz}}},
		{mgl64.Vec3{0, 1, 0}, []mgl64.Vec3{{-hx, hy, -hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}}},
		{mgl64.Vec3{0, -1, 0}, []mgl64.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, -hy, -hz}, {-hx, -hy, -hz}}},
		{mgl64.Vec3{0, 0, 1}, []mgl64.Vec3{{-hx, -hy, hz}, {-hx, hy, hz}, {hx, hy, hz}, {hx, -hy, hz}}},
		{mgl64.Vec3{0, 0, -1}, []mgl64.Vec3{{hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz}, {-hx, -hy, -hz}}},
	}

	best := -math.MaxFloat64
	var bestFace []mgl64.Vec3
	for _, f := range faces {
		if d := dir.Dot(f.normal); d > best {
			best = d
			bestFace = f.vertices
		}
	}
	return bestFace
}

// Volume returns the box's volume, used by callers computing mass.
func (b Box) Volume() float64 {
	return 8 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
}

// Sphere is a ball of the given radius centered on the shape origin.
type Sphere struct {
	Radius float64
}

func (s Sphere) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (s Sphere) LocalBounds() AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: r.Mul(-1), Max: r}
}

func (s Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{0, s.Radius, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s Sphere) ContactFace(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{s.Support(direction)}
}

func (s Sphere) Volume() float64 {
	return (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
}

// Capsule is a cylinder of the given radius capped by two hemispheres,
// whose axis runs along local Y between +-HalfHeight. This is the shape the
// reference character uses: it sweeps and slides cleanly over ledges the
// way a sphere does, but still presents a cylindrical silhouette for
// standing on slopes.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (c Capsule) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (c Capsule) LocalBounds() AABB {
	r := c.Radius
	return AABB{
		Min: mgl64.Vec3{-r, -(c.HalfHeight + r), -r},
		Max: mgl64.Vec3{r, c.HalfHeight + r, r},
	}
}

func (c Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{0, c.HalfHeight + c.Radius, 0}
	}
	d := direction.Normalize()
	center := mgl64.Vec3{0, c.HalfHeight, 0}
	if d.Y() < 0 {
		center = mgl64.Vec3{0, -c.HalfHeight, 0}
	}
	return center.Add(d.Mul(c.Radius))
}

func (c Capsule) ContactFace(direction mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{c.Support(direction)}
}

func (c Capsule) Volume() float64 {
	cylinder := math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	caps := (4.0 / 3.0) * math.Pi * c.Radius * c.Radius * c.Radius
	return cylinder + caps
}

// Plane is a static, infinite half-space: points p with Normal.Dot(p)+Distance<0
// are inside the plane's solid side. Normal must be a unit vector.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

func (p Plane) CenterOfMass() mgl64.Vec3 { return mgl64.Vec3{} }

func (p Plane) LocalBounds() AABB {
	const half = 1e4
	const thickness = 1.0
	point := p.Normal.Mul(-p.Distance)
	min := point.Sub(p.Normal.Mul(thickness))
	max := point

	abs := mgl64.Vec3{math.Abs(p.Normal.X()), math.Abs(p.Normal.Y()), math.Abs(p.Normal.Z())}
	for axis := 0; axis < 3; axis++ {
		if abs[axis] < 0.999 {
			min[axis] = -half
			max[axis] = half
		}
	}
	lo, hi := min, max
	for axis := 0; axis < 3; axis++ {
		if lo[axis] > hi[axis] {
			lo[axis], hi[axis] = hi[axis], lo[axis]
		}
	}
	return AABB{Min: lo, Max: hi}
}

func (p Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const half = 1e4
	t1, t2 := TangentBasis(p.Normal)
	planePoint := p.Normal.Mul(-p.Distance)

	s := planePoint
	if direction.Dot(t1) < 0 {
		s = s.Sub(t1.Mul(half))
	} else {
		s = s.Add(t1.Mul(half))
	}
	if direction.Dot(t2) < 0 {
		s = s.Sub(t2.Mul(half))
	} else {
		s = s.Add(t2.Mul(half))
	}
	if direction.Dot(p.Normal) < 0 {
		s = s.Sub(p.Normal.Mul(half))
	}
	return s
}

func (p Plane) ContactFace(direction mgl64.Vec3) []mgl64.Vec3 {
	t1, t2 := TangentBasis(p.Normal)
	const size = 1e3
	planePoint := p.Normal.Mul(-p.Distance)
	return []mgl64.Vec3{
		planePoint.Sub(t1.Mul(size)).Sub(t2.Mul(size)),
		planePoint.Sub(t1.Mul(size)).Add(t2.Mul(size)),
		planePoint.Add(t1.Mul(size)).Add(t2.Mul(size)),
		planePoint.Add(t1.Mul(size)).Sub(t2.Mul(size)),
	}
}

// TangentBasis returns two unit vectors orthogonal to normal and to each other.
func TangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		t1 = mgl64.Vec3{0, 1, 0}
	} else {
		t1 = mgl64.Vec3{1, 0, 0}
	}
	t1 = t1.Sub(normal.Mul(t1.Dot(normal))).Normalize()
	t2 := normal.Cross(t1).Normalize()
	return t1, t2
}

// NormalizedOr returns v normalized, or fallback if v is (near) the zero
// vector. Mirrors the reference controller's guard against degenerate
// penetration axes collapsing to zero: package charctrl passes a zero
// fallback, so such a contact gets a zero normal, which its constraint
// derivation treats as non-blocking.
func NormalizedOr(v mgl64.Vec3, fallback mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < 1e-16 {
		return fallback
	}
	return v.Normalize()
}
