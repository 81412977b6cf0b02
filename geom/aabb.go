package geom

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned bounding box used by the broad phase.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint reports whether point lies inside the box (inclusive).
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps reports whether two AABBs intersect on all three axes.
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Expanded returns the AABB grown by margin on every side. The reference
// host in internal/refphys uses this to pad the query shape's bounds by the
// query's maximum separation distance before its broad phase.
func (a AABB) Expanded(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{
			minf(a.Min.X(), b.Min.X()),
			minf(a.Min.Y(), b.Min.Y()),
			minf(a.Min.Z(), b.Min.Z()),
		},
		Max: mgl64.Vec3{
			maxf(a.Max.X(), b.Max.X()),
			maxf(a.Max.Y(), b.Max.Y()),
			maxf(a.Max.Z(), b.Max.Z()),
		},
	}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
