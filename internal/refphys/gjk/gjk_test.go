package gjk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// boxSupport returns a Support for an axis-aligned box centered at center
// with the given half-extents.
func boxSupport(center, half mgl64.Vec3) Support {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		sign := func(v float64) float64 {
			if v >= 0 {
				return 1
			}
			return -1
		}
		return mgl64.Vec3{
			center.X() + sign(dir.X())*half.X(),
			center.Y() + sign(dir.Y())*half.Y(),
			center.Z() + sign(dir.Z())*half.Z(),
		}
	}
}

func sphereSupport(center mgl64.Vec3, radius float64) Support {
	return func(dir mgl64.Vec3) mgl64.Vec3 {
		if dir.LenSqr() < 1e-16 {
			return center
		}
		return center.Add(dir.Normalize().Mul(radius))
	}
}

func TestRunDetectsOverlappingBoxes(t *testing.T) {
	a := boxSupport(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := boxSupport(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1})

	var simplex Simplex
	if !Run(a, b, &simplex) {
		t.Error("Run = false, want true for overlapping boxes (each 2 units wide, centers 1.5 apart)")
	}
}

func TestRunRejectsSeparatedBoxes(t *testing.T) {
	a := boxSupport(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := boxSupport(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{1, 1, 1})

	var simplex Simplex
	if Run(a, b, &simplex) {
		t.Error("Run = true, want false for boxes 3 units apart with combined half-width 2")
	}
}

func TestRunDetectsTouchingSpheres(t *testing.T) {
	a := sphereSupport(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereSupport(mgl64.Vec3{1.9, 0, 0}, 1)

	var simplex Simplex
	if !Run(a, b, &simplex) {
		t.Error("Run = false, want true for spheres overlapping by 0.1 (radii 1+1, centers 1.9 apart)")
	}
}

func TestRunRejectsSeparatedSpheres(t *testing.T) {
	a := sphereSupport(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereSupport(mgl64.Vec3{3, 0, 0}, 1)

	var simplex Simplex
	if Run(a, b, &simplex) {
		t.Error("Run = true, want false for spheres 3 apart with combined radius 2")
	}
}

func TestMinkowskiSupportIsDifferenceOfSupports(t *testing.T) {
	a := boxSupport(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := boxSupport(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1})

	got := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
	// A zero direction component picks the + half-extent, so a's support
	// along +x is (1,1,1) and b's support along -x is (1,1,1);
	// Minkowski support = a(+x) - b(-x) = (1,1,1) - (1,1,1) = (0,0,0).
	want := mgl64.Vec3{0, 0, 0}
	if got.Sub(want).Len() > 1e-9 {
		t.Errorf("MinkowskiSupport = %v, want %v", got, want)
	}
}
