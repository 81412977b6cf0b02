package charctrl_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
	"github.com/wrenfield/charctrl/internal/refphys"
)

// TestSetShapeAcceptsNonPenetratingShape covers the successful crouch/stand
// swap path. The character's center sits high enough that the taller
// standing capsule's feet just reach the ground rather than burying into
// it - the way a host repositions a character before standing up - so the
// swap is accepted and active contacts are refreshed against the new
// shape.
func TestSetShapeAcceptsNonPenetratingShape(t *testing.T) {
	world := refphys.NewWorld()
	world.AddBody(&refphys.Body{Shape: groundPlane(), Transform: geom.Identity(), Motion: host.MotionStatic})

	crouching := geom.Sphere{Radius: 0.5}
	vc := charctrl.New(mgl64.Vec3{0, 1, 0}, mgl64.QuatIdent(), crouching, world, world, world, charctrl.Config{})

	standing := geom.Capsule{Radius: 0.5, HalfHeight: 0.5}
	ok := vc.SetShape(standing, 0.05, host.Filters{})
	if !ok {
		t.Fatal("SetShape rejected a shape that does not penetrate the ground, want accepted")
	}
	if vc.Shape() != geom.Shape(standing) {
		t.Errorf("Shape() = %v, want the newly assigned standing capsule", vc.Shape())
	}
}

// TestSetShapeRejectsOverPenetratingShape covers the refusal path: a shape
// whose center sits below the ground plane penetrates far more than the
// allowed tolerance, so SetShape must refuse the swap and keep the old
// shape in place.
func TestSetShapeRejectsOverPenetratingShape(t *testing.T) {
	world := refphys.NewWorld()
	world.AddBody(&refphys.Body{Shape: groundPlane(), Transform: geom.Identity(), Motion: host.MotionStatic})

	original := geom.Sphere{Radius: 0.5}
	vc := charctrl.New(mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent(), original, world, world, world, charctrl.Config{})

	// A sphere twice the radius, still centered at y=0.5, now reaches 0.5
	// below the plane - far beyond any reasonable tolerance.
	oversized := geom.Sphere{Radius: 1.0}
	ok := vc.SetShape(oversized, 0.01, host.Filters{})
	if ok {
		t.Fatal("SetShape accepted a shape that deeply penetrates the ground, want refused")
	}
	if vc.Shape() != geom.Shape(original) {
		t.Errorf("Shape() = %v, want unchanged original sphere after refusal", vc.Shape())
	}
}

// TestSetShapeWithNoHostAssignsUnconditionally covers the documented §9
// construction-time escape hatch: with no host wired up, SetShape always
// succeeds and assigns the shape without querying contacts.
func TestSetShapeWithNoHostAssignsUnconditionally(t *testing.T) {
	original := geom.Sphere{Radius: 0.5}
	vc := charctrl.New(mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent(), original, nil, nil, nil, charctrl.Config{})

	replacement := geom.Sphere{Radius: 5.0}
	ok := vc.SetShape(replacement, 0, host.Filters{})
	if !ok {
		t.Fatal("SetShape with no host refused the swap, want unconditional acceptance")
	}
	if vc.Shape() != geom.Shape(replacement) {
		t.Errorf("Shape() = %v, want the assigned replacement sphere", vc.Shape())
	}
}
