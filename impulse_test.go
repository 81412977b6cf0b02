package charctrl_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
	"github.com/wrenfield/charctrl/internal/refphys"
)

func newPushTestCharacter(world *refphys.World, maxStrength float64) *charctrl.VirtualCharacter {
	shape := geom.Sphere{Radius: 0.5}
	return charctrl.New(mgl64.Vec3{0, 0.5, 0}, mgl64.QuatIdent(), shape, world, world, world,
		charctrl.Config{MaxStrength: maxStrength, Mass: 1})
}

func TestHandleContactPushesDynamicBodyTowardCharacterVelocity(t *testing.T) {
	world := refphys.NewWorld()
	crateID := world.AddBody(&refphys.Body{
		Shape:       geom.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Transform:   geom.Transform{Position: mgl64.Vec3{1, 0.5, 0}, Rotation: mgl64.QuatIdent()},
		Motion:      host.MotionDynamic,
		InverseMass: 1.0 / 10.0,
	})

	vc := newPushTestCharacter(world, 1000)
	contact := &charctrl.Contact{
		Position:   mgl64.Vec3{0.5, 0.5, 0},
		Normal:     mgl64.Vec3{-1, 0, 0}, // points out of the crate, toward the character
		Distance:   -0.02,
		BodyID:     crateID,
		MotionType: host.MotionDynamic,
	}

	accepted := charctrl.HandleContact(vc, contact, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{0, -9.81, 0}, 1.0/60.0)
	if !accepted {
		t.Fatal("HandleContact rejected the contact, want accepted (no listener installed)")
	}

	crate := world.Body(crateID)
	if crate.Velocity.X() <= 0 {
		t.Errorf("crate velocity.x = %v, want positive (pushed along character's approach)", crate.Velocity.X())
	}
}

func TestHandleContactClampsToMaxStrength(t *testing.T) {
	world := refphys.NewWorld()
	crateID := world.AddBody(&refphys.Body{
		Shape:       geom.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Transform:   geom.Transform{Position: mgl64.Vec3{1, 0.5, 0}, Rotation: mgl64.QuatIdent()},
		Motion:      host.MotionDynamic,
		InverseMass: 1.0 / 10.0,
	})

	const maxStrength = 5.0
	const dt = 1.0 / 60.0
	vc := newPushTestCharacter(world, maxStrength)
	contact := &charctrl.Contact{
		Position:   mgl64.Vec3{0.5, 0.5, 0},
		Normal:     mgl64.Vec3{-1, 0, 0},
		Distance:   -0.02,
		BodyID:     crateID,
		MotionType: host.MotionDynamic,
	}

	// A large closing velocity would demand far more impulse than
	// maxStrength*dt allows.
	charctrl.HandleContact(vc, contact, mgl64.Vec3{500, 0, 0}, mgl64.Vec3{}, dt)

	crate := world.Body(crateID)
	maxSpeed := maxStrength * dt * crate.InverseMass
	if crate.Velocity.X() > maxSpeed+1e-6 {
		t.Errorf("crate velocity.x = %v, exceeds strength-clamped max %v", crate.Velocity.X(), maxSpeed)
	}
}

func TestHandleContactSkipsImpulseWhenAlreadySeparating(t *testing.T) {
	world := refphys.NewWorld()
	crateID := world.AddBody(&refphys.Body{
		Shape:       geom.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Transform:   geom.Transform{Position: mgl64.Vec3{1, 0.5, 0}, Rotation: mgl64.QuatIdent()},
		Motion:      host.MotionDynamic,
		InverseMass: 1.0 / 10.0,
	})

	vc := newPushTestCharacter(world, 1000)
	contact := &charctrl.Contact{
		Position:   mgl64.Vec3{0.5, 0.5, 0},
		Normal:     mgl64.Vec3{-1, 0, 0},
		Distance:   0.05, // not penetrating
		BodyID:     crateID,
		MotionType: host.MotionDynamic,
	}

	// Character moving away from the crate (-x), so relative velocity along
	// the normal is already separating.
	charctrl.HandleContact(vc, contact, mgl64.Vec3{-3, 0, 0}, mgl64.Vec3{}, 1.0/60.0)

	crate := world.Body(crateID)
	if crate.Velocity.LenSqr() != 0 {
		t.Errorf("crate velocity = %v, want unchanged (character separating)", crate.Velocity)
	}
}

func TestHandleContactIgnoresStaticBody(t *testing.T) {
	world := refphys.NewWorld()
	wallID := world.AddBody(&refphys.Body{
		Shape:     geom.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Transform: geom.Transform{Position: mgl64.Vec3{1, 0.5, 0}, Rotation: mgl64.QuatIdent()},
		Motion:    host.MotionStatic,
	})

	vc := newPushTestCharacter(world, 1000)
	contact := &charctrl.Contact{
		Position:   mgl64.Vec3{0.5, 0.5, 0},
		Normal:     mgl64.Vec3{-1, 0, 0},
		Distance:   -0.02,
		BodyID:     wallID,
		MotionType: host.MotionStatic,
	}

	accepted := charctrl.HandleContact(vc, contact, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}, 1.0/60.0)
	if !accepted {
		t.Error("HandleContact rejected a static-body contact, want accepted")
	}
}

type rejectingListener struct{}

func (rejectingListener) OnContactValidate(*charctrl.VirtualCharacter, host.BodyID, host.SubShapeID) bool {
	return false
}
func (rejectingListener) OnContactAdded(*charctrl.VirtualCharacter, host.BodyID, host.SubShapeID, mgl64.Vec3, mgl64.Vec3, *charctrl.ContactSettings) {
}

func TestHandleContactListenerCanVeto(t *testing.T) {
	world := refphys.NewWorld()
	crateID := world.AddBody(&refphys.Body{
		Shape:       geom.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		Transform:   geom.Transform{Position: mgl64.Vec3{1, 0.5, 0}, Rotation: mgl64.QuatIdent()},
		Motion:      host.MotionDynamic,
		InverseMass: 1.0 / 10.0,
	})

	vc := newPushTestCharacter(world, 1000)
	vc.SetListener(rejectingListener{})
	contact := &charctrl.Contact{
		Position:   mgl64.Vec3{0.5, 0.5, 0},
		Normal:     mgl64.Vec3{-1, 0, 0},
		Distance:   -0.02,
		BodyID:     crateID,
		MotionType: host.MotionDynamic,
	}

	accepted := charctrl.HandleContact(vc, contact, mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}, 1.0/60.0)
	if accepted {
		t.Error("HandleContact accepted a contact the listener rejected")
	}

	crate := world.Body(crateID)
	if crate.Velocity.LenSqr() != 0 {
		t.Errorf("crate velocity = %v, want unchanged (contact was vetoed)", crate.Velocity)
	}
}
