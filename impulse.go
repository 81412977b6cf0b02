package charctrl

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/host"
)

const (
	impulseRestitutionDamping   = 0.9
	impulsePenetrationRate      = 0.4
)

// HandleContact runs the first time the solver actually engages a contact:
// it gives the listener a chance to veto the contact, and - if accepted,
// the body is dynamic, and the listener allows it - pushes that body with
// an impulse (§4.6). It returns false only when the listener rejects the
// contact.
//
// The listener is invoked with no body lock held (§5); only once it has
// accepted the contact do we lock the body (write lock, since we may apply
// an impulse) to read its dynamics and push it.
func HandleContact(vc *VirtualCharacter, contact *Contact, characterVelocity, gravity mgl64.Vec3, dt float64) bool {
	if vc.listener != nil {
		if !vc.listener.OnContactValidate(vc, contact.BodyID, contact.SubShapeID) {
			return false
		}
	}

	settings := DefaultContactSettings()
	if vc.listener != nil {
		vc.listener.OnContactAdded(vc, contact.BodyID, contact.SubShapeID, contact.Position, contact.Normal, &settings)
	}
	contact.CanPushCharacter = settings.CanPushCharacter

	if contact.MotionType != host.MotionDynamic || !settings.CanReceiveImpulses || vc.locks == nil || vc.bodies == nil {
		return true
	}

	ref, unlock, ok := vc.locks.WriteLock(contact.BodyID)
	if !ok {
		return true // body vanished; nothing to push, contact still accepted
	}
	defer unlock()

	applyPushImpulse(vc, contact, ref, characterVelocity, gravity, dt)
	return true
}

func applyPushImpulse(vc *VirtualCharacter, contact *Contact, ref host.BodyRef, characterVelocity, gravity mgl64.Vec3, dt float64) {
	contactVelocity := ref.GetPointVelocity(contact.Position)
	relativeVelocity := characterVelocity.Sub(contactVelocity)
	projected := relativeVelocity.Dot(contact.Normal)

	deltaV := -projected*impulseRestitutionDamping - math.Min(contact.Distance, 0)*impulsePenetrationRate/dt
	if deltaV < 0 {
		return // separating already, nothing to push
	}

	com := ref.GetCenterOfMassPosition()
	jacobian := contact.Position.Sub(com).Cross(contact.Normal)
	invInertia := ref.GetInverseInertia()
	invEffMass := invInertia.Mul3x1(jacobian).Dot(jacobian) + ref.GetInverseMass()
	if invEffMass < 1e-12 {
		return
	}

	impulseMag := deltaV / invEffMass
	if maxImpulse := vc.maxStrength * dt; impulseMag > maxImpulse {
		impulseMag = maxImpulse
	}

	worldImpulse := contact.Normal.Mul(-impulseMag)

	gLen := gravity.Len()
	if gLen > 1e-9 {
		if ng := contact.Normal.Dot(gravity); ng < 0 {
			weightShare := -(vc.mass * ng / gLen) * dt
			worldImpulse = worldImpulse.Add(gravity.Mul(weightShare))
		}
	}

	vc.bodies.AddImpulse(contact.BodyID, worldImpulse, contact.Position)
}
