package charctrl

import "github.com/go-gl/mathgl/mgl64"

// markRestContacts flags contacts collected by a stationary overlap query
// (RefreshContacts, SetShape) as collided when they are both touching
// (within CollisionTolerance) and closing - the character's velocity
// relative to the other body is not moving it away along the normal.
// Update instead derives HadCollision from whether the solver actually
// engaged the contact while sliding (§4.8); this is the equivalent notion
// for callers that never ran the solver.
func markRestContacts(contacts []Contact, characterVelocity mgl64.Vec3) {
	for i := range contacts {
		c := &contacts[i]
		touching := c.Distance <= CollisionTolerance
		relative := characterVelocity.Sub(c.LinearVelocity)
		closing := relative.Dot(c.Normal) <= 0
		c.HadCollision = touching && closing
	}
}

// recomputeSupportingContact scans activeContacts for the one most aligned
// with world-up among those the character actually collided with, and
// derives GroundState from it (§4.8).
func (vc *VirtualCharacter) recomputeSupportingContact() {
	vc.supportingContact = -1
	best := -1.0

	for i, c := range vc.activeContacts {
		if !c.HadCollision {
			continue
		}
		// A ceiling or overhang's downward-facing normal can never support
		// the character - §8 requires supporting_contact.normal.y >= 0.
		ny := c.Normal.Y()
		if ny < 0 {
			continue
		}
		if ny > best {
			best = ny
			vc.supportingContact = i
		}
	}

	switch {
	case vc.supportingContact < 0:
		vc.groundState = InAir
	case best >= 0 && best < vc.cosMaxSlopeAngle:
		vc.groundState = Sliding
	default:
		vc.groundState = OnGround
	}
}
