package charctrl

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// Update is the one call hosts make every frame (§2). It runs a bounded
// loop of move-iterations, each of which rediscovers contacts at the
// current candidate position, prunes conflicts, derives constraints,
// solves them for a displacement, verifies that displacement with a sweep,
// and advances. Gravity is folded into velocity once, up front, so a
// resting character immediately generates a downward-pressing contact the
// solver can cancel rather than falling for a frame before noticing the
// ground.
//
// Δt <= 0 is a no-op: the character's state - position, velocity, active
// contacts - is left untouched (§8 idempotence property).
func (vc *VirtualCharacter) Update(dt float64, gravity mgl64.Vec3, filters host.Filters) {
	if dt <= 0 {
		return
	}

	startPosition := vc.position
	velocity := vc.linearVelocity.Add(gravity.Mul(dt))

	var contacts []Contact
	var ignored []IgnoredContact

	timeRemaining := dt
	for iter := 0; iter < MaxCollisionIterations && timeRemaining >= MinTimeRemaining; iter++ {
		movementDirection := geom.NormalizedOr(velocity, mgl64.Vec3{})

		raw := GetContactsAtPosition(vc, vc.position, movementDirection, vc.shape, filters)
		contacts, ignored = RemoveConflictingContacts(raw)

		constraints := DetermineConstraints(contacts, velocity, vc.cosMaxSlopeAngle, vc.penetrationRecoverySpeed)

		newVelocity, displacement, timeSimulated := SolveConstraints(vc, contacts, constraints, velocity, gravity, dt, timeRemaining)

		if fraction, ok := GetFirstContactForSweep(vc, vc.position, displacement, vc.shape, ignored, filters); ok {
			displacement = displacement.Mul(fraction)
			timeSimulated *= fraction
		}

		vc.position = vc.position.Add(displacement)
		timeRemaining -= timeSimulated
		velocity = newVelocity

		if timeSimulated < MinTimeRemaining {
			// No progress this iteration; further iterations would just
			// repeat the same dead end against an unchanged position.
			break
		}
	}

	vc.activeContacts = contacts
	vc.recomputeSupportingContact()

	vc.linearVelocity = vc.position.Sub(startPosition).Mul(1.0 / dt)
}

// RefreshContacts rebuilds active_contacts at the character's current pose
// without moving it (§6). Used by hosts that want up-to-date contact
// information between Updates, e.g. right after an external teleport.
func (vc *VirtualCharacter) RefreshContacts(filters host.Filters) {
	contacts := GetContactsAtPosition(vc, vc.position, mgl64.Vec3{}, vc.shape, filters)
	markRestContacts(contacts, vc.linearVelocity)
	vc.activeContacts = contacts
	vc.recomputeSupportingContact()
}
