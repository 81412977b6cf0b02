package charctrl

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is a half-space (Normal, SignedDistance) the character must not
// cross: SignedDistance is the gap measured at the character's position
// when the contact was generated, and Remaining tracks how much of that
// gap is left after moving by some displacement since then.
type Plane struct {
	Normal         mgl64.Vec3
	SignedDistance float64
}

// Remaining returns the gap left to this plane after moving by
// displacement: it shrinks as the character moves against Normal and
// grows as it moves along Normal.
func (p Plane) Remaining(displacement mgl64.Vec3) float64 {
	return p.SignedDistance + p.Normal.Dot(displacement)
}

// Constraint is a planar velocity constraint derived from one Contact
// (§4.3). Its lifetime is bounded by the SolveConstraints call that
// produced it; ContactIndex is a non-owning back-reference into whatever
// slice holds the source contacts.
type Constraint struct {
	ContactIndex   int // index into the slice DetermineConstraints was given
	LinearVelocity mgl64.Vec3
	Plane          Plane

	// Scratch fields the solver recomputes every iteration.
	ProjectedVelocity float64
	TOI               float64
}

// DetermineConstraints converts contacts into planar velocity constraints
// the solver can slide against (§4.3). Contacts the character is already
// moving away from produce no constraint. Contacts on too-steep-to-climb
// slopes produce a second, horizontal-only constraint so the character can
// slide down them but never ascend.
func DetermineConstraints(contacts []Contact, characterVelocity mgl64.Vec3, cosMaxSlopeAngle, penetrationRecoverySpeed float64) []Constraint {
	var constraints []Constraint

	for i := range contacts {
		c := &contacts[i]
		if c.Normal.LenSqr() < 1e-16 {
			continue // degenerate penetration axis, never blocking
		}

		contactVelocity := c.LinearVelocity
		if c.Distance < 0 {
			contactVelocity = contactVelocity.Sub(c.Normal.Mul(c.Distance * penetrationRecoverySpeed))
		}

		relative := characterVelocity.Sub(contactVelocity)
		if c.Normal.Dot(relative) >= 0 {
			continue // moving away from this contact
		}

		constraints = append(constraints, Constraint{
			ContactIndex:   i,
			LinearVelocity: contactVelocity,
			Plane:          Plane{Normal: c.Normal, SignedDistance: c.Distance},
		})

		if cosMaxSlopeAngle < 0.999 {
			ny := c.Normal.Y()
			if ny >= 0 && ny < cosMaxSlopeAngle {
				horizontal := unitHorizontal(c.Normal)
				denom := horizontal.Dot(c.Normal)
				if math.Abs(denom) > 1e-9 {
					constraints = append(constraints, Constraint{
						ContactIndex:   i,
						LinearVelocity: horizontal.Mul(contactVelocity.Dot(horizontal)),
						Plane:          Plane{Normal: horizontal, SignedDistance: c.Distance / denom},
					})
				}
			}
		}
	}

	return constraints
}

// unitHorizontal projects normal onto the horizontal plane and renormalizes.
func unitHorizontal(normal mgl64.Vec3) mgl64.Vec3 {
	h := mgl64.Vec3{normal.X(), 0, normal.Z()}
	if h.LenSqr() < 1e-16 {
		return mgl64.Vec3{}
	}
	return h.Normalize()
}
