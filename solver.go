package charctrl

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	minProjectedVelocity = 1e-6
	toiSlack              = 1e-4
	velocitySettleSq      = 1e-8
	staleCreaseThreshold  = 1e-4
)

// SolveConstraints is the iterative TOI-ordered slide solver: the heart of
// the move-and-slide core (§4.4, ~45% of the implementation budget). Given
// a starting velocity and the constraints derived for this move-iteration,
// it produces a displacement that never crosses a surviving constraint
// plane by more than numerical slack, sliding along one plane, or along
// the crease of two, without the ping-pong a naive iterative projection
// would produce.
//
// contacts is mutated in place: HadCollision and WasDiscarded get set as
// the solver actually engages each one. constraints is mutated too: a
// contact whose listener settings disallow pushing the character has its
// LinearVelocity zeroed for every constraint derived from it, and a crease
// between two simultaneously-active planes has both planes' LinearVelocity
// overwritten with their crease-cancelled form, so a later iteration that
// revisits the same pair sees the already-cancelled velocity instead of
// re-deriving (and ping-ponging on) the original one - both for the
// remainder of this call only.
func SolveConstraints(vc *VirtualCharacter, contacts []Contact, constraints []Constraint, velocity, gravity mgl64.Vec3, dt, timeRemaining float64) (newVelocity, displacement mgl64.Vec3, timeSimulated float64) {
	var previous []int

	for iter := 0; iter < MaxConstraintIterations; iter++ {
		if timeRemaining < MinTimeRemaining {
			return velocity, displacement, timeSimulated
		}

		for i := range constraints {
			c := &constraints[i]
			c.ProjectedVelocity = c.Plane.Normal.Dot(c.LinearVelocity.Sub(velocity))
			if c.ProjectedVelocity < minProjectedVelocity {
				c.TOI = math.Inf(1)
				continue
			}

			dist := c.Plane.Remaining(displacement)
			if dist-c.ProjectedVelocity*timeRemaining > -toiSlack {
				c.TOI = math.Inf(1)
				continue
			}
			c.TOI = math.Max(0, dist/c.ProjectedVelocity)
		}

		order := sortedConstraintOrder(constraints, contacts)

		// order is sorted by TOI ascending, so the first constraint whose
		// TOI reaches or exceeds timeRemaining means every constraint from
		// here on is also out of reach this iteration: the goal is reached
		// before any of them engage, and none may mark its contact
		// collided or apply an impulse (§4.4c).
		picked := -1
		for _, idx := range order {
			c := &constraints[idx]
			if c.TOI >= timeRemaining {
				break
			}
			contact := &contacts[c.ContactIndex]
			if contact.WasDiscarded {
				continue
			}
			if !contact.HadCollision {
				if !HandleContact(vc, contact, velocity, gravity, dt) {
					contact.WasDiscarded = true
					continue
				}
				contact.HadCollision = true
			}
			if !contact.CanPushCharacter {
				zeroConstraintVelocityForContact(constraints, c.ContactIndex)
			}
			picked = idx
			break
		}

		if picked < 0 {
			displacement = displacement.Add(velocity.Mul(timeRemaining))
			timeSimulated += timeRemaining
			return velocity, displacement, timeSimulated
		}

		constraint := constraints[picked]

		displacement = displacement.Add(velocity.Mul(constraint.TOI))
		timeRemaining -= constraint.TOI
		timeSimulated += constraint.TOI
		if timeRemaining < MinTimeRemaining {
			return velocity, displacement, timeSimulated
		}

		relative := velocity.Sub(constraint.LinearVelocity)
		planeNormal := constraint.Plane.Normal
		newVel := velocity.Sub(planeNormal.Mul(relative.Dot(planeNormal)))

		if otherIdx, ok := findCreaseConstraint(constraints, previous, planeNormal, newVel); ok {
			velocity = slideAlongCrease(constraints, picked, otherIdx, newVel)
		} else {
			velocity = newVel
		}

		if constraint.TOI > staleCreaseThreshold {
			previous = previous[:0]
		}
		previous = append(previous, picked)

		if velocity.LenSqr() < velocitySettleSq {
			return velocity, displacement, timeSimulated
		}
	}

	return velocity, displacement, timeSimulated
}

// sortedConstraintOrder orders constraint indices by TOI ascending; ties at
// TOI<=0 prefer the larger projected velocity (resolve the deepest
// penetration first), and remaining ties prefer static over kinematic over
// dynamic bodies so immovable geometry dominates (§4.4b).
func sortedConstraintOrder(constraints []Constraint, contacts []Contact) []int {
	order := make([]int, len(constraints))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := constraints[order[i]], constraints[order[j]]
		if a.TOI != b.TOI {
			return a.TOI < b.TOI
		}
		if a.TOI <= 0 && a.ProjectedVelocity != b.ProjectedVelocity {
			return a.ProjectedVelocity > b.ProjectedVelocity
		}
		ma := contacts[a.ContactIndex].MotionType
		mb := contacts[b.ContactIndex].MotionType
		return ma < mb
	})
	return order
}

func zeroConstraintVelocityForContact(constraints []Constraint, contactIndex int) {
	for i := range constraints {
		if constraints[i].ContactIndex == contactIndex {
			constraints[i].LinearVelocity = mgl64.Vec3{}
		}
	}
}

// findCreaseConstraint looks among this solver call's previously engaged
// constraints (given as indices into constraints, so slideAlongCrease can
// write the crease-cancelled velocity back into the same slot) for the one
// newVelocity would violate most, excluding near-parallel/anti-parallel
// planes whose cross product would be degenerate (§4.4f).
func findCreaseConstraint(constraints []Constraint, previous []int, currentNormal, newVelocity mgl64.Vec3) (int, bool) {
	bestScore := 0.0
	best := -1

	for _, idx := range previous {
		other := constraints[idx]
		if math.Abs(other.Plane.Normal.Dot(currentNormal)) >= creaseParallelThreshold {
			continue
		}
		score := other.LinearVelocity.Sub(newVelocity).Dot(other.Plane.Normal)
		if score > bestScore {
			bestScore = score
			best = idx
		}
	}
	return best, best >= 0
}

// slideAlongCrease computes the velocity that keeps the character moving
// along the crease formed by two simultaneously-active planes instead of
// bouncing between them (§4.4f). It writes the crease-cancelled surface
// velocities back into constraints[currentIdx] and constraints[otherIdx],
// so a later iteration that revisits either plane sees the cancelled
// velocity rather than re-deriving the same crossing from the original one.
func slideAlongCrease(constraints []Constraint, currentIdx, otherIdx int, newVelocity mgl64.Vec3) mgl64.Vec3 {
	current := &constraints[currentIdx]
	other := &constraints[otherIdx]

	slideDir := current.Plane.Normal.Cross(other.Plane.Normal)
	if slideDir.LenSqr() < 1e-16 {
		return newVelocity
	}
	slideDir = slideDir.Normalize()

	cur := current.LinearVelocity
	oth := other.LinearVelocity

	if d := cur.Dot(other.Plane.Normal); d < 0 {
		cur = cur.Sub(other.Plane.Normal.Mul(d))
	}
	if d := oth.Dot(current.Plane.Normal); d < 0 {
		oth = oth.Sub(current.Plane.Normal.Mul(d))
	}

	current.LinearVelocity = cur
	other.LinearVelocity = oth

	velocityAlongSlide := slideDir.Mul(newVelocity.Dot(slideDir))
	perpCurrent := cur.Sub(slideDir.Mul(cur.Dot(slideDir)))
	perpOther := oth.Sub(slideDir.Mul(oth.Dot(slideDir)))

	return velocityAlongSlide.Add(perpCurrent).Add(perpOther)
}
