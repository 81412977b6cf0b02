package charctrl

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// Contact is a single point of near-contact between the character and some
// other body, valid for the lifetime of one move-iteration unless copied
// into VirtualCharacter.activeContacts at the end of Update (§3).
type Contact struct {
	Position       mgl64.Vec3 // world-space point on the other body
	LinearVelocity mgl64.Vec3 // velocity of the other body at Position
	Normal         mgl64.Vec3 // unit vector pointing out of the other body
	Distance       float64    // negative = penetrating, positive = separated
	Fraction       float64    // swept contacts only, in [0,1]

	BodyID     host.BodyID
	SubShapeID host.SubShapeID
	MotionType host.MotionType
	Material   uint32
	UserData   uint64

	HadCollision     bool
	WasDiscarded     bool
	CanPushCharacter bool
}

// IgnoredContact identifies a (body, sub-shape) pair that conflict pruning
// discarded; the sweep in §4.5 skips hits against these so a contact
// rejected for contradicting a deeper one doesn't reappear as a sweep
// blocker.
type IgnoredContact struct {
	BodyID     host.BodyID
	SubShapeID host.SubShapeID
}

// contactCollector fills Contacts from the host's overlap query (§4.1). It
// implements host.Collector and caps itself at MaxNumHits by requesting
// early-out, same as the sweep collector in sweep.go.
type contactCollector struct {
	character *VirtualCharacter
	out       []Contact
}

func (c *contactCollector) AddHit(hit host.RawHit) bool {
	contact, ok := fillContactProperties(c.character, hit)
	if !ok {
		return false
	}
	c.out = append(c.out, contact)
	return len(c.out) >= MaxNumHits
}

// fillContactProperties converts one raw host hit into a Contact, reading
// the other body under a read lock that is released before returning. A
// body removed between broad phase and lock acquisition yields a dropped
// hit (ok == false): the caller sees it simply absent from the result
// (§7, class 1).
func fillContactProperties(vc *VirtualCharacter, hit host.RawHit) (Contact, bool) {
	contact := Contact{
		Position:         hit.ContactPosition,
		Normal:           geom.NormalizedOr(hit.PenetrationAxis, mgl64.Vec3{}),
		Distance:         -hit.PenetrationDepth,
		Fraction:         hit.Fraction,
		BodyID:           hit.BodyID,
		SubShapeID:       hit.SubShapeID,
		CanPushCharacter: true,
	}

	if vc.locks == nil {
		return contact, true
	}

	ref, unlock, ok := vc.locks.ReadLock(hit.BodyID)
	if !ok {
		// Body vanished between broad phase and lock; drop the hit rather
		// than propagating an error.
		return Contact{}, false
	}
	defer unlock()

	contact.LinearVelocity = ref.GetPointVelocity(hit.ContactPosition)
	contact.MotionType = ref.GetMotionType()
	contact.UserData = ref.GetUserData()
	contact.Material = ref.GetMaterial(hit.SubShapeID)

	return contact, true
}

// GetContactsAtPosition runs the host's overlap query against a padded
// shape placed at position, moving in movementDirection, and returns the
// contacts found within PredictiveContactDistance (§4.1).
func GetContactsAtPosition(vc *VirtualCharacter, position mgl64.Vec3, movementDirection mgl64.Vec3, shape geom.Shape, filters host.Filters) []Contact {
	if vc.host == nil {
		return nil
	}

	worldTransform := geom.WithCenterOfMass(geom.Transform{Position: position, Rotation: vc.rotation}, shape.CenterOfMass())

	settings := host.CollideShapeSettings{
		ActiveEdgeMode:              host.ActiveEdgesOnly,
		BackFaceMode:                host.CollideWithBackFaces,
		ActiveEdgeMovementDirection: movementDirection,
		MaxSeparationDistance:       PredictiveContactDistance,
	}

	collector := &contactCollector{character: vc}
	vc.host.CollideShape(shapeAdapter{shape}, hostTransform(worldTransform), settings, collector, filters)

	contacts := collector.out
	for i := range contacts {
		contacts[i].Distance -= CharacterPadding
	}
	return contacts
}

// shapeAdapter lets a geom.Shape satisfy host.Shape without geom importing
// host (host.Shape only needs Support).
type shapeAdapter struct{ geom.Shape }

func hostTransform(t geom.Transform) host.Transform {
	return host.Transform{Position: t.Position, Rotation: t.Rotation}
}
