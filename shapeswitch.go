package charctrl

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// SetShape atomically swaps the character's collision shape, used for
// crouch/stand transitions (§4.7). If the new shape would penetrate
// existing geometry by more than maxPenetrationDepth, the swap is refused
// and the character keeps its old shape - this is the one place user
// misuse is reported back to the caller rather than silently absorbed
// (§7, class 3). On success, active contacts are refreshed against the
// new shape.
func (vc *VirtualCharacter) SetShape(shape geom.Shape, maxPenetrationDepth float64, filters host.Filters) bool {
	if vc.host == nil {
		// No host to validate against; assign unconditionally. Only
		// expected to be reached during construction before a host is
		// wired up (§9 open question) - callers outside that path should
		// not rely on this behavior.
		vc.shape = shape
		return true
	}

	contacts := GetContactsAtPosition(vc, vc.position, mgl64.Vec3{}, shape, filters)
	for _, c := range contacts {
		if -c.Distance > maxPenetrationDepth {
			return false
		}
	}

	markRestContacts(contacts, vc.linearVelocity)
	vc.shape = shape
	vc.activeContacts = contacts
	vc.recomputeSupportingContact()
	return true
}
