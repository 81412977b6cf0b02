package charctrl

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/host"
)

// ContactSettings lets a Listener tune how a particular contact behaves
// for the remainder of the solve that discovered it.
type ContactSettings struct {
	// CanPushCharacter, when false, zeroes the contact's linear velocity
	// during the slide so a moving platform the listener vetoed cannot
	// carry the character along.
	CanPushCharacter bool
	// CanReceiveImpulses, when false, suppresses HandleContact's impulse
	// transfer to this body even if it is dynamic.
	CanReceiveImpulses bool
}

// DefaultContactSettings is what a contact gets when no listener is
// installed, or the listener chooses not to touch these fields.
func DefaultContactSettings() ContactSettings {
	return ContactSettings{CanPushCharacter: true, CanReceiveImpulses: true}
}

// Listener is the optional capability §3 and §6 describe: the embedder may
// veto a contact outright, or tune its settings once accepted. Both
// callbacks are invoked with no body lock held (§5), since they may be
// arbitrary user code that calls back into the host.
type Listener interface {
	// OnContactValidate may reject a contact entirely; a false return
	// causes the solver to discard it as though it were never found.
	OnContactValidate(character *VirtualCharacter, bodyID host.BodyID, subShapeID host.SubShapeID) bool

	// OnContactAdded is called the first time the solver actually collides
	// with a contact, and may mutate settings in place.
	OnContactAdded(character *VirtualCharacter, bodyID host.BodyID, subShapeID host.SubShapeID, position, normal mgl64.Vec3, settings *ContactSettings)
}
