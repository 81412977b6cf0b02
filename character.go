// Package charctrl implements a kinematic virtual character controller: a
// "player"-style actor that moves by sweeping a collision shape through the
// world and resolving contacts geometrically every frame, rather than by
// being a dynamic rigid body integrated by the host. The move-and-slide
// solver in solver.go is the core of the package; everything else
// (contact discovery, conflict pruning, constraint derivation, sweep
// verification, impulse transfer) exists to feed it or to apply its result.
package charctrl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// Tunable constants (§6). These are package-level compile-time constants;
// Config does not override any of them.
const (
	PredictiveContactDistance = 0.01
	CharacterPadding          = 0.02
	CollisionTolerance        = 1e-3
	MinTimeRemaining          = 1e-4
	MaxCollisionIterations    = 5
	MaxConstraintIterations   = 15
	MaxNumHits                = 256
	MinRequiredPenetration    = 0.005 + CharacterPadding
	creaseParallelThreshold   = 0.984 // ~10 degrees; see §9 open question, preserved for tuning
)

// GroundState classifies the character's support relative to the ground.
type GroundState uint8

const (
	InAir GroundState = iota
	Sliding
	OnGround
)

func (g GroundState) String() string {
	switch g {
	case InAir:
		return "InAir"
	case Sliding:
		return "Sliding"
	case OnGround:
		return "OnGround"
	default:
		return "Unknown"
	}
}

// Config seeds a VirtualCharacter's tunables; zero-value fields fall back
// to sane defaults rather than to zero, since e.g. Mass == 0 is invalid.
type Config struct {
	CosMaxSlopeAngle          float64
	MaxStrength                float64
	Mass                      float64
	PenetrationRecoverySpeed  float64
}

// VirtualCharacter is the root entity described by §3: a shape, pose,
// velocity, tuning parameters, and the contact set left over from the last
// Update or RefreshContacts.
type VirtualCharacter struct {
	position       mgl64.Vec3
	rotation       mgl64.Quat
	linearVelocity mgl64.Vec3

	shape geom.Shape

	cosMaxSlopeAngle         float64
	maxStrength              float64
	mass                     float64
	penetrationRecoverySpeed float64

	activeContacts      []Contact
	supportingContact   int // index into activeContacts, or -1
	groundState          GroundState

	listener Listener

	host host.NarrowPhaseQuery
	locks host.BodyLockInterface
	bodies host.BodyInterfaceNoLock
}

// New creates a character at pose (position, rotation) using shape, backed
// by the given host collaborators. cfg may be the zero Config, in which
// case defaults (no slope limit, no push strength, mass 1, instant
// penetration recovery) are used.
func New(position mgl64.Vec3, rotation mgl64.Quat, shape geom.Shape, npq host.NarrowPhaseQuery, locks host.BodyLockInterface, bodies host.BodyInterfaceNoLock, cfg Config) *VirtualCharacter {
	vc := &VirtualCharacter{
		position:       position,
		rotation:       rotation,
		shape:          shape,
		host:           npq,
		locks:          locks,
		bodies:         bodies,
		supportingContact: -1,
		groundState:    InAir,
	}

	vc.cosMaxSlopeAngle = cfg.CosMaxSlopeAngle
	if cfg.CosMaxSlopeAngle == 0 {
		vc.cosMaxSlopeAngle = -1 // no limit by default
	}
	vc.maxStrength = cfg.MaxStrength
	vc.mass = cfg.Mass
	if vc.mass <= 0 {
		vc.mass = 1
	}
	vc.penetrationRecoverySpeed = cfg.PenetrationRecoverySpeed
	if cfg.PenetrationRecoverySpeed == 0 {
		vc.penetrationRecoverySpeed = 1
	}

	return vc
}

// Getters/setters (§6). Setters validate their argument and return an error
// for an out-of-range value rather than panicking; a rejected value is not
// stored, so the character stays in its last-known-good state.

func (vc *VirtualCharacter) Position() mgl64.Vec3 { return vc.position }
func (vc *VirtualCharacter) SetPosition(p mgl64.Vec3) { vc.position = p }

func (vc *VirtualCharacter) Rotation() mgl64.Quat { return vc.rotation }
func (vc *VirtualCharacter) SetRotation(r mgl64.Quat) { vc.rotation = r.Normalize() }

func (vc *VirtualCharacter) LinearVelocity() mgl64.Vec3 { return vc.linearVelocity }
func (vc *VirtualCharacter) SetLinearVelocity(v mgl64.Vec3) { vc.linearVelocity = v }

func (vc *VirtualCharacter) Shape() geom.Shape { return vc.shape }

func (vc *VirtualCharacter) CosMaxSlopeAngle() float64 { return vc.cosMaxSlopeAngle }

func (vc *VirtualCharacter) SetCosMaxSlopeAngle(cos float64) error {
	if cos < -1 || cos > 1 {
		return fmt.Errorf("charctrl: cos max slope angle %v out of [-1,1]", cos)
	}
	vc.cosMaxSlopeAngle = cos
	return nil
}

func (vc *VirtualCharacter) MaxStrength() float64 { return vc.maxStrength }

func (vc *VirtualCharacter) SetMaxStrength(n float64) error {
	if n < 0 {
		return fmt.Errorf("charctrl: max strength %v must be >= 0", n)
	}
	vc.maxStrength = n
	return nil
}

func (vc *VirtualCharacter) Mass() float64 { return vc.mass }

func (vc *VirtualCharacter) SetMass(m float64) error {
	if m <= 0 {
		return fmt.Errorf("charctrl: mass %v must be > 0", m)
	}
	vc.mass = m
	return nil
}

func (vc *VirtualCharacter) PenetrationRecoverySpeed() float64 { return vc.penetrationRecoverySpeed }

func (vc *VirtualCharacter) SetPenetrationRecoverySpeed(s float64) error {
	if s < 0 || s > 1 {
		return fmt.Errorf("charctrl: penetration recovery speed %v out of [0,1]", s)
	}
	vc.penetrationRecoverySpeed = s
	return nil
}

func (vc *VirtualCharacter) SetListener(l Listener) { vc.listener = l }

// ActiveContacts returns the contact set left over from the last Update or
// RefreshContacts. The slice is owned by the character; callers must not
// retain it across the next call.
func (vc *VirtualCharacter) ActiveContacts() []Contact { return vc.activeContacts }

// SupportingContact returns the contact the character is standing on, and
// whether one exists. Its normal, when present, always has a non-negative
// Y component (§8 invariant).
func (vc *VirtualCharacter) SupportingContact() (Contact, bool) {
	if vc.supportingContact < 0 {
		return Contact{}, false
	}
	return vc.activeContacts[vc.supportingContact], true
}

// GetGroundState classifies the character's support (§4.8).
func (vc *VirtualCharacter) GetGroundState() GroundState { return vc.groundState }
