// Package host declares the capabilities the character core expects from
// the surrounding physics engine: broad/narrow-phase shape queries, body
// locking, and impulse application. The core never implements these itself
// - they are satisfied by whatever engine embeds the controller. See
// internal/refphys for a small reference implementation used by this
// module's own tests.
package host

import "github.com/go-gl/mathgl/mgl64"

// BodyID identifies a body owned by the host.
type BodyID uint32

// SubShapeID identifies a sub-shape within a (possibly compound) body.
type SubShapeID uint32

// InvalidBodyID is returned by queries that found no body.
const InvalidBodyID BodyID = 0xFFFFFFFF

// MotionType classifies how a body is allowed to move.
type MotionType uint8

const (
	MotionStatic MotionType = iota
	MotionKinematic
	MotionDynamic
)

// ActiveEdgeMode controls whether triangle-mesh queries are restricted to
// geometrically real ("active") edges, filtering internal edges shared by
// two coplanar triangles that would otherwise snag a sliding character.
type ActiveEdgeMode uint8

const (
	ActiveEdgesOnly ActiveEdgeMode = iota
	ActiveEdgesAll
)

// BackFaceMode controls whether a query can hit a shape from behind its
// surface normal.
type BackFaceMode uint8

const (
	IgnoreBackFaces BackFaceMode = iota
	CollideWithBackFaces
)

// CollideShapeSettings configures an overlap query (§4.1).
type CollideShapeSettings struct {
	ActiveEdgeMode              ActiveEdgeMode
	BackFaceMode                BackFaceMode
	ActiveEdgeMovementDirection mgl64.Vec3
	MaxSeparationDistance       float64
}

// ShapeCastSettings configures a swept query (§4.5).
type ShapeCastSettings struct {
	BackFaceModeTriangles           BackFaceMode
	BackFaceModeConvex              BackFaceMode
	ActiveEdgeMode                  ActiveEdgeMode
	UseShrunkenShapeAndConvexRadius bool
	ReturnDeepestPoint              bool
}

// RawHit is what the host reports for a single shape/body intersection,
// before the character core converts it into a Contact.
type RawHit struct {
	BodyID           BodyID
	SubShapeID       SubShapeID
	ContactPosition  mgl64.Vec3 // world-space point on the other body
	PenetrationAxis  mgl64.Vec3 // points out of the other body toward the query shape; may be zero length for degenerate hits
	PenetrationDepth float64    // positive = overlapping by this much
	Fraction         float64    // swept hits only, in [0,1]
}

// Collector receives hits from a query and may request early-out once it
// has enough (e.g. because an internal buffer is full).
type Collector interface {
	AddHit(hit RawHit) (earlyOut bool)
}

// BroadPhaseLayerFilter, ObjectLayerFilter and BodyFilter narrow down which
// bodies a query is even allowed to consider, mirroring the three-stage
// filter chain of the host's broad phase.
type BroadPhaseLayerFilter interface {
	ShouldCollideLayer(layer uint32) bool
}

type ObjectLayerFilter interface {
	ShouldCollideObject(layer uint32) bool
}

type BodyFilter interface {
	ShouldCollideBody(id BodyID) bool
	ShouldCollideSubShape(id BodyID, sub SubShapeID) bool
}

// Filters bundles the three filter stages a caller of NarrowPhaseQuery supplies.
type Filters struct {
	BroadPhase BroadPhaseLayerFilter
	Object     ObjectLayerFilter
	Body       BodyFilter
}

// Shape is the minimal shape contract the query layer needs: enough to
// describe what is being cast or overlapped, without pulling in geom's
// concrete types here (keeps this package free of a geom import cycle from
// the host's perspective - the engine defines its own shape wire format).
type Shape interface {
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// ShapeCast is a swept query: move shape from Start along Displacement,
// find the first blocking hit.
type ShapeCast struct {
	Shape        Shape
	Start        Transform
	Displacement mgl64.Vec3
}

// Transform avoids importing geom here; NarrowPhaseQuery implementations
// are expected to accept values that structurally match this shape, which
// geom.Transform satisfies.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NarrowPhaseQuery is the query surface the character core calls every
// move-iteration: one overlap query for contact discovery (§4.1), one
// swept query for sweep verification (§4.5).
type NarrowPhaseQuery interface {
	CollideShape(shape Shape, transform Transform, settings CollideShapeSettings, collector Collector, filters Filters)
	CastShape(cast ShapeCast, settings ShapeCastSettings, collector Collector, filters Filters)
}

// BodyRef is the read-only view of a locked body the core samples when
// building a Contact or computing an impulse.
type BodyRef interface {
	GetPointVelocity(point mgl64.Vec3) mgl64.Vec3
	GetMotionType() MotionType
	GetUserData() uint64
	GetMaterial(sub SubShapeID) uint32
	GetInverseMass() float64
	GetInverseInertia() mgl64.Mat3
	GetCenterOfMassPosition() mgl64.Vec3
}

// Unlock releases a lock acquired through BodyLockInterface.
type Unlock func()

// BodyLockInterface acquires scoped locks on bodies. A lock can fail (ok
// == false) if the body was removed from the world between the broad-phase
// query that found it and the attempt to lock it; callers must treat that
// as "contact gone", not an error.
type BodyLockInterface interface {
	ReadLock(id BodyID) (ref BodyRef, unlock Unlock, ok bool)
	WriteLock(id BodyID) (ref BodyRef, unlock Unlock, ok bool)
}

// BodyInterfaceNoLock applies effects to a body the caller has already
// locked; it performs no locking of its own.
type BodyInterfaceNoLock interface {
	AddImpulse(id BodyID, impulse mgl64.Vec3, position mgl64.Vec3)
}
