// Package refphys is a small in-memory physics world used only by this
// module's own tests: it implements the host.NarrowPhaseQuery,
// host.BodyLockInterface and host.BodyInterfaceNoLock contracts that a real
// engine would otherwise satisfy, using the same GJK/EPA pipeline a
// production narrow phase would, over the package's geom shapes.
//
// It is not a general-purpose physics engine: there is no broad-phase
// incremental maintenance, no constraint solver for body-body contacts, no
// sleeping. Just enough machinery to stand up flat ground, walls, ramps,
// creases and a pushable crate for the character controller's tests.
package refphys

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
	"github.com/wrenfield/charctrl/internal/refphys/epa"
	"github.com/wrenfield/charctrl/internal/refphys/gjk"
)

// Body is one collider in the world: static geometry, a kinematic platform,
// or a dynamic object the character can push.
type Body struct {
	Shape     geom.Shape
	Transform geom.Transform
	Motion    host.MotionType

	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	InverseMass     float64
	InverseInertia  mgl64.Mat3
	Material        uint32
	UserData        uint64
	Layer           uint32
}

// World owns a set of bodies and answers the query/lock/impulse interfaces
// the character core needs from a host.
type World struct {
	mu     sync.RWMutex
	bodies map[host.BodyID]*Body
	nextID host.BodyID
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{bodies: make(map[host.BodyID]*Body)}
}

// AddBody inserts body and returns the ID the world assigned it.
func (w *World) AddBody(body *Body) host.BodyID {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	w.bodies[id] = body
	return id
}

// RemoveBody deletes a body, simulating it having left the world between a
// broad-phase scan and a later lock attempt (used to exercise the "body
// vanished" error path).
func (w *World) RemoveBody(id host.BodyID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.bodies, id)
}

// Body returns a direct (unlocked) reference for test setup/assertions.
func (w *World) Body(id host.BodyID) *Body {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bodies[id]
}

// Step integrates dynamic bodies by their current velocity; it does not run
// any solver of its own - the only forces dynamic bodies in this world ever
// see are the impulses the character applies via AddImpulse.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bodies {
		if b.Motion != host.MotionDynamic {
			continue
		}
		b.Transform.Position = b.Transform.Position.Add(b.Velocity.Mul(dt))
	}
}

func (w *World) snapshot() ([]host.BodyID, []*Body) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := make([]host.BodyID, 0, len(w.bodies))
	bodies := make([]*Body, 0, len(w.bodies))
	for id, b := range w.bodies {
		ids = append(ids, id)
		bodies = append(bodies, b)
	}
	return ids, bodies
}

func passesFilters(id host.BodyID, body *Body, filters host.Filters) bool {
	if filters.BroadPhase != nil && !filters.BroadPhase.ShouldCollideLayer(body.Layer) {
		return false
	}
	if filters.Object != nil && !filters.Object.ShouldCollideObject(body.Layer) {
		return false
	}
	if filters.Body != nil && !filters.Body.ShouldCollideBody(id) {
		return false
	}
	return true
}

// CollideShape implements host.NarrowPhaseQuery: it finds every body within
// settings.MaxSeparationDistance of shape placed at transform, via GJK/EPA
// when they overlap and a GJK-distance query over the leftover simplex when
// they don't.
func (w *World) CollideShape(shape host.Shape, transform host.Transform, settings host.CollideShapeSettings, collector host.Collector, filters host.Filters) {
	queryPose := geom.Transform{Position: transform.Position, Rotation: transform.Rotation}
	queryBounds := hostShapeBounds(shape, queryPose).Expanded(settings.MaxSeparationDistance)

	ids, bodies := w.snapshot()
	grid := newSpatialGrid(gridCellSize)
	for i, id := range ids {
		grid.insert(id, geom.WorldBounds(bodies[i].Shape, bodies[i].Transform))
	}

	byID := make(map[host.BodyID]*Body, len(ids))
	for i, id := range ids {
		byID[id] = bodies[i]
	}

	for _, id := range grid.query(queryBounds) {
		body := byID[id]
		if !passesFilters(id, body, filters) {
			continue
		}
		if filters.Body != nil && !filters.Body.ShouldCollideSubShape(id, 0) {
			continue
		}

		querySupport := func(direction mgl64.Vec3) mgl64.Vec3 { return hostSupportWorld(shape, queryPose, direction) }
		otherSupport := func(direction mgl64.Vec3) mgl64.Vec3 { return geom.SupportWorld(body.Shape, body.Transform, direction) }

		var simplex gjk.Simplex
		overlapping := gjk.Run(querySupport, otherSupport, &simplex)

		var normal mgl64.Vec3
		var depth float64 // RawHit convention: positive = overlapping by this much
		if overlapping {
			normal, depth = epa.Run(querySupport, otherSupport, &simplex)
		} else {
			gap := 0.0
			normal, gap = closestSeparation(&simplex)
			if gap > settings.MaxSeparationDistance {
				continue
			}
			depth = -gap
		}

		point := otherSupport(normal)
		if earlyOut := collector.AddHit(host.RawHit{
			BodyID:           id,
			SubShapeID:       0,
			ContactPosition:  point,
			PenetrationAxis:  normal,
			PenetrationDepth: depth,
		}); earlyOut {
			return
		}
	}
}

const gridCellSize = 2.0

// CastShape implements host.NarrowPhaseQuery's swept query by sampling
// overlap at evenly spaced points along the displacement and reporting the
// first sample where the shapes touch; there is no bisection. It is not a true conservative-advancement TOI solver,
// but it is exact in the limit of its sample count and that is sufficient
// fidelity for a reference host used by tests with everyday velocities.
func (w *World) CastShape(cast host.ShapeCast, settings host.ShapeCastSettings, collector host.Collector, filters host.Filters) {
	if cast.Displacement.LenSqr() < 1e-16 {
		return
	}

	const samples = 48
	ids, bodies := w.snapshot()

	for i, id := range ids {
		body := bodies[i]
		if !passesFilters(id, body, filters) {
			continue
		}

		hitFraction := -1.0
		var hitNormal mgl64.Vec3
		var hitDepth float64

		for s := 0; s <= samples; s++ {
			frac := float64(s) / float64(samples)
			pose := host.Transform{
				Position: cast.Start.Position.Add(cast.Displacement.Mul(frac)),
				Rotation: cast.Start.Rotation,
			}
			qPose := geom.Transform{Position: pose.Position, Rotation: pose.Rotation}

			querySupport := func(direction mgl64.Vec3) mgl64.Vec3 { return hostSupportWorld(cast.Shape, qPose, direction) }
			otherSupport := func(direction mgl64.Vec3) mgl64.Vec3 { return geom.SupportWorld(body.Shape, body.Transform, direction) }

			var simplex gjk.Simplex
			if gjk.Run(querySupport, otherSupport, &simplex) {
				hitFraction = frac
				hitNormal, hitDepth = epa.Run(querySupport, otherSupport, &simplex)
				break
			}
		}

		if hitFraction < 0 {
			continue
		}

		if earlyOut := collector.AddHit(host.RawHit{
			BodyID:           id,
			SubShapeID:       0,
			ContactPosition:  bodySupport(body, hitNormal),
			PenetrationAxis:  hitNormal,
			PenetrationDepth: hitDepth,
			Fraction:         hitFraction,
		}); earlyOut {
			return
		}
	}
}

func bodySupport(body *Body, direction mgl64.Vec3) mgl64.Vec3 {
	return geom.SupportWorld(body.Shape, body.Transform, direction)
}

func hostShapeBounds(shape host.Shape, pose geom.Transform) geom.AABB {
	dirs := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	p0 := hostSupportWorld(shape, pose, dirs[0])
	bounds := geom.AABB{Min: p0, Max: p0}
	for _, d := range dirs[1:] {
		p := hostSupportWorld(shape, pose, d)
		bounds = bounds.Union(geom.AABB{Min: p, Max: p})
	}
	return bounds
}

func hostSupportWorld(shape host.Shape, pose geom.Transform, direction mgl64.Vec3) mgl64.Vec3 {
	local := pose.InverseTransformDirection(direction)
	return pose.TransformPoint(shape.Support(local))
}

// closestSeparation estimates the separating normal and distance from a GJK
// simplex that did not reach the origin: the point/segment/triangle closest
// to the origin gives both the separating axis and the gap along it.
func closestSeparation(simplex *gjk.Simplex) (mgl64.Vec3, float64) {
	switch simplex.Count {
	case 1:
		p := simplex.Points[0]
		return normalAway(p), p.Len()
	case 2:
		p := closestOnSegment(simplex.Points[0], simplex.Points[1])
		return normalAway(p), p.Len()
	default:
		p := closestOnTriangle(simplex.Points[0], simplex.Points[1], simplex.Points[2])
		return normalAway(p), p.Len()
	}
}

// normalAway turns a Minkowski-space point into a world-space separating
// normal: p itself points from the origin toward where the query shape
// sits relative to the body, i.e. out of the body and toward the query
// shape - exactly the convention Contact.Normal needs.
func normalAway(p mgl64.Vec3) mgl64.Vec3 {
	if p.LenSqr() < 1e-16 {
		return mgl64.Vec3{0, 1, 0}
	}
	return p.Normalize()
}

func closestOnSegment(a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	denom := ab.Dot(ab)
	if denom < 1e-16 {
		return a
	}
	t := -a.Dot(ab) / denom
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Add(ab.Mul(t))
}

func closestOnTriangle(a, b, c mgl64.Vec3) mgl64.Vec3 {
	best := a
	bestLen := a.LenSqr()
	for _, cand := range []mgl64.Vec3{closestOnSegment(a, b), closestOnSegment(b, c), closestOnSegment(c, a)} {
		if l := cand.LenSqr(); l < bestLen {
			bestLen = l
			best = cand
		}
	}
	return best
}
