package refphys

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/host"
)

// bodyRef is the read-only view of a Body exposed while it is locked. It
// implements host.BodyRef.
type bodyRef struct{ body *Body }

func (r bodyRef) centerOfMass() mgl64.Vec3 {
	return r.body.Transform.TransformPoint(r.body.Shape.CenterOfMass())
}

func (r bodyRef) GetPointVelocity(point mgl64.Vec3) mgl64.Vec3 {
	arm := point.Sub(r.centerOfMass())
	return r.body.Velocity.Add(r.body.AngularVelocity.Cross(arm))
}

func (r bodyRef) GetMotionType() host.MotionType       { return r.body.Motion }
func (r bodyRef) GetUserData() uint64                  { return r.body.UserData }
func (r bodyRef) GetMaterial(host.SubShapeID) uint32   { return r.body.Material }
func (r bodyRef) GetInverseMass() float64              { return r.body.InverseMass }
func (r bodyRef) GetInverseInertia() mgl64.Mat3        { return r.body.InverseInertia }
func (r bodyRef) GetCenterOfMassPosition() mgl64.Vec3  { return r.centerOfMass() }

// ReadLock and WriteLock both just take the world's RWMutex at the
// appropriate level; there is no per-body lock granularity in this
// reference world, matching its "small test fixture" scope. A lock
// attempt on a body that has since been removed fails cleanly, exercising
// the "body vanished between broad phase and lock" path (§7, class 1).
func (w *World) ReadLock(id host.BodyID) (host.BodyRef, host.Unlock, bool) {
	w.mu.RLock()
	body, ok := w.bodies[id]
	if !ok {
		w.mu.RUnlock()
		return nil, nil, false
	}
	return bodyRef{body}, func() { w.mu.RUnlock() }, true
}

func (w *World) WriteLock(id host.BodyID) (host.BodyRef, host.Unlock, bool) {
	w.mu.Lock()
	body, ok := w.bodies[id]
	if !ok {
		w.mu.Unlock()
		return nil, nil, false
	}
	return bodyRef{body}, func() { w.mu.Unlock() }, true
}

// AddImpulse implements host.BodyInterfaceNoLock: it assumes the caller
// already holds a write lock (taken via WriteLock above) and applies the
// impulse directly to the body's linear and angular velocity.
func (w *World) AddImpulse(id host.BodyID, impulse mgl64.Vec3, position mgl64.Vec3) {
	body, ok := w.bodies[id]
	if !ok {
		return
	}
	if body.InverseMass <= 0 {
		return
	}

	body.Velocity = body.Velocity.Add(impulse.Mul(body.InverseMass))

	com := body.Transform.TransformPoint(body.Shape.CenterOfMass())
	arm := position.Sub(com)
	angularImpulse := arm.Cross(impulse)
	body.AngularVelocity = body.AngularVelocity.Add(body.InverseInertia.Mul3x1(angularImpulse))
}
