// Package geom holds the collision shapes and spatial primitives that the
// character core and its host collaborator exchange. Shapes are treated as
// shared-immutable: the core never mutates a shape it has been handed, only
// queries it.
package geom

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid-body pose: orientation followed by translation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns the pose at the world origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// TransformPoint maps a point from the local frame of t into world space.
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Position)
}

// TransformDirection rotates a direction into world space without translating it.
func (t Transform) TransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

// InverseTransformDirection rotates a world-space direction back into the local frame.
func (t Transform) InverseTransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(d)
}

// WithCenterOfMass builds the world transform the character uses to query
// the host: rotate by the pose, then translate by position plus the
// rotated center-of-mass offset of the shape in use (see §4.1 of the move
// solver design: the shape's COM is queried through the shape interface,
// and the character's own position is the shape's origin, not its COM).
// Every shape in this package has its COM at its origin, so for them the
// character's position is the shape's center, not a feet reference.
func WithCenterOfMass(pose Transform, comOffsetLocal mgl64.Vec3) Transform {
	return Transform{
		Position: pose.Position.Add(pose.Rotation.Rotate(comOffsetLocal)),
		Rotation: pose.Rotation,
	}
}
