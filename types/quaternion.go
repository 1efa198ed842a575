package types

import "github.com/go-gl/mathgl/mgl32"

// A rotation quaternion. V holds the vector part and W the scalar part.
type Quat struct {
	V Vec3
	W float32
}

func quatFrom(q mgl32.Quat) Quat {
	return Quat{V: Vec3(q.V), W: q.W}
}

func (q1 Quat) mgl() mgl32.Quat {
	return mgl32.Quat{W: q1.W, V: mgl32.Vec3(q1.V)}
}

// Create identity quaternion.
func QuatIdent() Quat {
	return quatFrom(mgl32.QuatIdent())
}

// Create a quaternion from an axis vector and an angle in radians. The axis
// does not need to be normalized.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return quatFrom(mgl32.QuatRotate(angle, mgl32.Vec3(axis.Normalize())))
}

// Rotate a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	return Vec3(q1.mgl().Rotate(mgl32.Vec3(v)))
}

// Multiply two quaternions. The result applies q2 first and q1 second.
func (q1 Quat) Mul(q2 Quat) Quat {
	return quatFrom(q1.mgl().Mul(q2.mgl()))
}

// Normalize the quaternion, returning its versor (unit quaternion).
func (q1 Quat) Normalize() Quat {
	return quatFrom(q1.mgl().Normalize())
}

// Returns the homogeneous 3D rotation matrix corresponding to the quaternion.
func (q1 Quat) Mat4() Mat4 {
	return Mat4(q1.mgl().Mat4())
}
