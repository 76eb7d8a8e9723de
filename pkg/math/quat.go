package math

import "math"

// Quat is a rotation quaternion. W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the quaternion that rotates nothing.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns a rotation of angle radians about axis, counter
// clockwise when looking down the axis towards the origin. A zero axis
// yields the identity.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	if axis.Length() == 0 {
		return QuatIdentity()
	}
	axis = axis.Normalize()
	sin, cos := math.Sincos(float64(angle) / 2)
	s := float32(sin)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: float32(cos)}
}

// Normalize scales q to unit length. Near-zero quaternions become the
// identity.
func (q Quat) Normalize() Quat {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l < 1e-4 {
		return QuatIdentity()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// ToMat4 returns the equivalent rotation matrix.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()
	x, y, z := q.rotate(Vec3{X: 1}), q.rotate(Vec3{Y: 1}), q.rotate(Vec3{Z: 1})
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return q.Normalize().rotate(v)
}

// rotate computes v + 2w(u×v) + 2u×(u×v) for a unit quaternion with
// vector part u.
func (q Quat) rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
