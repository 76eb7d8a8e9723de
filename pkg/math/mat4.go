package math

// Mat4 is an affine transform in column-major order: element (row, col) is
// stored at index col*4+row, and the translation occupies 12..14.
type Mat4 [16]float32

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation by (x, y, z).
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// Scale returns a per-axis scale.
func Scale(x, y, z float32) Mat4 {
	return Mat4FromRows(Vec3{X: x}, Vec3{Y: y}, Vec3{Z: z})
}

// Mat4FromRows returns the linear transform whose output X, Y and Z are the
// dot products of the input with rx, ry and rz.
func Mat4FromRows(rx, ry, rz Vec3) Mat4 {
	return Mat4{
		rx.X, ry.X, rz.X, 0,
		rx.Y, ry.Y, rz.Y, 0,
		rx.Z, ry.Z, rz.Z, 0,
		0, 0, 0, 1,
	}
}

// TransformVec3 transforms a position. The bottom row is assumed to be
// (0, 0, 0, 1).
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	return m.TransformDirection(v).Add(Vec3{X: m[12], Y: m[13], Z: m[14]})
}

// TransformDirection transforms a direction, ignoring translation.
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		X: m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		Y: m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		Z: m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Determinant3 returns the determinant of the linear part. A negative
// value means the transform mirrors.
func (m Mat4) Determinant3() float32 {
	return m[0]*(m[5]*m[10]-m[9]*m[6]) -
		m[4]*(m[1]*m[10]-m[9]*m[2]) +
		m[8]*(m[1]*m[6]-m[5]*m[2])
}
