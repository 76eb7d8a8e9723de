package math

// Vec2 is a texture coordinate. X runs along s, Y along t.
type Vec2 struct {
	X, Y float32
}

// CleanZeros replaces negative zero components with positive zero.
func (v Vec2) CleanZeros() Vec2 {
	return Vec2{cleanZero(v.X), cleanZero(v.Y)}
}

// ApproxEqual reports whether both components differ by at most tol.
func (v Vec2) ApproxEqual(other Vec2, tol float32) bool {
	return approx(v.X, other.X, tol) && approx(v.Y, other.Y, tol)
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return finite(v.X) && finite(v.Y)
}
