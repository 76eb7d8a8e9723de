package mesh

import (
	"fmt"

	"github.com/Faultbox/drydock/pkg/math"
)

// CenterMethod selects how Recenter computes the centre.
type CenterMethod int

const (
	// CenterMean uses the arithmetic mean of all vertex positions.
	CenterMean CenterMethod = iota + 1
	// CenterBounds uses the midpoint of the bounding box.
	CenterBounds
)

// String returns the method name.
func (c CenterMethod) String() string {
	switch c {
	case CenterMean:
		return "mean"
	case CenterBounds:
		return "bounds"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ParseCenterMethod parses "mean" or "bounds".
func ParseCenterMethod(s string) (CenterMethod, error) {
	switch s {
	case "mean":
		return CenterMean, nil
	case "bounds":
		return CenterBounds, nil
	default:
		return 0, fmt.Errorf("unknown centre method %q", s)
	}
}

// FlipX mirrors the mesh across the YZ plane.
func (m *Mesh) FlipX() { m.flip(math.AxisX) }

// FlipY mirrors the mesh across the XZ plane.
func (m *Mesh) FlipY() { m.flip(math.AxisY) }

// FlipZ mirrors the mesh across the XY plane.
func (m *Mesh) FlipZ() { m.flip(math.AxisZ) }

// flip negates one coordinate of every position and normal. Mirroring
// inverts handedness, so corner order is reversed to keep faces outward.
func (m *Mesh) flip(a math.Axis) {
	for i, v := range m.vertices {
		m.vertices[i] = v.With(a, -v.Get(a)).CleanZeros()
	}
	for i, n := range m.normals {
		m.normals[i] = n.With(a, -n.Get(a)).CleanZeros()
	}
	m.reverseCorners()
	m.updateDerived()
}

// Recenter moves the mesh so the centre chosen by method lies at the
// origin. It returns the offset applied, and false for an unknown method.
func (m *Mesh) Recenter(method CenterMethod) (math.Vec3, bool) {
	var center math.Vec3
	switch method {
	case CenterMean:
		if len(m.vertices) == 0 {
			return math.Vec3{}, true
		}
		var sum [3]float64
		for _, v := range m.vertices {
			sum[0] += float64(v.X)
			sum[1] += float64(v.Y)
			sum[2] += float64(v.Z)
		}
		n := float64(len(m.vertices))
		center = math.Vec3{X: float32(sum[0] / n), Y: float32(sum[1] / n), Z: float32(sum[2] / n)}
	case CenterBounds:
		center = m.bounds.Center()
	default:
		return math.Vec3{}, false
	}

	offset := center.Neg()
	m.transformPositions(math.Translate(offset.X, offset.Y, offset.Z))
	m.updateDerived()
	return offset, true
}

// Scale multiplies every position component-wise. A uniform positive scale
// leaves normals alone. Otherwise normals are mapped through the inverse
// transpose, and a negative product reverses winding. A zero factor leaves
// normals stale; callers should recalculate them.
func (m *Mesh) Scale(sx, sy, sz float32) {
	m.transformPositions(math.Scale(sx, sy, sz))

	if !(sx == sy && sy == sz && sx > 0) && sx != 0 && sy != 0 && sz != 0 {
		inv := math.Scale(1/sx, 1/sy, 1/sz)
		for i, n := range m.normals {
			m.normals[i] = inv.TransformDirection(n).Normalize().CleanZeros()
		}
		if sx*sy*sz < 0 {
			m.reverseCorners()
		}
	}
	m.updateDerived()
}

func (m *Mesh) transformPositions(t math.Mat4) {
	for i, v := range m.vertices {
		m.vertices[i] = t.TransformVec3(v).CleanZeros()
	}
}

// Transform applies an affine transform to every position and rebuilds the
// normals. Mirroring transforms reverse winding. On error the mesh is
// unchanged.
func (m *Mesh) Transform(t math.Mat4) error {
	c := m.Clone()
	c.transformPositions(t)
	if t.Determinant3() < 0 {
		c.reverseCorners()
	}
	if err := c.RecalculateNormals(); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	*m = *c
	return nil
}

// Rotate applies a rotation about the origin.
func (m *Mesh) Rotate(q math.Quat) error {
	return m.Transform(q.ToMat4())
}

// AxisSource names the input axis that feeds an output axis, optionally
// negated.
type AxisSource struct {
	Axis   math.Axis
	Negate bool
}

// ReassignAxes rebuilds each position so that output X, Y and Z take the
// given source components. The sources must be a permutation of the axes.
func (m *Mesh) ReassignAxes(x, y, z AxisSource) error {
	var seen [3]bool
	for _, s := range []AxisSource{x, y, z} {
		if s.Axis < math.AxisX || s.Axis > math.AxisZ || seen[s.Axis] {
			return ErrInvalidAxisMap
		}
		seen[s.Axis] = true
	}

	row := func(s AxisSource) math.Vec3 {
		if s.Negate {
			return math.Vec3{}.With(s.Axis, -1)
		}
		return math.Vec3{}.With(s.Axis, 1)
	}
	return m.Transform(math.Mat4FromRows(row(x), row(y), row(z)))
}
