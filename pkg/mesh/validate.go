package mesh

import (
	gomath "math"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
)

// Tolerances configure polygon validation.
type Tolerances struct {
	// Coplanarity is the largest distance a corner may lie from the plane
	// of the face's first three corners.
	Coplanarity float32 `yaml:"coplanarity"`
	// Convexity is the smallest turn (as the sine of the angle between
	// consecutive edges) treated as a real turn rather than a straight run.
	Convexity float32 `yaml:"convexity"`
}

// DefaultTolerances returns the validation tolerances used when none are
// configured.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Coplanarity: 1e-3,
		Convexity:   1e-4,
	}
}

// Issue keys reported by FindBadPolygons.
const (
	KeyIndexRange  = "mesh.indexRange"
	KeyNonCoplanar = "polygon.nonCoplanar"
	KeyNonConvex   = "polygon.nonConvex"
	KeyDegenerate  = "polygon.degenerate"
)

// FindBadPolygons flags faces that are not planar or not convex. Vertex data
// is never modified. It returns false, after reporting a Stop issue, if the
// mesh is structurally broken.
func (m *Mesh) FindBadPolygons(sink issues.Sink, tol Tolerances) bool {
	if err := m.Check(); err != nil {
		issues.Stopf(sink, KeyIndexRange, "The mesh is damaged: %v.", err)
		return false
	}

	var nonCoplanar, nonConvex, degenerate int
	for i := range m.faces {
		flags, isDegenerate := m.classifyFace(i, tol)
		m.faces[i].Flags = flags
		if flags&FlagNonCoplanar != 0 {
			nonCoplanar++
		}
		if flags&FlagNonConvex != 0 {
			nonConvex++
		}
		if isDegenerate {
			degenerate++
		}
	}
	m.updateDerived()

	if nonCoplanar > 0 {
		issues.Warnf(sink, KeyNonCoplanar, "%d of %d faces are not planar.", nonCoplanar, len(m.faces))
	}
	if nonConvex > 0 {
		issues.Warnf(sink, KeyNonConvex, "%d of %d faces are not convex.", nonConvex, len(m.faces))
	}
	if degenerate > 0 {
		issues.Warnf(sink, KeyDegenerate, "%d faces have no area.", degenerate)
	}
	return true
}

// classifyFace computes the validation flags of face i.
func (m *Mesh) classifyFace(i int, tol Tolerances) (FaceFlags, bool) {
	pts := m.FacePositions(i)

	normal := m.newellNormal(m.cornerVertices[m.faces[i].FirstCorner : m.faces[i].FirstCorner+uint32(len(pts))])
	plane := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
	if normal.Length() == 0 {
		normal = plane
	}
	if normal.Length() == 0 {
		return FlagNonConvex, true
	}
	normal = normal.Normalize()

	var flags FaceFlags
	if len(pts) > 3 {
		if plane.Length() == 0 {
			plane = normal
		}
		plane = plane.Normalize()
		for _, p := range pts[3:] {
			if d := p.Sub(pts[0]).Dot(plane); d > tol.Coplanarity || d < -tol.Coplanarity {
				flags |= FlagNonCoplanar
				break
			}
		}
		if !isConvex(pts, normal, tol.Convexity) {
			flags |= FlagNonConvex
		}
	}
	return flags, false
}

// isConvex checks that every turn around the polygon goes the same way and
// that the turns add up to a single revolution, which rejects stars.
func isConvex(pts []math.Vec3, normal math.Vec3, tol float32) bool {
	n := len(pts)
	var positive, negative bool
	var total float64
	for k := 0; k < n; k++ {
		prev := pts[(k+n-1)%n]
		cur := pts[k]
		next := pts[(k+1)%n]
		e1 := cur.Sub(prev)
		e2 := next.Sub(cur)
		l1, l2 := e1.Length(), e2.Length()
		if l1 == 0 || l2 == 0 {
			continue
		}
		sin := e1.Cross(e2).Dot(normal) / (l1 * l2)
		cos := e1.Dot(e2) / (l1 * l2)
		switch {
		case sin > tol:
			positive = true
		case sin < -tol:
			negative = true
		}
		total += gomath.Atan2(float64(sin), float64(cos))
	}
	if positive && negative {
		return false
	}
	return gomath.Abs(gomath.Abs(total)-2*gomath.Pi) < 0.5
}
