package mesh

import (
	"fmt"

	"github.com/Faultbox/drydock/pkg/math"
)

// degenerateNormal is used for faces whose positions span no area.
var degenerateNormal = math.Vec3{Z: 1}

// RecalculateNormals gives every face a flat normal computed from its first
// three corners and points all of the face's corners at it. On error the
// mesh is unchanged.
func (m *Mesh) RecalculateNormals() error {
	set := NewNormalSet(len(m.faces))
	faceNormals := make([]Index, len(m.faces))
	for i := range m.faces {
		idx, err := set.IndexFor(m.faceNormal(i))
		if err != nil {
			return fmt.Errorf("recalculating normals: %w", err)
		}
		faceNormals[i] = idx
	}

	m.normals = set.TakeArray()
	for i := range m.faces {
		f := &m.faces[i]
		f.Normal = faceNormals[i]
		_, _, ns := m.FaceCorners(i)
		for k := range ns {
			ns[k] = f.Normal
		}
	}
	m.updateDerived()
	return nil
}

// faceNormal returns the unit normal of face i. Faces whose first three
// corners are collinear fall back to Newell's method over all corners,
// then to +Z.
func (m *Mesh) faceNormal(i int) math.Vec3 {
	vs, _, _ := m.FaceCorners(i)
	a, b, c := m.vertices[vs[0]], m.vertices[vs[1]], m.vertices[vs[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() > 0 && n.IsFinite() {
		return n.Normalize()
	}
	if n = m.newellNormal(vs); n.Length() > 0 && n.IsFinite() {
		return n.Normalize()
	}
	return degenerateNormal
}

// newellNormal returns the area-weighted (unnormalized) normal of a polygon.
func (m *Mesh) newellNormal(vs []Index) math.Vec3 {
	var n math.Vec3
	for k := range vs {
		cur := m.vertices[vs[k]]
		next := m.vertices[vs[(k+1)%len(vs)]]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}
