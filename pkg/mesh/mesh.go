package mesh

import (
	"fmt"

	"github.com/Faultbox/drydock/pkg/math"
)

// Material is a named surface, usually backed by a diffuse texture.
type Material struct {
	Name       string `yaml:"name"`
	DiffuseMap string `yaml:"diffuse_map,omitempty"`
}

// FaceFlags record validator results for a face.
type FaceFlags uint8

const (
	FlagNonCoplanar FaceFlags = 1 << iota
	FlagNonConvex
)

// Face is a polygon. Its corners live in the mesh's corner arrays at
// FirstCorner .. FirstCorner+VertexCount.
type Face struct {
	Normal         Index
	Material       Index // IndexNotFound when untextured
	FirstCorner    uint32
	VertexCount    uint8
	Flags          FaceFlags
	SmoothingGroup uint32
	Color          [3]uint8
}

// IsTriangle reports whether the face has exactly three corners.
func (f Face) IsTriangle() bool {
	return f.VertexCount == 3
}

// Corner holds the per-corner attribute indices of a face.
type Corner struct {
	Vertex   Index
	TexCoord Index // IndexNotFound when absent
	Normal   Index
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max math.Vec3
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Mesh is an indexed polygon mesh. All geometry is held in flat arrays
// addressed by Index; faces never point at each other.
type Mesh struct {
	name string

	vertices  []math.Vec3
	normals   []math.Vec3
	texCoords []math.Vec2
	materials []Material

	faces           []Face
	cornerVertices  []Index
	cornerTexCoords []Index
	cornerNormals   []Index

	// Derived from the arrays above by updateDerived.
	bounds          Bounds
	maxRadius       float32
	hasNonTriangles bool
	hasBadPolygons  bool
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// SetName renames the mesh.
func (m *Mesh) SetName(name string) { m.name = name }

// Vertices returns the vertex positions. The slice must not be modified.
func (m *Mesh) Vertices() []math.Vec3 { return m.vertices }

// Normals returns the unit normals. The slice must not be modified.
func (m *Mesh) Normals() []math.Vec3 { return m.normals }

// TexCoords returns the texture coordinates. The slice must not be modified.
func (m *Mesh) TexCoords() []math.Vec2 { return m.texCoords }

// Materials returns the materials. The slice must not be modified.
func (m *Mesh) Materials() []Material { return m.materials }

// Faces returns the faces. The slice must not be modified.
func (m *Mesh) Faces() []Face { return m.faces }

// VertexCount returns the number of vertex positions.
func (m *Mesh) VertexCount() int { return len(m.vertices) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// CornerCount returns the total number of face corners.
func (m *Mesh) CornerCount() int { return len(m.cornerVertices) }

// FaceCorners returns the position, texcoord and normal indices of face i.
// The slices alias mesh storage and must not be modified.
func (m *Mesh) FaceCorners(i int) (vertices, texCoords, normals []Index) {
	f := m.faces[i]
	lo, hi := f.FirstCorner, f.FirstCorner+uint32(f.VertexCount)
	return m.cornerVertices[lo:hi], m.cornerTexCoords[lo:hi], m.cornerNormals[lo:hi]
}

// Corners returns a copy of the corners of face i.
func (m *Mesh) Corners(i int) []Corner {
	vs, ts, ns := m.FaceCorners(i)
	out := make([]Corner, len(vs))
	for k := range vs {
		out[k] = Corner{Vertex: vs[k], TexCoord: ts[k], Normal: ns[k]}
	}
	return out
}

// FacePositions returns the vertex positions of face i in winding order.
func (m *Mesh) FacePositions(i int) []math.Vec3 {
	vs, _, _ := m.FaceCorners(i)
	out := make([]math.Vec3, len(vs))
	for k, v := range vs {
		out[k] = m.vertices[v]
	}
	return out
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() Bounds { return m.bounds }

// MaxRadius returns the greatest vertex distance from the origin.
func (m *Mesh) MaxRadius() float32 { return m.maxRadius }

// Length returns the extent along Z.
func (m *Mesh) Length() float32 { return m.bounds.Max.Z - m.bounds.Min.Z }

// Width returns the extent along X.
func (m *Mesh) Width() float32 { return m.bounds.Max.X - m.bounds.Min.X }

// Height returns the extent along Y.
func (m *Mesh) Height() float32 { return m.bounds.Max.Y - m.bounds.Min.Y }

// HasNonTriangles reports whether any face has more than three corners.
func (m *Mesh) HasNonTriangles() bool { return m.hasNonTriangles }

// HasBadPolygons reports whether the last validation flagged any face.
func (m *Mesh) HasBadPolygons() bool { return m.hasBadPolygons }

// HasTexCoords reports whether any face corner carries a texture coordinate.
func (m *Mesh) HasTexCoords() bool {
	for _, t := range m.cornerTexCoords {
		if t != IndexNotFound {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.vertices = append([]math.Vec3(nil), m.vertices...)
	c.normals = append([]math.Vec3(nil), m.normals...)
	c.texCoords = append([]math.Vec2(nil), m.texCoords...)
	c.materials = append([]Material(nil), m.materials...)
	c.faces = append([]Face(nil), m.faces...)
	c.cornerVertices = append([]Index(nil), m.cornerVertices...)
	c.cornerTexCoords = append([]Index(nil), m.cornerTexCoords...)
	c.cornerNormals = append([]Index(nil), m.cornerNormals...)
	return &c
}

// Check verifies the structural invariants: vertex counts within
// [3, MaxVertsPerFace], corner ranges inside the corner arrays and every
// referenced index inside its attribute array.
func (m *Mesh) Check() error {
	nCorners := uint32(len(m.cornerVertices))
	if len(m.cornerTexCoords) != int(nCorners) || len(m.cornerNormals) != int(nCorners) {
		return fmt.Errorf("%w: corner arrays differ in length", ErrIndexOutOfRange)
	}
	for i, f := range m.faces {
		if f.VertexCount < 3 || f.VertexCount > MaxVertsPerFace {
			return fmt.Errorf("face %d: %w: %d", i, ErrBadVertexCount, f.VertexCount)
		}
		if f.FirstCorner+uint32(f.VertexCount) > nCorners {
			return fmt.Errorf("face %d: %w: corners %d..%d of %d", i, ErrIndexOutOfRange,
				f.FirstCorner, f.FirstCorner+uint32(f.VertexCount), nCorners)
		}
		if int(f.Normal) >= len(m.normals) {
			return fmt.Errorf("face %d: %w: normal %d of %d", i, ErrIndexOutOfRange, f.Normal, len(m.normals))
		}
		if f.Material != IndexNotFound && int(f.Material) >= len(m.materials) {
			return fmt.Errorf("face %d: %w: material %d of %d", i, ErrIndexOutOfRange, f.Material, len(m.materials))
		}
		vs, ts, ns := m.FaceCorners(i)
		for k := range vs {
			if int(vs[k]) >= len(m.vertices) {
				return fmt.Errorf("face %d: %w: vertex %d of %d", i, ErrIndexOutOfRange, vs[k], len(m.vertices))
			}
			if ts[k] != IndexNotFound && int(ts[k]) >= len(m.texCoords) {
				return fmt.Errorf("face %d: %w: texcoord %d of %d", i, ErrIndexOutOfRange, ts[k], len(m.texCoords))
			}
			if int(ns[k]) >= len(m.normals) {
				return fmt.Errorf("face %d: %w: normal %d of %d", i, ErrIndexOutOfRange, ns[k], len(m.normals))
			}
		}
	}
	return nil
}

// updateDerived recomputes bounds, radius and face summary flags.
func (m *Mesh) updateDerived() {
	m.bounds = Bounds{}
	m.maxRadius = 0
	for i, v := range m.vertices {
		if i == 0 {
			m.bounds = Bounds{Min: v, Max: v}
		} else {
			m.bounds.Min = m.bounds.Min.Min(v)
			m.bounds.Max = m.bounds.Max.Max(v)
		}
		if r := v.Length(); r > m.maxRadius {
			m.maxRadius = r
		}
	}

	m.hasNonTriangles = false
	m.hasBadPolygons = false
	for _, f := range m.faces {
		if f.VertexCount > 3 {
			m.hasNonTriangles = true
		}
		if f.Flags != 0 {
			m.hasBadPolygons = true
		}
	}
}
