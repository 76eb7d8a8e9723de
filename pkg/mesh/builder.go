package mesh

import (
	"fmt"

	"github.com/Faultbox/drydock/pkg/math"
)

// Builder accumulates attributes and faces while a codec parses a file.
// Build freezes the result into a Mesh.
type Builder struct {
	m Mesh
}

// NewBuilder returns an empty builder for a mesh with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{m: Mesh{name: name}}
}

// SetName renames the mesh being built.
func (b *Builder) SetName(name string) {
	b.m.name = name
}

// AddVertex appends a position without deduplication.
func (b *Builder) AddVertex(v math.Vec3) (Index, error) {
	return appendAttr(&b.m.vertices, v)
}

// AddNormal appends a normal without deduplication. Normals that are
// already unit length within math.ComparisonMargin are stored as given.
func (b *Builder) AddNormal(v math.Vec3) (Index, error) {
	if l := v.Length() - 1; l > math.ComparisonMargin || l < -math.ComparisonMargin {
		v = v.Normalize()
	}
	return appendAttr(&b.m.normals, v.CleanZeros())
}

// AddTexCoord appends a texture coordinate without deduplication.
func (b *Builder) AddTexCoord(v math.Vec2) (Index, error) {
	return appendAttr(&b.m.texCoords, v)
}

// AddMaterial appends a material without deduplication.
func (b *Builder) AddMaterial(mat Material) (Index, error) {
	return appendAttr(&b.m.materials, mat)
}

// SetVertices replaces the positions, typically with a finalized set.
func (b *Builder) SetVertices(vs []math.Vec3) error {
	return setAttr(&b.m.vertices, vs)
}

// SetNormals replaces the normals.
func (b *Builder) SetNormals(ns []math.Vec3) error {
	return setAttr(&b.m.normals, ns)
}

// SetTexCoords replaces the texture coordinates.
func (b *Builder) SetTexCoords(ts []math.Vec2) error {
	return setAttr(&b.m.texCoords, ts)
}

// SetMaterials replaces the materials.
func (b *Builder) SetMaterials(ms []Material) error {
	return setAttr(&b.m.materials, ms)
}

// NumVertices returns the number of positions added so far.
func (b *Builder) NumVertices() int { return len(b.m.vertices) }

// NumNormals returns the number of normals added so far.
func (b *Builder) NumNormals() int { return len(b.m.normals) }

// NumTexCoords returns the number of texture coordinates added so far.
func (b *Builder) NumTexCoords() int { return len(b.m.texCoords) }

// NumFaces returns the number of faces added so far.
func (b *Builder) NumFaces() int { return len(b.m.faces) }

// AddFace appends a face. FirstCorner and VertexCount of f are filled in
// from corners.
func (b *Builder) AddFace(f Face, corners []Corner) error {
	if len(corners) < 3 || len(corners) > MaxVertsPerFace {
		return fmt.Errorf("%w: %d", ErrBadVertexCount, len(corners))
	}
	f.FirstCorner = uint32(len(b.m.cornerVertices))
	f.VertexCount = uint8(len(corners))
	for _, c := range corners {
		b.m.cornerVertices = append(b.m.cornerVertices, c.Vertex)
		b.m.cornerTexCoords = append(b.m.cornerTexCoords, c.TexCoord)
		b.m.cornerNormals = append(b.m.cornerNormals, c.Normal)
	}
	b.m.faces = append(b.m.faces, f)
	return nil
}

// Build checks the invariants and returns the finished mesh. The builder
// must not be used afterwards.
func (b *Builder) Build() (*Mesh, error) {
	m := b.m
	b.m = Mesh{}
	if err := m.Check(); err != nil {
		return nil, err
	}
	m.updateDerived()
	return &m, nil
}

// BuildWithNormals is Build for inputs that carry no normals: every face
// gets a placeholder normal and RecalculateNormals fills in the real ones.
func (b *Builder) BuildWithNormals() (*Mesh, error) {
	b.m.normals = []math.Vec3{{Z: 1}}
	for i := range b.m.faces {
		b.m.faces[i].Normal = 0
	}
	for i := range b.m.cornerNormals {
		b.m.cornerNormals[i] = 0
	}
	m, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := m.RecalculateNormals(); err != nil {
		return nil, err
	}
	return m, nil
}

func appendAttr[T any](dst *[]T, v T) (Index, error) {
	if len(*dst) >= int(IndexMax) {
		return IndexNotFound, ErrTooManyAttributes
	}
	*dst = append(*dst, v)
	return Index(len(*dst) - 1), nil
}

func setAttr[T any](dst *[]T, vs []T) error {
	if len(vs) > int(IndexMax) {
		return ErrTooManyAttributes
	}
	*dst = vs
	return nil
}
