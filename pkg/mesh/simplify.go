package mesh

import (
	"fmt"

	"github.com/fogleman/simplify"

	"github.com/Faultbox/drydock/pkg/math"
)

// Simplify reduces the triangle count to roughly factor times the current
// count using quadric edge collapse. Texture coordinates do not survive;
// every resulting face takes the material and colour of the first face.
// On error the mesh is unchanged.
func (m *Mesh) Simplify(factor float64) error {
	if factor <= 0 || factor > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidFactor, factor)
	}
	if factor == 1 || len(m.faces) == 0 {
		return nil
	}

	var tris []*simplify.Triangle
	for i := range m.faces {
		pts := m.FacePositions(i)
		for k := 1; k+1 < len(pts); k++ {
			tris = append(tris, simplify.NewTriangle(toSimplify(pts[0]), toSimplify(pts[k]), toSimplify(pts[k+1])))
		}
	}
	reduced := simplify.NewMesh(tris).Simplify(factor)

	template := m.faces[0]
	b := NewBuilder(m.name)
	var materials []Material
	if template.Material != IndexNotFound {
		materials = []Material{m.materials[template.Material]}
		template.Material = 0
	}
	if err := b.SetMaterials(materials); err != nil {
		return err
	}

	positions := NewPositionSet(len(m.vertices), math.ComparisonMargin)
	for _, t := range reduced.Triangles {
		var corners [3]Corner
		for k, v := range [3]simplify.Vector{t.V1, t.V2, t.V3} {
			idx, err := positions.IndexFor(fromSimplify(v))
			if err != nil {
				return fmt.Errorf("simplify: %w", err)
			}
			corners[k] = Corner{Vertex: idx, TexCoord: IndexNotFound}
		}
		if corners[0].Vertex == corners[1].Vertex || corners[1].Vertex == corners[2].Vertex || corners[0].Vertex == corners[2].Vertex {
			continue
		}
		f := Face{Material: template.Material, Color: template.Color, SmoothingGroup: template.SmoothingGroup}
		if err := b.AddFace(f, corners[:]); err != nil {
			return err
		}
	}
	if err := b.SetVertices(positions.TakeArray()); err != nil {
		return err
	}

	out, err := b.BuildWithNormals()
	if err != nil {
		return fmt.Errorf("simplify: %w", err)
	}
	*m = *out
	return nil
}

func toSimplify(v math.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromSimplify(v simplify.Vector) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
