package mesh

import "github.com/Faultbox/drydock/pkg/math"

// Difference summarises how two meshes differ.
type Difference struct {
	VertexDelta   int
	FaceDelta     int
	MaterialDelta int
	MinDelta      math.Vec3 // other.Bounds().Min - m.Bounds().Min
	MaxDelta      math.Vec3 // other.Bounds().Max - m.Bounds().Max
	SameTopology  bool      // identical face sizes and vertex references
}

// Compare reports the differences between m and other.
func (m *Mesh) Compare(other *Mesh) Difference {
	d := Difference{
		VertexDelta:   len(other.vertices) - len(m.vertices),
		FaceDelta:     len(other.faces) - len(m.faces),
		MaterialDelta: len(other.materials) - len(m.materials),
		MinDelta:      other.bounds.Min.Sub(m.bounds.Min),
		MaxDelta:      other.bounds.Max.Sub(m.bounds.Max),
	}

	d.SameTopology = len(m.faces) == len(other.faces) && len(m.cornerVertices) == len(other.cornerVertices)
	if d.SameTopology {
		for i := range m.faces {
			if m.faces[i].VertexCount != other.faces[i].VertexCount {
				d.SameTopology = false
				break
			}
		}
	}
	if d.SameTopology {
		for i := range m.cornerVertices {
			if m.cornerVertices[i] != other.cornerVertices[i] {
				d.SameTopology = false
				break
			}
		}
	}
	return d
}

// Identical reports whether the comparison found no difference at all.
func (d Difference) Identical() bool {
	return d.VertexDelta == 0 && d.FaceDelta == 0 && d.MaterialDelta == 0 &&
		d.MinDelta == (math.Vec3{}) && d.MaxDelta == (math.Vec3{}) && d.SameTopology
}
