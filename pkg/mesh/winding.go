package mesh

// ReverseWinding flips every face: corner order is reversed and all normals
// are negated. Applying it twice restores the mesh.
func (m *Mesh) ReverseWinding() {
	m.reverseCorners()
	for i, n := range m.normals {
		m.normals[i] = n.Neg().CleanZeros()
	}
	m.updateDerived()
}

// reverseCorners reverses the corner order of every face, leaving normals
// alone.
func (m *Mesh) reverseCorners() {
	for i := range m.faces {
		vs, ts, ns := m.FaceCorners(i)
		reverse(vs)
		reverse(ts)
		reverse(ns)
	}
}

func reverse(s []Index) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
