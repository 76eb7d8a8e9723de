package mesh

// Triangulate replaces every face with more than three corners by a fan of
// triangles around its first corner. Derived triangles keep the material,
// normal, colour and smoothing group of their polygon. Returns the number
// of faces added.
func (m *Mesh) Triangulate() int {
	if !m.hasNonTriangles {
		return 0
	}

	nTris := 0
	for _, f := range m.faces {
		nTris += int(f.VertexCount) - 2
	}
	added := nTris - len(m.faces)

	faces := make([]Face, 0, nTris)
	cv := make([]Index, 0, nTris*3)
	ct := make([]Index, 0, nTris*3)
	cn := make([]Index, 0, nTris*3)

	for i, f := range m.faces {
		vs, ts, ns := m.FaceCorners(i)
		for k := 1; k+1 < len(vs); k++ {
			tri := f
			tri.FirstCorner = uint32(len(cv))
			tri.VertexCount = 3
			if f.VertexCount > 3 {
				tri.Flags = 0
			}
			for _, c := range [3]int{0, k, k + 1} {
				cv = append(cv, vs[c])
				ct = append(ct, ts[c])
				cn = append(cn, ns[c])
			}
			faces = append(faces, tri)
		}
	}

	m.faces = faces
	m.cornerVertices, m.cornerTexCoords, m.cornerNormals = cv, ct, cn
	m.updateDerived()
	return added
}
