package mesh

// CoalesceVertices merges vertices whose positions are equal within tol,
// rewrites face references to the surviving vertex and drops vertices no
// face uses. Vertex order is otherwise preserved. Returns the number of
// vertices removed.
func (m *Mesh) CoalesceVertices(tol float32) int {
	used := make([]bool, len(m.vertices))
	for _, v := range m.cornerVertices {
		used[v] = true
	}

	set := NewPositionSet(len(m.vertices), tol)
	remap := make([]Index, len(m.vertices))
	for i, v := range m.vertices {
		if !used[i] {
			remap[i] = IndexNotFound
			continue
		}
		idx, err := set.IndexFor(v)
		if err != nil {
			// Cannot happen: the set never grows past the current array.
			return 0
		}
		remap[i] = idx
	}

	before := len(m.vertices)
	m.vertices = set.TakeArray()
	for i, v := range m.cornerVertices {
		m.cornerVertices[i] = remap[v]
	}
	m.updateDerived()
	return before - len(m.vertices)
}
