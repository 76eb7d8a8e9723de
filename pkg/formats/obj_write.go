package formats

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// WriteOBJ encodes m as Wavefront OBJ: positions, then texture coordinates,
// then normals, then faces. Kinds the mesh lacks are left out. Face colours
// have no OBJ equivalent and are dropped.
func WriteOBJ(m *mesh.Mesh, sink issues.Sink) ([]byte, error) {
	if err := m.Check(); err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "The mesh is damaged: %v.", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# Written by drydock\n")
	if len(m.Materials()) > 0 && m.Name() != "" {
		fmt.Fprintf(&buf, "mtllib %s.mtl\n", m.Name())
	}
	if m.Name() != "" {
		fmt.Fprintf(&buf, "o %s\n", m.Name())
	}

	for _, v := range m.Vertices() {
		fmt.Fprintf(&buf, "v %s %s %s\n", formatReal(v.X), formatReal(v.Y), formatReal(v.Z))
	}
	for _, t := range m.TexCoords() {
		fmt.Fprintf(&buf, "vt %s %s\n", formatReal(t.X), formatReal(t.Y))
	}
	for _, n := range m.Normals() {
		fmt.Fprintf(&buf, "vn %s %s %s\n", formatReal(n.X), formatReal(n.Y), formatReal(n.Z))
	}

	materials := m.Materials()
	material := mesh.IndexNotFound
	var smoothing uint32
	for i, f := range m.Faces() {
		if f.Material != material {
			material = f.Material
			if material == mesh.IndexNotFound {
				buf.WriteString("usemtl\n")
			} else {
				fmt.Fprintf(&buf, "usemtl %s\n", materials[material].Name)
			}
		}
		if f.SmoothingGroup != smoothing {
			smoothing = f.SmoothingGroup
			if smoothing == 0 {
				buf.WriteString("s off\n")
			} else {
				fmt.Fprintf(&buf, "s %d\n", smoothing)
			}
		}

		buf.WriteString("f")
		vs, ts, ns := m.FaceCorners(i)
		for k := range vs {
			buf.WriteByte(' ')
			buf.WriteString(strconv.Itoa(int(vs[k]) + 1))
			buf.WriteByte('/')
			if ts[k] != mesh.IndexNotFound {
				buf.WriteString(strconv.Itoa(int(ts[k]) + 1))
			}
			buf.WriteByte('/')
			buf.WriteString(strconv.Itoa(int(ns[k]) + 1))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteMTL returns a material library for the materials of m, pointing
// each at its diffuse texture.
func WriteMTL(m *mesh.Mesh) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Written by drydock\n")
	for _, mat := range m.Materials() {
		fmt.Fprintf(&buf, "\nnewmtl %s\nKd 1 1 1\n", mat.Name)
		if mat.DiffuseMap != "" {
			fmt.Fprintf(&buf, "map_Kd %s\n", mat.DiffuseMap)
		}
	}
	return buf.Bytes()
}
