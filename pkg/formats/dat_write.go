package formats

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/drydock/pkg/encoding"
	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// PlaceholderTexture is written for untextured faces of a textured mesh.
const PlaceholderTexture = "placeholder.png"

// DAT writer issue keys.
const (
	KeyDATEmptyMesh      = "dat.emptyMesh"
	KeyDATNonTriangles   = "dat.nonTriangles"
	KeyDATBadPolygons    = "dat.badPolygons"
	KeyDATUntexturedFace = "dat.untexturedFace"
	KeyDATTextureName    = "dat.textureName"
)

// GatherDATIssues reports problems that affect how Oolite will load m once
// it is saved as DAT. It returns an error if m cannot be saved at all.
func GatherDATIssues(m *mesh.Mesh, sink issues.Sink) error {
	if m.FaceCount() == 0 {
		return issues.Stopf(sink, KeyDATEmptyMesh, "The mesh has no faces.")
	}
	if err := m.Check(); err != nil {
		return issues.Stopf(sink, KeyMeshInvalid, "The mesh is damaged: %v.", err)
	}

	if m.HasNonTriangles() {
		n := 0
		for _, f := range m.Faces() {
			if !f.IsTriangle() {
				n++
			}
		}
		issues.Notef(sink, KeyDATNonTriangles, "Oolite will triangulate %d faces with more than three vertices.", n)
	}
	if m.HasBadPolygons() {
		issues.Warnf(sink, KeyDATBadPolygons, "Some faces are not flat or not convex and may render incorrectly.")
	}

	if datTextured(m) {
		n := 0
		for _, f := range m.Faces() {
			if f.Material == mesh.IndexNotFound {
				n++
			}
		}
		if n > 0 {
			issues.Warnf(sink, KeyDATUntexturedFace, "%d faces have no texture and will use %s.", n, PlaceholderTexture)
		}
	}
	return nil
}

// WriteDAT encodes m as an Oolite DAT file. The output depends only on m.
func WriteDAT(m *mesh.Mesh, sink issues.Sink) ([]byte, error) {
	if err := GatherDATIssues(m, sink); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("// Written by drydock\n")
	if name := strings.Join(strings.Fields(m.Name()), " "); name != "" {
		fmt.Fprintf(&buf, "// Name: %s\n", name)
	}
	fmt.Fprintf(&buf, "\nNVERTS %d\nNFACES %d\n", m.VertexCount(), m.FaceCount())

	buf.WriteString("\nVERTEX\n")
	for _, v := range m.Vertices() {
		v = v.CleanZeros()
		fmt.Fprintf(&buf, "%s, %s, %s\n", formatReal(v.X), formatReal(v.Y), formatReal(v.Z))
	}

	buf.WriteString("\nFACES\n")
	normals := m.Normals()
	for i, f := range m.Faces() {
		n := normals[f.Normal].CleanZeros()
		fmt.Fprintf(&buf, "%d,%d,%d,\t%s,%s,%s,\t%d,\t", f.Color[0], f.Color[1], f.Color[2],
			formatReal(n.X), formatReal(n.Y), formatReal(n.Z), f.VertexCount)
		vs, _, _ := m.FaceCorners(i)
		for k, v := range vs {
			if k > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(int(v)))
		}
		buf.WriteByte('\n')
	}

	if datTextured(m) {
		buf.WriteString("\nTEXTURES\n")
		names := datTextureNames(m, sink)
		texCoords := m.TexCoords()
		for i, f := range m.Faces() {
			name := PlaceholderTexture
			if f.Material != mesh.IndexNotFound {
				name = names[f.Material]
			}
			buf.WriteString(name)
			buf.WriteString("\t1 1")
			_, ts, _ := m.FaceCorners(i)
			for _, t := range ts {
				var st math.Vec2
				if t != mesh.IndexNotFound {
					st = texCoords[t].CleanZeros()
				}
				fmt.Fprintf(&buf, "\t%s %s", formatReal(st.X), formatReal(st.Y))
			}
			buf.WriteByte('\n')
		}
	}

	buf.WriteString("\nEND\n")
	return buf.Bytes(), nil
}

func datTextured(m *mesh.Mesh) bool {
	for _, f := range m.Faces() {
		if f.Material != mesh.IndexNotFound {
			return true
		}
	}
	return false
}

// datTextureNames returns the texture file name of every material, made safe
// for the DAT lexer.
func datTextureNames(m *mesh.Mesh, sink issues.Sink) []string {
	mats := m.Materials()
	names := make([]string, len(mats))
	for i, mat := range mats {
		name := mat.DiffuseMap
		if name == "" {
			name = mat.Name
		}
		if name == "" {
			name = PlaceholderTexture
		}
		safe := strings.Map(func(r rune) rune {
			if r < 0x80 && isDATSeparator(byte(r)) {
				return '_'
			}
			return r
		}, name)
		if strings.HasPrefix(safe, "#") || strings.HasPrefix(safe, "//") {
			safe = "_" + safe
		}
		if safe != name {
			issues.Warnf(sink, KeyDATTextureName, "Texture name %q was written as %q.", name, safe)
		}
		if !encoding.IsASCII(safe) {
			issues.Notef(sink, KeyDATTextureName, "Texture name %q is not plain ASCII; older Oolite versions may not find it.", safe)
		}
		names[i] = safe
	}
	return names
}

// formatReal returns the shortest text that reads back as the same float32.
func formatReal(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
