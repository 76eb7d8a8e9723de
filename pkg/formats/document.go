package formats

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// DocumentVersion is the current DryDock document version.
const DocumentVersion = 1

// Document issue keys.
const (
	KeyDocDecode  = "document.decode"
	KeyDocVersion = "document.version"
	KeyDocIndex   = "document.index"
)

// documentFile is the YAML layout of a DryDock document. It stores the mesh
// arrays as they are, so a document round trip is exact. Absent indices are
// written as -1.
type documentFile struct {
	Format    string          `yaml:"format"`
	Version   int             `yaml:"version"`
	Name      string          `yaml:"name,omitempty"`
	Materials []mesh.Material `yaml:"materials,omitempty"`
	Vertices  []vec3          `yaml:"vertices"`
	Normals   []vec3          `yaml:"normals"`
	TexCoords []vec2          `yaml:"texcoords,omitempty"`
	Faces     []documentFace  `yaml:"faces"`
}

type documentFace struct {
	Normal    int    `yaml:"normal"`
	Material  int    `yaml:"material"`
	Color     [3]int `yaml:"color,flow"`
	Smoothing uint32 `yaml:"smoothing,omitempty"`
	Vertices  []int  `yaml:"vertices,flow"`
	TexCoords []int  `yaml:"texcoords,flow,omitempty"`
	Normals   []int  `yaml:"normals,flow"`
}

type vec3 [3]float32

// MarshalYAML writes the vector on one line.
func (v vec3) MarshalYAML() (any, error) {
	return flowNode([3]float32(v))
}

type vec2 [2]float32

// MarshalYAML writes the vector on one line.
func (v vec2) MarshalYAML() (any, error) {
	return flowNode([2]float32(v))
}

func flowNode(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

const documentFormat = "drydock-mesh"

// WriteDocument encodes m as a DryDock YAML document.
func WriteDocument(m *mesh.Mesh, sink issues.Sink) ([]byte, error) {
	if err := m.Check(); err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "The mesh is damaged: %v.", err)
	}

	doc := documentFile{
		Format:    documentFormat,
		Version:   DocumentVersion,
		Name:      m.Name(),
		Materials: m.Materials(),
	}
	for _, v := range m.Vertices() {
		doc.Vertices = append(doc.Vertices, vec3(v.Array()))
	}
	for _, n := range m.Normals() {
		doc.Normals = append(doc.Normals, vec3(n.Array()))
	}
	for _, t := range m.TexCoords() {
		doc.TexCoords = append(doc.TexCoords, vec2{t.X, t.Y})
	}

	for i, f := range m.Faces() {
		vs, ts, ns := m.FaceCorners(i)
		df := documentFace{
			Normal:    int(f.Normal),
			Material:  indexToInt(f.Material),
			Color:     [3]int{int(f.Color[0]), int(f.Color[1]), int(f.Color[2])},
			Smoothing: f.SmoothingGroup,
			Vertices:  make([]int, len(vs)),
			Normals:   make([]int, len(ns)),
		}
		textured := false
		for k := range vs {
			df.Vertices[k] = int(vs[k])
			df.Normals[k] = int(ns[k])
			textured = textured || ts[k] != mesh.IndexNotFound
		}
		if textured {
			df.TexCoords = make([]int, len(ts))
			for k, t := range ts {
				df.TexCoords[k] = indexToInt(t)
			}
		}
		doc.Faces = append(doc.Faces, df)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, issues.Stopf(sink, KeyDocDecode, "The document could not be encoded: %v.", err)
	}
	if err := enc.Close(); err != nil {
		return nil, issues.Stopf(sink, KeyDocDecode, "The document could not be encoded: %v.", err)
	}
	return buf.Bytes(), nil
}

// ReadDocument decodes a DryDock YAML document.
func ReadDocument(data []byte, sink issues.Sink) (*mesh.Mesh, error) {
	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, issues.Stopf(sink, KeyDocDecode, "The document could not be decoded: %v.", err)
	}
	if doc.Format != documentFormat {
		return nil, issues.Stopf(sink, KeyDocDecode, "This is not a DryDock mesh document (format %q).", doc.Format)
	}
	if doc.Version > DocumentVersion {
		return nil, issues.Stopf(sink, KeyDocVersion,
			"The document was written by a newer version (%d); this version reads up to %d.", doc.Version, DocumentVersion)
	}

	b := mesh.NewBuilder(doc.Name)
	vertices := make([]math.Vec3, len(doc.Vertices))
	for i, v := range doc.Vertices {
		vertices[i] = math.Vec3FromArray(v)
	}
	normals := make([]math.Vec3, len(doc.Normals))
	for i, n := range doc.Normals {
		normals[i] = math.Vec3FromArray(n)
	}
	texCoords := make([]math.Vec2, len(doc.TexCoords))
	for i, t := range doc.TexCoords {
		texCoords[i] = math.Vec2{X: t[0], Y: t[1]}
	}
	for _, err := range []error{
		b.SetVertices(vertices),
		b.SetNormals(normals),
		b.SetTexCoords(texCoords),
		b.SetMaterials(doc.Materials),
	} {
		if err != nil {
			return nil, issues.Stopf(sink, KeyMeshInvalid, "%v", err)
		}
	}

	for i, df := range doc.Faces {
		if err := addDocumentFace(b, df); err != nil {
			return nil, issues.Stopf(sink, KeyDocIndex, "Face %d: %v.", i, err)
		}
	}
	return buildMesh(b, false, sink)
}

func addDocumentFace(b *mesh.Builder, df documentFace) error {
	if len(df.Normals) != len(df.Vertices) || (df.TexCoords != nil && len(df.TexCoords) != len(df.Vertices)) {
		return fmt.Errorf("corner lists differ in length")
	}
	normal, err := intToIndex(df.Normal, false)
	if err != nil {
		return err
	}
	material, err := intToIndex(df.Material, true)
	if err != nil {
		return err
	}

	corners := make([]mesh.Corner, len(df.Vertices))
	for k := range corners {
		c := mesh.Corner{TexCoord: mesh.IndexNotFound}
		if c.Vertex, err = intToIndex(df.Vertices[k], false); err != nil {
			return err
		}
		if c.Normal, err = intToIndex(df.Normals[k], false); err != nil {
			return err
		}
		if df.TexCoords != nil {
			if c.TexCoord, err = intToIndex(df.TexCoords[k], true); err != nil {
				return err
			}
		}
		corners[k] = c
	}

	f := mesh.Face{
		Normal:         normal,
		Material:       material,
		SmoothingGroup: df.Smoothing,
	}
	for k, c := range df.Color {
		if c < 0 || c > 255 {
			return fmt.Errorf("colour component %d out of range", c)
		}
		f.Color[k] = uint8(c)
	}
	return b.AddFace(f, corners)
}

func indexToInt(i mesh.Index) int {
	if i == mesh.IndexNotFound {
		return -1
	}
	return int(i)
}

func intToIndex(i int, optional bool) (mesh.Index, error) {
	if i == -1 && optional {
		return mesh.IndexNotFound, nil
	}
	if i < 0 || i >= int(mesh.IndexMax) {
		return 0, fmt.Errorf("%w: %d", mesh.ErrIndexOutOfRange, i)
	}
	return mesh.Index(i), nil
}
