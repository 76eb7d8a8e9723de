package formats

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// glTF issue keys.
const (
	KeyGLTFDecode        = "gltf.decode"
	KeyGLTFEncode        = "gltf.encode"
	KeyGLTFSkipped       = "gltf.skippedPrimitive"
	KeyGLTFTriangulated  = "gltf.triangulated"
	KeyGLTFNoGeometry    = "gltf.noGeometry"
	KeyGLTFMissingNormal = "gltf.missingNormals"
)

// glbVertex is one unique corner of a glTF primitive.
type glbVertex struct {
	position, normal, texCoord mesh.Index
}

// glbPrimitive collects the vertex streams of one material group.
type glbPrimitive struct {
	material  mesh.Index
	lookup    map[glbVertex]uint32
	positions [][3]float32
	normals   [][3]float32
	texCoords [][2]float32
	indices   []uint32
	textured  bool
}

// WriteGLB encodes a triangulated copy of m as binary glTF. Faces are
// grouped into one primitive per material. Face colours are not exported.
func WriteGLB(m *mesh.Mesh, sink issues.Sink) ([]byte, error) {
	if err := m.Check(); err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "The mesh is damaged: %v.", err)
	}
	if m.FaceCount() == 0 {
		return nil, issues.Stopf(sink, KeyGLTFNoGeometry, "The mesh has no faces.")
	}

	tri := m.Clone()
	if n := tri.Triangulate(); n > 0 {
		issues.Notef(sink, KeyGLTFTriangulated, "%d faces were added to triangulate the export.", n)
	}

	var groups []*glbPrimitive
	byMaterial := make(map[mesh.Index]*glbPrimitive)
	vertices, normals, texCoords := tri.Vertices(), tri.Normals(), tri.TexCoords()
	for i, f := range tri.Faces() {
		g, ok := byMaterial[f.Material]
		if !ok {
			g = &glbPrimitive{material: f.Material, lookup: make(map[glbVertex]uint32)}
			byMaterial[f.Material] = g
			groups = append(groups, g)
		}
		vs, ts, ns := tri.FaceCorners(i)
		for k := range vs {
			key := glbVertex{position: vs[k], normal: ns[k], texCoord: ts[k]}
			idx, ok := g.lookup[key]
			if !ok {
				idx = uint32(len(g.positions))
				g.lookup[key] = idx
				g.positions = append(g.positions, vertices[vs[k]].Array())
				g.normals = append(g.normals, normals[ns[k]].Array())
				var uv math.Vec2
				if ts[k] != mesh.IndexNotFound {
					uv = texCoords[ts[k]]
					g.textured = true
				}
				g.texCoords = append(g.texCoords, [2]float32{uv.X, uv.Y})
			}
			g.indices = append(g.indices, idx)
		}
	}

	doc := gltf.NewDocument()
	materialIndex := make(map[mesh.Index]uint32)
	for i, mat := range tri.Materials() {
		gm := &gltf.Material{Name: mat.Name}
		if mat.DiffuseMap != "" {
			doc.Images = append(doc.Images, &gltf.Image{URI: mat.DiffuseMap})
			doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(uint32(len(doc.Images) - 1))})
			gm.PBRMetallicRoughness = &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: uint32(len(doc.Textures) - 1)},
			}
		}
		doc.Materials = append(doc.Materials, gm)
		materialIndex[mesh.Index(i)] = uint32(len(doc.Materials) - 1)
	}

	gmesh := &gltf.Mesh{Name: m.Name()}
	for _, g := range groups {
		prim := &gltf.Primitive{
			Mode:    gltf.PrimitiveTriangles,
			Indices: gltf.Index(modeler.WriteIndices(doc, g.indices)),
			Attributes: gltf.Attribute{
				gltf.POSITION: modeler.WritePosition(doc, g.positions),
				gltf.NORMAL:   modeler.WriteNormal(doc, g.normals),
			},
		}
		if g.textured {
			prim.Attributes[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, g.texCoords)
		}
		if idx, ok := materialIndex[g.material]; ok {
			prim.Material = gltf.Index(idx)
		}
		gmesh.Primitives = append(gmesh.Primitives, prim)
	}
	doc.Meshes = append(doc.Meshes, gmesh)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.Name(), Mesh: gltf.Index(0)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, issues.Stopf(sink, KeyGLTFEncode, "The glTF file could not be encoded: %v.", err)
	}
	return buf.Bytes(), nil
}

// ReadGLB decodes the triangle primitives of a binary glTF file into one
// mesh. Vertices are not merged across primitives; CoalesceVertices does
// that if wanted.
func ReadGLB(data []byte, opts Options, sink issues.Sink) (*mesh.Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, issues.Stopf(sink, KeyGLTFDecode, "The glTF file could not be decoded: %v.", err)
	}

	name := opts.Name
	if name == "" && len(doc.Meshes) > 0 && doc.Meshes[0] != nil {
		name = doc.Meshes[0].Name
	}
	b := mesh.NewBuilder(name)
	materials := mesh.NewMaterialSet(len(doc.Materials))
	recalc := false

	for mi, gm := range doc.Meshes {
		if gm == nil {
			continue
		}
		for pi, prim := range gm.Primitives {
			if prim == nil {
				continue
			}
			if prim.Mode != gltf.PrimitiveTriangles {
				issues.Warnf(sink, KeyGLTFSkipped, "Mesh %d primitive %d is not made of triangles and was skipped.", mi, pi)
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				issues.Warnf(sink, KeyGLTFSkipped, "Mesh %d primitive %d has no positions and was skipped.", mi, pi)
				continue
			}
			acr, err := gltfAccessor(doc, posIdx)
			if err != nil {
				return nil, issues.Stopf(sink, KeyGLTFDecode, "Mesh %d primitive %d positions: %v.", mi, pi, err)
			}
			positions, err := modeler.ReadPosition(doc, acr, nil)
			if err != nil {
				return nil, issues.Stopf(sink, KeyGLTFDecode, "Mesh %d primitive %d: %v.", mi, pi, err)
			}

			var normals [][3]float32
			if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
				if acr, err = gltfAccessor(doc, idx); err == nil {
					normals, err = modeler.ReadNormal(doc, acr, nil)
				}
				if err != nil {
					return nil, issues.Stopf(sink, KeyGLTFDecode, "Mesh %d primitive %d: %v.", mi, pi, err)
				}
			}
			if len(normals) != len(positions) {
				recalc = true
				normals = nil
			}

			var uvs [][2]float32
			if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				if acr, err = gltfAccessor(doc, idx); err == nil {
					uvs, err = modeler.ReadTextureCoord(doc, acr, nil)
				}
				if err != nil {
					return nil, issues.Stopf(sink, KeyGLTFDecode, "Mesh %d primitive %d: %v.", mi, pi, err)
				}
			}
			if len(uvs) != len(positions) {
				uvs = nil
			}

			var indices []uint32
			if prim.Indices != nil {
				if acr, err = gltfAccessor(doc, *prim.Indices); err == nil {
					indices, err = modeler.ReadIndices(doc, acr, nil)
				}
				if err != nil {
					return nil, issues.Stopf(sink, KeyGLTFDecode, "Mesh %d primitive %d: %v.", mi, pi, err)
				}
			} else {
				indices = make([]uint32, len(positions))
				for k := range indices {
					indices[k] = uint32(k)
				}
			}

			material := mesh.IndexNotFound
			if prim.Material != nil && int(*prim.Material) < len(doc.Materials) && doc.Materials[*prim.Material] != nil {
				material, err = materials.IndexFor(gltfMaterial(doc, int(*prim.Material)))
				if err != nil {
					return nil, issues.Stopf(sink, KeyMeshInvalid, "Too many materials: %v.", err)
				}
			}

			if err := addGLBPrimitive(b, positions, normals, uvs, indices, material); err != nil {
				return nil, issues.Stopf(sink, KeyMeshInvalid, "Mesh %d primitive %d: %v.", mi, pi, err)
			}
		}
	}

	if b.NumFaces() == 0 {
		return nil, issues.Stopf(sink, KeyGLTFNoGeometry, "The glTF file contains no triangles.")
	}
	if err := b.SetMaterials(materials.TakeArray()); err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "%v", err)
	}
	if recalc {
		issues.Notef(sink, KeyGLTFMissingNormal, "Some primitives have no normals; normals were recalculated.")
	}
	return buildMesh(b, recalc, sink)
}

// gltfAccessor returns accessor i when it exists and is backed by a buffer
// view.
func gltfAccessor(doc *gltf.Document, i uint32) (*gltf.Accessor, error) {
	if int(i) >= len(doc.Accessors) || doc.Accessors[i] == nil {
		return nil, fmt.Errorf("accessor %d does not exist", i)
	}
	acr := doc.Accessors[i]
	if acr.BufferView == nil {
		return nil, fmt.Errorf("accessor %d has no buffer view", i)
	}
	return acr, nil
}

func addGLBPrimitive(b *mesh.Builder, positions, normals [][3]float32, uvs [][2]float32, indices []uint32, material mesh.Index) error {
	base := b.NumVertices()
	baseNormal := b.NumNormals()
	baseUV := b.NumTexCoords()
	for k, p := range positions {
		if _, err := b.AddVertex(math.Vec3FromArray(p)); err != nil {
			return err
		}
		if normals != nil {
			if _, err := b.AddNormal(math.Vec3FromArray(normals[k])); err != nil {
				return err
			}
		}
		if uvs != nil {
			if _, err := b.AddTexCoord(math.Vec2{X: uvs[k][0], Y: uvs[k][1]}); err != nil {
				return err
			}
		}
	}

	for i := 0; i+2 < len(indices); i += 3 {
		corners := make([]mesh.Corner, 3)
		for k := range corners {
			idx := indices[i+k]
			if int(idx) >= len(positions) {
				return mesh.ErrIndexOutOfRange
			}
			c := mesh.Corner{Vertex: mesh.Index(base + int(idx)), TexCoord: mesh.IndexNotFound}
			if normals != nil {
				c.Normal = mesh.Index(baseNormal + int(idx))
			}
			if uvs != nil {
				c.TexCoord = mesh.Index(baseUV + int(idx))
			}
			corners[k] = c
		}
		f := mesh.Face{Normal: corners[0].Normal, Material: material, Color: [3]uint8{255, 255, 255}}
		if err := b.AddFace(f, corners); err != nil {
			return err
		}
	}
	return nil
}

// gltfMaterial maps a glTF material to a mesh material, taking the base
// colour texture as the diffuse map.
func gltfMaterial(doc *gltf.Document, i int) mesh.Material {
	gm := doc.Materials[i]
	mat := mesh.Material{Name: gm.Name}
	if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		if t := pbr.BaseColorTexture.Index; int(t) < len(doc.Textures) && doc.Textures[t] != nil {
			if src := doc.Textures[t].Source; src != nil && int(*src) < len(doc.Images) && doc.Images[*src] != nil {
				mat.DiffuseMap = doc.Images[*src].URI
			}
		}
	}
	if mat.Name == "" {
		mat.Name = mat.DiffuseMap
	}
	if mat.Name == "" {
		mat.Name = fmt.Sprintf("material_%d", i)
	}
	return mat
}
