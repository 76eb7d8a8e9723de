package formats

import (
	"bufio"
	"bytes"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// OBJ issue keys.
const (
	KeyOBJBadNumber        = "obj.badNumber"
	KeyOBJIndexRange       = "obj.indexRange"
	KeyOBJDegenerateFace   = "obj.degenerateFace"
	KeyOBJUnknownDirective = "obj.unknownDirective"
	KeyOBJMaterialLibrary  = "obj.materialLibrary"
	KeyOBJMissingNormals   = "obj.missingNormals"
	KeyOBJLineTooLong      = "obj.lineTooLong"
)

type objReader struct {
	b    *mesh.Builder
	opts Options
	sink issues.Sink
	line int

	named          bool
	materials      *mesh.AttributeSet[mesh.Material]
	material       mesh.Index
	smoothing      uint32
	missingNormals int
	unknown        map[string]bool
}

// ReadOBJ parses a Wavefront OBJ mesh. Attributes are stored in file order
// without merging, so indices in the file map directly onto the mesh. If
// any face corner lacks a normal, all normals are recalculated.
func ReadOBJ(data []byte, opts Options, sink issues.Sink) (*mesh.Mesh, error) {
	r := &objReader{
		b:         mesh.NewBuilder(opts.Name),
		opts:      opts,
		sink:      sink,
		materials: mesh.NewMaterialSet(0),
		material:  mesh.IndexNotFound,
		unknown:   make(map[string]bool),
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		r.line++
		if err := r.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, issues.StopAt(sink, r.line+1, KeyOBJLineTooLong, "The file could not be read: %v.", err)
	}

	if err := r.b.SetMaterials(r.materials.TakeArray()); err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "%v", err)
	}

	recalc := r.missingNormals > 0 || r.b.NumNormals() == 0
	if recalc && r.b.NumFaces() > 0 {
		issues.Notef(sink, KeyOBJMissingNormals, "%d face corners have no normal; normals were recalculated.", r.missingNormals)
	}
	return buildMesh(r.b, recalc, sink)
}

func (r *objReader) parseLine(line string) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := r.vec3(fields[1:])
		if err != nil {
			return err
		}
		if _, err := r.b.AddVertex(v); err != nil {
			return issues.StopAt(r.sink, r.line, KeyMeshInvalid, "Too many vertices: %v.", err)
		}

	case "vn":
		v, err := r.vec3(fields[1:])
		if err != nil {
			return err
		}
		if _, err := r.b.AddNormal(v); err != nil {
			return issues.StopAt(r.sink, r.line, KeyMeshInvalid, "Too many normals: %v.", err)
		}

	case "vt":
		if len(fields) < 2 {
			return issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Texture coordinate needs a number.")
		}
		u, err := r.real(fields[1])
		if err != nil {
			return err
		}
		var v float32
		if len(fields) > 2 {
			if v, err = r.real(fields[2]); err != nil {
				return err
			}
		}
		if _, err := r.b.AddTexCoord(math.Vec2{X: u, Y: v}); err != nil {
			return issues.StopAt(r.sink, r.line, KeyMeshInvalid, "Too many texture coordinates: %v.", err)
		}

	case "f":
		return r.face(fields[1:])

	case "usemtl":
		if len(fields) < 2 {
			r.material = mesh.IndexNotFound
			return nil
		}
		name := strings.Join(fields[1:], " ")
		idx, err := r.materials.IndexFor(mesh.Material{Name: name})
		if err != nil {
			return issues.StopAt(r.sink, r.line, KeyMeshInvalid, "Too many materials: %v.", err)
		}
		r.material = idx

	case "s":
		r.smoothing = 0
		if len(fields) > 1 && fields[1] != "off" {
			n, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				return issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Bad smoothing group %q.", fields[1])
			}
			r.smoothing = uint32(n)
		}

	case "o", "g":
		if len(fields) > 1 && !r.named && r.opts.Name == "" {
			r.b.SetName(strings.Join(fields[1:], " "))
			r.named = true
		}

	case "mtllib":
		issues.NoteAt(r.sink, r.line, KeyOBJMaterialLibrary,
			"Material library %s was not loaded; material names were kept.", strings.Join(fields[1:], " "))

	default:
		if !r.unknown[fields[0]] {
			r.unknown[fields[0]] = true
			issues.NoteAt(r.sink, r.line, KeyOBJUnknownDirective, "Ignored unsupported directive %q.", fields[0])
		}
	}
	return nil
}

// face parses "f" corners of the form v, v/t, v//n or v/t/n.
func (r *objReader) face(args []string) error {
	if len(args) < 3 {
		issues.WarnAt(r.sink, r.line, KeyOBJDegenerateFace, "Face with %d vertices was skipped.", len(args))
		return nil
	}

	corners := make([]mesh.Corner, len(args))
	for k, arg := range args {
		parts := strings.Split(arg, "/")
		if len(parts) > 3 {
			return issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Bad face corner %q.", arg)
		}
		for len(parts) < 3 {
			parts = append(parts, "")
		}

		v, err := r.index(parts[0], r.b.NumVertices(), "vertex")
		if err != nil {
			return err
		}
		if v == mesh.IndexNotFound {
			return issues.StopAt(r.sink, r.line, KeyOBJIndexRange, "Face corner %q has no vertex.", arg)
		}
		t, err := r.index(parts[1], r.b.NumTexCoords(), "texture coordinate")
		if err != nil {
			return err
		}
		n, err := r.index(parts[2], r.b.NumNormals(), "normal")
		if err != nil {
			return err
		}
		if n == mesh.IndexNotFound {
			r.missingNormals++
			n = 0
		}
		corners[k] = mesh.Corner{Vertex: v, TexCoord: t, Normal: n}
	}

	face := r.b.NumFaces()
	pieces, err := fitFace(corners, face, r.line, r.opts, r.sink)
	if err != nil {
		return err
	}
	for _, p := range pieces {
		f := mesh.Face{
			Normal:         p[0].Normal,
			Material:       r.material,
			SmoothingGroup: r.smoothing,
		}
		if err := r.b.AddFace(f, p); err != nil {
			return issues.StopAt(r.sink, r.line, KeyMeshInvalid, "%v", err)
		}
	}
	return nil
}

// index resolves a 1-based or negative relative OBJ index. An empty field
// yields IndexNotFound.
func (r *objReader) index(field string, count int, what string) (mesh.Index, error) {
	if field == "" {
		return mesh.IndexNotFound, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Bad %s index %q.", what, field)
	}
	if n < 0 {
		n += count + 1
	}
	if n < 1 || n > count {
		return 0, issues.StopAt(r.sink, r.line, KeyOBJIndexRange,
			"Reference to %s %s, but there are only %d.", what, field, count)
	}
	return mesh.Index(n - 1), nil
}

func (r *objReader) vec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Expected three numbers.")
	}
	var xyz [3]float32
	for k := range xyz {
		f, err := r.real(fields[k])
		if err != nil {
			return math.Vec3{}, err
		}
		xyz[k] = f
	}
	return math.Vec3FromArray(xyz), nil
}

func (r *objReader) real(field string) (float32, error) {
	f, err := strconv.ParseFloat(field, 32)
	if err != nil || gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return 0, issues.StopAt(r.sink, r.line, KeyOBJBadNumber, "Bad number %q.", field)
	}
	return float32(f), nil
}
