package formats

import (
	"strconv"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// DAT issue keys.
const (
	KeyDATBadToken        = "dat.badToken"
	KeyDATSectionOrder    = "dat.sectionOrder"
	KeyDATIndexRange      = "dat.indexRange"
	KeyDATBadFace         = "dat.badFace"
	KeyDATBadColor        = "dat.badColor"
	KeyDATBadTextureScale = "dat.badTextureScale"
	KeyDATSkippedSection  = "dat.skippedSection"
	KeyDATMissingEnd      = "dat.missingEnd"
	KeyDATTooManyVertices = "dat.tooManyVertices"
)

// datFace is a FACES row plus its optional TEXTURES row.
type datFace struct {
	line     int
	color    [3]uint8
	verts    []mesh.Index
	textured bool
	texture  string
	st       []math.Vec2
}

type datReader struct {
	lex  *DATLexer
	opts Options
	sink issues.Sink

	nVerts   int
	nFaces   int
	vertices []math.Vec3
	faces    []datFace
	textured bool
}

// ReadDAT parses an Oolite DAT mesh.
//
// Layout: NVERTS and NFACES counts, a VERTEX section with one "x y z" row per
// vertex, a FACES section with one "r g b  nx ny nz  n  i0 .. in-1" row per
// face and an optional TEXTURES section with one "name sScale tScale  s0 t0
// .." row per face, followed by END. Face normals in the file are ignored
// and recomputed. NORMALS and TANGENTS sections are skipped.
func ReadDAT(data []byte, opts Options, sink issues.Sink) (*mesh.Mesh, error) {
	r := &datReader{lex: NewDATLexer(data), opts: opts, sink: sink}
	if err := r.parse(); err != nil {
		return nil, err
	}
	return r.build()
}

func (r *datReader) parse() error {
	var err error
	if r.nVerts, err = r.readCount(TokenNVerts); err != nil {
		return err
	}
	if r.nVerts > int(mesh.IndexMax) {
		return issues.Stopf(r.sink, KeyDATTooManyVertices,
			"The file declares %d vertices; at most %d are supported.", r.nVerts, mesh.IndexMax)
	}
	if r.nFaces, err = r.readCount(TokenNFaces); err != nil {
		return err
	}

	if err := r.beginSection(TokenVertex); err != nil {
		return err
	}
	if err := r.readVertices(); err != nil {
		return err
	}
	if err := r.beginSection(TokenFaces); err != nil {
		return err
	}
	if err := r.readFaces(); err != nil {
		return err
	}

	sawEnd := false
	for {
		tok := r.lex.SkipEOLs()
		switch tok {
		case TokenEOF:
			if !sawEnd {
				issues.NoteAt(r.sink, r.lex.LineNumber(), KeyDATMissingEnd, "The file has no END marker.")
			}
			return nil

		case TokenEnd:
			sawEnd = true
			r.lex.NextToken()

		case TokenTextures:
			if r.textured {
				return issues.StopAt(r.sink, r.lex.LineNumber(), KeyDATSectionOrder, "The file has two TEXTURES sections.")
			}
			r.lex.NextToken()
			if err := r.endOfLine(); err != nil {
				return err
			}
			if err := r.readTextures(); err != nil {
				return err
			}

		case TokenNormals, TokenTangents:
			issues.NoteAt(r.sink, r.lex.LineNumber(), KeyDATSkippedSection,
				"The %s section was ignored; normals are recalculated.", tok)
			r.lex.NextToken()
			for r.lex.Token() != TokenEOF && !r.lex.Token().IsSection() {
				r.lex.NextToken()
			}

		case TokenVertex, TokenFaces, TokenNVerts, TokenNFaces:
			return issues.StopAt(r.sink, r.lex.LineNumber(), KeyDATSectionOrder,
				"Unexpected %s after the FACES section.", tok)

		default:
			return r.badToken("a section name")
		}
	}
}

// readCount reads a "KEYWORD n" header line.
func (r *datReader) readCount(keyword DATToken) (int, error) {
	if r.lex.SkipEOLs() != keyword {
		return 0, issues.StopAt(r.sink, r.lex.LineNumber(), KeyDATSectionOrder,
			"Expected %s, found %s.", keyword, r.describe())
	}
	r.lex.NextToken()
	n, ok := r.lex.ReadInteger()
	if !ok {
		return 0, r.badToken("a count")
	}
	return int(n), r.endOfLine()
}

// beginSection consumes a section keyword line. END markers before it are
// tolerated.
func (r *datReader) beginSection(section DATToken) error {
	for r.lex.SkipEOLs() == TokenEnd {
		r.lex.NextToken()
	}
	if r.lex.Token() != section {
		return issues.StopAt(r.sink, r.lex.LineNumber(), KeyDATSectionOrder,
			"Expected %s, found %s.", section, r.describe())
	}
	r.lex.NextToken()
	return r.endOfLine()
}

func (r *datReader) readVertices() error {
	r.vertices = make([]math.Vec3, 0, r.nVerts)
	for i := 0; i < r.nVerts; i++ {
		r.lex.SkipEOLs()
		var xyz [3]float32
		for k := range xyz {
			v, ok := r.lex.ReadReal()
			if !ok {
				return r.badToken("a vertex coordinate")
			}
			xyz[k] = v
		}
		if err := r.endOfLine(); err != nil {
			return err
		}
		r.vertices = append(r.vertices, math.Vec3FromArray(xyz))
	}
	return nil
}

func (r *datReader) readFaces() error {
	r.faces = make([]datFace, 0, min(r.nFaces, 1<<16))
	for i := 0; i < r.nFaces; i++ {
		r.lex.SkipEOLs()
		f := datFace{line: r.lex.LineNumber()}

		for k := range f.color {
			c, ok := r.lex.ReadInteger()
			if !ok {
				return r.badToken("a colour component")
			}
			if c > 255 {
				issues.WarnAt(r.sink, f.line, KeyDATBadColor, "Face %d has colour component %d; 255 was used.", i, c)
				c = 255
			}
			f.color[k] = uint8(c)
		}
		for k := 0; k < 3; k++ {
			if _, ok := r.lex.ReadReal(); !ok {
				return r.badToken("a normal component")
			}
		}

		count, ok := r.lex.ReadInteger()
		if !ok {
			return r.badToken("a vertex count")
		}
		if count < 3 {
			return issues.StopAt(r.sink, f.line, KeyDATBadFace, "Face %d has %d vertices; at least 3 are needed.", i, count)
		}
		if count > uint32(mesh.IndexMax) {
			return issues.StopAt(r.sink, f.line, KeyDATBadFace, "Face %d claims %d vertices.", i, count)
		}

		f.verts = make([]mesh.Index, count)
		for k := range f.verts {
			v, ok := r.lex.ReadInteger()
			if !ok {
				return r.badToken("a vertex index")
			}
			if v >= uint32(r.nVerts) {
				return issues.StopAt(r.sink, f.line, KeyDATIndexRange,
					"Face %d refers to vertex %d, but there are only %d.", i, v, r.nVerts)
			}
			f.verts[k] = mesh.Index(v)
		}
		if err := r.endOfLine(); err != nil {
			return err
		}
		r.faces = append(r.faces, f)
	}
	return nil
}

func (r *datReader) readTextures() error {
	r.textured = true
	for i := range r.faces {
		r.lex.SkipEOLs()
		f := &r.faces[i]
		line := r.lex.LineNumber()

		name, ok := r.lex.ReadString()
		if !ok {
			return r.badToken("a texture name")
		}
		sScale, ok1 := r.lex.ReadReal()
		tScale, ok2 := r.lex.ReadReal()
		if !ok1 || !ok2 {
			return r.badToken("a texture scale")
		}
		if sScale == 0 || tScale == 0 {
			issues.WarnAt(r.sink, line, KeyDATBadTextureScale, "Face %d has a zero texture scale; 1 was used.", i)
			sScale, tScale = 1, 1
		}

		f.st = make([]math.Vec2, len(f.verts))
		for k := range f.st {
			s, ok1 := r.lex.ReadReal()
			t, ok2 := r.lex.ReadReal()
			if !ok1 || !ok2 {
				return r.badToken("a texture coordinate")
			}
			f.st[k] = math.Vec2{X: s / sScale, Y: t / tScale}
		}
		if err := r.endOfLine(); err != nil {
			return err
		}
		f.textured = true
		f.texture = name
	}
	return nil
}

func (r *datReader) build() (*mesh.Mesh, error) {
	b := mesh.NewBuilder(r.opts.Name)
	if err := b.SetVertices(r.vertices); err != nil {
		return nil, issues.Stopf(r.sink, KeyDATTooManyVertices, "The mesh has too many vertices: %v.", err)
	}

	// Exact dedup keeps texture coordinates bit-identical through a round trip.
	texCoords := mesh.NewAttributeSet[math.Vec2](mesh.TexCoordKind{}, 0)
	materials := mesh.NewMaterialSet(0)

	for i, f := range r.faces {
		material := mesh.IndexNotFound
		if f.textured {
			idx, err := materials.IndexFor(mesh.Material{Name: f.texture, DiffuseMap: f.texture})
			if err != nil {
				return nil, issues.StopAt(r.sink, f.line, KeyMeshInvalid, "Too many textures: %v.", err)
			}
			material = idx
		}

		corners := make([]mesh.Corner, len(f.verts))
		for k, v := range f.verts {
			corners[k] = mesh.Corner{Vertex: v, TexCoord: mesh.IndexNotFound}
			if f.textured {
				idx, err := texCoords.IndexFor(f.st[k])
				if err != nil {
					return nil, issues.StopAt(r.sink, f.line, KeyMeshInvalid, "Too many texture coordinates: %v.", err)
				}
				corners[k].TexCoord = idx
			}
		}

		pieces, err := fitFace(corners, i, f.line, r.opts, r.sink)
		if err != nil {
			return nil, err
		}
		for _, p := range pieces {
			if err := b.AddFace(mesh.Face{Material: material, Color: f.color}, p); err != nil {
				return nil, issues.StopAt(r.sink, f.line, KeyDATBadFace, "Face %d: %v.", i, err)
			}
		}
	}

	if err := b.SetTexCoords(texCoords.TakeArray()); err != nil {
		return nil, issues.Stopf(r.sink, KeyMeshInvalid, "%v", err)
	}
	if err := b.SetMaterials(materials.TakeArray()); err != nil {
		return nil, issues.Stopf(r.sink, KeyMeshInvalid, "%v", err)
	}
	return buildMesh(b, true, r.sink)
}

// endOfLine requires the current token to end the line and moves past it.
func (r *datReader) endOfLine() error {
	switch r.lex.Token() {
	case TokenEOL:
		r.lex.NextToken()
		return nil
	case TokenEOF:
		return nil
	default:
		return r.badToken("end of line")
	}
}

func (r *datReader) badToken(want string) error {
	return issues.StopAt(r.sink, r.lex.LineNumber(), KeyDATBadToken, "Expected %s, found %s.", want, r.describe())
}

func (r *datReader) describe() string {
	switch tok := r.lex.Token(); tok {
	case TokenEOF, TokenEOL:
		return tok.String()
	default:
		return strconv.Quote(r.lex.TokenText())
	}
}
