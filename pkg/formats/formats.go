// Package formats reads and writes meshes in the file formats drydock
// supports: Oolite DAT, Wavefront OBJ, binary glTF and the native DryDock
// YAML document.
//
// Readers never panic on malformed input. They report problems to an
// issues.Sink and return a non-nil error exactly when they reported a Stop.
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// ErrUnknownFormat is returned for paths whose extension is not recognized.
var ErrUnknownFormat = errors.New("unknown mesh format")

// Format identifies a mesh file format.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatDAT
	FormatOBJ
	FormatGLB
	FormatDocument
)

// DocumentExt is the file suffix of DryDock documents.
const DocumentExt = ".drydock.yaml"

// String returns the short format name.
func (f Format) String() string {
	switch f {
	case FormatDAT:
		return "dat"
	case FormatOBJ:
		return "obj"
	case FormatGLB:
		return "glb"
	case FormatDocument:
		return "drydock"
	default:
		return "unknown"
	}
}

// DetectFormat guesses the format of path from its extension.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, DocumentExt) || strings.HasSuffix(lower, ".drydock.yml") {
		return FormatDocument
	}
	switch filepath.Ext(lower) {
	case ".dat":
		return FormatDAT
	case ".obj":
		return FormatOBJ
	case ".glb":
		return FormatGLB
	default:
		return FormatUnknown
	}
}

// ParseFormat converts a short format name back into a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatDAT, FormatOBJ, FormatGLB, FormatDocument} {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// OversizePolicy decides what readers do with faces that have more corners
// than Options.MaxVertsPerFace.
type OversizePolicy int

// Oversize policies.
const (
	// OversizeReject stops the read.
	OversizeReject OversizePolicy = iota
	// OversizeTruncate keeps the first MaxVertsPerFace corners.
	OversizeTruncate
	// OversizeSplit fans the polygon into several faces.
	OversizeSplit
)

// String returns the policy name used in configuration files.
func (p OversizePolicy) String() string {
	switch p {
	case OversizeReject:
		return "reject"
	case OversizeTruncate:
		return "truncate"
	case OversizeSplit:
		return "split"
	default:
		return fmt.Sprintf("OversizePolicy(%d)", int(p))
	}
}

// ParseOversizePolicy parses a policy name.
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch strings.ToLower(s) {
	case "reject":
		return OversizeReject, nil
	case "truncate":
		return OversizeTruncate, nil
	case "split":
		return OversizeSplit, nil
	default:
		return 0, fmt.Errorf("unknown oversize policy %q", s)
	}
}

// Options control the readers.
type Options struct {
	// Name is given to the mesh when the file does not name it.
	Name string
	// MaxVertsPerFace caps the corners per face. Values outside
	// [3, mesh.MaxVertsPerFace] mean mesh.MaxVertsPerFace.
	MaxVertsPerFace int
	// Oversize handles faces above the cap.
	Oversize OversizePolicy
}

// DefaultOptions returns the reader options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxVertsPerFace: mesh.MaxVertsPerFace,
		Oversize:        OversizeSplit,
	}
}

func (o Options) maxVerts() int {
	if o.MaxVertsPerFace < 3 || o.MaxVertsPerFace > mesh.MaxVertsPerFace {
		return mesh.MaxVertsPerFace
	}
	return o.MaxVertsPerFace
}

// Issue keys shared by the readers.
const (
	KeyTooManyVertices = "face.tooManyVertices"
	KeyMeshInvalid     = "mesh.invalid"
)

// fitFace applies the oversize policy to a polygon's corners. It returns the
// corner lists of the faces to create, or an error after reporting a Stop.
func fitFace(corners []mesh.Corner, face int, line int, opts Options, sink issues.Sink) ([][]mesh.Corner, error) {
	limit := opts.maxVerts()
	if len(corners) <= limit {
		return [][]mesh.Corner{corners}, nil
	}

	switch opts.Oversize {
	case OversizeTruncate:
		issues.WarnAt(sink, line, KeyTooManyVertices,
			"Face %d has %d vertices; only the first %d were kept.", face, len(corners), limit)
		return [][]mesh.Corner{corners[:limit]}, nil

	case OversizeSplit:
		issues.WarnAt(sink, line, KeyTooManyVertices,
			"Face %d has %d vertices and was split into smaller faces.", face, len(corners))
		var out [][]mesh.Corner
		for start := 1; start < len(corners)-1; {
			end := min(start+limit-2, len(corners)-1)
			piece := make([]mesh.Corner, 0, end-start+2)
			piece = append(piece, corners[0])
			piece = append(piece, corners[start:end+1]...)
			out = append(out, piece)
			start = end
		}
		return out, nil

	default:
		return nil, issues.StopAt(sink, line, KeyTooManyVertices,
			"Face %d has %d vertices; at most %d are allowed.", face, len(corners), limit)
	}
}

// Read decodes data in the given format.
func Read(f Format, data []byte, opts Options, sink issues.Sink) (*mesh.Mesh, error) {
	switch f {
	case FormatDAT:
		return ReadDAT(data, opts, sink)
	case FormatOBJ:
		return ReadOBJ(data, opts, sink)
	case FormatGLB:
		return ReadGLB(data, opts, sink)
	case FormatDocument:
		return ReadDocument(data, sink)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// Write encodes m in the given format.
func Write(f Format, m *mesh.Mesh, sink issues.Sink) ([]byte, error) {
	switch f {
	case FormatDAT:
		return WriteDAT(m, sink)
	case FormatOBJ:
		return WriteOBJ(m, sink)
	case FormatGLB:
		return WriteGLB(m, sink)
	case FormatDocument:
		return WriteDocument(m, sink)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// buildMesh finishes a builder, turning invariant violations into Stops.
func buildMesh(b *mesh.Builder, recalcNormals bool, sink issues.Sink) (*mesh.Mesh, error) {
	var (
		m   *mesh.Mesh
		err error
	)
	if recalcNormals {
		m, err = b.BuildWithNormals()
	} else {
		m, err = b.Build()
	}
	if err != nil {
		return nil, issues.Stopf(sink, KeyMeshInvalid, "The mesh could not be built: %v.", err)
	}
	return m, nil
}
