// Package mesh holds the indexed polygon mesh used by the editor together
// with its repair, transform and validation operations.
package mesh

import (
	"errors"
	gomath "math"
)

// Index refers to an entry in one of a mesh's attribute arrays.
type Index uint16

const (
	// IndexNotFound marks an absent reference (no material, no texcoord).
	IndexNotFound Index = gomath.MaxUint16
	// IndexMax is one past the largest usable index.
	IndexMax Index = IndexNotFound - 1
)

// MaxVertsPerFace is the polygon size limit of the game engine.
const MaxVertsPerFace = 16

// Mesh errors.
var (
	ErrTooManyAttributes = errors.New("too many distinct attribute values for index range")
	ErrSetFinalized      = errors.New("attribute set already finalized")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrBadVertexCount    = errors.New("face vertex count out of range")
	ErrInvalidAxisMap    = errors.New("axis mapping is not a permutation")
	ErrInvalidFactor     = errors.New("simplification factor must be in (0, 1]")
)

// Valid reports whether i can address an array entry.
func (i Index) Valid() bool {
	return i < IndexMax
}
