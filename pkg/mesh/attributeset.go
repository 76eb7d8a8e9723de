package mesh

import (
	gomath "math"
	"math/bits"

	"github.com/Faultbox/drydock/pkg/math"
)

// Key is the hashable lookup cell of a canonical attribute value.
type Key struct {
	A, B, C int64
	Name    string
}

// IndexValue describes how values of T are stored in an AttributeSet:
// the canonical form kept in the set, the lookup cell of a canonical value,
// the cells that may hold an equal value, and equality within tolerance.
type IndexValue[T any] interface {
	Canonical(v T) T
	Key(v T) Key
	Neighbors(k Key) []Key
	Equal(a, b T) bool
}

// AttributeSet maps values to stable indices, storing each distinct value
// once in insertion order.
type AttributeSet[T any] struct {
	kind   IndexValue[T]
	values []T
	lookup map[Key][]Index
	taken  bool
}

// NewAttributeSet returns an empty set with room for capacity values.
func NewAttributeSet[T any](kind IndexValue[T], capacity int) *AttributeSet[T] {
	s := &AttributeSet[T]{
		kind:   kind,
		lookup: make(map[Key][]Index, capacity),
	}
	s.grow(capacity)
	return s
}

// IndexFor returns the index of a value equal to v, adding v if none exists.
func (s *AttributeSet[T]) IndexFor(v T) (Index, error) {
	if s.taken {
		return IndexNotFound, ErrSetFinalized
	}
	c := s.kind.Canonical(v)
	if idx, ok := s.find(c); ok {
		return idx, nil
	}
	if len(s.values) >= int(IndexMax) {
		return IndexNotFound, ErrTooManyAttributes
	}

	s.grow(len(s.values) + 1)
	idx := Index(len(s.values))
	s.values = append(s.values, c)
	k := s.kind.Key(c)
	s.lookup[k] = append(s.lookup[k], idx)
	return idx, nil
}

// Len returns the number of distinct values.
func (s *AttributeSet[T]) Len() int {
	return len(s.values)
}

// TakeArray hands the backing array to the caller. The set is unusable
// afterwards.
func (s *AttributeSet[T]) TakeArray() []T {
	out := s.values
	s.values = nil
	s.lookup = nil
	s.taken = true
	return out
}

func (s *AttributeSet[T]) find(c T) (Index, bool) {
	for _, k := range s.kind.Neighbors(s.kind.Key(c)) {
		for _, idx := range s.lookup[k] {
			if s.kind.Equal(s.values[idx], c) {
				return idx, true
			}
		}
	}
	return IndexNotFound, false
}

// grow makes room for n values, rounding capacity up to a power of two.
func (s *AttributeSet[T]) grow(n int) {
	if n <= cap(s.values) {
		return
	}
	size := 1 << bits.Len(uint(n-1))
	if limit := int(IndexMax); size > limit {
		size = limit
	}
	values := make([]T, len(s.values), size)
	copy(values, s.values)
	s.values = values
}

// VectorKind stores 3D vectors. Normalize is set for normal sets.
type VectorKind struct {
	Tolerance float32
	Normalize bool
}

// Canonical cleans signed zeros and, for normals, scales to unit length.
func (k VectorKind) Canonical(v math.Vec3) math.Vec3 {
	if k.Normalize {
		v = v.Normalize()
	}
	return v.CleanZeros()
}

// Key quantizes v to a cell of size Tolerance.
func (k VectorKind) Key(v math.Vec3) Key {
	return Key{A: cell(v.X, k.Tolerance), B: cell(v.Y, k.Tolerance), C: cell(v.Z, k.Tolerance)}
}

// Neighbors returns the 27 cells around key, key first.
func (k VectorKind) Neighbors(key Key) []Key {
	if k.Tolerance <= 0 {
		return []Key{key}
	}
	out := make([]Key, 0, 27)
	out = append(out, key)
	for da := int64(-1); da <= 1; da++ {
		for db := int64(-1); db <= 1; db++ {
			for dc := int64(-1); dc <= 1; dc++ {
				if da == 0 && db == 0 && dc == 0 {
					continue
				}
				out = append(out, Key{A: key.A + da, B: key.B + db, C: key.C + dc})
			}
		}
	}
	return out
}

// Equal compares within Tolerance.
func (k VectorKind) Equal(a, b math.Vec3) bool {
	return a.ApproxEqual(b, k.Tolerance)
}

// TexCoordKind stores texture coordinates.
type TexCoordKind struct {
	Tolerance float32
}

// Canonical cleans signed zeros.
func (k TexCoordKind) Canonical(v math.Vec2) math.Vec2 {
	return v.CleanZeros()
}

// Key quantizes v to a cell of size Tolerance.
func (k TexCoordKind) Key(v math.Vec2) Key {
	return Key{A: cell(v.X, k.Tolerance), B: cell(v.Y, k.Tolerance)}
}

// Neighbors returns the 9 cells around key, key first.
func (k TexCoordKind) Neighbors(key Key) []Key {
	if k.Tolerance <= 0 {
		return []Key{key}
	}
	out := make([]Key, 0, 9)
	out = append(out, key)
	for da := int64(-1); da <= 1; da++ {
		for db := int64(-1); db <= 1; db++ {
			if da == 0 && db == 0 {
				continue
			}
			out = append(out, Key{A: key.A + da, B: key.B + db})
		}
	}
	return out
}

// Equal compares within Tolerance.
func (k TexCoordKind) Equal(a, b math.Vec2) bool {
	return a.ApproxEqual(b, k.Tolerance)
}

// MaterialKind identifies materials by name.
type MaterialKind struct{}

func (MaterialKind) Canonical(m Material) Material { return m }
func (MaterialKind) Key(m Material) Key            { return Key{Name: m.Name} }
func (MaterialKind) Neighbors(k Key) []Key         { return []Key{k} }
func (MaterialKind) Equal(a, b Material) bool      { return a.Name == b.Name }

// NewPositionSet returns a set of vertex positions merged within tol.
func NewPositionSet(capacity int, tol float32) *AttributeSet[math.Vec3] {
	return NewAttributeSet[math.Vec3](VectorKind{Tolerance: tol}, capacity)
}

// NewNormalSet returns a set of unit normals.
func NewNormalSet(capacity int) *AttributeSet[math.Vec3] {
	return NewAttributeSet[math.Vec3](VectorKind{Tolerance: math.ComparisonMargin, Normalize: true}, capacity)
}

// NewTexCoordSet returns a set of texture coordinates.
func NewTexCoordSet(capacity int) *AttributeSet[math.Vec2] {
	return NewAttributeSet[math.Vec2](TexCoordKind{Tolerance: math.ComparisonMargin}, capacity)
}

// NewMaterialSet returns a set of materials keyed by name.
func NewMaterialSet(capacity int) *AttributeSet[Material] {
	return NewAttributeSet[Material](MaterialKind{}, capacity)
}

// cell quantizes f to a grid of the given size. A zero size keys on the
// exact bit pattern.
func cell(f, size float32) int64 {
	if size <= 0 {
		return int64(gomath.Float32bits(f))
	}
	c := gomath.Floor(float64(f) / float64(size))
	if gomath.IsNaN(c) || gomath.IsInf(c, 0) {
		return int64(gomath.Float32bits(f))
	}
	return int64(c)
}
