package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/drydock/pkg/math"
)

func TestAttributeSet_SameValueSameIndex(t *testing.T) {
	s := NewPositionSet(0, math.ComparisonMargin)

	a, err := s.IndexFor(math.Vec3{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("IndexFor failed: %v", err)
	}
	b, _ := s.IndexFor(math.Vec3{X: 4, Y: 5, Z: 6})
	c, _ := s.IndexFor(math.Vec3{X: 1, Y: 2, Z: 3})

	if a != 0 || b != 1 {
		t.Errorf("expected insertion-ordered indices 0, 1; got %d, %d", a, b)
	}
	if c != a {
		t.Errorf("re-inserting a value returned %d, want %d", c, a)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 values, got %d", s.Len())
	}
}

func TestAttributeSet_Tolerance(t *testing.T) {
	s := NewPositionSet(4, 0.01)

	base, _ := s.IndexFor(math.Vec3{X: 1, Y: 1, Z: 1})
	tests := []struct {
		name string
		v    math.Vec3
		same bool
	}{
		{"just inside", math.Vec3{X: 1.005, Y: 1, Z: 1}, true},
		{"across a cell edge", math.Vec3{X: 0.995, Y: 0.995, Z: 1.004}, true},
		{"outside", math.Vec3{X: 1.05, Y: 1, Z: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := s.IndexFor(tt.v)
			if err != nil {
				t.Fatalf("IndexFor failed: %v", err)
			}
			if (idx == base) != tt.same {
				t.Errorf("IndexFor(%v) = %d, base %d, want same=%v", tt.v, idx, base, tt.same)
			}
		})
	}
}

func TestAttributeSet_NoTwoEqualEntries(t *testing.T) {
	s := NewPositionSet(0, 0.1)
	for i := 0; i < 200; i++ {
		f := float32(i%37) * 0.07
		s.IndexFor(math.Vec3{X: f, Y: f * 2, Z: -f})
	}
	values := s.TakeArray()
	for i := range values {
		for j := i + 1; j < len(values); j++ {
			if values[i].ApproxEqual(values[j], 0.1) {
				t.Fatalf("entries %d and %d are equal within tolerance: %v %v", i, j, values[i], values[j])
			}
		}
	}
}

func TestNormalSet_NormalizesAndCleansZeros(t *testing.T) {
	s := NewNormalSet(0)
	negZero := float32(gomath.Copysign(0, -1))

	a, _ := s.IndexFor(math.Vec3{X: 0, Y: 0, Z: 1})
	b, _ := s.IndexFor(math.Vec3{X: negZero, Y: negZero, Z: 5})
	if a != b {
		t.Errorf("normals differing by scale and zero sign got indices %d and %d", a, b)
	}

	values := s.TakeArray()
	if len(values) != 1 {
		t.Fatalf("expected 1 normal, got %d", len(values))
	}
	if gomath.Signbit(float64(values[0].X)) {
		t.Errorf("stored normal kept a negative zero: %v", values[0])
	}
}

func TestTexCoordSet_CleansZeros(t *testing.T) {
	s := NewTexCoordSet(0)
	negZero := float32(gomath.Copysign(0, -1))
	a, _ := s.IndexFor(math.Vec2{X: 0, Y: 0.5})
	b, _ := s.IndexFor(math.Vec2{X: negZero, Y: 0.5})
	if a != b {
		t.Errorf("texcoords differing only in zero sign got %d and %d", a, b)
	}
}

func TestMaterialSet_ByName(t *testing.T) {
	s := NewMaterialSet(0)
	a, _ := s.IndexFor(Material{Name: "hull.png", DiffuseMap: "hull.png"})
	b, _ := s.IndexFor(Material{Name: "engine.png"})
	c, _ := s.IndexFor(Material{Name: "hull.png"})
	if a == b || a != c {
		t.Errorf("unexpected material indices %d %d %d", a, b, c)
	}
	if got := s.TakeArray()[a].DiffuseMap; got != "hull.png" {
		t.Errorf("first material entry should win, got diffuse map %q", got)
	}
}

func TestAttributeSet_TakeArrayFinalizes(t *testing.T) {
	s := NewTexCoordSet(8)
	s.IndexFor(math.Vec2{X: 1})
	values := s.TakeArray()
	if len(values) != 1 {
		t.Fatalf("expected 1 value, got %d", len(values))
	}

	if _, err := s.IndexFor(math.Vec2{X: 2}); !errors.Is(err, ErrSetFinalized) {
		t.Errorf("IndexFor after TakeArray: got %v, want ErrSetFinalized", err)
	}
	if s.Len() != 0 {
		t.Errorf("finalized set should be empty, got %d", s.Len())
	}
}

func TestAttributeSet_Overflow(t *testing.T) {
	s := NewAttributeSet[math.Vec3](VectorKind{}, 0)
	for i := 0; i < int(IndexMax); i++ {
		if _, err := s.IndexFor(math.Vec3{X: float32(i)}); err != nil {
			t.Fatalf("IndexFor(%d) failed early: %v", i, err)
		}
	}

	idx, err := s.IndexFor(math.Vec3{X: -1})
	if !errors.Is(err, ErrTooManyAttributes) {
		t.Fatalf("expected ErrTooManyAttributes, got %v", err)
	}
	if idx != IndexNotFound {
		t.Errorf("failed insert returned %d, want IndexNotFound", idx)
	}

	// Existing values are still found.
	if idx, err := s.IndexFor(math.Vec3{X: 7}); err != nil || idx != 7 {
		t.Errorf("lookup of existing value after overflow: %d, %v", idx, err)
	}
}

func TestAttributeSet_GrowsToPowerOfTwo(t *testing.T) {
	s := NewTexCoordSet(5)
	if got := cap(s.values); got != 8 {
		t.Errorf("capacity for 5 = %d, want 8", got)
	}
	for i := 0; i < 9; i++ {
		s.IndexFor(math.Vec2{X: float32(i)})
	}
	if got := cap(s.values); got != 16 {
		t.Errorf("capacity after 9 inserts = %d, want 16", got)
	}
}
