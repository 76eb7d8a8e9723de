package mesh

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/math"
)

func TestFindBadPolygons(t *testing.T) {
	tests := []struct {
		name        string
		verts       []math.Vec3
		nonCoplanar bool
		nonConvex   bool
	}{
		{
			name:  "square",
			verts: []math.Vec3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		},
		{
			name:        "non-planar quad",
			verts:       []math.Vec3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1, Z: 0.5}},
			nonCoplanar: true,
		},
		{
			name:      "concave arrowhead",
			verts:     []math.Vec3{{X: 0, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 0.5, Y: 1}},
			nonConvex: true,
		},
		{
			name:      "concave with reflex first corner",
			verts:     []math.Vec3{{X: 0.5, Y: 1}, {X: 0, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}},
			nonConvex: true,
		},
		{
			name:      "bowtie",
			verts:     []math.Vec3{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}},
			nonConvex: true,
		},
		{
			name:      "pentagram",
			verts:     star(5, 2),
			nonConvex: true,
		},
		{
			name:  "regular hexagon",
			verts: star(6, 1),
		},
		{
			name:  "hexagon with a straight run",
			verts: []math.Vec3{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face := make([]int, len(tt.verts))
			for i := range face {
				face[i] = i
			}
			m := buildMesh(t, tt.verts, [][]int{face})
			list := issues.NewList()

			if !m.FindBadPolygons(list, DefaultTolerances()) {
				t.Fatalf("FindBadPolygons failed: %v", list.Err())
			}

			flags := m.Faces()[0].Flags
			if got := flags&FlagNonCoplanar != 0; got != tt.nonCoplanar {
				t.Errorf("nonCoplanar = %v, want %v", got, tt.nonCoplanar)
			}
			if got := flags&FlagNonConvex != 0; got != tt.nonConvex {
				t.Errorf("nonConvex = %v, want %v", got, tt.nonConvex)
			}
			if m.HasBadPolygons() != (tt.nonCoplanar || tt.nonConvex) {
				t.Errorf("HasBadPolygons() = %v", m.HasBadPolygons())
			}
			if tt.nonCoplanar && len(list.WithKey(KeyNonCoplanar)) != 1 {
				t.Error("expected a non-coplanar warning")
			}
			if tt.nonConvex && len(list.WithKey(KeyNonConvex)) != 1 {
				t.Error("expected a non-convex warning")
			}
			if list.HasStop() {
				t.Errorf("unexpected stop issue: %v", list.Err())
			}
		})
	}
}

func TestFindBadPolygons_ClearsOldFlags(t *testing.T) {
	m := buildMesh(t, []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}, [][]int{{0, 1, 2, 3}})
	m.faces[0].Flags = FlagNonConvex | FlagNonCoplanar

	if !m.FindBadPolygons(issues.Discard, DefaultTolerances()) {
		t.Fatal("FindBadPolygons failed")
	}
	if m.Faces()[0].Flags != 0 || m.HasBadPolygons() {
		t.Errorf("flags not cleared: %v", m.Faces()[0].Flags)
	}
}

func TestFindBadPolygons_Tolerance(t *testing.T) {
	verts := []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1, Z: 0.01}}
	m := buildMesh(t, verts, [][]int{{0, 1, 2, 3}})

	loose := Tolerances{Coplanarity: 0.1, Convexity: 1e-4}
	m.FindBadPolygons(issues.Discard, loose)
	if m.HasBadPolygons() {
		t.Error("loose tolerance should accept a slightly bent quad")
	}

	m.FindBadPolygons(issues.Discard, DefaultTolerances())
	if m.Faces()[0].Flags&FlagNonCoplanar == 0 {
		t.Error("default tolerance should flag a slightly bent quad")
	}
}

func TestFindBadPolygons_StructuralError(t *testing.T) {
	m := buildMesh(t, []math.Vec3{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 2}})
	before := append([]math.Vec3(nil), m.Vertices()...)
	m.cornerVertices[1] = 99

	list := issues.NewList()
	if m.FindBadPolygons(list, DefaultTolerances()) {
		t.Fatal("FindBadPolygons accepted an out-of-range index")
	}
	if !list.HasStop() {
		t.Error("expected a stop issue")
	}
	if len(list.WithKey(KeyIndexRange)) != 1 {
		t.Errorf("expected %s issue, got %v", KeyIndexRange, list.Issues())
	}
	for i, v := range m.Vertices() {
		if v != before[i] {
			t.Errorf("vertex %d modified", i)
		}
	}
}

// star returns the corners of a regular n-gon visited every step-th corner.
func star(n, step int) []math.Vec3 {
	out := make([]math.Vec3, n)
	for i := range out {
		a := 2 * gomath.Pi * float64(i*step%n) / float64(n)
		out[i] = math.Vec3{X: float32(gomath.Cos(a)), Y: float32(gomath.Sin(a))}
	}
	return out
}
