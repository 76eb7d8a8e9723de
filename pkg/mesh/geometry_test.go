package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/drydock/pkg/math"
)

func near(a, b math.Vec3) bool {
	return a.ApproxEqual(b, 1e-5)
}

func TestRecalculateNormals_Cube(t *testing.T) {
	m := unitCube(t)

	if len(m.Normals()) != 6 {
		t.Fatalf("expected 6 distinct normals, got %d", len(m.Normals()))
	}
	want := []math.Vec3{{Z: -1}, {Z: 1}, {Y: -1}, {Y: 1}, {X: -1}, {X: 1}}
	for i, f := range m.Faces() {
		if got := m.Normals()[f.Normal]; !near(got, want[i]) {
			t.Errorf("face %d normal = %v, want %v", i, got, want[i])
		}
		_, _, ns := m.FaceCorners(i)
		for _, n := range ns {
			if n != f.Normal {
				t.Errorf("face %d corner normal %d differs from face normal %d", i, n, f.Normal)
			}
		}
	}
}

func TestRecalculateNormals_Degenerate(t *testing.T) {
	m := buildMesh(t, []math.Vec3{{}, {X: 1}, {X: 2}}, [][]int{{0, 1, 2}})
	n := m.Normals()[m.Faces()[0].Normal]
	if !n.IsFinite() || n.Length() == 0 {
		t.Errorf("degenerate face got unusable normal %v", n)
	}
}

func TestTriangulate_AllTrianglesNoop(t *testing.T) {
	m := buildMesh(t, []math.Vec3{{}, {X: 1}, {Y: 1}, {Z: 1}}, [][]int{{0, 1, 2}, {0, 2, 3}})
	before := m.Clone()

	if added := m.Triangulate(); added != 0 {
		t.Errorf("Triangulate() added %d faces to a triangle mesh", added)
	}
	if d := before.Compare(m); !d.Identical() {
		t.Errorf("triangle mesh changed: %+v", d)
	}
}

func TestTriangulate_Polygon(t *testing.T) {
	const n = 6
	verts := make([]math.Vec3, n)
	face := make([]int, n)
	for i := range verts {
		a := 2 * gomath.Pi * float64(i) / n
		verts[i] = math.Vec3{X: float32(gomath.Cos(a)), Y: float32(gomath.Sin(a))}
		face[i] = i
	}
	m := buildMesh(t, verts, [][]int{face})
	m.faces[0].Color = [3]uint8{10, 20, 30}
	m.faces[0].SmoothingGroup = 4
	normal := m.faces[0].Normal

	if added := m.Triangulate(); added != n-3 {
		t.Errorf("Triangulate() added %d, want %d", added, n-3)
	}
	if m.FaceCount() != n-2 {
		t.Fatalf("expected %d triangles, got %d", n-2, m.FaceCount())
	}
	if m.HasNonTriangles() {
		t.Error("HasNonTriangles() still true")
	}

	seen := map[Index]bool{}
	for i, f := range m.Faces() {
		if !f.IsTriangle() {
			t.Errorf("face %d has %d corners", i, f.VertexCount)
		}
		if f.Color != [3]uint8{10, 20, 30} || f.SmoothingGroup != 4 || f.Normal != normal {
			t.Errorf("face %d lost polygon attributes: %+v", i, f)
		}
		vs, _, _ := m.FaceCorners(i)
		if vs[0] != 0 {
			t.Errorf("face %d does not fan from the first corner: %v", i, vs)
		}
		for _, v := range vs {
			seen[v] = true
		}
	}
	if len(seen) != n {
		t.Errorf("triangles cover %d distinct vertices, want %d", len(seen), n)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() after triangulate: %v", err)
	}
}

func TestReverseWinding_TwiceIsIdentity(t *testing.T) {
	m := unitCube(t)
	before := m.Clone()

	m.ReverseWinding()
	vs, _, _ := m.FaceCorners(1)
	if vs[0] != 7 || vs[3] != 4 {
		t.Errorf("reversed +Z face corners = %v", vs)
	}
	if n := m.Normals()[m.Faces()[1].Normal]; !near(n, math.Vec3{Z: -1}) {
		t.Errorf("reversed +Z face normal = %v", n)
	}

	m.ReverseWinding()
	for i := range m.Normals() {
		if m.Normals()[i] != before.Normals()[i] {
			t.Errorf("normal %d = %v, want %v", i, m.Normals()[i], before.Normals()[i])
		}
	}
	if d := before.Compare(m); !d.Identical() {
		t.Errorf("double reversal changed the mesh: %+v", d)
	}
}

func TestFlip_KeepsNormalsConsistent(t *testing.T) {
	flips := []struct {
		name string
		fn   func(*Mesh)
		axis math.Axis
	}{
		{"x", (*Mesh).FlipX, math.AxisX},
		{"y", (*Mesh).FlipY, math.AxisY},
		{"z", (*Mesh).FlipZ, math.AxisZ},
	}

	for _, tt := range flips {
		t.Run(tt.name, func(t *testing.T) {
			m := buildMesh(t, []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 2, Z: 3}, {X: 1, Y: 5, Z: 4}}, [][]int{{0, 1, 2}})
			orig := m.Vertices()[0]
			tt.fn(m)

			if got := m.Vertices()[0].Get(tt.axis); got != -orig.Get(tt.axis) {
				t.Errorf("vertex component after flip = %v, want %v", got, -orig.Get(tt.axis))
			}
			stored := m.Normals()[m.Faces()[0].Normal]
			if computed := m.faceNormal(0); !near(stored, computed) {
				t.Errorf("stored normal %v disagrees with winding %v", stored, computed)
			}
		})
	}
}

func TestRecenter(t *testing.T) {
	verts := []math.Vec3{{X: 0}, {X: 10}, {X: 10, Y: 4}, {X: 0, Y: 4}, {X: 1, Y: 1}}
	faces := [][]int{{0, 1, 2, 3}, {0, 1, 4}}

	t.Run("bounds", func(t *testing.T) {
		m := buildMesh(t, verts, faces)
		offset, ok := m.Recenter(CenterBounds)
		if !ok {
			t.Fatal("Recenter(CenterBounds) rejected")
		}
		if !near(offset, math.Vec3{X: -5, Y: -2}) {
			t.Errorf("offset = %v", offset)
		}
		if c := m.Bounds().Center(); !near(c, math.Vec3{}) {
			t.Errorf("bounds centre after recentre = %v", c)
		}
	})

	t.Run("mean", func(t *testing.T) {
		m := buildMesh(t, verts, faces)
		offset, ok := m.Recenter(CenterMean)
		if !ok {
			t.Fatal("Recenter(CenterMean) rejected")
		}
		if !near(offset, math.Vec3{X: -21.0 / 5, Y: -9.0 / 5}) {
			t.Errorf("offset = %v", offset)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		m := buildMesh(t, verts, faces)
		before := m.Clone()
		if _, ok := m.Recenter(CenterMethod(42)); ok {
			t.Error("unknown method accepted")
		}
		if d := before.Compare(m); !d.Identical() {
			t.Error("unknown method changed the mesh")
		}
	})
}

func TestScale(t *testing.T) {
	m := unitCube(t)
	normals := append([]math.Vec3(nil), m.Normals()...)

	m.Scale(2, 2, 2)
	if m.Width() != 4 || m.Height() != 4 || m.Length() != 4 {
		t.Errorf("uniform scale dimensions = %v %v %v", m.Width(), m.Height(), m.Length())
	}
	for i := range normals {
		if m.Normals()[i] != normals[i] {
			t.Errorf("uniform scale changed normal %d", i)
		}
	}

	m.Scale(1, 3, 0.5)
	if m.Width() != 4 || m.Height() != 12 || m.Length() != 2 {
		t.Errorf("per-axis scale dimensions = %v %v %v", m.Width(), m.Height(), m.Length())
	}
	for i := range m.Faces() {
		if stored, computed := m.Normals()[m.Faces()[i].Normal], m.faceNormal(i); !near(stored, computed) {
			t.Errorf("face %d normal %v, geometry says %v", i, stored, computed)
		}
	}

	m.Scale(-1, 1, 1)
	for i := range m.Faces() {
		if stored, computed := m.Normals()[m.Faces()[i].Normal], m.faceNormal(i); !near(stored, computed) {
			t.Errorf("mirrored face %d normal %v, geometry says %v", i, stored, computed)
		}
	}
}

func TestCoalesceVertices(t *testing.T) {
	// Two triangles sharing an edge, with the shared vertices duplicated,
	// plus one vertex nothing references.
	verts := []math.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 1, Y: 0}, {X: 1.0000001, Y: 1}, {X: 0, Y: 1.0000001},
		{X: 9, Y: 9},
	}
	m := buildMesh(t, verts, [][]int{{0, 1, 2}, {3, 4, 5}})
	before := [][]math.Vec3{m.FacePositions(0), m.FacePositions(1)}

	removed := m.CoalesceVertices(1e-5)
	if removed != 3 {
		t.Errorf("CoalesceVertices removed %d, want 3", removed)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d, want 4", m.VertexCount())
	}

	for i := range before {
		after := m.FacePositions(i)
		for k := range after {
			if !after[k].ApproxEqual(before[i][k], 1e-5) {
				t.Errorf("face %d corner %d moved from %v to %v", i, k, before[i][k], after[k])
			}
		}
	}
	vs, _, _ := m.FaceCorners(1)
	if vs[0] != 1 || vs[2] != 2 {
		t.Errorf("second face should reuse vertices 1 and 2, got %v", vs)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() after coalesce: %v", err)
	}
}

func TestCoalesceVertices_NothingToMerge(t *testing.T) {
	m := unitCube(t)
	before := m.Clone()
	if removed := m.CoalesceVertices(1e-6); removed != 0 {
		t.Errorf("removed %d vertices from a clean cube", removed)
	}
	if d := before.Compare(m); !d.Identical() {
		t.Errorf("clean cube changed: %+v", d)
	}
}

func TestTransform(t *testing.T) {
	m := unitCube(t)
	if err := m.Transform(math.Translate(5, 0, 0)); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if m.Bounds().Min.X != 4 || m.Bounds().Max.X != 6 {
		t.Errorf("translated bounds = %+v", m.Bounds())
	}

	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, gomath.Pi/2)
	if err := m.Rotate(q); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	for i := range m.Faces() {
		if stored, computed := m.Normals()[m.Faces()[i].Normal], m.faceNormal(i); !near(stored, computed) {
			t.Errorf("face %d normal %v, geometry says %v", i, stored, computed)
		}
	}
}

func TestReassignAxes(t *testing.T) {
	m := buildMesh(t, []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 2, Y: 2, Z: 3}, {X: 1, Y: 3, Z: 3}}, [][]int{{0, 1, 2}})

	// x <- z, y <- -x, z <- y
	err := m.ReassignAxes(
		AxisSource{Axis: math.AxisZ},
		AxisSource{Axis: math.AxisX, Negate: true},
		AxisSource{Axis: math.AxisY},
	)
	if err != nil {
		t.Fatalf("ReassignAxes failed: %v", err)
	}
	if got := m.Vertices()[0]; got != (math.Vec3{X: 3, Y: -1, Z: 2}) {
		t.Errorf("vertex 0 = %v, want (3, -1, 2)", got)
	}

	err = m.ReassignAxes(AxisSource{Axis: math.AxisX}, AxisSource{Axis: math.AxisX}, AxisSource{Axis: math.AxisZ})
	if !errors.Is(err, ErrInvalidAxisMap) {
		t.Errorf("duplicate source axis: got %v, want ErrInvalidAxisMap", err)
	}
}

func TestSimplify(t *testing.T) {
	// A 6x6 grid of quads on a gentle bump.
	const n = 7
	var verts []math.Vec3
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			z := float32(gomath.Sin(float64(x)) * gomath.Cos(float64(y)) * 0.1)
			verts = append(verts, math.Vec3{X: float32(x), Y: float32(y), Z: z})
		}
	}
	var faces [][]int
	for y := 0; y+1 < n; y++ {
		for x := 0; x+1 < n; x++ {
			i := y*n + x
			faces = append(faces, []int{i, i + 1, i + n + 1, i + n})
		}
	}
	m := buildMesh(t, verts, faces)
	tris := 2 * len(faces)

	if err := m.Simplify(0); !errors.Is(err, ErrInvalidFactor) {
		t.Errorf("factor 0: got %v, want ErrInvalidFactor", err)
	}
	if err := m.Simplify(0.5); err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if m.FaceCount() > tris {
		t.Errorf("simplified mesh has %d faces, more than %d", m.FaceCount(), tris)
	}
	if m.HasNonTriangles() {
		t.Error("simplified mesh should be all triangles")
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check() after simplify: %v", err)
	}
}
