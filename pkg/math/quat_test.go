package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q != (Quat{W: 1}) {
		t.Errorf("Identity quaternion should be (0,0,0,1), got %+v", q)
	}
	if q.ToMat4() != Identity() {
		t.Errorf("Identity quaternion should produce the identity matrix, got %v", q.ToMat4())
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()

	length := math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W))
	if math.Abs(length-1) > 1e-4 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
	if (Quat{}).Normalize() != QuatIdentity() {
		t.Error("zero quaternion should normalize to the identity")
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y; the axis need not be unit length
	q := QuatFromAxisAngle(Vec3{Y: 3}, math.Pi/2)

	want := float32(math.Sqrt2 / 2)
	if math.Abs(float64(q.W-want)) > 1e-4 || math.Abs(float64(q.Y-want)) > 1e-4 {
		t.Errorf("QuatFromAxisAngle = %+v, want W=Y=%v", q, want)
	}
	if QuatFromAxisAngle(Vec3{}, 1) != QuatIdentity() {
		t.Error("zero axis should give the identity")
	}
}

func TestQuatRotate(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float32
		in    Vec3
		want  Vec3
	}{
		{"z 90", Vec3{Z: 1}, math.Pi / 2, Vec3{X: 1}, Vec3{Y: 1}},
		{"y 90", Vec3{Y: 1}, math.Pi / 2, Vec3{X: 1}, Vec3{Z: -1}},
		{"x 180", Vec3{X: 1}, math.Pi, Vec3{Y: 1, Z: 1}, Vec3{Y: -1, Z: -1}},
		{"on axis", Vec3{X: 1}, 0.7, Vec3{X: 2}, Vec3{X: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromAxisAngle(tt.axis, tt.angle)
			if got := q.Rotate(tt.in); !approxVec(got, tt.want) {
				t.Errorf("Rotate: got %v, want %v", got, tt.want)
			}
			if got := q.ToMat4().TransformVec3(tt.in); !approxVec(got, tt.want) {
				t.Errorf("ToMat4: got %v, want %v", got, tt.want)
			}
		})
	}
}
