package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	if math.Abs(float64(n.Length()-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}

	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	if got := q1.Slerp(q2, 0); got != q1 {
		t.Errorf("Slerp at t=0 should equal q1 exactly, got %v", got)
	}
	if got := q1.Slerp(q2, 1); got != q2 {
		t.Errorf("Slerp at t=1 should equal q2 exactly, got %v", got)
	}

	// Halfway through a 90 degree turn is 45 degrees.
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(result5.W-expectedW)) > 0.001 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
	if math.Abs(float64(result5.Length()-1)) > 0.001 {
		t.Errorf("Slerp result should stay unit length, got %v", result5.Length())
	}
}

func TestQuatSlerpShortestPath(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2)).Negate()

	mid := q1.Slerp(q2, 0.5)
	want := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/4))
	if !mid.ApproxEqual(want, 0.001) {
		t.Errorf("Slerp should take the shorter arc: got %v, want %v", mid, want)
	}
}

func TestQuatMulInverse(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 1}, 0.7)
	got := q.Mul(q.Inverse())
	if !got.ApproxEqual(QuatIdentity(), 0.0001) {
		t.Errorf("q * q^-1 should be identity, got %v", got)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{X: 1})
	want := Vec3{Z: -1}
	if !got.ApproxEqual(want, 0.0001) {
		t.Errorf("Rotate: got %v, want %v", got, want)
	}
}

func TestQuatMulOrder(t *testing.T) {
	ry := QuatFromAxisAngle(Vec3{Y: 1}, float32(math.Pi/2))
	rx := QuatFromAxisAngle(Vec3{X: 1}, float32(math.Pi/2))

	// rx.Mul(ry) applies ry first.
	v := Vec3{X: 1}
	got := rx.Mul(ry).Rotate(v)
	want := rx.Rotate(ry.Rotate(v))
	if !got.ApproxEqual(want, 0.0001) {
		t.Errorf("Mul order: got %v, want %v", got, want)
	}
}

func TestQuatToMat4(t *testing.T) {
	q := QuatIdentity()
	m := q.ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	expectedW := float32(math.Cos(math.Pi / 4))
	expectedY := float32(math.Sin(math.Pi / 4))

	if math.Abs(float64(q.W-expectedW)) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math.Abs(float64(q.Y-expectedY)) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatApproxEqualSign(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Z: 1}, 1.2)
	if !q.ApproxEqual(q.Negate(), 0.0001) {
		t.Error("q and -q should compare equal")
	}
}
