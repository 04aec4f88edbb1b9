// 指示: miu200521358
package mmath

import (
	"math"
	"testing"
)

func TestNewMat4FromTransformAppliesRotationThenTranslation(t *testing.T) {
	rotation := NewQuaternionFromDegrees(0, 0, 90)
	translation := NewVec3ByValues(10, 0, 0)
	m := NewMat4FromTransform(translation, rotation)

	transformed := m.MulVec3(UNIT_X_VEC3)
	if !transformed.NearEquals(NewVec3ByValues(10, 1, 0), 1e-9) {
		t.Fatalf("point transform mismatch: %v", transformed)
	}
}

func TestMat4MulDirIgnoresTranslation(t *testing.T) {
	m := NewMat4FromTransform(NewVec3ByValues(5, 6, 7), NewQuaternionFromDegrees(0, 90, 0))
	dir := m.MulDir(UNIT_Z_VEC3)
	if !dir.NearEquals(UNIT_X_VEC3, 1e-9) {
		t.Fatalf("direction transform mismatch: %v", dir)
	}
}

func TestMat4MuledComposesParentChild(t *testing.T) {
	parent := NewMat4FromTransform(NewVec3ByValues(0, 1, 0), NewQuaternionFromDegrees(0, 0, 90))
	child := NewMat4FromTransform(NewVec3ByValues(0, 1, 0), NewQuaternion())
	world := parent.Muled(child)

	// 親のZ90度回転で子のYオフセットは-X方向へ向く。
	if !world.Translation().NearEquals(NewVec3ByValues(-1, 1, 0), 1e-9) {
		t.Fatalf("composed translation mismatch: %v", world.Translation())
	}
}

func TestMat4TranslationAndRotationQuat(t *testing.T) {
	rotation := NewQuaternionFromDegrees(15, 30, -45)
	translation := NewVec3ByValues(1, 2, 3)
	m := NewMat4FromTransform(translation, rotation)

	if !m.Translation().NearEquals(translation, 1e-12) {
		t.Fatalf("translation mismatch: %v", m.Translation())
	}
	if !m.RotationQuat().NearEquals(rotation, 1e-9) {
		t.Fatalf("rotation mismatch")
	}
}

func TestMat4InvertedRoundTrip(t *testing.T) {
	m := NewMat4FromTransform(NewVec3ByValues(-2, 4, 0.5), NewQuaternionFromDegrees(10, 20, 30))
	point := NewVec3ByValues(0.7, -0.2, 1.4)
	back := m.Inverted().MulVec3(m.MulVec3(point))
	if !back.NearEquals(point, 1e-9) {
		t.Fatalf("inverse round trip mismatch: %v", back)
	}
}

func TestMat4IsFinite(t *testing.T) {
	m := NewMat4()
	if !m.IsFinite() {
		t.Fatalf("identity should be finite")
	}
	m.Mat4[5] = math.NaN()
	if m.IsFinite() {
		t.Fatalf("nan matrix should not be finite")
	}
}
