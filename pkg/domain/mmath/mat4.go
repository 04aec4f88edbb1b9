// 指示: miu200521358
package mmath

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 は4x4同次変換行列を表す。
type Mat4 struct {
	mgl64.Mat4
}

// NewMat4 は単位行列を生成する。
func NewMat4() Mat4 {
	return Mat4{Mat4: mgl64.Ident4()}
}

// NewMat4FromTransform は平行移動と回転から変換行列を生成する。
func NewMat4FromTransform(translation Vec3, rotation Quaternion) Mat4 {
	translate := mgl64.Translate3D(translation.X, translation.Y, translation.Z)
	return Mat4{Mat4: translate.Mul4(rotation.Quat.Mat4())}
}

// Muled は行列積(this*other)を返す。
func (m Mat4) Muled(other Mat4) Mat4 {
	return Mat4{Mat4: m.Mat4.Mul4(other.Mat4)}
}

// MulVec3 は位置ベクトルを変換する。
func (m Mat4) MulVec3(v Vec3) Vec3 {
	transformed := mgl64.TransformCoordinate(mgl64.Vec3{v.X, v.Y, v.Z}, m.Mat4)
	return NewVec3ByValues(transformed.X(), transformed.Y(), transformed.Z())
}

// MulDir は方向ベクトルを変換する。平行移動成分は無視する。
func (m Mat4) MulDir(v Vec3) Vec3 {
	transformed := mgl64.TransformNormal(mgl64.Vec3{v.X, v.Y, v.Z}, m.Mat4)
	return NewVec3ByValues(transformed.X(), transformed.Y(), transformed.Z())
}

// Translation は平行移動成分を返す。
func (m Mat4) Translation() Vec3 {
	col := m.Mat4.Col(3)
	return NewVec3ByValues(col.X(), col.Y(), col.Z())
}

// RotationQuat は回転成分をクォータニオンとして返す。
func (m Mat4) RotationQuat() Quaternion {
	return Quaternion{Quat: mgl64.Mat4ToQuat(m.Mat4)}
}

// Inverted は逆行列を返す。
func (m Mat4) Inverted() Mat4 {
	return Mat4{Mat4: m.Mat4.Inv()}
}

// IsFinite は全成分が有限値か判定する。
func (m Mat4) IsFinite() bool {
	for _, value := range m.Mat4 {
		if !isFiniteValue(value) {
			return false
		}
	}
	return true
}
