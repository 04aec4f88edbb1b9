// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const fromToParallelEpsilon = 1e-10

// Quaternion は回転を表すクォータニオン。
type Quaternion struct {
	mgl64.Quat
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Quat: mgl64.QuatIdent()}
}

// NewQuaternionByValues は成分指定でクォータニオンを生成する。
func NewQuaternionByValues(x float64, y float64, z float64, w float64) Quaternion {
	return Quaternion{Quat: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromDegrees はXYZオイラー角(度)からクォータニオンを生成する。
func NewQuaternionFromDegrees(xDegree float64, yDegree float64, zDegree float64) Quaternion {
	return Quaternion{Quat: mgl64.AnglesToQuat(
		DegToRad(xDegree), DegToRad(yDegree), DegToRad(zDegree), mgl64.XYZ,
	)}
}

// NewQuaternionFromAxisAngle は回転軸と角度(ラジアン)からクォータニオンを生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radian float64) Quaternion {
	normalized := axis.Normalized()
	if normalized.Length() == 0 {
		return NewQuaternion()
	}
	return Quaternion{Quat: mgl64.QuatRotate(radian, mgl64.Vec3{normalized.X, normalized.Y, normalized.Z})}
}

// NewQuaternionFromToVector はfromをtoへ重ねる最短弧回転を生成する。
// 零ベクトル入力は単位クォータニオンへ退避し、正反対方向は直交軸での半回転を返す。
func NewQuaternionFromToVector(from Vec3, to Vec3) Quaternion {
	fromUnit := from.Normalized()
	toUnit := to.Normalized()
	if fromUnit.Length() == 0 || toUnit.Length() == 0 {
		return NewQuaternion()
	}

	dot := fromUnit.Dot(toUnit)
	if dot >= 1.0-fromToParallelEpsilon {
		return NewQuaternion()
	}
	if dot <= -1.0+fromToParallelEpsilon {
		orthogonal := fromUnit.Cross(UNIT_X_VEC3)
		if orthogonal.Length() <= fromToParallelEpsilon {
			orthogonal = fromUnit.Cross(UNIT_Y_VEC3)
		}
		return NewQuaternionFromAxisAngle(orthogonal, math.Pi)
	}

	return Quaternion{Quat: mgl64.QuatBetweenVectors(
		mgl64.Vec3{fromUnit.X, fromUnit.Y, fromUnit.Z},
		mgl64.Vec3{toUnit.X, toUnit.Y, toUnit.Z},
	)}
}

// Muled は合成回転(this*other)を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Quat: q.Quat.Mul(other.Quat)}
}

// MulVec3 はベクトルを回転する。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	rotated := q.Quat.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return NewVec3ByValues(rotated.X(), rotated.Y(), rotated.Z())
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{Quat: q.Quat.Inverse()}
}

// Normalized は正規化結果を返す。
func (q Quaternion) Normalized() Quaternion {
	return Quaternion{Quat: q.Quat.Normalize()}
}

// Dot は内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.Quat.Dot(other.Quat)
}

// NearEquals は符号反転を同一視した許容誤差内の一致を判定する。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	return math.Abs(math.Abs(q.Dot(other))-1.0) <= epsilon
}

// IsFinite は全成分が有限値か判定する。
func (q Quaternion) IsFinite() bool {
	return isFiniteValue(q.Quat.W) &&
		isFiniteValue(q.Quat.V.X()) &&
		isFiniteValue(q.Quat.V.Y()) &&
		isFiniteValue(q.Quat.V.Z())
}
