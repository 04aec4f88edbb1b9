// 指示: miu200521358
// Package mmath はスプリングボーン計算で使う数学型を提供する。
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 は零ベクトル。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全成分1のベクトル。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	// UNIT_X_VEC3 はX軸単位ベクトル。
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1}}
	// UNIT_Y_VEC3 はY軸単位ベクトル。
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1}}
	// UNIT_Z_VEC3 はZ軸単位ベクトル。
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1}}
	// UNIT_Y_NEG_VEC3 はY軸負方向単位ベクトル。
	UNIT_Y_NEG_VEC3 = Vec3{Vec: r3.Vec{Y: -1}}
)

// NewVec3ByValues は成分指定でVec3を生成する。
func NewVec3ByValues(x float64, y float64, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(scale float64) Vec3 {
	return Vec3{Vec: r3.Scale(scale, v.Vec)}
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Normalized は正規化結果を返す。零ベクトルは零ベクトルのまま返す。
func (v Vec3) Normalized() Vec3 {
	length := r3.Norm(v.Vec)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return ZERO_VEC3
	}
	return Vec3{Vec: r3.Scale(1.0/length, v.Vec)}
}

// Distance は2点間距離を返す。
func (v Vec3) Distance(other Vec3) float64 {
	return r3.Norm(r3.Sub(v.Vec, other.Vec))
}

// NearEquals は許容誤差内の一致を判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// IsFinite は全成分が有限値か判定する。
func (v Vec3) IsFinite() bool {
	return isFiniteValue(v.X) && isFiniteValue(v.Y) && isFiniteValue(v.Z)
}

// DegToRad は度をラジアンへ変換する。
func DegToRad(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(radian float64) float64 {
	return radian * 180.0 / math.Pi
}

// isFiniteValue は有限値か判定する。
func isFiniteValue(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
