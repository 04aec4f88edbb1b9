// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/merr"
)

// colliderGeometry はスナップショット済みのコライダーワールド形状を表す。
type colliderGeometry struct {
	shape spring.ColliderShapeType
	// head は球の中心、カプセルの始点。
	head mmath.Vec3
	// tail はカプセルの終点。球では未使用。
	tail   mmath.Vec3
	radius float64
}

// simCollider は1コライダーの実行時状態を表す。
// 変換が退化したフレームは直近の有効形状を使い続ける。
type simCollider struct {
	setting     spring.ColliderSetting
	geometry    colliderGeometry
	hasGeometry bool
}

// simColliderGroup は実行時コライダーグループを表す。
type simColliderGroup struct {
	name      string
	colliders []*simCollider
}

// worldColliderGeometry はボーンワールド行列からコライダー形状を導出する。
// 非有限な変換は DegenerateTransform エラーとして返し、黙殺させない。
func worldColliderGeometry(boneWorld mmath.Mat4, setting spring.ColliderSetting) (colliderGeometry, error) {
	if !boneWorld.IsFinite() {
		return colliderGeometry{}, merr.NewDegenerateTransform(
			fmt.Sprintf("コライダーボーンの変換が非有限です: boneIndex=%d", setting.BoneIndex), nil,
		)
	}

	geometry := colliderGeometry{
		shape:  setting.Shape,
		head:   boneWorld.MulVec3(setting.Offset),
		radius: setting.Radius,
	}
	if setting.Shape == spring.ColliderShapeCapsule {
		geometry.tail = boneWorld.MulVec3(setting.TailOffset)
	}
	if !geometry.head.IsFinite() || !geometry.tail.IsFinite() {
		return colliderGeometry{}, merr.NewDegenerateTransform(
			fmt.Sprintf("コライダー形状の導出結果が非有限です: boneIndex=%d", setting.BoneIndex), nil,
		)
	}
	return geometry, nil
}

// resolveColliderPush はジョイント球とコライダーの貫入を判定し、押し出し後の位置を返す。
func resolveColliderPush(geometry colliderGeometry, tailPosition mmath.Vec3, hitRadius float64) (mmath.Vec3, bool) {
	center := geometry.head
	if geometry.shape == spring.ColliderShapeCapsule {
		center = closestPointOnSegment(geometry.head, geometry.tail, tailPosition)
	}

	combinedRadius := geometry.radius + hitRadius
	delta := tailPosition.Subed(center)
	distance := delta.Length()
	if distance >= combinedRadius {
		return tailPosition, false
	}

	direction := delta.Normalized()
	if direction.Length() == 0 {
		// 中心一致時は押し出し方向が定まらないため上方向へ退避する。
		direction = mmath.UNIT_Y_VEC3
	}
	return center.Added(direction.MuledScalar(combinedRadius)), true
}

// closestPointOnSegment は線分上の最近接点を返す。
func closestPointOnSegment(segmentStart mmath.Vec3, segmentEnd mmath.Vec3, point mmath.Vec3) mmath.Vec3 {
	segment := segmentEnd.Subed(segmentStart)
	segmentLengthSq := segment.Dot(segment)
	if segmentLengthSq == 0 {
		return segmentStart
	}
	t := point.Subed(segmentStart).Dot(segment) / segmentLengthSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return segmentStart.Added(segment.MuledScalar(t))
}
