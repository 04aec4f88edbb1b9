// 指示: miu200521358
// Package spring はオーサリング層から与えられるスプリングボーン定義を提供する。
package spring

import (
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model"
)

// ColliderShapeType はコライダー形状種別を表す。
type ColliderShapeType string

const (
	// ColliderShapeSphere は球コライダーを表す。
	ColliderShapeSphere ColliderShapeType = "sphere"
	// ColliderShapeCapsule はカプセルコライダーを表す。
	ColliderShapeCapsule ColliderShapeType = "capsule"
)

const (
	// MinColliderRadius は clamp 後のコライダー半径下限。
	MinColliderRadius = 1e-5
	// MaxDragForce は dragForce の上限。
	MaxDragForce = 1.0
)

// ColliderSetting はボーンへ剛体接続されたコライダー定義を表す。
// ワールド形状は毎フレーム、所属ボーンのワールド行列から導出する。
type ColliderSetting struct {
	BoneIndex int
	Shape     ColliderShapeType
	// Offset はボーンローカルの中心(球)または始点(カプセル)。
	Offset mmath.Vec3
	// TailOffset はカプセル終点のボーンローカルオフセット。球では未使用。
	TailOffset mmath.Vec3
	Radius     float64
}

// ColliderGroupSetting は順序付きコライダー集合を表す。
// 衝突補正はこの宣言順で逐次適用され、並べ替えると結果が変わる。
type ColliderGroupSetting struct {
	Name      string
	Colliders []ColliderSetting
}

// JointSetting はチェーン内1ジョイントの物理パラメータを表す。
type JointSetting struct {
	BoneIndex int
	// Stiffness は現在ポーズのレスト方向への引き戻し強度。0以上。
	Stiffness float64
	// DragForce は持ち越し変位の減衰率。[0,1]。
	DragForce float64
	// GravityPower は重力加速強度。0以上。
	GravityPower float64
	// GravityDirection は重力方向の単位ベクトル。
	GravityDirection mmath.Vec3
	// HitRadius はジョイント自身の衝突半径。0以上。
	HitRadius float64
}

// SpringSetting はルートから先端への順序付きジョイント列を表す。
type SpringSetting struct {
	Name   string
	Joints []JointSetting
	// ColliderGroupNames は衝突判定対象のグループ名(弱参照)。
	ColliderGroupNames []string
	// CenterBoneIndex は慣性の基準空間ボーン。負値でワールド空間。
	CenterBoneIndex int
}

// RigSettings は1骨格分のスプリング定義一式を表す。
type RigSettings struct {
	ColliderGroups []ColliderGroupSetting
	Springs        []SpringSetting
}

// ValidateAndClamp は定義を正規化し、発生した警告IDを返す。
// 範囲外パラメータは clamp で救済し、エラーにはしない。
func ValidateAndClamp(settings *RigSettings) []string {
	if settings == nil {
		return nil
	}
	warningIDs := []string{}

	groupNames := map[string]struct{}{}
	for groupIndex := range settings.ColliderGroups {
		group := &settings.ColliderGroups[groupIndex]
		groupNames[group.Name] = struct{}{}
		for colliderIndex := range group.Colliders {
			collider := &group.Colliders[colliderIndex]
			if collider.Shape != ColliderShapeCapsule {
				collider.Shape = ColliderShapeSphere
			}
			if collider.Radius < MinColliderRadius {
				collider.Radius = MinColliderRadius
				warningIDs = append(warningIDs, model.SpringWarningColliderRadiusClamped)
			}
		}
	}

	for springIndex := range settings.Springs {
		springSetting := &settings.Springs[springIndex]
		if len(springSetting.Joints) == 0 {
			warningIDs = append(warningIDs, model.SpringWarningEmptySpring)
		}
		for _, groupName := range springSetting.ColliderGroupNames {
			if _, exists := groupNames[groupName]; !exists {
				warningIDs = append(warningIDs, model.SpringWarningUnknownColliderGroup)
			}
		}
		for jointIndex := range springSetting.Joints {
			joint := &springSetting.Joints[jointIndex]
			warningIDs = append(warningIDs, clampJointSetting(joint)...)
		}
	}

	return warningIDs
}

// clampJointSetting は1ジョイントのパラメータを clamp し、警告IDを返す。
func clampJointSetting(joint *JointSetting) []string {
	warningIDs := []string{}

	if joint.Stiffness < 0 {
		joint.Stiffness = 0
		warningIDs = append(warningIDs, model.SpringWarningParamClamped)
	}
	if joint.DragForce < 0 {
		joint.DragForce = 0
		warningIDs = append(warningIDs, model.SpringWarningParamClamped)
	}
	if joint.DragForce > MaxDragForce {
		joint.DragForce = MaxDragForce
		warningIDs = append(warningIDs, model.SpringWarningParamClamped)
	}
	if joint.GravityPower < 0 {
		joint.GravityPower = 0
		warningIDs = append(warningIDs, model.SpringWarningParamClamped)
	}
	if joint.HitRadius < 0 {
		joint.HitRadius = 0
		warningIDs = append(warningIDs, model.SpringWarningHitRadiusClamped)
	}

	normalizedGravity := joint.GravityDirection.Normalized()
	if normalizedGravity.Length() == 0 {
		normalizedGravity = mmath.UNIT_Y_NEG_VEC3
		warningIDs = append(warningIDs, model.SpringWarningGravityDirectionDegenerate)
	}
	joint.GravityDirection = normalizedGravity

	return warningIDs
}
