// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

// JointState はジョイントの2フレーム分の末端位置履歴を表す。
// center ボーン設定時は center ローカル座標、未設定時はワールド座標で保持する。
type JointState struct {
	PrevTail mmath.Vec3
	CurrTail mmath.Vec3
}

// simJoint は1ジョイントの実行時状態を表す。
type simJoint struct {
	setting         spring.JointSetting
	boneIndex       int
	parentBoneIndex int

	// boneLength はジョイント頭から末端までの剛体長。0ならジョイントはスキップされる。
	boneLength        float64
	restLocalRotation mmath.Quaternion
	// restLocalTail はボーンローカルのレスト末端オフセット。
	restLocalTail mmath.Vec3
	// restLocalTailDir は restLocalTail の単位方向(ボーン軸)。
	restLocalTailDir mmath.Vec3

	state JointState
}

// simSpring は1スプリングの実行時状態を表す。
type simSpring struct {
	setting spring.SpringSetting
	joints  []*simJoint
	groups  []*simColliderGroup
}

// centerFrames は1フレーム分の center 空間変換を表す。
type centerFrames struct {
	centerToWorld mmath.Mat4
	worldToCenter mmath.Mat4
}

// identityCenterFrames はワールド空間そのままの変換を返す。
func identityCenterFrames() centerFrames {
	return centerFrames{centerToWorld: mmath.NewMat4(), worldToCenter: mmath.NewMat4()}
}

// advanceSpring は1スプリングを1時間刻み進める。
// ジョイントはルートから先端へ逐次評価する。各ジョイントの頭は直前ジョイントの確定末端に一致する。
func (s *SimulationSession) advanceSpring(simSpringState *simSpring, dt float64) {
	frames, framesValid := s.resolveCenterFrames(simSpringState)
	if !framesValid {
		s.reportDiagnostic(moutput.DiagnosticsEvent{
			Type:       moutput.DiagnosticsEventTypeNonFiniteInput,
			SpringName: simSpringState.setting.Name,
			JointIndex: -1,
			BoneIndex:  simSpringState.setting.CenterBoneIndex,
			Detail:     "center ボーンの変換が非有限のためスプリングを保留します",
		})
		return
	}

	for jointIndex, joint := range simSpringState.joints {
		s.advanceJoint(simSpringState, jointIndex, joint, frames, dt)
	}
}

// advanceJoint は1ジョイントを1時間刻み進める。
// 非有限入力はそのフレームの状態保持へ退避し、チェーンへNaNを伝播させない。
func (s *SimulationSession) advanceJoint(
	simSpringState *simSpring,
	jointIndex int,
	joint *simJoint,
	frames centerFrames,
	dt float64,
) {
	boneWorld, err := s.skeleton.BoneWorldMatrix(joint.boneIndex)
	if err != nil || !boneWorld.IsFinite() {
		s.reportJointNonFinite(simSpringState, jointIndex, joint, "ジョイントボーンの変換が非有限です")
		return
	}
	parentWorldRotation := mmath.NewQuaternion()
	if joint.parentBoneIndex >= 0 {
		parentWorld, err := s.skeleton.BoneWorldMatrix(joint.parentBoneIndex)
		if err != nil || !parentWorld.IsFinite() {
			s.reportJointNonFinite(simSpringState, jointIndex, joint, "親ボーンの変換が非有限です")
			return
		}
		parentWorldRotation = parentWorld.RotationQuat()
	}

	head := boneWorld.Translation()

	// 剛体長0のジョイントは回転へ寄与せず、末端=頭として扱う。
	if joint.boneLength == 0 {
		joint.state.PrevTail = frames.worldToCenter.MulVec3(head)
		joint.state.CurrTail = joint.state.PrevTail
		return
	}

	restWorldRotation := parentWorldRotation.Muled(joint.restLocalRotation)
	restDirectionWorld := restWorldRotation.MulVec3(joint.restLocalTailDir)

	currTail := frames.centerToWorld.MulVec3(joint.state.CurrTail)
	prevTail := frames.centerToWorld.MulVec3(joint.state.PrevTail)

	nextTail := currTail
	if dt > 0 {
		// 慣性項: 持ち越し変位を dragForce で直接減衰する。
		// 剛性・重力は参照実装互換のため dt の1乗スケールで加算する(dt²へは直さない)。
		inertia := currTail.Added(currTail.Subed(prevTail).MuledScalar(1.0 - joint.setting.DragForce))
		external := restDirectionWorld.MuledScalar(joint.setting.Stiffness * dt).
			Added(joint.setting.GravityDirection.MuledScalar(joint.setting.GravityPower * dt))
		nextTail = inertia.Added(external)
	}

	nextTail = constrainTailLength(head, nextTail, currTail, restDirectionWorld, joint.boneLength)

	// 衝突解決: グループ宣言順の逐次補正。押し出し毎に長さ制約を再適用する。
	for _, group := range simSpringState.groups {
		for _, collider := range group.colliders {
			if !collider.hasGeometry {
				continue
			}
			pushed, hit := resolveColliderPush(collider.geometry, nextTail, joint.setting.HitRadius)
			if hit {
				nextTail = constrainTailLength(head, pushed, currTail, restDirectionWorld, joint.boneLength)
			}
		}
	}

	if !nextTail.IsFinite() {
		s.reportJointNonFinite(simSpringState, jointIndex, joint, "末端位置の計算結果が非有限です")
		return
	}

	if dt > 0 {
		joint.state.PrevTail = frames.worldToCenter.MulVec3(currTail)
		joint.state.CurrTail = frames.worldToCenter.MulVec3(nextTail)
	}

	s.applyJointRotation(joint, head, nextTail, restWorldRotation)
}

// constrainTailLength は末端候補を頭から剛体長の球面上へ拘束する。
// 候補が頭と一致する退化時は前回方向、さらに退化時はレスト方向へ退避し、決して失敗しない。
func constrainTailLength(
	head mmath.Vec3,
	candidateTail mmath.Vec3,
	currTail mmath.Vec3,
	restDirectionWorld mmath.Vec3,
	boneLength float64,
) mmath.Vec3 {
	direction := candidateTail.Subed(head).Normalized()
	if direction.Length() == 0 {
		direction = currTail.Subed(head).Normalized()
	}
	if direction.Length() == 0 {
		direction = restDirectionWorld.Normalized()
	}
	return head.Added(direction.MuledScalar(boneLength))
}

// applyJointRotation は確定末端方向からボーンローカル回転を再導出して書き戻す。
// レスト軸を新方向へ重ねる swing のみの補正で、軸回りの roll はレスト回転のまま保持する。
func (s *SimulationSession) applyJointRotation(
	joint *simJoint,
	head mmath.Vec3,
	nextTail mmath.Vec3,
	restWorldRotation mmath.Quaternion,
) {
	nextDirection := nextTail.Subed(head).Normalized()
	if nextDirection.Length() == 0 {
		return
	}
	localNextDirection := restWorldRotation.Inverted().MulVec3(nextDirection)
	swing := mmath.NewQuaternionFromToVector(joint.restLocalTailDir, localNextDirection)
	newLocalRotation := joint.restLocalRotation.Muled(swing).Normalized()
	if !newLocalRotation.IsFinite() {
		return
	}
	if err := s.skeleton.SetBoneLocalRotation(joint.boneIndex, newLocalRotation); err != nil {
		s.logger().Warn("ボーン回転の書き戻しに失敗しました: boneIndex=%d err=%v", joint.boneIndex, err)
	}
}

// resolveCenterFrames はスプリングの center 空間変換を解決する。
func (s *SimulationSession) resolveCenterFrames(simSpringState *simSpring) (centerFrames, bool) {
	centerIndex := simSpringState.setting.CenterBoneIndex
	if centerIndex < 0 {
		return identityCenterFrames(), true
	}
	centerWorld, err := s.skeleton.BoneWorldMatrix(centerIndex)
	if err != nil || !centerWorld.IsFinite() {
		return identityCenterFrames(), false
	}
	return centerFrames{centerToWorld: centerWorld, worldToCenter: centerWorld.Inverted()}, true
}

// reportJointNonFinite は非有限入力によるジョイント保留を診断へ通知する。
func (s *SimulationSession) reportJointNonFinite(
	simSpringState *simSpring,
	jointIndex int,
	joint *simJoint,
	detail string,
) {
	s.reportDiagnostic(moutput.DiagnosticsEvent{
		Type:       moutput.DiagnosticsEventTypeNonFiniteInput,
		SpringName: simSpringState.setting.Name,
		JointIndex: jointIndex,
		BoneIndex:  joint.boneIndex,
		Detail:     detail,
	})
}

// jointRestTailWorld は現在のボーン変換からレスト末端ワールド位置を導出する。
func (s *SimulationSession) jointRestTailWorld(joint *simJoint) (mmath.Vec3, error) {
	boneWorld, err := s.skeleton.BoneWorldMatrix(joint.boneIndex)
	if err != nil {
		return mmath.ZERO_VEC3, err
	}
	if !boneWorld.IsFinite() {
		return mmath.ZERO_VEC3, fmt.Errorf("ボーン変換が非有限です: boneIndex=%d", joint.boneIndex)
	}
	return boneWorld.MulVec3(joint.restLocalTail), nil
}
