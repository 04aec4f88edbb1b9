// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

const testTimeStep = 1.0 / 60.0

// chainRigOptions はテスト用チェーンリグの構築条件を表す。
type chainRigOptions struct {
	jointCount   int
	segment      mmath.Vec3
	stiffness    float64
	dragForce    float64
	gravityPower float64
	gravityDir   mmath.Vec3
	hitRadius    float64
	centerIndex  int
}

// defaultChainRigOptions は水平3ジョイントの標準条件を返す。
func defaultChainRigOptions() chainRigOptions {
	return chainRigOptions{
		jointCount:   3,
		segment:      mmath.NewVec3ByValues(0.1, 0, 0),
		stiffness:    1.0,
		dragForce:    0.4,
		gravityPower: 1.0,
		gravityDir:   mmath.UNIT_Y_NEG_VEC3,
		hitRadius:    0.0,
		centerIndex:  -1,
	}
}

// buildChainRig は attachment ボーン直下へジョイント列を連ねたリグを構築する。
// 戻り値はジョイントボーンindex列付き。
func buildChainRig(t *testing.T, opts chainRigOptions) (*model.Skeleton, *spring.RigSettings, []int) {
	t.Helper()
	bones := model.NewBoneCollection()
	attachmentIndex := bones.AppendRaw(model.NewBone(
		"attachment", -1, mmath.NewVec3ByValues(0, 1, 0), mmath.NewQuaternion(),
	))

	jointBoneIndexes := []int{}
	parentIndex := attachmentIndex
	for jointOrder := 0; jointOrder < opts.jointCount; jointOrder++ {
		boneIndex := bones.AppendRaw(model.NewBone(
			testJointBoneName(jointOrder), parentIndex, opts.segment, mmath.NewQuaternion(),
		))
		jointBoneIndexes = append(jointBoneIndexes, boneIndex)
		parentIndex = boneIndex
	}

	joints := []spring.JointSetting{}
	for _, boneIndex := range jointBoneIndexes {
		joints = append(joints, spring.JointSetting{
			BoneIndex:        boneIndex,
			Stiffness:        opts.stiffness,
			DragForce:        opts.dragForce,
			GravityPower:     opts.gravityPower,
			GravityDirection: opts.gravityDir,
			HitRadius:        opts.hitRadius,
		})
	}
	settings := &spring.RigSettings{
		Springs: []spring.SpringSetting{
			{
				Name:            "chain",
				Joints:          joints,
				CenterBoneIndex: opts.centerIndex,
			},
		},
	}
	return model.NewSkeleton(bones), settings, jointBoneIndexes
}

// testJointBoneName はテスト用ジョイントボーン名を返す。
func testJointBoneName(jointOrder int) string {
	return "joint" + string(rune('0'+jointOrder))
}

// newReadySession は Setup 済みセッションを生成する。
func newReadySession(
	t *testing.T,
	skeleton moutput.ISkeletonAccessor,
	settings *spring.RigSettings,
	diagnostics moutput.IDiagnosticsSink,
) *SimulationSession {
	t.Helper()
	session := NewSession(skeleton, settings, diagnostics)
	if err := session.Setup(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return session
}

// advanceSteps は指定回数 Advance を実行する。
func advanceSteps(t *testing.T, session *SimulationSession, steps int, dt float64) {
	t.Helper()
	for step := 0; step < steps; step++ {
		if err := session.Advance(dt); err != nil {
			t.Fatalf("advance failed at step %d: %v", step, err)
		}
	}
}

// assertChainRigidity は全ジョイントの頭-末端距離が剛体長に一致するか検証する。
func assertChainRigidity(t *testing.T, session *SimulationSession) {
	t.Helper()
	for _, simSpringState := range session.springs {
		frames, framesValid := session.resolveCenterFrames(simSpringState)
		if !framesValid {
			t.Fatalf("center frames should be valid")
		}
		for jointIndex, joint := range simSpringState.joints {
			if joint.boneLength == 0 {
				continue
			}
			boneWorld, err := session.skeleton.BoneWorldMatrix(joint.boneIndex)
			if err != nil {
				t.Fatalf("world matrix failed: %v", err)
			}
			head := boneWorld.Translation()
			tail := frames.centerToWorld.MulVec3(joint.state.CurrTail)
			distance := head.Distance(tail)
			if diff := distance - joint.boneLength; diff > 1e-5*joint.boneLength || diff < -1e-5*joint.boneLength {
				t.Fatalf(
					"rigidity violated: spring=%s joint=%d distance=%.9f length=%.9f",
					simSpringState.setting.Name, jointIndex, distance, joint.boneLength,
				)
			}
		}
	}
}

// worldTailPositions は全ジョイントの現在末端ワールド位置を返す。
func worldTailPositions(t *testing.T, session *SimulationSession) []mmath.Vec3 {
	t.Helper()
	positions := []mmath.Vec3{}
	for _, simSpringState := range session.springs {
		frames, framesValid := session.resolveCenterFrames(simSpringState)
		if !framesValid {
			t.Fatalf("center frames should be valid")
		}
		for _, joint := range simSpringState.joints {
			positions = append(positions, frames.centerToWorld.MulVec3(joint.state.CurrTail))
		}
	}
	return positions
}

// recordingDiagnosticsSink は受信イベントを蓄積する診断シンク。
type recordingDiagnosticsSink struct {
	events []moutput.DiagnosticsEvent
}

// ReportSimulationDiagnostic はイベントを記録する。
func (s *recordingDiagnosticsSink) ReportSimulationDiagnostic(event moutput.DiagnosticsEvent) {
	s.events = append(s.events, event)
}

// countEvents は指定種別のイベント数を返す。
func (s *recordingDiagnosticsSink) countEvents(eventType moutput.DiagnosticsEventType) int {
	count := 0
	for _, event := range s.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}
