// 指示: miu200521358
// Package minteractor はスプリングボーンのシミュレーションユースケースを提供する。
package minteractor

import (
	"fmt"
	"math"

	"github.com/tiendc/go-deepcopy"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/merr"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

// sessionState はセッションの状態機械を表す。
type sessionState int

const (
	// sessionStateUninitialized は Setup 前の状態。
	sessionStateUninitialized sessionState = iota
	// sessionStateReady は Advance/Reset 受付可能な状態。
	sessionStateReady
)

const (
	// MaxTimeStepSeconds は1回の Advance で許容する時間刻み上限。
	// 超過分は clamp し、不連続として診断へ通知する。
	MaxTimeStepSeconds = 1.0
)

// diagnosticsKey はフレーム内の診断重複抑止キー。
type diagnosticsKey struct {
	eventType  moutput.DiagnosticsEventType
	springName string
	jointIndex int
	boneIndex  int
}

// SimulationSession は1骨格分のスプリング群を保有する唯一の entry point。
// ホストがシミュレーションフレーム毎に Advance を1回だけ呼ぶ契約。
type SimulationSession struct {
	skeleton    moutput.ISkeletonAccessor
	diagnostics moutput.IDiagnosticsSink
	settings    *spring.RigSettings

	springs      []*simSpring
	groupsByName map[string]*simColliderGroup

	state         sessionState
	frameReported map[diagnosticsKey]struct{}
}

// SessionSnapshot は全ジョイント状態の複製を表す。スプリング宣言順×ジョイント順。
type SessionSnapshot struct {
	JointStates [][]JointState
}

// NewSession はセッションを Uninitialized 状態で生成する。
func NewSession(
	skeleton moutput.ISkeletonAccessor,
	settings *spring.RigSettings,
	diagnostics moutput.IDiagnosticsSink,
) *SimulationSession {
	return &SimulationSession{
		skeleton:      skeleton,
		diagnostics:   diagnostics,
		settings:      settings,
		groupsByName:  map[string]*simColliderGroup{},
		state:         sessionStateUninitialized,
		frameReported: map[diagnosticsKey]struct{}{},
	}
}

// Setup は定義を検証して Ready 状態へ遷移し、現在ポーズからレスト末端を確定する。
// 依存の循環検証(スプリング駆動ボーンへのコライダー接続禁止)はここで1回だけ行う。
func (s *SimulationSession) Setup() error {
	if s.state != sessionStateUninitialized {
		return merr.NewInvalidState("Setup は Uninitialized 状態でのみ呼び出せます")
	}
	if s.skeleton == nil {
		return merr.NewInvalidState("骨格アクセサが未設定です")
	}
	if s.settings == nil {
		return merr.NewInvalidState("スプリング定義が未設定です")
	}

	if err := s.buildColliderGroups(); err != nil {
		return err
	}
	if err := s.buildSprings(); err != nil {
		return err
	}

	s.state = sessionStateReady
	if err := s.resetJointStates(); err != nil {
		s.state = sessionStateUninitialized
		return err
	}

	s.logger().Info(
		"スプリングセッション準備完了: springs=%d colliderGroups=%d",
		len(s.springs), len(s.groupsByName),
	)
	return nil
}

// Advance はシミュレーションを1時間刻み進める。
// Ready 以外、および負値・非有限 dt は InvalidState として呼び出し単位で失敗し、状態へは一切コミットしない。
func (s *SimulationSession) Advance(dt float64) error {
	if s.state != sessionStateReady {
		return merr.NewInvalidState("Advance は Ready 状態でのみ呼び出せます")
	}
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return merr.NewInvalidState(fmt.Sprintf("時間刻みが不正です: dt=%f", dt))
	}

	s.frameReported = map[diagnosticsKey]struct{}{}
	if dt > MaxTimeStepSeconds {
		s.reportDiagnostic(moutput.DiagnosticsEvent{
			Type:       moutput.DiagnosticsEventTypeTimeStepClamped,
			JointIndex: -1,
			BoneIndex:  -1,
			Detail:     fmt.Sprintf("時間刻みを clamp しました: dt=%f max=%f", dt, MaxTimeStepSeconds),
		})
		dt = MaxTimeStepSeconds
	}

	// コライダー形状は Advance 冒頭で一括スナップショットし、スプリング間で読み取り専用共有する。
	s.snapshotColliderGeometries()

	for _, simSpringState := range s.springs {
		s.advanceSpring(simSpringState, dt)
	}
	return nil
}

// Reset は全ジョイントの末端履歴を現在ボーン変換由来のレスト末端で初期化する。積分は行わない。
func (s *SimulationSession) Reset() error {
	if s.state != sessionStateReady {
		return merr.NewInvalidState("Reset は Ready 状態でのみ呼び出せます")
	}
	return s.resetJointStates()
}

// Snapshot は全ジョイント状態の深い複製を返す。
func (s *SimulationSession) Snapshot() (*SessionSnapshot, error) {
	if s.state != sessionStateReady {
		return nil, merr.NewInvalidState("Snapshot は Ready 状態でのみ呼び出せます")
	}
	source := make([][]JointState, len(s.springs))
	for springIndex, simSpringState := range s.springs {
		source[springIndex] = make([]JointState, len(simSpringState.joints))
		for jointIndex, joint := range simSpringState.joints {
			source[springIndex][jointIndex] = joint.state
		}
	}
	snapshot := &SessionSnapshot{}
	if err := deepcopy.Copy(&snapshot.JointStates, source); err != nil {
		return nil, fmt.Errorf("状態複製に失敗しました: %w", err)
	}
	return snapshot, nil
}

// Restore はスナップショットから全ジョイント状態を復元する。
func (s *SimulationSession) Restore(snapshot *SessionSnapshot) error {
	if s.state != sessionStateReady {
		return merr.NewInvalidState("Restore は Ready 状態でのみ呼び出せます")
	}
	if snapshot == nil || len(snapshot.JointStates) != len(s.springs) {
		return merr.NewInvalidState("スナップショット形状がセッションと一致しません")
	}
	restored := [][]JointState{}
	if err := deepcopy.Copy(&restored, snapshot.JointStates); err != nil {
		return fmt.Errorf("状態復元に失敗しました: %w", err)
	}
	for springIndex, simSpringState := range s.springs {
		if len(restored[springIndex]) != len(simSpringState.joints) {
			return merr.NewInvalidState("スナップショット形状がセッションと一致しません")
		}
		for jointIndex, joint := range simSpringState.joints {
			joint.state = restored[springIndex][jointIndex]
		}
	}
	return nil
}

// buildColliderGroups は実行時コライダーグループを構築する。
func (s *SimulationSession) buildColliderGroups() error {
	boneCount := s.skeleton.BoneCount()
	for groupIndex := range s.settings.ColliderGroups {
		groupSetting := &s.settings.ColliderGroups[groupIndex]
		if _, exists := s.groupsByName[groupSetting.Name]; exists {
			return merr.NewInvalidState(fmt.Sprintf("コライダーグループ名が重複しています: %s", groupSetting.Name))
		}
		group := &simColliderGroup{name: groupSetting.Name}
		for _, colliderSetting := range groupSetting.Colliders {
			if colliderSetting.BoneIndex < 0 || colliderSetting.BoneIndex >= boneCount {
				return merr.NewInvalidState(
					fmt.Sprintf("コライダーボーンindexが範囲外です: group=%s boneIndex=%d", groupSetting.Name, colliderSetting.BoneIndex),
				)
			}
			if colliderSetting.Radius <= 0 {
				return merr.NewInvalidState(
					fmt.Sprintf("コライダー半径は正値が必要です: group=%s radius=%f", groupSetting.Name, colliderSetting.Radius),
				)
			}
			group.colliders = append(group.colliders, &simCollider{setting: colliderSetting})
		}
		s.groupsByName[groupSetting.Name] = group
	}
	return nil
}

// buildSprings は実行時スプリングを構築し、構造を検証する。
func (s *SimulationSession) buildSprings() error {
	boneCount := s.skeleton.BoneCount()
	for springIndex := range s.settings.Springs {
		springSetting := &s.settings.Springs[springIndex]
		simSpringState := &simSpring{setting: *springSetting}

		for _, groupName := range springSetting.ColliderGroupNames {
			group, exists := s.groupsByName[groupName]
			if !exists {
				return merr.NewInvalidState(
					fmt.Sprintf("未定義のコライダーグループを参照しています: spring=%s group=%s", springSetting.Name, groupName),
				)
			}
			simSpringState.groups = append(simSpringState.groups, group)
		}

		drivenBones := map[int]struct{}{}
		for jointOrder, jointSetting := range springSetting.Joints {
			if jointSetting.BoneIndex < 0 || jointSetting.BoneIndex >= boneCount {
				return merr.NewInvalidState(
					fmt.Sprintf("ジョイントボーンindexが範囲外です: spring=%s boneIndex=%d", springSetting.Name, jointSetting.BoneIndex),
				)
			}
			if jointOrder > 0 {
				prevBoneIndex := springSetting.Joints[jointOrder-1].BoneIndex
				if s.skeleton.BoneParentIndex(jointSetting.BoneIndex) != prevBoneIndex {
					return merr.NewInvalidState(fmt.Sprintf(
						"ジョイント列が親子連結になっていません: spring=%s joint=%d", springSetting.Name, jointOrder,
					))
				}
			}
			drivenBones[jointSetting.BoneIndex] = struct{}{}

			joint := &simJoint{
				setting:           jointSetting,
				boneIndex:         jointSetting.BoneIndex,
				parentBoneIndex:   s.skeleton.BoneParentIndex(jointSetting.BoneIndex),
				restLocalRotation: s.skeleton.BoneRestLocalRotation(jointSetting.BoneIndex),
			}
			simSpringState.joints = append(simSpringState.joints, joint)
		}

		s.resolveJointTails(simSpringState)

		if err := s.validateColliderDependencies(springSetting, simSpringState, drivenBones); err != nil {
			return err
		}

		if springSetting.CenterBoneIndex >= boneCount {
			return merr.NewInvalidState(
				fmt.Sprintf("center ボーンindexが範囲外です: spring=%s boneIndex=%d", springSetting.Name, springSetting.CenterBoneIndex),
			)
		}

		s.springs = append(s.springs, simSpringState)
	}
	return nil
}

// resolveJointTails は各ジョイントのレスト末端と剛体長を確定する。
// 末端ジョイントは子ジョイントを持たないため、自身の親からのオフセットを繰り返す合成先端を使う。
func (s *SimulationSession) resolveJointTails(simSpringState *simSpring) {
	for jointOrder, joint := range simSpringState.joints {
		var restLocalTail mmath.Vec3
		if jointOrder+1 < len(simSpringState.joints) {
			restLocalTail = s.skeleton.BoneLocalPosition(simSpringState.joints[jointOrder+1].boneIndex)
		} else {
			restLocalTail = s.skeleton.BoneLocalPosition(joint.boneIndex)
		}
		joint.restLocalTail = restLocalTail
		joint.boneLength = restLocalTail.Length()
		joint.restLocalTailDir = restLocalTail.Normalized()
	}
}

// validateColliderDependencies はスプリング駆動ボーン配下へのコライダー接続と center 設定を検証する。
func (s *SimulationSession) validateColliderDependencies(
	springSetting *spring.SpringSetting,
	simSpringState *simSpring,
	drivenBones map[int]struct{},
) error {
	for _, group := range simSpringState.groups {
		for _, collider := range group.colliders {
			if s.isDrivenByBoneSet(collider.setting.BoneIndex, drivenBones) {
				return merr.NewInvalidState(fmt.Sprintf(
					"スプリング駆動ボーン配下のコライダーは参照できません: spring=%s group=%s boneIndex=%d",
					springSetting.Name, group.name, collider.setting.BoneIndex,
				))
			}
		}
	}
	if springSetting.CenterBoneIndex >= 0 && s.isDrivenByBoneSet(springSetting.CenterBoneIndex, drivenBones) {
		return merr.NewInvalidState(fmt.Sprintf(
			"スプリング駆動ボーン配下は center に指定できません: spring=%s boneIndex=%d",
			springSetting.Name, springSetting.CenterBoneIndex,
		))
	}
	return nil
}

// isDrivenByBoneSet は指定ボーンが駆動ボーン集合またはその子孫か判定する。
func (s *SimulationSession) isDrivenByBoneSet(boneIndex int, drivenBones map[int]struct{}) bool {
	for current := boneIndex; current >= 0; current = s.skeleton.BoneParentIndex(current) {
		if _, driven := drivenBones[current]; driven {
			return true
		}
	}
	return false
}

// resetJointStates は全ジョイントの末端履歴をレスト末端で初期化する。
func (s *SimulationSession) resetJointStates() error {
	for _, simSpringState := range s.springs {
		frames, framesValid := s.resolveCenterFrames(simSpringState)
		if !framesValid {
			return merr.NewInvalidState(fmt.Sprintf(
				"center ボーンの変換が非有限のため初期化できません: spring=%s", simSpringState.setting.Name,
			))
		}
		for _, joint := range simSpringState.joints {
			restTailWorld, err := s.jointRestTailWorld(joint)
			if err != nil {
				return fmt.Errorf("レスト末端の導出に失敗しました: spring=%s err=%w", simSpringState.setting.Name, err)
			}
			restTail := frames.worldToCenter.MulVec3(restTailWorld)
			joint.state.PrevTail = restTail
			joint.state.CurrTail = restTail
		}
	}
	return nil
}

// snapshotColliderGeometries は全コライダーのワールド形状をフレーム冒頭で確定する。
// 退化した変換は直近の有効形状へ退避し、診断へ1回だけ通知する。
func (s *SimulationSession) snapshotColliderGeometries() {
	for _, group := range s.groupsByName {
		for _, collider := range group.colliders {
			boneWorld, err := s.skeleton.BoneWorldMatrix(collider.setting.BoneIndex)
			if err == nil {
				geometry, geomErr := worldColliderGeometry(boneWorld, collider.setting)
				if geomErr == nil {
					collider.geometry = geometry
					collider.hasGeometry = true
					continue
				}
				err = geomErr
			}
			s.reportDiagnostic(moutput.DiagnosticsEvent{
				Type:       moutput.DiagnosticsEventTypeColliderTransformDegenerate,
				SpringName: group.name,
				JointIndex: -1,
				BoneIndex:  collider.setting.BoneIndex,
				Detail:     fmt.Sprintf("コライダー形状を前回値へ退避します: %v (id=%s)", err, merr.ExtractErrorID(err)),
			})
		}
	}
}

// reportDiagnostic は診断イベントをフレーム内重複抑止付きで通知する。
// 受信側が無くてもシミュレーション結果は変わらない。
func (s *SimulationSession) reportDiagnostic(event moutput.DiagnosticsEvent) {
	key := diagnosticsKey{
		eventType:  event.Type,
		springName: event.SpringName,
		jointIndex: event.JointIndex,
		boneIndex:  event.BoneIndex,
	}
	if _, reported := s.frameReported[key]; reported {
		return
	}
	s.frameReported[key] = struct{}{}

	if logger := s.logger(); logger.IsVerboseEnabled(logging.VERBOSE_INDEX_SIMULATION) {
		logger.Verbose(logging.VERBOSE_INDEX_SIMULATION, "[DIAG] type=%s spring=%s joint=%d bone=%d %s",
			event.Type, event.SpringName, event.JointIndex, event.BoneIndex, event.Detail)
	}
	if s.diagnostics == nil {
		return
	}
	s.diagnostics.ReportSimulationDiagnostic(event)
}

// logger は既定ロガーを返す。
func (s *SimulationSession) logger() logging.ILogger {
	return logging.DefaultLogger()
}
