// 指示: miu200521358
// Package moutput はユースケース境界の契約を提供する。
package moutput

import (
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
)

// ISkeletonAccessor は骨格コラボレーターの読み書き契約を表す。
// シミュレーションが外部へ行う変更は SetBoneLocalRotation のみ。
type ISkeletonAccessor interface {
	// BoneCount はボーン数を返す。
	BoneCount() int
	// BoneParentIndex は親ボーンindexを返す。ルートは負値。
	BoneParentIndex(index int) int
	// BoneLocalPosition は親ボーンからのローカルオフセットを返す。
	BoneLocalPosition(index int) mmath.Vec3
	// BoneRestLocalRotation はレスト姿勢のローカル回転を返す。
	BoneRestLocalRotation(index int) mmath.Quaternion
	// BoneWorldMatrix は現在ワールド行列を返す。
	BoneWorldMatrix(index int) (mmath.Mat4, error)
	// SetBoneLocalRotation はローカル回転を書き戻す。
	SetBoneLocalRotation(index int, rotation mmath.Quaternion) error
}

// DiagnosticsEventType は診断イベント種別を表す。
type DiagnosticsEventType string

const (
	// DiagnosticsEventTypeNonFiniteInput は非有限入力によるジョイント保留イベントを表す。
	DiagnosticsEventTypeNonFiniteInput DiagnosticsEventType = "non_finite_input"
	// DiagnosticsEventTypeColliderTransformDegenerate はコライダー変換退化イベントを表す。
	DiagnosticsEventTypeColliderTransformDegenerate DiagnosticsEventType = "collider_transform_degenerate"
	// DiagnosticsEventTypeTimeStepClamped は過大時間刻みの clamp イベントを表す。
	DiagnosticsEventTypeTimeStepClamped DiagnosticsEventType = "time_step_clamped"
)

// DiagnosticsEvent はシミュレーション診断イベントを表す。
type DiagnosticsEvent struct {
	Type       DiagnosticsEventType
	SpringName string
	JointIndex int
	BoneIndex  int
	Detail     string
}

// IDiagnosticsSink は診断イベントの受信契約を表す。
// 受信側の有無はシミュレーション結果へ影響しない。
type IDiagnosticsSink interface {
	// ReportSimulationDiagnostic は診断イベントを受信する。
	ReportSimulationDiagnostic(event DiagnosticsEvent)
}

// RigData は読み込まれたリグ定義一式を表す。
type RigData struct {
	Name       string
	Skeleton   *model.Skeleton
	Settings   *spring.RigSettings
	WarningIDs []string
}

// IRigReader はリグ定義の読み込み契約を表す。
type IRigReader interface {
	// CanLoad は読み込み可否を判定する。
	CanLoad(path string) bool
	// Load はリグ定義を読み込む。
	Load(path string) (*RigData, error)
}
