// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

// SpringSimUsecase はリグ読み込みからシミュレーション実行までを束ねる。
type SpringSimUsecase struct {
	rigReader moutput.IRigReader
}

// NewSpringSimUsecase はユースケースを生成する。
func NewSpringSimUsecase(rigReader moutput.IRigReader) *SpringSimUsecase {
	return &SpringSimUsecase{rigReader: rigReader}
}

// SimulateRequest はシミュレーション実行要求を表す。
type SimulateRequest struct {
	InputPath   string
	Steps       int
	TimeStep    float64
	RigData     *moutput.RigData
	Reader      moutput.IRigReader
	Diagnostics moutput.IDiagnosticsSink
}

// FrameTrace は1ステップ分の全ジョイント末端位置を表す。
type FrameTrace struct {
	Step          int
	TailPositions []mmath.Vec3
}

// SimulateResult はシミュレーション実行結果を表す。
type SimulateResult struct {
	RigName     string
	JointLabels []string
	WarningIDs  []string
	Frames      []FrameTrace
}

// LoadRig はリグ定義を読み込む。
func (uc *SpringSimUsecase) LoadRig(rep moutput.IRigReader, path string) (*moutput.RigData, error) {
	repo := rep
	if repo == nil {
		repo = uc.rigReader
	}
	if repo == nil {
		return nil, fmt.Errorf("リグ読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("入力形式が未対応です: %s", path)
	}
	return repo.Load(path)
}

// Simulate はリグを読み込み、指定ステップ数のシミュレーションを実行して末端軌跡を返す。
func (uc *SpringSimUsecase) Simulate(request SimulateRequest) (*SimulateResult, error) {
	if request.Steps <= 0 {
		return nil, fmt.Errorf("ステップ数は正値が必要です: %d", request.Steps)
	}

	rigData, err := uc.resolveRigData(request)
	if err != nil {
		return nil, err
	}

	session := NewSession(rigData.Skeleton, rigData.Settings, request.Diagnostics)
	if err := session.Setup(); err != nil {
		return nil, fmt.Errorf("セッション準備に失敗しました: %w", err)
	}

	result := &SimulateResult{
		RigName:     rigData.Name,
		JointLabels: buildJointLabels(rigData.Settings),
		WarningIDs:  rigData.WarningIDs,
	}
	for step := 0; step < request.Steps; step++ {
		if err := session.Advance(request.TimeStep); err != nil {
			return nil, fmt.Errorf("ステップ %d の実行に失敗しました: %w", step, err)
		}
		snapshot, err := session.Snapshot()
		if err != nil {
			return nil, err
		}
		result.Frames = append(result.Frames, FrameTrace{
			Step:          step,
			TailPositions: flattenTailPositions(session, snapshot),
		})
	}
	return result, nil
}

// resolveRigData は実行対象リグを解決する。
func (uc *SpringSimUsecase) resolveRigData(request SimulateRequest) (*moutput.RigData, error) {
	resolved := request.RigData
	if resolved == nil {
		if strings.TrimSpace(request.InputPath) == "" {
			return nil, fmt.Errorf("入力リグパスが未指定です")
		}
		loaded, err := uc.LoadRig(request.Reader, request.InputPath)
		if err != nil {
			return nil, err
		}
		resolved = loaded
	}
	if resolved == nil || resolved.Skeleton == nil || resolved.Settings == nil {
		return nil, fmt.Errorf("リグ読み込み結果が空です")
	}
	return resolved, nil
}

// buildJointLabels は spring名/ジョイント順 のラベル一覧を構築する。
func buildJointLabels(settings *spring.RigSettings) []string {
	labels := []string{}
	for _, springSetting := range settings.Springs {
		for jointOrder := range springSetting.Joints {
			labels = append(labels, fmt.Sprintf("%s/%d", springSetting.Name, jointOrder))
		}
	}
	return labels
}

// flattenTailPositions はスナップショットをワールド座標の平坦列へ変換する。
func flattenTailPositions(session *SimulationSession, snapshot *SessionSnapshot) []mmath.Vec3 {
	positions := []mmath.Vec3{}
	for springIndex, simSpringState := range session.springs {
		frames, framesValid := session.resolveCenterFrames(simSpringState)
		if !framesValid {
			frames = identityCenterFrames()
		}
		for jointIndex := range simSpringState.joints {
			tail := snapshot.JointStates[springIndex][jointIndex].CurrTail
			positions = append(positions, frames.centerToWorld.MulVec3(tail))
		}
	}
	return positions
}
