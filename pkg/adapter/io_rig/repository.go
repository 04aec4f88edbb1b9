// 指示: miu200521358
// Package io_rig はYAMLリグ定義の読み込みアダプターを提供する。
package io_rig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/logging"
	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/merr"
	"github.com/miu200521358/mu_vrm_spring/pkg/usecase/port/moutput"
)

// LoadProgressEventType はリグ読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeYamlParsed はYAML解析完了イベントを表す。
	LoadProgressEventTypeYamlParsed LoadProgressEventType = "yaml_parsed"
	// LoadProgressEventTypeCompleted はリグ読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はリグ読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	BoneCount     int
	SpringCount   int
	WarningCount  int
}

// rigDocument はYAMLリグ定義のルート構造を表す。
type rigDocument struct {
	Name           string                  `yaml:"name"`
	Bones          []boneDocument          `yaml:"bones"`
	ColliderGroups []colliderGroupDocument `yaml:"collider_groups"`
	Springs        []springDocument        `yaml:"springs"`
}

type boneDocument struct {
	Name     string     `yaml:"name"`
	Parent   string     `yaml:"parent"`
	Position [3]float64 `yaml:"position"`
	// Rotation はXYZ順のオイラー角(度)。
	Rotation [3]float64 `yaml:"rotation"`
}

type colliderGroupDocument struct {
	Name      string             `yaml:"name"`
	Colliders []colliderDocument `yaml:"colliders"`
}

type colliderDocument struct {
	Bone       string     `yaml:"bone"`
	Shape      string     `yaml:"shape"`
	Offset     [3]float64 `yaml:"offset"`
	TailOffset [3]float64 `yaml:"tail_offset"`
	Radius     float64    `yaml:"radius"`
}

type springDocument struct {
	Name           string          `yaml:"name"`
	Center         string          `yaml:"center"`
	ColliderGroups []string        `yaml:"collider_groups"`
	Joints         []jointDocument `yaml:"joints"`
}

type jointDocument struct {
	Bone             string     `yaml:"bone"`
	Stiffness        float64    `yaml:"stiffness"`
	DragForce        float64    `yaml:"drag_force"`
	GravityPower     float64    `yaml:"gravity_power"`
	GravityDirection [3]float64 `yaml:"gravity_direction"`
	HitRadius        float64    `yaml:"hit_radius"`
}

// RigRepository はYAMLリグ入力の読み込み契約を表す。
type RigRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewRigRepository はRigRepositoryを生成する。
func NewRigRepository() *RigRepository {
	return &RigRepository{}
}

// SetLoadProgressReporter はリグ読込進捗受信コールバックを設定する。
func (r *RigRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *RigRepository) CanLoad(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".yaml") || strings.EqualFold(ext, ".yml")
}

// InferName はパスから表示名を推定する。
func (r *RigRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はYAMLリグ定義を読み込み、骨格とスプリング設定を構築する。
func (r *RigRepository) Load(path string) (*moutput.RigData, error) {
	if !r.CanLoad(path) {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	logRigInfo("リグ読込開始: file=%s", filepath.Base(path))

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, merr.NewIoFileNotFound(path, err)
		}
		return nil, merr.NewIoParseFailed("リグファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})

	doc := rigDocument{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, merr.NewIoParseFailed("リグYAMLの解析に失敗しました", err)
	}
	if len(doc.Bones) == 0 {
		return nil, merr.NewIoParseFailed(fmt.Sprintf("ボーン定義がありません: %s", path), nil)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeYamlParsed,
		FileSizeBytes: len(b),
		BoneCount:     len(doc.Bones),
		SpringCount:   len(doc.Springs),
	})
	logRigInfo("リグ読込ステップ: YAML解析完了 bones=%d springs=%d", len(doc.Bones), len(doc.Springs))

	skeleton, boneIndexes, err := buildSkeleton(doc.Bones)
	if err != nil {
		return nil, err
	}
	logRigInfo("リグ読込ステップ: 骨格構築完了")

	settings, err := buildRigSettings(&doc, boneIndexes)
	if err != nil {
		return nil, err
	}
	warningIDs := spring.ValidateAndClamp(settings)
	for _, warningID := range warningIDs {
		logRigWarn("リグ定義警告: %s", warningID)
	}

	name := doc.Name
	if name == "" {
		name = r.InferName(path)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeCompleted,
		FileSizeBytes: len(b),
		BoneCount:     len(doc.Bones),
		SpringCount:   len(doc.Springs),
		WarningCount:  len(warningIDs),
	})
	logRigInfo("リグ読込完了: name=%s warnings=%d", name, len(warningIDs))

	return &moutput.RigData{
		Name:       name,
		Skeleton:   skeleton,
		Settings:   settings,
		WarningIDs: warningIDs,
	}, nil
}

// reportLoadProgress は読込進捗を通知する。受信側が無ければ何もしない。
func (r *RigRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// buildSkeleton はボーン定義列から骨格を構築する。親は自身より先に宣言されている必要がある。
func buildSkeleton(boneDocs []boneDocument) (*model.Skeleton, map[string]int, error) {
	bones := model.NewBoneCollection()
	boneIndexes := map[string]int{}
	for _, boneDoc := range boneDocs {
		if boneDoc.Name == "" {
			return nil, nil, merr.NewIoParseFailed("名前のないボーン定義があります", nil)
		}
		if _, exists := boneIndexes[boneDoc.Name]; exists {
			return nil, nil, merr.NewIoParseFailed(fmt.Sprintf("ボーン名が重複しています: %s", boneDoc.Name), nil)
		}
		parentIndex := -1
		if boneDoc.Parent != "" {
			resolved, exists := boneIndexes[boneDoc.Parent]
			if !exists {
				return nil, nil, merr.NewIoParseFailed(
					fmt.Sprintf("親ボーンが未宣言です: bone=%s parent=%s", boneDoc.Name, boneDoc.Parent), nil,
				)
			}
			parentIndex = resolved
		}
		boneIndex := bones.AppendRaw(model.NewBone(
			boneDoc.Name,
			parentIndex,
			toVec3(boneDoc.Position),
			mmath.NewQuaternionFromDegrees(boneDoc.Rotation[0], boneDoc.Rotation[1], boneDoc.Rotation[2]),
		))
		boneIndexes[boneDoc.Name] = boneIndex
	}
	return model.NewSkeleton(bones), boneIndexes, nil
}

// buildRigSettings はYAML定義をスプリング設定へ変換する。ボーン名はここでindexへ解決する。
func buildRigSettings(doc *rigDocument, boneIndexes map[string]int) (*spring.RigSettings, error) {
	settings := &spring.RigSettings{}

	for _, groupDoc := range doc.ColliderGroups {
		group := spring.ColliderGroupSetting{Name: groupDoc.Name}
		for _, colliderDoc := range groupDoc.Colliders {
			boneIndex, exists := boneIndexes[colliderDoc.Bone]
			if !exists {
				return nil, merr.NewIoParseFailed(
					fmt.Sprintf("コライダーボーンが未定義です: group=%s bone=%s", groupDoc.Name, colliderDoc.Bone), nil,
				)
			}
			group.Colliders = append(group.Colliders, spring.ColliderSetting{
				BoneIndex:  boneIndex,
				Shape:      spring.ColliderShapeType(colliderDoc.Shape),
				Offset:     toVec3(colliderDoc.Offset),
				TailOffset: toVec3(colliderDoc.TailOffset),
				Radius:     colliderDoc.Radius,
			})
		}
		settings.ColliderGroups = append(settings.ColliderGroups, group)
	}

	for _, springDoc := range doc.Springs {
		springSetting := spring.SpringSetting{
			Name:               springDoc.Name,
			ColliderGroupNames: springDoc.ColliderGroups,
			CenterBoneIndex:    -1,
		}
		if springDoc.Center != "" {
			centerIndex, exists := boneIndexes[springDoc.Center]
			if !exists {
				return nil, merr.NewIoParseFailed(
					fmt.Sprintf("center ボーンが未定義です: spring=%s bone=%s", springDoc.Name, springDoc.Center), nil,
				)
			}
			springSetting.CenterBoneIndex = centerIndex
		}
		for _, jointDoc := range springDoc.Joints {
			boneIndex, exists := boneIndexes[jointDoc.Bone]
			if !exists {
				return nil, merr.NewIoParseFailed(
					fmt.Sprintf("ジョイントボーンが未定義です: spring=%s bone=%s", springDoc.Name, jointDoc.Bone), nil,
				)
			}
			springSetting.Joints = append(springSetting.Joints, spring.JointSetting{
				BoneIndex:        boneIndex,
				Stiffness:        jointDoc.Stiffness,
				DragForce:        jointDoc.DragForce,
				GravityPower:     jointDoc.GravityPower,
				GravityDirection: toVec3(jointDoc.GravityDirection),
				HitRadius:        jointDoc.HitRadius,
			})
		}
		settings.Springs = append(settings.Springs, springSetting)
	}
	return settings, nil
}

// toVec3 はYAMLの3要素配列をVec3へ変換する。
func toVec3(values [3]float64) mmath.Vec3 {
	return mmath.NewVec3ByValues(values[0], values[1], values[2])
}

// logRigInfo はリグ読込のINFOログを出力する。
func logRigInfo(format string, args ...any) {
	logging.DefaultLogger().Info(format, args...)
}

// logRigWarn はリグ読込のWARNログを出力する。
func logRigWarn(format string, args ...any) {
	logging.DefaultLogger().Warn(format, args...)
}
