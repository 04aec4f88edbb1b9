// 指示: miu200521358
package model

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
)

// Skeleton はボーン階層と現在ポーズのワールド変換を保持する。
// ワールド行列は世代番号付きで遅延計算し、ポーズ変更時に一括無効化する。
type Skeleton struct {
	bones *BoneCollection

	worldMatrices   []mmath.Mat4
	worldGeneration []uint64
	generation      uint64
}

// NewSkeleton は骨格を生成する。
func NewSkeleton(bones *BoneCollection) *Skeleton {
	boneCount := bones.Len()
	return &Skeleton{
		bones:           bones,
		worldMatrices:   make([]mmath.Mat4, boneCount),
		worldGeneration: make([]uint64, boneCount),
		generation:      1,
	}
}

// Bones はボーン集合を返す。
func (s *Skeleton) Bones() *BoneCollection {
	if s == nil {
		return nil
	}
	return s.bones
}

// BoneCount はボーン数を返す。
func (s *Skeleton) BoneCount() int {
	if s == nil {
		return 0
	}
	return s.bones.Len()
}

// BoneParentIndex は親ボーンindexを返す。範囲外は負値。
func (s *Skeleton) BoneParentIndex(index int) int {
	bone, err := s.bones.Get(index)
	if err != nil {
		return -1
	}
	return bone.ParentIndex
}

// BoneLocalPosition は親ボーンからのローカルオフセットを返す。
func (s *Skeleton) BoneLocalPosition(index int) mmath.Vec3 {
	bone, err := s.bones.Get(index)
	if err != nil {
		return mmath.ZERO_VEC3
	}
	return bone.LocalPosition
}

// BoneRestLocalRotation はレスト姿勢のローカル回転を返す。
func (s *Skeleton) BoneRestLocalRotation(index int) mmath.Quaternion {
	bone, err := s.bones.Get(index)
	if err != nil {
		return mmath.NewQuaternion()
	}
	return bone.RestLocalRotation
}

// BoneWorldMatrix は指定ボーンの現在ワールド行列を返す。
func (s *Skeleton) BoneWorldMatrix(index int) (mmath.Mat4, error) {
	if s == nil {
		return mmath.NewMat4(), fmt.Errorf("骨格が未設定です")
	}
	bone, err := s.bones.Get(index)
	if err != nil {
		return mmath.NewMat4(), err
	}
	if s.worldGeneration[index] == s.generation {
		return s.worldMatrices[index], nil
	}

	local := mmath.NewMat4FromTransform(bone.LocalPosition, bone.LocalRotation)
	world := local
	if bone.ParentIndex >= 0 {
		parentWorld, err := s.BoneWorldMatrix(bone.ParentIndex)
		if err != nil {
			return mmath.NewMat4(), err
		}
		world = parentWorld.Muled(local)
	}
	s.worldMatrices[index] = world
	s.worldGeneration[index] = s.generation
	return world, nil
}

// SetBoneLocalRotation は指定ボーンのローカル回転を更新する。
func (s *Skeleton) SetBoneLocalRotation(index int, rotation mmath.Quaternion) error {
	if s == nil {
		return fmt.Errorf("骨格が未設定です")
	}
	bone, err := s.bones.Get(index)
	if err != nil {
		return err
	}
	bone.LocalRotation = rotation
	s.InvalidateWorld()
	return nil
}

// SetBoneLocalPosition は指定ボーンのローカルオフセットを更新する。
// ルート移動の再現などホスト側のポーズ操作用。
func (s *Skeleton) SetBoneLocalPosition(index int, position mmath.Vec3) error {
	if s == nil {
		return fmt.Errorf("骨格が未設定です")
	}
	bone, err := s.bones.Get(index)
	if err != nil {
		return err
	}
	bone.LocalPosition = position
	s.InvalidateWorld()
	return nil
}

// InvalidateWorld はワールド行列キャッシュを全無効化する。
func (s *Skeleton) InvalidateWorld() {
	if s == nil {
		return
	}
	s.generation++
}
