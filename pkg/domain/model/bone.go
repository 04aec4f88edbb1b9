// 指示: miu200521358
// Package model はスプリングボーン対象の骨格モデルを提供する。
package model

import (
	"fmt"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
)

// Bone は骨格内の1ボーンを表す。
type Bone struct {
	index int
	name  string

	// ParentIndex は親ボーンindex。ルートは負値。
	ParentIndex int
	// LocalPosition は親ボーンからのローカルオフセット。
	LocalPosition mmath.Vec3
	// LocalRotation は現在ポーズのローカル回転。
	LocalRotation mmath.Quaternion
	// RestLocalRotation は骨格構築時に確定するレスト姿勢のローカル回転。
	RestLocalRotation mmath.Quaternion
}

// NewBone はボーンを生成する。レスト回転は生成時のローカル回転で確定する。
func NewBone(name string, parentIndex int, localPosition mmath.Vec3, localRotation mmath.Quaternion) *Bone {
	return &Bone{
		index:             -1,
		name:              name,
		ParentIndex:       parentIndex,
		LocalPosition:     localPosition,
		LocalRotation:     localRotation,
		RestLocalRotation: localRotation,
	}
}

// Index はボーンindexを返す。
func (b *Bone) Index() int {
	return b.index
}

// Name はボーン名を返す。
func (b *Bone) Name() string {
	return b.name
}

// BoneCollection はindex順のボーン集合を表す。
type BoneCollection struct {
	values    []*Bone
	nameIndex map[string]int
}

// NewBoneCollection は空のボーン集合を生成する。
func NewBoneCollection() *BoneCollection {
	return &BoneCollection{
		values:    []*Bone{},
		nameIndex: map[string]int{},
	}
}

// AppendRaw はボーンを末尾へ追加してindexを返す。
func (c *BoneCollection) AppendRaw(bone *Bone) int {
	if c == nil || bone == nil {
		return -1
	}
	bone.index = len(c.values)
	c.values = append(c.values, bone)
	if bone.name != "" {
		c.nameIndex[bone.name] = bone.index
	}
	return bone.index
}

// Get は指定indexのボーンを返す。
func (c *BoneCollection) Get(index int) (*Bone, error) {
	if c == nil || index < 0 || index >= len(c.values) {
		return nil, fmt.Errorf("ボーンindexが範囲外です: %d", index)
	}
	return c.values[index], nil
}

// GetByName は指定名のボーンを返す。
func (c *BoneCollection) GetByName(name string) (*Bone, bool) {
	if c == nil {
		return nil, false
	}
	index, exists := c.nameIndex[name]
	if !exists {
		return nil, false
	}
	return c.values[index], true
}

// Values は全ボーンをindex順で返す。
func (c *BoneCollection) Values() []*Bone {
	if c == nil {
		return nil
	}
	return c.values
}

// Len はボーン数を返す。
func (c *BoneCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}
