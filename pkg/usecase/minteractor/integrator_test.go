// 指示: miu200521358
package minteractor

import (
	"testing"

	"github.com/miu200521358/mu_vrm_spring/pkg/domain/mmath"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model"
	"github.com/miu200521358/mu_vrm_spring/pkg/domain/model/spring"
)

// TestAdvance静止姿勢維持 は重力方向と一致する静止姿勢が変化しないことを検証する。
func TestAdvance静止姿勢維持(t *testing.T) {
	opts := defaultChainRigOptions()
	opts.segment = mmath.NewVec3ByValues(0, -0.1, 0)
	skeleton, settings, _ := buildChainRig(t, opts)
	session := newReadySession(t, skeleton, settings, nil)

	restTails := worldTailPositions(t, session)
	advanceSteps(t, session, 60, testTimeStep)

	currentTails := worldTailPositions(t, session)
	for tailIndex, restTail := range restTails {
		if !currentTails[tailIndex].NearEquals(restTail, 1e-9) {
			t.Fatalf(
				"静止姿勢が崩れた: tail=%d rest=%+v current=%+v",
				tailIndex, restTail, currentTails[tailIndex],
			)
		}
	}
	assertChainRigidity(t, session)
}

// TestAdvance外力なし静止 は外力ゼロのとき初期姿勢が維持されることを検証する。
func TestAdvance外力なし静止(t *testing.T) {
	opts := defaultChainRigOptions()
	opts.stiffness = 0
	opts.gravityPower = 0
	skeleton, settings, _ := buildChainRig(t, opts)
	session := newReadySession(t, skeleton, settings, nil)

	restTails := worldTailPositions(t, session)
	advanceSteps(t, session, 30, testTimeStep)

	currentTails := worldTailPositions(t, session)
	for tailIndex, restTail := range restTails {
		if !currentTails[tailIndex].NearEquals(restTail, 1e-9) {
			t.Fatalf("外力ゼロで姿勢が変化した: tail=%d", tailIndex)
		}
	}
}

// TestAdvance垂下収束 は水平姿勢のチェーンが重力で下方へ収束することを検証する。
func TestAdvance垂下収束(t *testing.T) {
	skeleton, settings, _ := buildChainRig(t, defaultChainRigOptions())
	session := newReadySession(t, skeleton, settings, nil)

	restTails := worldTailPositions(t, session)
	chainRoot := mmath.NewVec3ByValues(0.1, 1, 0)

	advanceSteps(t, session, 540, testTimeStep)
	settledTails := worldTailPositions(t, session)
	advanceSteps(t, session, 60, testTimeStep)
	finalTails := worldTailPositions(t, session)

	for tailIndex, finalTail := range finalTails {
		if !finalTail.IsFinite() {
			t.Fatalf("末端位置が非有限: tail=%d value=%+v", tailIndex, finalTail)
		}
		if finalTail.Y >= restTails[tailIndex].Y {
			t.Fatalf(
				"末端が初期姿勢より下がっていない: tail=%d rest=%.6f final=%.6f",
				tailIndex, restTails[tailIndex].Y, finalTail.Y,
			)
		}
		if distance := chainRoot.Distance(finalTail); distance > 0.3+1e-6 {
			t.Fatalf("末端がチェーン全長を超えた: tail=%d distance=%.6f", tailIndex, distance)
		}
		if drift := settledTails[tailIndex].Distance(finalTail); drift > 1e-3 {
			t.Fatalf("収束後も振動が残っている: tail=%d drift=%.6f", tailIndex, drift)
		}
	}
	assertChainRigidity(t, session)
}

// TestAdvance剛体長維持 は各ステップで頭-末端距離が骨長と一致し続けることを検証する。
func TestAdvance剛体長維持(t *testing.T) {
	skeleton, settings, _ := buildChainRig(t, defaultChainRigOptions())
	session := newReadySession(t, skeleton, settings, nil)

	for step := 0; step < 120; step++ {
		if err := session.Advance(testTimeStep); err != nil {
			t.Fatalf("advance failed at step %d: %v", step, err)
		}
		assertChainRigidity(t, session)
	}
}

// TestAdvance抵抗単調性 は dragForce が大きいほど慣性移動量が減ることを検証する。
func TestAdvance抵抗単調性(t *testing.T) {
	secondStepDistance := func(dragForce float64) float64 {
		opts := defaultChainRigOptions()
		opts.jointCount = 1
		opts.stiffness = 0
		opts.dragForce = dragForce
		skeleton, settings, _ := buildChainRig(t, opts)
		session := newReadySession(t, skeleton, settings, nil)

		advanceSteps(t, session, 1, testTimeStep)
		firstTails := worldTailPositions(t, session)
		advanceSteps(t, session, 1, testTimeStep)
		secondTails := worldTailPositions(t, session)
		return firstTails[0].Distance(secondTails[0])
	}

	distanceFree := secondStepDistance(0.0)
	distanceHalf := secondStepDistance(0.5)
	distanceFull := secondStepDistance(1.0)
	if !(distanceFree > distanceHalf && distanceHalf > distanceFull) {
		t.Fatalf(
			"dragForce の単調性が成立しない: free=%.9f half=%.9f full=%.9f",
			distanceFree, distanceHalf, distanceFull,
		)
	}
}

// TestAdvance時間刻みゼロ は dt=0 でジョイント状態が変化しないことを検証する。
func TestAdvance時間刻みゼロ(t *testing.T) {
	skeleton, settings, _ := buildChainRig(t, defaultChainRigOptions())
	session := newReadySession(t, skeleton, settings, nil)
	advanceSteps(t, session, 10, testTimeStep)

	before, err := session.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if err := session.Advance(0); err != nil {
		t.Fatalf("advance(0) failed: %v", err)
	}
	after, err := session.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	for springIndex := range before.JointStates {
		for jointIndex := range before.JointStates[springIndex] {
			beforeState := before.JointStates[springIndex][jointIndex]
			afterState := after.JointStates[springIndex][jointIndex]
			if beforeState != afterState {
				t.Fatalf(
					"dt=0 で状態が変化した: spring=%d joint=%d before=%+v after=%+v",
					springIndex, jointIndex, beforeState, afterState,
				)
			}
		}
	}
}

// TestAdvanceゼロ長ジョイント は骨長ゼロのジョイントが安全にスキップされることを検証する。
func TestAdvanceゼロ長ジョイント(t *testing.T) {
	bones := model.NewBoneCollection()
	attachmentIndex := bones.AppendRaw(model.NewBone(
		"attachment", -1, mmath.NewVec3ByValues(0, 1, 0), mmath.NewQuaternion(),
	))
	jointIndex := bones.AppendRaw(model.NewBone(
		"joint0", attachmentIndex, mmath.ZERO_VEC3, mmath.NewQuaternion(),
	))
	skeleton := model.NewSkeleton(bones)
	settings := &spring.RigSettings{
		Springs: []spring.SpringSetting{
			{
				Name: "degenerate",
				Joints: []spring.JointSetting{
					{
						BoneIndex:        jointIndex,
						Stiffness:        1.0,
						DragForce:        0.4,
						GravityPower:     1.0,
						GravityDirection: mmath.UNIT_Y_NEG_VEC3,
					},
				},
				CenterBoneIndex: -1,
			},
		},
	}
	session := newReadySession(t, skeleton, settings, nil)
	advanceSteps(t, session, 30, testTimeStep)

	boneWorld, err := skeleton.BoneWorldMatrix(jointIndex)
	if err != nil {
		t.Fatalf("world matrix failed: %v", err)
	}
	head := boneWorld.Translation()
	tails := worldTailPositions(t, session)
	if !tails[0].NearEquals(head, 1e-9) {
		t.Fatalf("ゼロ長ジョイントの末端が頭位置と一致しない: head=%+v tail=%+v", head, tails[0])
	}
	jointBone, err := skeleton.Bones().Get(jointIndex)
	if err != nil {
		t.Fatalf("get bone failed: %v", err)
	}
	if !jointBone.LocalRotation.NearEquals(mmath.NewQuaternion(), 1e-9) {
		t.Fatalf("ゼロ長ジョイントのローカル回転が変化した")
	}
}

// TestAdvanceセンター空間 はセンター指定時にルート平行移動が揺れへ影響しないことを検証する。
func TestAdvanceセンター空間(t *testing.T) {
	staticOpts := defaultChainRigOptions()
	staticSkeleton, staticSettings, _ := buildChainRig(t, staticOpts)
	staticSession := newReadySession(t, staticSkeleton, staticSettings, nil)

	movingOpts := defaultChainRigOptions()
	movingOpts.centerIndex = 0
	movingSkeleton, movingSettings, _ := buildChainRig(t, movingOpts)
	movingSession := newReadySession(t, movingSkeleton, movingSettings, nil)

	for step := 0; step < 60; step++ {
		offset := mmath.NewVec3ByValues(float64(step)*0.5, 1, float64(step%7))
		if err := movingSkeleton.SetBoneLocalPosition(0, offset); err != nil {
			t.Fatalf("set bone local position failed: %v", err)
		}
		if err := staticSession.Advance(testTimeStep); err != nil {
			t.Fatalf("static advance failed: %v", err)
		}
		if err := movingSession.Advance(testTimeStep); err != nil {
			t.Fatalf("moving advance failed: %v", err)
		}
	}

	staticTails := worldTailPositions(t, staticSession)
	movingTails := worldTailPositions(t, movingSession)
	staticRoot := staticSkeleton.BoneLocalPosition(0)
	movingRoot := movingSkeleton.BoneLocalPosition(0)
	for tailIndex := range staticTails {
		staticRelative := staticTails[tailIndex].Subed(staticRoot)
		movingRelative := movingTails[tailIndex].Subed(movingRoot)
		if !staticRelative.NearEquals(movingRelative, 1e-9) {
			t.Fatalf(
				"センター空間の相対末端が一致しない: tail=%d static=%+v moving=%+v",
				tailIndex, staticRelative, movingRelative,
			)
		}
	}
}

// TestAdvanceセンターなしルート移動 はセンター未指定時にルート移動が慣性を生むことを検証する。
func TestAdvanceセンターなしルート移動(t *testing.T) {
	staticSkeleton, staticSettings, _ := buildChainRig(t, defaultChainRigOptions())
	staticSession := newReadySession(t, staticSkeleton, staticSettings, nil)

	movingSkeleton, movingSettings, _ := buildChainRig(t, defaultChainRigOptions())
	movingSession := newReadySession(t, movingSkeleton, movingSettings, nil)

	for step := 0; step < 30; step++ {
		offset := mmath.NewVec3ByValues(float64(step)*0.2, 1, 0)
		if err := movingSkeleton.SetBoneLocalPosition(0, offset); err != nil {
			t.Fatalf("set bone local position failed: %v", err)
		}
		if err := staticSession.Advance(testTimeStep); err != nil {
			t.Fatalf("static advance failed: %v", err)
		}
		if err := movingSession.Advance(testTimeStep); err != nil {
			t.Fatalf("moving advance failed: %v", err)
		}
	}

	staticTails := worldTailPositions(t, staticSession)
	movingTails := worldTailPositions(t, movingSession)
	staticRoot := staticSkeleton.BoneLocalPosition(0)
	movingRoot := movingSkeleton.BoneLocalPosition(0)
	divergent := false
	for tailIndex := range staticTails {
		staticRelative := staticTails[tailIndex].Subed(staticRoot)
		movingRelative := movingTails[tailIndex].Subed(movingRoot)
		if staticRelative.Distance(movingRelative) > 1e-6 {
			divergent = true
		}
	}
	if !divergent {
		t.Fatalf("センター未指定でもルート移動の慣性が現れなかった")
	}
}
