// 指示: miu200521358
package model

const (
	// SpringWarningRawExtensionKey は検証時警告ID集合を保持する拡張キー。
	SpringWarningRawExtensionKey = "MU_VRM_SPRING_warnings"

	// SpringWarningParamClamped は spring パラメータ clamp 警告。
	SpringWarningParamClamped = "SpringWarningParamClamped"
	// SpringWarningGravityDirectionDegenerate は重力方向の零ベクトル退避警告。
	SpringWarningGravityDirectionDegenerate = "SpringWarningGravityDirectionDegenerate"
	// SpringWarningColliderRadiusClamped はコライダー半径 clamp 警告。
	SpringWarningColliderRadiusClamped = "SpringWarningColliderRadiusClamped"
	// SpringWarningHitRadiusClamped はジョイント hitRadius clamp 警告。
	SpringWarningHitRadiusClamped = "SpringWarningHitRadiusClamped"
	// SpringWarningEmptySpring はジョイント未定義スプリング警告。
	SpringWarningEmptySpring = "SpringWarningEmptySpring"
	// SpringWarningUnknownColliderGroup は未定義コライダーグループ参照警告。
	SpringWarningUnknownColliderGroup = "SpringWarningUnknownColliderGroup"
)
