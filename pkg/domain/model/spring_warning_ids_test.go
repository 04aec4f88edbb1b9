package model

import "testing"

func TestSpringWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	if SpringWarningRawExtensionKey != "MU_VRM_SPRING_warnings" {
		t.Fatalf("raw extension key mismatch: got=%s want=%s", SpringWarningRawExtensionKey, "MU_VRM_SPRING_warnings")
	}

	warningIDs := []string{
		SpringWarningParamClamped,
		SpringWarningGravityDirectionDegenerate,
		SpringWarningColliderRadiusClamped,
		SpringWarningHitRadiusClamped,
		SpringWarningEmptySpring,
		SpringWarningUnknownColliderGroup,
	}

	seen := map[string]struct{}{}
	for _, warningID := range warningIDs {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
}
