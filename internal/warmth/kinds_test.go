package warmth

import "testing"

func TestAffectsWarmthCommunicationKinds(t *testing.T) {
	for _, kind := range []string{"email", "call", "sms", "meeting", "dm", "video_call", "in_person"} {
		if !AffectsWarmth(kind) {
			t.Fatalf("AffectsWarmth(%q) = false, want true", kind)
		}
	}
}

func TestAffectsWarmthSocialKinds(t *testing.T) {
	for _, kind := range []string{"social", "linkedin", "twitter", "instagram", "facebook", "whatsapp", "telegram", "slack"} {
		if !AffectsWarmth(kind) {
			t.Fatalf("AffectsWarmth(%q) = false, want true", kind)
		}
	}
}

func TestAffectsWarmthExcludesInternalKinds(t *testing.T) {
	for _, kind := range []string{"note", "screenshot_note", "pipeline_update", "system"} {
		if AffectsWarmth(kind) {
			t.Fatalf("AffectsWarmth(%q) = true, want false", kind)
		}
	}
}

func TestAffectsWarmthExcludesUnknownKinds(t *testing.T) {
	cases := []string{"", "unknown", "random_action", "Email", "CALL", " email"}
	for _, kind := range cases {
		if AffectsWarmth(kind) {
			t.Fatalf("AffectsWarmth(%q) = true, want false", kind)
		}
	}
}
