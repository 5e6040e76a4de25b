package warmth

// warmthKinds is the fixed set of interaction kinds that count toward a
// contact's warmth. Internal activity (notes, pipeline moves, system events)
// is logged elsewhere but never moves the score.
var warmthKinds = map[string]struct{}{
	"email":      {},
	"call":       {},
	"sms":        {},
	"meeting":    {},
	"dm":         {},
	"social":     {},
	"linkedin":   {},
	"twitter":    {},
	"instagram":  {},
	"facebook":   {},
	"whatsapp":   {},
	"telegram":   {},
	"slack":      {},
	"video_call": {},
	"in_person":  {},
}

// AffectsWarmth reports whether an interaction kind counts toward warmth.
// Matching is exact and case-sensitive.
func AffectsWarmth(kind string) bool {
	_, ok := warmthKinds[kind]
	return ok
}
