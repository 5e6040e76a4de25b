package warmth

// Band is the discrete classification of a warmth score.
type Band string

const (
	BandHot     Band = "hot"
	BandWarm    Band = "warm"
	BandCooling Band = "cooling"
	BandCold    Band = "cold"
	// BandUnknown is the pre-initialization band of a contact whose snapshot
	// has never been computed. ClassifyScore never returns it.
	BandUnknown Band = "unknown"
)

// Cut points partition the reachable score range [10, 85]. The base score 40
// lands in cooling, and the alerting attention threshold 30 lands in cold.
const (
	hotThreshold     = 70
	warmThreshold    = 55
	coolingThreshold = 35
)

// ClassifyScore maps a computed score to its band.
func ClassifyScore(score int) Band {
	switch {
	case score >= hotThreshold:
		return BandHot
	case score >= warmThreshold:
		return BandWarm
	case score >= coolingThreshold:
		return BandCooling
	default:
		return BandCold
	}
}

// ValidBand reports whether s names a band a computed snapshot can carry.
func ValidBand(s string) bool {
	switch Band(s) {
	case BandHot, BandWarm, BandCooling, BandCold, BandUnknown:
		return true
	default:
		return false
	}
}
