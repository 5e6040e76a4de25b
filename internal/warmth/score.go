package warmth

import (
	"math"
	"time"
)

// Interaction is the narrow view of a logged interaction the calculator sees.
// Whatever else the store keeps on an interaction row stays out of scoring.
type Interaction struct {
	Kind       string
	OccurredAt time.Time
}

// ScoreConfig is the scoring policy, passed explicitly so the formula can be
// tested and tuned per deployment instead of living in package globals.
type ScoreConfig struct {
	BaseScore float64

	MaxRecencyBoost   float64
	RecencyWindowDays float64

	MaxFrequencyBoost        float64
	FrequencyWindowDays      float64
	MaxFrequencyInteractions int

	ChannelBreadthBonus      float64
	ChannelBreadthWindowDays float64
	MinChannelKindsForBonus  int

	DecayStartDays float64
	DecayPerDay    float64
	MaxDecay       float64

	MinScore float64
	MaxScore float64
}

// DefaultScoreConfig returns the production scoring policy. The additive
// ceiling is 40+25+15+5 = 85, deliberately below MaxScore so heavy recent
// engagement never saturates the scale. The silence floor is 40-30 = 10.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		BaseScore:                40,
		MaxRecencyBoost:          25,
		RecencyWindowDays:        90,
		MaxFrequencyBoost:        15,
		FrequencyWindowDays:      90,
		MaxFrequencyInteractions: 6,
		ChannelBreadthBonus:      5,
		ChannelBreadthWindowDays: 30,
		MinChannelKindsForBonus:  2,
		DecayStartDays:           7,
		DecayPerDay:              0.5,
		MaxDecay:                 30,
		MinScore:                 0,
		MaxScore:                 100,
	}
}

const hoursPerDay = 24

// ComputeScore derives a warmth score from a contact's qualifying interaction
// log. It is a full re-derivation every call: no previous score feeds in, so
// recomputation is idempotent and safe to repeat in any order. Callers are
// expected to pre-filter the log through AffectsWarmth and to drop malformed
// timestamps; the function itself never fails.
func ComputeScore(cfg ScoreConfig, log []Interaction, now time.Time) int {
	daysSinceLast := math.Inf(1)
	for _, iv := range log {
		age := now.Sub(iv.OccurredAt).Hours() / hoursPerDay
		if age < daysSinceLast {
			daysSinceLast = age
		}
	}

	recencyBoost := cfg.MaxRecencyBoost * clamp(1-daysSinceLast/cfg.RecencyWindowDays, 0, 1)

	count := 0
	for _, iv := range log {
		if now.Sub(iv.OccurredAt).Hours()/hoursPerDay <= cfg.FrequencyWindowDays {
			count++
		}
	}
	if count > cfg.MaxFrequencyInteractions {
		count = cfg.MaxFrequencyInteractions
	}
	frequencyBoost := cfg.MaxFrequencyBoost * float64(count) / float64(cfg.MaxFrequencyInteractions)

	kinds := make(map[string]struct{})
	for _, iv := range log {
		if now.Sub(iv.OccurredAt).Hours()/hoursPerDay <= cfg.ChannelBreadthWindowDays {
			kinds[iv.Kind] = struct{}{}
		}
	}
	var channelBonus float64
	if len(kinds) >= cfg.MinChannelKindsForBonus {
		channelBonus = cfg.ChannelBreadthBonus
	}

	decay := math.Max(0, daysSinceLast-cfg.DecayStartDays) * cfg.DecayPerDay
	if decay > cfg.MaxDecay {
		decay = cfg.MaxDecay
	}

	raw := cfg.BaseScore + recencyBoost + frequencyBoost + channelBonus - decay
	return int(math.Round(clamp(raw, cfg.MinScore, cfg.MaxScore)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
