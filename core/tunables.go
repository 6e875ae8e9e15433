package core

// Tunables are the adaptation-rate and emotion-model constants the contract
// leaves open. The documented ratios (trust +5/-15, anxious x2, toxic floor
// 20, payout multipliers) are fixed elsewhere and deliberately not here.
type Tunables struct {
	// LearningRate scales strategy-parameter drift per settled round,
	// multiplied by the agent's adaptability skill.
	LearningRate float64 `json:"learning_rate"`
	// ReciprocityFloor is the self-preservation floor reciprocity drifts
	// toward under repeated betrayal.
	ReciprocityFloor float64 `json:"reciprocity_floor"`
	// EmotionDecay is the per-round pull of emotional state toward the
	// style baseline after a cooperative outcome.
	EmotionDecay float64 `json:"emotion_decay"`
	// EmotionScaleBase / EmotionScaleSpan control how emotional state
	// widens or narrows a decision's distance from the neutral 0.5:
	// factor = base + state/100 * span.
	EmotionScaleBase float64 `json:"emotion_scale_base"`
	EmotionScaleSpan float64 `json:"emotion_scale_span"`
	// MoodThresholdSlope raises an agent's acceptance threshold as its
	// emotional state drops below neutral (bruised agents get pickier).
	MoodThresholdSlope float64 `json:"mood_threshold_slope"`
}

// DefaultTunables match the behavior of the reference simulation.
func DefaultTunables() Tunables {
	return Tunables{
		LearningRate:       0.01,
		ReciprocityFloor:   0.1,
		EmotionDecay:       0.2,
		EmotionScaleBase:   0.5,
		EmotionScaleSpan:   1.0,
		MoodThresholdSlope: 0.2,
	}
}
