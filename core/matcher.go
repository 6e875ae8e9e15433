package core

import "sort"

// Compatibility matcher: scores and ranks candidate partners for an agent.
// Fully deterministic so repeated calls over identical population state
// produce identical rankings.

// styleCompat is the fixed 4x4 attachment-style compatibility table,
// indexed [self][other].
var styleCompat = map[AttachmentStyle]map[AttachmentStyle]float64{
	StyleSecure: {
		StyleSecure: 20, StyleAnxious: 10, StyleAvoidant: 5, StyleDisorganized: 0,
	},
	StyleAnxious: {
		StyleSecure: 15, StyleAnxious: -10, StyleAvoidant: -20, StyleDisorganized: -5,
	},
	StyleAvoidant: {
		StyleSecure: 5, StyleAnxious: -15, StyleAvoidant: 0, StyleDisorganized: -10,
	},
	StyleDisorganized: {
		StyleSecure: 0, StyleAnxious: -5, StyleAvoidant: -10, StyleDisorganized: -15,
	},
}

// CompatibilityScore rates how attractive b is as a partner for a, in
// [0,100]: shared goals, skill complementarity, the style table, 30% of any
// accumulated trust and 10% of b's reputation, over a neutral 50 base.
func CompatibilityScore(a, b *Agent) float64 {
	score := 50.0

	for _, g := range a.Goals {
		if b.HasGoal(g) {
			score += 10
		}
	}

	score += skillComplementarity(a, b)
	score += styleCompat[a.Style][b.Style]

	if rec := a.Record(b.ID); rec != nil {
		score += rec.Trust * 0.3
	}
	score += b.Reputation * 0.1

	return clamp(score, 0, 100)
}

// skillComplementarity rewards pairs whose skills cover many dimensions
// without overlapping: per dimension, coverage is the stronger of the two
// and overlap the weaker. Range is about [-10, +15].
func skillComplementarity(a, b *Agent) float64 {
	dims := make(map[string]bool)
	for name := range a.Skills {
		dims[name] = true
	}
	for name := range b.Skills {
		dims[name] = true
	}
	if len(dims) == 0 {
		return 0
	}

	var coverage, overlap float64
	for name := range dims {
		av, bv := a.Skill(name), b.Skill(name)
		if av > bv {
			coverage += av
			overlap += bv
		} else {
			coverage += bv
			overlap += av
		}
	}
	n := float64(len(dims))
	return (coverage/n-overlap/n)*10 + coverage/n*5
}

// AcceptanceThreshold is the minimum compatibility score the agent demands
// before bonding. Avoidant agents hold the highest bar; a low emotional
// state raises everyone's standards.
func AcceptanceThreshold(a *Agent, tun Tunables) float64 {
	base := 50.0
	switch a.Style {
	case StyleAnxious:
		base = 30
	case StyleAvoidant:
		base = 70
	case StyleDisorganized:
		base = 40
	}
	base += (50 - a.EmotionalState) * tun.MoodThresholdSlope
	return base
}

// Candidate is one ranked match option.
type Candidate struct {
	Agent *Agent  `json:"-"`
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RankCandidates returns every member of the population that clears the
// agent's acceptance threshold, best first, ties broken by lower agent id.
// An empty result means no match this round, not an error.
func RankCandidates(a *Agent, population []*Agent, exclude map[string]bool, tun Tunables) []Candidate {
	threshold := AcceptanceThreshold(a, tun)

	var out []Candidate
	for _, b := range population {
		if b.ID == a.ID || exclude[b.ID] {
			continue
		}
		score := CompatibilityScore(a, b)
		if score >= threshold {
			out = append(out, Candidate{Agent: b, ID: b.ID, Score: score})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
