package core

import (
	"fmt"
	"math/rand"
)

// Decision engine: turns an agent's psychology plus its memory of a partner
// into a cooperate/defect move. Given an explicit rand source the same
// inputs reproduce the same move; production callers pass a fresh source.

// styleModifier is the per-style contribution to the cooperation
// probability. Each style's formula is a pure, independently testable unit.
// Disorganized is handled by the caller since it overrides the whole
// formula rather than contributing a term.
func styleModifier(style AttachmentStyle, rec *TrustRecord) float64 {
	switch style {
	case StyleSecure:
		return 0.2
	case StyleAnxious:
		mod := 0.0
		if rec == nil || rec.RoundsPlayed < 3 {
			mod += 0.3 // eager to please early on
		}
		if rec != nil {
			mod -= 0.15 * float64(rec.TimesBetrayed) // accumulated betrayal shock
		}
		return mod
	case StyleAvoidant:
		return -0.3
	}
	return 0
}

// CooperateProbability computes the probability in [0,1] that the agent
// cooperates with the given partner this round, plus a short human-readable
// reason for the dominant influence.
func (a *Agent) CooperateProbability(partnerID string, rng *rand.Rand, tun Tunables) (float64, string) {
	// Disorganized agents are chaos: a uniform draw replaces the whole
	// deterministic formula on every call.
	if a.Style == StyleDisorganized {
		return rng.Float64(), "unpredictable emotional flux"
	}

	rec := a.Record(partnerID)
	p := 0.5
	reason := "base curiosity"

	p += styleModifier(a.Style, rec)
	switch a.Style {
	case StyleSecure:
		reason = "securely building connection"
	case StyleAnxious:
		if rec != nil && rec.TimesBetrayed > 0 {
			reason = "hurting from past betrayal"
		} else {
			reason = "eager to please"
		}
	case StyleAvoidant:
		reason = "keeping emotional distance"
	}

	// Tit-for-tat: strong reciprocators snap toward the partner's previous
	// move, pulled harder the higher their reciprocity.
	if rec != nil && rec.RoundsPlayed > 0 && a.Ethics.Reciprocity > 0.5 {
		target := 0.0
		if rec.LastPartnerMove.Cooperates() {
			target = 1.0
			reason = "reciprocating previous kindness"
		} else {
			reason = "retaliating against defection"
		}
		pull := (a.Ethics.Reciprocity - 0.5) // up to 0.5 of the gap
		p += (target - p) * pull
	}

	if a.HasGoal(GoalProfit) {
		p -= 0.10
	}
	if a.HasGoal(GoalStability) {
		p += 0.15
	}

	// Emotional state widens or narrows the distance from neutral 0.5.
	scale := tun.EmotionScaleBase + a.EmotionalState/100*tun.EmotionScaleSpan
	p = 0.5 + (p-0.5)*scale

	return clamp(p, 0, 1), reason
}

// ChooseMove Bernoulli-samples a move at the agent's cooperation
// probability for this partner and records the decision reason.
func (a *Agent) ChooseMove(partnerID string, rng *rand.Rand, tun Tunables) Move {
	a.EnsureRecord(partnerID, rng)
	p, reason := a.CooperateProbability(partnerID, rng, tun)

	move := MoveDefect
	if rng.Float64() < p {
		move = MoveCooperate
	}

	a.mu.Lock()
	a.LastReason = fmt.Sprintf("%s (p=%.2f)", reason, p)
	a.mu.Unlock()
	return move
}
