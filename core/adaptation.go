package core

// Adaptation: the post-settlement feedback loop. After every settled round
// both agents run ApplyOutcome, which updates the partner's trust record,
// emotional state, reputation, balance and the derived strategy parameters
// read by the decision engine and matcher on subsequent calls.

// trustDelta is the contract for trust movement after one outcome.
// Mutual cooperation +5; betrayal -15 (doubled for anxious agents, halved
// for avoidant ones); mutual defection -2; exploiting a cooperator costs
// -5 in guilt.
func trustDelta(style AttachmentStyle, own, partner Move) float64 {
	switch {
	case own.Cooperates() && partner.Cooperates():
		return 5
	case !own.Cooperates() && !partner.Cooperates():
		return -2
	case own.Cooperates() && !partner.Cooperates():
		delta := -15.0
		switch style {
		case StyleAnxious:
			delta *= 2
		case StyleAvoidant:
			delta *= 0.5
		}
		return delta
	default:
		return -5
	}
}

func bondStrengthDelta(own, partner Move) float64 {
	switch {
	case own.Cooperates() && partner.Cooperates():
		return 8
	case !own.Cooperates() && !partner.Cooperates():
		return -3
	default:
		return -10
	}
}

// emotionBaseline is the resting point emotional state decays toward.
func emotionBaseline(style AttachmentStyle) float64 {
	switch style {
	case StyleSecure:
		return 60
	case StyleAnxious:
		return 45
	default:
		return 50
	}
}

// betrayalEmotionHit is the style extremum pull on betrayal.
func betrayalEmotionHit(style AttachmentStyle) float64 {
	if style == StyleAnxious {
		return 20
	}
	return 10
}

// ApplyOutcome is the single mutation entry point on an agent's profile,
// invoked once per settled round. payout is the settlement amount credited
// for this round, stake the amount the agent escrowed for it.
func (a *Agent) ApplyOutcome(partnerID string, own, partner Move, payout, stake float64, tun Tunables) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, ok := a.Relationships[partnerID]
	if !ok {
		rec = &TrustRecord{PartnerID: partnerID, Trust: initialTrust(a.Style, nil)}
		a.Relationships[partnerID] = rec
	}

	profit := payout - stake

	rec.RoundsPlayed++
	rec.TotalEarnings += profit
	rec.LastOwnMove = own
	rec.LastPartnerMove = partner
	if partner.Cooperates() {
		rec.TimesCooperated++
	} else {
		rec.TimesDefected++
	}
	betrayed := own.Cooperates() && !partner.Cooperates()
	exploited := !own.Cooperates() && partner.Cooperates()
	if betrayed {
		rec.TimesBetrayed++
	}
	if exploited {
		rec.TimesExploited++
	}

	rec.Trust = clamp(rec.Trust+trustDelta(a.Style, own, partner), 0, 100)
	rec.BondStrength = clamp(rec.BondStrength+bondStrengthDelta(own, partner), 0, 100)

	// Emotional state: profit nudges, betrayal pulls toward the style
	// extremum, cooperative outcomes decay back toward baseline.
	if profit > 0 {
		a.EmotionalState += 5
	} else if profit < 0 {
		a.EmotionalState -= 5
	}
	if betrayed {
		a.EmotionalState -= betrayalEmotionHit(a.Style)
	} else if partner.Cooperates() {
		a.EmotionalState += (emotionBaseline(a.Style) - a.EmotionalState) * tun.EmotionDecay
	}
	a.EmotionalState = clamp(a.EmotionalState, 0, 100)

	// Reputation tracks the agent's own conduct.
	if own.Cooperates() {
		a.Reputation += 0.5
	} else {
		a.Reputation -= 0.3
	}
	a.Reputation = clamp(a.Reputation, 0, 100)

	a.adaptStrategy(rec, partner, profit, tun)
}

// adaptStrategy recomputes the derived parameters that feed back into the
// decision engine and matcher. Caller holds a.mu.
func (a *Agent) adaptStrategy(rec *TrustRecord, partner Move, profit float64, tun Tunables) {
	lr := tun.LearningRate * a.Skill(SkillAdaptability)

	if profit > 0 {
		a.RiskTolerance += lr
	} else {
		a.RiskTolerance -= lr
	}
	a.RiskTolerance = clamp(a.RiskTolerance, 0.1, 0.9)

	if !partner.Cooperates() {
		// Repeated betrayals from the same partner drag reciprocity and
		// fairness toward the self-preservation floor.
		drop := lr * 2 * float64(rec.TimesBetrayed)
		a.Ethics.Reciprocity = clamp(a.Ethics.Reciprocity-drop, tun.ReciprocityFloor, 0.9)
		a.Ethics.Fairness = clamp(a.Ethics.Fairness-lr*2, tun.ReciprocityFloor, 0.9)
	} else if rec.LastOwnMove.Cooperates() {
		a.Ethics.Reciprocity = clamp(a.Ethics.Reciprocity+lr, tun.ReciprocityFloor, 0.9)
		a.Ethics.Fairness = clamp(a.Ethics.Fairness+lr, tun.ReciprocityFloor, 0.9)
	}
}
