package core

// Payout multipliers applied to each agent's own stake. These ratios are the
// settlement contract: a mirrored on-chain settlement must reproduce them
// bit-for-bit.
const (
	MutualCooperationMultiplier = 1.5
	MutualDefectionMultiplier   = 0.5
	DefectorMultiplier          = 2.5
	BetrayedMultiplier          = 0.0
)

// Payouts computes both agents' settlement amounts for one revealed round.
// Pure function: no side effects, no randomness. Each payout is a fixed
// multiple of that agent's own stake, so no agent can lose more than it
// staked.
func Payouts(agent1Cooperated, agent2Cooperated bool, stake1, stake2 float64) (payout1, payout2 float64) {
	switch {
	case agent1Cooperated && agent2Cooperated:
		return stake1 * MutualCooperationMultiplier, stake2 * MutualCooperationMultiplier
	case !agent1Cooperated && !agent2Cooperated:
		return stake1 * MutualDefectionMultiplier, stake2 * MutualDefectionMultiplier
	case !agent1Cooperated && agent2Cooperated:
		return stake1 * DefectorMultiplier, stake2 * BetrayedMultiplier
	default:
		return stake1 * BetrayedMultiplier, stake2 * DefectorMultiplier
	}
}
