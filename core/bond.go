package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/river2spring/monad-agent-dating-app/crypto"
)

// BondState is the lifecycle position of a pairwise bond.
type BondState string

const (
	BondProposed  BondState = "proposed"
	BondFunded    BondState = "funded"
	BondCommitted BondState = "committed"
	BondRevealed  BondState = "revealed"
	BondSettled   BondState = "settled"
	BondTimedOut  BondState = "timed_out"
)

// Terminal reports whether the state admits no further transitions.
func (s BondState) Terminal() bool { return s == BondSettled || s == BondTimedOut }

// Reveal is one agent's opened commitment.
type Reveal struct {
	Move Move   `json:"move"`
	Salt string `json:"salt"`
}

// RoundResult is the archived outcome of one settled round.
type RoundResult struct {
	Round     int       `json:"round"`
	Move1     Move      `json:"move1"`
	Move2     Move      `json:"move2"`
	Stake1    float64   `json:"stake1"`
	Stake2    float64   `json:"stake2"`
	Payout1   float64   `json:"payout1"`
	Payout2   float64   `json:"payout2"`
	SettledAt time.Time `json:"settled_at"`
}

// Bond is one active or terminated pairing playing the iterated trust game.
// All state transitions happen under the bond's own lock, so exactly one of
// two concurrent "both committed" or "both revealed" submissions performs
// the transition.
type Bond struct {
	ID        string    `json:"id"`
	Agent1ID  string    `json:"agent1_id"`
	Agent2ID  string    `json:"agent2_id"`
	Stake1    float64   `json:"stake1"`
	Stake2    float64   `json:"stake2"`
	RoundIdx  int       `json:"round_index"`
	MaxRounds int       `json:"max_rounds"`
	State     BondState `json:"state"`

	// Current round's commit-reveal material.
	Commit1 string  `json:"commit1,omitempty"`
	Commit2 string  `json:"commit2,omitempty"`
	Reveal1 *Reveal `json:"reveal1,omitempty"`
	Reveal2 *Reveal `json:"reveal2,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	Deadline  time.Time `json:"deadline"`

	History []RoundResult `json:"history,omitempty"`

	mu sync.Mutex
}

// NewBond opens a Proposed bond with agent1's stake already attached.
// maxRounds is the natural lifespan sampled at creation (5-10).
func NewBond(agent1ID, agent2ID string, stake1 float64, maxRounds int, revealTimeout time.Duration) (*Bond, error) {
	if stake1 <= 0 {
		return nil, ErrInvalidStake
	}
	now := time.Now()
	return &Bond{
		ID:        uuid.New().String(),
		Agent1ID:  agent1ID,
		Agent2ID:  agent2ID,
		Stake1:    stake1,
		MaxRounds: maxRounds,
		State:     BondProposed,
		CreatedAt: now,
		Deadline:  now.Add(revealTimeout),
	}, nil
}

// Fund attaches agent2's stake and promotes the bond to Funded. Only valid
// once, from agent2, while Proposed, with a strictly positive stake.
func (b *Bond) Fund(agentID string, stake float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if agentID != b.Agent2ID {
		return ErrNotParticipant
	}
	if b.State != BondProposed {
		return ErrWrongState
	}
	if stake <= 0 || b.Stake2 != 0 {
		return ErrInvalidStake
	}
	b.Stake2 = stake
	b.State = BondFunded
	return nil
}

// Commit records one agent's hashed move commitment. Returns true when this
// submission completed the pair and transitioned the bond to Committed. A
// second commitment from the same agent is rejected without mutating state.
func (b *Bond) Commit(agentID, hash string) (transitioned bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.State != BondFunded {
		return false, ErrWrongState
	}
	if time.Now().After(b.Deadline) {
		return false, ErrStaleBond
	}

	switch agentID {
	case b.Agent1ID:
		if b.Commit1 != "" {
			return false, ErrDuplicateCommitment
		}
		b.Commit1 = hash
	case b.Agent2ID:
		if b.Commit2 != "" {
			return false, ErrDuplicateCommitment
		}
		b.Commit2 = hash
	default:
		return false, ErrNotParticipant
	}

	if b.Commit1 != "" && b.Commit2 != "" {
		b.State = BondCommitted
		return true, nil
	}
	return false, nil
}

// SubmitReveal opens one agent's commitment. The hash is recomputed over
// {move, salt}; a mismatch rejects the reveal and leaves it unset. Returns
// true when both reveals validated and the bond moved to Revealed.
func (b *Bond) SubmitReveal(agentID string, move Move, salt string) (transitioned bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.State != BondCommitted {
		return false, ErrWrongState
	}
	if time.Now().After(b.Deadline) {
		return false, ErrStaleBond
	}

	var commit string
	var slot **Reveal
	switch agentID {
	case b.Agent1ID:
		commit, slot = b.Commit1, &b.Reveal1
	case b.Agent2ID:
		commit, slot = b.Commit2, &b.Reveal2
	default:
		return false, ErrNotParticipant
	}

	if *slot != nil {
		return false, ErrDuplicateReveal
	}
	if crypto.CommitmentHash(move.Cooperates(), salt) != commit {
		return false, ErrRevealMismatch
	}
	*slot = &Reveal{Move: move, Salt: salt}

	if b.Reveal1 != nil && b.Reveal2 != nil {
		b.State = BondRevealed
		return true, nil
	}
	return false, nil
}

// Expired reports whether the bond is stale: still waiting on commits or
// reveals past its deadline.
func (b *Bond) Expired(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return (b.State == BondFunded || b.State == BondCommitted) && now.After(b.Deadline)
}

// resetForNextRound re-arms the bond for another round after a settlement
// that continues. Caller holds b.mu. The deadline restarts so duration D
// bounds each round's commit/reveal window.
func (b *Bond) resetForNextRound(revealTimeout time.Duration) {
	b.Commit1, b.Commit2 = "", ""
	b.Reveal1, b.Reveal2 = nil, nil
	now := time.Now()
	b.CreatedAt = now
	b.Deadline = now.Add(revealTimeout)
	b.State = BondFunded
}

// BondView is a lock-free copy of a bond for observers and storage.
type BondView struct {
	ID        string        `json:"id"`
	Agent1ID  string        `json:"agent1_id"`
	Agent2ID  string        `json:"agent2_id"`
	Stake1    float64       `json:"stake1"`
	Stake2    float64       `json:"stake2"`
	RoundIdx  int           `json:"round_index"`
	MaxRounds int           `json:"max_rounds"`
	State     BondState     `json:"state"`
	Commit1   string        `json:"commit1,omitempty"`
	Commit2   string        `json:"commit2,omitempty"`
	Reveal1   *Reveal       `json:"reveal1,omitempty"`
	Reveal2   *Reveal       `json:"reveal2,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Deadline  time.Time     `json:"deadline"`
	History   []RoundResult `json:"history,omitempty"`
}

// Snapshot returns a full copy for storage and the engine. Observer-facing
// paths must strip mid-round reveal material first (see Redacted) so no
// counterparty can read the other side's move off a dashboard feed.
func (b *Bond) Snapshot() BondView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Bond) snapshotLocked() BondView {
	v := BondView{
		ID:        b.ID,
		Agent1ID:  b.Agent1ID,
		Agent2ID:  b.Agent2ID,
		Stake1:    b.Stake1,
		Stake2:    b.Stake2,
		RoundIdx:  b.RoundIdx,
		MaxRounds: b.MaxRounds,
		State:     b.State,
		Commit1:   b.Commit1,
		Commit2:   b.Commit2,

		CreatedAt: b.CreatedAt,
		Deadline:  b.Deadline,
	}
	if b.Reveal1 != nil {
		r := *b.Reveal1
		v.Reveal1 = &r
	}
	if b.Reveal2 != nil {
		r := *b.Reveal2
		v.Reveal2 = &r
	}
	v.History = append(v.History, b.History...)
	return v
}

// Redacted strips commit salts and mid-round reveal moves from the view,
// leaving only presence. Settled history stays: moves are public once a
// round settles.
func (v BondView) Redacted() BondView {
	if v.Reveal1 != nil {
		v.Reveal1 = &Reveal{}
	}
	if v.Reveal2 != nil {
		v.Reveal2 = &Reveal{}
	}
	return v
}

// Restore rebuilds a live bond from a persisted view.
func (v BondView) Restore() *Bond {
	b := &Bond{
		ID:        v.ID,
		Agent1ID:  v.Agent1ID,
		Agent2ID:  v.Agent2ID,
		Stake1:    v.Stake1,
		Stake2:    v.Stake2,
		RoundIdx:  v.RoundIdx,
		MaxRounds: v.MaxRounds,
		State:     v.State,
		Commit1:   v.Commit1,
		Commit2:   v.Commit2,
		CreatedAt: v.CreatedAt,
		Deadline:  v.Deadline,
	}
	if v.Reveal1 != nil {
		r := *v.Reveal1
		b.Reveal1 = &r
	}
	if v.Reveal2 != nil {
		r := *v.Reveal2
		b.Reveal2 = &r
	}
	b.History = append(b.History, v.History...)
	return b
}
