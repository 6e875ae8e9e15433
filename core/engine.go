package core

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/river2spring/monad-agent-dating-app/crypto"
)

// ToxicTrustFloor is the trust level below which a bond breaks up instead
// of continuing to the next round.
const ToxicTrustFloor = 20.0

// Bond lifespans are sampled uniformly from [MinBondRounds, MaxBondRounds]
// at creation.
const (
	MinBondRounds = 5
	MaxBondRounds = 10
)

// Event subjects published by the engine.
const (
	SubjectBondProposed    = "bond.proposed"
	SubjectBondFunded      = "bond.funded"
	SubjectBondCommitted   = "bond.committed"
	SubjectBondRevealed    = "bond.revealed"
	SubjectBondSettled     = "bond.settled"
	SubjectBondTimedOut    = "bond.timed_out"
	SubjectAgentSuspicious = "agent.suspicious"
	SubjectLedgerRetry     = "ledger.retry"
)

// EventSink receives engine events. Implementations must not block; the
// engine calls it inline on the settlement path.
type EventSink func(subject string, payload interface{})

// Store is the persistence collaborator. ApplySettlement must write the
// bond and both agents in a single transaction so a settlement is durably
// all-or-nothing across restarts.
type Store interface {
	SaveAgent(v AgentView) error
	SaveBond(v BondView) error
	ApplySettlement(bond BondView, agent1, agent2 AgentView) error
}

// SettlementEvent is the payload published on bond.settled and fed to the
// narrator.
type SettlementEvent struct {
	BondID   string      `json:"bond_id"`
	Agent1ID string      `json:"agent1_id"`
	Agent2ID string      `json:"agent2_id"`
	Result   RoundResult `json:"result"`
	Final    bool        `json:"final"`
}

// TimeoutEvent is the payload published on bond.timed_out.
type TimeoutEvent struct {
	BondID     string  `json:"bond_id"`
	RevealedBy string  `json:"revealed_by,omitempty"`
	Refund1    float64 `json:"refund1"`
	Refund2    float64 `json:"refund2"`
}

// SuspiciousEvent flags an agent whose reveal did not match its commitment.
type SuspiciousEvent struct {
	BondID  string `json:"bond_id"`
	AgentID string `json:"agent_id"`
	Reason  string `json:"reason"`
}

// EngineConfig carries the engine's operational knobs.
type EngineConfig struct {
	// RevealTimeout is duration D: how long a round may wait for both
	// commits and reveals before the sweep promotes the bond to TimedOut.
	RevealTimeout time.Duration
	// Seed seeds the engine's rand source; 0 means time-based.
	Seed     int64
	Tunables Tunables
}

// Engine is the explicitly owned simulation context: the agent population,
// the active bonds, and every entry point that advances them. Created at
// simulation start, advanced per round, torn down at simulation end.
type Engine struct {
	cfg    EngineConfig
	ledger Ledger
	store  Store
	sink   EventSink

	mu      sync.RWMutex
	agents  map[string]*Agent
	bonds   map[string]*Bond
	busy    map[string]string // agent id -> bond id currently holding it
	archive []BondView

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewEngine builds a simulation context. ledger is required; store and sink
// may be nil (no persistence / no observers).
func NewEngine(cfg EngineConfig, ledger Ledger, store Store, sink EventSink) *Engine {
	if cfg.RevealTimeout <= 0 {
		cfg.RevealTimeout = 2 * time.Minute
	}
	if cfg.Tunables == (Tunables{}) {
		cfg.Tunables = DefaultTunables()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		cfg:    cfg,
		ledger: ledger,
		store:  store,
		sink:   sink,
		agents: make(map[string]*Agent),
		bonds:  make(map[string]*Bond),
		busy:   make(map[string]string),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// AddAgent introduces an agent into the population and persists it.
func (e *Engine) AddAgent(a *Agent) error {
	e.mu.Lock()
	if _, exists := e.agents[a.ID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("agent %s already registered", a.ID)
	}
	e.agents[a.ID] = a
	e.mu.Unlock()
	return e.persistAgent(a)
}

// RestoreAgent reinstates a persisted agent without re-persisting it.
func (e *Engine) RestoreAgent(a *Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[a.ID] = a
}

// RestoreBond reinstates a persisted bond. Non-terminal bonds re-occupy
// their participants; terminal ones go straight to the archive.
func (e *Engine) RestoreBond(b *Bond) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b.State.Terminal() {
		e.archive = append(e.archive, b.Snapshot())
		return
	}
	e.bonds[b.ID] = b
	e.busy[b.Agent1ID] = b.ID
	e.busy[b.Agent2ID] = b.ID
}

// Agent returns the live agent, or an error if unknown.
func (e *Engine) Agent(id string) (*Agent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return a, nil
}

func (e *Engine) bond(id string) (*Bond, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.bonds[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBondNotFound, id)
	}
	return b, nil
}

// Rand runs fn with the engine's seeded rand source. Used by the driver so
// runs replay exactly under a fixed seed.
func (e *Engine) Rand(fn func(rng *rand.Rand)) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	fn(e.rng)
}

func (e *Engine) publish(subject string, payload interface{}) {
	if e.sink != nil {
		e.sink(subject, payload)
	}
}

func (e *Engine) persistAgent(a *Agent) error {
	if e.store == nil {
		return nil
	}
	return e.store.SaveAgent(a.Snapshot())
}

func (e *Engine) persistBond(b *Bond) error {
	if e.store == nil {
		return nil
	}
	return e.store.SaveBond(b.Snapshot())
}

// ProposeBond opens a bond between two free agents, escrowing agent1's
// stake. The bond's natural lifespan is sampled from [5,10] rounds.
func (e *Engine) ProposeBond(agent1ID, agent2ID string, stake1 float64) (*Bond, error) {
	a1, err := e.Agent(agent1ID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Agent(agent2ID); err != nil {
		return nil, err
	}

	// Reserve both agents atomically so concurrent matchers cannot pair
	// either of them twice.
	e.mu.Lock()
	if _, taken := e.busy[agent1ID]; taken {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAgentBusy, agent1ID)
	}
	if _, taken := e.busy[agent2ID]; taken {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAgentBusy, agent2ID)
	}
	e.busy[agent1ID] = ""
	e.busy[agent2ID] = ""
	e.mu.Unlock()

	unreserve := func() {
		e.mu.Lock()
		delete(e.busy, agent1ID)
		delete(e.busy, agent2ID)
		e.mu.Unlock()
	}

	if !a1.Escrow(stake1) {
		unreserve()
		if stake1 <= 0 {
			return nil, ErrInvalidStake
		}
		return nil, fmt.Errorf("%w: agent %s stake %.4f", ErrInsufficientBalance, agent1ID, stake1)
	}

	var maxRounds int
	e.Rand(func(rng *rand.Rand) {
		maxRounds = MinBondRounds + rng.Intn(MaxBondRounds-MinBondRounds+1)
	})

	b, err := NewBond(agent1ID, agent2ID, stake1, maxRounds, e.cfg.RevealTimeout)
	if err != nil {
		a1.Credit(stake1)
		unreserve()
		return nil, err
	}

	e.mu.Lock()
	e.bonds[b.ID] = b
	e.busy[agent1ID] = b.ID
	e.busy[agent2ID] = b.ID
	e.mu.Unlock()

	if err := e.persistBond(b); err != nil {
		log.Printf("persist bond %s: %v", b.ID, err)
	}
	if err := e.persistAgent(a1); err != nil {
		log.Printf("persist agent %s: %v", agent1ID, err)
	}
	e.publish(SubjectBondProposed, b.Snapshot().Redacted())
	return b, nil
}

// FundBond escrows agent2's stake and moves the bond to Funded.
func (e *Engine) FundBond(bondID, agentID string, stake float64) error {
	b, err := e.bond(bondID)
	if err != nil {
		return err
	}
	a2, err := e.Agent(agentID)
	if err != nil {
		return err
	}

	if stake > 0 && !a2.Escrow(stake) {
		return fmt.Errorf("%w: agent %s stake %.4f", ErrInsufficientBalance, agentID, stake)
	}
	if err := b.Fund(agentID, stake); err != nil {
		if stake > 0 {
			a2.Credit(stake)
		}
		return err
	}

	if err := e.persistBond(b); err != nil {
		log.Printf("persist bond %s: %v", b.ID, err)
	}
	if err := e.persistAgent(a2); err != nil {
		log.Printf("persist agent %s: %v", agentID, err)
	}
	e.publish(SubjectBondFunded, b.Snapshot().Redacted())
	return nil
}

// SubmitCommitment records one agent's hashed move. First commitments are
// accepted and held; the one that completes the pair performs the
// Funded -> Committed transition. Stale bonds are routed to the timeout
// path instead of normal progression.
func (e *Engine) SubmitCommitment(bondID, agentID, hash string) error {
	b, err := e.bond(bondID)
	if err != nil {
		return err
	}

	transitioned, err := b.Commit(agentID, hash)
	if errors.Is(err, ErrStaleBond) {
		e.expireBond(b)
		return err
	}
	if err != nil {
		return err
	}

	if err := e.persistBond(b); err != nil {
		log.Printf("persist bond %s: %v", b.ID, err)
	}
	if transitioned {
		e.publish(SubjectBondCommitted, b.Snapshot().Redacted())
	}
	return nil
}

// SubmitReveal opens one agent's commitment. A reveal that fails to re-hash
// to its commitment is rejected, the bond stays Committed, and the agent is
// flagged to observers. The reveal that completes the pair triggers
// settlement synchronously.
func (e *Engine) SubmitReveal(bondID, agentID string, move Move, salt string) error {
	b, err := e.bond(bondID)
	if err != nil {
		return err
	}

	transitioned, err := b.SubmitReveal(agentID, move, salt)
	switch {
	case errors.Is(err, ErrStaleBond):
		e.expireBond(b)
		return err
	case errors.Is(err, ErrRevealMismatch):
		e.publish(SubjectAgentSuspicious, SuspiciousEvent{
			BondID:  bondID,
			AgentID: agentID,
			Reason:  "reveal hash does not match commitment",
		})
		return err
	case err != nil:
		return err
	}

	if err := e.persistBond(b); err != nil {
		log.Printf("persist bond %s: %v", b.ID, err)
	}
	if !transitioned {
		return nil
	}
	e.publish(SubjectBondRevealed, b.Snapshot().Redacted())
	return e.settleBond(b)
}

// settleBond performs the Revealed -> Settled transition exactly once: the
// state check under the bond lock makes a second concurrent or repeated
// trigger a no-op. On ledger failure the bond is held in Revealed for
// retry; payouts are applied only after the ledger acknowledges.
func (e *Engine) settleBond(b *Bond) error {
	a1, err1 := e.Agent(b.Agent1ID)
	a2, err2 := e.Agent(b.Agent2ID)
	if err1 != nil || err2 != nil {
		// Participants missing from the population is a programming
		// defect; abort this bond loudly rather than guess.
		log.Printf("aborting bond %s: missing participants (%v, %v)", b.ID, err1, err2)
		b.mu.Lock()
		b.State = BondTimedOut
		b.mu.Unlock()
		e.releaseBond(b)
		return ErrAgentNotFound
	}

	b.mu.Lock()
	if b.State != BondRevealed {
		b.mu.Unlock()
		return nil
	}

	move1, move2 := b.Reveal1.Move, b.Reveal2.Move
	payout1, payout2 := Payouts(move1.Cooperates(), move2.Cooperates(), b.Stake1, b.Stake2)

	if err := e.ledger.Settle(b.ID, payout1, payout2); err != nil {
		b.mu.Unlock()
		e.publish(SubjectLedgerRetry, map[string]string{"bond_id": b.ID, "error": err.Error()})
		return fmt.Errorf("%w: bond %s: %v", ErrLedgerFailure, b.ID, err)
	}

	a1.Credit(payout1)
	a2.Credit(payout2)
	a1.ApplyOutcome(b.Agent2ID, move1, move2, payout1, b.Stake1, e.cfg.Tunables)
	a2.ApplyOutcome(b.Agent1ID, move2, move1, payout2, b.Stake2, e.cfg.Tunables)

	b.RoundIdx++
	result := RoundResult{
		Round:     b.RoundIdx,
		Move1:     move1,
		Move2:     move2,
		Stake1:    b.Stake1,
		Stake2:    b.Stake2,
		Payout1:   payout1,
		Payout2:   payout2,
		SettledAt: time.Now(),
	}
	b.History = append(b.History, result)

	continues := b.RoundIdx < b.MaxRounds && e.pairTrustHealthy(a1, a2)
	if continues {
		// Both agents must re-fund the next round up front.
		if !a1.Escrow(b.Stake1) {
			continues = false
		} else if !a2.Escrow(b.Stake2) {
			a1.Credit(b.Stake1)
			continues = false
		}
	}
	if continues {
		b.resetForNextRound(e.cfg.RevealTimeout)
	} else {
		b.State = BondSettled
	}
	view := b.snapshotLocked()
	b.mu.Unlock()

	if e.store != nil {
		if err := e.store.ApplySettlement(view, a1.Snapshot(), a2.Snapshot()); err != nil {
			log.Printf("persist settlement for bond %s: %v", b.ID, err)
		}
	}
	if view.State.Terminal() {
		e.releaseBond(b)
	}
	e.publish(SubjectBondSettled, SettlementEvent{
		BondID:   b.ID,
		Agent1ID: b.Agent1ID,
		Agent2ID: b.Agent2ID,
		Result:   result,
		Final:    view.State.Terminal(),
	})
	return nil
}

// pairTrustHealthy reports whether both directions of trust sit at or above
// the toxic floor.
func (e *Engine) pairTrustHealthy(a1, a2 *Agent) bool {
	if rec := a1.Record(a2.ID); rec != nil && rec.Trust < ToxicTrustFloor {
		return false
	}
	if rec := a2.Record(a1.ID); rec != nil && rec.Trust < ToxicTrustFloor {
		return false
	}
	return true
}

// releaseBond retires a terminal bond: frees both participants and moves
// the bond from the active set to the archive.
func (e *Engine) releaseBond(b *Bond) {
	view := b.Snapshot()
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bonds, b.ID)
	if e.busy[b.Agent1ID] == b.ID {
		delete(e.busy, b.Agent1ID)
	}
	if e.busy[b.Agent2ID] == b.ID {
		delete(e.busy, b.Agent2ID)
	}
	e.archive = append(e.archive, view)
}

// expireBond resolves a stale bond. The sole revealer, if any, is credited
// the entire combined stake; with no reveals each agent gets its own stake
// back. Exactly one caller performs the transition.
func (e *Engine) expireBond(b *Bond) {
	b.mu.Lock()
	if b.State.Terminal() || b.State == BondRevealed {
		b.mu.Unlock()
		return
	}

	var refund1, refund2 float64
	var revealedBy string
	pot := b.Stake1 + b.Stake2
	switch {
	case b.Reveal1 != nil && b.Reveal2 == nil:
		refund1, revealedBy = pot, b.Agent1ID
	case b.Reveal2 != nil && b.Reveal1 == nil:
		refund2, revealedBy = pot, b.Agent2ID
	default:
		refund1, refund2 = b.Stake1, b.Stake2
	}
	b.State = BondTimedOut
	b.mu.Unlock()

	a1, err1 := e.Agent(b.Agent1ID)
	a2, err2 := e.Agent(b.Agent2ID)
	if err1 == nil && refund1 > 0 {
		a1.Credit(refund1)
	}
	if err2 == nil && refund2 > 0 {
		a2.Credit(refund2)
	}

	if e.store != nil && err1 == nil && err2 == nil {
		if err := e.store.ApplySettlement(b.Snapshot(), a1.Snapshot(), a2.Snapshot()); err != nil {
			log.Printf("persist timeout for bond %s: %v", b.ID, err)
		}
	}
	e.releaseBond(b)
	e.publish(SubjectBondTimedOut, TimeoutEvent{
		BondID:     b.ID,
		RevealedBy: revealedBy,
		Refund1:    refund1,
		Refund2:    refund2,
	})
}

// SweepTimeouts promotes every stale Funded/Committed bond to TimedOut.
// Runs on its own cadence, never on the submission path. Returns the number
// of bonds expired.
func (e *Engine) SweepTimeouts(now time.Time) int {
	e.mu.RLock()
	candidates := make([]*Bond, 0, len(e.bonds))
	for _, b := range e.bonds {
		candidates = append(candidates, b)
	}
	e.mu.RUnlock()

	stale := make([]*Bond, 0)
	for _, b := range candidates {
		if b.Expired(now) {
			stale = append(stale, b)
		}
	}

	for _, b := range stale {
		e.expireBond(b)
	}
	return len(stale)
}

// RetrySettlements re-runs the settle trigger for bonds held in Revealed by
// an unacknowledged ledger instruction. Safe to call on a backoff loop:
// settlement applies exactly once.
func (e *Engine) RetrySettlements() int {
	e.mu.RLock()
	active := make([]*Bond, 0, len(e.bonds))
	for _, b := range e.bonds {
		active = append(active, b)
	}
	e.mu.RUnlock()

	held := make([]*Bond, 0)
	for _, b := range active {
		b.mu.Lock()
		revealed := b.State == BondRevealed
		b.mu.Unlock()
		if revealed {
			held = append(held, b)
		}
	}

	retried := 0
	for _, b := range held {
		if err := e.settleBond(b); err != nil {
			log.Printf("settlement retry for bond %s: %v", b.ID, err)
			continue
		}
		retried++
	}
	return retried
}

// MatchRound is the per-round matching entry point: it pairs free agents by
// compatibility and opens a fully funded bond per pair. Agents mid-bond are
// excluded until their bond reaches a terminal state. Returns the newly
// created bonds; empty means no matches this round.
func (e *Engine) MatchRound() []BondView {
	e.mu.RLock()
	population := make([]*Agent, 0, len(e.agents))
	for _, a := range e.agents {
		population = append(population, a)
	}
	taken := make(map[string]bool, len(e.busy))
	for id := range e.busy {
		taken[id] = true
	}
	e.mu.RUnlock()

	sort.Slice(population, func(i, j int) bool { return population[i].ID < population[j].ID })

	var created []BondView
	for _, a := range population {
		if taken[a.ID] {
			continue
		}
		candidates := RankCandidates(a, population, taken, e.cfg.Tunables)
		for _, c := range candidates {
			stake1 := a.StakeFor(c.ID)
			stake2 := c.Agent.StakeFor(a.ID)
			if stake1 <= 0 || stake2 <= 0 {
				continue
			}

			b, err := e.ProposeBond(a.ID, c.ID, stake1)
			if err != nil {
				continue
			}
			if err := e.FundBond(b.ID, c.ID, stake2); err != nil {
				// Counterparty could not fund; tear the proposal down
				// and give agent1 its stake back.
				e.expireBond(b)
				continue
			}
			taken[a.ID] = true
			taken[c.ID] = true
			created = append(created, b.Snapshot())
			break
		}
	}
	return created
}

// RunRound advances the whole simulation one generation: match free agents,
// then drive every funded bond through a full commit-reveal-settle cycle
// using each agent's own decision engine.
func (e *Engine) RunRound() {
	e.MatchRound()

	e.mu.RLock()
	all := make([]*Bond, 0, len(e.bonds))
	for _, b := range e.bonds {
		all = append(all, b)
	}
	e.mu.RUnlock()

	active := make([]*Bond, 0, len(all))
	for _, b := range all {
		b.mu.Lock()
		funded := b.State == BondFunded
		b.mu.Unlock()
		if funded {
			active = append(active, b)
		}
	}

	// Order by participants, not bond id: ids are random uuids, and a fixed
	// seed must replay the same draw sequence.
	sort.Slice(active, func(i, j int) bool {
		if active[i].Agent1ID != active[j].Agent1ID {
			return active[i].Agent1ID < active[j].Agent1ID
		}
		return active[i].Agent2ID < active[j].Agent2ID
	})

	for _, b := range active {
		e.playBond(b)
	}
}

// playBond runs one round of a funded bond: both agents choose, commit and
// reveal through the same entry points external callers use.
func (e *Engine) playBond(b *Bond) {
	type side struct {
		agentID string
		move    Move
		salt    string
	}
	sides := make([]side, 0, 2)

	for _, agentID := range []string{b.Agent1ID, b.Agent2ID} {
		a, err := e.Agent(agentID)
		if err != nil {
			log.Printf("bond %s references unknown agent %s", b.ID, agentID)
			return
		}
		partnerID := b.Agent1ID
		if agentID == b.Agent1ID {
			partnerID = b.Agent2ID
		}

		var move Move
		e.Rand(func(rng *rand.Rand) {
			move = a.ChooseMove(partnerID, rng, e.cfg.Tunables)
		})
		salt, err := crypto.NewSalt()
		if err != nil {
			log.Printf("salt generation failed for bond %s: %v", b.ID, err)
			return
		}
		sides = append(sides, side{agentID: agentID, move: move, salt: salt})
	}

	for _, s := range sides {
		hash := crypto.CommitmentHash(s.move.Cooperates(), s.salt)
		if err := e.SubmitCommitment(b.ID, s.agentID, hash); err != nil {
			log.Printf("commit failed for bond %s agent %s: %v", b.ID, s.agentID, err)
			return
		}
	}
	for _, s := range sides {
		if err := e.SubmitReveal(b.ID, s.agentID, s.move, s.salt); err != nil && !errors.Is(err, ErrLedgerFailure) {
			log.Printf("reveal failed for bond %s agent %s: %v", b.ID, s.agentID, err)
			return
		}
	}
}

// AgentSnapshots returns the population state, sorted by id.
func (e *Engine) AgentSnapshots() []AgentView {
	e.mu.RLock()
	agents := make([]*Agent, 0, len(e.agents))
	for _, a := range e.agents {
		agents = append(agents, a)
	}
	e.mu.RUnlock()

	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	out := make([]AgentView, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Snapshot())
	}
	return out
}

// AgentSnapshot returns one agent's state.
func (e *Engine) AgentSnapshot(id string) (AgentView, error) {
	a, err := e.Agent(id)
	if err != nil {
		return AgentView{}, err
	}
	return a.Snapshot(), nil
}

// BondSnapshots returns active bonds with mid-round reveal material
// redacted, sorted by id.
func (e *Engine) BondSnapshots() []BondView {
	e.mu.RLock()
	bonds := make([]*Bond, 0, len(e.bonds))
	for _, b := range e.bonds {
		bonds = append(bonds, b)
	}
	e.mu.RUnlock()

	sort.Slice(bonds, func(i, j int) bool { return bonds[i].ID < bonds[j].ID })
	out := make([]BondView, 0, len(bonds))
	for _, b := range bonds {
		out = append(out, b.Snapshot().Redacted())
	}
	return out
}

// BondSnapshot returns one bond, redacted, searching active bonds first and
// then the archive.
func (e *Engine) BondSnapshot(id string) (BondView, error) {
	e.mu.RLock()
	b, ok := e.bonds[id]
	e.mu.RUnlock()
	if ok {
		return b.Snapshot().Redacted(), nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, v := range e.archive {
		if v.ID == id {
			return v.Redacted(), nil
		}
	}
	return BondView{}, fmt.Errorf("%w: %s", ErrBondNotFound, id)
}

// ArchivedBonds returns terminated bonds, oldest first.
func (e *Engine) ArchivedBonds() []BondView {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]BondView, 0, len(e.archive))
	for _, v := range e.archive {
		out = append(out, v.Redacted())
	}
	return out
}

// Stats summarizes the population for the observability consumer.
type Stats struct {
	Agents        int                `json:"agents"`
	ActiveBonds   int                `json:"active_bonds"`
	ArchivedBonds int                `json:"archived_bonds"`
	TotalRounds   int                `json:"total_rounds"`
	Balances      map[string]float64 `json:"balances"`
	Reputations   map[string]float64 `json:"reputations"`
}

// Snapshot of population-level statistics.
func (e *Engine) Statistics() Stats {
	views := e.AgentSnapshots()

	e.mu.RLock()
	s := Stats{
		Agents:        len(e.agents),
		ActiveBonds:   len(e.bonds),
		ArchivedBonds: len(e.archive),
		Balances:      make(map[string]float64, len(views)),
		Reputations:   make(map[string]float64, len(views)),
	}
	for _, v := range e.archive {
		s.TotalRounds += len(v.History)
	}
	live := make([]*Bond, 0, len(e.bonds))
	for _, b := range e.bonds {
		live = append(live, b)
	}
	e.mu.RUnlock()

	for _, b := range live {
		s.TotalRounds += len(b.Snapshot().History)
	}

	for _, v := range views {
		s.Balances[v.ID] = v.Balance
		s.Reputations[v.ID] = v.Reputation
	}
	return s
}
