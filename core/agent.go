package core

import (
	"math/rand"
	"sync"
)

// AttachmentStyle is an agent's fixed behavioral archetype. It modulates
// cooperation tendency, betrayal sensitivity and partner standards.
type AttachmentStyle string

const (
	StyleSecure       AttachmentStyle = "secure"
	StyleAnxious      AttachmentStyle = "anxious"
	StyleAvoidant     AttachmentStyle = "avoidant"
	StyleDisorganized AttachmentStyle = "disorganized"
)

// Goal is a long-run objective driving an agent's decisions.
type Goal string

const (
	GoalProfit      Goal = "profit"
	GoalExploration Goal = "exploration"
	GoalLearning    Goal = "learning"
	GoalStability   Goal = "stability"
)

// Well-known skill dimensions. Skills are an open map so populations can
// carry extra traits, but these are the ones the stock profiles use.
const (
	SkillNegotiation  = "negotiation"
	SkillPatience     = "patience"
	SkillAdaptability = "adaptability"
)

// Move is one side of a trust-game round.
type Move string

const (
	MoveCooperate Move = "cooperate"
	MoveDefect    Move = "defect"
)

// Cooperates reports whether the move is cooperation.
func (m Move) Cooperates() bool { return m == MoveCooperate }

// Ethics holds an agent's moral weighting parameters, all in [0,1].
type Ethics struct {
	Fairness    float64 `json:"fairness"`
	Reciprocity float64 `json:"reciprocity"`
}

// TrustRecord is an agent's permanent memory of one specific partner.
// Created on first interaction, never deleted.
type TrustRecord struct {
	PartnerID       string  `json:"partner_id"`
	Trust           float64 `json:"trust"` // 0-100
	RoundsPlayed    int     `json:"rounds_played"`
	LastOwnMove     Move    `json:"last_own_move,omitempty"`
	LastPartnerMove Move    `json:"last_partner_move,omitempty"`
	BondStrength    float64 `json:"bond_strength"` // 0-100
	TimesCooperated int     `json:"times_cooperated"`
	TimesDefected   int     `json:"times_defected"`
	TimesBetrayed   int     `json:"times_betrayed"`  // partner defected while agent cooperated
	TimesExploited  int     `json:"times_exploited"` // agent defected while partner cooperated
	TotalEarnings   float64 `json:"total_earnings"`
}

// Agent is an autonomous participant in the bonding economy. Static identity
// and style are immutable after creation; mutable state (balance, emotion,
// relationships, strategy parameters) changes only through ApplyOutcome and
// the engine's escrow/credit paths.
type Agent struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Style          AttachmentStyle         `json:"attachment_style"`
	Goals          []Goal                  `json:"goals"`
	Skills         map[string]float64      `json:"skills"`
	Ethics         Ethics                  `json:"ethics"`
	RiskTolerance  float64                 `json:"risk_tolerance"`
	EmotionalState float64                 `json:"emotional_state"` // 0-100
	Balance        float64                 `json:"balance"`
	Reputation     float64                 `json:"reputation"` // 0-100
	Relationships  map[string]*TrustRecord `json:"relationships"`
	LastReason     string                  `json:"last_decision_reason,omitempty"`

	mu sync.RWMutex
}

// NewAgent creates an agent with the given identity and a fresh relationship
// memory. Reputation starts at the neutral 50.
func NewAgent(id, name string, style AttachmentStyle, goals []Goal, skills map[string]float64, ethics Ethics, riskTolerance, balance float64) *Agent {
	if skills == nil {
		skills = make(map[string]float64)
	}
	return &Agent{
		ID:             id,
		Name:           name,
		Style:          style,
		Goals:          goals,
		Skills:         skills,
		Ethics:         ethics,
		RiskTolerance:  riskTolerance,
		EmotionalState: 50,
		Balance:        balance,
		Reputation:     50,
		Relationships:  make(map[string]*TrustRecord),
	}
}

// HasGoal reports whether the agent pursues the given goal.
func (a *Agent) HasGoal(g Goal) bool {
	for _, goal := range a.Goals {
		if goal == g {
			return true
		}
	}
	return false
}

// Skill returns the named skill level, zero if absent.
func (a *Agent) Skill(name string) float64 {
	return a.Skills[name]
}

// Record returns the trust record for a partner, or nil if the agents have
// never interacted.
func (a *Agent) Record(partnerID string) *TrustRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Relationships[partnerID]
}

// EnsureRecord returns the trust record for a partner, creating it with a
// style-dependent initial trust on first contact. Disorganized agents start
// a new relationship at a random point in [20,80].
func (a *Agent) EnsureRecord(partnerID string, rng *rand.Rand) *TrustRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rec, ok := a.Relationships[partnerID]; ok {
		return rec
	}
	rec := &TrustRecord{
		PartnerID: partnerID,
		Trust:     initialTrust(a.Style, rng),
	}
	a.Relationships[partnerID] = rec
	return rec
}

func initialTrust(style AttachmentStyle, rng *rand.Rand) float64 {
	switch style {
	case StyleSecure:
		return 70
	case StyleAnxious:
		return 50
	case StyleAvoidant:
		return 30
	case StyleDisorganized:
		if rng != nil {
			return 20 + rng.Float64()*60
		}
		return 50
	}
	return 50
}

// StakeFor sizes the agent's next stake toward a partner: 10% of balance,
// scaled up with accumulated trust and risk tolerance, never more than 30%
// of what the agent holds.
func (a *Agent) StakeFor(partnerID string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stake := a.Balance * 0.1
	if rec, ok := a.Relationships[partnerID]; ok {
		stake *= 0.5 + rec.Trust/100
	}
	stake *= 0.5 + a.RiskTolerance*0.5
	if cap := a.Balance * 0.3; stake > cap {
		stake = cap
	}
	return stake
}

// Escrow removes a stake from the agent's balance ahead of a round. Returns
// false without mutating if the balance cannot cover it.
func (a *Agent) Escrow(amount float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount <= 0 || amount > a.Balance {
		return false
	}
	a.Balance -= amount
	return true
}

// Credit returns funds to the agent (settlement payout or timeout refund).
func (a *Agent) Credit(amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Balance += amount
}

// AgentView is a lock-free copy of an agent for observers and storage.
type AgentView struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Style          AttachmentStyle        `json:"attachment_style"`
	Goals          []Goal                 `json:"goals"`
	Skills         map[string]float64     `json:"skills"`
	Ethics         Ethics                 `json:"ethics"`
	RiskTolerance  float64                `json:"risk_tolerance"`
	EmotionalState float64                `json:"emotional_state"`
	Balance        float64                `json:"balance"`
	Reputation     float64                `json:"reputation"`
	Relationships  map[string]TrustRecord `json:"relationships"`
	LastReason     string                 `json:"last_decision_reason,omitempty"`
}

// Snapshot deep-copies the agent's state for observers and persistence.
func (a *Agent) Snapshot() AgentView {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v := AgentView{
		ID:             a.ID,
		Name:           a.Name,
		Style:          a.Style,
		Goals:          append([]Goal(nil), a.Goals...),
		Skills:         make(map[string]float64, len(a.Skills)),
		Ethics:         a.Ethics,
		RiskTolerance:  a.RiskTolerance,
		EmotionalState: a.EmotionalState,
		Balance:        a.Balance,
		Reputation:     a.Reputation,
		Relationships:  make(map[string]TrustRecord, len(a.Relationships)),
		LastReason:     a.LastReason,
	}
	for name, level := range a.Skills {
		v.Skills[name] = level
	}
	for id, rec := range a.Relationships {
		v.Relationships[id] = *rec
	}
	return v
}

// Restore rebuilds a live agent from a persisted view.
func (v AgentView) Restore() *Agent {
	a := &Agent{
		ID:             v.ID,
		Name:           v.Name,
		Style:          v.Style,
		Goals:          append([]Goal(nil), v.Goals...),
		Skills:         make(map[string]float64, len(v.Skills)),
		Ethics:         v.Ethics,
		RiskTolerance:  v.RiskTolerance,
		EmotionalState: v.EmotionalState,
		Balance:        v.Balance,
		Reputation:     v.Reputation,
		Relationships:  make(map[string]*TrustRecord, len(v.Relationships)),
		LastReason:     v.LastReason,
	}
	for name, level := range v.Skills {
		a.Skills[name] = level
	}
	for id, rec := range v.Relationships {
		r := rec
		a.Relationships[id] = &r
	}
	return a
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
