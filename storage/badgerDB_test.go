package storage

import (
	"testing"
	"time"

	"github.com/river2spring/monad-agent-dating-app/core"
)

func openTestStorage(t *testing.T, simID string) *DBStorage {
	t.Helper()
	s, err := NewInMemoryStorage(simID)
	if err != nil {
		t.Fatalf("failed to open in-memory storage: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func sampleAgent(id string) core.AgentView {
	a := core.NewAgent(id, "Agent "+id, core.StyleSecure, []core.Goal{core.GoalStability},
		map[string]float64{core.SkillPatience: 0.6}, core.Ethics{Fairness: 0.7, Reciprocity: 0.8}, 0.5, 100)
	return a.Snapshot()
}

func sampleBond(t *testing.T) core.BondView {
	t.Helper()
	b, err := core.NewBond("a1", "a2", 10, 5, time.Minute)
	if err != nil {
		t.Fatalf("NewBond failed: %v", err)
	}
	return b.Snapshot()
}

func TestAgentRoundTrip(t *testing.T) {
	s := openTestStorage(t, "sim-agents")

	want := sampleAgent("a1")
	want.Relationships["a2"] = core.TrustRecord{PartnerID: "a2", Trust: 42, RoundsPlayed: 3}
	if err := s.SaveAgent(want); err != nil {
		t.Fatalf("SaveAgent failed: %v", err)
	}

	got, err := s.GetAgent("a1")
	if err != nil {
		t.Fatalf("GetAgent failed: %v", err)
	}
	if got.ID != want.ID || got.Balance != want.Balance || got.Style != want.Style {
		t.Fatalf("agent mismatch: %+v vs %+v", got, want)
	}
	if rec := got.Relationships["a2"]; rec.Trust != 42 || rec.RoundsPlayed != 3 {
		t.Fatalf("relationship lost on round trip: %+v", rec)
	}

	if _, err := s.GetAgent("missing"); err == nil {
		t.Fatal("expected error for unknown agent")
	}
}

func TestGetAgentsScopedToSimulation(t *testing.T) {
	s := openTestStorage(t, "sim-scope")

	for _, id := range []string{"a1", "a2", "a3"} {
		if err := s.SaveAgent(sampleAgent(id)); err != nil {
			t.Fatalf("SaveAgent failed: %v", err)
		}
	}
	// A record under a foreign prefix must not leak into the listing.
	if err := s.Put("agent:other-sim:zz", []byte(`{"id":"zz"}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	agents, err := s.GetAgents()
	if err != nil {
		t.Fatalf("GetAgents failed: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
}

func TestBondRoundTrip(t *testing.T) {
	s := openTestStorage(t, "sim-bonds")

	want := sampleBond(t)
	want.History = []core.RoundResult{{Round: 1, Move1: core.MoveCooperate, Move2: core.MoveDefect, Payout1: 0, Payout2: 25}}
	if err := s.SaveBond(want); err != nil {
		t.Fatalf("SaveBond failed: %v", err)
	}

	got, err := s.GetBond(want.ID)
	if err != nil {
		t.Fatalf("GetBond failed: %v", err)
	}
	if got.ID != want.ID || got.State != want.State || got.Stake1 != want.Stake1 {
		t.Fatalf("bond mismatch: %+v vs %+v", got, want)
	}
	if len(got.History) != 1 || got.History[0].Payout2 != 25 {
		t.Fatalf("history lost on round trip: %+v", got.History)
	}

	bonds, err := s.GetBonds()
	if err != nil {
		t.Fatalf("GetBonds failed: %v", err)
	}
	if len(bonds) != 1 {
		t.Fatalf("expected 1 bond, got %d", len(bonds))
	}
}

func TestApplySettlementWritesAllRecords(t *testing.T) {
	s := openTestStorage(t, "sim-settle")

	bond := sampleBond(t)
	bond.State = core.BondSettled
	a1 := sampleAgent("a1")
	a1.Balance = 115
	a2 := sampleAgent("a2")
	a2.Balance = 90

	if err := s.ApplySettlement(bond, a1, a2); err != nil {
		t.Fatalf("ApplySettlement failed: %v", err)
	}

	gotBond, err := s.GetBond(bond.ID)
	if err != nil || gotBond.State != core.BondSettled {
		t.Fatalf("bond not persisted as settled: %+v (%v)", gotBond, err)
	}
	got1, err := s.GetAgent("a1")
	if err != nil || got1.Balance != 115 {
		t.Fatalf("agent1 not persisted: %+v (%v)", got1, err)
	}
	got2, err := s.GetAgent("a2")
	if err != nil || got2.Balance != 90 {
		t.Fatalf("agent2 not persisted: %+v (%v)", got2, err)
	}
}

func TestClearSimulationData(t *testing.T) {
	s := openTestStorage(t, "sim-clear")

	if err := s.SaveAgent(sampleAgent("a1")); err != nil {
		t.Fatalf("SaveAgent failed: %v", err)
	}
	if err := s.SaveBond(sampleBond(t)); err != nil {
		t.Fatalf("SaveBond failed: %v", err)
	}

	if err := s.ClearSimulationData(); err != nil {
		t.Fatalf("ClearSimulationData failed: %v", err)
	}

	agents, err := s.GetAgents()
	if err != nil {
		t.Fatalf("GetAgents failed: %v", err)
	}
	bonds, err := s.GetBonds()
	if err != nil {
		t.Fatalf("GetBonds failed: %v", err)
	}
	if len(agents) != 0 || len(bonds) != 0 {
		t.Fatalf("data survived clear: %d agents, %d bonds", len(agents), len(bonds))
	}
}

func TestGenericGetMissingKey(t *testing.T) {
	s := openTestStorage(t, "sim-generic")

	val, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get on missing key should not error: %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil for missing key, got %q", val)
	}

	var out struct{ ID string }
	if err := s.GetObject("nope", &out); err == nil {
		t.Fatal("GetObject on missing key should error")
	}
}
