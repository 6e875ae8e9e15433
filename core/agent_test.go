package core

import (
	"math/rand"
	"testing"
)

func TestInitialTrustByStyle(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		style AttachmentStyle
		want  float64
	}{
		{StyleSecure, 70},
		{StyleAnxious, 50},
		{StyleAvoidant, 30},
	}
	for _, tc := range cases {
		a := testAgent("a", tc.style)
		if got := a.EnsureRecord("b", rng).Trust; got != tc.want {
			t.Errorf("%s: initial trust %f, want %f", tc.style, got, tc.want)
		}
	}

	// Disorganized draws from [20,80].
	for i := 0; i < 20; i++ {
		a := testAgent("a", StyleDisorganized)
		if got := a.EnsureRecord("b", rng).Trust; got < 20 || got > 80 {
			t.Fatalf("disorganized initial trust out of range: %f", got)
		}
	}
}

func TestEnsureRecordIdempotent(t *testing.T) {
	a := testAgent("a", StyleSecure)
	rng := rand.New(rand.NewSource(1))
	rec := a.EnsureRecord("b", rng)
	rec.Trust = 12
	if again := a.EnsureRecord("b", rng); again.Trust != 12 {
		t.Fatal("EnsureRecord replaced an existing record")
	}
}

func TestStakeFor(t *testing.T) {
	a := testAgent("a", StyleSecure) // balance 100, risk 0.5

	// No history: 10 * 0.75 risk factor.
	if got := a.StakeFor("stranger"); got != 7.5 {
		t.Fatalf("stranger stake: got %f, want 7.5", got)
	}

	// Full trust: 10 * 1.5 * 0.75.
	rec := a.EnsureRecord("b", rand.New(rand.NewSource(1)))
	rec.Trust = 100
	if got := a.StakeFor("b"); got != 11.25 {
		t.Fatalf("trusted stake: got %f, want 11.25", got)
	}

	// Never above 30% of balance.
	a.RiskTolerance = 0.9
	a.Balance = 10
	if got := a.StakeFor("b"); got > 3 {
		t.Fatalf("stake above 30%% cap: %f", got)
	}
}

func TestEscrowAndCredit(t *testing.T) {
	a := testAgent("a", StyleSecure)
	if a.Escrow(0) {
		t.Fatal("zero escrow accepted")
	}
	if a.Escrow(101) {
		t.Fatal("escrow above balance accepted")
	}
	if !a.Escrow(40) {
		t.Fatal("valid escrow rejected")
	}
	if got := a.Snapshot().Balance; got != 60 {
		t.Fatalf("balance after escrow: %f", got)
	}
	a.Credit(15)
	if got := a.Snapshot().Balance; got != 75 {
		t.Fatalf("balance after credit: %f", got)
	}
}

func TestAgentSnapshotRestore(t *testing.T) {
	a := NewAgent("a", "Ava", StyleAnxious, []Goal{GoalStability},
		map[string]float64{SkillPatience: 0.8}, Ethics{Fairness: 0.7, Reciprocity: 0.9}, 0.4, 80)
	rec := a.EnsureRecord("b", rand.New(rand.NewSource(1)))
	rec.Trust = 33
	rec.TimesBetrayed = 2

	restored := a.Snapshot().Restore()
	if restored.ID != "a" || restored.Style != StyleAnxious || restored.Balance != 80 {
		t.Fatalf("identity lost: %+v", restored)
	}
	got := restored.Record("b")
	if got == nil || got.Trust != 33 || got.TimesBetrayed != 2 {
		t.Fatalf("relationship lost: %+v", got)
	}

	// The view is a deep copy: mutating it must not touch the original.
	view := a.Snapshot()
	view.Skills[SkillPatience] = 0
	if a.Skill(SkillPatience) != 0.8 {
		t.Fatal("snapshot shares the skills map with the agent")
	}
}
