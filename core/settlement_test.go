package core

import "testing"

func TestPayouts(t *testing.T) {
	cases := []struct {
		name             string
		coop1, coop2     bool
		stake1, stake2   float64
		payout1, payout2 float64
	}{
		{"mutual cooperation", true, true, 10, 10, 15, 15},
		{"mutual cooperation uneven stakes", true, true, 10, 20, 15, 30},
		{"mutual defection", false, false, 10, 10, 5, 5},
		{"agent1 defects on cooperator", false, true, 10, 10, 25, 0},
		{"agent2 defects on cooperator", true, false, 10, 10, 0, 25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p1, p2 := Payouts(tc.coop1, tc.coop2, tc.stake1, tc.stake2)
			if p1 != tc.payout1 || p2 != tc.payout2 {
				t.Fatalf("got (%.2f, %.2f), want (%.2f, %.2f)", p1, p2, tc.payout1, tc.payout2)
			}
		})
	}
}

func TestPayoutsBoundedByOwnStake(t *testing.T) {
	// A betrayed cooperator loses exactly its stake, never the partner's.
	p1, p2 := Payouts(true, false, 7, 1000)
	if p1 != 0 {
		t.Fatalf("betrayed cooperator should get 0, got %.2f", p1)
	}
	if p2 != 2500 {
		t.Fatalf("defector payout should scale off its own stake, got %.2f", p2)
	}
}
