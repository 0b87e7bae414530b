package engine

import "testing"

func TestWindowGate(t *testing.T) {
	p := NewPolicy(nil)

	tests := []struct {
		minutes float64
		label   string
		ok      bool
	}{
		{40, "", false},
		{20, "early", true},
		{10, "10m", true},
		{6, "", false},
		{2, "2m", true},
		{-3, "tipped", true},
		{-10, "", false},
	}
	for _, tt := range tests {
		label, ok := p.Window(tt.minutes)
		if ok != tt.ok || label != tt.label {
			t.Errorf("Window(%v) = (%q, %v), want (%q, %v)", tt.minutes, label, ok, tt.label, tt.ok)
		}
	}
}

func TestCheckTotalsCoinFlip(t *testing.T) {
	p := NewPolicy(nil)
	v := p.CheckTotals(PickOver, 0.51, 0.05, 228, 225, TierStrong, false)
	if !v.Suppress || v.Reason != "coin_flip" {
		t.Fatalf("verdict = %+v, want coin_flip suppression", v)
	}
}

func TestCheckTotalsEdgeFloor(t *testing.T) {
	p := NewPolicy(nil)
	v := p.CheckTotals(PickOver, 0.56, 0.015, 228, 225, TierStrong, false)
	if !v.Suppress || v.Reason != "edge_floor" {
		t.Fatalf("verdict = %+v, want edge_floor suppression", v)
	}
}

func TestCheckTotalsTrap(t *testing.T) {
	p := NewPolicy(nil)

	// Line shaded 1.5 above fair against an OVER pick: trapped.
	v := p.CheckTotals(PickOver, 0.56, 0.05, 225, 226.5, TierStrong, false)
	if !v.Suppress || v.Reason != "trap" {
		t.Fatalf("verdict = %+v, want trap suppression", v)
	}

	// The top tier fights through a shaded line.
	v = p.CheckTotals(PickOver, 0.56, 0.05, 225, 226.5, TierElite, false)
	if v.Suppress {
		t.Fatalf("ELITE trapped signal suppressed: %+v", v)
	}

	// Shading within the margin is not a trap.
	v = p.CheckTotals(PickOver, 0.56, 0.05, 225, 225.8, TierStrong, false)
	if v.Suppress {
		t.Fatalf("unshaded signal suppressed: %+v", v)
	}
}

func TestTrappedDirections(t *testing.T) {
	p := NewPolicy(nil)

	tests := []struct {
		pick       Pick
		fair, line float64
		want       bool
	}{
		{PickOver, 225, 226.5, true},
		{PickOver, 225, 225.5, false},
		{PickUnder, 226.5, 225, true},
		{PickUnder, 225.5, 225, false},
		{PickHome, 225, 230, false},
	}
	for _, tt := range tests {
		if got := p.Trapped(tt.pick, tt.fair, tt.line); got != tt.want {
			t.Errorf("Trapped(%s, %v, %v) = %v, want %v", tt.pick, tt.fair, tt.line, got, tt.want)
		}
	}
}

func TestCheckTotalsDefensiveBump(t *testing.T) {
	p := NewPolicy(nil)

	// LEAN OVER with a defensive anchor out promotes exactly one step.
	v := p.CheckTotals(PickOver, 0.56, 0.05, 228, 225, TierLean, true)
	if v.Suppress {
		t.Fatalf("bumped signal suppressed: %+v", v)
	}
	if v.Tier != TierStrong {
		t.Fatalf("tier = %s, want STRONG", v.Tier)
	}

	// ELITE never bumps past the top.
	v = p.CheckTotals(PickOver, 0.56, 0.05, 228, 225, TierElite, true)
	if v.Tier != TierElite {
		t.Fatalf("tier = %s, want ELITE unchanged", v.Tier)
	}

	// UNDER picks never bump.
	v = p.CheckTotals(PickUnder, 0.44, -0.05, 222, 225, TierLean, true)
	if v.Tier != TierLean {
		t.Fatalf("tier = %s, want LEAN unchanged for UNDER", v.Tier)
	}

	// NOISE has no rank and stays suppressed even with the flag set.
	v = p.CheckTotals(PickOver, 0.56, 0.05, 228, 225, TierNoise, true)
	if !v.Suppress || v.Reason != "tier_floor" {
		t.Fatalf("verdict = %+v, want tier_floor suppression", v)
	}
}

func TestAllowSpread(t *testing.T) {
	p := NewPolicy(nil)

	tests := []struct {
		name    string
		fair    float64
		winPct  float64
		tier    Tier
		allowed bool
		reason  string
	}{
		{"clean", -4.5, 60, TierStrong, true, ""},
		{"thin fair spread", -1.5, 60, TierStrong, false, "fair_spread_floor"},
		{"tier too low", -4.5, 60, TierLean, false, "tier_floor"},
		{"win pct too low", -4.5, 54, TierStrong, false, "win_pct_floor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason := p.AllowSpread(tt.fair, tt.winPct, tt.tier)
			if allowed != tt.allowed || reason != tt.reason {
				t.Errorf("AllowSpread = (%v, %q), want (%v, %q)", allowed, reason, tt.allowed, tt.reason)
			}
		})
	}
}

func TestAllowMoneyline(t *testing.T) {
	p := NewPolicy(nil)

	tests := []struct {
		name    string
		winPct  float64
		odds    float64
		tier    Tier
		allowed bool
		reason  string
	}{
		{"clean", 60, 1.67, TierStrong, true, ""},
		{"tier too low", 60, 1.67, TierLean, false, "tier_floor"},
		{"vig trap", 72, 1.39, TierElite, false, "vig_trap"},
		{"thin win pct", 51, 1.96, TierStrong, false, "win_pct_floor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, reason := p.AllowMoneyline(tt.winPct, tt.odds, tt.tier)
			if allowed != tt.allowed || reason != tt.reason {
				t.Errorf("AllowMoneyline = (%v, %q), want (%v, %q)", allowed, reason, tt.allowed, tt.reason)
			}
		})
	}
}

func TestAllowMoneylineStrictWeakDog(t *testing.T) {
	p := NewPolicy(StrictModelConfig())

	// Weak underdog price above the ceiling is rejected below ELITE.
	allowed, reason := p.AllowMoneyline(53, 3.50, TierVeryStrong)
	if allowed || reason != "weak_dog" {
		t.Fatalf("got (%v, %q), want weak_dog rejection", allowed, reason)
	}

	// ELITE may still take the price.
	if allowed, _ := p.AllowMoneyline(53, 3.50, TierElite); !allowed {
		t.Fatal("ELITE weak dog rejected in strict mode")
	}

	// Default mode has no dog ceiling.
	if allowed, _ := NewPolicy(nil).AllowMoneyline(53, 3.50, TierVeryStrong); !allowed {
		t.Fatal("default mode rejected a weak dog")
	}
}

func TestFingerprintChangesWithInjuryPicture(t *testing.T) {
	healthy := InjurySignature(InjuryContext{}, InjuryContext{})
	hurt := InjurySignature(InjuryContext{Tier1Out: true}, InjuryContext{DefTier2Out: true})

	if healthy == hurt {
		t.Fatal("injury signatures should differ")
	}

	a := Fingerprint("BOS_vs_MIA", MarketGame, 224.5, TierStrong, StageEarly, healthy)
	b := Fingerprint("BOS_vs_MIA", MarketGame, 224.5, TierStrong, StageEarly, hurt)
	if a == b {
		t.Fatal("fingerprints should re-arm on a changed injury picture")
	}

	c := Fingerprint("BOS_vs_MIA", MarketGame, 224.5, TierStrong, StageConfirmed, healthy)
	if a == c {
		t.Fatal("fingerprints should differ across stages")
	}
}
