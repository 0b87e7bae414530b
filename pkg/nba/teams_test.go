package nba

import (
	"math"
	"testing"
)

func TestResolverAbbr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"canonical", "Boston Celtics", "BOS", true},
		{"alias", "Lakers", "LAL", true},
		{"short LA form", "LA Clippers", "LAC", true},
		{"numeric nickname", "76ers", "PHI", true},
		{"punctuation noise", "St. Louis? Boston Celtics!", "BOS", true},
		{"accented", "Dallas Mavericks", "DAL", true},
		{"substring", "the utah jazz", "UTA", true},
		{"unknown", "Springfield Atoms", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolver{}.Abbr(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Abbr(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCanonStripsAccents(t *testing.T) {
	if got := Canon("Dončić"); got != "doncic" {
		t.Errorf("Canon = %q, want doncic", got)
	}
	if got := Canon("Jaren Jackson Jr."); got != "jaren jackson jr" {
		t.Errorf("Canon = %q", got)
	}
}

func TestTravelKm(t *testing.T) {
	// Boston to Los Angeles is roughly 4,170 km.
	got := TravelKm("LAL", "BOS")
	if math.Abs(got-4170) > 100 {
		t.Errorf("TravelKm(LAL, BOS) = %v, want ~4170", got)
	}

	// Same arena is zero.
	if got := TravelKm("LAL", "LAC"); got != 0 {
		t.Errorf("shared arena distance = %v, want 0", got)
	}

	// Unknown tricode degrades to zero.
	if got := TravelKm("XXX", "BOS"); got != 0 {
		t.Errorf("unknown tricode distance = %v, want 0", got)
	}
}

func TestStarTiers(t *testing.T) {
	if got := TierOf("DEN", "Nikola Jokic"); got != StarTier1 {
		t.Errorf("TierOf(DEN, Jokic) = %v, want tier 1", got)
	}
	if got := TierOf("DEN", "Jamal Murray"); got != StarTier2 {
		t.Errorf("TierOf(DEN, Murray) = %v, want tier 2", got)
	}
	if got := TierOf("DEN", "Random Benchwarmer"); got != StarNone {
		t.Errorf("TierOf unknown = %v, want none", got)
	}

	// Defensive anchors are a separate roster.
	if got := DefTierOf("MIN", "Rudy Gobert"); got != StarTier1 {
		t.Errorf("DefTierOf(MIN, Gobert) = %v, want tier 1", got)
	}
	if got := DefTierOf("MIN", "Anthony Edwards"); got != StarNone {
		t.Errorf("DefTierOf(MIN, Edwards) = %v, want none", got)
	}
}
