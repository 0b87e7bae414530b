package engine

import (
	"math"
	"testing"
)

func TestStreamDeterministicForKey(t *testing.T) {
	s := NewSampler(10_000, 42)

	a := s.Stream("BOS_vs_MIA|2026-01-15").Normal(229.5, 12)
	b := s.Stream("BOS_vs_MIA|2026-01-15").Normal(229.5, 12)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs for equal keys: %v vs %v", i, a[i], b[i])
		}
	}

	// A different key (here the next epoch day) yields a different sequence.
	c := s.Stream("BOS_vs_MIA|2026-01-16").Normal(229.5, 12)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("distinct keys produced identical draws")
	}
}

func TestStreamDeterministicAcrossSamplers(t *testing.T) {
	a := NewSampler(10_000, 42).Stream("k").Normal(229.5, 12)
	b := NewSampler(10_000, 42).Stream("k").Normal(229.5, 12)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSamplerMomentsSanity(t *testing.T) {
	sample := NewSampler(50_000, 7).Stream("moments").Normal(229.5, 12)

	if got := sample.Mean(); math.Abs(got-229.5) > 0.5 {
		t.Errorf("sample mean %v too far from 229.5", got)
	}

	// Fractions above and below partition the sample up to exact ties.
	above := sample.FracAbove(224.5)
	below := sample.FracBelow(224.5)
	if math.Abs(above+below-1) > 1e-3 {
		t.Errorf("FracAbove + FracBelow = %v, want ~1", above+below)
	}

	// P(X > mean - 5/12 sd) for a normal is about 0.66.
	if above < 0.63 || above > 0.70 {
		t.Errorf("FracAbove(224.5) = %v, want near 0.66", above)
	}
}

func TestSamplerFixedSize(t *testing.T) {
	s := NewSampler(1234, 1)
	if s.Size() != 1234 {
		t.Fatalf("Size() = %d, want 1234", s.Size())
	}
	if got := len(s.Stream("k").Normal(100, 10)); got != 1234 {
		t.Fatalf("sample length %d, want 1234", got)
	}

	// Non-positive sizes fall back to the default.
	if got := NewSampler(0, 1).Size(); got != DefaultModelConfig().Simulations {
		t.Fatalf("zero-size fallback = %d", got)
	}
}

func TestEmptySampleStatistics(t *testing.T) {
	var s Sample
	if s.Mean() != 0 || s.FracAbove(1) != 0 || s.FracBelow(1) != 0 {
		t.Error("empty sample statistics should all be zero")
	}
}
