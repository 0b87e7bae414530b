package engine

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Sampler derives fixed-size synthetic outcome draws. The sample size never
// changes within a process so sampling noise stays comparable across markets
// and fixtures. Draw streams are keyed: for a given base seed, equal keys
// always reproduce the same sequence, so re-evaluating identical inputs
// yields identical samples and identical downstream scores.
type Sampler struct {
	n    int
	seed int64
}

// NewSampler creates a sampler with the given sample size and base seed. A
// zero seed picks a time-based one.
func NewSampler(n int, seed int64) *Sampler {
	if n <= 0 {
		n = DefaultModelConfig().Simulations
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{n: n, seed: seed}
}

// Size returns the fixed per-process sample size.
func (s *Sampler) Size() int { return s.n }

// Stream derives the draw stream for one evaluation pass. Markets within a
// pass consume the stream sequentially in their fixed order.
func (s *Sampler) Stream(key string) *Stream {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &Stream{
		n:   s.n,
		rng: rand.New(rand.NewSource(s.seed ^ int64(h.Sum64()))),
	}
}

// Stream is the deterministic draw sequence of a single evaluation pass. Not
// safe for concurrent use; each pass owns its own stream.
type Stream struct {
	n   int
	rng *rand.Rand
}

// Normal draws one sample of size Size() from N(mean, sd).
func (st *Stream) Normal(mean, sd float64) Sample {
	out := make(Sample, st.n)
	for i := range out {
		out[i] = mean + st.rng.NormFloat64()*sd
	}
	return out
}

// Sample is an ephemeral synthetic draw. It exists only long enough for
// summary statistics to be extracted.
type Sample []float64

// Mean returns the sample mean.
func (s Sample) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// FracAbove returns the fraction of draws strictly above the line.
func (s Sample) FracAbove(line float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var n int
	for _, v := range s {
		if v > line {
			n++
		}
	}
	return float64(n) / float64(len(s))
}

// FracBelow returns the fraction of draws strictly below the line.
func (s Sample) FracBelow(line float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var n int
	for _, v := range s {
		if v < line {
			n++
		}
	}
	return float64(n) / float64(len(s))
}
