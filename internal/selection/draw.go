package selection

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniformly distributed values in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource draws from the process-wide generator.
func DefaultSource() RandomSource {
	return globalSource{}
}

func orDefault(rng RandomSource) RandomSource {
	if rng == nil {
		return DefaultSource()
	}
	return rng
}

// intn returns a value in [0, n) from rng. Sources returning values outside
// [0, 1) are clamped.
func intn(rng RandomSource, n int) int {
	i := int(rng.Float64() * float64(n))
	return min(max(i, 0), n-1)
}

// Shuffle permutes s in place (Fisher-Yates).
func Shuffle[T any](s []T, rng RandomSource) {
	rng = orDefault(rng)
	for i := len(s) - 1; i > 0; i-- {
		j := intn(rng, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

// Draw picks up to count weights without replacement, each round with
// probability proportional to weight. Only the heaviest
// CandidateFactor*count entries of ws take part; ws must be sorted
// heaviest first, as returned by Weigh. The result is in draw order.
func (w *Weighter) Draw(ws []Weight, count int, rng RandomSource) []Weight {
	if count <= 0 || len(ws) == 0 {
		return nil
	}
	rng = orDefault(rng)

	n := min(w.cfg.CandidateFactor*count, len(ws))
	candidates := append([]Weight(nil), ws[:n]...)

	picked := make([]Weight, 0, min(count, n))
	for len(picked) < count && len(candidates) > 0 {
		i := pick(candidates, rng)
		picked = append(picked, candidates[i])
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	return picked
}

// pick returns an index with probability proportional to its weight.
// Non-positive weights are never picked unless every weight is
// non-positive, in which case the choice is uniform.
func pick(ws []Weight, rng RandomSource) int {
	total := 0.0
	for _, w := range ws {
		if w.Total > 0 {
			total += w.Total
		}
	}
	if total <= 0 {
		return intn(rng, len(ws))
	}

	r := rng.Float64() * total
	cum := 0.0
	last := 0
	for i, w := range ws {
		if w.Total <= 0 {
			continue
		}
		cum += w.Total
		last = i
		if r < cum {
			return i
		}
	}
	return last
}

type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Locked wraps src so it can be shared between goroutines.
func Locked(src RandomSource) RandomSource {
	if src == nil {
		return DefaultSource()
	}
	if _, ok := src.(globalSource); ok {
		return src
	}
	return &lockedSource{src: src}
}
