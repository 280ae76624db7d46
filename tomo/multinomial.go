package tomo

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// multinomial draws outcome counts for n trials over the given outcome
// probabilities by chaining conditional binomial draws. The returned
// counts are integral and sum to n exactly.
func multinomial(n int64, probs []float64, src rand.Source) []float64 {
	counts := make([]float64, len(probs))
	remaining := float64(n)
	rest := 1.0
	for i := 0; i < len(probs)-1; i++ {
		if remaining == 0 || rest <= 0 {
			break
		}
		p := probs[i] / rest
		if p <= 0 {
			rest -= probs[i]
			continue
		}
		if p >= 1 {
			counts[i] = remaining
			remaining = 0
			break
		}
		b := distuv.Binomial{N: remaining, P: p, Src: src}
		d := b.Rand()
		counts[i] = d
		remaining -= d
		rest -= probs[i]
	}
	counts[len(probs)-1] += remaining
	return counts
}
