package mhg

import (
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
)

// Curve evaluates the hypergeometric tail probability and the fold enrichment
// at every cutoff n = 0..N. Entry 0 is 1 for both. Without ones the fold
// enrichment is undefined (NaN).
func Curve(indices []uint16, N int) (*stats.Curve, error) {
	if err := ranked.ValidateIndices(N, indices); err != nil {
		return nil, err
	}
	K := len(indices)
	c := &stats.Curve{
		PValues: make([]float64, N+1),
		Folds:   make([]float64, N+1),
	}
	c.PValues[0], c.Folds[0] = 1.0, 1.0

	w := newWalker(N, K)
	next := 0
	for n := 0; n < N; n++ {
		if next < K && int(indices[next]) == n {
			w.one()
			next++
		} else {
			w.zero()
		}
		c.PValues[n+1] = w.tail().float()
		c.Folds[n+1] = float64(w.k) / (float64(K) * (float64(n+1) / float64(N)))
	}
	return c, nil
}
