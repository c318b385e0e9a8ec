package mhg

import (
	"math"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
)

// EScore returns the largest fold enrichment k / (n*K/N) over cutoffs n < L+1
// with at least X ones whose tail probability is at most hgpThresh. It returns
// NaN when no cutoff qualifies.
func EScore(indices []uint16, N, X, L int, hgpThresh, tol float64) (float64, error) {
	if err := ranked.ValidateIndices(N, indices); err != nil {
		return 0, err
	}
	if err := checkXL(N, X, L); err != nil {
		return 0, err
	}
	if err := checkTol(tol); err != nil {
		return 0, err
	}
	if math.IsNaN(hgpThresh) || hgpThresh < 0 {
		return 0, core.NewParameterError("hgp threshold", hgpThresh, ">= 0")
	}

	K := len(indices)
	escore := 0.0
	w := newWalker(N, K)
	for _, idx := range indices {
		if int(idx) >= L {
			break
		}
		for w.n < int(idx) {
			w.zero()
		}
		w.one()
		if w.k < X {
			continue
		}
		e := float64(w.k) / (float64(w.n*K) / float64(N))
		if e > escore && !isEqual(e, escore, tol) {
			if hgp := w.tail().float(); atMost(hgp, hgpThresh, tol) {
				escore = e
			}
		}
	}
	if escore == 0 {
		return math.NaN(), nil
	}
	return escore, nil
}
