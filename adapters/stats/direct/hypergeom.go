// Package direct is a reference backend for the XL-mHG test. It evaluates
// every hypergeometric tail probability from log binomial coefficients and
// propagates lattice mass forward in freshly allocated tables. It is slow and
// meant for cross-checking the recurrence backend.
package direct

import (
	"math"

	"github.com/aclements/go-moremath/mathx"
)

// hyper is the hypergeometric distribution of ones among the first n elements
// of a random ordering of K ones and N-K zeros.
type hyper struct {
	N, K int
}

// logTail returns log P(at least k ones among the first n).
func (h hyper) logTail(k, n int) float64 {
	W := h.N - h.K
	lo, hi := max(k, n-W), min(h.K, n)
	if k <= max(0, n-W) {
		return 0
	}
	if lo > hi {
		return math.Inf(-1)
	}
	denom := mathx.Lchoose(h.N, n)
	terms := make([]float64, 0, hi-lo+1)
	top := math.Inf(-1)
	for j := lo; j <= hi; j++ {
		t := mathx.Lchoose(h.K, j) + mathx.Lchoose(W, n-j) - denom
		terms = append(terms, t)
		top = math.Max(top, t)
	}
	sum := 0.0
	for _, t := range terms {
		sum += math.Exp(t - top)
	}
	return math.Min(top+math.Log(sum), 0)
}

// logEqual is the ratio test on log-scale values.
func logEqual(la, lb, tol float64) bool {
	if la == lb {
		return true
	}
	lo, hi := math.Min(la, lb), math.Max(la, lb)
	return -math.Expm1(lo-hi) <= tol
}

func logAtMost(la, lb, tol float64) bool {
	return la < lb || logEqual(la, lb, tol)
}
