package mhg

import (
	"math"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
)

// initialStat sits above any probability so the first eligible cutoff always
// replaces it.
const initialStat = 1.1

// Stat computes the XL-mHG test statistic of a 0/1 vector, together with the
// first cutoff at which it is attained. Every non-zero element counts as a 1.
// A vector without ones has statistic 1 at cutoff 0.
func Stat(v []uint8, X, L int, tol float64) (float64, int, error) {
	N := len(v)
	if N == 0 {
		return 0, 0, core.ErrEmptyList
	}
	if err := checkXL(N, X, L); err != nil {
		return 0, 0, err
	}
	if err := checkTol(tol); err != nil {
		return 0, 0, err
	}
	K := 0
	for _, x := range v {
		if x != 0 {
			K++
		}
	}
	stat, cutoff := scan(N, K, X, L, tol, func(n int) bool { return v[n] != 0 })
	return stat, cutoff, nil
}

// StatIndices is Stat for a list given as the strictly increasing positions of
// its ones.
func StatIndices(indices []uint16, N, X, L int, tol float64) (float64, int, error) {
	if err := ranked.ValidateIndices(N, indices); err != nil {
		return 0, 0, err
	}
	if err := checkXL(N, X, L); err != nil {
		return 0, 0, err
	}
	if err := checkTol(tol); err != nil {
		return 0, 0, err
	}
	next := 0
	isOne := func(n int) bool {
		if next < len(indices) && int(indices[next]) == n {
			next++
			return true
		}
		return false
	}
	stat, cutoff := scan(N, len(indices), X, L, tol, isOne)
	return stat, cutoff, nil
}

// scan walks the first L elements. Only cutoffs directly after a 1 can
// minimize the tail probability, so the tail sum is evaluated there only.
func scan(N, K, X, L int, tol float64, isOne func(n int) bool) (float64, int) {
	if K == 0 {
		return 1.0, 0
	}
	best := newXfloat(initialStat)
	cutoff := 0
	w := newWalker(N, K)
	for n := 0; n < L; n++ {
		if !isOne(n) {
			w.zero()
			continue
		}
		w.one()
		if w.k >= X {
			if hgp := w.tail(); hgp.less(best) && !hgp.equal(best, tol) {
				best, cutoff = hgp, w.n
			}
		}
		if w.k == K {
			break
		}
	}
	return math.Min(best.float(), 1.0), cutoff
}
