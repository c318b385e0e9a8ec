package mhg

import "math"

// O1Bound is the O(1)-time upper bound on the XL-mHG p-value: at most
// min(K, L) - X + 1 cutoffs can attain a statistic value, each with probability
// at most stat. Without any eligible cutoff the trivial bound 1 applies.
func O1Bound(K, X, L int, stat float64) float64 {
	m := K
	if L < m {
		m = L
	}
	if m < X {
		return 1.0
	}
	return math.Min(float64(m-X+1)*stat, 1.0)
}

// Bound is the O(N)-time upper bound on the XL-mHG p-value. It counts the
// distinct numbers of ones that a path into the rejection region can have at
// its first entry: those lie between the smallest k on the w=0 axis inside the
// region and the smallest k on the n=L diagonal still reachable inside it.
func Bound(N, K, X, L int, stat, tol float64) (float64, error) {
	if err := checkLattice(N, K, X, L, stat, tol); err != nil {
		return 0, err
	}
	if stat == 1.0 {
		return 1.0, nil
	}
	inR := func(hgp float64) bool { return atMost(hgp, stat, tol) }
	W := N - K
	minKL := K
	if L < minKL {
		minKL = L
	}

	// Along w=0 the tail probability is f(k; N, K, k), decreasing in k.
	p := 1.0
	kMin := 0
	for k := 1; k <= minKL; k++ {
		p *= float64(K-k+1) / float64(N-k+1)
		if kMin == 0 && k >= X && inR(p) {
			kMin = k
		}
	}
	if kMin == 0 || !inR(p) {
		return 0.0, nil
	}

	if L > K {
		// Along k=K: f(K; N, K, n) = f(K; N, K, n-1) * n / (n-K).
		for n := K + 1; n <= L; n++ {
			p *= float64(n) / float64(n-K)
		}
		if L-K >= W || !inR(p) {
			return boundOf(kMin, K, stat), nil
		}
	}

	n, k := L, minKL
	hgp := p
	for k >= X && n-k < W && inR(hgp) {
		p *= float64(k) * float64(N-K-n+k) / (float64(n-k+1) * float64(K-k+1))
		hgp += p
		k--
	}
	return boundOf(kMin, k+1, stat), nil
}

func boundOf(kMin, kMax int, stat float64) float64 {
	return math.Min(float64(kMax-kMin+1)*stat, 1.0)
}
