package mhg

// walker tracks f(k; N, K, n), the probability of exactly k ones among the
// first n elements of a random ordering of K ones and N-K zeros, while the
// ranked list is consumed one element at a time.
type walker struct {
	N, K int
	n, k int
	p    xfloat
}

func newWalker(N, K int) walker {
	return walker{N: N, K: K, p: newXfloat(1.0)}
}

// zero consumes a 0: f(k; n+1) from f(k; n).
func (w *walker) zero() {
	n, k := w.n, w.k
	w.p = w.p.mul(float64(n+1) * float64(w.N-w.K-n+k) / (float64(w.N-n) * float64(n-k+1)))
	w.n++
}

// one consumes a 1: f(k+1; n+1) from f(k; n).
func (w *walker) one() {
	n, k := w.n, w.k
	w.p = w.p.mul(float64(n+1) * float64(w.K-k) / (float64(w.N-n) * float64(k+1)))
	w.n++
	w.k++
}

// tail is the probability of at least k ones among the first n elements.
func (w *walker) tail() xfloat {
	p, pval := w.p, w.p
	n, N, K := w.n, w.N, w.K
	hi := K
	if n < hi {
		hi = n
	}
	for k := w.k; k < hi; k++ {
		p = p.mul(float64(n-k) * float64(K-k) / (float64(k+1) * float64(N-K-n+k+1)))
		pval = pval.add(p)
	}
	return pval
}

// TailProbability returns the hypergeometric tail probability of observing at
// least k ones among the first n elements, given K ones in N. p is the point
// probability f(k; N, K, n).
func TailProbability(p float64, k, N, K, n int) float64 {
	w := walker{N: N, K: K, n: n, k: k, p: newXfloat(p)}
	return w.tail().float()
}
