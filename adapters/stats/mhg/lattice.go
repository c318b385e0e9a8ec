package mhg

import "xlmhg/domain/stats"

// boundary decides what happens to probability mass at cells of the rejection
// region R, the cells (k, w) with k >= X, n = k+w <= L, w < W and a tail
// probability of at most stat.
type boundary interface {
	// enter sees cell (k, w) on diagonal n before it is zeroed.
	enter(t *stats.Table, k, w, n int)
	// exhausted reports that no mass can enter R at or after diagonal n,
	// given the tail probability of its topmost cell.
	exhausted(k int, hgp float64) bool
}

// lattice fills table[k, w], the probability that a random path reaches
// (k, w) without having passed through R, one anti-diagonal n = k + w at a
// time.
type lattice struct {
	N, K, X, L int
	stat, tol  float64
}

// fill runs diagonals 1..ranks. ok is false if the leading hypergeometric
// term of a diagonal underflowed; foundR reports whether R was reached.
func (lt *lattice) fill(t *stats.Table, ranks int, b boundary) (foundR, ok bool) {
	N, K := lt.N, lt.K
	W := N - K
	t.Set(0, 0, 1.0)
	pStart := 1.0
	for n := 1; n <= ranks; n++ {
		var k int
		if K >= n {
			k = n
			pStart *= float64(K-n+1) / float64(N-n+1)
		} else {
			k = K
			pStart *= float64(n) / float64(n-K)
		}
		if pStart == 0 {
			return foundR, false
		}

		// Tail probabilities grow as k decreases, so R occupies the top of the
		// diagonal.
		p, hgp := pStart, pStart
		w := n - k
		if b.exhausted(k, hgp) {
			break
		}
		if n >= lt.X && n <= lt.L {
			for k >= lt.X && w < W && atMost(hgp, lt.stat, lt.tol) {
				foundR = true
				b.enter(t, k, w, n)
				t.Set(k, w, 0)
				p *= float64(k) * float64(N-K-n+k) / (float64(n-k+1) * float64(K-k+1))
				hgp += p
				w++
				k--
			}
		}

		r := float64(N - n + 1)
		for ; k >= 0 && w <= W; k, w = k-1, w+1 {
			switch {
			case k > 0 && w > 0:
				t.Set(k, w, float64(t.At(k, w-1)*(float64(W-w+1)/r))+float64(t.At(k-1, w)*(float64(K-k+1)/r)))
			case k > 0:
				t.Set(k, w, t.At(k-1, w)*(float64(K-k+1)/r))
			case w > 0:
				t.Set(k, w, t.At(k, w-1)*(float64(W-w+1)/r))
			}
		}
	}
	return foundR, true
}

// fullTable keeps every diagonal; the p-value is the mass missing at (K, W).
type fullTable struct{}

func (fullTable) enter(*stats.Table, int, int, int) {}

func (fullTable) exhausted(int, float64) bool { return false }

// firstEntry accumulates the mass that enters R from the cell below, which
// outside R is the only way in: entries from the left come from R itself.
type firstEntry struct {
	N, K      int
	stat, tol float64
	pval      float64
}

func (f *firstEntry) enter(t *stats.Table, k, w, n int) {
	if below := t.At(k-1, w); below > 0 {
		f.pval += below * (float64(f.K-k+1) / float64(f.N-n+1))
	}
}

// Once all ones are in, the tail probability only grows with n.
func (f *firstEntry) exhausted(k int, hgp float64) bool {
	return k == f.K && hgp > f.stat && !isEqual(hgp, f.stat, f.tol)
}
