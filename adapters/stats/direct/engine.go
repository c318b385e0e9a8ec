package direct

import (
	"math"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/ports"
)

// EngineName identifies the reference backend.
const EngineName = "direct"

type Engine struct{}

var _ ports.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string {
	return EngineName
}

// Stat evaluates the tail probability at every cutoff of the first L elements.
func (e *Engine) Stat(list *ranked.List, X, L int, tol float64) (float64, int, error) {
	if err := validateList(list); err != nil {
		return 0, 0, err
	}
	N, K := list.N, list.K()
	if err := stats.ValidateCutoffs(N, X, L); err != nil {
		return 0, 0, err
	}
	if err := stats.ValidateTol(tol); err != nil {
		return 0, 0, err
	}
	if K == 0 {
		return 1.0, 0, nil
	}
	h := hyper{N: N, K: K}
	best := math.Log(1.1)
	cutoff := 0
	for n := 1; n <= L; n++ {
		k := list.OnesBefore(n)
		if k < X {
			continue
		}
		if lt := h.logTail(k, n); lt < best && !logEqual(lt, best, tol) {
			best, cutoff = lt, n
		}
	}
	return math.Min(math.Exp(best), 1.0), cutoff, nil
}

// PValue propagates probability mass forward through the lattice and absorbs
// it at the rejection region. Algorithm 1 reports one minus the mass that
// reaches (K, W); Algorithm 2 reports the absorbed mass. The table argument is
// only checked for size.
func (e *Engine) PValue(alg stats.Algorithm, N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	if alg != stats.Algorithm1 && alg != stats.Algorithm2 {
		return 0, core.NewParameterError("algorithm", alg, "alg1 or alg2")
	}
	if err := stats.ValidateLattice(N, K, X, L, stat, tol); err != nil {
		return 0, err
	}
	if table != nil {
		if err := table.Fits(stats.TableDims(alg, N, K, L)); err != nil {
			return 0, err
		}
	}
	if stat == 1.0 {
		return 1.0, nil
	}

	h := hyper{N: N, K: K}
	W := N - K
	lstat := math.Log(stat)
	mass := make([][]float64, K+1)
	for k := range mass {
		mass[k] = make([]float64, W+1)
	}
	mass[0][0] = 1.0

	absorbed, found := 0.0, false
	for n := 0; n < N; n++ {
		r := float64(N - n)
		for k := max(0, n-W); k <= min(n, K); k++ {
			w := n - k
			m := mass[k][w]
			if m == 0 {
				continue
			}
			if k < K {
				mass[k+1][w] += m * (float64(K-k) / r)
			}
			if w < W {
				mass[k][w+1] += m * (float64(W-w) / r)
			}
		}
		next := n + 1
		if next > L {
			if alg == stats.Algorithm2 {
				break
			}
			continue
		}
		for k := min(next, K); k >= X && next-k < W; k-- {
			if !logAtMost(h.logTail(k, next), lstat, tol) {
				break
			}
			found = true
			absorbed += mass[k][next-k]
			mass[k][next-k] = 0
		}
	}

	if alg == stats.Algorithm2 {
		return absorbed, nil
	}
	if !found {
		return 0.0, nil
	}
	pval := 1.0 - mass[K][W]
	if pval < 0 {
		return math.NaN(), nil
	}
	return pval, nil
}

// Bound evaluates the O(N) bound on the full matrix of tail probabilities.
func (e *Engine) Bound(N, K, X, L int, stat, tol float64) (float64, error) {
	if err := stats.ValidateLattice(N, K, X, L, stat, tol); err != nil {
		return 0, err
	}
	if stat == 1.0 {
		return 1.0, nil
	}
	h := hyper{N: N, K: K}
	W := N - K
	lstat := math.Log(stat)
	inR := func(k, w int) bool {
		n := k + w
		if k < X || w >= W || n > L {
			return false
		}
		return logAtMost(h.logTail(k, n), lstat, tol)
	}

	minKL := min(K, L)
	if minKL < X || !inR(minKL, 0) {
		return 0.0, nil
	}
	kMin := minKL
	for k := X; k < minKL; k++ {
		if inR(k, 0) {
			kMin = k
			break
		}
	}

	kMax := K
	if L <= K || inR(K, L-K) {
		k, w := minKL, 0
		for inR(k, w+1) {
			w++
		}
		for inR(k, w) {
			k--
			w++
		}
		kMax = k + 1
	}
	return math.Min(float64(kMax-kMin+1)*stat, 1.0), nil
}

func (e *Engine) EScore(list *ranked.List, X, L int, hgpThresh, tol float64) (float64, error) {
	if err := validateList(list); err != nil {
		return 0, err
	}
	N, K := list.N, list.K()
	if err := stats.ValidateCutoffs(N, X, L); err != nil {
		return 0, err
	}
	if err := stats.ValidateTol(tol); err != nil {
		return 0, err
	}
	if math.IsNaN(hgpThresh) || hgpThresh < 0 {
		return 0, core.NewParameterError("hgp threshold", hgpThresh, ">= 0")
	}
	h := hyper{N: N, K: K}
	lthresh := math.Log(hgpThresh)
	escore := 0.0
	for i, idx := range list.Indices {
		n, k := int(idx)+1, i+1
		if n > L {
			break
		}
		if k < X {
			continue
		}
		fold := float64(k) / (float64(n*K) / float64(N))
		if fold > escore && !isEqual(fold, escore, tol) && logAtMost(h.logTail(k, n), lthresh, tol) {
			escore = fold
		}
	}
	if escore == 0 {
		return math.NaN(), nil
	}
	return escore, nil
}

func (e *Engine) Curve(list *ranked.List) (*stats.Curve, error) {
	if err := validateList(list); err != nil {
		return nil, err
	}
	N, K := list.N, list.K()
	h := hyper{N: N, K: K}
	c := &stats.Curve{
		PValues: make([]float64, N+1),
		Folds:   make([]float64, N+1),
	}
	c.PValues[0], c.Folds[0] = 1.0, 1.0
	for n := 1; n <= N; n++ {
		k := list.OnesBefore(n)
		c.PValues[n] = math.Exp(h.logTail(k, n))
		c.Folds[n] = float64(k) / (float64(K) * (float64(n) / float64(N)))
	}
	return c, nil
}

func validateList(list *ranked.List) error {
	if list == nil {
		return core.ErrEmptyList
	}
	return ranked.ValidateIndices(list.N, list.Indices)
}

func isEqual(a, b, tol float64) bool {
	return a == b || math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}
