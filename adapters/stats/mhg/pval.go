package mhg

import (
	"math"

	"xlmhg/domain/core"
	"xlmhg/domain/stats"
)

// PValue computes the exact XL-mHG p-value of stat with the chosen algorithm.
// table is used as scratch space and is allocated if nil; it must be at least
// stats.TableDims large. NaN signals insufficient floating point precision.
func PValue(alg stats.Algorithm, N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	switch alg {
	case stats.Algorithm1:
		return PValue1(N, K, X, L, stat, table, tol)
	case stats.Algorithm2:
		return PValue2(N, K, X, L, stat, table, tol)
	}
	return 0, core.NewParameterError("algorithm", alg, "alg1 or alg2")
}

// PValue1 fills the complete lattice and returns one minus the probability
// of never entering the rejection region. It loses all precision once the
// p-value approaches machine epsilon and reports that as NaN.
func PValue1(N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	if err := checkLattice(N, K, X, L, stat, tol); err != nil {
		return 0, err
	}
	table, err := scratch(table, stats.Algorithm1, N, K, L)
	if err != nil {
		return 0, err
	}
	if stat == 1.0 {
		return 1.0, nil
	}
	lt := &lattice{N: N, K: K, X: X, L: L, stat: stat, tol: tol}
	foundR, ok := lt.fill(table, N, fullTable{})
	if !ok {
		return math.NaN(), nil
	}
	if !foundR {
		return 0.0, nil
	}
	pval := 1.0 - table.At(K, N-K)
	if pval < 0 {
		return math.NaN(), nil
	}
	return pval, nil
}

// PValue2 sums the probability of entering the rejection region for the first
// time over its cells, stopping once no further entry is possible. Its
// relative accuracy does not degrade for small p-values.
func PValue2(N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	if err := checkLattice(N, K, X, L, stat, tol); err != nil {
		return 0, err
	}
	table, err := scratch(table, stats.Algorithm2, N, K, L)
	if err != nil {
		return 0, err
	}
	if stat == 1.0 {
		return 1.0, nil
	}
	lt := &lattice{N: N, K: K, X: X, L: L, stat: stat, tol: tol}
	entry := &firstEntry{N: N, K: K, stat: stat, tol: tol}
	if _, ok := lt.fill(table, L, entry); !ok {
		return math.NaN(), nil
	}
	return entry.pval, nil
}

func scratch(table *stats.Table, alg stats.Algorithm, N, K, L int) (*stats.Table, error) {
	rows, cols := stats.TableDims(alg, N, K, L)
	if table == nil {
		return stats.NewTable(rows, cols)
	}
	if err := table.Fits(rows, cols); err != nil {
		return nil, err
	}
	return table, nil
}
