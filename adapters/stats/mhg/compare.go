// Package mhg implements the XL-mHG test statistic, its exact p-value, the
// O(1) and O(N) p-value bounds and the E-score with recurrence relations over
// hypergeometric probabilities.
package mhg

import (
	"math"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
)

// IsEqual is a ratio test for floating point equality: a and b are equal if
// they are identical or differ by at most tol times the larger magnitude.
func IsEqual(a, b, tol float64) (bool, error) {
	if err := checkTol(tol); err != nil {
		return false, err
	}
	return isEqual(a, b, tol), nil
}

func isEqual(a, b, tol float64) bool {
	return a == b || math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

// atMost is "a <= b" with ties decided by the ratio test.
func atMost(a, b, tol float64) bool {
	return a < b || isEqual(a, b, tol)
}

func checkTol(tol float64) error {
	return stats.ValidateTol(tol)
}

func checkXL(N, X, L int) error {
	return stats.ValidateCutoffs(N, X, L)
}

func checkLattice(N, K, X, L int, stat, tol float64) error {
	return stats.ValidateLattice(N, K, X, L, stat, tol)
}

func checkList(list *ranked.List) error {
	if list == nil {
		return core.ErrEmptyList
	}
	return ranked.ValidateIndices(list.N, list.Indices)
}
