package stats

import (
	"fmt"

	"xlmhg/domain/core"
)

// ValidateTol checks the relative tolerance of the equality test.
func ValidateTol(tol float64) error {
	if !(tol >= 0 && tol < 1) {
		return core.NewParameterError("tol", tol, "in [0,1)")
	}
	return nil
}

// ValidateCutoffs checks the XL parameters against the list length.
func ValidateCutoffs(N, X, L int) error {
	if N < 1 {
		return core.NewParameterError("N", N, ">= 1")
	}
	if X < 1 || X > N {
		return core.NewParameterError("X", X, fmt.Sprintf(">= 1 and <= %d", N))
	}
	if L < 1 || L > N {
		return core.NewParameterError("L", L, fmt.Sprintf(">= 1 and <= %d", N))
	}
	return nil
}

// ValidateLattice checks the arguments of the p-value algorithms and bounds.
func ValidateLattice(N, K, X, L int, stat, tol float64) error {
	if err := ValidateCutoffs(N, X, L); err != nil {
		return err
	}
	if K < 0 || K > N {
		return core.NewParameterError("K", K, fmt.Sprintf(">= 0 and <= %d", N))
	}
	if !(stat > 0 && stat <= 1) {
		return core.NewParameterError("stat", stat, "in (0,1]")
	}
	return ValidateTol(tol)
}
