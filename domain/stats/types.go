package stats

import (
	"fmt"
	"strings"
)

// DefaultTol is the relative tolerance used when comparing accumulated
// floating point values.
const DefaultTol = 1e-12

// Algorithm selects the dynamic programming procedure for the exact p-value.
type Algorithm int

const (
	// Algorithm2 tabulates only the first L ranks and accumulates the mass that
	// enters the rejection region for the first time.
	Algorithm2 Algorithm = iota
	// Algorithm1 tabulates all N ranks and reports one minus the mass that never
	// entered the rejection region.
	Algorithm1
)

func (a Algorithm) String() string {
	switch a {
	case Algorithm1:
		return "alg1"
	case Algorithm2:
		return "alg2"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts "alg1"/"1" and "alg2"/"2".
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alg1", "1", "pval1":
		return Algorithm1, nil
	case "alg2", "2", "pval2", "":
		return Algorithm2, nil
	}
	return Algorithm2, fmt.Errorf("unknown algorithm %q (want alg1 or alg2)", s)
}

// ExactPolicy decides when the exact p-value is computed although a bound
// would be enough to decide significance.
type ExactPolicy int

const (
	// ExactAlways computes the exact p-value whenever the statistic is below 1.
	ExactAlways ExactPolicy = iota
	// ExactIfNecessary reports a bound whenever it settles significance.
	ExactIfNecessary
	// ExactIfSignificant computes the exact p-value for significant tests only.
	ExactIfSignificant
)

func (p ExactPolicy) String() string {
	switch p {
	case ExactAlways:
		return "always"
	case ExactIfNecessary:
		return "if_necessary"
	case ExactIfSignificant:
		return "if_significant"
	default:
		return fmt.Sprintf("ExactPolicy(%d)", int(p))
	}
}

// ParseExactPolicy parses the names returned by ExactPolicy.String.
func ParseExactPolicy(s string) (ExactPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "":
		return ExactAlways, nil
	case "if_necessary", "if-necessary":
		return ExactIfNecessary, nil
	case "if_significant", "if-significant":
		return ExactIfSignificant, nil
	}
	return ExactAlways, fmt.Errorf("unknown exact p-value policy %q", s)
}

// PValueSource records how the reported p-value was obtained.
type PValueSource string

const (
	SourceExact      PValueSource = "exact"
	SourceO1Bound    PValueSource = "o1_bound"
	SourceONBound    PValueSource = "on_bound"
	SourceDefinition PValueSource = "definition" // stat = 1 or X > min(K, L)
	SourceUnderflow  PValueSource = "underflow"  // stat = 0
	SourceSkipped    PValueSource = "skipped"
)

// Curve holds the hypergeometric tail probability and the fold enrichment
// at every cutoff n = 0..N. Index 0 is 1.0 for both.
type Curve struct {
	PValues []float64 `json:"pvalues"`
	Folds   []float64 `json:"folds"`
}
