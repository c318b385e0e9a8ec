package ports

import (
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
)

// Engine is the numeric backend of the XL-mHG test. Implementations must be
// behaviourally equivalent: same inputs, same outputs within tol, same errors.
//
// Parameter errors are returned before any computation and before any write to
// a caller-supplied table. Precision failures are reported as NaN.
type Engine interface {
	// Name identifies the backend in logs and configuration.
	Name() string

	// Stat returns the XL-mHG test statistic and the first cutoff attaining it.
	Stat(list *ranked.List, X, L int, tol float64) (stat float64, cutoff int, err error)

	// PValue returns the exact p-value of stat, or NaN if float64 precision is
	// insufficient. A nil table is allocated internally.
	PValue(alg stats.Algorithm, N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error)

	// Bound returns the O(N) upper bound on the p-value of stat.
	Bound(N, K, X, L int, stat, tol float64) (float64, error)

	// EScore returns the largest fold enrichment among eligible cutoffs whose
	// tail probability is at most hgpThresh, or NaN if there is none.
	EScore(list *ranked.List, X, L int, hgpThresh, tol float64) (float64, error)

	// Curve evaluates the tail probability and fold enrichment at every cutoff.
	Curve(list *ranked.List) (*stats.Curve, error)
}
