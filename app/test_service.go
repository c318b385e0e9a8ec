package app

import (
	"fmt"
	"math"

	"xlmhg/adapters/stats/mhg"
	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal"
	"xlmhg/ports"
)

// TestOptions controls one XL-mHG test. Nil pointers select the defaults:
// X=1, L=N, no significance threshold and the service tolerance.
type TestOptions struct {
	X            *int
	L            *int
	PValueThresh *float64
	Tol          *float64

	Policy    stats.ExactPolicy
	Algorithm stats.Algorithm
	// Table is reused as scratch space by the exact p-value algorithms.
	Table *stats.Table

	// SkipPValue computes the statistic and cutoff only.
	SkipPValue bool

	EScorePValueThresh *float64
	EScoreTol          *float64
}

// TestDefaults holds the service-wide defaults of TestOptions.
type TestDefaults struct {
	Tol       float64
	Algorithm stats.Algorithm
	Policy    stats.ExactPolicy
}

// TestService runs the XL-mHG test: statistic, bounds and, where the policy
// asks for it, the exact p-value.
type TestService struct {
	engine   ports.Engine
	logger   *internal.Logger
	defaults TestDefaults
}

// NewTestService creates a test service on top of a numeric backend
func NewTestService(engine ports.Engine, logger *internal.Logger, defaults TestDefaults) *TestService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &TestService{
		engine:   engine,
		logger:   logger,
		defaults: defaults,
	}
}

// Engine returns the numeric backend.
func (s *TestService) Engine() ports.Engine {
	return s.engine
}

// Options returns TestOptions carrying the service defaults.
func (s *TestService) Options() TestOptions {
	tol := s.defaults.Tol
	return TestOptions{
		Tol:       &tol,
		Policy:    s.defaults.Policy,
		Algorithm: s.defaults.Algorithm,
	}
}

// TestVector tests a dense 0/1 vector; every non-zero element counts as a 1.
func (s *TestService) TestVector(v []uint8, opts TestOptions) (*stats.Result, error) {
	list, err := ranked.FromVector(v)
	if err != nil {
		return nil, err
	}
	return s.Test(list, opts)
}

// Test runs the XL-mHG test on a ranked list.
func (s *TestService) Test(list *ranked.List, opts TestOptions) (*stats.Result, error) {
	if list == nil {
		return nil, core.ErrEmptyList
	}
	N, K := list.N, list.K()
	if err := ranked.ValidateIndices(N, list.Indices); err != nil {
		return nil, err
	}
	X, L := 1, N
	if opts.X != nil {
		X = *opts.X
	}
	if opts.L != nil {
		L = *opts.L
	}
	tol := s.defaults.Tol
	if opts.Tol != nil {
		tol = *opts.Tol
	}
	if err := stats.ValidateCutoffs(N, X, L); err != nil {
		return nil, err
	}
	if err := stats.ValidateTol(tol); err != nil {
		return nil, err
	}
	if t := opts.PValueThresh; t != nil && (math.IsNaN(*t) || *t < 0) {
		return nil, core.NewParameterError("pval_thresh", *t, ">= 0")
	}
	if opts.Table != nil {
		if err := opts.Table.Fits(stats.TableDims(opts.Algorithm, N, K, L)); err != nil {
			return nil, err
		}
	}

	result := &stats.Result{
		N:                  N,
		Indices:            list.Indices,
		X:                  X,
		L:                  L,
		PValueThresh:       opts.PValueThresh,
		EScorePValueThresh: opts.EScorePValueThresh,
		EScoreTol:          opts.EScoreTol,
	}

	if X > min(K, L) {
		result.Stat, result.Cutoff, result.PValue = 1.0, 0, 1.0
		result.Source = stats.SourceDefinition
		return result, nil
	}

	stat, cutoff, err := s.engine.Stat(list, X, L, tol)
	if err != nil {
		return nil, err
	}
	result.Stat, result.Cutoff = stat, cutoff

	switch {
	case opts.SkipPValue:
		result.PValue, result.Source = math.NaN(), stats.SourceSkipped
		return result, nil
	case stat == 0:
		result.Warning = fmt.Errorf("%w: test statistic below the smallest representable number (N=%d, K=%d, X=%d, L=%d, cutoff=%d)",
			core.ErrInsufficientPrecision, N, K, X, L, cutoff)
		s.logger.Warn("%v. Reporting a p-value of 0.", result.Warning)
		result.PValue, result.Source = 0.0, stats.SourceUnderflow
		return result, nil
	case stat == 1.0:
		result.PValue, result.Source = 1.0, stats.SourceDefinition
		return result, nil
	}

	if err := s.pvalue(result, list, tol, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// pvalue applies the exact p-value policy for 0 < stat < 1 and fills in the
// p-value, its source and, on a precision substitution, the warning.
func (s *TestService) pvalue(result *stats.Result, list *ranked.List, tol float64, opts TestOptions) error {
	N, K, X, L, stat := list.N, list.K(), result.X, result.L, result.Stat
	o1 := mhg.O1Bound(K, X, L, stat)
	atMost := func(a, b float64) bool {
		eq, _ := mhg.IsEqual(a, b, tol)
		return a < b || eq
	}
	use := func(pval float64, source stats.PValueSource) error {
		result.PValue, result.Source = pval, source
		return nil
	}

	if thresh := opts.PValueThresh; thresh != nil {
		switch {
		case !atMost(stat, *thresh):
			// Not significant whatever the exact value.
			if opts.Policy != stats.ExactAlways {
				return use(o1, stats.SourceO1Bound)
			}
		case atMost(o1, *thresh):
			if opts.Policy == stats.ExactIfNecessary {
				return use(o1, stats.SourceO1Bound)
			}
		default:
			on, err := s.engine.Bound(N, K, X, L, stat, tol)
			if err != nil {
				return err
			}
			if atMost(on, *thresh) && opts.Policy == stats.ExactIfNecessary {
				return use(on, stats.SourceONBound)
			}
		}
	}

	pval, err := s.engine.PValue(opts.Algorithm, N, K, X, L, stat, opts.Table, tol)
	if err != nil {
		return err
	}
	if math.IsNaN(pval) || pval <= 0 || !atMost(pval, o1) {
		result.Warning = fmt.Errorf("%w for calculating the exact p-value (N=%d, K=%d, X=%d, L=%d, %s returned %g)",
			core.ErrInsufficientPrecision, N, K, X, L, opts.Algorithm, pval)
		s.logger.Warn("%v. Using the O(1) bound %g instead.", result.Warning, o1)
		return use(o1, stats.SourceO1Bound)
	}
	return use(pval, stats.SourceExact)
}

// EScore computes the E-score of a test result. The threshold defaults to the
// result's p-value and the tolerance to the service tolerance. NaN means no
// cutoff qualified.
func (s *TestService) EScore(result *stats.Result) (float64, error) {
	thresh := result.PValue
	if result.EScorePValueThresh != nil {
		thresh = *result.EScorePValueThresh
	}
	tol := s.defaults.Tol
	if result.EScoreTol != nil {
		tol = *result.EScoreTol
	}
	return s.engine.EScore(result.List(), result.X, result.L, thresh, tol)
}

// Curve evaluates tail probabilities and fold enrichments at every cutoff.
func (s *TestService) Curve(list *ranked.List) (*stats.Curve, error) {
	return s.engine.Curve(list)
}
