package app

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"xlmhg/adapters/stats/direct"
	"xlmhg/adapters/stats/mhg"
	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal"
	"xlmhg/internal/testkit"
)

// MockEngine delegates to the recurrence backend unless an expectation is set.
type MockEngine struct {
	mock.Mock
	*mhg.Engine
}

func (m *MockEngine) PValue(alg stats.Algorithm, N, K, X, L int, stat float64, table *stats.Table, tol float64) (float64, error) {
	args := m.Called(alg, N, K, X, L, stat, table, tol)
	return args.Get(0).(float64), args.Error(1)
}

func newTestService(t *testing.T) (*TestService, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := internal.NewWriterLogger(internal.LogLevelWarn, &buf)
	return NewTestService(mhg.NewEngine(), logger, TestDefaults{Tol: stats.DefaultTol}), &buf
}

func ptr[T any](v T) *T {
	return &v
}

func TestTestService_PaperExample(t *testing.T) {
	s, logs := newTestService(t)

	res, err := s.TestVector(testkit.PaperVector(), s.Options())
	require.NoError(t, err)
	assert.InEpsilon(t, testkit.PaperStat, res.Stat, 1e-12)
	assert.Equal(t, testkit.PaperCutoff, res.Cutoff)
	assert.InEpsilon(t, testkit.PaperPValue, res.PValue, 1e-12)
	assert.Equal(t, stats.SourceExact, res.Source)
	assert.Equal(t, 4, res.CutoffK())
	assert.False(t, res.Imprecise())
	assert.Empty(t, logs.String())

	opts := s.Options()
	opts.X = ptr(4)
	res, err = s.Test(testkit.PaperList(), opts)
	require.NoError(t, err)
	assert.InEpsilon(t, testkit.PaperPValueX4, res.PValue, 1e-12)

	opts = s.Options()
	opts.L = ptr(6)
	opts.Algorithm = stats.Algorithm1
	res, err = s.Test(testkit.PaperList(), opts)
	require.NoError(t, err)
	assert.InEpsilon(t, testkit.PaperPValueL6, res.PValue, 1e-12)
}

func TestTestService_Policies(t *testing.T) {
	s, _ := newTestService(t)
	cases := []struct {
		name   string
		thresh float64
		policy stats.ExactPolicy
		want   float64
		source stats.PValueSource
	}{
		{"O(1) bound settles significance", 0.07, stats.ExactIfNecessary, testkit.PaperO1Bound, stats.SourceO1Bound},
		{"O(N) bound settles significance", 0.045, stats.ExactIfNecessary, testkit.PaperONBound, stats.SourceONBound},
		{"statistic above threshold", 0.01, stats.ExactIfNecessary, testkit.PaperO1Bound, stats.SourceO1Bound},
		{"always computes exact", 0.07, stats.ExactAlways, testkit.PaperPValue, stats.SourceExact},
		{"always despite large statistic", 0.01, stats.ExactAlways, testkit.PaperPValue, stats.SourceExact},
		{"if significant and significant", 0.07, stats.ExactIfSignificant, testkit.PaperPValue, stats.SourceExact},
		{"if significant via O(N) bound", 0.045, stats.ExactIfSignificant, testkit.PaperPValue, stats.SourceExact},
		{"if significant but not significant", 0.01, stats.ExactIfSignificant, testkit.PaperO1Bound, stats.SourceO1Bound},
		{"bounds inconclusive", 0.03, stats.ExactIfNecessary, testkit.PaperPValue, stats.SourceExact},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := s.Options()
			opts.PValueThresh = ptr(tc.thresh)
			opts.Policy = tc.policy
			res, err := s.Test(testkit.PaperList(), opts)
			require.NoError(t, err)
			assert.InEpsilon(t, tc.want, res.PValue, 1e-12)
			assert.Equal(t, tc.source, res.Source)
		})
	}
}

func TestTestService_Degenerate(t *testing.T) {
	s, _ := newTestService(t)

	opts := s.Options()
	opts.X = ptr(6)
	res, err := s.Test(testkit.PaperList(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Stat)
	assert.Equal(t, 0, res.Cutoff)
	assert.Equal(t, 1.0, res.PValue)
	assert.Equal(t, stats.SourceDefinition, res.Source)

	res, err = s.Test(&ranked.List{N: 10}, s.Options())
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Stat)
	assert.Equal(t, 1.0, res.PValue)

	// All ones: every cutoff has tail probability 1.
	res, err = s.TestVector([]uint8{1, 1, 1, 1}, s.Options())
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Stat)
	assert.Equal(t, 1.0, res.PValue)
}

func TestTestService_StatisticUnderflow(t *testing.T) {
	s, logs := newTestService(t)
	res, err := s.Test(testkit.TopHeavy(2000, 500), s.Options())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Stat)
	assert.Equal(t, 500, res.Cutoff)
	assert.Equal(t, 0.0, res.PValue)
	assert.Equal(t, stats.SourceUnderflow, res.Source)
	assert.ErrorIs(t, res.Warning, core.ErrInsufficientPrecision)
	assert.True(t, res.Imprecise())
	assert.Contains(t, logs.String(), "[WARN] insufficient floating point precision: test statistic below the smallest representable number")
}

func TestTestService_TinyPValue(t *testing.T) {
	s, logs := newTestService(t)
	list := testkit.TopHeavy(1000, 200)

	res, err := s.Test(list, s.Options())
	require.NoError(t, err)
	assert.InEpsilon(t, 1.5112233509292993e-216, res.Stat, 1e-12)
	assert.Equal(t, 200, res.Cutoff)
	assert.InEpsilon(t, res.Stat, res.PValue, 1e-10)
	assert.NoError(t, res.Warning)
	assert.Empty(t, logs.String())

	// Algorithm 1 cannot represent this p-value; the O(1) bound replaces it.
	opts := s.Options()
	opts.Algorithm = stats.Algorithm1
	res, err = s.Test(list, opts)
	require.NoError(t, err)
	assert.Greater(t, res.PValue, res.Stat)
	assert.Less(t, res.PValue, 1e-200)
	assert.Equal(t, stats.SourceO1Bound, res.Source)
	assert.ErrorIs(t, res.Warning, core.ErrInsufficientPrecision)
	assert.Contains(t, logs.String(), "insufficient floating point precision for calculating the exact p-value")
}

func TestTestService_ImplausibleExactValues(t *testing.T) {
	for name, bad := range map[string]float64{
		"NaN":         math.NaN(),
		"zero":        0,
		"negative":    -1e-17,
		"above bound": 0.5,
	} {
		t.Run(name, func(t *testing.T) {
			engine := &MockEngine{Engine: mhg.NewEngine()}
			engine.On("PValue", stats.Algorithm2, 20, 5, 1, 20, mock.Anything, mock.Anything, stats.DefaultTol).Return(bad, nil)

			var buf bytes.Buffer
			s := NewTestService(engine, internal.NewWriterLogger(internal.LogLevelWarn, &buf), TestDefaults{Tol: stats.DefaultTol})
			res, err := s.Test(testkit.PaperList(), s.Options())
			require.NoError(t, err)

			assert.InEpsilon(t, testkit.PaperO1Bound, res.PValue, 1e-12)
			assert.Equal(t, stats.SourceO1Bound, res.Source)
			assert.True(t, core.IsPrecisionError(res.Warning))
			assert.Contains(t, buf.String(), "[WARN]")
			engine.AssertExpectations(t)
		})
	}
}

func TestTestService_SkipPValue(t *testing.T) {
	s, _ := newTestService(t)
	opts := s.Options()
	opts.SkipPValue = true
	res, err := s.Test(testkit.PaperList(), opts)
	require.NoError(t, err)
	assert.InEpsilon(t, testkit.PaperStat, res.Stat, 1e-12)
	assert.True(t, math.IsNaN(res.PValue))
	assert.Equal(t, stats.SourceSkipped, res.Source)
}

func TestTestService_TableReuse(t *testing.T) {
	s, _ := newTestService(t)
	table, err := stats.NewTable(21, 21)
	require.NoError(t, err)

	opts := s.Options()
	opts.Table = table
	for i := 0; i < 3; i++ {
		res, err := s.Test(testkit.PaperList(), opts)
		require.NoError(t, err)
		assert.InEpsilon(t, testkit.PaperPValue, res.PValue, 1e-12)
	}

	small, err := stats.NewTable(15, 15)
	require.NoError(t, err)
	opts.Table = small
	opts.Algorithm = stats.Algorithm1
	_, err = s.Test(testkit.PaperList(), opts)
	assert.ErrorIs(t, err, core.ErrTableTooSmall)
}

func TestTestService_InvalidInput(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.Test(&ranked.List{N: 20, Indices: []uint16{18, 5, 3, 2, 0}}, s.Options())
	assert.ErrorIs(t, err, core.ErrInvalidIndices)

	_, err = s.Test(nil, s.Options())
	assert.ErrorIs(t, err, core.ErrEmptyList)

	opts := s.Options()
	opts.L = ptr(21)
	_, err = s.Test(testkit.PaperList(), opts)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	opts = s.Options()
	opts.Tol = ptr(1.0)
	_, err = s.Test(testkit.PaperList(), opts)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	opts = s.Options()
	opts.PValueThresh = ptr(-0.5)
	_, err = s.Test(testkit.PaperList(), opts)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = s.TestVector(make([]uint8, ranked.MaxLength+1), s.Options())
	assert.ErrorIs(t, err, core.ErrListTooLong)
}

func TestTestService_EScore(t *testing.T) {
	s, _ := newTestService(t)
	res, err := s.Test(testkit.PaperList(), s.Options())
	require.NoError(t, err)

	e, err := s.EScore(res)
	require.NoError(t, err)
	assert.InEpsilon(t, 8.0/3.0, e, 1e-12)

	res.EScorePValueThresh = ptr(1.0)
	e, err = s.EScore(res)
	require.NoError(t, err)
	assert.InEpsilon(t, 4.0, e, 1e-12)
}

func TestTestService_BackendsInterchangeable(t *testing.T) {
	fast, _ := newTestService(t)
	ref := NewTestService(direct.NewEngine(), internal.NewWriterLogger(internal.LogLevelError, &bytes.Buffer{}), TestDefaults{Tol: stats.DefaultTol})

	gen := testkit.NewListGenerator(testkit.ListGeneratorConfig{N: 40, K: 7, Seed: 3})
	for _, l := range gen.Batch(20) {
		opts := fast.Options()
		opts.PValueThresh = ptr(0.05)
		opts.Policy = stats.ExactIfNecessary

		a, err := fast.Test(l, opts)
		require.NoError(t, err)
		b, err := ref.Test(l, opts)
		require.NoError(t, err)

		assert.Equal(t, a.Cutoff, b.Cutoff)
		assert.Equal(t, a.Source, b.Source)
		assert.InEpsilon(t, a.Stat, b.Stat, 1e-9)
		assert.InEpsilon(t, a.PValue, b.PValue, 1e-9)
	}
}
