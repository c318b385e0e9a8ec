package mhg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/combin"

	"xlmhg/internal/testkit"
)

func TestCurve_PaperExample(t *testing.T) {
	c, err := Curve(testkit.PaperIndices(), testkit.PaperN)
	require.NoError(t, err)
	require.Len(t, c.PValues, testkit.PaperN+1)
	require.Len(t, c.Folds, testkit.PaperN+1)

	assert.Equal(t, 1.0, c.PValues[0])
	assert.Equal(t, 1.0, c.Folds[0])
	assert.InEpsilon(t, 0.25, c.PValues[1], 1e-12)
	assert.InEpsilon(t, 4.0, c.Folds[1], 1e-12)
	assert.InEpsilon(t, testkit.PaperStat, c.PValues[testkit.PaperCutoff], 1e-12)
	assert.InEpsilon(t, 1.0, c.PValues[testkit.PaperN], 1e-12)
	assert.InEpsilon(t, 1.0, c.Folds[testkit.PaperN], 1e-12)

	stat := math.Inf(1)
	for _, p := range c.PValues {
		stat = math.Min(stat, p)
	}
	assert.InEpsilon(t, testkit.PaperStat, stat, 1e-12)
}

func TestCurve_NoOnes(t *testing.T) {
	c, err := Curve(nil, 5)
	require.NoError(t, err)
	for n := 1; n <= 5; n++ {
		assert.InEpsilon(t, 1.0, c.PValues[n], 1e-12)
		assert.True(t, math.IsNaN(c.Folds[n]))
	}
}

func hypergeomPMF(k, N, K, n int) float64 {
	if k < 0 || k > K || n-k < 0 || n-k > N-K {
		return 0
	}
	return float64(combin.Binomial(K, k)) * float64(combin.Binomial(N-K, n-k)) / float64(combin.Binomial(N, n))
}

// Curve values match tail probabilities summed from exact binomial terms.
func TestCurve_MatchesTailProbability(t *testing.T) {
	list := testkit.PaperList()
	N, K := list.N, list.K()
	c, err := Curve(list.Indices, N)
	require.NoError(t, err)

	for n := 1; n <= N; n++ {
		k := list.OnesBefore(n)
		var sum float64
		for j := k; j <= K; j++ {
			sum += hypergeomPMF(j, N, K, n)
		}
		tail := TailProbability(hypergeomPMF(k, N, K, n), k, N, K, n)
		assert.InEpsilon(t, sum, tail, 1e-12, "n=%d", n)
		assert.InEpsilon(t, tail, c.PValues[n], 1e-12, "n=%d", n)
	}
}
