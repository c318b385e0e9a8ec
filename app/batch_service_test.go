package app

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal/testkit"
)

func batchItems(lists []*ranked.List) []BatchItem {
	items := make([]BatchItem, len(lists))
	for i, l := range lists {
		items[i] = BatchItem{Key: core.ListKey(fmt.Sprintf("list-%02d", i)), List: l}
	}
	return items
}

func TestBatchService_MatchesSequentialRuns(t *testing.T) {
	s, _ := newTestService(t)
	batch := NewBatchService(s, 4, s.logger)

	lists := testkit.NewListGenerator(testkit.ListGeneratorConfig{N: 60, K: 9, Seed: 11}).Batch(30)
	lists = append(lists, testkit.PaperList(), testkit.TopHeavy(80, 3))
	report, err := batch.Run(context.Background(), BatchRequest{
		Items:   batchItems(lists),
		Options: s.Options(),
		EScore:  true,
	})
	require.NoError(t, err)
	require.Len(t, report.Items, len(lists))
	assert.NotEmpty(t, report.ID)

	for i, l := range lists {
		want, err := s.Test(l, s.Options())
		require.NoError(t, err)
		got := report.Items[i]
		require.NoError(t, got.Err)
		assert.Equal(t, core.ListKey(fmt.Sprintf("list-%02d", i)), got.Key)
		assert.Equal(t, want.Cutoff, got.Result.Cutoff)
		assert.Equal(t, want.PValue, got.Result.PValue)
	}

	paper := report.Items[len(lists)-2]
	assert.InEpsilon(t, testkit.PaperPValue, paper.Result.PValue, 1e-12)
	assert.InEpsilon(t, 8.0/3.0, paper.EScore, 1e-12)

	assert.Equal(t, len(lists), report.Summary.Lists)
	assert.Equal(t, 0, report.Summary.Failed)
	assert.GreaterOrEqual(t, report.Summary.Significant, 2)
	assert.LessOrEqual(t, report.Summary.MinPValue, report.Summary.MedianPValue)
	assert.LessOrEqual(t, report.Summary.MedianPValue, report.Summary.P90PValue)
}

func TestBatchService_InvalidListsDoNotAbort(t *testing.T) {
	s, logs := newTestService(t)
	batch := NewBatchService(s, 2, s.logger)

	items := batchItems([]*ranked.List{
		testkit.PaperList(),
		{N: 10, Indices: []uint16{4, 2}},
		nil,
	})
	report, err := batch.Run(context.Background(), BatchRequest{Items: items, Options: s.Options()})
	require.NoError(t, err)

	assert.NoError(t, report.Items[0].Err)
	assert.ErrorIs(t, report.Items[1].Err, core.ErrInvalidIndices)
	assert.ErrorIs(t, report.Items[2].Err, core.ErrEmptyList)
	assert.True(t, math.IsNaN(report.Items[1].EScore))
	assert.Equal(t, 2, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Significant)
	assert.Contains(t, logs.String(), "list-01 rejected")
}

func TestBatchService_CountsImprecise(t *testing.T) {
	s, logs := newTestService(t)
	batch := NewBatchService(s, 2, s.logger)

	items := batchItems([]*ranked.List{testkit.PaperList(), testkit.TopHeavy(2000, 500)})
	report, err := batch.Run(context.Background(), BatchRequest{Items: items, Options: s.Options()})
	require.NoError(t, err)

	assert.False(t, report.Items[0].Result.Imprecise())
	assert.ErrorIs(t, report.Items[1].Result.Warning, core.ErrInsufficientPrecision)
	assert.Equal(t, 1, report.Summary.Imprecise)
	assert.Equal(t, 0, report.Summary.Failed)
	assert.Contains(t, logs.String(), "[WARN]")
}

func TestBatchService_Cancelled(t *testing.T) {
	s, _ := newTestService(t)
	batch := NewBatchService(s, 2, s.logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lists := testkit.NewListGenerator(testkit.ListGeneratorConfig{N: 30, K: 5, Seed: 1}).Batch(50)
	_, err := batch.Run(ctx, BatchRequest{Items: batchItems(lists), Options: s.Options()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchService_ScratchGrows(t *testing.T) {
	s, _ := newTestService(t)
	batch := NewBatchService(s, 1, s.logger)
	opts := s.Options()
	opts.Algorithm = stats.Algorithm1

	small := batch.scratch(nil, testkit.PaperList(), opts)
	rows, cols := small.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 16, cols)

	assert.Same(t, small, batch.scratch(small, testkit.TopHeavy(10, 3), opts))

	grown := batch.scratch(small, testkit.TopHeavy(30, 2), opts)
	rows, cols = grown.Dims()
	assert.Equal(t, 6, rows)
	assert.Equal(t, 29, cols)

	assert.Nil(t, batch.scratch(small, nil, opts))
}
