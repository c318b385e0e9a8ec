package app

import (
	"context"
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal"
)

// DefaultAlpha is the significance level of batch summaries.
const DefaultAlpha = 0.05

// BatchItem is one named list of a batch.
type BatchItem struct {
	Key  core.ListKey
	List *ranked.List
}

// BatchRequest defines the inputs of a batch run
type BatchRequest struct {
	Items   []BatchItem
	Options TestOptions
	// Alpha is the significance level used for the summary; DefaultAlpha if zero.
	Alpha float64
	// EScore also computes the E-score of every result.
	EScore bool
}

// BatchItemResult is the outcome for one list. Err is set instead of Result
// when the list was rejected.
type BatchItemResult struct {
	Key    core.ListKey
	Result *stats.Result
	EScore float64
	Err    error
}

// BatchSummary aggregates the p-values of a batch.
type BatchSummary struct {
	Lists        int
	Failed       int
	Significant  int
	Imprecise    int // p-values limited by float64 precision
	MinPValue    float64
	MedianPValue float64
	P90PValue    float64
}

// BatchReport contains the complete output of a batch run
type BatchReport struct {
	ID        core.BatchID
	Items     []BatchItemResult
	Summary   BatchSummary
	RuntimeMs int64
}

// BatchService tests many lists concurrently. Each worker owns one table that
// grows to the largest list it has seen.
type BatchService struct {
	tests   *TestService
	workers int
	logger  *internal.Logger
}

// NewBatchService creates a batch service with a fixed number of workers
func NewBatchService(tests *TestService, workers int, logger *internal.Logger) *BatchService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchService{
		tests:   tests,
		workers: workers,
		logger:  logger,
	}
}

// Run tests every item of the request. Invalid lists are reported per item;
// only cancellation of ctx aborts the batch.
func (s *BatchService) Run(ctx context.Context, req BatchRequest) (*BatchReport, error) {
	startTime := time.Now()
	report := &BatchReport{
		ID:    core.BatchID(core.NewID()),
		Items: make([]BatchItemResult, len(req.Items)),
	}
	workers := min(s.workers, max(len(req.Items), 1))
	s.logger.Info("Batch %s: testing %d lists with %d workers (%s, %s)",
		report.ID, len(req.Items), workers, req.Options.Algorithm, req.Options.Policy)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	g.Go(func() error {
		defer close(jobs)
		for i := range req.Items {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var table *stats.Table
			for i := range jobs {
				item := req.Items[i]
				table = s.scratch(table, item.List, req.Options)
				report.Items[i] = s.runOne(item, req, table)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	alpha := req.Alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	report.Summary = summarize(report.Items, alpha)
	report.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Info("Batch %s: %d significant at %.3g, %d failed, %dms",
		report.ID, report.Summary.Significant, alpha, report.Summary.Failed, report.RuntimeMs)
	return report, nil
}

func (s *BatchService) runOne(item BatchItem, req BatchRequest, table *stats.Table) BatchItemResult {
	out := BatchItemResult{Key: item.Key, EScore: math.NaN()}
	opts := req.Options
	opts.Table = table
	res, err := s.tests.Test(item.List, opts)
	if err != nil {
		s.logger.Warn("Batch list %s rejected: %v", item.Key, err)
		out.Err = err
		return out
	}
	out.Result = res
	if req.EScore && !math.IsNaN(res.PValue) {
		if out.EScore, err = s.tests.EScore(res); err != nil {
			out.Err = err
		}
	}
	return out
}

// scratch returns a table large enough for the list, reusing t when it fits.
// Invalid lists get no table; the test reports them.
func (s *BatchService) scratch(t *stats.Table, list *ranked.List, opts TestOptions) *stats.Table {
	if list == nil || ranked.ValidateIndices(list.N, list.Indices) != nil {
		return nil
	}
	L := list.N
	if opts.L != nil && *opts.L >= 1 && *opts.L <= list.N {
		L = *opts.L
	}
	rows, cols := stats.TableDims(opts.Algorithm, list.N, list.K(), L)
	if t != nil {
		if t.Fits(rows, cols) == nil {
			return t
		}
		r, c := t.Dims()
		rows, cols = max(rows, r), max(cols, c)
	}
	grown, err := stats.NewTable(rows, cols)
	if err != nil {
		return nil
	}
	return grown
}

func summarize(items []BatchItemResult, alpha float64) BatchSummary {
	summary := BatchSummary{Lists: len(items)}
	var pvals []float64
	for _, it := range items {
		if it.Result == nil {
			summary.Failed++
			continue
		}
		if it.Result.Imprecise() {
			summary.Imprecise++
		}
		if math.IsNaN(it.Result.PValue) {
			continue
		}
		pvals = append(pvals, it.Result.PValue)
		if it.Result.Significant(alpha, stats.DefaultTol) {
			summary.Significant++
		}
	}
	if len(pvals) == 0 {
		return summary
	}
	summary.MinPValue, _ = mstats.Min(pvals)
	summary.MedianPValue, _ = mstats.Median(pvals)
	summary.P90PValue, _ = mstats.Percentile(pvals, 90)
	return summary
}
