package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xlmhg/adapters/api"
	"xlmhg/adapters/excel"
	"xlmhg/app"
	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal/config"
	"xlmhg/internal/container"
	"xlmhg/internal/testkit"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	var backend string
	rootCmd := &cobra.Command{
		Use:          "xlmhg",
		Short:        "XL-mHG test for enrichment at the top of ranked lists",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Numeric backend (recurrence or direct); overrides XLMHG_BACKEND")

	rootCmd.AddCommand(
		newTestCmd(&backend),
		newBatchCmd(&backend),
		newCurveCmd(&backend),
		newGenerateCmd(),
		newServeCmd(&backend),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadContainer reads the configuration and wires the services.
func loadContainer(backend string) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Test.Backend = backend
	}
	return container.New(cfg)
}

// testFlags are the per-test options shared by test and batch.
type testFlags struct {
	x, l         int
	pvalThresh   float64
	tol          float64
	exactPval    string
	algorithm    string
	skipPval     bool
	escore       bool
	escoreThresh float64
}

func (f *testFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.x, "x", "X", 1, "Minimum number of 1's above a cutoff")
	cmd.Flags().IntVarP(&f.l, "l", "L", 0, "Largest cutoff to test (default N)")
	cmd.Flags().Float64Var(&f.pvalThresh, "pval-thresh", 0, "Significance threshold used by the exact p-value policy")
	cmd.Flags().Float64Var(&f.tol, "tol", stats.DefaultTol, "Relative tolerance for comparing probabilities")
	cmd.Flags().StringVar(&f.exactPval, "exact-pval", "", "always, if_necessary or if_significant (default from XLMHG_EXACT_PVAL)")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "", "alg1 or alg2 (default from XLMHG_ALGORITHM)")
	cmd.Flags().BoolVar(&f.skipPval, "skip-pval", false, "Only compute the test statistic and cutoff")
	cmd.Flags().BoolVar(&f.escore, "escore", false, "Also compute the E-score")
	cmd.Flags().Float64Var(&f.escoreThresh, "escore-thresh", 0, "Tail probability threshold of the E-score (default the p-value)")
}

// options overrides the service defaults with the flags that were set.
func (f *testFlags) options(cmd *cobra.Command, opts app.TestOptions) (app.TestOptions, error) {
	changed := cmd.Flags().Changed
	if changed("x") {
		opts.X = &f.x
	}
	if changed("l") {
		opts.L = &f.l
	}
	if changed("pval-thresh") {
		opts.PValueThresh = &f.pvalThresh
	}
	if changed("tol") {
		opts.Tol = &f.tol
	}
	if changed("escore-thresh") {
		opts.EScorePValueThresh = &f.escoreThresh
	}
	if f.exactPval != "" {
		policy, err := stats.ParseExactPolicy(f.exactPval)
		if err != nil {
			return opts, err
		}
		opts.Policy = policy
	}
	if f.algorithm != "" {
		alg, err := stats.ParseAlgorithm(f.algorithm)
		if err != nil {
			return opts, err
		}
		opts.Algorithm = alg
	}
	opts.SkipPValue = f.skipPval
	return opts, nil
}

func newTestCmd(backend *string) *cobra.Command {
	var flags testFlags
	var n int
	var indices string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "test [list]",
		Short: "Test one ranked list for enrichment",
		Long: `Run the XL-mHG test on one ranked list, given either as a string of 0's
and 1's or as its length and the positions of its 1's.

Example: xlmhg test 10110100000000000010 --escore
         xlmhg test --n 20 --indices 0,2,3,5,18 -X 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := parseListArgs(args, n, indices)
			if err != nil {
				return err
			}
			c, err := loadContainer(*backend)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.Tests.Options())
			if err != nil {
				return err
			}
			result, err := c.Tests.Test(list, opts)
			if err != nil {
				return err
			}
			escore := math.NaN()
			if flags.escore && result.Source != stats.SourceSkipped {
				if escore, err = c.Tests.EScore(result); err != nil {
					return err
				}
			}
			if asJSON {
				resp := api.NewTestResponse(result)
				if flags.escore && !math.IsNaN(escore) {
					resp.EScore = &escore
				}
				return writeJSON(cmd, resp)
			}
			printResult(cmd, result, flags.escore, escore)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&n, "n", 0, "List length when --indices is used")
	cmd.Flags().StringVar(&indices, "indices", "", "Comma-separated positions of the 1's")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newBatchCmd(backend *string) *cobra.Command {
	var flags testFlags
	var out string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "batch [input]",
		Short: "Test every list of a CSV or Excel file",
		Long: `Test every list of a CSV or Excel file concurrently and write the results
and a summary sheet to an Excel workbook. The input needs a "list" column,
or "n" and "indices" columns, and optionally a "key" column.

Example: xlmhg batch lists.csv --out results.xlsx --escore --exact-pval if_significant --pval-thresh 0.01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(*backend)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.Tests.Options())
			if err != nil {
				return err
			}
			records, err := excel.NewDataReader(args[0]).ReadLists()
			if err != nil {
				return err
			}

			req := app.BatchRequest{
				Items:   make([]app.BatchItem, len(records)),
				Options: opts,
				Alpha:   alpha,
				EScore:  flags.escore,
			}
			for i, rec := range records {
				req.Items[i] = app.BatchItem{Key: rec.Key, List: rec.List}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			report, err := c.Batch.Run(ctx, req)
			if err != nil {
				return err
			}

			rows := make([]excel.ResultRow, len(report.Items))
			for i, it := range report.Items {
				rows[i] = excel.ResultRow{Key: it.Key, Result: it.Result, EScore: it.EScore, Err: it.Err}
			}
			if err := excel.WriteResults(out, rows, summaryEntries(report, alpha)); err != nil {
				return err
			}
			s := report.Summary
			fmt.Fprintf(cmd.OutOrStdout(), "Batch %s: %d lists, %d significant at %g, %d failed (%dms)\nResults written to %s\n",
				report.ID, s.Lists, s.Significant, alpha, s.Failed, report.RuntimeMs, out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "results.xlsx", "Output workbook")
	cmd.Flags().Float64Var(&alpha, "alpha", app.DefaultAlpha, "Significance level of the summary")
	return cmd
}

func newCurveCmd(backend *string) *cobra.Command {
	var out string
	var n int
	var indices string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "curve [list]",
		Short: "Print tail probabilities and fold enrichments at every cutoff",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := parseListArgs(args, n, indices)
			if err != nil {
				return err
			}
			c, err := loadContainer(*backend)
			if err != nil {
				return err
			}
			curve, err := c.Tests.Curve(list)
			if err != nil {
				return err
			}
			switch {
			case out != "":
				return excel.WriteCurve(out, core.ListKey(list.String()), curve)
			case asJSON:
				return writeJSON(cmd, api.NewCurveResponse(list.N, list.K(), curve))
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "cutoff\thgp\tfold")
			for i := range curve.PValues {
				fmt.Fprintf(w, "%d\t%.4g\t%.3f\n", i, curve.PValues[i], curve.Folds[i])
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the curve to this workbook instead of stdout")
	cmd.Flags().IntVar(&n, "n", 0, "List length when --indices is used")
	cmd.Flags().StringVar(&indices, "indices", "", "Comma-separated positions of the 1's")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the curve as JSON")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var gen testkit.ListGeneratorConfig
	var count int
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write random ranked lists for batch runs",
		Long: `Draw ranked lists uniformly among those of length n with k 1's and write
them in the layout read by "xlmhg batch".

Example: xlmhg generate --n 1000 --k 50 --count 200 --seed 42 --out lists.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gen.N < 1 || gen.N > ranked.MaxLength {
				return core.NewParameterError("n", gen.N, fmt.Sprintf(">= 1 and <= %d", ranked.MaxLength))
			}
			if gen.K < 0 || gen.K > gen.N {
				return core.NewParameterError("k", gen.K, fmt.Sprintf(">= 0 and <= %d", gen.N))
			}
			generator := testkit.NewListGenerator(gen)
			records := make([]excel.ListRecord, count)
			for i := range records {
				records[i] = excel.ListRecord{
					Key:  core.ListKey(fmt.Sprintf("random-%d", i+1)),
					List: generator.Next(),
				}
			}
			if err := excel.WriteLists(out, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d lists (N=%d, K=%d, seed %d) written to %s\n",
				count, gen.N, gen.K, gen.Seed, out)
			return nil
		},
	}

	cmd.Flags().IntVar(&gen.N, "n", 1000, "List length")
	cmd.Flags().IntVar(&gen.K, "k", 50, "Number of 1's per list")
	cmd.Flags().Int64Var(&gen.Seed, "seed", 42, "Random seed")
	cmd.Flags().IntVar(&count, "count", 100, "Number of lists")
	cmd.Flags().StringVarP(&out, "out", "o", "lists.xlsx", "Output workbook")
	return cmd
}

func newServeCmd(backend *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the XL-mHG test over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(*backend)
			if err != nil {
				return err
			}
			if port == "" {
				port = c.Config.Server.Port
			}
			return c.Server().Start(":" + port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from PORT)")
	return cmd
}

// parseListArgs reads a list from a 0/1 argument or from --n and --indices.
func parseListArgs(args []string, n int, indices string) (*ranked.List, error) {
	if len(args) == 1 {
		return ranked.Parse(args[0])
	}
	if n == 0 {
		return nil, core.ErrEmptyList
	}
	var positions []uint16
	for i, f := range strings.FieldsFunc(indices, func(r rune) bool { return r == ',' || r == ' ' }) {
		idx, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, core.NewIndicesError(i, fmt.Sprintf("%q is not a 16-bit index", f))
		}
		positions = append(positions, uint16(idx))
	}
	return ranked.FromIndices(n, positions)
}

func printResult(cmd *cobra.Command, r *stats.Result, withEScore bool, escore float64) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "N, K\t%d, %d\n", r.N, r.K())
	fmt.Fprintf(w, "X, L\t%d, %d\n", r.X, r.L)
	fmt.Fprintf(w, "stat\t%.6g\n", r.Stat)
	fmt.Fprintf(w, "cutoff\t%d (%d ones)\n", r.Cutoff, r.CutoffK())
	fmt.Fprintf(w, "pval\t%.6g (%s)\n", r.PValue, r.Source)
	if withEScore {
		fmt.Fprintf(w, "escore\t%.4g\n", escore)
	}
	if r.Warning != nil {
		fmt.Fprintf(w, "warning\t%v\n", r.Warning)
	}
	w.Flush()
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func summaryEntries(report *app.BatchReport, alpha float64) []excel.SummaryEntry {
	s := report.Summary
	return []excel.SummaryEntry{
		{Name: "batch_id", Value: report.ID.String()},
		{Name: "lists", Value: s.Lists},
		{Name: "failed", Value: s.Failed},
		{Name: "alpha", Value: alpha},
		{Name: "significant", Value: s.Significant},
		{Name: "imprecise", Value: s.Imprecise},
		{Name: "min_pval", Value: s.MinPValue},
		{Name: "median_pval", Value: s.MedianPValue},
		{Name: "p90_pval", Value: s.P90PValue},
		{Name: "runtime_ms", Value: report.RuntimeMs},
	}
}
