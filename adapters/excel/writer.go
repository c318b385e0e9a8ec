package excel

import (
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"xlmhg/domain/core"
	"xlmhg/domain/stats"
	"xlmhg/internal/errors"
)

// Sheet names of the workbooks written by this package.
const (
	SheetResults = "Results"
	SheetSummary = "Summary"
	SheetCurve   = "Curve"
	SheetLists   = "Lists"
)

// ResultRow is one line of the results sheet. Err replaces Result for
// rejected lists.
type ResultRow struct {
	Key    core.ListKey
	Result *stats.Result
	EScore float64
	Err    error
}

// SummaryEntry is one name/value line of the summary sheet.
type SummaryEntry struct {
	Name  string
	Value interface{}
}

var resultHeader = []interface{}{
	"key", "n", "k", "x", "l", "stat", "cutoff", "cutoff_k", "pval", "pval_source", "escore", "hash", "error", "warning",
}

// WriteResults writes test results, and a summary sheet if entries are given,
// to a new workbook at path.
func WriteResults(path string, rows []ResultRow, summary []SummaryEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetResults); err != nil {
		return errors.IOError(path, err)
	}
	if err := setRow(f, SheetResults, 1, resultHeader); err != nil {
		return errors.IOError(path, err)
	}
	for i, row := range rows {
		if err := setRow(f, SheetResults, i+2, resultValues(row)); err != nil {
			return errors.IOError(path, err)
		}
	}

	if len(summary) > 0 {
		if _, err := f.NewSheet(SheetSummary); err != nil {
			return errors.IOError(path, err)
		}
		for i, entry := range summary {
			if err := setRow(f, SheetSummary, i+1, []interface{}{entry.Name, cellValue(entry.Value)}); err != nil {
				return errors.IOError(path, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

// WriteCurve writes the per-cutoff tail probabilities and fold enrichments of
// one list to a new workbook at path.
func WriteCurve(path string, key core.ListKey, curve *stats.Curve) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCurve); err != nil {
		return errors.IOError(path, err)
	}
	if err := setRow(f, SheetCurve, 1, []interface{}{"cutoff", "hgp", "fold_enrichment", key.String()}); err != nil {
		return errors.IOError(path, err)
	}
	for n := range curve.PValues {
		values := []interface{}{n, cellValue(curve.PValues[n]), cellValue(curve.Folds[n])}
		if err := setRow(f, SheetCurve, n+2, values); err != nil {
			return errors.IOError(path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

// WriteLists writes ranked lists in the key/n/indices layout read by
// DataReader.ReadLists.
func WriteLists(path string, records []ListRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetLists); err != nil {
		return errors.IOError(path, err)
	}
	if err := setRow(f, SheetLists, 1, []interface{}{ColumnKey, ColumnN, ColumnIndices}); err != nil {
		return errors.IOError(path, err)
	}
	for i, rec := range records {
		indices := make([]string, len(rec.List.Indices))
		for j, idx := range rec.List.Indices {
			indices[j] = strconv.Itoa(int(idx))
		}
		values := []interface{}{rec.Key.String(), rec.List.N, strings.Join(indices, " ")}
		if err := setRow(f, SheetLists, i+2, values); err != nil {
			return errors.IOError(path, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return errors.IOError(path, err)
	}
	return nil
}

func resultValues(row ResultRow) []interface{} {
	if row.Result == nil {
		msg := ""
		if row.Err != nil {
			msg = row.Err.Error()
		}
		return []interface{}{row.Key.String(), "", "", "", "", "", "", "", "", "", "", "", msg, ""}
	}
	r := row.Result
	warning := ""
	if r.Warning != nil {
		warning = r.Warning.Error()
	}
	return []interface{}{
		row.Key.String(), r.N, r.K(), r.X, r.L,
		cellValue(r.Stat), r.Cutoff, r.CutoffK(), cellValue(r.PValue), string(r.Source),
		cellValue(row.EScore), r.Hash().String(), "", warning,
	}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// cellValue keeps NaN out of numeric cells.
func cellValue(v interface{}) interface{} {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return "NaN"
	}
	return v
}
