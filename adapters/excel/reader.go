package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/internal/errors"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the first sheet of an Excel file, or a CSV file, into rows
// keyed by the lower-cased header.
func (r *DataReader) ReadData() (*ExcelData, error) {
	if _, err := os.Stat(r.filePath); err != nil {
		return nil, errors.IOError(r.filePath, err)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", r.filePath))
	}
	return r.processRows(rows), nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to read CSV file %s: %w", r.filePath, err))
	}
	log.Printf("[DataReader] CSV file read (%d rows)", len(rows))
	return rows, nil
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}
	return &ExcelData{Headers: headers, Rows: dataRows}
}

// ReadLists reads one ranked list per data row. Rows without a key are named
// after their row number.
func (r *DataReader) ReadLists() ([]ListRecord, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if !hasHeader(data, ColumnList) && !(hasHeader(data, ColumnN) && hasHeader(data, ColumnIndices)) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s needs a %q column or %q and %q columns", r.filePath, ColumnList, ColumnN, ColumnIndices))
	}

	records := make([]ListRecord, 0, len(data.Rows))
	for i, row := range data.Rows {
		rowNum := i + 2
		list, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", r.filePath, rowNum)
		}
		key, err := core.ParseListKey(row[ColumnKey])
		if err != nil {
			key = core.ListKey(fmt.Sprintf("row-%d", rowNum))
		}
		records = append(records, ListRecord{Key: key, List: list})
	}
	log.Printf("[DataReader] %d lists read from %s", len(records), r.filePath)
	return records, nil
}

func parseRow(row RawRowData) (*ranked.List, error) {
	if row[ColumnIndices] == "" && row[ColumnN] == "" {
		return ranked.Parse(row[ColumnList])
	}
	n, err := strconv.Atoi(row[ColumnN])
	if err != nil {
		return nil, core.NewParameterError("n", row[ColumnN], "an integer")
	}
	fields := strings.FieldsFunc(row[ColumnIndices], func(r rune) bool {
		return r == ' ' || r == ';' || r == ','
	})
	indices := make([]uint16, len(fields))
	for i, f := range fields {
		idx, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, core.NewIndicesError(i, fmt.Sprintf("%q is not a 16-bit index", f))
		}
		indices[i] = uint16(idx)
	}
	return ranked.FromIndices(n, indices)
}

func hasHeader(data *ExcelData, name string) bool {
	for _, h := range data.Headers {
		if h == name {
			return true
		}
	}
	return false
}
