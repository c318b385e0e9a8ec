package excel

import (
	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
)

// RawRowData represents a row of raw spreadsheet data as header-keyed strings
type RawRowData map[string]string

// ExcelData represents a complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// ListRecord is one named ranked list read from a file
type ListRecord struct {
	Key  core.ListKey
	List *ranked.List
}

// Column names of list files. A row holds either a 0/1 string in "list", or
// the length in "n" and the positions of the ones in "indices".
const (
	ColumnKey     = "key"
	ColumnList    = "list"
	ColumnN       = "n"
	ColumnIndices = "indices"
)
