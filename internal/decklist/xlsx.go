package decklist

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses the first sheet of an XLSX workbook using the same
// column mapping as CSV.
func ParseXLSX(r io.Reader) ([]Row, []RowError) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, []RowError{{Line: 0, Reason: fmt.Sprintf("failed to open workbook: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, []RowError{{Line: 0, Reason: "workbook has no sheets"}}
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, []RowError{{Line: 0, Reason: fmt.Sprintf("failed to read sheet: %v", err)}}
	}

	records := make([]tableRecord, 0, len(cells))
	for i, row := range cells {
		records = append(records, tableRecord{line: i + 1, cells: row})
	}
	return parseRecords(records)
}
