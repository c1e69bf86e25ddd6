package decklist

import (
	"encoding/csv"
	"io"
)

// ParseCSV parses a CSV card list. Quoting and embedded separators are
// handled by the standard CSV reader. A header row with a "name" column
// switches on column mapping; without one, the first column is treated
// as a decklist line.
func ParseCSV(r io.Reader) ([]Row, []RowError) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are fine
	reader.TrimLeadingSpace = true

	var records []tableRecord
	line := 0
	var errs []RowError

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, RowError{Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, tableRecord{line: line, cells: record})
	}

	rows, parseErrs := parseRecords(records)
	return rows, append(errs, parseErrs...)
}
