// Package decklist parses user-supplied card lists for bulk import:
// plain-text decklists, CSV exports, and XLSX spreadsheets.
package decklist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Row is one parsed import row. Name is the only required field; the
// importer applies defaults for the rest.
type Row struct {
	Line      int
	Name      string
	SetName   string
	Quantity  int
	Condition string
	Language  string
	Price     float64
	ForTrade  bool
}

// RowError reports one unparseable row. Rows fail independently; a bad
// row never aborts the rest of the file.
type RowError struct {
	Line   int    `json:"line"`
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// quantityPrefix matches "<int>x <name>" and "<int> <name>".
var quantityPrefix = regexp.MustCompile(`^(\d+)\s*[xX]?\s+(.+)$`)

// ParseLine parses a single decklist line. Rows without a leading count
// default to quantity 1.
func ParseLine(line string) (Row, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Row{}, fmt.Errorf("empty line")
	}

	row := Row{Quantity: 1}
	if m := quantityPrefix.FindStringSubmatch(trimmed); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty < 1 {
			return Row{}, fmt.Errorf("invalid quantity %q", m[1])
		}
		row.Quantity = qty
		trimmed = strings.TrimSpace(m[2])
	}

	if trimmed == "" {
		return Row{}, fmt.Errorf("missing card name")
	}
	row.Name = trimmed
	return row, nil
}

// ParseText parses a plain-text decklist, one card per line. Blank lines
// and comment lines ("#" or "//") are skipped.
func ParseText(r io.Reader) ([]Row, []RowError) {
	var rows []Row
	var errs []RowError

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		row, err := ParseLine(line)
		if err != nil {
			errs = append(errs, RowError{Line: lineNo, Input: line, Reason: err.Error()})
			continue
		}
		row.Line = lineNo
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, RowError{Line: lineNo, Reason: err.Error()})
	}

	return rows, errs
}

// column name aliases accepted in CSV/XLSX headers.
var columnAliases = map[string]string{
	"name":      "name",
	"card":      "name",
	"card name": "name",
	"carta":     "name",
	"set":       "set",
	"set name":  "set",
	"edition":   "set",
	"edicion":   "set",
	"quantity":  "quantity",
	"qty":       "quantity",
	"count":     "quantity",
	"cantidad":  "quantity",
	"condition": "condition",
	"condicion": "condition",
	"language":  "language",
	"lang":      "language",
	"idioma":    "language",
	"price":     "price",
	"precio":    "price",
	"for trade": "for_trade",
	"for_trade": "for_trade",
	"trade":     "for_trade",
}

// headerIndex maps a header record to canonical column positions.
// Returns nil when the record does not look like a header.
func headerIndex(record []string) map[string]int {
	idx := make(map[string]int)
	for i, cell := range record {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := columnAliases[key]; ok {
			if _, taken := idx[canonical]; !taken {
				idx[canonical] = i
			}
		}
	}
	if _, ok := idx["name"]; !ok {
		return nil
	}
	return idx
}

func cell(record []string, idx map[string]int, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "si", "sí":
		return true
	}
	return false
}

// tableRecord is one tabular row tagged with the source line it was read
// from, so skipped or unreadable lines never shift later error reports.
type tableRecord struct {
	line  int
	cells []string
}

// parseRecords converts tabular records (from CSV or XLSX) into rows.
// With a recognized header the columns are mapped by name; without one,
// each record's first cell is treated as a decklist line with an optional
// set name in the second cell.
func parseRecords(records []tableRecord) ([]Row, []RowError) {
	var rows []Row
	var errs []RowError

	if len(records) == 0 {
		return nil, nil
	}

	idx := headerIndex(records[0].cells)
	dataStart := 0
	if idx != nil {
		dataStart = 1
	}

	for i := dataStart; i < len(records); i++ {
		record := records[i].cells
		lineNo := records[i].line

		empty := true
		for _, c := range record {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		var row Row
		var err error

		if idx != nil {
			row, err = mappedRow(record, idx)
		} else {
			row, err = ParseLine(record[0])
			if err == nil && len(record) > 1 {
				row.SetName = strings.TrimSpace(record[1])
			}
		}

		if err != nil {
			errs = append(errs, RowError{Line: lineNo, Input: strings.Join(record, ","), Reason: err.Error()})
			continue
		}
		row.Line = lineNo
		rows = append(rows, row)
	}

	return rows, errs
}

func mappedRow(record []string, idx map[string]int) (Row, error) {
	name := cell(record, idx, "name")
	if name == "" {
		return Row{}, fmt.Errorf("missing card name")
	}

	row := Row{
		Name:      name,
		SetName:   cell(record, idx, "set"),
		Quantity:  1,
		Condition: cell(record, idx, "condition"),
		Language:  cell(record, idx, "language"),
		ForTrade:  parseBool(cell(record, idx, "for_trade")),
	}

	if q := cell(record, idx, "quantity"); q != "" {
		qty, err := strconv.Atoi(q)
		if err != nil || qty < 1 {
			return Row{}, fmt.Errorf("invalid quantity %q", q)
		}
		row.Quantity = qty
	}

	if p := cell(record, idx, "price"); p != "" {
		price, err := strconv.ParseFloat(strings.TrimPrefix(p, "$"), 64)
		if err != nil || price < 0 {
			return Row{}, fmt.Errorf("invalid price %q", p)
		}
		row.Price = price
	}

	return row, nil
}
