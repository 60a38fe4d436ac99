package parser

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readCSV reads all rows, tolerating ragged record lengths and a UTF-8
// BOM on the first header cell.
func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func openXLSX(data []byte) (*excelize.File, error) {
	return excelize.OpenReader(bytes.NewReader(data))
}

// sheetRows pulls every row of one sheet as strings.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	return f.GetRows(sheet)
}

// cell returns the trimmed value at index i, or "" when the row is
// shorter than that.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// headerIndex maps lowercased header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// lookup fetches a cell by lowercased header name; missing columns read
// as empty.
func lookup(idx map[string]int, row []string, name string) string {
	i, ok := idx[name]
	if !ok {
		return ""
	}
	return cell(row, i)
}

// rawRow renders a row for the audit trail on each stored line.
func rawRow(header, row []string) string {
	var b strings.Builder
	for i, v := range row {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			b.WriteString(strings.TrimSpace(header[i]))
			b.WriteString("=")
		}
		b.WriteString(v)
	}
	return b.String()
}

func hasSheet(f *excelize.File, name string) bool {
	for _, s := range f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}
