package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledgerline/taxdoc-import/dto"
)

// parseCSV reads delimited text. The first non-empty line names the columns;
// data rows are padded or truncated to the column count and fully empty lines
// are skipped. Any structural failure rejects the whole file.
func parseCSV(data []byte) (*dto.ParseResult, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	start := 0
	for start < len(records) && isRowEmpty(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, fmt.Errorf("file contains no data")
	}

	columns := cleanColumns(records[start])

	rows := make([]dto.RawRow, 0, len(records)-start-1)
	for _, record := range records[start+1:] {
		if isRowEmpty(record) {
			continue
		}
		row := make(dto.RawRow, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return newParseResult(columns, rows), nil
}
