package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerline/taxdoc-import/dto"
)

// parseSpreadsheet reads the first sheet of a workbook. The first non-empty
// row names the columns; missing trailing cells become nil values and blank
// rows are dropped.
func parseSpreadsheet(data []byte) (*dto.ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	start := 0
	for start < len(records) && isRowEmpty(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, fmt.Errorf("spreadsheet contains no data")
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
				row[col] = nil
			}
		}
		rows = append(rows, row)
	}

	return newParseResult(columns, rows), nil
}
