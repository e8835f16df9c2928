// Package parser decodes CSV, spreadsheet and JSON input files into a
// canonical tabular form: an ordered column list plus one RawRow per record.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledgerline/taxdoc-import/dto"
)

// previewRows is how many leading rows a ParseResult carries for display.
const previewRows = 5

// ParseFile dispatches on the file extension and parses data into rows.
// A positive maxSize is enforced before any parsing happens.
func ParseFile(filename string, data []byte, maxSize int64) (*dto.ParseResult, error) {
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", dto.ErrFileTooLarge, filename, len(data), maxSize)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".xlsx", ".xls":
		return parseSpreadsheet(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", dto.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func newParseResult(columns []string, rows []dto.RawRow) *dto.ParseResult {
	preview := rows
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	return &dto.ParseResult{
		Success:       true,
		Columns:       columns,
		Rows:          rows,
		TotalRowCount: len(rows),
		Preview:       preview,
	}
}

// cleanColumns trims headers and names blank ones by position.
func cleanColumns(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = h
	}
	return cleaned
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
