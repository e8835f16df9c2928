package dto

// RawRow is one record produced by a format parser or the OCR extractor:
// source column name -> scalar value (string, number, bool or nil).
type RawRow map[string]interface{}

// ParseResult is the outcome of parsing one structured input file.
type ParseResult struct {
	Success       bool     `json:"success"`
	Columns       []string `json:"columns"`
	Rows          []RawRow `json:"rows"`
	TotalRowCount int      `json:"total_row_count"`
	Preview       []RawRow `json:"preview"`
	Error         string   `json:"error,omitempty"`
}
