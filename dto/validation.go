package dto

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError describes one failed field check. Row is 1-based and counts
// data rows in original file order.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// ValidatedRow holds typed values keyed by target field name, plus the raw
// row it was built from.
type ValidatedRow struct {
	Values   map[string]interface{} `json:"values"`
	Raw      RawRow                 `json:"raw"`
	RowIndex int                    `json:"row_index"`
}

// String returns the field as a string, or "" when absent or not a string.
func (r ValidatedRow) String(field string) string {
	if s, ok := r.Values[field].(string); ok {
		return s
	}
	return ""
}

// Decimal returns the field as a decimal, accepting plain numbers too.
func (r ValidatedRow) Decimal(field string) decimal.Decimal {
	switch v := r.Values[field].(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

// Bool returns the field as a bool, or false when absent.
func (r ValidatedRow) Bool(field string) bool {
	if b, ok := r.Values[field].(bool); ok {
		return b
	}
	return false
}

// Int returns the field truncated to an int, or 0 when absent.
func (r ValidatedRow) Int(field string) int {
	switch v := r.Values[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Date returns the field as a time, or the zero time when absent.
func (r ValidatedRow) Date(field string) time.Time {
	if t, ok := r.Values[field].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// StringValues renders every typed value back to a display string.
func (r ValidatedRow) StringValues() map[string]string {
	out := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		out[k] = formatValue(v)
	}
	return out
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case decimal.Decimal:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ValidationResult is the outcome of validating every row of one document
// against its schema and mapping.
type ValidationResult struct {
	Success        bool              `json:"success"`
	ProcessedCount int               `json:"processed_count"`
	Errors         []ValidationError `json:"errors"`
	Rows           []ValidatedRow    `json:"rows"`
}
