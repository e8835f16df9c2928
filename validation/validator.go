// Package validation coerces mapped row values to their declared field types
// and collects per-row validation errors.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/logger"
	"github.com/ledgerline/taxdoc-import/schema"
	"github.com/ledgerline/taxdoc-import/utils"
)

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// Validator checks raw rows against one schema and mapping pair.
type Validator struct {
	schema       *schema.Schema
	targetSource map[string]string // target field -> source column
	log          *logger.Logger
}

// NewValidator builds a validator for the given source -> target mapping.
// Every target must exist in the schema and no target may be claimed twice.
func NewValidator(sch *schema.Schema, mapping map[string]string, log *logger.Logger) (*Validator, error) {
	if log == nil {
		log = logger.Default()
	}

	targetSource := make(map[string]string, len(mapping))
	for source, target := range mapping {
		if _, ok := sch.Field(target); !ok {
			return nil, fmt.Errorf("unknown target field %q for document type %q", target, sch.Type)
		}
		if prev, dup := targetSource[target]; dup {
			return nil, fmt.Errorf("%w: %q mapped from both %q and %q", dto.ErrDuplicateTarget, target, prev, source)
		}
		targetSource[target] = source
	}

	return &Validator{schema: sch, targetSource: targetSource, log: log}, nil
}

// Validate coerces every mapped value of every row. Rows are numbered from 1
// in data order, matching the original file. A row with any error is excluded
// from the typed output; its errors are still reported. Unmapped fields are
// not checked, required or not.
func (v *Validator) Validate(rows []dto.RawRow) *dto.ValidationResult {
	result := &dto.ValidationResult{
		ProcessedCount: len(rows),
		Errors:         []dto.ValidationError{},
		Rows:           []dto.ValidatedRow{},
	}

	for i, raw := range rows {
		rowNum := i + 1
		values := make(map[string]interface{}, len(v.targetSource))
		var rowErrs []dto.ValidationError

		for fi := range v.schema.Fields {
			fd := &v.schema.Fields[fi]
			source, mapped := v.targetSource[fd.Name]
			if !mapped {
				continue
			}

			str := strings.TrimSpace(stringify(raw[source]))
			if str == "" {
				if fd.Required {
					rowErrs = append(rowErrs, dto.ValidationError{
						Row:     rowNum,
						Field:   fd.Name,
						Message: fmt.Sprintf("required field %q is empty", fd.Name),
					})
				}
				continue
			}

			typed, err := v.coerce(fd, raw[source], str)
			if err != nil {
				rowErrs = append(rowErrs, dto.ValidationError{
					Row:     rowNum,
					Field:   fd.Name,
					Message: err.Error(),
					Value:   str,
				})
				continue
			}
			values[fd.Name] = typed
		}

		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}

		result.Rows = append(result.Rows, dto.ValidatedRow{
			Values:   values,
			Raw:      raw,
			RowIndex: rowNum,
		})
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (v *Validator) coerce(fd *schema.FieldDefinition, raw interface{}, str string) (interface{}, error) {
	switch fd.Type {
	case schema.TypeNumber:
		n, err := toNumber(raw, str)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", str)
		}
		if err := checkRange(fd, n); err != nil {
			return nil, err
		}
		return n, nil

	case schema.TypeDecimal:
		d, err := utils.NormalizeAmount(str)
		if err != nil {
			return nil, fmt.Errorf("%q is not a decimal amount", str)
		}
		if err := checkDecimalRange(fd, d); err != nil {
			return nil, err
		}
		return d, nil

	case schema.TypeBoolean:
		return toBool(raw, str), nil

	case schema.TypeDate:
		return parseDate(str)

	case schema.TypeChoice:
		if len(fd.Choices) > 0 && !containsString(fd.Choices, str) {
			v.log.WithField("field", fd.Name).Debugf("value %q is not among the declared choices", str)
		}
		if !fd.MatchesPattern(str) {
			return nil, fmt.Errorf("does not match required pattern %s", fd.Pattern)
		}
		return str, nil

	default: // schema.TypeText
		if !fd.MatchesPattern(str) {
			return nil, fmt.Errorf("does not match required pattern %s", fd.Pattern)
		}
		return str, nil
	}
}

func checkRange(fd *schema.FieldDefinition, n float64) error {
	if fd.Min != nil && n < *fd.Min {
		return fmt.Errorf("value %v is below the minimum %v", n, *fd.Min)
	}
	if fd.Max != nil && n > *fd.Max {
		return fmt.Errorf("value %v is above the maximum %v", n, *fd.Max)
	}
	return nil
}

func checkDecimalRange(fd *schema.FieldDefinition, d decimal.Decimal) error {
	if fd.Min != nil && d.LessThan(decimal.NewFromFloat(*fd.Min)) {
		return fmt.Errorf("value %s is below the minimum %v", d, *fd.Min)
	}
	if fd.Max != nil && d.GreaterThan(decimal.NewFromFloat(*fd.Max)) {
		return fmt.Errorf("value %s is above the maximum %v", d, *fd.Max)
	}
	return nil
}

func toNumber(raw interface{}, str string) (float64, error) {
	if f, ok := raw.(float64); ok {
		return f, nil
	}
	return strconv.ParseFloat(str, 64)
}

func toBool(raw interface{}, str string) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	switch strings.ToLower(str) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func parseDate(str string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", str)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
