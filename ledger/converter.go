// Package ledger converts validated document rows into income ledger entries.
package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/schema"
	"github.com/ledgerline/taxdoc-import/utils"
)

// defaultCategory tags entries from document types with no schema category.
const defaultCategory = "other income"

// Counterparty field aliases as name/TIN pairs. The schema's counterparty
// preference picks which pair is consulted first; the other is the fallback.
var (
	employerAliases = [2]string{"employerName", "employerTIN"}
	payerAliases    = [2]string{"payerName", "payerTIN"}
)

// ConvertRows builds exactly one ledger entry per validated row. The schema
// may be nil for unknown document types; the amount then falls back to the
// first positive numeric field in sorted field-name order and the entry is
// labeled best-effort. A row whose amount cannot be resolved still yields an
// entry, with amount zero and the unresolved label.
func ConvertRows(docType string, sch *schema.Schema, rows []dto.ValidatedRow) []dto.LedgerEntry {
	entries := make([]dto.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, convertRow(docType, sch, row))
	}
	return entries
}

func convertRow(docType string, sch *schema.Schema, row dto.ValidatedRow) dto.LedgerEntry {
	category := defaultCategory
	amount := decimal.Zero
	amountSource := dto.AmountUnresolved

	if sch != nil && sch.Category != "" {
		category = sch.Category
	}

	if sch != nil && sch.AmountField != "" {
		// Known types read their designated amount field only; a missing or
		// negative value stays unresolved rather than guessing.
		if v, ok := row.Values[sch.AmountField]; ok {
			if d, numeric := numericValue(v); numeric && !d.IsNegative() {
				amount = d
				amountSource = dto.AmountDesignated
			}
		}
	} else if d, ok := firstPositiveAmount(row); ok {
		amount = d
		amountSource = dto.AmountBestEffort
	}

	name, tin := counterparty(sch, row)

	description := category
	if name != "" {
		description = fmt.Sprintf("%s from %s", category, name)
	} else if category == defaultCategory && docType != "" {
		description = fmt.Sprintf("%s (%s)", category, docType)
	}

	return dto.LedgerEntry{
		ID:               uuid.NewString(),
		Category:         category,
		Amount:           amount,
		AmountSource:     amountSource,
		CounterpartyName: name,
		CounterpartyTIN:  tin,
		Description:      description,
		RowIndex:         row.RowIndex,
	}
}

// firstPositiveAmount scans the row's fields in sorted name order and returns
// the first strictly positive numeric value.
func firstPositiveAmount(row dto.ValidatedRow) (decimal.Decimal, bool) {
	names := make([]string, 0, len(row.Values))
	for name := range row.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if d, ok := numericValue(row.Values[name]); ok && d.IsPositive() {
			return d, true
		}
	}
	return decimal.Zero, false
}

func numericValue(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case string:
		if d, err := utils.NormalizeAmount(t); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func counterparty(sch *schema.Schema, row dto.ValidatedRow) (name, tin string) {
	primary, secondary := payerAliases, employerAliases
	if sch != nil && sch.Counterparty == "employer" {
		primary, secondary = employerAliases, payerAliases
	}
	name = firstString(row, primary[0], secondary[0])
	tin = firstString(row, primary[1], secondary[1])
	return name, tin
}

func firstString(row dto.ValidatedRow, fields ...string) string {
	for _, field := range fields {
		if s := row.String(field); s != "" {
			return s
		}
	}
	return ""
}
