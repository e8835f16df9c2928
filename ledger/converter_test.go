package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/taxdoc-import/dto"
	"github.com/ledgerline/taxdoc-import/schema"
)

func TestConvertWageRow(t *testing.T) {
	sch, err := schema.ForType("wage-statement")
	require.NoError(t, err)

	rows := []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"employeeName":       "Jane Doe",
			"employerName":       "Acme Corp",
			"employerTIN":        "12-3456789",
			"wages":              decimal.NewFromInt(50000),
			"federalTaxWithheld": decimal.NewFromInt(6000),
		},
		RowIndex: 1,
	}}

	entries := ConvertRows("wage-statement", sch, rows)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "wage income", entry.Category)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, dto.AmountDesignated, entry.AmountSource)
	assert.Equal(t, "Acme Corp", entry.CounterpartyName)
	assert.Equal(t, "12-3456789", entry.CounterpartyTIN)
	assert.Equal(t, "wage income from Acme Corp", entry.Description)
	assert.Equal(t, 1, entry.RowIndex)
}

func TestConvertMissingAmountStaysUnresolved(t *testing.T) {
	sch, err := schema.ForType("wage-statement")
	require.NoError(t, err)

	entries := ConvertRows("wage-statement", sch, []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"employeeName": "Jane Doe",
			"employerName": "Acme Corp",
		},
		RowIndex: 1,
	}})

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.IsZero())
	assert.Equal(t, dto.AmountUnresolved, entries[0].AmountSource)
}

func TestConvertNegativeDesignatedAmountStaysUnresolved(t *testing.T) {
	sch, err := schema.ForType("wage-statement")
	require.NoError(t, err)

	entries := ConvertRows("wage-statement", sch, []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"employerName": "Acme Corp",
			"wages":        decimal.NewFromInt(-500),
		},
		RowIndex: 1,
	}})

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.IsZero())
	assert.Equal(t, dto.AmountUnresolved, entries[0].AmountSource)
}

func TestConvertUnknownTypeBestEffort(t *testing.T) {
	entries := ConvertRows("mystery-form", nil, []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"balance":   decimal.NewFromInt(-200),
			"dueAmount": decimal.NewFromInt(450),
			"note":      "hello",
		},
		RowIndex: 3,
	}})

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "other income", entry.Category)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, dto.AmountBestEffort, entry.AmountSource)
	assert.Equal(t, "other income (mystery-form)", entry.Description)
	assert.Equal(t, 3, entry.RowIndex)
}

func TestConvertBestEffortParsesStringAmounts(t *testing.T) {
	entries := ConvertRows("mystery-form", nil, []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"amountDue": "$1,250.00",
		},
		RowIndex: 1,
	}})

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("1250")))
	assert.Equal(t, dto.AmountBestEffort, entries[0].AmountSource)
}

func TestConvertCounterpartyFallsBackToOtherPair(t *testing.T) {
	entries := ConvertRows("mystery-form", nil, []dto.ValidatedRow{{
		Values: map[string]interface{}{
			"employerName": "Acme Corp",
			"total":        decimal.NewFromInt(900),
		},
		RowIndex: 1,
	}})

	require.Len(t, entries, 1)
	assert.Equal(t, "Acme Corp", entries[0].CounterpartyName)
	assert.Equal(t, "other income from Acme Corp", entries[0].Description)
}

func TestConvertEntryIDsUnique(t *testing.T) {
	rows := []dto.ValidatedRow{
		{Values: map[string]interface{}{"wages": decimal.NewFromInt(1)}, RowIndex: 1},
		{Values: map[string]interface{}{"wages": decimal.NewFromInt(2)}, RowIndex: 2},
	}

	entries := ConvertRows("mystery-form", nil, rows)

	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}
