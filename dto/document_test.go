package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocumentWageStatement(t *testing.T) {
	row := ValidatedRow{
		Values: map[string]interface{}{
			"employeeName":       "Jane Doe",
			"employerName":       "Acme Corp",
			"employerTIN":        "12-3456789",
			"wages":              decimal.NewFromInt(50000),
			"federalTaxWithheld": decimal.NewFromInt(6000),
			"retirementPlan":     true,
			"taxYear":            float64(2024),
		},
		RowIndex: 1,
	}

	doc := BuildDocument(DocTypeWageStatement, row)

	ws, ok := doc.(WageStatement)
	require.True(t, ok)
	assert.Equal(t, DocTypeWageStatement, ws.DocumentType())
	assert.Equal(t, "Jane Doe", ws.EmployeeName)
	assert.Equal(t, "Acme Corp", ws.EmployerName)
	assert.Equal(t, "12-3456789", ws.EmployerTIN)
	assert.True(t, ws.Wages.Equal(decimal.NewFromInt(50000)))
	assert.True(t, ws.FederalTaxWithheld.Equal(decimal.NewFromInt(6000)))
	assert.True(t, ws.RetirementPlan)
	assert.Equal(t, 2024, ws.TaxYear)
	assert.True(t, ws.SocialSecurityWages.IsZero())
}

func TestBuildDocumentEstimatedPayment(t *testing.T) {
	paid := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	row := ValidatedRow{
		Values: map[string]interface{}{
			"paymentDate": paid,
			"amount":      decimal.NewFromInt(2500),
			"quarter":     "Q4",
			"taxYear":     float64(2024),
		},
		RowIndex: 1,
	}

	doc := BuildDocument(DocTypeEstimatedTax, row)

	ep, ok := doc.(EstimatedPayment)
	require.True(t, ok)
	assert.Equal(t, paid, ep.PaymentDate)
	assert.True(t, ep.Amount.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "Q4", ep.Quarter)
	assert.Equal(t, 2024, ep.TaxYear)
	assert.Empty(t, ep.Jurisdiction)
}

func TestBuildDocumentUnknownType(t *testing.T) {
	row := ValidatedRow{
		Values: map[string]interface{}{
			"Amount":   decimal.NewFromInt(1200),
			"Paid":     true,
			"Customer": "Roe Ltd",
		},
		RowIndex: 3,
	}

	doc := BuildDocument(DocumentType("receipt"), row)

	ud, ok := doc.(UnstructuredDocument)
	require.True(t, ok)
	assert.Equal(t, DocTypeUnstructured, ud.DocumentType())
	assert.Equal(t, "1200", ud.Fields["Amount"])
	assert.Equal(t, "true", ud.Fields["Paid"])
	assert.Equal(t, "Roe Ltd", ud.Fields["Customer"])
	assert.Contains(t, ud.Note, "unrecognized document type")
}

func TestValidatedRowAccessorDefaults(t *testing.T) {
	row := ValidatedRow{Values: map[string]interface{}{}}

	assert.Equal(t, "", row.String("missing"))
	assert.True(t, row.Decimal("missing").IsZero())
	assert.False(t, row.Bool("missing"))
	assert.Equal(t, 0, row.Int("missing"))
	assert.True(t, row.Date("missing").IsZero())
}

func TestStringValuesFormatting(t *testing.T) {
	row := ValidatedRow{
		Values: map[string]interface{}{
			"rate":  1200.5,
			"empty": nil,
			"when":  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	got := row.StringValues()

	assert.Equal(t, "1200.5", got["rate"])
	assert.Equal(t, "", got["empty"])
	assert.Equal(t, "2025-06-15", got["when"])
}
