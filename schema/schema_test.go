package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/taxdoc-import/dto"
)

func TestTypesListsCatalogue(t *testing.T) {
	types, err := Types()

	require.NoError(t, err)
	assert.Equal(t, []string{
		"dividend-income",
		"estimated-tax-payment",
		"interest-income",
		"nonemployee-compensation",
		"wage-statement",
	}, types)
}

func TestForTypeWageStatement(t *testing.T) {
	sch, err := ForType("wage-statement")

	require.NoError(t, err)
	assert.Equal(t, "wage income", sch.Category)
	assert.Equal(t, "wages", sch.AmountField)
	assert.Equal(t, "employer", sch.Counterparty)
	require.NotEmpty(t, sch.Fields)
	assert.Equal(t, "employeeName", sch.Fields[0].Name)

	wages, ok := sch.Field("wages")
	require.True(t, ok)
	assert.Equal(t, TypeDecimal, wages.Type)
	assert.True(t, wages.Required)
	assert.Equal(t, "1", wages.Box)
}

func TestForTypeUnknown(t *testing.T) {
	_, err := ForType("receipt")

	assert.ErrorIs(t, err, dto.ErrUnknownDocumentType)
}

func TestFieldPatterns(t *testing.T) {
	sch, err := ForType("wage-statement")
	require.NoError(t, err)

	ein, ok := sch.Field("employerTIN")
	require.True(t, ok)
	assert.True(t, ein.MatchesPattern("12-3456789"))
	assert.False(t, ein.MatchesPattern("123456789"))

	ssn, ok := sch.Field("employeeSSN")
	require.True(t, ok)
	assert.True(t, ssn.MatchesPattern("987-65-4321"))
	assert.False(t, ssn.MatchesPattern("987654321"))

	// Fields without a pattern accept anything.
	name, ok := sch.Field("employeeName")
	require.True(t, ok)
	assert.True(t, name.MatchesPattern("anything at all"))
}

func TestEveryAmountFieldIsDeclared(t *testing.T) {
	types, err := Types()
	require.NoError(t, err)

	for _, docType := range types {
		sch, err := ForType(docType)
		require.NoError(t, err)
		if sch.AmountField == "" {
			continue
		}
		_, ok := sch.Field(sch.AmountField)
		assert.True(t, ok, "amount field of %s", docType)
	}
}
