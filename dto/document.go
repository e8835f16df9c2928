package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies a supported tax document schema.
type DocumentType string

const (
	DocTypeWageStatement   DocumentType = "wage-statement"
	DocTypeNonemployeeComp DocumentType = "nonemployee-compensation"
	DocTypeInterestIncome  DocumentType = "interest-income"
	DocTypeDividendIncome  DocumentType = "dividend-income"
	DocTypeEstimatedTax    DocumentType = "estimated-tax-payment"
	DocTypeUnstructured    DocumentType = "unstructured"
)

// TaxDocument is implemented by every typed document variant.
type TaxDocument interface {
	DocumentType() DocumentType
}

// WageStatement is a W-2 style annual wage report.
type WageStatement struct {
	EmployeeName              string          `json:"employee_name"`
	EmployeeSSN               string          `json:"employee_ssn,omitempty"`
	EmployerName              string          `json:"employer_name"`
	EmployerTIN               string          `json:"employer_tin,omitempty"`
	Wages                     decimal.Decimal `json:"wages"`
	FederalTaxWithheld        decimal.Decimal `json:"federal_tax_withheld"`
	SocialSecurityWages       decimal.Decimal `json:"social_security_wages"`
	SocialSecurityTaxWithheld decimal.Decimal `json:"social_security_tax_withheld"`
	MedicareWages             decimal.Decimal `json:"medicare_wages"`
	MedicareTaxWithheld       decimal.Decimal `json:"medicare_tax_withheld"`
	StateWages                decimal.Decimal `json:"state_wages"`
	StateTaxWithheld          decimal.Decimal `json:"state_tax_withheld"`
	RetirementPlan            bool            `json:"retirement_plan"`
	TaxYear                   int             `json:"tax_year,omitempty"`
}

func (WageStatement) DocumentType() DocumentType { return DocTypeWageStatement }

// NonemployeeComp is a 1099-NEC style contractor payment report.
type NonemployeeComp struct {
	PayerName               string          `json:"payer_name"`
	PayerTIN                string          `json:"payer_tin,omitempty"`
	RecipientName           string          `json:"recipient_name"`
	RecipientTIN            string          `json:"recipient_tin,omitempty"`
	NonemployeeCompensation decimal.Decimal `json:"nonemployee_compensation"`
	FederalTaxWithheld      decimal.Decimal `json:"federal_tax_withheld"`
	DirectSales             bool            `json:"direct_sales"`
	TaxYear                 int             `json:"tax_year,omitempty"`
}

func (NonemployeeComp) DocumentType() DocumentType { return DocTypeNonemployeeComp }

// InterestIncome is a 1099-INT style interest report.
type InterestIncome struct {
	PayerName              string          `json:"payer_name"`
	PayerTIN               string          `json:"payer_tin,omitempty"`
	RecipientName          string          `json:"recipient_name"`
	RecipientTIN           string          `json:"recipient_tin,omitempty"`
	InterestIncome         decimal.Decimal `json:"interest_income"`
	EarlyWithdrawalPenalty decimal.Decimal `json:"early_withdrawal_penalty"`
	USSavingsBondInterest  decimal.Decimal `json:"us_savings_bond_interest"`
	FederalTaxWithheld     decimal.Decimal `json:"federal_tax_withheld"`
	TaxExemptInterest      decimal.Decimal `json:"tax_exempt_interest"`
	TaxYear                int             `json:"tax_year,omitempty"`
}

func (InterestIncome) DocumentType() DocumentType { return DocTypeInterestIncome }

// DividendIncome is a 1099-DIV style dividend report.
type DividendIncome struct {
	PayerName          string          `json:"payer_name"`
	PayerTIN           string          `json:"payer_tin,omitempty"`
	RecipientName      string          `json:"recipient_name"`
	RecipientTIN       string          `json:"recipient_tin,omitempty"`
	OrdinaryDividends  decimal.Decimal `json:"ordinary_dividends"`
	QualifiedDividends decimal.Decimal `json:"qualified_dividends"`
	TotalCapitalGain   decimal.Decimal `json:"total_capital_gain"`
	FederalTaxWithheld decimal.Decimal `json:"federal_tax_withheld"`
	TaxYear            int             `json:"tax_year,omitempty"`
}

func (DividendIncome) DocumentType() DocumentType { return DocTypeDividendIncome }

// EstimatedPayment is one quarterly estimated tax payment.
type EstimatedPayment struct {
	PaymentDate        time.Time       `json:"payment_date"`
	Amount             decimal.Decimal `json:"amount"`
	Quarter            string          `json:"quarter"`
	TaxYear            int             `json:"tax_year"`
	Jurisdiction       string          `json:"jurisdiction,omitempty"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	ConfirmationNumber string          `json:"confirmation_number,omitempty"`
}

func (EstimatedPayment) DocumentType() DocumentType { return DocTypeEstimatedTax }

// UnstructuredDocument holds whatever was recovered from a document that has
// no schema, or whose extraction produced text only. It always needs manual
// review.
type UnstructuredDocument struct {
	Fields  map[string]string `json:"fields"`
	RawText string            `json:"raw_text,omitempty"`
	Note    string            `json:"note,omitempty"`
}

func (UnstructuredDocument) DocumentType() DocumentType { return DocTypeUnstructured }

// BuildDocument assembles the typed variant for docType from a validated row.
// Unrecognized types produce an UnstructuredDocument.
func BuildDocument(docType DocumentType, row ValidatedRow) TaxDocument {
	switch docType {
	case DocTypeWageStatement:
		return WageStatement{
			EmployeeName:              row.String("employeeName"),
			EmployeeSSN:               row.String("employeeSSN"),
			EmployerName:              row.String("employerName"),
			EmployerTIN:               row.String("employerTIN"),
			Wages:                     row.Decimal("wages"),
			FederalTaxWithheld:        row.Decimal("federalTaxWithheld"),
			SocialSecurityWages:       row.Decimal("socialSecurityWages"),
			SocialSecurityTaxWithheld: row.Decimal("socialSecurityTaxWithheld"),
			MedicareWages:             row.Decimal("medicareWages"),
			MedicareTaxWithheld:       row.Decimal("medicareTaxWithheld"),
			StateWages:                row.Decimal("stateWages"),
			StateTaxWithheld:          row.Decimal("stateTaxWithheld"),
			RetirementPlan:            row.Bool("retirementPlan"),
			TaxYear:                   row.Int("taxYear"),
		}
	case DocTypeNonemployeeComp:
		return NonemployeeComp{
			PayerName:               row.String("payerName"),
			PayerTIN:                row.String("payerTIN"),
			RecipientName:           row.String("recipientName"),
			RecipientTIN:            row.String("recipientTIN"),
			NonemployeeCompensation: row.Decimal("nonemployeeCompensation"),
			FederalTaxWithheld:      row.Decimal("federalTaxWithheld"),
			DirectSales:             row.Bool("directSales"),
			TaxYear:                 row.Int("taxYear"),
		}
	case DocTypeInterestIncome:
		return InterestIncome{
			PayerName:              row.String("payerName"),
			PayerTIN:               row.String("payerTIN"),
			RecipientName:          row.String("recipientName"),
			RecipientTIN:           row.String("recipientTIN"),
			InterestIncome:         row.Decimal("interestIncome"),
			EarlyWithdrawalPenalty: row.Decimal("earlyWithdrawalPenalty"),
			USSavingsBondInterest:  row.Decimal("usSavingsBondInterest"),
			FederalTaxWithheld:     row.Decimal("federalTaxWithheld"),
			TaxExemptInterest:      row.Decimal("taxExemptInterest"),
			TaxYear:                row.Int("taxYear"),
		}
	case DocTypeDividendIncome:
		return DividendIncome{
			PayerName:          row.String("payerName"),
			PayerTIN:           row.String("payerTIN"),
			RecipientName:      row.String("recipientName"),
			RecipientTIN:       row.String("recipientTIN"),
			OrdinaryDividends:  row.Decimal("ordinaryDividends"),
			QualifiedDividends: row.Decimal("qualifiedDividends"),
			TotalCapitalGain:   row.Decimal("totalCapitalGain"),
			FederalTaxWithheld: row.Decimal("federalTaxWithheld"),
			TaxYear:            row.Int("taxYear"),
		}
	case DocTypeEstimatedTax:
		return EstimatedPayment{
			PaymentDate:        row.Date("paymentDate"),
			Amount:             row.Decimal("amount"),
			Quarter:            row.String("quarter"),
			TaxYear:            row.Int("taxYear"),
			Jurisdiction:       row.String("jurisdiction"),
			PaymentMethod:      row.String("paymentMethod"),
			ConfirmationNumber: row.String("confirmationNumber"),
		}
	default:
		return UnstructuredDocument{
			Fields: row.StringValues(),
			Note:   "unrecognized document type; manual review required",
		}
	}
}
