package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/taxdoc-import/dto"
)

// amountBound is the sane value range for one monetary field. Matches outside
// the range are discarded, never clamped.
type amountBound struct {
	min, max float64
}

type amountField struct {
	name     string
	bound    amountBound
	patterns []*regexp.Regexp
}

// Amounts are captured integer-part only: "45,200.00" yields "45,200".
var amountFields = []amountField{
	{
		name:  "wages",
		bound: amountBound{1_000, 1_000_000},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)wages,?\s*tips,?\s*(?:and\s+)?other\s+comp(?:ensation)?\.?\s*:?\s*\$?\s*([0-9][0-9,]*)`),
			regexp.MustCompile(`(?i)\bwages\b\s*:?\s*\$?\s*([0-9][0-9,]*)`),
			regexp.MustCompile(`(?i)gross\s+pay\s*:?\s*\$?\s*([0-9][0-9,]*)`),
		},
	},
	{
		name:  "federalTaxWithheld",
		bound: amountBound{0, 100_000},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)federal\s+income\s+tax\s+withheld\s*:?\s*\$?\s*([0-9][0-9,]*)`),
			regexp.MustCompile(`(?i)fed(?:eral)?\.?\s+(?:tax\s+)?withholding\s*:?\s*\$?\s*([0-9][0-9,]*)`),
		},
	},
	{
		name:  "nonemployeeCompensation",
		bound: amountBound{100, 1_000_000},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)nonemployee\s+compensation\s*:?\s*\$?\s*([0-9][0-9,]*)`),
		},
	},
	{
		name:  "interestIncome",
		bound: amountBound{1, 500_000},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)interest\s+income\s*:?\s*\$?\s*([0-9][0-9,]*)`),
		},
	},
	{
		name:  "ordinaryDividends",
		bound: amountBound{1, 500_000},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:total\s+)?ordinary\s+dividends\s*:?\s*\$?\s*([0-9][0-9,]*)`),
			regexp.MustCompile(`(?i)dividend\s+income\s*:?\s*\$?\s*([0-9][0-9,]*)`),
		},
	},
}

var (
	capTokenRe = regexp.MustCompile(`^[A-Z][a-z]+$`)
	wordRe     = regexp.MustCompile(`[A-Za-z]+`)
	orgNameRe  = regexp.MustCompile(`[A-Z][A-Za-z&',.\- ]{1,33}\b(?:Company|Corporation|Corp|Incorporated|Inc|LLC|LLP|Ltd|Group|Partners|Associates)\b\.?`)
	einRe      = regexp.MustCompile(`\b\d{2}-\d{7}\b`)
	ssnRe      = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

// Form boilerplate words that can never be part of a person's name.
var nameStopWords = map[string]bool{
	"employee": true, "employer": true, "federal": true, "social": true,
	"security": true, "medicare": true, "wages": true, "wage": true,
	"income": true, "statement": true, "internal": true, "revenue": true,
	"service": true, "department": true, "treasury": true, "copy": true,
	"form": true, "tax": true, "payer": true, "recipient": true,
	"nonemployee": true, "compensation": true, "state": true, "local": true,
	"control": true, "number": true, "name": true, "address": true,
	"box": true, "suite": true, "street": true, "city": true, "code": true,
}

// ExtractFields recovers tax document fields from raw OCR text using the
// pattern set for docType. Keys in the returned map are canonical schema
// names; fields whose patterns do not match are simply absent.
func ExtractFields(text, docType string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(text) == "" {
		return fields
	}

	personKey, orgKey, einKey, ssnKey := fallbackNameKeys(docType)

	if name := extractPersonName(text); name != "" {
		fields[personKey] = name
	}
	if org := extractOrgName(text); org != "" {
		fields[orgKey] = org
	}
	if ein := einRe.FindString(text); ein != "" {
		fields[einKey] = ein
	}
	if ssn := ssnRe.FindString(text); ssn != "" {
		fields[ssnKey] = ssn
	}

	for _, af := range amountFields {
		if v, ok := extractAmount(text, af); ok {
			fields[af.name] = v
		}
	}

	return fields
}

// fallbackNameKeys picks which canonical names the generic person, company
// and identifier patterns feed, since a W-2 names an employee and employer
// where the 1099 family names a recipient and payer.
func fallbackNameKeys(docType string) (person, org, ein, ssn string) {
	if docType == string(dto.DocTypeWageStatement) {
		return "employeeName", "employerName", "employerTIN", "employeeSSN"
	}
	return "recipientName", "payerName", "payerTIN", "recipientTIN"
}

// extractPersonName finds the first pair of adjacent capitalized word tokens
// that are not form boilerplate.
func extractPersonName(text string) string {
	tokens := wordRe.FindAllString(text, -1)
	for i := 0; i+1 < len(tokens); i++ {
		first, second := tokens[i], tokens[i+1]
		if !capTokenRe.MatchString(first) || !capTokenRe.MatchString(second) {
			continue
		}
		if nameStopWords[strings.ToLower(first)] || nameStopWords[strings.ToLower(second)] {
			continue
		}
		return first + " " + second
	}
	return ""
}

// extractOrgName finds the first capitalized phrase ending in a legal entity
// suffix, between 5 and 40 characters long.
func extractOrgName(text string) string {
	for _, m := range orgNameRe.FindAllString(text, -1) {
		org := strings.TrimSpace(m)
		if len(org) >= 5 && len(org) <= 40 {
			return org
		}
	}
	return ""
}

// extractAmount tries each pattern in order; the first match whose value
// falls inside the field's bounds wins.
func extractAmount(text string, af amountField) (string, bool) {
	for _, re := range af.patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v < af.bound.min || v > af.bound.max {
			continue
		}
		return raw, true
	}
	return "", false
}

var currencyCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "")

// NormalizeAmount parses a monetary string, tolerating currency symbols and
// thousands separators: "$12,345.67" parses to 12345.67.
func NormalizeAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(currencyCleaner.Replace(s)))
}
