package utils

import "strings"

// NormalizeKey lowercases s and strips every non-alphanumeric rune. The
// canonical field table and the fuzzy mapper both compare keys in this form.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonicalFields maps normalized backend field identifiers to canonical
// schema names. The document intelligence backend and the pattern extractor
// historically used different vocabularies; this table is the single place
// where both are reconciled.
var canonicalFields = map[string]string{
	"employeename":                 "employeeName",
	"wageearnername":               "employeeName",
	"employeessn":                  "employeeSSN",
	"socialsecuritynumber":         "employeeSSN",
	"employername":                 "employerName",
	"companyname":                  "employerName",
	"employertin":                  "employerTIN",
	"employerein":                  "employerTIN",
	"employeridentificationnumber": "employerTIN",
	"wages":                        "wages",
	"wagesamount":                  "wages",
	"wagestipsothercompensation":   "wages",
	"grosspay":                     "wages",
	"federaltaxwithheld":           "federalTaxWithheld",
	"federalincometaxwithheld":     "federalTaxWithheld",
	"fedwithholding":               "federalTaxWithheld",
	"socialsecuritywages":          "socialSecurityWages",
	"socialsecuritytaxwithheld":    "socialSecurityTaxWithheld",
	"medicarewages":                "medicareWages",
	"medicarewagesandtips":         "medicareWages",
	"medicaretaxwithheld":          "medicareTaxWithheld",
	"statewages":                   "stateWages",
	"statetaxwithheld":             "stateTaxWithheld",
	"stateincometax":               "stateTaxWithheld",
	"payername":                    "payerName",
	"payertin":                     "payerTIN",
	"recipientname":                "recipientName",
	"recipienttin":                 "recipientTIN",
	"nonemployeecompensation":      "nonemployeeCompensation",
	"nonemployeecomp":              "nonemployeeCompensation",
	"interestincome":               "interestIncome",
	"ordinarydividends":            "ordinaryDividends",
	"totalordinarydividends":       "ordinaryDividends",
	"dividendincome":               "ordinaryDividends",
	"qualifieddividends":           "qualifiedDividends",
	"totalcapitalgain":             "totalCapitalGain",
	"taxyear":                      "taxYear",
	"paymentdate":                  "paymentDate",
	"paymentamount":                "amount",
	"amountpaid":                   "amount",
	"quarter":                      "quarter",
}

// CanonicalFieldName translates a backend field identifier to its canonical
// schema name. Identifiers with no table entry pass through lower-cased.
func CanonicalFieldName(raw string) string {
	if c, ok := canonicalFields[NormalizeKey(raw)]; ok {
		return c
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// CanonicalFieldMap renames every key of fields to its canonical form. When
// two source keys collapse to one canonical name the existing non-empty
// value is kept.
func CanonicalFieldMap(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		ck := CanonicalFieldName(k)
		if cur, ok := out[ck]; ok && cur != "" {
			continue
		}
		out[ck] = v
	}
	return out
}
