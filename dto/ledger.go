package dto

import "github.com/shopspring/decimal"

// AmountSource records how a ledger entry's amount was determined.
const (
	AmountDesignated = "designated"
	AmountBestEffort = "best-effort"
	AmountUnresolved = "unresolved"
)

// LedgerEntry is one income record produced from a validated row. Amount is
// never negative; an entry whose amount could not be resolved carries zero
// and is flagged through AmountSource.
type LedgerEntry struct {
	ID               string          `json:"id"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	AmountSource     string          `json:"amount_source"`
	CounterpartyName string          `json:"counterparty_name,omitempty"`
	CounterpartyTIN  string          `json:"counterparty_tin,omitempty"`
	Description      string          `json:"description"`
	RowIndex         int             `json:"row_index"`
}
