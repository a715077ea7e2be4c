package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SavedComparison is a comparison result kept by a customer.
type SavedComparison struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Name        string          `db:"name" json:"name"`
	CreditType  string          `db:"credit_type" json:"creditType"`
	Amount      int64           `db:"amount" json:"amount"`
	Duration    int             `db:"duration" json:"duration"`
	BestBankID  *string         `db:"best_bank_id" json:"bestBankId,omitempty"`
	BestRate    *float64        `db:"best_rate" json:"bestRate,omitempty"`
	Savings     decimal.Decimal `db:"savings" json:"savings"`
	TotalOffers int             `db:"total_offers" json:"totalOffers"`
	Result      json.RawMessage `db:"result" json:"result"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
