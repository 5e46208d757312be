package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeQuote is the late-fee calculator's answer for one patron/book pair.
// A zero FeeAmount means nothing is owed; Status says why.
type FeeQuote struct {
	PatronID    string          `json:"patron_id"`
	BookID      string          `json:"book_id"`
	FeeAmount   decimal.Decimal `json:"fee_amount"`
	DaysOverdue int             `json:"days_overdue"`
	Status      string          `json:"status"`
}

func (q *FeeQuote) Owed() bool {
	return q.FeeAmount.IsPositive()
}

type Payment struct {
	TransactionID string          `json:"transaction_id"`
	PatronID      string          `json:"patron_id"`
	BookID        string          `json:"book_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"` // completed, refunded
	CreatedAt     time.Time       `json:"created_at"`
}

// PaymentResult is the user-facing outcome of PayLateFees. Failures are
// reported here, never as errors.
type PaymentResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type RefundResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
