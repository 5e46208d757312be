package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider represents different payment processor backends
type Provider string

const (
	ProviderSimulator Provider = "simulator"
)

// Payment status values reported by VerifyPaymentStatus
const (
	StatusCompleted = "completed"
	StatusRefunded  = "refunded"
	StatusNotFound  = "not_found"
)

const txnPrefix = "txn_"

// ProcessResult is the gateway's answer to a charge attempt. Approved=false
// with a Message is a business decline, not a fault.
type ProcessResult struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

type RefundResult struct {
	Approved bool   `json:"approved"`
	Message  string `json:"message"`
}

type PaymentStatus struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	PatronID      string          `json:"patron_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ProcessedAt   time.Time       `json:"processed_at"`
}

// PaymentGateway defines the common interface for payment processors.
// A returned error is a technical fault; declines come back in the result.
type PaymentGateway interface {
	// GetProvider returns the payment provider type
	GetProvider() Provider

	// ProcessPayment charges the patron for the given amount
	ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (*ProcessResult, error)

	// RefundPayment refunds part or all of a prior charge
	RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (*RefundResult, error)

	// VerifyPaymentStatus looks up the status of a transaction
	VerifyPaymentStatus(ctx context.Context, transactionID string) (*PaymentStatus, error)

	// Close gracefully closes any connections
	Close(ctx context.Context) error
}

// ValidTransactionID reports whether id has the shape the gateway mints:
// a "txn_" prefix with a non-empty remainder.
func ValidTransactionID(id string) bool {
	return strings.HasPrefix(id, txnPrefix) && len(id) > len(txnPrefix)
}
