package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type SimulatorConfig struct {
	// MaxAmount is the per-transaction limit. Amounts at or above it are
	// declined.
	MaxAmount decimal.Decimal

	// Latency is the simulated processing delay per call.
	Latency time.Duration
}

// Simulator is an in-process stand-in for an external payment processor.
// It validates amounts, sleeps for the configured latency, mints
// txn_<patronID>_<unix> transaction ids and keeps an in-memory ledger so
// VerifyPaymentStatus can answer for transactions it issued. Safe for
// concurrent use.
type Simulator struct {
	maxAmount decimal.Decimal
	latency   time.Duration
	now       func() time.Time

	mu     sync.Mutex
	ledger map[string]*PaymentStatus
}

func NewSimulator(cfg *SimulatorConfig) *Simulator {
	return &Simulator{
		maxAmount: cfg.MaxAmount,
		latency:   cfg.Latency,
		now:       time.Now,
		ledger:    make(map[string]*PaymentStatus),
	}
}

func (s *Simulator) GetProvider() Provider {
	return ProviderSimulator
}

func (s *Simulator) ProcessPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (*ProcessResult, error) {
	if !amount.IsPositive() {
		return &ProcessResult{
			Approved: false,
			Message:  fmt.Sprintf("invalid amount: %s, amount must be greater than 0", amount.StringFixed(2)),
		}, nil
	}

	if amount.GreaterThanOrEqual(s.maxAmount) {
		return &ProcessResult{
			Approved: false,
			Message:  fmt.Sprintf("amount %s exceeds limit of %s per transaction", amount.StringFixed(2), s.maxAmount.StringFixed(2)),
		}, nil
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	transactionID := fmt.Sprintf("%s%s_%d", txnPrefix, patronID, now.Unix())

	s.mu.Lock()
	s.ledger[transactionID] = &PaymentStatus{
		TransactionID: transactionID,
		Status:        StatusCompleted,
		PatronID:      patronID,
		Amount:        amount,
		ProcessedAt:   now,
	}
	s.mu.Unlock()

	return &ProcessResult{
		Approved:      true,
		TransactionID: transactionID,
		Message:       fmt.Sprintf("payment of $%s processed successfully", amount.StringFixed(2)),
	}, nil
}

func (s *Simulator) RefundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (*RefundResult, error) {
	if !ValidTransactionID(transactionID) {
		return &RefundResult{
			Approved: false,
			Message:  fmt.Sprintf("invalid transaction ID format: %q", transactionID),
		}, nil
	}

	if !amount.IsPositive() {
		return &RefundResult{
			Approved: false,
			Message:  fmt.Sprintf("invalid refund amount: %s, amount must be greater than 0", amount.StringFixed(2)),
		}, nil
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	// Simulation only: the id is validated by shape, not against the ledger,
	// but known transactions are marked refunded.
	s.mu.Lock()
	if record, ok := s.ledger[transactionID]; ok {
		record.Status = StatusRefunded
	}
	s.mu.Unlock()

	return &RefundResult{
		Approved: true,
		Message:  fmt.Sprintf("Refund of $%s processed successfully", amount.StringFixed(2)),
	}, nil
}

func (s *Simulator) VerifyPaymentStatus(ctx context.Context, transactionID string) (*PaymentStatus, error) {
	s.mu.Lock()
	record, ok := s.ledger[transactionID]
	s.mu.Unlock()

	if !ok {
		return &PaymentStatus{
			TransactionID: transactionID,
			Status:        StatusNotFound,
		}, nil
	}

	copied := *record
	return &copied, nil
}

func (s *Simulator) Close(ctx context.Context) error {
	return nil
}

// wait simulates processing latency while honoring context cancellation.
func (s *Simulator) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}
