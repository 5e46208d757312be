package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"library-system/config"
	"library-system/internal/services/gateway"
	"library-system/models"
	"library-system/monitoring"
	"library-system/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// FeeCalculator quotes outstanding late fees for a patron/book pair.
type FeeCalculator interface {
	CalculateLateFee(ctx context.Context, patronID, bookID string) (*models.FeeQuote, error)
}

// BookLookup resolves book metadata by id. A nil book with nil error means
// the book does not exist.
type BookLookup interface {
	GetBookByID(ctx context.Context, bookID string) (*models.Book, error)
}

// Publisher pushes notifications to a patron channel.
type Publisher interface {
	Publish(channel string, message map[string]any) error
}

// PaymentService orchestrates late-fee payments and refunds against an
// external payment gateway. Every failure comes back as a structured result;
// gateway faults are caught here and never propagate.
type PaymentService struct {
	Redis      *redis.Client
	gateway    gateway.PaymentGateway
	calculator FeeCalculator
	catalog    BookLookup
	publisher  Publisher
	breaker    *utils.CircuitBreaker

	refundMax decimal.Decimal
	patronID  *regexp.Regexp
	now       func() time.Time
}

func NewPaymentService(redisClient *redis.Client, gw gateway.PaymentGateway, calculator FeeCalculator, catalog BookLookup, publisher Publisher, cfg *config.Config) *PaymentService {
	return &PaymentService{
		Redis:      redisClient,
		gateway:    gw,
		calculator: calculator,
		catalog:    catalog,
		publisher:  publisher,
		breaker:    utils.NewCircuitBreaker("payment-gateway"),
		refundMax:  cfg.RefundMaxAmount,
		patronID:   regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, cfg.PatronIDLength)),
		now:        time.Now,
	}
}

// PayLateFees charges a patron's outstanding late fees for one book.
// Validation failures and gateway declines return without touching the
// gateway and without a transaction id.
func (s *PaymentService) PayLateFees(ctx context.Context, patronID, bookID string) *models.PaymentResult {
	if !s.patronID.MatchString(patronID) {
		monitoring.TrackPaymentOperation("pay", "rejected")
		return &models.PaymentResult{
			Success: false,
			Message: "invalid patron ID format",
		}
	}

	quote, err := s.calculator.CalculateLateFee(ctx, patronID, bookID)
	if err != nil {
		slog.Error("late fee calculation failed", "patron_id", patronID, "book_id", bookID, "error", err)
		monitoring.TrackPaymentOperation("pay", "error")
		return &models.PaymentResult{
			Success: false,
			Message: "unable to determine late fees, please try again",
		}
	}
	if !quote.Owed() {
		monitoring.TrackPaymentOperation("pay", "rejected")
		msg := "no late fees owed for this book"
		if quote.Status != "" {
			msg = fmt.Sprintf("no late fees owed for this book (%s)", quote.Status)
		}
		return &models.PaymentResult{Success: false, Message: msg}
	}

	book, err := s.catalog.GetBookByID(ctx, bookID)
	if err != nil {
		slog.Error("book lookup failed", "book_id", bookID, "error", err)
		monitoring.TrackPaymentOperation("pay", "error")
		return &models.PaymentResult{
			Success: false,
			Message: "unable to look up the book, please try again",
		}
	}
	if book == nil {
		monitoring.TrackPaymentOperation("pay", "rejected")
		return &models.PaymentResult{Success: false, Message: "book not found"}
	}

	description := fmt.Sprintf("Late fees for '%s'", book.Title)
	result, err := s.processPayment(ctx, patronID, quote.FeeAmount, description)
	if err != nil {
		slog.Error("payment gateway fault", "patron_id", patronID, "error", err)
		monitoring.TrackPaymentOperation("pay", "error")
		return &models.PaymentResult{
			Success: false,
			Message: "payment processing error, please try again later",
		}
	}

	if !result.Approved {
		monitoring.TrackPaymentOperation("pay", "declined")
		return &models.PaymentResult{
			Success: false,
			Message: fmt.Sprintf("payment failed: declined by gateway (%s)", result.Message),
		}
	}

	s.recordPayment(ctx, result.TransactionID, patronID, bookID, quote.FeeAmount)
	s.notifyPatron(patronID, result.TransactionID, quote.FeeAmount)

	monitoring.TrackPaymentOperation("pay", "success")
	return &models.PaymentResult{
		Success:       true,
		Message:       fmt.Sprintf("payment successful: $%s charged for late fees on '%s'", quote.FeeAmount.StringFixed(2), book.Title),
		TransactionID: result.TransactionID,
	}
}

// RefundLateFeePayment refunds a prior late-fee payment. The transaction id
// is validated by shape only; the gateway owns the ledger.
func (s *PaymentService) RefundLateFeePayment(ctx context.Context, transactionID string, amount decimal.Decimal) *models.RefundResult {
	if !gateway.ValidTransactionID(transactionID) {
		monitoring.TrackPaymentOperation("refund", "rejected")
		return &models.RefundResult{Success: false, Message: "invalid transaction ID"}
	}

	if !amount.IsPositive() {
		monitoring.TrackPaymentOperation("refund", "rejected")
		return &models.RefundResult{
			Success: false,
			Message: "refund amount must be greater than 0",
		}
	}
	if amount.GreaterThan(s.refundMax) {
		monitoring.TrackPaymentOperation("refund", "rejected")
		return &models.RefundResult{
			Success: false,
			Message: fmt.Sprintf("refund amount $%s exceeds the maximum of $%s", amount.StringFixed(2), s.refundMax.StringFixed(2)),
		}
	}

	result, err := s.refundPayment(ctx, transactionID, amount)
	if err != nil {
		slog.Error("refund gateway fault", "transaction_id", transactionID, "error", err)
		monitoring.TrackPaymentOperation("refund", "error")
		return &models.RefundResult{
			Success: false,
			Message: "refund processing error, please try again later",
		}
	}

	if !result.Approved {
		monitoring.TrackPaymentOperation("refund", "declined")
		return &models.RefundResult{
			Success: false,
			Message: fmt.Sprintf("refund failed: %s", result.Message),
		}
	}

	s.markRefunded(ctx, transactionID)

	monitoring.TrackPaymentOperation("refund", "success")
	return &models.RefundResult{Success: true, Message: result.Message}
}

// GetPayment returns the recorded payment for a transaction id, or nil when
// no record exists.
func (s *PaymentService) GetPayment(ctx context.Context, transactionID string) (*models.Payment, error) {
	key := fmt.Sprintf("payment:%s", transactionID)
	data, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	amount, _ := decimal.NewFromString(data["amount"])
	payment := &models.Payment{
		TransactionID: data["transaction_id"],
		PatronID:      data["patron_id"],
		BookID:        data["book_id"],
		Amount:        amount,
		Status:        data["status"],
	}
	return payment, nil
}

// SimulateGatewayPayment drives the gateway directly, bypassing fee lookup.
// Exposed on a development-only endpoint.
func (s *PaymentService) SimulateGatewayPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (*gateway.ProcessResult, error) {
	return s.gateway.ProcessPayment(ctx, patronID, amount, description)
}

// VerifyPaymentStatus asks the gateway for a transaction's status.
func (s *PaymentService) VerifyPaymentStatus(ctx context.Context, transactionID string) (*gateway.PaymentStatus, error) {
	return s.gateway.VerifyPaymentStatus(ctx, transactionID)
}

func (s *PaymentService) processPayment(ctx context.Context, patronID string, amount decimal.Decimal, description string) (*gateway.ProcessResult, error) {
	start := time.Now()
	v, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.gateway.ProcessPayment(ctx, patronID, amount, description)
	})
	monitoring.TrackGatewayCall("process_payment", time.Since(start))
	if err != nil {
		return nil, err
	}
	return v.(*gateway.ProcessResult), nil
}

func (s *PaymentService) refundPayment(ctx context.Context, transactionID string, amount decimal.Decimal) (*gateway.RefundResult, error) {
	start := time.Now()
	v, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return s.gateway.RefundPayment(ctx, transactionID, amount)
	})
	monitoring.TrackGatewayCall("refund_payment", time.Since(start))
	if err != nil {
		return nil, err
	}
	return v.(*gateway.RefundResult), nil
}

func (s *PaymentService) recordPayment(ctx context.Context, transactionID, patronID, bookID string, amount decimal.Decimal) {
	key := fmt.Sprintf("payment:%s", transactionID)
	err := s.Redis.HSet(ctx, key,
		"transaction_id", transactionID,
		"patron_id", patronID,
		"book_id", bookID,
		"amount", amount.StringFixed(2),
		"status", "completed",
		"created_at", s.now().Unix(),
	).Err()
	if err != nil {
		// The charge already went through; the record is best-effort.
		slog.Error("failed to record payment", "transaction_id", transactionID, "error", err)
	}
}

func (s *PaymentService) markRefunded(ctx context.Context, transactionID string) {
	key := fmt.Sprintf("payment:%s", transactionID)
	if err := s.Redis.HSet(ctx, key, "status", "refunded").Err(); err != nil {
		slog.Error("failed to mark payment refunded", "transaction_id", transactionID, "error", err)
	}
}

func (s *PaymentService) notifyPatron(patronID, transactionID string, amount decimal.Decimal) {
	if s.publisher == nil {
		return
	}

	err := s.publisher.Publish(fmt.Sprintf("patron-%s", patronID), map[string]any{
		"type":           "late_fee_payment",
		"transaction_id": transactionID,
		"amount":         amount.StringFixed(2),
	})
	if err != nil {
		slog.Error("failed to notify patron", "patron_id", patronID, "error", err)
	}
}
