package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"library-system/config"
	"library-system/internal/status"
	"library-system/models"

	"github.com/shopspring/decimal"
)

// BorrowStore is the persistence contract for borrow records.
type BorrowStore interface {
	GetOpenBorrow(ctx context.Context, patronID, bookID string) (*models.BorrowRecord, error)
	ListOpenBorrows(ctx context.Context, patronID string) ([]*models.BorrowRecord, error)
	InsertBorrow(ctx context.Context, record *models.BorrowRecord) (*models.BorrowRecord, error)
	CloseBorrow(ctx context.Context, recordID string, returnedAt time.Time) error
	// ListBorrowHistory returns all records for a patron, newest borrow first.
	ListBorrowHistory(ctx context.Context, patronID string) ([]*models.BorrowRecord, error)
}

// CirculationService handles borrowing, returning and late-fee calculation.
// It implements the FeeCalculator contract consumed by PaymentService.
type CirculationService struct {
	books   BookStore
	borrows BorrowStore

	loanPeriod  time.Duration
	dailyFine   decimal.Decimal
	maxFine     decimal.Decimal
	borrowLimit int
	patronIDLen int
	patronID    *regexp.Regexp
	now         func() time.Time
}

func NewCirculationService(books BookStore, borrows BorrowStore, cfg *config.Config) *CirculationService {
	return &CirculationService{
		books:       books,
		borrows:     borrows,
		loanPeriod:  cfg.LoanPeriod,
		dailyFine:   cfg.DailyFine,
		maxFine:     cfg.MaxFine,
		borrowLimit: cfg.BorrowLimit,
		patronIDLen: cfg.PatronIDLength,
		patronID:    regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, cfg.PatronIDLength)),
		now:         time.Now,
	}
}

// BorrowBook lends a book to a patron and decrements availability.
func (s *CirculationService) BorrowBook(ctx context.Context, patronID, bookID string) (*models.BorrowRecord, error) {
	if err := s.checkPatronID(patronID); err != nil {
		return nil, err
	}

	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("looking up book: %w", err)
	}
	if book == nil {
		return nil, status.ErrBookNotFound
	}
	if !book.IsAvailable() {
		return nil, fmt.Errorf("%w: '%s'", status.ErrNoCopies, book.Title)
	}

	existing, err := s.borrows.GetOpenBorrow(ctx, patronID, bookID)
	if err != nil {
		return nil, fmt.Errorf("checking open borrows: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("patron %s already borrowed '%s'", patronID, book.Title)
	}

	open, err := s.borrows.ListOpenBorrows(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("counting open borrows: %w", err)
	}
	if len(open) >= s.borrowLimit {
		return nil, fmt.Errorf("%w: %d books is the limit", status.ErrBorrowLimit, s.borrowLimit)
	}

	now := s.now()
	record, err := s.borrows.InsertBorrow(ctx, &models.BorrowRecord{
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.Add(s.loanPeriod),
	})
	if err != nil {
		return nil, fmt.Errorf("recording borrow: %w", err)
	}

	if err := s.books.AdjustAvailability(ctx, bookID, -1); err != nil {
		return nil, fmt.Errorf("updating availability: %w", err)
	}

	return record, nil
}

// ReturnBook closes the patron's open borrow record and reports any late fee
// owed for it.
func (s *CirculationService) ReturnBook(ctx context.Context, patronID, bookID string) (*models.FeeQuote, error) {
	if err := s.checkPatronID(patronID); err != nil {
		return nil, err
	}

	record, err := s.borrows.GetOpenBorrow(ctx, patronID, bookID)
	if err != nil {
		return nil, fmt.Errorf("looking up borrow record: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: patron %s did not borrow this book", status.ErrNotBorrowed, patronID)
	}

	quote := s.quoteFor(record)

	if err := s.borrows.CloseBorrow(ctx, record.ID, s.now()); err != nil {
		return nil, fmt.Errorf("closing borrow record: %w", err)
	}
	if err := s.books.AdjustAvailability(ctx, bookID, 1); err != nil {
		return nil, fmt.Errorf("updating availability: %w", err)
	}

	return quote, nil
}

// CalculateLateFee quotes the late fee owed for a patron/book pair. A zero
// fee with an explanatory status is returned when nothing is owed.
func (s *CirculationService) CalculateLateFee(ctx context.Context, patronID, bookID string) (*models.FeeQuote, error) {
	if !s.patronID.MatchString(patronID) {
		return &models.FeeQuote{
			PatronID:  patronID,
			BookID:    bookID,
			FeeAmount: decimal.Zero,
			Status:    "invalid patron ID",
		}, nil
	}

	record, err := s.borrows.GetOpenBorrow(ctx, patronID, bookID)
	if err != nil {
		return nil, fmt.Errorf("looking up borrow record: %w", err)
	}
	if record == nil {
		return &models.FeeQuote{
			PatronID:  patronID,
			BookID:    bookID,
			FeeAmount: decimal.Zero,
			Status:    "no record of this borrow",
		}, nil
	}

	return s.quoteFor(record), nil
}

// PatronStatusReport summarizes a patron's open borrows, owed fees and
// borrow history (newest first).
func (s *CirculationService) PatronStatusReport(ctx context.Context, patronID string) (*models.PatronStatusReport, error) {
	if err := s.checkPatronID(patronID); err != nil {
		return nil, err
	}

	open, err := s.borrows.ListOpenBorrows(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("listing open borrows: %w", err)
	}

	total := decimal.Zero
	for _, record := range open {
		total = total.Add(s.quoteFor(record).FeeAmount)
	}

	history, err := s.borrows.ListBorrowHistory(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("listing borrow history: %w", err)
	}

	return &models.PatronStatusReport{
		PatronID:      patronID,
		BorrowedCount: len(open),
		TotalLateFees: total,
		Borrowed:      open,
		History:       history,
	}, nil
}

func (s *CirculationService) quoteFor(record *models.BorrowRecord) *models.FeeQuote {
	days := record.DaysOverdue(s.now())
	if days == 0 {
		return &models.FeeQuote{
			PatronID:  record.PatronID,
			BookID:    record.BookID,
			FeeAmount: decimal.Zero,
			Status:    "not overdue",
		}
	}

	fee := s.dailyFine.Mul(decimal.NewFromInt(int64(days)))
	if fee.GreaterThan(s.maxFine) {
		fee = s.maxFine
	}

	return &models.FeeQuote{
		PatronID:    record.PatronID,
		BookID:      record.BookID,
		FeeAmount:   fee,
		DaysOverdue: days,
		Status:      "overdue",
	}
}

func (s *CirculationService) checkPatronID(patronID string) error {
	if !s.patronID.MatchString(patronID) {
		return fmt.Errorf("%w: must be a %d-digit number", status.ErrInvalidPatronID, s.patronIDLen)
	}
	return nil
}
