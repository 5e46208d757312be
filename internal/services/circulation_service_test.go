package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"library-system/config"
	"library-system/internal/status"
	"library-system/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock BorrowStore for circulation tests
type MockBorrowStore struct {
	mock.Mock
}

func (m *MockBorrowStore) GetOpenBorrow(ctx context.Context, patronID, bookID string) (*models.BorrowRecord, error) {
	args := m.Called(ctx, patronID, bookID)
	if record := args.Get(0); record != nil {
		return record.(*models.BorrowRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowStore) ListOpenBorrows(ctx context.Context, patronID string) ([]*models.BorrowRecord, error) {
	args := m.Called(ctx, patronID)
	if records := args.Get(0); records != nil {
		return records.([]*models.BorrowRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowStore) InsertBorrow(ctx context.Context, record *models.BorrowRecord) (*models.BorrowRecord, error) {
	args := m.Called(ctx, record)
	if inserted := args.Get(0); inserted != nil {
		return inserted.(*models.BorrowRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowStore) CloseBorrow(ctx context.Context, recordID string, returnedAt time.Time) error {
	args := m.Called(ctx, recordID, returnedAt)
	return args.Error(0)
}

func (m *MockBorrowStore) ListBorrowHistory(ctx context.Context, patronID string) ([]*models.BorrowRecord, error) {
	args := m.Called(ctx, patronID)
	if records := args.Get(0); records != nil {
		return records.([]*models.BorrowRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

var circulationNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func setupTestCirculationService() (*CirculationService, *MockBookStore, *MockBorrowStore) {
	books := &MockBookStore{}
	borrows := &MockBorrowStore{}

	cfg := &config.Config{
		PatronIDLength: 6,
		BorrowLimit:    5,
		LoanPeriod:     14 * 24 * time.Hour,
		DailyFine:      decimal.NewFromFloat(0.50),
		MaxFine:        decimal.NewFromFloat(15.00),
	}

	service := NewCirculationService(books, borrows, cfg)
	service.now = func() time.Time { return circulationNow }

	return service, books, borrows
}

func TestBorrowBook_Success(t *testing.T) {
	service, books, borrows := setupTestCirculationService()
	ctx := context.Background()

	books.On("GetBookByID", ctx, "1").Return(&models.Book{
		ID:              "1",
		Title:           "1984",
		AvailableCopies: 2,
	}, nil)
	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(nil, nil)
	borrows.On("ListOpenBorrows", ctx, "123456").Return([]*models.BorrowRecord{}, nil)
	borrows.On("InsertBorrow", ctx, mock.MatchedBy(func(r *models.BorrowRecord) bool {
		return r.PatronID == "123456" &&
			r.BookID == "1" &&
			r.DueDate.Equal(circulationNow.Add(14*24*time.Hour))
	})).Return(&models.BorrowRecord{
		ID:         "br1",
		PatronID:   "123456",
		BookID:     "1",
		BorrowDate: circulationNow,
		DueDate:    circulationNow.Add(14 * 24 * time.Hour),
	}, nil)
	books.On("AdjustAvailability", ctx, "1", -1).Return(nil)

	record, err := service.BorrowBook(ctx, "123456", "1")
	require.NoError(t, err)
	assert.Equal(t, "br1", record.ID)
	books.AssertExpectations(t)
	borrows.AssertExpectations(t)
}

func TestBorrowBook_InvalidPatronID(t *testing.T) {
	service, books, _ := setupTestCirculationService()

	for _, patronID := range []string{"12AB56", "12345!", "abcdef", "1234", ""} {
		record, err := service.BorrowBook(context.Background(), patronID, "1")
		require.Error(t, err, "patron id %q should be rejected", patronID)
		assert.Nil(t, record)
		assert.ErrorIs(t, err, status.ErrInvalidPatronID)
		assert.Contains(t, strings.ToLower(err.Error()), "patron id")
	}

	books.AssertNotCalled(t, "GetBookByID", mock.Anything, mock.Anything)
}

func TestBorrowBook_BookNotFound(t *testing.T) {
	service, books, _ := setupTestCirculationService()
	ctx := context.Background()

	books.On("GetBookByID", ctx, "99").Return(nil, nil)

	record, err := service.BorrowBook(ctx, "123456", "99")
	require.Error(t, err)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, status.ErrBookNotFound)
}

func TestBorrowBook_NoCopiesAvailable(t *testing.T) {
	service, books, _ := setupTestCirculationService()
	ctx := context.Background()

	books.On("GetBookByID", ctx, "1").Return(&models.Book{
		ID:              "1",
		Title:           "1984",
		AvailableCopies: 0,
	}, nil)

	record, err := service.BorrowBook(ctx, "123456", "1")
	require.Error(t, err)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, status.ErrNoCopies)
}

func TestBorrowBook_AlreadyBorrowed(t *testing.T) {
	service, books, borrows := setupTestCirculationService()
	ctx := context.Background()

	books.On("GetBookByID", ctx, "1").Return(&models.Book{
		ID:              "1",
		Title:           "1984",
		AvailableCopies: 1,
	}, nil)
	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(&models.BorrowRecord{
		ID:       "br1",
		PatronID: "123456",
		BookID:   "1",
	}, nil)

	record, err := service.BorrowBook(ctx, "123456", "1")
	require.Error(t, err)
	assert.Nil(t, record)
	assert.Contains(t, err.Error(), "already borrowed")
}

func TestBorrowBook_AtBorrowLimit(t *testing.T) {
	service, books, borrows := setupTestCirculationService()
	ctx := context.Background()

	books.On("GetBookByID", ctx, "6").Return(&models.Book{
		ID:              "6",
		AvailableCopies: 1,
	}, nil)
	borrows.On("GetOpenBorrow", ctx, "123456", "6").Return(nil, nil)

	open := make([]*models.BorrowRecord, 5)
	for i := range open {
		open[i] = &models.BorrowRecord{PatronID: "123456"}
	}
	borrows.On("ListOpenBorrows", ctx, "123456").Return(open, nil)

	record, err := service.BorrowBook(ctx, "123456", "6")
	require.Error(t, err)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, status.ErrBorrowLimit)
	borrows.AssertNotCalled(t, "InsertBorrow", mock.Anything, mock.Anything)
}

func TestReturnBook_NotBorrowed(t *testing.T) {
	service, _, borrows := setupTestCirculationService()
	ctx := context.Background()

	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(nil, nil)

	quote, err := service.ReturnBook(ctx, "123456", "1")
	require.Error(t, err)
	assert.Nil(t, quote)
	assert.ErrorIs(t, err, status.ErrNotBorrowed)
	assert.Contains(t, err.Error(), "did not borrow")
}

func TestReturnBook_OnTime(t *testing.T) {
	service, books, borrows := setupTestCirculationService()
	ctx := context.Background()

	record := &models.BorrowRecord{
		ID:       "br1",
		PatronID: "123456",
		BookID:   "1",
		DueDate:  circulationNow.Add(48 * time.Hour),
	}
	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(record, nil)
	borrows.On("CloseBorrow", ctx, "br1", circulationNow).Return(nil)
	books.On("AdjustAvailability", ctx, "1", 1).Return(nil)

	quote, err := service.ReturnBook(ctx, "123456", "1")
	require.NoError(t, err)
	assert.True(t, quote.FeeAmount.IsZero())
	assert.Equal(t, "not overdue", quote.Status)
	borrows.AssertExpectations(t)
	books.AssertExpectations(t)
}

func TestReturnBook_Overdue_QuotesFee(t *testing.T) {
	service, books, borrows := setupTestCirculationService()
	ctx := context.Background()

	record := &models.BorrowRecord{
		ID:       "br1",
		PatronID: "123456",
		BookID:   "1",
		DueDate:  circulationNow.Add(-5 * 24 * time.Hour),
	}
	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(record, nil)
	borrows.On("CloseBorrow", ctx, "br1", circulationNow).Return(nil)
	books.On("AdjustAvailability", ctx, "1", 1).Return(nil)

	quote, err := service.ReturnBook(ctx, "123456", "1")
	require.NoError(t, err)
	assert.Equal(t, 5, quote.DaysOverdue)
	assert.True(t, quote.FeeAmount.Equal(decimal.NewFromFloat(2.50)), "got %s", quote.FeeAmount)
	assert.Equal(t, "overdue", quote.Status)
}

func TestCalculateLateFee_InvalidPatronID(t *testing.T) {
	service, _, borrows := setupTestCirculationService()

	quote, err := service.CalculateLateFee(context.Background(), "12x456", "1")
	require.NoError(t, err)
	assert.True(t, quote.FeeAmount.IsZero())
	assert.Contains(t, strings.ToLower(quote.Status), "invalid patron id")
	borrows.AssertNotCalled(t, "GetOpenBorrow", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalculateLateFee_NoRecord(t *testing.T) {
	service, _, borrows := setupTestCirculationService()
	ctx := context.Background()

	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(nil, nil)

	quote, err := service.CalculateLateFee(ctx, "123456", "1")
	require.NoError(t, err)
	assert.True(t, quote.FeeAmount.IsZero())
	assert.Equal(t, "no record of this borrow", quote.Status)
}

func TestCalculateLateFee_CappedAtMaxFine(t *testing.T) {
	service, _, borrows := setupTestCirculationService()
	ctx := context.Background()

	// 40 days late at $0.50/day would be $20; the cap holds it at $15.
	borrows.On("GetOpenBorrow", ctx, "123456", "1").Return(&models.BorrowRecord{
		ID:       "br1",
		PatronID: "123456",
		BookID:   "1",
		DueDate:  circulationNow.Add(-40 * 24 * time.Hour),
	}, nil)

	quote, err := service.CalculateLateFee(ctx, "123456", "1")
	require.NoError(t, err)
	assert.Equal(t, 40, quote.DaysOverdue)
	assert.True(t, quote.FeeAmount.Equal(decimal.NewFromFloat(15.00)), "got %s", quote.FeeAmount)
}

func TestPatronStatusReport(t *testing.T) {
	service, _, borrows := setupTestCirculationService()
	ctx := context.Background()

	open := []*models.BorrowRecord{
		{ID: "br2", PatronID: "123456", BookID: "2", DueDate: circulationNow.Add(-4 * 24 * time.Hour)},
		{ID: "br3", PatronID: "123456", BookID: "3", DueDate: circulationNow.Add(24 * time.Hour)},
	}
	returned := circulationNow.Add(-30 * 24 * time.Hour)
	history := []*models.BorrowRecord{
		open[0],
		open[1],
		{ID: "br1", PatronID: "123456", BookID: "1", ReturnDate: &returned},
	}

	borrows.On("ListOpenBorrows", ctx, "123456").Return(open, nil)
	borrows.On("ListBorrowHistory", ctx, "123456").Return(history, nil)

	report, err := service.PatronStatusReport(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", report.PatronID)
	assert.Equal(t, 2, report.BorrowedCount)
	assert.True(t, report.TotalLateFees.Equal(decimal.NewFromFloat(2.00)), "got %s", report.TotalLateFees)
	require.Len(t, report.History, 3)
	assert.Equal(t, "br2", report.History[0].ID)
}
