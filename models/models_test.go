package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBorrowRecord_DaysOverdue(t *testing.T) {
	due := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		hoursLate    float64
		expectedDays int
	}{
		{-48, 0},
		{0, 0},
		{1, 1},
		{24, 1},
		{24.5, 2},
		{48, 2},
		{176, 8},
	}

	for _, tt := range testCases {
		record := BorrowRecord{DueDate: due}
		now := due.Add(time.Duration(tt.hoursLate * float64(time.Hour)))
		assert.Equal(t, tt.expectedDays, record.DaysOverdue(now), "hours late: %v", tt.hoursLate)
	}
}

func TestBorrowRecord_IsReturned(t *testing.T) {
	record := BorrowRecord{}
	assert.False(t, record.IsReturned())

	returned := time.Now()
	record.ReturnDate = &returned
	assert.True(t, record.IsReturned())
}

func TestBook_IsAvailable(t *testing.T) {
	book := Book{TotalCopies: 3, AvailableCopies: 0}
	assert.False(t, book.IsAvailable())

	book.AvailableCopies = 1
	assert.True(t, book.IsAvailable())
}

func TestFeeQuote_Owed(t *testing.T) {
	quote := FeeQuote{FeeAmount: decimal.Zero, Status: "no record"}
	assert.False(t, quote.Owed())

	quote.FeeAmount = decimal.NewFromFloat(7.5)
	assert.True(t, quote.Owed())
}
