package models

import (
	"math"
	"time"
)

type Book struct {
	ID              string `db:"id" json:"id"`
	Title           string `db:"title" json:"title"`
	Author          string `db:"author" json:"author"`
	ISBN            string `db:"isbn" json:"isbn"`
	TotalCopies     int    `db:"total_copies" json:"total_copies"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
}

func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

type BorrowRecord struct {
	ID         string     `db:"id" json:"id"`
	PatronID   string     `db:"patron_id" json:"patron_id"`
	BookID     string     `db:"book_id" json:"book_id"`
	BorrowDate time.Time  `db:"borrow_date" json:"borrow_date"`
	DueDate    time.Time  `db:"due_date" json:"due_date"`
	ReturnDate *time.Time `db:"return_date" json:"return_date,omitempty"`
}

func (r *BorrowRecord) IsReturned() bool {
	return r.ReturnDate != nil
}

// DaysOverdue counts started days past the due date. A book one hour late
// counts as one full day.
func (r *BorrowRecord) DaysOverdue(now time.Time) int {
	if !now.After(r.DueDate) {
		return 0
	}
	late := now.Sub(r.DueDate)
	return int(math.Ceil(late.Hours() / 24))
}
