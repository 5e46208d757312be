package models

import "github.com/shopspring/decimal"

type Patron struct {
	ID      string `db:"id" json:"id"`
	CardNo  string `db:"card_no" json:"card_no"`
	Name    string `db:"name" json:"name"`
	PINHash string `db:"pin_hash" json:"-"`
}

type PatronStatusReport struct {
	PatronID      string          `json:"patron_id"`
	BorrowedCount int             `json:"borrowed_count"`
	TotalLateFees decimal.Decimal `json:"total_late_fees"`
	Borrowed      []*BorrowRecord `json:"borrowed"`
	History       []*BorrowRecord `json:"history"` // descending by borrow date
}
