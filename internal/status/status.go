package status

import "errors"

var (
	ErrInvalidPatronID = errors.New("patron: invalid patron ID")
	ErrBookNotFound    = errors.New("catalog: book not found")
	ErrDuplicateISBN   = errors.New("catalog: ISBN already registered")
	ErrNoCopies        = errors.New("circulation: no copies available")
	ErrBorrowLimit     = errors.New("circulation: borrow limit reached")
	ErrNotBorrowed     = errors.New("circulation: book not borrowed by this patron")
)
