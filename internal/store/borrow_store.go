package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// borrowRow mirrors the borrow_records table. Dates come back as PocketBase
// datetime strings, so they are scanned through types.DateTime.
type borrowRow struct {
	ID         string         `db:"id"`
	PatronID   string         `db:"patron_id"`
	BookID     string         `db:"book_id"`
	BorrowDate types.DateTime `db:"borrow_date"`
	DueDate    types.DateTime `db:"due_date"`
	ReturnDate types.DateTime `db:"return_date"`
}

func (r *borrowRow) toModel() *models.BorrowRecord {
	record := &models.BorrowRecord{
		ID:         r.ID,
		PatronID:   r.PatronID,
		BookID:     r.BookID,
		BorrowDate: r.BorrowDate.Time(),
		DueDate:    r.DueDate.Time(),
	}
	if !r.ReturnDate.IsZero() {
		returned := r.ReturnDate.Time()
		record.ReturnDate = &returned
	}
	return record
}

// BorrowStore persists borrow records in the borrow_records collection.
type BorrowStore struct {
	app core.App
}

func NewBorrowStore(app core.App) *BorrowStore {
	return &BorrowStore{app: app}
}

func (s *BorrowStore) GetOpenBorrow(ctx context.Context, patronID, bookID string) (*models.BorrowRecord, error) {
	row := borrowRow{}
	err := s.app.DB().
		Select("id", "patron_id", "book_id", "borrow_date", "due_date", "return_date").
		From("borrow_records").
		Where(dbx.HashExp{"patron_id": patronID, "book_id": bookID, "return_date": ""}).
		WithContext(ctx).
		One(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open borrow: %w", err)
	}
	return row.toModel(), nil
}

func (s *BorrowStore) ListOpenBorrows(ctx context.Context, patronID string) ([]*models.BorrowRecord, error) {
	rows := []borrowRow{}
	err := s.app.DB().
		Select("id", "patron_id", "book_id", "borrow_date", "due_date", "return_date").
		From("borrow_records").
		Where(dbx.HashExp{"patron_id": patronID, "return_date": ""}).
		OrderBy("borrow_date DESC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("listing open borrows: %w", err)
	}

	records := make([]*models.BorrowRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, nil
}

func (s *BorrowStore) InsertBorrow(ctx context.Context, record *models.BorrowRecord) (*models.BorrowRecord, error) {
	collection, err := s.app.FindCollectionByNameOrId("borrow_records")
	if err != nil {
		return nil, fmt.Errorf("finding borrow_records collection: %w", err)
	}

	rec := core.NewRecord(collection)
	rec.Set("patron_id", record.PatronID)
	rec.Set("book_id", record.BookID)
	rec.Set("borrow_date", record.BorrowDate.UTC().Format(types.DefaultDateLayout))
	rec.Set("due_date", record.DueDate.UTC().Format(types.DefaultDateLayout))
	rec.Set("return_date", "")

	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving borrow record: %w", err)
	}

	record.ID = rec.Id
	return record, nil
}

func (s *BorrowStore) CloseBorrow(ctx context.Context, recordID string, returnedAt time.Time) error {
	rec, err := s.app.FindRecordById("borrow_records", recordID)
	if err != nil {
		return fmt.Errorf("finding borrow record %s: %w", recordID, err)
	}

	rec.Set("return_date", returnedAt.UTC().Format(types.DefaultDateLayout))
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("closing borrow record %s: %w", recordID, err)
	}
	return nil
}

// ListBorrowHistory returns every record for a patron, newest borrow first.
func (s *BorrowStore) ListBorrowHistory(ctx context.Context, patronID string) ([]*models.BorrowRecord, error) {
	rows := []borrowRow{}
	err := s.app.DB().
		Select("id", "patron_id", "book_id", "borrow_date", "due_date", "return_date").
		From("borrow_records").
		Where(dbx.HashExp{"patron_id": patronID}).
		OrderBy("borrow_date DESC").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, fmt.Errorf("listing borrow history: %w", err)
	}

	records := make([]*models.BorrowRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].toModel()
	}
	return records, nil
}
