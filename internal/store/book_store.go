package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"library-system/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// BookStore persists the catalog in the books collection. Reads go straight
// through dbx; writes go through PocketBase records so hooks and validation
// still apply.
type BookStore struct {
	app core.App
}

func NewBookStore(app core.App) *BookStore {
	return &BookStore{app: app}
}

func (s *BookStore) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	book := models.Book{}
	err := s.app.DB().
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		From("books").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&book)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying book %s: %w", id, err)
	}
	return &book, nil
}

func (s *BookStore) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	book := models.Book{}
	err := s.app.DB().
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		From("books").
		Where(dbx.HashExp{"isbn": isbn}).
		WithContext(ctx).
		One(&book)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying book by ISBN %s: %w", isbn, err)
	}
	return &book, nil
}

func (s *BookStore) InsertBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	collection, err := s.app.FindCollectionByNameOrId("books")
	if err != nil {
		return nil, fmt.Errorf("finding books collection: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("title", book.Title)
	record.Set("author", book.Author)
	record.Set("isbn", book.ISBN)
	record.Set("total_copies", book.TotalCopies)
	record.Set("available_copies", book.AvailableCopies)

	if err := s.app.SaveWithContext(ctx, record); err != nil {
		return nil, fmt.Errorf("saving book: %w", err)
	}

	book.ID = record.Id
	return book, nil
}

func (s *BookStore) SearchBooks(ctx context.Context, term, searchType string) ([]*models.Book, error) {
	var condition dbx.Expression
	switch searchType {
	case "title":
		condition = dbx.Like("title", term)
	case "author":
		condition = dbx.Like("author", term)
	case "isbn":
		condition = dbx.HashExp{"isbn": term}
	default:
		return []*models.Book{}, nil
	}

	books := []*models.Book{}
	err := s.app.DB().
		Select("id", "title", "author", "isbn", "total_copies", "available_copies").
		From("books").
		Where(condition).
		OrderBy("title ASC").
		WithContext(ctx).
		All(&books)
	if err != nil {
		return nil, fmt.Errorf("searching books by %s: %w", searchType, err)
	}
	return books, nil
}

// AdjustAvailability shifts available_copies by delta. The update is guarded
// so availability never leaves the [0, total_copies] range.
func (s *BookStore) AdjustAvailability(ctx context.Context, bookID string, delta int) error {
	result, err := s.app.DB().
		NewQuery(`UPDATE books
			SET available_copies = available_copies + {:delta}
			WHERE id = {:id}
			  AND available_copies + {:delta} >= 0
			  AND available_copies + {:delta} <= total_copies`).
		Bind(map[string]any{"id": bookID, "delta": delta}).
		WithContext(ctx).
		Execute()
	if err != nil {
		return fmt.Errorf("adjusting availability for book %s: %w", bookID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("availability for book %s cannot move by %d", bookID, delta)
	}
	return nil
}
