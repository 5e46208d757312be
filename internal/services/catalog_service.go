package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"library-system/internal/status"
	"library-system/models"
)

const (
	maxTitleLength  = 200
	maxAuthorLength = 100
	maxTotalCopies  = 100
)

var isbnPattern = regexp.MustCompile(`^\d{13}$`)

// BookStore is the persistence contract for the catalog.
type BookStore interface {
	GetBookByID(ctx context.Context, id string) (*models.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error)
	InsertBook(ctx context.Context, book *models.Book) (*models.Book, error)
	SearchBooks(ctx context.Context, term, searchType string) ([]*models.Book, error)
	AdjustAvailability(ctx context.Context, bookID string, delta int) error
}

// CatalogService validates and persists catalog entries. It also implements
// BookLookup for the payment flow.
type CatalogService struct {
	store BookStore
}

func NewCatalogService(store BookStore) *CatalogService {
	return &CatalogService{store: store}
}

// AddBook validates the submission and inserts the book. Duplicate ISBNs are
// rejected.
func (s *CatalogService) AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (*models.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("title must be %d characters or fewer", maxTitleLength)
	}
	if author == "" {
		return nil, fmt.Errorf("author is required")
	}
	if len(author) > maxAuthorLength {
		return nil, fmt.Errorf("author must be %d characters or fewer", maxAuthorLength)
	}
	if !isbnPattern.MatchString(isbn) {
		return nil, fmt.Errorf("ISBN must be exactly 13 digits")
	}
	if totalCopies < 1 || totalCopies > maxTotalCopies {
		return nil, fmt.Errorf("total copies must be between 1 and %d", maxTotalCopies)
	}

	existing, err := s.store.GetBookByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("checking for existing ISBN: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrDuplicateISBN, isbn)
	}

	return s.store.InsertBook(ctx, &models.Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	})
}

// SearchBooks returns catalog matches. An empty term or search type yields an
// empty result without hitting the store.
func (s *CatalogService) SearchBooks(ctx context.Context, term, searchType string) ([]*models.Book, error) {
	if term == "" || searchType == "" {
		return []*models.Book{}, nil
	}

	switch searchType {
	case "title", "author", "isbn":
		return s.store.SearchBooks(ctx, term, searchType)
	default:
		return []*models.Book{}, nil
	}
}

func (s *CatalogService) GetBookByID(ctx context.Context, bookID string) (*models.Book, error) {
	return s.store.GetBookByID(ctx, bookID)
}
