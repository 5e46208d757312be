package services

import (
	"context"
	"strings"
	"testing"

	"library-system/internal/status"
	"library-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock BookStore for catalog and circulation tests
type MockBookStore struct {
	mock.Mock
}

func (m *MockBookStore) GetBookByID(ctx context.Context, id string) (*models.Book, error) {
	args := m.Called(ctx, id)
	if book := args.Get(0); book != nil {
		return book.(*models.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookStore) GetBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	args := m.Called(ctx, isbn)
	if book := args.Get(0); book != nil {
		return book.(*models.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookStore) InsertBook(ctx context.Context, book *models.Book) (*models.Book, error) {
	args := m.Called(ctx, book)
	if inserted := args.Get(0); inserted != nil {
		return inserted.(*models.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookStore) SearchBooks(ctx context.Context, term, searchType string) ([]*models.Book, error) {
	args := m.Called(ctx, term, searchType)
	if books := args.Get(0); books != nil {
		return books.([]*models.Book), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBookStore) AdjustAvailability(ctx context.Context, bookID string, delta int) error {
	args := m.Called(ctx, bookID, delta)
	return args.Error(0)
}

func setupTestCatalogService() (*CatalogService, *MockBookStore) {
	store := &MockBookStore{}
	return NewCatalogService(store), store
}

func TestAddBook_Success(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	store.On("GetBookByISBN", ctx, "9780451524935").Return(nil, nil)
	store.On("InsertBook", ctx, mock.MatchedBy(func(b *models.Book) bool {
		return b.Title == "1984" && b.Author == "George Orwell" && b.AvailableCopies == 3
	})).Return(&models.Book{
		ID:              "1",
		Title:           "1984",
		Author:          "George Orwell",
		ISBN:            "9780451524935",
		TotalCopies:     3,
		AvailableCopies: 3,
	}, nil)

	book, err := service.AddBook(ctx, "1984", "George Orwell", "9780451524935", 3)
	require.NoError(t, err)
	assert.Equal(t, "1", book.ID)
	assert.Equal(t, 3, book.AvailableCopies)
	store.AssertExpectations(t)
}

func TestAddBook_ValidationErrors(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	longAuthor := strings.Repeat("a", 101)

	tests := []struct {
		name    string
		title   string
		author  string
		isbn    string
		copies  int
		wantMsg string
	}{
		{"empty title", "", "Author", "9780451524935", 1, "title is required"},
		{"blank title", "   ", "Author", "9780451524935", 1, "title is required"},
		{"empty author", "Title", "", "9780451524935", 1, "author is required"},
		{"author too long", "Title", longAuthor, "9780451524935", 1, "author must be 100 characters or fewer"},
		{"short isbn", "Title", "Author", "12345", 1, "ISBN must be exactly 13 digits"},
		{"non-numeric isbn", "Title", "Author", "97804515249ab", 1, "ISBN must be exactly 13 digits"},
		{"zero copies", "Title", "Author", "9780451524935", 0, "total copies must be between 1 and 100"},
		{"too many copies", "Title", "Author", "9780451524935", 101, "total copies must be between 1 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book, err := service.AddBook(ctx, tt.title, tt.author, tt.isbn, tt.copies)
			require.Error(t, err)
			assert.Nil(t, book)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	store.AssertNotCalled(t, "InsertBook", mock.Anything, mock.Anything)
}

func TestAddBook_DuplicateISBN(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	store.On("GetBookByISBN", ctx, "9780451524935").Return(&models.Book{
		ID:   "1",
		ISBN: "9780451524935",
	}, nil)

	book, err := service.AddBook(ctx, "1984", "George Orwell", "9780451524935", 1)
	require.Error(t, err)
	assert.Nil(t, book)
	assert.ErrorIs(t, err, status.ErrDuplicateISBN)
	store.AssertNotCalled(t, "InsertBook", mock.Anything, mock.Anything)
}

func TestSearchBooks_EmptyTermOrType_SkipsStore(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	for _, tc := range []struct{ term, searchType string }{
		{"", "title"},
		{"orwell", ""},
		{"", ""},
		{"orwell", "publisher"},
	} {
		books, err := service.SearchBooks(ctx, tc.term, tc.searchType)
		require.NoError(t, err)
		assert.Empty(t, books)
		assert.NotNil(t, books)
	}

	store.AssertNotCalled(t, "SearchBooks", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchBooks_ValidTypes(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	matches := []*models.Book{{ID: "1", Title: "1984"}}
	store.On("SearchBooks", ctx, "1984", "title").Return(matches, nil)

	books, err := service.SearchBooks(ctx, "1984", "title")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "1984", books[0].Title)
	store.AssertExpectations(t)
}

func TestCatalogService_GetBookByID(t *testing.T) {
	service, store := setupTestCatalogService()
	ctx := context.Background()

	store.On("GetBookByID", ctx, "42").Return(&models.Book{ID: "42", Title: "Dune"}, nil)

	book, err := service.GetBookByID(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}
