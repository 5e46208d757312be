package handlers

import (
	"errors"
	"net/http"

	"library-system/internal/services"
	"library-system/internal/status"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CatalogHandler struct {
	app            *pocketbase.PocketBase
	catalogService *services.CatalogService
}

func NewCatalogHandler(app *pocketbase.PocketBase, catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		app:            app,
		catalogService: catalogService,
	}
}

// AddBook - Add a book to the catalog
func (h *CatalogHandler) AddBook(e *core.RequestEvent) error {
	var req struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		ISBN        string `json:"isbn"`
		TotalCopies int    `json:"total_copies"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	book, err := h.catalogService.AddBook(e.Request.Context(), req.Title, req.Author, req.ISBN, req.TotalCopies)
	if err != nil {
		if errors.Is(err, status.ErrDuplicateISBN) {
			return apis.NewBadRequestError("A book with this ISBN already exists", err)
		}
		return apis.NewBadRequestError(err.Error(), nil)
	}

	return e.JSON(http.StatusCreated, book)
}

// GetBook - Get a single book by id
func (h *CatalogHandler) GetBook(e *core.RequestEvent) error {
	bookID := e.Request.PathValue("bookId")
	if bookID == "" {
		return apis.NewBadRequestError("Book ID is required", nil)
	}

	book, err := h.catalogService.GetBookByID(e.Request.Context(), bookID)
	if err != nil {
		return apis.NewBadRequestError("Failed to fetch book", err)
	}
	if book == nil {
		return apis.NewNotFoundError("Book not found", nil)
	}

	return e.JSON(http.StatusOK, book)
}

// SearchBooks - Search the catalog by title, author or isbn
func (h *CatalogHandler) SearchBooks(e *core.RequestEvent) error {
	term := e.Request.URL.Query().Get("term")
	searchType := e.Request.URL.Query().Get("type")

	books, err := h.catalogService.SearchBooks(e.Request.Context(), term, searchType)
	if err != nil {
		return apis.NewBadRequestError("Search failed", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"books": books,
		"count": len(books),
	})
}
